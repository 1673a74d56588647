// Package event defines the captured input event model: the pointer and key
// event variants, the Recording aggregate, and key canonicalization.
package event

import "time"

// Button identifies a pointer button.
type Button string

const (
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
	ButtonMiddle Button = "middle"
)

// Valid reports whether b is one of the three supported buttons.
func (b Button) Valid() bool {
	switch b {
	case ButtonLeft, ButtonRight, ButtonMiddle:
		return true
	}
	return false
}

// Pointer is the sum type for pointer events. Exactly three concrete types
// implement it: MoveRelative, Click, and Scroll. Replay dispatch type-switches
// over these and treats any other implementation as an error, so a new
// variant cannot be silently ignored.
type Pointer interface {
	// Time returns seconds elapsed since recording start.
	Time() float64
	pointer()
}

// MoveRelative is pointer displacement relative to the previous sample.
// It is only ever recorded with a non-zero delta on at least one axis.
type MoveRelative struct {
	DX, DY int
	T      float64
}

// Click is a button state transition. The absolute pointer position at the
// moment of the transition is not retained, only the transition itself.
type Click struct {
	Button  Button
	Pressed bool
	T       float64
}

// Scroll is a wheel tick, in notches.
type Scroll struct {
	DX, DY int
	T      float64
}

func (e MoveRelative) Time() float64 { return e.T }
func (e Click) Time() float64        { return e.T }
func (e Scroll) Time() float64       { return e.T }

func (MoveRelative) pointer() {}
func (Click) pointer()        {}
func (Scroll) pointer()       {}

// KeyKind distinguishes key transitions.
type KeyKind string

const (
	KeyPress   KeyKind = "press"
	KeyRelease KeyKind = "release"
)

// Key is a keyboard transition. Name is the canonical key identifier
// produced by Canonical (lowercase symbolic name or keycode fallback).
type Key struct {
	Kind KeyKind
	Name string
	T    float64
}

// Time returns seconds elapsed since recording start.
func (k Key) Time() float64 { return k.T }

// Mode is the only recording mode the engine produces: pointer motion stored
// as relative deltas.
const Mode = "relative_mouse"

// Recording is the frozen output of one capture session. It is built
// append-only while recording and never mutated afterwards; replay only
// reads it.
type Recording struct {
	ID            string
	Pointer       []Pointer
	Keys          []Key
	TotalDuration float64
	RecordedAt    time.Time
	Mode          string
}

// Events returns the total number of events across both streams.
func (r *Recording) Events() int {
	return len(r.Pointer) + len(r.Keys)
}
