// Package inject is the input injection port: a capability abstraction over
// the OS input-synthesis facility. Every operation is fire-and-forget; a key
// that cannot be resolved to a scan code is reported as an UnresolvedKeyError
// by Resolve and never surfaces as a playback-halting failure.
package inject

import (
	"fmt"

	"github.com/dkazmin/macroplay/internal/event"
)

// Injector synthesizes OS-level input events.
type Injector interface {
	// MoveRelative moves the pointer by a relative delta.
	MoveRelative(dx, dy int)
	// SetButton presses or releases a pointer button.
	SetButton(b event.Button, pressed bool)
	// Scroll generates wheel ticks.
	Scroll(dx, dy int)
	// SetKey presses or releases the key identified by a physical scan code.
	SetKey(code ScanCode, pressed bool)
}

// ScanCode identifies a physical key for injection. Extended marks keys that
// require the platform's extended-key flag (right Ctrl, right Alt), whose
// base scan code collides with the left variant.
type ScanCode struct {
	Code     uint16
	Extended bool
}

// UnresolvedKeyError reports a canonical key name with no scan code mapping.
type UnresolvedKeyError struct {
	Key string
}

func (e *UnresolvedKeyError) Error() string {
	return fmt.Sprintf("no scan code mapping for key %q", e.Key)
}
