package capture

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dkazmin/macroplay/internal/event"
	"github.com/dkazmin/macroplay/internal/notify"
	"github.com/dkazmin/macroplay/internal/recfile"
)

// DefaultReservedKeys are the canonical names of the session's own
// start/stop control keys, filtered out of the keyboard stream.
var DefaultReservedKeys = []string{"f9", "f10"}

// Options configures a capture session.
type Options struct {
	// Dir is the directory recordings are written to.
	Dir string
	// ReservedKeys overrides DefaultReservedKeys. The keys named here never
	// appear in the recorded stream; press transitions instead invoke
	// OnControl.
	ReservedKeys []string
	// OnControl, if set, is invoked (outside the session lock) when a
	// reserved key is pressed.
	OnControl func(name string)
	// Sink receives the completion summary. Defaults to notify.Nop.
	Sink notify.Sink
	// Now overrides the monotonic clock source for tests.
	Now func() time.Time
}

// Summary describes a completed recording.
type Summary struct {
	Path          string
	PointerEvents int
	KeyEvents     int
	Duration      time.Duration
}

type position struct {
	x, y int
}

// Session is the capture state machine: Idle -> Recording -> Idle,
// re-entrant under new filenames.
//
// One mutex guards the state flag and both event sequences; every Source
// callback and the Start/Stop transitions funnel through it, since the
// callbacks arrive concurrently with each other and with control calls.
// Timestamps come exclusively from the monotonic clock reading carried by
// time.Time, never from wall-clock arithmetic.
type Session struct {
	dir       string
	reserved  map[string]bool
	onControl func(name string)
	sink      notify.Sink
	now       func() time.Time

	mu        sync.Mutex
	recording bool
	t0        time.Time
	wallStart time.Time
	filename  string
	pointer   []event.Pointer
	keys      []event.Key
	lastPos   *position
}

// NewSession creates an idle session.
func NewSession(opts Options) *Session {
	reserved := opts.ReservedKeys
	if reserved == nil {
		reserved = DefaultReservedKeys
	}
	set := make(map[string]bool, len(reserved))
	for _, name := range reserved {
		set[name] = true
	}
	sink := opts.Sink
	if sink == nil {
		sink = notify.Nop{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Session{
		dir:       opts.Dir,
		reserved:  set,
		onControl: opts.OnControl,
		sink:      sink,
		now:       now,
	}
}

// Recording reports whether the session is currently recording.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Start flips the session into the recording state: both event sequences are
// cleared, the monotonic clock is snapshotted as t0, and a filename is
// generated from the current wall-clock time. A no-op if already recording.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recording {
		return
	}
	s.pointer = nil
	s.keys = nil
	s.lastPos = nil
	s.t0 = s.now()
	s.wallStart = time.Now()
	s.filename = recfile.Filename(s.wallStart)
	s.recording = true
	slog.Info("recording started", "file", s.filename)
}

// Stop freezes the recording, writes it through the recording store, and
// returns the session to idle. Returns a nil summary if not recording.
func (s *Session) Stop() (*Summary, error) {
	s.mu.Lock()
	if !s.recording {
		s.mu.Unlock()
		return nil, nil
	}
	s.recording = false
	duration := s.now().Sub(s.t0)
	rec := &event.Recording{
		ID:            uuid.NewString(),
		Pointer:       s.pointer,
		Keys:          s.keys,
		TotalDuration: duration.Seconds(),
		RecordedAt:    s.wallStart,
		Mode:          event.Mode,
	}
	path := filepath.Join(s.dir, s.filename)
	s.pointer = nil
	s.keys = nil
	s.lastPos = nil
	s.mu.Unlock()

	if err := recfile.Save(rec, path); err != nil {
		return nil, fmt.Errorf("save recording: %w", err)
	}

	summary := &Summary{
		Path:          path,
		PointerEvents: len(rec.Pointer),
		KeyEvents:     len(rec.Keys),
		Duration:      duration,
	}
	slog.Info("recording stopped",
		"file", path,
		"pointer_events", summary.PointerEvents,
		"key_events", summary.KeyEvents,
		"duration", duration)
	s.sink.Notify(fmt.Sprintf("recording stopped: %.2fs, %d pointer events, %d key events, saved to %s",
		duration.Seconds(), summary.PointerEvents, summary.KeyEvents, path))
	return summary, nil
}

// PointerMove implements Handler. The first sample after Start only seeds
// the baseline; later samples append the relative delta unless it is zero on
// both axes.
func (s *Session) PointerMove(x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return
	}
	t := s.now().Sub(s.t0).Seconds()
	if s.lastPos != nil {
		dx := x - s.lastPos.x
		dy := y - s.lastPos.y
		if dx != 0 || dy != 0 {
			s.pointer = append(s.pointer, event.MoveRelative{DX: dx, DY: dy, T: t})
		}
	}
	s.lastPos = &position{x: x, y: y}
}

// PointerButton implements Handler.
func (s *Session) PointerButton(b event.Button, pressed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return
	}
	t := s.now().Sub(s.t0).Seconds()
	s.pointer = append(s.pointer, event.Click{Button: b, Pressed: pressed, T: t})
}

// PointerScroll implements Handler.
func (s *Session) PointerScroll(dx, dy int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return
	}
	t := s.now().Sub(s.t0).Seconds()
	s.pointer = append(s.pointer, event.Scroll{DX: dx, DY: dy, T: t})
}

// Key implements Handler. Reserved control keys never enter the stream, even
// while recording; their press transitions go to OnControl instead.
func (s *Session) Key(k event.RawKey, pressed bool) {
	name := event.Canonical(k)

	s.mu.Lock()
	if s.reserved[name] {
		s.mu.Unlock()
		if pressed && s.onControl != nil {
			s.onControl(name)
		}
		return
	}
	if !s.recording {
		s.mu.Unlock()
		return
	}
	kind := event.KeyPress
	if !pressed {
		kind = event.KeyRelease
	}
	t := s.now().Sub(s.t0).Seconds()
	s.keys = append(s.keys, event.Key{Kind: kind, Name: name, T: t})
	s.mu.Unlock()
}
