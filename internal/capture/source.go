// Package capture owns the recording lifecycle: it consumes raw pointer and
// keyboard notifications from a Source, converts them to event-model
// instances with monotonic relative timestamps, and writes the frozen
// recording when the session stops.
package capture

import (
	"context"

	"github.com/dkazmin/macroplay/internal/event"
)

// Handler receives raw input notifications. Implementations must be safe for
// concurrent use: the pointer-move, pointer-button/scroll, and keyboard
// callbacks each arrive on their own listener context.
type Handler interface {
	// PointerMove reports the absolute pointer position after a move.
	PointerMove(x, y int)
	// PointerButton reports a button transition.
	PointerButton(b event.Button, pressed bool)
	// PointerScroll reports wheel motion in notches.
	PointerScroll(dx, dy int)
	// Key reports a key transition.
	Key(k event.RawKey, pressed bool)
}

// Source delivers system-wide input notifications to a handler until the
// context is cancelled. Run returns a registration error immediately if the
// OS listener cannot be installed.
type Source interface {
	Run(ctx context.Context, h Handler) error
}

// SourceFunc adapts a function literal to the Source interface.
type SourceFunc func(ctx context.Context, h Handler) error

// Run calls the underlying function.
func (f SourceFunc) Run(ctx context.Context, h Handler) error {
	return f(ctx, h)
}
