// Package replay drives a loaded recording through the input injection port
// at the recorded cadence.
//
// The engine never races ahead of the recording and never drops events to
// catch up: if processing falls behind, subsequent sleeps simply shorten to
// zero. A failure while handling one event is logged and playback continues
// with the next; only pre-flight failures abort a Play call.
package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/dkazmin/macroplay/internal/event"
	"github.com/dkazmin/macroplay/internal/inject"
	"github.com/dkazmin/macroplay/internal/notify"
)

// ErrBusy is returned when Play is called while another replay is running
// against the same engine. Concurrent replays would interleave injected
// input nonsensically.
var ErrBusy = errors.New("a replay is already running")

// progressEvery is the progress-report cadence in events.
const progressEvery = 100

// Options configures one Play call.
type Options struct {
	// Sensitivity scales relative pointer motion. Must be positive.
	Sensitivity float64
	// StartDelay is the pre-roll before the first event, giving the operator
	// time to focus the target window.
	StartDelay time.Duration
}

// Summary reports the outcome of a Play call.
type Summary struct {
	Total  int
	Played int
	Failed int
}

// Option customizes an engine, mainly for tests.
type Option func(*Engine)

// WithClock overrides the monotonic clock source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSleeper overrides the cancellable sleep used for cadence pacing.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Engine) { e.sleep = sleep }
}

// Engine replays recordings through an injector. Safe for concurrent use;
// overlapping Play calls are rejected with ErrBusy.
type Engine struct {
	inj   inject.Injector
	sink  notify.Sink
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	busy  atomic.Bool
}

// New creates a replay engine. A nil sink defaults to notify.Nop.
func New(inj inject.Injector, sink notify.Sink, opts ...Option) *Engine {
	e := &Engine{
		inj:   inj,
		sink:  sink,
		now:   time.Now,
		sleep: sleepContext,
	}
	if e.sink == nil {
		e.sink = notify.Nop{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// sleepContext sleeps for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// entry is one slot on the merged timeline. Exactly one of pointer and key
// is set.
type entry struct {
	t       float64
	pointer event.Pointer
	key     *event.Key
}

// merge flattens both event streams into one timeline ordered by t. The
// sort is stable and pointer entries are appended first, so at equal
// timestamps the pointer event replays before the key event, matching the
// relation at recording time.
func merge(rec *event.Recording) []entry {
	merged := make([]entry, 0, rec.Events())
	for _, p := range rec.Pointer {
		merged = append(merged, entry{t: p.Time(), pointer: p})
	}
	for i := range rec.Keys {
		k := rec.Keys[i]
		merged = append(merged, entry{t: k.T, key: &k})
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].t < merged[j].t
	})
	return merged
}

// Play replays rec at its recorded cadence. It blocks until completion or
// cancellation; callers that must not block run it on a dedicated goroutine
// (see PlayAsync). The returned summary is valid even on cancellation.
func (e *Engine) Play(ctx context.Context, rec *event.Recording, opts Options) (*Summary, error) {
	if opts.Sensitivity <= 0 {
		return nil, fmt.Errorf("sensitivity must be positive, got %v", opts.Sensitivity)
	}
	if opts.StartDelay < 0 {
		return nil, fmt.Errorf("start delay must not be negative, got %v", opts.StartDelay)
	}
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer e.busy.Store(false)

	merged := merge(rec)
	summary := &Summary{Total: len(merged)}

	if opts.StartDelay > 0 {
		e.sink.Notify(fmt.Sprintf("starting replay in %.1fs", opts.StartDelay.Seconds()))
		if err := e.sleep(ctx, opts.StartDelay); err != nil {
			return summary, err
		}
	}

	slog.Info("replay started",
		"events", summary.Total,
		"duration", rec.TotalDuration,
		"sensitivity", opts.Sensitivity)

	var carryX, carryY carry
	t0 := e.now()
	for _, ent := range merged {
		target := time.Duration(ent.t * float64(time.Second))
		if elapsed := e.now().Sub(t0); elapsed < target {
			if err := e.sleep(ctx, target-elapsed); err != nil {
				return summary, err
			}
		} else if err := ctx.Err(); err != nil {
			return summary, err
		}

		if err := e.dispatch(ent, opts.Sensitivity, &carryX, &carryY); err != nil {
			summary.Failed++
			logEventFailure(ent, err)
		}
		summary.Played++
		if summary.Played%progressEvery == 0 {
			e.sink.Progress(summary.Played, summary.Total)
		}
	}

	slog.Info("replay finished", "events", summary.Played, "failed", summary.Failed)
	e.sink.Notify(fmt.Sprintf("replay finished: %d events processed", summary.Played))
	return summary, nil
}

// Result pairs a replay summary with its terminal error.
type Result struct {
	Summary *Summary
	Err     error
}

// PlayAsync runs Play on its own goroutine and delivers the result on the
// returned channel, so the control thread is never blocked for the duration
// of the recording.
func (e *Engine) PlayAsync(ctx context.Context, rec *event.Recording, opts Options) <-chan Result {
	done := make(chan Result, 1)
	go func() {
		summary, err := e.Play(ctx, rec, opts)
		done <- Result{Summary: summary, Err: err}
	}()
	return done
}

// dispatch forwards one timeline entry to the injection port. Errors are
// per-event: the caller logs them and moves on.
func (e *Engine) dispatch(ent entry, sensitivity float64, carryX, carryY *carry) error {
	if ent.key != nil {
		code, err := inject.Resolve(ent.key.Name)
		if err != nil {
			return err
		}
		e.inj.SetKey(code, ent.key.Kind == event.KeyPress)
		return nil
	}

	switch p := ent.pointer.(type) {
	case event.MoveRelative:
		dx := carryX.step(float64(p.DX) * sensitivity)
		dy := carryY.step(float64(p.DY) * sensitivity)
		if dx != 0 || dy != 0 {
			e.inj.MoveRelative(dx, dy)
		}
		return nil
	case event.Click:
		e.inj.SetButton(p.Button, p.Pressed)
		return nil
	case event.Scroll:
		e.inj.Scroll(p.DX, p.DY)
		return nil
	default:
		return fmt.Errorf("unhandled pointer event type %T", ent.pointer)
	}
}

func logEventFailure(ent entry, err error) {
	var unresolved *inject.UnresolvedKeyError
	if errors.As(err, &unresolved) {
		slog.Warn("skipping key event with no scan code mapping",
			"key", unresolved.Key, "t", ent.t)
		return
	}
	if ent.key != nil {
		slog.Warn("key event failed", "key", ent.key.Name, "t", ent.t, "error", err)
		return
	}
	slog.Warn("pointer event failed",
		"event", fmt.Sprintf("%#v", ent.pointer), "t", ent.t, "error", err)
}
