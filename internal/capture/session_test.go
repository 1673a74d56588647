package capture

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkazmin/macroplay/internal/event"
	"github.com/dkazmin/macroplay/internal/notify"
	"github.com/dkazmin/macroplay/internal/recfile"
	"github.com/dkazmin/macroplay/internal/testutil"
)

func newTestSession(t *testing.T, opts Options) (*Session, *testutil.FakeClock) {
	t.Helper()
	clock := testutil.NewFakeClock()
	if opts.Dir == "" {
		opts.Dir = t.TempDir()
	}
	opts.Now = clock.Now
	return NewSession(opts), clock
}

func TestSession_StartStop_Reentrant(t *testing.T) {
	s, clock := newTestSession(t, Options{})

	assert.False(t, s.Recording())
	s.Start()
	assert.True(t, s.Recording())

	// Start while recording is a no-op.
	s.Start()
	assert.True(t, s.Recording())

	clock.Advance(2 * time.Second)
	summary, err := s.Stop()
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.False(t, s.Recording())
	assert.Equal(t, 2*time.Second, summary.Duration)

	// Stop while idle is a no-op.
	summary, err = s.Stop()
	require.NoError(t, err)
	assert.Nil(t, summary)

	// The session is reusable under a new filename.
	s.Start()
	assert.True(t, s.Recording())
	_, err = s.Stop()
	require.NoError(t, err)
}

func TestSession_FirstMoveOnlySeedsBaseline(t *testing.T) {
	s, clock := newTestSession(t, Options{})
	s.Start()

	s.PointerMove(100, 200)
	clock.Advance(10 * time.Millisecond)
	s.PointerMove(103, 198)

	summary, err := s.Stop()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PointerEvents)

	rec, err := recfile.Load(summary.Path)
	require.NoError(t, err)
	require.Len(t, rec.Pointer, 1)
	assert.Equal(t, event.MoveRelative{DX: 3, DY: -2, T: 0.01}, rec.Pointer[0])
}

func TestSession_ZeroDeltaSuppressed(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	s.Start()

	s.PointerMove(50, 50)
	s.PointerMove(50, 50)
	s.PointerMove(50, 50)

	summary, err := s.Stop()
	require.NoError(t, err)
	assert.Equal(t, 0, summary.PointerEvents)
}

func TestSession_ClickAndScrollRecordedVerbatim(t *testing.T) {
	s, clock := newTestSession(t, Options{})
	s.Start()

	s.PointerButton(event.ButtonRight, true)
	clock.Advance(100 * time.Millisecond)
	s.PointerButton(event.ButtonRight, false)
	s.PointerScroll(0, -2)

	summary, err := s.Stop()
	require.NoError(t, err)
	rec, err := recfile.Load(summary.Path)
	require.NoError(t, err)
	require.Len(t, rec.Pointer, 3)
	assert.Equal(t, event.Click{Button: event.ButtonRight, Pressed: true, T: 0}, rec.Pointer[0])
	assert.Equal(t, event.Click{Button: event.ButtonRight, Pressed: false, T: 0.1}, rec.Pointer[1])
	assert.Equal(t, event.Scroll{DX: 0, DY: -2, T: 0.1}, rec.Pointer[2])
}

func TestSession_KeysCanonicalized(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	s.Start()

	s.Key(event.RawKey{VK: 'A', Rune: 'A'}, true)
	s.Key(event.RawKey{VK: 'A', Rune: 'A'}, false)
	s.Key(event.RawKey{VK: 200, Rune: 'и'}, true)

	summary, err := s.Stop()
	require.NoError(t, err)
	rec, err := recfile.Load(summary.Path)
	require.NoError(t, err)
	require.Len(t, rec.Keys, 3)
	assert.Equal(t, event.Key{Kind: event.KeyPress, Name: "a", T: 0}, rec.Keys[0])
	assert.Equal(t, event.Key{Kind: event.KeyRelease, Name: "a", T: 0}, rec.Keys[1])
	assert.Equal(t, event.Key{Kind: event.KeyPress, Name: "i", T: 0}, rec.Keys[2])
}

func TestSession_ReservedKeysNeverRecorded(t *testing.T) {
	var controls []string
	s, _ := newTestSession(t, Options{
		OnControl: func(name string) { controls = append(controls, name) },
	})
	s.Start()

	s.Key(event.RawKey{VK: 0x78}, true) // f9
	s.Key(event.RawKey{VK: 0x78}, false)
	s.Key(event.RawKey{VK: 0x42, Rune: 'B'}, true)
	s.Key(event.RawKey{VK: 0x79}, true) // f10

	summary, err := s.Stop()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.KeyEvents)
	// Releases do not trigger control callbacks.
	assert.Equal(t, []string{"f9", "f10"}, controls)
}

func TestSession_ReservedKeysParameterized(t *testing.T) {
	s, _ := newTestSession(t, Options{ReservedKeys: []string{"f2", "f3"}})
	s.Start()

	// The defaults are recordable once the reservation moves elsewhere.
	s.Key(event.RawKey{VK: 0x78}, true) // f9
	s.Key(event.RawKey{VK: 0x71}, true) // f2, now reserved

	summary, err := s.Stop()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.KeyEvents)

	rec, err := recfile.Load(summary.Path)
	require.NoError(t, err)
	assert.Equal(t, "f9", rec.Keys[0].Name)
}

func TestSession_IgnoresEventsWhileIdle(t *testing.T) {
	s, _ := newTestSession(t, Options{})

	s.PointerMove(1, 1)
	s.PointerMove(5, 5)
	s.PointerButton(event.ButtonLeft, true)
	s.Key(event.RawKey{VK: 'C', Rune: 'C'}, true)

	s.Start()
	summary, err := s.Stop()
	require.NoError(t, err)
	assert.Equal(t, 0, summary.PointerEvents)
	assert.Equal(t, 0, summary.KeyEvents)
}

func TestSession_StartClearsPreviousEvents(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	s.Start()
	s.PointerMove(0, 0)
	s.PointerMove(9, 9)
	_, err := s.Stop()
	require.NoError(t, err)

	s.Start()
	summary, err := s.Stop()
	require.NoError(t, err)
	assert.Equal(t, 0, summary.PointerEvents)

	rec, err := recfile.Load(summary.Path)
	require.NoError(t, err)
	assert.Empty(t, rec.Pointer)
}

func TestSession_StopNotifiesSink(t *testing.T) {
	sink := &notify.Memory{}
	s, _ := newTestSession(t, Options{Sink: sink})
	s.Start()
	_, err := s.Stop()
	require.NoError(t, err)

	messages := sink.Messages()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "recording stopped")
}

func TestSession_DurationFromClockNotLastEvent(t *testing.T) {
	s, clock := newTestSession(t, Options{})
	s.Start()
	clock.Advance(time.Second)
	s.PointerScroll(0, 1)
	clock.Advance(4 * time.Second)

	summary, err := s.Stop()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, summary.Duration)

	rec, err := recfile.Load(summary.Path)
	require.NoError(t, err)
	assert.Equal(t, 5.0, rec.TotalDuration)
	assert.Equal(t, 1.0, rec.Pointer[0].Time())
}

func TestSession_ConcurrentCallbacks(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	s.Start()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.PointerMove(i*1000+j, j)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.PointerButton(event.ButtonLeft, j%2 == 0)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Key(event.RawKey{VK: 'D', Rune: 'D'}, j%2 == 0)
			}
		}()
	}
	wg.Wait()

	summary, err := s.Stop()
	require.NoError(t, err)
	assert.Equal(t, 400, summary.KeyEvents)
	assert.GreaterOrEqual(t, summary.PointerEvents, 400)
}

func TestSession_SavedFileNameFromWallClock(t *testing.T) {
	dir := t.TempDir()
	s, _ := newTestSession(t, Options{Dir: dir})
	s.Start()
	summary, err := s.Stop()
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(summary.Path))
	base := filepath.Base(summary.Path)
	assert.Regexp(t, `^replay_\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}\.json$`, base)
}
