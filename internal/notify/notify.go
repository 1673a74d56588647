// Package notify defines the notification sink through which the capture
// session and the replay engine report user-facing events. The sink is
// injected so the CLI can render messages to the console while tests
// substitute a recording sink.
package notify

import (
	"fmt"
	"io"
	"sync"
)

// Sink receives engine notifications.
type Sink interface {
	// Notify delivers a one-line human-readable message.
	Notify(message string)
	// Progress reports replay progress as events done out of total.
	Progress(done, total int)
}

// Console writes notifications to an io.Writer, one line each.
type Console struct {
	W io.Writer
}

func (c *Console) Notify(message string) {
	fmt.Fprintln(c.W, message)
}

func (c *Console) Progress(done, total int) {
	pct := 0.0
	if total > 0 {
		pct = float64(done) / float64(total) * 100
	}
	fmt.Fprintf(c.W, "progress: %.1f%% (%d/%d)\n", pct, done, total)
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) Notify(string)     {}
func (Nop) Progress(int, int) {}

// Memory records notifications for inspection in tests.
type Memory struct {
	mu       sync.Mutex
	messages []string
	progress [][2]int
}

func (m *Memory) Notify(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
}

func (m *Memory) Progress(done, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = append(m.progress, [2]int{done, total})
}

// Messages returns a copy of all Notify messages received so far.
func (m *Memory) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.messages))
	copy(out, m.messages)
	return out
}

// ProgressReports returns a copy of all Progress calls received so far.
func (m *Memory) ProgressReports() [][2]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][2]int, len(m.progress))
	copy(out, m.progress)
	return out
}
