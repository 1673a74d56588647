// Package testutil provides deterministic time sources for tests.
package testutil

import (
	"context"
	"sync"
	"time"
)

// FakeClock is a manually advanced monotonic clock for tests.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock at an arbitrary fixed origin.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Unix(1_700_000_000, 0)}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Sleeper returns a sleep function that advances the clock instead of
// blocking, and records every requested sleep in slept. It lets cadence
// tests verify total paced time without waiting for it.
func (c *FakeClock) Sleeper(slept *[]time.Duration) func(ctx context.Context, d time.Duration) error {
	var mu sync.Mutex
	return func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d > 0 {
			c.Advance(d)
			if slept != nil {
				mu.Lock()
				*slept = append(*slept, d)
				mu.Unlock()
			}
		}
		return nil
	}
}
