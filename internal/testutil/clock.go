package testutil

import (
	"sync"
	"time"
)

// Clock provides a controllable time source for tests. With a step set,
// every Now call moves the clock forward, so records created in sequence
// get strictly increasing timestamps.
type Clock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewClock returns a Clock initialized to the given time.
// If no time is provided, it defaults to 2025-01-01 00:00:00 UTC.
func NewClock(now ...time.Time) *Clock {
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if len(now) > 0 {
		t = now[0]
	}
	return &Clock{now: t}
}

// Now returns the clock's current time, then advances it by the step.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Step sets the auto-advance applied after every Now call.
func (c *Clock) Step(d time.Duration) *Clock {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = d
	return c
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
