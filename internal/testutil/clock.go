package testutil

import (
	"fmt"
	"sync"
	"time"
)

// Clock provides thread-safe deterministic timestamps for tests.
//
// Each call to Now returns the next tick: start, start+step, start+2*step.
// This keeps intent timestamps stable across runs so encoded queues can be
// compared byte-for-byte.
type Clock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// NewClock creates a clock whose first Now() returns start.
func NewClock(start time.Time, step time.Duration) *Clock {
	return &Clock{next: start, step: step}
}

// Now returns the next timestamp and advances the clock by one step.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(c.step)
	return t
}

// SequentialIDs returns an id source yielding "prefix-1", "prefix-2", ...
// Used in place of random uuids where tests need stable intent ids.
func SequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
