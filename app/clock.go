package app

import (
	"sync"
	"time"
)

// MonotonicClock is a strictly increasing wall clock. Two calls never
// return the same instant, so audit appends within one process are totally
// ordered by performedAt.
type MonotonicClock struct {
	mu   sync.Mutex
	last time.Time
}

// NewMonotonicClock creates a clock.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{}
}

// Now implements ports.Clock.
func (c *MonotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now().UTC()
	if !now.After(c.last) {
		now = c.last.Add(time.Nanosecond)
	}
	c.last = now
	return now
}
