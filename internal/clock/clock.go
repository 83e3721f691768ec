// Package clock provides a time abstraction so TTL-dependent code (the
// session store sweep) can be tested deterministically. Inject Clock instead
// of calling time.Now directly.
package clock

import (
	"sync"
	"time"
)

// Clock provides time operations that can be mocked for testing.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// NowUTC returns the current time in UTC.
	NowUTC() time.Time

	// Since returns the time elapsed since t.
	Since(t time.Time) time.Duration
}

// realClock implements Clock using the standard time package.
type realClock struct{}

// New returns a Clock that uses the real system time.
func New() Clock {
	return &realClock{}
}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func (c *realClock) NowUTC() time.Time {
	return time.Now().UTC()
}

func (c *realClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// Mock implements Clock with controllable time for testing.
type Mock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewMock creates a new Mock clock set to the given time.
func NewMock(t time.Time) *Mock {
	return &Mock{current: t}
}

// Now returns the mock's current time.
func (m *Mock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// NowUTC returns the mock's current time in UTC.
func (m *Mock) NowUTC() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.UTC()
}

// Since returns the duration since t.
func (m *Mock) Since(t time.Time) time.Duration {
	return m.Now().Sub(t)
}

// Set sets the mock clock to a specific time.
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
}

// Advance moves the mock clock forward by the given duration.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}
