package ratelimit

import (
	"sync"
	"time"
)

// Monitor counts outbound requests within a rolling time window. It is
// advisory only: callers read it for logging and diagnostics, it never blocks
// or delays a request. Safe for concurrent use.
type Monitor struct {
	mu          sync.Mutex
	window      time.Duration
	count       int
	windowStart time.Time

	now func() time.Time // injectable for tests
}

// NewMonitor creates a Monitor over the given window. A non-positive window
// defaults to one minute.
func NewMonitor(window time.Duration) *Monitor {
	if window <= 0 {
		window = time.Minute
	}
	return &Monitor{
		window: window,
		now:    time.Now,
	}
}

// Record increments the counter, resetting it first if the window has rolled
// over. It returns the count within the current window including this call.
func (m *Monitor) Record() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.roll()
	m.count++
	return m.count
}

// Count returns the number of requests recorded in the current window.
func (m *Monitor) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.roll()
	return m.count
}

// Window returns the configured window size.
func (m *Monitor) Window() time.Duration {
	return m.window
}

// roll resets the counter when the current window has elapsed. Callers must
// hold mu.
func (m *Monitor) roll() {
	now := m.now()
	if m.windowStart.IsZero() || now.Sub(m.windowStart) >= m.window {
		m.windowStart = now
		m.count = 0
	}
}
