package clock

import (
	"sync"
	"time"
)

// Clock is the time source used to compute and check lease deadlines.
// Implementations must return wall-clock times that carry Go's monotonic
// reading so that comparisons are immune to wall-clock jumps.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// --------------------------------------------------------------------------
// System Clock
// --------------------------------------------------------------------------

type systemClock struct{}

// System returns a Clock backed by time.Now.
// time.Now includes a monotonic reading, so deadlines derived from it
// always move forward even if the system time is changed.
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// --------------------------------------------------------------------------
// Manual Clock
// --------------------------------------------------------------------------

// Manual is a Clock whose time only moves when told to.
// It is used in tests to exercise lease expiry without sleeping.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual creates a Manual clock starting at the given time.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
