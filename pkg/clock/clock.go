// Package clock provides the mockable, monotonic time source the
// subscription manager arms every timer against: the missed-publication
// scheduler and the per-registration reply-TTL waiter. Production code
// gets a real clock; tests get a Mock they can advance deterministically
// instead of sleeping.
package clock

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Clock is the subset of github.com/benbjohnson/clock.Clock the
// manager needs: reading the current time and scheduling a one-shot
// callback. Delays are plain time.Duration, so callers are never
// exposed to the 32-bit millisecond overflow a naive int32 timer API
// would carry.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a handle to a scheduled callback. Stop is safe to call more
// than once and safe to call after the callback has already fired.
type Timer struct {
	inner *clock.Timer
}

// Stop cancels the timer. It reports whether the timer was still
// pending; once the callback has already fired it returns false.
func (t *Timer) Stop() bool {
	if t == nil || t.inner == nil {
		return false
	}
	return t.inner.Stop()
}

// realClock wraps clock.Clock (the real, wall-clock implementation).
type realClock struct {
	c clock.Clock
}

// New returns a Clock backed by the real system clock.
func New() Clock {
	return &realClock{c: clock.New()}
}

func (r *realClock) Now() time.Time { return r.c.Now() }

func (r *realClock) AfterFunc(d time.Duration, f func()) *Timer {
	return &Timer{inner: r.c.AfterFunc(d, f)}
}

// Mock is a controllable clock for tests: time only advances when Add
// or Set is called, so scheduler tests assert exact fire counts and
// exact ordering instead of racing real sleeps.
type Mock struct {
	m *clock.Mock
}

// NewMock returns a Mock clock started at the Unix epoch.
func NewMock() *Mock {
	return &Mock{m: clock.NewMock()}
}

func (m *Mock) Now() time.Time { return m.m.Now() }

func (m *Mock) AfterFunc(d time.Duration, f func()) *Timer {
	return &Timer{inner: m.m.AfterFunc(d, f)}
}

// Add advances the mock clock by d, synchronously running any timers
// that fire as a result before returning.
func (m *Mock) Add(d time.Duration) {
	m.m.Add(d)
}

// Set moves the mock clock to t, synchronously running any timers that
// fire as a result.
func (m *Mock) Set(t time.Time) {
	m.m.Set(t)
}
