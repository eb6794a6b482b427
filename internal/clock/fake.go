package clock

import "time"

// FakeClock is a manually driven Clock for tests. It only moves when a
// test calls Advance or Set, which makes grace and lockout windows
// crossable deterministically.
type FakeClock struct {
	now time.Time
}

// NewFakeClock pins the clock at t. Times are normalized to UTC, the
// zone all billing arithmetic runs in.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// Set jumps the clock to an exact instant, such as a Monday 00:00
// period boundary.
func (c *FakeClock) Set(t time.Time) {
	c.now = t.UTC()
}
