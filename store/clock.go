package store

import "time"

// clock stamps mutations. Successive stamps are strictly increasing so that
// every createdAt ordering is total.
type clock struct {
	now  func() time.Time
	last time.Time
}

func newClock(now func() time.Time) *clock {
	return &clock{now: now}
}

// next returns a UTC instant later than any previously returned one.
func (c *clock) next() time.Time {
	t := c.now().UTC()
	if !t.After(c.last) {
		t = c.last.Add(time.Nanosecond)
	}
	c.last = t
	return t
}

// observe moves the floor past t so restored rows never tie with new ones.
func (c *clock) observe(t time.Time) {
	if t.After(c.last) {
		c.last = t.UTC()
	}
}
