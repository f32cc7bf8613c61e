package core

import "time"

// Clock measures how long a unit of work took, e.g. a single asset decode.
type Clock struct {
	start   time.Time
	elapsed time.Duration
}

func NewClock() *Clock {
	return &Clock{}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	c.start = time.Now()
	c.elapsed = 0
}

// Stops the provided clock and records the elapsed time.
// Has no effect on non-started clocks.
func (c *Clock) Stop() time.Duration {
	if !c.start.IsZero() {
		c.elapsed = time.Since(c.start)
		c.start = time.Time{}
	}
	return c.elapsed
}

func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}
