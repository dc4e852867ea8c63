package clock

import "time"

// Clock provides monotonic milliseconds and deadline sleeping. All timing in
// the engine goes through a Clock so runs can be replayed deterministically
// in tests with a Fake.
type Clock interface {
	// NowMS returns milliseconds elapsed on this clock's timeline.
	NowMS() int64
	// SleepUntil blocks until NowMS() >= targetMS. Returns immediately if
	// the deadline has already passed.
	SleepUntil(targetMS int64)
}

// System is a Clock backed by the runtime monotonic clock. Its zero point is
// fixed once at construction: callers create exactly one System per run,
// before the scheduler starts, and every timing computation derives from it.
type System struct {
	base time.Time
}

var _ Clock = (*System)(nil)

// NewSystem creates a System clock whose origin is now.
func NewSystem() *System {
	return &System{base: time.Now()}
}

// NowMS returns milliseconds since construction.
func (c *System) NowMS() int64 {
	return time.Since(c.base).Milliseconds()
}

// SleepUntil sleeps coarse then fine: one sleep to just short of the
// deadline, then sub-millisecond naps until the deadline is reached.
func (c *System) SleepUntil(targetMS int64) {
	for {
		now := c.NowMS()
		if now >= targetMS {
			return
		}
		if diff := targetMS - now; diff > 2 {
			time.Sleep(time.Duration(diff-1) * time.Millisecond)
			continue
		}
		time.Sleep(500 * time.Microsecond)
	}
}

// Fake is a manually advanced Clock for tests. SleepUntil jumps straight to
// the deadline, so scheduled loops run as fast as the test can drive them.
type Fake struct {
	now int64
}

var _ Clock = (*Fake)(nil)

// NewFake creates a Fake clock at time zero.
func NewFake() *Fake {
	return &Fake{}
}

// NowMS returns the current fake time.
func (c *Fake) NowMS() int64 {
	return c.now
}

// SleepUntil advances the fake time to targetMS if it is in the future.
func (c *Fake) SleepUntil(targetMS int64) {
	if targetMS > c.now {
		c.now = targetMS
	}
}

// Advance moves the fake time forward by ms milliseconds.
func (c *Fake) Advance(ms int64) {
	c.now += ms
}
