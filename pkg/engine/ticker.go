package engine

import "github.com/itohio/gomox/pkg/clock"

// Ticker produces a drift-free fixed cadence. Each deadline is the previous
// deadline plus the interval, never "now plus interval", so per-tick jitter
// does not compound over long runs. The schedule's zero point is captured
// once at construction; all nominal timestamps derive from it.
type Ticker struct {
	clk      clock.Clock
	interval int64
	origin   int64
	next     int64
}

// NewTicker creates a schedule starting now with the given tick interval.
func NewTicker(clk clock.Clock, intervalMS int64) *Ticker {
	now := clk.NowMS()
	return &Ticker{clk: clk, interval: intervalMS, origin: now, next: now}
}

// Wait blocks until the next deadline and returns the deadline's nominal
// elapsed time since the schedule started. A tick that overruns its slot
// returns immediately with the nominal (not actual) time, keeping record
// timestamps on the fixed grid.
func (t *Ticker) Wait() int64 {
	t.next += t.interval
	t.clk.SleepUntil(t.next)
	return t.next - t.origin
}

// Interval returns the tick interval in milliseconds.
func (t *Ticker) Interval() int64 {
	return t.interval
}
