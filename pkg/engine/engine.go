package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/itohio/gomox/pkg/clock"
	"github.com/itohio/gomox/pkg/config"
	"github.com/itohio/gomox/pkg/record"
	"github.com/itohio/gomox/pkg/sensor"
)

// Engine runs one acquisition experiment: a single cooperative loop that
// evaluates the heater waveform, samples every channel sequentially within
// each tick, feeds windows and accumulators, and emits records. The only
// blocking operation inside a tick is the per-channel measurement wait.
type Engine struct {
	cfg      *config.Config
	clk      clock.Clock
	log      *zap.SugaredLogger
	rec      *record.Writer
	channels []*sensor.Sampler
}

// New creates an engine over the given channels. Channel order is sampling
// order within a tick; all channels in one tick are labeled with the same
// nominal set-point even though their acquisitions are sequential.
func New(cfg *config.Config, clk clock.Clock, log *zap.SugaredLogger, rec *record.Writer, channels []*sensor.Sampler) *Engine {
	return &Engine{cfg: cfg, clk: clk, log: log, rec: rec, channels: channels}
}

// Run executes the configured mode until it completes (sweep) or ctx is
// cancelled (all continuous modes). Cancellation is observed between ticks;
// an in-flight measurement always finishes.
func (e *Engine) Run(ctx context.Context) error {
	if len(e.channels) == 0 {
		return fmt.Errorf("no channels to run")
	}

	switch e.cfg.Mode {
	case config.ModeSpectral:
		return e.runSpectral(ctx)
	case config.ModeRatio:
		return e.runRatio(ctx)
	case config.ModeCycle:
		return e.runCycle(ctx)
	case config.ModeProfile:
		return e.runProfile(ctx)
	case config.ModeSweep:
		return e.runSweep(ctx)
	case config.ModeRaw:
		return e.runRaw(ctx)
	default:
		return fmt.Errorf("unknown mode %q", e.cfg.Mode)
	}
}

// sampleRate returns the sampling rate implied by the tick interval.
func (e *Engine) sampleRate() float64 {
	return 1000.0 / float64(e.cfg.Sampling.TickMS)
}

// stopped reports whether ctx asked for termination, without blocking.
func stopped(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
