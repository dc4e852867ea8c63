package engine

import (
	"context"

	"github.com/itohio/gomox/pkg/waveform"
)

// runSweep visits the configured half-periods in order. Each segment gets a
// fresh square wave and a fresh schedule, so its timestamps are segment-local
// and never carry the previous segment's phase. Per-tick records are
// suppressed for the warmup cycles and the segment is framed by SWEEP and
// ENDSWEEP markers. A channel failure mid-segment suppresses that tick's
// record; it never aborts the segment.
func (e *Engine) runSweep(ctx context.Context) error {
	cfg := e.cfg
	fs := e.sampleRate()

	if err := e.rec.SweepHeader(); err != nil {
		return err
	}

	for _, halfMS := range cfg.Sweep.HalfListMS {
		if stopped(ctx) {
			break
		}

		wave := waveform.NewSquare(cfg.Modulation.LowC, cfg.Modulation.HighC, halfMS)
		periodMS := wave.PeriodMS()
		warmupMS := int64(cfg.Sweep.WarmupCycles) * periodMS
		totalMS := int64(cfg.Sweep.WarmupCycles+cfg.Sweep.MeasuredCycles) * periodMS

		e.log.Infow("sweep segment",
			"half_ms", halfMS,
			"mod_hz", wave.FreqHz(),
			"warmup_ms", warmupMS,
			"run_ms", totalMS,
		)

		if err := e.rec.SweepStart(halfMS, wave.FreqHz(), cfg.Sweep.MeasuredCycles, fs); err != nil {
			return err
		}

		t := NewTicker(e.clk, cfg.Sampling.TickMS)
		for !stopped(ctx) {
			elapsed := t.Wait()
			if elapsed >= totalMS {
				break
			}
			temp := wave.TemperatureAt(elapsed, 0)

			for _, ch := range e.channels {
				gas, _, valid, _ := ch.Sample(temp, cfg.Sampling.HeaterDurMS)
				if !valid || elapsed < warmupMS {
					continue
				}
				if err := e.rec.SweepSample(elapsed, ch.Addr(), temp, gas); err != nil {
					return err
				}
			}
		}

		if err := e.rec.SweepEnd(halfMS); err != nil {
			return err
		}
	}

	e.log.Infow("sweep complete", "segments", len(cfg.Sweep.HalfListMS))
	return nil
}
