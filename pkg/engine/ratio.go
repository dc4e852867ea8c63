package engine

import (
	"context"

	"github.com/itohio/gomox/pkg/feature"
	"github.com/itohio/gomox/pkg/waveform"
)

// runRatio modulates the heater with a square wave and emits, per completed
// period and channel, the ratio of the mean high-phase resistance to the
// mean low-phase resistance. Channels use drop-tick so a failed measurement
// does not bias a phase mean; a period where either phase collected nothing
// is skipped silently.
func (e *Engine) runRatio(ctx context.Context) error {
	cfg := e.cfg
	wave := waveform.NewSquare(cfg.Modulation.LowC, cfg.Modulation.HighC, cfg.Modulation.HalfPeriodMS)
	periodMS := wave.PeriodMS()

	e.log.Infow("ratio run",
		"mod_hz", wave.FreqHz(),
		"tick_ms", cfg.Sampling.TickMS,
		"warmup_cycles", cfg.Ratio.WarmupCycles,
		"channels", len(e.channels),
	)

	accs := make([]*feature.RatioAccumulator, len(e.channels))
	for i := range accs {
		accs[i] = &feature.RatioAccumulator{}
	}

	if err := e.rec.RatioHeader(); err != nil {
		return err
	}

	t := NewTicker(e.clk, cfg.Sampling.TickMS)
	var curPeriod int64
	var completed int
	for !stopped(ctx) {
		elapsed := t.Wait()

		if p := elapsed / periodMS; p != curPeriod {
			curPeriod = p
			completed++
			for i, ch := range e.channels {
				if r, ok := accs[i].Ratio(); ok && completed > cfg.Ratio.WarmupCycles {
					if err := e.rec.Ratio(elapsed, ch.Addr(), r); err != nil {
						return err
					}
				}
				accs[i].Reset()
			}
		}

		temp := wave.TemperatureAt(elapsed, 0)
		low := temp == cfg.Modulation.LowC
		for i, ch := range e.channels {
			gas, _, _, ok := ch.Sample(temp, cfg.Sampling.HeaterDurMS)
			if !ok {
				continue
			}
			if low {
				accs[i].AddLow(gas)
			} else {
				accs[i].AddHigh(gas)
			}
		}
	}
	return nil
}
