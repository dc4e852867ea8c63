package engine

import (
	"context"

	"github.com/itohio/gomox/pkg/waveform"
)

// runRaw holds the heater at a constant set-point and streams raw readings
// for every channel, skipping the first warmup_samples ticks while the
// element settles. Diagnostic mode: no windows, no features.
func (e *Engine) runRaw(ctx context.Context) error {
	cfg := e.cfg
	wave := waveform.NewConstant(cfg.Raw.HeaterTempC)

	e.log.Infow("raw run",
		"heater_c", cfg.Raw.HeaterTempC,
		"heater_dur_ms", cfg.Raw.HeaterDurMS,
		"sample_ms", cfg.Raw.SampleMS,
		"channels", len(e.channels),
	)

	if err := e.rec.RawHeader(); err != nil {
		return err
	}

	t := NewTicker(e.clk, cfg.Raw.SampleMS)
	var sampleIdx int
	for !stopped(ctx) {
		elapsed := t.Wait()
		temp := wave.TemperatureAt(elapsed, sampleIdx)
		sampleIdx++

		for _, ch := range e.channels {
			_, rd, valid, _ := ch.Sample(temp, cfg.Raw.HeaterDurMS)
			if !valid || sampleIdx <= cfg.Raw.WarmupSamples {
				continue
			}
			if err := e.rec.Raw(elapsed, ch.Addr(), rd); err != nil {
				return err
			}
		}
	}
	return nil
}
