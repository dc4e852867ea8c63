package engine

import (
	"context"
	"fmt"

	"github.com/itohio/gomox/pkg/feature"
	"github.com/itohio/gomox/pkg/waveform"
	"github.com/itohio/gomox/pkg/window"
)

// runProfile steps the first channel's heater through a palindromic
// temperature table, one entry per sample, emitting a raw record per valid
// tick. Each completed pass over the table yields the mirror-difference
// vector diff[i] = window[N-1-i] - window[i], comparing each ascending step
// to its descending counterpart.
func (e *Engine) runProfile(ctx context.Context) error {
	cfg := e.cfg
	wave := waveform.NewProfile(cfg.Modulation.Profile, cfg.Sampling.TickMS)
	n := len(cfg.Modulation.Profile)
	ch := e.channels[0]

	e.log.Infow("profile run",
		"addr", fmt.Sprintf("0x%02X", ch.Addr()),
		"steps", n,
		"cycle_ms", wave.PeriodMS(),
		"warmup_cycles", cfg.Profile.WarmupCycles,
	)

	win := window.NewSingleShot(n)
	var diff []float64

	if err := e.rec.RawHeader(); err != nil {
		return err
	}

	t := NewTicker(e.clk, cfg.Sampling.TickMS)
	var sampleIdx int
	var cycleID uint32
	for !stopped(ctx) {
		elapsed := t.Wait()
		temp := wave.TemperatureAt(elapsed, sampleIdx)
		sampleIdx++

		gas, rd, valid, ok := ch.Sample(temp, cfg.Sampling.HeaterDurMS)
		if valid {
			if err := e.rec.Raw(elapsed, ch.Addr(), rd); err != nil {
				return err
			}
		}
		if ok {
			win.Push(gas)
		}

		if !win.Full() {
			continue
		}
		cycleID++
		diff = feature.ProfileDiff(diff, win.Values())
		win.Reset()

		if cycleID <= uint32(cfg.Profile.WarmupCycles) {
			continue
		}
		if err := e.rec.FeatureVec(cycleID, diff); err != nil {
			return err
		}
	}
	return nil
}
