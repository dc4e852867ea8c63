package engine

import (
	"context"
	"fmt"

	"github.com/itohio/gomox/pkg/feature"
	"github.com/itohio/gomox/pkg/spectrum"
	"github.com/itohio/gomox/pkg/waveform"
	"github.com/itohio/gomox/pkg/window"
)

// runCycle drives a blockwise square wave on the first channel: S subsamples
// at the low set-point, then S at the high set-point, indexed by sample count
// so phase pairing never slips. Each completed cycle emits the hysteresis
// vector y[i] = high[i] - low[i]; y values also feed a rolling window whose
// spectrum is re-emitted every fft_stride cycles once full.
func (e *Engine) runCycle(ctx context.Context) error {
	cfg := e.cfg
	fs := e.sampleRate()
	sub := int(cfg.Modulation.HalfPeriodMS / cfg.Sampling.TickMS)
	ch := e.channels[0]

	// Blockwise modulation as a stepped table keeps the phase decision and
	// the set-point derived from the same sample index.
	table := make([]int, 2*sub)
	for i := range table {
		if i < sub {
			table[i] = cfg.Modulation.LowC
		} else {
			table[i] = cfg.Modulation.HighC
		}
	}
	wave := waveform.NewProfile(table, cfg.Sampling.TickMS)
	analyzer := spectrum.Analyzer{IncludeDC: cfg.FFT.IncludeDC}

	rolling := window.NewRolling(cfg.Cycle.FFTCycles * sub)
	lowWin := window.NewSingleShot(sub)
	highWin := window.NewSingleShot(sub)
	var y, snap []float64

	e.log.Infow("cycle run",
		"addr", fmt.Sprintf("0x%02X", ch.Addr()),
		"subsamples", sub,
		"cycle_ms", wave.PeriodMS(),
		"fft_window", rolling.Cap(),
		"fs_hz", fs,
	)

	t := NewTicker(e.clk, cfg.Sampling.TickMS)
	var sampleIdx int
	var cycleID uint32
	for !stopped(ctx) {
		elapsed := t.Wait()
		temp := wave.TemperatureAt(elapsed, sampleIdx)
		phase := sampleIdx % (2 * sub)
		sampleIdx++

		gas, _, _, ok := ch.Sample(temp, cfg.Sampling.HeaterDurMS)
		if ok {
			if phase < sub {
				lowWin.Push(gas)
			} else {
				highWin.Push(gas)
			}
		}

		if !highWin.Full() {
			continue
		}
		cycleID++

		y = feature.Hysteresis(y, lowWin.Values(), highWin.Values())
		for _, v := range y {
			rolling.Push(v)
		}
		lowWin.Reset()
		highWin.Reset()

		if cycleID <= uint32(cfg.Cycle.WarmupCycles) {
			continue
		}
		if err := e.rec.FeatureCycle(cycleID, y); err != nil {
			return err
		}

		if rolling.Full() && cycleID%uint32(cfg.Cycle.FFTStride) == 0 {
			snap = rolling.Snapshot(snap)
			res := analyzer.Transform(snap, fs)
			if err := e.rec.Spectrum(elapsed, ch.Addr(), res); err != nil {
				return err
			}
			if err := e.rec.Peaks(elapsed, ch.Addr(), res.TopPeaks(cfg.FFT.Peaks)); err != nil {
				return err
			}
		}
	}
	return nil
}
