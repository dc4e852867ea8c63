package engine

import (
	"context"

	"github.com/itohio/gomox/pkg/spectrum"
	"github.com/itohio/gomox/pkg/waveform"
	"github.com/itohio/gomox/pkg/window"
)

// runSpectral modulates the heater with a square wave and emits the
// magnitude spectrum and dominant peaks of every full window per channel.
// Channels use hold-last so a failed tick never punches a hole in a window.
func (e *Engine) runSpectral(ctx context.Context) error {
	cfg := e.cfg
	fs := e.sampleRate()
	n := cfg.FFT.WindowSamples
	wave := waveform.NewSquare(cfg.Modulation.LowC, cfg.Modulation.HighC, cfg.Modulation.HalfPeriodMS)
	analyzer := spectrum.Analyzer{IncludeDC: cfg.FFT.IncludeDC}

	e.log.Infow("spectral run",
		"mod_hz", wave.FreqHz(),
		"fs_hz", fs,
		"nyquist_hz", fs/2,
		"window", n,
		"bins", n/2+1,
		"channels", len(e.channels),
	)

	windows := make([]*window.SingleShot, len(e.channels))
	for i := range windows {
		windows[i] = window.NewSingleShot(n)
	}

	if cfg.Output.PrintRaw {
		if err := e.rec.RawHeader(); err != nil {
			return err
		}
	}

	t := NewTicker(e.clk, cfg.Sampling.TickMS)
	var full int
	for !stopped(ctx) {
		elapsed := t.Wait()
		temp := wave.TemperatureAt(elapsed, 0)

		for i, ch := range e.channels {
			gas, rd, valid, ok := ch.Sample(temp, cfg.Sampling.HeaterDurMS)
			if valid && cfg.Output.PrintRaw {
				if err := e.rec.Raw(elapsed, ch.Addr(), rd); err != nil {
					return err
				}
			}
			if ok {
				windows[i].Push(gas)
			}
		}

		if !windows[0].Full() {
			continue
		}
		full++

		for i, ch := range e.channels {
			res := analyzer.Transform(windows[i].Values(), fs)
			if full > cfg.FFT.WarmupWindows {
				if err := e.rec.Spectrum(elapsed, ch.Addr(), res); err != nil {
					return err
				}
				if err := e.rec.Peaks(elapsed, ch.Addr(), res.TopPeaks(cfg.FFT.Peaks)); err != nil {
					return err
				}
			}
			windows[i].Reset()
		}
	}
	return nil
}
