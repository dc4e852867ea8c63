package record

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/itohio/gomox/pkg/sensor"
	"github.com/itohio/gomox/pkg/spectrum"
)

// Writer emits the line-oriented measurement records consumed by the live
// plotting tools. One call = one line, flushed immediately so downstream
// consumers see records as they are produced (line-buffered stdout
// semantics).
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w in a record writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// line writes one formatted record line and flushes.
func (w *Writer) line(format string, args ...any) error {
	if _, err := fmt.Fprintf(w.w, format+"\n", args...); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush record: %w", err)
	}
	return nil
}

// RawHeader writes the raw per-sample CSV header for diagnostic runs.
func (w *Writer) RawHeader() error {
	return w.line("t_ms,addr,gas_ohm,temp_C,hum_pct,press_Pa,status")
}

// Raw writes one raw per-sample record.
func (w *Writer) Raw(tMS int64, addr uint8, rd sensor.Reading) error {
	return w.line("%d,0x%02X,%.2f,%.2f,%.2f,%.2f,0x%x",
		tMS, addr, rd.GasOhm, rd.TempC, rd.HumPct, rd.PressPa, rd.Status)
}

// RatioHeader writes the column header preceding ratio records.
func (w *Writer) RatioHeader() error {
	return w.line("RATIO,t_ms,addr,value")
}

// Ratio writes one per-period ratio record for a channel.
func (w *Writer) Ratio(tMS int64, addr uint8, value float64) error {
	return w.line("RATIO,%d,0x%02X,%.6f", tMS, addr, value)
}

// Spectrum writes one full magnitude spectrum for a channel. The bins
// present follow the Result's convention (with or without DC).
func (w *Writer) Spectrum(tMS int64, addr uint8, res spectrum.Result) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "FFT,%d,0x%02X,%.6f", tMS, addr, res.Fs)
	for _, m := range res.Mags {
		fmt.Fprintf(&sb, ",%.6f", m)
	}
	return w.line("%s", sb.String())
}

// Peaks writes the top non-DC peaks for a channel as alternating
// frequency/magnitude pairs.
func (w *Writer) Peaks(tMS int64, addr uint8, peaks []spectrum.Peak) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PEAK,%d,0x%02X", tMS, addr)
	for _, p := range peaks {
		fmt.Fprintf(&sb, ",%.3f,%.6f", p.FreqHz, p.Mag)
	}
	return w.line("%s", sb.String())
}

// FeatureCycle writes one hysteresis vector for a completed cycle.
func (w *Writer) FeatureCycle(cycleID uint32, y []float64) error {
	return w.vector("FEATURE_CYCLE", cycleID, y)
}

// FeatureVec writes one symmetric-profile difference vector for a completed
// cycle.
func (w *Writer) FeatureVec(cycleID uint32, diff []float64) error {
	return w.vector("FEATURE_VEC", cycleID, diff)
}

func (w *Writer) vector(tag string, cycleID uint32, values []float64) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s,%d", tag, cycleID)
	for _, v := range values {
		fmt.Fprintf(&sb, ",%.6f", v)
	}
	return w.line("%s", sb.String())
}

// SweepHeader writes the column header preceding sweep segments.
func (w *Writer) SweepHeader() error {
	return w.line("header,t_ms,addr,heater_C,gas_ohm")
}

// SweepStart writes the segment-start marker.
func (w *Writer) SweepStart(halfMS int64, freqHz float64, measuredCycles int, fs float64) error {
	return w.line("SWEEP,%d,%.6f,%d,%.2f", halfMS, freqHz, measuredCycles, fs)
}

// SweepSample writes one per-tick sample record within a sweep segment.
func (w *Writer) SweepSample(tMS int64, addr uint8, heaterC int, gasOhm float64) error {
	return w.line("%d,0x%02X,%d,%.6f", tMS, addr, heaterC, gasOhm)
}

// SweepEnd writes the segment-end marker.
func (w *Writer) SweepEnd(halfMS int64) error {
	return w.line("ENDSWEEP,%d", halfMS)
}
