package waveform

// Generator maps elapsed time within a run (and the running sample index) to
// a heater set-point in degrees C. Generators are pure: the same inputs
// always yield the same set-point, so runs can be reproduced without
// hardware.
type Generator interface {
	TemperatureAt(elapsedMS int64, sampleIndex int) int
	PeriodMS() int64
}

// Square is a two-level square wave: the low set-point for the first
// half-period of each period, the high set-point for the second.
type Square struct {
	LowC   int
	HighC  int
	HalfMS int64
}

var _ Generator = (*Square)(nil)

// NewSquare creates a square wave toggling between lowC and highC every
// halfMS milliseconds.
func NewSquare(lowC, highC int, halfMS int64) *Square {
	return &Square{LowC: lowC, HighC: highC, HalfMS: halfMS}
}

// TemperatureAt returns the set-point for the given elapsed time.
func (w *Square) TemperatureAt(elapsedMS int64, _ int) int {
	if elapsedMS%w.PeriodMS() < w.HalfMS {
		return w.LowC
	}
	return w.HighC
}

// PeriodMS returns the full period of the wave.
func (w *Square) PeriodMS() int64 {
	return 2 * w.HalfMS
}

// FreqHz returns the modulation frequency of the wave.
func (w *Square) FreqHz() float64 {
	return 1000.0 / float64(w.PeriodMS())
}

// Profile steps through a fixed temperature table, one entry per sample.
// Tables are typically palindromic (ascending then descending) so that
// phase-paired samples can be diffed later.
type Profile struct {
	Table  []int
	TickMS int64
}

var _ Generator = (*Profile)(nil)

// NewProfile creates a stepped profile over table, sampled every tickMS.
func NewProfile(table []int, tickMS int64) *Profile {
	return &Profile{Table: table, TickMS: tickMS}
}

// TemperatureAt returns the table entry for the given sample index.
func (w *Profile) TemperatureAt(_ int64, sampleIndex int) int {
	return w.Table[sampleIndex%len(w.Table)]
}

// PeriodMS returns the duration of one full pass over the table.
func (w *Profile) PeriodMS() int64 {
	return int64(len(w.Table)) * w.TickMS
}

// Constant holds one fixed set-point. Used for raw diagnostic runs.
type Constant struct {
	TempC int
}

var _ Generator = (*Constant)(nil)

// NewConstant creates a generator that always returns tempC.
func NewConstant(tempC int) *Constant {
	return &Constant{TempC: tempC}
}

// TemperatureAt returns the fixed set-point.
func (w *Constant) TemperatureAt(int64, int) int {
	return w.TempC
}

// PeriodMS returns 0: a constant wave has no cycle.
func (w *Constant) PeriodMS() int64 {
	return 0
}
