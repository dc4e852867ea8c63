package feature

// Hysteresis emits y[i] = high[i] - low[i] for the paired low/high phase
// sub-windows of one completed cycle. The sub-windows must be the same
// length. Destination-based: reuses dst when it has sufficient capacity.
func Hysteresis(dst, low, high []float64) []float64 {
	n := len(low)
	if cap(dst) >= n {
		dst = dst[:n]
	} else {
		dst = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		dst[i] = high[i] - low[i]
	}
	return dst
}

// ProfileDiff emits diff[i] = window[N-1-i] - window[i] for i in 0..N/2 over
// a single-shot window collected along a palindromic temperature profile,
// comparing each ascending step to its mirrored descending counterpart.
func ProfileDiff(dst, window []float64) []float64 {
	n := len(window)
	half := n / 2
	if cap(dst) >= half {
		dst = dst[:half]
	} else {
		dst = make([]float64, half)
	}
	for i := 0; i < half; i++ {
		dst[i] = window[n-1-i] - window[i]
	}
	return dst
}

// RatioAccumulator collects resistance values per heater phase over one full
// period and emits mean(high)/mean(low) on rollover. Failed ticks simply do
// not contribute: the caller skips AddLow/AddHigh, leaving the counts
// untouched.
type RatioAccumulator struct {
	lowSum  float64
	highSum float64
	lowN    int
	highN   int
}

// AddLow records one low-phase resistance value.
func (a *RatioAccumulator) AddLow(v float64) {
	a.lowSum += v
	a.lowN++
}

// AddHigh records one high-phase resistance value.
func (a *RatioAccumulator) AddHigh(v float64) {
	a.highSum += v
	a.highN++
}

// Ratio returns mean(high)/mean(low) for the accumulated period. ok is
// false when either phase collected no samples; no ratio exists for such a
// period and the caller skips it silently.
func (a *RatioAccumulator) Ratio() (ratio float64, ok bool) {
	if a.lowN == 0 || a.highN == 0 {
		return 0, false
	}
	return (a.highSum / float64(a.highN)) / (a.lowSum / float64(a.lowN)), true
}

// Reset zeroes both phases for the next period.
func (a *RatioAccumulator) Reset() {
	a.lowSum, a.highSum = 0, 0
	a.lowN, a.highN = 0, 0
}
