package spectrum

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Result holds the DC-removed magnitude spectrum of one window. Derived
// once, never mutated.
type Result struct {
	Fs       float64   // sampling rate used to derive the spectrum, samples/sec
	N        int       // window length the transform was computed over
	FirstBin int       // 0 when the DC bin is reported, 1 otherwise
	Mags     []float64 // magnitudes for bins FirstBin..N/2
}

// BinFreq returns the frequency of bin k in Hz.
func (r Result) BinFreq(k int) float64 {
	return float64(k) * r.Fs / float64(r.N)
}

// Mag returns the magnitude of bin k. k must be in FirstBin..N/2.
func (r Result) Mag(k int) float64 {
	return r.Mags[k-r.FirstBin]
}

// Analyzer computes direct DFT magnitudes over a full window with the
// arithmetic mean removed first. The transform is O(N²) on purpose: windows
// are tens to a few hundred samples, and the plain loop is bit-for-bit
// reproducible for identical input, N and Fs.
type Analyzer struct {
	// IncludeDC controls whether bin 0 appears in the Result. Both
	// conventions occur in downstream tooling; peak search excludes DC
	// either way.
	IncludeDC bool
}

// Transform computes the magnitude spectrum of x sampled at fs.
func (a Analyzer) Transform(x []float64, fs float64) Result {
	n := len(x)
	mean := floats.Sum(x) / float64(n)

	first := 1
	if a.IncludeDC {
		first = 0
	}

	mags := make([]float64, n/2-first+1)
	for k := first; k <= n/2; k++ {
		var re, im float64
		for i := 0; i < n; i++ {
			xn := x[i] - mean
			ang := -2.0 * math.Pi * float64(k) * float64(i) / float64(n)
			re += xn * math.Cos(ang)
			im += xn * math.Sin(ang)
		}
		re /= float64(n)
		im /= float64(n)
		mags[k-first] = math.Sqrt(re*re + im*im)
	}

	return Result{Fs: fs, N: n, FirstBin: first, Mags: mags}
}

// Peak is one dominant non-DC spectral line. Magnitude -1 marks an absent
// peak (fewer non-DC bins than slots); callers treat negative magnitudes as
// "no peak".
type Peak struct {
	FreqHz float64
	Mag    float64
}

// TopPeaks returns the k largest non-DC magnitudes in descending order.
// Strict > comparisons, so ties keep the earlier-seen bin. Bin 0 is never a
// candidate regardless of its magnitude; empty slots default to bin 1 with
// the -1 sentinel.
func (r Result) TopPeaks(k int) []Peak {
	bins := make([]int, k)
	mags := make([]float64, k)
	for i := range mags {
		bins[i] = 1
		mags[i] = -1.0
	}

	for bin := 1; bin <= r.N/2; bin++ {
		a := r.Mag(bin)
		for i := 0; i < k; i++ {
			if a > mags[i] {
				copy(mags[i+1:], mags[i:k-1])
				copy(bins[i+1:], bins[i:k-1])
				mags[i] = a
				bins[i] = bin
				break
			}
		}
	}

	peaks := make([]Peak, k)
	for i := range peaks {
		peaks[i] = Peak{FreqHz: r.BinFreq(bins[i]), Mag: mags[i]}
	}
	return peaks
}
