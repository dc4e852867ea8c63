package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHysteresis(t *testing.T) {
	tests := []struct {
		name string
		low  []float64
		high []float64
		want []float64
	}{
		{
			name: "identical phases give all zeros",
			low:  []float64{100, 200, 300},
			high: []float64{100, 200, 300},
			want: []float64{0, 0, 0},
		},
		{
			name: "plain difference",
			low:  []float64{100, 100, 100},
			high: []float64{150, 125, 75},
			want: []float64{50, 25, -25},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hysteresis(nil, tt.low, tt.high)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHysteresis_EmptyPhases(t *testing.T) {
	assert.Empty(t, Hysteresis(nil, nil, nil))
}

func TestHysteresis_ReusesDst(t *testing.T) {
	dst := make([]float64, 0, 8)
	got := Hysteresis(dst, []float64{1, 2}, []float64{3, 5})
	assert.Equal(t, []float64{2, 3}, got)
	assert.Equal(t, 8, cap(got))
}

func TestProfileDiff(t *testing.T) {
	tests := []struct {
		name   string
		window []float64
		want   []float64
	}{
		{
			name:   "palindromic readings give all zeros",
			window: []float64{10, 20, 30, 30, 20, 10},
			want:   []float64{0, 0, 0},
		},
		{
			name:   "mirror difference",
			window: []float64{100, 200, 300, 350, 220, 90},
			want:   []float64{-10, 20, 50},
		},
		{
			name:   "odd length skips the middle sample",
			window: []float64{1, 2, 3, 4, 7},
			want:   []float64{6, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProfileDiff(nil, tt.window))
		})
	}
}

func TestRatioAccumulator_EmitsExactRatio(t *testing.T) {
	var acc RatioAccumulator

	// One full period: low phase all 100, high phase all 200.
	for i := 0; i < 4; i++ {
		acc.AddLow(100)
	}
	for i := 0; i < 4; i++ {
		acc.AddHigh(200)
	}

	ratio, ok := acc.Ratio()
	require.True(t, ok)
	assert.Equal(t, 2.0, ratio)
}

func TestRatioAccumulator_UnevenCounts(t *testing.T) {
	var acc RatioAccumulator
	acc.AddLow(100)
	acc.AddLow(300) // mean low = 200
	acc.AddHigh(400)

	ratio, ok := acc.Ratio()
	require.True(t, ok)
	assert.Equal(t, 2.0, ratio)
}

func TestRatioAccumulator_EmptyPhaseEmitsNothing(t *testing.T) {
	var acc RatioAccumulator
	acc.AddLow(100)

	_, ok := acc.Ratio()
	assert.False(t, ok, "no high samples: period is silently skipped")

	acc.Reset()
	acc.AddHigh(100)
	_, ok = acc.Ratio()
	assert.False(t, ok, "no low samples: period is silently skipped")
}

func TestRatioAccumulator_ResetClearsBothPhases(t *testing.T) {
	var acc RatioAccumulator
	acc.AddLow(100)
	acc.AddHigh(300)
	acc.Reset()

	_, ok := acc.Ratio()
	assert.False(t, ok)

	acc.AddLow(10)
	acc.AddHigh(20)
	ratio, ok := acc.Ratio()
	require.True(t, ok)
	assert.Equal(t, 2.0, ratio)
}
