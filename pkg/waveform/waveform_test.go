package waveform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSquare_TemperatureAt(t *testing.T) {
	w := NewSquare(275, 325, 100)

	tests := []struct {
		name    string
		elapsed int64
		want    int
	}{
		{name: "start of period", elapsed: 0, want: 275},
		{name: "end of low half", elapsed: 99, want: 275},
		{name: "start of high half", elapsed: 100, want: 325},
		{name: "end of period", elapsed: 199, want: 325},
		{name: "wraps into next period", elapsed: 200, want: 275},
		{name: "many periods later", elapsed: 100*200 + 150, want: 325},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.TemperatureAt(tt.elapsed, 0))
		})
	}
}

func TestSquare_PeriodAndFreq(t *testing.T) {
	w := NewSquare(250, 320, 100)
	assert.Equal(t, int64(200), w.PeriodMS())
	assert.InDelta(t, 5.0, w.FreqHz(), 1e-12)
}

func TestProfile_TemperatureAt(t *testing.T) {
	table := []int{100, 175, 250, 325, 325, 250, 175, 100}
	w := NewProfile(table, 300)

	for i := 0; i < 3*len(table); i++ {
		assert.Equal(t, table[i%len(table)], w.TemperatureAt(0, i), "index %d", i)
	}
	assert.Equal(t, int64(8*300), w.PeriodMS())
}

func TestConstant_TemperatureAt(t *testing.T) {
	w := NewConstant(250)
	assert.Equal(t, 250, w.TemperatureAt(0, 0))
	assert.Equal(t, 250, w.TemperatureAt(123456, 789))
	assert.Equal(t, int64(0), w.PeriodMS())
}

func TestGenerators_AreDeterministic(t *testing.T) {
	gens := []Generator{
		NewSquare(200, 320, 50),
		NewProfile([]int{100, 200, 200, 100}, 50),
		NewConstant(300),
	}
	for _, g := range gens {
		for i := int64(0); i < 1000; i += 7 {
			assert.Equal(t, g.TemperatureAt(i, int(i)), g.TemperatureAt(i, int(i)))
		}
	}
}
