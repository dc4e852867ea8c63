package engine

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/itohio/gomox/pkg/clock"
	"github.com/itohio/gomox/pkg/config"
	"github.com/itohio/gomox/pkg/record"
	"github.com/itohio/gomox/pkg/sensor"
)

// stopClock cancels the run after a fixed number of ticks so the continuous
// modes terminate deterministically under test.
type stopClock struct {
	*clock.Fake
	cancel context.CancelFunc
	sleeps int
	limit  int
}

func (c *stopClock) SleepUntil(targetMS int64) {
	c.Fake.SleepUntil(targetMS)
	c.sleeps++
	if c.sleeps >= c.limit {
		c.cancel()
	}
}

// newTestChannel builds a channel whose gas reading exactly tracks the
// heater set-point: base 0, one ohm per degree, no lag, no noise.
func newTestChannel(t *testing.T, addr uint8, policy sensor.Policy) *sensor.Sampler {
	t.Helper()
	m := sensor.NewMock(addr, sensor.MockConfig{BaseOhm: 0, TempCoeff: -1, Lag: 1})
	require.NoError(t, m.Init())

	s := sensor.NewSampler(m, addr, policy)
	s.Wait = func(time.Duration) {}
	return s
}

func outputLines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimSpace(buf.String()), "\n")
}

func TestSweep_SegmentFraming(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = config.ModeSweep
	cfg.Sampling.TickMS = 25
	cfg.Sampling.HeaterDurMS = 0
	cfg.Sweep.HalfListMS = []int64{50, 100}
	cfg.Sweep.WarmupCycles = 1
	cfg.Sweep.MeasuredCycles = 2

	var buf bytes.Buffer
	ch := newTestChannel(t, 0x76, sensor.HoldLast)
	eng := New(cfg, clock.NewFake(), zap.NewNop().Sugar(), record.NewWriter(&buf), []*sensor.Sampler{ch})
	require.NoError(t, eng.Run(context.Background()))

	lines := outputLines(&buf)
	require.Equal(t, "header,t_ms,addr,heater_C,gas_ohm", lines[0])

	// One SWEEP/ENDSWEEP pair per configured half-period, in order.
	var starts, ends []string
	samples := map[string][]int64{}
	var cur string
	for _, ln := range lines[1:] {
		switch {
		case strings.HasPrefix(ln, "SWEEP,"):
			starts = append(starts, ln)
			cur = ln
		case strings.HasPrefix(ln, "ENDSWEEP,"):
			ends = append(ends, ln)
		default:
			tMS, err := strconv.ParseInt(strings.SplitN(ln, ",", 2)[0], 10, 64)
			require.NoError(t, err)
			samples[cur] = append(samples[cur], tMS)
		}
	}
	require.Equal(t, []string{"SWEEP,50,10.000000,2,40.00", "SWEEP,100,5.000000,2,40.00"}, starts)
	require.Equal(t, []string{"ENDSWEEP,50", "ENDSWEEP,100"}, ends)

	// half=50: period 100ms, warmup ends at 100ms, segment ends at 300ms.
	seg1 := samples[starts[0]]
	require.Len(t, seg1, 8)
	assert.Equal(t, int64(100), seg1[0], "no sample records before the first post-warmup tick")
	assert.Equal(t, int64(275), seg1[len(seg1)-1])

	// half=100: period 200ms, warmup ends at 200ms, segment ends at 600ms.
	// Timestamps restart from the segment-local origin.
	seg2 := samples[starts[1]]
	require.Len(t, seg2, 16)
	assert.Equal(t, int64(200), seg2[0])
	assert.Equal(t, int64(575), seg2[len(seg2)-1])
}

func TestRatio_PhaseMeans(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = config.ModeRatio
	cfg.Sampling.TickMS = 50
	cfg.Sampling.HeaterDurMS = 0
	cfg.Modulation.LowC = 100
	cfg.Modulation.HighC = 200
	cfg.Modulation.HalfPeriodMS = 100
	cfg.Ratio.WarmupCycles = 0

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clk := &stopClock{Fake: clock.NewFake(), cancel: cancel, limit: 20}

	var buf bytes.Buffer
	ch := newTestChannel(t, 0x76, sensor.DropTick)
	eng := New(cfg, clk, zap.NewNop().Sugar(), record.NewWriter(&buf), []*sensor.Sampler{ch})
	require.NoError(t, eng.Run(ctx))

	lines := outputLines(&buf)
	require.Equal(t, "RATIO,t_ms,addr,value", lines[0])
	require.Len(t, lines[1:], 5, "one ratio per completed period over 20 ticks")

	// Low phase reads 100 ohm, high phase 200 ohm, so every period's ratio
	// is exactly 2.
	for _, ln := range lines[1:] {
		parts := strings.Split(ln, ",")
		require.Len(t, parts, 4)
		assert.Equal(t, "RATIO", parts[0])
		assert.Equal(t, "0x76", parts[2])
		assert.Equal(t, "2.000000", parts[3])
	}
}

func TestRatio_WarmupPeriodsSuppressed(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = config.ModeRatio
	cfg.Sampling.TickMS = 50
	cfg.Sampling.HeaterDurMS = 0
	cfg.Modulation.LowC = 100
	cfg.Modulation.HighC = 200
	cfg.Modulation.HalfPeriodMS = 100
	cfg.Ratio.WarmupCycles = 2

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clk := &stopClock{Fake: clock.NewFake(), cancel: cancel, limit: 20}

	var buf bytes.Buffer
	ch := newTestChannel(t, 0x76, sensor.DropTick)
	eng := New(cfg, clk, zap.NewNop().Sugar(), record.NewWriter(&buf), []*sensor.Sampler{ch})
	require.NoError(t, eng.Run(ctx))

	lines := outputLines(&buf)
	require.Len(t, lines[1:], 3)
	assert.True(t, strings.HasPrefix(lines[1], "RATIO,600,"), "first two periods computed but not emitted")
}

func TestCycle_HysteresisAndRollingSpectrum(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = config.ModeCycle
	cfg.Sampling.TickMS = 50
	cfg.Sampling.HeaterDurMS = 0
	cfg.Modulation.LowC = 100
	cfg.Modulation.HighC = 200
	cfg.Modulation.HalfPeriodMS = 100 // 2 subsamples per phase
	cfg.Cycle.FFTCycles = 2
	cfg.Cycle.FFTStride = 1
	cfg.Cycle.WarmupCycles = 0

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clk := &stopClock{Fake: clock.NewFake(), cancel: cancel, limit: 8}

	var buf bytes.Buffer
	ch := newTestChannel(t, 0x76, sensor.HoldLast)
	eng := New(cfg, clk, zap.NewNop().Sugar(), record.NewWriter(&buf), []*sensor.Sampler{ch})
	require.NoError(t, eng.Run(ctx))

	// Gas tracks the set-point, so y[i] = 200-100 = 100 per subsample. The
	// rolling window fills after two cycles with a constant 100, whose
	// DC-removed spectrum is exactly zero everywhere.
	assert.Equal(t, []string{
		"FEATURE_CYCLE,1,100.000000,100.000000",
		"FEATURE_CYCLE,2,100.000000,100.000000",
		"FFT,400,0x76,20.000000,0.000000,0.000000,0.000000",
		"PEAK,400,0x76,5.000,0.000000,10.000,0.000000,5.000,-1.000000",
	}, outputLines(&buf))
}

func TestProfile_PalindromicTableYieldsZeroVector(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = config.ModeProfile
	cfg.Sampling.TickMS = 50
	cfg.Sampling.HeaterDurMS = 0
	cfg.Profile.WarmupCycles = 0

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clk := &stopClock{Fake: clock.NewFake(), cancel: cancel, limit: 8}

	var buf bytes.Buffer
	ch := newTestChannel(t, 0x76, sensor.HoldLast)
	eng := New(cfg, clk, zap.NewNop().Sugar(), record.NewWriter(&buf), []*sensor.Sampler{ch})
	require.NoError(t, eng.Run(ctx))

	lines := outputLines(&buf)
	require.Len(t, lines, 10, "header, one raw record per tick, one vector")
	assert.Equal(t, "t_ms,addr,gas_ohm,temp_C,hum_pct,press_Pa,status", lines[0])
	assert.Equal(t, "50,0x76,100.00,100.00,40.00,101325.00,0xb0", lines[1])

	// The default table is palindromic and the reading tracks it exactly,
	// so every mirrored pair cancels.
	assert.Equal(t, "FEATURE_VEC,1,0.000000,0.000000,0.000000,0.000000", lines[9])
}

func TestSpectral_WarmupWindowsSuppressed(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = config.ModeSpectral
	cfg.Sampling.TickMS = 50
	cfg.Sampling.HeaterDurMS = 0
	cfg.FFT.WindowSamples = 8
	cfg.FFT.WarmupWindows = 1

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clk := &stopClock{Fake: clock.NewFake(), cancel: cancel, limit: 16}

	var buf bytes.Buffer
	channels := []*sensor.Sampler{
		newTestChannel(t, 0x76, sensor.HoldLast),
		newTestChannel(t, 0x77, sensor.HoldLast),
	}
	eng := New(cfg, clk, zap.NewNop().Sugar(), record.NewWriter(&buf), channels)
	require.NoError(t, eng.Run(ctx))

	// First full window (t=400) is warmup; only the second (t=800) emits.
	lines := outputLines(&buf)
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "FFT,800,0x76,20.000000,"))
	assert.True(t, strings.HasPrefix(lines[1], "PEAK,800,0x76,"))
	assert.True(t, strings.HasPrefix(lines[2], "FFT,800,0x77,20.000000,"))
	assert.True(t, strings.HasPrefix(lines[3], "PEAK,800,0x77,"))

	// Full spectrum carries bins 0..N/2, peaks carry three pairs.
	assert.Len(t, strings.Split(lines[0], ","), 4+8/2+1)
	assert.Len(t, strings.Split(lines[1], ","), 3+6)
}

func TestRaw_WarmupSamplesSkipped(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = config.ModeRaw
	cfg.Raw.HeaterTempC = 250
	cfg.Raw.HeaterDurMS = 0
	cfg.Raw.SampleMS = 200
	cfg.Raw.WarmupSamples = 2

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clk := &stopClock{Fake: clock.NewFake(), cancel: cancel, limit: 5}

	var buf bytes.Buffer
	ch := newTestChannel(t, 0x76, sensor.HoldLast)
	eng := New(cfg, clk, zap.NewNop().Sugar(), record.NewWriter(&buf), []*sensor.Sampler{ch})
	require.NoError(t, eng.Run(ctx))

	assert.Equal(t, []string{
		"t_ms,addr,gas_ohm,temp_C,hum_pct,press_Pa,status",
		"600,0x76,250.00,250.00,40.00,101325.00,0xb0",
		"800,0x76,250.00,250.00,40.00,101325.00,0xb0",
		"1000,0x76,250.00,250.00,40.00,101325.00,0xb0",
	}, outputLines(&buf))
}

func TestRun_UnknownModeRejected(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = "bogus"

	eng := New(cfg, clock.NewFake(), zap.NewNop().Sugar(), record.NewWriter(&bytes.Buffer{}),
		[]*sensor.Sampler{newTestChannel(t, 0x76, sensor.HoldLast)})
	assert.ErrorContains(t, eng.Run(context.Background()), "unknown mode")
}
