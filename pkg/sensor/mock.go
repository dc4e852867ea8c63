package sensor

import (
	"fmt"
	"math"
	"time"
)

// MockConfig shapes the simulated sensor response.
type MockConfig struct {
	BaseOhm   float64       `yaml:"base_ohm"`   // resistance at a 0C set-point
	TempCoeff float64       `yaml:"temp_coeff"` // ohms shed per degree of set-point
	Lag       float64       `yaml:"lag"`        // first-order smoothing factor, 0..1
	Noise     float64       `yaml:"noise"`      // deterministic noise amplitude, ohms
	MeasDur   time.Duration `yaml:"meas_dur"`   // reported measurement duration
	FailEvery int           `yaml:"fail_every"` // every n-th trigger fails (0 = never)
}

// Mock simulates one sensor channel for testing and development without
// hardware. Gas resistance follows the heater set-point through a
// first-order lag plus deterministic periodic noise, so identical trigger
// sequences reproduce identical readings.
type Mock struct {
	cfg  MockConfig
	addr uint8

	inited     bool
	resistance float64
	lastTemp   int
	pending    bool
	triggers   int
}

// NewMock creates a mocked channel at addr.
func NewMock(addr uint8, cfg MockConfig) *Mock {
	if cfg.Lag <= 0 || cfg.Lag > 1 {
		cfg.Lag = 0.3
	}
	return &Mock{cfg: cfg, addr: addr}
}

// Addr returns the channel's simulated bus address.
func (m *Mock) Addr() uint8 {
	return m.addr
}

// Init marks the simulated sensor identified.
func (m *Mock) Init() error {
	m.inited = true
	m.resistance = m.target(0)
	return nil
}

// Configure accepts any settings; the mock has no registers to reject.
func (m *Mock) Configure(MeasureConfig) error {
	if !m.inited {
		return fmt.Errorf("configure 0x%02X: %w", m.addr, ErrNotConnected)
	}
	return nil
}

// TriggerForced advances the simulated thermal state one measurement. Fails
// with ErrCommFail every cfg.FailEvery-th trigger when configured.
func (m *Mock) TriggerForced(heaterTempC, _ int) error {
	if !m.inited {
		return ErrNotConnected
	}

	m.triggers++
	if m.cfg.FailEvery > 0 && m.triggers%m.cfg.FailEvery == 0 {
		m.pending = false
		return ErrCommFail
	}

	// First-order approach to the set-point's steady-state resistance.
	target := m.target(heaterTempC)
	m.resistance += m.cfg.Lag * (target - m.resistance)
	m.lastTemp = heaterTempC
	m.pending = true
	return nil
}

// MeasurementDuration returns the configured simulated duration.
func (m *Mock) MeasurementDuration() time.Duration {
	return m.cfg.MeasDur
}

// ReadResult returns the simulated reading for the last trigger.
func (m *Mock) ReadResult() (Reading, error) {
	if !m.pending {
		return Reading{}, ErrNoData
	}
	m.pending = false

	noise := m.cfg.Noise * math.Sin(float64(m.triggers)*0.7)
	return Reading{
		GasOhm:  m.resistance + noise,
		TempC:   float64(m.lastTemp),
		HumPct:  40.0,
		PressPa: 101325.0,
		Status:  0xB0,
	}, nil
}

// Deinit resets the simulated channel. Idempotent.
func (m *Mock) Deinit() error {
	m.inited = false
	m.pending = false
	return nil
}

// target is the steady-state resistance for a set-point: hotter element,
// lower resistance.
func (m *Mock) target(tempC int) float64 {
	return m.cfg.BaseOhm - m.cfg.TempCoeff*float64(tempC)
}
