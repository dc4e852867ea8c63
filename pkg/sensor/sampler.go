package sensor

import "time"

// Policy resolves a failed sample.
type Policy int

const (
	// HoldLast substitutes the channel's previous accepted value. Used
	// where window continuity matters more than value fidelity, e.g.
	// spectral windows: a NaN or gap must never reach the analyzer.
	HoldLast Policy = iota
	// DropTick discards the tick's contribution entirely, without
	// advancing any accumulator count. Used for phase-labeled averaging.
	DropTick
)

// Sampler drives one channel through one forced measurement per tick. It is
// the only point in the engine that performs blocking I/O; the wait is
// bounded by the driver-reported measurement duration plus the heater-on
// time.
type Sampler struct {
	dev    Device
	addr   uint8
	policy Policy

	last    float64
	hasLast bool

	// Wait blocks for the measurement window. Defaults to time.Sleep;
	// tests may replace it.
	Wait func(time.Duration)
}

// NewSampler creates a sampler for dev at addr with the given failure
// policy.
func NewSampler(dev Device, addr uint8, policy Policy) *Sampler {
	return &Sampler{dev: dev, addr: addr, policy: policy, Wait: time.Sleep}
}

// Addr returns the channel's bus address.
func (s *Sampler) Addr() uint8 {
	return s.addr
}

// Device returns the underlying channel device.
func (s *Sampler) Device() Device {
	return s.dev
}

// Sample performs one forced measurement at the given heater set-point and
// resolves failures per the configured policy.
//
// valid reports whether the transaction itself succeeded: raw records are
// only emitted for valid ticks. ok reports whether gas carries a usable
// value for windows and accumulators: under HoldLast a failed tick still
// yields ok=true with the previous accepted value (zero before the first
// success, matching a freshly zeroed window); under DropTick a failed tick
// yields ok=false and contributes nothing.
func (s *Sampler) Sample(heaterTempC, heaterDurMS int) (gas float64, rd Reading, valid, ok bool) {
	rd, err := s.measure(heaterTempC, heaterDurMS)
	if err == nil {
		s.last = rd.GasOhm
		s.hasLast = true
		return rd.GasOhm, rd, true, true
	}

	// CommFail resolution. The failure never propagates further; the next
	// attempt is the next scheduled tick.
	if s.policy == HoldLast {
		return s.last, Reading{}, false, true
	}
	return 0, Reading{}, false, false
}

// measure runs the trigger/wait/read sequence for one forced measurement.
func (s *Sampler) measure(heaterTempC, heaterDurMS int) (Reading, error) {
	if err := s.dev.TriggerForced(heaterTempC, heaterDurMS); err != nil {
		return Reading{}, err
	}

	s.Wait(s.dev.MeasurementDuration() + time.Duration(heaterDurMS)*time.Millisecond)

	return s.dev.ReadResult()
}
