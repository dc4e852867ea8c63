package sensor

import (
	"errors"
	"time"
)

var (
	// ErrCommFail marks a single failed measurement transaction. Non-fatal:
	// the sampler's failure policy resolves it and it never surfaces past
	// the sampler boundary.
	ErrCommFail = errors.New("sensor: communication failure")
	// ErrNoData is returned when a result is read before a measurement
	// completed or the driver reported zero valid fields.
	ErrNoData = errors.New("sensor: no data ready")
	// ErrNotConnected is returned for transactions on a closed bus.
	ErrNotConnected = errors.New("sensor: bus not open")
)

// Reading is one completed forced-mode measurement. Immutable once created.
type Reading struct {
	GasOhm  float64 // gas sensing element resistance
	TempC   float64
	HumPct  float64
	PressPa float64
	Status  uint8
}

// MeasureConfig carries the oversampling/filter settings applied at init.
// The fast defaults keep per-measurement duration small relative to the
// sampling tick.
type MeasureConfig struct {
	OversampleTemp  int  `yaml:"oversample_temp"`
	OversampleHum   int  `yaml:"oversample_hum"`
	OversamplePress int  `yaml:"oversample_press"`
	FilterOff       bool `yaml:"filter_off"`
}

// Device is the boundary to one sensor channel (real or mocked). One forced
// measurement is a TriggerForced followed by a wait of MeasurementDuration
// plus the heater-on time, then a ReadResult.
type Device interface {
	// Init identifies the sensor on the bus. Failure is fatal at startup.
	Init() error
	// Configure applies oversampling/filter settings. Failure is fatal at
	// startup.
	Configure(cfg MeasureConfig) error
	// TriggerForced arms the heater at the given set-point for the given
	// duration and starts one forced-mode measurement.
	TriggerForced(heaterTempC, heaterDurMS int) error
	// MeasurementDuration returns the driver-reported duration of one
	// measurement under the current configuration, heater time excluded.
	// Callers must not assume a fixed value.
	MeasurementDuration() time.Duration
	// ReadResult returns the completed measurement, or ErrNoData when the
	// driver reported zero valid fields.
	ReadResult() (Reading, error)
	// Deinit releases the channel. Idempotent, safe to call multiple times
	// and after a partially failed init.
	Deinit() error
}

// Ensure both channel implementations satisfy Device.
var (
	_ Device = (*Serial)(nil)
	_ Device = (*Mock)(nil)
)
