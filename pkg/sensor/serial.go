package sensor

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Serial drives one sensor channel through the shared bridge bus. The bridge
// speaks a line protocol, one reply line per command:
//
//	I,<addr>                          -> OK,<chip_id>        identify
//	C,<addr>,<ot>,<oh>,<op>,<filter>  -> OK                  configure
//	D,<addr>                          -> <micros>            measurement duration
//	M,<addr>,<temp_C>,<dur_ms>        -> OK                  trigger forced measurement
//	R,<addr>                          -> <gas>,<temp>,<hum>,<press>,<status>
//	                                   | NODATA
//
// Any command may answer ERR[,<detail>]. Addresses are the sensor's I2C
// addresses behind the bridge, e.g. 0x76 and 0x77.
type Serial struct {
	bus  *Bus
	addr uint8

	// measDur caches the bridge-reported measurement duration for the
	// current configuration; refreshed by Configure.
	measDur time.Duration
}

// NewSerial creates a channel device for the sensor at addr, borrowing the
// shared bus. The caller keeps ownership of the bus and closes it once.
func NewSerial(bus *Bus, addr uint8) *Serial {
	return &Serial{bus: bus, addr: addr}
}

// Addr returns the channel's bus address.
func (d *Serial) Addr() uint8 {
	return d.addr
}

// Init identifies the sensor behind the bridge.
func (d *Serial) Init() error {
	reply, err := d.bus.roundTrip(fmt.Sprintf("I,0x%02X", d.addr))
	if err != nil {
		return fmt.Errorf("init 0x%02X: %w", d.addr, err)
	}
	if !strings.HasPrefix(reply, "OK") {
		return fmt.Errorf("init 0x%02X: %w: %s", d.addr, ErrCommFail, reply)
	}
	return nil
}

// Configure applies oversampling/filter settings and refreshes the cached
// measurement duration.
func (d *Serial) Configure(cfg MeasureConfig) error {
	filter := 1
	if cfg.FilterOff {
		filter = 0
	}
	cmd := fmt.Sprintf("C,0x%02X,%d,%d,%d,%d",
		d.addr, cfg.OversampleTemp, cfg.OversampleHum, cfg.OversamplePress, filter)

	reply, err := d.bus.roundTrip(cmd)
	if err != nil {
		return fmt.Errorf("configure 0x%02X: %w", d.addr, err)
	}
	if reply != "OK" {
		return fmt.Errorf("configure 0x%02X: rejected: %s", d.addr, reply)
	}

	reply, err = d.bus.roundTrip(fmt.Sprintf("D,0x%02X", d.addr))
	if err != nil {
		return fmt.Errorf("measurement duration 0x%02X: %w", d.addr, err)
	}
	micros, err := strconv.ParseInt(reply, 10, 64)
	if err != nil {
		return fmt.Errorf("measurement duration 0x%02X: invalid reply %q: %w", d.addr, reply, err)
	}
	d.measDur = time.Duration(micros) * time.Microsecond
	return nil
}

// TriggerForced arms the heater and starts one forced-mode measurement.
func (d *Serial) TriggerForced(heaterTempC, heaterDurMS int) error {
	reply, err := d.bus.roundTrip(fmt.Sprintf("M,0x%02X,%d,%d", d.addr, heaterTempC, heaterDurMS))
	if err != nil {
		return err
	}
	if reply != "OK" {
		return fmt.Errorf("%w: trigger 0x%02X: %s", ErrCommFail, d.addr, reply)
	}
	return nil
}

// MeasurementDuration returns the bridge-reported duration for the current
// configuration, heater time excluded.
func (d *Serial) MeasurementDuration() time.Duration {
	return d.measDur
}

// ReadResult reads back the completed measurement.
func (d *Serial) ReadResult() (Reading, error) {
	reply, err := d.bus.roundTrip(fmt.Sprintf("R,0x%02X", d.addr))
	if err != nil {
		return Reading{}, err
	}
	return parseReading(reply)
}

// Deinit releases the channel. The bus itself stays open: it is owned by
// the caller and closed once for all channels.
func (d *Serial) Deinit() error {
	return nil
}

// parseReading parses a bridge result line into a Reading.
// Format: gas_ohm,temp_C,hum_pct,press_Pa,status
// Example: 152340.25,24.81,41.20,101325.00,0xb0
func parseReading(line string) (Reading, error) {
	if line == "NODATA" {
		return Reading{}, ErrNoData
	}
	if strings.HasPrefix(line, "ERR") {
		return Reading{}, fmt.Errorf("%w: %s", ErrCommFail, line)
	}

	parts := strings.Split(line, ",")
	if len(parts) != 5 {
		return Reading{}, fmt.Errorf("%w: invalid result line: expected 5 comma-separated values, got %d", ErrCommFail, len(parts))
	}

	gas, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: invalid gas resistance: %v", ErrCommFail, err)
	}
	temp, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: invalid temperature: %v", ErrCommFail, err)
	}
	hum, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: invalid humidity: %v", ErrCommFail, err)
	}
	press, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: invalid pressure: %v", ErrCommFail, err)
	}
	status, err := strconv.ParseUint(strings.TrimPrefix(parts[4], "0x"), 16, 8)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: invalid status: %v", ErrCommFail, err)
	}

	return Reading{
		GasOhm:  gas,
		TempC:   temp,
		HumPct:  hum,
		PressPa: press,
		Status:  uint8(status),
	}, nil
}
