package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/itohio/gomox/pkg/sensor"
)

// Run modes. Each mode reproduces one acquisition experiment end to end.
const (
	ModeSpectral = "spectral" // square wave, FFT+PEAK per full window
	ModeRatio    = "ratio"    // square wave, high/low resistance ratio per period
	ModeCycle    = "cycle"    // blockwise square wave, hysteresis vector + rolling FFT
	ModeProfile  = "profile"  // stepped temperature profile, mirror-difference vector
	ModeSweep    = "sweep"    // swept square wave, raw records per segment
	ModeRaw      = "raw"      // constant set-point, raw records only
)

// Config represents the application configuration.
type Config struct {
	Serial     SerialConfig         `yaml:"serial"`
	Channels   []int                `yaml:"channels"`
	Measure    sensor.MeasureConfig `yaml:"measure"`
	Mode       string               `yaml:"mode"`
	Sampling   SamplingConfig       `yaml:"sampling"`
	Modulation ModulationConfig     `yaml:"modulation"`
	FFT        FFTConfig            `yaml:"fft"`
	Ratio      RatioConfig          `yaml:"ratio"`
	Cycle      CycleConfig          `yaml:"cycle"`
	Profile    ProfileConfig        `yaml:"profile"`
	Sweep      SweepConfig          `yaml:"sweep"`
	Raw        RawConfig            `yaml:"raw"`
	Output     OutputConfig         `yaml:"output"`
	Log        LogConfig            `yaml:"log"`
	Mock       sensor.MockConfig    `yaml:"mock"`
}

// SerialConfig contains the bridge serial port configuration.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// SamplingConfig contains the scheduler cadence and heater-on time. The
// heater duration is kept small relative to the tick so timing holds.
type SamplingConfig struct {
	TickMS      int64 `yaml:"tick_ms"`
	HeaterDurMS int   `yaml:"heater_duration_ms"`
}

// ModulationConfig describes the heater waveform. Kind selects the variant
// at configuration time: "square" uses LowC/HighC/HalfPeriodMS, "profile"
// uses Profile (one entry per sample, typically palindromic).
type ModulationConfig struct {
	Kind         string `yaml:"kind"`
	LowC         int    `yaml:"low_c"`
	HighC        int    `yaml:"high_c"`
	HalfPeriodMS int64  `yaml:"half_period_ms"`
	Profile      []int  `yaml:"profile"`
}

// FFTConfig contains spectral-run parameters.
type FFTConfig struct {
	WindowSamples int  `yaml:"window_samples"`
	WarmupWindows int  `yaml:"warmup_windows"`
	IncludeDC     bool `yaml:"include_dc"`
	Peaks         int  `yaml:"peaks"`
}

// RatioConfig contains ratio-run parameters.
type RatioConfig struct {
	WarmupCycles int `yaml:"warmup_cycles"`
}

// CycleConfig contains blockwise hysteresis-run parameters. The rolling
// spectral window spans FFTCycles cycles and is re-emitted every FFTStride
// cycles.
type CycleConfig struct {
	FFTCycles    int `yaml:"fft_cycles"`
	FFTStride    int `yaml:"fft_stride"`
	WarmupCycles int `yaml:"warmup_cycles"`
}

// ProfileConfig contains stepped-profile-run parameters.
type ProfileConfig struct {
	WarmupCycles int `yaml:"warmup_cycles"`
}

// SweepConfig contains the swept square-wave schedule: half-periods to
// visit, and how many cycles to warm up and measure at each.
type SweepConfig struct {
	HalfListMS     []int64 `yaml:"half_list_ms"`
	WarmupCycles   int     `yaml:"warmup_cycles"`
	MeasuredCycles int     `yaml:"measured_cycles"`
}

// RawConfig contains diagnostic-run parameters.
type RawConfig struct {
	HeaterTempC   int   `yaml:"heater_temp_c"`
	HeaterDurMS   int   `yaml:"heater_duration_ms"`
	SampleMS      int64 `yaml:"sample_ms"`
	WarmupSamples int   `yaml:"warmup_samples"`
}

// OutputConfig controls optional record output.
type OutputConfig struct {
	PrintRaw bool `yaml:"print_raw"` // emit raw records alongside spectral output
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a default configuration with the dual-sensor spectral
// experiment's values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port: "/dev/ttyACM0",
			Baud: 115200,
		},
		Channels: []int{0x76, 0x77},
		Measure: sensor.MeasureConfig{
			OversampleTemp:  1,
			OversampleHum:   1,
			OversamplePress: 1,
			FilterOff:       true,
		},
		Mode: ModeSpectral,
		Sampling: SamplingConfig{
			TickMS:      50, // 4 samples per 200ms wave -> Fs = 20Hz
			HeaterDurMS: 10,
		},
		Modulation: ModulationConfig{
			Kind:         "square",
			LowC:         275,
			HighC:        325,
			HalfPeriodMS: 100,
			Profile:      []int{100, 175, 250, 325, 325, 250, 175, 100},
		},
		FFT: FFTConfig{
			WindowSamples: 40, // 2 seconds of data at 50ms ticks
			WarmupWindows: 2,
			IncludeDC:     true,
			Peaks:         3,
		},
		Ratio: RatioConfig{
			WarmupCycles: 2,
		},
		Cycle: CycleConfig{
			FFTCycles:    16,
			FFTStride:    10,
			WarmupCycles: 2,
		},
		Profile: ProfileConfig{
			WarmupCycles: 2,
		},
		Sweep: SweepConfig{
			HalfListMS:     []int64{50, 75, 100, 125, 150, 200, 250, 300, 400, 500},
			WarmupCycles:   3,
			MeasuredCycles: 15,
		},
		Raw: RawConfig{
			HeaterTempC:   250,
			HeaterDurMS:   100,
			SampleMS:      200,
			WarmupSamples: 10,
		},
		Output: OutputConfig{
			PrintRaw: false,
		},
		Log: LogConfig{
			Level: "info",
		},
		Mock: sensor.MockConfig{
			BaseOhm:   250000,
			TempCoeff: 300,
			Lag:       0.3,
			Noise:     500,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects configurations the engine cannot run.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeSpectral, ModeRatio, ModeCycle, ModeProfile, ModeSweep, ModeRaw:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}

	if len(c.Channels) == 0 {
		return fmt.Errorf("no channels configured")
	}
	if c.Sampling.TickMS <= 0 {
		return fmt.Errorf("tick_ms must be positive, got %d", c.Sampling.TickMS)
	}

	switch c.Modulation.Kind {
	case "square":
		if c.Modulation.HalfPeriodMS <= 0 {
			return fmt.Errorf("half_period_ms must be positive, got %d", c.Modulation.HalfPeriodMS)
		}
	case "profile":
		if len(c.Modulation.Profile) == 0 {
			return fmt.Errorf("profile modulation needs a non-empty temperature table")
		}
	default:
		return fmt.Errorf("unknown modulation kind %q", c.Modulation.Kind)
	}

	if c.Mode == ModeCycle && c.Modulation.HalfPeriodMS%c.Sampling.TickMS != 0 {
		return fmt.Errorf("cycle mode needs half_period_ms (%d) divisible by tick_ms (%d)",
			c.Modulation.HalfPeriodMS, c.Sampling.TickMS)
	}
	if c.Mode == ModeSweep && len(c.Sweep.HalfListMS) == 0 {
		return fmt.Errorf("sweep mode needs a non-empty half_list_ms")
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if
// missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = def.Serial.Baud
	}

	if len(c.Channels) == 0 {
		c.Channels = def.Channels
	}
	if c.Mode == "" {
		c.Mode = def.Mode
	}

	if c.Sampling.TickMS == 0 {
		c.Sampling.TickMS = def.Sampling.TickMS
	}
	if c.Sampling.HeaterDurMS == 0 {
		c.Sampling.HeaterDurMS = def.Sampling.HeaterDurMS
	}

	if c.Modulation.Kind == "" {
		c.Modulation.Kind = def.Modulation.Kind
	}
	if c.Modulation.LowC == 0 {
		c.Modulation.LowC = def.Modulation.LowC
	}
	if c.Modulation.HighC == 0 {
		c.Modulation.HighC = def.Modulation.HighC
	}
	if c.Modulation.HalfPeriodMS == 0 {
		c.Modulation.HalfPeriodMS = def.Modulation.HalfPeriodMS
	}
	if len(c.Modulation.Profile) == 0 {
		c.Modulation.Profile = def.Modulation.Profile
	}

	if c.FFT.WindowSamples == 0 {
		c.FFT.WindowSamples = def.FFT.WindowSamples
	}
	if c.FFT.Peaks == 0 {
		c.FFT.Peaks = def.FFT.Peaks
	}

	if c.Cycle.FFTCycles == 0 {
		c.Cycle.FFTCycles = def.Cycle.FFTCycles
	}
	if c.Cycle.FFTStride == 0 {
		c.Cycle.FFTStride = def.Cycle.FFTStride
	}

	if len(c.Sweep.HalfListMS) == 0 {
		c.Sweep.HalfListMS = def.Sweep.HalfListMS
	}
	if c.Sweep.MeasuredCycles == 0 {
		c.Sweep.MeasuredCycles = def.Sweep.MeasuredCycles
	}

	if c.Raw.HeaterTempC == 0 {
		c.Raw.HeaterTempC = def.Raw.HeaterTempC
	}
	if c.Raw.HeaterDurMS == 0 {
		c.Raw.HeaterDurMS = def.Raw.HeaterDurMS
	}
	if c.Raw.SampleMS == 0 {
		c.Raw.SampleMS = def.Raw.SampleMS
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}

	if c.Mock.BaseOhm == 0 {
		c.Mock.BaseOhm = def.Mock.BaseOhm
	}
	if c.Mock.TempCoeff == 0 {
		c.Mock.TempCoeff = def.Mock.TempCoeff
	}
	if c.Mock.Lag == 0 {
		c.Mock.Lag = def.Mock.Lag
	}
}
