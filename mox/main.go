package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/itohio/gomox/pkg/clock"
	"github.com/itohio/gomox/pkg/config"
	"github.com/itohio/gomox/pkg/engine"
	"github.com/itohio/gomox/pkg/logger"
	"github.com/itohio/gomox/pkg/record"
	"github.com/itohio/gomox/pkg/sensor"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		modeFlag   = flag.String("mode", "", "Run mode override (spectral, ratio, cycle, profile, sweep, raw)")
		mockFlag   = flag.Bool("mock", false, "Use mocked sensors instead of the serial bridge")
		levelFlag  = flag.String("log-level", "", "Log level override (debug, info, warn, error)")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Command line overrides
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *modeFlag != "" {
		cfg.Mode = *modeFlag
	}
	if *levelFlag != "" {
		cfg.Log.Level = *levelFlag
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level)
	defer log.Sync()
	log = log.With("run_id", uuid.NewString(), "mode", cfg.Mode)

	if err := run(cfg, log, *mockFlag); err != nil {
		log.Fatalf("%v", err)
	}
}

// run wires the channels and executes the engine. All resources acquired
// here are released on every exit path; the bus closes exactly once.
func run(cfg *config.Config, log *zap.SugaredLogger, useMock bool) error {
	// Ratio averages phase-labeled accumulators, so a failed tick must not
	// advance a count. Every other mode needs gapless windows.
	policy := sensor.HoldLast
	if cfg.Mode == config.ModeRatio {
		policy = sensor.DropTick
	}

	var bus *sensor.Bus
	if useMock {
		log.Infow("using mocked sensors", "channels", len(cfg.Channels))
	} else {
		b, err := sensor.OpenBus(cfg.Serial.Port, cfg.Serial.Baud)
		if err != nil {
			return fmt.Errorf("open bus: %w", err)
		}
		defer b.Close()
		bus = b
		log.Infow("bus open", "port", cfg.Serial.Port, "baud", cfg.Serial.Baud)
	}

	channels := make([]*sensor.Sampler, 0, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		addr := uint8(ch)

		var dev sensor.Device
		if useMock {
			dev = sensor.NewMock(addr, cfg.Mock)
		} else {
			dev = sensor.NewSerial(bus, addr)
		}

		if err := dev.Init(); err != nil {
			return fmt.Errorf("init 0x%02X: %w", addr, err)
		}
		if err := dev.Configure(cfg.Measure); err != nil {
			return fmt.Errorf("configure 0x%02X: %w", addr, err)
		}
		defer dev.Deinit()

		channels = append(channels, sensor.NewSampler(dev, addr, policy))
		log.Infow("channel up",
			"addr", fmt.Sprintf("0x%02X", addr),
			"meas_dur", dev.MeasurementDuration(),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.New(cfg, clock.NewSystem(), log, record.NewWriter(os.Stdout), channels)
	if err := eng.Run(ctx); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	log.Info("done")
	return nil
}
