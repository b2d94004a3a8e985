package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cjeanneret/SrmGo/internal/config"
	"github.com/cjeanneret/SrmGo/internal/debug"
	"github.com/cjeanneret/SrmGo/internal/hw/clock"
	"github.com/cjeanneret/SrmGo/internal/hw/gpio"
	"github.com/cjeanneret/SrmGo/internal/hw/srm"
	"github.com/cjeanneret/SrmGo/internal/logic/spin"
)

func main() {
	// CLI flags
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	rpm := flag.Int("rpm", 0, "override target speed in RPM (0 = use config)")
	pattern := flag.String("pattern", "", "override phase pattern: simple or overlap")
	driver := flag.String("driver", "", "override pin driver: mock, rpio or serial")
	backward := flag.Bool("backward", false, "spin backward instead of forward")
	spinFor := flag.Duration("spin", 5*time.Second, "how long to spin energized")
	coastFor := flag.Duration("coast", 0, "how long to coast released after spinning")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	if err := config.ValidateConfigPath(*cfgPath); err != nil {
		log.Fatalf("invalid config path: %v", err)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	// Validate CLI overrides (zero values mean "use config default")
	ovr := overrides{RPM: *rpm, Pattern: *pattern, Driver: *driver}
	if err := validateOverrides(ovr); err != nil {
		log.Fatalf("invalid CLI override: %v", err)
	}
	applyOverrides(cfg, ovr)

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)
	debug.Value("Pin driver", cfg.Defaults.Driver)

	// Initialize pin driver
	drv, err := gpio.NewDriver(cfg.Defaults.Driver, cfg.Serial.Device, cfg.Serial.Baud)
	if err != nil {
		log.Fatalf("init pin driver failed: %v", err)
	}
	defer func() {
		if err := drv.Close(); err != nil {
			log.Printf("closing pin driver failed: %v", err)
		}
	}()

	// Initialize motor
	motor := srm.NewMotor(drv, clock.NewWallSource(), srm.Config{
		Pin1:         cfg.Motor.Pin1,
		Pin2:         cfg.Motor.Pin2,
		Pin3:         cfg.Motor.Pin3,
		Pattern:      srm.ParsePattern(cfg.Motor.Pattern),
		SpeedRPM:     cfg.Motor.SpeedRPM,
		SpeedControl: cfg.Motor.SpeedControl,
	})
	debug.Value("Pattern", srm.ParsePattern(cfg.Motor.Pattern))
	debug.Value("Speed (RPM)", cfg.Motor.SpeedRPM)
	debug.Value("Speed control", cfg.Motor.SpeedControl)

	direction := spin.Forward
	if *backward {
		direction = spin.Backward
	}

	runner := spin.NewRunner(motor)
	res, err := runner.Run(ctx, spin.Params{
		Direction: direction,
		SpinFor:   *spinFor,
		CoastFor:  *coastFor,
		Poll:      cfg.PollInterval(),
	})

	// Leave no phase energized on the way out.
	if relErr := motor.Release(); relErr != nil {
		log.Printf("releasing motor failed: %v", relErr)
	}

	switch {
	case errors.Is(err, context.Canceled):
		fmt.Printf("interrupted after %d spin steps, %d coast steps\n", res.SpinSteps, res.CoastSteps)
	case err != nil:
		log.Fatalf("spin run failed: %v", err)
	default:
		fmt.Printf("done: %d spin steps, %d coast steps\n", res.SpinSteps, res.CoastSteps)
	}
}

// overrides collects the CLI flags that patch the loaded config.
// Zero values mean "use config default".
type overrides struct {
	RPM     int
	Pattern string
	Driver  string
}

// validateOverrides checks that non-zero CLI overrides are within valid
// ranges. Zero values are ignored.
func validateOverrides(o overrides) error {
	if o.RPM < 0 {
		return fmt.Errorf("rpm must be > 0, got %d", o.RPM)
	}
	switch o.Pattern {
	case "", "simple", "overlap":
	default:
		return fmt.Errorf("pattern must be simple or overlap, got %q", o.Pattern)
	}
	switch o.Driver {
	case "", "mock", "rpio", "serial":
	default:
		return fmt.Errorf("driver must be mock, rpio or serial, got %q", o.Driver)
	}
	return nil
}

// applyOverrides mutates cfg with overrides. Only non-zero values are applied.
func applyOverrides(cfg *config.Config, o overrides) {
	if o.RPM > 0 {
		cfg.Motor.SpeedRPM = o.RPM
	}
	if o.Pattern != "" {
		cfg.Motor.Pattern = o.Pattern
	}
	if o.Driver != "" {
		cfg.Defaults.Driver = o.Driver
	}
}
