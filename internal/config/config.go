package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MotorConfig holds the wiring and pattern selection for the motor.
type MotorConfig struct {
	Pin1         int    `yaml:"pin1"`
	Pin2         int    `yaml:"pin2"`
	Pin3         int    `yaml:"pin3"`
	Pattern      string `yaml:"pattern"`       // "simple" or "overlap"; anything else means simple
	SpeedRPM     int    `yaml:"speed_rpm"`     // target electrical-cycle RPM (default 500)
	SpeedControl bool   `yaml:"speed_control"` // gate steps to the target speed
}

// SerialConfig describes the serial pin bridge (driver: serial).
type SerialConfig struct {
	Device string `yaml:"device"` // e.g. "/dev/ttyACM0"
	Baud   int    `yaml:"baud"`   // default 115200
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	Driver         string `yaml:"driver"`           // "mock", "rpio" or "serial" (default mock)
	DebugLevel     int    `yaml:"debug_level"`      // 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	PollIntervalUs int    `yaml:"poll_interval_us"` // sleep between step polls in the demo loop
}

// Config aggregates all application configuration.
type Config struct {
	Motor    MotorConfig    `yaml:"motor"`
	Serial   SerialConfig   `yaml:"serial"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// ValidateConfigPath checks that path points at a .yaml file inside a
// configs/ directory, with no traversal segments. The binary only ever
// reads operator-provided config from there.
func ValidateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("config path must not contain traversal segments: %s", path)
	}
	if filepath.Ext(path) != ".yaml" {
		return fmt.Errorf("config file must have a .yaml extension: %s", path)
	}
	if filepath.Base(filepath.Dir(path)) != "configs" {
		return fmt.Errorf("config file must live in a configs/ directory: %s", path)
	}
	return nil
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// Basic validation
	if cfg.Motor.Pin1 <= 0 || cfg.Motor.Pin2 <= 0 || cfg.Motor.Pin3 <= 0 {
		return nil, fmt.Errorf("motor needs three positive pin numbers, got %d/%d/%d",
			cfg.Motor.Pin1, cfg.Motor.Pin2, cfg.Motor.Pin3)
	}
	if cfg.Motor.Pin1 == cfg.Motor.Pin2 || cfg.Motor.Pin1 == cfg.Motor.Pin3 || cfg.Motor.Pin2 == cfg.Motor.Pin3 {
		return nil, fmt.Errorf("motor pins must be distinct, got %d/%d/%d",
			cfg.Motor.Pin1, cfg.Motor.Pin2, cfg.Motor.Pin3)
	}
	if cfg.Motor.SpeedRPM < 0 {
		return nil, fmt.Errorf("speed_rpm must be > 0, got %d", cfg.Motor.SpeedRPM)
	}
	if cfg.Motor.SpeedRPM == 0 {
		cfg.Motor.SpeedRPM = 500 // library default
	}

	switch cfg.Defaults.Driver {
	case "":
		cfg.Defaults.Driver = "mock"
	case "mock", "rpio", "serial":
	default:
		return nil, fmt.Errorf("driver must be mock, rpio or serial, got %q", cfg.Defaults.Driver)
	}
	if cfg.Defaults.Driver == "serial" && cfg.Serial.Device == "" {
		return nil, fmt.Errorf("serial.device is required with driver: serial")
	}
	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = 115200
	}

	if cfg.Defaults.DebugLevel < 0 || cfg.Defaults.DebugLevel > 4 {
		return nil, fmt.Errorf("debug_level must be between 0 and 4, got %d", cfg.Defaults.DebugLevel)
	}
	if cfg.Defaults.PollIntervalUs <= 0 {
		cfg.Defaults.PollIntervalUs = 200 // well under one step at any sane speed
	}

	return &cfg, nil
}

// PollInterval returns the sleep between step polls in the demo loop.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Defaults.PollIntervalUs) * time.Microsecond
}
