package main

import (
	"testing"

	"github.com/cjeanneret/SrmGo/internal/config"
)

func TestValidateOverrides(t *testing.T) {
	cases := []struct {
		name    string
		o       overrides
		wantErr bool
	}{
		{"all zero", overrides{}, false},
		{"valid rpm", overrides{RPM: 800}, false},
		{"negative rpm", overrides{RPM: -10}, true},
		{"valid pattern", overrides{Pattern: "overlap"}, false},
		{"bad pattern", overrides{Pattern: "spiral"}, true},
		{"valid driver", overrides{Driver: "rpio"}, false},
		{"bad driver", overrides{Driver: "bitbang"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateOverrides(tc.o)
			if tc.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	base := func() *config.Config {
		return &config.Config{
			Motor: config.MotorConfig{
				Pin1: 17, Pin2: 27, Pin3: 22,
				Pattern:  "simple",
				SpeedRPM: 500,
			},
			Defaults: config.DefaultsConfig{Driver: "mock"},
		}
	}

	t.Run("zero values leave config alone", func(t *testing.T) {
		cfg := base()
		applyOverrides(cfg, overrides{})
		if cfg.Motor.SpeedRPM != 500 || cfg.Motor.Pattern != "simple" || cfg.Defaults.Driver != "mock" {
			t.Errorf("config changed by empty overrides: %+v", cfg)
		}
	})

	t.Run("non-zero values win", func(t *testing.T) {
		cfg := base()
		applyOverrides(cfg, overrides{RPM: 900, Pattern: "overlap", Driver: "serial"})
		if cfg.Motor.SpeedRPM != 900 {
			t.Errorf("speed_rpm = %d, want 900", cfg.Motor.SpeedRPM)
		}
		if cfg.Motor.Pattern != "overlap" {
			t.Errorf("pattern = %q, want overlap", cfg.Motor.Pattern)
		}
		if cfg.Defaults.Driver != "serial" {
			t.Errorf("driver = %q, want serial", cfg.Defaults.Driver)
		}
	})
}
