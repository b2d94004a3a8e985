package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfig drops a yaml file in a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validYAML = `
motor:
  pin1: 17
  pin2: 27
  pin3: 22
  pattern: overlap
  speed_rpm: 750
  speed_control: true
defaults:
  driver: mock
  debug_level: 2
`

func TestLoad_Valid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Motor.Pin1 != 17 || cfg.Motor.Pin2 != 27 || cfg.Motor.Pin3 != 22 {
		t.Errorf("pins = %d/%d/%d, want 17/27/22", cfg.Motor.Pin1, cfg.Motor.Pin2, cfg.Motor.Pin3)
	}
	if cfg.Motor.Pattern != "overlap" {
		t.Errorf("pattern = %q, want overlap", cfg.Motor.Pattern)
	}
	if cfg.Motor.SpeedRPM != 750 {
		t.Errorf("speed_rpm = %d, want 750", cfg.Motor.SpeedRPM)
	}
	if !cfg.Motor.SpeedControl {
		t.Error("speed_control should be true")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
motor:
  pin1: 17
  pin2: 27
  pin3: 22
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Motor.SpeedRPM != 500 {
		t.Errorf("default speed_rpm = %d, want 500", cfg.Motor.SpeedRPM)
	}
	if cfg.Defaults.Driver != "mock" {
		t.Errorf("default driver = %q, want mock", cfg.Defaults.Driver)
	}
	if cfg.Serial.Baud != 115200 {
		t.Errorf("default baud = %d, want 115200", cfg.Serial.Baud)
	}
	if cfg.Defaults.PollIntervalUs != 200 {
		t.Errorf("default poll_interval_us = %d, want 200", cfg.Defaults.PollIntervalUs)
	}
	if cfg.PollInterval() != 200*time.Microsecond {
		t.Errorf("PollInterval() = %v, want 200µs", cfg.PollInterval())
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			"missing pins",
			"motor:\n  pin1: 17\n",
			"positive pin",
		},
		{
			"duplicate pins",
			"motor:\n  pin1: 17\n  pin2: 17\n  pin3: 22\n",
			"distinct",
		},
		{
			"negative speed",
			"motor:\n  pin1: 17\n  pin2: 27\n  pin3: 22\n  speed_rpm: -5\n",
			"speed_rpm",
		},
		{
			"unknown driver",
			"motor:\n  pin1: 17\n  pin2: 27\n  pin3: 22\ndefaults:\n  driver: bitbang\n",
			"driver",
		},
		{
			"serial without device",
			"motor:\n  pin1: 17\n  pin2: 27\n  pin3: 22\ndefaults:\n  driver: serial\n",
			"serial.device",
		},
		{
			"debug level out of range",
			"motor:\n  pin1: 17\n  pin2: 27\n  pin3: 22\ndefaults:\n  debug_level: 7\n",
			"debug_level",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "motor: [not a mapping")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

// ---------- ValidateConfigPath ----------

func TestValidateConfigPath_Valid(t *testing.T) {
	if err := ValidateConfigPath(filepath.Join("configs", "default.yaml")); err != nil {
		t.Errorf("expected valid path, got error: %v", err)
	}
}

func TestValidateConfigPath_PathTraversal(t *testing.T) {
	cases := []string{
		"../../etc/passwd",
		"configs/../../../etc/shadow",
	}
	for _, path := range cases {
		if err := ValidateConfigPath(path); err == nil {
			t.Errorf("expected error for traversal path %q, got nil", path)
		}
	}
}

func TestValidateConfigPath_WrongExtension(t *testing.T) {
	cases := []string{
		"configs/default.json",
		"configs/default.yml",
		"configs/default",
	}
	for _, path := range cases {
		if err := ValidateConfigPath(path); err == nil {
			t.Errorf("expected error for extension in %q, got nil", path)
		}
	}
}

func TestValidateConfigPath_NotInConfigsDir(t *testing.T) {
	cases := []string{
		"other/default.yaml",
		"default.yaml",
	}
	for _, path := range cases {
		if err := ValidateConfigPath(path); err == nil {
			t.Errorf("expected error for path outside configs/ %q, got nil", path)
		}
	}
}

func TestValidateConfigPath_EmptyPath(t *testing.T) {
	if err := ValidateConfigPath(""); err == nil {
		t.Error("expected error for empty path, got nil")
	}
}
