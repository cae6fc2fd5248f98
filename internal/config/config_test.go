package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	for _, k := range []string{"LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT", "TUNEFILL_ROOT", "TUNEFILL_BACKEND", "RUBBERBAND_PATH"} {
		t.Setenv(k, "")
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Fill.Root != "generated_tunable" {
		t.Fatalf("expected default root, got %q", cfg.Fill.Root)
	}
	if cfg.Fill.MinPitch != 24 || cfg.Fill.MaxPitch != 108 {
		t.Fatalf("expected default range [24, 108), got [%d, %d)", cfg.Fill.MinPitch, cfg.Fill.MaxPitch)
	}
	if cfg.Fill.Extension != ".wav" {
		t.Fatalf("expected .wav extension, got %q", cfg.Fill.Extension)
	}
	if cfg.Fill.Jobs != 1 {
		t.Fatalf("expected sequential default, got %d jobs", cfg.Fill.Jobs)
	}
	if cfg.Shifter.Backend != "rubberband" || cfg.Shifter.Rubberband.Path != "rubberband" {
		t.Fatalf("unexpected shifter defaults: %+v", cfg.Shifter)
	}
	if cfg.Logging.Output != "stdout" {
		t.Fatalf("expected log output on stdout, got %q", cfg.Logging.Output)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_MergesDefaultsAndEnv(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "tunefill.json")
	data := `{
		"logging": {"level": "debug"},
		"fill": {"min_pitch": 36, "jobs": 4},
		"shifter": {"rubberband": {"extra_args": ["--fine"]}}
	}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("LOG_OUTPUT", "stderr")
	t.Setenv("TUNEFILL_ROOT", "/srv/samples")
	t.Setenv("TUNEFILL_BACKEND", "")
	t.Setenv("RUBBERBAND_PATH", "/opt/bin/rubberband")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected LOG_LEVEL to override config, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Output != "stderr" {
		t.Fatalf("expected LOG_OUTPUT to override default, got %q", cfg.Logging.Output)
	}
	if cfg.Fill.MinPitch != 36 {
		t.Fatalf("expected min pitch 36, got %d", cfg.Fill.MinPitch)
	}
	if cfg.Fill.MaxPitch != 108 {
		t.Fatalf("expected default max pitch to be preserved, got %d", cfg.Fill.MaxPitch)
	}
	if cfg.Fill.Jobs != 4 {
		t.Fatalf("expected 4 jobs, got %d", cfg.Fill.Jobs)
	}
	if cfg.Fill.Root != "/srv/samples" {
		t.Fatalf("expected root from env, got %q", cfg.Fill.Root)
	}
	if cfg.Shifter.Rubberband.Path != "/opt/bin/rubberband" {
		t.Fatalf("expected rubberband path from env, got %q", cfg.Shifter.Rubberband.Path)
	}
	if len(cfg.Shifter.Rubberband.ExtraArgs) != 1 || cfg.Shifter.Rubberband.ExtraArgs[0] != "--fine" {
		t.Fatalf("expected extra args from file, got %v", cfg.Shifter.Rubberband.ExtraArgs)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoad_LeavesValidationToCaller(t *testing.T) {
	for _, k := range []string{"LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT", "TUNEFILL_ROOT", "TUNEFILL_BACKEND", "RUBBERBAND_PATH"} {
		t.Setenv(k, "")
	}
	path := filepath.Join(t.TempDir(), "tunefill.json")
	if err := os.WriteFile(path, []byte(`{"fill": {"max_pitch": 200}}`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Fill.MaxPitch != 200 {
		t.Fatalf("expected max pitch 200 from file, got %d", cfg.Fill.MaxPitch)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for max pitch 200")
	}

	cfg.Fill.MaxPitch = 100
	if err := cfg.Validate(); err != nil {
		t.Fatalf("override should make config valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		ok     bool
	}{
		{"defaults", func(*AppConfig) {}, true},
		{"empty root", func(c *AppConfig) { c.Fill.Root = " " }, false},
		{"inverted range", func(c *AppConfig) { c.Fill.MinPitch, c.Fill.MaxPitch = 60, 60 }, false},
		{"range above midi", func(c *AppConfig) { c.Fill.MaxPitch = 129 }, false},
		{"negative min", func(c *AppConfig) { c.Fill.MinPitch = -1 }, false},
		{"extension without dot", func(c *AppConfig) { c.Fill.Extension = "wav" }, false},
		{"zero jobs", func(c *AppConfig) { c.Fill.Jobs = 0 }, false},
		{"unknown backend", func(c *AppConfig) { c.Shifter.Backend = "sox" }, false},
		{"empty rubberband path", func(c *AppConfig) { c.Shifter.Rubberband.Path = "" }, false},
		{"negative timeout", func(c *AppConfig) { c.Shifter.Rubberband.TimeoutSeconds = -1 }, false},
		{"varispeed", func(c *AppConfig) { c.Shifter.Backend = "varispeed" }, true},
		{"varispeed linear", func(c *AppConfig) {
			c.Shifter.Backend = "varispeed"
			c.Shifter.Varispeed.Quality = "linear"
		}, true},
		{"varispeed bad quality", func(c *AppConfig) {
			c.Shifter.Backend = "varispeed"
			c.Shifter.Varispeed.Quality = "ultra"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
