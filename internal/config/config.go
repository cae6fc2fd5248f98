package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

const DefaultPath = "config/tunefill.json"

type AppConfig struct {
	Logging LoggingConfig `json:"logging"`
	Fill    FillConfig    `json:"fill"`
	Shifter ShifterConfig `json:"shifter"`
}

type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	// Output is stdout, stderr or a file path.
	Output string `json:"output"`
}

// FillConfig describes the sample tree and which pitches every set must hold.
type FillConfig struct {
	Root        string `json:"root"`
	MinPitch    int    `json:"min_pitch"` // inclusive
	MaxPitch    int    `json:"max_pitch"` // exclusive
	Extension   string `json:"extension"`
	SkipInvalid bool   `json:"skip_invalid"`
	Jobs        int    `json:"jobs"`
	DryRun      bool   `json:"dry_run"`
}

type ShifterConfig struct {
	Backend    string           `json:"backend"`
	Rubberband RubberbandConfig `json:"rubberband"`
	Varispeed  VarispeedConfig  `json:"varispeed"`
}

type RubberbandConfig struct {
	Path           string   `json:"path"`
	ExtraArgs      []string `json:"extra_args"`
	TimeoutSeconds int      `json:"timeout_seconds"`
}

type VarispeedConfig struct {
	Quality string `json:"quality"`
}

func DefaultConfig() *AppConfig {
	return &AppConfig{
		Logging: LoggingConfig{Output: "stdout"},
		Fill: FillConfig{
			Root:      "generated_tunable",
			MinPitch:  24,
			MaxPitch:  108,
			Extension: ".wav",
			Jobs:      1,
		},
		Shifter: ShifterConfig{
			Backend: "rubberband",
			Rubberband: RubberbandConfig{
				Path: "rubberband",
			},
			Varispeed: VarispeedConfig{
				Quality: "balanced",
			},
		},
	}
}

// Load merges the file at path over the defaults and applies env overrides.
// A missing file yields the defaults. The result is not validated, so callers
// can layer command line flags on top before calling Validate.
func Load(path string) (*AppConfig, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.ApplyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ApplyEnv()
	return cfg, nil
}

func (c *AppConfig) ApplyEnv() {
	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		c.Logging.Level = level
	}
	if format := strings.TrimSpace(os.Getenv("LOG_FORMAT")); format != "" {
		c.Logging.Format = format
	}
	if output := strings.TrimSpace(os.Getenv("LOG_OUTPUT")); output != "" {
		c.Logging.Output = output
	}

	if root := strings.TrimSpace(os.Getenv("TUNEFILL_ROOT")); root != "" {
		c.Fill.Root = root
	}
	if backend := strings.TrimSpace(os.Getenv("TUNEFILL_BACKEND")); backend != "" {
		c.Shifter.Backend = backend
	}
	if bin := strings.TrimSpace(os.Getenv("RUBBERBAND_PATH")); bin != "" {
		c.Shifter.Rubberband.Path = bin
	}
}

func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.Fill.Root) == "" {
		return errors.New("fill.root must not be empty")
	}
	if c.Fill.MinPitch < 0 || c.Fill.MaxPitch > 128 {
		return fmt.Errorf("fill pitch range [%d, %d) must lie within [0, 128)", c.Fill.MinPitch, c.Fill.MaxPitch)
	}
	if c.Fill.MinPitch >= c.Fill.MaxPitch {
		return fmt.Errorf("fill.min_pitch (%d) must be below fill.max_pitch (%d)", c.Fill.MinPitch, c.Fill.MaxPitch)
	}
	if !strings.HasPrefix(c.Fill.Extension, ".") || len(c.Fill.Extension) < 2 {
		return fmt.Errorf("invalid fill.extension: %q", c.Fill.Extension)
	}
	if c.Fill.Jobs < 1 {
		return errors.New("fill.jobs must be at least 1")
	}

	switch strings.ToLower(strings.TrimSpace(c.Shifter.Backend)) {
	case "rubberband":
		if strings.TrimSpace(c.Shifter.Rubberband.Path) == "" {
			return errors.New("shifter.rubberband.path must not be empty")
		}
		if c.Shifter.Rubberband.TimeoutSeconds < 0 {
			return errors.New("shifter.rubberband.timeout_seconds must be non-negative")
		}
	case "varispeed":
		switch strings.ToLower(strings.TrimSpace(c.Shifter.Varispeed.Quality)) {
		case "linear", "fast", "balanced", "best":
		default:
			return fmt.Errorf("invalid shifter.varispeed.quality: %s", c.Shifter.Varispeed.Quality)
		}
	default:
		return fmt.Errorf("invalid shifter.backend: %s", c.Shifter.Backend)
	}

	return nil
}
