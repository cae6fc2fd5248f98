// Package shifter synthesizes a pitch-shifted copy of a sample file.
package shifter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Shifter writes dst as src played factor times faster: every frequency is
// multiplied by factor and the duration divided by it.
type Shifter interface {
	Name() string
	Shift(ctx context.Context, src, dst string, factor float64) error
}

// Config carries the settings of every backend; each backend reads its own.
type Config struct {
	RubberbandPath string
	RubberbandArgs []string
	Timeout        time.Duration
	Quality        string
}

// Factory builds a backend from cfg.
type Factory func(cfg Config) (Shifter, error)

// Registry 后端注册表
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// DefaultRegistry knows the rubberband and varispeed backends.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("rubberband", func(cfg Config) (Shifter, error) {
		return NewRubberband(cfg.RubberbandPath, cfg.RubberbandArgs, cfg.Timeout)
	})
	r.Register("varispeed", func(cfg Config) (Shifter, error) {
		return NewVarispeed(cfg.Quality)
	})
	return r
}

func (r *Registry) Register(name string, factory Factory) {
	r.factories[strings.ToLower(name)] = factory
}

func (r *Registry) New(name string, cfg Config) (Shifter, error) {
	factory, ok := r.factories[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrBackendNotFound, name, strings.Join(r.Names(), ", "))
	}
	return factory(cfg)
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// 错误定义
var (
	ErrBackendNotFound   = errors.New("shifter backend not found")
	ErrNoOutput          = errors.New("shifter produced no output file")
	ErrUnsupportedFormat = errors.New("unsupported sample format")
)

// checkOutput verifies that a backend actually left a non-empty file at path.
func checkOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNoOutput, path)
		}
		return err
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", ErrNoOutput, path)
	}
	return nil
}
