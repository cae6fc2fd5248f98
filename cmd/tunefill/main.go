// Command tunefill completes pitch-indexed sample sets.
//
// Every subdirectory of the sample root is one set of files named
// <pitch>.wav. For each pitch in [min, max) that has no file, the nearest
// existing sample is pitch-shifted with rubberband (or the built-in varispeed
// backend) and written next to it.
//
// Usage:
//
//	tunefill [flags]
//
// Examples:
//
//	tunefill -root generated_tunable
//	tunefill -dry-run -min 36 -max 96
//	tunefill -backend varispeed -jobs 4 -progress
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/liuscraft/tunefill/internal/config"
	"github.com/liuscraft/tunefill/internal/filler"
	"github.com/liuscraft/tunefill/internal/logging"
	"github.com/liuscraft/tunefill/internal/shifter"
)

const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130
)

type cliFlags struct {
	configPath  string
	root        string
	minPitch    int
	maxPitch    int
	backend     string
	rubberband  string
	jobs        int
	dryRun      bool
	skipInvalid bool
	progress    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tunefill", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var f cliFlags
	fs.StringVar(&f.configPath, "config", config.DefaultPath, "config file path")
	fs.StringVar(&f.root, "root", "", "sample root holding one directory per set")
	fs.IntVar(&f.minPitch, "min", 0, "lowest pitch to fill (inclusive)")
	fs.IntVar(&f.maxPitch, "max", 0, "pitch to stop at (exclusive)")
	fs.StringVar(&f.backend, "backend", "", "shifter backend: rubberband or varispeed")
	fs.StringVar(&f.rubberband, "rubberband", "", "path to the rubberband binary")
	fs.IntVar(&f.jobs, "jobs", 0, "number of sets processed concurrently")
	fs.BoolVar(&f.dryRun, "dry-run", false, "only print what would be generated")
	fs.BoolVar(&f.skipInvalid, "skip-invalid", false, "skip files not named <pitch>.wav instead of failing the set")
	fs.BoolVar(&f.progress, "progress", false, "show a progress bar on stderr")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tunefill [flags]\n\n")
		fmt.Fprintf(stderr, "Fills missing <pitch>.wav files in every sample set under the root.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitFailure
	}

	appConfig, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return exitFailure
	}
	applyFlags(fs, &f, appConfig)
	if err := appConfig.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid config: %v\n", err)
		return exitFailure
	}

	if err := logging.Init(logging.Config{
		Level:  appConfig.Logging.Level,
		Format: appConfig.Logging.Format,
		Output: appConfig.Logging.Output,
	}); err != nil {
		fmt.Fprintf(stderr, "Failed to init logger: %v\n", err)
		return exitFailure
	}
	defer logging.Sync()

	logging.SetRunID(logging.NewRunID())

	s, err := shifter.DefaultRegistry().New(appConfig.Shifter.Backend, shifter.Config{
		RubberbandPath: appConfig.Shifter.Rubberband.Path,
		RubberbandArgs: appConfig.Shifter.Rubberband.ExtraArgs,
		Timeout:        time.Duration(appConfig.Shifter.Rubberband.TimeoutSeconds) * time.Second,
		Quality:        appConfig.Shifter.Varispeed.Quality,
	})
	if err != nil {
		if !appConfig.Fill.DryRun {
			logging.Errorf("Failed to create shifter: %v", err)
			return exitFailure
		}
		// planning does not need a working backend
		logging.Warnf("Shifter unavailable, continuing dry run: %v", err)
	} else {
		logging.Infof("Using %s backend", s.Name())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fill := filler.New(s, filler.Options{
		MinPitch:    appConfig.Fill.MinPitch,
		MaxPitch:    appConfig.Fill.MaxPitch,
		Extension:   appConfig.Fill.Extension,
		SkipInvalid: appConfig.Fill.SkipInvalid,
		DryRun:      appConfig.Fill.DryRun,
		Jobs:        appConfig.Fill.Jobs,
	})

	var bar *barProgress
	if f.progress {
		bar = newBarProgress(stderr)
		fill.SetProgress(bar)
	}

	report, err := fill.Run(ctx, appConfig.Fill.Root)
	if bar != nil {
		bar.Wait()
	}
	if report != nil {
		printSummary(stdout, report)
	}

	switch {
	case errors.Is(err, context.Canceled):
		logging.Warnf("Interrupted")
		return exitInterrupted
	case err != nil:
		logging.Errorf("Run failed: %v", err)
		return exitFailure
	case report.Err() != nil:
		logging.Errorf("Finished with errors: %v", report.Err())
		return exitFailure
	}
	return exitOK
}

// applyFlags overrides config values with the flags given on the command line.
func applyFlags(fs *flag.FlagSet, f *cliFlags, cfg *config.AppConfig) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "root":
			cfg.Fill.Root = f.root
		case "min":
			cfg.Fill.MinPitch = f.minPitch
		case "max":
			cfg.Fill.MaxPitch = f.maxPitch
		case "backend":
			cfg.Shifter.Backend = f.backend
		case "rubberband":
			cfg.Shifter.Rubberband.Path = f.rubberband
		case "jobs":
			cfg.Fill.Jobs = f.jobs
		case "dry-run":
			cfg.Fill.DryRun = f.dryRun
		case "skip-invalid":
			cfg.Fill.SkipInvalid = f.skipInvalid
		}
	})
}
