package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/liuscraft/tunefill/internal/logging"
	"github.com/liuscraft/tunefill/internal/sampleset"
	"github.com/liuscraft/tunefill/internal/shifter"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("varispeed", flag.ContinueOnError)
	fs.SetOutput(stderr)
	input := fs.String("in", "", "Source WAV file")
	output := fs.String("out", "", "Destination WAV file")
	semitones := fs.Int("semitones", 0, "Shift in semitones (ignored when -factor is set)")
	factor := fs.Float64("factor", 0, "Speed/pitch factor, 2 = one octave up")
	quality := fs.String("quality", "balanced", "Resampler: linear, fast, balanced or best")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if *input == "" || *output == "" {
		fmt.Fprintf(stderr, "Error: -in and -out are required\n")
		fs.Usage()
		return 1
	}

	if err := logging.InitFromEnv(); err != nil {
		fmt.Fprintf(stderr, "Failed to init logger: %v\n", err)
		return 1
	}
	defer logging.Sync()

	f := *factor
	if f == 0 {
		f = sampleset.FreqFactor(0, *semitones)
	}

	v, err := shifter.NewVarispeed(*quality)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	src, err := shifter.ReadClip(*input)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to read input: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Varispeed\n")
	fmt.Fprintf(stdout, "=========\n")
	fmt.Fprintf(stdout, "Input:     %s (%d Hz, %d-bit, %d ch)\n", *input, src.SampleRate, src.BitDepth, len(src.Channels))
	fmt.Fprintf(stdout, "Factor:    %s (%+.2f semitones)\n", sampleset.FormatFactor(f), 12*math.Log2(f))
	fmt.Fprintf(stdout, "Quality:   %s\n\n", *quality)

	logging.SetRunID(logging.NewRunID())
	logging.Debugf("Shift %s -> %s, factor %v", *input, *output, f)
	if err := v.Shift(context.Background(), *input, *output, f); err != nil {
		fmt.Fprintf(stderr, "Shift failed: %v\n", err)
		return 1
	}

	dst, err := shifter.ReadClip(*output)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to read output: %v\n", err)
		return 1
	}

	inDur := float64(src.Frames()) / float64(src.SampleRate)
	outDur := float64(dst.Frames()) / float64(dst.SampleRate)
	fmt.Fprintf(stdout, "Duration:  %.3f s -> %.3f s\n", inDur, outDur)
	fmt.Fprintf(stdout, "Ratio:     %.4f (expected %.4f)\n", outDur/inDur, 1/f)
	fmt.Fprintf(stdout, "\nOutput written to: %s\n", *output)
	return 0
}
