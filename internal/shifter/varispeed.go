package shifter

import (
	"context"
	"fmt"

	"github.com/liuscraft/tunefill/internal/varispeed"
)

// Varispeed shifts in-process by resampling the decoded WAV data. It is the
// fallback for hosts without rubberband.
type Varispeed struct {
	resampler varispeed.Resampler
}

func NewVarispeed(quality string) (*Varispeed, error) {
	r, err := varispeed.New(quality)
	if err != nil {
		return nil, err
	}
	return &Varispeed{resampler: r}, nil
}

func (v *Varispeed) Name() string {
	return "varispeed"
}

func (v *Varispeed) Shift(ctx context.Context, src, dst string, factor float64) error {
	c, err := ReadClip(src)
	if err != nil {
		return err
	}

	shifted := make([][]float64, len(c.Channels))
	for ch, samples := range c.Channels {
		if err := ctx.Err(); err != nil {
			return err
		}
		shifted[ch], err = v.resampler.Resample(samples, factor)
		if err != nil {
			return fmt.Errorf("varispeed %s channel %d: %w", src, ch, err)
		}
	}

	out := &Clip{SampleRate: c.SampleRate, BitDepth: c.BitDepth, Channels: shifted}
	if err := WriteClip(dst, out); err != nil {
		return err
	}
	return checkOutput(dst)
}
