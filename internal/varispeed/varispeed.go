// Package varispeed changes the playback speed of sampled audio.
//
// Playing a sample factor times faster raises every frequency by factor and
// shortens it by the same amount, which is exactly the effect of
// "rubberband -T factor -f factor". It is done here by resampling each channel
// to len/factor samples and keeping the nominal sample rate.
package varispeed

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-dsp/dsp/resample"
)

var ErrInvalidFactor = errors.New("varispeed: invalid speed factor")

// Resampler 变速重采样器接口
type Resampler interface {
	// Resample 按 factor 倍速重放单声道数据
	// factor > 1: 音高升高、时长变短; factor < 1: 音高降低、时长变长
	// 返回约 ceil(len(input)/factor) 个样本
	Resample(input []float64, factor float64) ([]float64, error)
}

// New returns the resampler for a quality name: "linear", "fast",
// "balanced" or "best".
func New(quality string) (Resampler, error) {
	switch strings.ToLower(strings.TrimSpace(quality)) {
	case "linear":
		return NewLinearResampler(), nil
	case "fast":
		return NewPolyphaseResampler(resample.QualityFast), nil
	case "", "balanced":
		return NewPolyphaseResampler(resample.QualityBalanced), nil
	case "best":
		return NewPolyphaseResampler(resample.QualityBest), nil
	default:
		return nil, fmt.Errorf("varispeed: unknown quality %q", quality)
	}
}

// OutputLen is the number of samples produced for n input samples.
func OutputLen(n int, factor float64) int {
	if n <= 0 {
		return 0
	}
	return int(math.Ceil(float64(n) / factor))
}

func checkFactor(factor float64) error {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidFactor, factor)
	}
	return nil
}
