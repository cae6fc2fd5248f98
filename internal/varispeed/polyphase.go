package varispeed

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/resample"
)

const defaultMaxDenominator = 1024

// PolyphaseResampler 多相 FIR 变速器，带抗混叠滤波
// The speed factor is approximated by a rational up/down ratio with a
// denominator of at most 1024, which keeps the pitch error far below one cent.
type PolyphaseResampler struct {
	quality resample.Quality
	maxDen  int
}

func NewPolyphaseResampler(q resample.Quality) *PolyphaseResampler {
	return &PolyphaseResampler{quality: q, maxDen: defaultMaxDenominator}
}

// Resample 重放 input 并补偿滤波器群延迟，使输出与输入对齐
func (r *PolyphaseResampler) Resample(input []float64, factor float64) ([]float64, error) {
	if err := checkFactor(factor); err != nil {
		return nil, err
	}
	if len(input) == 0 {
		return []float64{}, nil
	}
	if factor == 1 {
		result := make([]float64, len(input))
		copy(result, input)
		return result, nil
	}

	// Playing at factor x speed is a conversion from rate factor to rate 1.
	rs, err := resample.NewForRates(factor, 1,
		resample.WithQuality(r.quality),
		resample.WithMaxDenominator(r.maxDen),
	)
	if err != nil {
		return nil, fmt.Errorf("varispeed: design resampler for factor %v: %w", factor, err)
	}
	up, down := rs.Ratio()

	// zero tail flushes the filter so the last input samples reach the output
	padded := make([]float64, len(input)+2*rs.TapsPerPhase())
	copy(padded, input)
	out := rs.Process(padded)

	delay := (len(rs.Prototype()) - 1) / (2 * down)
	want := int(math.Ceil(float64(len(input)) * float64(up) / float64(down)))

	if delay > len(out) {
		delay = len(out)
	}
	end := delay + want
	if end > len(out) {
		end = len(out)
	}

	result := make([]float64, end-delay)
	copy(result, out[delay:end])
	return result, nil
}
