package varispeed

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-dsp/dsp/resample"
)

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func sine(n int, period float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * float64(i) / period)
	}
	return out
}

// zeroCrossings counts sign changes in s[from:to].
func zeroCrossings(s []float64, from, to int) int {
	count := 0
	for i := from + 1; i < to; i++ {
		if (s[i-1] < 0) != (s[i] < 0) {
			count++
		}
	}
	return count
}

func TestNew(t *testing.T) {
	for _, q := range []string{"linear", "fast", "balanced", "best", "", " Best "} {
		if _, err := New(q); err != nil {
			t.Errorf("New(%q) failed: %v", q, err)
		}
	}
	if _, err := New("ultra"); err == nil {
		t.Errorf("Expected error for unknown quality")
	}
}

func TestOutputLen(t *testing.T) {
	if got := OutputLen(100, 2); got != 50 {
		t.Errorf("Expected 50, got %d", got)
	}
	if got := OutputLen(101, 2); got != 51 {
		t.Errorf("Expected 51, got %d", got)
	}
	if got := OutputLen(100, 0.5); got != 200 {
		t.Errorf("Expected 200, got %d", got)
	}
	if got := OutputLen(0, 2); got != 0 {
		t.Errorf("Expected 0, got %d", got)
	}
}

func TestResamplers_InvalidFactor(t *testing.T) {
	resamplers := []Resampler{NewLinearResampler(), NewPolyphaseResampler(resample.QualityFast)}
	for _, r := range resamplers {
		for _, f := range []float64{0, -1, math.NaN(), math.Inf(1)} {
			if _, err := r.Resample([]float64{1, 2, 3}, f); !errors.Is(err, ErrInvalidFactor) {
				t.Errorf("%T factor %v: expected ErrInvalidFactor, got %v", r, f, err)
			}
		}
	}
}

func TestResamplers_EmptyInput(t *testing.T) {
	resamplers := []Resampler{NewLinearResampler(), NewPolyphaseResampler(resample.QualityBalanced)}
	for _, r := range resamplers {
		out, err := r.Resample(nil, 1.5)
		if err != nil {
			t.Fatalf("%T: Resample failed: %v", r, err)
		}
		if len(out) != 0 {
			t.Errorf("%T: expected empty output, got %d samples", r, len(out))
		}
	}
}

func TestResamplers_UnityIsCopy(t *testing.T) {
	input := ramp(10)
	resamplers := []Resampler{NewLinearResampler(), NewPolyphaseResampler(resample.QualityBalanced)}
	for _, r := range resamplers {
		out, err := r.Resample(input, 1)
		if err != nil {
			t.Fatalf("%T: Resample failed: %v", r, err)
		}
		for i := range input {
			if out[i] != input[i] {
				t.Fatalf("%T: sample %d: expected %v, got %v", r, i, input[i], out[i])
			}
		}
		out[0] = 42
		if input[0] != 0 {
			t.Fatalf("%T: output aliases input", r)
		}
	}
}

func TestLinearResampler_OctaveUp(t *testing.T) {
	out, err := NewLinearResampler().Resample(ramp(100), 2)
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	if len(out) != 50 {
		t.Fatalf("Expected 50 samples, got %d", len(out))
	}
	for i, v := range out {
		if v != float64(2*i) {
			t.Fatalf("Sample %d: expected %d, got %v", i, 2*i, v)
		}
	}
}

func TestLinearResampler_OctaveDown(t *testing.T) {
	out, err := NewLinearResampler().Resample(ramp(10), 0.5)
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	if len(out) != 20 {
		t.Fatalf("Expected 20 samples, got %d", len(out))
	}
	// 中间点为相邻样本的平均
	if out[3] != 1.5 {
		t.Errorf("Expected interpolated 1.5, got %v", out[3])
	}
	// 超出末尾保持末值
	if out[19] != 9 {
		t.Errorf("Expected held last sample 9, got %v", out[19])
	}
}

func TestPolyphaseResampler_Length(t *testing.T) {
	r := NewPolyphaseResampler(resample.QualityBalanced)
	for _, tc := range []struct {
		factor float64
		want   int
	}{
		{2, 500},
		{0.5, 2000},
	} {
		out, err := r.Resample(sine(1000, 50), tc.factor)
		if err != nil {
			t.Fatalf("factor %v: Resample failed: %v", tc.factor, err)
		}
		if len(out) != tc.want {
			t.Errorf("factor %v: expected %d samples, got %d", tc.factor, tc.want, len(out))
		}
	}
}

func TestPolyphaseResampler_PreservesDC(t *testing.T) {
	input := make([]float64, 2000)
	for i := range input {
		input[i] = 0.5
	}

	out, err := NewPolyphaseResampler(resample.QualityBalanced).Resample(input, 2)
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	for i := 100; i < len(out)-100; i++ {
		if math.Abs(out[i]-0.5) > 1e-3 {
			t.Fatalf("Sample %d: expected ~0.5, got %v", i, out[i])
		}
	}
}

func TestPolyphaseResampler_RaisesPitch(t *testing.T) {
	input := sine(8000, 100)
	inCrossings := zeroCrossings(input, 0, len(input))

	out, err := NewPolyphaseResampler(resample.QualityBest).Resample(input, 2)
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}

	// 同样多的周期被压缩进一半的样本
	outCrossings := zeroCrossings(out, 0, len(out))
	if diff := outCrossings - inCrossings; diff < -4 || diff > 4 {
		t.Errorf("Expected ~%d zero crossings, got %d", inCrossings, outCrossings)
	}
	if zeroCrossings(out, 1000, 1500) < 18 {
		t.Errorf("Expected period ~50 samples in the middle of the output")
	}
}
