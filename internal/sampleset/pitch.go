package sampleset

import (
	"math"
	"strconv"
)

// SemitonesPerOctave is the equal-tempered division of the octave.
const SemitonesPerOctave = 12

// FreqFactor returns the frequency ratio that turns a sample recorded at
// pitch from into one sounding at pitch to.
func FreqFactor(from, to int) float64 {
	return math.Pow(2, float64(to-from)/SemitonesPerOctave)
}

// FormatFactor renders f with the fewest digits that parse back to f.
func FormatFactor(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
