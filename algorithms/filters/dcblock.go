// Package filters holds the pre-analysis filters applied to source audio.
package filters

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/mp3gon/algorithms/common"
)

// DefaultPole gives a cutoff near 8 Hz at 44.1 kHz.
const DefaultPole = 0.995

// ErrInvalidCutoff is returned when a cutoff cannot be realized at the sample rate.
var ErrInvalidCutoff = errors.New("invalid DC blocker cutoff")

// DCBlocker is a one-pole high-pass filter:
//
//	y[n] = x[n] - x[n-1] + R * y[n-1]
//
// See J. O. Smith, "Introduction to Digital Filters", DC Blocker.
type DCBlocker struct {
	pole float64

	x1 float64
	y1 float64
}

// NewDCBlocker creates a blocker with pole R clamped to [0.001, 0.999].
func NewDCBlocker(pole float64) *DCBlocker {
	return &DCBlocker{pole: common.Clamp(pole, 0.001, 0.999)}
}

// NewDCBlockerWithCutoff derives R ≈ 1 - 2π·fc/fs, valid for fc << fs/2.
func NewDCBlockerWithCutoff(sampleRate int, cutoffHz float64) (*DCBlocker, error) {
	if sampleRate <= 0 || !(cutoffHz > 0) || cutoffHz >= float64(sampleRate)/2 {
		return nil, fmt.Errorf("%w: %v Hz at %d Hz", ErrInvalidCutoff, cutoffHz, sampleRate)
	}
	return NewDCBlocker(1 - 2*math.Pi*cutoffHz/float64(sampleRate)), nil
}

// Pole returns R.
func (d *DCBlocker) Pole() float64 { return d.pole }

// Cutoff returns the approximate -3 dB frequency at sampleRate.
func (d *DCBlocker) Cutoff(sampleRate int) float64 {
	return (1 - d.pole) * float64(sampleRate) / (2 * math.Pi)
}

// Process filters one sample.
func (d *DCBlocker) Process(x float64) float64 {
	y := x - d.x1 + d.pole*d.y1
	d.x1 = x
	d.y1 = y
	return y
}

// ProcessBuffer filters src into a new slice, continuing from the current state.
func (d *DCBlocker) ProcessBuffer(src []float64) []float64 {
	out := make([]float64, len(src))
	for i, x := range src {
		out[i] = d.Process(x)
	}
	return out
}

// Reset clears the filter history.
func (d *DCBlocker) Reset() {
	d.x1, d.y1 = 0, 0
}
