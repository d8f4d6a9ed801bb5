package spectral

import (
	"math"

	"github.com/RyanBlaney/mp3gon/algorithms/common"
)

// DefaultRolloffThreshold is the energy fraction used for rolloff.
const DefaultRolloffThreshold = 0.85

// Descriptors are per-frame summaries of a spectrogram's shape.
type Descriptors struct {
	Centroid []float64 `json:"centroid"` // Hz, one per frame
	Rolloff  []float64 `json:"rolloff"`  // Hz, one per frame
	Flux     []float64 `json:"flux"`     // one per adjacent frame pair
}

// Describe computes centroid, rolloff and positive spectral flux for every
// frame. Bin f sits at f * sampleRate / FFTSize Hz.
func (s *Spectrogram) Describe(sampleRate int, rolloffThreshold float64) Descriptors {
	d := Descriptors{
		Centroid: make([]float64, s.Frames),
		Rolloff:  make([]float64, s.Frames),
		Flux:     Flux(s.LogMagnitude),
	}
	if s.Frames == 0 || s.FFTSize == 0 {
		return d
	}

	binHz := float64(sampleRate) / float64(s.FFTSize)
	for t, row := range s.LogMagnitude {
		d.Centroid[t] = Centroid(row) * binHz
		d.Rolloff[t] = float64(Rolloff(row, rolloffThreshold)) * binHz
	}
	return d
}

// Centroid returns the magnitude-weighted mean bin index, or 0 for a silent frame.
func Centroid(spectrum []float64) float64 {
	var num, den float64
	for f, mag := range spectrum {
		num += float64(f) * mag
		den += mag
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// Rolloff returns the first bin at which the cumulative energy reaches
// threshold of the frame total. Silent frames roll off at bin 0.
func Rolloff(spectrum []float64, threshold float64) int {
	threshold = common.Clamp(threshold, 0, 1)

	total := 0.0
	for _, mag := range spectrum {
		total += mag * mag
	}
	if total == 0 {
		return 0
	}

	target := threshold * total
	cumulative := 0.0
	for f, mag := range spectrum {
		cumulative += mag * mag
		if cumulative >= target {
			return f
		}
	}
	return len(spectrum) - 1
}

// Flux measures energy increases between consecutive frames: the L2 norm of
// the positive bin differences. The result has one entry per frame pair.
func Flux(frames [][]float64) []float64 {
	if len(frames) < 2 {
		return []float64{}
	}

	flux := make([]float64, len(frames)-1)
	for t := 1; t < len(frames); t++ {
		sum := 0.0
		for f := range frames[t] {
			if diff := frames[t][f] - frames[t-1][f]; diff > 0 {
				sum += diff * diff
			}
		}
		flux[t-1] = math.Sqrt(sum)
	}
	return flux
}
