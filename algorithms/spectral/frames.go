package spectral

import (
	"errors"
	"fmt"
	"iter"

	"github.com/RyanBlaney/mp3gon/algorithms/common"
	"github.com/RyanBlaney/mp3gon/algorithms/windowing"
)

var (
	ErrInvalidFrameSize = errors.New("frame size must be a positive power of two")
	ErrInvalidHopSize   = errors.New("hop size must be positive")
)

// FrameExtractor slices one channel into windowed frames of fftSize samples,
// one every hopSize samples. Frames past the end of the signal are zero-padded.
type FrameExtractor struct {
	samples []float64
	fftSize int
	hopSize int
	window  windowing.Window
}

// NewFrameExtractor validates the framing parameters. A nil window selects a
// symmetric Hann window of fftSize points.
func NewFrameExtractor(samples []float64, fftSize, hopSize int, window windowing.Window) (*FrameExtractor, error) {
	if !common.IsPowerOfTwo(fftSize) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrameSize, fftSize)
	}
	if hopSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHopSize, hopSize)
	}

	if window == nil {
		window = windowing.NewHann(fftSize, true)
	}
	if window.Size() != fftSize {
		return nil, fmt.Errorf("%w: window has %d points, frame has %d", ErrInvalidFrameSize, window.Size(), fftSize)
	}

	return &FrameExtractor{
		samples: samples,
		fftSize: fftSize,
		hopSize: hopSize,
		window:  window,
	}, nil
}

// FrameCount is floor(len(samples) / hopSize).
func (fe *FrameExtractor) FrameCount() int {
	return len(fe.samples) / fe.hopSize
}

func (fe *FrameExtractor) FFTSize() int { return fe.fftSize }
func (fe *FrameExtractor) HopSize() int { return fe.hopSize }

// Frame writes windowed frame t into dst, allocating when dst is too short,
// and returns the frame.
func (fe *FrameExtractor) Frame(t int, dst []float64) []float64 {
	if cap(dst) < fe.fftSize {
		dst = make([]float64, fe.fftSize)
	}
	dst = dst[:fe.fftSize]

	start := t * fe.hopSize
	n := 0
	if start >= 0 && start < len(fe.samples) {
		n = copy(dst, fe.samples[start:])
	}
	clear(dst[n:])

	// sizes were checked in the constructor
	_ = fe.window.ApplyInPlace(dst)
	return dst
}

// Frames yields every frame in order. The sequence is lazy and can be ranged
// over any number of times. The yielded slice is reused between iterations;
// copy it to keep it.
func (fe *FrameExtractor) Frames() iter.Seq2[int, []float64] {
	return func(yield func(int, []float64) bool) {
		buf := make([]float64, fe.fftSize)
		for t := range fe.FrameCount() {
			if !yield(t, fe.Frame(t, buf)) {
				return
			}
		}
	}
}
