package spectral

import (
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/mp3gon/algorithms/windowing"
)

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func TestFrameExtractor_FrameCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		length, fftSize, hopSize, want int
	}{
		{0, 512, 1024, 0},
		{1023, 512, 1024, 0},
		{1024, 512, 1024, 1},
		{10000, 512, 1024, 9},
		{10, 4, 2, 5},
	}

	for _, tt := range tests {
		fe, err := NewFrameExtractor(make([]float64, tt.length), tt.fftSize, tt.hopSize, nil)
		if err != nil {
			t.Fatalf("NewFrameExtractor() error = %v", err)
		}
		if got := fe.FrameCount(); got != tt.want {
			t.Errorf("FrameCount(len=%d, hop=%d) = %d, want %d", tt.length, tt.hopSize, got, tt.want)
		}
	}
}

func TestFrameExtractor_InvalidConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewFrameExtractor(nil, 500, 100, nil); !errors.Is(err, ErrInvalidFrameSize) {
		t.Errorf("fftSize 500 error = %v, want ErrInvalidFrameSize", err)
	}
	if _, err := NewFrameExtractor(nil, 0, 100, nil); !errors.Is(err, ErrInvalidFrameSize) {
		t.Errorf("fftSize 0 error = %v, want ErrInvalidFrameSize", err)
	}
	if _, err := NewFrameExtractor(nil, 512, 0, nil); !errors.Is(err, ErrInvalidHopSize) {
		t.Errorf("hopSize 0 error = %v, want ErrInvalidHopSize", err)
	}
	if _, err := NewFrameExtractor(nil, 512, 512, windowing.NewHann(256, true)); !errors.Is(err, ErrInvalidFrameSize) {
		t.Errorf("window mismatch error = %v, want ErrInvalidFrameSize", err)
	}
}

func TestFrameExtractor_ZeroPadsTail(t *testing.T) {
	t.Parallel()

	// hop 3 over 7 samples gives 2 frames; frame 1 starts at 3 and needs 4 samples
	samples := ramp(7)
	fe, err := NewFrameExtractor(samples, 8, 3, windowing.NewRectangular(8))
	if err != nil {
		t.Fatalf("NewFrameExtractor() error = %v", err)
	}

	frame := fe.Frame(1, nil)
	want := []float64{4, 5, 6, 7, 0, 0, 0, 0}
	for i := range want {
		if frame[i] != want[i] {
			t.Fatalf("Frame(1) = %v, want %v", frame, want)
		}
	}
}

func TestFrameExtractor_AppliesHann(t *testing.T) {
	t.Parallel()

	const size = 16
	samples := make([]float64, size)
	for i := range samples {
		samples[i] = 1
	}

	fe, err := NewFrameExtractor(samples, size, size, nil)
	if err != nil {
		t.Fatalf("NewFrameExtractor() error = %v", err)
	}

	frame := fe.Frame(0, nil)
	for i, got := range frame {
		want := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
		if math.Abs(got-want) > 1e-15 {
			t.Errorf("frame[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestFrameExtractor_FramesRestartable(t *testing.T) {
	t.Parallel()

	fe, err := NewFrameExtractor(ramp(40), 4, 8, windowing.NewRectangular(4))
	if err != nil {
		t.Fatalf("NewFrameExtractor() error = %v", err)
	}

	collect := func() []float64 {
		var firsts []float64
		for _, frame := range fe.Frames() {
			firsts = append(firsts, frame[0])
		}
		return firsts
	}

	first := collect()
	second := collect()
	if len(first) != 5 || len(second) != 5 {
		t.Fatalf("got %d and %d frames, want 5 each", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] || first[i] != float64(i*8+1) {
			t.Errorf("frame %d starts with %v / %v, want %v", i, first[i], second[i], float64(i*8+1))
		}
	}

	seen := 0
	for range fe.Frames() {
		seen++
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Errorf("early break saw %d frames, want 2", seen)
	}
}

func TestFrameExtractor_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	samples := ramp(16)
	fe, err := NewFrameExtractor(samples, 16, 16, nil)
	if err != nil {
		t.Fatalf("NewFrameExtractor() error = %v", err)
	}
	fe.Frame(0, nil)

	for i, v := range samples {
		if v != float64(i+1) {
			t.Fatalf("samples[%d] = %v, input was modified", i, v)
		}
	}
}
