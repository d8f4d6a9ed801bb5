package common

import (
	"math"
	"testing"
)

func TestIsPowerOfTwo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int
		want bool
	}{
		{-4, false},
		{0, false},
		{1, true},
		{2, true},
		{3, false},
		{512, true},
		{768, false},
		{1 << 20, true},
	}

	for _, tt := range tests {
		if got := IsPowerOfTwo(tt.n); got != tt.want {
			t.Errorf("IsPowerOfTwo(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()

	if got := Clamp(1.5, 0, 1); got != 1 {
		t.Errorf("Clamp(1.5, 0, 1) = %v, want 1", got)
	}
	if got := Clamp(-2, 0, 1); got != 0 {
		t.Errorf("Clamp(-2, 0, 1) = %v, want 0", got)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize([]float64{1, 2, 3, 4})
	if s.Min != 1 || s.Max != 4 || s.Count != 4 {
		t.Errorf("Summarize() = %+v, want min 1 max 4 count 4", s)
	}
	if math.Abs(s.Mean-2.5) > 1e-12 {
		t.Errorf("Mean = %v, want 2.5", s.Mean)
	}
	if s.StdDev <= 0 {
		t.Errorf("StdDev = %v, want > 0", s.StdDev)
	}

	if got := Summarize(nil); got != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v, want zero", got)
	}
}

func TestWorkerCount(t *testing.T) {
	t.Parallel()

	if got := WorkerCount(0, 0); got != 1 {
		t.Errorf("WorkerCount(0, 0) = %d, want 1", got)
	}
	if got := WorkerCount(3, 16); got != 3 {
		t.Errorf("WorkerCount(3, 16) = %d, want 3", got)
	}
	if got := WorkerCount(50, 0); got < 1 || got > 50 {
		t.Errorf("WorkerCount(50, 0) = %d, want within [1, 50]", got)
	}
}
