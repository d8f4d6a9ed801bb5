package playagon

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/RyanBlaney/mp3gon/logging"
	"github.com/RyanBlaney/mp3gon/transcode"
)

func init() {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
}

func rampSignal(t *testing.T, n, channels int) *transcode.Signal {
	t.Helper()
	chs := make([][]float64, channels)
	for ch := range chs {
		chs[ch] = make([]float64, n)
		for i := range n {
			chs[ch][i] = float64(i) + float64(ch)*1000
		}
	}
	s, err := transcode.NewSignal(44100, chs...)
	if err != nil {
		t.Fatalf("NewSignal() error = %v", err)
	}
	return s
}

func TestTimeWarp_ReverseScenario(t *testing.T) {
	t.Parallel()

	in, err := transcode.NewSignal(8000, []float64{0, 1, 2, 3, 4})
	if err != nil {
		t.Fatalf("NewSignal() error = %v", err)
	}

	out, err := TimeWarp(context.Background(), in, func(t float64) float64 { return 1 - t })
	if err != nil {
		t.Fatalf("TimeWarp() error = %v", err)
	}

	want := []float64{4, 3, 2, 1, 0}
	got := out.Channel(0)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("TimeWarp(reverse) = %v, want %v", got, want)
		}
	}
}

func TestTimeWarp_IdentityIsExact(t *testing.T) {
	t.Parallel()

	// 50 samples makes t*(N-1) fall a rounding error short of i for i=1
	for _, n := range []int{2, 3, 50, 1000, 10007} {
		in := rampSignal(t, n, 2)
		out, err := TimeWarp(context.Background(), in, Identity())
		if err != nil {
			t.Fatalf("TimeWarp(n=%d) error = %v", n, err)
		}
		if !out.Equal(in) {
			t.Errorf("TimeWarp(identity, n=%d) changed the signal", n)
		}
	}
}

func TestTimeWarp_Freeze(t *testing.T) {
	t.Parallel()

	in := rampSignal(t, 300, 2)
	out, err := TimeWarp(context.Background(), in, Freeze(0))
	if err != nil {
		t.Fatalf("TimeWarp() error = %v", err)
	}

	for ch := range 2 {
		for i := range out.Len() {
			if out.Sample(ch, i) != in.Sample(ch, 0) {
				t.Fatalf("Sample(%d, %d) = %v, want %v", ch, i, out.Sample(ch, i), in.Sample(ch, 0))
			}
		}
	}
}

func TestTimeWarp_PreservesLayout(t *testing.T) {
	t.Parallel()

	warps := map[string]WarpFunc{
		"wild":     func(t float64) float64 { return 1e300 * math.Sin(t*1e6) },
		"negative": func(t float64) float64 { return -5 },
		"huge":     func(t float64) float64 { return 7 },
	}

	in := rampSignal(t, 513, 3)
	for name, w := range warps {
		out, err := TimeWarp(context.Background(), in, w)
		if err != nil {
			t.Fatalf("%s: TimeWarp() error = %v", name, err)
		}
		if out.NumChannels() != 3 || out.Len() != 513 || out.SampleRate() != 44100 {
			t.Errorf("%s: layout = %d x %d @ %d, want 3 x 513 @ 44100", name, out.NumChannels(), out.Len(), out.SampleRate())
		}
	}

	out, _ := TimeWarp(context.Background(), in, warps["huge"])
	if out.Sample(0, 0) != 512 {
		t.Errorf("out-of-range warp should clamp to last sample, got %v", out.Sample(0, 0))
	}
	out, _ = TimeWarp(context.Background(), in, warps["negative"])
	if out.Sample(2, 100) != 2000 {
		t.Errorf("negative warp should clamp to first sample, got %v", out.Sample(2, 100))
	}
}

func TestTimeWarp_SingleSample(t *testing.T) {
	t.Parallel()

	in, _ := transcode.NewSignal(8000, []float64{0.25}, []float64{-0.5})
	var calls atomic.Int32
	out, err := TimeWarp(context.Background(), in, func(t float64) float64 {
		calls.Add(1)
		return math.NaN()
	})
	if err != nil {
		t.Fatalf("TimeWarp() error = %v", err)
	}
	if !out.Equal(in) {
		t.Errorf("single-sample signal changed")
	}
	if calls.Load() != 0 {
		t.Errorf("warp called %d times on a single-sample signal", calls.Load())
	}
}

func TestTimeWarp_Empty(t *testing.T) {
	t.Parallel()

	in, _ := transcode.NewSilentSignal(8000, 2, 0)
	out, err := TimeWarp(context.Background(), in, Reverse())
	if err != nil {
		t.Fatalf("TimeWarp() error = %v", err)
	}
	if out.Len() != 0 || out.NumChannels() != 2 {
		t.Errorf("empty warp layout = %d x %d", out.NumChannels(), out.Len())
	}
}

func TestTimeWarp_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := rampSignal(t, 64, 1)
	before := in.Channel(0)
	if _, err := TimeWarp(context.Background(), in, Reverse()); err != nil {
		t.Fatalf("TimeWarp() error = %v", err)
	}
	for i, v := range in.Channel(0) {
		if v != before[i] {
			t.Fatalf("input sample %d changed", i)
		}
	}
}

func TestResampler_DegenerateWarp(t *testing.T) {
	t.Parallel()

	in := rampSignal(t, 5, 1)
	warp := func(t float64) float64 {
		switch t {
		case 0:
			return math.NaN()
		case 0.25:
			return math.Inf(1)
		case 0.5:
			return math.Inf(-1)
		default:
			return t
		}
	}

	out, stats, err := NewResampler(WithWorkers(2)).Warp(context.Background(), in, warp)
	if err != nil {
		t.Fatalf("Warp() error = %v, want recovery", err)
	}
	if stats.Degenerate != 3 {
		t.Errorf("Degenerate = %d, want 3", stats.Degenerate)
	}

	want := []float64{0, 4, 0, 3, 4}
	got := out.Channel(0)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Warp(degenerate) = %v, want %v", got, want)
		}
	}
}

func TestResampler_Errors(t *testing.T) {
	t.Parallel()

	in := rampSignal(t, 10000, 1)
	if _, _, err := NewResampler().Warp(context.Background(), in, nil); !errors.Is(err, ErrNilWarp) {
		t.Errorf("Warp(nil) error = %v, want ErrNilWarp", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, _, err := NewResampler().Warp(ctx, in, Identity())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Warp(cancelled) error = %v, want context.Canceled", err)
	}
	if out != nil {
		t.Errorf("Warp(cancelled) returned a partial signal")
	}
}

func TestSourceIndex_JustBelowInteger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int
		at   float64
		want int
	}{
		// 4999999.996 is fractional, not rounding noise
		{10_000_001, (5e6 - 0.004) / 1e7, 4_999_999},
		// 49.99999995
		{101, 0.4999999995, 49},
		{101, 0.5, 50},
	}

	for _, tt := range tests {
		idx, bad := SourceIndex(0, tt.n, Freeze(tt.at))
		if idx != tt.want || bad {
			t.Errorf("SourceIndex(n=%d, freeze %v) = %d, %v, want %d, false", tt.n, tt.at, idx, bad, tt.want)
		}
	}
}

func TestSourceIndex_FloorNotRound(t *testing.T) {
	t.Parallel()

	// 0.6 * 4 = 2.4 floors to 2; 0.7 * 4 = 2.8 also floors to 2
	for _, v := range []float64{0.6, 0.7} {
		idx, bad := SourceIndex(0, 5, Freeze(v))
		if idx != 2 || bad {
			t.Errorf("SourceIndex(freeze %v) = %d, %v, want 2, false", v, idx, bad)
		}
	}
}
