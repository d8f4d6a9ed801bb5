package spectral

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats"
)

// maxAbsDiff is the largest element-wise difference of equal-length slices.
func maxAbsDiff(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	diff := make([]float64, len(a))
	floats.SubTo(diff, a, b)
	return math.Max(math.Abs(floats.Min(diff)), math.Abs(floats.Max(diff)))
}

func randomBuffers(n int, seed int64) ([]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	re := make([]float64, n)
	im := make([]float64, n)
	for i := range re {
		re[i] = rng.Float64()*2 - 1
	}
	return re, im
}

func TestTransformers_DCComponent(t *testing.T) {
	t.Parallel()

	for _, engine := range []Engine{EngineGoDSP, EngineGonum} {
		tr, err := NewTransformer(engine)
		if err != nil {
			t.Fatalf("NewTransformer(%q) error = %v", engine, err)
		}

		re := []float64{1, 1, 1, 1, 1, 1, 1, 1}
		im := make([]float64, 8)
		if err := tr.Transform(re, im, false); err != nil {
			t.Fatalf("%s Transform() error = %v", engine, err)
		}

		if math.Abs(re[0]-8) > 1e-12 {
			t.Errorf("%s DC = %v, want 8", engine, re[0])
		}
		for k := 1; k < 8; k++ {
			if math.Hypot(re[k], im[k]) > 1e-12 {
				t.Errorf("%s bin %d = (%v, %v), want 0", engine, k, re[k], im[k])
			}
		}
	}
}

func TestTransformers_Agree(t *testing.T) {
	t.Parallel()

	godsp := NewGoDSPTransformer()
	gonum := NewGonumTransformer()

	for _, n := range []int{2, 16, 512} {
		re1, im1 := randomBuffers(n, int64(n))
		re2 := append([]float64(nil), re1...)
		im2 := append([]float64(nil), im1...)

		if err := godsp.Transform(re1, im1, false); err != nil {
			t.Fatalf("godsp Transform(%d) error = %v", n, err)
		}
		if err := gonum.Transform(re2, im2, false); err != nil {
			t.Fatalf("gonum Transform(%d) error = %v", n, err)
		}

		if d := maxAbsDiff(re1, re2); d > 1e-9 {
			t.Errorf("n=%d real parts differ by %v", n, d)
		}
		if d := maxAbsDiff(im1, im2); d > 1e-9 {
			t.Errorf("n=%d imaginary parts differ by %v", n, d)
		}
	}
}

func TestTransformers_InverseRoundTrip(t *testing.T) {
	t.Parallel()

	for _, tr := range []Transformer{NewGoDSPTransformer(), NewGonumTransformer()} {
		re, im := randomBuffers(64, 7)
		orig := append([]float64(nil), re...)

		if err := tr.Transform(re, im, false); err != nil {
			t.Fatalf("forward error = %v", err)
		}
		if err := tr.Transform(re, im, true); err != nil {
			t.Fatalf("inverse error = %v", err)
		}

		if d := maxAbsDiff(orig, re); d > 1e-9 {
			t.Errorf("%T round trip differs by %v", tr, d)
		}
	}
}

func TestTransformers_RejectBadBuffers(t *testing.T) {
	t.Parallel()

	for _, tr := range []Transformer{NewGoDSPTransformer(), NewGonumTransformer()} {
		if err := tr.Transform(make([]float64, 6), make([]float64, 6), false); !errors.Is(err, ErrUnsupportedSize) {
			t.Errorf("%T size 6 error = %v, want ErrUnsupportedSize", tr, err)
		}
		if err := tr.Transform(make([]float64, 0), make([]float64, 0), false); !errors.Is(err, ErrUnsupportedSize) {
			t.Errorf("%T size 0 error = %v, want ErrUnsupportedSize", tr, err)
		}
		if err := tr.Transform(make([]float64, 8), make([]float64, 4), false); !errors.Is(err, ErrBufferMismatch) {
			t.Errorf("%T mismatched error = %v, want ErrBufferMismatch", tr, err)
		}
		if v, ok := tr.(SizeValidator); !ok || v.ValidSize(12) || !v.ValidSize(1024) {
			t.Errorf("%T does not validate sizes as powers of two", tr)
		}
	}
}

func TestNewTransformer_Unknown(t *testing.T) {
	t.Parallel()

	if _, err := NewTransformer("fftw"); !errors.Is(err, ErrUnknownEngine) {
		t.Errorf("NewTransformer(fftw) error = %v, want ErrUnknownEngine", err)
	}
}
