package windowing

import (
	"errors"
	"fmt"
	"math"
)

// Type names a window function.
type Type string

const (
	TypeHann        Type = "hann"
	TypeHamming     Type = "hamming"
	TypeBlackman    Type = "blackman"
	TypeRectangular Type = "rectangular"
)

var (
	ErrUnknownType  = errors.New("unknown window type")
	ErrInvalidSize  = errors.New("window size must be positive")
	ErrSizeMismatch = errors.New("signal length doesn't match window size")
)

// Window is an analysis window applied to fixed-size frames.
type Window interface {
	Apply(signal []float64) []float64
	ApplyInPlace(signal []float64) error
	Coefficients() []float64
	Size() int
	Type() Type
}

// New builds a symmetric window of the given type.
func New(t Type, size int) (Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	switch t {
	case TypeHann, "":
		return NewHann(size, true), nil
	case TypeHamming:
		return NewHamming(size, true), nil
	case TypeBlackman:
		return NewBlackman(size, true), nil
	case TypeRectangular:
		return NewRectangular(size), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}

// cosineSum is a generalized cosine window:
//
//	w[i] = a0 - a1*cos(x) + a2*cos(2x),  x = 2*pi*i/D
//
// where D is size-1 for symmetric windows and size for periodic ones.
type cosineSum struct {
	kind         Type
	coefficients []float64
}

func newCosineSum(kind Type, size int, symmetric bool, a0, a1, a2 float64) *cosineSum {
	c := &cosineSum{
		kind:         kind,
		coefficients: make([]float64, size),
	}

	// a single-point symmetric window would divide by zero
	if size == 1 {
		c.coefficients[0] = 1
		return c
	}

	denominator := float64(size)
	if symmetric {
		denominator = float64(size - 1)
	}

	for i := range size {
		x := 2 * math.Pi * float64(i) / denominator
		c.coefficients[i] = a0 - a1*math.Cos(x) + a2*math.Cos(2*x)
	}
	return c
}

// NewHann creates a Hann window: 0.5 * (1 - cos(2*pi*i/(N-1))) when symmetric.
func NewHann(size int, symmetric bool) Window {
	return newCosineSum(TypeHann, size, symmetric, 0.5, 0.5, 0)
}

// NewHamming creates a Hamming window
func NewHamming(size int, symmetric bool) Window {
	return newCosineSum(TypeHamming, size, symmetric, 0.54, 0.46, 0)
}

// NewBlackman creates a Blackman window
func NewBlackman(size int, symmetric bool) Window {
	return newCosineSum(TypeBlackman, size, symmetric, 0.42, 0.5, 0.08)
}

// NewRectangular creates a rectangular (boxcar) window
func NewRectangular(size int) Window {
	return newCosineSum(TypeRectangular, size, true, 1, 0, 0)
}

// Apply applies the window to a signal (creates new array). It returns nil on
// a length mismatch.
func (c *cosineSum) Apply(signal []float64) []float64 {
	if len(signal) != len(c.coefficients) {
		return nil
	}

	windowed := make([]float64, len(signal))
	for i, w := range c.coefficients {
		windowed[i] = signal[i] * w
	}
	return windowed
}

// ApplyInPlace applies the window to a signal in-place
func (c *cosineSum) ApplyInPlace(signal []float64) error {
	if len(signal) != len(c.coefficients) {
		return fmt.Errorf("%w: %d != %d", ErrSizeMismatch, len(signal), len(c.coefficients))
	}

	for i, w := range c.coefficients {
		signal[i] *= w
	}
	return nil
}

// Coefficients returns a copy of the window coefficients
func (c *cosineSum) Coefficients() []float64 {
	coeffs := make([]float64, len(c.coefficients))
	copy(coeffs, c.coefficients)
	return coeffs
}

func (c *cosineSum) Size() int  { return len(c.coefficients) }
func (c *cosineSum) Type() Type { return c.kind }
