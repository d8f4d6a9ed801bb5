package spectral

import (
	"errors"
	"fmt"
	"sync"

	"github.com/RyanBlaney/mp3gon/algorithms/common"
	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

var (
	ErrUnsupportedSize = errors.New("unsupported transform size")
	ErrBufferMismatch  = errors.New("real and imaginary buffers differ in length")
	ErrUnknownEngine   = errors.New("unknown fft engine")
)

// Transformer computes a discrete Fourier transform in place over split
// real/imaginary buffers of equal, power-of-two length. The forward direction
// is unnormalized; the inverse is scaled by 1/N.
type Transformer interface {
	Transform(re, im []float64, inverse bool) error
}

// SizeValidator is implemented by transformers that restrict the sizes they
// accept, so callers can reject a configuration before doing any work.
type SizeValidator interface {
	ValidSize(n int) bool
}

// Engine names a Transformer implementation.
type Engine string

const (
	EngineGoDSP Engine = "godsp"
	EngineGonum Engine = "gonum"
)

// NewTransformer returns the transformer registered under name.
func NewTransformer(name Engine) (Transformer, error) {
	switch name {
	case EngineGoDSP, "":
		return NewGoDSPTransformer(), nil
	case EngineGonum:
		return NewGonumTransformer(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

func checkBuffers(re, im []float64) error {
	if len(re) != len(im) {
		return fmt.Errorf("%w: %d != %d", ErrBufferMismatch, len(re), len(im))
	}
	if !common.IsPowerOfTwo(len(re)) {
		return fmt.Errorf("%w: %d is not a power of two", ErrUnsupportedSize, len(re))
	}
	return nil
}

// GoDSPTransformer runs transforms through mjibson/go-dsp.
type GoDSPTransformer struct{}

// NewGoDSPTransformer creates the default transformer.
func NewGoDSPTransformer() *GoDSPTransformer {
	return &GoDSPTransformer{}
}

func (g *GoDSPTransformer) ValidSize(n int) bool {
	return common.IsPowerOfTwo(n)
}

func (g *GoDSPTransformer) Transform(re, im []float64, inverse bool) error {
	if err := checkBuffers(re, im); err != nil {
		return err
	}

	x := make([]complex128, len(re))
	for i := range re {
		x[i] = complex(re[i], im[i])
	}

	var y []complex128
	if inverse {
		y = fft.IFFT(x)
	} else {
		y = fft.FFT(x)
	}

	for i, v := range y {
		re[i] = real(v)
		im[i] = imag(v)
	}
	return nil
}

// GonumTransformer runs transforms through gonum's dsp/fourier. Plans are not
// safe for concurrent use, so one pool of plans is kept per size.
type GonumTransformer struct {
	mu    sync.Mutex
	pools map[int]*sync.Pool
}

// NewGonumTransformer creates a gonum-backed transformer.
func NewGonumTransformer() *GonumTransformer {
	return &GonumTransformer{pools: make(map[int]*sync.Pool)}
}

func (g *GonumTransformer) ValidSize(n int) bool {
	return common.IsPowerOfTwo(n)
}

func (g *GonumTransformer) pool(n int) *sync.Pool {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.pools[n]
	if !ok {
		p = &sync.Pool{New: func() any { return fourier.NewCmplxFFT(n) }}
		g.pools[n] = p
	}
	return p
}

func (g *GonumTransformer) Transform(re, im []float64, inverse bool) error {
	if err := checkBuffers(re, im); err != nil {
		return err
	}

	n := len(re)
	p := g.pool(n)
	plan := p.Get().(*fourier.CmplxFFT)
	defer p.Put(plan)

	x := make([]complex128, n)
	for i := range re {
		x[i] = complex(re[i], im[i])
	}

	var y []complex128
	if inverse {
		y = plan.Sequence(nil, x)
		scale := 1 / float64(n)
		for i := range y {
			y[i] *= complex(scale, 0)
		}
	} else {
		y = plan.Coefficients(nil, x)
	}

	for i, v := range y {
		re[i] = real(v)
		im[i] = imag(v)
	}
	return nil
}
