package spectral

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/RyanBlaney/mp3gon/algorithms/common"
	"github.com/RyanBlaney/mp3gon/logging"
)

// DefaultMagnitudeGain is the factor applied to each magnitude before log compression.
const DefaultMagnitudeGain = 50.0

var ErrInvalidBinCount = errors.New("bin count must be in [1, fftSize/2]")

// Spectrogram holds log-compressed magnitudes, frames x bins.
type Spectrogram struct {
	LogMagnitude [][]float64 `json:"log_magnitude"`
	Frames       int         `json:"frames"`
	FreqBins     int         `json:"freq_bins"`
	FFTSize      int         `json:"fft_size"`
	HopSize      int         `json:"hop_size"`
}

// Stats summarizes every log magnitude in the spectrogram.
func (s *Spectrogram) Stats() common.Summary {
	flat := make([]float64, 0, s.Frames*s.FreqBins)
	for _, row := range s.LogMagnitude {
		flat = append(flat, row...)
	}
	return common.Summarize(flat)
}

// LogMagnitudes converts the first freqBins components of a transformed frame
// to log10(1 + |X| * gain). dst is reused when large enough.
func LogMagnitudes(dst, re, im []float64, freqBins int, gain float64) []float64 {
	if cap(dst) < freqBins {
		dst = make([]float64, freqBins)
	}
	dst = dst[:freqBins]

	for f := range freqBins {
		mag := math.Sqrt(re[f]*re[f] + im[f]*im[f])
		dst[f] = math.Log10(1 + mag*gain)
	}
	return dst
}

// Analyzer turns framed audio into a Spectrogram using an injected Transformer.
type Analyzer struct {
	engine  Transformer
	gain    float64
	workers int
	logger  logging.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithMagnitudeGain overrides DefaultMagnitudeGain.
func WithMagnitudeGain(gain float64) AnalyzerOption {
	return func(a *Analyzer) { a.gain = gain }
}

// WithWorkers fixes the number of frame workers. Zero picks one from the CPU count.
func WithWorkers(n int) AnalyzerOption {
	return func(a *Analyzer) { a.workers = n }
}

// NewAnalyzer creates an Analyzer. A nil engine selects the go-dsp transformer.
func NewAnalyzer(engine Transformer, opts ...AnalyzerOption) *Analyzer {
	if engine == nil {
		engine = NewGoDSPTransformer()
	}
	a := &Analyzer{
		engine: engine,
		gain:   DefaultMagnitudeGain,
		logger: logging.WithFields(logging.Fields{
			"component": "spectral_analyzer",
		}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze transforms every frame of fe and keeps the lowest freqBins bins.
// Frames are processed concurrently; a transform failure or cancellation
// aborts the run and no partial spectrogram is returned.
func (a *Analyzer) Analyze(ctx context.Context, fe *FrameExtractor, freqBins int) (*Spectrogram, error) {
	fftSize := fe.FFTSize()
	if freqBins < 1 || freqBins > fftSize/2 {
		return nil, fmt.Errorf("%w: %d bins for fft size %d", ErrInvalidBinCount, freqBins, fftSize)
	}

	numFrames := fe.FrameCount()
	result := &Spectrogram{
		LogMagnitude: make([][]float64, numFrames),
		Frames:       numFrames,
		FreqBins:     freqBins,
		FFTSize:      fftSize,
		HopSize:      fe.HopSize(),
	}
	if numFrames == 0 {
		return result, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		firstErr error
		errOnce  sync.Once
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	numWorkers := common.WorkerCount(numFrames, a.workers)
	jobs := make(chan int, numWorkers)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// per-worker buffers
			re := make([]float64, fftSize)
			im := make([]float64, fftSize)

			for t := range jobs {
				if ctx.Err() != nil {
					continue
				}

				fe.Frame(t, re)
				clear(im)

				if err := a.engine.Transform(re, im, false); err != nil {
					fail(fmt.Errorf("frame %d: %w", t, err))
					continue
				}
				result.LogMagnitude[t] = LogMagnitudes(nil, re, im, freqBins, a.gain)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for t := range numFrames {
			select {
			case jobs <- t:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()

	if firstErr != nil {
		a.logger.Error(firstErr, "Spectral analysis failed", logging.Fields{
			"frames": numFrames,
		})
		return nil, firstErr
	}
	// the parent context may have been cancelled without a worker failing
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.logger.Debug("Spectral analysis complete", logging.Fields{
		"frames":    numFrames,
		"freq_bins": freqBins,
		"fft_size":  fftSize,
		"workers":   numWorkers,
	})

	return result, nil
}
