// Package playagon deforms the time axis of a signal. Every output sample i is
// copied from the source sample selected by a caller-supplied warp of the
// normalized output position i/(N-1); no interpolation is performed.
package playagon

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"

	"github.com/RyanBlaney/mp3gon/algorithms/common"
	"github.com/RyanBlaney/mp3gon/logging"
	"github.com/RyanBlaney/mp3gon/transcode"
)

// chunkSize is the number of output positions mapped between cancellation checks.
const chunkSize = 4096

// snapULPs bounds the rounding error of t*(N-1) when t was itself computed
// as i/(N-1), so an identity warp selects sample i and not i-1. Positions
// further below an integer than this floor normally.
const (
	snapULPs       = 4
	machineEpsilon = 0x1p-52
)

var ErrNilWarp = errors.New("warp function is nil")

// WarpFunc maps normalized output time t in [0, 1] to a source time. Values
// outside [0, 1] are clamped to the signal bounds. It must be pure: the same t
// always gives the same result, and it may be called concurrently.
type WarpFunc func(t float64) float64

// Stats reports what happened during a warp.
type Stats struct {
	// Degenerate counts output positions whose warp value was NaN or infinite.
	Degenerate int `json:"degenerate"`
}

// SourceIndex maps output index i of an n-sample signal through warp:
// floor(warp(i/(n-1)) * (n-1)) clamped to [0, n-1]. A non-finite warp value
// is clamped to the nearest bound (NaN to 0) and reported as degenerate.
// n must be at least 2.
func SourceIndex(i, n int, warp WarpFunc) (idx int, degenerate bool) {
	last := float64(n - 1)
	srcT := warp(float64(i) / last)

	switch {
	case math.IsNaN(srcT):
		return 0, true
	case math.IsInf(srcT, 1):
		return n - 1, true
	case math.IsInf(srcT, -1):
		return 0, true
	}

	pos := srcT * last
	if r := math.Round(pos); r > pos && r-pos <= snapULPs*machineEpsilon*r {
		pos = r
	}
	pos = math.Floor(pos)

	// compare as floats so huge values never overflow int
	if pos <= 0 {
		return 0, false
	}
	if pos >= last {
		return n - 1, false
	}
	return int(pos), false
}

// Resampler applies warps to signals.
type Resampler struct {
	workers int
	logger  logging.Logger
}

// Option configures a Resampler.
type Option func(*Resampler)

// WithWorkers fixes the number of goroutines mapping indices. Zero picks one
// from the CPU count.
func WithWorkers(n int) Option {
	return func(r *Resampler) { r.workers = n }
}

// NewResampler creates a Resampler.
func NewResampler(opts ...Option) *Resampler {
	r := &Resampler{
		logger: logging.WithFields(logging.Fields{
			"component": "playagon_resampler",
		}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TimeWarp warps s with a default Resampler.
func TimeWarp(ctx context.Context, s *transcode.Signal, warp WarpFunc) (*transcode.Signal, error) {
	out, _, err := NewResampler().Warp(ctx, s, warp)
	return out, err
}

// Warp returns a new signal with the channel count, length and sample rate of
// s. Signals shorter than two samples are returned as an unchanged copy.
// Cancellation discards all work.
func (r *Resampler) Warp(ctx context.Context, s *transcode.Signal, warp WarpFunc) (*transcode.Signal, Stats, error) {
	if warp == nil {
		return nil, Stats{}, ErrNilWarp
	}

	n := s.Len()
	numCh := s.NumChannels()
	if n < 2 {
		out, err := copySignal(s)
		return out, Stats{}, err
	}

	indices, stats, err := r.mapIndices(ctx, n, warp)
	if err != nil {
		return nil, Stats{}, err
	}

	channels := make([][]float64, numCh)
	var wg sync.WaitGroup
	for ch := range numCh {
		channels[ch] = make([]float64, n)
		wg.Add(1)
		go func(ch int) {
			defer wg.Done()
			out := channels[ch]
			for i, src := range indices {
				out[i] = s.Sample(ch, src)
			}
		}(ch)
	}
	wg.Wait()

	if stats.Degenerate > 0 {
		r.logger.Warn("Warp produced non-finite source times; clamped", logging.Fields{
			"degenerate": stats.Degenerate,
			"samples":    n,
		})
	}
	r.logger.Debug("Time warp complete", logging.Fields{
		"channels": numCh,
		"samples":  n,
	})

	out, err := transcode.WrapChannels(s.SampleRate(), channels)
	return out, stats, err
}

// mapIndices computes SourceIndex for every output position. The warp is
// evaluated once per position and shared by all channels.
func (r *Resampler) mapIndices(ctx context.Context, n int, warp WarpFunc) ([]int, Stats, error) {
	indices := make([]int, n)
	numChunks := (n + chunkSize - 1) / chunkSize
	numWorkers := common.WorkerCount(numChunks, r.workers)

	var (
		degenerate atomic.Int64
		wg         sync.WaitGroup
	)
	chunks := make(chan int, numWorkers)

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range chunks {
				if ctx.Err() != nil {
					continue
				}
				start := c * chunkSize
				end := min(start+chunkSize, n)
				for i := start; i < end; i++ {
					idx, bad := SourceIndex(i, n, warp)
					indices[i] = idx
					if bad {
						degenerate.Add(1)
					}
				}
			}
		}()
	}

	go func() {
		defer close(chunks)
		for c := range numChunks {
			select {
			case chunks <- c:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, Stats{}, err
	}
	return indices, Stats{Degenerate: int(degenerate.Load())}, nil
}

func copySignal(s *transcode.Signal) (*transcode.Signal, error) {
	channels := make([][]float64, s.NumChannels())
	for ch := range channels {
		channels[ch] = s.Channel(ch)
	}
	return transcode.WrapChannels(s.SampleRate(), channels)
}
