// Package transform exposes the two MP3gon operations: synthesizing a tube
// mesh from a signal's evolving spectrum, and time-warping a signal through
// an arbitrary warp function.
package transform

import (
	"context"
	"errors"
	"fmt"

	"github.com/RyanBlaney/mp3gon/algorithms/filters"
	"github.com/RyanBlaney/mp3gon/algorithms/spectral"
	"github.com/RyanBlaney/mp3gon/algorithms/windowing"
	"github.com/RyanBlaney/mp3gon/geometry"
	"github.com/RyanBlaney/mp3gon/logging"
	"github.com/RyanBlaney/mp3gon/playagon"
	"github.com/RyanBlaney/mp3gon/transcode"
)

// Synthesizer turns signals into tube meshes with a fixed configuration and
// FFT engine. It holds no mutable state and may be shared between goroutines.
type Synthesizer struct {
	config Config
	engine spectral.Transformer
	window windowing.Window
	logger logging.Logger
}

// NewSynthesizer validates cfg. A nil engine selects the one named by cfg.Engine.
func NewSynthesizer(cfg Config, engine spectral.Transformer) (*Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if engine == nil {
		var err error
		if engine, err = spectral.NewTransformer(cfg.Engine); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
		}
	}
	if v, ok := engine.(spectral.SizeValidator); ok && !v.ValidSize(cfg.FFTSize) {
		return nil, fmt.Errorf("%w: %w: %d", ErrInvalidConfiguration, spectral.ErrUnsupportedSize, cfg.FFTSize)
	}

	window, err := windowing.New(cfg.Window, cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	return &Synthesizer{
		config: cfg,
		engine: engine,
		window: window,
		logger: logging.WithFields(logging.Fields{
			"component": "mp3gon_synthesizer",
		}),
	}, nil
}

// Config returns the synthesizer's configuration.
func (s *Synthesizer) Config() Config { return s.config }

// Spectrogram frames the configured channel and computes its log-magnitude spectra.
func (s *Synthesizer) Spectrogram(ctx context.Context, sig *transcode.Signal) (*spectral.Spectrogram, error) {
	if s.config.Channel >= sig.NumChannels() {
		return nil, fmt.Errorf("%w: channel %d of a %d-channel signal", ErrInvalidConfiguration, s.config.Channel, sig.NumChannels())
	}

	samples := sig.Channel(s.config.Channel)
	if s.config.DCCutoff > 0 {
		blocker, err := filters.NewDCBlockerWithCutoff(sig.SampleRate(), s.config.DCCutoff)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
		}
		samples = blocker.ProcessBuffer(samples)
	}

	fe, err := spectral.NewFrameExtractor(samples, s.config.FFTSize, s.config.HopSize, s.window)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	analyzer := spectral.NewAnalyzer(s.engine,
		spectral.WithMagnitudeGain(s.config.MagnitudeGain),
		spectral.WithWorkers(s.config.Workers),
	)

	spec, err := analyzer.Analyze(ctx, fe, s.config.FreqBins())
	switch {
	case err == nil:
		return spec, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	case errors.Is(err, spectral.ErrInvalidBinCount):
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	default:
		return nil, fmt.Errorf("%w: %w", ErrTransformFailed, err)
	}
}

// Synthesize builds the tube mesh for sig. A signal shorter than one hop
// yields an empty mesh.
func (s *Synthesizer) Synthesize(ctx context.Context, sig *transcode.Signal) (*geometry.Mesh, error) {
	spec, err := s.Spectrogram(ctx, sig)
	if err != nil {
		s.logger.Error(err, "Spectral analysis failed")
		return nil, err
	}

	mesh, err := geometry.Synthesize(ctx, spec.LogMagnitude, s.config.Shape())
	if err != nil {
		if errors.Is(err, geometry.ErrInvalidParameter) {
			err = fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
		}
		return nil, err
	}

	s.logger.Debug("Geometry synthesized", logging.Fields{
		"samples":   sig.Len(),
		"frames":    mesh.Frames,
		"freq_bins": mesh.FreqBins,
		"vertices":  mesh.VertexCount(),
		"indices":   len(mesh.Indices),
	})
	return mesh, nil
}

// Describe computes per-frame centroid, rolloff and flux of the configured
// channel's spectrogram.
func (s *Synthesizer) Describe(ctx context.Context, sig *transcode.Signal) (spectral.Descriptors, error) {
	spec, err := s.Spectrogram(ctx, sig)
	if err != nil {
		return spectral.Descriptors{}, err
	}
	return spec.Describe(sig.SampleRate(), spectral.DefaultRolloffThreshold), nil
}

// SynthesizeGeometry builds a tube mesh with the engine named in cfg.
func SynthesizeGeometry(ctx context.Context, sig *transcode.Signal, cfg Config) (*geometry.Mesh, error) {
	s, err := NewSynthesizer(cfg, nil)
	if err != nil {
		return nil, err
	}
	return s.Synthesize(ctx, sig)
}

// TimeWarp returns a new signal with the same layout as sig, each sample taken
// from the source position chosen by warp.
func TimeWarp(ctx context.Context, sig *transcode.Signal, warp playagon.WarpFunc) (*transcode.Signal, error) {
	return playagon.TimeWarp(ctx, sig, warp)
}

// WarpedContainer time-warps sig and serializes the result with enc, ready
// for playback or download.
func WarpedContainer(ctx context.Context, sig *transcode.Signal, warp playagon.WarpFunc, enc transcode.ContainerEncoder) ([]byte, error) {
	warped, err := TimeWarp(ctx, sig, warp)
	if err != nil {
		return nil, err
	}

	data, err := enc.Encode(warped)
	if err != nil {
		logging.Error(err, "Container encoding failed", logging.Fields{
			"component": "mp3gon_playagon",
			"samples":   warped.Len(),
		})
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailed, err)
	}
	return data, nil
}
