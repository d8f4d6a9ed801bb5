package transform

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/RyanBlaney/mp3gon/algorithms/common"
	"github.com/RyanBlaney/mp3gon/algorithms/spectral"
	"github.com/RyanBlaney/mp3gon/algorithms/windowing"
	"github.com/RyanBlaney/mp3gon/geometry"
)

// Config holds the geometry synthesis parameters.
type Config struct {
	// Framing
	FFTSize          int     `json:"fft_size"`           // power of two
	HopSize          int     `json:"hop_size"`           // samples between frame starts
	FreqBinsFraction float64 `json:"freq_bins_fraction"` // kept bins = FFTSize * fraction, at most half
	Channel          int     `json:"channel"`            // source channel to analyse
	DCCutoff         float64 `json:"dc_cutoff"`          // Hz; 0 leaves the signal unfiltered

	// Spectrum
	Window        windowing.Type  `json:"window"`
	Engine        spectral.Engine `json:"engine"`
	MagnitudeGain float64         `json:"magnitude_gain"` // log10(1 + |X| * gain)
	Workers       int             `json:"workers"`        // 0 picks from CPU count

	// Tube shape
	BaseRadius  float64 `json:"base_radius"`
	AmpScaling  float64 `json:"amp_scaling"`
	TotalLength float64 `json:"total_length"`
}

// DefaultConfig returns 512-point frames every 1024 samples, keeping the
// lowest quarter of the spectrum.
func DefaultConfig() Config {
	shape := geometry.DefaultParams()
	return Config{
		FFTSize:          512,
		HopSize:          1024,
		FreqBinsFraction: 0.25,
		Channel:          0,
		DCCutoff:         0,
		Window:           windowing.TypeHann,
		Engine:           spectral.EngineGoDSP,
		MagnitudeGain:    spectral.DefaultMagnitudeGain,
		Workers:          0,
		BaseRadius:       shape.BaseRadius,
		AmpScaling:       shape.AmpScaling,
		TotalLength:      shape.TotalLength,
	}
}

// LoadConfig reads a JSON file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return cfg, cfg.Validate()
}

// FreqBins is the number of spectrum bins kept per frame.
func (c Config) FreqBins() int {
	return int(float64(c.FFTSize) * c.FreqBinsFraction)
}

// Shape returns the geometry parameters.
func (c Config) Shape() geometry.Params {
	return geometry.Params{
		BaseRadius:  c.BaseRadius,
		AmpScaling:  c.AmpScaling,
		TotalLength: c.TotalLength,
	}
}

// Validate checks every parameter; errors match ErrInvalidConfiguration.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
	}

	if !common.IsPowerOfTwo(c.FFTSize) {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, spectral.ErrInvalidFrameSize)
	}
	if c.HopSize <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, spectral.ErrInvalidHopSize)
	}
	if !(c.FreqBinsFraction > 0 && c.FreqBinsFraction <= 0.5) {
		return invalid("freq_bins_fraction must be in (0, 0.5], got %v", c.FreqBinsFraction)
	}
	if c.FreqBins() < 1 {
		return invalid("fft_size %d with fraction %v keeps no bins", c.FFTSize, c.FreqBinsFraction)
	}
	if c.Channel < 0 {
		return invalid("channel must be non-negative, got %d", c.Channel)
	}
	if !(c.DCCutoff >= 0) || math.IsInf(c.DCCutoff, 0) {
		return invalid("dc_cutoff must be non-negative and finite, got %v", c.DCCutoff)
	}
	if c.Workers < 0 {
		return invalid("workers must be non-negative, got %d", c.Workers)
	}
	if !(c.MagnitudeGain > 0) || math.IsInf(c.MagnitudeGain, 0) {
		return invalid("magnitude_gain must be positive and finite, got %v", c.MagnitudeGain)
	}
	if _, err := windowing.New(c.Window, c.FFTSize); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	if _, err := spectral.NewTransformer(c.Engine); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	if err := c.Shape().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return nil
}
