// Package transcode holds the Signal data model and converts signals to and
// from PCM WAV containers.
package transcode

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrChannelLength     = errors.New("channels differ in length")
	ErrNoChannels        = errors.New("signal needs at least one channel")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
)

// Signal is an immutable multichannel sample buffer. Every channel holds the
// same number of samples.
type Signal struct {
	channels   [][]float64
	sampleRate int
}

// NewSignal copies the given channels into a new Signal.
func NewSignal(sampleRate int, channels ...[]float64) (*Signal, error) {
	owned := make([][]float64, len(channels))
	for i, ch := range channels {
		owned[i] = append([]float64(nil), ch...)
	}
	return WrapChannels(sampleRate, owned)
}

// WrapChannels builds a Signal that takes ownership of channels. The caller
// must not modify them afterwards.
func WrapChannels(sampleRate int, channels [][]float64) (*Signal, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	for i, ch := range channels {
		if len(ch) != len(channels[0]) {
			return nil, fmt.Errorf("%w: channel %d has %d samples, channel 0 has %d", ErrChannelLength, i, len(ch), len(channels[0]))
		}
	}
	return &Signal{channels: channels, sampleRate: sampleRate}, nil
}

// NewSilentSignal allocates a zero-filled signal.
func NewSilentSignal(sampleRate, numChannels, length int) (*Signal, error) {
	if numChannels <= 0 {
		return nil, ErrNoChannels
	}
	if length < 0 {
		length = 0
	}
	channels := make([][]float64, numChannels)
	for i := range channels {
		channels[i] = make([]float64, length)
	}
	return WrapChannels(sampleRate, channels)
}

func (s *Signal) SampleRate() int  { return s.sampleRate }
func (s *Signal) NumChannels() int { return len(s.channels) }

// Len is the per-channel sample count.
func (s *Signal) Len() int { return len(s.channels[0]) }

// Duration is Len / SampleRate.
func (s *Signal) Duration() time.Duration {
	return time.Duration(float64(s.Len()) / float64(s.sampleRate) * float64(time.Second))
}

// Sample returns sample i of channel ch.
func (s *Signal) Sample(ch, i int) float64 {
	return s.channels[ch][i]
}

// Channel returns a copy of channel ch.
func (s *Signal) Channel(ch int) []float64 {
	return append([]float64(nil), s.channels[ch]...)
}

// Equal reports whether both signals have the same rate, layout and samples.
func (s *Signal) Equal(other *Signal) bool {
	if s.sampleRate != other.sampleRate || len(s.channels) != len(other.channels) || s.Len() != other.Len() {
		return false
	}
	for ch := range s.channels {
		for i, v := range s.channels[ch] {
			if other.channels[ch][i] != v {
				return false
			}
		}
	}
	return true
}
