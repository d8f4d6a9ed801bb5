package transcode

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/RyanBlaney/mp3gon/logging"
)

const wavFormatPCM = 1

var (
	ErrNotWav              = errors.New("not a WAV file")
	ErrUnsupportedBitDepth = errors.New("unsupported bit depth")
	ErrUnsupportedFormat   = errors.New("unsupported WAV sample format")
)

// ContainerEncoder serializes a Signal into a playable container.
type ContainerEncoder interface {
	Encode(s *Signal) ([]byte, error)
}

// EncoderConfig holds WAV encoder configuration
type EncoderConfig struct {
	BitDepth int `json:"bit_depth"` // 16, 24 or 32
}

// DefaultEncoderConfig returns 16-bit PCM.
func DefaultEncoderConfig() EncoderConfig {
	return EncoderConfig{BitDepth: 16}
}

// WAVEncoder writes interleaved integer PCM through go-audio/wav.
type WAVEncoder struct {
	config EncoderConfig
	logger logging.Logger
}

// NewWAVEncoder validates cfg and creates an encoder.
func NewWAVEncoder(cfg EncoderConfig) (*WAVEncoder, error) {
	switch cfg.BitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, cfg.BitDepth)
	}
	return &WAVEncoder{
		config: cfg,
		logger: logging.WithFields(logging.Fields{
			"component": "wav_encoder",
		}),
	}, nil
}

// Encode returns the complete WAV file for s.
func (e *WAVEncoder) Encode(s *Signal) ([]byte, error) {
	buf := &seekBuffer{}
	if err := e.EncodeTo(buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo writes s to w. Samples are clamped to [-1, 1] before quantizing.
func (e *WAVEncoder) EncodeTo(w io.WriteSeeker, s *Signal) error {
	numCh := s.NumChannels()
	maxInt := math.Pow(2, float64(e.config.BitDepth-1)) - 1

	data := make([]int, s.Len()*numCh)
	for i := range s.Len() {
		for ch := range numCh {
			v := s.Sample(ch, i)
			if math.IsNaN(v) {
				v = 0
			}
			v = math.Max(-1, math.Min(1, v))
			data[i*numCh+ch] = int(math.Round(v * maxInt))
		}
	}

	enc := wav.NewEncoder(w, s.SampleRate(), e.config.BitDepth, numCh, wavFormatPCM)
	intBuf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numCh, SampleRate: s.SampleRate()},
		Data:           data,
		SourceBitDepth: e.config.BitDepth,
	}

	if err := enc.Write(intBuf); err != nil {
		e.logger.Error(err, "Failed to write PCM data")
		return fmt.Errorf("write pcm: %w", err)
	}
	if err := enc.Close(); err != nil {
		e.logger.Error(err, "Failed to finalize WAV header")
		return fmt.Errorf("close wav: %w", err)
	}

	e.logger.Debug("Encoded WAV", logging.Fields{
		"channels":    numCh,
		"samples":     s.Len(),
		"sample_rate": s.SampleRate(),
		"bit_depth":   e.config.BitDepth,
	})
	return nil
}

// DecodeWAV reads an integer PCM WAV file into a Signal scaled to [-1, 1).
func DecodeWAV(r io.ReadSeeker) (*Signal, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotWav
	}
	// IEEE float and compressed formats would be misread as integers
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: format tag %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read pcm: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	numCh := int(dec.NumChans)
	if numCh <= 0 {
		return nil, ErrNoChannels
	}

	scale := math.Pow(2, float64(bitDepth-1))
	offset := 0.0
	// 8-bit PCM is unsigned
	if bitDepth == 8 {
		offset = 128
	}

	frames := len(buf.Data) / numCh
	channels := make([][]float64, numCh)
	for ch := range channels {
		channels[ch] = make([]float64, frames)
	}
	for i := range frames {
		for ch := range numCh {
			channels[ch][i] = (float64(buf.Data[i*numCh+ch]) - offset) / scale
		}
	}

	return WrapChannels(int(dec.SampleRate), channels)
}

// seekBuffer is an in-memory io.WriteSeeker; the WAV encoder seeks back to
// patch chunk sizes once the data length is known.
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	end := b.pos + len(p)
	if end > len(b.data) {
		b.data = append(b.data, make([]byte, end-len(b.data))...)
	}
	copy(b.data[b.pos:], p)
	b.pos = end
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(b.pos)
	case io.SeekEnd:
		base = int64(len(b.data))
	default:
		return 0, fmt.Errorf("seek: invalid whence %d", whence)
	}
	next := base + offset
	if next < 0 {
		return 0, fmt.Errorf("seek: negative position %d", next)
	}
	b.pos = int(next)
	return next, nil
}

func (b *seekBuffer) Bytes() []byte { return b.data }
