package transform

import "errors"

var (
	// ErrInvalidConfiguration is returned before any frame is processed when
	// the framing, spectrum or geometry parameters cannot be used.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrTransformFailed wraps a failure reported by the FFT engine. No mesh is returned.
	ErrTransformFailed = errors.New("spectral transform failed")

	// ErrEncodeFailed wraps a failure reported by the container encoder.
	ErrEncodeFailed = errors.New("container encoding failed")
)
