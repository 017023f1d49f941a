package audio

import "errors"

var (
	// ErrInvalidConfig is returned when an audio configuration violates its
	// invariants (zero rates, zero window sizes, negative chunk lengths).
	ErrInvalidConfig = errors.New("invalid audio configuration")

	// ErrEmptyAudio is returned when a waveform has no samples even after
	// padding. Guarded against although the padding step makes it unreachable
	// for well-formed input.
	ErrEmptyAudio = errors.New("audio is empty")

	// ErrInvalidSampleRate is returned when a waveform declares a
	// non-positive sampling rate, including malformed WAV headers.
	ErrInvalidSampleRate = errors.New("invalid audio sampling rate")
)
