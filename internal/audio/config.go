package audio

import "fmt"

// SpectrogramConfig holds the short-time analysis parameters.
type SpectrogramConfig struct {
	// NumMelBins is the number of mel-frequency bands (typically 80 or 128).
	NumMelBins int `json:"num_mel_bins"`
	// HopLength is the stride between analysis windows in samples.
	HopLength int `json:"hop_length"`
	// WindowSize is the analysis window length in samples (the FFT size).
	WindowSize int `json:"window_size"`
}

// Config describes how waveforms are framed into tokens.
type Config struct {
	// SamplingRate is the rate the waveform is resampled to before framing.
	SamplingRate int `json:"sampling_rate"`
	// FrameRate is the model's token frame rate in frames per second. It is
	// retained for duration accounting and the sample-per-token downsample
	// factor consumed by models; token emission itself follows the
	// spectrogram hop count.
	FrameRate float64 `json:"frame_rate"`
	// Spectrogram holds the mel analysis parameters.
	Spectrogram SpectrogramConfig `json:"audio_encoding_config"`
	// ChunkLengthSeconds caps chunk duration; zero disables chunking.
	ChunkLengthSeconds float64 `json:"chunk_length_s"`
}

// Validate checks the configuration invariants. It is called once at
// tokenizer construction so per-call paths never see an invalid Config.
func (c Config) Validate() error {
	if c.SamplingRate <= 0 {
		return fmt.Errorf("%w: sampling_rate must be > 0, got %d", ErrInvalidConfig, c.SamplingRate)
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("%w: frame_rate must be > 0, got %g", ErrInvalidConfig, c.FrameRate)
	}
	if c.Spectrogram.NumMelBins <= 0 {
		return fmt.Errorf("%w: num_mel_bins must be > 0, got %d", ErrInvalidConfig, c.Spectrogram.NumMelBins)
	}
	if c.Spectrogram.HopLength <= 0 {
		return fmt.Errorf("%w: hop_length must be > 0, got %d", ErrInvalidConfig, c.Spectrogram.HopLength)
	}
	if c.Spectrogram.WindowSize < c.Spectrogram.HopLength {
		return fmt.Errorf("%w: window_size (%d) must be >= hop_length (%d)",
			ErrInvalidConfig, c.Spectrogram.WindowSize, c.Spectrogram.HopLength)
	}
	if c.ChunkLengthSeconds < 0 {
		return fmt.Errorf("%w: chunk_length_s must be >= 0, got %g", ErrInvalidConfig, c.ChunkLengthSeconds)
	}
	return nil
}

// ChunkSamples returns the chunk length in samples, or 0 when chunking is
// disabled.
func (c Config) ChunkSamples() int {
	if c.ChunkLengthSeconds <= 0 {
		return 0
	}
	return int(c.ChunkLengthSeconds * float64(c.SamplingRate))
}

// ChunkFrameCap returns the maximum number of frames per chunk, or 0 when
// chunking is disabled.
func (c Config) ChunkFrameCap() int {
	if c.ChunkLengthSeconds <= 0 {
		return 0
	}
	return c.ChunkSamples() / c.Spectrogram.HopLength
}

// SamplesPerToken returns the downsampling factor from audio samples to
// model token frames, derived from the frame rate and hop length.
func (c Config) SamplesPerToken() int {
	return int(float64(c.SamplingRate) / c.FrameRate / float64(c.Spectrogram.HopLength))
}
