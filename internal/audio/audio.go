// Package audio implements the waveform side of the tokenizer: WAV
// ingestion, resampling, log-mel spectrogram framing, and the conversion of
// frame counts into audio placeholder tokens.
package audio

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/cwbudde/wav"
)

// Audio is an immutable waveform snapshot: mono float32 samples at a known
// sampling rate. Multi-channel sources are averaged down to mono at load
// time.
type Audio struct {
	Samples      []float32
	SamplingRate int
	Format       string
}

// New wraps raw samples in an Audio value.
func New(samples []float32, samplingRate int, format string) Audio {
	return Audio{Samples: samples, SamplingRate: samplingRate, Format: format}
}

// Duration returns the waveform length in seconds.
func (a Audio) Duration() float64 {
	if a.SamplingRate <= 0 {
		return 0
	}
	return float64(len(a.Samples)) / float64(a.SamplingRate)
}

// FromFile loads a WAV file into an Audio value.
func FromFile(path string) (Audio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Audio{}, fmt.Errorf("reading audio file: %w", err)
	}
	return FromBytes(data)
}

// FromBase64 decodes base64-encoded WAV data into an Audio value. This is
// the form audio arrives in over the HTTP API.
func FromBase64(data string) (Audio, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return Audio{}, fmt.Errorf("decoding base64 audio: %w", err)
	}
	return FromBytes(raw)
}

// FromBytes parses WAV bytes into an Audio value. Any positive sample rate
// and bit depth supported by the decoder is accepted; stereo input is
// averaged to mono.
func FromBytes(data []byte) (Audio, error) {
	if len(data) == 0 {
		return Audio{}, errors.New("empty WAV input")
	}

	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return Audio{}, errors.New("invalid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Audio{}, fmt.Errorf("reading PCM data: %w", err)
	}
	if dec.SampleRate == 0 {
		return Audio{}, ErrInvalidSampleRate
	}

	samples := buf.Data
	if ch := int(dec.NumChans); ch > 1 {
		samples = mixdown(samples, ch)
	}

	return Audio{
		Samples:      samples,
		SamplingRate: int(dec.SampleRate),
		Format:       "wav",
	}, nil
}

// mixdown averages interleaved channels into a mono signal.
func mixdown(interleaved []float32, channels int) []float32 {
	mono := make([]float32, 0, len(interleaved)/channels)
	for i := 0; i+channels <= len(interleaved); i += channels {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += interleaved[i+c]
		}
		mono = append(mono, sum/float32(channels))
	}
	return mono
}
