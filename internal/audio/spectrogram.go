package audio

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// logFloor guards the logarithmic compression against log(0).
const logFloor = 1e-10

// Pad extends samples with trailing zeros so that at least one full
// analysis window fits. When chunking is enabled the waveform is instead
// padded up to a whole number of chunks. Padding is only ever appended,
// never prepended, so temporal alignment is preserved.
func Pad(samples []float32, cfg Config) []float32 {
	target := len(samples)

	if chunk := cfg.ChunkSamples(); chunk > 0 {
		target = (len(samples) + chunk - 1) / chunk * chunk
	} else if len(samples) < cfg.Spectrogram.WindowSize {
		target = cfg.Spectrogram.WindowSize
	}

	if target <= len(samples) {
		return samples
	}

	padded := make([]float32, target)
	copy(padded, samples)
	return padded
}

// FrameCount returns the number of left-aligned analysis windows a padded
// waveform of sampleCount samples produces. This count alone determines how
// many placeholder tokens the waveform occupies; the mel band count only
// affects feature width.
func FrameCount(sampleCount int, cfg Config) int {
	window := cfg.Spectrogram.WindowSize
	hop := cfg.Spectrogram.HopLength
	if sampleCount < window {
		sampleCount = window
	}
	return (sampleCount-window+hop-1)/hop + 1
}

// Framer computes log-mel spectrograms. It precomputes the window function,
// the FFT plan, and the filter bank once, and is then safe for concurrent
// use since Frame does not mutate any of them.
type Framer struct {
	cfg    Config
	window []float64
	bank   [][]float64
	fft    *fourier.FFT
}

// NewFramer validates the configuration and prepares the analysis tables.
// The mel filter bank spans 0 Hz to Nyquist.
func NewFramer(cfg Config) (*Framer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := cfg.Spectrogram.WindowSize
	numFreqBins := n/2 + 1

	bank, err := MelFilterBank(numFreqBins, cfg.Spectrogram.NumMelBins, 0, float64(cfg.SamplingRate)/2, cfg.SamplingRate)
	if err != nil {
		return nil, err
	}

	// Periodic Hann window.
	window := make([]float64, n)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n)))
	}

	return &Framer{
		cfg:    cfg,
		window: window,
		bank:   bank,
		fft:    fourier.NewFFT(n),
	}, nil
}

// Config returns the framer's configuration.
func (f *Framer) Config() Config { return f.cfg }

// Frame resamples, pads, and converts a waveform into a log-mel feature
// matrix of shape (frames, numMelBins). The returned sample slice is the
// processed waveform (after resampling and padding) and the frame count
// equals len(features).
func (f *Framer) Frame(a Audio) (features [][]float64, processed []float32, err error) {
	if a.SamplingRate <= 0 {
		return nil, nil, ErrInvalidSampleRate
	}

	samples := Resample(a.Samples, a.SamplingRate, f.cfg.SamplingRate)
	samples = Pad(samples, f.cfg)
	if len(samples) == 0 {
		return nil, nil, ErrEmptyAudio
	}

	n := f.cfg.Spectrogram.WindowSize
	hop := f.cfg.Spectrogram.HopLength
	frames := FrameCount(len(samples), f.cfg)
	numFreqBins := n/2 + 1

	buf := make([]float64, n)
	coeffs := make([]complex128, numFreqBins)
	power := make([]float64, numFreqBins)

	features = make([][]float64, frames)
	for frame := 0; frame < frames; frame++ {
		start := frame * hop
		for i := 0; i < n; i++ {
			if start+i < len(samples) {
				buf[i] = float64(samples[start+i]) * f.window[i]
			} else {
				buf[i] = 0
			}
		}

		f.fft.Coefficients(coeffs, buf)
		for i, c := range coeffs {
			re, im := real(c), imag(c)
			power[i] = re*re + im*im
		}

		mel := make([]float64, f.cfg.Spectrogram.NumMelBins)
		for m := range mel {
			var sum float64
			for i := 0; i < numFreqBins; i++ {
				sum += power[i] * f.bank[i][m]
			}
			mel[m] = math.Log10(math.Max(sum, logFloor))
		}
		features[frame] = mel
	}

	return features, samples, nil
}
