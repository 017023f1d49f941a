package audio

import (
	"fmt"
	"math"
)

// Slaney mel-scale breakpoint constants: linear below 1 kHz, logarithmic
// above.
const (
	melBreakHertz = 1000.0
	melBreakMel   = 15.0
)

var melLogStep = 27.0 / math.Log(6.4)

// HertzToMel converts a frequency in Hz to the Slaney mel scale.
func HertzToMel(freq float64) float64 {
	if freq >= melBreakHertz {
		return melBreakMel + math.Log(freq/melBreakHertz)*melLogStep
	}
	return 3.0 * freq / 200.0
}

// MelToHertz converts a Slaney mel-scale value back to Hz.
func MelToHertz(mel float64) float64 {
	if mel >= melBreakMel {
		return melBreakHertz * math.Exp((mel-melBreakMel)/melLogStep)
	}
	return 200.0 * mel / 3.0
}

// MelFilterBank builds a Slaney-normalized triangular filter bank of shape
// (numFrequencyBins, numMelBins). Applying it to a magnitude spectrum
// projects linear frequency bins onto mel bands.
func MelFilterBank(numFrequencyBins, numMelBins int, minFrequency, maxFrequency float64, samplingRate int) ([][]float64, error) {
	if numFrequencyBins < 2 {
		return nil, fmt.Errorf("%w: need at least 2 frequency bins, got %d", ErrInvalidConfig, numFrequencyBins)
	}
	if minFrequency > maxFrequency {
		return nil, fmt.Errorf("%w: min frequency %g exceeds max frequency %g",
			ErrInvalidConfig, minFrequency, maxFrequency)
	}

	// Triangle corner frequencies, evenly spaced on the mel scale.
	melMin := HertzToMel(minFrequency)
	melMax := HertzToMel(maxFrequency)
	corners := make([]float64, numMelBins+2)
	for i := range corners {
		mel := melMin + (melMax-melMin)*float64(i)/float64(numMelBins+1)
		corners[i] = MelToHertz(mel)
	}

	fftFreqs := make([]float64, numFrequencyBins)
	for i := range fftFreqs {
		fftFreqs[i] = float64(i) * float64(samplingRate) / 2.0 / float64(numFrequencyBins-1)
	}

	bank := make([][]float64, numFrequencyBins)
	for i := range bank {
		bank[i] = make([]float64, numMelBins)
	}

	for m := 0; m < numMelBins; m++ {
		left, center, right := corners[m], corners[m+1], corners[m+2]
		enorm := 2.0 / (right - left)
		for f, freq := range fftFreqs {
			var v float64
			switch {
			case freq >= left && freq <= center:
				v = (freq - left) / (center - left)
			case freq > center && freq <= right:
				v = (right - freq) / (right - center)
			}
			bank[f][m] = math.Max(v, 0) * enorm
		}
	}

	return bank, nil
}
