package audio

// Resample converts samples from srcRate to dstRate using linear
// interpolation. Matching rates and non-positive rates return the input
// unchanged; callers validate rates before resampling. The kernel is
// deterministic: output length is round(n * dst/src) and each output sample
// interpolates between the two nearest input samples.
func Resample(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || len(samples) == 0 || srcRate <= 0 || dstRate <= 0 {
		return samples
	}

	ratio := float64(srcRate) / float64(dstRate)
	outLen := int(float64(len(samples))*float64(dstRate)/float64(srcRate) + 0.5)
	if outLen == 0 {
		outLen = 1
	}

	out := make([]float32, outLen)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
	}
	return out
}
