package audio

// Encoding is the result of tokenizing a waveform: the marker-delimited
// token sequence, the total placeholder frame count, and the processed
// (resampled and padded) waveform. Produced fresh per call; no state is
// shared between encodings.
type Encoding struct {
	Tokens     []uint32
	FrameCount int
	Audio      Audio
}

// Encoder converts framed audio into placeholder token sequences. The
// special-token ids are fixed at construction by the tokenizer that owns
// the encoder.
type Encoder struct {
	framer       *Framer
	audioToken   uint32
	beginToken   uint32
	endToken     uint32
	emitEndToken bool
}

// NewEncoder builds an encoder emitting beginToken followed by one
// audioToken per frame. Pass hasEnd=false when the token layout defines no
// end-of-audio marker.
func NewEncoder(cfg Config, audioToken, beginToken uint32, endToken uint32, hasEnd bool) (*Encoder, error) {
	framer, err := NewFramer(cfg)
	if err != nil {
		return nil, err
	}
	return &Encoder{
		framer:       framer,
		audioToken:   audioToken,
		beginToken:   beginToken,
		endToken:     endToken,
		emitEndToken: hasEnd,
	}, nil
}

// Config returns the encoder's audio configuration.
func (e *Encoder) Config() Config { return e.framer.cfg }

// Encode frames the waveform and emits its token layout. With a chunk cap
// of C frames, the sequence is split into ceil(frames/C) chunks, each
// independently bounded by markers; placeholder totals across chunks always
// equal the unchunked frame count, and a chunk boundary never splits a
// frame.
func (e *Encoder) Encode(a Audio) (Encoding, error) {
	features, processed, err := e.framer.Frame(a)
	if err != nil {
		return Encoding{}, err
	}

	total := len(features)
	capFrames := e.framer.cfg.ChunkFrameCap()
	if capFrames <= 0 || capFrames > total {
		capFrames = total
	}

	tokens := make([]uint32, 0, total+2*((total+capFrames-1)/capFrames))
	for remaining := total; remaining > 0; remaining -= capFrames {
		n := capFrames
		if remaining < n {
			n = remaining
		}
		tokens = append(tokens, e.beginToken)
		for i := 0; i < n; i++ {
			tokens = append(tokens, e.audioToken)
		}
		if e.emitEndToken {
			tokens = append(tokens, e.endToken)
		}
	}

	return Encoding{
		Tokens:     tokens,
		FrameCount: total,
		Audio:      New(processed, e.framer.cfg.SamplingRate, a.Format),
	}, nil
}
