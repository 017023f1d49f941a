// Package tokenizer implements a byte-pair-encoding tokenizer with
// multimodal audio support. Text is merged with a greedy lowest-rank-first
// BPE over a fixed vocabulary; waveforms are framed into placeholder token
// runs bounded by audio markers. Both share one token-id space: ids
// [0, NumSpecialTokens) are reserved for special tokens and ordinary
// vocabulary ranks are shifted above them.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/example/go-tekken/internal/audio"
)

// Tokenizer converts between text (and audio) and token ids. All state is
// fixed at construction; every method is a pure read, so a single instance
// is safe for concurrent use from any number of goroutines.
type Tokenizer struct {
	engine       *bpeEngine
	vocab        *Vocabulary
	specials     *SpecialTokenTable
	vocabSize    int
	version      Version
	audioConfig  *audio.Config
	audioEncoder *audio.Encoder
}

// New builds a Tokenizer from validated parts. vocabSize is the total id
// space including special tokens; numSpecial of those ids are reserved. An
// audio configuration is optional; when present, the special table must
// define the [AUDIO] and [BEGIN_AUDIO] tokens ([END_AUDIO] is honored when
// declared).
func New(vocab []TokenInfo, specialTokens []SpecialTokenInfo, pattern string,
	vocabSize, numSpecial int, version Version, audioConfig *audio.Config,
) (*Tokenizer, error) {
	if numSpecial <= 0 {
		return nil, fmt.Errorf("%w: num_special_tokens must be > 0, got %d", ErrInvalidConfig, numSpecial)
	}
	if vocabSize > len(vocab)+numSpecial {
		return nil, fmt.Errorf("%w: vocab_size (%d) must be <= vocab entries (%d) + num_special_tokens (%d)",
			ErrInvalidConfig, vocabSize, len(vocab), numSpecial)
	}

	specials, err := NewSpecialTokenTable(specialTokens, numSpecial)
	if err != nil {
		return nil, err
	}

	v, err := NewVocabulary(vocab, vocabSize-numSpecial)
	if err != nil {
		return nil, err
	}

	engine, err := newBPEEngine(v, pattern)
	if err != nil {
		return nil, err
	}

	t := &Tokenizer{
		engine:      engine,
		vocab:       v,
		specials:    specials,
		vocabSize:   vocabSize,
		version:     version,
		audioConfig: audioConfig,
	}

	if audioConfig != nil {
		audioID, ok := specials.ID(Audio.String())
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTokenNotFound, Audio)
		}
		beginID, ok := specials.ID(BeginAudio.String())
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTokenNotFound, BeginAudio)
		}
		endID, hasEnd := specials.ID(EndAudio.String())

		enc, err := audio.NewEncoder(*audioConfig, audioID, beginID, endID, hasEnd)
		if err != nil {
			return nil, err
		}
		t.audioEncoder = enc
	}

	return t, nil
}

// VocabSize returns the total id space including special tokens.
func (t *Tokenizer) VocabSize() int { return t.vocabSize }

// NumSpecialTokens returns the number of reserved special ids.
func (t *Tokenizer) NumSpecialTokens() int { return t.specials.Len() }

// Version returns the tokenizer version selected at construction.
func (t *Tokenizer) Version() Version { return t.version }

// SpecialTokens returns the special-token table in id order.
func (t *Tokenizer) SpecialTokens() []SpecialTokenInfo { return t.specials.Entries() }

// BOSID returns the begin-of-sequence token id.
func (t *Tokenizer) BOSID() (uint32, error) { return t.ControlTokenID(Bos.String()) }

// EOSID returns the end-of-sequence token id.
func (t *Tokenizer) EOSID() (uint32, error) { return t.ControlTokenID(Eos.String()) }

// PadID returns the padding token id.
func (t *Tokenizer) PadID() (uint32, error) { return t.ControlTokenID(Pad.String()) }

// UnkID returns the unknown token id.
func (t *Tokenizer) UnkID() (uint32, error) { return t.ControlTokenID(Unk.String()) }

// ControlTokenID resolves a control token by its literal string.
func (t *Tokenizer) ControlTokenID(token string) (uint32, error) {
	id, ok := t.specials.ID(token)
	if !ok {
		return 0, fmt.Errorf("%w: unknown control token %q", ErrTokenNotFound, token)
	}
	return id, nil
}

// IsSpecialToken reports whether id falls in the reserved special range.
func (t *Tokenizer) IsSpecialToken(id uint32) bool { return t.specials.Contains(id) }

// IsByte reports whether id is one of the 256 single-byte fallback tokens.
func (t *Tokenizer) IsByte(id uint32) bool {
	if t.specials.Contains(id) {
		return false
	}
	return id-uint32(t.specials.Len()) < 256
}

// Encode tokenizes text into ids, optionally wrapped with BOS/EOS. Text is
// treated as raw bytes: every byte has a single-byte fallback token, so
// encoding never rejects input. Encoding the same text always yields the
// same ids.
func (t *Tokenizer) Encode(text string, addBOS, addEOS bool) ([]uint32, error) {
	raw, err := t.engine.encode(text)
	if err != nil {
		return nil, err
	}

	shift := uint32(t.specials.Len())
	ids := make([]uint32, 0, len(raw)+2)
	if addBOS {
		bos, err := t.BOSID()
		if err != nil {
			return nil, err
		}
		ids = append(ids, bos)
	}
	for _, id := range raw {
		ids = append(ids, id+shift)
	}
	if addEOS {
		eos, err := t.EOSID()
		if err != nil {
			return nil, err
		}
		ids = append(ids, eos)
	}
	return ids, nil
}

// Decode converts ids back to text, handling special ids per the policy.
// decode(encode(text)) reproduces text exactly for well-formed UTF-8 input
// with no special tokens requested; invalid byte runs in the decoded buffer
// are replaced with U+FFFD rather than failing the whole decode.
func (t *Tokenizer) Decode(ids []uint32, policy SpecialTokenPolicy) (string, error) {
	parts, err := t.DecodeAll(ids, policy)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, ""), nil
}

// DecodeAll decodes ids into segments, grouping consecutive runs of special
// and ordinary tokens. Special runs are rendered per the policy; ordinary
// runs are concatenated piece bytes interpreted as UTF-8.
func (t *Tokenizer) DecodeAll(ids []uint32, policy SpecialTokenPolicy) ([]string, error) {
	var (
		parts   []string
		group   []uint32
		special bool
	)

	flush := func() error {
		if len(group) == 0 {
			return nil
		}
		rendered, err := t.decodeGroup(group, special, policy)
		if err != nil {
			return err
		}
		parts = append(parts, rendered...)
		group = group[:0]
		return nil
	}

	for _, id := range ids {
		if int(id) >= t.vocabSize {
			return nil, &UnknownTokenIDError{ID: id}
		}
		isSpecial := t.specials.Contains(id)
		if len(group) > 0 && isSpecial != special {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		special = isSpecial
		group = append(group, id)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return parts, nil
}

func (t *Tokenizer) decodeGroup(group []uint32, special bool, policy SpecialTokenPolicy) ([]string, error) {
	if special {
		switch policy {
		case PolicyError:
			piece, _ := t.specials.Piece(group[0])
			return nil, &UnexpectedSpecialTokenError{ID: group[0], Token: piece}
		case PolicyIgnore:
			return nil, nil
		default: // PolicyKeep
			out := make([]string, 0, len(group))
			for _, id := range group {
				piece, _ := t.specials.Piece(id)
				out = append(out, piece)
			}
			return out, nil
		}
	}

	shift := uint32(t.specials.Len())
	shifted := make([]uint32, len(group))
	for i, id := range group {
		shifted[i] = id - shift
	}
	buf, err := t.engine.decode(shifted)
	if err != nil {
		return nil, err
	}
	return []string{strings.ToValidUTF8(string(buf), "�")}, nil
}

// IDToPiece renders a single token id as a string, including special
// tokens.
func (t *Tokenizer) IDToPiece(id uint32) (string, error) {
	if int(id) >= t.vocabSize {
		return "", &UnknownTokenIDError{ID: id}
	}
	return t.Decode([]uint32{id}, PolicyKeep)
}

// IDToBytePiece returns the literal bytes of a single token id. Special ids
// follow the policy: Keep renders the literal string bytes, Ignore returns
// nil, Error fails.
func (t *Tokenizer) IDToBytePiece(id uint32, policy SpecialTokenPolicy) ([]byte, error) {
	if int(id) >= t.vocabSize {
		return nil, &UnknownTokenIDError{ID: id}
	}

	if piece, ok := t.specials.Piece(id); ok {
		switch policy {
		case PolicyError:
			return nil, &UnexpectedSpecialTokenError{ID: id, Token: piece}
		case PolicyIgnore:
			return nil, nil
		default:
			return []byte(piece), nil
		}
	}

	piece, _ := t.vocab.PieceForID(id - uint32(t.specials.Len()))
	out := make([]byte, len(piece))
	copy(out, piece)
	return out, nil
}

// HasAudioSupport reports whether the tokenizer was built with an audio
// configuration.
func (t *Tokenizer) HasAudioSupport() bool { return t.audioEncoder != nil }

// AudioConfig returns the audio configuration, or nil without audio
// support.
func (t *Tokenizer) AudioConfig() *audio.Config { return t.audioConfig }

// EncodeAudio frames a waveform into its placeholder token sequence.
// Callers splice the resulting tokens into a larger multimodal sequence
// themselves; the tokenizer does not interleave text and audio.
func (t *Tokenizer) EncodeAudio(a audio.Audio) (audio.Encoding, error) {
	if t.audioEncoder == nil {
		return audio.Encoding{}, ErrAudioNotConfigured
	}
	return t.audioEncoder.Encode(a)
}
