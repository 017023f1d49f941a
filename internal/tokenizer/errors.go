package tokenizer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidVocabulary is returned when a vocabulary artifact violates a
	// structural invariant (missing byte tokens, non-contiguous ranks,
	// duplicate pieces). It is only ever surfaced at construction time.
	ErrInvalidVocabulary = errors.New("invalid vocabulary")

	// ErrInvalidConfig is returned for inconsistent tokenizer configuration
	// (vocabulary sizes, duplicate special tokens, unknown versions).
	ErrInvalidConfig = errors.New("invalid tokenizer configuration")

	// ErrTokenNotFound is returned when a named control token is absent from
	// the special-token table.
	ErrTokenNotFound = errors.New("token not found")

	// ErrAudioNotConfigured is returned by EncodeAudio when the tokenizer was
	// built without an audio configuration.
	ErrAudioNotConfigured = errors.New("audio encoder not configured")
)

// UnknownTokenIDError reports a token id that falls outside both the special
// range and the ordinary vocabulary range.
type UnknownTokenIDError struct {
	ID uint32
}

func (e *UnknownTokenIDError) Error() string {
	return fmt.Sprintf("token id %d is out of vocabulary range", e.ID)
}

// UnexpectedSpecialTokenError reports a special token id encountered while
// decoding under PolicyError.
type UnexpectedSpecialTokenError struct {
	ID    uint32
	Token string
}

func (e *UnexpectedSpecialTokenError) Error() string {
	return fmt.Sprintf("unexpected special token %q (id %d) during decode", e.Token, e.ID)
}
