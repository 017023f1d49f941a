package tokenizer

import (
	"encoding/base64"
	"fmt"
)

// TokenInfo is one vocabulary entry as serialized in a tokenizer artifact.
type TokenInfo struct {
	// Rank is the position of the token in the merge ordering; it doubles as
	// the unshifted token id. Lower ranks merge earlier.
	Rank int `json:"rank"`
	// TokenBytes is the base64-encoded literal byte rendering of the token.
	TokenBytes string `json:"token_bytes"`
	// TokenStr is an optional human-readable form; it is informational only.
	TokenStr *string `json:"token_str"`
}

// Vocabulary is the immutable id↔piece bijection plus merge-rank lookup for
// the ordinary (non-special) token range. Token ids equal merge ranks; the
// first 256 ids are guaranteed to be the single-byte tokens. A Vocabulary is
// never mutated after construction and is safe for concurrent readers.
type Vocabulary struct {
	pieces [][]byte
	ids    map[string]uint32
}

// NewVocabulary decodes and validates vocabulary entries. Entries beyond
// maxVocab are dropped (artifacts may carry more tokens than the model
// uses). Construction fails if the first 256 ranks are not the identity
// byte tokens, if ranks are not contiguous from zero, or if two entries
// share the same piece bytes.
func NewVocabulary(tokens []TokenInfo, maxVocab int) (*Vocabulary, error) {
	if maxVocab <= 0 {
		return nil, fmt.Errorf("%w: vocabulary size must be positive, got %d", ErrInvalidVocabulary, maxVocab)
	}
	if len(tokens) > maxVocab {
		tokens = tokens[:maxVocab]
	}
	if len(tokens) < 256 {
		return nil, fmt.Errorf("%w: need at least the 256 byte tokens, got %d entries",
			ErrInvalidVocabulary, len(tokens))
	}

	pieces := make([][]byte, len(tokens))
	ids := make(map[string]uint32, len(tokens))

	for _, tok := range tokens {
		piece, err := base64.StdEncoding.DecodeString(tok.TokenBytes)
		if err != nil {
			return nil, fmt.Errorf("%w: rank %d: decoding token bytes: %v", ErrInvalidVocabulary, tok.Rank, err)
		}

		if tok.Rank < 0 || tok.Rank >= len(tokens) {
			return nil, fmt.Errorf("%w: rank %d out of range [0,%d)", ErrInvalidVocabulary, tok.Rank, len(tokens))
		}
		if pieces[tok.Rank] != nil {
			return nil, fmt.Errorf("%w: duplicate rank %d", ErrInvalidVocabulary, tok.Rank)
		}

		// The base of the merge lattice: rank n must be the single byte n.
		if tok.Rank < 256 && (len(piece) != 1 || piece[0] != byte(tok.Rank)) {
			return nil, fmt.Errorf("%w: expected byte token 0x%02x at rank %d, got %q",
				ErrInvalidVocabulary, tok.Rank, tok.Rank, piece)
		}

		if _, dup := ids[string(piece)]; dup {
			return nil, fmt.Errorf("%w: piece %q appears at more than one rank", ErrInvalidVocabulary, piece)
		}

		pieces[tok.Rank] = piece
		ids[string(piece)] = uint32(tok.Rank)
	}

	// Every slot filled means ranks are contiguous from zero.
	for rank, piece := range pieces {
		if piece == nil {
			return nil, fmt.Errorf("%w: ranks are not contiguous, missing rank %d", ErrInvalidVocabulary, rank)
		}
	}

	return &Vocabulary{pieces: pieces, ids: ids}, nil
}

// Size returns the number of ordinary tokens.
func (v *Vocabulary) Size() int { return len(v.pieces) }

// PieceForID returns the literal bytes of an ordinary token id.
func (v *Vocabulary) PieceForID(id uint32) ([]byte, bool) {
	if int(id) >= len(v.pieces) {
		return nil, false
	}
	return v.pieces[id], true
}

// IDForPiece returns the id whose literal bytes equal piece.
func (v *Vocabulary) IDForPiece(piece []byte) (uint32, bool) {
	id, ok := v.ids[string(piece)]
	return id, ok
}

// rankFor returns the rank of the byte string s, used by the merge loop to
// score candidate adjacent pairs.
func (v *Vocabulary) rankFor(s string) (uint32, bool) {
	id, ok := v.ids[s]
	return id, ok
}

// MergeRank looks up the merge result of two adjacent ids. The merged token
// exists when the concatenation of both pieces is itself a vocabulary entry;
// its rank is the merge priority (lower merges earlier).
func (v *Vocabulary) MergeRank(left, right uint32) (merged uint32, ok bool) {
	lp, lok := v.PieceForID(left)
	rp, rok := v.PieceForID(right)
	if !lok || !rok {
		return 0, false
	}
	return v.IDForPiece(append(append([]byte{}, lp...), rp...))
}
