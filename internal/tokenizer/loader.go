package tokenizer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/go-tekken/internal/audio"
)

// ModelConfig is the configuration block of a serialized tokenizer
// artifact.
type ModelConfig struct {
	// Pattern is the pre-tokenization regex; it is part of the external
	// compatibility contract and is never inferred.
	Pattern string `json:"pattern"`
	// NumVocabTokens is the number of ordinary tokens carried by the
	// artifact.
	NumVocabTokens int `json:"num_vocab_tokens"`
	// DefaultVocabSize is the total id space including special tokens.
	DefaultVocabSize int `json:"default_vocab_size"`
	// DefaultNumSpecialTokens is the size of the reserved special range.
	DefaultNumSpecialTokens int `json:"default_num_special_tokens"`
	// Version selects version-specific behavior once at construction.
	Version string `json:"version"`
}

// ModelData is the full content of a tokenizer artifact (tekken.json).
type ModelData struct {
	Vocab         []TokenInfo        `json:"vocab"`
	SpecialTokens []SpecialTokenInfo `json:"special_tokens"`
	Config        ModelConfig        `json:"config"`
	Audio         *audio.Config      `json:"audio"`
}

// Load constructs a Tokenizer from serialized artifact bytes. Artifacts
// that predate explicit special-token declarations fall back to the legacy
// table. All vocabulary and configuration invariants are checked here; a
// tokenizer that loads successfully never fails on malformed tables at use
// time.
func Load(data []byte) (*Tokenizer, error) {
	var model ModelData
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("parsing tokenizer artifact: %w", err)
	}

	version, err := ParseVersion(model.Config.Version)
	if err != nil {
		return nil, err
	}

	specials := model.SpecialTokens
	if specials == nil {
		specials = DeprecatedSpecialTokens()
	}

	return New(
		model.Vocab,
		specials,
		model.Config.Pattern,
		model.Config.DefaultVocabSize,
		model.Config.DefaultNumSpecialTokens,
		version,
		model.Audio,
	)
}

// LoadFile constructs a Tokenizer from an artifact on disk.
func LoadFile(path string) (*Tokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tokenizer artifact %q: %w", path, err)
	}
	return Load(data)
}
