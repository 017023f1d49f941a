// Package testutil provides shared fixtures for tokenizer and audio tests:
// synthetic vocabulary artifacts and deterministic waveforms.
//
// The vocabulary builders emit artifact JSON directly so that packages at
// any layer can load fixtures without import cycles.
package testutil

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// VocabEntry mirrors one vocabulary entry of a tokenizer artifact.
type VocabEntry struct {
	Rank       int    `json:"rank"`
	TokenBytes string `json:"token_bytes"`
}

// ByteVocab returns the 256 single-byte tokens followed by the given merged
// pieces at ranks 256, 257, ...
func ByteVocab(merges ...string) []VocabEntry {
	entries := make([]VocabEntry, 0, 256+len(merges))
	for b := 0; b < 256; b++ {
		entries = append(entries, VocabEntry{
			Rank:       b,
			TokenBytes: base64.StdEncoding.EncodeToString([]byte{byte(b)}),
		})
	}
	for i, piece := range merges {
		entries = append(entries, VocabEntry{
			Rank:       256 + i,
			TokenBytes: base64.StdEncoding.EncodeToString([]byte(piece)),
		})
	}
	return entries
}

// ArtifactOptions configures a synthetic tokenizer artifact.
type ArtifactOptions struct {
	Merges     []string
	NumSpecial int
	Version    string
	Pattern    string
	Audio      map[string]any
}

// Artifact serializes a synthetic tekken-style artifact. Zero-value options
// default to 20 legacy special tokens, version v7, and the standard
// pre-tokenization pattern.
func Artifact(tb testing.TB, opts ArtifactOptions) []byte {
	tb.Helper()

	if opts.NumSpecial == 0 {
		opts.NumSpecial = 20
	}
	if opts.Version == "" {
		opts.Version = "v7"
	}
	if opts.Pattern == "" {
		opts.Pattern = `(?i:'s|'t|'re|'ve|'m|'ll|'d)|[^\r\n\p{L}\p{N}]?\p{L}+|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n]*|\s*[\r\n]+|\s+(?!\S)|\s+`
	}

	vocab := ByteVocab(opts.Merges...)
	model := map[string]any{
		"vocab": vocab,
		"config": map[string]any{
			"pattern":                    opts.Pattern,
			"num_vocab_tokens":           len(vocab),
			"default_vocab_size":         len(vocab) + opts.NumSpecial,
			"default_num_special_tokens": opts.NumSpecial,
			"version":                    opts.Version,
		},
	}
	if opts.Audio != nil {
		model["audio"] = opts.Audio
	}

	data, err := json.Marshal(model)
	if err != nil {
		tb.Fatalf("marshaling artifact fixture: %v", err)
	}
	return data
}

// WriteArtifact writes a synthetic artifact into a temp dir and returns its
// path.
func WriteArtifact(tb testing.TB, opts ArtifactOptions) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "tekken.json")
	if err := os.WriteFile(path, Artifact(tb, opts), 0o644); err != nil {
		tb.Fatalf("writing artifact fixture: %v", err)
	}
	return path
}

// AudioBlock returns an artifact audio configuration with the reference
// defaults (16 kHz, 12.5 fps, 80 mel bins, hop 160, window 400).
func AudioBlock(chunkLengthSeconds float64) map[string]any {
	block := map[string]any{
		"sampling_rate": 16000,
		"frame_rate":    12.5,
		"audio_encoding_config": map[string]any{
			"num_mel_bins": 80,
			"hop_length":   160,
			"window_size":  400,
		},
	}
	if chunkLengthSeconds > 0 {
		block["chunk_length_s"] = chunkLengthSeconds
	}
	return block
}

// Silence returns n zero samples.
func Silence(n int) []float32 {
	return make([]float32, n)
}

// Sine returns a sine waveform of the given frequency and duration.
func Sine(freq float64, sampleRate int, seconds float64) []float32 {
	n := int(float64(sampleRate) * seconds)
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate)))
	}
	return out
}
