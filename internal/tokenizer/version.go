package tokenizer

import "fmt"

// Version identifies a tokenizer release. Releases differ in vocabulary
// size, special-token layout, and pre-tokenization pattern; the version is
// fixed once at construction and never consulted per call.
type Version string

const (
	VersionV3  Version = "v3"
	VersionV7  Version = "v7"
	VersionV11 Version = "v11"
	VersionV13 Version = "v13"
)

// ParseVersion converts a version string from a tokenizer artifact into a
// Version. Unknown strings are a load-time error, never a fallback.
func ParseVersion(s string) (Version, error) {
	switch v := Version(s); v {
	case VersionV3, VersionV7, VersionV11, VersionV13:
		return v, nil
	default:
		return "", fmt.Errorf("%w: unknown tokenizer version %q", ErrInvalidConfig, s)
	}
}

func (v Version) String() string { return string(v) }
