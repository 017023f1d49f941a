package tokenizer

import "fmt"

// SpecialToken is the literal string form of a reserved control token.
type SpecialToken string

const (
	Unk              SpecialToken = "<unk>"
	Bos              SpecialToken = "<s>"
	Eos              SpecialToken = "</s>"
	BeginInst        SpecialToken = "[INST]"
	EndInst          SpecialToken = "[/INST]"
	BeginTools       SpecialToken = "[AVAILABLE_TOOLS]"
	EndTools         SpecialToken = "[/AVAILABLE_TOOLS]"
	BeginToolResults SpecialToken = "[TOOL_RESULTS]"
	EndToolResults   SpecialToken = "[/TOOL_RESULTS]"
	ToolCalls        SpecialToken = "[TOOL_CALLS]"
	Img              SpecialToken = "[IMG]"
	Pad              SpecialToken = "<pad>"
	ImgBreak         SpecialToken = "[IMG_BREAK]"
	ImgEnd           SpecialToken = "[IMG_END]"
	Prefix           SpecialToken = "[PREFIX]"
	Middle           SpecialToken = "[MIDDLE]"
	Suffix           SpecialToken = "[SUFFIX]"
	BeginSystem      SpecialToken = "[SYSTEM_PROMPT]"
	EndSystem        SpecialToken = "[/SYSTEM_PROMPT]"
	BeginToolContent SpecialToken = "[TOOL_CONTENT]"
	Audio            SpecialToken = "[AUDIO]"
	BeginAudio       SpecialToken = "[BEGIN_AUDIO]"
	EndAudio         SpecialToken = "[END_AUDIO]"
	Transcribe       SpecialToken = "[TRANSCRIBE]"
	Args             SpecialToken = "[ARGS]"
	CallID           SpecialToken = "[CALL_ID]"
)

func (s SpecialToken) String() string { return string(s) }

// SpecialTokenPolicy controls how special token ids are rendered during
// decoding.
type SpecialTokenPolicy int

const (
	// PolicyIgnore skips special tokens entirely.
	PolicyIgnore SpecialTokenPolicy = iota
	// PolicyKeep renders special tokens as their literal string form.
	PolicyKeep
	// PolicyError fails the decode when a special token is encountered.
	PolicyError
)

func (p SpecialTokenPolicy) String() string {
	switch p {
	case PolicyIgnore:
		return "ignore"
	case PolicyKeep:
		return "keep"
	case PolicyError:
		return "error"
	default:
		return fmt.Sprintf("SpecialTokenPolicy(%d)", int(p))
	}
}

// ParseSpecialTokenPolicy converts a policy name used by the CLI and the
// HTTP API into a SpecialTokenPolicy.
func ParseSpecialTokenPolicy(s string) (SpecialTokenPolicy, error) {
	switch s {
	case "ignore":
		return PolicyIgnore, nil
	case "keep", "":
		return PolicyKeep, nil
	case "error", "raise":
		return PolicyError, nil
	default:
		return 0, fmt.Errorf("unknown special token policy %q (want keep|ignore|error)", s)
	}
}

// SpecialTokenInfo describes one entry of the special-token table.
type SpecialTokenInfo struct {
	// Rank is the token id. Special ids occupy [0, NumSpecialTokens) and
	// ordinary vocabulary ids are shifted above them.
	Rank int `json:"rank"`
	// Token is the literal string rendered under PolicyKeep.
	Token string `json:"token_str"`
	// IsControl marks tokens that carry control semantics rather than
	// user-defined content.
	IsControl bool `json:"is_control"`
}

// SpecialTokenTable is the immutable id range reserved for control tokens.
// Ids [0, Len()) are special; they never collide with ordinary vocabulary
// ids, which start at Len().
type SpecialTokenTable struct {
	entries  []SpecialTokenInfo
	byString map[string]uint32
}

// NewSpecialTokenTable validates the declared entries and fills the
// remaining slots up to numSpecial with <SPECIAL_n> placeholders.
func NewSpecialTokenTable(declared []SpecialTokenInfo, numSpecial int) (*SpecialTokenTable, error) {
	if len(declared) > numSpecial {
		return nil, fmt.Errorf("%w: %d special tokens declared but only %d slots reserved",
			ErrInvalidConfig, len(declared), numSpecial)
	}

	entries := make([]SpecialTokenInfo, 0, numSpecial)
	byString := make(map[string]uint32, numSpecial)

	for i, tok := range declared {
		if tok.Rank != i {
			return nil, fmt.Errorf("%w: special token %q has rank %d, want %d",
				ErrInvalidConfig, tok.Token, tok.Rank, i)
		}
		if _, dup := byString[tok.Token]; dup {
			return nil, fmt.Errorf("%w: duplicate special token %q", ErrInvalidConfig, tok.Token)
		}
		entries = append(entries, tok)
		byString[tok.Token] = uint32(i)
	}

	for i := len(declared); i < numSpecial; i++ {
		tok := SpecialTokenInfo{
			Rank:      i,
			Token:     fmt.Sprintf("<SPECIAL_%d>", i),
			IsControl: true,
		}
		entries = append(entries, tok)
		byString[tok.Token] = uint32(i)
	}

	return &SpecialTokenTable{entries: entries, byString: byString}, nil
}

// Len returns the number of reserved special ids.
func (t *SpecialTokenTable) Len() int { return len(t.entries) }

// Contains reports whether id falls in the special range.
func (t *SpecialTokenTable) Contains(id uint32) bool {
	return int(id) < len(t.entries)
}

// Piece returns the literal string for a special id.
func (t *SpecialTokenTable) Piece(id uint32) (string, bool) {
	if !t.Contains(id) {
		return "", false
	}
	return t.entries[id].Token, true
}

// ID returns the id of the special token with the given literal string.
func (t *SpecialTokenTable) ID(token string) (uint32, bool) {
	id, ok := t.byString[token]
	return id, ok
}

// Entries returns a copy of the table in id order.
func (t *SpecialTokenTable) Entries() []SpecialTokenInfo {
	out := make([]SpecialTokenInfo, len(t.entries))
	copy(out, t.entries)
	return out
}

// DeprecatedSpecialTokens is the legacy special-token layout used by
// artifacts that predate explicit special-token declarations.
func DeprecatedSpecialTokens() []SpecialTokenInfo {
	legacy := []SpecialToken{
		Unk, Bos, Eos,
		BeginInst, EndInst,
		BeginTools, EndTools,
		BeginToolResults, EndToolResults,
		ToolCalls,
		Img, Pad, ImgBreak, ImgEnd,
		Prefix, Middle, Suffix,
		BeginSystem, EndSystem,
		BeginToolContent,
	}

	entries := make([]SpecialTokenInfo, len(legacy))
	for i, tok := range legacy {
		entries[i] = SpecialTokenInfo{Rank: i, Token: tok.String(), IsControl: true}
	}
	return entries
}
