package tokenizer

import (
	"container/heap"
	"fmt"

	"github.com/dlclark/regexp2"
)

// DefaultPattern is the pre-tokenization boundary rule shared by current
// tokenizer versions. Artifacts carry their own pattern; this constant is
// the documented default used by fixtures and tests. The `(?!\S)` lookahead
// is why the engine uses regexp2 instead of the standard library.
const DefaultPattern = `(?i:'s|'t|'re|'ve|'m|'ll|'d)|[^\r\n\p{L}\p{N}]?\p{L}+|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n]*|\s*[\r\n]+|\s+(?!\S)|\s+`

// bpeEngine performs the greedy lowest-rank-first merge over pre-tokenized
// chunks. It holds only immutable state (the vocabulary and the compiled
// pattern) and is safe for concurrent use.
type bpeEngine struct {
	vocab   *Vocabulary
	pattern *regexp2.Regexp
}

func newBPEEngine(vocab *Vocabulary, pattern string) (*bpeEngine, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("%w: compiling pre-tokenization pattern: %v", ErrInvalidConfig, err)
	}
	return &bpeEngine{vocab: vocab, pattern: re}, nil
}

// encode splits text at the pattern boundaries and merges each chunk
// independently. Merges never cross a chunk boundary. The returned ids are
// unshifted vocabulary ranks.
func (e *bpeEngine) encode(text string) ([]uint32, error) {
	if text == "" {
		return nil, nil
	}

	var ids []uint32
	m, err := e.pattern.FindStringMatch(text)
	for m != nil {
		ids = e.encodeChunk(ids, m.String())
		m, err = e.pattern.FindNextMatch(m)
	}
	if err != nil {
		return nil, fmt.Errorf("pre-tokenization failed: %w", err)
	}
	return ids, nil
}

// decode concatenates the literal piece bytes of unshifted ids. The caller
// interprets the buffer as UTF-8 with replacement of invalid sequences.
func (e *bpeEngine) decode(ids []uint32) ([]byte, error) {
	var buf []byte
	for _, id := range ids {
		piece, ok := e.vocab.PieceForID(id)
		if !ok {
			return nil, &UnknownTokenIDError{ID: id}
		}
		buf = append(buf, piece...)
	}
	return buf, nil
}

// mergeNode is one element of the chunk arena. Nodes address each other by
// index; start/end are byte offsets into the chunk.
type mergeNode struct {
	start, end int
	prev, next int
	dead       bool
}

// mergePair is a candidate merge of two currently-adjacent nodes. The byte
// widths recorded at push time detect stale heap entries after one of the
// nodes has since been merged.
type mergePair struct {
	left, right       int
	leftEnd, rightEnd int
	rank              uint32
}

// mergeHeap orders candidates by rank, then by leftmost position.
type mergeHeap []mergePair

func (h mergeHeap) Len() int { return len(h) }
func (h mergeHeap) Less(i, j int) bool {
	if h[i].rank != h[j].rank {
		return h[i].rank < h[j].rank
	}
	return h[i].left < h[j].left
}
func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x any) { *h = append(*h, x.(mergePair)) }

func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// encodeChunk appends the merged ids of one pre-tokenization chunk to ids.
// Single-byte ids are guaranteed by vocabulary validation, so every chunk
// encodes without error.
func (e *bpeEngine) encodeChunk(ids []uint32, chunk string) []uint32 {
	// Whole-chunk hit: the chunk is itself a vocabulary entry.
	if id, ok := e.vocab.rankFor(chunk); ok {
		return append(ids, id)
	}

	nodes := make([]mergeNode, len(chunk))
	for i := range nodes {
		nodes[i] = mergeNode{start: i, end: i + 1, prev: i - 1, next: i + 1}
	}

	pairFor := func(left, right int) (mergePair, bool) {
		if left < 0 || right >= len(nodes) {
			return mergePair{}, false
		}
		rank, ok := e.vocab.rankFor(chunk[nodes[left].start:nodes[right].end])
		if !ok {
			return mergePair{}, false
		}
		return mergePair{
			left:     left,
			right:    right,
			leftEnd:  nodes[left].end,
			rightEnd: nodes[right].end,
			rank:     rank,
		}, true
	}

	pairs := make(mergeHeap, 0, len(nodes))
	for i := 0; i < len(nodes)-1; i++ {
		if p, ok := pairFor(i, i+1); ok {
			pairs = append(pairs, p)
		}
	}
	heap.Init(&pairs)

	for pairs.Len() > 0 {
		p := heap.Pop(&pairs).(mergePair)

		left, right := &nodes[p.left], &nodes[p.right]
		// Skip entries invalidated by an earlier merge.
		if left.dead || right.dead || left.next != p.right ||
			left.end != p.leftEnd || right.end != p.rightEnd {
			continue
		}

		left.end = right.end
		left.next = right.next
		right.dead = true
		if right.next < len(nodes) {
			nodes[right.next].prev = p.left
		}

		// Only the two pairs touching the merge site change rank.
		if np, ok := pairFor(left.prev, p.left); ok {
			heap.Push(&pairs, np)
		}
		if np, ok := pairFor(p.left, left.next); ok {
			heap.Push(&pairs, np)
		}
	}

	for i := 0; i < len(nodes); i = nodes[i].next {
		if id, ok := e.vocab.rankFor(chunk[nodes[i].start:nodes[i].end]); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
