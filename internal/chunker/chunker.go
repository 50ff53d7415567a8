package chunker

import (
	"strings"
	"unicode"
)

const (
	defaultTargetSize = 1000
	defaultOverlap    = 100
	defaultMaxChunks  = 2000
)

// Chunker splits raw text into overlapping, bounded-size passages. Splits
// prefer paragraph and sentence boundaries near the target size and fall
// back to hard rune slicing for pathological inputs. Chunking is a pure
// function of the input and parameters.
type Chunker struct {
	targetSize int
	overlap    int
	maxChunks  int
}

func New(targetSize, overlap, maxChunks int) *Chunker {
	if targetSize <= 0 {
		targetSize = defaultTargetSize
	}
	if overlap < 0 || overlap >= targetSize {
		overlap = defaultOverlap
		if overlap >= targetSize {
			overlap = 0
		}
	}
	if maxChunks <= 0 {
		maxChunks = defaultMaxChunks
	}
	return &Chunker{targetSize: targetSize, overlap: overlap, maxChunks: maxChunks}
}

// Chunk splits text into passages of at most targetSize runes, consecutive
// passages sharing overlap runes of context. Empty or whitespace-only input
// produces zero chunks. The bool reports that the chunk ceiling was hit and
// trailing content discarded.
func (c *Chunker) Chunk(text string) ([]string, bool) {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil, false
	}

	var chunks []string
	i := 0
	for i < len(runes) {
		if len(chunks) == c.maxChunks {
			return chunks, strings.TrimSpace(string(runes[i:])) != ""
		}
		end := i + c.targetSize
		if end >= len(runes) {
			if part := strings.TrimSpace(string(runes[i:])); part != "" {
				chunks = append(chunks, part)
			}
			break
		}
		cut := c.boundary(runes, i, end)
		if part := strings.TrimSpace(string(runes[i:cut])); part != "" {
			chunks = append(chunks, part)
		}
		next := cut - c.overlap
		if next <= i {
			// never lose forward progress to overlap
			next = cut
		}
		i = next
	}
	return chunks, false
}

// boundary picks the split point for a chunk starting at start with a hard
// limit at end. It scans backwards through a window below end for a
// paragraph break, then a sentence end, then any whitespace, and hard-cuts
// at end when the window holds no boundary at all.
func (c *Chunker) boundary(runes []rune, start, end int) int {
	window := c.targetSize / 5
	if window < 40 {
		window = 40
	}
	low := end - window
	if low <= start {
		low = start + 1
	}

	for j := end; j > low; j-- {
		if runes[j-1] == '\n' && runes[j-2] == '\n' {
			return j
		}
	}
	for j := end; j > low; j-- {
		r := runes[j-1]
		if (r == '.' || r == '!' || r == '?') && unicode.IsSpace(runes[j]) {
			return j
		}
	}
	for j := end; j > low; j-- {
		if unicode.IsSpace(runes[j-1]) {
			return j
		}
	}
	return end
}
