package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkEmptyInput(t *testing.T) {
	c := New(100, 10, 50)

	for _, input := range []string{"", "   ", "\n\n\t  \n"} {
		chunks, truncated := c.Chunk(input)
		assert.Empty(t, chunks)
		assert.False(t, truncated)
	}
}

func TestChunkShortInputSingleChunk(t *testing.T) {
	c := New(1000, 100, 50)

	chunks, truncated := c.Chunk("  a short note about nothing in particular  ")
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short note about nothing in particular", chunks[0])
	assert.False(t, truncated)
}

func TestChunkDeterministic(t *testing.T) {
	c := New(120, 20, 100)
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40)

	first, _ := c.Chunk(text)
	second, _ := c.Chunk(text)
	assert.Equal(t, first, second)
}

func TestChunkRespectsSizeBound(t *testing.T) {
	c := New(120, 20, 100)
	text := strings.Repeat("Sentences pile up one after another, none of them long. ", 60)

	chunks, truncated := c.Chunk(text)
	require.NotEmpty(t, chunks)
	assert.False(t, truncated)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 120, "chunk %d over limit", i)
	}
}

func TestChunkPrefersSentenceBoundaries(t *testing.T) {
	c := New(100, 0, 100)
	text := strings.Repeat("This sentence takes up some room in the buffer. ", 30)

	chunks, _ := c.Chunk(text)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(chunk, "."), "expected sentence-aligned cut, got %q", chunk)
	}
}

func TestChunkPrefersParagraphBoundaries(t *testing.T) {
	c := New(100, 0, 100)
	para := strings.Repeat("word ", 17) // ~85 runes, inside the boundary window
	text := strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para)

	chunks, _ := c.Chunk(text)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, strings.TrimSpace(para), chunks[0])
}

func TestChunkOverlapCarriesContext(t *testing.T) {
	c := New(100, 30, 100)
	text := strings.Repeat("alpha beta gamma delta epsilon zeta eta theta. ", 20)

	chunks, _ := c.Chunk(text)
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		// each chunk opens with context already seen at the end of the previous one
		head := []rune(chunks[i])
		if len(head) > 20 {
			head = head[:20]
		}
		assert.Contains(t, chunks[i-1], string(head))
	}
}

func TestChunkNoBoundaryHardCut(t *testing.T) {
	c := New(50, 0, 100)
	text := strings.Repeat("x", 173)

	chunks, truncated := c.Chunk(text)
	assert.False(t, truncated)
	require.Len(t, chunks, 4)
	assert.Equal(t, strings.Repeat("x", 50), chunks[0])
	assert.Equal(t, strings.Repeat("x", 23), chunks[3])
}

func TestChunkCeilingTruncates(t *testing.T) {
	c := New(50, 0, 3)
	text := strings.Repeat("x", 500)

	chunks, truncated := c.Chunk(text)
	assert.Len(t, chunks, 3)
	assert.True(t, truncated)
}

func TestChunkCeilingExactFitNotTruncated(t *testing.T) {
	c := New(50, 0, 3)
	text := strings.Repeat("x", 150)

	chunks, truncated := c.Chunk(text)
	assert.Len(t, chunks, 3)
	assert.False(t, truncated)
}

func TestNewClampsBadParameters(t *testing.T) {
	c := New(0, -5, 0)
	assert.Equal(t, defaultTargetSize, c.targetSize)
	assert.Equal(t, defaultOverlap, c.overlap)
	assert.Equal(t, defaultMaxChunks, c.maxChunks)

	// overlap must stay below the target size
	c = New(50, 80, 10)
	assert.Less(t, c.overlap, c.targetSize)
}
