package chunk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordTokenizer is a deterministic test tokenizer that treats each
// whitespace-separated word as one token.
type wordTokenizer struct {
	vocab map[string]int
	words []string
}

func newWordTokenizer() *wordTokenizer {
	return &wordTokenizer{vocab: make(map[string]int)}
}

func (t *wordTokenizer) Encode(text string) []int {
	fields := strings.Fields(text)
	tokens := make([]int, 0, len(fields))
	for _, w := range fields {
		id, ok := t.vocab[w]
		if !ok {
			id = len(t.words)
			t.vocab[w] = id
			t.words = append(t.words, w)
		}
		tokens = append(tokens, id)
	}
	return tokens
}

func (t *wordTokenizer) Decode(tokens []int) string {
	words := make([]string, len(tokens))
	for i, id := range tokens {
		words[i] = t.words[id]
	}
	return strings.Join(words, " ")
}

func wordPassage(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func newTestChunker(t *testing.T, maxTokens, overlap int) (*Chunker, *wordTokenizer) {
	t.Helper()
	tokenizer := newWordTokenizer()
	c, err := New(WithTokenizer(tokenizer), WithMaxTokens(maxTokens), WithOverlap(overlap))
	require.NoError(t, err)
	return c, tokenizer
}

func TestNew_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name      string
		maxTokens int
		overlap   int
		wantErr   error
	}{
		{name: "zero max tokens", maxTokens: 0, overlap: 0, wantErr: ErrInvalidMaxTokens},
		{name: "negative max tokens", maxTokens: -1, overlap: 0, wantErr: ErrInvalidMaxTokens},
		{name: "negative overlap", maxTokens: 10, overlap: -1, wantErr: ErrInvalidOverlap},
		{name: "overlap equals max", maxTokens: 10, overlap: 10, wantErr: ErrInvalidOverlap},
		{name: "overlap exceeds max", maxTokens: 10, overlap: 11, wantErr: ErrInvalidOverlap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithTokenizer(newWordTokenizer()),
				WithMaxTokens(tt.maxTokens), WithOverlap(tt.overlap))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSplit_EmptyText(t *testing.T) {
	c, _ := newTestChunker(t, 10, 2)
	assert.Empty(t, c.Split(""))
	assert.Empty(t, c.Split("   "))
}

func TestSplit_ShortText(t *testing.T) {
	c, _ := newTestChunker(t, 10, 2)
	chunks := c.Split("minimum rest period after duty")

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 5, chunks[0].TokenCount)
	assert.Equal(t, "minimum rest period after duty", chunks[0].Text)
	assert.NotEmpty(t, chunks[0].Hash)
}

func TestSplit_WindowSizes(t *testing.T) {
	c, _ := newTestChunker(t, 700, 80)
	chunks := c.Split(wordPassage(2000))

	// step = 700-80 = 620: windows at 0, 620, 1240, 1860
	require.Len(t, chunks, 4)
	assert.Equal(t, []int{700, 700, 700, 140}, []int{
		chunks[0].TokenCount, chunks[1].TokenCount, chunks[2].TokenCount, chunks[3].TokenCount,
	})
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
	}
}

func TestSplit_Coverage(t *testing.T) {
	const maxTokens, overlap = 7, 3
	c, tokenizer := newTestChunker(t, maxTokens, overlap)

	text := wordPassage(23)
	original := tokenizer.Encode(text)
	chunks := c.Split(text)
	require.NotEmpty(t, chunks)

	// Dropping the leading overlap from every chunk after the first must
	// reconstruct the original token stream exactly.
	var rebuilt []int
	for i, chunk := range chunks {
		tokens := tokenizer.Encode(chunk.Text)
		if i > 0 {
			tokens = tokens[overlap:]
		}
		rebuilt = append(rebuilt, tokens...)
	}
	assert.Equal(t, original, rebuilt)
}

func TestSplit_OverlapInvariant(t *testing.T) {
	const maxTokens, overlap = 7, 3
	c, tokenizer := newTestChunker(t, maxTokens, overlap)

	chunks := c.Split(wordPassage(30))
	require.Greater(t, len(chunks), 1)

	for i := 0; i < len(chunks)-1; i++ {
		cur := tokenizer.Encode(chunks[i].Text)
		next := tokenizer.Encode(chunks[i+1].Text)
		assert.Equal(t, cur[len(cur)-overlap:], next[:overlap],
			"chunks %d and %d do not share %d overlap tokens", i, i+1, overlap)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	c, _ := newTestChunker(t, 7, 3)
	text := wordPassage(40)

	first := c.Split(text)
	second := c.Split(text)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.Equal(t, first[i].Hash, second[i].Hash)
	}
}

func TestSplit_ZeroOverlap(t *testing.T) {
	c, _ := newTestChunker(t, 5, 0)
	chunks := c.Split(wordPassage(12))

	require.Len(t, chunks, 3)
	assert.Equal(t, []int{5, 5, 2}, []int{
		chunks[0].TokenCount, chunks[1].TokenCount, chunks[2].TokenCount,
	})
}
