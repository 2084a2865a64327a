package chunk

import (
	"github.com/pellucid/docdex/core"
)

const (
	// DefaultMaxTokens is the default chunk window size.
	DefaultMaxTokens = 700

	// DefaultOverlapTokens is the default overlap between consecutive chunks.
	DefaultOverlapTokens = 80

	// DefaultModel selects the tokenizer vocabulary.
	DefaultModel = "gpt-4o-mini"
)

// Chunker splits text into overlapping token windows.
type Chunker struct {
	tokenizer Tokenizer
	maxTokens int
	overlap   int
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithTokenizer sets a custom tokenizer.
// Default is the tiktoken tokenizer for DefaultModel.
func WithTokenizer(t Tokenizer) Option {
	return func(c *Chunker) error {
		c.tokenizer = t
		return nil
	}
}

// WithModel selects the tiktoken vocabulary for the given model.
func WithModel(model string) Option {
	return func(c *Chunker) error {
		tokenizer, err := NewTiktokenTokenizer(model)
		if err != nil {
			return err
		}
		c.tokenizer = tokenizer
		return nil
	}
}

// WithMaxTokens sets the chunk window size in tokens.
func WithMaxTokens(n int) Option {
	return func(c *Chunker) error {
		c.maxTokens = n
		return nil
	}
}

// WithOverlap sets the overlap between consecutive chunks in tokens.
func WithOverlap(n int) Option {
	return func(c *Chunker) error {
		c.overlap = n
		return nil
	}
}

// New creates a Chunker. The configuration is validated up front:
// a window size that is not positive, or an overlap that is negative or
// at least the window size, is rejected rather than clamped.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		maxTokens: DefaultMaxTokens,
		overlap:   DefaultOverlapTokens,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.maxTokens <= 0 {
		return nil, ErrInvalidMaxTokens
	}
	if c.overlap < 0 || c.overlap >= c.maxTokens {
		return nil, ErrInvalidOverlap
	}

	if c.tokenizer == nil {
		tokenizer, err := NewTiktokenTokenizer(DefaultModel)
		if err != nil {
			return nil, err
		}
		c.tokenizer = tokenizer
	}

	return c, nil
}

// MaxTokens returns the configured window size.
func (c *Chunker) MaxTokens() int { return c.maxTokens }

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// Split splits text into chunks covering the full token stream.
// Every chunk except possibly the last contains exactly MaxTokens
// tokens, and consecutive chunks overlap by exactly Overlap tokens.
// Empty text yields no chunks.
func (c *Chunker) Split(text string) []core.Chunk {
	if text == "" {
		return nil
	}

	tokens := c.tokenizer.Encode(text)
	if len(tokens) == 0 {
		return nil
	}

	var chunks []core.Chunk
	start := 0
	for start < len(tokens) {
		end := start + c.maxTokens
		if end > len(tokens) {
			end = len(tokens)
		}

		window := tokens[start:end]
		chunkText := c.tokenizer.Decode(window)
		chunks = append(chunks, core.Chunk{
			Index:      len(chunks),
			Text:       chunkText,
			TokenCount: len(window),
			Hash:       core.HashText(chunkText),
		})

		if end == len(tokens) {
			break
		}
		start = end - c.overlap
	}

	return chunks
}
