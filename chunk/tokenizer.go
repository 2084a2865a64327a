package chunk

import (
	"log/slog"

	"github.com/pkoukk/tiktoken-go"
)

// FallbackEncoding is the generic byte-pair encoding used when no
// model-specific vocabulary is available.
const FallbackEncoding = "cl100k_base"

// Tokenizer converts text to and from model token ids.
// Implementations must be deterministic for identical input.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// tiktokenTokenizer wraps a tiktoken encoding.
type tiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

var _ Tokenizer = (*tiktokenTokenizer)(nil)

// NewTiktokenTokenizer creates a tokenizer for the given model,
// falling back to the generic cl100k_base encoding when the model has
// no registered vocabulary.
func NewTiktokenTokenizer(model string) (Tokenizer, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		slog.Debug("no encoding for model, using fallback", "model", model, "encoding", FallbackEncoding)
		enc, err = tiktoken.GetEncoding(FallbackEncoding)
		if err != nil {
			return nil, err
		}
	}
	return &tiktokenTokenizer{enc: enc}, nil
}

func (t *tiktokenTokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *tiktokenTokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}
