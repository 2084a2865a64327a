package local

import (
	"context"
	"hash/fnv"
	"log/slog"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/pellucid/docdex/ai"
)

// DefaultDimension is the default vector dimensionality.
const DefaultDimension = 384

// DefaultModel is the default model identifier. The identifier seeds
// the hashing, so two embedders with the same identifier and dimension
// produce identical vectors for identical text.
const DefaultModel = "feature-hash-v1"

// Embedder is the local fallback embedding model.
// The zero value is not usable; create one with NewEmbedder.
type Embedder struct {
	model  string
	dim    int
	logger *slog.Logger

	once sync.Once
	enc  *encoder
}

var _ ai.Embedder = (*Embedder)(nil)

// Option configures an Embedder.
type Option func(*Embedder)

// WithModel sets the model identifier used to seed the encoder.
func WithModel(model string) Option {
	return func(e *Embedder) {
		if model != "" {
			e.model = model
		}
	}
}

// WithDimension sets the vector dimensionality.
func WithDimension(dim int) Option {
	return func(e *Embedder) {
		if dim > 0 {
			e.dim = dim
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Embedder) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// NewEmbedder creates a local embedder. The underlying encoder is not
// built until the first embedding call.
func NewEmbedder(opts ...Option) *Embedder {
	e := &Embedder{
		model:  DefaultModel,
		dim:    DefaultDimension,
		logger: slog.Default().With("component", "local-embedder"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Model returns the model identifier.
func (e *Embedder) Model() string { return e.model }

// Dimension returns the vector dimensionality.
func (e *Embedder) Dimension() int { return e.dim }

// init builds the encoder exactly once. Concurrent callers wait for the
// single in-flight initialization; the encoder is read-only afterwards.
func (e *Embedder) init() {
	e.once.Do(func() {
		e.logger.Info("initializing local embedding model", "model", e.model, "dimension", e.dim)
		e.enc = newEncoder(e.model, e.dim)
	})
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.init()
	return e.enc.encode(text), nil
}

// EmbedTexts generates vector embeddings for multiple text strings.
// Results are in input order, one vector per text.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.init()

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.enc.encode(text)
	}
	return out, nil
}

// encoder maps token streams into a fixed-dimension vector by hashing
// each token to a bucket and a sign. Immutable after construction.
type encoder struct {
	seed string
	dim  int
}

func newEncoder(seed string, dim int) *encoder {
	return &encoder{seed: seed, dim: dim}
}

// encode produces an L2-normalized term-frequency vector.
func (c *encoder) encode(text string) []float32 {
	vec := make([]float32, c.dim)

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return vec
	}

	for _, token := range tokens {
		bucket, sign := c.hash(token)
		vec[bucket] += sign
	}

	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		inv := float32(1.0 / math.Sqrt(float64(norm)))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}

// hash maps a token to a bucket index and a +1/-1 sign. The sign bit
// keeps colliding tokens from always reinforcing each other.
func (c *encoder) hash(token string) (int, float32) {
	h := fnv.New64a()
	h.Write([]byte(c.seed))
	h.Write([]byte{0})
	h.Write([]byte(token))
	sum := h.Sum64()

	bucket := int(sum % uint64(c.dim))
	sign := float32(1)
	if sum&(1<<63) != 0 {
		sign = -1
	}
	return bucket, sign
}

// tokenize lowercases the text and splits it into letter/digit runs.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
