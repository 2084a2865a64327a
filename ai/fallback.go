package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// VectorSource identifies which embedding path produced a batch.
type VectorSource int

const (
	// SourcePrimary means the remote provider produced the vectors.
	SourcePrimary VectorSource = iota + 1
	// SourceFallback means the local model produced the vectors.
	SourceFallback
)

func (s VectorSource) String() string {
	switch s {
	case SourcePrimary:
		return "primary"
	case SourceFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// BatchResult is the outcome of embedding one batch, tagged with the
// path that produced it. Vectors from the two paths may have different
// dimensionality; callers must not assume a fixed dimension across
// fallback boundaries.
type BatchResult struct {
	Vectors [][]float32
	Source  VectorSource
}

// FallbackEmbedder embeds batches through a primary provider, falling
// back to a local model when the primary fails for any reason. The
// whole batch falls back together; there is no partial-batch fallback.
type FallbackEmbedder struct {
	primary  Embedder
	fallback Embedder
	logger   *slog.Logger
}

var _ Embedder = (*FallbackEmbedder)(nil)

// FallbackOption configures a FallbackEmbedder.
type FallbackOption func(*FallbackEmbedder)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) FallbackOption {
	return func(e *FallbackEmbedder) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// NewFallbackEmbedder creates a fallback embedder over the given
// primary and fallback providers.
func NewFallbackEmbedder(primary, fallback Embedder, opts ...FallbackOption) (*FallbackEmbedder, error) {
	if primary == nil {
		return nil, ErrPrimaryRequired
	}
	if fallback == nil {
		return nil, ErrFallbackRequired
	}

	e := &FallbackEmbedder{
		primary:  primary,
		fallback: fallback,
		logger:   slog.Default().With("component", "fallback-embedder"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// EmbedBatch embeds the texts and reports which path produced the
// vectors. If both paths fail, the joined failures are returned and no
// vectors are; zero-filled results are never substituted for errors.
func (e *FallbackEmbedder) EmbedBatch(ctx context.Context, texts []string) (*BatchResult, error) {
	if len(texts) == 0 {
		return &BatchResult{Source: SourcePrimary}, nil
	}

	vectors, primaryErr := e.primary.EmbedTexts(ctx, texts)
	if primaryErr == nil && len(vectors) != len(texts) {
		primaryErr = fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(vectors))
	}
	if primaryErr == nil {
		return &BatchResult{Vectors: vectors, Source: SourcePrimary}, nil
	}

	e.logger.Warn("primary embedding provider failed, using local fallback",
		"texts", len(texts), "err", primaryErr)

	vectors, fallbackErr := e.fallback.EmbedTexts(ctx, texts)
	if fallbackErr == nil && len(vectors) != len(texts) {
		fallbackErr = fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(vectors))
	}
	if fallbackErr != nil {
		e.logger.Error("fallback embedding provider failed", "err", fallbackErr)
		return nil, errors.Join(
			&ProviderError{Provider: "primary", Err: primaryErr},
			&ProviderError{Provider: "fallback", Err: fallbackErr},
		)
	}

	return &BatchResult{Vectors: vectors, Source: SourceFallback}, nil
}

// EmbedTexts implements Embedder.
func (e *FallbackEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	result, err := e.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	return result.Vectors, nil
}

// EmbedText implements Embedder.
func (e *FallbackEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	result, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return result.Vectors[0], nil
}
