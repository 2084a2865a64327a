package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/pellucid/docdex/ai"
	"github.com/pellucid/docdex/core"
	"github.com/pellucid/docdex/storage"
)

// BatchProcessor re-embeds batches of index records and writes the
// refreshed records back to their collection.
type BatchProcessor struct {
	store          storage.VectorStore
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(store storage.VectorStore, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		store:          store,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process re-embeds a batch of records and overwrites them in place.
// Vectors are normalized after embedding to ensure compatibility with
// cosine similarity.
func (bp *BatchProcessor) Process(ctx context.Context, collection string, records []*core.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(records) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(records), len(embeddings))
	}

	for i := range records {
		records[i].Embedding = NormalizeVector(embeddings[i])
	}

	if err := bp.store.Upsert(ctx, collection, records); err != nil {
		return fmt.Errorf("failed to update records: %w", err)
	}

	return nil
}
