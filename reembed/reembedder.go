// Copyright 2025 Pellucid Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pellucid/docdex/ai"
	"github.com/pellucid/docdex/core"
	"github.com/pellucid/docdex/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of records to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of records)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder migrates one collection to a new embedding model.
type Reembedder struct {
	store     storage.VectorStore
	embedder  ai.Embedder
	model     string
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *RecordIterator
}

// NewReembedder creates a new reembedder. The model names the space
// the embedder produces; it is recorded on the collection metadata
// once the migration completes.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(store storage.VectorStore, embedder ai.Embedder, model string, config *Config, progress io.Writer) (*Reembedder, error) {
	if model == "" {
		return nil, ErrModelRequired
	}
	if config == nil {
		config = DefaultConfig()
	}

	return &Reembedder{
		store:     store,
		embedder:  embedder,
		model:     model,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(store, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewRecordIterator(store, config.BatchSize),
	}, nil
}

// Run re-embeds every record of the collection with the configured
// embedder. The collection model metadata is updated only after all
// records have been rewritten, so an interrupted run leaves the old
// model recorded.
func (r *Reembedder) Run(ctx context.Context, collection string) error {
	info, err := r.store.Collection(ctx, collection)
	if err != nil {
		return err
	}

	total, err := r.store.Count(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No records found in collection %q (0 records)\n", collection)
		return nil
	}

	fmt.Fprintf(r.progress, "Migrating %d records from %q to %q (batch size: %d)\n",
		total, info.Model, r.model, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	err = r.iterator.ForEach(ctx, collection, func(records []*core.IndexRecord) error {
		if err := r.processor.Process(ctx, collection, records); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		processed += len(records)
		tracker.Update(processed)
		return nil
	})
	if err != nil {
		return err
	}

	if err := r.store.UpdateCollectionModel(ctx, collection, r.model); err != nil {
		return fmt.Errorf("failed to record new model: %w", err)
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Migration complete. Processed %d records in %v (%.1f records/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
