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


package ingestion

import (
	"context"
	"log/slog"

	"github.com/pellucid/docdex/ai"
	"github.com/pellucid/docdex/chunk"
	"github.com/pellucid/docdex/core"
	"github.com/pellucid/docdex/storage"
)

// Indexer orchestrates the ingestion of documents into a collection.
type Indexer struct {
	store         storage.VectorStore
	embedder      *ai.FallbackEmbedder
	chunker       *chunk.Chunker
	primaryModel  string
	fallbackModel string
	logger        *slog.Logger
}

// Result summarizes one Upsert call.
type Result struct {
	Documents int
	Chunks    int
	Source    ai.VectorSource
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithChunker sets a custom chunker.
// Default is a chunker with the package defaults.
func WithChunker(c *chunk.Chunker) Option {
	return func(ix *Indexer) error {
		ix.chunker = c
		return nil
	}
}

// WithModelIdentities sets the model names recorded on collection
// metadata for the primary and fallback embedding paths.
func WithModelIdentities(primary, fallback string) Option {
	return func(ix *Indexer) error {
		ix.primaryModel = primary
		ix.fallbackModel = fallback
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// NewIndexer creates a new document indexer.
func NewIndexer(store storage.VectorStore, embedder *ai.FallbackEmbedder, opts ...Option) (*Indexer, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	ix := &Indexer{
		store:    store,
		embedder: embedder,
		logger:   slog.Default().With("component", "indexer"),
	}

	for _, opt := range opts {
		if err := opt(ix); err != nil {
			return nil, err
		}
	}

	if ix.chunker == nil {
		chunker, err := chunk.New()
		if err != nil {
			return nil, err
		}
		ix.chunker = chunker
	}

	return ix, nil
}

// Upsert chunks, embeds, and writes the documents into the collection.
// The extra metadata is attached to every record of the call; it must
// not use the reserved keys the indexer populates itself.
//
// All chunks of the call are embedded in one batch and written in one
// store operation. If the batch cannot be embedded, nothing is written.
// Record ids are derived from document and chunk content, so repeating
// a call with unchanged documents overwrites records in place.
func (ix *Indexer) Upsert(ctx context.Context, collection string, docs []*core.Document, extra map[string]string) (*Result, error) {
	if collection == "" {
		return nil, ErrCollectionRequired
	}
	if len(docs) == 0 {
		return &Result{}, nil
	}

	var (
		texts   []string
		records []*core.IndexRecord
	)

	for _, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			return nil, err
		}

		docHash := core.HashText(doc.Text)
		chunks := ix.chunker.Split(doc.Text)

		for _, ch := range chunks {
			meta, err := core.NewRecordMetadata(ch.Index, ch.Hash, docHash, doc.Source, extra)
			if err != nil {
				return nil, err
			}

			texts = append(texts, ch.Text)
			records = append(records, &core.IndexRecord{
				Id:       core.RecordId(doc.Id, docHash, ch.Index, ch.Hash),
				Text:     ch.Text,
				Metadata: meta.Map(),
			})
		}
	}

	if len(records) == 0 {
		return &Result{Documents: len(docs)}, nil
	}

	batch, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	for i, record := range records {
		record.Embedding = batch.Vectors[i]
	}

	if err := ix.store.Upsert(ctx, collection, records); err != nil {
		return nil, err
	}

	model := ix.primaryModel
	if batch.Source == ai.SourceFallback {
		model = ix.fallbackModel
	}
	if model != "" {
		if err := ix.store.UpdateCollectionModel(ctx, collection, model); err != nil {
			ix.logger.Warn("failed to record collection model",
				"collection", collection, "model", model, "err", err)
		}
	}

	ix.logger.Info("upserted documents",
		"collection", collection,
		"documents", len(docs),
		"chunks", len(records),
		"embedding_source", batch.Source.String())

	return &Result{
		Documents: len(docs),
		Chunks:    len(records),
		Source:    batch.Source,
	}, nil
}
