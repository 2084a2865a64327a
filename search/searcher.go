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


package search

import (
	"context"
	"log/slog"

	"github.com/pellucid/docdex/ai"
	"github.com/pellucid/docdex/core"
	"github.com/pellucid/docdex/storage"
)

// DefaultTopK is the number of hits returned when the caller does not
// ask for a specific count.
const DefaultTopK = 5

// Searcher provides semantic search over indexed collections.
type Searcher struct {
	store    storage.VectorStore
	embedder *ai.FallbackEmbedder
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(store storage.VectorStore, embedder *ai.FallbackEmbedder, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		store:    store,
		embedder: embedder,
		logger:   slog.Default().With("component", "searcher"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Query searches the collection for records similar to the query text.
// Returns up to topK results ranked by descending cosine similarity;
// topK values below one fall back to DefaultTopK. A collection that
// does not exist yields an empty result, not an error.
func (s *Searcher) Query(ctx context.Context, collection, query string, topK int) ([]*core.QueryResult, error) {
	return s.QueryWithMonitor(ctx, collection, query, topK, nil)
}

// QueryWithMonitor searches with monitoring. The monitor receives
// callbacks at each stage of the query.
func (s *Searcher) QueryWithMonitor(ctx context.Context, collection, query string, topK int, monitor SearchMonitor) ([]*core.QueryResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if topK < 1 {
		topK = DefaultTopK
	}

	monitor.Start(collection, query)

	batch, err := s.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	embedding := batch.Vectors[0]
	monitor.AfterQueryEmbedding(len(embedding), batch.Source)

	results, err := s.store.Query(ctx, collection, embedding, topK)
	if err != nil {
		s.logger.Error("error querying collection", "collection", collection, "err", err)
		return nil, err
	}

	s.logger.Debug("query complete",
		"collection", collection,
		"hits", len(results),
		"embedding_source", batch.Source.String())

	monitor.Finish(results)
	return results, nil
}
