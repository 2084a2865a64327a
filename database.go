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


package docdex

import (
	"io"
	"log/slog"

	"github.com/pellucid/docdex/ai"
	"github.com/pellucid/docdex/ai/openai"
	"github.com/pellucid/docdex/extract"
	"github.com/pellucid/docdex/ingestion"
	"github.com/pellucid/docdex/reembed"
	"github.com/pellucid/docdex/search"
	"github.com/pellucid/docdex/storage"
	"github.com/pellucid/docdex/storage/badger"
)

// Database bundles the vector store and AI services behind one handle.
// It is the assembly point for the indexing, search, and extraction
// components.
type Database struct {
	backend  *badger.Backend
	store    storage.VectorStore
	provider *openai.Provider
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	inMemory bool
}

// WithAIConfig sets the AI service configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithInMemory opens the store in memory rather than on disk.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens (or creates) a database at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	store, err := badger.NewStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:  backend,
		store:    store,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

// Close releases the AI provider and the storage backend.
func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Store returns the vector store.
func (db *Database) Store() storage.VectorStore {
	return db.store
}

// Provider returns the AI provider.
func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

// NewIndexer creates an indexer writing into this database. The model
// identities recorded on collections come from the AI configuration.
func (db *Database) NewIndexer(opts ...ingestion.Option) (*ingestion.Indexer, error) {
	config := db.provider.Config()
	opts = append([]ingestion.Option{
		ingestion.WithModelIdentities(config.EmbeddingModel, config.FallbackModel),
	}, opts...)
	return ingestion.NewIndexer(db.store, db.provider.FallbackEmbedder(), opts...)
}

// NewSearcher creates a searcher over this database.
func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.store, db.provider.FallbackEmbedder(), opts...)
}

// NewRuleExtractor creates a rule extractor over this database.
func (db *Database) NewRuleExtractor(opts ...extract.Option) (*extract.RuleExtractor, error) {
	searcher, err := db.NewSearcher()
	if err != nil {
		return nil, err
	}
	return extract.NewRuleExtractor(searcher, db.provider.RuleExtractor(), opts...)
}

// NewReembedder creates a migrator that re-embeds a collection with
// the currently configured embedding path and records model as the
// collection's new model identity.
func (db *Database) NewReembedder(model string, config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(db.store, db.provider.Embedder(), model, config, progress)
}
