package storage

import (
	"context"

	"github.com/pellucid/docdex/core"
)

// VectorStore provides persistent storage and similarity search over
// named collections of IndexRecords. Implementations must be
// thread-safe and support concurrent access.
type VectorStore interface {
	// Upsert writes records into the named collection, creating the
	// collection in cosine space if it does not exist. Records whose
	// ids already exist are overwritten in place, so re-writing
	// identical records leaves the collection unchanged.
	Upsert(ctx context.Context, collection string, records []*core.IndexRecord) error

	// Query returns up to topK records from the collection ranked by
	// descending cosine similarity to the vector. A missing or empty
	// collection yields an empty result, not an error.
	Query(ctx context.Context, collection string, vector []float32, topK int) ([]*core.QueryResult, error)

	// Count returns the number of records in the collection.
	// A missing collection counts as zero.
	Count(ctx context.Context, collection string) (int, error)

	// Collection returns metadata for the named collection.
	// Returns ErrCollectionNotFound if it does not exist.
	Collection(ctx context.Context, name string) (*core.CollectionInfo, error)

	// Collections lists the names of all collections in the store.
	Collections(ctx context.Context) ([]string, error)

	// ForEachRecord calls fn for every record in the collection, in
	// unspecified order. Iteration stops on the first error from fn.
	ForEachRecord(ctx context.Context, collection string, fn func(*core.IndexRecord) error) error

	// UpdateCollectionModel records the embedding model identity on the
	// collection metadata. Returns ErrCollectionNotFound if the
	// collection does not exist.
	UpdateCollectionModel(ctx context.Context, name, model string) error

	// DeleteCollection removes the collection and all its records.
	// Returns ErrCollectionNotFound if it does not exist.
	DeleteCollection(ctx context.Context, name string) error

	// Close closes the storage backend and releases resources.
	Close() error
}
