package reembed

import (
	"context"

	"github.com/pellucid/docdex/core"
	"github.com/pellucid/docdex/storage"
)

const (
	// DefaultBatchSize is the default number of records per batch.
	DefaultBatchSize = 100
)

// RecordIterator iterates over the records of a collection in batches.
type RecordIterator struct {
	store     storage.VectorStore
	batchSize int
}

// NewRecordIterator creates a new record iterator.
// batchSize: number of records in each batch (must be > 0)
func NewRecordIterator(store storage.VectorStore, batchSize int) *RecordIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &RecordIterator{
		store:     store,
		batchSize: batchSize,
	}
}

// ForEach iterates over all records of the collection, calling fn for
// each batch. The records are collected up front so fn may write back
// into the same collection without disturbing the iteration.
// Iteration stops on the first error from fn; context cancellation is
// checked between batches.
func (it *RecordIterator) ForEach(ctx context.Context, collection string, fn func([]*core.IndexRecord) error) error {
	var records []*core.IndexRecord
	err := it.store.ForEachRecord(ctx, collection, func(record *core.IndexRecord) error {
		records = append(records, record)
		return nil
	})
	if err != nil {
		return err
	}

	for i := 0; i < len(records); i += it.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := i + it.batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := fn(records[i:end]); err != nil {
			return err
		}
	}

	return nil
}
