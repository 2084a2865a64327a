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


package badger

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pellucid/docdex/core"
	"github.com/pellucid/docdex/storage"
)

// Store implements storage.VectorStore on top of a BadgerDB backend.
// Records live under per-collection key prefixes and similarity search
// is a brute-force cosine scan over the collection.
type Store struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.VectorStore = (*Store)(nil)

// NewStore creates a new Store on the given backend.
func NewStore(backend *Backend) (*Store, error) {
	return &Store{
		backend: backend,
		logger:  slog.Default().With("component", "vectorstore"),
	}, nil
}

// Upsert writes records into the named collection, creating the
// collection on first use. Existing ids are overwritten in place.
func (s *Store) Upsert(ctx context.Context, collection string, records []*core.IndexRecord) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if len(records) == 0 {
		return nil
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		info, err := readCollectionInfo(tx, collection)
		if err != nil {
			return err
		}
		if info == nil {
			info = &core.CollectionInfo{
				Name:      collection,
				Space:     core.CosineSpace,
				Dimension: len(records[0].Embedding),
				CreatedAt: time.Now().UTC(),
			}
			if err := tx.Set(makeCollectionMetaKey(collection), storage.MarshalCollectionInfo(info)); err != nil {
				return err
			}
			s.logger.Info("created collection",
				"collection", collection,
				"dimension", info.Dimension)
		}

		for _, record := range records {
			if err := core.ValidateIndexRecord(record); err != nil {
				return err
			}
			if len(record.Embedding) != info.Dimension {
				s.logger.Warn("record dimension differs from collection",
					"collection", collection,
					"record_id", record.Id,
					"record_dimension", len(record.Embedding),
					"collection_dimension", info.Dimension)
			}
			key := makeRecordKey(collection, record.Id)
			if err := tx.Set(key, storage.MarshalIndexRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Query returns up to topK records ranked by descending cosine
// similarity to the vector. A missing collection yields an empty
// result.
func (s *Store) Query(ctx context.Context, collection string, vector []float32, topK int) ([]*core.QueryResult, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if topK <= 0 || len(vector) == 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.QueryResult

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeRecordScanPrefix(collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record *core.IndexRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalIndexRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil || len(record.Embedding) == 0 {
				continue
			}

			results = append(results, &core.QueryResult{
				Id:       record.Id,
				Text:     record.Text,
				Metadata: record.Metadata,
				Score:    cosineSimilarity(vector, record.Embedding),
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.QueryResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

// Count returns the number of records in the collection. A missing
// collection counts as zero.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	if s.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	count := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeRecordScanPrefix(collection)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)

	return count, err
}

// Collection returns metadata for the named collection.
func (s *Store) Collection(ctx context.Context, name string) (*core.CollectionInfo, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var info *core.CollectionInfo
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		info, err = readCollectionInfo(tx, name)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, storage.ErrCollectionNotFound
	}
	return info, nil
}

// Collections lists the names of all collections in the store.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var names []string
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = collectionMetaScanPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				info, err := storage.UnmarshalCollectionInfo(val)
				if err != nil {
					return err
				}
				names = append(names, info.Name)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.Sort(names)
	return names, nil
}

// ForEachRecord calls fn for every record in the collection.
func (s *Store) ForEachRecord(ctx context.Context, collection string, fn func(*core.IndexRecord) error) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeRecordScanPrefix(collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record *core.IndexRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalIndexRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(record); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// UpdateCollectionModel records the embedding model identity on the
// collection metadata.
func (s *Store) UpdateCollectionModel(ctx context.Context, name, model string) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		info, err := readCollectionInfo(tx, name)
		if err != nil {
			return err
		}
		if info == nil {
			return storage.ErrCollectionNotFound
		}
		if info.Model == model {
			return nil
		}
		info.Model = model
		if err := tx.Set(makeCollectionMetaKey(name), storage.MarshalCollectionInfo(info)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteCollection removes the collection metadata and all its records.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	// Collect keys in a read pass first; deleting while iterating the
	// same transaction invalidates the iterator.
	var keys [][]byte
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := tx.Get(makeCollectionMetaKey(name)); err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrCollectionNotFound
			}
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeRecordScanPrefix(name)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return err
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		if err := tx.Delete(makeCollectionMetaKey(name)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// readCollectionInfo reads collection metadata within a transaction.
// Returns nil without error if the collection does not exist.
func readCollectionInfo(tx *badger.Txn, name string) (*core.CollectionInfo, error) {
	item, err := tx.Get(makeCollectionMetaKey(name))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var info *core.CollectionInfo
	err = item.Value(func(val []byte) error {
		var err error
		info, err = storage.UnmarshalCollectionInfo(val)
		return err
	})
	return info, err
}

// cosineSimilarity calculates the cosine of the angle between two
// vectors. Zero-norm vectors score zero.
func cosineSimilarity(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		normA += float64(v) * float64(v)
	}
	for _, v := range b {
		normB += float64(v) * float64(v)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
