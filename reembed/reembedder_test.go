package reembed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/pellucid/docdex/ai/mock"
	"github.com/pellucid/docdex/core"
	"github.com/pellucid/docdex/storage"
	badgerstore "github.com/pellucid/docdex/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededStore(t *testing.T, collection string, records int) *badgerstore.Store {
	t.Helper()

	store, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	if records == 0 {
		return store
	}

	recs := make([]*core.IndexRecord, records)
	for i := range recs {
		text := fmt.Sprintf("regulation paragraph %d", i)
		recs[i] = &core.IndexRecord{
			Id:        fmt.Sprintf("doc-%d", i),
			Text:      text,
			Embedding: mock.DeterministicVector(text, 16),
		}
	}
	require.NoError(t, store.Upsert(context.Background(), collection, recs))
	require.NoError(t, store.UpdateCollectionModel(context.Background(), collection, "old-model"))
	return store
}

func TestReembedder_MigratesAllRecords(t *testing.T) {
	store := newSeededStore(t, "rules", 25)
	ctx := context.Background()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = mock.DeterministicVector("new:"+text, 16)
		}
		return out, nil
	}

	var progress bytes.Buffer
	r, err := NewReembedder(store, embedder, "new-model", &Config{
		BatchSize:      10,
		ReportInterval: 10,
		MaxRetries:     1,
		RetryDelay:     time.Millisecond,
	}, &progress)
	require.NoError(t, err)

	require.NoError(t, r.Run(ctx, "rules"))

	// Record count is unchanged and every vector is unit length
	count, err := store.Count(ctx, "rules")
	require.NoError(t, err)
	assert.Equal(t, 25, count)

	err = store.ForEachRecord(ctx, "rules", func(rec *core.IndexRecord) error {
		var sum float64
		for _, v := range rec.Embedding {
			sum += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
		return nil
	})
	require.NoError(t, err)

	info, err := store.Collection(ctx, "rules")
	require.NoError(t, err)
	assert.Equal(t, "new-model", info.Model)

	assert.Contains(t, progress.String(), "Migration complete")
}

func TestReembedder_EmptyCollection(t *testing.T) {
	store := newSeededStore(t, "rules", 1)
	ctx := context.Background()

	require.NoError(t, store.DeleteCollection(ctx, "rules"))

	var progress bytes.Buffer
	r, err := NewReembedder(store, mock.NewMockEmbedder(), "new-model", nil, &progress)
	require.NoError(t, err)

	err = r.Run(ctx, "rules")
	assert.ErrorIs(t, err, storage.ErrCollectionNotFound)
}

func TestReembedder_RequiresModel(t *testing.T) {
	store := newSeededStore(t, "rules", 1)

	_, err := NewReembedder(store, mock.NewMockEmbedder(), "", nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrModelRequired)
}

func TestReembedder_EmbedFailureKeepsOldModel(t *testing.T) {
	store := newSeededStore(t, "rules", 5)
	ctx := context.Background()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("provider down")
	}

	var progress bytes.Buffer
	r, err := NewReembedder(store, embedder, "new-model", &Config{
		BatchSize:      10,
		ReportInterval: 10,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}, &progress)
	require.NoError(t, err)

	require.Error(t, r.Run(ctx, "rules"))

	info, err := store.Collection(ctx, "rules")
	require.NoError(t, err)
	assert.Equal(t, "old-model", info.Model)
}

func TestRecordIterator_Batches(t *testing.T) {
	store := newSeededStore(t, "rules", 23)

	it := NewRecordIterator(store, 10)
	var sizes []int
	err := it.ForEach(context.Background(), "rules", func(records []*core.IndexRecord) error {
		sizes = append(sizes, len(records))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 10, 3}, sizes)
}

func TestRecordIterator_StopsOnError(t *testing.T) {
	store := newSeededStore(t, "rules", 23)

	wantErr := errors.New("stop")
	it := NewRecordIterator(store, 10)
	calls := 0
	err := it.ForEach(context.Background(), "rules", func(records []*core.IndexRecord) error {
		calls++
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls)
}

func TestRecordIterator_EmptyCollection(t *testing.T) {
	store := newSeededStore(t, "rules", 0)

	it := NewRecordIterator(store, 10)
	calls := 0
	err := it.ForEach(context.Background(), "absent", func(records []*core.IndexRecord) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
}
