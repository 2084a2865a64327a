package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pellucid/docdex/ai"
	"github.com/pellucid/docdex/ai/mock"
	"github.com/pellucid/docdex/chunk"
	"github.com/pellucid/docdex/core"
	badgerstore "github.com/pellucid/docdex/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordTokenizer treats each whitespace-separated word as one token so
// tests do not depend on downloaded tiktoken vocabularies.
type wordTokenizer struct {
	vocab map[string]int
	words []string
}

func newWordTokenizer() *wordTokenizer {
	return &wordTokenizer{vocab: make(map[string]int)}
}

func (t *wordTokenizer) Encode(text string) []int {
	fields := strings.Fields(text)
	tokens := make([]int, 0, len(fields))
	for _, w := range fields {
		id, ok := t.vocab[w]
		if !ok {
			id = len(t.words)
			t.vocab[w] = id
			t.words = append(t.words, w)
		}
		tokens = append(tokens, id)
	}
	return tokens
}

func (t *wordTokenizer) Decode(tokens []int) string {
	words := make([]string, len(tokens))
	for i, id := range tokens {
		words[i] = t.words[id]
	}
	return strings.Join(words, " ")
}

type testIndexer struct {
	indexer  *Indexer
	store    *badgerstore.Store
	primary  *mock.MockEmbedder
	fallback *mock.MockEmbedder
}

func newTestIndexer(t *testing.T, opts ...Option) *testIndexer {
	t.Helper()

	store, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	primary := mock.NewMockEmbedder()
	fallback := mock.NewMockEmbedder()
	embedder, err := ai.NewFallbackEmbedder(primary, fallback)
	require.NoError(t, err)

	chunker, err := chunk.New(
		chunk.WithTokenizer(newWordTokenizer()),
		chunk.WithMaxTokens(8),
		chunk.WithOverlap(2))
	require.NoError(t, err)

	opts = append([]Option{
		WithChunker(chunker),
		WithModelIdentities("primary-model", "fallback-model"),
	}, opts...)

	indexer, err := NewIndexer(store, embedder, opts...)
	require.NoError(t, err)

	return &testIndexer{
		indexer:  indexer,
		store:    store,
		primary:  primary,
		fallback: fallback,
	}
}

func regulationDoc(id string, words int) *core.Document {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = "rule" + string(rune('a'+i%26))
	}
	return &core.Document{
		Id:     id,
		Source: "https://example.test/" + id,
		Text:   strings.Join(parts, " "),
	}
}

func TestNewIndexer_Validation(t *testing.T) {
	primary := mock.NewMockEmbedder()
	embedder, err := ai.NewFallbackEmbedder(primary, mock.NewMockEmbedder())
	require.NoError(t, err)

	_, err = NewIndexer(nil, embedder)
	assert.ErrorIs(t, err, ErrStoreRequired)

	store, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	_, err = NewIndexer(store, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestUpsert_EmptyInput(t *testing.T) {
	ti := newTestIndexer(t)
	ctx := context.Background()

	result, err := ti.indexer.Upsert(ctx, "rules", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, &Result{}, result)

	// No provider call and no collection created
	assert.Equal(t, 0, ti.primary.CallCount())
	assert.Equal(t, 0, ti.fallback.CallCount())

	names, err := ti.store.Collections(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestUpsert_MissingCollectionName(t *testing.T) {
	ti := newTestIndexer(t)

	_, err := ti.indexer.Upsert(context.Background(), "", []*core.Document{
		regulationDoc("doc-1", 4),
	}, nil)
	assert.ErrorIs(t, err, ErrCollectionRequired)
}

func TestUpsert_ChunksAndWrites(t *testing.T) {
	ti := newTestIndexer(t)
	ctx := context.Background()

	// 20 words with window 8 and overlap 2 produce 3 chunks
	result, err := ti.indexer.Upsert(ctx, "rules", []*core.Document{
		regulationDoc("doc-1", 20),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Documents)
	assert.Equal(t, 3, result.Chunks)
	assert.Equal(t, ai.SourcePrimary, result.Source)

	count, err := ti.store.Count(ctx, "rules")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// One batch call for the whole document set
	assert.Equal(t, 1, ti.primary.CallCount())
	assert.Equal(t, 0, ti.fallback.CallCount())

	info, err := ti.store.Collection(ctx, "rules")
	require.NoError(t, err)
	assert.Equal(t, "primary-model", info.Model)
}

func TestUpsert_Idempotent(t *testing.T) {
	ti := newTestIndexer(t)
	ctx := context.Background()

	docs := []*core.Document{regulationDoc("doc-1", 20)}

	first, err := ti.indexer.Upsert(ctx, "rules", docs, nil)
	require.NoError(t, err)
	second, err := ti.indexer.Upsert(ctx, "rules", docs, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Chunks, second.Chunks)

	count, err := ti.store.Count(ctx, "rules")
	require.NoError(t, err)
	assert.Equal(t, first.Chunks, count)
}

func TestUpsert_ContentChangeWritesNewRecords(t *testing.T) {
	ti := newTestIndexer(t)
	ctx := context.Background()

	_, err := ti.indexer.Upsert(ctx, "rules", []*core.Document{
		{Id: "doc-1", Text: "crews rest twelve hours"},
	}, nil)
	require.NoError(t, err)

	_, err = ti.indexer.Upsert(ctx, "rules", []*core.Document{
		{Id: "doc-1", Text: "crews rest fourteen hours"},
	}, nil)
	require.NoError(t, err)

	// Changed content has a new document hash, so both versions remain
	count, err := ti.store.Count(ctx, "rules")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestUpsert_RecordShape(t *testing.T) {
	ti := newTestIndexer(t)
	ctx := context.Background()

	doc := &core.Document{
		Id:     "easa-ftl",
		Source: "https://example.test/easa",
		Text:   "flight duty period limits",
	}
	_, err := ti.indexer.Upsert(ctx, "rules", []*core.Document{doc},
		map[string]string{"category": "compliance"})
	require.NoError(t, err)

	docHash := core.HashText(doc.Text)
	chunkHash := core.HashText(doc.Text)

	var records []*core.IndexRecord
	err = ti.store.ForEachRecord(ctx, "rules", func(rec *core.IndexRecord) error {
		records = append(records, rec)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, core.RecordId("easa-ftl", docHash, 0, chunkHash), rec.Id)
	assert.Equal(t, doc.Text, rec.Text)
	assert.NotEmpty(t, rec.Embedding)
	assert.Equal(t, "0", rec.Metadata[core.MetaChunkIndex])
	assert.Equal(t, chunkHash, rec.Metadata[core.MetaChunkHash])
	assert.Equal(t, docHash, rec.Metadata[core.MetaContentHash])
	assert.Equal(t, doc.Source, rec.Metadata[core.MetaSource])
	assert.Equal(t, "compliance", rec.Metadata["category"])
}

func TestUpsert_ReservedMetadataKey(t *testing.T) {
	ti := newTestIndexer(t)

	_, err := ti.indexer.Upsert(context.Background(), "rules",
		[]*core.Document{regulationDoc("doc-1", 4)},
		map[string]string{core.MetaContentHash: "spoofed"})
	assert.ErrorIs(t, err, core.ErrReservedMetadataKey)

	// Nothing embedded or written
	assert.Equal(t, 0, ti.primary.CallCount())
}

func TestUpsert_EmbedFailureAbortsWrite(t *testing.T) {
	ti := newTestIndexer(t)
	ctx := context.Background()

	wantErr := errors.New("provider down")
	ti.primary.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, wantErr
	}
	ti.fallback.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, wantErr
	}

	_, err := ti.indexer.Upsert(ctx, "rules", []*core.Document{
		regulationDoc("doc-1", 20),
	}, nil)
	require.Error(t, err)

	count, err := ti.store.Count(ctx, "rules")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestUpsert_FallbackSourceRecorded(t *testing.T) {
	ti := newTestIndexer(t)
	ctx := context.Background()

	ti.primary.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("provider down")
	}

	result, err := ti.indexer.Upsert(ctx, "rules", []*core.Document{
		regulationDoc("doc-1", 20),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, ai.SourceFallback, result.Source)

	info, err := ti.store.Collection(ctx, "rules")
	require.NoError(t, err)
	assert.Equal(t, "fallback-model", info.Model)
}

func TestUpsert_InvalidDocument(t *testing.T) {
	ti := newTestIndexer(t)

	_, err := ti.indexer.Upsert(context.Background(), "rules", []*core.Document{
		{Id: "doc-1", Text: ""},
	}, nil)
	assert.ErrorIs(t, err, core.ErrInvalidDocument)
}
