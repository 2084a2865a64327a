package core

import "time"

// CosineSpace is the similarity space every collection is created with.
const CosineSpace = "cosine"

// Document is an external unit of content handed to the indexer by a
// feed collaborator. Documents are consumed once during ingestion and
// are not persisted as a whole; only their chunks are.
type Document struct {
	Id     string // Optional caller-supplied identifier; "doc" when empty
	Source string // Locator the text came from (URL, file path)
	Text   string // Already-extracted plain text
}

// Chunk is a contiguous token-window slice of a document's text.
// Chunks are immutable once created: re-chunking the same text with the
// same parameters reproduces identical chunks and hashes.
type Chunk struct {
	Index      int    // Ordinal within the document
	Text       string // Decoded text of the token window
	TokenCount int    // Number of tokens in the window
	Hash       string // Content digest of Text
}

// IndexRecord is the persisted unit in a vector store collection.
type IndexRecord struct {
	Id        string
	Text      string
	Embedding []float32
	Metadata  map[string]string
}

// CollectionInfo describes a named collection in the vector store.
// Dimension is fixed by whichever embedding wrote the first record.
type CollectionInfo struct {
	Name      string
	Space     string // Similarity space, always CosineSpace
	Dimension int
	Model     string // Model identity of the last writer, informational
	CreatedAt time.Time
}

// QueryResult is one ranked hit from a similarity query.
type QueryResult struct {
	Id       string
	Text     string
	Metadata map[string]string
	Score    float32
}

// Reserved metadata keys populated by the indexer for every record.
const (
	MetaChunkIndex  = "chunk_index"
	MetaChunkHash   = "chunk_hash"
	MetaContentHash = "content_hash"
	MetaSource      = "source"
)

// RecordMetadata is the closed, typed form of a record's metadata.
// The indexer builds one per chunk and flattens it with Map; caller
// fields must not collide with the reserved keys above.
type RecordMetadata struct {
	ChunkIndex   int
	ChunkHash    string
	DocumentHash string
	Source       string
	Extra        map[string]string
}
