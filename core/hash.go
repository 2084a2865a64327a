package core

import (
	"encoding/hex"
	"fmt"

	"github.com/go-crypt/x/blake2b"
)

// hashSize is the digest length in bytes. Rendered as hex this yields a
// 12 character identifier component with no reserved characters.
const hashSize = 6

// HashText generates a short, stable digest of text using BLAKE2b.
// Identical text always produces the identical digest; any single
// character change produces a different one.
func HashText(text string) string {
	h, _ := blake2b.New(hashSize, nil)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// RecordId composes the persisted record identifier for a chunk.
// The id is a pure function of document identity and content, so
// re-ingesting byte-identical content yields the identical id while any
// content change yields a new one.
func RecordId(docId, docHash string, chunkIndex int, chunkHash string) string {
	if docId == "" {
		docId = "doc"
	}
	return fmt.Sprintf("%s-%s-%d-%s", docId, docHash, chunkIndex, chunkHash)
}
