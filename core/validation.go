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


package core

import (
	"fmt"
	"strconv"
)

// reservedMetadataKeys are populated by the indexer and may not be
// supplied by callers.
var reservedMetadataKeys = map[string]struct{}{
	MetaChunkIndex:  {},
	MetaChunkHash:   {},
	MetaContentHash: {},
	MetaSource:      {},
}

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//
// NOT validated:
//   - Id (empty is valid; the indexer substitutes "doc")
//   - Source (informational only)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyText)
	}

	return nil
}

// ValidateIndexRecord validates an IndexRecord before it is persisted.
//
// Validation rules:
//   - Id must not be empty
//   - Text must not be empty
//   - Embedding must not be empty
func ValidateIndexRecord(record *IndexRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyRecordId)
	}

	if record.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyText)
	}

	if len(record.Embedding) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyEmbedding)
	}

	return nil
}

// NewRecordMetadata constructs the metadata for one chunk, validating
// that caller-supplied extra fields do not collide with reserved keys.
func NewRecordMetadata(chunkIndex int, chunkHash, documentHash, source string, extra map[string]string) (*RecordMetadata, error) {
	for key := range extra {
		if _, reserved := reservedMetadataKeys[key]; reserved {
			return nil, fmt.Errorf("%w: %w: %q", ErrInvalidMetadata, ErrReservedMetadataKey, key)
		}
	}

	return &RecordMetadata{
		ChunkIndex:   chunkIndex,
		ChunkHash:    chunkHash,
		DocumentHash: documentHash,
		Source:       source,
		Extra:        extra,
	}, nil
}

// Map flattens the metadata into the string mapping persisted with the
// record. Reserved fields always win; Extra is copied, never aliased.
func (m *RecordMetadata) Map() map[string]string {
	out := make(map[string]string, len(m.Extra)+4)
	for k, v := range m.Extra {
		out[k] = v
	}
	out[MetaChunkIndex] = strconv.Itoa(m.ChunkIndex)
	out[MetaChunkHash] = m.ChunkHash
	out[MetaContentHash] = m.DocumentHash
	if m.Source != "" {
		out[MetaSource] = m.Source
	}
	return out
}
