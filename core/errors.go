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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidRecord indicates an IndexRecord failed validation.
	ErrInvalidRecord = errors.New("invalid index record")

	// ErrInvalidMetadata indicates record metadata failed validation.
	ErrInvalidMetadata = errors.New("invalid record metadata")

	// ErrEmptyText indicates a text field that must not be empty is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptyRecordId indicates the record Id field is empty.
	ErrEmptyRecordId = errors.New("record id cannot be empty")

	// ErrEmptyEmbedding indicates the record Embedding field is empty.
	ErrEmptyEmbedding = errors.New("record embedding cannot be empty")

	// ErrReservedMetadataKey indicates a caller-supplied metadata field
	// collides with a key the indexer populates itself.
	ErrReservedMetadataKey = errors.New("metadata key is reserved")
)
