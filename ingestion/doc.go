// Package ingestion turns documents into indexed, searchable records.
//
// The Indexer type manages the ingestion workflow for documents:
//   - Splitting each document into overlapping token windows
//   - Embedding all chunks of a call in a single batch
//   - Writing records under content-derived ids so that re-ingesting
//     unchanged documents leaves the collection unchanged
//
// Embedding failures abort the whole call before anything is written;
// a collection never ends up with a partially embedded document.
package ingestion
