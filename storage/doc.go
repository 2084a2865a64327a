// Package storage defines the persistent vector store interface used
// by the ingestion and retrieval pipelines, plus the serialization of
// persisted records.
//
// A store holds named collections of IndexRecords. Every collection is
// created in cosine similarity space; its dimensionality is fixed by
// whichever embedding wrote its first record. Implementations must be
// thread-safe and support concurrent access.
//
// The badger subpackage provides the BadgerDB-backed implementation.
package storage
