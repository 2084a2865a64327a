// Package fetch retrieves regulation documents from remote sources.
//
// Sources are fetched concurrently through a worker pool. A source
// that cannot be fetched is logged and dropped; the remaining sources
// still produce documents, so one unreachable host never blocks an
// indexing run.
package fetch
