// Package reembed migrates an indexed collection to a new embedding
// model. Every record in the collection is re-embedded and overwritten
// in place, so a collection never mixes vectors from different model
// spaces once a migration completes.
//
// The package supports batch processing, progress reporting, retry
// with exponential backoff, and vector normalization for cosine
// similarity search.
package reembed
