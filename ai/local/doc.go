// Package local provides an in-process fallback embedding model.
//
// The model is a token feature-hashing encoder: it needs no remote
// service, no per-corpus preparation and no model files, which makes it
// a dependable last resort when the remote provider is unreachable or
// over quota. Vectors are L2-normalized so cosine similarity reduces to
// a dot product. The encoder is initialized lazily exactly once per
// Embedder and is safe for concurrent use after initialization.
//
// Vectors from this model live in a different space than remote
// embeddings; mixing the two in one collection degrades similarity
// ranking (see the reembed package for migrating a collection).
package local
