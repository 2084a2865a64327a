// Package chunk splits raw text into overlapping token windows sized to
// an embedding model's input limit.
//
// Tokenization uses the tiktoken vocabulary for the configured model,
// falling back to the generic cl100k_base encoding when the model is
// unknown. Splitting is deterministic: the same text with the same
// parameters always reproduces the same chunks.
package chunk
