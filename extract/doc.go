// Package extract turns indexed regulations into structured rostering
// rules. It retrieves the most relevant chunks from a collection,
// concatenates them into a context block, and asks the configured
// rule extractor to produce rules from that context.
package extract
