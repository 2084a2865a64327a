// Package search provides semantic retrieval over indexed collections.
//
// The Searcher embeds a query through the same primary/fallback path
// the indexer uses, then ranks stored records by cosine similarity.
// An optional SearchMonitor observes the stages of a query.
package search
