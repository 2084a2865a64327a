package search

import (
	"github.com/pellucid/docdex/ai"
	"github.com/pellucid/docdex/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(collection, query string)
	AfterQueryEmbedding(dimension int, source ai.VectorSource)
	Finish(results []*core.QueryResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string)                             {}
func (n *noopMonitor) AfterQueryEmbedding(_ int, _ ai.VectorSource) {}
func (n *noopMonitor) Finish(_ []*core.QueryResult)                 {}
