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


package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pellucid/docdex/ai"
	"github.com/pellucid/docdex/search"
)

const (
	// DefaultQuery retrieves the regulation chunks most relevant to
	// rostering compliance.
	DefaultQuery = "crew rostering regulations and compliance requirements"

	// DefaultContextChunks is the number of retrieved chunks joined
	// into the extraction context.
	DefaultContextChunks = 8
)

// RuleExtractor retrieves regulation context from a collection and
// extracts structured rules from it.
type RuleExtractor struct {
	searcher      *search.Searcher
	extractor     ai.RuleExtractor
	query         string
	contextChunks int
	logger        *slog.Logger
}

// Option configures a RuleExtractor.
type Option func(*RuleExtractor) error

// WithQuery sets the retrieval query used to build the context.
// Default is DefaultQuery.
func WithQuery(query string) Option {
	return func(e *RuleExtractor) error {
		if query != "" {
			e.query = query
		}
		return nil
	}
}

// WithContextChunks sets how many retrieved chunks form the context.
// Default is DefaultContextChunks.
func WithContextChunks(n int) Option {
	return func(e *RuleExtractor) error {
		if n > 0 {
			e.contextChunks = n
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *RuleExtractor) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewRuleExtractor creates a new rule extractor over the searcher and
// the AI extraction service.
func NewRuleExtractor(searcher *search.Searcher, extractor ai.RuleExtractor, opts ...Option) (*RuleExtractor, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}

	e := &RuleExtractor{
		searcher:      searcher,
		extractor:     extractor,
		query:         DefaultQuery,
		contextChunks: DefaultContextChunks,
		logger:        slog.Default().With("component", "rule-extractor"),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// ExtractRules retrieves the most relevant chunks from the collection
// and extracts structured rules from them. An empty or missing
// collection yields an empty rule set without calling the extraction
// service.
func (e *RuleExtractor) ExtractRules(ctx context.Context, collection string) ([]ai.ExtractedRule, error) {
	results, err := e.searcher.Query(ctx, collection, e.query, e.contextChunks)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		e.logger.Info("no indexed context, skipping extraction", "collection", collection)
		return []ai.ExtractedRule{}, nil
	}

	texts := make([]string, len(results))
	for i, result := range results {
		texts[i] = result.Text
	}
	contextText := strings.Join(texts, "\n\n")

	rules, err := e.extractor.ExtractRules(ctx, contextText)
	if err != nil {
		return nil, err
	}

	e.logger.Info("extracted rules",
		"collection", collection,
		"context_chunks", len(results),
		"rules", len(rules))

	return rules, nil
}
