package extract

import "errors"

var (
	// ErrSearcherRequired is returned when a searcher is not provided.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrExtractorRequired is returned when a rule extractor is not provided.
	ErrExtractorRequired = errors.New("rule extractor required")
)
