package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails; partial results
	// are never returned.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// RuleExtractor turns retrieved regulations context into structured
// rostering rules. Implementations must be thread-safe for concurrent use.
type RuleExtractor interface {
	// ExtractRules analyzes the provided context and returns the
	// actionable rules it describes. Returns an empty slice when the
	// context contains no rules.
	ExtractRules(ctx context.Context, contextText string) ([]ExtractedRule, error)
}

// Rule type and status values produced by extraction.
const (
	RuleTypeHard = "hard"
	RuleTypeSoft = "soft"

	RuleStatusActive   = "active"
	RuleStatusInactive = "inactive"
)

// ExtractedRule is one structured rostering rule extracted from
// regulations context.
type ExtractedRule struct {
	// Id is a short stable identifier for the rule.
	Id string `json:"id"`

	// Name is a human-readable rule name.
	Name string `json:"name"`

	// Type is RuleTypeHard for limits that must never be violated,
	// RuleTypeSoft for preferences.
	Type string `json:"type"`

	// Description states the rule in plain language.
	Description string `json:"description"`

	// Status is RuleStatusActive or RuleStatusInactive.
	Status string `json:"status"`

	// Violations is the observed violation count, zero at extraction.
	Violations int `json:"violations"`
}

// AIProvider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// RuleExtractor instances, ensuring they share configuration.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// RuleExtractor returns the rule extraction service.
	// The returned RuleExtractor is safe for concurrent use.
	RuleExtractor() RuleExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
