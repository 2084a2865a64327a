package mock

import "github.com/pellucid/docdex/ai"

// MockProvider is a test double for ai.AIProvider aggregating the mock
// embedder and extractor.
type MockProvider struct {
	embedder  *MockEmbedder
	extractor *MockRuleExtractor
}

var _ ai.AIProvider = (*MockProvider)(nil)

// NewMockProvider creates a provider backed by default mocks.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		embedder:  NewMockEmbedder(),
		extractor: NewMockRuleExtractor(),
	}
}

// Embedder returns the mock embedder as ai.Embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// RuleExtractor returns the mock extractor as ai.RuleExtractor.
func (p *MockProvider) RuleExtractor() ai.RuleExtractor {
	return p.extractor
}

// Close implements ai.AIProvider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the concrete mock for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockRuleExtractor returns the concrete mock for test assertions.
func (p *MockProvider) GetMockRuleExtractor() *MockRuleExtractor {
	return p.extractor
}
