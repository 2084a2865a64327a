package mock

import (
	"context"

	"github.com/pellucid/docdex/ai"
)

// MockRuleExtractor is a test double for ai.RuleExtractor.
type MockRuleExtractor struct {
	// ExtractRulesFunc is called by ExtractRules if set.
	// If nil, an empty rule list is returned.
	ExtractRulesFunc func(ctx context.Context, contextText string) ([]ai.ExtractedRule, error)

	callCount int
}

// NewMockRuleExtractor creates a mock extractor returning no rules.
func NewMockRuleExtractor() *MockRuleExtractor {
	return &MockRuleExtractor{}
}

// ExtractRules returns the injected behavior or an empty rule list.
func (m *MockRuleExtractor) ExtractRules(ctx context.Context, contextText string) ([]ai.ExtractedRule, error) {
	m.callCount++

	if m.ExtractRulesFunc != nil {
		return m.ExtractRulesFunc(ctx, contextText)
	}
	return []ai.ExtractedRule{}, nil
}

// CallCount returns the number of times ExtractRules was called.
func (m *MockRuleExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockRuleExtractor) Reset() {
	m.callCount = 0
	m.ExtractRulesFunc = nil
}
