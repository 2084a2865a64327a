// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder,
// ai.RuleExtractor and ai.AIProvider for use in unit tests. The mocks
// allow tests to run without external AI service dependencies and
// enable controlled, deterministic behavior.
//
// # Default Behavior
//
//   - MockEmbedder: returns deterministic vectors based on text hash
//   - MockRuleExtractor: returns no rules
//   - MockProvider: aggregates mock embedder and extractor
package mock
