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


package openai

import (
	"log/slog"

	"github.com/pellucid/docdex/ai"
	"github.com/pellucid/docdex/ai/local"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// Its Embedder is wrapped in the primary-then-fallback strategy: the
// remote provider is tried first and the local model covers failures.
type Provider struct {
	config    *ai.Config
	embedder  *ai.FallbackEmbedder
	extractor *RuleExtractor
	logger    *slog.Logger
}

var _ ai.AIProvider = (*Provider)(nil)

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
func NewProvider(config *ai.Config) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	remote, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	// The local model is created once per provider and initialized
	// lazily on the first fallback.
	fallback := local.NewEmbedder(
		local.WithModel(config.FallbackModel),
		local.WithDimension(config.FallbackDimension),
	)

	embedder, err := ai.NewFallbackEmbedder(remote, fallback)
	if err != nil {
		return nil, err
	}

	extractor, err := newRuleExtractor(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:    config,
		embedder:  embedder,
		extractor: extractor,
		logger:    slog.Default().With("component", "openai-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// FallbackEmbedder returns the embedder as its concrete type so callers
// can observe which path produced a batch.
func (p *Provider) FallbackEmbedder() *ai.FallbackEmbedder {
	return p.embedder
}

// Config returns the validated configuration the provider was built with.
func (p *Provider) Config() *ai.Config {
	return p.config
}

// RuleExtractor returns the rule extraction service.
func (p *Provider) RuleExtractor() ai.RuleExtractor {
	return p.extractor
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
