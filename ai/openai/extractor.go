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
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/pellucid/docdex/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// RuleExtractor implements ai.RuleExtractor using OpenAI-compatible chat APIs.
type RuleExtractor struct {
	client llms.Model
	logger *slog.Logger
}

var _ ai.RuleExtractor = (*RuleExtractor)(nil)

// newRuleExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newRuleExtractor(config *ai.Config) (*RuleExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	return &RuleExtractor{
		client: client,
		logger: slog.Default().With("component", "openai-rule-extractor"),
	}, nil
}

// NewRuleExtractor creates a new rule extractor using the provided configuration.
//
// Returns ai.RuleExtractor interface to enforce abstraction.
func NewRuleExtractor(config *ai.Config) (ai.RuleExtractor, error) {
	return newRuleExtractor(config)
}

// ExtractRules asks the model to turn regulations context into
// structured rostering rules. The model is instructed to answer with a
// bare JSON array; malformed output is retried with a repair pass.
func (e *RuleExtractor) ExtractRules(ctx context.Context, contextText string) ([]ai.ExtractedRule, error) {
	if strings.TrimSpace(contextText) == "" {
		return []ai.ExtractedRule{}, nil
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(extractionSystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildExtractionPrompt(contextText)),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var rules []ai.ExtractedRule
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.1))
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return []ai.ExtractedRule{}, nil
		}

		responseText := stripCodeFences(response.Choices[0].Content)
		responseText = repairJSON(responseText)

		rules = rules[:0]
		if err := json.Unmarshal([]byte(responseText), &rules); err != nil {
			lastErr = err
			e.logger.Warn("error parsing extractor response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse extractor response after retries", "err", lastErr)
		return nil, lastErr
	}

	normalizeRules(rules)
	e.logger.Debug("extracted rules", "count", len(rules))
	return rules, nil
}

// normalizeRules fills defaults for fields lenient models leave out.
func normalizeRules(rules []ai.ExtractedRule) {
	for i := range rules {
		if rules[i].Type != ai.RuleTypeHard && rules[i].Type != ai.RuleTypeSoft {
			rules[i].Type = ai.RuleTypeSoft
		}
		if rules[i].Status == "" {
			rules[i].Status = ai.RuleStatusActive
		}
	}
}

// stripCodeFences removes markdown code fences models wrap JSON in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
