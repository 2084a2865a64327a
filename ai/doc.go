// Package ai defines the AI service interfaces used by the ingestion
// and retrieval pipelines, and the primary-then-fallback embedding
// strategy built on top of them.
//
// Concrete implementations live in subpackages: openai (remote,
// OpenAI-compatible APIs through langchaingo), local (in-process
// fallback model) and mock (test doubles).
package ai
