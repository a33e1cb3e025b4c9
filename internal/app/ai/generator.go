/*
Package ai wraps the generative model behind the three assistant features:
event invitation drafting, mentor matching and profile enrichment.

Each task validates its input, renders a prompt, makes exactly one generator
call and decodes the JSON the model returns. Provider failures and malformed
output are reported as one "AI service failed" error.
*/
package ai

import (
	"context"
	"errors"
	"fmt"

	"alumnilink/internal/configs"
)

// ErrNotConfigured is returned by New when the selected provider has no API key.
var ErrNotConfigured = errors.New("ai: provider API key is not set")

// ErrEmptyResponse is returned by generators when the model produced no text.
var ErrEmptyResponse = errors.New("ai: empty response")

// Request is one generation call. The model is always asked for a JSON object.
type Request struct {
	// Task names the feature for logs and metrics.
	Task string

	// System is the instruction that frames the task.
	System string

	// Prompt carries the user input.
	Prompt string
}

// Generator produces the raw JSON text for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// New returns the generator selected by cfg.AIProvider.
func New(ctx context.Context, cfg *configs.AppConfig) (Generator, error) {
	key := cfg.AIAPIKey()
	if key == "" {
		return nil, ErrNotConfigured
	}

	switch cfg.AIProvider {
	case configs.ProviderGemini:
		return NewGemini(ctx, key, cfg.GeminiModel)
	case configs.ProviderOpenAI:
		return NewOpenAI(key, cfg.OpenAIBase, cfg.OpenAIModel), nil
	}
	return nil, fmt.Errorf("ai: unknown provider %q", cfg.AIProvider)
}
