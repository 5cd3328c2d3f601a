// Package agent provides LLM client construction with provider selection and
// metrics middleware.
package agent

import (
	"fmt"

	"copysmith/pkg/agent/internal/llmimpl/anthropic"
	"copysmith/pkg/agent/internal/llmimpl/google"
	"copysmith/pkg/agent/internal/llmimpl/ollama"
	"copysmith/pkg/agent/internal/llmimpl/openaiofficial"
	"copysmith/pkg/agent/llm"
	"copysmith/pkg/agent/middleware/metrics"
	"copysmith/pkg/config"
)

// NewClient creates an LLM client for the configured model, wrapped with the
// given metrics recorder. The API key is resolved from secrets based on the
// model's provider; Ollama needs no key.
func NewClient(cfg *config.Config, recorder metrics.Recorder) (llm.Client, error) {
	provider, err := config.InferProvider(cfg.Model.Name)
	if err != nil {
		return nil, err
	}

	var raw llm.Client
	switch provider {
	case config.ProviderAnthropic:
		key, err := config.GetSecret(config.SecretAnthropicKey)
		if err != nil {
			return nil, fmt.Errorf("anthropic provider: %w", err)
		}
		raw = anthropic.NewClaudeClientWithModel(key, cfg.Model.Name)
	case config.ProviderOpenAI:
		key, err := config.GetSecret(config.SecretOpenAIKey)
		if err != nil {
			return nil, fmt.Errorf("openai provider: %w", err)
		}
		raw = openaiofficial.NewOfficialClientWithModel(key, cfg.Model.Name)
	case config.ProviderGoogle:
		key, err := config.GetSecret(config.SecretGoogleKey)
		if err != nil {
			return nil, fmt.Errorf("google provider: %w", err)
		}
		raw = google.NewGeminiClientWithModel(key, cfg.Model.Name)
	case config.ProviderOllama:
		raw = ollama.NewClientWithModel(cfg.Model.OllamaHost, cfg.Model.Name)
	default:
		return nil, fmt.Errorf("unsupported provider %q", provider)
	}

	return metrics.Wrap(raw, recorder), nil
}
