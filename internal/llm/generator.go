// Package llm provides answer generation backends behind a single
// capability interface. The concrete backend is chosen once at construction
// from configuration; callers never branch on the provider.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Provider names accepted in configuration.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// Generator produces a completion for a fully rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Provider() string
}

// Config selects and configures a generation backend.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// New constructs the configured Generator, wrapped with a deadline when
// Timeout is set.
func New(ctx context.Context, cfg Config) (Generator, error) {
	var (
		g   Generator
		err error
	)
	switch cfg.Provider {
	case ProviderOpenAI:
		g = NewOpenAIGenerator(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case ProviderOllama:
		g = NewOllamaGenerator(cfg.Model, cfg.BaseURL)
	case ProviderGemini:
		g, err = NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Timeout > 0 {
		g = WithTimeout(g, cfg.Timeout)
	}
	return g, nil
}
