package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultOpenAIModel is used when no chat model is configured.
	DefaultOpenAIModel = openai.GPT4oMini
	// DefaultOllamaBaseURL is Ollama's OpenAI-compatible endpoint.
	DefaultOllamaBaseURL = "http://localhost:11434/v1"
	// DefaultOllamaModel is used when no Ollama model is configured.
	DefaultOllamaModel = "llama3.1"
)

// OpenAIGenerator generates answers through an OpenAI-compatible chat
// completion endpoint. Ollama is served by the same implementation with a
// different base URL.
type OpenAIGenerator struct {
	client   *openai.Client
	model    string
	provider string
}

// NewOpenAIGenerator creates a generator backed by the OpenAI API.
func NewOpenAIGenerator(apiKey, model, baseURL string) *OpenAIGenerator {
	if model == "" {
		model = DefaultOpenAIModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGenerator{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		provider: ProviderOpenAI,
	}
}

// NewOllamaGenerator creates a generator backed by a local Ollama server.
func NewOllamaGenerator(model, baseURL string) *OpenAIGenerator {
	if model == "" {
		model = DefaultOllamaModel
	}
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	cfg := openai.DefaultConfig("ollama")
	cfg.BaseURL = baseURL
	return &OpenAIGenerator{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		provider: ProviderOllama,
	}
}

// Generate runs a single-turn chat completion for the prompt.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Provider returns the configured provider name.
func (g *OpenAIGenerator) Provider() string {
	return g.provider
}
