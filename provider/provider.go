package provider

import (
	"context"
	"errors"
	"os"

	"github.com/skhosravi/weathercheck/config"
	openai_provider "github.com/skhosravi/weathercheck/provider/openai"
)

// Client represents different reasoning backends
type Client string

const (
	OpenAI Client = "openai"
)

// Provider is the interface the reasoning policy talks to
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// NewProvider creates a reasoning backend from configuration. A base_url
// override points the OpenAI client at any compatible endpoint, including
// local model servers.
func NewProvider(client Client, cfg config.LLMConfig) (Provider, error) {
	switch client {
	case OpenAI:
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, errors.New("OPENAI_API_KEY not set")
		}
		return openai_provider.NewClient(
			apiKey,
			cfg.BaseURL,
			cfg.Model,
			cfg.Temperature,
			cfg.MaxTokens,
			cfg.Timeout,
		), nil
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}
