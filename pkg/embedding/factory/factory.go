package factory

import (
	"fmt"
	"net/http"
	"time"

	"ai-notes-assistant/pkg/embedding"
	"ai-notes-assistant/pkg/embedding/jina"
)

type Config struct {
	Provider      string // gemini | ollama | jina | openai
	Model         string
	BaseURL       string
	APIKey        string
	Dimension     int
	MaxInputChars int
	Timeout       time.Duration
}

// NewEmbeddingProvider builds the configured provider wrapped in the input,
// timeout and dimension guard.
func NewEmbeddingProvider(cfg Config) (*embedding.GuardedProvider, error) {
	client := &http.Client{Timeout: cfg.Timeout}

	var inner embedding.EmbeddingProvider
	switch cfg.Provider {
	case "gemini":
		p := embedding.NewGeminiProvider(cfg.APIKey, cfg.Model, client)
		if cfg.BaseURL != "" {
			p.BaseURL = cfg.BaseURL
		}
		inner = p
	case "ollama":
		inner = embedding.NewOllamaProvider(cfg.BaseURL, cfg.Model, client)
	case "jina":
		p := jina.NewJinaProvider(cfg.APIKey, cfg.Model, client)
		if cfg.BaseURL != "" {
			p.WithBaseURL(cfg.BaseURL)
		}
		inner = p
	case "openai":
		inner = embedding.NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Dimension, client)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}

	return embedding.NewGuardedProvider(inner, cfg.Dimension, cfg.MaxInputChars, cfg.Timeout), nil
}
