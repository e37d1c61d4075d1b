package factory

import (
	"context"
	"fmt"
	"time"

	"ai-notes-assistant/pkg/llm"
	"ai-notes-assistant/pkg/llm/gemini"
	"ai-notes-assistant/pkg/llm/ollama"
	"ai-notes-assistant/pkg/llm/openai"
)

type Config struct {
	Provider string // ollama | openai | gemini
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

func NewLLMProvider(ctx context.Context, cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewProvider(cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "openai", "huggingface":
		return openai.NewProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "gemini":
		return gemini.NewProvider(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
