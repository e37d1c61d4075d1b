package service

import (
	"context"
	"fmt"
	"strings"

	"ai-notes-assistant/internal/pkg/apperror"
	"ai-notes-assistant/internal/pkg/logger"
	"ai-notes-assistant/pkg/llm"
)

const (
	correctionPrompt = "You are a helpful assistant. Detect the language of the text and fix only its errors, in that same language: " +
		"grammar, style, syntax and spelling. Do not change the meaning. Reply with the corrected text only."
	translationPrompt = "You are a translator. Translate the following text into %s, keeping the meaning and style of the original. " +
		"Reply with the translation only."
	assistantMaxTokens = 1024
)

// languageNames maps the shortcuts offered by clients to prompt wording.
var languageNames = map[string]string{
	"en-gb": "British English",
	"en-us": "American English",
	"pl":    "Polish",
}

type IAssistantService interface {
	Correct(ctx context.Context, text string) (string, error)
	Translate(ctx context.Context, text, language string) (string, error)
}

type assistantService struct {
	llmProvider llm.LLMProvider
	log         logger.ILogger
}

func NewAssistantService(llmProvider llm.LLMProvider, log logger.ILogger) IAssistantService {
	return &assistantService{llmProvider: llmProvider, log: log}
}

func (s *assistantService) Correct(ctx context.Context, text string) (string, error) {
	const op = "AssistantService.Correct"
	if err := validateText(op, text); err != nil {
		return "", err
	}
	return s.complete(ctx, op, correctionPrompt, text)
}

func (s *assistantService) Translate(ctx context.Context, text, language string) (string, error) {
	const op = "AssistantService.Translate"
	if err := validateText(op, text); err != nil {
		return "", err
	}
	language = strings.TrimSpace(language)
	if language == "" {
		return "", apperror.Validation(op, "language must not be empty")
	}
	if name, ok := languageNames[strings.ToLower(language)]; ok {
		language = name
	}
	return s.complete(ctx, op, fmt.Sprintf(translationPrompt, language), text)
}

func (s *assistantService) complete(ctx context.Context, op, system, text string) (string, error) {
	out, err := s.llmProvider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: text},
	}, llm.WithMaxTokens(assistantMaxTokens))
	if err != nil {
		s.log.Error("ASSISTANT", "Completion failed", map[string]interface{}{
			"op":    op,
			"error": err.Error(),
		})
		return "", apperror.Upstream(op, err)
	}
	return strings.TrimSpace(out), nil
}
