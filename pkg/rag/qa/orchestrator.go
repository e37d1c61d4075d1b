// Package qa answers questions about the user's notes with a chat-completion
// engine, using the closest notes as reference material.
package qa

import (
	"context"
	"strings"
	"time"

	"ai-notes-assistant/internal/pkg/apperror"
	"ai-notes-assistant/internal/pkg/logger"
	"ai-notes-assistant/pkg/llm"
	"ai-notes-assistant/pkg/rag/prompt"
	"ai-notes-assistant/pkg/rag/search"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const op = "qa.Ask"

type Turn = prompt.Turn

type Searcher interface {
	Search(ctx context.Context, query string, topK int, minScore float64) (*search.Result, error)
}

type Source struct {
	NoteId    uuid.UUID
	Text      string
	Score     float64
	UpdatedAt time.Time
}

type Answer struct {
	Text string
	// Sources are the notes placed in the prompt, most relevant first.
	Sources          []Source
	Grounded         bool
	NeedsReindex     []uuid.UUID
	ContextTruncated bool
}

type Config struct {
	TopK              int
	MinScore          float64
	ContextCharBudget int
	// HistoryTurns caps how many of the latest turns are sent; 0 sends all.
	HistoryTurns int
	Temperature  float64
	Timeout      time.Duration
}

func DefaultConfig() Config {
	return Config{
		TopK:              5,
		MinScore:          0.2,
		ContextCharBudget: 8000,
		HistoryTurns:      10,
		Temperature:       0.2,
		Timeout:           60 * time.Second,
	}
}

type Orchestrator struct {
	searcher  Searcher
	llm       llm.LLMProvider
	cfg       Config
	log       logger.ILogger
	promptLog logger.ILogger
	tracer    trace.Tracer
}

// NewOrchestrator builds an Orchestrator. promptLog receives the full prompts
// and may be nil.
func NewOrchestrator(searcher Searcher, provider llm.LLMProvider, cfg Config, log logger.ILogger, promptLog logger.ILogger) *Orchestrator {
	return &Orchestrator{
		searcher:  searcher,
		llm:       provider,
		cfg:       cfg,
		log:       log,
		promptLog: promptLog,
		tracer:    otel.Tracer("ai-notes-assistant/rag/qa"),
	}
}

// Ask retrieves the notes closest to question and asks the completion engine
// to answer from them. With no qualifying notes the engine is still asked and
// the answer is flagged ungrounded. On a completion failure the partially
// filled answer is returned with the error so callers can show the sources.
func (o *Orchestrator) Ask(ctx context.Context, question string, history []Turn) (*Answer, error) {
	ctx, span := o.tracer.Start(ctx, "qa.Ask")
	defer span.End()

	if strings.TrimSpace(question) == "" {
		return nil, apperror.Validation(op, "question must not be empty")
	}

	result, err := o.searcher.Search(ctx, question, o.cfg.TopK, o.cfg.MinScore)
	if err != nil {
		span.SetStatus(codes.Error, "retrieval failed")
		switch apperror.KindOf(err) {
		case apperror.KindValidation, apperror.KindRetrieval:
			return nil, err
		}
		return nil, apperror.Retrieval(op, err)
	}

	candidates := make([]prompt.ContextNote, 0, len(result.Hits))
	for _, h := range result.Hits {
		candidates = append(candidates, prompt.ContextNote{
			Id:        h.Note.Id,
			Text:      h.Note.Text,
			Score:     h.Score,
			UpdatedAt: h.Note.UpdatedAt,
		})
	}
	assembled := prompt.AssembleContext(candidates, o.cfg.ContextCharBudget)

	answer := &Answer{
		Sources:          make([]Source, 0, len(assembled.Notes)),
		Grounded:         !assembled.Empty(),
		NeedsReindex:     result.NeedsReindex,
		ContextTruncated: assembled.Truncated || len(assembled.Dropped) > 0,
	}
	for i, n := range assembled.Notes {
		answer.Sources = append(answer.Sources, Source{
			NoteId:    n.Id,
			Text:      candidates[i].Text,
			Score:     n.Score,
			UpdatedAt: n.UpdatedAt,
		})
	}
	span.SetAttributes(
		attribute.Int("qa.sources", len(answer.Sources)),
		attribute.Bool("qa.grounded", answer.Grounded),
		attribute.Bool("qa.context_truncated", answer.ContextTruncated),
	)

	messages := prompt.NewBuilder(assembled, o.recentHistory(history), question).Build()
	o.tracePrompt(messages, answer)

	callCtx := ctx
	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}
	text, err := o.llm.Chat(callCtx, messages, llm.WithTemperature(o.cfg.Temperature))
	if err != nil {
		span.SetStatus(codes.Error, "completion failed")
		o.log.Error("QA", "Completion engine failed", map[string]interface{}{
			"error":   err.Error(),
			"sources": len(answer.Sources),
		})
		return answer, apperror.Upstream(op, err)
	}
	answer.Text = strings.TrimSpace(text)

	o.log.Info("QA", "Question answered", map[string]interface{}{
		"sources":       len(answer.Sources),
		"grounded":      answer.Grounded,
		"needs_reindex": len(answer.NeedsReindex),
		"truncated":     answer.ContextTruncated,
	})
	return answer, nil
}

func (o *Orchestrator) recentHistory(history []Turn) []Turn {
	if o.cfg.HistoryTurns > 0 && len(history) > o.cfg.HistoryTurns {
		return history[len(history)-o.cfg.HistoryTurns:]
	}
	return history
}

func (o *Orchestrator) tracePrompt(messages []llm.Message, answer *Answer) {
	if o.promptLog == nil {
		return
	}
	rendered := make([]map[string]string, 0, len(messages))
	for _, m := range messages {
		rendered = append(rendered, map[string]string{"role": m.Role, "content": m.Content})
	}
	o.promptLog.Info("PROMPT", "Prompt sent to completion engine", map[string]interface{}{
		"messages": rendered,
		"grounded": answer.Grounded,
	})
}
