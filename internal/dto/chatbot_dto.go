package dto

import (
	"time"

	"ai-notes-assistant/pkg/rag/qa"

	"github.com/google/uuid"
)

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type AskRequest struct {
	ChatSessionId *uuid.UUID `json:"chat_session_id"`
	Question      string     `json:"question" validate:"required"`
}

type SourceDTO struct {
	NoteId    uuid.UUID `json:"note_id"`
	Text      string    `json:"text"`
	Score     float64   `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AskResponse struct {
	ChatSessionId    *uuid.UUID  `json:"chat_session_id,omitempty"`
	Answer           string      `json:"answer"`
	Grounded         bool        `json:"grounded"`
	Sources          []SourceDTO `json:"sources"`
	NeedsReindex     []uuid.UUID `json:"needs_reindex"`
	ContextTruncated bool        `json:"context_truncated"`
}

// NewAskResponse maps an answer to its wire form. It returns nil for a nil answer.
func NewAskResponse(sessionId *uuid.UUID, answer *qa.Answer) *AskResponse {
	if answer == nil {
		return nil
	}
	res := &AskResponse{
		ChatSessionId:    sessionId,
		Answer:           answer.Text,
		Grounded:         answer.Grounded,
		Sources:          make([]SourceDTO, 0, len(answer.Sources)),
		NeedsReindex:     answer.NeedsReindex,
		ContextTruncated: answer.ContextTruncated,
	}
	for _, src := range answer.Sources {
		res.Sources = append(res.Sources, SourceDTO{
			NoteId:    src.NoteId,
			Text:      src.Text,
			Score:     src.Score,
			UpdatedAt: src.UpdatedAt,
		})
	}
	if res.NeedsReindex == nil {
		res.NeedsReindex = []uuid.UUID{}
	}
	return res
}

type ChatTurnDTO struct {
	Question  string      `json:"question"`
	Answer    string      `json:"answer"`
	SourceIds []uuid.UUID `json:"source_ids"`
	Grounded  bool        `json:"grounded"`
	CreatedAt time.Time   `json:"created_at"`
}

type ChatHistoryResponse struct {
	Id    uuid.UUID     `json:"id"`
	Turns []ChatTurnDTO `json:"turns"`
}
