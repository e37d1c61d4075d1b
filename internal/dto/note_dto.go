package dto

import (
	"time"

	"ai-notes-assistant/internal/entity"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Text       string                 `json:"text" validate:"required"`
	SourceKind string                 `json:"source_kind" validate:"omitempty,oneof=typed transcribed"`
	Metadata   map[string]interface{} `json:"metadata"`
}

type UpdateNoteRequest struct {
	Id   uuid.UUID
	Text string `json:"text" validate:"required"`
}

type ListNotesRequest struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

type NoteResponse struct {
	Id               uuid.UUID              `json:"id"`
	Text             string                 `json:"text"`
	SourceKind       string                 `json:"source_kind"`
	Status           string                 `json:"status"`
	EmbeddingVersion string                 `json:"embedding_version,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
	IndexedAt        *time.Time             `json:"indexed_at"`
}

func NewNoteResponse(n *entity.Note) *NoteResponse {
	return &NoteResponse{
		Id:               n.Id,
		Text:             n.Text,
		SourceKind:       string(n.SourceKind),
		Status:           string(n.Status),
		EmbeddingVersion: n.EmbeddingVersion,
		Metadata:         n.Metadata,
		CreatedAt:        n.CreatedAt,
		UpdatedAt:        n.UpdatedAt,
		IndexedAt:        n.IndexedAt,
	}
}

func NewNoteResponses(notes []*entity.Note) []*NoteResponse {
	res := make([]*NoteResponse, 0, len(notes))
	for _, n := range notes {
		res = append(res, NewNoteResponse(n))
	}
	return res
}

type ListNotesResponse struct {
	Notes  []*NoteResponse `json:"notes"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type IndexNoteResponse struct {
	NoteId           uuid.UUID `json:"note_id"`
	Status           string    `json:"status"` // "indexed" | "unchanged" | "pending" | "skipped"
	EmbeddingVersion string    `json:"embedding_version,omitempty"`
	Warning          string    `json:"warning,omitempty"`
}

// PublishEmbedNoteMessage is the payload of the in-process index queue.
type PublishEmbedNoteMessage struct {
	NoteId uuid.UUID `json:"note_id"`
}
