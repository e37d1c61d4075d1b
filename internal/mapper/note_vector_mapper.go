package mapper

import (
	"ai-notes-assistant/internal/entity"
	"ai-notes-assistant/internal/model"

	"github.com/pgvector/pgvector-go"
)

type NoteVectorMapper struct{}

func NewNoteVectorMapper() *NoteVectorMapper {
	return &NoteVectorMapper{}
}

func (m *NoteVectorMapper) ToModel(v *entity.NoteVector) *model.NoteVector {
	if v == nil {
		return nil
	}
	return &model.NoteVector{
		NoteId:           v.NoteId,
		Embedding:        pgvector.NewVector(v.Vector),
		Document:         v.Payload.Text,
		NoteUpdatedAt:    v.Payload.UpdatedAt,
		EmbeddingVersion: v.Payload.EmbeddingVersion,
	}
}

func (m *NoteVectorMapper) ToPayload(v *model.NoteVector) entity.VectorPayload {
	return entity.VectorPayload{
		Text:             v.Document,
		UpdatedAt:        v.NoteUpdatedAt,
		EmbeddingVersion: v.EmbeddingVersion,
	}
}

func (m *NoteVectorMapper) ToScored(v *model.NoteVector, similarity float64) *entity.ScoredNoteVector {
	return &entity.ScoredNoteVector{
		NoteId:  v.NoteId,
		Score:   similarity,
		Payload: m.ToPayload(v),
	}
}
