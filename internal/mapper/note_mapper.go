package mapper

import (
	"ai-notes-assistant/internal/entity"
	"ai-notes-assistant/internal/model"

	"gorm.io/datatypes"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	var metadata map[string]interface{}
	if n.Metadata != nil {
		metadata = map[string]interface{}(n.Metadata)
	}

	return &entity.Note{
		Id:               n.Id,
		Text:             n.Text,
		SourceKind:       entity.SourceKind(n.SourceKind),
		Status:           entity.NoteStatus(n.Status),
		EmbeddingVersion: n.EmbeddingVersion,
		Metadata:         metadata,
		CreatedAt:        n.CreatedAt,
		UpdatedAt:        n.UpdatedAt,
		IndexedAt:        n.IndexedAt,
	}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}

	var metadata datatypes.JSONMap
	if n.Metadata != nil {
		metadata = datatypes.JSONMap(n.Metadata)
	}

	return &model.Note{
		Id:               n.Id,
		Text:             n.Text,
		SourceKind:       string(n.SourceKind),
		Status:           string(n.Status),
		EmbeddingVersion: n.EmbeddingVersion,
		Metadata:         metadata,
		CreatedAt:        n.CreatedAt,
		UpdatedAt:        n.UpdatedAt,
		IndexedAt:        n.IndexedAt,
	}
}

func (m *NoteMapper) ToEntities(notes []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}
