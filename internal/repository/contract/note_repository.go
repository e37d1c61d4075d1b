package contract

import (
	"context"

	"ai-notes-assistant/internal/entity"

	"github.com/google/uuid"
)

// NoteFilter narrows FindAll/Count. Zero values mean "no restriction".
type NoteFilter struct {
	Statuses            []entity.NoteStatus
	ExcludeDeleted      bool
	EmbeddingVersionNot string
	TextContains        string
	OrderBy             string // "created_at" or "updated_at"
	Desc                bool
	Limit               int
	Offset              int
}

type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	Update(ctx context.Context, note *entity.Note) error
	// FindByID returns nil, nil when the note does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Note, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Note, error)
	FindAll(ctx context.Context, filter NoteFilter) ([]*entity.Note, error)
	Count(ctx context.Context, filter NoteFilter) (int64, error)
	// Purge physically removes the row. Missing rows are not an error.
	Purge(ctx context.Context, id uuid.UUID) error
}
