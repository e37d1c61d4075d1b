package contract

import (
	"context"

	"ai-notes-assistant/internal/entity"

	"github.com/google/uuid"
)

// NoteVectorRepository is the vector store adapter. Records are keyed by note id.
type NoteVectorRepository interface {
	// Upsert writes the record; an existing record with the same note id is replaced.
	Upsert(ctx context.Context, record *entity.NoteVector) error
	// Delete removes the record for noteId. Deleting a missing record is not an error.
	Delete(ctx context.Context, noteId uuid.UUID) error
	// Query returns up to topK records ordered by similarity, most similar first.
	Query(ctx context.Context, vector []float32, topK int) ([]*entity.ScoredNoteVector, error)
	Count(ctx context.Context) (int64, error)
}
