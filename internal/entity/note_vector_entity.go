package entity

import (
	"time"

	"github.com/google/uuid"
)

// VectorPayload is the copy of note state stored next to the vector.
type VectorPayload struct {
	Text             string
	UpdatedAt        time.Time
	EmbeddingVersion string
}

// NoteVector is the single vector record of an indexed note, keyed by the note id.
type NoteVector struct {
	NoteId  uuid.UUID
	Vector  []float32
	Payload VectorPayload
}

type ScoredNoteVector struct {
	NoteId  uuid.UUID
	Score   float64 // cosine similarity, 1.0 = identical direction
	Payload VectorPayload
}
