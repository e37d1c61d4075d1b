package entity

import (
	"time"

	"github.com/google/uuid"
)

type SourceKind string

const (
	SourceKindTyped       SourceKind = "typed"
	SourceKindTranscribed SourceKind = "transcribed"
)

func (k SourceKind) Valid() bool {
	return k == SourceKindTyped || k == SourceKindTranscribed
}

type NoteStatus string

const (
	NoteStatusDraft   NoteStatus = "draft"
	NoteStatusIndexed NoteStatus = "indexed"
	NoteStatusStale   NoteStatus = "stale"
	NoteStatusDeleted NoteStatus = "deleted"
)

// NeedsIndexing reports whether the note's vector is missing or outdated.
func (s NoteStatus) NeedsIndexing() bool {
	return s == NoteStatusDraft || s == NoteStatusStale
}

type Note struct {
	Id               uuid.UUID
	Text             string
	SourceKind       SourceKind
	Status           NoteStatus
	EmbeddingVersion string
	Metadata         map[string]interface{}
	CreatedAt        time.Time
	UpdatedAt        time.Time
	IndexedAt        *time.Time
}

func (n *Note) IsDeleted() bool {
	return n.Status == NoteStatusDeleted
}
