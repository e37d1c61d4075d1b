package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// NoteVector holds exactly one embedding per note; NoteId is the primary key.
type NoteVector struct {
	NoteId           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Embedding        pgvector.Vector `gorm:"type:vector"`
	Document         string          `gorm:"type:text"`
	NoteUpdatedAt    time.Time
	EmbeddingVersion string    `gorm:"type:varchar(255)"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (NoteVector) TableName() string {
	return "note_vectors"
}
