package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Note struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Text             string    `gorm:"type:text;not null"`
	SourceKind       string    `gorm:"type:varchar(20);not null;default:typed"`
	Status           string    `gorm:"type:varchar(20);not null;default:draft;index"`
	EmbeddingVersion string    `gorm:"type:varchar(255)"`
	Metadata         datatypes.JSONMap
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime:false;index"`
	IndexedAt        *time.Time
}

func (Note) TableName() string {
	return "notes"
}
