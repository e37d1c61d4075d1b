package specification

import (
	"strings"

	"gorm.io/gorm"
)

type ByStatuses struct {
	Statuses []string
}

func (s ByStatuses) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", s.Statuses)
}

type ExcludeStatus struct {
	Status string
}

func (s ExcludeStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status <> ?", s.Status)
}

// EmbeddingVersionNot matches notes indexed by a different embedding model.
type EmbeddingVersionNot struct {
	Version string
}

func (s EmbeddingVersionNot) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("embedding_version <> ?", s.Version)
}

// TextContains is a case-insensitive substring match that works on postgres and sqlite.
type TextContains struct {
	Query string
}

func (s TextContains) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + strings.ToLower(s.Query) + "%"
	return db.Where("LOWER(text) LIKE ?", pattern)
}
