package model

import (
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema. The note_vectors table needs the
// pgvector extension and is only migrated when withVectors is set.
func AutoMigrate(db *gorm.DB, withVectors bool) error {
	if withVectors {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return fmt.Errorf("failed to create vector extension: %w", err)
		}
	}

	if err := db.AutoMigrate(&Note{}); err != nil {
		return fmt.Errorf("failed to migrate notes: %w", err)
	}

	if withVectors {
		if err := db.AutoMigrate(&NoteVector{}); err != nil {
			return fmt.Errorf("failed to migrate note_vectors: %w", err)
		}
	}
	return nil
}
