package implementation

import (
	"context"

	"ai-notes-assistant/internal/entity"
	"ai-notes-assistant/internal/mapper"
	"ai-notes-assistant/internal/model"
	"ai-notes-assistant/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NoteVectorRepositoryImpl stores one pgvector row per note in note_vectors.
type NoteVectorRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteVectorMapper
}

func NewNoteVectorRepository(db *gorm.DB) contract.NoteVectorRepository {
	return &NoteVectorRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteVectorMapper(),
	}
}

func (r *NoteVectorRepositoryImpl) Upsert(ctx context.Context, record *entity.NoteVector) error {
	m := r.mapper.ToModel(record)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "note_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"embedding", "document", "note_updated_at", "embedding_version", "updated_at"}),
		}).
		Create(m).Error
}

func (r *NoteVectorRepositoryImpl) Delete(ctx context.Context, noteId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("note_id = ?", noteId).Delete(&model.NoteVector{}).Error
}

func (r *NoteVectorRepositoryImpl) Query(ctx context.Context, vector []float32, topK int) ([]*entity.ScoredNoteVector, error) {
	if topK <= 0 {
		return []*entity.ScoredNoteVector{}, nil
	}

	// pgvector's <=> is cosine distance, so 1 - distance is the cosine similarity.
	type result struct {
		model.NoteVector
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(vector)

	err := r.db.WithContext(ctx).
		Table("note_vectors").
		Select("note_vectors.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Order("similarity DESC").
		Limit(topK).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredNoteVector, len(results))
	for i := range results {
		scored[i] = r.mapper.ToScored(&results[i].NoteVector, results[i].Similarity)
	}
	return scored, nil
}

func (r *NoteVectorRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.NoteVector{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
