package implementation

import (
	"context"
	"errors"

	"ai-notes-assistant/internal/entity"
	"ai-notes-assistant/internal/mapper"
	"ai-notes-assistant/internal/model"
	"ai-notes-assistant/internal/repository/contract"
	"ai-notes-assistant/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteMapper
}

func NewNoteRepository(db *gorm.DB) contract.NoteRepository {
	return &NoteRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteMapper(),
	}
}

func (r *NoteRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// filterSpecs translates a NoteFilter into specifications. Ordering and paging are
// only applied when withPaging is set so Count can reuse the same filter.
func (r *NoteRepositoryImpl) filterSpecs(filter contract.NoteFilter, withPaging bool) []specification.Specification {
	specs := make([]specification.Specification, 0, 6)
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		specs = append(specs, specification.ByStatuses{Statuses: statuses})
	}
	if filter.ExcludeDeleted {
		specs = append(specs, specification.ExcludeStatus{Status: string(entity.NoteStatusDeleted)})
	}
	if filter.EmbeddingVersionNot != "" {
		specs = append(specs, specification.EmbeddingVersionNot{Version: filter.EmbeddingVersionNot})
	}
	if filter.TextContains != "" {
		specs = append(specs, specification.TextContains{Query: filter.TextContains})
	}
	if !withPaging {
		return specs
	}

	orderBy := filter.OrderBy
	if orderBy != "created_at" && orderBy != "updated_at" {
		orderBy = "updated_at"
	}
	specs = append(specs,
		specification.OrderBy{Field: orderBy, Desc: filter.Desc},
		specification.OrderBy{Field: "id", Desc: filter.Desc},
	)
	if filter.Limit > 0 || filter.Offset > 0 {
		specs = append(specs, specification.Pagination{Limit: filter.Limit, Offset: filter.Offset})
	}
	return specs
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*note = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteRepositoryImpl) Update(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*note = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.Note, error) {
	var m model.Note
	query := r.applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NoteRepositoryImpl) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Note, error) {
	if len(ids) == 0 {
		return []*entity.Note{}, nil
	}
	var models []*model.Note
	query := r.applySpecifications(r.db.WithContext(ctx), specification.ByIDs{IDs: ids})
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *NoteRepositoryImpl) FindAll(ctx context.Context, filter contract.NoteFilter) ([]*entity.Note, error) {
	var models []*model.Note
	query := r.applySpecifications(r.db.WithContext(ctx), r.filterSpecs(filter, true)...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *NoteRepositoryImpl) Count(ctx context.Context, filter contract.NoteFilter) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Note{}), r.filterSpecs(filter, false)...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *NoteRepositoryImpl) Purge(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Note{}, "id = ?", id).Error
}
