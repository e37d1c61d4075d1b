package unitofwork

import (
	"context"

	"ai-notes-assistant/internal/repository/contract"

	"gorm.io/gorm"
)

type RepositoryFactoryImpl struct {
	db *gorm.DB
}

func NewRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return &RepositoryFactoryImpl{
		db: db,
	}
}

// NewUnitOfWork is short lived, one per request or job.
func (f *RepositoryFactoryImpl) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return NewUnitOfWork(f.db)
}

type MemoryRepositoryFactory struct {
	notes contract.NoteRepository
}

func NewMemoryRepositoryFactory(notes contract.NoteRepository) RepositoryFactory {
	return &MemoryRepositoryFactory{notes: notes}
}

func (f *MemoryRepositoryFactory) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return &memoryUnitOfWork{notes: f.notes}
}
