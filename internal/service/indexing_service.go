package service

import (
	"context"
	"errors"
	"time"

	"ai-notes-assistant/internal/entity"
	"ai-notes-assistant/internal/pkg/apperror"
	"ai-notes-assistant/internal/pkg/logger"
	"ai-notes-assistant/internal/repository/contract"
	"ai-notes-assistant/internal/repository/unitofwork"
	"ai-notes-assistant/pkg/embedding"
	"ai-notes-assistant/pkg/events"
	"ai-notes-assistant/pkg/lock"

	"github.com/google/uuid"
)

type IndexStatus string

const (
	IndexStatusIndexed   IndexStatus = "indexed"
	IndexStatusUnchanged IndexStatus = "unchanged"
	// IndexStatusPending means the note stays draft or stale and will be retried.
	IndexStatusPending IndexStatus = "pending"
	// IndexStatusSkipped means the note was deleted before it could be indexed.
	IndexStatusSkipped IndexStatus = "skipped"
)

type IndexResult struct {
	NoteId           uuid.UUID
	Status           IndexStatus
	EmbeddingVersion string
	// Warning is a PendingIndex error explaining why the note is pending.
	Warning error
}

type IIndexingService interface {
	IndexNote(ctx context.Context, id uuid.UUID) (*IndexResult, error)
	EmbeddingVersion() string
}

type indexingService struct {
	uowFactory     unitofwork.RepositoryFactory
	vectors        contract.NoteVectorRepository
	embedder       embedding.EmbeddingProvider
	locker         lock.Locker
	eventPublisher events.Publisher
	log            logger.ILogger
	timeout        time.Duration
}

func NewIndexingService(
	uowFactory unitofwork.RepositoryFactory,
	vectors contract.NoteVectorRepository,
	embedder embedding.EmbeddingProvider,
	locker lock.Locker,
	eventPublisher events.Publisher,
	log logger.ILogger,
	timeout time.Duration,
) IIndexingService {
	return &indexingService{
		uowFactory:     uowFactory,
		vectors:        vectors,
		embedder:       embedder,
		locker:         locker,
		eventPublisher: eventPublisher,
		log:            log,
		timeout:        timeout,
	}
}

func (s *indexingService) EmbeddingVersion() string {
	return s.embedder.Version()
}

func (s *indexingService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// IndexNote embeds the note's current text and stores its vector. Embedding
// or vector store failures do not return an error: the note keeps its
// draft/stale status and the result is pending with a warning.
func (s *indexingService) IndexNote(ctx context.Context, id uuid.UUID) (*IndexResult, error) {
	const op = "IndexingService.IndexNote"

	unlock, err := s.locker.Lock(ctx, noteLockKey(id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	version := s.embedder.Version()
	result := &IndexResult{NoteId: id, EmbeddingVersion: version}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, apperror.NotFound(op, id)
	}
	if note.IsDeleted() {
		result.Status = IndexStatusSkipped
		return result, nil
	}
	if note.Status == entity.NoteStatusIndexed && note.EmbeddingVersion == version {
		result.Status = IndexStatusUnchanged
		return result, nil
	}

	embedCtx, cancel := s.withTimeout(ctx)
	res, err := s.embedder.Generate(embedCtx, note.Text, embedding.TaskRetrievalDocument)
	cancel()
	if err != nil {
		return s.pending(result, apperror.PendingIndex(op, apperror.Embedding(op, err))), nil
	}

	upsertCtx, cancel := s.withTimeout(ctx)
	err = s.vectors.Upsert(upsertCtx, &entity.NoteVector{
		NoteId: note.Id,
		Vector: res.Embedding.Values,
		Payload: entity.VectorPayload{
			Text:             note.Text,
			UpdatedAt:        note.UpdatedAt,
			EmbeddingVersion: version,
		},
	})
	cancel()
	if err != nil {
		return s.pending(result, apperror.PendingIndex(op, apperror.Store(op, err))), nil
	}

	embeddedAt := note.UpdatedAt
	if _, err := markIndexed(ctx, uow, id, version, &embeddedAt); err != nil {
		switch {
		case errors.Is(err, errNoteChanged):
			// The edit already asked for a new index; the note stays stale.
			return s.pending(result, apperror.PendingIndex(op, err)), nil
		case errors.Is(err, apperror.ErrNotFound):
			// Deleted mid-index: drop the vector written above.
			if derr := s.vectors.Delete(ctx, id); derr != nil {
				s.log.Warn("INDEX", "Failed to drop vector of deleted note", map[string]interface{}{
					"note_id": id.String(),
					"error":   derr.Error(),
				})
			}
			result.Status = IndexStatusSkipped
			return result, nil
		}
		return nil, err
	}
	result.Status = IndexStatusIndexed

	if s.eventPublisher != nil {
		evt := events.NewNoteEvent(events.NoteIndexed, id, map[string]interface{}{
			"embedding_version": version,
		})
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("INDEX", "Failed to publish NOTE_INDEXED event", map[string]interface{}{
				"note_id": id.String(),
				"error":   err.Error(),
			})
		}
	}

	s.log.Info("INDEX", "Note indexed", map[string]interface{}{
		"note_id":   id.String(),
		"version":   version,
		"dimension": len(res.Embedding.Values),
	})
	return result, nil
}

func (s *indexingService) pending(result *IndexResult, warning error) *IndexResult {
	result.Status = IndexStatusPending
	result.Warning = warning
	s.log.Warn("INDEX", "Note left pending", map[string]interface{}{
		"note_id": result.NoteId.String(),
		"error":   warning.Error(),
	})
	return result
}
