package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"ai-notes-assistant/internal/dto"
	"ai-notes-assistant/internal/entity"
	"ai-notes-assistant/internal/pkg/apperror"
	"ai-notes-assistant/internal/pkg/logger"
	"ai-notes-assistant/internal/repository/contract"
	"ai-notes-assistant/internal/repository/unitofwork"
	"ai-notes-assistant/pkg/events"
	"ai-notes-assistant/pkg/lock"

	"github.com/google/uuid"
)

const (
	DefaultListLimit = 12
	MaxListLimit     = 100
)

type INoteService interface {
	Create(ctx context.Context, text string, sourceKind entity.SourceKind, metadata map[string]interface{}) (*entity.Note, error)
	Show(ctx context.Context, id uuid.UUID) (*entity.Note, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Note, int64, error)
	Update(ctx context.Context, id uuid.UUID, text string) (*entity.Note, error)
	MarkIndexed(ctx context.Context, id uuid.UUID, embeddingVersion string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListStale(ctx context.Context) ([]*entity.Note, error)
	InvalidateEmbeddingVersion(ctx context.Context, currentVersion string) (int, error)
	PurgeDeleted(ctx context.Context) (int, error)
}

type noteService struct {
	uowFactory       unitofwork.RepositoryFactory
	vectors          contract.NoteVectorRepository
	locker           lock.Locker
	publisherService IPublisherService
	eventPublisher   events.Publisher
	log              logger.ILogger
}

// NewNoteService wires the note store. publisherService and eventPublisher
// are optional; pass nil to disable the index queue or lifecycle events.
func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	vectors contract.NoteVectorRepository,
	locker lock.Locker,
	publisherService IPublisherService,
	eventPublisher events.Publisher,
	log logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory:       uowFactory,
		vectors:          vectors,
		locker:           locker,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		log:              log,
	}
}

func noteLockKey(id uuid.UUID) string {
	return "note:" + id.String()
}

func validateText(op, text string) error {
	if strings.TrimSpace(text) == "" {
		return apperror.Validation(op, "text must not be empty")
	}
	return nil
}

func (s *noteService) Create(ctx context.Context, text string, sourceKind entity.SourceKind, metadata map[string]interface{}) (*entity.Note, error) {
	const op = "NoteService.Create"
	if err := validateText(op, text); err != nil {
		return nil, err
	}
	if sourceKind == "" {
		sourceKind = entity.SourceKindTyped
	}
	if !sourceKind.Valid() {
		return nil, apperror.Validation(op, "unknown source kind %q", sourceKind)
	}

	now := time.Now()
	note := &entity.Note{
		Id:         uuid.New(),
		Text:       text,
		SourceKind: sourceKind,
		Status:     entity.NoteStatusDraft,
		Metadata:   metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NoteRepository().Create(ctx, note); err != nil {
		return nil, err
	}

	s.requestIndex(ctx, note.Id)
	s.publishEvent(ctx, events.NoteCreated, note.Id, map[string]interface{}{
		"source_kind": string(note.SourceKind),
	})

	s.log.Info("NOTE", "Note created", map[string]interface{}{
		"note_id":     note.Id.String(),
		"source_kind": string(note.SourceKind),
		"length":      len(note.Text),
	})
	return note, nil
}

func (s *noteService) Show(ctx context.Context, id uuid.UUID) (*entity.Note, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if note == nil || note.IsDeleted() {
		return nil, apperror.NotFound("NoteService.Show", id)
	}
	return note, nil
}

func (s *noteService) List(ctx context.Context, limit, offset int) ([]*entity.Note, int64, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	filter := contract.NoteFilter{
		ExcludeDeleted: true,
		OrderBy:        "created_at",
		Desc:           true,
		Limit:          limit,
		Offset:         offset,
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := uow.NoteRepository().Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

func (s *noteService) Update(ctx context.Context, id uuid.UUID, text string) (*entity.Note, error) {
	const op = "NoteService.Update"
	if err := validateText(op, text); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, noteLockKey(id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if note == nil || note.IsDeleted() {
		return nil, apperror.NotFound(op, id)
	}

	note.Text = text
	note.Status = entity.NoteStatusStale
	note.UpdatedAt = time.Now()
	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, err
	}

	s.requestIndex(ctx, note.Id)
	s.publishEvent(ctx, events.NoteUpdated, note.Id, nil)

	s.log.Info("NOTE", "Note updated", map[string]interface{}{
		"note_id": note.Id.String(),
		"length":  len(note.Text),
	})
	return note, nil
}

func (s *noteService) MarkIndexed(ctx context.Context, id uuid.UUID, embeddingVersion string) error {
	unlock, err := s.locker.Lock(ctx, noteLockKey(id))
	if err != nil {
		return err
	}
	defer unlock()

	_, err = markIndexed(ctx, s.uowFactory.NewUnitOfWork(ctx), id, embeddingVersion, nil)
	return err
}

// errNoteChanged means the note was edited after its text was embedded.
var errNoteChanged = errors.New("note changed while it was being embedded")

// markIndexed moves a draft or stale note to indexed. The caller holds the
// note lock. When embeddedAt is set, the stored note must still carry that
// UpdatedAt, otherwise the vector describes older text and errNoteChanged is
// returned with the note left as it is. It reports whether the row changed.
func markIndexed(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID, embeddingVersion string, embeddedAt *time.Time) (bool, error) {
	const op = "NoteService.MarkIndexed"
	note, err := uow.NoteRepository().FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if note == nil || note.IsDeleted() {
		return false, apperror.NotFound(op, id)
	}
	if embeddedAt != nil && !note.UpdatedAt.Equal(*embeddedAt) {
		return false, errNoteChanged
	}
	if note.Status == entity.NoteStatusIndexed && note.EmbeddingVersion == embeddingVersion {
		return false, nil
	}

	now := time.Now()
	note.Status = entity.NoteStatusIndexed
	note.EmbeddingVersion = embeddingVersion
	note.IndexedAt = &now
	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return false, err
	}
	return true, nil
}

func (s *noteService) Delete(ctx context.Context, id uuid.UUID) error {
	unlock, err := s.locker.Lock(ctx, noteLockKey(id))
	if err != nil {
		return err
	}
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindByID(ctx, id)
	if err != nil {
		return err
	}
	if note == nil {
		return nil
	}

	if !note.IsDeleted() {
		note.Status = entity.NoteStatusDeleted
		if err := uow.NoteRepository().Update(ctx, note); err != nil {
			return err
		}
	}

	if err := s.purge(ctx, uow, id); err != nil {
		s.log.Warn("NOTE", "Delete interrupted, left for sweeper", map[string]interface{}{
			"note_id": id.String(),
			"error":   err.Error(),
		})
		return err
	}

	s.publishEvent(ctx, events.NoteDeleted, id, nil)
	s.log.Info("NOTE", "Note deleted", map[string]interface{}{
		"note_id": id.String(),
	})
	return nil
}

// purge removes the vector before the row so a vector never outlives its
// note without the deleted marker.
func (s *noteService) purge(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) error {
	const op = "NoteService.Delete"
	if err := s.vectors.Delete(ctx, id); err != nil {
		return apperror.Store(op, err)
	}
	return uow.NoteRepository().Purge(ctx, id)
}

func (s *noteService) ListStale(ctx context.Context) ([]*entity.Note, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NoteRepository().FindAll(ctx, contract.NoteFilter{
		Statuses: []entity.NoteStatus{entity.NoteStatusDraft, entity.NoteStatusStale},
		OrderBy:  "updated_at",
	})
}

func (s *noteService) InvalidateEmbeddingVersion(ctx context.Context, currentVersion string) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	outdated, err := uow.NoteRepository().FindAll(ctx, contract.NoteFilter{
		Statuses:            []entity.NoteStatus{entity.NoteStatusIndexed},
		EmbeddingVersionNot: currentVersion,
		OrderBy:             "updated_at",
	})
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, candidate := range outdated {
		changed, err := s.markStale(ctx, candidate.Id, currentVersion)
		if err != nil {
			return marked, err
		}
		if changed {
			marked++
		}
	}

	if marked > 0 {
		s.log.Info("NOTE", "Notes embedded with another model marked stale", map[string]interface{}{
			"count":   marked,
			"version": currentVersion,
		})
	}
	return marked, nil
}

func (s *noteService) markStale(ctx context.Context, id uuid.UUID, currentVersion string) (bool, error) {
	unlock, err := s.locker.Lock(ctx, noteLockKey(id))
	if err != nil {
		return false, err
	}
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	// Re-checked under the lock; the note may have been re-indexed meanwhile.
	if note == nil || note.Status != entity.NoteStatusIndexed || note.EmbeddingVersion == currentVersion {
		return false, nil
	}
	note.Status = entity.NoteStatusStale
	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return false, err
	}
	return true, nil
}

func (s *noteService) PurgeDeleted(ctx context.Context) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	deleted, err := uow.NoteRepository().FindAll(ctx, contract.NoteFilter{
		Statuses: []entity.NoteStatus{entity.NoteStatusDeleted},
	})
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, n := range deleted {
		if err := s.Delete(ctx, n.Id); err != nil {
			return purged, err
		}
		purged++
	}
	return purged, nil
}

// requestIndex enqueues the note for embedding. A lost message is recovered
// by the reindex worker, so failures only log.
func (s *noteService) requestIndex(ctx context.Context, id uuid.UUID) {
	if s.publisherService == nil {
		return
	}
	payload, err := json.Marshal(dto.PublishEmbedNoteMessage{NoteId: id})
	if err == nil {
		err = s.publisherService.Publish(ctx, payload)
	}
	if err != nil {
		s.log.Warn("NOTE", "Failed to enqueue note for indexing", map[string]interface{}{
			"note_id": id.String(),
			"error":   err.Error(),
		})
	}
}

func (s *noteService) publishEvent(ctx context.Context, eventType string, id uuid.UUID, extra map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.NewNoteEvent(eventType, id, extra)); err != nil {
		s.log.Warn("NOTE", "Failed to publish "+eventType+" event", map[string]interface{}{
			"note_id": id.String(),
			"error":   err.Error(),
		})
	}
}
