package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-notes-assistant/internal/entity"
	"ai-notes-assistant/internal/pkg/logger"
	"ai-notes-assistant/internal/repository/memory"
	"ai-notes-assistant/internal/repository/unitofwork"
	"ai-notes-assistant/pkg/embedding/embeddingtest"
	"ai-notes-assistant/pkg/events"
	"ai-notes-assistant/pkg/lock"
	"ai-notes-assistant/pkg/rag/search"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type recordingEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEvents) Publish(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}

type recordingQueue struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (r *recordingQueue) Publish(ctx context.Context, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.payloads = append(r.payloads, payload)
	return nil
}

func (r *recordingQueue) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

// flakyVectors fails writes and deletes while failing is set.
type flakyVectors struct {
	*memory.NoteVectorRepository
	mu      sync.Mutex
	failing bool
}

func (f *flakyVectors) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = v
}

func (f *flakyVectors) fail() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("vector store unavailable")
	}
	return nil
}

func (f *flakyVectors) Upsert(ctx context.Context, record *entity.NoteVector) error {
	if err := f.fail(); err != nil {
		return err
	}
	return f.NoteVectorRepository.Upsert(ctx, record)
}

func (f *flakyVectors) Delete(ctx context.Context, noteId uuid.UUID) error {
	if err := f.fail(); err != nil {
		return err
	}
	return f.NoteVectorRepository.Delete(ctx, noteId)
}

type fixture struct {
	notesRepo *memory.NoteRepository
	vectors   *flakyVectors
	embedder  *embeddingtest.ConceptEmbedder
	events    *recordingEvents
	queue     *recordingQueue
	locker    *lock.KeyedMutex

	notes    INoteService
	indexing IIndexingService
	search   *search.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		notesRepo: memory.NewNoteRepository(),
		vectors:   &flakyVectors{NoteVectorRepository: memory.NewNoteVectorRepository()},
		embedder:  embeddingtest.NewConceptEmbedder(),
		events:    &recordingEvents{},
		queue:     &recordingQueue{},
		locker:    lock.NewKeyedMutex(),
	}
	log := logger.NewNopLogger()
	uow := unitofwork.NewMemoryRepositoryFactory(f.notesRepo)
	f.notes = NewNoteService(uow, f.vectors, f.locker, f.queue, f.events, log)
	f.indexing = NewIndexingService(uow, f.vectors, f.embedder, f.locker, f.events, log, time.Second)
	f.search = search.NewEngine(f.embedder, f.vectors, f.notesRepo, log, 100)
	return f
}

func (f *fixture) createIndexed(t *testing.T, text string) *entity.Note {
	t.Helper()
	ctx := context.Background()
	note, err := f.notes.Create(ctx, text, entity.SourceKindTyped, nil)
	require.NoError(t, err)
	res, err := f.indexing.IndexNote(ctx, note.Id)
	require.NoError(t, err)
	require.Equal(t, IndexStatusIndexed, res.Status)
	return note
}

func (f *fixture) stored(t *testing.T, id uuid.UUID) *entity.Note {
	t.Helper()
	n, err := f.notesRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return n
}

func (f *fixture) noopLog() logger.ILogger {
	return logger.NewNopLogger()
}
