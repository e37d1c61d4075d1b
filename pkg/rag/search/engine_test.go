package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-notes-assistant/internal/entity"
	"ai-notes-assistant/internal/pkg/apperror"
	"ai-notes-assistant/internal/pkg/logger"
	"ai-notes-assistant/internal/repository/memory"
	"ai-notes-assistant/pkg/embedding/embeddingtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	embedder *embeddingtest.ConceptEmbedder
	notes    *memory.NoteRepository
	vectors  *memory.NoteVectorRepository
	engine   *Engine
}

func newFixture() *fixture {
	f := &fixture{
		embedder: embeddingtest.NewConceptEmbedder(),
		notes:    memory.NewNoteRepository(),
		vectors:  memory.NewNoteVectorRepository(),
	}
	f.engine = NewEngine(f.embedder, f.vectors, f.notes, logger.NewNopLogger(), 100)
	return f
}

// index stores an indexed note and its vector the way the indexing pipeline would.
func (f *fixture) index(t *testing.T, text string, updatedAt time.Time) *entity.Note {
	t.Helper()
	n := &entity.Note{
		Id:               uuid.New(),
		Text:             text,
		SourceKind:       entity.SourceKindTyped,
		Status:           entity.NoteStatusIndexed,
		EmbeddingVersion: f.embedder.Version(),
		CreatedAt:        updatedAt,
		UpdatedAt:        updatedAt,
	}
	require.NoError(t, f.notes.Create(context.Background(), n))
	require.NoError(t, f.vectors.Upsert(context.Background(), &entity.NoteVector{
		NoteId: n.Id,
		Vector: embeddingtest.Vector(text),
		Payload: entity.VectorPayload{
			Text:             text,
			UpdatedAt:        updatedAt,
			EmbeddingVersion: f.embedder.Version(),
		},
	}))
	return n
}

func TestSearch_FindsSemanticallyRelatedNote(t *testing.T) {
	f := newFixture()
	milk := f.index(t, "Buy milk and eggs tomorrow", time.Now())
	f.index(t, "Quarterly project report for the client", time.Now())

	res, err := f.engine.Search(context.Background(), "grocery reminder", 5, 0.2)
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, milk.Id, res.Hits[0].Note.Id)
	assert.GreaterOrEqual(t, res.Hits[0].Score, 0.2)
	assert.Empty(t, res.NeedsReindex)
}

func TestSearch_MinScoreFiltersWeakHits(t *testing.T) {
	f := newFixture()
	f.index(t, "Quarterly project report for the client", time.Now())

	res, err := f.engine.Search(context.Background(), "grocery", 5, 0.2)
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestSearch_TiesBrokenByMostRecentUpdate(t *testing.T) {
	f := newFixture()
	older := f.index(t, "buy milk", time.Now().Add(-time.Hour))
	newer := f.index(t, "buy milk", time.Now())

	res, err := f.engine.Search(context.Background(), "milk", 5, 0)
	require.NoError(t, err)
	require.Len(t, res.Hits, 2)
	assert.Equal(t, newer.Id, res.Hits[0].Note.Id)
	assert.Equal(t, older.Id, res.Hits[1].Note.Id)
}

func TestSearch_StaleAndDeletedNotes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	stale := f.index(t, "buy bread", time.Now())
	stale.Status = entity.NoteStatusStale
	require.NoError(t, f.notes.Update(ctx, stale))

	edited := f.index(t, "buy eggs", time.Now().Add(-time.Minute))
	edited.UpdatedAt = time.Now()
	require.NoError(t, f.notes.Update(ctx, edited))

	deleted := f.index(t, "buy milk", time.Now())
	deleted.Status = entity.NoteStatusDeleted
	require.NoError(t, f.notes.Update(ctx, deleted))

	orphan := f.index(t, "grocery shopping", time.Now())
	require.NoError(t, f.notes.Purge(ctx, orphan.Id))

	res, err := f.engine.Search(ctx, "buy groceries", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
	assert.ElementsMatch(t, []uuid.UUID{stale.Id, edited.Id}, res.NeedsReindex)
}

func TestSearch_OtherEmbeddingVersionNeedsReindex(t *testing.T) {
	f := newFixture()
	n := f.index(t, "buy milk", time.Now())
	f.embedder.SetVersion("concept:v2")

	res, err := f.engine.Search(context.Background(), "milk", 5, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
	assert.Equal(t, []uuid.UUID{n.Id}, res.NeedsReindex)
}

func TestSearch_Validation(t *testing.T) {
	f := newFixture()
	tests := []struct {
		name     string
		query    string
		topK     int
		minScore float64
	}{
		{name: "empty query", query: "  ", topK: 5},
		{name: "top_k zero", query: "q", topK: 0},
		{name: "top_k above cap", query: "q", topK: 101},
		{name: "negative min_score", query: "q", topK: 5, minScore: -0.1},
		{name: "min_score above one", query: "q", topK: 5, minScore: 1.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.Search(context.Background(), tt.query, tt.topK, tt.minScore)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
	assert.Equal(t, 0, f.embedder.Calls(), "invalid input must not reach the embedder")
}

type failingVectors struct {
	*memory.NoteVectorRepository
}

func (failingVectors) Query(ctx context.Context, vector []float32, topK int) ([]*entity.ScoredNoteVector, error) {
	return nil, errors.New("connection refused")
}

func TestSearch_Failures(t *testing.T) {
	t.Run("embedding failure", func(t *testing.T) {
		f := newFixture()
		f.embedder.Fail(errors.New("quota exceeded"))

		_, err := f.engine.Search(context.Background(), "milk", 5, 0)
		assert.ErrorIs(t, err, apperror.ErrRetrieval)
		assert.ErrorIs(t, err, apperror.ErrEmbedding)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture()
		engine := NewEngine(f.embedder, failingVectors{memory.NewNoteVectorRepository()}, f.notes, logger.NewNopLogger(), 100)

		_, err := engine.Search(context.Background(), "milk", 5, 0)
		assert.ErrorIs(t, err, apperror.ErrRetrieval)
		assert.ErrorIs(t, err, apperror.ErrStore)
	})
}
