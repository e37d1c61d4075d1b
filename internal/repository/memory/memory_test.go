package memory

import (
	"context"
	"testing"
	"time"

	"ai-notes-assistant/internal/entity"
	"ai-notes-assistant/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteRepository_ReturnsCopies(t *testing.T) {
	repo := NewNoteRepository()
	ctx := context.Background()

	n := &entity.Note{Id: uuid.New(), Text: "original", Status: entity.NoteStatusDraft, Metadata: map[string]interface{}{"k": "v"}}
	require.NoError(t, repo.Create(ctx, n))
	n.Text = "mutated after create"

	found, err := repo.FindByID(ctx, n.Id)
	require.NoError(t, err)
	assert.Equal(t, "original", found.Text)

	found.Metadata["k"] = "changed"
	again, _ := repo.FindByID(ctx, n.Id)
	assert.Equal(t, "v", again.Metadata["k"])
}

func TestNoteRepository_FindAllOrderingAndPaging(t *testing.T) {
	repo := NewNoteRepository()
	ctx := context.Background()
	base := time.Now()

	ids := make([]uuid.UUID, 4)
	for i := range ids {
		ids[i] = uuid.New()
		status := entity.NoteStatusDraft
		if i == 3 {
			status = entity.NoteStatusDeleted
		}
		require.NoError(t, repo.Create(ctx, &entity.Note{Id: ids[i], Text: "n", Status: status, UpdatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	notes, err := repo.FindAll(ctx, contract.NoteFilter{ExcludeDeleted: true, OrderBy: "updated_at", Desc: true, Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, ids[1], notes[0].Id)
	assert.Equal(t, ids[0], notes[1].Id)

	count, err := repo.Count(ctx, contract.NoteFilter{Statuses: []entity.NoteStatus{entity.NoteStatusDeleted}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	empty, err := repo.FindAll(ctx, contract.NoteFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestNoteVectorRepository_UpsertQueryDelete(t *testing.T) {
	store := NewNoteVectorRepository()
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	require.NoError(t, store.Upsert(ctx, &entity.NoteVector{NoteId: a, Vector: []float32{1, 0}, Payload: entity.VectorPayload{Text: "a"}}))
	require.NoError(t, store.Upsert(ctx, &entity.NoteVector{NoteId: b, Vector: []float32{0, 1}, Payload: entity.VectorPayload{Text: "b"}}))
	// same id overwrites
	require.NoError(t, store.Upsert(ctx, &entity.NoteVector{NoteId: a, Vector: []float32{1, 1}, Payload: entity.VectorPayload{Text: "a2"}}))

	count, _ := store.Count(ctx)
	assert.Equal(t, int64(2), count)

	hits, err := store.Query(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, a, hits[0].NoteId)
	assert.Equal(t, "a2", hits[0].Payload.Text)
	assert.InDelta(t, 0.7071, hits[0].Score, 1e-3)

	require.NoError(t, store.Delete(ctx, a))
	require.NoError(t, store.Delete(ctx, a))
	_, ok := store.Get(a)
	assert.False(t, ok)
}

func TestSessionRepository(t *testing.T) {
	repo := NewSessionRepository(time.Hour, time.Minute)
	s := &entity.ChatSession{Id: uuid.New()}
	for i := 0; i < 12; i++ {
		s.AppendTurn(entity.ChatTurn{Question: "q", CreatedAt: time.Now()}, 10)
	}
	repo.Save(s)

	got, ok := repo.Get(s.Id)
	require.True(t, ok)
	assert.Len(t, got.Turns, 10)
	assert.Equal(t, 1, repo.Count())

	repo.Delete(s.Id)
	_, ok = repo.Get(s.Id)
	assert.False(t, ok)
}
