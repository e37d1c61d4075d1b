package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"ai-notes-assistant/internal/dto"
	"ai-notes-assistant/internal/entity"
	"ai-notes-assistant/internal/pkg/logger"
	"ai-notes-assistant/internal/repository/memory"
	"ai-notes-assistant/internal/repository/unitofwork"
	"ai-notes-assistant/internal/service"
	"ai-notes-assistant/pkg/embedding/embeddingtest"
	"ai-notes-assistant/pkg/llm"
	"ai-notes-assistant/pkg/lock"
	"ai-notes-assistant/pkg/rag/qa"
	"ai-notes-assistant/pkg/rag/search"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedLLM struct{}

func (cannedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "You planned to buy milk.", nil
}

func (cannedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return "You planned to buy milk.", nil
}

func newTestDeps(t *testing.T) *deps {
	t.Helper()
	color.NoColor = true

	log := logger.NewNopLogger()
	notesRepo := memory.NewNoteRepository()
	vectors := memory.NewNoteVectorRepository()
	embedder := embeddingtest.NewConceptEmbedder()
	locker := lock.NewKeyedMutex()
	uow := unitofwork.NewMemoryRepositoryFactory(notesRepo)

	notes := service.NewNoteService(uow, vectors, locker, nil, nil, log)
	indexing := service.NewIndexingService(uow, vectors, embedder, locker, nil, log, time.Second)
	engine := search.NewEngine(embedder, vectors, notesRepo, log, 100)

	return &deps{
		notes:     notes,
		indexing:  indexing,
		reindexer: service.NewReindexWorker(notes, indexing, log, 0, 2),
		searcher:  engine,
		asker:     qa.NewOrchestrator(engine, cannedLLM{}, qa.DefaultConfig(), log, nil),
		topK:      10,
	}
}

func run(t *testing.T, d *deps, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd(func(context.Context) (*deps, error) { return d, nil })
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStaleThenReindex(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()
	note, err := d.notes.Create(ctx, "Buy milk and eggs tomorrow", entity.SourceKindTyped, nil)
	require.NoError(t, err)

	out, err := run(t, d, "stale")
	require.NoError(t, err)
	assert.Contains(t, out, "1 notes need indexing")
	assert.Contains(t, out, note.Id.String())

	out, err = run(t, d, "reindex", "--json")
	require.NoError(t, err)
	var summary service.ReindexSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 1, summary.Indexed)

	out, err = run(t, d, "stale")
	require.NoError(t, err)
	assert.Contains(t, out, "index is up to date")
}

func TestReindexSingleNote(t *testing.T) {
	d := newTestDeps(t)
	note, err := d.notes.Create(context.Background(), "Dinner with Anna on Friday", entity.SourceKindTyped, nil)
	require.NoError(t, err)

	out, err := run(t, d, "reindex", note.Id.String())
	require.NoError(t, err)
	assert.Contains(t, out, "indexed")

	_, err = run(t, d, "reindex", "not-a-uuid")
	assert.Error(t, err)
}

func TestSearchAndAsk(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()
	note, err := d.notes.Create(ctx, "Buy milk and eggs tomorrow", entity.SourceKindTyped, nil)
	require.NoError(t, err)
	_, err = d.indexing.IndexNote(ctx, note.Id)
	require.NoError(t, err)

	out, err := run(t, d, "search", "grocery", "reminder", "--json")
	require.NoError(t, err)
	var res dto.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Hits, 1)
	assert.Equal(t, note.Id, res.Hits[0].Note.Id)
	assert.Equal(t, "grocery reminder", res.Query)

	out, err = run(t, d, "ask", "what", "should", "I", "buy?")
	require.NoError(t, err)
	assert.Contains(t, out, "You planned to buy milk.")
	assert.Contains(t, out, note.Id.String())
	assert.NotContains(t, out, "not grounded")
}

func TestAskWithoutNotesIsUngrounded(t *testing.T) {
	d := newTestDeps(t)

	out, err := run(t, d, "ask", "--json", "anything?")
	require.NoError(t, err)
	var res dto.AskResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Grounded)
	assert.Empty(t, res.Sources)
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want string
	}{
		{"short", "milk", 10, "milk"},
		{"newlines flattened", "a\nb", 10, "a b"},
		{"cut", "abcdefgh", 5, "abcd…"},
		{"runes", "żółćżółć", 5, "żółć…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, preview(tt.text, tt.n))
		})
	}
}
