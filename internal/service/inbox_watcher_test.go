package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ai-notes-assistant/internal/entity"
	"ai-notes-assistant/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInboxWatcher_ProcessFile(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, processedDir), 0o755))
	engine := &fakeSpeech{transcript: "spoken note"}
	watcher := NewInboxWatcher(dir, f.notes, NewSpeechService(f.notes, engine, engine, "onyx", logger.NewNopLogger()), logger.NewNopLogger())

	textPath := filepath.Join(dir, "todo.md")
	require.NoError(t, os.WriteFile(textPath, []byte("Buy milk"), 0o644))
	audioPath := filepath.Join(dir, "memo.mp3")
	require.NoError(t, os.WriteFile(audioPath, []byte("ID3"), 0o644))

	require.NoError(t, watcher.ProcessFile(context.Background(), textPath))
	require.NoError(t, watcher.ProcessFile(context.Background(), audioPath))
	// second event for an already moved file
	require.NoError(t, watcher.ProcessFile(context.Background(), textPath))

	notes, total, err := f.notes.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	kinds := map[entity.SourceKind]string{}
	for _, n := range notes {
		kinds[n.SourceKind] = n.Text
	}
	assert.Equal(t, "Buy milk", kinds[entity.SourceKindTyped])
	assert.Equal(t, "spoken note", kinds[entity.SourceKindTranscribed])

	assert.FileExists(t, filepath.Join(dir, processedDir, "todo.md"))
	assert.FileExists(t, filepath.Join(dir, processedDir, "memo.mp3"))
	assert.NoFileExists(t, textPath)
}

func TestInboxWatcher_RunIngestsDroppedFiles(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.txt"), []byte("already here"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.pdf"), []byte("%PDF"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher := NewInboxWatcher(dir, f.notes, nil, logger.NewNopLogger())
	go func() { _ = watcher.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, processedDir))
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dropped.txt"), []byte("new note"), 0o644))

	require.Eventually(t, func() bool {
		_, total, err := f.notes.List(context.Background(), 10, 0)
		return err == nil && total == 2
	}, 5*time.Second, 50*time.Millisecond)
	assert.FileExists(t, filepath.Join(dir, "ignored.pdf"))
}

func TestInboxWatcher_EnqueueAfterStop(t *testing.T) {
	f := newFixture(t)
	watcher := NewInboxWatcher(t.TempDir(), f.notes, nil, logger.NewNopLogger())
	for i := 0; i < cap(watcher.queue); i++ {
		require.True(t, watcher.enqueue("queued.txt"))
	}

	returned := make(chan bool)
	go func() { returned <- watcher.enqueue("late.txt") }()

	watcher.stop()
	watcher.stop()
	select {
	case ok := <-returned:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked after the watcher stopped")
	}
}
