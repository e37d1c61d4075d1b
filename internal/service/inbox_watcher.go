package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ai-notes-assistant/internal/entity"
	"ai-notes-assistant/internal/pkg/logger"

	"github.com/fsnotify/fsnotify"
)

const (
	processedDir = "processed"
	settleDelay  = 500 * time.Millisecond
)

var textExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// InboxWatcher turns files dropped into a directory into notes. Text files
// become typed notes, audio files are transcribed. Ingested files are moved
// to the processed subdirectory.
type InboxWatcher struct {
	dir    string
	notes  INoteService
	speech ISpeechService
	log    logger.ILogger

	mu       sync.Mutex
	pending  map[string]*time.Timer
	queue    chan string
	done     chan struct{}
	stopOnce sync.Once
}

// NewInboxWatcher builds a watcher on dir. speech may be nil, in which case
// audio files are ignored.
func NewInboxWatcher(dir string, notes INoteService, speech ISpeechService, log logger.ILogger) *InboxWatcher {
	return &InboxWatcher{
		dir:     dir,
		notes:   notes,
		speech:  speech,
		log:     log,
		pending: make(map[string]*time.Timer),
		queue:   make(chan string, 100),
		done:    make(chan struct{}),
	}
}

func (w *InboxWatcher) accepts(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if textExtensions[ext] {
		return true
	}
	return w.speech != nil && IsAudioFile(path)
}

// Run ingests the files already in the directory and then watches it until
// ctx is done.
func (w *InboxWatcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Join(w.dir, processedDir), 0o755); err != nil {
		return fmt.Errorf("failed to prepare inbox: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	defer w.stop()
	if err := watcher.Add(w.dir); err != nil {
		return err
	}

	existing, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if !e.IsDir() {
			w.schedule(filepath.Join(w.dir, e.Name()))
		}
	}

	w.log.Info("INBOX", "Watching inbox", map[string]interface{}{"dir": w.dir})
	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-w.queue:
			if err := w.ProcessFile(ctx, path); err != nil {
				w.log.Error("INBOX", "Failed to ingest file", map[string]interface{}{
					"file":  path,
					"error": err.Error(),
				})
			}
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.schedule(event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("INBOX", "Watcher error", map[string]interface{}{"error": err.Error()})
		}
	}
}

// schedule queues path once it has stopped changing for settleDelay.
func (w *InboxWatcher) schedule(path string) {
	if !w.accepts(path) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Reset(settleDelay)
		return
	}
	w.pending[path] = time.AfterFunc(settleDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.enqueue(path)
	})
}

// enqueue hands path to Run. It gives up once the watcher has stopped, so a
// timer that fired during shutdown does not block forever.
func (w *InboxWatcher) enqueue(path string) bool {
	select {
	case w.queue <- path:
		return true
	case <-w.done:
		return false
	}
}

func (w *InboxWatcher) stop() {
	w.stopOnce.Do(func() { close(w.done) })
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

// ProcessFile creates a note from path and moves the file out of the inbox.
func (w *InboxWatcher) ProcessFile(ctx context.Context, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // already moved by an earlier event
	}

	var note *entity.Note
	if IsAudioFile(path) {
		if w.speech == nil {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		note, err = w.speech.CreateNoteFromAudio(ctx, f, path)
		f.Close()
		if err != nil {
			return err
		}
	} else {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		note, err = w.notes.Create(ctx, string(content), entity.SourceKindTyped, map[string]interface{}{
			"source_file": filepath.Base(path),
		})
		if err != nil {
			return err
		}
	}

	target := filepath.Join(w.dir, processedDir, filepath.Base(path))
	if err := os.Rename(path, target); err != nil {
		return fmt.Errorf("note %s created but file not moved: %w", note.Id, err)
	}

	w.log.Info("INBOX", "File ingested", map[string]interface{}{
		"file":    filepath.Base(path),
		"note_id": note.Id.String(),
	})
	return nil
}
