package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"ai-notes-assistant/internal/bootstrap"
	"ai-notes-assistant/internal/config"

	"github.com/charmbracelet/fang"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{cfg: config.Load()}
	err := fang.Execute(ctx, NewRootCmd(a.resolve))
	a.close()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// app builds the container on first use so that --help works without a
// database or provider keys.
type app struct {
	cfg       *config.Config
	container *bootstrap.Container
}

func (a *app) resolve(ctx context.Context) (*deps, error) {
	if a.container == nil {
		if err := a.cfg.Validate(); err != nil {
			return nil, err
		}
		// One-shot commands must not feed the in-process queue.
		a.cfg.Indexing.Mode = "none"
		a.cfg.App.InboxDir = ""

		db, err := bootstrap.OpenDatabase(a.cfg)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		c, err := bootstrap.NewContainer(ctx, db, a.cfg)
		if err != nil {
			return nil, err
		}
		a.container = c
	}
	c := a.container
	return &deps{
		notes:     c.NoteService,
		indexing:  c.IndexingService,
		reindexer: c.ReindexWorker,
		searcher:  c.SearchEngine,
		asker:     c.Orchestrator,
		topK:      a.cfg.Rag.SearchTopK,
		minScore:  a.cfg.Rag.SearchMinScore,
	}, nil
}

func (a *app) close() {
	if a.container != nil {
		a.container.Close()
	}
}
