package main

import (
	"context"

	"ai-notes-assistant/internal/service"
	"ai-notes-assistant/pkg/rag/search"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	okColor     = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	subtleColor = color.New(color.Faint)
)

type reindexer interface {
	RunOnce(ctx context.Context) (*service.ReindexSummary, error)
}

type searcher interface {
	Search(ctx context.Context, query string, topK int, minScore float64) (*search.Result, error)
}

// deps are the services the commands run against.
type deps struct {
	notes     service.INoteService
	indexing  service.IIndexingService
	reindexer reindexer
	searcher  searcher
	asker     service.Asker
	topK      int
	minScore  float64
}

type resolver func(ctx context.Context) (*deps, error)

func NewRootCmd(resolve resolver) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "notectl",
		Short:         "Manage and query the note index",
		Long:          `Inspect stale notes, rebuild the vector index, search notes and ask questions about them.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")

	rootCmd.AddCommand(
		NewStaleCmd(resolve),
		NewReindexCmd(resolve),
		NewSearchCmd(resolve),
		NewAskCmd(resolve),
	)
	return rootCmd
}
