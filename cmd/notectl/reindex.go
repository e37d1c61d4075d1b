package main

import (
	"encoding/json"
	"fmt"

	"ai-notes-assistant/internal/dto"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func NewReindexCmd(resolve resolver) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex [note-id]",
		Short: "Index one note, or sweep every draft and stale note",
		Long: `Without an argument, marks notes embedded by another model stale, finishes
interrupted deletes and indexes every draft or stale note. With a note id,
indexes only that note.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := resolve(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			asJSON, _ := cmd.Flags().GetBool("json")

			if len(args) == 1 {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid note id %q", args[0])
				}
				res, err := d.indexing.IndexNote(cmd.Context(), id)
				if err != nil {
					return err
				}
				if asJSON {
					body := dto.IndexNoteResponse{NoteId: res.NoteId, Status: string(res.Status), EmbeddingVersion: res.EmbeddingVersion}
					if res.Warning != nil {
						body.Warning = res.Warning.Error()
					}
					return json.NewEncoder(out).Encode(body)
				}
				if res.Warning != nil {
					warnColor.Fprintf(out, "%s %s: %v\n", res.NoteId, res.Status, res.Warning)
					return nil
				}
				okColor.Fprintf(out, "%s %s (%s)\n", res.NoteId, res.Status, res.EmbeddingVersion)
				return nil
			}

			summary, err := d.reindexer.RunOnce(cmd.Context())
			if summary != nil {
				if asJSON {
					if encErr := json.NewEncoder(out).Encode(summary); encErr != nil {
						return encErr
					}
				} else {
					headerColor.Fprintln(out, "reindex summary")
					fmt.Fprintf(out, "  invalidated %d\n  purged      %d\n  indexed     %d\n  unchanged   %d\n  skipped     %d\n",
						summary.Invalidated, summary.Purged, summary.Indexed, summary.Unchanged, summary.Skipped)
					if summary.Pending > 0 {
						warnColor.Fprintf(out, "  pending     %d\n", summary.Pending)
					}
				}
			}
			return err
		},
	}
}
