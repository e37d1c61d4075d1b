package main

import (
	"encoding/json"
	"fmt"

	"ai-notes-assistant/internal/dto"

	"github.com/spf13/cobra"
)

func NewStaleCmd(resolve resolver) *cobra.Command {
	return &cobra.Command{
		Use:   "stale",
		Short: "List notes waiting to be indexed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := resolve(cmd.Context())
			if err != nil {
				return err
			}
			notes, err := d.notes.ListStale(cmd.Context())
			if err != nil {
				return fmt.Errorf("list stale: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return json.NewEncoder(out).Encode(dto.NewNoteResponses(notes))
			}

			if len(notes) == 0 {
				okColor.Fprintln(out, "index is up to date")
				return nil
			}
			headerColor.Fprintf(out, "%d notes need indexing\n", len(notes))
			for _, n := range notes {
				fmt.Fprintf(out, "%s  %-7s  %s\n", n.Id, n.Status, preview(n.Text, 60))
			}
			return nil
		},
	}
}

// preview shortens text to at most n runes on a single line.
func preview(text string, n int) string {
	runes := []rune(text)
	for i, r := range runes {
		if r == '\n' || r == '\r' {
			runes[i] = ' '
		}
	}
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n-1]) + "…"
}
