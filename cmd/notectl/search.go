package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"ai-notes-assistant/internal/dto"

	"github.com/spf13/cobra"
)

func NewSearchCmd(resolve resolver) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search notes by meaning",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := resolve(cmd.Context())
			if err != nil {
				return err
			}
			topK, _ := cmd.Flags().GetInt("number")
			if topK <= 0 {
				topK = d.topK
			}
			minScore := d.minScore
			if cmd.Flags().Changed("min-score") {
				minScore, _ = cmd.Flags().GetFloat64("min-score")
			}

			res, err := d.searcher.Search(cmd.Context(), strings.Join(args, " "), topK, minScore)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				hits := make([]*dto.SearchHitResponse, 0, len(res.Hits))
				for _, h := range res.Hits {
					hits = append(hits, &dto.SearchHitResponse{Note: dto.NewNoteResponse(h.Note), Score: h.Score})
				}
				return json.NewEncoder(out).Encode(dto.SearchResponse{Query: res.Query, Hits: hits, NeedsReindex: res.NeedsReindex})
			}

			if len(res.Hits) == 0 {
				warnColor.Fprintln(out, "no matching notes")
			}
			for _, h := range res.Hits {
				headerColor.Fprintf(out, "%.4f  ", h.Score)
				fmt.Fprintf(out, "%s  %s\n", h.Note.Id, preview(h.Note.Text, 70))
			}
			for _, id := range res.NeedsReindex {
				subtleColor.Fprintf(out, "needs reindex: %s\n", id)
			}
			return nil
		},
	}

	cmd.Flags().IntP("number", "n", 0, "Maximum results (defaults to RAG_SEARCH_TOP_K)")
	cmd.Flags().Float64("min-score", 0, "Minimum similarity in [0, 1]")
	return cmd
}
