package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"ai-notes-assistant/internal/dto"

	"github.com/spf13/cobra"
)

func NewAskCmd(resolve resolver) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := resolve(cmd.Context())
			if err != nil {
				return err
			}

			answer, err := d.asker.Ask(cmd.Context(), strings.Join(args, " "), nil)
			if answer == nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				if encErr := json.NewEncoder(out).Encode(dto.NewAskResponse(nil, answer)); encErr != nil {
					return encErr
				}
				return err
			}

			if answer.Text != "" {
				fmt.Fprintln(out, answer.Text)
			}
			if !answer.Grounded {
				warnColor.Fprintln(out, "(no matching notes; answer is not grounded)")
			}
			if sources, _ := cmd.Flags().GetBool("sources"); sources {
				for _, src := range answer.Sources {
					subtleColor.Fprintf(out, "  [%.2f] %s  %s\n", src.Score, src.NoteId, preview(src.Text, 60))
				}
			}
			if answer.ContextTruncated {
				subtleColor.Fprintln(out, "(context truncated)")
			}
			return err
		},
	}

	cmd.Flags().BoolP("sources", "s", true, "Print the notes the answer is based on")
	return cmd
}
