package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var withNotes bool
	var withTranscript bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one submission in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid submission id %q", args[0])
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			item, err := client.show(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Submission #%d\n", item.ID)
			fmt.Fprintf(out, "  Feed:     %s\n", item.RSSURL)
			if item.EpisodeTitle != "" {
				fmt.Fprintf(out, "  Episode:  %s\n", item.EpisodeTitle)
			}
			fmt.Fprintf(out, "  Status:   %s\n", item.Status)
			if item.Progress.Stage != "" {
				fmt.Fprintf(out, "  Progress: %s (%.0f%%)\n", item.Progress.Stage, item.Progress.Percent)
			}
			if item.ErrorMessage != "" {
				fmt.Fprintf(out, "  Error:    %s\n", item.ErrorMessage)
			}
			for i, clip := range item.Clips {
				fmt.Fprintf(out, "  Clip %d:   %s (%.0fs-%.0fs)\n", i+1, clip.Title, clip.StartSeconds, clip.EndSeconds)
				if clip.Hook != "" {
					fmt.Fprintf(out, "            %s\n", clip.Hook)
				}
			}
			for i, key := range item.ClipKeys {
				if key == nil {
					fmt.Fprintf(out, "  Video %d:  render failed\n", i+1)
					continue
				}
				fmt.Fprintf(out, "  Video %d:  %s\n", i+1, *key)
			}
			if withNotes && strings.TrimSpace(item.ShowNotes) != "" {
				fmt.Fprintf(out, "\n%s\n", item.ShowNotes)
			}
			if withTranscript && strings.TrimSpace(item.Transcript) != "" {
				fmt.Fprintf(out, "\n%s\n", item.Transcript)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withNotes, "notes", false, "Print the generated show notes")
	cmd.Flags().BoolVar(&withTranscript, "transcript", false, "Print the full transcript")
	return cmd
}
