package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	var statusFilters []string

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "List queued submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			items, err := client.queue(cmd.Context(), statusFilters)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				title := item.EpisodeTitle
				if title == "" {
					title = item.RSSURL
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", item.ID),
					title,
					item.Status,
					fmt.Sprintf("%.0f%%", item.Progress.Percent),
					item.ErrorMessage,
				})
			}
			table := renderTable(
				[]string{"ID", "Episode", "Status", "Progress", "Error"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statusFilters, "status", nil, "Filter by status (repeatable)")
	return cmd
}
