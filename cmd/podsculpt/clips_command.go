package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newClipsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clips <id>",
		Short: "Print signed download links for a submission's rendered clips",
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
			if len(item.ClipKeys) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No clips rendered for this submission")
				return nil
			}

			out := cmd.OutOrStdout()
			for i, key := range item.ClipKeys {
				clipNumber := i + 1
				if key == nil {
					fmt.Fprintf(out, "Clip %d: render failed\n", clipNumber)
					continue
				}
				link, err := client.clipLink(cmd.Context(), id, clipNumber)
				if err != nil {
					fmt.Fprintf(out, "Clip %d: %v\n", clipNumber, err)
					continue
				}
				fmt.Fprintf(out, "Clip %d (%ds): %s\n", clipNumber, link.ExpiresIn, link.URL)
			}
			return nil
		},
	}
}
