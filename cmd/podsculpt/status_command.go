package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and pipeline stage status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			status, err := client.status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			runningKind := statusError
			runningMessage := "stopped"
			if status.Running {
				runningKind = statusOK
				runningMessage = fmt.Sprintf("pid %d", status.PID)
			}
			fmt.Fprintln(out, renderStatusLine("Daemon", runningKind, runningMessage, colorize))
			fmt.Fprintln(out, renderStatusLine("Queue DB", statusInfo, status.QueueDBPath, colorize))
			if status.Workflow.LastError != "" {
				fmt.Fprintln(out, renderStatusLine("Last error", statusWarn, status.Workflow.LastError, colorize))
			}

			for _, health := range status.Workflow.StageHealth {
				kind := statusOK
				message := "ready"
				if !health.Ready {
					kind = statusError
					message = health.Detail
				}
				fmt.Fprintln(out, renderStatusLine("Stage "+health.Name, kind, message, colorize))
			}

			if len(status.Workflow.QueueStats) > 0 {
				statuses := make([]string, 0, len(status.Workflow.QueueStats))
				for name := range status.Workflow.QueueStats {
					statuses = append(statuses, name)
				}
				sort.Strings(statuses)
				for _, name := range statuses {
					count := status.Workflow.QueueStats[name]
					fmt.Fprintln(out, renderStatusLine("Queue "+name, statusInfo, fmt.Sprintf("%d", count), colorize))
				}
			}
			return nil
		},
	}
}
