package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tutorwatch/internal/domain"
)

func newScheduleCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Show your planned tutoring sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := app.auth.Token(cmd.Context(), domain.ServiceQueueDesktop, true)
			if err != nil {
				return err
			}

			entries, err := app.lists.PlannedSchedules(cmd.Context(), token)
			if err != nil {
				return fmt.Errorf("fetch planned schedules: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no planned sessions")
				return nil
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Date", "Start", "End", "List", "Label"})
			for _, entry := range entries {
				tw.AppendRow(table.Row{
					entry.Start.Format("2006-01-02"),
					entry.Start.Format("15:04"),
					entry.End.Format("15:04"),
					entry.ListID,
					entry.Label,
				})
			}
			tw.Render()
			return nil
		},
	}
}
