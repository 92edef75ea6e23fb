package cmd

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tutorwatch/internal/domain"
)

func newStudentCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "student <name>",
		Short: "Look up students in the directory by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")

			token, err := app.auth.Token(cmd.Context(), domain.ServiceDaisy, true)
			if err != nil {
				return err
			}

			students, err := app.students.Search(cmd.Context(), token, name)
			if err != nil {
				return fmt.Errorf("search students: %w", err)
			}
			if len(students) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no students matching %q\n", name)
				return nil
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Name", "Email", "Profile"})
			for _, student := range students {
				tw.AppendRow(table.Row{student.Name(), student.Email, student.ProfileURL})
			}
			tw.Render()
			return nil
		},
	}
}
