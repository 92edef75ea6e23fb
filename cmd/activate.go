package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tutorwatch/internal/domain"
)

func newActivateCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "activate",
		Short: "Activate yourself on every inactive list",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := app.auth.Token(cmd.Context(), domain.ServiceQueueMobile, true)
			if err != nil {
				return err
			}

			activated, err := app.queue.ActivateAll(cmd.Context(), token)
			if err != nil {
				return fmt.Errorf("activate lists: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "activated %d list(s)\n", activated)
			return nil
		},
	}
}
