package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tutorwatch/internal/domain"
)

func newLoginCmd(app *app) *cobra.Command {
	var fresh bool

	cmd := &cobra.Command{
		Use:       "login [service]",
		Short:     "Sign in to one service, or all of them",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: serviceNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			services := domain.ServiceKeys()
			if len(args) == 1 {
				key := domain.ServiceKey(args[0])
				if !key.Valid() {
					return fmt.Errorf("%w: %s", domain.ErrUnknownService, args[0])
				}
				services = []domain.ServiceKey{key}
			}

			for _, service := range services {
				if _, err := app.auth.Token(cmd.Context(), service, !fresh); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: session established\n", service)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fresh, "fresh", false, "Ignore cached sessions and run the full sign-on chain")

	return cmd
}

func serviceNames() []string {
	keys := domain.ServiceKeys()
	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = string(key)
	}
	return names
}
