package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tutorwatch/internal/domain"
)

func newCacheCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear cached session tokens",
	}

	cmd.AddCommand(newCacheListCmd(app), newCacheClearCmd(app))

	return cmd
}

func newCacheListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached sessions and their age",
		RunE: func(cmd *cobra.Command, _ []string) error {
			credentials, err := app.cache.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list cached sessions: %w", err)
			}
			if len(credentials) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "cache is empty")
				return nil
			}

			now := app.clock.Now()
			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Service", "Acquired", "State"})
			for _, credential := range credentials {
				state := "valid"
				if credential.Expired(now) {
					state = "expired"
				}
				tw.AppendRow(table.Row{
					credential.Service,
					credential.AcquiredAt.Format("2006-01-02 15:04:05"),
					state,
				})
			}
			tw.Render()
			return nil
		},
	}
}

func newCacheClearCmd(app *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:       "clear [service]",
		Short:     "Clear cached sessions for one service, or all with --all",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: serviceNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				if err := app.cache.ClearAll(cmd.Context()); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
				return nil
			}

			if len(args) != 1 {
				return fmt.Errorf("specify a service or pass --all")
			}
			key := domain.ServiceKey(args[0])
			if !key.Valid() {
				return fmt.Errorf("%w: %s", domain.ErrUnknownService, args[0])
			}

			if err := app.cache.Clear(cmd.Context(), key); err != nil {
				return fmt.Errorf("clear %s: %w", key, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: cached session cleared\n", key)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Clear every cached session")

	return cmd
}
