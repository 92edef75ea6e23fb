package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tutorwatch/internal/application"
)

func newWatchCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the queue and push notifications until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sched := application.NewScheduler(app.lists, app.clock, app.log, application.SchedulerConfig{})
			poller := application.NewPoller(
				app.auth,
				app.queue,
				app.students,
				app.lists,
				app.notifier,
				sched,
				app.clock,
				app.log,
				application.PollerConfig{},
			)

			err := poller.Run(ctx)
			if errors.Is(err, context.Canceled) {
				app.log.Info("shutting down")
				return nil
			}
			return err
		},
	}
}
