package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tw",
		Short:         "tutorwatch: watch your tutoring queue and get notified",
		Long:          "tutorwatch (tw) signs in to the tutoring queue services, keeps your lists active, watches your personal queue and pushes a notification when somebody is next in line.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newWatchCmd(app),
		newLoginCmd(app),
		newActivateCmd(app),
		newStudentCmd(app),
		newScheduleCmd(app),
		newCacheCmd(app),
	)

	return rootCmd
}
