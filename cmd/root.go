package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func showHelp(cmd *cobra.Command, args []string) error {
	return cmd.Help()
}

func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hourlog",
		Short: "Hourly request counts per client IP for every hosted domain",
		Args:  cobra.NoArgs,
		RunE:  showHelp,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional
			_ = godotenv.Load()
		},
	}
	rootCmd.AddCommand(
		reportCmd(),
		grepCmd(),
		listCmd(),
	)
	return rootCmd
}
