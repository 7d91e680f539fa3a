package main

import (
	"github.com/abacusquest/abacusquest/internal/config"
	"github.com/abacusquest/abacusquest/internal/logger"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cfg := config.Load()

	root := &cobra.Command{
		Use:          "abacusctl",
		Short:        "Operator tools for the AbacusQuest progress service",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, _ := cmd.Flags().GetString("log-level")
			logger.SetDefault(logger.New(
				logger.WithLevel(logger.ParseLevel(level)),
				logger.WithOutput(cmd.ErrOrStderr()),
			))
		},
	}
	root.PersistentFlags().String("db", cfg.DBPath, "SQLite database path (overrides DB_PATH)")
	root.PersistentFlags().String("log-level", "WARN", "log level")

	root.AddCommand(newSummarizeCmd())
	root.AddCommand(newTokenCmd(cfg))
	root.AddCommand(newResetCmd())
	return root
}
