package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"shorts-backend/internal/logging"
)

var (
	verbose     bool
	catalogPath string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "shortsctl",
		Short: "Operator tools for the shorts backend",
		Long: `shortsctl inspects caption timing for generated projects, dry-runs script
planning against the language model and applies database migrations.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			level := "info"
			if verbose {
				level = "debug"
			}
			logging.Init("development", level)
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	root.PersistentFlags().StringVar(&catalogPath, "catalog", os.Getenv("CATALOG_PATH"), "style and voice catalog (default: built-in)")

	root.AddCommand(newCaptionsCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newMigrateCmd())
	return root
}
