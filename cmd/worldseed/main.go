// Package main provides the worldseed CLI: it imports bundled content packs
// into a world once, and exports an authored world back into packs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version      = "0.1.0-dev"
	globalConfig string
	globalStore  string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := newRootCmd()
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "worldseed",
		Short:         "One-shot import of bundled content packs into a world",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalConfig, "config", "c", "configs/dev.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&globalStore, "store", "", "World store override (memory, postgres)")

	rootCmd.AddCommand(
		newStatusCmd(),
		newPromptCmd(),
		newInitCmd(),
		newSkipCmd(),
		newResetCmd(),
		newExportCmd(),
		newMergeJournalsCmd(),
	)
	return rootCmd
}
