package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "importance",
		Short: "Random forest variable importance under a switching input",
		Long: `importance measures how random forest variable importance responds when
one input switches between copying an informative input and copying pure noise.

Each run sweeps the switching rate over a grid, fits a forest to many
synthetic datasets per rate, and reports the 5th, 50th and 95th percentile
of every input's importance at every rate.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")
	rootCmd.PersistentFlags().Bool("global", false, "Use the per-user store in ~/.importance instead of --root")
	rootCmd.PersistentFlags().String("config", "", "Config file (default <root>/.importance/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace (overrides config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newListCmd(),
		newShowCmd(),
		newCheckCmd(),
		newExportCmd(),
		newReportCmd(),
		newDeleteCmd(),
		newPruneCmd(),
		newConfigCmd(),
	)

	return rootCmd
}
