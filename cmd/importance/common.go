package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/config"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/report"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/store"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/summary"
	"github.com/spf13/cobra"
)

// projectRoot returns the directory whose .importance holds the store and config.
func projectRoot(cmd *cobra.Command) (string, error) {
	global, _ := cmd.Flags().GetBool("global")
	if global {
		return store.ResolveRoot("")
	}
	root, _ := cmd.Flags().GetString("root")
	return store.ResolveRoot(root)
}

// configPath returns --config, or the config file of the project root.
func configPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p, nil
	}
	root, err := projectRoot(cmd)
	if err != nil {
		return "", err
	}
	return config.Path(root), nil
}

// loadConfig loads the configuration and applies --log-level.
// An explicit --config file must exist.
func loadConfig(cmd *cobra.Command) (*config.ExperimentConfig, error) {
	path, err := configPath(cmd)
	if err != nil {
		return nil, err
	}
	if explicit, _ := cmd.Flags().GetString("config"); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}
	cfg, err := config.LoadPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

// openStore opens the SQLite store of the project root.
func openStore(cmd *cobra.Command) (*store.SQLiteStore, error) {
	root, err := projectRoot(cmd)
	if err != nil {
		return nil, err
	}
	s, err := store.Open(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return s, nil
}

// percentiles returns the band probabilities of cfg.
func percentiles(cfg *config.ExperimentConfig) summary.Percentiles {
	return summary.Percentiles{
		Lower:  cfg.Percentiles.Lower,
		Median: cfg.Percentiles.Median,
		Upper:  cfg.Percentiles.Upper,
	}
}

// styledOutput reports whether command output goes to an interactive terminal.
func styledOutput(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && report.IsTerminal(f)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// signalContext returns a context cancelled on the first interrupt.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	notifySignals(sigCh)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
