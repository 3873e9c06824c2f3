package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/config"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/constants"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage experiment configuration",
		Long: `View and modify the experiment configuration.

Configuration is stored in <root>/.importance/config.yaml (or the file given
by --config). IMPORTANCE_* environment variables override file values.

Examples:
  importance config list                       # Show all settings
  importance config get forest.trees           # Get a specific setting
  importance config set sweep.repeats 200      # Set a setting
  importance config set importance.type purity`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

// configKeys lists every settable key in display order.
var configKeys = []string{
	"sweep.rate_start",
	"sweep.rate_stop",
	"sweep.rate_step",
	"sweep.repeats",
	"sweep.rows",
	"sweep.seed",
	"sweep.workers",
	"forest.trees",
	"forest.mtry",
	"forest.node_size",
	"forest.max_depth",
	"forest.sample_fraction",
	"importance.type",
	"importance.scale",
	"percentiles.lower",
	"percentiles.median",
	"percentiles.upper",
	"logging.level",
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, cfg)
			}

			path, _ := configPath(cmd)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration (%s):\n", path)
			section := ""
			for _, key := range configKeys {
				if s, _, _ := strings.Cut(key, "."); s != section {
					section = s
					fmt.Fprintln(out)
				}
				value, _ := getConfigValue(cfg, key)
				fmt.Fprintf(out, "  %-24s %s\n", key+":", valueOrDefault(fmt.Sprint(value), "(default)"))
			}
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			value, found := getConfigValue(cfg, key)
			if !found {
				return fmt.Errorf("unknown configuration key: %s", key)
			}

			if jsonOut {
				return writeJSON(cmd, map[string]any{"key": key, "value": value})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key, value := args[0], args[1]

			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			// Start from the file alone so environment overrides are not persisted.
			cfg := config.Default()
			if _, statErr := os.Stat(path); statErr == nil {
				if cfg, err = config.LoadFromFile(path); err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
			}

			if err := setConfigValue(cfg, key, value); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd, map[string]any{"status": "updated", "key": key, "value": value})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.ExperimentConfig, key string) (any, bool) {
	switch key {
	case "sweep.rate_start":
		return cfg.Sweep.RateStart, true
	case "sweep.rate_stop":
		return cfg.Sweep.RateStop, true
	case "sweep.rate_step":
		return cfg.Sweep.RateStep, true
	case "sweep.repeats":
		return cfg.Sweep.Repeats, true
	case "sweep.rows":
		return cfg.Sweep.Rows, true
	case "sweep.seed":
		return cfg.Sweep.Seed, true
	case "sweep.workers":
		return cfg.Sweep.Workers, true
	case "forest.trees":
		return cfg.Forest.Trees, true
	case "forest.mtry":
		return cfg.Forest.Mtry, true
	case "forest.node_size":
		return cfg.Forest.NodeSize, true
	case "forest.max_depth":
		return cfg.Forest.MaxDepth, true
	case "forest.sample_fraction":
		return cfg.Forest.SampleFraction, true
	case "importance.type":
		return cfg.Importance.Type.String(), true
	case "importance.scale":
		return cfg.Importance.Scale, true
	case "percentiles.lower":
		return cfg.Percentiles.Lower, true
	case "percentiles.median":
		return cfg.Percentiles.Median, true
	case "percentiles.upper":
		return cfg.Percentiles.Upper, true
	case "logging.level":
		return cfg.Logging.Level, true
	default:
		return nil, false
	}
}

// setConfigValue sets a configuration value by dot-notation key.
// Range checks are left to ExperimentConfig.Validate.
func setConfigValue(cfg *config.ExperimentConfig, key, value string) error {
	switch key {
	case "sweep.rate_start":
		return parseFloat(key, value, &cfg.Sweep.RateStart)
	case "sweep.rate_stop":
		return parseFloat(key, value, &cfg.Sweep.RateStop)
	case "sweep.rate_step":
		return parseFloat(key, value, &cfg.Sweep.RateStep)
	case "sweep.repeats":
		return parseInt(key, value, &cfg.Sweep.Repeats)
	case "sweep.rows":
		return parseInt(key, value, &cfg.Sweep.Rows)
	case "sweep.seed":
		v, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %s (must be a non-negative integer)", key, value)
		}
		cfg.Sweep.Seed = v
	case "sweep.workers":
		return parseInt(key, value, &cfg.Sweep.Workers)
	case "forest.trees":
		return parseInt(key, value, &cfg.Forest.Trees)
	case "forest.mtry":
		return parseInt(key, value, &cfg.Forest.Mtry)
	case "forest.node_size":
		return parseInt(key, value, &cfg.Forest.NodeSize)
	case "forest.max_depth":
		return parseInt(key, value, &cfg.Forest.MaxDepth)
	case "forest.sample_fraction":
		return parseFloat(key, value, &cfg.Forest.SampleFraction)
	case "importance.type":
		t := constants.ImportanceType(value)
		if !t.Valid() {
			return fmt.Errorf("invalid importance type: %s (valid: permutation, purity)", value)
		}
		cfg.Importance.Type = t
	case "importance.scale":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %s (must be true or false)", key, value)
		}
		cfg.Importance.Scale = v
	case "percentiles.lower":
		return parseFloat(key, value, &cfg.Percentiles.Lower)
	case "percentiles.median":
		return parseFloat(key, value, &cfg.Percentiles.Median)
	case "percentiles.upper":
		return parseFloat(key, value, &cfg.Percentiles.Upper)
	case "logging.level":
		cfg.Logging.Level = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

func parseInt(key, value string, dst *int) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %s (must be an integer)", key, value)
	}
	*dst = v
	return nil
}

func parseFloat(key, value string, dst *float64) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %s (must be a number)", key, value)
	}
	*dst = v
	return nil
}

func valueOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
