package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/config"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/constants"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/logging"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/report"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/store"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/summary"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/sweep"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// runOutput is the JSON shape of run and show.
type runOutput struct {
	Run    store.Run       `json:"run"`
	Table  *summary.Table  `json:"table"`
	Checks []summary.Check `json:"checks"`
	Files  []string        `json:"files,omitempty"`
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the importance sweep",
		Long: `Run the rate sweep: for every rate on the grid, generate the configured
number of synthetic datasets, fit a random forest to each, and record the
importance of x1, x2 and x3.

Flags override the config file for this run only.

Examples:
  importance run                                  # Full default design
  importance run --repeats 20 --trees 100         # Smaller, faster sweep
  importance run --importance purity --report out # IncNodePurity, write report`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := applyRunFlags(cmd, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			noStore, _ := cmd.Flags().GetBool("no-store")
			label, _ := cmd.Flags().GetString("label")
			reportDir, _ := cmd.Flags().GetString("report")

			logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())

			var rs store.RunStore
			var fits *logging.FitLogger
			if noStore {
				rs = store.NewMemoryStore()
			} else {
				s, err := openStore(cmd)
				if err != nil {
					return err
				}
				rs = s
				fits = logging.NewFitLogger(s.Dir(), cfg.Logging.Level)
			}
			defer rs.Close()
			defer fits.Close()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			runner := sweep.NewRunner(cfg)
			runner.RunID = uuid.NewString()
			runner.Logger = logger
			runner.Fits = fits
			if f, ok := cmd.ErrOrStderr().(*os.File); ok && report.IsTerminal(f) && !jsonOut {
				runner.OnProgress = progressPrinter(f)
			}

			logger.Info("sweep started",
				"run_id", runner.RunID,
				"rates", cfg.Sweep.Steps(),
				"repeats", cfg.Sweep.Repeats,
				"trees", cfg.Forest.Trees,
				"importance", cfg.Importance.Type)

			result, err := runner.Run(ctx)
			if runner.OnProgress != nil {
				fmt.Fprintln(cmd.ErrOrStderr())
			}
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return fmt.Errorf("sweep interrupted: %w", err)
				}
				return fmt.Errorf("sweep failed: %w", err)
			}
			if err := result.Validate(cfg.Sweep.Steps(), cfg.Sweep.Repeats); err != nil {
				return err
			}

			table, err := summary.Summarize(result, percentiles(cfg))
			if err != nil {
				return fmt.Errorf("summarize: %w", err)
			}
			checks := summary.Evaluate(table)

			run, err := store.NewRun(runner.RunID, cfg, result)
			if err != nil {
				return err
			}
			run.Label = label
			// The sweep is done; an interrupt from here on should not lose it.
			if err := rs.SaveRun(context.WithoutCancel(ctx), run, result, table); err != nil {
				return fmt.Errorf("failed to save run: %w", err)
			}
			logger.Info("sweep finished", "run_id", run.ID, "elapsed", result.Elapsed.Round(time.Millisecond))

			var files []string
			if reportDir != "" {
				files, err = report.Write(reportDir, report.Data{Run: run, Table: table, Checks: checks})
				if err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
			}

			if jsonOut {
				return writeJSON(cmd, runOutput{Run: run, Table: table, Checks: checks, Files: files})
			}

			out := cmd.OutOrStdout()
			styled := styledOutput(cmd)
			fmt.Fprintf(out, "Run %s: %d fits in %s\n\n", run.ID, run.Steps*run.Repeats, result.Elapsed.Round(time.Millisecond))
			if err := report.WriteTable(out, table, styled); err != nil {
				return err
			}
			fmt.Fprintln(out)
			if err := report.WriteChecks(out, checks, styled); err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintf(out, "Wrote %s\n", f)
			}
			if noStore {
				fmt.Fprintln(out, "Run not stored (--no-store).")
			}
			return nil
		},
	}

	cmd.Flags().Int("rows", 0, "Rows per synthetic dataset")
	cmd.Flags().Int("trees", 0, "Trees per forest")
	cmd.Flags().Int("repeats", 0, "Datasets fitted per rate")
	cmd.Flags().Uint64("seed", 0, "Seed for every random stream")
	cmd.Flags().Int("workers", 0, "Concurrent fits (0 = one per CPU)")
	cmd.Flags().String("importance", "", "Importance measure: permutation or purity")
	cmd.Flags().Float64("rate-step", 0, "Step of the rate grid")
	cmd.Flags().Bool("no-scale", false, "Report raw permutation importance instead of dividing by its standard error")
	cmd.Flags().String("label", "", "Label stored with the run")
	cmd.Flags().Bool("no-store", false, "Do not persist the run")
	cmd.Flags().String("report", "", "Write the markdown, HTML, PNG and CSV report to this directory")

	return cmd
}

// applyRunFlags copies the flags that were set onto cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.ExperimentConfig) error {
	flags := cmd.Flags()
	if flags.Changed("rows") {
		cfg.Sweep.Rows, _ = flags.GetInt("rows")
	}
	if flags.Changed("trees") {
		cfg.Forest.Trees, _ = flags.GetInt("trees")
	}
	if flags.Changed("repeats") {
		cfg.Sweep.Repeats, _ = flags.GetInt("repeats")
	}
	if flags.Changed("seed") {
		cfg.Sweep.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("workers") {
		cfg.Sweep.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("rate-step") {
		cfg.Sweep.RateStep, _ = flags.GetFloat64("rate-step")
	}
	if flags.Changed("no-scale") {
		noScale, _ := flags.GetBool("no-scale")
		cfg.Importance.Scale = !noScale
	}
	if flags.Changed("importance") {
		v, _ := flags.GetString("importance")
		t := constants.ImportanceType(v)
		if !t.Valid() {
			return fmt.Errorf("invalid importance type: %s (valid: permutation, purity)", v)
		}
		cfg.Importance.Type = t
	}
	return nil
}

// progressPrinter rewrites one status line on w after every fit.
func progressPrinter(w io.Writer) func(sweep.Progress) {
	return func(p sweep.Progress) {
		fmt.Fprintf(w, "\rfits %d/%d (rate %.2f)", p.Done, p.Total, p.Rate)
	}
}
