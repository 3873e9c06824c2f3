package main

import (
	"fmt"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/report"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/store"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/summary"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <id>",
		Short: "Validate a stored run and evaluate the expected importance behaviour",
		Long: `Check a stored run in two stages:

  1. the stored samples and bands are consistent with the run's design
  2. the behaviour checks: every band ordered, x2 resembles x3 at rate 0,
     x2 resembles x1 at rate 1, x1 dominates x3 at every rate

Exits non-zero when either stage fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			ctx := cmd.Context()

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			run, err := s.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			problems, err := store.ValidateRun(ctx, s, run.ID)
			if err != nil {
				return err
			}

			var checks []summary.Check
			if len(problems) == 0 {
				d, err := report.Load(ctx, s, run.ID)
				if err != nil {
					return err
				}
				checks = d.Checks
			}
			failed := summary.Failed(checks)

			if jsonOut {
				if err := writeJSON(cmd, map[string]any{
					"id":       run.ID,
					"problems": problems,
					"checks":   checks,
					"valid":    len(problems) == 0 && len(failed) == 0,
				}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				if len(problems) > 0 {
					fmt.Fprintf(out, "Run %s: %d stored record problem(s)\n", run.ID, len(problems))
					for _, p := range problems {
						fmt.Fprintf(out, "  %s\n", p.String())
					}
				} else {
					fmt.Fprintf(out, "Run %s: stored records consistent\n", run.ID)
					if err := report.WriteChecks(out, checks, styledOutput(cmd)); err != nil {
						return err
					}
				}
			}

			if len(problems) > 0 {
				return fmt.Errorf("run %s has %d invalid record(s)", run.ID, len(problems))
			}
			if len(failed) > 0 {
				return fmt.Errorf("run %s failed %d check(s)", run.ID, len(failed))
			}
			return nil
		},
	}
}
