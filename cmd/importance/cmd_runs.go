package main

import (
	"fmt"
	"time"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/report"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.ListRuns(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd, map[string]any{"runs": runs, "count": len(runs)})
			}
			return report.WriteRuns(cmd.OutOrStdout(), runs, styledOutput(cmd))
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the percentile table and checks of a run",
		Long: `Show a stored run. The ID may be any unique prefix.

Examples:
  importance show 3f2a          # Table and checks of the run starting 3f2a
  importance show 3f2a --json   # The same as JSON`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			d, err := report.Load(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, runOutput{Run: d.Run, Table: d.Table, Checks: d.Checks})
			}

			out := cmd.OutOrStdout()
			styled := styledOutput(cmd)
			r := d.Run
			fmt.Fprintf(out, "Run:        %s\n", r.ID)
			if r.Label != "" {
				fmt.Fprintf(out, "Label:      %s\n", r.Label)
			}
			fmt.Fprintf(out, "Created:    %s\n", r.CreatedAt.Local().Format(time.RFC3339))
			fmt.Fprintf(out, "Importance: %s\n", r.Importance)
			fmt.Fprintf(out, "Design:     %d rates x %d repeats, %d rows, %d trees, seed %d\n",
				r.Steps, r.Repeats, r.Rows, r.Trees, r.Seed)
			fmt.Fprintf(out, "Elapsed:    %s\n\n", r.Elapsed.Round(time.Millisecond))
			if err := report.WriteTable(out, d.Table, styled); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return report.WriteChecks(out, d.Checks, styled)
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored run and its samples",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			run, err := s.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := s.DeleteRun(cmd.Context(), run.ID); err != nil {
				return fmt.Errorf("failed to delete run: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd, map[string]string{"status": "deleted", "id": run.ID})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", run.ID)
			return nil
		},
	}
}
