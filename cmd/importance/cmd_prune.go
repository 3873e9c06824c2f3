package main

import (
	"fmt"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/store"
	"github.com/spf13/cobra"
)

func newPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old runs",
		Long: `Delete stored runs that no retention rule keeps. A run survives if it is
among the --keep newest, younger than --max-age, or labelled (unless
--include-labelled is set). At least one of --keep or --max-age is required.

Examples:
  importance prune --keep 10                # Keep the ten newest runs
  importance prune --max-age 30d --dry-run  # Show what a 30-day cutoff would remove`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			keep, _ := cmd.Flags().GetInt("keep")
			maxAge, _ := cmd.Flags().GetString("max-age")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			includeLabelled, _ := cmd.Flags().GetBool("include-labelled")

			var policies []store.RetentionPolicy
			if cmd.Flags().Changed("keep") {
				if keep < 0 {
					return fmt.Errorf("--keep must not be negative, got %d", keep)
				}
				policies = append(policies, &store.CountPolicy{MaxCount: keep})
			}
			if maxAge != "" {
				d, err := store.ParseDuration(maxAge)
				if err != nil {
					return err
				}
				policies = append(policies, &store.AgePolicy{MaxAge: d})
			}
			if len(policies) == 0 {
				return fmt.Errorf("prune needs --keep or --max-age")
			}
			if !includeLabelled {
				policies = append(policies, store.LabelPolicy{})
			}

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			pruned, err := store.Prune(cmd.Context(), s, &store.CompositePolicy{Policies: policies}, dryRun)
			if err != nil {
				return err
			}

			if jsonOut {
				ids := make([]string, 0, len(pruned))
				for _, r := range pruned {
					ids = append(ids, r.ID)
				}
				return writeJSON(cmd, map[string]any{"pruned": ids, "dry_run": dryRun})
			}

			out := cmd.OutOrStdout()
			verb := "Deleted"
			if dryRun {
				verb = "Would delete"
			}
			for _, r := range pruned {
				fmt.Fprintf(out, "%s run %s (%s)\n", verb, r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			fmt.Fprintf(out, "%s %d run(s)\n", verb, len(pruned))
			return nil
		},
	}

	cmd.Flags().Int("keep", 0, "Keep this many of the newest runs")
	cmd.Flags().String("max-age", "", "Keep runs younger than this (e.g. 72h, 30d, 2w)")
	cmd.Flags().Bool("include-labelled", false, "Also prune labelled runs")
	cmd.Flags().Bool("dry-run", false, "Show what would be deleted without deleting")

	return cmd
}
