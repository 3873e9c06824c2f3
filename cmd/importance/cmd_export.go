package main

import (
	"fmt"
	"io"
	"os"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/store"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export the percentile bands or raw samples of a run",
		Long: `Export a stored run as CSV or JSON lines.

By default the percentile bands are exported, one line per rate and input.
With --samples every fitted forest is exported instead.

Examples:
  importance export 3f2a                          # Bands as CSV on stdout
  importance export 3f2a --samples -o fits.csv    # Raw samples to a file
  importance export 3f2a --format jsonl           # Bands as JSON lines`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			samples, _ := cmd.Flags().GetBool("samples")
			outPath, _ := cmd.Flags().GetString("output")
			if format != "csv" && format != "jsonl" {
				return fmt.Errorf("invalid format: %s (valid: csv, jsonl)", format)
			}

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			run, err := s.GetRun(ctx, args[0])
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			if samples {
				result, err := s.LoadResult(ctx, run.ID)
				if err != nil {
					return err
				}
				if format == "csv" {
					err = store.ExportSamplesCSV(w, result)
				} else {
					err = store.ExportSamplesJSONL(w, result)
				}
				if err != nil {
					return fmt.Errorf("export failed: %w", err)
				}
			} else {
				table, err := s.LoadTable(ctx, run.ID)
				if err != nil {
					return err
				}
				if format == "csv" {
					err = store.ExportTableCSV(w, table)
				} else {
					err = store.ExportTableJSONL(w, table)
				}
				if err != nil {
					return fmt.Errorf("export failed: %w", err)
				}
			}

			if outPath != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported run %s to %s\n", run.ID, outPath)
			}
			return nil
		},
	}

	cmd.Flags().String("format", "csv", "Output format: csv or jsonl")
	cmd.Flags().Bool("samples", false, "Export raw samples instead of percentile bands")
	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")

	return cmd
}
