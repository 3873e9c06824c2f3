package main

import (
	"fmt"
	"path/filepath"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/report"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <id>",
		Short: "Write the plot, markdown, HTML and CSV report of a run",
		Long: `Write the report of a stored run to a directory:

  bands.png   percentile bands of every input against the rate
  report.md   table and checks, referencing bands.png
  report.html self-contained page with the plot inlined
  bands.csv   the percentile table

Examples:
  importance report 3f2a --out results
  importance report 3f2a --open          # Open report.html in the browser`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			outDir, _ := cmd.Flags().GetString("out")
			open, _ := cmd.Flags().GetBool("open")

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			d, err := report.Load(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = filepath.Join(s.Dir(), "reports", d.Run.ID)
			}

			files, err := report.Write(outDir, d)
			if err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}

			var openErr error
			if open {
				openErr = report.Open(filepath.Join(outDir, report.HTMLFile))
			}

			if jsonOut {
				return writeJSON(cmd, map[string]any{"id": d.Run.ID, "files": files})
			}
			for _, f := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", f)
			}
			if openErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser: %v\n", openErr)
			}
			return nil
		},
	}

	cmd.Flags().String("out", "", "Output directory (default <root>/.importance/reports/<id>)")
	cmd.Flags().Bool("open", false, "Open the HTML report in the default browser")

	return cmd
}
