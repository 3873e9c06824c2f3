package store

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/summary"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/sweep"
)

// ExportTableCSV writes the summary table as CSV, one line per rate and input.
func ExportTableCSV(w io.Writer, table *summary.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rate", "feature", "lower", "median", "upper"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range table.Rows {
		for _, b := range row.Bands {
			rec := []string{formatFloat(row.Rate), b.Feature, formatFloat(b.Lower), formatFloat(b.Median), formatFloat(b.Upper)}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportSamplesCSV writes every importance sample as CSV, one line per fit.
func ExportSamplesCSV(w io.Writer, result *sweep.Result) error {
	cw := csv.NewWriter(w)
	header := []string{"rate", "repeat"}
	header = append(header, result.Features...)
	header = append(header, "oob_mse", "r_squared", "switch_rate")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, p := range result.Points {
		for _, s := range p.Samples {
			rec := []string{formatFloat(p.Rate), strconv.Itoa(s.Repeat)}
			for _, v := range s.Importance {
				rec = append(rec, formatFloat(v))
			}
			rec = append(rec, formatFloat(s.OOBMSE), formatFloat(s.RSquared), formatFloat(s.SwitchRate))
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportTableJSONL writes one JSON object per row of the summary table.
func ExportTableJSONL(w io.Writer, table *summary.Table) error {
	enc := json.NewEncoder(w)
	for _, row := range table.Rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("failed to encode row: %w", err)
		}
	}
	return nil
}

// ExportSamplesJSONL writes one JSON object per sample.
func ExportSamplesJSONL(w io.Writer, result *sweep.Result) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, p := range result.Points {
		for _, s := range p.Samples {
			if err := enc.Encode(s); err != nil {
				return fmt.Errorf("failed to encode sample: %w", err)
			}
		}
	}
	return bw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
