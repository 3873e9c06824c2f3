package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/store"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/summary"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
)

// Palette for terminal output.
var (
	colorHeader = lipgloss.Color("#20B9B4")
	colorBorder = lipgloss.Color("#16858E")
	colorMuted  = lipgloss.Color("#2C4A54")
	colorPass   = lipgloss.Color("#2CD7C7")
	colorFail   = lipgloss.Color("#E74C3C")
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorHeader).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	rateStyle   = cellStyle.Foreground(colorMuted)
	passStyle   = lipgloss.NewStyle().Foreground(colorPass)
	failStyle   = lipgloss.NewStyle().Foreground(colorFail).Bold(true)
	skipStyle   = lipgloss.NewStyle().Foreground(colorMuted)
)

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// FormatBand renders a band as "lower / median / upper".
func FormatBand(b summary.Band) string {
	return fmt.Sprintf("%s / %s / %s", formatNum(b.Lower), formatNum(b.Median), formatNum(b.Upper))
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// WriteTable writes the percentile table. When styled is false the table uses
// an ASCII border and no colour, suitable for pipes and files.
func WriteTable(w io.Writer, t *summary.Table, styled bool) error {
	headers := append([]string{"rate"}, t.Features...)
	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := []string{strconv.FormatFloat(row.Rate, 'f', 2, 64)}
		for _, b := range row.Bands {
			cells = append(cells, FormatBand(b))
		}
		rows = append(rows, cells)
	}

	tbl := table.New().Headers(headers...).Rows(rows...)
	if styled {
		tbl = tbl.
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return headerStyle
				case col == 0:
					return rateStyle
				default:
					return cellStyle
				}
			})
	} else {
		tbl = tbl.
			Border(lipgloss.ASCIIBorder()).
			StyleFunc(func(row, col int) lipgloss.Style { return cellStyle })
	}

	title := fmt.Sprintf("importance percentiles %s / %s / %s",
		formatPct(t.Percentiles.Lower), formatPct(t.Percentiles.Median), formatPct(t.Percentiles.Upper))
	if styled {
		title = headerStyle.UnsetPadding().Render(title)
	}
	_, err := fmt.Fprintf(w, "%s\n%s\n", title, tbl.Render())
	return err
}

// WriteChecks writes one line per check with a status icon.
func WriteChecks(w io.Writer, checks []summary.Check, styled bool) error {
	for _, c := range checks {
		icon, style := "-", skipStyle
		switch c.Status {
		case summary.StatusPass:
			icon, style = "✓", passStyle
		case summary.StatusFail:
			icon, style = "✗", failStyle
		}
		label := fmt.Sprintf("%s %s %s", icon, c.Status, c.Name)
		if styled {
			label = style.Render(label)
		}
		line := label
		if c.Detail != "" {
			line += ": " + c.Detail
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ShortID is the run ID prefix shown in listings.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// WriteRuns writes one row per stored run, newest first as given.
func WriteRuns(w io.Writer, runs []store.Run, styled bool) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs stored.")
		return err
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			ShortID(r.ID),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Importance,
			strconv.Itoa(r.Steps),
			strconv.Itoa(r.Repeats),
			strconv.Itoa(r.Trees),
			strconv.FormatUint(r.Seed, 10),
			r.Elapsed.Round(time.Millisecond).String(),
			r.Label,
		})
	}

	tbl := table.New().
		Headers("id", "created", "importance", "rates", "repeats", "trees", "seed", "elapsed", "label").
		Rows(rows...)
	if styled {
		tbl = tbl.
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})
	} else {
		tbl = tbl.
			Border(lipgloss.ASCIIBorder()).
			StyleFunc(func(row, col int) lipgloss.Style { return cellStyle })
	}
	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}
