package report

import (
	"bytes"
	"fmt"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/constants"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/summary"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Plot size in inches.
const (
	plotWidth  = 7
	plotHeight = 4.5
)

// axisLabel returns the y-axis label for an importance type.
func axisLabel(importance string) string {
	switch constants.ImportanceType(importance) {
	case constants.ImportancePurity:
		return "IncNodePurity"
	default:
		return "%IncMSE"
	}
}

// PlotBands draws one colour per input: the median as a solid line and the
// lower and upper percentiles as dashed lines.
func PlotBands(table *summary.Table, importance string) (*plot.Plot, error) {
	if table == nil || len(table.Rows) == 0 {
		return nil, summary.ErrEmpty
	}

	p := plot.New()
	p.Title.Text = "Importance vs. rate x2 is informative"
	p.X.Label.Text = "rate"
	p.Y.Label.Text = axisLabel(importance)
	p.X.Min, p.X.Max = table.Rows[0].Rate, table.Rows[len(table.Rows)-1].Rate
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = true

	for fi, name := range table.Features {
		lower := make(plotter.XYs, len(table.Rows))
		median := make(plotter.XYs, len(table.Rows))
		upper := make(plotter.XYs, len(table.Rows))
		for ri, row := range table.Rows {
			b := row.Bands[fi]
			lower[ri] = plotter.XY{X: row.Rate, Y: b.Lower}
			median[ri] = plotter.XY{X: row.Rate, Y: b.Median}
			upper[ri] = plotter.XY{X: row.Rate, Y: b.Upper}
		}

		color := plotutil.Color(fi)
		for _, edge := range []plotter.XYs{lower, upper} {
			l, err := plotter.NewLine(edge)
			if err != nil {
				return nil, fmt.Errorf("band edge for %s: %w", name, err)
			}
			l.LineStyle.Color = color
			l.LineStyle.Width = vg.Points(1)
			l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
			p.Add(l)
		}

		l, points, err := plotter.NewLinePoints(median)
		if err != nil {
			return nil, fmt.Errorf("median for %s: %w", name, err)
		}
		l.LineStyle.Color = color
		l.LineStyle.Width = vg.Points(2)
		points.GlyphStyle.Color = color
		points.GlyphStyle.Shape = plotutil.Shape(fi)
		p.Add(l, points)
		p.Legend.Add(name, l, points)
	}

	return p, nil
}

// RenderPNG draws the band plot and encodes it as PNG.
func RenderPNG(table *summary.Table, importance string) ([]byte, error) {
	p, err := PlotBands(table, importance)
	if err != nil {
		return nil, err
	}
	wt, err := p.WriterTo(plotWidth*vg.Inch, plotHeight*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("create png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
