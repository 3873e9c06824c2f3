// Package report renders experiment runs as terminal tables, markdown and
// HTML documents, and PNG band plots.
package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	htmltemplate "html/template"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/template"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/store"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/summary"
)

// File names written by Write.
const (
	MarkdownFile = "report.md"
	HTMLFile     = "report.html"
	PlotFile     = "bands.png"
	BandsCSVFile = "bands.csv"
)

// Data is everything a report shows about one run.
type Data struct {
	Run    store.Run
	Table  *summary.Table
	Checks []summary.Check
}

// markdownData is passed to the markdown template.
type markdownData struct {
	Data
	PlotFile string
}

// htmlData is passed to the HTML template.
// PlotSrc is a data: URI built from bytes this package rendered.
type htmlData struct {
	Data
	PlotSrc htmltemplate.URL
}

var funcs = map[string]any{
	"num":  func(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) },
	"rate": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
	"pct":  formatPct,
}

func formatPct(p float64) string {
	return strconv.FormatFloat(p*100, 'g', 6, 64) + "%"
}

// Load gathers the report data of one run from a store.
func Load(ctx context.Context, rs store.RunStore, id string) (Data, error) {
	run, err := rs.GetRun(ctx, id)
	if err != nil {
		return Data{}, err
	}
	table, err := rs.LoadTable(ctx, run.ID)
	if err != nil {
		return Data{}, fmt.Errorf("load bands: %w", err)
	}
	return Data{Run: *run, Table: table, Checks: summary.Evaluate(table)}, nil
}

// RenderMarkdown writes the markdown report. The plot is referenced as PlotFile.
func RenderMarkdown(w io.Writer, d Data) error {
	tmplBytes, err := templates.ReadFile("templates/report.md.tmpl")
	if err != nil {
		return fmt.Errorf("read markdown template: %w", err)
	}
	tmpl, err := template.New("report.md").Funcs(funcs).Parse(string(tmplBytes))
	if err != nil {
		return fmt.Errorf("parse markdown template: %w", err)
	}
	if err := tmpl.Execute(w, markdownData{Data: d, PlotFile: PlotFile}); err != nil {
		return fmt.Errorf("execute markdown template: %w", err)
	}
	return nil
}

// RenderHTML produces a self-contained HTML report with png inlined.
// png may be nil, in which case the plot is omitted.
func RenderHTML(d Data, png []byte) ([]byte, error) {
	tmplBytes, err := templates.ReadFile("templates/report.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("read HTML template: %w", err)
	}
	tmpl, err := htmltemplate.New("report.html").Funcs(funcs).Parse(string(tmplBytes))
	if err != nil {
		return nil, fmt.Errorf("parse HTML template: %w", err)
	}

	data := htmlData{Data: d}
	if len(png) > 0 {
		data.PlotSrc = htmltemplate.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)) // #nosec G203
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute HTML template: %w", err)
	}
	return buf.Bytes(), nil
}

// Write renders every report artifact into dir and returns the written paths.
func Write(dir string, d Data) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}

	png, err := RenderPNG(d.Table, d.Run.Importance)
	if err != nil {
		return nil, err
	}

	var md bytes.Buffer
	if err := RenderMarkdown(&md, d); err != nil {
		return nil, err
	}

	html, err := RenderHTML(d, png)
	if err != nil {
		return nil, err
	}

	var csv bytes.Buffer
	if err := store.ExportTableCSV(&csv, d.Table); err != nil {
		return nil, err
	}

	files := []struct {
		name string
		data []byte
	}{
		{PlotFile, png},
		{MarkdownFile, md.Bytes()},
		{HTMLFile, html},
		{BandsCSVFile, csv.Bytes()},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.data, 0644); err != nil {
			return paths, fmt.Errorf("write %s: %w", f.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
