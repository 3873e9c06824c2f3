package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/summary"
)

func TestPlotBands(t *testing.T) {
	p, err := PlotBands(testData(t).Table, "permutation")
	if err != nil {
		t.Fatalf("PlotBands() error = %v", err)
	}
	if p.Y.Label.Text != "%IncMSE" {
		t.Errorf("Y label = %q, want %%IncMSE", p.Y.Label.Text)
	}
	if p.X.Min != 0 || p.X.Max != 1 {
		t.Errorf("X range = [%v, %v], want [0, 1]", p.X.Min, p.X.Max)
	}
}

func TestAxisLabel(t *testing.T) {
	tests := []struct {
		importance string
		want       string
	}{
		{"permutation", "%IncMSE"},
		{"purity", "IncNodePurity"},
		{"", "%IncMSE"},
	}
	for _, tt := range tests {
		if got := axisLabel(tt.importance); got != tt.want {
			t.Errorf("axisLabel(%q) = %q, want %q", tt.importance, got, tt.want)
		}
	}
}

func TestPlotBands_Empty(t *testing.T) {
	if _, err := PlotBands(&summary.Table{}, "permutation"); !errors.Is(err, summary.ErrEmpty) {
		t.Errorf("PlotBands(empty) error = %v, want ErrEmpty", err)
	}
	if _, err := PlotBands(nil, "permutation"); !errors.Is(err, summary.ErrEmpty) {
		t.Errorf("PlotBands(nil) error = %v, want ErrEmpty", err)
	}
}

func TestRenderPNG(t *testing.T) {
	png, err := RenderPNG(testData(t).Table, "purity")
	if err != nil {
		t.Fatalf("RenderPNG() error = %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("RenderPNG() output lacks the PNG signature")
	}
}
