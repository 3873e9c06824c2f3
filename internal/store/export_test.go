package store

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/summary"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/sweep"
)

func TestExportTableCSV(t *testing.T) {
	_, _, table := fixture(t)

	var buf bytes.Buffer
	if err := ExportTableCSV(&buf, table); err != nil {
		t.Fatalf("ExportTableCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV: %v", err)
	}
	// header + 2 rates x 3 inputs
	if len(records) != 7 {
		t.Fatalf("got %d records, want 7", len(records))
	}
	if strings.Join(records[0], ",") != "rate,feature,lower,median,upper" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][0] != "0" || records[1][1] != "x1" {
		t.Errorf("first row = %v, want rate 0 x1", records[1])
	}
	if records[6][0] != "1" || records[6][1] != "x3" {
		t.Errorf("last row = %v, want rate 1 x3", records[6])
	}
	if records[1][3] != "21" {
		t.Errorf("x1 median at rate 0 = %s, want 21", records[1][3])
	}
}

func TestExportSamplesCSV(t *testing.T) {
	_, result, _ := fixture(t)

	var buf bytes.Buffer
	if err := ExportSamplesCSV(&buf, result); err != nil {
		t.Fatalf("ExportSamplesCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV: %v", err)
	}
	if len(records) != 7 {
		t.Fatalf("got %d records, want 7", len(records))
	}
	want := "rate,repeat,x1,x2,x3,oob_mse,r_squared,switch_rate"
	if strings.Join(records[0], ",") != want {
		t.Errorf("header = %v, want %s", records[0], want)
	}
	if got := strings.Join(records[6], ","); got != "1,2,22,22,1,0.05,0.7,1" {
		t.Errorf("last row = %s", got)
	}
}

func TestExportTableJSONL(t *testing.T) {
	_, _, table := fixture(t)

	var buf bytes.Buffer
	if err := ExportTableJSONL(&buf, table); err != nil {
		t.Fatalf("ExportTableJSONL() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	var row summary.Row
	if err := json.Unmarshal([]byte(lines[1]), &row); err != nil {
		t.Fatalf("unmarshal row: %v", err)
	}
	if row.Rate != 1 || len(row.Bands) != 3 || row.Bands[2].Feature != "x3" {
		t.Errorf("row = %+v", row)
	}
}

func TestExportSamplesJSONL(t *testing.T) {
	_, result, _ := fixture(t)

	var buf bytes.Buffer
	if err := ExportSamplesJSONL(&buf, result); err != nil {
		t.Fatalf("ExportSamplesJSONL() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6", len(lines))
	}
	var smp sweep.Sample
	if err := json.Unmarshal([]byte(lines[0]), &smp); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if smp.Rate != 0 || smp.Repeat != 0 || len(smp.Importance) != 3 {
		t.Errorf("sample = %+v", smp)
	}
}
