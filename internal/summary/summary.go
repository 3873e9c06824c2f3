// Package summary aggregates importance samples into percentile bands and
// evaluates the experiment's sanity checks.
package summary

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/sweep"
)

// ErrEmpty is returned when there are no samples to summarize.
var ErrEmpty = errors.New("no samples to summarize")

// ErrOrdering is returned when a band's percentiles are not ordered.
var ErrOrdering = errors.New("percentiles out of order")

// Percentiles are the probabilities of a band's three edges.
type Percentiles struct {
	Lower  float64 `json:"lower"`
	Median float64 `json:"median"`
	Upper  float64 `json:"upper"`
}

// DefaultPercentiles is the 5th/50th/95th band.
var DefaultPercentiles = Percentiles{Lower: 0.05, Median: 0.5, Upper: 0.95}

// Band is the percentile band of one input's importance at one rate.
type Band struct {
	Feature string  `json:"feature"`
	Lower   float64 `json:"lower"`
	Median  float64 `json:"median"`
	Upper   float64 `json:"upper"`
}

// Row holds the bands of every input at one rate.
type Row struct {
	Rate  float64 `json:"rate"`
	Bands []Band  `json:"bands"`
}

// Table is the aggregated result of a sweep, indexed by rate.
type Table struct {
	Percentiles Percentiles `json:"percentiles"`
	Features    []string    `json:"features"`
	Rows        []Row       `json:"rows"`
}

// Summarize computes the percentile band of every input at every rate.
func Summarize(result *sweep.Result, p Percentiles) (*Table, error) {
	if result == nil || len(result.Points) == 0 {
		return nil, ErrEmpty
	}
	if !(0 <= p.Lower && p.Lower <= p.Median && p.Median <= p.Upper && p.Upper <= 1) {
		return nil, fmt.Errorf("%w: %+v", ErrOrdering, p)
	}

	table := &Table{
		Percentiles: p,
		Features:    append([]string(nil), result.Features...),
		Rows:        make([]Row, len(result.Points)),
	}

	for ri, point := range result.Points {
		if len(point.Samples) == 0 {
			return nil, fmt.Errorf("%w: rate %g", ErrEmpty, point.Rate)
		}
		row := Row{Rate: point.Rate, Bands: make([]Band, len(result.Features))}
		for f, name := range result.Features {
			values := result.Importances(ri, f)
			row.Bands[f] = NewBand(name, values, p)
		}
		table.Rows[ri] = row
	}

	return table, nil
}

// NewBand computes the band of values. values is not modified.
func NewBand(feature string, values []float64, p Percentiles) Band {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return Band{
		Feature: feature,
		Lower:   Quantile(p.Lower, sorted),
		Median:  Quantile(p.Median, sorted),
		Upper:   Quantile(p.Upper, sorted),
	}
}

// Quantile returns the p-quantile of sorted, interpolating between order
// statistics at position (n-1)p. This matches the default of R's quantile
// and numpy's percentile. Returns NaN for empty input.
func Quantile(p float64, sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	if lo < 0 {
		return sorted[0]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// FeatureIndex returns the column of a named input, or -1.
func (t *Table) FeatureIndex(name string) int {
	for i, f := range t.Features {
		if f == name {
			return i
		}
	}
	return -1
}

// Band returns the band of one input at one row.
func (t *Table) Band(row int, feature string) (Band, bool) {
	f := t.FeatureIndex(feature)
	if f < 0 || row < 0 || row >= len(t.Rows) {
		return Band{}, false
	}
	return t.Rows[row].Bands[f], true
}

// CheckOrdering verifies lower <= median <= upper for every rate and input.
func (t *Table) CheckOrdering() error {
	for _, row := range t.Rows {
		for _, b := range row.Bands {
			if !b.Ordered() {
				return fmt.Errorf("%w: rate %g %s: %g, %g, %g", ErrOrdering, row.Rate, b.Feature, b.Lower, b.Median, b.Upper)
			}
		}
	}
	return nil
}

// Ordered reports whether lower <= median <= upper.
func (b Band) Ordered() bool {
	return b.Lower <= b.Median && b.Median <= b.Upper
}

// Width returns upper - lower.
func (b Band) Width() float64 {
	return b.Upper - b.Lower
}

// Dominates reports whether every percentile of a is at least the
// corresponding percentile of b.
func Dominates(a, b Band) bool {
	return a.Lower >= b.Lower && a.Median >= b.Median && a.Upper >= b.Upper
}

// Overlaps reports whether the two bands share any interval.
func Overlaps(a, b Band) bool {
	return a.Lower <= b.Upper && b.Lower <= a.Upper
}
