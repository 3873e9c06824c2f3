package simulation

import (
	"math"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/constants"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/summary"
)

// BandAt returns the band of feature at the row whose rate is within
// tolerance of rate.
func BandAt(table *summary.Table, rate float64, feature string) (summary.Band, bool) {
	for i, row := range table.Rows {
		if math.Abs(row.Rate-rate) <= constants.RateTolerance {
			return table.Band(i, feature)
		}
	}
	return summary.Band{}, false
}

// Medians returns the median of feature at every rate, in rate order.
func Medians(table *summary.Table, feature string) []float64 {
	out := make([]float64, 0, len(table.Rows))
	for i := range table.Rows {
		if b, ok := table.Band(i, feature); ok {
			out = append(out, b.Median)
		}
	}
	return out
}

// CheckByName returns the named check.
func CheckByName(checks []summary.Check, name string) (summary.Check, bool) {
	for _, c := range checks {
		if c.Name == name {
			return c, true
		}
	}
	return summary.Check{}, false
}
