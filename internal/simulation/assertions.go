package simulation

import (
	"testing"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/summary"
)

// AssertShape asserts the sweep holds exactly the configured number of rate
// steps, each with exactly the configured number of repeats, and that the
// stored table has one row per rate.
func AssertShape(t *testing.T, result SimulationResult) {
	t.Helper()
	steps, repeats := result.Config.Sweep.Steps(), result.Config.Sweep.Repeats
	if err := result.Result.Validate(steps, repeats); err != nil {
		t.Errorf("AssertShape: %v", err)
	}
	if len(result.Table.Rows) != steps {
		t.Errorf("AssertShape: table has %d rows, want %d", len(result.Table.Rows), steps)
	}
	for i, row := range result.Table.Rows {
		if len(row.Bands) != len(result.Table.Features) {
			t.Errorf("AssertShape: row %d has %d bands, want %d", i, len(row.Bands), len(result.Table.Features))
		}
	}
}

// AssertBandsOrdered asserts lower <= median <= upper for every rate and input.
func AssertBandsOrdered(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, row := range result.Table.Rows {
		for _, b := range row.Bands {
			if !b.Ordered() {
				t.Errorf("AssertBandsOrdered: rate %.2f %s: %.4f / %.4f / %.4f out of order",
					row.Rate, b.Feature, b.Lower, b.Median, b.Upper)
			}
		}
	}
}

// AssertResembles asserts that the bands of a and b overlap at rate.
func AssertResembles(t *testing.T, result SimulationResult, rate float64, a, b string) {
	t.Helper()
	ba, okA := BandAt(result.Table, rate, a)
	bb, okB := BandAt(result.Table, rate, b)
	if !okA || !okB {
		t.Fatalf("AssertResembles: rate %.2f or inputs %s/%s not in table", rate, a, b)
	}
	if !summary.Overlaps(ba, bb) {
		t.Errorf("AssertResembles: rate %.2f: %s [%.4f, %.4f] and %s [%.4f, %.4f] do not overlap",
			rate, a, ba.Lower, ba.Upper, b, bb.Lower, bb.Upper)
	}
}

// AssertDominates asserts that a's band dominates b's at every rate.
func AssertDominates(t *testing.T, result SimulationResult, a, b string) {
	t.Helper()
	for i, row := range result.Table.Rows {
		ba, okA := result.Table.Band(i, a)
		bb, okB := result.Table.Band(i, b)
		if !okA || !okB {
			t.Fatalf("AssertDominates: inputs %s/%s not in table", a, b)
		}
		if !summary.Dominates(ba, bb) {
			t.Errorf("AssertDominates: rate %.2f: %s %.4f/%.4f/%.4f does not dominate %s %.4f/%.4f/%.4f",
				row.Rate, a, ba.Lower, ba.Median, ba.Upper, b, bb.Lower, bb.Median, bb.Upper)
		}
	}
}

// AssertSeparated asserts that a's band lies entirely above b's at rate.
func AssertSeparated(t *testing.T, result SimulationResult, rate float64, a, b string) {
	t.Helper()
	ba, okA := BandAt(result.Table, rate, a)
	bb, okB := BandAt(result.Table, rate, b)
	if !okA || !okB {
		t.Fatalf("AssertSeparated: rate %.2f or inputs %s/%s not in table", rate, a, b)
	}
	if ba.Lower <= bb.Upper {
		t.Errorf("AssertSeparated: rate %.2f: %s lower %.4f not above %s upper %.4f",
			rate, a, ba.Lower, b, bb.Upper)
	}
}

// AssertMedianRises asserts that feature's median at the last rate exceeds
// its median at the first rate.
func AssertMedianRises(t *testing.T, result SimulationResult, feature string) {
	t.Helper()
	m := Medians(result.Table, feature)
	if len(m) < 2 {
		t.Fatalf("AssertMedianRises: %s has %d medians, need at least 2", feature, len(m))
	}
	if m[len(m)-1] <= m[0] {
		t.Errorf("AssertMedianRises: %s median %.4f at the last rate not above %.4f at the first", feature, m[len(m)-1], m[0])
	}
}

// AssertChecksPass asserts that no evaluated check failed.
func AssertChecksPass(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, c := range summary.Failed(result.Checks) {
		t.Errorf("AssertChecksPass: %s failed: %s", c.Name, c.Detail)
	}
}
