package simulation_test

import (
	"testing"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/constants"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/simulation"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/summary"
)

// TestImportanceProperties runs the experiment on a coarse grid and checks the
// behaviour the design of the synthetic data implies:
//   - at rate 0, x2's importance resembles x3's (both uninformative)
//   - at rate 1, x2's importance resembles x1's (both informative)
//   - at every rate, x1's percentiles dominate x3's
//   - every band is ordered, and the shape matches the configuration
func TestImportanceProperties(t *testing.T) {
	for _, imp := range []constants.ImportanceType{constants.ImportancePermutation, constants.ImportancePurity} {
		t.Run(imp.String(), func(t *testing.T) {
			r := simulation.NewRunner(t)
			result := r.Run(simulation.Scenario{
				Name:       "properties-" + imp.String(),
				Rates:      simulation.Rates(0, 1, 0.5),
				Importance: imp,
			})

			simulation.AssertShape(t, result)
			simulation.AssertBandsOrdered(t, result)
			simulation.AssertResembles(t, result, 0, "x2", "x3")
			simulation.AssertResembles(t, result, 1, "x2", "x1")
			simulation.AssertDominates(t, result, "x1", "x3")
			simulation.AssertSeparated(t, result, 0, "x1", "x3")
			simulation.AssertMedianRises(t, result, "x2")
			simulation.AssertChecksPass(t, result)
		})
	}
}

// TestX2TracksRate checks that x2's median importance climbs from x3's level
// toward x1's as the rate rises.
func TestX2TracksRate(t *testing.T) {
	r := simulation.NewRunner(t)
	result := r.Run(simulation.Scenario{
		Name:  "x2-tracks-rate",
		Rates: simulation.Rates(0, 1, 0.25),
	})

	simulation.AssertShape(t, result)
	x1 := simulation.Medians(result.Table, "x1")
	x2 := simulation.Medians(result.Table, "x2")
	x3 := simulation.Medians(result.Table, "x3")
	last := len(x2) - 1

	if x2[0] > x1[0]/2 {
		t.Errorf("x2 median at rate 0 = %.3f, want well below x1's %.3f", x2[0], x1[0])
	}
	if x2[last] < x3[last] {
		t.Errorf("x2 median at rate 1 = %.3f, want above x3's %.3f", x2[last], x3[last])
	}
	if x2[2] <= x2[0] {
		t.Errorf("x2 median at rate 0.5 = %.3f not above rate 0's %.3f", x2[2], x2[0])
	}
}

// TestSkippedChecksOnPartialGrid checks that a grid without rate 0 or 1
// skips the resemblance checks rather than failing them.
func TestSkippedChecksOnPartialGrid(t *testing.T) {
	r := simulation.NewRunner(t)
	result := r.Run(simulation.Scenario{
		Name:    "partial-grid",
		Rates:   simulation.Rates(0.25, 0.75, 0.25),
		Repeats: 4,
	})

	simulation.AssertShape(t, result)
	for _, name := range []string{summary.CheckX2ResemblesX3, summary.CheckX2ResemblesX1} {
		c, ok := simulation.CheckByName(result.Checks, name)
		if !ok {
			t.Fatalf("check %s missing", name)
		}
		if c.Status != summary.StatusSkip {
			t.Errorf("%s = %s, want skip", name, c.Status)
		}
	}
	simulation.AssertChecksPass(t, result)
}
