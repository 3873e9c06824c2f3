package summary

import (
	"fmt"
	"math"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/constants"
)

// Status is the outcome of a check.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

// Check is one evaluated sanity check.
type Check struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail"`
}

// Names of the sanity checks.
const (
	CheckOrdering         = "percentile-ordering"
	CheckX2ResemblesX3    = "x2-resembles-x3-at-rate-0"
	CheckX2ResemblesX1    = "x2-resembles-x1-at-rate-1"
	CheckX1DominatesX3    = "x1-dominates-x3"
	featureAlways         = "x1"
	featureSwitched       = "x2"
	featureNeverUsed      = "x3"
	skipMissingRateDetail = "rate %g not in sweep"
)

// Evaluate runs the sanity checks against a summary table:
//   - every band is ordered
//   - at rate 0 the x2 and x3 bands overlap (both uninformative)
//   - at rate 1 the x2 and x1 bands overlap (both informative)
//   - at every rate x1's band dominates x3's
func Evaluate(t *Table) []Check {
	checks := []Check{orderingCheck(t)}
	checks = append(checks,
		resembleCheck(t, CheckX2ResemblesX3, 0, featureSwitched, featureNeverUsed),
		resembleCheck(t, CheckX2ResemblesX1, 1, featureSwitched, featureAlways),
		dominanceCheck(t),
	)
	return checks
}

// Failed returns the checks that did not pass or skip.
func Failed(checks []Check) []Check {
	var out []Check
	for _, c := range checks {
		if c.Status == StatusFail {
			out = append(out, c)
		}
	}
	return out
}

func orderingCheck(t *Table) Check {
	if err := t.CheckOrdering(); err != nil {
		return Check{Name: CheckOrdering, Status: StatusFail, Detail: err.Error()}
	}
	return Check{Name: CheckOrdering, Status: StatusPass, Detail: fmt.Sprintf("%d rates x %d inputs ordered", len(t.Rows), len(t.Features))}
}

func resembleCheck(t *Table, name string, rate float64, a, b string) Check {
	row := t.rowAt(rate)
	if row < 0 {
		return Check{Name: name, Status: StatusSkip, Detail: fmt.Sprintf(skipMissingRateDetail, rate)}
	}
	ba, okA := t.Band(row, a)
	bb, okB := t.Band(row, b)
	if !okA || !okB {
		return Check{Name: name, Status: StatusSkip, Detail: fmt.Sprintf("inputs %s/%s not in table", a, b)}
	}
	detail := fmt.Sprintf("%s [%.3g, %.3g] vs %s [%.3g, %.3g]", a, ba.Lower, ba.Upper, b, bb.Lower, bb.Upper)
	if Overlaps(ba, bb) {
		return Check{Name: name, Status: StatusPass, Detail: detail}
	}
	return Check{Name: name, Status: StatusFail, Detail: detail}
}

func dominanceCheck(t *Table) Check {
	if t.FeatureIndex(featureAlways) < 0 || t.FeatureIndex(featureNeverUsed) < 0 {
		return Check{Name: CheckX1DominatesX3, Status: StatusSkip, Detail: "inputs x1/x3 not in table"}
	}
	for i, row := range t.Rows {
		hi, _ := t.Band(i, featureAlways)
		lo, _ := t.Band(i, featureNeverUsed)
		if !Dominates(hi, lo) {
			return Check{
				Name:   CheckX1DominatesX3,
				Status: StatusFail,
				Detail: fmt.Sprintf("rate %g: x1 (%.3g, %.3g, %.3g) vs x3 (%.3g, %.3g, %.3g)", row.Rate, hi.Lower, hi.Median, hi.Upper, lo.Lower, lo.Median, lo.Upper),
			}
		}
	}
	return Check{Name: CheckX1DominatesX3, Status: StatusPass, Detail: fmt.Sprintf("holds at all %d rates", len(t.Rows))}
}

// rowAt returns the row index whose rate equals rate, or -1.
func (t *Table) rowAt(rate float64) int {
	for i, row := range t.Rows {
		if math.Abs(row.Rate-rate) < constants.RateTolerance {
			return i
		}
	}
	return -1
}
