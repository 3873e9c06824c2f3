package store

import (
	"context"
	"fmt"
	"math"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/constants"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/summary"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/sweep"
)

// ValidationError describes an inconsistency in a stored run.
type ValidationError struct {
	RunID string `json:"run_id"`
	Field string `json:"field"` // "samples", "bands", "importance", "rate"
	Where string `json:"where,omitempty"`
	Issue string `json:"issue"`
}

// String returns a human-readable description of the validation error.
func (e ValidationError) String() string {
	if e.Where == "" {
		return fmt.Sprintf("%s: %s %s", e.RunID, e.Field, e.Issue)
	}
	return fmt.Sprintf("%s: %s at %s %s", e.RunID, e.Field, e.Where, e.Issue)
}

// ValidateRun loads a run and checks that its samples and bands agree with its metadata.
// Returns validation errors for:
// - Missing or extra rates or repeats
// - Importance vectors whose length differs from the feature list
// - Bands whose rates disagree with the samples, or that are not ordered
func ValidateRun(ctx context.Context, s RunStore, id string) ([]ValidationError, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	result, err := s.LoadResult(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load samples: %w", err)
	}
	table, err := s.LoadTable(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bands: %w", err)
	}
	return ValidateRecords(*run, result, table), nil
}

// ValidateRecords checks a run, its result and its table against each other.
func ValidateRecords(run Run, result *sweep.Result, table *summary.Table) []ValidationError {
	var errs []ValidationError
	add := func(field, where, issue string) {
		errs = append(errs, ValidationError{RunID: run.ID, Field: field, Where: where, Issue: issue})
	}

	if len(result.Points) != run.Steps {
		add("samples", "", fmt.Sprintf("has %d rates, want %d", len(result.Points), run.Steps))
	}
	for ri, p := range result.Points {
		where := fmt.Sprintf("rate %g", p.Rate)
		if len(p.Samples) != run.Repeats {
			add("samples", where, fmt.Sprintf("has %d repeats, want %d", len(p.Samples), run.Repeats))
		}
		if ri > 0 && p.Rate <= result.Points[ri-1].Rate {
			add("rate", where, "is not increasing")
		}
		for _, smp := range p.Samples {
			if len(smp.Importance) != len(run.Features) {
				add("importance", fmt.Sprintf("%s repeat %d", where, smp.Repeat),
					fmt.Sprintf("has %d values, want %d", len(smp.Importance), len(run.Features)))
			}
		}
	}

	if len(table.Rows) != len(result.Points) {
		add("bands", "", fmt.Sprintf("has %d rates, samples have %d", len(table.Rows), len(result.Points)))
		return errs
	}
	for ri, row := range table.Rows {
		where := fmt.Sprintf("rate %g", row.Rate)
		if math.Abs(row.Rate-result.Points[ri].Rate) > constants.RateTolerance {
			add("bands", where, fmt.Sprintf("disagrees with sample rate %g", result.Points[ri].Rate))
		}
		if len(row.Bands) != len(run.Features) {
			add("bands", where, fmt.Sprintf("has %d inputs, want %d", len(row.Bands), len(run.Features)))
		}
		for _, b := range row.Bands {
			if !b.Ordered() {
				add("bands", where+" "+b.Feature, "is not ordered")
			}
		}
	}
	return errs
}
