package simulation

import (
	"context"
	"testing"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/store"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/summary"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/sweep"
	"github.com/google/uuid"
)

// Runner runs scenarios against a real store, forest and sweep runner.
type Runner struct {
	t     *testing.T
	store *store.SQLiteStore
}

// NewRunner creates a simulation runner with an isolated SQLite store
// and sandboxed HOME directory.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	s, err := store.Open(tmpDir)
	if err != nil {
		t.Fatalf("NewRunner: failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return &Runner{t: t, store: s}
}

// Run executes the scenario and returns the collected results.
func (r *Runner) Run(scenario Scenario) SimulationResult {
	r.t.Helper()
	ctx := context.Background()

	// Phase 1: Build and validate the configuration.
	cfg := scenario.Config()
	if err := cfg.Validate(); err != nil {
		r.t.Fatalf("scenario %s: invalid config: %v", scenario.Name, err)
	}

	// Phase 2: Sweep.
	runner := sweep.NewRunner(cfg)
	runner.RunID = uuid.NewString()
	result, err := runner.Run(ctx)
	if err != nil {
		r.t.Fatalf("scenario %s: sweep: %v", scenario.Name, err)
	}
	if err := result.Validate(cfg.Sweep.Steps(), cfg.Sweep.Repeats); err != nil {
		r.t.Fatalf("scenario %s: %v", scenario.Name, err)
	}

	// Phase 3: Summarize and persist.
	p := summary.Percentiles{
		Lower:  cfg.Percentiles.Lower,
		Median: cfg.Percentiles.Median,
		Upper:  cfg.Percentiles.Upper,
	}
	table, err := summary.Summarize(result, p)
	if err != nil {
		r.t.Fatalf("scenario %s: summarize: %v", scenario.Name, err)
	}
	run, err := store.NewRun(runner.RunID, cfg, result)
	if err != nil {
		r.t.Fatalf("scenario %s: %v", scenario.Name, err)
	}
	run.Label = scenario.Name
	if err := r.store.SaveRun(ctx, run, result, table); err != nil {
		r.t.Fatalf("scenario %s: save: %v", scenario.Name, err)
	}

	// Phase 4: Reload from the store so assertions see what was persisted.
	stored, err := r.store.LoadTable(ctx, run.ID)
	if err != nil {
		r.t.Fatalf("scenario %s: reload: %v", scenario.Name, err)
	}

	return SimulationResult{
		Scenario: scenario,
		Config:   cfg,
		Run:      run,
		Result:   result,
		Table:    stored,
		Checks:   summary.Evaluate(stored),
		Store:    r.store,
	}
}
