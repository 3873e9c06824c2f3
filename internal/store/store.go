package store

import (
	"context"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/summary"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/sweep"
)

// RunStore defines the interface for persisting experiment runs.
type RunStore interface {
	// SaveRun stores a run together with its samples and bands.
	// Saving is all-or-nothing.
	SaveRun(ctx context.Context, run Run, result *sweep.Result, table *summary.Table) error

	// ListRuns returns all runs, newest first.
	ListRuns(ctx context.Context) ([]Run, error)

	// GetRun resolves an exact ID or a unique ID prefix.
	GetRun(ctx context.Context, id string) (*Run, error)

	LoadResult(ctx context.Context, id string) (*sweep.Result, error)
	LoadTable(ctx context.Context, id string) (*summary.Table, error)
	DeleteRun(ctx context.Context, id string) error

	Close() error
}

var (
	_ RunStore = (*SQLiteStore)(nil)
	_ RunStore = (*MemoryStore)(nil)
)
