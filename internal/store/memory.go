package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/summary"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/sweep"
)

type memoryEntry struct {
	run    Run
	result *sweep.Result
	table  *summary.Table
}

// MemoryStore implements RunStore without touching disk.
// Used for runs that should not be persisted and in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]memoryEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]memoryEntry)}
}

// SaveRun stores a run. Saving an existing ID fails.
func (s *MemoryStore) SaveRun(ctx context.Context, run Run, result *sweep.Result, table *summary.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		return fmt.Errorf("run ID is required")
	}
	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("run already exists: %s", run.ID)
	}

	s.runs[run.ID] = memoryEntry{run: run, result: result, table: table}
	return nil
}

// ListRuns returns all runs, newest first.
func (s *MemoryStore) ListRuns(ctx context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]Run, 0, len(s.runs))
	for _, e := range s.runs {
		runs = append(runs, e.run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].ID < runs[j].ID
	})
	return runs, nil
}

// GetRun resolves an exact ID or a unique ID prefix.
func (s *MemoryStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	run := e.run
	return &run, nil
}

// LoadResult returns the stored sweep result.
func (s *MemoryStore) LoadResult(ctx context.Context, id string) (*sweep.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.result, nil
}

// LoadTable returns the stored percentile table.
func (s *MemoryStore) LoadTable(ctx context.Context, id string) (*summary.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.table, nil
}

// DeleteRun removes a run.
func (s *MemoryStore) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	delete(s.runs, e.run.ID)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) lookup(id string) (memoryEntry, error) {
	if id == "" {
		return memoryEntry{}, ErrRunNotFound
	}
	if e, ok := s.runs[id]; ok {
		return e, nil
	}

	var match memoryEntry
	n := 0
	for key, e := range s.runs {
		if strings.HasPrefix(key, id) {
			match = e
			n++
		}
	}
	switch n {
	case 0:
		return memoryEntry{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return match, nil
	default:
		return memoryEntry{}, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
}
