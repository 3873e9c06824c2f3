package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	cfg, result, table := fixture(t)
	run, err := NewRun("mem-1", cfg, result)
	if err != nil {
		t.Fatalf("NewRun() error = %v", err)
	}
	if err := s.SaveRun(ctx, run, result, table); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	got, err := s.GetRun(ctx, "mem")
	if err != nil {
		t.Fatalf("GetRun(prefix) error = %v", err)
	}
	if got.ID != "mem-1" {
		t.Errorf("GetRun() ID = %q, want mem-1", got.ID)
	}

	loaded, err := s.LoadResult(ctx, "mem-1")
	if err != nil {
		t.Fatalf("LoadResult() error = %v", err)
	}
	if loaded != result {
		t.Error("LoadResult() should return the saved result")
	}
	tbl, err := s.LoadTable(ctx, "mem-1")
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if tbl != table {
		t.Error("LoadTable() should return the saved table")
	}

	if err := s.SaveRun(ctx, run, result, table); err == nil {
		t.Error("SaveRun() with duplicate ID should fail")
	}
}

func TestMemoryStore_ListAndDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	cfg, result, table := fixture(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "new"} {
		run, _ := NewRun(id, cfg, result)
		run.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if err := s.SaveRun(ctx, run, result, table); err != nil {
			t.Fatalf("SaveRun(%s) error = %v", id, err)
		}
	}

	runs, _ := s.ListRuns(ctx)
	if len(runs) != 2 || runs[0].ID != "new" {
		t.Fatalf("ListRuns() = %v, want new first", runs)
	}

	if err := s.DeleteRun(ctx, "old"); err != nil {
		t.Fatalf("DeleteRun() error = %v", err)
	}
	if _, err := s.GetRun(ctx, "old"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun() after delete error = %v, want ErrRunNotFound", err)
	}
}

func TestMemoryStore_Ambiguous(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	cfg, result, table := fixture(t)
	for _, id := range []string{"run-a", "run-b"} {
		run, _ := NewRun(id, cfg, result)
		s.SaveRun(ctx, run, result, table)
	}

	if _, err := s.GetRun(ctx, "run"); !errors.Is(err, ErrAmbiguousID) {
		t.Errorf("GetRun(run) error = %v, want ErrAmbiguousID", err)
	}
	if _, err := s.GetRun(ctx, ""); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun(\"\") error = %v, want ErrRunNotFound", err)
	}
	if err := s.SaveRun(ctx, Run{}, result, table); err == nil {
		t.Error("SaveRun() without ID should fail")
	}
}
