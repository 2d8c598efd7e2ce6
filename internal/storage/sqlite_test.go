//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"protogonos/internal/model"
)

func TestSQLiteStoreSaveAndGetGeneration(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s := &SQLiteStore{path: dbPath}
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	scored := sampleScored(0.75)
	if err := s.SaveGeneration(ctx, "run-1", 2, scored); err != nil {
		t.Fatalf("SaveGeneration: %v", err)
	}

	got, ok, err := s.GetGeneration(ctx, "run-1", 2)
	if err != nil {
		t.Fatalf("GetGeneration: %v", err)
	}
	if !ok || len(got) != 1 || got[0].Score != 0.75 {
		t.Fatalf("unexpected generation: ok=%v got=%+v", ok, got)
	}

	if err := s.SaveGeneration(ctx, "run-1", 2, sampleScored(0.9)); err != nil {
		t.Fatalf("SaveGeneration overwrite: %v", err)
	}
	got, _, _ = s.GetGeneration(ctx, "run-1", 2)
	if got[0].Score != 0.9 {
		t.Fatalf("expected overwrite to take effect, got %+v", got)
	}
}

func TestSQLiteStoreSaveAndGetLineage(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s := &SQLiteStore{path: dbPath}
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	lineage := []model.LineageRecord{
		{Generation: 0, NetworkID: "net-a", Score: 1.0, MutationApplied: "add_bias"},
	}
	if err := s.SaveLineage(ctx, "run-1", lineage); err != nil {
		t.Fatalf("SaveLineage: %v", err)
	}

	got, ok, err := s.GetLineage(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetLineage: %v", err)
	}
	if !ok || len(got) != 1 || got[0].NetworkID != "net-a" {
		t.Fatalf("unexpected lineage: ok=%v got=%+v", ok, got)
	}
}

func TestSQLiteStoreGetGenerationMissing(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s := &SQLiteStore{path: dbPath}
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if _, ok, err := s.GetGeneration(ctx, "run-1", 0); err != nil || ok {
		t.Fatalf("expected missing generation, got ok=%v err=%v", ok, err)
	}
}

func TestSQLiteStoreRejectsUseBeforeInit(t *testing.T) {
	ctx := context.Background()
	s := &SQLiteStore{path: filepath.Join(t.TempDir(), "test.db")}

	if err := s.SaveGeneration(ctx, "run-1", 0, sampleScored(1)); err == nil {
		t.Fatalf("expected error saving before Init")
	}
}
