package protogonos

import (
	"context"
	"testing"
	"time"

	"protogonos/internal/scape"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(Options{StoreKind: "memory"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClientRunPersistsGenerationsAndLineage(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	summary, err := c.Run(ctx, RunRequest{
		RunID:            "run-a",
		Scenario:         scape.XOR{},
		PopulationSize:   4,
		Generations:      2,
		MaxThinkCycles:   4,
		SelectionDivisor: 2,
		ThinkTimeout:     200 * time.Millisecond,
		Seed:             7,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RunID != "run-a" {
		t.Fatalf("unexpected run id: %s", summary.RunID)
	}
	if len(summary.Final) != 4 {
		t.Fatalf("expected 4 scored networks, got %d", len(summary.Final))
	}
	if len(summary.Diagnostics) != 2 {
		t.Fatalf("expected 2 generation diagnostics, got %d", len(summary.Diagnostics))
	}

	gen0, ok, err := c.Generation(ctx, "run-a", 0)
	if err != nil || !ok {
		t.Fatalf("Generation(0): ok=%v err=%v", ok, err)
	}
	if len(gen0) != 4 {
		t.Fatalf("expected 4 scored networks in generation 0, got %d", len(gen0))
	}

	lineage, ok, err := c.Lineage(ctx, "run-a")
	if err != nil || !ok {
		t.Fatalf("Lineage: ok=%v err=%v", ok, err)
	}
	if len(lineage) != 8 {
		t.Fatalf("expected 8 lineage records, got %d", len(lineage))
	}
}

func TestClientRunRejectsMissingScenario(t *testing.T) {
	c := newTestClient(t)
	if _, err := c.Run(context.Background(), RunRequest{RunID: "x", PopulationSize: 1, Generations: 1}); err == nil {
		t.Fatalf("expected error for missing scenario")
	}
}

func TestClientDiagnosticsRederivesFromStoredGenerations(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	if _, err := c.Run(ctx, RunRequest{
		RunID:            "run-b",
		Scenario:         scape.XOR{},
		PopulationSize:   4,
		Generations:      2,
		MaxThinkCycles:   4,
		SelectionDivisor: 2,
		ThinkTimeout:     200 * time.Millisecond,
		Seed:             3,
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	diagnostics, err := c.Diagnostics(ctx, "run-b")
	if err != nil {
		t.Fatalf("Diagnostics: %v", err)
	}
	if len(diagnostics) != 2 {
		t.Fatalf("expected 2 diagnostics entries, got %d", len(diagnostics))
	}
	if diagnostics[0].Generation != 0 || diagnostics[1].Generation != 1 {
		t.Fatalf("unexpected generation indices: %+v", diagnostics)
	}
}

func TestScenarioByNameResolvesXOR(t *testing.T) {
	s, err := ScenarioByName("xor")
	if err != nil {
		t.Fatalf("ScenarioByName: %v", err)
	}
	if s.Name() != "xor" {
		t.Fatalf("unexpected scenario name: %s", s.Name())
	}
	if _, err := ScenarioByName("nonexistent"); err == nil {
		t.Fatalf("expected error for unknown scenario")
	}
}
