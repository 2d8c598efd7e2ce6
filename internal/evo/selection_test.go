package evo

import (
	"testing"

	"protogonos/internal/model"
)

func scoredOf(scores ...float64) model.ScoredNodeRecords {
	out := make(model.ScoredNodeRecords, len(scores))
	for i, s := range scores {
		out[i] = model.ScoredNetwork{Score: s}
	}
	return out
}

func TestChunkSizeIsAtLeastTwo(t *testing.T) {
	if got := chunkSize(3, 10); got != 2 {
		t.Fatalf("chunkSize(3, 10) = %d, want 2", got)
	}
}

func TestChunkSizeRoundsUp(t *testing.T) {
	if got := chunkSize(10, 3); got != 4 {
		t.Fatalf("chunkSize(10, 3) = %d, want 4", got)
	}
}

func TestSelectSurvivorsKeepsTopChunkDescending(t *testing.T) {
	scored := scoredOf(3, 1, 5, 2, 4, 0)
	survivors := SelectSurvivors(scored, 3)

	want := chunkSize(len(scored), 3)
	if len(survivors) != want {
		t.Fatalf("got %d survivors, want %d", len(survivors), want)
	}
	for i := 1; i < len(survivors); i++ {
		if survivors[i].Score > survivors[i-1].Score {
			t.Fatalf("survivors not sorted descending: %+v", survivors)
		}
	}
	if survivors[0].Score != 5 {
		t.Fatalf("expected the best score to survive, got %v", survivors[0].Score)
	}
}

func TestSelectSurvivorsEmptyInput(t *testing.T) {
	if got := SelectSurvivors(nil, 2); got != nil {
		t.Fatalf("expected nil for empty input, got %+v", got)
	}
}

func TestSelectSurvivorsDoesNotMutateInput(t *testing.T) {
	scored := scoredOf(1, 2, 3)
	_ = SelectSurvivors(scored, 2)
	if scored[0].Score != 1 || scored[1].Score != 2 || scored[2].Score != 3 {
		t.Fatalf("SelectSurvivors mutated its input: %+v", scored)
	}
}
