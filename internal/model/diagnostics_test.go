package model

import "testing"

func TestSummarizeGenerationComputesBestMeanWorst(t *testing.T) {
	scored := ScoredNodeRecords{
		{NetworkID: "a", Score: 3},
		{NetworkID: "b", Score: 1},
		{NetworkID: "c", Score: 5},
	}
	d := SummarizeGeneration(2, scored)

	if d.Generation != 2 || d.PopulationN != 3 {
		t.Fatalf("unexpected identity fields: %+v", d)
	}
	if d.BestScore != 5 {
		t.Fatalf("BestScore = %v, want 5", d.BestScore)
	}
	if d.WorstScore != 1 {
		t.Fatalf("WorstScore = %v, want 1", d.WorstScore)
	}
	if d.MeanScore != 3 {
		t.Fatalf("MeanScore = %v, want 3", d.MeanScore)
	}
}

func TestSummarizeGenerationEmptyPopulation(t *testing.T) {
	d := SummarizeGeneration(0, nil)
	if d.PopulationN != 0 || d.BestScore != 0 || d.MeanScore != 0 || d.WorstScore != 0 {
		t.Fatalf("expected zero value for empty population, got %+v", d)
	}
}
