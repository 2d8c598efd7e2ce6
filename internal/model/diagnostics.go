package model

// GenerationDiagnostics summarises one generation's scored population:
// read-only reporting alongside the ScoredNodeRecords a scheduler returns
// (spec.md §10 supplements the distilled spec's bare score list with the
// per-generation summary the teacher's population monitor used to print).
type GenerationDiagnostics struct {
	Generation  int     `json:"generation"`
	PopulationN int     `json:"population_n"`
	BestScore   float64 `json:"best_score"`
	MeanScore   float64 `json:"mean_score"`
	WorstScore  float64 `json:"worst_score"`
}

// SummarizeGeneration computes GenerationDiagnostics over one generation's
// scored candidates. Returns the zero value when scored is empty.
func SummarizeGeneration(generation int, scored ScoredNodeRecords) GenerationDiagnostics {
	d := GenerationDiagnostics{Generation: generation, PopulationN: len(scored)}
	if len(scored) == 0 {
		return d
	}

	d.BestScore = scored[0].Score
	d.WorstScore = scored[0].Score
	var sum float64
	for _, s := range scored {
		sum += s.Score
		if s.Score > d.BestScore {
			d.BestScore = s.Score
		}
		if s.Score < d.WorstScore {
			d.WorstScore = s.Score
		}
	}
	d.MeanScore = sum / float64(len(scored))
	return d
}
