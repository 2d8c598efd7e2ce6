package evo

import "protogonos/internal/model"

// SelectSurvivors implements spec.md §4.5's selection rule: rank scored
// candidates descending by score, split into chunks of
// max(ceil(population/divisor), 2), and keep only the first (best) chunk
// as next generation's parent pool.
func SelectSurvivors(scored model.ScoredNodeRecords, divisor int) model.ScoredNodeRecords {
	if len(scored) == 0 {
		return nil
	}
	ranked := append(model.ScoredNodeRecords(nil), scored...)
	sortByScoreDescending(ranked)

	chunkSize := chunkSize(len(ranked), divisor)
	if chunkSize > len(ranked) {
		chunkSize = len(ranked)
	}
	return ranked[:chunkSize]
}

func chunkSize(population, divisor int) int {
	if divisor < 1 {
		divisor = 1
	}
	size := (population + divisor - 1) / divisor
	if size < 2 {
		size = 2
	}
	return size
}

func sortByScoreDescending(s model.ScoredNodeRecords) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].Score > s[j-1].Score; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
