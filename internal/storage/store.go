// Package storage persists generation checkpoints and run lineage for the
// evolution engine (spec.md §10.1): the record-form data that survives
// between scheduler runs and between process restarts.
package storage

import (
	"context"

	"protogonos/internal/model"
)

// Store defines transaction-like persistence operations over one run's
// generation history.
type Store interface {
	Init(ctx context.Context) error
	SaveGeneration(ctx context.Context, runID string, generation int, scored model.ScoredNodeRecords) error
	GetGeneration(ctx context.Context, runID string, generation int) (model.ScoredNodeRecords, bool, error)
	SaveLineage(ctx context.Context, runID string, lineage []model.LineageRecord) error
	GetLineage(ctx context.Context, runID string) ([]model.LineageRecord, bool, error)
}
