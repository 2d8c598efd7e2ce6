package storage

import (
	"context"
	"fmt"
	"sync"

	"protogonos/internal/model"
)

type generationKey struct {
	runID      string
	generation int
}

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	generations map[generationKey]model.ScoredNodeRecords
	lineage     map[string][]model.LineageRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.generations = make(map[generationKey]model.ScoredNodeRecords)
	s.lineage = make(map[string][]model.LineageRecord)
	return nil
}

func (s *MemoryStore) SaveGeneration(_ context.Context, runID string, generation int, scored model.ScoredNodeRecords) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return fmt.Errorf("store is not initialized")
	}
	copied := append(model.ScoredNodeRecords(nil), scored...)
	s.generations[generationKey{runID: runID, generation: generation}] = copied
	return nil
}

func (s *MemoryStore) GetGeneration(_ context.Context, runID string, generation int) (model.ScoredNodeRecords, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scored, ok := s.generations[generationKey{runID: runID, generation: generation}]
	if !ok {
		return nil, false, nil
	}
	return append(model.ScoredNodeRecords(nil), scored...), true, nil
}

func (s *MemoryStore) SaveLineage(_ context.Context, runID string, lineage []model.LineageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.LineageRecord, len(lineage))
	copy(copied, lineage)
	s.lineage[runID] = copied
	return nil
}

func (s *MemoryStore) GetLineage(_ context.Context, runID string) ([]model.LineageRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lineage, ok := s.lineage[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.LineageRecord, len(lineage))
	copy(copied, lineage)
	return copied, true, nil
}
