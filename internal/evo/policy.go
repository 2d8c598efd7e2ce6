package evo

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"protogonos/internal/idgen"
	"protogonos/internal/model"
)

// MutationCount implements spec.md §4.3's k = ceil(u * sqrt(n)) rule: u is
// a uniform [0,1) sample (a zero draw is nudged to 1e-9), k is clamped to
// at least 1, and n is the candidate's current node count, so
// larger networks tend to receive proportionally more mutations per
// replication without a hard cap.
func MutationCount(nodeCount int, rng *rand.Rand) int {
	if nodeCount < 1 {
		nodeCount = 1
	}
	u := rng.Float64()
	if u == 0 {
		u = 1e-9
	}
	k := int(math.Ceil(u * math.Sqrt(float64(nodeCount))))
	if k < 1 {
		k = 1
	}
	return k
}

// ApplyMutations draws MutationCount(len(records), rng) mutation kinds
// uniformly from catalog and applies each in turn. A kind whose
// precondition fails is resampled with another uniformly-chosen kind
// (possibly the same one) rather than aborting the whole pass; it gives up after maxResamples
// consecutive failures so a catalog with no eligible mutations at all
// can't loop forever.
func ApplyMutations(gen *idgen.NodeIDGenerator, records model.NodeRecords, catalog map[string]Mutation, rng *rand.Rand) (model.NodeRecords, error) {
	next, _, err := ApplyMutationsNamed(gen, records, catalog, rng)
	return next, err
}

// ApplyMutationsNamed behaves like ApplyMutations but also returns the
// kind name of every mutation that actually applied, in the order they
// were applied, for lineage bookkeeping.
func ApplyMutationsNamed(gen *idgen.NodeIDGenerator, records model.NodeRecords, catalog map[string]Mutation, rng *rand.Rand) (model.NodeRecords, []string, error) {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	if len(names) == 0 {
		return records, nil, nil
	}

	var applied []string
	current := records
	count := MutationCount(len(current), rng)
	for i := 0; i < count; i++ {
		const maxResamples = 2 * 19
		for attempt := 0; attempt < maxResamples; attempt++ {
			name := names[rng.Intn(len(names))]
			next, err := catalog[name](gen, current, rng)
			if err == nil {
				current = next
				applied = append(applied, name)
				break
			}
			if !errors.Is(err, ErrNoPrecondition) {
				return nil, nil, fmt.Errorf("mutation %q: %w", name, err)
			}
			// precondition failed; resample a different kind.
		}
	}
	return current, applied, nil
}
