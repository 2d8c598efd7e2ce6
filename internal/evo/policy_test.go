package evo

import (
	"math/rand"
	"testing"

	"protogonos/internal/idgen"
	"protogonos/internal/model"
)

func TestMutationCountIsAtLeastOne(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		if got := MutationCount(5, rng); got < 1 {
			t.Fatalf("MutationCount returned %d, want >= 1", got)
		}
	}
}

func TestMutationCountGrowsWithNodeCount(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	small := MutationCount(1, rng)
	large := MutationCount(10000, rng)
	if large < small {
		t.Fatalf("expected mutation count to scale with node count: small=%d large=%d", small, large)
	}
}

func singleNeuronWithBias() model.NodeRecords {
	bias := 0.1
	act := "identity"
	sync := "vision"
	hook := "motor"
	return model.NodeRecords{
		1: {NodeID: 1, Type: model.NodeType{Kind: model.NodeKindSensor, OutboundCount: 1}, SyncFunctionID: &sync},
		2: {
			NodeID:               2,
			Type:                 model.NodeType{Kind: model.NodeKindNeuron},
			Bias:                 &bias,
			ActivationFunctionID: &act,
			Inbound: map[model.ConnectionID]model.InactiveConnection{
				"c1": {FromNode: 1, Weight: 1, ConnectionOrder: model.Uint32Ptr(0)},
			},
		},
		3: {
			NodeID: 3,
			Type:   model.NodeType{Kind: model.NodeKindActuator},
			OutputHookID: &hook,
			Inbound: map[model.ConnectionID]model.InactiveConnection{
				"c2": {FromNode: 2, Weight: 1},
			},
		},
	}
}

func TestApplyMutationsAppliesAtLeastOneKind(t *testing.T) {
	records := singleNeuronWithBias()
	catalog := NewCatalog([]string{"vision"}, []string{"motor"})
	rng := rand.New(rand.NewSource(3))
	gen := idgen.NewNodeIDGenerator(records.MaxNodeID())

	_, kinds, err := ApplyMutationsNamed(gen, records, catalog, rng)
	if err != nil {
		t.Fatalf("ApplyMutationsNamed: %v", err)
	}
	if len(kinds) == 0 {
		t.Fatalf("expected at least one mutation kind to apply")
	}
}

func TestApplyMutationsPreservesValidity(t *testing.T) {
	records := singleNeuronWithBias()
	catalog := NewCatalog([]string{"vision"}, []string{"motor"})
	rng := rand.New(rand.NewSource(11))
	gen := idgen.NewNodeIDGenerator(records.MaxNodeID())

	for i := 0; i < 25; i++ {
		next, err := ApplyMutations(gen, records, catalog, rng)
		if err != nil {
			t.Fatalf("ApplyMutations iteration %d: %v", i, err)
		}
		if err := next.Validate(); err != nil {
			t.Fatalf("mutated records invalid on iteration %d: %v", i, err)
		}
		records = next
	}
}

func TestApplyMutationsEmptyCatalogIsNoOp(t *testing.T) {
	records := singleNeuronWithBias()
	rng := rand.New(rand.NewSource(1))
	gen := idgen.NewNodeIDGenerator(records.MaxNodeID())

	next, err := ApplyMutations(gen, records, map[string]Mutation{}, rng)
	if err != nil {
		t.Fatalf("ApplyMutations: %v", err)
	}
	if len(next) != len(records) {
		t.Fatalf("expected no-op on empty catalog, got %d records", len(next))
	}
}
