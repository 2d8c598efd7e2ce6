package evo

import (
	"errors"
	"math/rand"
	"testing"

	"protogonos/internal/idgen"
	"protogonos/internal/model"
)

func directSensorToActuator() model.NodeRecords {
	sync := "vision"
	hook := "motor"
	return model.NodeRecords{
		1: {NodeID: 1, Type: model.NodeType{Kind: model.NodeKindSensor, OutboundCount: 1}, SyncFunctionID: &sync},
		2: {
			NodeID:       2,
			Type:         model.NodeType{Kind: model.NodeKindActuator},
			OutputHookID: &hook,
			Inbound: map[model.ConnectionID]model.InactiveConnection{
				"c1": {FromNode: 1, Weight: 1, ConnectionOrder: model.Uint32Ptr(0)},
			},
		},
	}
}

func TestAddNeuronSpliceFailsLoudlyOnSensorToActuatorOutSplice(t *testing.T) {
	records := directSensorToActuator()
	gen := idgen.NewNodeIDGenerator(records.MaxNodeID())

	_, err := AddNeuronSplice(gen, records, rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatalf("expected a fatal error splicing a direct sensor->actuator edge")
	}
	if errors.Is(err, ErrNoPrecondition) {
		t.Fatalf("sensor->actuator out-splice must be a fatal invariant violation, not a resamplable precondition: %v", err)
	}
}

func TestChangeNeuronLayerStaysWithinOneToMaxLayerPlusOne(t *testing.T) {
	sync := "vision"
	act := "identity"
	records := model.NodeRecords{
		1: {NodeID: 1, Type: model.NodeType{Kind: model.NodeKindSensor, OutboundCount: 1}, SyncFunctionID: &sync},
		2: {NodeID: 2, Layer: 3, Type: model.NodeType{Kind: model.NodeKindNeuron}, ActivationFunctionID: &act,
			Inbound: map[model.ConnectionID]model.InactiveConnection{"c1": {FromNode: 1, Weight: 1, ConnectionOrder: model.Uint32Ptr(0)}}},
	}
	gen := idgen.NewNodeIDGenerator(records.MaxNodeID())

	for seed := int64(0); seed < 100; seed++ {
		out, err := ChangeNeuronLayer(gen, records, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatalf("ChangeNeuronLayer: %v", err)
		}
		if out[2].Layer < 1 || out[2].Layer > 4 {
			t.Fatalf("layer %d outside [1, max_layer+1]=[1,4]", out[2].Layer)
		}
	}
}

func TestAddSensorLinkRespectsMaximumVectorLengthAndIncrementsCount(t *testing.T) {
	sync := "vision"
	act := "identity"
	records := model.NodeRecords{
		1: {NodeID: 1, Type: model.NodeType{Kind: model.NodeKindSensor, OutboundCount: 1}, SyncFunctionID: &sync, MaximumVectorLength: model.Uint32Ptr(1)},
		2: {NodeID: 2, Type: model.NodeType{Kind: model.NodeKindNeuron}, ActivationFunctionID: &act,
			Inbound: map[model.ConnectionID]model.InactiveConnection{"c1": {FromNode: 1, Weight: 1, ConnectionOrder: model.Uint32Ptr(0)}}},
	}
	gen := idgen.NewNodeIDGenerator(records.MaxNodeID())

	// Sensor already at its maximum_vector_length: no eligible sensor.
	if _, err := AddSensorLink(gen, records, rand.New(rand.NewSource(1))); !errors.Is(err, ErrNoPrecondition) {
		t.Fatalf("expected ErrNoPrecondition once sensor is at its maximum_vector_length, got %v", err)
	}

	records[1] = model.NodeRecord{NodeID: 1, Type: model.NodeType{Kind: model.NodeKindSensor, OutboundCount: 1}, SyncFunctionID: &sync, MaximumVectorLength: model.Uint32Ptr(2)}
	out, err := AddSensorLink(gen, records, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("AddSensorLink: %v", err)
	}
	if out[1].Type.OutboundCount != 2 {
		t.Fatalf("expected outbound_count to increment to 2, got %d", out[1].Type.OutboundCount)
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("mutated records invalid: %v", err)
	}
}

func TestRemoveSensorLinkRequiresSpareOutboundAndSpareInbound(t *testing.T) {
	sync := "vision"
	act := "identity"
	records := model.NodeRecords{
		1: {NodeID: 1, Type: model.NodeType{Kind: model.NodeKindSensor, OutboundCount: 1}, SyncFunctionID: &sync},
		2: {NodeID: 2, Type: model.NodeType{Kind: model.NodeKindNeuron}, ActivationFunctionID: &act,
			Inbound: map[model.ConnectionID]model.InactiveConnection{"c1": {FromNode: 1, Weight: 1, ConnectionOrder: model.Uint32Ptr(0)}}},
	}
	gen := idgen.NewNodeIDGenerator(records.MaxNodeID())

	// Sensor has outbound_count == 1: removing its only link is disallowed.
	if _, err := RemoveSensorLink(gen, records, rand.New(rand.NewSource(1))); !errors.Is(err, ErrNoPrecondition) {
		t.Fatalf("expected ErrNoPrecondition when sensor's outbound_count == 1, got %v", err)
	}

	// Give the sensor a second outbound edge, but onto a neuron whose only
	// inbound is that edge: still disallowed, removing it would orphan N3
	// (and removing the other edge would orphan N2).
	records[1] = model.NodeRecord{NodeID: 1, Type: model.NodeType{Kind: model.NodeKindSensor, OutboundCount: 2}, SyncFunctionID: &sync}
	records[3] = model.NodeRecord{NodeID: 3, Type: model.NodeType{Kind: model.NodeKindNeuron}, ActivationFunctionID: &act,
		Inbound: map[model.ConnectionID]model.InactiveConnection{"c2": {FromNode: 1, Weight: 1, ConnectionOrder: model.Uint32Ptr(0)}}}
	if _, err := RemoveSensorLink(gen, records, rand.New(rand.NewSource(1))); !errors.Is(err, ErrNoPrecondition) {
		t.Fatalf("expected ErrNoPrecondition when the only downstream has no spare inbound, got %v", err)
	}

	// Give N2 a second, non-sensor inbound: now removing the sensor's edge
	// into N2 is legal.
	rec2 := records[2]
	rec2.Inbound["c3"] = model.InactiveConnection{FromNode: 3, Weight: 1}
	records[2] = rec2

	out, err := RemoveSensorLink(gen, records, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("RemoveSensorLink: %v", err)
	}
	if out[1].Type.OutboundCount != 1 {
		t.Fatalf("expected sensor outbound_count to decrement to 1, got %d", out[1].Type.OutboundCount)
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("mutated records invalid: %v", err)
	}
}
