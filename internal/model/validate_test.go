package model

import "testing"

func sensorRecord(id NodeID, outboundCount uint32) NodeRecord {
	sync := "sync"
	return NodeRecord{
		NodeID:         id,
		Type:           NodeType{Kind: NodeKindSensor, OutboundCount: outboundCount},
		SyncFunctionID: &sync,
	}
}

func neuronRecord(id NodeID, inbound map[ConnectionID]InactiveConnection) NodeRecord {
	activation := "identity"
	return NodeRecord{
		NodeID:               id,
		Type:                 NodeType{Kind: NodeKindNeuron},
		Inbound:              inbound,
		ActivationFunctionID: &activation,
		Learning:             NoLearning,
	}
}

func actuatorRecord(id NodeID, inbound map[ConnectionID]InactiveConnection) NodeRecord {
	hook := "hook"
	return NodeRecord{
		NodeID:       id,
		Type:         NodeType{Kind: NodeKindActuator},
		Inbound:      inbound,
		OutputHookID: &hook,
	}
}

func validNetwork() NodeRecords {
	order := Uint32Ptr(0)
	return NodeRecords{
		1: sensorRecord(1, 1),
		2: neuronRecord(2, map[ConnectionID]InactiveConnection{
			"c1": {ConnectionOrder: order, FromNode: 1, Weight: 0.5},
		}),
		3: actuatorRecord(3, map[ConnectionID]InactiveConnection{
			"c2": {FromNode: 2, Weight: 1.0},
		}),
	}
}

func TestValidateAcceptsWellFormedNetwork(t *testing.T) {
	if err := validNetwork().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsMismatchedNodeID(t *testing.T) {
	records := validNetwork()
	rec := records[2]
	rec.NodeID = 99
	records[2] = rec
	if err := records.Validate(); err == nil {
		t.Fatalf("expected error for mismatched node id")
	}
}

func TestValidateRejectsNeuronMissingActivation(t *testing.T) {
	records := validNetwork()
	rec := records[2]
	rec.ActivationFunctionID = nil
	records[2] = rec
	if err := records.Validate(); err == nil {
		t.Fatalf("expected error for neuron missing activation_function_id")
	}
}

func TestValidateRejectsSensorWithInboundConnections(t *testing.T) {
	records := validNetwork()
	rec := records[1]
	rec.Inbound = map[ConnectionID]InactiveConnection{"x": {FromNode: 2, Weight: 1}}
	records[1] = rec
	if err := records.Validate(); err == nil {
		t.Fatalf("expected error for sensor with inbound connections")
	}
}

func TestValidateRejectsInboundFromActuator(t *testing.T) {
	records := validNetwork()
	rec := records[2]
	rec.Inbound["bad"] = InactiveConnection{FromNode: 3, Weight: 1}
	records[2] = rec
	if err := records.Validate(); err == nil {
		t.Fatalf("expected error for inbound connection sourced from an actuator")
	}
}

func TestValidateRejectsActuatorReferencedAsFromNode(t *testing.T) {
	records := validNetwork()
	rec := records[3]
	rec.Inbound["extra"] = InactiveConnection{FromNode: 2, Weight: 1}
	records[3] = rec
	records[2] = neuronRecord(2, map[ConnectionID]InactiveConnection{
		"c1": {ConnectionOrder: Uint32Ptr(0), FromNode: 1, Weight: 0.5},
		"c3": {FromNode: 3, Weight: 0.5},
	})
	if err := records.Validate(); err == nil {
		t.Fatalf("expected error for actuator referenced as a from_node")
	}
}

func TestValidateRejectsConnectionOrderGap(t *testing.T) {
	records := validNetwork()
	rec := records[2]
	rec.Inbound["c1"] = InactiveConnection{ConnectionOrder: Uint32Ptr(2), FromNode: 1, Weight: 0.5}
	records[2] = rec
	if err := records.Validate(); err == nil {
		t.Fatalf("expected error for non-dense connection_order")
	}
}

func TestValidateRejectsSensorOutboundCountMismatch(t *testing.T) {
	records := validNetwork()
	rec := records[1]
	rec.Type.OutboundCount = 2
	records[1] = rec
	if err := records.Validate(); err == nil {
		t.Fatalf("expected error for sensor outbound_count mismatch")
	}
}

func TestMaxNodeID(t *testing.T) {
	records := validNetwork()
	if got := records.MaxNodeID(); got != 3 {
		t.Fatalf("MaxNodeID = %d, want 3", got)
	}
	if got := (NodeRecords{}).MaxNodeID(); got != 0 {
		t.Fatalf("MaxNodeID of empty set = %d, want 0", got)
	}
}

func TestNeuronsSensorsActuatorsPartitionByKind(t *testing.T) {
	records := validNetwork()
	if got := records.Sensors(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("Sensors() = %v", got)
	}
	if got := records.Neurons(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("Neurons() = %v", got)
	}
	if got := records.Actuators(); len(got) != 1 || got[0] != 3 {
		t.Fatalf("Actuators() = %v", got)
	}
}
