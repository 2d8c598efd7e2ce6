package model

import "fmt"

// Validate checks the invariants spec.md §3 requires of every record set
// produced by the constructor or the mutator. It is the single source of
// truth the mutation engine and the cortex constructor both call before
// trusting a NodeRecords value.
func (records NodeRecords) Validate() error {
	for id, rec := range records {
		if rec.NodeID != id {
			return fmt.Errorf("node %d: record carries mismatched id %d", id, rec.NodeID)
		}
		switch rec.Type.Kind {
		case NodeKindNeuron:
			if rec.ActivationFunctionID == nil {
				return fmt.Errorf("node %d: neuron missing activation_function_id", id)
			}
			if rec.SyncFunctionID != nil || rec.OutputHookID != nil {
				return fmt.Errorf("node %d: neuron must not carry sync/output-hook ids", id)
			}
		case NodeKindSensor:
			if rec.SyncFunctionID == nil {
				return fmt.Errorf("node %d: sensor missing sync_function_id", id)
			}
			if rec.ActivationFunctionID != nil || rec.OutputHookID != nil {
				return fmt.Errorf("node %d: sensor must not carry activation/output-hook ids", id)
			}
			if len(rec.Inbound) != 0 {
				return fmt.Errorf("node %d: sensor must not have inbound connections", id)
			}
		case NodeKindActuator:
			if rec.OutputHookID == nil {
				return fmt.Errorf("node %d: actuator missing output_hook_id", id)
			}
			if rec.ActivationFunctionID != nil || rec.SyncFunctionID != nil {
				return fmt.Errorf("node %d: actuator must not carry activation/sync ids", id)
			}
		default:
			return fmt.Errorf("node %d: unknown node kind %q", id, rec.Type.Kind)
		}

		for cid, conn := range rec.Inbound {
			from, ok := records[conn.FromNode]
			if !ok {
				return fmt.Errorf("node %d: inbound %s references unknown node %d", id, cid, conn.FromNode)
			}
			if from.Type.Kind == NodeKindActuator {
				return fmt.Errorf("node %d: inbound %s sources from an actuator", id, cid)
			}
		}

		if err := validateConnectionOrder(id, rec); err != nil {
			return err
		}
	}

	if err := validateNoActuatorOutbound(records); err != nil {
		return err
	}
	if err := validateSensorFanout(records); err != nil {
		return err
	}
	return nil
}

// validateConnectionOrder checks that, for a node with any sensor-sourced
// inbound connections, their ConnectionOrder values form a dense 0..k
// prefix with no gaps or duplicates.
func validateConnectionOrder(id NodeID, rec NodeRecord) error {
	var orders []uint32
	for cid, conn := range rec.Inbound {
		if conn.ConnectionOrder == nil {
			continue
		}
		_ = cid
		orders = append(orders, *conn.ConnectionOrder)
	}
	if len(orders) == 0 {
		return nil
	}
	seen := make(map[uint32]bool, len(orders))
	maxOrder := uint32(0)
	for _, o := range orders {
		if seen[o] {
			return fmt.Errorf("node %d: duplicate connection_order %d", id, o)
		}
		seen[o] = true
		if o > maxOrder {
			maxOrder = o
		}
	}
	if int(maxOrder)+1 != len(orders) {
		return fmt.Errorf("node %d: connection_order values are not a dense 0..%d prefix", id, len(orders)-1)
	}
	for i := uint32(0); i < uint32(len(orders)); i++ {
		if !seen[i] {
			return fmt.Errorf("node %d: connection_order missing index %d", id, i)
		}
	}
	return nil
}

func validateNoActuatorOutbound(records NodeRecords) error {
	referenced := make(map[NodeID]bool)
	for _, rec := range records {
		for _, conn := range rec.Inbound {
			referenced[conn.FromNode] = true
		}
	}
	for id, rec := range records {
		if rec.Type.Kind == NodeKindActuator && referenced[id] {
			return fmt.Errorf("node %d: actuator is referenced as a from_node", id)
		}
	}
	return nil
}

// validateSensorFanout checks that a sensor's declared outbound_count
// matches (or bounds, when maximum_vector_length is set) the number of
// inbound references elsewhere pointing at it.
func validateSensorFanout(records NodeRecords) error {
	refCount := make(map[NodeID]int)
	for _, rec := range records {
		for _, conn := range rec.Inbound {
			refCount[conn.FromNode]++
		}
	}
	for id, rec := range records {
		if rec.Type.Kind != NodeKindSensor {
			continue
		}
		count := refCount[id]
		if rec.Type.OutboundCount != uint32(count) {
			return fmt.Errorf("node %d: sensor outbound_count %d does not match %d reference(s)", id, rec.Type.OutboundCount, count)
		}
		if rec.MaximumVectorLength != nil && *rec.MaximumVectorLength > 0 && count > int(*rec.MaximumVectorLength) {
			return fmt.Errorf("node %d: sensor exceeds maximum_vector_length %d with %d references", id, *rec.MaximumVectorLength, count)
		}
	}
	return nil
}

// MaxNodeID returns the highest NodeID present, or 0 for an empty set.
func (records NodeRecords) MaxNodeID() NodeID {
	var max NodeID
	for id := range records {
		if id > max {
			max = id
		}
	}
	return max
}

func (records NodeRecords) Neurons() []NodeID {
	return records.idsOfKind(NodeKindNeuron)
}

func (records NodeRecords) Sensors() []NodeID {
	return records.idsOfKind(NodeKindSensor)
}

func (records NodeRecords) Actuators() []NodeID {
	return records.idsOfKind(NodeKindActuator)
}

func (records NodeRecords) idsOfKind(kind NodeKind) []NodeID {
	out := make([]NodeID, 0, len(records))
	for id, rec := range records {
		if rec.Type.Kind == kind {
			out = append(out, id)
		}
	}
	return out
}
