package evo

import (
	"fmt"
	"math/rand"

	"protogonos/internal/idgen"
	"protogonos/internal/model"
)

// AddNeuron inserts a new neuron wired from one randomly chosen existing
// non-actuator node into one randomly chosen existing non-sensor node,
// growing the network without removing any existing path.
func AddNeuron(gen *idgen.NodeIDGenerator, records model.NodeRecords, rng *rand.Rand) (model.NodeRecords, error) {
	var sources []model.NodeID
	for id, rec := range records {
		if rec.Type.Kind != model.NodeKindActuator {
			sources = append(sources, id)
		}
	}
	var sinks []model.NodeID
	sinks = append(sinks, records.Neurons()...)
	sinks = append(sinks, records.Actuators()...)
	if len(sources) == 0 || len(sinks) == 0 {
		return nil, fmt.Errorf("add_neuron: %w", ErrNoPrecondition)
	}

	out := model.CloneRecords(records)
	from := sources[rng.Intn(len(sources))]
	to := sinks[rng.Intn(len(sinks))]

	newID := gen.Next()
	activationID := randomActivationID(rng)
	inboundConnID := idgen.NewConnectionID()
	var order *uint32
	if out[from].Type.Kind == model.NodeKindSensor {
		order = model.Uint32Ptr(0)
	}
	newNeuron := model.NodeRecord{
		NodeID:               newID,
		Layer:                out[to].Layer,
		Type:                 model.NodeType{Kind: model.NodeKindNeuron},
		ActivationFunctionID: &activationID,
		Learning:             model.NoLearning,
		Inbound: map[model.ConnectionID]model.InactiveConnection{
			inboundConnID: {FromNode: from, Weight: randWeight(rng, 1), ConnectionOrder: order},
		},
	}
	out[newID] = newNeuron

	if out[from].Type.Kind == model.NodeKindSensor {
		sensor := out[from]
		sensor.Type.OutboundCount++
		out[from] = sensor
	}

	sink := out[to]
	if sink.Inbound == nil {
		sink.Inbound = make(map[model.ConnectionID]model.InactiveConnection)
	}
	sink.Inbound[idgen.NewConnectionID()] = model.InactiveConnection{FromNode: newID, Weight: randWeight(rng, 1)}
	out[to] = sink

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("add_neuron: %w", ErrNoPrecondition)
	}
	return out, nil
}

// spliceLayer computes the new neuron's layer for AddNeuronSplice per
// spec.md §4.3's rule table, given the splice anchor's endpoints T
// (downstream) and F (upstream, the existing edge's from_node). Returns
// an error when the splice would be a sensor->actuator out-splice, which
// spec.md §7 classifies as a fatal invariant violation rather than a
// resamplable precondition.
func spliceLayer(fKind, tKind model.NodeKind, fLayer, tLayer int32) (int32, error) {
	switch {
	case tKind == model.NodeKindActuator && fKind == model.NodeKindNeuron:
		return fLayer + 1, nil
	case tKind == model.NodeKindActuator && fKind == model.NodeKindSensor:
		return 0, fmt.Errorf("add_neuron_out_splice: sensor->actuator out-splice is an invariant violation")
	case tKind == model.NodeKindNeuron && fKind == model.NodeKindNeuron:
		return (fLayer + tLayer) / 2, nil
	case tKind == model.NodeKindNeuron && fKind == model.NodeKindSensor:
		return (tLayer + 1) / 2, nil
	default:
		return 0, fmt.Errorf("add_neuron_out_splice: cannot splice %s->%s", fKind, tKind)
	}
}

// AddNeuronSplice picks a random existing connection and splices a new
// neuron into its middle: from -> new -> to, replacing the direct edge.
// Named add_neuron_out_splice/add_neuron_in_splice in spec.md §4.3
// depending which side of the edge is treated as the splice anchor; the
// resulting topology is identical.
func AddNeuronSplice(gen *idgen.NodeIDGenerator, records model.NodeRecords, rng *rand.Rand) (model.NodeRecords, error) {
	type edge struct {
		to     model.NodeID
		connID model.ConnectionID
	}
	var edges []edge
	for id, rec := range records {
		for cid := range rec.Inbound {
			edges = append(edges, edge{to: id, connID: cid})
		}
	}
	if len(edges) == 0 {
		return nil, fmt.Errorf("add_neuron_out_splice: %w", ErrNoPrecondition)
	}

	out := model.CloneRecords(records)
	chosen := edges[rng.Intn(len(edges))]
	toRec := out[chosen.to]
	oldConn := toRec.Inbound[chosen.connID]
	from := oldConn.FromNode
	fromRec := out[from]

	layer, err := spliceLayer(fromRec.Type.Kind, toRec.Type.Kind, fromRec.Layer, toRec.Layer)
	if err != nil {
		return nil, err
	}

	newID := gen.Next()
	activationID := randomActivationID(rng)
	newNeuron := model.NodeRecord{
		NodeID:               newID,
		Layer:                layer,
		Type:                 model.NodeType{Kind: model.NodeKindNeuron},
		ActivationFunctionID: &activationID,
		Learning:             model.NoLearning,
		Inbound: map[model.ConnectionID]model.InactiveConnection{
			idgen.NewConnectionID(): {FromNode: from, Weight: randWeight(rng, 1), ConnectionOrder: oldConn.ConnectionOrder},
		},
	}
	out[newID] = newNeuron

	delete(toRec.Inbound, chosen.connID)
	toRec.Inbound[idgen.NewConnectionID()] = model.InactiveConnection{FromNode: newID, Weight: oldConn.Weight}
	out[chosen.to] = toRec

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("add_neuron_out_splice: %w", ErrNoPrecondition)
	}
	return out, nil
}

// AddSensor introduces a brand new, currently unconnected sensor bound to
// one of availableSyncFunctionIDs. A follow-up add_sensor_link mutation is
// what actually wires it in; this mirrors spec.md §4.3 treating the two as
// separate resamplable kinds.
func AddSensor(availableSyncFunctionIDs []string) Mutation {
	return func(gen *idgen.NodeIDGenerator, records model.NodeRecords, rng *rand.Rand) (model.NodeRecords, error) {
		if len(availableSyncFunctionIDs) == 0 {
			return nil, fmt.Errorf("add_sensor: %w", ErrNoPrecondition)
		}
		out := model.CloneRecords(records)
		newID := gen.Next()
		syncID := availableSyncFunctionIDs[rng.Intn(len(availableSyncFunctionIDs))]
		out[newID] = model.NodeRecord{
			NodeID:         newID,
			Type:           model.NodeType{Kind: model.NodeKindSensor, OutboundCount: 0},
			SyncFunctionID: &syncID,
		}
		return out, nil
	}
}

// AddActuator introduces a brand new actuator, bound to one of
// availableOutputHookIDs, wired from one randomly chosen non-actuator
// node so it is never left permanently unreachable.
func AddActuator(availableOutputHookIDs []string) Mutation {
	return func(gen *idgen.NodeIDGenerator, records model.NodeRecords, rng *rand.Rand) (model.NodeRecords, error) {
		if len(availableOutputHookIDs) == 0 {
			return nil, fmt.Errorf("add_actuator: %w", ErrNoPrecondition)
		}
		var sources []model.NodeID
		for id, rec := range records {
			if rec.Type.Kind != model.NodeKindActuator {
				sources = append(sources, id)
			}
		}
		if len(sources) == 0 {
			return nil, fmt.Errorf("add_actuator: %w", ErrNoPrecondition)
		}
		out := model.CloneRecords(records)
		from := sources[rng.Intn(len(sources))]
		newID := gen.Next()
		hookID := availableOutputHookIDs[rng.Intn(len(availableOutputHookIDs))]
		out[newID] = model.NodeRecord{
			NodeID:       newID,
			Type:         model.NodeType{Kind: model.NodeKindActuator},
			OutputHookID: &hookID,
			Inbound: map[model.ConnectionID]model.InactiveConnection{
				idgen.NewConnectionID(): {FromNode: from, Weight: randWeight(rng, 1)},
			},
		}
		if out[from].Type.Kind == model.NodeKindSensor {
			sensor := out[from]
			sensor.Type.OutboundCount++
			out[from] = sensor
		}
		if err := out.Validate(); err != nil {
			return nil, fmt.Errorf("add_actuator: %w", ErrNoPrecondition)
		}
		return out, nil
	}
}

// AddSensorLink wires a sensor whose outbound_count has not yet reached
// its maximum_vector_length into a randomly chosen neuron, and increments
// that sensor's outbound_count. A nil or zero maximum_vector_length is
// treated as unbounded, per spec.md §9's open-question resolution.
func AddSensorLink(_ *idgen.NodeIDGenerator, records model.NodeRecords, rng *rand.Rand) (model.NodeRecords, error) {
	var eligible []model.NodeID
	for _, id := range records.Sensors() {
		rec := records[id]
		if rec.MaximumVectorLength == nil || *rec.MaximumVectorLength == 0 {
			eligible = append(eligible, id)
			continue
		}
		if rec.Type.OutboundCount < *rec.MaximumVectorLength {
			eligible = append(eligible, id)
		}
	}
	sinks := records.Neurons()
	if len(eligible) == 0 || len(sinks) == 0 {
		return nil, fmt.Errorf("add_sensor_link: %w", ErrNoPrecondition)
	}

	out := model.CloneRecords(records)
	from := eligible[rng.Intn(len(eligible))]
	to := sinks[rng.Intn(len(sinks))]
	sink := out[to]
	if sink.Inbound == nil {
		sink.Inbound = make(map[model.ConnectionID]model.InactiveConnection)
	}
	sink.Inbound[idgen.NewConnectionID()] = model.InactiveConnection{FromNode: from, Weight: randWeight(rng, 1), ConnectionOrder: model.Uint32Ptr(nextSensorOrder(sink))}
	out[to] = sink
	sensor := out[from]
	sensor.Type.OutboundCount++
	out[from] = sensor

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("add_sensor_link: %w", ErrNoPrecondition)
	}
	return out, nil
}

// AddActuatorLink wires a randomly chosen non-actuator source into a
// randomly chosen currently-unconnected actuator.
func AddActuatorLink(_ *idgen.NodeIDGenerator, records model.NodeRecords, rng *rand.Rand) (model.NodeRecords, error) {
	var unconnected []model.NodeID
	for _, id := range records.Actuators() {
		if len(records[id].Inbound) == 0 {
			unconnected = append(unconnected, id)
		}
	}
	var sources []model.NodeID
	for id, rec := range records {
		if rec.Type.Kind != model.NodeKindActuator {
			sources = append(sources, id)
		}
	}
	if len(unconnected) == 0 || len(sources) == 0 {
		return nil, fmt.Errorf("add_actuator_link: %w", ErrNoPrecondition)
	}

	out := model.CloneRecords(records)
	to := unconnected[rng.Intn(len(unconnected))]
	from := sources[rng.Intn(len(sources))]
	actuator := out[to]
	actuator.Inbound[idgen.NewConnectionID()] = model.InactiveConnection{FromNode: from, Weight: randWeight(rng, 1)}
	out[to] = actuator
	if out[from].Type.Kind == model.NodeKindSensor {
		sensor := out[from]
		sensor.Type.OutboundCount++
		out[from] = sensor
	}

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("add_actuator_link: %w", ErrNoPrecondition)
	}
	return out, nil
}

// RemoveSensorLink picks a random sensor with outbound_count > 1, removes
// one of its outbound edges whose downstream neuron has more than one
// total inbound connection (so no neuron is ever orphaned), renumbers
// that neuron's remaining sensor-sourced connection_order values to stay
// a dense prefix, and decrements the sensor's outbound_count.
func RemoveSensorLink(_ *idgen.NodeIDGenerator, records model.NodeRecords, rng *rand.Rand) (model.NodeRecords, error) {
	type link struct {
		downstream model.NodeID
		connID     model.ConnectionID
		sensor     model.NodeID
	}
	var links []link
	for id, rec := range records {
		if len(rec.Inbound) <= 1 {
			continue
		}
		for cid, conn := range rec.Inbound {
			from := records[conn.FromNode]
			if from.Type.Kind == model.NodeKindSensor && from.Type.OutboundCount > 1 {
				links = append(links, link{downstream: id, connID: cid, sensor: conn.FromNode})
			}
		}
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("remove_sensor_link: %w", ErrNoPrecondition)
	}

	out := model.CloneRecords(records)
	chosen := links[rng.Intn(len(links))]
	downstream := out[chosen.downstream]
	delete(downstream.Inbound, chosen.connID)
	renumberConnectionOrders(downstream)
	out[chosen.downstream] = downstream

	sensor := out[chosen.sensor]
	if sensor.Type.OutboundCount > 0 {
		sensor.Type.OutboundCount--
	}
	out[chosen.sensor] = sensor

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("remove_sensor_link: %w", ErrNoPrecondition)
	}
	return out, nil
}

// RemoveActuatorLink disconnects one random inbound edge into an actuator
// that has more than one, so no actuator is ever left fully unreachable.
func RemoveActuatorLink(_ *idgen.NodeIDGenerator, records model.NodeRecords, rng *rand.Rand) (model.NodeRecords, error) {
	var candidates []model.NodeID
	for _, id := range records.Actuators() {
		if len(records[id].Inbound) > 1 {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("remove_actuator_link: %w", ErrNoPrecondition)
	}
	out := model.CloneRecords(records)
	id := candidates[rng.Intn(len(candidates))]
	rec := out[id]
	var connIDs []model.ConnectionID
	for cid := range rec.Inbound {
		connIDs = append(connIDs, cid)
	}
	delete(rec.Inbound, connIDs[rng.Intn(len(connIDs))])
	out[id] = rec
	return out, nil
}

// RemoveOutboundConnection removes one random non-sensor-sourced
// connection, never the last inbound connection of a neuron or actuator.
// Named remove_inbound_connection/remove_outbound_connection in spec.md
// §4.3 depending on endpoint; identical effect.
func RemoveOutboundConnection(_ *idgen.NodeIDGenerator, records model.NodeRecords, rng *rand.Rand) (model.NodeRecords, error) {
	type edge struct {
		to     model.NodeID
		connID model.ConnectionID
	}
	var edges []edge
	for id, rec := range records {
		if len(rec.Inbound) <= 1 {
			continue
		}
		for cid, conn := range rec.Inbound {
			if records[conn.FromNode].Type.Kind == model.NodeKindSensor {
				continue
			}
			edges = append(edges, edge{to: id, connID: cid})
		}
	}
	if len(edges) == 0 {
		return nil, fmt.Errorf("remove_outbound_connection: %w", ErrNoPrecondition)
	}
	out := model.CloneRecords(records)
	chosen := edges[rng.Intn(len(edges))]
	rec := out[chosen.to]
	conn := rec.Inbound[chosen.connID]
	delete(rec.Inbound, chosen.connID)
	if conn.ConnectionOrder != nil {
		renumberConnectionOrders(rec)
	}
	out[chosen.to] = rec

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("remove_outbound_connection: %w", ErrNoPrecondition)
	}
	return out, nil
}

// ChangeNeuronLayer reassigns a random neuron's layer to uniform_int(1,
// max_layer+1); zero stays reserved for sensors. Layer is purely
// diagnostic metadata consulted by splice-layer arithmetic and downstream
// record-I/O; it does not affect firing order (the barrier mechanism
// does that).
func ChangeNeuronLayer(_ *idgen.NodeIDGenerator, records model.NodeRecords, rng *rand.Rand) (model.NodeRecords, error) {
	neurons := records.Neurons()
	if len(neurons) == 0 {
		return nil, fmt.Errorf("change_neuron_layer: %w", ErrNoPrecondition)
	}
	var maxLayer int32
	for _, rec := range records {
		if rec.Layer > maxLayer {
			maxLayer = rec.Layer
		}
	}
	out := model.CloneRecords(records)
	id := neurons[rng.Intn(len(neurons))]
	rec := out[id]
	rec.Layer = 1 + rng.Int31n(maxLayer+1)
	out[id] = rec
	return out, nil
}

func renumberConnectionOrders(rec model.NodeRecord) {
	type entry struct {
		connID model.ConnectionID
		order  uint32
	}
	var ordered []entry
	for cid, conn := range rec.Inbound {
		if conn.ConnectionOrder != nil {
			ordered = append(ordered, entry{connID: cid, order: *conn.ConnectionOrder})
		}
	}
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].order < ordered[i].order {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}
	for i, e := range ordered {
		conn := rec.Inbound[e.connID]
		conn.ConnectionOrder = model.Uint32Ptr(uint32(i))
		rec.Inbound[e.connID] = conn
	}
}
