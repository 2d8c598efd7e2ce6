// Package evo implements the mutation operators and generation scheduler
// (spec.md §4.3, §4.5, §4.6): the part of the system that turns one
// generation's scored candidates into the next generation's seeds.
package evo

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"protogonos/internal/idgen"
	"protogonos/internal/model"
)

// ErrNoPrecondition is returned by a mutation kind when the candidate has
// no node/connection satisfying its precondition. Callers resample a
// different kind rather than treat this as fatal.
var ErrNoPrecondition = errors.New("mutation precondition not satisfied")

// Mutation is one named, resamplable mutation operator.
type Mutation func(gen *idgen.NodeIDGenerator, records model.NodeRecords, rng *rand.Rand) (model.NodeRecords, error)

// NewCatalog builds every mutation kind spec.md §4.3 names, keyed by name
// so the count-selection policy can sample uniformly and the CLI can log
// which kind fired. availableSyncFunctionIDs/availableOutputHookIDs scope
// add_sensor/add_actuator to whatever a scenario actually exposes.
func NewCatalog(availableSyncFunctionIDs, availableOutputHookIDs []string) map[string]Mutation {
	return map[string]Mutation{
		"mutate_activation_function": MutateActivationFunction,
		"add_bias":                   AddBias,
		"remove_bias":                RemoveBias,
		"mutate_weights":             MutateWeights,
		"reset_weights":              ResetWeights,
		"add_inbound_connection":     AddOutboundConnection,
		"add_outbound_connection":    AddOutboundConnection,
		"add_neuron":                 AddNeuron,
		"add_neuron_out_splice":      AddNeuronSplice,
		"add_neuron_in_splice":       AddNeuronSplice,
		"add_sensor":                 AddSensor(availableSyncFunctionIDs),
		"add_actuator":               AddActuator(availableOutputHookIDs),
		"add_sensor_link":            AddSensorLink,
		"add_actuator_link":          AddActuatorLink,
		"remove_sensor_link":         RemoveSensorLink,
		"remove_actuator_link":       RemoveActuatorLink,
		"remove_inbound_connection":  RemoveOutboundConnection,
		"remove_outbound_connection": RemoveOutboundConnection,
		"change_neuron_layer":        ChangeNeuronLayer,
	}
}

var builtinActivationIDs = []string{"identity", "tanh", "sigmoid", "relu", "sin"}

func randomActivationID(rng *rand.Rand) string {
	return builtinActivationIDs[rng.Intn(len(builtinActivationIDs))]
}

// MutateActivationFunction reassigns one random neuron's activation
// function to a random id from the built-in set (possibly its current one).
func MutateActivationFunction(_ *idgen.NodeIDGenerator, records model.NodeRecords, rng *rand.Rand) (model.NodeRecords, error) {
	neurons := records.Neurons()
	if len(neurons) == 0 {
		return nil, fmt.Errorf("mutate_activation_function: %w", ErrNoPrecondition)
	}
	out := model.CloneRecords(records)
	id := neurons[rng.Intn(len(neurons))]
	rec := out[id]
	next := randomActivationID(rng)
	rec.ActivationFunctionID = &next
	out[id] = rec
	return out, nil
}

// AddBias gives a random neuron with no bias, or a zero bias, a freshly
// sampled bias drawn from uniform[0,1).
func AddBias(_ *idgen.NodeIDGenerator, records model.NodeRecords, rng *rand.Rand) (model.NodeRecords, error) {
	var candidates []model.NodeID
	for _, id := range records.Neurons() {
		if rec := records[id]; rec.Bias == nil || *rec.Bias == 0 {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("add_bias: %w", ErrNoPrecondition)
	}
	out := model.CloneRecords(records)
	id := candidates[rng.Intn(len(candidates))]
	rec := out[id]
	rec.Bias = model.Float64Ptr(rng.Float64())
	out[id] = rec
	return out, nil
}

// RemoveBias strips the bias from a random biased neuron.
func RemoveBias(_ *idgen.NodeIDGenerator, records model.NodeRecords, rng *rand.Rand) (model.NodeRecords, error) {
	var candidates []model.NodeID
	for _, id := range records.Neurons() {
		if records[id].Bias != nil {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("remove_bias: %w", ErrNoPrecondition)
	}
	out := model.CloneRecords(records)
	id := candidates[rng.Intn(len(candidates))]
	rec := out[id]
	rec.Bias = nil
	out[id] = rec
	return out, nil
}

// MutateWeights picks a random node and, independently for each inbound
// connection with probability 1/√d (d = in-degree), resets that
// connection's weight to a fresh uniform[-π/2, +π/2] sample.
func MutateWeights(_ *idgen.NodeIDGenerator, records model.NodeRecords, rng *rand.Rand) (model.NodeRecords, error) {
	var candidates []model.NodeID
	for id, rec := range records {
		if len(rec.Inbound) > 0 {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("mutate_weights: %w", ErrNoPrecondition)
	}
	out := model.CloneRecords(records)
	id := candidates[rng.Intn(len(candidates))]
	rec := out[id]
	p := 1 / math.Sqrt(float64(len(rec.Inbound)))
	for cid, conn := range rec.Inbound {
		if rng.Float64() >= p {
			continue
		}
		conn.Weight = uniformAngle(rng)
		rec.Inbound[cid] = conn
	}
	out[id] = rec
	return out, nil
}

// ResetWeights re-initialises every inbound connection weight on a
// randomly chosen node to a fresh uniform[-π/2, +π/2] sample.
func ResetWeights(_ *idgen.NodeIDGenerator, records model.NodeRecords, rng *rand.Rand) (model.NodeRecords, error) {
	var candidates []model.NodeID
	for id, rec := range records {
		if len(rec.Inbound) > 0 {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("reset_weights: %w", ErrNoPrecondition)
	}
	out := model.CloneRecords(records)
	id := candidates[rng.Intn(len(candidates))]
	rec := out[id]
	for cid, conn := range rec.Inbound {
		conn.Weight = uniformAngle(rng)
		rec.Inbound[cid] = conn
	}
	out[id] = rec
	return out, nil
}

// AddOutboundConnection picks a neuron F and a non-sensor node T, and adds
// a new inbound connection on F sourced from T with weight 1.0. Named
// add_inbound_connection/add_outbound_connection in spec.md §4.3
// depending on which endpoint initiated it; the resulting topology change
// is identical either way.
func AddOutboundConnection(_ *idgen.NodeIDGenerator, records model.NodeRecords, rng *rand.Rand) (model.NodeRecords, error) {
	sinks := records.Neurons()
	if len(sinks) == 0 {
		return nil, fmt.Errorf("add_outbound_connection: %w", ErrNoPrecondition)
	}

	out := model.CloneRecords(records)
	from := sinks[rng.Intn(len(sinks))]
	to := sinks[rng.Intn(len(sinks))]
	rec := out[to]
	if rec.Inbound == nil {
		rec.Inbound = make(map[model.ConnectionID]model.InactiveConnection)
	}
	rec.Inbound[idgen.NewConnectionID()] = model.InactiveConnection{FromNode: from, Weight: 1.0}
	out[to] = rec

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("add_outbound_connection: %w", ErrNoPrecondition)
	}
	return out, nil
}

// nextSensorOrder returns the next dense connection_order index for a new
// sensor-sourced inbound edge landing on downstream.
func nextSensorOrder(downstream model.NodeRecord) uint32 {
	max := uint32(0)
	any := false
	for _, conn := range downstream.Inbound {
		if conn.ConnectionOrder == nil {
			continue
		}
		any = true
		if *conn.ConnectionOrder >= max {
			max = *conn.ConnectionOrder + 1
		}
	}
	if !any {
		return 0
	}
	return max
}

func randWeight(rng *rand.Rand, bound float64) float64 {
	return (rng.Float64()*2 - 1) * bound
}

// uniformAngle samples uniform[-π/2, +π/2), the weight range spec.md §4.3
// uses for reset_weights and mutate_weights.
func uniformAngle(rng *rand.Rand) float64 {
	return (rng.Float64()*2 - 1) * (math.Pi / 2)
}
