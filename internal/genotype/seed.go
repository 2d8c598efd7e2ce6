// Package genotype builds record-form networks (model.NodeRecords): the seed
// topology a generation starts from. Deep copies are model.CloneRecords.
package genotype

import (
	"fmt"
	"math/rand"

	"protogonos/internal/idgen"
	"protogonos/internal/model"
)

// SensorSpec names one sensor input for seed construction: its sync
// function id and how many values it reports per Sync.
type SensorSpec struct {
	SyncFunctionID string
	OutboundCount  uint32
}

// ActuatorSpec names one actuator output for seed construction.
type ActuatorSpec struct {
	OutputHookID string
}

// SeedOptions configures ConstructSeedNN. ActivationFunctionIDs is sampled
// per hidden neuron; when empty, "identity" is used.
type SeedOptions struct {
	Sensors               []SensorSpec
	Actuators             []ActuatorSpec
	ActivationFunctionIDs []string
	InitialWeightRange    float64 // +/- bound for uniform random weight init
	RNG                   *rand.Rand
}

// ConstructSeedNN is the Go analog of the original construct_SeedNN/6: one
// hidden neuron per actuator, densely connected from every sensor, feeding
// exactly the one actuator it was built for. This is generation 0's
// starting topology (spec.md §4.5's "evaluate the initial population"
// needs something to evaluate).
func ConstructSeedNN(gen *idgen.NodeIDGenerator, opts SeedOptions) (model.NodeRecords, error) {
	if len(opts.Sensors) == 0 {
		return nil, fmt.Errorf("construct seed network: at least one sensor is required")
	}
	if len(opts.Actuators) == 0 {
		return nil, fmt.Errorf("construct seed network: at least one actuator is required")
	}
	rng := opts.RNG
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	weightRange := opts.InitialWeightRange
	if weightRange == 0 {
		weightRange = 1.0
	}
	activationIDs := opts.ActivationFunctionIDs
	if len(activationIDs) == 0 {
		activationIDs = []string{"identity"}
	}

	records := make(model.NodeRecords, len(opts.Sensors)+len(opts.Actuators)*2)

	sensorIDs := make([]model.NodeID, len(opts.Sensors))
	for i, spec := range opts.Sensors {
		id := gen.Next()
		sensorIDs[i] = id
		syncID := spec.SyncFunctionID
		records[id] = model.NodeRecord{
			NodeID:         id,
			Layer:          0,
			Type:           model.NodeType{Kind: model.NodeKindSensor, OutboundCount: spec.OutboundCount},
			SyncFunctionID: &syncID,
		}
	}

	for _, spec := range opts.Actuators {
		neuronID := gen.Next()
		actuatorID := gen.Next()

		inbound := make(map[model.ConnectionID]model.InactiveConnection, len(sensorIDs))
		var order uint32
		for _, sensorID := range sensorIDs {
			sensorRec := records[sensorID]
			for slot := uint32(0); slot < sensorRec.Type.OutboundCount; slot++ {
				connID := idgen.NewConnectionID()
				inbound[connID] = model.InactiveConnection{
					ConnectionOrder: model.Uint32Ptr(order),
					FromNode:        sensorID,
					Weight:          randWeight(rng, weightRange),
				}
				order++
			}
		}

		activationID := activationIDs[rng.Intn(len(activationIDs))]
		records[neuronID] = model.NodeRecord{
			NodeID:               neuronID,
			Layer:                1,
			Type:                 model.NodeType{Kind: model.NodeKindNeuron},
			Inbound:              inbound,
			ActivationFunctionID: &activationID,
			Learning:             model.NoLearning,
		}

		hookID := spec.OutputHookID
		records[actuatorID] = model.NodeRecord{
			NodeID:       actuatorID,
			Layer:        2,
			Type:         model.NodeType{Kind: model.NodeKindActuator},
			OutputHookID: &hookID,
			Inbound: map[model.ConnectionID]model.InactiveConnection{
				idgen.NewConnectionID(): {FromNode: neuronID, Weight: 1.0},
			},
		}
	}

	// Every actuator's neuron took OutboundCount edges from each sensor.
	for _, sensorID := range sensorIDs {
		sensorRec := records[sensorID]
		sensorRec.Type.OutboundCount *= uint32(len(opts.Actuators))
		records[sensorID] = sensorRec
	}

	if err := records.Validate(); err != nil {
		return nil, fmt.Errorf("construct seed network: %w", err)
	}
	return records, nil
}

func randWeight(rng *rand.Rand, bound float64) float64 {
	return (rng.Float64()*2 - 1) * bound
}
