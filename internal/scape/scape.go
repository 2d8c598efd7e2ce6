// Package scape holds built-in evaluation scenarios: the sensor/actuator
// bindings and fitness function a generation scheduler needs to run a
// known benchmark problem end to end (spec.md §12 supplements the
// distilled spec with a runnable example scenario, the way the source
// project always shipped one alongside the bare engine).
package scape

import (
	"protogonos/internal/genotype"
	"protogonos/internal/model"
	protoio "protogonos/internal/io"
	"protogonos/internal/scorekeeper"
)

// Scenario is a self-contained benchmark: the seed topology shape plus the
// live bindings a scheduler needs for one network's evaluation run.
type Scenario interface {
	Name() string
	SensorSpecs() []genotype.SensorSpec
	ActuatorSpecs() []genotype.ActuatorSpec

	// BindSyncFunctions returns one sync function per sensor spec's
	// SyncFunctionID, scoped to a single network's run so concurrently
	// evaluated candidates never share mutable scenario state.
	BindSyncFunctions(network model.NetworkID) map[string]protoio.SyncFunction

	// FitnessFunction returns a fresh fitness function closure, scoped the
	// same way, for a score keeper to reduce one run's gathered outputs.
	FitnessFunction() scorekeeper.FitnessFunction
}
