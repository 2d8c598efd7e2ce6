package scape

import (
	"sync"

	"protogonos/internal/genotype"
	protoio "protogonos/internal/io"
	"protogonos/internal/model"
	"protogonos/internal/scorekeeper"
)

const (
	xorSensorID   = "xor-input"
	xorActuatorID = "xor-output"
)

var xorCases = [4]struct{ a, b, want float64 }{
	{0, 0, 0},
	{0, 1, 1},
	{1, 0, 1},
	{1, 1, 0},
}

// XOR is the canonical four-case exclusive-or benchmark: one sensor
// reporting an (a, b) pair per Sync call, one actuator, fitness scored as
// the negative sum of squared error over one pass through all four cases.
type XOR struct{}

func (XOR) Name() string { return "xor" }

func (XOR) SensorSpecs() []genotype.SensorSpec {
	return []genotype.SensorSpec{{SyncFunctionID: xorSensorID, OutboundCount: 2}}
}

func (XOR) ActuatorSpecs() []genotype.ActuatorSpec {
	return []genotype.ActuatorSpec{{OutputHookID: xorActuatorID}}
}

func (XOR) BindSyncFunctions(model.NetworkID) map[string]protoio.SyncFunction {
	var mu sync.Mutex
	index := 0
	fn := func() []float64 {
		mu.Lock()
		defer mu.Unlock()
		c := xorCases[index%len(xorCases)]
		index++
		return []float64{c.a, c.b}
	}
	return map[string]protoio.SyncFunction{xorSensorID: fn}
}

func (XOR) FitnessFunction() scorekeeper.FitnessFunction {
	// seen counts the guesses scored so far across calls, so each guess is
	// compared with the case its cycle's sensor reported.
	seen := 0
	return func(gathered map[string][]float64) (float64, model.FitnessDirective) {
		guesses := gathered[xorActuatorID]
		var sse float64
		for _, guess := range guesses {
			if seen >= len(xorCases) {
				break
			}
			err := xorCases[seen].want - guess
			sse += err * err
			seen++
		}
		// One pass through all four cases is a complete episode for this
		// scenario; nothing left to evaluate once they've all fired.
		directive := model.DirectiveContinue
		if seen >= len(xorCases) {
			directive = model.DirectiveEnd
		}
		return -sse, directive
	}
}
