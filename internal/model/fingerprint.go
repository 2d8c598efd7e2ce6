package model

import (
	"fmt"
	"sort"
)

// Fingerprint is a structural hash of a NodeRecords set: node/connection
// counts plus an activation-id histogram. It is used only for diagnostics
// and dedup-aware logging, never for equality of behavior.
func (records NodeRecords) Fingerprint() string {
	neurons, sensors, actuators, connections := 0, 0, 0, 0
	activationHist := map[string]int{}
	for _, rec := range records {
		switch rec.Type.Kind {
		case NodeKindNeuron:
			neurons++
			if rec.ActivationFunctionID != nil {
				activationHist[*rec.ActivationFunctionID]++
			}
		case NodeKindSensor:
			sensors++
		case NodeKindActuator:
			actuators++
		}
		connections += len(rec.Inbound)
	}

	keys := make([]string, 0, len(activationHist))
	for k := range activationHist {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fp := fmt.Sprintf("n%d-s%d-a%d-c%d", neurons, sensors, actuators, connections)
	for _, k := range keys {
		fp += fmt.Sprintf("-%s:%d", k, activationHist[k])
	}
	return fp
}
