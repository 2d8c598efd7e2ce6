package agent

import (
	"context"
	"testing"
	"time"

	protoio "protogonos/internal/io"
	"protogonos/internal/model"
)

func twoSensorOneNeuronOneActuator() model.NodeRecords {
	act := "identity"
	sensorSync := "const"
	hook := "capture"

	return model.NodeRecords{
		1: {
			NodeID:         1,
			Type:           model.NodeType{Kind: model.NodeKindSensor, OutboundCount: 1},
			SyncFunctionID: &sensorSync,
		},
		2: {
			NodeID:         2,
			Type:           model.NodeType{Kind: model.NodeKindSensor, OutboundCount: 1},
			SyncFunctionID: &sensorSync,
		},
		3: {
			NodeID:               3,
			Type:                 model.NodeType{Kind: model.NodeKindNeuron},
			ActivationFunctionID: &act,
			Bias:                 model.Float64Ptr(0.5),
			Inbound: map[model.ConnectionID]model.InactiveConnection{
				"c1": {FromNode: 1, Weight: 2.0},
				"c2": {FromNode: 2, Weight: 3.0},
			},
		},
		4: {
			NodeID:       4,
			Type:         model.NodeType{Kind: model.NodeKindActuator},
			OutputHookID: &hook,
			Inbound: map[model.ConnectionID]model.InactiveConnection{
				"c3": {FromNode: 3, Weight: 1.0},
			},
		},
	}
}

func TestConstructThinkAndActFanIn(t *testing.T) {
	records := twoSensorOneNeuronOneActuator()

	activations := protoio.NewActivationFunctions()
	if err := activations.Register("identity", func(x float64) float64 { return x }); err != nil {
		t.Fatal(err)
	}

	syncFns := map[string]protoio.SyncFunction{
		"const": func() []float64 { return []float64{1} },
	}

	var captured float64
	hooks := map[string]protoio.OutputHookFunction{
		"capture": func(_ model.NetworkID, value float64) { captured = value },
	}

	ctx := context.Background()
	cortex, err := Construct(ctx, "net-1", records, activations, syncFns, hooks)
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}

	status, err := cortex.ThinkAndAct(ctx, time.Second)
	if err != nil {
		t.Fatalf("ThinkAndAct: %v", err)
	}
	if status != model.ThinkCycleFinished {
		t.Fatalf("expected ThinkCycleFinished, got %s", status)
	}

	// sensor1 -> 1*2.0 + sensor2 -> 1*3.0 = 5.0, + bias 0.5 = 5.5, identity
	// activation; the actuator sums raw values, so its edge weight plays no
	// part: 5.5.
	want := 5.5
	if captured != want {
		t.Fatalf("captured = %v, want %v", captured, want)
	}

	if _, err := cortex.KillCortex(ctx); err != nil {
		t.Fatalf("KillCortex: %v", err)
	}
}

func TestThinkAndActTimesOutWithoutAllActuators(t *testing.T) {
	records := twoSensorOneNeuronOneActuator()

	activations := protoio.NewActivationFunctions()
	if err := activations.Register("identity", func(x float64) float64 { return x }); err != nil {
		t.Fatal(err)
	}

	// Both sensors' sync function returns no values, so neither sensor sends
	// anything, the neuron's barrier never fills and the actuator never fires.
	syncFns := map[string]protoio.SyncFunction{
		"const": func() []float64 { return nil },
	}
	hooks := map[string]protoio.OutputHookFunction{
		"capture": func(model.NetworkID, float64) {},
	}

	ctx := context.Background()
	cortex, err := Construct(ctx, "net-2", records, activations, syncFns, hooks)
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}

	status, err := cortex.ThinkAndAct(ctx, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("ThinkAndAct: %v", err)
	}
	if status != model.ThinkCycleIncomplete {
		t.Fatalf("expected ThinkCycleIncomplete, got %s", status)
	}

	if _, err := cortex.KillCortex(ctx); err != nil {
		t.Fatalf("KillCortex: %v", err)
	}
}

func TestKillCortexPreservesTopologyAndAppliesHebbianWeights(t *testing.T) {
	act := "identity"
	sensorSync := "const"
	hook := "capture"

	records := model.NodeRecords{
		1: {
			NodeID:         1,
			Type:           model.NodeType{Kind: model.NodeKindSensor, OutboundCount: 1},
			SyncFunctionID: &sensorSync,
		},
		2: {
			NodeID:               2,
			Type:                 model.NodeType{Kind: model.NodeKindNeuron},
			ActivationFunctionID: &act,
			Learning:             model.Hebbian(0.1),
			Inbound: map[model.ConnectionID]model.InactiveConnection{
				"c1": {FromNode: 1, Weight: 1.0},
			},
		},
		3: {
			NodeID:       3,
			Type:         model.NodeType{Kind: model.NodeKindActuator},
			OutputHookID: &hook,
			Inbound: map[model.ConnectionID]model.InactiveConnection{
				"c2": {FromNode: 2, Weight: 1.0},
			},
		},
	}

	activations := protoio.NewActivationFunctions()
	if err := activations.Register("identity", func(x float64) float64 { return x }); err != nil {
		t.Fatal(err)
	}
	syncFns := map[string]protoio.SyncFunction{
		"const": func() []float64 { return []float64{1} },
	}
	hooks := map[string]protoio.OutputHookFunction{
		"capture": func(model.NetworkID, float64) {},
	}

	ctx := context.Background()
	cortex, err := Construct(ctx, "net-3", records, activations, syncFns, hooks)
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}

	if _, err := cortex.ThinkAndAct(ctx, time.Second); err != nil {
		t.Fatalf("ThinkAndAct: %v", err)
	}

	out, err := cortex.KillCortex(ctx)
	if err != nil {
		t.Fatalf("KillCortex: %v", err)
	}

	if err := out.Validate(); err != nil {
		t.Fatalf("reconstructed records invalid: %v", err)
	}

	got := out[2].Inbound["c1"].Weight
	if got != 1.0 {
		t.Fatalf("neuron's own inbound weight should be untouched by its own Hebbian rule, got %v", got)
	}

	// The neuron's outbound edge (feeding the actuator) was mutated by its
	// own Hebbian rule after firing with output 1.0: 1.0 + 0.1*1.0 = 1.1.
	gotOutbound := out[3].Inbound["c2"].Weight
	want := 1.1
	if gotOutbound != want {
		t.Fatalf("actuator's inbound (= neuron's outbound) weight = %v, want %v", gotOutbound, want)
	}
}
