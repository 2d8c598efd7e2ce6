// Package agent implements the cortex coordinator: construction of a live
// actor graph from record form, driving think cycles, and teardown back to
// records (spec.md §4.2).
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	protoio "protogonos/internal/io"
	"protogonos/internal/model"
	"protogonos/internal/substrate"
)

type CortexStatus string

const (
	CortexStatusActive     CortexStatus = "active"
	CortexStatusTerminated CortexStatus = "terminated"
)

var (
	ErrCortexTerminated = errors.New("cortex is terminated")
	ErrNoActuators      = errors.New("network has no actuators")
)

// Cortex owns one network's live actors end to end: construct, drive think
// cycles, teardown.
type Cortex struct {
	id      model.NetworkID
	mu      sync.Mutex
	status  CortexStatus
	handles map[model.NodeID]*substrate.Handle

	sensors   []model.NodeID
	actuators []model.NodeID

	original model.NodeRecords
	fired    chan model.NodeID
}

// Construct topologically allocates one actor per record and wires every
// (downstream, inbound) edge, sending IncrementBarrierThreshold to the
// downstream actor before moving on — spec.md §4.2's construction
// guarantee. activations/syncSources/hooks are already resolved per id for
// this network (the scheduler binds sync sources per network and wraps
// output-hook ids into score-keeper closures before calling Construct).
func Construct(
	ctx context.Context,
	id model.NetworkID,
	records model.NodeRecords,
	activations *protoio.ActivationFunctions,
	syncFns map[string]protoio.SyncFunction,
	hooks map[string]protoio.OutputHookFunction,
) (*Cortex, error) {
	if err := records.Validate(); err != nil {
		return nil, fmt.Errorf("construct %s: invalid records: %w", id, err)
	}

	c := &Cortex{
		id:       id,
		status:   CortexStatusActive,
		handles:  make(map[model.NodeID]*substrate.Handle, len(records)),
		original: model.CloneRecords(records),
	}

	actuatorCount := 0
	for _, rec := range records {
		if rec.Type.Kind == model.NodeKindActuator {
			actuatorCount++
		}
	}
	if actuatorCount == 0 {
		return nil, ErrNoActuators
	}
	c.fired = make(chan model.NodeID, actuatorCount*4)

	for nodeID, rec := range records {
		handle, err := c.makeHandle(rec, activations, syncFns, hooks)
		if err != nil {
			return nil, fmt.Errorf("construct %s: node %d: %w", id, nodeID, err)
		}
		c.handles[nodeID] = handle
		switch rec.Type.Kind {
		case model.NodeKindSensor:
			c.sensors = append(c.sensors, nodeID)
		case model.NodeKindActuator:
			c.actuators = append(c.actuators, nodeID)
		}
	}

	for nodeID, rec := range records {
		to := c.handles[nodeID]
		for connID, conn := range rec.Inbound {
			from, ok := c.handles[conn.FromNode]
			if !ok {
				return nil, fmt.Errorf("construct %s: node %d inbound %s: unresolved from_node %d", id, nodeID, connID, conn.FromNode)
			}
			if err := substrate.AttachEdge(ctx, from, to, connID, conn.Weight, conn.ConnectionOrder); err != nil {
				return nil, fmt.Errorf("construct %s: attach %d->%d: %w", id, conn.FromNode, nodeID, err)
			}
		}
	}

	return c, nil
}

func (c *Cortex) makeHandle(
	rec model.NodeRecord,
	activations *protoio.ActivationFunctions,
	syncFns map[string]protoio.SyncFunction,
	hooks map[string]protoio.OutputHookFunction,
) (*substrate.Handle, error) {
	switch rec.Type.Kind {
	case model.NodeKindNeuron:
		if rec.ActivationFunctionID == nil {
			return nil, errors.New("neuron missing activation_function_id")
		}
		fn, err := activations.Lookup(*rec.ActivationFunctionID)
		if err != nil {
			return nil, err
		}
		return substrate.NewNeuronHandle(rec.NodeID, rec.Bias, fn, rec.Learning), nil

	case model.NodeKindSensor:
		if rec.SyncFunctionID == nil {
			return nil, errors.New("sensor missing sync_function_id")
		}
		fn, ok := syncFns[*rec.SyncFunctionID]
		if !ok {
			return nil, fmt.Errorf("sensor sync function %q not bound for this network", *rec.SyncFunctionID)
		}
		return substrate.NewSensorHandle(rec.NodeID, fn), nil

	case model.NodeKindActuator:
		if rec.OutputHookID == nil {
			return nil, errors.New("actuator missing output_hook_id")
		}
		hook, ok := hooks[*rec.OutputHookID]
		if !ok {
			return nil, fmt.Errorf("actuator output hook %q not bound for this network", *rec.OutputHookID)
		}
		return substrate.NewActuatorHandle(rec.NodeID, hook, c.id, c.fired), nil

	default:
		return nil, fmt.Errorf("unknown node kind %q", rec.Type.Kind)
	}
}

// ThinkAndAct posts Sync to every sensor, then waits until every actuator
// has fired at least once since the Sync or the timeout elapses.
func (c *Cortex) ThinkAndAct(ctx context.Context, timeout time.Duration) (model.CompletionStatus, error) {
	c.mu.Lock()
	status := c.status
	sensors := append([]model.NodeID(nil), c.sensors...)
	actuators := append([]model.NodeID(nil), c.actuators...)
	handles := c.handles
	fired := c.fired
	c.mu.Unlock()

	if status == CortexStatusTerminated {
		return "", ErrCortexTerminated
	}

	drainFired(fired)

	for _, id := range sensors {
		if err := substrate.Sync(handles[id]); err != nil {
			return "", err
		}
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	pending := make(map[model.NodeID]bool, len(actuators))
	for _, id := range actuators {
		pending[id] = true
	}

	for len(pending) > 0 {
		select {
		case id := <-fired:
			delete(pending, id)
		case <-deadline.C:
			return model.ThinkCycleIncomplete, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return model.ThinkCycleFinished, nil
}

func drainFired(fired chan model.NodeID) {
	for {
		select {
		case <-fired:
		default:
			return
		}
	}
}

// KillCortex drains every live node back into record form, preserving all
// ids and topology; only weights may differ, and only if a learning
// algorithm mutated them in flight. Actors are terminated as part of the
// drain.
func (c *Cortex) KillCortex(ctx context.Context) (model.NodeRecords, error) {
	c.mu.Lock()
	if c.status == CortexStatusTerminated {
		c.mu.Unlock()
		return nil, ErrCortexTerminated
	}
	handles := c.handles
	original := c.original
	c.status = CortexStatusTerminated
	c.mu.Unlock()

	liveWeights := make(map[model.NodeID]map[model.ConnectionID]float64, len(handles))
	for nodeID, h := range handles {
		reply, err := substrate.Kill(ctx, h)
		if err != nil {
			return nil, fmt.Errorf("kill node %d: %w", nodeID, err)
		}
		if len(reply.OutboundWeights) > 0 {
			liveWeights[nodeID] = reply.OutboundWeights
		}
	}

	out := model.CloneRecords(original)
	for nodeID, rec := range out {
		for connID, conn := range rec.Inbound {
			if fromWeights, ok := liveWeights[conn.FromNode]; ok {
				if w, ok := fromWeights[connID]; ok {
					conn.Weight = w
					rec.Inbound[connID] = conn
				}
			}
		}
		out[nodeID] = rec
	}
	return out, nil
}

func (c *Cortex) ID() model.NetworkID {
	return c.id
}

func (c *Cortex) Status() CortexStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}
