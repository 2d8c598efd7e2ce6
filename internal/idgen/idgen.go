// Package idgen allocates process-unique identifiers. spec.md §9 notes the
// source used a mailbox-based id-generator actor; this module replaces it
// with a plain atomic counter, the way a typed systems language should.
package idgen

import (
	"sync/atomic"

	"github.com/google/uuid"

	"protogonos/internal/model"
)

// NodeIDGenerator mints process-unique, monotonically increasing NodeIDs.
type NodeIDGenerator struct {
	counter uint64
}

// NewNodeIDGenerator seeds the counter above the highest id already in use,
// so a generator reused across generations never collides with survivors.
func NewNodeIDGenerator(startAbove model.NodeID) *NodeIDGenerator {
	return &NodeIDGenerator{counter: uint64(startAbove)}
}

func (g *NodeIDGenerator) Next() model.NodeID {
	return model.NodeID(atomic.AddUint64(&g.counter, 1))
}

// NewConnectionID mints an opaque connection-id, the way spec.md §3
// suggests ("opaque, e.g. UUID").
func NewConnectionID() model.ConnectionID {
	return model.ConnectionID(uuid.NewString())
}

// NewNetworkID mints an opaque id for one generation's candidate network.
func NewNetworkID() model.NetworkID {
	return model.NetworkID(uuid.NewString())
}

// NewRunID mints an opaque id naming one evolution run end to end.
func NewRunID() string {
	return uuid.NewString()
}
