package substrate

import "protogonos/internal/model"

// message is the shared alphabet every node actor's mailbox carries
// (spec.md §4.1): Sync, ReceiveInput, IncrementBarrierThreshold, plus the
// construction/teardown-only messages (attachOutboundMsg, killMsg) that
// extend it the way spec.md §4.2 extends the alphabet for wiring and kill.
type message any

// syncMsg instructs a sensor to read its input source and emit one synapse
// per outbound edge.
type syncMsg struct{}

// receiveInputMsg is one arrived synapse.
type receiveInputMsg struct {
	From   model.NodeID
	Value  float64
	Weight float64
}

// incrementBarrierMsg increments a node's expected inbound count by one and
// acknowledges, used during construction so a node never fires before all
// of its incoming edges are attached.
type incrementBarrierMsg struct {
	Reply chan struct{}
}

// attachOutboundMsg tells the sending node about a new downstream edge.
// Only the owning goroutine ever appends to its own outbound list, so this
// travels as a message rather than a direct mutation from the constructor.
type attachOutboundMsg struct {
	Edge  outboundEdge
	Reply chan struct{}
}

// killMsg asks a node to report its live state back for record
// reconstruction and then exit its run loop.
type killMsg struct {
	Reply chan killReply
}

type killReply struct {
	// OutboundWeights holds this node's current per-connection outbound
	// weight, keyed by the downstream connection id it feeds. A downstream
	// node's own inbound weight is only authoritative here, on the sender,
	// because that is what the sender actually attaches to each
	// ReceiveInput message it posts (see DESIGN.md "weight ownership").
	OutboundWeights map[model.ConnectionID]float64
}
