package substrate

import (
	"context"
	"fmt"

	"protogonos/internal/model"
)

const mailboxCapacity = 64

// Handle is an opaque, stable reference to a live node actor: its mailbox.
// Edges store a Handle plus a weight, not a pointer into the actor's
// internal state, so cyclic topology is safe to express (spec.md §9).
type Handle struct {
	id      model.NodeID
	kind    model.NodeKind
	mailbox chan message
}

func (h *Handle) ID() model.NodeID     { return h.id }
func (h *Handle) Kind() model.NodeKind { return h.kind }

func (h *Handle) send(msg message) {
	h.mailbox <- msg
}

// outboundEdge is a resolved downstream reference plus the weight the
// sender attaches to every ReceiveInput it posts along this edge, and
// (only meaningful when the sender is a sensor) the sensor's
// connection_order slot for this edge.
type outboundEdge struct {
	To     *Handle
	ConnID model.ConnectionID
	Weight float64
	Order  *uint32
}

// AttachEdge wires one (downstream, inbound) pair during cortex
// construction: it tells the upstream actor about its new outbound edge,
// then increments the downstream's barrier threshold, awaiting both acks
// before returning — spec.md §4.2's "guarantee no node begins firing
// before its in-degree is fully known".
func AttachEdge(ctx context.Context, from, to *Handle, connID model.ConnectionID, weight float64, order *uint32) error {
	attachReply := make(chan struct{})
	from.send(attachOutboundMsg{
		Edge:  outboundEdge{To: to, ConnID: connID, Weight: weight, Order: order},
		Reply: attachReply,
	})
	select {
	case <-attachReply:
	case <-ctx.Done():
		return ctx.Err()
	}

	incReply := make(chan struct{})
	to.send(incrementBarrierMsg{Reply: incReply})
	select {
	case <-incReply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Kill asks a node to report its live outbound weights and exit.
func Kill(ctx context.Context, h *Handle) (killReply, error) {
	reply := make(chan killReply, 1)
	h.send(killMsg{Reply: reply})
	select {
	case r := <-reply:
		return r, nil
	case <-ctx.Done():
		return killReply{}, fmt.Errorf("kill node %d: %w", h.id, ctx.Err())
	}
}

// Sync posts a Sync instruction to a sensor.
func Sync(h *Handle) error {
	if h.kind != model.NodeKindSensor {
		return fmt.Errorf("node %d is not a sensor", h.id)
	}
	h.send(syncMsg{})
	return nil
}

func saturateWeight(weight float64) float64 {
	const limit = 10 * 3.14159265358979323846
	if weight > limit {
		return limit
	}
	if weight < -limit {
		return -limit
	}
	return weight
}
