package substrate

import (
	protoio "protogonos/internal/io"
	"protogonos/internal/model"
)

// neuronActor is the live Neuron entity (spec.md §4.1). It owns a barrier
// list (modelled here as a running sum and count, since the dot product is
// commutative and order within the barrier never matters), fires once the
// barrier is full, then resets.
type neuronActor struct {
	handle     *Handle
	bias       float64
	hasBias    bool
	activation protoio.ActivationFunction
	learning   model.LearningAlgorithm

	outbound         []outboundEdge
	barrierThreshold uint32
	barrierCount     uint32
	barrierSum       float64
}

// NewNeuronHandle starts a neuron actor and returns its handle. The
// returned actor has no inbound or outbound edges yet; AttachEdge wires
// those in during cortex construction.
func NewNeuronHandle(id model.NodeID, bias *float64, activation protoio.ActivationFunction, learning model.LearningAlgorithm) *Handle {
	h := &Handle{id: id, kind: model.NodeKindNeuron, mailbox: make(chan message, mailboxCapacity)}
	n := &neuronActor{handle: h, activation: activation, learning: learning}
	if bias != nil {
		n.hasBias = true
		n.bias = *bias
	}
	go n.run()
	return h
}

func (n *neuronActor) run() {
	for msg := range n.handle.mailbox {
		switch m := msg.(type) {
		case attachOutboundMsg:
			n.outbound = append(n.outbound, m.Edge)
			close(m.Reply)
		case incrementBarrierMsg:
			n.barrierThreshold++
			close(m.Reply)
		case receiveInputMsg:
			n.barrierSum += m.Value * m.Weight
			n.barrierCount++
			if n.barrierCount >= n.barrierThreshold {
				n.fire()
			}
		case killMsg:
			m.Reply <- killReply{OutboundWeights: n.outboundWeights()}
			return
		}
	}
}

func (n *neuronActor) fire() {
	sum := n.barrierSum
	if n.hasBias {
		sum += n.bias
	}
	out := n.activation(sum)

	for i := range n.outbound {
		edge := n.outbound[i]
		edge.To.send(receiveInputMsg{From: n.handle.id, Value: out, Weight: edge.Weight})
		if n.learning.Kind == model.LearningHebbian {
			n.outbound[i].Weight = saturateWeight(edge.Weight + n.learning.Rate*out)
		}
	}

	n.barrierSum = 0
	n.barrierCount = 0
}

func (n *neuronActor) outboundWeights() map[model.ConnectionID]float64 {
	out := make(map[model.ConnectionID]float64, len(n.outbound))
	for _, edge := range n.outbound {
		out[edge.ConnID] = edge.Weight
	}
	return out
}
