package substrate

import (
	"sort"

	protoio "protogonos/internal/io"
	"protogonos/internal/model"
)

// sensorActor is the live Sensor entity (spec.md §4.1). It never accumulates
// a barrier (sensors have no inbound connections); on Sync it reads its
// sync function and distributes the resulting values across its outbound
// edges in connection_order, rotating the sequence if it's shorter than
// the edge count.
type sensorActor struct {
	handle *Handle
	syncFn protoio.SyncFunction

	outbound []outboundEdge
}

func NewSensorHandle(id model.NodeID, syncFn protoio.SyncFunction) *Handle {
	h := &Handle{id: id, kind: model.NodeKindSensor, mailbox: make(chan message, mailboxCapacity)}
	s := &sensorActor{handle: h, syncFn: syncFn}
	go s.run()
	return h
}

func (s *sensorActor) run() {
	for msg := range s.handle.mailbox {
		switch m := msg.(type) {
		case attachOutboundMsg:
			s.outbound = append(s.outbound, m.Edge)
			sort.SliceStable(s.outbound, func(i, j int) bool {
				return orderOf(s.outbound[i]) < orderOf(s.outbound[j])
			})
			close(m.Reply)
		case receiveInputMsg:
			// Sensors never have inbound connections; any arrival is ignored.
		case syncMsg:
			s.sync()
		case killMsg:
			m.Reply <- killReply{OutboundWeights: s.outboundWeights()}
			return
		}
	}
}

func (s *sensorActor) sync() {
	if len(s.outbound) == 0 {
		return
	}
	values := s.syncFn()
	if len(values) == 0 {
		return
	}
	for i, edge := range s.outbound {
		value := values[i%len(values)]
		edge.To.send(receiveInputMsg{From: s.handle.id, Value: value, Weight: edge.Weight})
	}
}

func (s *sensorActor) outboundWeights() map[model.ConnectionID]float64 {
	out := make(map[model.ConnectionID]float64, len(s.outbound))
	for _, edge := range s.outbound {
		out[edge.ConnID] = edge.Weight
	}
	return out
}

func orderOf(e outboundEdge) uint32 {
	if e.Order == nil {
		return 0
	}
	return *e.Order
}
