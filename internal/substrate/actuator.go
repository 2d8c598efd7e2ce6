package substrate

import (
	protoio "protogonos/internal/io"
	"protogonos/internal/model"
)

// actuatorActor is the live Actuator entity (spec.md §4.1). Same barrier
// rule as a neuron, but the aggregate is a plain sum of the arriving values
// (the weight carried with each input is not applied) and firing invokes the
// output hook instead of propagating further.
type actuatorActor struct {
	handle    *Handle
	hook      protoio.OutputHookFunction
	networkID model.NetworkID
	onFire    chan<- model.NodeID

	barrierThreshold uint32
	barrierCount     uint32
	barrierSum       float64
}

// NewActuatorHandle starts an actuator actor. onFire, when non-nil, receives
// this actuator's id every time it fires — the cortex uses it to detect
// "all actuators have fired at least once since Sync".
func NewActuatorHandle(id model.NodeID, hook protoio.OutputHookFunction, networkID model.NetworkID, onFire chan<- model.NodeID) *Handle {
	h := &Handle{id: id, kind: model.NodeKindActuator, mailbox: make(chan message, mailboxCapacity)}
	a := &actuatorActor{handle: h, hook: hook, networkID: networkID, onFire: onFire}
	go a.run()
	return h
}

func (a *actuatorActor) run() {
	for msg := range a.handle.mailbox {
		switch m := msg.(type) {
		case attachOutboundMsg:
			// Actuators have no outbound edges (spec.md §3); acknowledge and
			// drop so a misrouted attach never deadlocks its caller.
			close(m.Reply)
		case incrementBarrierMsg:
			a.barrierThreshold++
			close(m.Reply)
		case receiveInputMsg:
			a.barrierSum += m.Value
			a.barrierCount++
			if a.barrierCount >= a.barrierThreshold {
				a.fire()
			}
		case killMsg:
			m.Reply <- killReply{}
			return
		}
	}
}

func (a *actuatorActor) fire() {
	if a.hook != nil {
		a.hook(a.networkID, a.barrierSum)
	}
	if a.onFire != nil {
		select {
		case a.onFire <- a.handle.id:
		default:
		}
	}
	a.barrierSum = 0
	a.barrierCount = 0
}
