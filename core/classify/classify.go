// Package classify implements the drone's packet classifier: a pure mapping
// from (state, packet) to one of five handler verdicts (spec.md §4.1). The
// only side-effecting step is the Bernoulli drop coin, isolated behind
// State.DropSource so the decision tree itself stays deterministic and
// testable.
package classify

import (
	"github.com/dronecore/drone/core/drop"
	"github.com/dronecore/drone/core/network"
	"github.com/dronecore/drone/core/packet"
)

// State is the slice of drone state the classifier needs to reach a
// verdict. It never holds channels: Forward verdicts name the next-hop
// NodeId and leave looking up its send channel to the caller.
type State struct {
	SelfID network.NodeId
	PDR    float32

	// NeighbourExists reports whether a sender is installed for the given
	// node. Supplied as a function rather than a map so core/classify never
	// depends on the channel type device/drone uses.
	NeighbourExists func(network.NodeId) bool

	// DropSource supplies the Bernoulli(pdr) coin for MsgFragment forwards.
	DropSource drop.Sampler
}

// Verdict is the closed sum of the five classifier outcomes, named to match
// this spec's own PacketHandler vocabulary.
type Verdict interface {
	isVerdict()
}

// Forward means: advance the packet and send it to Neighbour.
type Forward struct {
	Neighbour network.NodeId
}

func (Forward) isVerdict() {}

// Nack means: synthesise and send back a nack of the given type.
type Nack struct {
	NackType packet.NackType
}

func (Nack) isVerdict() {}

// FloodRequestVerdict means: run the flood-request handler.
type FloodRequestVerdict struct{}

func (FloodRequestVerdict) isVerdict() {}

// SendToController means: emit the packet as a ControllerShortcut event.
type SendToController struct{}

func (SendToController) isVerdict() {}

// Ignore means: do nothing.
type Ignore struct{}

func (Ignore) isVerdict() {}

// Classify maps (state, pkt) to a Verdict following spec.md §4.1's five
// ordered rules, first match wins.
func Classify(state State, pkt packet.Packet) Verdict {
	// Rule 1: flood requests ignore the routing header entirely.
	if pkt.Type.Kind() == packet.KindFloodRequest {
		return FloodRequestVerdict{}
	}

	// Rule 2: malformed packet, nothing actionable.
	if pkt.RoutingHeader.IsEmpty() {
		return Ignore{}
	}

	// Rule 3: wrong recipient. A routing header whose hop_index no longer
	// addresses a valid hop (current_hop undefined) is treated the same as
	// a mismatch: there is no well-defined forwarding action for it either.
	current, ok := pkt.RoutingHeader.CurrentHop()
	if !ok || current != state.SelfID {
		return Nack{NackType: packet.UnexpectedRecipient(state.SelfID)}
	}

	// Rule 4: last hop. A drone is never a terminal endpoint for user
	// traffic; a nack arriving at its own last hop is absorbed instead of
	// bounced, to prevent infinite nack-of-nack loops.
	if pkt.RoutingHeader.IsLastHop() {
		if pkt.Type.Kind() == packet.KindNack {
			return Ignore{}
		}
		return Nack{NackType: packet.DestinationIsDrone()}
	}

	// Rule 5: forward toward the next hop, if reachable.
	next, ok := pkt.RoutingHeader.NextHop()
	if !ok {
		return Ignore{}
	}

	if state.NeighbourExists(next) {
		if pkt.Type.Kind() == packet.KindMsgFragment && state.DropSource.Sample(state.PDR) {
			return Nack{NackType: packet.Dropped()}
		}
		return Forward{Neighbour: next}
	}

	switch pkt.Type.Kind() {
	case packet.KindAck, packet.KindNack, packet.KindFloodResponse:
		return SendToController{}
	default:
		return Nack{NackType: packet.ErrorInRouting(next)}
	}
}
