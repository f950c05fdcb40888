// Package control defines the command and event vocabulary exchanged
// between a drone and its controller (spec.md §6).
package control

import (
	"github.com/dronecore/drone/core/network"
	"github.com/dronecore/drone/core/packet"
)

// Command is the closed sum of controller-to-drone commands. Commands never
// fail: the drone applies them unconditionally (spec.md §4.5).
type Command interface {
	isCommand()
}

// AddSender installs or replaces the outbound sender for a neighbour.
type AddSender struct {
	ID     network.NodeId
	Sender chan<- packet.Packet
}

func (AddSender) isCommand() {}

// RemoveSender removes a neighbour's outbound sender, if present.
type RemoveSender struct {
	ID network.NodeId
}

func (RemoveSender) isCommand() {}

// SetPacketDropRate replaces the drone's pdr. Callers are trusted to clamp
// it to [0, 1] (spec.md §4.5).
type SetPacketDropRate struct {
	PDR float32
}

func (SetPacketDropRate) isCommand() {}

// Crash begins the drone's controlled shutdown (spec.md §4.6).
type Crash struct{}

func (Crash) isCommand() {}

// Event is the closed sum of drone-to-controller events.
type Event interface {
	isEvent()
}

// PacketSent reports a packet as observed on ingress, before hop_index is
// advanced, immediately preceding its send to the next hop.
type PacketSent struct {
	Packet packet.Packet
}

func (PacketSent) isEvent() {}

// PacketDropped reports the nack packet corresponding to a probabilistic
// drop, about to be emitted.
type PacketDropped struct {
	Packet packet.Packet
}

func (PacketDropped) isEvent() {}

// ControllerShortcut reports a control-plane packet (Ack, Nack, or
// FloodResponse) whose next hop is unreachable locally.
type ControllerShortcut struct {
	Packet packet.Packet
}

func (ControllerShortcut) isEvent() {}
