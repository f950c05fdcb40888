// Package packet defines the five-case packet-type sum the drone classifies
// and acts on, plus the envelope (routing header, session id, type) that
// carries it.
package packet

import (
	"fmt"

	"github.com/dronecore/drone/core/network"
)

// NodeType distinguishes the role of a node recorded in a flood path trace.
type NodeType uint8

const (
	NodeTypeClient NodeType = iota
	NodeTypeDrone
	NodeTypeServer
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeClient:
		return "Client"
	case NodeTypeDrone:
		return "Drone"
	case NodeTypeServer:
		return "Server"
	default:
		return fmt.Sprintf("NodeType(%d)", uint8(t))
	}
}

// PathEntry is one hop recorded in a flood's path trace.
type PathEntry struct {
	ID   network.NodeId
	Type NodeType
}

// Fragment is a fixed-size chunk of a user message, addressed by
// (FragmentIndex, TotalNFragments).
type Fragment struct {
	FragmentIndex   uint64
	TotalNFragments uint64
	Data            []byte
}

// NackKind is the reason a Nack was generated.
type NackKind uint8

const (
	NackDropped NackKind = iota
	NackDestinationIsDrone
	NackUnexpectedRecipient
	NackErrorInRouting
)

func (k NackKind) String() string {
	switch k {
	case NackDropped:
		return "Dropped"
	case NackDestinationIsDrone:
		return "DestinationIsDrone"
	case NackUnexpectedRecipient:
		return "UnexpectedRecipient"
	case NackErrorInRouting:
		return "ErrorInRouting"
	default:
		return fmt.Sprintf("NackKind(%d)", uint8(k))
	}
}

// NackType is the nack payload: a kind plus, for the two hop-carrying kinds,
// the node at fault. Node is unused (zero) for Dropped and DestinationIsDrone.
type NackType struct {
	Kind NackKind
	Node network.NodeId
}

func UnexpectedRecipient(n network.NodeId) NackType {
	return NackType{Kind: NackUnexpectedRecipient, Node: n}
}

func ErrorInRouting(n network.NodeId) NackType {
	return NackType{Kind: NackErrorInRouting, Node: n}
}

func Dropped() NackType { return NackType{Kind: NackDropped} }

func DestinationIsDrone() NackType { return NackType{Kind: NackDestinationIsDrone} }

// Kind identifies which of the five PacketType cases a Type value holds.
type Kind uint8

const (
	KindMsgFragment Kind = iota
	KindAck
	KindNack
	KindFloodRequest
	KindFloodResponse
)

func (k Kind) String() string {
	switch k {
	case KindMsgFragment:
		return "MsgFragment"
	case KindAck:
		return "Ack"
	case KindNack:
		return "Nack"
	case KindFloodRequest:
		return "FloodRequest"
	case KindFloodResponse:
		return "FloodResponse"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Type is the closed sum of the five packet payload kinds. It is implemented
// by MsgFragmentType, AckType, NackPayload, FloodRequestType and
// FloodResponseType below; the unexported marker method closes the set the
// way this spec's tagged PacketType variant is closed in the original.
type Type interface {
	Kind() Kind
	isPacketType()
}

type MsgFragmentType struct{ Fragment Fragment }

func (MsgFragmentType) Kind() Kind    { return KindMsgFragment }
func (MsgFragmentType) isPacketType() {}

type AckType struct{ FragmentIndex uint64 }

func (AckType) Kind() Kind    { return KindAck }
func (AckType) isPacketType() {}

type NackPayload struct {
	FragmentIndex uint64
	NackType      NackType
}

func (NackPayload) Kind() Kind    { return KindNack }
func (NackPayload) isPacketType() {}

type FloodRequestType struct {
	FloodID     uint64
	InitiatorID network.NodeId
	PathTrace   []PathEntry
}

func (FloodRequestType) Kind() Kind    { return KindFloodRequest }
func (FloodRequestType) isPacketType() {}

type FloodResponseType struct {
	FloodID   uint64
	PathTrace []PathEntry
}

func (FloodResponseType) Kind() Kind    { return KindFloodResponse }
func (FloodResponseType) isPacketType() {}

// Packet is a routing header, a session id, and one of the five payload
// types.
type Packet struct {
	RoutingHeader network.SourceRoutingHeader
	SessionID     uint64
	Type          Type
}

// GetFragmentIndex returns the fragment index carried by MsgFragment, Ack or
// Nack payloads, or 0 for payload kinds that carry none (FloodRequest,
// FloodResponse).
func (p Packet) GetFragmentIndex() uint64 {
	switch t := p.Type.(type) {
	case MsgFragmentType:
		return t.Fragment.FragmentIndex
	case AckType:
		return t.FragmentIndex
	case NackPayload:
		return t.FragmentIndex
	default:
		return 0
	}
}

func (p Packet) String() string {
	return fmt.Sprintf("Packet{session=%d, type=%s, hops=%v, hop_index=%d}",
		p.SessionID, p.Type.Kind(), p.RoutingHeader.Hops, p.RoutingHeader.HopIndex)
}
