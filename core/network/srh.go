package network

import (
	"errors"
	"fmt"
)

var (
	// ErrHopIndexOutOfRange is returned by NewSourceRoutingHeader when
	// hop_index is not within [0, len(hops)] for a non-empty hop list.
	ErrHopIndexOutOfRange = errors.New("hop_index out of range")
)

// SourceRoutingHeader is an ordered sequence of hops plus a cursor into it.
// The zero value (nil Hops, HopIndex 0) is the valid "no route" sentinel.
//
// Invariants (enforced by NewSourceRoutingHeader, assumed by every other
// method):
//   - 0 <= HopIndex <= len(Hops) when len(Hops) > 0.
//   - An empty Hops means "no route" regardless of HopIndex.
type SourceRoutingHeader struct {
	Hops     []NodeId
	HopIndex int
}

// NewSourceRoutingHeader validates and builds a routing header.
func NewSourceRoutingHeader(hops []NodeId, hopIndex int) (SourceRoutingHeader, error) {
	if len(hops) > 0 && (hopIndex < 0 || hopIndex > len(hops)) {
		return SourceRoutingHeader{}, fmt.Errorf("%w: index %d for %d hops", ErrHopIndexOutOfRange, hopIndex, len(hops))
	}
	return SourceRoutingHeader{Hops: hops, HopIndex: hopIndex}, nil
}

// WithFirstHop builds a routing header positioned at its first hop (HopIndex
// 0), the shape a packet carries on its very first transmission.
func WithFirstHop(hops []NodeId) SourceRoutingHeader {
	return SourceRoutingHeader{Hops: hops, HopIndex: 0}
}

// IsEmpty reports the "no route" sentinel (spec's malformed-packet case).
func (s SourceRoutingHeader) IsEmpty() bool {
	return len(s.Hops) == 0
}

// CurrentHop returns hops[hop_index] and true, or the zero value and false
// when hop_index is not a valid index (including the empty-route case).
func (s SourceRoutingHeader) CurrentHop() (NodeId, bool) {
	if s.HopIndex < 0 || s.HopIndex >= len(s.Hops) {
		return 0, false
	}
	return s.Hops[s.HopIndex], true
}

// NextHop returns hops[hop_index+1] and true, or the zero value and false
// when there is no such hop.
func (s SourceRoutingHeader) NextHop() (NodeId, bool) {
	next := s.HopIndex + 1
	if next < 0 || next >= len(s.Hops) {
		return 0, false
	}
	return s.Hops[next], true
}

// IsLastHop reports whether hop_index addresses the final element of Hops.
func (s SourceRoutingHeader) IsLastHop() bool {
	return len(s.Hops) > 0 && s.HopIndex == len(s.Hops)-1
}

// Advanced returns a copy of the header with hop_index incremented by one.
// It never mutates the receiver, matching the value-semantics the rest of
// this package uses for Packet.
func (s SourceRoutingHeader) Advanced() SourceRoutingHeader {
	return SourceRoutingHeader{Hops: s.Hops, HopIndex: s.HopIndex + 1}
}

// SubRoute returns a copy of hops[0 ..= hopIndex] (inclusive of hopIndex).
func (s SourceRoutingHeader) SubRoute(hopIndex int) []NodeId {
	if hopIndex < 0 || hopIndex >= len(s.Hops) {
		return nil
	}
	out := make([]NodeId, hopIndex+1)
	copy(out, s.Hops[:hopIndex+1])
	return out
}

// Reversed returns the consumed prefix (hops[0 ..= hop_index]) reversed, as
// a fresh SourceRoutingHeader positioned at hop_index 0. This is the
// nack/return-path construction of spec.md §4.3 steps 1-3.
func (s SourceRoutingHeader) Reversed() SourceRoutingHeader {
	sub := s.SubRoute(s.HopIndex)
	return SourceRoutingHeader{Hops: ReverseHops(sub), HopIndex: 0}
}

// ReverseHops returns a newly allocated, reversed copy of hops.
func ReverseHops(hops []NodeId) []NodeId {
	out := make([]NodeId, len(hops))
	for i, h := range hops {
		out[len(hops)-1-i] = h
	}
	return out
}

// WithoutLoops removes any duplicate hop so that the resulting sequence
// visits each node at most once, preserving first-occurrence order.
func WithoutLoops(hops []NodeId) []NodeId {
	seen := make(map[NodeId]struct{}, len(hops))
	out := make([]NodeId, 0, len(hops))
	for _, h := range hops {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}

// WithoutLoops returns a copy of the header with WithoutLoops applied to its
// Hops. Used to sanitise flood-response headers before classifier re-entry.
func (s SourceRoutingHeader) WithoutLoops() SourceRoutingHeader {
	return SourceRoutingHeader{Hops: WithoutLoops(s.Hops), HopIndex: s.HopIndex}
}
