// Package flood provides the flood-request deduplication history a drone
// consults and grows while it is active.
package flood

import "github.com/dronecore/drone/core/network"

// Key identifies a flood by its initiator and the flood id the initiator
// assigned it.
type Key struct {
	InitiatorID network.NodeId
	FloodID     uint64
}

// History is a set of (initiator_id, flood_id) pairs already seen by this
// drone. Unlike the teacher's circular-buffer packet deduplicator, History
// never evicts: spec.md §4.4 assumes a flood identity is globally unique per
// initiator for the lifetime of the drone, so entries are kept forever (or
// until Clear, called on drone destruction).
type History struct {
	seen map[Key]struct{}
}

// New creates an empty flood history.
func New() *History {
	return &History{seen: make(map[Key]struct{})}
}

// Contains reports whether the given flood has already been recorded.
func (h *History) Contains(key Key) bool {
	_, ok := h.seen[key]
	return ok
}

// Insert records the given flood. It is idempotent.
func (h *History) Insert(key Key) {
	h.seen[key] = struct{}{}
}

// Clear forgets every recorded flood. Called when the owning drone is
// destroyed; never called during normal operation (spec.md §3).
func (h *History) Clear() {
	clear(h.seen)
}

// Len reports how many distinct floods have been recorded, for tests and
// metrics.
func (h *History) Len() int {
	return len(h.seen)
}
