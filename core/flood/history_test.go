package flood

import (
	"testing"

	"github.com/dronecore/drone/core/network"
)

func TestHistoryContainsInsert(t *testing.T) {
	h := New()
	key := Key{InitiatorID: network.NodeId(40), FloodID: 7}

	if h.Contains(key) {
		t.Fatalf("fresh history should not contain any key")
	}

	h.Insert(key)
	if !h.Contains(key) {
		t.Fatalf("history should contain key after Insert")
	}

	other := Key{InitiatorID: network.NodeId(40), FloodID: 8}
	if h.Contains(other) {
		t.Fatalf("history should not conflate distinct flood ids")
	}
}

func TestHistoryInsertIdempotent(t *testing.T) {
	h := New()
	key := Key{InitiatorID: network.NodeId(1), FloodID: 1}
	h.Insert(key)
	h.Insert(key)
	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after duplicate Insert", h.Len())
	}
}

func TestHistoryClear(t *testing.T) {
	h := New()
	h.Insert(Key{InitiatorID: network.NodeId(1), FloodID: 1})
	h.Clear()
	if h.Len() != 0 {
		t.Fatalf("Len() = %d after Clear, want 0", h.Len())
	}
}
