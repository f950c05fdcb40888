package metrics

import (
	"testing"

	"github.com/dronecore/drone/core/packet"
)

func TestSnapshotStartsZero(t *testing.T) {
	m := New("test-drone")
	snap := m.Snapshot()
	if snap != (Snapshot{}) {
		t.Fatalf("fresh Metrics should snapshot to zero, got %+v", snap)
	}
}

func TestIncrementsReflectInSnapshot(t *testing.T) {
	m := New("test-drone")

	m.IncForwarded()
	m.IncForwarded()
	m.IncDropped()
	m.IncNacked(packet.NackDropped)
	m.IncNacked(packet.NackErrorInRouting)
	m.IncControllerShortcut()
	m.IncFloodPropagated()
	m.IncFloodAbsorbed()

	snap := m.Snapshot()
	want := Snapshot{
		Forwarded:       2,
		Dropped:         1,
		Nacked:          2,
		ControllerShort: 1,
		FloodPropagated: 1,
		FloodAbsorbed:   1,
	}
	if snap != want {
		t.Fatalf("Snapshot() = %+v, want %+v", snap, want)
	}
}

func TestNeighbourCountGauge(t *testing.T) {
	m := New("test-drone")
	m.SetNeighbourCount(3)

	metricFamilies, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}

	var found bool
	for _, mf := range metricFamilies {
		if mf.GetName() != "drone_neighbours" {
			continue
		}
		found = true
		if got := mf.GetMetric()[0].GetGauge().GetValue(); got != 3 {
			t.Fatalf("drone_neighbours gauge = %v, want 3", got)
		}
	}
	if !found {
		t.Fatalf("drone_neighbours metric not registered")
	}
}

func TestDistinctInstancesDoNotCollide(t *testing.T) {
	a := New("drone-a")
	b := New("drone-b")
	a.IncForwarded()

	if snap := b.Snapshot(); snap.Forwarded != 0 {
		t.Fatalf("instance b observed instance a's increment: %+v", snap)
	}
}
