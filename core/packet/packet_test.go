package packet

import (
	"testing"

	"github.com/dronecore/drone/core/network"
)

func TestNackConstructors(t *testing.T) {
	if got := Dropped(); got.Kind != NackDropped {
		t.Fatalf("Dropped().Kind = %v, want NackDropped", got.Kind)
	}
	if got := DestinationIsDrone(); got.Kind != NackDestinationIsDrone {
		t.Fatalf("DestinationIsDrone().Kind = %v, want NackDestinationIsDrone", got.Kind)
	}
	if got := UnexpectedRecipient(network.NodeId(7)); got.Kind != NackUnexpectedRecipient || got.Node != 7 {
		t.Fatalf("UnexpectedRecipient(7) = %+v, want {NackUnexpectedRecipient 7}", got)
	}
	if got := ErrorInRouting(network.NodeId(9)); got.Kind != NackErrorInRouting || got.Node != 9 {
		t.Fatalf("ErrorInRouting(9) = %+v, want {NackErrorInRouting 9}", got)
	}
}

func TestGetFragmentIndex(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want uint64
	}{
		{"msg fragment", MsgFragmentType{Fragment: Fragment{FragmentIndex: 3, TotalNFragments: 5}}, 3},
		{"ack", AckType{FragmentIndex: 4}, 4},
		{"nack", NackPayload{FragmentIndex: 2, NackType: Dropped()}, 2},
		{"flood request", FloodRequestType{FloodID: 1, InitiatorID: 40}, 0},
		{"flood response", FloodResponseType{FloodID: 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Packet{Type: tt.typ}
			if got := p.GetFragmentIndex(); got != tt.want {
				t.Fatalf("GetFragmentIndex() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKindDispatch(t *testing.T) {
	tests := []struct {
		typ  Type
		want Kind
	}{
		{MsgFragmentType{}, KindMsgFragment},
		{AckType{}, KindAck},
		{NackPayload{}, KindNack},
		{FloodRequestType{}, KindFloodRequest},
		{FloodResponseType{}, KindFloodResponse},
	}
	for _, tt := range tests {
		if got := tt.typ.Kind(); got != tt.want {
			t.Fatalf("%#v.Kind() = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	if Kind(255).String() == "" {
		t.Fatalf("unknown Kind should still render a non-empty string")
	}
	if KindMsgFragment.String() != "MsgFragment" {
		t.Fatalf("KindMsgFragment.String() = %q", KindMsgFragment.String())
	}
}

func TestPacketString(t *testing.T) {
	p := Packet{
		SessionID: 42,
		RoutingHeader: network.SourceRoutingHeader{
			Hops:     []network.NodeId{40, 3, 50},
			HopIndex: 1,
		},
		Type: AckType{FragmentIndex: 0},
	}
	s := p.String()
	if s == "" {
		t.Fatalf("String() returned empty")
	}
}
