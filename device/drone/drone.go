// Package drone implements the drone runtime: the stateful goroutine that
// owns a neighbour map, a drop rate, a flood history, and a lifecycle flag,
// and drives the packet-handling state machine in core/classify to realise
// forward/nack/flood-propagation/controller-shortcut/ignore verdicts
// (spec.md §4, §5, §6).
package drone

import (
	"log/slog"

	"github.com/dronecore/drone/core/classify"
	"github.com/dronecore/drone/core/drop"
	"github.com/dronecore/drone/core/flood"
	"github.com/dronecore/drone/core/network"
	"github.com/dronecore/drone/core/packet"
	"github.com/dronecore/drone/device/control"
	"github.com/dronecore/drone/device/metrics"
)

// Config configures ambient, non-identifying aspects of a Drone: the drop
// sampler, observability, and logging. The identifying/topology arguments
// (id, channels, neighbours, pdr) are positional constructor arguments,
// matching this spec's construction contract (spec.md §6).
type Config struct {
	// DropSource supplies the Bernoulli(pdr) coin. Defaults to drop.NewUniform().
	DropSource drop.Sampler

	// Metrics, if non-nil, receives forward/drop/nack/shortcut/flood counters.
	Metrics *metrics.Metrics

	// Logger falls back to slog.Default() if nil.
	Logger *slog.Logger
}

// Drone is a single forwarding node. A Drone must be driven by calling Run
// on its own goroutine; all of its mutable state is owned exclusively by
// that goroutine once Run starts (spec.md §5) — AddSender/RemoveSender/
// SetPacketDropRate/Crash arrive as messages on controllerRecv rather than
// via direct mutation, so no lock guards the neighbour map, pdr, or flood
// history.
type Drone struct {
	cfg Config
	log *slog.Logger

	id  network.NodeId
	pdr float32

	neighbours map[network.NodeId]chan<- packet.Packet
	active     bool
	floodHist  *flood.History
	dropSource drop.Sampler
	metrics    *metrics.Metrics

	controllerSend chan<- control.Event
	controllerRecv <-chan control.Command
	packetRecv     <-chan packet.Packet
}

// New constructs a Drone. neighbours is copied, not retained by reference,
// so the caller may keep mutating its own map after construction without
// racing the drone's ownership of its copy.
func New(
	id network.NodeId,
	controllerSend chan<- control.Event,
	controllerRecv <-chan control.Command,
	packetRecv <-chan packet.Packet,
	neighbours map[network.NodeId]chan<- packet.Packet,
	pdr float32,
	cfg Config,
) *Drone {
	if cfg.DropSource == nil {
		cfg.DropSource = drop.NewUniform()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	own := make(map[network.NodeId]chan<- packet.Packet, len(neighbours))
	for k, v := range neighbours {
		own[k] = v
	}

	return &Drone{
		cfg:            cfg,
		log:            logger.WithGroup("drone"),
		id:             id,
		pdr:            pdr,
		neighbours:     own,
		floodHist:      flood.New(),
		dropSource:     cfg.DropSource,
		metrics:        cfg.Metrics,
		controllerSend: controllerSend,
		controllerRecv: controllerRecv,
		packetRecv:     packetRecv,
	}
}

// ID returns the drone's node identity.
func (d *Drone) ID() network.NodeId { return d.id }

// Active reports whether the drone's main loop is (or was last) running.
func (d *Drone) Active() bool { return d.active }

// PDR returns the current packet-drop rate.
func (d *Drone) PDR() float32 { return d.pdr }

// NeighbourCount returns the number of installed neighbour senders.
func (d *Drone) NeighbourCount() int { return len(d.neighbours) }

// Run starts the main loop on the calling goroutine (spec.md §6: "run()
// starts the main loop on the current thread"). It returns once Crash has
// been processed and the shutdown drain has completed.
func (d *Drone) Run() {
	d.active = true
	d.log.Debug("drone starting", "id", d.id, "pdr", d.pdr)

	for d.active {
		d.step()
	}

	d.finishUp()
	d.floodHist.Clear()
	d.log.Debug("drone stopped", "id", d.id)
}

// step runs one iteration of the biased select: the command channel is
// polled non-blockingly first so that Crash and topology updates are never
// starved by a flood of data packets (spec.md §4.6, §5), then a blocking
// select is used to wait for whichever channel has something ready.
func (d *Drone) step() {
	select {
	case cmd, ok := <-d.controllerRecv:
		if ok {
			d.handleCommand(cmd)
		}
		return
	default:
	}

	select {
	case cmd, ok := <-d.controllerRecv:
		if ok {
			d.handleCommand(cmd)
		}
	case pkt, ok := <-d.packetRecv:
		if ok {
			d.handlePacket(pkt)
		}
	}
}

// handleCommand applies a controller command. Commands never fail
// (spec.md §4.5).
func (d *Drone) handleCommand(cmd control.Command) {
	switch c := cmd.(type) {
	case control.AddSender:
		d.neighbours[c.ID] = c.Sender
		d.reportNeighbourCount()
	case control.RemoveSender:
		delete(d.neighbours, c.ID)
		d.reportNeighbourCount()
	case control.SetPacketDropRate:
		d.pdr = c.PDR
	case control.Crash:
		d.active = false
	}
}

func (d *Drone) reportNeighbourCount() {
	if d.metrics != nil {
		d.metrics.SetNeighbourCount(len(d.neighbours))
	}
}

// classifyState builds the core/classify.State snapshot for the current
// drone state. NeighbourExists closes over d.neighbours rather than copying
// it, which is safe because only this goroutine ever touches the map.
func (d *Drone) classifyState() classify.State {
	return classify.State{
		SelfID: d.id,
		PDR:    d.pdr,
		NeighbourExists: func(n network.NodeId) bool {
			_, ok := d.neighbours[n]
			return ok
		},
		DropSource: d.dropSource,
	}
}

// handlePacket classifies pkt and realises the resulting verdict
// (spec.md §4.1). It is also the re-entry point for synthesised nack and
// flood-response packets (spec.md §4.3 step 5, §4.4 step 3, §9).
func (d *Drone) handlePacket(pkt packet.Packet) {
	verdict := classify.Classify(d.classifyState(), pkt)
	switch v := verdict.(type) {
	case classify.Forward:
		d.forward(pkt, v.Neighbour)
	case classify.Nack:
		d.nackAction(pkt, v.NackType)
	case classify.FloodRequestVerdict:
		if req, ok := pkt.Type.(packet.FloodRequestType); ok {
			d.handleFloodRequest(pkt.RoutingHeader, pkt.SessionID, req)
		}
	case classify.SendToController:
		d.emitEvent(control.ControllerShortcut{Packet: pkt})
		if d.metrics != nil {
			d.metrics.IncControllerShortcut()
		}
	case classify.Ignore:
		// nothing to do
	}
}

// forward realises the Forward verdict (spec.md §4.2): emit PacketSent with
// the packet as observed on ingress, advance hop_index, then best-effort
// send to the neighbour.
func (d *Drone) forward(pkt packet.Packet, neighbour network.NodeId) {
	d.emitEvent(control.PacketSent{Packet: pkt})

	advanced := pkt
	advanced.RoutingHeader = pkt.RoutingHeader.Advanced()

	sender, ok := d.neighbours[neighbour]
	if !ok {
		d.log.Warn("forward: neighbour no longer installed", "neighbour", neighbour)
		return
	}

	select {
	case sender <- advanced:
		if d.metrics != nil {
			d.metrics.IncForwarded()
		}
	default:
		d.log.Warn("forward: neighbour channel full or closed, dropping", "neighbour", neighbour)
	}
}

// emitEvent best-effort sends an event to the controller. A full or closed
// controller channel is logged, not retried — losing controller events
// never blocks traffic (spec.md §4.2, §7).
func (d *Drone) emitEvent(ev control.Event) {
	select {
	case d.controllerSend <- ev:
	default:
		d.log.Warn("controller event dropped, channel full or closed")
	}
}

// nackAction realises the Nack verdict (spec.md §4.3). kind is the nack
// type to send back; original is the packet that was classified. When kind
// is Dropped, a PacketDropped event carrying the nack about to be sent back
// is additionally emitted.
func (d *Drone) nackAction(original packet.Packet, kind packet.NackType) {
	nack := packet.NackPayload{
		FragmentIndex: original.GetFragmentIndex(),
		NackType:      kind,
	}
	if kind.Kind == packet.NackDropped {
		d.emitEvent(control.PacketDropped{Packet: packet.Packet{
			RoutingHeader: original.RoutingHeader.Reversed(),
			SessionID:     original.SessionID,
			Type:          nack,
		}})
		if d.metrics != nil {
			d.metrics.IncDropped()
		}
	}
	if d.metrics != nil {
		d.metrics.IncNacked(kind.Kind)
	}
	d.sendBack(nack, original.RoutingHeader, original.SessionID)
}

// sendBack builds the reversed-route return packet and re-enters the
// classifier with it (spec.md §4.3 steps 1-5).
func (d *Drone) sendBack(t packet.Type, originalHeader network.SourceRoutingHeader, sessionID uint64) {
	synthetic := packet.Packet{
		RoutingHeader: originalHeader.Reversed(),
		SessionID:     sessionID,
		Type:          t,
	}
	d.handlePacket(synthetic)
}

// handleFloodRequest realises the FloodRequest verdict (spec.md §4.4). The
// arrival neighbour (recipient) is read from the path trace before it is
// extended — see spec.md §9's resolution of the append/read-order open
// question.
func (d *Drone) handleFloodRequest(srh network.SourceRoutingHeader, sessionID uint64, req packet.FloodRequestType) {
	recipient := req.InitiatorID
	if n := len(req.PathTrace); n > 0 {
		recipient = req.PathTrace[n-1].ID
	}

	trace := make([]packet.PathEntry, len(req.PathTrace), len(req.PathTrace)+1)
	copy(trace, req.PathTrace)
	trace = append(trace, packet.PathEntry{ID: d.id, Type: packet.NodeTypeDrone})

	key := flood.Key{InitiatorID: req.InitiatorID, FloodID: req.FloodID}

	if d.floodHist.Contains(key) {
		d.respondToFlood(sessionID, req.FloodID, trace)
		if d.metrics != nil {
			d.metrics.IncFloodAbsorbed()
		}
		return
	}

	d.floodHist.Insert(key)
	propagated := packet.FloodRequestType{FloodID: req.FloodID, InitiatorID: req.InitiatorID, PathTrace: trace}

	for nid := range d.neighbours {
		if nid == recipient {
			continue
		}
		d.forward(packet.Packet{RoutingHeader: srh, SessionID: sessionID, Type: propagated}, nid)
		if d.metrics != nil {
			d.metrics.IncFloodPropagated()
		}
	}
}

// respondToFlood builds a FloodResponse whose route is the reverse of the
// path trace (each node at most once), and re-enters the classifier with
// it, so it is forwarded back toward the initiator like any other packet.
func (d *Drone) respondToFlood(sessionID uint64, floodID uint64, trace []packet.PathEntry) {
	hops := make([]network.NodeId, len(trace))
	for i, e := range trace {
		hops[i] = e.ID
	}
	hops = network.WithoutLoops(network.ReverseHops(hops))

	response := packet.Packet{
		RoutingHeader: network.WithFirstHop(hops),
		SessionID:     sessionID,
		Type:          packet.FloodResponseType{FloodID: floodID, PathTrace: trace},
	}
	d.handlePacket(response)
}

// finishUp runs the shutdown drain (spec.md §4.6 step 2): the packet
// receiver is detached (its value is only held by this local call, so
// nothing else ever reads from it again) and every packet buffered in it at
// the moment of Crash is drained to completion.
//
//   - MsgFragment: synthesise Nack(ErrorInRouting(self)) and send it back.
//   - FloodRequest: discarded, a crashing drone must not propagate discovery.
//   - Ack / Nack / FloodResponse: routed normally via handlePacket.
//
// Packets sent to the drone's sender after this point are never observed:
// they sit unread in the (now orphaned, from the drone's perspective)
// channel, which satisfies spec.md §4.6's finiteness guarantee without
// requiring the caller to close or otherwise signal the channel.
func (d *Drone) finishUp() {
	recv := d.packetRecv
	d.packetRecv = nil

	for {
		select {
		case pkt, ok := <-recv:
			if !ok {
				return
			}
			d.drainPacket(pkt)
		default:
			return
		}
	}
}

func (d *Drone) drainPacket(pkt packet.Packet) {
	switch t := pkt.Type.(type) {
	case packet.MsgFragmentType:
		d.sendBack(packet.NackPayload{
			FragmentIndex: t.Fragment.FragmentIndex,
			NackType:      packet.ErrorInRouting(d.id),
		}, pkt.RoutingHeader, pkt.SessionID)
	case packet.FloodRequestType:
		// discarded: a crashing drone must not propagate discovery
	default:
		d.handlePacket(pkt)
	}
}
