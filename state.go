package wireup

// stateKind indexes the four per-wire states.
type stateKind int

const (
	stateInitial stateKind = iota
	stateLive
	stateClosing
	stateFree
)

// wireState is one state's handler triple, dispatched centrally by
// transition-driving code rather than via a switch statement at each call
// site, matching the table-driven shape of the protocol this implements.
type wireState struct {
	descr   string
	expire  func(wr *Wiring, id SenderID) *wireState
	wakeup  func(wr *Wiring, id SenderID) *wireState
	receive func(wr *Wiring, id SenderID, msg message) *wireState
}

var (
	stInitial wireState
	stLive    wireState
	stClosing wireState
	stFree    wireState
)

// stateTable is indexed by stateKind; every wire's state pointer always
// points at one of these four entries.
var stateTable = [...]*wireState{
	stateInitial: &stInitial,
	stateLive:    &stLive,
	stateClosing: &stClosing,
	stateFree:    &stFree,
}

func init() {
	stInitial = wireState{descr: "initial", expire: ignoreExpire, wakeup: retry, receive: startLife}
	stLive = wireState{descr: "live", expire: destroyWire, wakeup: sendKeepalive, receive: continueLife}
	stClosing = wireState{descr: "closing", expire: ignoreExpire, wakeup: ignoreWakeup, receive: rejectMsg}
	stFree = wireState{descr: "free", expire: ignoreExpire, wakeup: ignoreWakeup, receive: rejectMsg}
}

// transition is the single place a wire's state pointer is mutated. It
// fires the wire's one-shot callback, if one is installed, exactly once
// per genuine state change; the callback's return value decides whether
// it stays installed.
func (wr *Wiring) transition(id SenderID, nstate *wireState) {
	w := &wr.tbl().wires[id]
	ostate := w.state
	w.state = nstate
	w.live.Store(nstate == &stLive)

	wr.log.Debugf(catWireState, "wire %d state change %s -> %s", id, ostate.descr, nstate.descr)

	if w.callback == nil || ostate == nstate {
		return
	}

	var ev Event
	switch nstate {
	case &stFree:
		ev = Event{Kind: EventReclaimed, SenderID: SenderIDNil}
	case &stClosing:
		ev = Event{Kind: EventClosed, SenderID: SenderIDNil}
	case &stLive:
		ev = Event{Kind: EventEstablished, Endpoint: w.endpoint, SenderID: w.peerSenderID}
	default:
		return
	}

	data, keep := w.callback(wr.tbl().assoc[id], ev)
	wr.tbl().assoc[id] = data
	if !keep {
		w.callback = nil
	}
}

// closeWire implements the common "stop locally" sequence shared by
// destroy, retry-on-send-failure, and the STOP-receiving handlers: clear
// the association entry, drop the adopted sender id, unlink from both
// timeout queues, and push the slot onto the current epoch's closing
// list. The actual endpoint close and slot reuse happen at reclamation.
func (wr *Wiring) closeWire(id SenderID) {
	w := &wr.tbl().wires[id]
	wr.tbl().assoc[id] = nil
	w.peerSenderID = SenderIDNil
	wr.expireQ.remove(id)
	wr.wakeupQ.remove(id)
	wr.closingPut(id)
}

func ignoreExpire(wr *Wiring, id SenderID) *wireState {
	wr.log.Debugf(catWireState, "ignoring expiration for wire %d", id)
	return wr.tbl().wires[id].state
}

func ignoreWakeup(wr *Wiring, id SenderID) *wireState {
	wr.log.Debugf(catWireState, "ignoring wakeup for wire %d", id)
	return wr.tbl().wires[id].state
}

func rejectMsg(wr *Wiring, id SenderID, msg message) *wireState {
	wr.log.Warnf(catWireupRx, "rejecting %s from sender %d for wire %d in state %s",
		msg.op, msg.senderID, id, wr.tbl().wires[id].state.descr)
	return wr.tbl().wires[id].state
}

// destroyWire is LIVE's expire handler: a silent peer is unconditionally
// torn down.
func destroyWire(wr *Wiring, id SenderID) *wireState {
	wr.closeWire(id)
	return &stClosing
}

// startLife is INITIAL's receive handler. It accepts an ACK adopting the
// peer's announced sender id and arms both timeouts for LIVE; a STOP
// closes the wire before it was ever established; anything else is
// dropped in place.
func startLife(wr *Wiring, id SenderID, msg message) *wireState {
	w := &wr.tbl().wires[id]

	if msg.senderID >= SenderIDMax {
		wr.log.Warnf(catWireupRx, "bad foreign sender id %d for wire %d", msg.senderID, id)
		return w.state
	}

	if msg.op == opSTOP {
		wr.closeWire(id)
		return &stClosing
	}
	if msg.op != opACK {
		wr.log.Warnf(catWireupRx, "unexpected opcode %s for wire %d in INITIAL", msg.op, id)
		return w.state
	}
	if len(msg.addr) != 0 {
		wr.log.Warnf(catWireupRx, "unexpected address length %d in ACK for wire %d", len(msg.addr), id)
		return w.state
	}

	w.peerSenderID = msg.senderID
	w.pending = nil

	now := wr.clock()
	wr.expireQ.remove(id)
	wr.expireQ.put(id, wr.expireDeadline(now))
	wr.wakeupQ.remove(id)
	wr.wakeupQ.put(id, now.Add(wr.opts.keepaliveInterval))

	return &stLive
}

// continueLife is LIVE's receive handler: a KEEPALIVE from the already-
// adopted peer sender id rearms expire; a STOP, or a KEEPALIVE carrying a
// different sender id, closes the wire; any other message (wrong opcode,
// non-empty address, out-of-range sender id) is dropped in place.
func continueLife(wr *Wiring, id SenderID, msg message) *wireState {
	w := &wr.tbl().wires[id]

	if msg.senderID >= SenderIDMax {
		wr.log.Warnf(catWireupRx, "bad foreign sender id %d for wire %d", msg.senderID, id)
		return w.state
	}

	if msg.op == opSTOP {
		wr.closeWire(id)
		return &stClosing
	}
	if msg.op != opKEEPALIVE {
		wr.log.Warnf(catWireupRx, "unexpected opcode %s for wire %d in LIVE", msg.op, id)
		return w.state
	}
	if len(msg.addr) != 0 {
		wr.log.Warnf(catWireupRx, "unexpected address length %d in KEEPALIVE for wire %d", len(msg.addr), id)
		return w.state
	}
	if msg.senderID != w.peerSenderID {
		wr.log.Warnf(catWireupRx, "sender id %d mismatches assignment %d for wire %d",
			msg.senderID, w.peerSenderID, id)
		wr.closeWire(id)
		return &stClosing
	}

	wr.expireQ.remove(id)
	wr.expireQ.put(id, wr.expireDeadline(wr.clock()))

	return &stLive
}

// sendKeepalive is LIVE's wakeup handler: it posts a KEEPALIVE to the
// peer and requeues itself. A send failure leaves the state unchanged;
// the next wakeup or the expire timer is responsible for recovery.
func sendKeepalive(wr *Wiring, id SenderID) *wireState {
	w := &wr.tbl().wires[id]

	msg := message{op: opKEEPALIVE, senderID: id}
	buf, err := encode(msg)
	if err == nil {
		err = wr.sendControl(w.endpoint, shiftIn(w.peerSenderID), buf)
	}
	if err != nil {
		wr.log.Debugf(catWireupTx, "keepalive send failed for wire %d: %v", id, err)
	}

	wr.wakeupQ.remove(id)
	wr.wakeupQ.put(id, wr.clock().Add(wr.opts.keepaliveInterval))

	return w.state
}

// retry is INITIAL's wakeup handler: it resends the stored REQ. A send
// failure closes the wire outright; otherwise it requeues itself while
// expire continues to count down independently.
func retry(wr *Wiring, id SenderID) *wireState {
	w := &wr.tbl().wires[id]

	if err := wr.sendControl(w.endpoint, wireupStartTag, w.pending); err != nil {
		wr.log.Debugf(catWireupTx, "retry send failed for wire %d: %v", id, err)
		wr.closeWire(id)
		return &stClosing
	}

	wr.wakeupQ.remove(id)
	wr.wakeupQ.put(id, wr.clock().Add(wr.opts.retryInterval))

	return &stInitial
}
