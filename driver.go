package wireup

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// DataNil is the sentinel GetData returns for a wire id that does not
// currently name a LIVE wire, distinguishing "not connected" from a
// connected wire whose association data is itself nil.
var DataNil = new(struct{})

// Wiring is one instance of the protocol: a wire table, its timeout
// queues, the epoch reclamation scheduler, and the transport it drives.
// Every mutating method requires the caller to hold whatever lock was
// supplied via WithLockBundle (a no-op bundle by default, appropriate
// for single-threaded use); GetData is the one exception, safe to call
// from any goroutine holding a live Ref.
type Wiring struct {
	opts      *wiringOptions
	transport Transport
	log       *logFacade
	clock     func() time.Time

	tblPtr  atomic.Pointer[table]
	expireQ timeoutQueue
	wakeupQ timeoutQueue

	requests *requestPool
	garbage  *garbageSchedule

	closed bool
}

// tbl returns the current wire table. Every call site in this package
// runs under the caller's lock except GetData, which is why the table
// pointer itself (as opposed to its contents) must be read atomically.
func (wr *Wiring) tbl() *table { return wr.tblPtr.Load() }

// New constructs a Wiring driving transport, ready to originate and
// accept wires. logger may be nil, in which case the logger installed with
// SetStructuredLogger is used, and nothing is logged if none is installed.
func New(transport Transport, logger Logger, opts ...Option) (*Wiring, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	n := SenderID(cfg.initialWireCount)
	if n < 1 {
		n = 1
	}
	t := newTable(n)

	wr := &Wiring{
		opts:      cfg,
		transport: transport,
		log:       newLogFacade(logger),
		clock:     time.Now,
		requests:  newRequestPool(cfg.maxRequests),
		garbage:   newGarbageSchedule(),
	}
	wr.tblPtr.Store(t)
	wr.expireQ = timeoutQueue{kind: timeoutExpire, head: newTimeoutHead(), storage: t}
	wr.wakeupQ = timeoutQueue{kind: timeoutWakeup, head: newTimeoutHead(), storage: t}

	return wr, nil
}

// expireDeadline computes the next expire due time for a wire rearmed
// at now. A zero TimeoutInterval disables expiry in practice: the
// returned deadline is pushed far enough into the future that it will
// not fire under any realistic run, mirroring the original's
// saturating-add-to-UINT64_MAX treatment of a disabled timeout without
// needing a side channel for "not armed" in the timeout queue itself.
func (wr *Wiring) expireDeadline(now time.Time) time.Time {
	if wr.opts.timeoutInterval <= 0 {
		return now.AddDate(100, 0, 0)
	}
	return now.Add(wr.opts.timeoutInterval)
}

// sendControl posts buf to ep tagged with tag, tracking the resulting
// in-flight request (if any) in the request pool so Once's status walk
// will reclaim it once the transport completes it.
func (wr *Wiring) sendControl(ep Endpoint, tag uint64, buf []byte) error {
	h, err := wr.requests.get()
	if err != nil {
		return err
	}
	req, err := ep.Send(tag, buf)
	if err != nil {
		wr.requests.putFree(h)
		return err
	}
	if req == nil {
		wr.requests.putFree(h)
		return nil
	}
	wr.requests.putOutstanding(h, req)
	return nil
}

// finalizeWire releases the resources a CLOSING wire was still holding
// once it is safe to do so: any endpoint, closed non-blockingly, and
// tracked like any other outstanding request.
func (wr *Wiring) finalizeWire(id SenderID) {
	w := &wr.tbl().wires[id]
	w.pending = nil
	if w.endpoint == nil {
		return
	}
	ep := w.endpoint
	w.endpoint = nil
	req, err := ep.Close()
	if err != nil {
		wr.log.Warnf(catWireupEp, "close failed for wire %d: %v", id, err)
		return
	}
	if req == nil {
		return
	}
	h, err := wr.requests.get()
	if err != nil {
		wr.log.Warnf(catWireupReq, "no free request to track close of wire %d", id)
		return
	}
	wr.requests.putOutstanding(h, req)
}

// allocSlot returns a free slot index, growing the table (retiring the
// old one into the current epoch's garbage bin) if none is free.
func (wr *Wiring) allocSlot() (SenderID, error) {
	t := wr.tbl()
	if id := t.freeGet(); id != SenderIDNil {
		return id, nil
	}
	nt := t.grow()
	if nt == nil {
		return SenderIDNil, ErrNoFreeWire
	}
	wr.garbageAdd(t)
	wr.tblPtr.Store(nt)
	wr.expireQ.storage = nt
	wr.wakeupQ.storage = nt
	id := nt.freeGet()
	if id == SenderIDNil {
		return SenderIDNil, ErrNoFreeWire
	}
	return id, nil
}

// Start originates a wire: it connects an endpoint to raddr, allocates a
// slot (growing the table if necessary), and posts a REQ carrying laddr
// and the new slot's id to the fixed wireup-start tag. The returned
// WireID may be queried with GetData immediately but reports DataNil
// until the peer's ACK is received and the wire reaches LIVE.
func (wr *Wiring) Start(ctx context.Context, laddr, raddr []byte, cb Callback, data any) (WireID, error) {
	wr.assertLocked()
	if wr.closed {
		return WireIDNil, ErrWiringClosed
	}
	if len(laddr) > 0xffff {
		return WireIDNil, ErrAddressTooLong
	}

	ep, err := wr.transport.Connect(ctx, raddr)
	if err != nil {
		return WireIDNil, fmt.Errorf("wireup: connect: %w", err)
	}

	id, err := wr.allocSlot()
	if err != nil {
		ep.Close()
		return WireIDNil, err
	}

	buf, err := encode(message{op: opREQ, senderID: id, addr: laddr})
	if err != nil {
		wr.tbl().freePut(id)
		ep.Close()
		return WireIDNil, err
	}

	w := &wr.tbl().wires[id]
	w.state = stateTable[stateInitial]
	w.live.Store(false)
	w.endpoint = ep
	w.peerSenderID = SenderIDNil
	w.pending = buf
	w.callback = cb
	wr.tbl().assoc[id] = data

	now := wr.clock()
	wr.expireQ.put(id, wr.expireDeadline(now))
	wr.wakeupQ.put(id, now.Add(wr.opts.retryInterval))

	if err := wr.sendControl(ep, wireupStartTag, buf); err != nil {
		wr.log.Debugf(catWireupTx, "initial REQ send failed for wire %d: %v", id, err)
		w.state = stateTable[stateClosing]
		wr.closeWire(id)
		return WireIDNil, nil
	}

	return WireID{id: id}, nil
}

// respond answers a received REQ: it allocates a slot and an endpoint to
// the peer's announced address, brings the wire directly to LIVE (the
// responder side never passes through INITIAL), and replies with an ACK
// carrying the new slot's id. Failures are logged and otherwise silent,
// mirroring a dropped REQ the peer's own retry will repeat.
func (wr *Wiring) respond(peerSenderID SenderID, raddr []byte) {
	if len(raddr) == 0 {
		wr.log.Warnf(catWireupRx, "REQ from sender %d carried an empty address, dropping", peerSenderID)
		return
	}
	if peerSenderID >= SenderIDMax {
		wr.log.Warnf(catWireupRx, "REQ sender id %d out of range, dropping", peerSenderID)
		return
	}

	id, err := wr.allocSlot()
	if err != nil {
		wr.log.Warnf(catWireup, "REQ from sender %d: %v", peerSenderID, err)
		return
	}

	ep, err := wr.transport.Connect(context.Background(), raddr)
	if err != nil {
		wr.tbl().freePut(id)
		wr.log.Warnf(catWireupEp, "connect failed answering sender %d: %v", peerSenderID, err)
		return
	}

	w := &wr.tbl().wires[id]
	w.state = stateTable[stateLive]
	w.live.Store(true)
	w.endpoint = ep
	w.peerSenderID = peerSenderID
	w.pending = nil
	w.callback = nil

	now := wr.clock()
	wr.expireQ.put(id, wr.expireDeadline(now))
	wr.wakeupQ.put(id, now.Add(wr.opts.keepaliveInterval))

	buf, err := encode(message{op: opACK, senderID: id})
	if err == nil {
		err = wr.sendControl(ep, shiftIn(peerSenderID), buf)
	}
	if err != nil {
		wr.log.Debugf(catWireupTx, "ACK send failed for wire %d: %v", id, err)
		w.state = stateTable[stateClosing]
		wr.closeWire(id)
		return
	}

	var data any
	var cb Callback
	if wr.opts.acceptCallback != nil {
		data, cb = wr.opts.acceptCallback(AcceptInfo{
			Addr:     raddr,
			WireID:   WireID{id: id},
			SenderID: peerSenderID,
			Endpoint: ep,
		})
	}
	wr.tbl().assoc[id] = data
	w.callback = cb
}

// Stop tears down the wire at id. If orderly, a STOP is posted to the
// peer first (best-effort; a failed send never blocks teardown).
// Returns ErrInvalidWireID if id does not name a slot in the current
// table; stopping an already CLOSING or FREE wire is a silent no-op.
func (wr *Wiring) Stop(id WireID, orderly bool) error {
	wr.assertLocked()
	if wr.closed {
		return ErrWiringClosed
	}
	idx := id.index()
	if idx == SenderIDNil || idx >= wr.tbl().count() {
		return ErrInvalidWireID
	}
	wr.stopInternal(idx, orderly)
	return nil
}

func (wr *Wiring) stopInternal(id SenderID, orderly bool) {
	w := &wr.tbl().wires[id]
	if w.state == stateTable[stateClosing] || w.state == stateTable[stateFree] {
		return
	}

	peerSenderID, ep := w.peerSenderID, w.endpoint
	wr.transition(id, stateTable[stateClosing])

	if orderly && ep != nil {
		buf, err := encode(message{op: opSTOP, senderID: id})
		if err == nil {
			err = wr.sendControl(ep, shiftIn(peerSenderID), buf)
		}
		if err != nil {
			wr.log.Debugf(catWireupTx, "orderly STOP send failed for wire %d: %v", id, err)
		}
	}

	wr.closeWire(id)
}

// AppTag returns the (tag, mask) pair the application should use to send
// its own traffic over the same transport worker without colliding with
// wireup's control channel. It needs no receiver state — every Wiring
// partitions the tag space identically — but is exposed as a method
// alongside the package-level AppTag for callers that prefer not to
// import constants directly.
func (wr *Wiring) AppTag() (tag, mask uint64) { return AppTag() }

// GetData returns the association data for id if it currently names a
// LIVE wire, or DataNil otherwise. Unlike every other method on Wiring,
// GetData needs no lock: the caller must instead hold a live Ref (see
// NewRef) for the duration of the call, pinning the table and
// association array id was read against.
func (wr *Wiring) GetData(id WireID) any {
	idx := id.index()
	t := wr.tbl()
	if idx == SenderIDNil || idx >= t.count() {
		return DataNil
	}
	if !t.wires[idx].live.Load() {
		return DataNil
	}
	return t.assoc[idx]
}

// dispatch decodes and applies one received wireup descriptor: a REQ is
// answered directly (it names no existing wire); every other opcode is
// routed to the wire the tag's id field selects.
func (wr *Wiring) dispatch(desc RxDescriptor) {
	msg, err := decode(desc.Data)
	if err != nil {
		wr.log.Warnf(catWireupRx, "dropping malformed message: %v", err)
		return
	}

	if msg.op == opREQ {
		addr := append([]byte(nil), msg.addr...)
		wr.respond(msg.senderID, addr)
		return
	}

	id := SenderID(desc.Tag & IDMask)
	if id >= SenderIDMax || id >= wr.tbl().count() {
		wr.log.Warnf(catWireupRx, "%s from out-of-range sender id %d, dropping", msg.op, id)
		return
	}

	w := &wr.tbl().wires[id]
	wr.log.Debugf(catWireupRx, "wire %d: %s from sender %d", id, msg.op, msg.senderID)
	wr.transition(id, w.state.receive(wr, id, msg))
}

// Once drives one pass of the protocol: it fires any due wakeups and
// expirations, reclaims completed transport requests and, if
// applicable, garbage-collected table epochs, then polls the transport
// for one received wireup message and dispatches it if present. The
// caller must hold the wiring lock across the call and is expected to
// call Once repeatedly while it returns true.
//
// It returns true if any wire changed state, a message was processed,
// or an expiration fired; false if the pass was idle.
func (wr *Wiring) Once() bool {
	wr.assertLocked()

	wr.transport.Progress()

	now := wr.clock()
	progress := false

	for {
		id := wr.wakeupQ.peek()
		if id == SenderIDNil {
			break
		}
		w := &wr.tbl().wires[id]
		if w.tlink[timeoutWakeup].due.After(now) {
			break
		}
		wr.wakeupQ.get()
		ostate := w.state
		wr.transition(id, w.state.wakeup(wr, id))
		if w.state != ostate {
			progress = true
		}
	}

	for {
		id := wr.expireQ.peek()
		if id == SenderIDNil {
			break
		}
		w := &wr.tbl().wires[id]
		if w.tlink[timeoutExpire].due.After(now) {
			break
		}
		wr.expireQ.get()
		progress = true
		wr.transition(id, w.state.expire(wr, id))
	}

	wr.requests.checkStatus()
	wr.reclaim(false, &progress)

	rx := wr.transport.RxPool()
	if desc, ok := rx.Poll(WireupChannel, ChannelMask); ok {
		wr.dispatch(desc)
		if desc.Release != nil {
			desc.Release()
		}
		progress = true
	}

	return progress
}

// Destroy releases every resource the Wiring holds. If orderly, every
// wire not already CLOSING or FREE is sent a STOP first (best-effort).
// Destroy blocks,
// repeatedly driving transport progress, until every outstanding
// transport request has settled, then forces reclamation of every
// garbage epoch; if that cannot fully succeed (some reference never
// released its pin), it is logged as a leak rather than treated as
// fatal. After Destroy returns, Start, Stop and Destroy return
// ErrWiringClosed; Once, GetData, AppTag and NewRef do not check for it.
func (wr *Wiring) Destroy(orderly bool) error {
	wr.assertLocked()
	if wr.closed {
		return ErrWiringClosed
	}

	t := wr.tbl()
	for id := SenderID(0); id < t.count(); id++ {
		wr.stopInternal(id, orderly)
	}

	for wr.requests.checkStatus() {
		wr.transport.Progress()
	}

	if !wr.reclaim(true, nil) {
		wr.log.Warnf(catReclaim, "could not reclaim all garbage at teardown")
	}

	wr.requests.discard()
	wr.closed = true
	return nil
}
