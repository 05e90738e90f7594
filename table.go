package wireup

import "sync/atomic"

// wire is one slot in the wire table. Every field except live is only
// ever touched under the caller's lock; live is the one field readable
// without the lock, bracketed by a Ref, so GetData can avoid taking it.
type wire struct {
	// next threads this slot onto either the free list or, once the
	// wire has been closed, the current epoch's closing list.
	next SenderID

	// state is the current state's handler table entry. Never nil.
	state *wireState

	// tlink holds this wire's membership in the expire and wakeup
	// timeout queues; see timeoutKind.
	tlink [numTimeoutKinds]timeoutLink

	// live mirrors state == stateLive, written under the lock,
	// readable without it (see GetData / Ref).
	live atomic.Bool

	// endpoint is the transport endpoint for this wire, non-nil
	// whenever state is stateLive.
	endpoint Endpoint

	// peerSenderID is the id the peer announced for itself, once
	// learned (on REQ receive / ACK send).
	peerSenderID SenderID

	// pending holds a not-yet-acknowledged REQ send, retained so it
	// can be resent on wakeup while in stateInitial.
	pending []byte

	callback Callback
}

// table is the growable array of wire slots plus its parallel
// association-data array and free-list head. A table is replaced
// wholesale on growth; the old table and association array are retired
// into the garbage scheduler rather than freed immediately, so concurrent
// Ref-holding readers never observe a freed slot.
type table struct {
	wires     []wire
	assoc     []any
	firstFree SenderID
}

// newTable allocates a table with n slots, all FREE and threaded onto the
// free list in index order.
func newTable(n SenderID) *table {
	t := &table{
		wires:     make([]wire, n),
		assoc:     make([]any, n),
		firstFree: 0,
	}
	for i := SenderID(0); i < n; i++ {
		initFreeSlot(&t.wires[i], i)
		if i+1 < n {
			t.wires[i].next = i + 1
		} else {
			t.wires[i].next = SenderIDNil
		}
	}
	return t
}

func initFreeSlot(w *wire, self SenderID) {
	*w = wire{
		next:  SenderIDNil,
		state: stateTable[stateFree],
		tlink: [numTimeoutKinds]timeoutLink{
			{prev: self, next: self},
			{prev: self, next: self},
		},
	}
}

// freeGet pops and returns the id at the head of the free list, or
// SenderIDNil if the table is exhausted.
func (t *table) freeGet() SenderID {
	id := t.firstFree
	if id == SenderIDNil {
		return SenderIDNil
	}
	t.firstFree = t.wires[id].next
	return id
}

// freePut pushes id onto the head of the free list.
func (t *table) freePut(id SenderID) {
	t.wires[id].next = t.firstFree
	t.firstFree = id
}

// count returns the number of slots in the table.
func (t *table) count() SenderID { return SenderID(len(t.wires)) }

// twiceOrMax doubles n, saturating at SenderIDMax rather than wrapping.
func twiceOrMax(n SenderID) SenderID {
	if n > SenderIDMax/2 {
		return SenderIDMax
	}
	return n * 2
}

// grow returns a new table of (at least) double the current size, clamped
// to SenderIDMax-1 slots, with the old table's contents copied forward and
// new slots threaded onto the head of the free list (so freeGet returns a
// newly added slot before an old one). It returns nil if the table is
// already at the maximum size.
func (t *table) grow() *table {
	old := t.count()
	proposed := twiceOrMax(old)
	if proposed > SenderIDMax-1 {
		proposed = SenderIDMax - 1
	}
	if proposed <= old {
		return nil
	}

	nt := &table{
		wires:     make([]wire, proposed),
		assoc:     make([]any, proposed),
		firstFree: old,
	}
	copy(nt.wires, t.wires)
	copy(nt.assoc, t.assoc)

	for i := old; i < proposed; i++ {
		initFreeSlot(&nt.wires[i], i)
		if i+1 < proposed {
			nt.wires[i].next = i + 1
		}
	}
	nt.wires[proposed-1].next = t.firstFree

	return nt
}
