package wireup

import "math"

// SenderID is a local slot index, announced to a peer on ACK so it can
// address subsequent messages back to the correct wire.
type SenderID uint32

// SenderIDNil is the reserved "no slot" value. It compares greater than
// every valid slot index (it is above SenderIDMax), not less.
const SenderIDNil SenderID = math.MaxUint32

// SenderIDMax bounds the sender-id space: it must fit in the codec's
// 4-byte field and leave room for the tag's channel bits (see tag.go),
// and it must be strictly less than SenderIDNil.
const SenderIDMax SenderID = 1 << 31 - 1

// WireID is the public, process-local handle to a wire. It is stable for
// the lifetime of the wire (INITIAL/LIVE/CLOSING) and becomes invalid the
// instant the slot is reclaimed to FREE.
type WireID struct {
	id SenderID
}

// WireIDNil is the reserved "no wire" value, returned by operations that
// fail to allocate a slot.
var WireIDNil = WireID{id: SenderIDNil}

// Valid reports whether id names a potentially-live slot index. It does
// not by itself guarantee the wire is still live; racing with reclaim
// requires a Ref (see epoch.go).
func (id WireID) Valid() bool {
	return id.id != SenderIDNil
}

func (id WireID) index() SenderID { return id.id }

// opcode identifies the wireup control-message kind.
type opcode uint16

const (
	opREQ opcode = iota
	opACK
	opKEEPALIVE
	opSTOP
)

func (op opcode) String() string {
	switch op {
	case opREQ:
		return "REQ"
	case opACK:
		return "ACK"
	case opKEEPALIVE:
		return "KEEPALIVE"
	case opSTOP:
		return "STOP"
	default:
		return "UNKNOWN"
	}
}

// AcceptInfo is passed to the callback registered via WithAcceptCallback
// when a responder-side wire transitions straight to LIVE.
type AcceptInfo struct {
	Addr     []byte
	WireID   WireID
	SenderID SenderID
	Endpoint Endpoint
}

// Event describes a one-shot lifecycle notification for a wire: it fires
// exactly once, the first time the wire becomes established, closed, or
// reclaimed.
type Event struct {
	Kind       EventKind
	Endpoint   Endpoint
	SenderID   SenderID
}

// EventKind enumerates the three lifecycle notifications a wire can fire.
type EventKind int

const (
	// EventEstablished fires when an originated wire reaches LIVE on the
	// peer's ACK. A responder-side wire is created directly in LIVE and
	// does not fire it.
	EventEstablished EventKind = iota
	// EventClosed fires when a wire enters CLOSING, locally or remotely.
	EventClosed
	// EventReclaimed fires when a wire's slot is returned to the free list.
	EventReclaimed
)

// Callback is invoked with the wire's current association data; it
// returns the (possibly updated) association data to store. Returning
// false as the second result unregisters the callback.
type Callback func(data any, ev Event) (newData any, keep bool)
