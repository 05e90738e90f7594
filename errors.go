package wireup

import "errors"

// Sentinel errors returned by the public API. Callers should match these
// with errors.Is rather than comparing strings.
var (
	// ErrNoFreeWire is returned by Start when the wire table is at
	// its maximum size (SenderIDMax-1 slots) and every slot is occupied.
	ErrNoFreeWire = errors.New("wireup: no free wire")

	// ErrWiringClosed is returned by Start, Stop and Destroy once Destroy
	// has run.
	ErrWiringClosed = errors.New("wireup: wiring is closed")

	// ErrInvalidWireID is returned when a WireID is nil or out of range for
	// the current table. Stopping a wire that is already CLOSING or FREE
	// is not an error.
	ErrInvalidWireID = errors.New("wireup: invalid wire id")

	// ErrAddressTooLong is returned when an address exceeds the codec's
	// 16-bit length field.
	ErrAddressTooLong = errors.New("wireup: address too long")

	// ErrTruncatedMessage is returned by decode when the buffer is shorter
	// than the header plus the declared address length.
	ErrTruncatedMessage = errors.New("wireup: truncated message")

	// ErrUnknownOpcode is returned by decode when the 16-bit opcode field
	// does not name one of REQ, ACK, KEEPALIVE, or STOP.
	ErrUnknownOpcode = errors.New("wireup: unknown opcode")

	// ErrSenderIDOutOfRange is returned when a decoded sender id is not a
	// representable index into the wire table (SenderID >= SenderIDMax).
	ErrSenderIDOutOfRange = errors.New("wireup: sender id out of range")

	// ErrSenderIDMismatch names a KEEPALIVE whose sender id does not match
	// the id its wire adopted (stale peer restart). No function in this
	// package returns it: continueLife logs the mismatch and closes the wire.
	ErrSenderIDMismatch = errors.New("wireup: sender id mismatch")

	// ErrNoFreeRequest is returned when the outstanding-request pool is
	// exhausted and a new non-blocking send needs a tracking slot.
	ErrNoFreeRequest = errors.New("wireup: no free request")
)
