package wireup

import (
	"encoding/binary"
	"fmt"
	"math"
)

// headerSize is the fixed portion of every wireup message: op, addrlen,
// sender_id.
const headerSize = 2 + 2 + 4

// message is the decoded form of a wireup control message.
type message struct {
	op       opcode
	senderID SenderID
	addr     []byte
}

// Encode packs m into a freshly allocated buffer in the wire format:
//
//	offset 0: op        uint16 big-endian
//	offset 2: addrlen   uint16 big-endian
//	offset 4: sender_id uint32 big-endian
//	offset 8: addr[addrlen]
//
// It returns ErrAddressTooLong if len(m.addr) overflows the 16-bit
// length field, and ErrSenderIDOutOfRange if m.senderID is not
// representable (SenderIDNil is valid here; it means "not yet assigned").
func encode(m message) ([]byte, error) {
	if len(m.addr) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d bytes", ErrAddressTooLong, len(m.addr))
	}
	if m.senderID != SenderIDNil && m.senderID >= SenderIDMax {
		return nil, fmt.Errorf("%w: %d", ErrSenderIDOutOfRange, m.senderID)
	}
	buf := make([]byte, headerSize+len(m.addr))
	binary.BigEndian.PutUint16(buf[0:2], uint16(m.op))
	binary.BigEndian.PutUint16(buf[2:4], uint16(len(m.addr)))
	binary.BigEndian.PutUint32(buf[4:8], uint32(m.senderID))
	copy(buf[headerSize:], m.addr)
	return buf, nil
}

// decode unpacks buf into a message. It rejects buffers shorter than the
// fixed header, addrlen fields that would overrun the buffer, and opcode
// values outside {REQ, ACK, KEEPALIVE, STOP}. The returned message's addr
// slice aliases buf (it is nil when addrlen is zero); callers that retain it across a receive-buffer reuse
// must copy it first.
func decode(buf []byte) (message, error) {
	if len(buf) < headerSize {
		return message{}, fmt.Errorf("%w: %d bytes, need at least %d", ErrTruncatedMessage, len(buf), headerSize)
	}
	op := opcode(binary.BigEndian.Uint16(buf[0:2]))
	if op > opSTOP {
		return message{}, fmt.Errorf("%w: %d", ErrUnknownOpcode, op)
	}
	addrlen := binary.BigEndian.Uint16(buf[2:4])
	senderID := SenderID(binary.BigEndian.Uint32(buf[4:8]))
	if headerSize+int(addrlen) > len(buf) {
		return message{}, fmt.Errorf("%w: addrlen %d exceeds remaining %d bytes", ErrTruncatedMessage, addrlen, len(buf)-headerSize)
	}
	if senderID != SenderIDNil && senderID >= SenderIDMax {
		return message{}, fmt.Errorf("%w: %d", ErrSenderIDOutOfRange, senderID)
	}
	var addr []byte
	if addrlen > 0 {
		addr = buf[headerSize : headerSize+int(addrlen)]
	}
	return message{
		op:       op,
		senderID: senderID,
		addr:     addr,
	}, nil
}
