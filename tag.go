package wireup

// Tags are transport-provided 64-bit discriminators. wireup partitions the
// tag space into a channel field (high bits) and a sender-id field (low
// bits), so the application can carry its own traffic on the same
// transport worker without colliding with wireup's own control messages.
const (
	// idBits is the width of the sender-id field within a tag.
	idBits = 31

	// ChannelMask selects the channel field of a tag.
	ChannelMask uint64 = ^uint64(0) << idBits

	// IDMask selects the sender-id field of a tag.
	IDMask uint64 = (uint64(1) << idBits) - 1

	// WireupChannel is the channel value used for all wireup control
	// messages (REQ, ACK, KEEPALIVE, STOP).
	WireupChannel uint64 = 1 << idBits

	// AppChannel is the channel value reserved for the application. Any
	// tag satisfying tag&ChannelMask == AppChannel belongs to the
	// application; the id bits are free for its own use.
	AppChannel uint64 = 0

	// wireupStartTag is the fixed tag REQ messages are sent to: the
	// wireup channel with the id field set to all-ones, meaning "no
	// addressed peer yet". Because the id field is saturated, no valid
	// sender id can collide with it, and AppTag excludes it by
	// construction (AppChannel != WireupChannel).
	wireupStartTag uint64 = WireupChannel | IDMask
)

// shiftIn builds the tag used to address an established peer: the wireup
// channel with the peer's previously-announced sender id in the low bits.
func shiftIn(senderID SenderID) uint64 {
	return WireupChannel | (uint64(senderID) & IDMask)
}

// AppTag returns the (tag, mask) pair the application should use so that
// its messages never collide with the wireup control channel: any
// application message must satisfy tag&mask == tag returned here, leaving
// the low idBits free for application-chosen addressing.
func AppTag() (tag, mask uint64) {
	return AppChannel, ChannelMask
}
