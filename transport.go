package wireup

import "context"

// Endpoint is a handle to a peer, created by Transport.Connect and torn
// down by Close. It is opaque to the core package; only the concrete
// transport implementation knows what it wraps.
type Endpoint interface {
	// Send posts buf to the peer non-blockingly, tagged with tag. It
	// returns a Request tracking an in-flight send, or nil if the send
	// already completed inline.
	Send(tag uint64, buf []byte) (Request, error)

	// Close begins a non-blocking close of the endpoint. It returns a
	// Request tracking the close, or nil if it completed inline.
	Close() (Request, error)
}

// Request tracks a single outstanding non-blocking transport operation
// (a send or an endpoint close).
type Request interface {
	// Done reports whether the operation has completed. It must not
	// block.
	Done() bool
}

// RxPool yields received, tag-matched descriptors from the transport's
// receive buffers. Buffers are returned to the pool by the caller after
// the descriptor's payload has been consumed (copied out or decoded).
type RxPool interface {
	// Poll returns the next available received descriptor matching
	// (tag, mask), or ok == false if none is ready. It must not block.
	Poll(tag, mask uint64) (desc RxDescriptor, ok bool)
}

// RxDescriptor is one received datagram: its payload and the tag it
// arrived with.
type RxDescriptor struct {
	Tag  uint64
	Addr []byte
	Data []byte

	// Release returns this descriptor's backing buffer to the RxPool
	// it came from. Callers must call it exactly once, after they are
	// done with Data.
	Release func()
}

// Transport is the non-blocking, tagged, connectionless collaborator
// wireup drives. It never blocks and owns no internal goroutine; progress
// happens only inside calls the caller makes from within Wiring.Once.
type Transport interface {
	// Connect creates an endpoint addressed by addr, the transport's
	// own opaque wire format for "how to reach a peer" (e.g. a resolved
	// UDP address).
	Connect(ctx context.Context, addr []byte) (Endpoint, error)

	// LocalAddr returns this transport's own address, in the same
	// opaque format Connect accepts.
	LocalAddr() []byte

	// RxPool returns the pool of received descriptors this transport
	// feeds.
	RxPool() RxPool

	// Progress drives any pending non-blocking work (completing sends,
	// delivering receives into the RxPool) without blocking. It is the
	// analogue of a UCX worker-progress call.
	Progress()
}
