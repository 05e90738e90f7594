// Package wireup implements a lightweight control-plane protocol for
// establishing, maintaining, and tearing down logical connections ("wires")
// between peers over an unreliable, connectionless, tagged message-passing
// transport.
//
// # Architecture
//
// A [Wiring] owns a wire table ([wire] slots indexed by [WireID]), two
// timeout queues (expire and wakeup), a request pool, and an epoch-based
// garbage scheduler. Callers drive the protocol cooperatively by calling
// [Wiring.Once] repeatedly; there is no internal goroutine and no blocking
// transport call.
//
// Each wire moves through four states: INITIAL (originator awaiting ACK),
// LIVE (established, exchanging keepalives), CLOSING (torn down locally,
// awaiting epoch-safe reclamation), and FREE (slot available for reuse).
// State transitions are driven by three events — receive, wakeup, and
// expire — dispatched through a per-state handler table, in the style of
// a table-driven state machine rather than a switch ladder.
//
// # Concurrency
//
// All mutating operations ([Wiring.Start], [Wiring.Stop], [Wiring.Once])
// require the caller to hold a single, pluggable
// [LockBundle]. [Wiring.GetData] is the one operation safe to call without
// the lock, provided the caller brackets the call with a [Ref] obtained
// from [Wiring.NewRef] — this is the epoch-reclamation read side, modeled
// after RCU: growth events retire old storage into the current epoch's
// garbage bin, and the bin is only freed once no live reference pins an
// epoch at or before it.
//
// # Transport
//
// The underlying transport (non-blocking tagged send, a pool of received
// descriptors, endpoint create/close) is an external collaborator,
// described by the [Transport], [RxPool], [Endpoint], and [Request]
// interfaces. A concrete, testable implementation lives in
// [github.com/jgmoore-or/wireup/transport].
package wireup
