// Package transport provides a reference UDP implementation of wireup's
// Transport interfaces, plus a minimal readiness-wait helper an outer
// caller loop can use to sleep between calls to Wiring.Once instead of
// busy-polling it.
//
// FastPoller arms exactly the one socket UDPTransport owns for read
// readiness, using the platform-native mechanism:
//   - Linux: epoll
//   - Darwin/BSD: kqueue
//
// See poller_linux.go and poller_darwin.go. UDPTransport.WaitReadable
// wraps FastPoller so a caller can block until the socket has data
// pending, without requiring the non-blocking Send/Poll contract
// itself to depend on readiness notification. Windows has no FastPoller
// implementation, since UDPTransport itself is unsupported there (see
// udp_windows.go).
package transport
