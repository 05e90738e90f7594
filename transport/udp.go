//go:build linux || darwin

// Package transport is a reference implementation of wireup's Transport,
// Endpoint, RxPool, and Request interfaces over plain UDP sockets. Each
// datagram is prefixed with an 8-byte big-endian tag, standing in for
// the tag-matching a real RDMA or verbs transport would do in hardware;
// Poll demultiplexes by draining the socket and bucketing by (tag, mask)
// against a pending queue so a caller polling one channel never steals
// a datagram belonging to the other.
package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"

	"golang.org/x/sys/unix"

	"github.com/jgmoore-or/wireup"
)

// headerSize is the tag prefix every datagram carries.
const headerSize = 8

// addrSize is the wire length of an encoded IPv4 sockaddr: 4 address
// bytes plus a 2-byte big-endian port.
const addrSize = 6

// initialRecvBufSize is the starting size of drain's scratch buffer.
// Most wireup control and keepalive traffic fits comfortably inside
// this; it only grows once something doesn't.
const initialRecvBufSize = 2048

// maxRecvBufSize bounds how far drain will grow its scratch buffer in
// response to apparent truncation.
const maxRecvBufSize = 1 << 20

// UDPTransport is a Transport backed by one non-blocking UDP socket,
// shared by every Endpoint Connect produces from it.
type UDPTransport struct {
	fd       int
	localRaw []byte
	pool     udpRxPool
	pending  []wireup.RxDescriptor
	poller   FastPoller
	bufSize  int
}

// ResolveAddr resolves a "host:port" string into the compact 6-byte
// sockaddr format LocalAddr produces and Connect expects, so a caller
// can turn a peer's address string into wireup's wire-address type
// without reaching into transport internals.
func ResolveAddr(hostport string) ([]byte, error) {
	ua, err := net.ResolveUDPAddr("udp4", hostport)
	if err != nil {
		return nil, fmt.Errorf("transport: resolve %q: %w", hostport, err)
	}
	return encodeSockaddr(udpAddrToSockaddr(ua)), nil
}

func udpAddrToSockaddr(ua *net.UDPAddr) unix.Sockaddr {
	sa := &unix.SockaddrInet4{Port: ua.Port}
	if ip4 := ua.IP.To4(); ip4 != nil {
		copy(sa.Addr[:], ip4)
	}
	return sa
}

// NewUDPTransport opens and binds a non-blocking UDP socket at bindAddr
// (host:port; port 0 requests an ephemeral port).
func NewUDPTransport(bindAddr string) (*UDPTransport, error) {
	ua, err := net.ResolveUDPAddr("udp4", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("transport: resolve %q: %w", bindAddr, err)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return nil, fmt.Errorf("transport: socket: %w", err)
	}

	sa := udpAddrToSockaddr(ua).(*unix.SockaddrInet4)
	if err := unix.Bind(fd, sa); err != nil {
		closeFD(fd)
		return nil, fmt.Errorf("transport: bind %q: %w", bindAddr, err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		closeFD(fd)
		return nil, fmt.Errorf("transport: set nonblocking: %w", err)
	}

	local, err := unix.Getsockname(fd)
	if err != nil {
		closeFD(fd)
		return nil, fmt.Errorf("transport: getsockname: %w", err)
	}

	t := &UDPTransport{fd: fd, localRaw: encodeSockaddr(local), bufSize: initialRecvBufSize}
	t.pool.t = t
	if err := t.poller.Init(); err != nil {
		closeFD(fd)
		return nil, fmt.Errorf("transport: poller init: %w", err)
	}
	if err := t.poller.RegisterFD(fd); err != nil {
		t.poller.Close()
		closeFD(fd)
		return nil, fmt.Errorf("transport: poller register: %w", err)
	}
	return t, nil
}

// LocalAddr returns this transport's bound address in the compact
// 6-byte sockaddr format Connect expects.
func (t *UDPTransport) LocalAddr() []byte { return t.localRaw }

// Connect resolves addr (the 6-byte sockaddr format LocalAddr and
// RxDescriptor.Addr use) into an Endpoint that sends to it over the
// shared socket. It never itself blocks or touches the network: a UDP
// "connection" is purely local bookkeeping.
func (t *UDPTransport) Connect(_ context.Context, addr []byte) (wireup.Endpoint, error) {
	sa, err := decodeSockaddr(addr)
	if err != nil {
		return nil, err
	}
	return &udpEndpoint{t: t, peer: sa}, nil
}

// RxPool returns the pool of received descriptors this transport feeds.
func (t *UDPTransport) RxPool() wireup.RxPool { return &t.pool }

// Progress drains every datagram currently queued in the kernel socket
// buffer into the pending list Poll serves from.
func (t *UDPTransport) Progress() { t.drain() }

// Close releases the underlying socket. Safe to call once, after the
// owning Wiring has been destroyed.
func (t *UDPTransport) Close() error {
	t.poller.Close()
	return closeFD(t.fd)
}

// WaitReadable blocks, via the platform readiness poller, until the
// socket has a datagram pending or timeoutMs elapses (-1 waits
// indefinitely). It is an optional helper for a caller loop that wants
// to sleep between Wiring.Once calls rather than spin; Once itself
// never needs it, since Poll and Send are already non-blocking.
func (t *UDPTransport) WaitReadable(timeoutMs int) error {
	_, err := t.poller.PollIO(timeoutMs)
	return err
}

// drain reads every datagram currently queued in the kernel socket
// buffer. Its scratch buffer starts small (initialRecvBufSize) and
// doubles, up to maxRecvBufSize, whenever a read fills it completely —
// for SOCK_DGRAM that is the only truncation signal this wrapper gets,
// since the excess bytes of an oversize datagram are already discarded
// by the kernel before Recvfrom returns. Growing only protects *later*
// datagrams; a single over-large one is still silently truncated once.
func (t *UDPTransport) drain() {
	buf := make([]byte, t.bufSize)
	for {
		n, from, err := unix.Recvfrom(t.fd, buf, 0)
		if err != nil {
			return
		}
		full := n == len(buf)
		if n >= headerSize {
			tag := binary.BigEndian.Uint64(buf[:headerSize])
			data := make([]byte, n-headerSize)
			copy(data, buf[headerSize:n])
			t.pending = append(t.pending, wireup.RxDescriptor{
				Tag:     tag,
				Addr:    encodeSockaddr(from),
				Data:    data,
				Release: func() {},
			})
		}
		if full && len(buf) < maxRecvBufSize {
			t.bufSize = len(buf) * 2
			buf = make([]byte, t.bufSize)
		}
	}
}

// udpRxPool demultiplexes UDPTransport's pending queue by (tag, mask).
type udpRxPool struct{ t *UDPTransport }

func (p *udpRxPool) Poll(tag, mask uint64) (wireup.RxDescriptor, bool) {
	p.t.drain()
	for i, d := range p.t.pending {
		if d.Tag&mask == tag {
			p.t.pending = append(p.t.pending[:i:i], p.t.pending[i+1:]...)
			return d, true
		}
	}
	return wireup.RxDescriptor{}, false
}

// udpEndpoint addresses one peer over its transport's shared socket.
type udpEndpoint struct {
	t    *UDPTransport
	peer unix.Sockaddr
}

func (e *udpEndpoint) Send(tag uint64, buf []byte) (wireup.Request, error) {
	frame := make([]byte, headerSize+len(buf))
	binary.BigEndian.PutUint64(frame[:headerSize], tag)
	copy(frame[headerSize:], buf)
	if err := unix.Sendto(e.t.fd, frame, 0, e.peer); err != nil {
		return nil, fmt.Errorf("transport: sendto: %w", err)
	}
	return nil, nil
}

// Close is a no-op: the socket it sends through belongs to the
// transport, not the endpoint, and outlives any one peer.
func (e *udpEndpoint) Close() (wireup.Request, error) { return nil, nil }

func encodeSockaddr(sa unix.Sockaddr) []byte {
	a, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return nil
	}
	b := make([]byte, addrSize)
	copy(b[:4], a.Addr[:])
	binary.BigEndian.PutUint16(b[4:6], uint16(a.Port))
	return b
}

func decodeSockaddr(b []byte) (unix.Sockaddr, error) {
	if len(b) != addrSize {
		return nil, errors.New("transport: malformed address")
	}
	sa := &unix.SockaddrInet4{Port: int(binary.BigEndian.Uint16(b[4:6]))}
	copy(sa.Addr[:], b[:4])
	return sa, nil
}
