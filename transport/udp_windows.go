//go:build windows

package transport

import (
	"context"
	"errors"

	"github.com/jgmoore-or/wireup"
)

// ErrWindowsUnsupported is returned by NewUDPTransport on Windows: the
// socket-level Sendto/Recvfrom plumbing UDP needs is not implemented on
// this platform.
var ErrWindowsUnsupported = errors.New("transport: UDP transport not implemented on windows")

// NewUDPTransport always fails on Windows; see ErrWindowsUnsupported.
func NewUDPTransport(bindAddr string) (*UDPTransport, error) {
	return nil, ErrWindowsUnsupported
}

// ResolveAddr always fails on Windows; see ErrWindowsUnsupported.
func ResolveAddr(hostport string) ([]byte, error) {
	return nil, ErrWindowsUnsupported
}

// UDPTransport is declared here so platform-independent callers compile
// on Windows; every method is unreachable since NewUDPTransport never
// succeeds.
type UDPTransport struct{}

func (t *UDPTransport) LocalAddr() []byte { return nil }

func (t *UDPTransport) Connect(context.Context, []byte) (wireup.Endpoint, error) {
	return nil, ErrWindowsUnsupported
}

func (t *UDPTransport) RxPool() wireup.RxPool { return nil }

func (t *UDPTransport) Progress() {}

func (t *UDPTransport) Close() error { return ErrWindowsUnsupported }

func (t *UDPTransport) WaitReadable(int) error { return ErrWindowsUnsupported }
