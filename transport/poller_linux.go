//go:build linux

package transport

import (
	"errors"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// ErrPollerClosed is returned by PollIO once Close has been called.
var ErrPollerClosed = errors.New("transport: poller closed")

// FastPoller waits for a single registered file descriptor to become
// readable, using epoll (Linux). UDPTransport registers its one socket
// at construction and polls it from WaitReadable; there is no general
// multi-FD registry here because nothing in this package needs one.
type FastPoller struct {
	epfd   int
	closed atomic.Bool
}

// Init creates the epoll instance.
func (p *FastPoller) Init() error {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return err
	}
	p.epfd = epfd
	return nil
}

// Close closes the epoll instance.
func (p *FastPoller) Close() error {
	p.closed.Store(true)
	return unix.Close(p.epfd)
}

// RegisterFD arms fd for read-readiness notifications.
func (p *FastPoller) RegisterFD(fd int) error {
	ev := &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, ev)
}

// PollIO blocks until the registered fd is readable or timeoutMs
// elapses (-1 waits indefinitely), returning the number of ready
// events (0 or 1).
func (p *FastPoller) PollIO(timeoutMs int) (int, error) {
	if p.closed.Load() {
		return 0, ErrPollerClosed
	}

	var buf [1]unix.EpollEvent
	n, err := unix.EpollWait(p.epfd, buf[:], timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}
