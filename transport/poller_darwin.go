//go:build darwin

package transport

import (
	"errors"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// ErrPollerClosed is returned by PollIO once Close has been called.
var ErrPollerClosed = errors.New("transport: poller closed")

// FastPoller waits for a single registered file descriptor to become
// readable, using kqueue (Darwin). UDPTransport registers its one
// socket at construction and polls it from WaitReadable; there is no
// general multi-FD registry here because nothing in this package needs
// one.
type FastPoller struct {
	kq     int
	closed atomic.Bool
}

// Init creates the kqueue instance.
func (p *FastPoller) Init() error {
	kq, err := unix.Kqueue()
	if err != nil {
		return err
	}
	unix.CloseOnExec(kq)
	p.kq = kq
	return nil
}

// Close closes the kqueue instance.
func (p *FastPoller) Close() error {
	p.closed.Store(true)
	return unix.Close(p.kq)
}

// RegisterFD arms fd for read-readiness notifications.
func (p *FastPoller) RegisterFD(fd int) error {
	kevents := []unix.Kevent_t{{
		Ident:  uint64(fd),
		Filter: unix.EVFILT_READ,
		Flags:  unix.EV_ADD | unix.EV_ENABLE,
	}}
	_, err := unix.Kevent(p.kq, kevents, nil, nil)
	return err
}

// PollIO blocks until the registered fd is readable or timeoutMs
// elapses (-1 waits indefinitely), returning the number of ready
// events (0 or 1).
func (p *FastPoller) PollIO(timeoutMs int) (int, error) {
	if p.closed.Load() {
		return 0, ErrPollerClosed
	}

	var ts *unix.Timespec
	if timeoutMs >= 0 {
		ts = &unix.Timespec{
			Sec:  int64(timeoutMs / 1000),
			Nsec: int64((timeoutMs % 1000) * 1000000),
		}
	}

	var buf [1]unix.Kevent_t
	n, err := unix.Kevent(p.kq, nil, buf[:], ts)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}
