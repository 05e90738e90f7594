//go:build windows

package transport

import (
	"errors"
)

// closeFD exists for source-level parity with fd_unix.go; the Windows
// UDPTransport closes its socket handle directly rather than through a
// raw fd, so this is never called with a valid descriptor.
func closeFD(fd int) error {
	if fd >= 0 {
		return errors.New("transport: closeFD not supported on Windows")
	}
	return nil
}
