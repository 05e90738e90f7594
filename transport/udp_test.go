//go:build linux || darwin

package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	pollTimeout  = time.Second
	pollInterval = 5 * time.Millisecond
)

func TestUDPTransportRoundTrip(t *testing.T) {
	a, err := NewUDPTransport("127.0.0.1:0")
	require.NoError(t, err)
	defer a.Close()

	b, err := NewUDPTransport("127.0.0.1:0")
	require.NoError(t, err)
	defer b.Close()

	epAB, err := a.Connect(context.Background(), b.LocalAddr())
	require.NoError(t, err)

	const tag = uint64(0xC0FFEE)
	payload := []byte("hello wireup")
	_, err = epAB.Send(tag, payload)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		d, ok := b.RxPool().Poll(tag, ^uint64(0))
		if !ok {
			return false
		}
		require.Equal(t, payload, d.Data)
		require.Equal(t, a.LocalAddr(), d.Addr)
		return true
	}, pollTimeout, pollInterval)
}

func TestUDPTransportPollDoesNotStealOtherTags(t *testing.T) {
	a, err := NewUDPTransport("127.0.0.1:0")
	require.NoError(t, err)
	defer a.Close()

	b, err := NewUDPTransport("127.0.0.1:0")
	require.NoError(t, err)
	defer b.Close()

	epAB, err := a.Connect(context.Background(), b.LocalAddr())
	require.NoError(t, err)

	const wantTag = uint64(1) << 40
	const otherTag = uint64(2) << 40
	_, err = epAB.Send(otherTag, []byte("not me"))
	require.NoError(t, err)

	// A Poll for wantTag must not consume the otherTag datagram.
	require.Never(t, func() bool {
		_, ok := b.RxPool().Poll(wantTag, ^uint64(0))
		return ok
	}, pollTimeout, pollInterval)

	d, ok := b.RxPool().Poll(otherTag, ^uint64(0))
	require.True(t, ok)
	require.Equal(t, []byte("not me"), d.Data)
}

func TestResolveAddrMatchesConnectFormat(t *testing.T) {
	b, err := NewUDPTransport("127.0.0.1:0")
	require.NoError(t, err)
	defer b.Close()

	port := binary.BigEndian.Uint16(b.LocalAddr()[4:6])
	raddr, err := ResolveAddr(fmt.Sprintf("127.0.0.1:%d", port))
	require.NoError(t, err)
	require.Equal(t, b.LocalAddr(), raddr)

	a, err := NewUDPTransport("127.0.0.1:0")
	require.NoError(t, err)
	defer a.Close()

	ep, err := a.Connect(context.Background(), raddr)
	require.NoError(t, err)
	_, err = ep.Send(1, []byte("resolved"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		d, ok := b.RxPool().Poll(1, ^uint64(0))
		return ok && string(d.Data) == "resolved"
	}, pollTimeout, pollInterval)
}

func TestUDPTransportWaitReadable(t *testing.T) {
	a, err := NewUDPTransport("127.0.0.1:0")
	require.NoError(t, err)
	defer a.Close()

	b, err := NewUDPTransport("127.0.0.1:0")
	require.NoError(t, err)
	defer b.Close()

	epAB, err := a.Connect(context.Background(), b.LocalAddr())
	require.NoError(t, err)
	_, err = epAB.Send(1, []byte("x"))
	require.NoError(t, err)

	require.NoError(t, b.WaitReadable(1000))
}
