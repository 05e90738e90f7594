package wireup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	cases := []message{
		{op: opREQ, senderID: SenderIDNil, addr: nil},
		{op: opACK, senderID: 0, addr: []byte("x")},
		{op: opKEEPALIVE, senderID: SenderIDMax - 1, addr: []byte("some opaque transport address")},
		{op: opSTOP, senderID: 42, addr: make([]byte, 1024)},
	}
	for _, c := range cases {
		buf, err := encode(c)
		require.NoError(t, err)
		got, err := decode(buf)
		require.NoError(t, err)
		require.Equal(t, c.op, got.op)
		require.Equal(t, c.senderID, got.senderID)
		require.Equal(t, c.addr, got.addr)
	}
}

func TestCodecDecodeTruncatedHeader(t *testing.T) {
	_, err := decode(make([]byte, headerSize-1))
	require.ErrorIs(t, err, ErrTruncatedMessage)
}

func TestCodecDecodeTruncatedAddr(t *testing.T) {
	buf, err := encode(message{op: opACK, senderID: 1, addr: []byte("hello")})
	require.NoError(t, err)
	_, err = decode(buf[:len(buf)-1])
	require.ErrorIs(t, err, ErrTruncatedMessage)
}

func TestCodecDecodeUnknownOpcode(t *testing.T) {
	buf, err := encode(message{op: opSTOP, senderID: 1})
	require.NoError(t, err)
	buf[1] = byte(opSTOP) + 1
	_, err = decode(buf)
	require.ErrorIs(t, err, ErrUnknownOpcode)
}

func TestCodecEncodeAddressTooLong(t *testing.T) {
	_, err := encode(message{op: opREQ, senderID: SenderIDNil, addr: make([]byte, 1<<16+1)})
	require.ErrorIs(t, err, ErrAddressTooLong)
}

func TestCodecSenderIDOutOfRange(t *testing.T) {
	_, err := encode(message{op: opACK, senderID: SenderIDMax})
	require.ErrorIs(t, err, ErrSenderIDOutOfRange)

	buf, err := encode(message{op: opACK, senderID: 0})
	require.NoError(t, err)
	buf[4], buf[5], buf[6], buf[7] = 0x7f, 0xff, 0xff, 0xff
	_, err = decode(buf)
	require.ErrorIs(t, err, ErrSenderIDOutOfRange)
}
