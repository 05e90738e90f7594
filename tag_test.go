package wireup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppTagNeverCollidesWithWireupChannel(t *testing.T) {
	tag, mask := AppTag()
	require.Equal(t, AppChannel, tag)
	require.NotEqual(t, tag&mask, wireupStartTag&mask)
	require.NotEqual(t, tag&mask, shiftIn(5)&mask)
}

func TestShiftInRoundTripsSenderID(t *testing.T) {
	tag := shiftIn(42)
	require.Equal(t, WireupChannel, tag&ChannelMask)
	require.Equal(t, SenderID(42), SenderID(tag&IDMask))
}

func TestWireupStartTagExcludedFromValidSenderIDs(t *testing.T) {
	require.Equal(t, IDMask, wireupStartTag&IDMask)
	require.Equal(t, uint64(SenderIDMax), IDMask, "no valid sender id can equal the saturated id field")
}
