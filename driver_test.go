package wireup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStartAllocatesAndSendsREQ(t *testing.T) {
	wr, ft := newTestWiring(t)
	id, err := wr.Start(nil, []byte("laddr"), []byte("raddr"), nil, "assoc")
	require.NoError(t, err)
	require.True(t, id.Valid())
	require.Equal(t, DataNil, wr.GetData(id)) // not LIVE yet

	require.Len(t, ft.endpoints, 1)
	require.Len(t, ft.endpoints[0].sent, 1)
	require.Equal(t, wireupStartTag, ft.endpoints[0].sent[0].tag)
}

func TestStartRejectsOversizeAddress(t *testing.T) {
	wr, _ := newTestWiring(t)
	_, err := wr.Start(nil, make([]byte, 1<<16+1), []byte("r"), nil, nil)
	require.ErrorIs(t, err, ErrAddressTooLong)
}

func TestStartConnectFailurePropagates(t *testing.T) {
	ft := newFakeTransport()
	ft.connectErr = errRetryFailed
	wr, err := New(ft, NewNoOpLogger())
	require.NoError(t, err)
	_, err = wr.Start(nil, nil, []byte("r"), nil, nil)
	require.Error(t, err)
}

func TestGetDataOutOfRangeReturnsNil(t *testing.T) {
	wr, _ := newTestWiring(t)
	require.Equal(t, DataNil, wr.GetData(WireID{id: 999}))
	require.Equal(t, DataNil, wr.GetData(WireIDNil))
}

func TestStopUnknownWireIsError(t *testing.T) {
	wr, _ := newTestWiring(t)
	err := wr.Stop(WireID{id: 999}, false)
	require.ErrorIs(t, err, ErrInvalidWireID)
}

func TestStopOrderlySendsSTOP(t *testing.T) {
	wr, ft := newTestWiring(t)
	id, err := wr.Start(nil, nil, []byte("peer"), nil, nil)
	require.NoError(t, err)
	before := len(ft.endpoints[0].sent)

	require.NoError(t, wr.Stop(id, true))
	require.Greater(t, len(ft.endpoints[0].sent), before)
	require.Equal(t, opSTOP, mustDecodeOp(t, ft.endpoints[0].sent[len(ft.endpoints[0].sent)-1].buf))
}

func TestStopTwiceIsNoOp(t *testing.T) {
	wr, _ := newTestWiring(t)
	id, err := wr.Start(nil, nil, []byte("peer"), nil, nil)
	require.NoError(t, err)
	require.NoError(t, wr.Stop(id, false))
	require.NoError(t, wr.Stop(id, false))
}

func TestOperationsFailAfterDestroy(t *testing.T) {
	wr, _ := newTestWiring(t)
	require.NoError(t, wr.Destroy(false))
	_, err := wr.Start(nil, nil, []byte("peer"), nil, nil)
	require.ErrorIs(t, err, ErrWiringClosed)
	require.ErrorIs(t, wr.Destroy(false), ErrWiringClosed)
}

func TestDispatchREQEstablishesLiveWireViaRespond(t *testing.T) {
	wr, ft := newTestWiring(t)
	buf, err := encode(message{op: opREQ, senderID: 5, addr: []byte("caller-addr")})
	require.NoError(t, err)

	ft.rx.descs = append(ft.rx.descs, RxDescriptor{Tag: wireupStartTag, Data: buf})
	progressed := wr.Once()
	require.True(t, progressed)

	require.Len(t, ft.endpoints, 1)
	require.Len(t, ft.endpoints[0].sent, 1)
	require.Equal(t, opACK, mustDecodeOp(t, ft.endpoints[0].sent[0].buf))
}

func TestDispatchAcceptCallbackInvoked(t *testing.T) {
	var got AcceptInfo
	wr, ft := newTestWiring(t, WithAcceptCallback(func(info AcceptInfo) (any, Callback) {
		got = info
		return "accepted", nil
	}))
	buf, err := encode(message{op: opREQ, senderID: 2, addr: []byte("caller-addr")})
	require.NoError(t, err)
	ft.rx.descs = append(ft.rx.descs, RxDescriptor{Tag: wireupStartTag, Data: buf})

	wr.Once()
	require.Equal(t, SenderID(2), got.SenderID)
	require.True(t, got.WireID.Valid())
}

func TestOnceLeavesAppChannelDescriptorsUnpolled(t *testing.T) {
	wr, ft := newTestWiring(t)
	ft.rx.descs = append(ft.rx.descs, RxDescriptor{Tag: AppChannel, Data: []byte("app payload")})

	// Once only polls the wireup channel; the app descriptor is left for
	// the caller's own RxPool.Poll(AppTag()) call.
	require.False(t, wr.Once())
	require.Len(t, ft.rx.descs, 1)
}

func TestOnceReportsProgressWhenOnlyWorkIsReclaim(t *testing.T) {
	wr, _ := newTestWiring(t)
	id, err := wr.Start(nil, nil, []byte("peer"), nil, nil)
	require.NoError(t, err)
	require.NoError(t, wr.Stop(id, false))
	require.Equal(t, &stClosing, wr.tbl().wires[id.index()].state)

	wr.garbageAdd(nil) // close the epoch the wire was closed in
	require.True(t, wr.Once(), "finalizing a closed wire during reclaim counts as progress")
	require.Equal(t, &stFree, wr.tbl().wires[id.index()].state)
}

func mustDecodeOp(t *testing.T, buf []byte) opcode {
	t.Helper()
	m, err := decode(buf)
	require.NoError(t, err)
	return m.op
}
