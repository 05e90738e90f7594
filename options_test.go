package wireup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveOptionsDefaults(t *testing.T) {
	cfg, err := resolveOptions(nil)
	require.NoError(t, err)
	require.Equal(t, defaultKeepaliveInterval, cfg.keepaliveInterval)
	require.Equal(t, defaultRetryInterval, cfg.retryInterval)
	require.Equal(t, time.Duration(0), cfg.timeoutInterval)
	require.Equal(t, defaultInitialWireCount, cfg.initialWireCount)
}

func TestResolveOptionsAppliesOverrides(t *testing.T) {
	cfg, err := resolveOptions([]Option{
		WithKeepaliveInterval(5 * time.Second),
		WithRetryInterval(time.Second),
		WithTimeoutInterval(30 * time.Second),
		WithRequestSize(16),
		WithInitialWireCount(8),
	})
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, cfg.keepaliveInterval)
	require.Equal(t, time.Second, cfg.retryInterval)
	require.Equal(t, 30*time.Second, cfg.timeoutInterval)
	require.Equal(t, 16, cfg.maxRequests)
	require.Equal(t, 8, cfg.initialWireCount)
}

func TestResolveOptionsSkipsNil(t *testing.T) {
	cfg, err := resolveOptions([]Option{nil, WithRetryInterval(time.Second), nil})
	require.NoError(t, err)
	require.Equal(t, time.Second, cfg.retryInterval)
}

func TestNewClampsInitialWireCountToOne(t *testing.T) {
	wr, _ := newTestWiring(t, WithInitialWireCount(0))
	require.Equal(t, SenderID(1), wr.tbl().count())
}

func TestRequestPoolBoundsAllocation(t *testing.T) {
	p := newRequestPool(1)
	h, err := p.get()
	require.NoError(t, err)
	_, err = p.get()
	require.ErrorIs(t, err, ErrNoFreeRequest)
	p.putFree(h)
	_, err = p.get()
	require.NoError(t, err)
}
