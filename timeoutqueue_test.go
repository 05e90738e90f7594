package wireup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestQueue(n SenderID) timeoutQueue {
	tb := newTable(n)
	for i := SenderID(0); i < n; i++ {
		tb.freeGet()
	}
	return timeoutQueue{kind: timeoutExpire, head: newTimeoutHead(), storage: tb}
}

func TestTimeoutQueueFIFOOrder(t *testing.T) {
	q := newTestQueue(3)
	base := time.Unix(0, 0)
	q.put(0, base)
	q.put(1, base.Add(time.Second))
	q.put(2, base.Add(2*time.Second))

	require.Equal(t, SenderID(0), q.peek())
	require.Equal(t, SenderID(0), q.get())
	require.Equal(t, SenderID(1), q.get())
	require.Equal(t, SenderID(2), q.get())
	require.Equal(t, SenderIDNil, q.get())
}

func TestTimeoutQueueRemoveMiddle(t *testing.T) {
	q := newTestQueue(3)
	base := time.Unix(0, 0)
	q.put(0, base)
	q.put(1, base.Add(time.Second))
	q.put(2, base.Add(2*time.Second))

	q.remove(1)
	require.Equal(t, SenderID(0), q.get())
	require.Equal(t, SenderID(2), q.get())
	require.Equal(t, SenderIDNil, q.get())
}

func TestTimeoutQueueRemoveNotEnqueuedIsNoOp(t *testing.T) {
	q := newTestQueue(1)
	q.remove(0) // self-loop sentinel, never put
	require.Equal(t, SenderIDNil, q.peek())
}

func TestTimeoutQueueRemoveHeadAndTail(t *testing.T) {
	q := newTestQueue(2)
	base := time.Unix(0, 0)
	q.put(0, base)
	q.put(1, base.Add(time.Second))

	q.remove(0)
	require.Equal(t, SenderID(1), q.peek())

	q.remove(1)
	require.Equal(t, SenderIDNil, q.peek())
}

func TestTimeoutQueueReenqueueAfterGet(t *testing.T) {
	q := newTestQueue(1)
	base := time.Unix(0, 0)
	q.put(0, base)
	require.Equal(t, SenderID(0), q.get())
	q.put(0, base.Add(time.Minute))
	require.Equal(t, SenderID(0), q.peek())
}
