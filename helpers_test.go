package wireup

import "context"

// fakeEndpoint records every Send and whether Close was called, failing
// sends/closes on demand so tests can exercise wireup's failure paths.
type fakeEndpoint struct {
	sent     []fakeSend
	closed   bool
	sendErr  error
	closeErr error
}

type fakeSend struct {
	tag uint64
	buf []byte
}

func (e *fakeEndpoint) Send(tag uint64, buf []byte) (Request, error) {
	if e.sendErr != nil {
		return nil, e.sendErr
	}
	e.sent = append(e.sent, fakeSend{tag: tag, buf: append([]byte(nil), buf...)})
	return nil, nil
}

func (e *fakeEndpoint) Close() (Request, error) {
	e.closed = true
	return nil, e.closeErr
}

// fakeRxPool is a manually-fed RxPool: tests append descriptors to
// descs and Poll serves the first one matching (tag, mask).
type fakeRxPool struct {
	descs []RxDescriptor
}

func (p *fakeRxPool) Poll(tag, mask uint64) (RxDescriptor, bool) {
	for i, d := range p.descs {
		if d.Tag&mask == tag {
			p.descs = append(p.descs[:i:i], p.descs[i+1:]...)
			return d, true
		}
	}
	return RxDescriptor{}, false
}

// fakeTransport is an in-process Transport: Connect hands out
// fakeEndpoints and Progress is a no-op, since nothing here is
// actually asynchronous.
type fakeTransport struct {
	connectErr error
	endpoints  []*fakeEndpoint
	rx         fakeRxPool
	local      []byte
	progressed int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{local: []byte("local")}
}

func (t *fakeTransport) Connect(_ context.Context, _ []byte) (Endpoint, error) {
	if t.connectErr != nil {
		return nil, t.connectErr
	}
	ep := &fakeEndpoint{}
	t.endpoints = append(t.endpoints, ep)
	return ep, nil
}

func (t *fakeTransport) LocalAddr() []byte { return t.local }
func (t *fakeTransport) RxPool() RxPool    { return &t.rx }
func (t *fakeTransport) Progress()         { t.progressed++ }

// newTestWiring builds a Wiring over a fakeTransport with a NoOpLogger,
// returning both so tests can inspect transport-level side effects.
func newTestWiring(t interface {
	Helper()
	Fatalf(format string, args ...any)
}, opts ...Option) (*Wiring, *fakeTransport) {
	t.Helper()
	ft := newFakeTransport()
	wr, err := New(ft, NewNoOpLogger(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return wr, ft
}
