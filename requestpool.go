package wireup

// requestHandle tracks one transport-level non-blocking operation
// (a control-message send or an endpoint close) from submission to
// completion. It lives on exactly one of the pool's two singly-linked
// lists at a time: the free list, or the outstanding FIFO.
type requestHandle struct {
	next *requestHandle
	req  Request
}

// requestPool is the free-list/outstanding-list of transport-request
// handles: a free list for reuse, and an outstanding FIFO in which
// completion order mirrors submission order for a given endpoint.
// maxRequests, if non-zero, bounds the total number of handles ever
// allocated (free + outstanding), after which get returns
// ErrNoFreeRequest — the pool's analogue of reserving a fixed request
// arena up front.
type requestPool struct {
	freeHead   *requestHandle
	outstHead  *requestHandle
	outstTail  *requestHandle
	allocated  int
	maxRequests int
}

func newRequestPool(maxRequests int) *requestPool {
	return &requestPool{maxRequests: maxRequests}
}

// get returns a handle from the free list, allocating a new one if the
// pool has room (or is unbounded).
func (p *requestPool) get() (*requestHandle, error) {
	if p.freeHead != nil {
		h := p.freeHead
		p.freeHead = h.next
		h.next = nil
		return h, nil
	}
	if p.maxRequests > 0 && p.allocated >= p.maxRequests {
		return nil, ErrNoFreeRequest
	}
	p.allocated++
	return &requestHandle{}, nil
}

// putOutstanding appends h, now tracking req, to the tail of the
// outstanding FIFO.
func (p *requestPool) putOutstanding(h *requestHandle, req Request) {
	h.req = req
	h.next = nil
	if p.outstTail == nil {
		p.outstHead = h
	} else {
		p.outstTail.next = h
	}
	p.outstTail = h
}

// putFree returns h to the free list.
func (p *requestPool) putFree(h *requestHandle) {
	h.req = nil
	h.next = p.freeHead
	p.freeHead = h
}

// checkStatus walks the outstanding list from the head, moving every
// request that has completed onto the free list, and stops at the first
// one still in progress (completion order mirrors submission order, so
// nothing past it can have completed either). It reports whether any
// request remains outstanding.
func (p *requestPool) checkStatus() bool {
	for p.outstHead != nil {
		if !p.outstHead.req.Done() {
			return true
		}
		h := p.outstHead
		p.outstHead = h.next
		if p.outstHead == nil {
			p.outstTail = nil
		}
		p.putFree(h)
	}
	return false
}

// discard drops every handle on the free list. Called only during
// teardown, after checkStatus has confirmed nothing is outstanding.
func (p *requestPool) discard() {
	p.freeHead = nil
	p.allocated = 0
}
