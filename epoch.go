package wireup

import (
	"math"
	"sync/atomic"
)

// numGarbageBins is the size of the epoch ring. last-first never exceeds
// this; garbageAdd forces a reclaim pass rather than let it grow further.
const numGarbageBins = 4

// reclaimedBinSentinel marks a bin that has already been fully reclaimed:
// a Ref attach racing against that reclaim must retry against whatever
// bin now occupies the current epoch, rather than publish itself into a
// bin that will never be scanned again.
var reclaimedBinSentinel = &Ref{}

// Ref pins the epoch current at the time of NewRef, so that a table or
// association array retired after that point is not freed out from under
// a concurrent reader. It is single-use: acquire with Wiring.NewRef,
// release with Release once the read is complete.
type Ref struct {
	epoch   atomic.Uint64
	busy    atomic.Bool
	next    *Ref
	reclaim func()
}

// Release ends the pin. The epoch the Ref held is marked
// math.MaxUint64 so the reclaimer treats it as done and drops it from the
// bin's reference stack on the next pass, invoking its reclaim callback
// (if any) rather than migrating it forward.
func (r *Ref) Release() {
	r.busy.Store(false)
	r.epoch.Store(math.MaxUint64)
}

// holdsEpoch reports whether r still pins epochInPast: either it adopted
// a strictly later epoch (definitely does not hold it), or it is
// currently busy (conservatively assumed to hold it, since it may not
// have finished adopting a later epoch yet).
func (r *Ref) holdsEpoch(epochInPast uint64) bool {
	if r.epoch.Load() > epochInPast {
		return false
	}
	return r.busy.Load()
}

// garbageBin holds one epoch's retired state: a lock-free stack of refs
// that may still pin this epoch or an earlier one, a list of wires closed
// during this epoch awaiting finalization, and at most one retired table.
// pad separates firstRef, the field concurrent readers CAS against in
// NewRef, from its neighbor in the bins array, so a reader hammering one
// bin's head does not bounce the cache line backing the next.
type garbageBin struct {
	firstRef    atomic.Pointer[Ref]
	pad         [sizeOfCacheLine - sizeOfAtomicUint64]byte
	firstClosed SenderID
	retired     *table
}

// garbageSchedule is the epoch-indexed ring of garbage bins plus the
// monotonic epoch window [first, last) of bins currently in use.
// last-first never exceeds numGarbageBins.
type garbageSchedule struct {
	bins  [numGarbageBins]garbageBin
	first uint64
	last  atomic.Uint64

	// workAvailable is an optimization: reclaim(false, ...) is a no-op
	// when nothing has been retired since the last pass.
	workAvailable int
}

func newGarbageSchedule() *garbageSchedule {
	g := &garbageSchedule{}
	for i := range g.bins {
		g.bins[i].firstClosed = SenderIDNil
	}
	return g
}

// NewRef attaches a fresh Ref to the bin for the current epoch, so that
// table/association-array state retired no earlier than this call will
// not be freed while the Ref is held. reclaim, if non-nil, runs once the
// reclaimer has fully drained this Ref from its bin after Release.
//
// NewRef requires no lock: like GetData, a reader may call it concurrently
// with a locked mutator.
func (wr *Wiring) NewRef(reclaim func()) *Ref {
	r := &Ref{reclaim: reclaim}
	r.busy.Store(true)
	g := wr.garbage
	for {
		epoch := g.last.Load()
		bin := &g.bins[epoch%numGarbageBins]
		next := bin.firstRef.Load()
		if next == reclaimedBinSentinel {
			continue
		}
		r.next = next
		r.epoch.Store(epoch)
		if bin.firstRef.CompareAndSwap(next, r) {
			return r
		}
	}
}

// garbageAdd retires t into the current epoch's bin, forcing a reclaim
// pass first if the ring is already full. Caller must hold the lock.
func (wr *Wiring) garbageAdd(t *table) {
	g := wr.garbage
	for g.last.Load()-g.first == numGarbageBins {
		wr.reclaim(false, nil)
	}
	last := g.last.Load()
	bin := &g.bins[last%numGarbageBins]
	bin.retired = t
	g.last.Store(last + 1)
	g.workAvailable++
}

// closingPut threads id onto the closing list of the bin for the current
// epoch. Caller must hold the lock.
func (wr *Wiring) closingPut(id SenderID) {
	g := wr.garbage
	epoch := g.last.Load()
	bin := &g.bins[epoch%numGarbageBins]
	wr.tbl().wires[id].next = bin.firstClosed
	bin.firstClosed = id
}

// reclaimBinForEpoch drains the ref stack and closing list for one epoch.
// It returns false if a live ref still pins the epoch, meaning the bin
// (and every later one) must wait for another pass.
func (wr *Wiring) reclaimBinForEpoch(epoch, lastEpoch uint64, progress *bool) bool {
	g := wr.garbage
	bin := &g.bins[epoch%numGarbageBins]

	for {
		ref := bin.firstRef.Load()
		if ref == nil {
			break
		}
		if ref.holdsEpoch(epoch) {
			return false
		}
		if !bin.firstRef.CompareAndSwap(ref, ref.next) {
			continue
		}
		if ref.epoch.Load() == math.MaxUint64 {
			if ref.reclaim != nil {
				ref.reclaim()
			}
			continue
		}
		newbin := &g.bins[lastEpoch%numGarbageBins]
		for {
			head := newbin.firstRef.Load()
			ref.next = head
			if newbin.firstRef.CompareAndSwap(head, ref) {
				break
			}
		}
	}

	for id := bin.firstClosed; id != SenderIDNil; {
		w := &wr.tbl().wires[id]
		next := w.next
		if progress != nil {
			*progress = true
		}
		wr.finalizeWire(id)
		wr.transition(id, stateTable[stateFree])
		wr.tbl().freePut(id)
		id = next
	}
	bin.firstClosed = SenderIDNil
	bin.retired = nil

	bin.firstRef.Store(reclaimedBinSentinel)
	return true
}

// reclaim walks the epoch window [first, last), reclaiming every bin
// that no live ref still pins. If finalize is true it additionally tries
// to drain the final, currently-open bin, returning false if that is not
// yet possible (some ref still pins it) rather than giving up silently.
// If progress is non-nil, it is set to true whenever finalizing a closed
// wire actually changed its state (slot returned to FREE), the same way
// wiring_reclaim threads its caller's progress flag through.
func (wr *Wiring) reclaim(finalize bool, progress *bool) bool {
	g := wr.garbage

	workAvailable := g.workAvailable
	if !finalize && workAvailable == 0 {
		return true
	}

	first, last := g.first, g.last.Load()
	epoch := first
	for ; epoch != last; epoch++ {
		if !wr.reclaimBinForEpoch(epoch, last, progress) {
			break
		}
	}
	if g.first != epoch {
		g.first = epoch
	}
	g.workAvailable -= workAvailable

	if !finalize {
		return true
	}
	if g.first < g.last.Load() {
		return false
	}
	return wr.reclaimBinForEpoch(epoch, epoch, progress)
}
