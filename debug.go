//go:build !nodebug

package wireup

// assertLocked panics if the lock bundle reports the lock is not held.
// Compiled out entirely under the nodebug build tag; see debug_nodebug.go.
func (wr *Wiring) assertLocked() {
	if !wr.opts.lock.assertLocked() {
		panic("wireup: mutating operation called without the lock held")
	}
}
