package wireup

// LockBundle lets a caller supply its own locking primitive for a
// Wiring: every mutating operation (Start, Stop, Once, Destroy) requires
// the lock held across the call, and the default bundle assumes
// single-threaded use. A caller sharing one Wiring across goroutines
// installs a real bundle with WithLockBundle, e.g. backed by a
// sync.Mutex.
type LockBundle struct {
	// Arg is passed back to Lock, Unlock, and AssertLocked unchanged;
	// it typically holds the concrete mutex.
	Arg any

	Lock   func(arg any)
	Unlock func(arg any)

	// AssertLocked reports whether the lock is currently held. It is
	// only ever consulted when the module is built without the
	// "nodebug" tag (see assertLocked); production builds never call
	// it, matching the original's lock-assertion being compiled away
	// in release builds.
	AssertLocked func(arg any) bool
}

func (lb LockBundle) lock() {
	if lb.Lock != nil {
		lb.Lock(lb.Arg)
	}
}

func (lb LockBundle) unlock() {
	if lb.Unlock != nil {
		lb.Unlock(lb.Arg)
	}
}

func (lb LockBundle) assertLocked() bool {
	if lb.AssertLocked == nil {
		return true
	}
	return lb.AssertLocked(lb.Arg)
}
