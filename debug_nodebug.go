//go:build nodebug

package wireup

// assertLocked is a no-op in nodebug builds, matching the original's
// release-mode lock assertions compiling away entirely.
func (wr *Wiring) assertLocked() {}
