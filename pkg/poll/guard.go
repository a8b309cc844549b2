package poll

import "sync/atomic"

// Guard is the in-flight flag checked before a pass or a preference toggle
// acts. It is a re-entrancy flag, not a mutex: TryLock never blocks.
// The zero value is unlocked.
type Guard struct {
	held atomic.Bool
}

// TryLock sets the flag and reports whether it was clear.
func (g *Guard) TryLock() bool {
	return g.held.CompareAndSwap(false, true)
}

// Unlock clears the flag.
func (g *Guard) Unlock() {
	g.held.Store(false)
}

// Locked reports whether the flag is set.
func (g *Guard) Locked() bool {
	return g.held.Load()
}
