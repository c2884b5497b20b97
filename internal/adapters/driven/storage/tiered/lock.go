package tiered

import (
	"context"
	"time"
)

// lockTimeout bounds how long a batch write waits for the store lock
// before degrading to a best-effort unlocked write.
const lockTimeout = 2 * time.Second

// writeLock is a store-wide mutual exclusion lock with timeout-bounded
// acquisition. It serialises batch writes; acquisition failure degrades
// rather than blocks, because upserts are idempotent by document ID.
type writeLock struct {
	ch chan struct{}
}

func newWriteLock() *writeLock {
	return &writeLock{ch: make(chan struct{}, 1)}
}

// acquire attempts to take the lock within lockTimeout. It returns a
// release func and true on success, or nil and false on timeout or
// context cancellation.
func (l *writeLock) acquire(ctx context.Context) (func(), bool) {
	timer := time.NewTimer(lockTimeout)
	defer timer.Stop()

	select {
	case l.ch <- struct{}{}:
		return func() { <-l.ch }, true
	case <-timer.C:
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}
