package services

import (
	"sync"
)

// keyedLocks serializes work per entity id. Both review engines write
// Application.status, and intake does a check-then-create per user; locking by
// key makes each read-derive-write sequence atomic within this process.
// Locks are never held across a request boundary, only across one operation.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*entityLock
}

type entityLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*entityLock)}
}

// Lock acquires the lock for key and returns its unlock function. Entries are
// reference counted so the map does not grow with every id ever seen.
func (k *keyedLocks) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &entityLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
