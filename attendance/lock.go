package attendance

import "sync"

// =============================================================================
// KEYED MUTEX - Per-(employee, day) mutual exclusion
// =============================================================================

// keyedMutex serializes the load-mutate-save sequence per aggregate key.
// Two concurrent webhook requests for the same employee-day would otherwise
// race on the upsert and lose punches. Entries are reference-counted and
// removed when the last holder releases, so the map does not grow with the
// calendar.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock acquires the mutex for key and returns its release function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
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
