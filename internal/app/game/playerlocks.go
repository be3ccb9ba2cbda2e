package game

import (
	"slices"
	"sync"
)

// playerLocks serializes read-modify-write cycles on player records. A player can sit in
// several games, and those games finish on their own goroutines.
type playerLocks struct {
	mu    sync.Mutex
	locks map[string]*playerLock
}

type playerLock struct {
	mu   sync.Mutex
	refs int
}

// lock takes the locks of every given player in id order and returns the matching unlock.
func (l *playerLocks) lock(ids ...string) func() {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	held := make([]*playerLock, len(ids))
	for i, id := range ids {
		held[i] = l.acquire(id)
	}
	return func() {
		for i := len(ids) - 1; i >= 0; i-- {
			l.release(ids[i], held[i])
		}
	}
}

func (l *playerLocks) acquire(id string) *playerLock {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*playerLock)
	}
	pl, ok := l.locks[id]
	if !ok {
		pl = &playerLock{}
		l.locks[id] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()
	return pl
}

func (l *playerLocks) release(id string, pl *playerLock) {
	pl.mu.Unlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	pl.refs--
	if pl.refs == 0 {
		delete(l.locks, id)
	}
}

func (l *playerLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
