package ledger

import (
	"sort"
	"sync"
)

// walletLocks serializes balance mutations per wallet. A wallet maps 1:1 to
// a user, so locks are keyed by user id. Multi-wallet operations acquire
// locks in ascending key order; two concurrent opposite-direction transfers
// therefore contend on the same first lock instead of deadlocking.
type walletLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newWalletLocks() *walletLocks {
	return &walletLocks{locks: make(map[uint]*sync.Mutex)}
}

func (l *walletLocks) get(id uint) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

// acquire locks every id in ascending order and returns a release function
// that unlocks in reverse order. Duplicate ids are collapsed.
func (l *walletLocks) acquire(ids ...uint) func() {
	seen := make(map[uint]bool, len(ids))
	ordered := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			ordered = append(ordered, id)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	held := make([]*sync.Mutex, 0, len(ordered))
	for _, id := range ordered {
		m := l.get(id)
		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
