package relay

import "sync"

// blocklist suppresses relay service for listed users. A block does not
// touch session state; unblock restores service as-is.
type blocklist struct {
	mu sync.RWMutex
	m  map[int64]struct{}
}

func newBlocklist() *blocklist {
	return &blocklist{m: make(map[int64]struct{})}
}

func (b *blocklist) block(userID int64) {
	b.mu.Lock()
	b.m[userID] = struct{}{}
	b.mu.Unlock()
}

func (b *blocklist) unblock(userID int64) {
	b.mu.Lock()
	delete(b.m, userID)
	b.mu.Unlock()
}

func (b *blocklist) isBlocked(userID int64) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.m[userID]
	return ok
}
