package relay

import (
	"container/list"
	"sync"
)

// routeCap bounds the reply-routing map. Entries below the cap never expire;
// above it the least recently used binding is evicted.
const routeCap = 65536

type routeEntry struct {
	ref    MessageRef
	userID int64
}

// routeTable maps delivered staff-side messages back to the candidate who
// originated them, so an operator reply can be relayed to the right person
// no matter how much time has passed.
type routeTable struct {
	mu  sync.Mutex
	cap int
	ll  *list.List
	idx map[MessageRef]*list.Element
}

func newRouteTable(capacity int) *routeTable {
	return &routeTable{
		cap: capacity,
		ll:  list.New(),
		idx: make(map[MessageRef]*list.Element),
	}
}

// bind registers ref → userID. Bindings are immutable: a second bind for the
// same ref is a no-op.
func (t *routeTable) bind(ref MessageRef, userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.idx[ref]; ok {
		return
	}
	t.idx[ref] = t.ll.PushFront(&routeEntry{ref: ref, userID: userID})
	if t.ll.Len() > t.cap {
		oldest := t.ll.Back()
		t.ll.Remove(oldest)
		delete(t.idx, oldest.Value.(*routeEntry).ref)
	}
}

// resolve returns the originating candidate for a delivered message.
func (t *routeTable) resolve(ref MessageRef) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	el, ok := t.idx[ref]
	if !ok {
		return 0, false
	}
	t.ll.MoveToFront(el)
	return el.Value.(*routeEntry).userID, true
}
