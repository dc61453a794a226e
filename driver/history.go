package driver

import (
	"sync"

	"github.com/rm-dr/lamb/term"
)

// historyCapacity is the fixed size of the result ring.
const historyCapacity = 10

// historyRing is a bounded FIFO of the last historyCapacity reduction
// results, each stored fully expanded so that a later `$` reference is
// independent of subsequent macro redefinitions. Implements
// term.HistorySource.
type historyRing struct {
	mu      sync.RWMutex
	entries []*term.Root // entries[len-1] is the most recent
}

func newHistoryRing() *historyRing {
	return &historyRing{entries: make([]*term.Root, 0, historyCapacity)}
}

func (h *historyRing) Latest() (term.Node, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.entries) == 0 {
		return nil, false
	}
	return h.entries[len(h.entries)-1].Child(term.LeftSide), true
}

// Push appends a new fully-expanded snapshot, dropping the oldest entry
// once the ring is at capacity.
func (h *historyRing) Push(snapshot *term.Root) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, snapshot)
	if len(h.entries) > historyCapacity {
		h.entries = h.entries[len(h.entries)-historyCapacity:]
	}
}

func (h *historyRing) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}
