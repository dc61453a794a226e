package driver

import (
	"sync"

	"github.com/rm-dr/lamb/term"
)

// macroTable is the driver's owned mapping from abbreviation name to its
// defining Root, implementing term.MacroTable so Prepare/Reduce/Expand can
// look abbreviations up without depending on the driver package.
// Definition order is preserved: save writes macros in the order they were
// defined, so a saved file re-loads with every forward reference still
// resolvable.
//
// A mutex guards it even though the engine is single-threaded end to end,
// since the reduction goroutine (reduce_loop.go) and its progress reporter
// both read driver state and the race detector does not know the access is
// conflict-free by construction.
type macroTable struct {
	mu    sync.RWMutex
	defs  map[string]*term.Root
	order []string
}

func newMacroTable() *macroTable {
	return &macroTable{defs: map[string]*term.Root{}}
}

func (m *macroTable) Lookup(name string) (term.Node, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	root, ok := m.defs[name]
	if !ok {
		return nil, false
	}
	return root.Child(term.LeftSide), true
}

func (m *macroTable) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.defs[name]
	return ok
}

func (m *macroTable) Define(name string, root *term.Root) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.defs[name]; !exists {
		m.order = append(m.order, name)
	}
	m.defs[name] = root
}

func (m *macroTable) Delete(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.defs[name]; !ok {
		return false
	}
	delete(m.defs, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

func (m *macroTable) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defs = map[string]*term.Root{}
	m.order = nil
}

// Names returns the defined names in definition order.
func (m *macroTable) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.order))
	copy(names, m.order)
	return names
}

func (m *macroTable) Root(name string) (*term.Root, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	root, ok := m.defs[name]
	return root, ok
}
