package vm

import (
	"sort"
	"sync"
)

// ---------------------------------------------------------------------------
// TypeTable: type registry
// ---------------------------------------------------------------------------

// TypeTable owns the types of one runtime for its whole lifetime; types
// are never individually removed. It's thread-safe for concurrent access.
//
// Only fully constructed types are registered: a failed CreateType leaves
// the table untouched.
type TypeTable struct {
	mu     sync.RWMutex
	types  []*Type          // Registration order
	byName map[string]*Type // Latest type registered under each name
}

// NewTypeTable creates a new empty type table.
func NewTypeTable() *TypeTable {
	return &TypeTable{
		byName: make(map[string]*Type),
	}
}

// Register adds a type to the table.
// Returns the previous type with this name, or nil.
func (tt *TypeTable) Register(t *Type) *Type {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	old := tt.byName[t.name]
	tt.byName[t.name] = t
	tt.types = append(tt.types, t)
	return old
}

// Lookup finds the most recently registered type with this name.
func (tt *TypeTable) Lookup(name string) *Type {
	tt.mu.RLock()
	defer tt.mu.RUnlock()
	return tt.byName[name]
}

// Has returns true if a type with this name is registered.
func (tt *TypeTable) Has(name string) bool {
	tt.mu.RLock()
	defer tt.mu.RUnlock()
	_, ok := tt.byName[name]
	return ok
}

// All returns all registered types in registration order.
func (tt *TypeTable) All() []*Type {
	tt.mu.RLock()
	defer tt.mu.RUnlock()
	return append([]*Type(nil), tt.types...)
}

// Names returns the registered names, sorted.
func (tt *TypeTable) Names() []string {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	names := make([]string, 0, len(tt.byName))
	for n := range tt.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered types.
func (tt *TypeTable) Len() int {
	tt.mu.RLock()
	defer tt.mu.RUnlock()
	return len(tt.types)
}
