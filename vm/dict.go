package vm

import (
	"sort"
	"sync"
)

// Mapping is a namespace of attribute names. Dict is the mutable variant;
// DictProxy is the read-only variant handed out for type dictionaries.
type Mapping interface {
	Value
	Get(name string) (Value, bool)
	Put(name string, v Value) error
	// Remove fails with ErrKey when name is absent.
	Remove(name string) error
	Len() int
	Keys() []string
}

// ---------------------------------------------------------------------------
// Dict
// ---------------------------------------------------------------------------

// Dict is a mutable string-keyed namespace. It's thread-safe for
// concurrent access.
type Dict struct {
	mu sync.RWMutex
	m  map[string]Value
}

// NewDict creates an empty dictionary.
func NewDict() *Dict {
	return &Dict{m: make(map[string]Value)}
}

// NewDictFrom creates a dictionary holding a copy of entries.
func NewDictFrom(entries map[string]Value) *Dict {
	d := &Dict{m: make(map[string]Value, len(entries))}
	for k, v := range entries {
		d.m[k] = v
	}
	return d
}

// Type implements Value.
func (d *Dict) Type() *Type { return DictType }

// Get returns the value stored under name.
func (d *Dict) Get(name string) (Value, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.m[name]
	return v, ok
}

// Has reports whether name is present.
func (d *Dict) Has(name string) bool {
	_, ok := d.Get(name)
	return ok
}

// Put stores v under name.
func (d *Dict) Put(name string, v Value) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m[name] = v
	return nil
}

// Remove deletes name.
func (d *Dict) Remove(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.m[name]; !ok {
		return newError(ErrKey, "'%s'", name)
	}
	delete(d.m, name)
	return nil
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.m)
}

// Keys returns the names, sorted.
func (d *Dict) Keys() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	keys := make([]string, 0, len(d.m))
	for k := range d.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of the entries.
func (d *Dict) Snapshot() map[string]Value {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]Value, len(d.m))
	for k, v := range d.m {
		out[k] = v
	}
	return out
}

// ---------------------------------------------------------------------------
// DictProxy
// ---------------------------------------------------------------------------

// DictProxy is a read-only view of a Dict. External writes fail with
// ErrCannotSetAttribute; the owner keeps writing to the underlying Dict.
type DictProxy struct {
	d *Dict
}

// NewDictProxy wraps d.
func NewDictProxy(d *Dict) *DictProxy { return &DictProxy{d: d} }

// Type implements Value.
func (p *DictProxy) Type() *Type { return MappingProxyType }

func (p *DictProxy) Get(name string) (Value, bool) { return p.d.Get(name) }
func (p *DictProxy) Len() int                      { return p.d.Len() }
func (p *DictProxy) Keys() []string                { return p.d.Keys() }

// Put always fails.
func (p *DictProxy) Put(name string, v Value) error {
	return newError(ErrCannotSetAttribute, "'mappingproxy' object does not support item assignment")
}

// Remove always fails.
func (p *DictProxy) Remove(name string) error {
	return newError(ErrCannotSetAttribute, "'mappingproxy' object does not support item deletion")
}
