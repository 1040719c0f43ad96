package vm

import (
	"strings"
	"sync"
	"sync/atomic"
)

// ---------------------------------------------------------------------------
// Type: the type object
// ---------------------------------------------------------------------------

// TypeFlags records fixed properties of a type.
type TypeFlags uint16

const (
	// FlagMutable allows attributes of the type itself to be set and
	// deleted. Built-in types are immutable.
	FlagMutable TypeFlags = 1 << iota
	// FlagBaseType allows the type to be subclassed.
	FlagBaseType
	// FlagHasDict gives instances an instance dictionary.
	FlagHasDict
	// FlagBuiltin marks the types created at package initialisation.
	FlagBuiltin
)

func (f TypeFlags) String() string {
	var parts []string
	for _, x := range []struct {
		flag TypeFlags
		name string
	}{
		{FlagMutable, "mutable"},
		{FlagBaseType, "basetype"},
		{FlagHasDict, "dict"},
		{FlagBuiltin, "builtin"},
	} {
		if f&x.flag != 0 {
			parts = append(parts, x.name)
		}
	}
	return strings.Join(parts, "|")
}

// Type is a type object. It is itself a Value whose type is its metatype.
//
// The bases, MRO and layout are fixed at creation. The dictionary may
// change (on mutable types only), and every change to a special method
// name republishes the slot table of the type and of its subtypes.
type Type struct {
	name     string
	metatype *Type
	layout   *Layout
	flags    TypeFlags
	base     *Type   // Best base: supplies the layout
	bases    []*Type // Declared bases, in order
	mro      []*Type // Self first, ending at object
	dict     *Dict
	id       uint64

	slots   atomic.Pointer[SlotTable]
	version atomic.Uint64 // Bumped whenever the slot table is republished

	mu         sync.RWMutex
	subclasses []*Type
}

// Type returns the metatype.
func (t *Type) Type() *Type { return t.metatype }

// Name returns the type's name.
func (t *Type) Name() string { return t.name }

// Layout returns the native layout instances of t require.
func (t *Type) Layout() *Layout { return t.layout }

// Flags returns the type flags.
func (t *Type) Flags() TypeFlags { return t.flags }

// IsMutable reports whether attributes of the type may be changed.
func (t *Type) IsMutable() bool { return t.flags&FlagMutable != 0 }

// IsBaseType reports whether t may be subclassed.
func (t *Type) IsBaseType() bool { return t.flags&FlagBaseType != 0 }

// IsBuiltin reports whether t is one of the built-in types.
func (t *Type) IsBuiltin() bool { return t.flags&FlagBuiltin != 0 }

// HasInstanceDict reports whether instances of t carry a dictionary.
func (t *Type) HasInstanceDict() bool { return t.flags&FlagHasDict != 0 }

// ID returns the identity used by the default __hash__.
func (t *Type) ID() uint64 { return t.id }

// Base returns the best base, nil for object.
func (t *Type) Base() *Type { return t.base }

// Bases returns the declared bases.
func (t *Type) Bases() []*Type { return append([]*Type(nil), t.bases...) }

// MRO returns the method resolution order, t first.
func (t *Type) MRO() []*Type { return append([]*Type(nil), t.mro...) }

// Slots returns the current slot table. The table is immutable; a later
// change to the type publishes a new one.
func (t *Type) Slots() *SlotTable { return t.slots.Load() }

// Version changes every time the slot table is republished. Inline caches
// use it as part of their guard.
func (t *Type) Version() uint64 { return t.version.Load() }

// Dict returns a read-only view of the type's namespace. Changes must go
// through SetAttr so that slots stay consistent.
func (t *Type) Dict() *DictProxy { return &DictProxy{d: t.dict} }

// IsSubtype reports whether t is other or has other in its MRO.
func (t *Type) IsSubtype(other *Type) bool {
	if t == other {
		return true
	}
	for _, c := range t.mro {
		if c == other {
			return true
		}
	}
	return false
}

// IsProperSubtype reports whether t is a subtype of other but not other.
func (t *Type) IsProperSubtype(other *Type) bool {
	return t != other && t.IsSubtype(other)
}

// Lookup finds name along the MRO. It returns the value and the type
// whose dictionary held it, or nil, nil. First match wins.
func (t *Type) Lookup(name string) (Value, *Type) {
	for _, c := range t.mro {
		if v, ok := c.dict.Get(name); ok {
			return v, c
		}
	}
	return nil, nil
}

// Subclasses returns the types that list t as a direct base.
func (t *Type) Subclasses() []*Type {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*Type(nil), t.subclasses...)
}

func (t *Type) addSubclass(sub *Type) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.subclasses {
		if s == sub {
			return
		}
	}
	t.subclasses = append(t.subclasses, sub)
}

// publish installs a new slot table and bumps the version.
func (t *Type) publish(st *SlotTable) {
	t.slots.Store(st)
	t.version.Add(1)
}

// String implements the Stringer interface.
func (t *Type) String() string {
	return "<class '" + t.name + "'>"
}

// Depth returns the length of the MRO minus one (0 for object).
func (t *Type) Depth() int {
	return len(t.mro) - 1
}
