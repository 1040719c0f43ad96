package vm

import (
	"sync"
	"sync/atomic"
)

// DictHolder is implemented by values that may carry an instance
// dictionary. InstanceDict returns nil when the value has none and create
// is false, or when the value's type does not allow one at all.
type DictHolder interface {
	InstanceDict(create bool) Mapping
}

var instanceIDs atomic.Uint64

// Instance is an object created from a user-defined type.
//
// Its storage follows the type's layout: one field per __slots__ entry,
// plus a dictionary allocated on first write when the type has
// FlagHasDict. Payload carries the native value for subclasses of
// built-ins (an int subclass keeps its Int here).
type Instance struct {
	typ     atomic.Pointer[Type]
	mu      sync.Mutex
	dict    *Dict
	fields  []Value
	Payload Value
	id      uint64
}

// NewInstance allocates an instance of t with empty fields.
func NewInstance(t *Type) *Instance {
	inst := &Instance{
		fields: make([]Value, t.layout.NumFields()),
		id:     instanceIDs.Add(1),
	}
	inst.typ.Store(t)
	return inst
}

// Type implements Value. It returns the current type, which changes on
// __class__ assignment.
func (i *Instance) Type() *Type { return i.typ.Load() }

// ID returns the identity used by the default __hash__.
func (i *Instance) ID() uint64 { return i.id }

// InstanceDict implements DictHolder.
func (i *Instance) InstanceDict(create bool) Mapping {
	if !i.Type().HasInstanceDict() {
		return nil
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.dict == nil {
		if !create {
			return nil
		}
		i.dict = NewDict()
	}
	return i.dict
}

func (i *Instance) replaceDict(d *Dict) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.dict = d
}

// Field returns the value of a __slots__ field, nil if unset.
func (i *Instance) Field(index int) Value {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.fields[index]
}

// SetField stores v in a __slots__ field; nil clears it.
func (i *Instance) SetField(index int, v Value) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.fields[index] = v
}

// SetClass implements __class__ assignment. Only instances of mutable
// types may change type, and only to a mutable type with the same layout
// and dictionary support.
func (i *Instance) SetClass(newType *Type) error {
	old := i.Type()
	if !old.IsMutable() || !newType.IsMutable() {
		return newError(ErrTypeError,
			"__class__ assignment only supported for mutable types or ModuleType subclasses")
	}
	if old.layout != newType.layout || old.HasInstanceDict() != newType.HasInstanceDict() {
		return newError(ErrTypeError,
			"__class__ assignment: '%s' object layout differs from '%s'", newType.name, old.name)
	}
	i.typ.Store(newType)
	return nil
}
