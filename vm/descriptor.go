package vm

import "fmt"

// ---------------------------------------------------------------------------
// Classification
// ---------------------------------------------------------------------------

// DescriptorKind classifies an attribute value found on a type.
type DescriptorKind uint8

const (
	PlainValue        DescriptorKind = iota // No __get__, __set__ or __delete__
	NonDataDescriptor                       // __get__ only
	DataDescriptor                          // __set__ or __delete__ (either suffices)
)

func (k DescriptorKind) String() string {
	switch k {
	case NonDataDescriptor:
		return "non-data descriptor"
	case DataDescriptor:
		return "data descriptor"
	}
	return "plain value"
}

// Classify reports how v behaves as a class attribute. The answer comes
// from v's type's slot table, so it tracks later changes to that type.
func Classify(v Value) DescriptorKind {
	st := v.Type().Slots()
	switch {
	case st.Has(OpSet) || st.Has(OpDelete):
		return DataDescriptor
	case st.Has(OpGet):
		return NonDataDescriptor
	}
	return PlainValue
}

// ---------------------------------------------------------------------------
// Capability invocation
// ---------------------------------------------------------------------------

// DescrGet returns the effective value of d read through inst, or through
// owner itself when inst is nil. A value without __get__ is returned as is.
func (rt *Runtime) DescrGet(d, inst Value, owner *Type) (Value, error) {
	get, ok := d.Type().Slots().Resolve(OpGet)
	if !ok {
		return d, nil
	}
	return get.Invoke(rt, d, []Value{inst, owner})
}

// DescrSet invokes d's __set__. A descriptor without one makes the
// attribute read-only; there is no fallback to any dictionary.
func (rt *Runtime) DescrSet(d, inst Value, name string, v Value) error {
	set, ok := d.Type().Slots().Resolve(OpSet)
	if !ok {
		return readonlyAttribute(inst, name)
	}
	_, err := set.Invoke(rt, d, []Value{inst, v})
	return err
}

// DescrDelete invokes d's __delete__, failing read-only when absent.
func (rt *Runtime) DescrDelete(d, inst Value, name string) error {
	del, ok := d.Type().Slots().Resolve(OpDelete)
	if !ok {
		return readonlyAttribute(inst, name)
	}
	_, err := del.Invoke(rt, d, []Value{inst})
	return err
}

// dataDescrGet reads through a data descriptor. A data descriptor must
// have __get__; a type that produced one without it is broken.
func (rt *Runtime) dataDescrGet(d, inst Value, owner *Type, name string) (Value, error) {
	get, ok := d.Type().Slots().Resolve(OpGet)
	if !ok {
		err := newError(ErrDescriptorInvariant,
			"data descriptor '%s' of type '%s' for attribute '%s' has no __get__", typeName(d), owner.name, name)
		rt.logs.types.Criticalf("%s", err)
		return nil, err
	}
	return get.Invoke(rt, d, []Value{inst, owner})
}

// ---------------------------------------------------------------------------
// staticmethod / classmethod
// ---------------------------------------------------------------------------

// StaticMethod returns its wrapped callable unchanged on every read.
type StaticMethod struct {
	Func Value
}

func (s *StaticMethod) Type() *Type { return StaticMethodType }

// ClassMethod binds its callable to the owner type.
type ClassMethod struct {
	Func Value
}

func (c *ClassMethod) Type() *Type { return ClassMethodType }

// ---------------------------------------------------------------------------
// property
// ---------------------------------------------------------------------------

// Property is a data descriptor built from up to three callables. A nil
// Setter or Deleter makes that operation fail read-only.
type Property struct {
	Getter  Value
	Setter  Value
	Deleter Value
	Name    string
}

func (p *Property) Type() *Type { return PropertyType }

// ---------------------------------------------------------------------------
// getset_descriptor
// ---------------------------------------------------------------------------

// GetSetDescriptor exposes native state as an attribute. Set is called
// with a nil value for deletion; a nil Set makes the attribute read-only.
type GetSetDescriptor struct {
	name  string
	owner *Type
	get   func(rt *Runtime, obj Value) (Value, error)
	set   func(rt *Runtime, obj, v Value) error
}

// NewGetSetDescriptor creates a native attribute on owner.
func NewGetSetDescriptor(owner *Type, name string,
	get func(rt *Runtime, obj Value) (Value, error),
	set func(rt *Runtime, obj, v Value) error) *GetSetDescriptor {
	return &GetSetDescriptor{name: name, owner: owner, get: get, set: set}
}

func (g *GetSetDescriptor) Type() *Type { return GetSetDescriptorType }

func (g *GetSetDescriptor) check(obj Value) error {
	if !IsInstance(obj, g.owner) {
		return requiresError(g.name, g.owner, obj)
	}
	return nil
}

// ---------------------------------------------------------------------------
// member_descriptor
// ---------------------------------------------------------------------------

// MemberDescriptor gives access to one __slots__ field of an Instance.
type MemberDescriptor struct {
	name  string
	owner *Type
	index int
}

func (m *MemberDescriptor) Type() *Type { return MemberDescriptorType }

func (m *MemberDescriptor) instance(obj Value) (*Instance, error) {
	inst, ok := obj.(*Instance)
	if !ok || !IsInstance(obj, m.owner) {
		return nil, requiresError(m.name, m.owner, obj)
	}
	return inst, nil
}

// ---------------------------------------------------------------------------
// Type wiring
// ---------------------------------------------------------------------------

func setupDescriptorTypes() {
	defTernary(StaticMethodType, OpGet, func(rt *Runtime, self, inst, owner Value) (Value, error) {
		return self.(*StaticMethod).Func, nil
	})
	defVar(StaticMethodType, OpNew, func(rt *Runtime, cls Value, args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, argCountError("staticmethod", 1, len(args))
		}
		return &StaticMethod{Func: args[0]}, nil
	})

	defTernary(ClassMethodType, OpGet, func(rt *Runtime, self, inst, owner Value) (Value, error) {
		if isNone(owner) {
			owner = inst.Type()
		}
		return &Method{Self: owner, Func: self.(*ClassMethod).Func}, nil
	})
	defVar(ClassMethodType, OpNew, func(rt *Runtime, cls Value, args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, argCountError("classmethod", 1, len(args))
		}
		return &ClassMethod{Func: args[0]}, nil
	})

	defTernary(PropertyType, OpGet, func(rt *Runtime, self, inst, owner Value) (Value, error) {
		p := self.(*Property)
		if isNone(inst) {
			return p, nil
		}
		if p.Getter == nil {
			return nil, newError(ErrAttributeNotFound, "property '%s' of '%s' object has no getter", p.Name, typeName(inst))
		}
		return rt.Call(p.Getter, inst)
	})
	defTernary(PropertyType, OpSet, func(rt *Runtime, self, inst, v Value) (Value, error) {
		p := self.(*Property)
		if p.Setter == nil {
			return nil, newError(ErrReadOnlyAttribute, "property '%s' of '%s' object has no setter", p.Name, typeName(inst))
		}
		_, err := rt.Call(p.Setter, inst, v)
		return None, err
	})
	defBinary(PropertyType, OpDelete, func(rt *Runtime, self, inst Value) (Value, error) {
		p := self.(*Property)
		if p.Deleter == nil {
			return nil, newError(ErrReadOnlyAttribute, "property '%s' of '%s' object has no deleter", p.Name, typeName(inst))
		}
		_, err := rt.Call(p.Deleter, inst)
		return None, err
	})
	defVar(PropertyType, OpNew, func(rt *Runtime, cls Value, args []Value) (Value, error) {
		if len(args) > 3 {
			return nil, newError(ErrTypeError, "property() takes at most 3 arguments (%d given)", len(args))
		}
		p := &Property{}
		for i, fn := range args {
			if isNone(fn) {
				continue
			}
			switch i {
			case 0:
				p.Getter = fn
			case 1:
				p.Setter = fn
			case 2:
				p.Deleter = fn
			}
		}
		return p, nil
	})

	defTernary(GetSetDescriptorType, OpGet, func(rt *Runtime, self, inst, owner Value) (Value, error) {
		g := self.(*GetSetDescriptor)
		if isNone(inst) {
			return g, nil
		}
		if err := g.check(inst); err != nil {
			return nil, err
		}
		return g.get(rt, inst)
	})
	defTernary(GetSetDescriptorType, OpSet, func(rt *Runtime, self, inst, v Value) (Value, error) {
		g := self.(*GetSetDescriptor)
		if err := g.check(inst); err != nil {
			return nil, err
		}
		if g.set == nil {
			return nil, readonlyAttribute(inst, g.name)
		}
		return None, g.set(rt, inst, v)
	})
	defBinary(GetSetDescriptorType, OpDelete, func(rt *Runtime, self, inst Value) (Value, error) {
		g := self.(*GetSetDescriptor)
		if err := g.check(inst); err != nil {
			return nil, err
		}
		if g.set == nil {
			return nil, readonlyAttribute(inst, g.name)
		}
		return None, g.set(rt, inst, nil)
	})
	defUnary(GetSetDescriptorType, OpRepr, func(rt *Runtime, self Value) (Value, error) {
		g := self.(*GetSetDescriptor)
		return Str(fmt.Sprintf("<attribute '%s' of '%s' objects>", g.name, g.owner.name)), nil
	})

	defTernary(MemberDescriptorType, OpGet, func(rt *Runtime, self, inst, owner Value) (Value, error) {
		m := self.(*MemberDescriptor)
		if isNone(inst) {
			return m, nil
		}
		obj, err := m.instance(inst)
		if err != nil {
			return nil, err
		}
		v := obj.Field(m.index)
		if v == nil {
			return nil, noAttribute(inst, m.name)
		}
		return v, nil
	})
	defTernary(MemberDescriptorType, OpSet, func(rt *Runtime, self, inst, v Value) (Value, error) {
		m := self.(*MemberDescriptor)
		obj, err := m.instance(inst)
		if err != nil {
			return nil, err
		}
		obj.SetField(m.index, v)
		return None, nil
	})
	defBinary(MemberDescriptorType, OpDelete, func(rt *Runtime, self, inst Value) (Value, error) {
		m := self.(*MemberDescriptor)
		obj, err := m.instance(inst)
		if err != nil {
			return nil, err
		}
		if obj.Field(m.index) == nil {
			return nil, noAttribute(inst, m.name)
		}
		obj.SetField(m.index, nil)
		return None, nil
	})
	defUnary(MemberDescriptorType, OpRepr, func(rt *Runtime, self Value) (Value, error) {
		m := self.(*MemberDescriptor)
		return Str(fmt.Sprintf("<member '%s' of '%s' objects>", m.name, m.owner.name)), nil
	})
}
