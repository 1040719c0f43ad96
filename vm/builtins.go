package vm

import (
	"fmt"
	"hash/fnv"
	"strings"
	"sync/atomic"
)

// ---------------------------------------------------------------------------
// Built-in type objects
// ---------------------------------------------------------------------------

// The built-in types are allocated as shells here and wired in init:
// object and type refer to each other, so neither can be finished first.
var (
	ObjectType = &Type{name: "object"}
	TypeType   = &Type{name: "type"}

	NoneType           = &Type{name: "NoneType"}
	NotImplementedType = &Type{name: "NotImplementedType"}
	IntType            = &Type{name: "int"}
	BoolType           = &Type{name: "bool"}
	FloatType          = &Type{name: "float"}
	StrType            = &Type{name: "str"}
	TupleType          = &Type{name: "tuple"}
	DictType           = &Type{name: "dict"}
	MappingProxyType   = &Type{name: "mappingproxy"}
	IteratorType       = &Type{name: "iterator"}

	FunctionType         = &Type{name: "function"}
	MethodType           = &Type{name: "method"}
	NativeMethodType     = &Type{name: "builtin_function_or_method"}
	StaticMethodType     = &Type{name: "staticmethod"}
	ClassMethodType      = &Type{name: "classmethod"}
	PropertyType         = &Type{name: "property"}
	GetSetDescriptorType = &Type{name: "getset_descriptor"}
	MemberDescriptorType = &Type{name: "member_descriptor"}
)

// builtinTypes lists the built-ins with every base before its subtypes.
var builtinTypes []*Type

var typeIDs atomic.Uint64

var (
	typeLayout  = NewLayout("type", nil)
	intLayout   = NewLayout("int", nil)
	floatLayout = NewLayout("float", nil)
	strLayout   = NewLayout("str", nil)
)

// initType wires a shell. Built-in types are immutable.
func initType(t *Type, layout *Layout, flags TypeFlags, bases ...*Type) {
	t.metatype = TypeType
	t.layout = layout
	t.flags = flags | FlagBuiltin
	t.bases = bases
	t.dict = NewDict()
	t.id = typeIDs.Add(1)
	if len(bases) > 0 {
		t.base = bases[0]
	}
	mro, err := linearize(t, bases)
	if err != nil {
		panic("vm: built-in " + t.name + ": " + err.Error())
	}
	t.mro = mro
	for _, b := range bases {
		b.addSubclass(t)
	}
	builtinTypes = append(builtinTypes, t)
}

func init() {
	// Phase 1: structure. object has no bases; everything else derives
	// from it, and every metatype pointer is type.
	initType(ObjectType, rootLayout, FlagBaseType)
	initType(TypeType, typeLayout, FlagBaseType, ObjectType)

	initType(NoneType, rootLayout, 0, ObjectType)
	initType(NotImplementedType, rootLayout, 0, ObjectType)
	initType(IntType, intLayout, FlagBaseType, ObjectType)
	initType(BoolType, intLayout, 0, IntType)
	initType(FloatType, floatLayout, FlagBaseType, ObjectType)
	initType(StrType, strLayout, FlagBaseType, ObjectType)
	initType(TupleType, NewLayout("tuple", nil), 0, ObjectType)
	initType(DictType, NewLayout("dict", nil), 0, ObjectType)
	initType(MappingProxyType, NewLayout("mappingproxy", nil), 0, ObjectType)
	initType(IteratorType, NewLayout("iterator", nil), 0, ObjectType)

	initType(FunctionType, NewLayout("function", nil), 0, ObjectType)
	initType(MethodType, NewLayout("method", nil), 0, ObjectType)
	initType(NativeMethodType, NewLayout("builtin_function_or_method", nil), 0, ObjectType)
	initType(StaticMethodType, NewLayout("staticmethod", nil), FlagBaseType, ObjectType)
	initType(ClassMethodType, NewLayout("classmethod", nil), FlagBaseType, ObjectType)
	initType(PropertyType, NewLayout("property", nil), FlagBaseType, ObjectType)
	initType(GetSetDescriptorType, NewLayout("getset_descriptor", nil), 0, ObjectType)
	initType(MemberDescriptorType, NewLayout("member_descriptor", nil), 0, ObjectType)

	// Phase 2: namespaces.
	setupObjectType()
	setupTypeType()
	setupSingletonTypes()
	setupIntType()
	setupFloatType()
	setupStrType()
	setupTupleType()
	setupMappingTypes()
	setupIteratorType()
	setupFunctionTypes()
	setupDescriptorTypes()

	// Phase 3: slot tables, bases first.
	for _, t := range builtinTypes {
		fillSlots(t)
	}
}

// ---------------------------------------------------------------------------
// Registration helpers
// ---------------------------------------------------------------------------

func slotName(t *Type, op Op) string {
	return t.name + "." + op.Name()
}

func defUnary(t *Type, op Op, fn UnaryFunc) {
	t.dict.Put(op.Name(), NewNativeMethod(t, op.Name(), NewUnarySlot(slotName(t, op), op.Signature(), fn)))
}

func defBinary(t *Type, op Op, fn BinaryFunc) {
	t.dict.Put(op.Name(), NewNativeMethod(t, op.Name(), NewBinarySlot(slotName(t, op), op.Signature(), fn)))
}

func defTernary(t *Type, op Op, fn TernaryFunc) {
	t.dict.Put(op.Name(), NewNativeMethod(t, op.Name(), NewTernarySlot(slotName(t, op), op.Signature(), fn)))
}

func defVar(t *Type, op Op, fn VarFunc) {
	t.dict.Put(op.Name(), NewNativeMethod(t, op.Name(), NewVarSlot(slotName(t, op), fn)))
}

// defMethod registers an ordinary (non-special) native method.
func defMethod(t *Type, name string, fn VarFunc) {
	t.dict.Put(name, NewNativeMethod(t, name, NewVarSlot(t.name+"."+name, fn)))
}

func defGetSet(t *Type, name string, get func(rt *Runtime, obj Value) (Value, error), set func(rt *Runtime, obj, v Value) error) {
	t.dict.Put(name, NewGetSetDescriptor(t, name, get, set))
}

// ---------------------------------------------------------------------------
// object
// ---------------------------------------------------------------------------

func identityHash(v Value) int64 {
	switch x := v.(type) {
	case *Instance:
		return int64(x.id)
	case *Type:
		return int64(x.id)
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%p", v)
	return int64(h.Sum64() >> 1)
}

func defaultRepr(v Value) string {
	switch x := v.(type) {
	case *Instance:
		return fmt.Sprintf("<%s object at %#x>", typeName(v), x.id)
	case *Type:
		return x.String()
	}
	return fmt.Sprintf("<%s object>", typeName(v))
}

func setupObjectType() {
	defBinary(ObjectType, OpGetAttribute, func(rt *Runtime, self, name Value) (Value, error) {
		n, err := attrName(name)
		if err != nil {
			return nil, err
		}
		return rt.GenericGetAttribute(self, n)
	})
	defTernary(ObjectType, OpSetAttr, func(rt *Runtime, self, name, v Value) (Value, error) {
		n, err := attrName(name)
		if err != nil {
			return nil, err
		}
		return None, rt.GenericSetAttribute(self, n, v)
	})
	defBinary(ObjectType, OpDelAttr, func(rt *Runtime, self, name Value) (Value, error) {
		n, err := attrName(name)
		if err != nil {
			return nil, err
		}
		return None, rt.GenericDelAttribute(self, n)
	})

	defBinary(ObjectType, OpEq, func(rt *Runtime, self, other Value) (Value, error) {
		if identical(self, other) {
			return True, nil
		}
		return NotImplemented, nil
	})
	defBinary(ObjectType, OpNe, func(rt *Runtime, self, other Value) (Value, error) {
		eq, ok := self.Type().Slots().Resolve(OpEq)
		if !ok {
			return NotImplemented, nil
		}
		r, err := eq.Invoke(rt, self, []Value{other})
		if err != nil || r == NotImplemented {
			return r, err
		}
		b, err := rt.IsTrue(r)
		return Bool(!b), err
	})
	defUnary(ObjectType, OpHash, func(rt *Runtime, self Value) (Value, error) {
		return Int(identityHash(self)), nil
	})
	defUnary(ObjectType, OpRepr, func(rt *Runtime, self Value) (Value, error) {
		return Str(defaultRepr(self)), nil
	})
	defUnary(ObjectType, OpStr, func(rt *Runtime, self Value) (Value, error) {
		s, err := rt.Repr(self)
		return s, err
	})

	defVar(ObjectType, OpNew, func(rt *Runtime, cls Value, args []Value) (Value, error) {
		t, ok := cls.(*Type)
		if !ok {
			return nil, newError(ErrTypeError, "object.__new__(X): X is not a type object (%s)", typeName(cls))
		}
		if len(args) > 0 && t.Slots().Lookup(OpInit) == ObjectType.Slots().Lookup(OpInit) {
			return nil, newError(ErrTypeError, "%s() takes no arguments", t.name)
		}
		return NewInstance(t), nil
	})
	defVar(ObjectType, OpInit, func(rt *Runtime, self Value, args []Value) (Value, error) {
		return None, nil
	})

	defGetSet(ObjectType, "__class__",
		func(rt *Runtime, obj Value) (Value, error) { return obj.Type(), nil },
		func(rt *Runtime, obj, v Value) error {
			if v == nil {
				return newError(ErrTypeError, "can't delete __class__ attribute")
			}
			nt, ok := v.(*Type)
			if !ok {
				return newError(ErrTypeError, "__class__ must be set to a class, not '%s' object", typeName(v))
			}
			inst, ok := obj.(*Instance)
			if !ok {
				return newError(ErrTypeError,
					"__class__ assignment only supported for mutable types or ModuleType subclasses")
			}
			return inst.SetClass(nt)
		})
}

// ---------------------------------------------------------------------------
// type
// ---------------------------------------------------------------------------

func asType(v Value) (*Type, error) {
	t, ok := v.(*Type)
	if !ok {
		return nil, newError(ErrTypeError, "descriptor requires a 'type' object but received a '%s'", typeName(v))
	}
	return t, nil
}

// typeCall is type.__call__: type(x) returns x's type; otherwise create
// with __new__ and, if the result is an instance, initialise it.
func typeCall(rt *Runtime, self Value, args []Value) (Value, error) {
	cls, err := asType(self)
	if err != nil {
		return nil, err
	}
	if cls == TypeType && len(args) == 1 {
		return args[0].Type(), nil
	}
	newSlot, ok := cls.Slots().Resolve(OpNew)
	if !ok {
		return nil, newError(ErrTypeError, "cannot create '%s' instances", cls.name)
	}
	obj, err := newSlot.Invoke(rt, cls, args)
	if err != nil {
		return nil, err
	}
	if obj == NotImplemented {
		return nil, newError(ErrTypeError, "cannot create '%s' instances", cls.name)
	}
	if !IsInstance(obj, cls) {
		return obj, nil
	}
	if init, ok := obj.Type().Slots().Resolve(OpInit); ok {
		r, err := init.Invoke(rt, obj, args)
		if err != nil {
			return nil, err
		}
		if r != nil && r != None && r != NotImplemented {
			return nil, newError(ErrTypeError, "__init__() should return None, not '%s'", typeName(r))
		}
	}
	return obj, nil
}

// typeNew is type.__new__(meta, name, bases, dict).
func typeNew(rt *Runtime, self Value, args []Value) (Value, error) {
	meta, err := asType(self)
	if err != nil {
		return nil, err
	}
	if len(args) != 3 {
		return nil, newError(ErrTypeError, "type() takes 1 or 3 arguments")
	}
	name, ok := args[0].(Str)
	if !ok {
		return nil, newError(ErrTypeError, "type.__new__() argument 1 must be str, not %s", typeName(args[0]))
	}
	bt, ok := args[1].(*Tuple)
	if !ok {
		return nil, newError(ErrTypeError, "type.__new__() argument 2 must be tuple, not %s", typeName(args[1]))
	}
	ns, ok := args[2].(*Dict)
	if !ok {
		return nil, newError(ErrTypeError, "type.__new__() argument 3 must be dict, not %s", typeName(args[2]))
	}
	bases := make([]*Type, len(bt.items))
	for i, b := range bt.items {
		if bases[i], ok = b.(*Type); !ok {
			return nil, newError(ErrTypeError, "bases must be types, not '%s'", typeName(b))
		}
	}
	return rt.CreateType(TypeSpec{Name: string(name), Bases: bases, Dict: ns.Snapshot(), Metatype: meta})
}

func typeTuple(types []*Type) Value {
	items := make([]Value, len(types))
	for i, t := range types {
		items[i] = t
	}
	return NewTuple(items...)
}

func setupTypeType() {
	defBinary(TypeType, OpGetAttribute, func(rt *Runtime, self, name Value) (Value, error) {
		t, err := asType(self)
		if err != nil {
			return nil, err
		}
		n, err := attrName(name)
		if err != nil {
			return nil, err
		}
		return rt.typeGetAttribute(t, n)
	})
	defTernary(TypeType, OpSetAttr, func(rt *Runtime, self, name, v Value) (Value, error) {
		t, err := asType(self)
		if err != nil {
			return nil, err
		}
		n, err := attrName(name)
		if err != nil {
			return nil, err
		}
		return None, rt.typeSetAttribute(t, n, v)
	})
	defBinary(TypeType, OpDelAttr, func(rt *Runtime, self, name Value) (Value, error) {
		t, err := asType(self)
		if err != nil {
			return nil, err
		}
		n, err := attrName(name)
		if err != nil {
			return nil, err
		}
		return None, rt.typeDelAttribute(t, n)
	})
	defVar(TypeType, OpCall, typeCall)
	defVar(TypeType, OpNew, typeNew)
	defVar(TypeType, OpInit, func(rt *Runtime, self Value, args []Value) (Value, error) {
		return None, nil
	})
	defUnary(TypeType, OpRepr, func(rt *Runtime, self Value) (Value, error) {
		return Str(self.(*Type).String()), nil
	})

	defGetSet(TypeType, "__name__", func(rt *Runtime, obj Value) (Value, error) {
		return Str(obj.(*Type).name), nil
	}, nil)
	defGetSet(TypeType, "__mro__", func(rt *Runtime, obj Value) (Value, error) {
		return typeTuple(obj.(*Type).mro), nil
	}, nil)
	defGetSet(TypeType, "__bases__", func(rt *Runtime, obj Value) (Value, error) {
		return typeTuple(obj.(*Type).bases), nil
	}, nil)
	defGetSet(TypeType, "__base__", func(rt *Runtime, obj Value) (Value, error) {
		if b := obj.(*Type).base; b != nil {
			return b, nil
		}
		return None, nil
	}, nil)
	defGetSet(TypeType, "__dict__", func(rt *Runtime, obj Value) (Value, error) {
		return obj.(*Type).Dict(), nil
	}, nil)
	defMethod(TypeType, "mro", func(rt *Runtime, self Value, args []Value) (Value, error) {
		t, err := asType(self)
		if err != nil {
			return nil, err
		}
		return typeTuple(t.mro), nil
	})
}

// ---------------------------------------------------------------------------
// dict and mappingproxy
// ---------------------------------------------------------------------------

func mappingKey(key Value) (string, error) {
	s, ok := key.(Str)
	if !ok {
		return "", newError(ErrTypeError, "keys must be str, not '%s'", typeName(key))
	}
	return string(s), nil
}

// reprElem formats an element of a built-in container. Containers nested
// in it share seen, so a dict reachable from itself prints as {...}.
func reprElem(rt *Runtime, v Value, seen map[*Dict]bool) (string, error) {
	switch x := v.(type) {
	case *Dict:
		return mappingRepr(rt, x, seen)
	case *DictProxy:
		s, err := mappingRepr(rt, x, seen)
		return "mappingproxy(" + s + ")", err
	case *Tuple:
		return tupleRepr(rt, x, seen)
	}
	r, err := rt.Repr(v)
	return string(r), err
}

func mappingRepr(rt *Runtime, m Mapping, seen map[*Dict]bool) (string, error) {
	d, ok := m.(*Dict)
	if p, isProxy := m.(*DictProxy); isProxy {
		d, ok = p.d, true
	}
	if ok {
		if seen[d] {
			return "{...}", nil
		}
		if seen == nil {
			seen = make(map[*Dict]bool)
		}
		seen[d] = true
		defer delete(seen, d)
	}

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		v, _ := m.Get(k)
		r, err := reprElem(rt, v, seen)
		if err != nil {
			return "", err
		}
		b.WriteString(quoteStr(k))
		b.WriteString(": ")
		b.WriteString(r)
	}
	b.WriteByte('}')
	return b.String(), nil
}

func setupMappingTypes() {
	for _, t := range []*Type{DictType, MappingProxyType} {
		defUnary(t, OpIter, func(rt *Runtime, self Value) (Value, error) {
			keys := self.(Mapping).Keys()
			items := make([]Value, len(keys))
			for i, k := range keys {
				items[i] = Str(k)
			}
			return newItemIterator(items), nil
		})
		defUnary(t, OpLen, func(rt *Runtime, self Value) (Value, error) {
			return Int(self.(Mapping).Len()), nil
		})
		defBinary(t, OpGetItem, func(rt *Runtime, self, key Value) (Value, error) {
			k, err := mappingKey(key)
			if err != nil {
				return nil, err
			}
			v, ok := self.(Mapping).Get(k)
			if !ok {
				return nil, newError(ErrKey, "%s", quoteStr(k))
			}
			return v, nil
		})
		defBinary(t, OpContains, func(rt *Runtime, self, key Value) (Value, error) {
			k, err := mappingKey(key)
			if err != nil {
				return nil, err
			}
			_, ok := self.(Mapping).Get(k)
			return Bool(ok), nil
		})
		defTernary(t, OpSetItem, func(rt *Runtime, self, key, v Value) (Value, error) {
			k, err := mappingKey(key)
			if err != nil {
				return nil, err
			}
			return None, self.(Mapping).Put(k, v)
		})
		defBinary(t, OpDelItem, func(rt *Runtime, self, key Value) (Value, error) {
			k, err := mappingKey(key)
			if err != nil {
				return nil, err
			}
			return None, self.(Mapping).Remove(k)
		})
	}
	mappingReprSlot := func(rt *Runtime, self Value) (Value, error) {
		s, err := reprElem(rt, self, nil)
		if err != nil {
			return nil, err
		}
		return Str(s), nil
	}
	defUnary(DictType, OpRepr, mappingReprSlot)
	defUnary(MappingProxyType, OpRepr, mappingReprSlot)
	// Mutable mappings are unhashable.
	DictType.dict.Put("__hash__", None)
	defVar(DictType, OpNew, func(rt *Runtime, cls Value, args []Value) (Value, error) {
		if len(args) != 0 {
			return nil, newError(ErrTypeError, "dict() takes no positional arguments here")
		}
		return NewDict(), nil
	})
	defMethod(DictType, "keys", func(rt *Runtime, self Value, args []Value) (Value, error) {
		keys := self.(*Dict).Keys()
		items := make([]Value, len(keys))
		for i, k := range keys {
			items[i] = Str(k)
		}
		return NewTuple(items...), nil
	})
}
