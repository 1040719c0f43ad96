package vm

import "fmt"

// ---------------------------------------------------------------------------
// Function: a callable defined in the managed language
// ---------------------------------------------------------------------------

// Function is a function produced by the (external) class-body executor.
// The runtime only needs to call it; the body is a Go closure.
//
// A Function is a non-data descriptor: reading it through an instance
// binds the instance as the first argument.
type Function struct {
	Name  string
	Arity int // Number of positional arguments including self; -1 for any
	Fn    func(rt *Runtime, args []Value) (Value, error)
}

// NewFunction creates a managed function.
func NewFunction(name string, arity int, fn func(rt *Runtime, args []Value) (Value, error)) *Function {
	return &Function{Name: name, Arity: arity, Fn: fn}
}

// Type implements Value.
func (f *Function) Type() *Type { return FunctionType }

func (f *Function) call(rt *Runtime, args []Value) (Value, error) {
	if f.Arity >= 0 && len(args) != f.Arity {
		return nil, argCountError(f.Name, f.Arity, len(args))
	}
	r, err := f.Fn(rt, args)
	if err == nil && r == nil {
		r = None
	}
	return r, err
}

func (f *Function) String() string { return fmt.Sprintf("<function %s>", f.Name) }

// ---------------------------------------------------------------------------
// Method: a callable bound to its first argument
// ---------------------------------------------------------------------------

// Method is the result of binding a Function (or a native method, or a
// classmethod) to a receiver.
type Method struct {
	Self Value
	Func Value
}

// Type implements Value.
func (m *Method) Type() *Type { return MethodType }

func (m *Method) call(rt *Runtime, args []Value) (Value, error) {
	full := make([]Value, 0, len(args)+1)
	full = append(full, m.Self)
	full = append(full, args...)
	return rt.Call(m.Func, full...)
}

// ---------------------------------------------------------------------------
// NativeMethod: a Go implementation registered under a name on a type
// ---------------------------------------------------------------------------

// NativeMethod is how built-in types expose their native implementations
// in their dictionaries. When it sits under a special method name with a
// matching signature, slot propagation installs impl directly instead of
// going through a dynamic wrapper.
type NativeMethod struct {
	name  string
	owner *Type
	impl  Slot
}

// NewNativeMethod creates a native method owned by owner.
func NewNativeMethod(owner *Type, name string, impl Slot) *NativeMethod {
	return &NativeMethod{name: name, owner: owner, impl: impl}
}

// Type implements Value.
func (m *NativeMethod) Type() *Type { return NativeMethodType }

// Name returns the name the method was registered under.
func (m *NativeMethod) Name() string { return m.name }

// Owner returns the type the method belongs to.
func (m *NativeMethod) Owner() *Type { return m.owner }

// Impl returns the wrapped slot.
func (m *NativeMethod) Impl() Slot { return m.impl }

func (m *NativeMethod) call(rt *Runtime, args []Value) (Value, error) {
	if len(args) == 0 {
		return nil, newError(ErrTypeError, "descriptor '%s' of '%s' object needs an argument", m.name, m.owner.name)
	}
	self := args[0]
	if !IsInstance(self, m.owner) {
		return nil, requiresError(m.name, m.owner, self)
	}
	return m.impl.Invoke(rt, self, args[1:])
}

func (m *NativeMethod) String() string {
	return fmt.Sprintf("<slot wrapper '%s' of '%s' objects>", m.name, m.owner.name)
}

// ---------------------------------------------------------------------------
// Type wiring
// ---------------------------------------------------------------------------

func isNone(v Value) bool {
	return v == nil || v == None
}

// bindGet is the __get__ of function-like values: unbound through the
// type, bound through an instance.
func bindGet(rt *Runtime, self, inst, owner Value) (Value, error) {
	if isNone(inst) {
		return self, nil
	}
	return &Method{Self: inst, Func: self}, nil
}

func setupFunctionTypes() {
	defTernary(FunctionType, OpGet, bindGet)
	defVar(FunctionType, OpCall, func(rt *Runtime, self Value, args []Value) (Value, error) {
		return self.(*Function).call(rt, args)
	})
	defUnary(FunctionType, OpRepr, func(rt *Runtime, self Value) (Value, error) {
		return Str(self.(*Function).String()), nil
	})

	defVar(MethodType, OpCall, func(rt *Runtime, self Value, args []Value) (Value, error) {
		return self.(*Method).call(rt, args)
	})
	defBinary(MethodType, OpEq, func(rt *Runtime, self, other Value) (Value, error) {
		o, ok := other.(*Method)
		if !ok {
			return NotImplemented, nil
		}
		m := self.(*Method)
		return Bool(identical(m.Self, o.Self) && identical(m.Func, o.Func)), nil
	})
	defUnary(MethodType, OpRepr, func(rt *Runtime, self Value) (Value, error) {
		m := self.(*Method)
		return Str(fmt.Sprintf("<bound method of %s>", reprOrType(rt, m.Self))), nil
	})

	defTernary(NativeMethodType, OpGet, bindGet)
	defVar(NativeMethodType, OpCall, func(rt *Runtime, self Value, args []Value) (Value, error) {
		return self.(*NativeMethod).call(rt, args)
	})
	defUnary(NativeMethodType, OpRepr, func(rt *Runtime, self Value) (Value, error) {
		return Str(self.(*NativeMethod).String()), nil
	})
}

// reprOrType is used inside other reprs, where a failing nested repr
// should not hide the outer one.
func reprOrType(rt *Runtime, v Value) string {
	s, err := rt.Repr(v)
	if err != nil {
		return "<" + typeName(v) + " object>"
	}
	return string(s)
}
