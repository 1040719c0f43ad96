package vm

// NoneObject is the type of None.
type NoneObject struct{}

func (NoneObject) Type() *Type { return NoneType }

// NotImplementedObject is the type of NotImplemented.
type NotImplementedObject struct{}

func (NotImplementedObject) Type() *Type { return NotImplementedType }

var (
	// None is the absent value.
	None = NoneObject{}

	// NotImplemented is what a slot returns to decline an operation so
	// the dispatcher can try the other operand.
	NotImplemented = NotImplementedObject{}
)

// Bool is a bool value. bool is a subtype of int that cannot be
// subclassed.
type Bool bool

const (
	True  Bool = true
	False Bool = false
)

func (Bool) Type() *Type { return BoolType }

func setupSingletonTypes() {
	defUnary(NoneType, OpRepr, func(rt *Runtime, self Value) (Value, error) {
		return Str("None"), nil
	})
	defUnary(NoneType, OpBool, func(rt *Runtime, self Value) (Value, error) {
		return False, nil
	})
	defUnary(NoneType, OpHash, func(rt *Runtime, self Value) (Value, error) {
		return Int(0xFCA86420), nil
	})
	defVar(NoneType, OpNew, func(rt *Runtime, cls Value, args []Value) (Value, error) {
		if len(args) != 0 {
			return nil, newError(ErrTypeError, "NoneType takes no arguments")
		}
		return None, nil
	})

	defUnary(NotImplementedType, OpRepr, func(rt *Runtime, self Value) (Value, error) {
		return Str("NotImplemented"), nil
	})

	defUnary(BoolType, OpRepr, func(rt *Runtime, self Value) (Value, error) {
		if self.(Bool) {
			return Str("True"), nil
		}
		return Str("False"), nil
	})
	defVar(BoolType, OpNew, func(rt *Runtime, cls Value, args []Value) (Value, error) {
		switch len(args) {
		case 0:
			return False, nil
		case 1:
			b, err := rt.IsTrue(args[0])
			if err != nil {
				return nil, err
			}
			return Bool(b), nil
		}
		return nil, newError(ErrTypeError, "bool expected at most 1 argument, got %d", len(args))
	})
	boolLogic := func(op Op, fn func(a, b bool) bool) {
		impl := func(rt *Runtime, self, other Value) (Value, error) {
			a, ok1 := self.(Bool)
			b, ok2 := other.(Bool)
			if !ok1 || !ok2 {
				// Mixed with int: let int's slot answer.
				return intSlotFor(op).Invoke(rt, self, []Value{other})
			}
			return Bool(fn(bool(a), bool(b))), nil
		}
		refl, _ := op.Reflected()
		defBinary(BoolType, op, impl)
		defBinary(BoolType, refl, impl)
	}
	boolLogic(OpAnd, func(a, b bool) bool { return a && b })
	boolLogic(OpOr, func(a, b bool) bool { return a || b })
	boolLogic(OpXor, func(a, b bool) bool { return a != b })
}
