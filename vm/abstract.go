package vm

import "errors"

// ---------------------------------------------------------------------------
// Calls
// ---------------------------------------------------------------------------

// Call calls callable with positional arguments.
func (rt *Runtime) Call(callable Value, args ...Value) (Value, error) {
	call, ok := callable.Type().Slots().Resolve(OpCall)
	if !ok {
		return nil, notCallable(callable)
	}
	return call.Invoke(rt, callable, args)
}

// CallMethod reads obj.name and calls the result.
func (rt *Runtime) CallMethod(obj Value, name string, args ...Value) (Value, error) {
	fn, err := rt.GetAttr(obj, name)
	if err != nil {
		return nil, err
	}
	return rt.Call(fn, args...)
}

// ---------------------------------------------------------------------------
// Conversions
// ---------------------------------------------------------------------------

// Repr returns repr(v).
func (rt *Runtime) Repr(v Value) (Str, error) {
	return rt.stringSlot(OpRepr, v)
}

// ToStr returns str(v).
func (rt *Runtime) ToStr(v Value) (Str, error) {
	return rt.stringSlot(OpStr, v)
}

func (rt *Runtime) stringSlot(op Op, v Value) (Str, error) {
	s, ok := v.Type().Slots().Resolve(op)
	if !ok {
		return "", unaryOperandError(op, v)
	}
	r, err := s.Invoke(rt, v, nil)
	if err != nil {
		return "", err
	}
	str, ok := r.(Str)
	if !ok {
		return "", newError(ErrTypeError, "%s returned non-string (type %s)", op.Name(), typeName(r))
	}
	return str, nil
}

// Hash returns hash(v).
func (rt *Runtime) Hash(v Value) (int64, error) {
	s, ok := v.Type().Slots().Resolve(OpHash)
	if !ok {
		return 0, newError(ErrTypeError, "unhashable type: '%s'", typeName(v))
	}
	r, err := s.Invoke(rt, v, nil)
	if err != nil {
		return 0, err
	}
	n, ok := asInt(r)
	if !ok {
		return 0, newError(ErrTypeError, "__hash__ method should return an integer")
	}
	return n, nil
}

// Len returns len(v).
func (rt *Runtime) Len(v Value) (int, error) {
	s, ok := v.Type().Slots().Resolve(OpLen)
	if !ok {
		return 0, newError(ErrTypeError, "object of type '%s' has no len()", typeName(v))
	}
	r, err := s.Invoke(rt, v, nil)
	if err != nil {
		return 0, err
	}
	n, ok := asInt(r)
	if !ok {
		return 0, newError(ErrTypeError, "'%s' object cannot be interpreted as an integer", typeName(r))
	}
	if n < 0 {
		return 0, newError(ErrTypeError, "__len__() should return >= 0")
	}
	return int(n), nil
}

// IsTrue reports the truth value of v: __bool__, else __len__, else true.
func (rt *Runtime) IsTrue(v Value) (bool, error) {
	switch v {
	case None, Bool(false):
		return false, nil
	case Bool(true):
		return true, nil
	}
	st := v.Type().Slots()
	if s, ok := st.Resolve(OpBool); ok {
		r, err := s.Invoke(rt, v, nil)
		if err != nil {
			return false, err
		}
		b, ok := r.(Bool)
		if !ok {
			return false, newError(ErrTypeError, "__bool__ should return bool, returned %s", typeName(r))
		}
		return bool(b), nil
	}
	if st.Has(OpLen) {
		n, err := rt.Len(v)
		return n != 0, err
	}
	return true, nil
}

// ---------------------------------------------------------------------------
// Items
// ---------------------------------------------------------------------------

// GetItem returns container[key].
func (rt *Runtime) GetItem(container, key Value) (Value, error) {
	s, ok := container.Type().Slots().Resolve(OpGetItem)
	if !ok {
		return nil, newError(ErrTypeError, "'%s' object is not subscriptable", typeName(container))
	}
	return s.Invoke(rt, container, []Value{key})
}

// SetItem performs container[key] = v.
func (rt *Runtime) SetItem(container, key, v Value) error {
	s, ok := container.Type().Slots().Resolve(OpSetItem)
	if !ok {
		return newError(ErrTypeError, "'%s' object does not support item assignment", typeName(container))
	}
	_, err := s.Invoke(rt, container, []Value{key, v})
	return err
}

// DelItem performs del container[key].
func (rt *Runtime) DelItem(container, key Value) error {
	s, ok := container.Type().Slots().Resolve(OpDelItem)
	if !ok {
		return newError(ErrTypeError, "'%s' object does not support item deletion", typeName(container))
	}
	_, err := s.Invoke(rt, container, []Value{key})
	return err
}

// Contains reports whether item in container. Without __contains__ it
// compares item with each element the container iterates over.
func (rt *Runtime) Contains(container, item Value) (bool, error) {
	st := container.Type().Slots()
	s, ok := st.Resolve(OpContains)
	if !ok {
		if !st.Has(OpIter) && !st.Has(OpGetItem) {
			return false, newError(ErrTypeError, "argument of type '%s' is not iterable", typeName(container))
		}
		return rt.containsByIteration(container, item)
	}
	r, err := s.Invoke(rt, container, []Value{item})
	if err != nil {
		return false, err
	}
	return rt.IsTrue(r)
}

// ---------------------------------------------------------------------------
// Rich comparison
// ---------------------------------------------------------------------------

// RichCompare compares v and w with one of OpLt..OpGe. Unlike the
// arithmetic operators, the reflected comparison is tried even when both
// operands share a type. == and != fall back to identity.
func (rt *Runtime) RichCompare(op Op, v, w Value) (Value, error) {
	if !op.IsComparison() {
		return nil, newError(ErrTypeError, "%s is not a comparison", op.Name())
	}
	return resolveBinary(op, v.Type(), w.Type()).call(rt, v, w, None)
}

// RichCompareBool is RichCompare followed by IsTrue. Identical operands
// are equal without consulting __eq__.
func (rt *Runtime) RichCompareBool(op Op, v, w Value) (bool, error) {
	if identical(v, w) {
		switch op {
		case OpEq:
			return true, nil
		case OpNe:
			return false, nil
		}
	}
	r, err := rt.RichCompare(op, v, w)
	if err != nil {
		return false, err
	}
	return rt.IsTrue(r)
}

var errFound = errors.New("found")

func (rt *Runtime) containsByIteration(container, item Value) (bool, error) {
	err := rt.ForEach(container, func(v Value) error {
		eq, err := rt.RichCompareBool(OpEq, v, item)
		if err != nil {
			return err
		}
		if eq {
			return errFound
		}
		return nil
	})
	if err == errFound {
		return true, nil
	}
	return false, err
}
