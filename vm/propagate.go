package vm

import "sync"

// hierarchyMu serialises writers of type dictionaries and slot tables.
// Readers never take it: they see either the old or the new slot table.
var hierarchyMu sync.Mutex

// ---------------------------------------------------------------------------
// Slot resolution
// ---------------------------------------------------------------------------

// slotFor resolves op for t from t's own dictionary, else from the first
// type along the MRO whose dictionary names it, else the empty sentinel.
func (t *Type) slotFor(op Op) Slot {
	name := op.Name()
	for _, c := range t.mro {
		v, ok := c.dict.Get(name)
		if !ok {
			continue
		}
		if c == t {
			return slotFromEntry(t, op, v)
		}
		return c.Slots().Lookup(op)
	}
	return op.Signature().Empty()
}

// slotFromEntry turns a dictionary entry into a slot. None blocks
// inheritance. A native registered with the same calling convention is
// installed as is; anything else is reached through a managed wrapper.
func slotFromEntry(t *Type, op Op, v Value) Slot {
	if v == None {
		return op.Signature().Empty()
	}
	if nm, ok := v.(*NativeMethod); ok && nm.impl.Signature() == op.Signature() && t.IsSubtype(nm.owner) {
		return nm.impl
	}
	return &managedSlot{op: op}
}

// SlotOrigin reports where t's slot for op comes from: the type whose
// dictionary defines the special method, and whether it runs through the
// managed wrapper. owner is nil for an empty slot.
func (t *Type) SlotOrigin(op Op) (owner *Type, managed bool) {
	s := t.Slots().Lookup(op)
	if s.Empty() {
		return nil, false
	}
	_, owner = t.Lookup(op.Name())
	_, managed = s.(*managedSlot)
	return owner, managed
}

// fillSlots computes t's whole table. Every type in t's MRO must already
// have one.
func fillSlots(t *Type) {
	st := NewSlotTable()
	for op := Op(0); op < NumOps; op++ {
		st[op] = t.slotFor(op)
	}
	t.publish(st)
}

// ---------------------------------------------------------------------------
// Propagation
// ---------------------------------------------------------------------------

// updateSlot recomputes op on t and on every subtype that inherits it.
// A subtype that defines the name itself shadows t for its whole subtree.
// Callers hold hierarchyMu.
func (rt *Runtime) updateSlot(t *Type, op Op) {
	seen := make(map[*Type]bool)
	var walk func(*Type)
	walk = func(c *Type) {
		if seen[c] {
			return
		}
		seen[c] = true
		s := c.slotFor(op)
		c.publish(c.Slots().with(op, s))
		rt.logs.slots.Debugf("%s.%s -> %s (version %d)", c.name, op.Name(), s, c.Version())
		for _, sub := range c.Subclasses() {
			if sub.dict.Has(op.Name()) {
				continue
			}
			walk(sub)
		}
	}
	walk(t)
}

// ---------------------------------------------------------------------------
// Managed wrapper
// ---------------------------------------------------------------------------

// managedSlot dispatches to a special method defined as an ordinary
// attribute. The attribute is looked up on the operand's type at call
// time, bound through the descriptor protocol, then called.
type managedSlot struct {
	op Op
}

func (s *managedSlot) Signature() Signature { return s.op.Signature() }
func (s *managedSlot) Empty() bool          { return false }
func (s *managedSlot) String() string       { return "<managed " + s.op.Name() + ">" }

func (s *managedSlot) Invoke(rt *Runtime, self Value, args []Value) (Value, error) {
	if n := s.op.Signature().Arity(); n >= 0 && len(args) != n {
		return nil, argCountError(s.op.Name(), n, len(args))
	}
	managed := make([]Value, len(args))
	for i, a := range args {
		if a == nil {
			a = None
		}
		managed[i] = a
	}
	if s.op.Signature() == SigTernary && managed[1] == None {
		// pow(x, y) calls __pow__(self, other) without a modulus.
		managed = managed[:1]
	}
	return rt.callSpecial(s.op, self, managed)
}

// callSpecial looks up op's special method for self and calls it. A
// missing attribute, or one set to None, yields NotImplemented.
func (rt *Runtime) callSpecial(op Op, self Value, args []Value) (Value, error) {
	name := op.Name()
	if op == OpNew {
		// __new__ is looked up on the class being instantiated and is
		// passed that class explicitly.
		cls, ok := self.(*Type)
		if !ok {
			return nil, newError(ErrTypeError, "__new__ called on non-type '%s'", typeName(self))
		}
		attr, _ := cls.Lookup(name)
		if attr == nil || attr == None {
			return NotImplemented, nil
		}
		fn, err := rt.DescrGet(attr, nil, cls)
		if err != nil {
			return nil, err
		}
		return rt.Call(fn, append([]Value{cls}, args...)...)
	}

	t := self.Type()
	attr, _ := t.Lookup(name)
	if attr == nil || attr == None {
		return NotImplemented, nil
	}
	fn, err := rt.DescrGet(attr, self, t)
	if err != nil {
		return nil, err
	}
	return rt.Call(fn, args...)
}
