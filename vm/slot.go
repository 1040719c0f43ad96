package vm

import "fmt"

// Slot is one entry of a type's slot table: the implementation a type
// supplies for one Op, or the empty sentinel for its signature.
//
// Slots are compared by identity; BinaryOp relies on this to avoid calling
// the same implementation twice.
type Slot interface {
	Signature() Signature
	// Empty reports whether this is the "not supported" sentinel.
	Empty() bool
	// Invoke calls the implementation. args holds the arguments after self.
	Invoke(rt *Runtime, self Value, args []Value) (Value, error)
	String() string
}

// ---------------------------------------------------------------------------
// Empty sentinel
// ---------------------------------------------------------------------------

// emptySlot is a real callable that signals "not supported" by returning
// NotImplemented. Callers that need to distinguish check Empty first.
type emptySlot struct {
	sig Signature
}

func (s *emptySlot) Signature() Signature { return s.sig }
func (s *emptySlot) Empty() bool          { return true }
func (s *emptySlot) String() string       { return "<empty " + s.sig.String() + ">" }

func (s *emptySlot) Invoke(rt *Runtime, self Value, args []Value) (Value, error) {
	return NotImplemented, nil
}

// ---------------------------------------------------------------------------
// Native slots (arity-specialized to avoid re-slicing on the hot path)
// ---------------------------------------------------------------------------

// UnaryFunc is a native taking only self.
type UnaryFunc func(rt *Runtime, self Value) (Value, error)

// BinaryFunc is a native taking self and one argument.
type BinaryFunc func(rt *Runtime, self, arg Value) (Value, error)

// TernaryFunc is a native taking self and two arguments.
type TernaryFunc func(rt *Runtime, self, arg1, arg2 Value) (Value, error)

// VarFunc is a native taking self and any number of arguments.
type VarFunc func(rt *Runtime, self Value, args []Value) (Value, error)

// UnarySlot wraps a UnaryFunc.
type UnarySlot struct {
	name string
	sig  Signature
	fn   UnaryFunc
}

func (s *UnarySlot) Signature() Signature { return s.sig }
func (s *UnarySlot) Empty() bool          { return false }
func (s *UnarySlot) String() string       { return s.name }

func (s *UnarySlot) Invoke(rt *Runtime, self Value, args []Value) (Value, error) {
	if len(args) != 0 {
		return nil, argCountError(s.name, 0, len(args))
	}
	return s.fn(rt, self)
}

// BinarySlot wraps a BinaryFunc.
type BinarySlot struct {
	name string
	sig  Signature
	fn   BinaryFunc
}

func (s *BinarySlot) Signature() Signature { return s.sig }
func (s *BinarySlot) Empty() bool          { return false }
func (s *BinarySlot) String() string       { return s.name }

func (s *BinarySlot) Invoke(rt *Runtime, self Value, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, argCountError(s.name, 1, len(args))
	}
	return s.fn(rt, self, args[0])
}

// TernarySlot wraps a TernaryFunc.
type TernarySlot struct {
	name string
	sig  Signature
	fn   TernaryFunc
}

func (s *TernarySlot) Signature() Signature { return s.sig }
func (s *TernarySlot) Empty() bool          { return false }
func (s *TernarySlot) String() string       { return s.name }

func (s *TernarySlot) Invoke(rt *Runtime, self Value, args []Value) (Value, error) {
	if len(args) != 2 {
		return nil, argCountError(s.name, 2, len(args))
	}
	return s.fn(rt, self, args[0], args[1])
}

// VarSlot wraps a VarFunc.
type VarSlot struct {
	name string
	fn   VarFunc
}

func (s *VarSlot) Signature() Signature { return SigCall }
func (s *VarSlot) Empty() bool          { return false }
func (s *VarSlot) String() string       { return s.name }

func (s *VarSlot) Invoke(rt *Runtime, self Value, args []Value) (Value, error) {
	return s.fn(rt, self, args)
}

func checkArity(name string, sig Signature, want int) {
	if sig.Arity() != want {
		panic(fmt.Sprintf("vm: slot %s: signature %s takes %d arguments, not %d", name, sig, sig.Arity(), want))
	}
}

// NewUnarySlot creates a native slot for a signature taking no arguments.
func NewUnarySlot(name string, sig Signature, fn UnaryFunc) *UnarySlot {
	checkArity(name, sig, 0)
	return &UnarySlot{name: name, sig: sig, fn: fn}
}

// NewBinarySlot creates a native slot for a signature taking one argument.
func NewBinarySlot(name string, sig Signature, fn BinaryFunc) *BinarySlot {
	checkArity(name, sig, 1)
	return &BinarySlot{name: name, sig: sig, fn: fn}
}

// NewTernarySlot creates a native slot for a signature taking two arguments.
func NewTernarySlot(name string, sig Signature, fn TernaryFunc) *TernarySlot {
	checkArity(name, sig, 2)
	return &TernarySlot{name: name, sig: sig, fn: fn}
}

// NewVarSlot creates a variadic native slot (SigCall).
func NewVarSlot(name string, fn VarFunc) *VarSlot {
	return &VarSlot{name: name, fn: fn}
}

// ---------------------------------------------------------------------------
// SlotTable
// ---------------------------------------------------------------------------

// SlotTable maps every Op to a slot. It is indexed by Op, never holds nil,
// and is never modified once published: updates copy the table and swap
// the type's pointer.
type SlotTable [NumOps]Slot

// NewSlotTable returns a table holding only empty sentinels.
func NewSlotTable() *SlotTable {
	var st SlotTable
	for op := Op(0); op < NumOps; op++ {
		st[op] = op.Signature().Empty()
	}
	return &st
}

// Lookup returns the slot for op, possibly the empty sentinel.
func (st *SlotTable) Lookup(op Op) Slot {
	return st[op]
}

// Resolve returns the slot for op and whether it is implemented.
// This is the boundary between lookup and invocation: an empty slot is
// reported here rather than discovered by calling it.
func (st *SlotTable) Resolve(op Op) (Slot, bool) {
	s := st[op]
	return s, !s.Empty()
}

// Has reports whether op is implemented.
func (st *SlotTable) Has(op Op) bool {
	return !st[op].Empty()
}

// Defined returns the ops with a non-empty slot, in Op order.
func (st *SlotTable) Defined() []Op {
	var ops []Op
	for op := Op(0); op < NumOps; op++ {
		if !st[op].Empty() {
			ops = append(ops, op)
		}
	}
	return ops
}

// with returns a copy of the table with op replaced.
func (st *SlotTable) with(op Op, s Slot) *SlotTable {
	cp := *st
	cp[op] = s
	return &cp
}
