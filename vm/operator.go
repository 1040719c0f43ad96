package vm

// ---------------------------------------------------------------------------
// Unary operations
// ---------------------------------------------------------------------------

// UnaryOp applies a unary operator such as OpNeg or OpInvert to v.
func (rt *Runtime) UnaryOp(op Op, v Value) (Value, error) {
	if op.Signature().Arity() != 0 {
		return nil, newError(ErrTypeError, "%s is not a unary operation", op.Name())
	}
	return resolveUnary(op, v.Type()).call(rt, v)
}

// unaryPlan is a resolved unary dispatch for one operand type.
type unaryPlan struct {
	op   Op
	slot Slot
}

func resolveUnary(op Op, t *Type) *unaryPlan {
	return &unaryPlan{op: op, slot: t.Slots().Lookup(op)}
}

func (p *unaryPlan) call(rt *Runtime, v Value) (Value, error) {
	if p.slot.Empty() {
		return nil, unaryOperandError(p.op, v)
	}
	r, err := p.slot.Invoke(rt, v, nil)
	if err != nil {
		return nil, err
	}
	if r == NotImplemented {
		return nil, unaryOperandError(p.op, v)
	}
	return r, nil
}

// ---------------------------------------------------------------------------
// Binary operations
// ---------------------------------------------------------------------------

// BinaryOp applies a binary operator to v and w. The left operand's slot
// for op and the right operand's slot for the reflected op are tried in
// turn; the right one goes first when its type is a proper subtype of the
// left one's. A slot answering NotImplemented passes to the other.
//
// An in-place operator (OpIAdd) tries the left operand's in-place slot
// first and falls back to the plain operator. Comparisons follow
// RichCompare.
func (rt *Runtime) BinaryOp(op Op, v, w Value) (Value, error) {
	if !op.IsBinary() {
		return nil, newError(ErrTypeError, "%s is not a binary operation", op.Name())
	}
	return resolveBinary(op, v.Type(), w.Type()).call(rt, v, w, None)
}

// Power computes pow(v, w, mod). Pass None as mod for v ** w.
func (rt *Runtime) Power(v, w, mod Value) (Value, error) {
	return resolveBinary(OpPow, v.Type(), w.Type()).call(rt, v, w, mod)
}

// binaryPlan is a resolved binary dispatch for one pair of operand types.
// It is what an inline cache stores.
type binaryPlan struct {
	op      Op
	slotI   Slot // Left operand's in-place slot, or nil
	slotV   Slot // Left operand's slot for op
	slotW   Slot // Right operand's slot for the reflected op
	single  bool // Same type, or both operands share one implementation
	wFirst  bool // Right operand's slot goes first
	compare bool // Rich comparison: no single-slot shortcut, identity fallback
	report  Op   // Operation named in errors
}

func resolveBinary(op Op, vt, wt *Type) *binaryPlan {
	if base, ok := op.InPlaceBase(); ok {
		p := resolveBinary(base, vt, wt)
		p.slotI = vt.Slots().Lookup(op)
		p.report = op
		return p
	}
	refl, _ := op.Reflected()
	p := &binaryPlan{
		op:     op,
		slotV:  vt.Slots().Lookup(op),
		slotW:  wt.Slots().Lookup(refl),
		report: op,
	}
	if op.IsComparison() {
		// The reflected comparison is tried even for operands of one type.
		p.compare = true
		p.wFirst = wt.IsProperSubtype(vt) && !p.slotW.Empty()
		return p
	}
	switch {
	case vt == wt || p.slotV == p.slotW:
		p.single = true
	case wt.IsProperSubtype(vt):
		p.wFirst = true
	}
	return p
}

func (p *binaryPlan) call(rt *Runtime, v, w, z Value) (Value, error) {
	if p.slotI != nil {
		if r, done, err := p.try(rt, p.slotI, v, w, z); done {
			return r, err
		}
	}
	if p.single {
		if r, done, err := p.try(rt, p.slotV, v, w, z); done {
			return r, err
		}
		return p.fail(v, w)
	}

	first, second := p.slotV, p.slotW
	a, b := v, w
	if p.wFirst {
		first, second = second, first
		a, b = b, a
	}
	if r, done, err := p.try(rt, first, a, b, z); done {
		return r, err
	}
	if r, done, err := p.try(rt, second, b, a, z); done {
		return r, err
	}
	return p.fail(v, w)
}

// fail is the outcome when every slot declined.
func (p *binaryPlan) fail(v, w Value) (Value, error) {
	if !p.compare {
		return nil, binaryOperandError(p.report, v, w)
	}
	switch p.op {
	case OpEq:
		return Bool(identical(v, w)), nil
	case OpNe:
		return Bool(!identical(v, w)), nil
	}
	return nil, compareOperandError(p.op, v, w)
}

// try invokes s with self and other. done is false when s is empty or
// answered NotImplemented.
func (p *binaryPlan) try(rt *Runtime, s Slot, self, other, z Value) (Value, bool, error) {
	if s.Empty() {
		return nil, false, nil
	}
	args := []Value{other}
	if s.Signature() == SigTernary {
		args = append(args, z)
	}
	r, err := s.Invoke(rt, self, args)
	if err != nil {
		return nil, true, err
	}
	if r == NotImplemented {
		return nil, false, nil
	}
	return r, true, nil
}
