package vm

import (
	"math"
	"strconv"
	"strings"
)

// Int is an int value. Arithmetic is 64-bit and fails with ErrOverflow
// rather than wrapping.
type Int int64

func (Int) Type() *Type { return IntType }

// asInt extracts an integer from an int, a bool, or an instance of an int
// subclass.
func asInt(v Value) (int64, bool) {
	switch x := v.(type) {
	case Int:
		return int64(x), true
	case Bool:
		if x {
			return 1, true
		}
		return 0, true
	case *Instance:
		if p, ok := x.Payload.(Int); ok && x.Type().IsSubtype(IntType) {
			return int64(p), true
		}
	}
	return 0, false
}

func intSlotFor(op Op) Slot {
	return IntType.Slots().Lookup(op)
}

func overflow(op string) error {
	return newError(ErrOverflow, "integer %s overflows 64 bits", op)
}

func intAdd(a, b int64) (Value, error) {
	r := a + b
	if (r > a) != (b > 0) {
		return nil, overflow("addition")
	}
	return Int(r), nil
}

func intSub(a, b int64) (Value, error) {
	r := a - b
	if (r < a) != (b > 0) {
		return nil, overflow("subtraction")
	}
	return Int(r), nil
}

func intMul(a, b int64) (Value, error) {
	if a == 0 || b == 0 {
		return Int(0), nil
	}
	r := a * b
	if r/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return nil, overflow("multiplication")
	}
	return Int(r), nil
}

// floorDivMod rounds towards negative infinity, so the remainder takes the
// sign of the divisor.
func floorDivMod(a, b int64) (int64, int64, error) {
	if b == 0 {
		return 0, 0, newError(ErrZeroDivision, "integer division or modulo by zero")
	}
	if b == -1 {
		// Only the quotient of MinInt64 / -1 overflows.
		if a == math.MinInt64 {
			return 0, 0, overflow("division")
		}
		return -a, 0, nil
	}
	q, m := a/b, a%b
	if m != 0 && (m < 0) != (b < 0) {
		q--
		m += b
	}
	return q, m, nil
}

func intFloorDiv(a, b int64) (Value, error) {
	q, _, err := floorDivMod(a, b)
	if err != nil {
		return nil, err
	}
	return Int(q), nil
}

func intMod(a, b int64) (Value, error) {
	if b == -1 {
		return Int(0), nil
	}
	_, m, err := floorDivMod(a, b)
	if err != nil {
		return nil, err
	}
	return Int(m), nil
}

func intDivmod(a, b int64) (Value, error) {
	q, m, err := floorDivMod(a, b)
	if err != nil {
		return nil, err
	}
	return NewTuple(Int(q), Int(m)), nil
}

func intTrueDiv(a, b int64) (Value, error) {
	if b == 0 {
		return nil, newError(ErrZeroDivision, "division by zero")
	}
	return Float(float64(a) / float64(b)), nil
}

func intPow(a, b int64, mod Value) (Value, error) {
	if isNone(mod) {
		if b < 0 {
			if a == 0 {
				return nil, newError(ErrZeroDivision, "0.0 cannot be raised to a negative power")
			}
			return Float(math.Pow(float64(a), float64(b))), nil
		}
		r := int64(1)
		for base := a; b > 0; b >>= 1 {
			if b&1 == 1 {
				v, err := intMul(r, base)
				if err != nil {
					return nil, err
				}
				r = int64(v.(Int))
			}
			if b > 1 {
				v, err := intMul(base, base)
				if err != nil {
					return nil, err
				}
				base = int64(v.(Int))
			}
		}
		return Int(r), nil
	}

	m, ok := asInt(mod)
	if !ok {
		return NotImplemented, nil
	}
	if m == 0 {
		return nil, newError(ErrZeroDivision, "pow() 3rd argument cannot be 0")
	}
	if b < 0 {
		return nil, newError(ErrTypeError, "pow() 2nd argument cannot be negative when 3rd argument specified")
	}
	// Products stay within 64 bits while |m| fits in 32.
	if m > math.MaxInt32 || m < math.MinInt32 {
		return nil, overflow("modular exponentiation")
	}
	r, base := int64(1), a%m
	for ; b > 0; b >>= 1 {
		if b&1 == 1 {
			r = r * base % m
		}
		base = base * base % m
	}
	if r != 0 && (r < 0) != (m < 0) {
		r += m
	}
	return Int(r), nil
}

func intShift(a, b int64, left bool) (Value, error) {
	if b < 0 {
		return nil, newError(ErrTypeError, "negative shift count")
	}
	if !left {
		if b >= 64 {
			if a < 0 {
				return Int(-1), nil
			}
			return Int(0), nil
		}
		return Int(a >> uint(b)), nil
	}
	if a == 0 {
		return Int(0), nil
	}
	if b >= 63 || (a<<uint(b))>>uint(b) != a {
		return nil, overflow("left shift")
	}
	return Int(a << uint(b)), nil
}

// intPair returns a forward and a reflected slot function from an integer
// kernel. Both decline with NotImplemented when an operand is not an int.
func intPair(fn func(a, b int64) (Value, error)) (BinaryFunc, BinaryFunc) {
	fwd := func(rt *Runtime, self, other Value) (Value, error) {
		a, ok1 := asInt(self)
		b, ok2 := asInt(other)
		if !ok1 || !ok2 {
			return NotImplemented, nil
		}
		return fn(a, b)
	}
	refl := func(rt *Runtime, self, other Value) (Value, error) {
		return fwd(rt, other, self)
	}
	return fwd, refl
}

func intCompare(cmp func(a, b int64) bool) BinaryFunc {
	return func(rt *Runtime, self, other Value) (Value, error) {
		a, ok1 := asInt(self)
		b, ok2 := asInt(other)
		if !ok1 || !ok2 {
			return NotImplemented, nil
		}
		return Bool(cmp(a, b)), nil
	}
}

func intUnary(fn func(a int64) (Value, error)) UnaryFunc {
	return func(rt *Runtime, self Value) (Value, error) {
		a, ok := asInt(self)
		if !ok {
			return NotImplemented, nil
		}
		return fn(a)
	}
}

// parseInt accepts Python int literal syntax with an optional sign,
// underscores and base prefixes.
func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, newError(ErrTypeError, "invalid literal for int(): '%s'", s)
	}
	return n, nil
}

func newInt(rt *Runtime, cls *Type, args []Value) (Value, error) {
	var n int64
	switch len(args) {
	case 0:
	case 1:
		var err error
		if n, err = toInt(rt, args[0]); err != nil {
			return nil, err
		}
	default:
		return nil, newError(ErrTypeError, "int() takes at most 1 argument (%d given)", len(args))
	}
	if cls == IntType {
		return Int(n), nil
	}
	inst := NewInstance(cls)
	inst.Payload = Int(n)
	return inst, nil
}

func toInt(rt *Runtime, v Value) (int64, error) {
	if n, ok := asInt(v); ok {
		return n, nil
	}
	switch x := v.(type) {
	case Str:
		return parseInt(string(x))
	case Float:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
			return 0, newError(ErrOverflow, "cannot convert float %s to integer", formatFloat(f))
		}
		return int64(f), nil
	}
	r, err := rt.UnaryOp(OpInt, v)
	if err != nil {
		return 0, newError(ErrTypeError, "int() argument must be a string or a number, not '%s'", typeName(v))
	}
	n, ok := asInt(r)
	if !ok {
		return 0, newError(ErrTypeError, "__int__ returned non-int (type %s)", typeName(r))
	}
	return n, nil
}

func setupIntType() {
	arith := []struct {
		op Op
		fn func(a, b int64) (Value, error)
	}{
		{OpAdd, intAdd},
		{OpSub, intSub},
		{OpMul, intMul},
		{OpFloorDiv, intFloorDiv},
		{OpMod, intMod},
		{OpDivmod, intDivmod},
		{OpTrueDiv, intTrueDiv},
		{OpAnd, func(a, b int64) (Value, error) { return Int(a & b), nil }},
		{OpOr, func(a, b int64) (Value, error) { return Int(a | b), nil }},
		{OpXor, func(a, b int64) (Value, error) { return Int(a ^ b), nil }},
		{OpLShift, func(a, b int64) (Value, error) { return intShift(a, b, true) }},
		{OpRShift, func(a, b int64) (Value, error) { return intShift(a, b, false) }},
	}
	for _, a := range arith {
		fwd, refl := intPair(a.fn)
		r, _ := a.op.Reflected()
		defBinary(IntType, a.op, fwd)
		defBinary(IntType, r, refl)
	}

	pow := func(rt *Runtime, self, other, mod Value) (Value, error) {
		a, ok1 := asInt(self)
		b, ok2 := asInt(other)
		if !ok1 || !ok2 {
			return NotImplemented, nil
		}
		return intPow(a, b, mod)
	}
	defTernary(IntType, OpPow, pow)
	defTernary(IntType, OpRPow, func(rt *Runtime, self, other, mod Value) (Value, error) {
		return pow(rt, other, self, mod)
	})

	defBinary(IntType, OpLt, intCompare(func(a, b int64) bool { return a < b }))
	defBinary(IntType, OpLe, intCompare(func(a, b int64) bool { return a <= b }))
	defBinary(IntType, OpEq, intCompare(func(a, b int64) bool { return a == b }))
	defBinary(IntType, OpNe, intCompare(func(a, b int64) bool { return a != b }))
	defBinary(IntType, OpGt, intCompare(func(a, b int64) bool { return a > b }))
	defBinary(IntType, OpGe, intCompare(func(a, b int64) bool { return a >= b }))

	defUnary(IntType, OpNeg, intUnary(func(a int64) (Value, error) {
		if a == math.MinInt64 {
			return nil, overflow("negation")
		}
		return Int(-a), nil
	}))
	defUnary(IntType, OpPos, intUnary(func(a int64) (Value, error) { return Int(a), nil }))
	defUnary(IntType, OpAbs, intUnary(func(a int64) (Value, error) {
		if a == math.MinInt64 {
			return nil, overflow("absolute value")
		}
		if a < 0 {
			a = -a
		}
		return Int(a), nil
	}))
	defUnary(IntType, OpInvert, intUnary(func(a int64) (Value, error) { return Int(^a), nil }))
	defUnary(IntType, OpBool, intUnary(func(a int64) (Value, error) { return Bool(a != 0), nil }))
	defUnary(IntType, OpInt, intUnary(func(a int64) (Value, error) { return Int(a), nil }))
	defUnary(IntType, OpIndex, intUnary(func(a int64) (Value, error) { return Int(a), nil }))
	defUnary(IntType, OpFloat, intUnary(func(a int64) (Value, error) { return Float(float64(a)), nil }))
	defUnary(IntType, OpHash, intUnary(func(a int64) (Value, error) { return Int(a), nil }))
	defUnary(IntType, OpRepr, intUnary(func(a int64) (Value, error) {
		return Str(strconv.FormatInt(a, 10)), nil
	}))

	defVar(IntType, OpNew, func(rt *Runtime, cls Value, args []Value) (Value, error) {
		return newInt(rt, cls.(*Type), args)
	})
}
