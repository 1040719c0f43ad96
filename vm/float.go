package vm

import (
	"math"
	"strconv"
	"strings"
)

// Float is a float value.
type Float float64

func (Float) Type() *Type { return FloatType }

// asFloat accepts floats and anything asInt accepts.
func asFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case Float:
		return float64(x), true
	case *Instance:
		if p, ok := x.Payload.(Float); ok && x.Type().IsSubtype(FloatType) {
			return float64(p), true
		}
	}
	if n, ok := asInt(v); ok {
		return float64(n), true
	}
	return 0, false
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func floatDivMod(a, b float64) (float64, float64, error) {
	if b == 0 {
		return 0, 0, newError(ErrZeroDivision, "float divmod()")
	}
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return math.Floor(a / b), m, nil
}

func floatPair(fn func(a, b float64) (Value, error)) (BinaryFunc, BinaryFunc) {
	fwd := func(rt *Runtime, self, other Value) (Value, error) {
		a, ok1 := asFloat(self)
		b, ok2 := asFloat(other)
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

func floatCompare(cmp func(a, b float64) bool) BinaryFunc {
	return func(rt *Runtime, self, other Value) (Value, error) {
		a, ok1 := asFloat(self)
		b, ok2 := asFloat(other)
		if !ok1 || !ok2 {
			return NotImplemented, nil
		}
		return Bool(cmp(a, b)), nil
	}
}

func floatUnary(fn func(a float64) (Value, error)) UnaryFunc {
	return func(rt *Runtime, self Value) (Value, error) {
		a, ok := asFloat(self)
		if !ok {
			return NotImplemented, nil
		}
		return fn(a)
	}
}

func floatPow(a, b float64) (Value, error) {
	if a == 0 && b < 0 {
		return nil, newError(ErrZeroDivision, "0.0 cannot be raised to a negative power")
	}
	r := math.Pow(a, b)
	if math.IsNaN(r) && !math.IsNaN(a) && !math.IsNaN(b) {
		return nil, newError(ErrTypeError, "negative number cannot be raised to a fractional power")
	}
	return Float(r), nil
}

func newFloat(rt *Runtime, cls *Type, args []Value) (Value, error) {
	var f float64
	switch len(args) {
	case 0:
	case 1:
		var ok bool
		if f, ok = asFloat(args[0]); !ok {
			s, isStr := args[0].(Str)
			if !isStr {
				r, err := rt.UnaryOp(OpFloat, args[0])
				if err != nil {
					return nil, newError(ErrTypeError, "float() argument must be a string or a number, not '%s'", typeName(args[0]))
				}
				if f, ok = asFloat(r); !ok {
					return nil, newError(ErrTypeError, "__float__ returned non-float (type %s)", typeName(r))
				}
				break
			}
			var err error
			if f, err = strconv.ParseFloat(strings.TrimSpace(string(s)), 64); err != nil {
				return nil, newError(ErrTypeError, "could not convert string to float: '%s'", s)
			}
		}
	default:
		return nil, newError(ErrTypeError, "float expected at most 1 argument, got %d", len(args))
	}
	if cls == FloatType {
		return Float(f), nil
	}
	inst := NewInstance(cls)
	inst.Payload = Float(f)
	return inst, nil
}

func setupFloatType() {
	arith := []struct {
		op Op
		fn func(a, b float64) (Value, error)
	}{
		{OpAdd, func(a, b float64) (Value, error) { return Float(a + b), nil }},
		{OpSub, func(a, b float64) (Value, error) { return Float(a - b), nil }},
		{OpMul, func(a, b float64) (Value, error) { return Float(a * b), nil }},
		{OpTrueDiv, func(a, b float64) (Value, error) {
			if b == 0 {
				return nil, newError(ErrZeroDivision, "float division by zero")
			}
			return Float(a / b), nil
		}},
		{OpFloorDiv, func(a, b float64) (Value, error) {
			q, _, err := floatDivMod(a, b)
			return Float(q), err
		}},
		{OpMod, func(a, b float64) (Value, error) {
			_, m, err := floatDivMod(a, b)
			return Float(m), err
		}},
		{OpDivmod, func(a, b float64) (Value, error) {
			q, m, err := floatDivMod(a, b)
			if err != nil {
				return nil, err
			}
			return NewTuple(Float(q), Float(m)), nil
		}},
	}
	for _, a := range arith {
		fwd, refl := floatPair(a.fn)
		r, _ := a.op.Reflected()
		defBinary(FloatType, a.op, fwd)
		defBinary(FloatType, r, refl)
	}

	pow := func(rt *Runtime, self, other, mod Value) (Value, error) {
		if !isNone(mod) {
			return nil, newError(ErrTypeError, "pow() 3rd argument not allowed unless all arguments are integers")
		}
		a, ok1 := asFloat(self)
		b, ok2 := asFloat(other)
		if !ok1 || !ok2 {
			return NotImplemented, nil
		}
		return floatPow(a, b)
	}
	defTernary(FloatType, OpPow, pow)
	defTernary(FloatType, OpRPow, func(rt *Runtime, self, other, mod Value) (Value, error) {
		return pow(rt, other, self, mod)
	})

	defBinary(FloatType, OpLt, floatCompare(func(a, b float64) bool { return a < b }))
	defBinary(FloatType, OpLe, floatCompare(func(a, b float64) bool { return a <= b }))
	defBinary(FloatType, OpEq, floatCompare(func(a, b float64) bool { return a == b }))
	defBinary(FloatType, OpNe, floatCompare(func(a, b float64) bool { return a != b }))
	defBinary(FloatType, OpGt, floatCompare(func(a, b float64) bool { return a > b }))
	defBinary(FloatType, OpGe, floatCompare(func(a, b float64) bool { return a >= b }))

	defUnary(FloatType, OpNeg, floatUnary(func(a float64) (Value, error) { return Float(-a), nil }))
	defUnary(FloatType, OpPos, floatUnary(func(a float64) (Value, error) { return Float(a), nil }))
	defUnary(FloatType, OpAbs, floatUnary(func(a float64) (Value, error) { return Float(math.Abs(a)), nil }))
	defUnary(FloatType, OpBool, floatUnary(func(a float64) (Value, error) { return Bool(a != 0), nil }))
	defUnary(FloatType, OpFloat, floatUnary(func(a float64) (Value, error) { return Float(a), nil }))
	defUnary(FloatType, OpInt, floatUnary(func(a float64) (Value, error) {
		if math.IsNaN(a) || math.IsInf(a, 0) || a >= math.MaxInt64 || a < math.MinInt64 {
			return nil, newError(ErrOverflow, "cannot convert float %s to integer", formatFloat(a))
		}
		return Int(int64(a)), nil
	}))
	defUnary(FloatType, OpHash, floatUnary(func(a float64) (Value, error) {
		// Equal ints and floats hash alike.
		if a == math.Trunc(a) && a >= math.MinInt64 && a < math.MaxInt64 {
			return Int(int64(a)), nil
		}
		return Int(int64(math.Float64bits(a) >> 1)), nil
	}))
	defUnary(FloatType, OpRepr, floatUnary(func(a float64) (Value, error) {
		return Str(formatFloat(a)), nil
	}))

	defVar(FloatType, OpNew, func(rt *Runtime, cls Value, args []Value) (Value, error) {
		return newFloat(rt, cls.(*Type), args)
	})
}
