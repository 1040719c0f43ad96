package vm

import (
	"math"
	"slices"
	"testing"
)

func TestIntArithmetic(t *testing.T) {
	rt := newTestRuntime()
	tests := []struct {
		op   Op
		a, b Value
		want Value
	}{
		{OpAdd, Int(2), Int(3), Int(5)},
		{OpSub, Int(2), Int(3), Int(-1)},
		{OpMul, Int(-4), Int(3), Int(-12)},
		{OpFloorDiv, Int(-7), Int(2), Int(-4)},
		{OpMod, Int(-7), Int(2), Int(1)},
		{OpMod, Int(7), Int(-2), Int(-1)},
		{OpMod, Int(math.MinInt64), Int(-1), Int(0)},
		{OpFloorDiv, Int(7), Int(-1), Int(-7)},
		{OpTrueDiv, Int(7), Int(2), Float(3.5)},
		{OpPow, Int(2), Int(10), Int(1024)},
		{OpPow, Int(2), Int(-1), Float(0.5)},
		{OpLShift, Int(1), Int(4), Int(16)},
		{OpRShift, Int(-16), Int(2), Int(-4)},
		{OpAnd, Int(6), Int(3), Int(2)},
		{OpOr, Int(6), Int(3), Int(7)},
		{OpXor, Int(6), Int(3), Int(5)},
		{OpAdd, Int(1), Float(2.5), Float(3.5)},
		{OpAdd, Float(2.5), Int(1), Float(3.5)},
		{OpMul, Str("ab"), Int(2), Str("abab")},
		{OpMul, Int(2), Str("ab"), Str("abab")},
		{OpMul, Str(""), Int(math.MaxInt64), Str("")},
		{OpAdd, Str("ab"), Str("cd"), Str("abcd")},
		{OpAdd, True, Int(1), Int(2)},
		{OpAnd, True, False, False},
		{OpOr, True, Int(2), Int(3)},
	}
	for _, tt := range tests {
		got, err := rt.BinaryOp(tt.op, tt.a, tt.b)
		if err != nil {
			t.Errorf("%v %s %v: %v", tt.a, tt.op.Symbol(), tt.b, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%v %s %v = %v (%T), want %v (%T)", tt.a, tt.op.Symbol(), tt.b, got, got, tt.want, tt.want)
		}
	}
}

func TestArithmeticErrors(t *testing.T) {
	rt := newTestRuntime()
	tests := []struct {
		name string
		op   Op
		a, b Value
		want error
	}{
		{"int + str", OpAdd, Int(1), Str("a"), ErrUnsupportedOperand},
		{"str - str", OpSub, Str("a"), Str("b"), ErrUnsupportedOperand},
		{"None + None", OpAdd, None, None, ErrUnsupportedOperand},
		{"overflow", OpAdd, Int(math.MaxInt64), Int(1), ErrOverflow},
		{"mul overflow", OpMul, Int(math.MaxInt64), Int(2), ErrOverflow},
		{"floor division by zero", OpFloorDiv, Int(1), Int(0), ErrZeroDivision},
		{"modulo by zero", OpMod, Int(1), Int(0), ErrZeroDivision},
		{"true division by zero", OpTrueDiv, Float(1), Int(0), ErrZeroDivision},
		{"floor division overflow", OpFloorDiv, Int(math.MinInt64), Int(-1), ErrOverflow},
		{"repeat too long", OpMul, Str("ab"), Int(math.MaxInt64/2 + 1), ErrOverflow},
		{"reflected repeat too long", OpMul, Int(math.MaxInt64), Str("x"), ErrOverflow},
	}
	for _, tt := range tests {
		_, err := rt.BinaryOp(tt.op, tt.a, tt.b)
		if err == nil {
			t.Errorf("%s: expected an error", tt.name)
			continue
		}
		wantErr(t, err, tt.want)
	}

	_, err := rt.BinaryOp(OpAdd, Int(1), Str("a"))
	if got, want := err.Error(), "unsupported operand type(s) for +: 'int' and 'str'"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
	_, err = rt.BinaryOp(OpNeg, Int(1), Int(2))
	wantErr(t, err, ErrTypeError)
}

func TestUnaryOp(t *testing.T) {
	rt := newTestRuntime()
	tests := []struct {
		op   Op
		v    Value
		want Value
	}{
		{OpNeg, Int(2), Int(-2)},
		{OpNeg, Float(2.5), Float(-2.5)},
		{OpPos, Int(-3), Int(-3)},
		{OpAbs, Int(-3), Int(3)},
		{OpInvert, Int(0), Int(-1)},
		{OpNeg, True, Int(-1)},
	}
	for _, tt := range tests {
		got, err := rt.UnaryOp(tt.op, tt.v)
		if err != nil || got != tt.want {
			t.Errorf("%s(%v) = %v, %v; want %v", tt.op.Name(), tt.v, got, err, tt.want)
		}
	}

	_, err := rt.UnaryOp(OpNeg, Str("a"))
	wantErr(t, err, ErrUnsupportedOperand)
	if got, want := err.Error(), "bad operand type for unary -: 'str'"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
	_, err = rt.UnaryOp(OpAdd, Int(1))
	wantErr(t, err, ErrTypeError)
}

func TestPower(t *testing.T) {
	rt := newTestRuntime()
	if r, err := rt.Power(Int(3), Int(4), Int(5)); err != nil || r != Int(1) {
		t.Errorf("pow(3, 4, 5) = %v, %v; want 1", r, err)
	}
	if r, err := rt.Power(Int(3), Int(4), None); err != nil || r != Int(81) {
		t.Errorf("pow(3, 4) = %v, %v; want 81", r, err)
	}
	_, err := rt.Power(Float(2), Int(2), Int(3))
	wantErr(t, err, ErrTypeError)

	// A managed __pow__ without a modulus parameter still works for a**b.
	sq := mustCreate(t, rt, TypeSpec{Name: "Sq", Dict: map[string]Value{
		"__pow__": NewFunction("__pow__", 2, func(rt *Runtime, args []Value) (Value, error) {
			return Str("powered"), nil
		}),
	}})
	if r, err := rt.BinaryOp(OpPow, mustCall(t, rt, sq), Int(2)); err != nil || r != Str("powered") {
		t.Errorf("Sq() ** 2 = %v, %v", r, err)
	}
}

// recorder builds special methods that log their calls.
type recorder struct {
	calls []string
}

func (r *recorder) method(label string, result Value) *Function {
	return NewFunction(label, 2, func(rt *Runtime, args []Value) (Value, error) {
		r.calls = append(r.calls, label)
		return result, nil
	})
}

func TestSubtypeGoesFirst(t *testing.T) {
	rt := newTestRuntime()
	rec := &recorder{}
	base := mustCreate(t, rt, TypeSpec{Name: "Base", Dict: map[string]Value{
		"__add__": rec.method("Base.add", Str("base")),
	}})
	sub := mustCreate(t, rt, TypeSpec{Name: "Sub", Bases: []*Type{base}, Dict: map[string]Value{
		"__radd__": rec.method("Sub.radd", Str("sub")),
	}})
	declining := mustCreate(t, rt, TypeSpec{Name: "Declining", Bases: []*Type{base}, Dict: map[string]Value{
		"__radd__": rec.method("Declining.radd", NotImplemented),
	}})

	r, err := rt.BinaryOp(OpAdd, mustCall(t, rt, base), mustCall(t, rt, sub))
	if err != nil || r != Str("sub") {
		t.Errorf("Base() + Sub() = %v, %v; want 'sub'", r, err)
	}
	if !slices.Equal(rec.calls, []string{"Sub.radd"}) {
		t.Errorf("calls = %v", rec.calls)
	}

	rec.calls = nil
	r, err = rt.BinaryOp(OpAdd, mustCall(t, rt, base), mustCall(t, rt, declining))
	if err != nil || r != Str("base") {
		t.Errorf("Base() + Declining() = %v, %v; want 'base'", r, err)
	}
	if !slices.Equal(rec.calls, []string{"Declining.radd", "Base.add"}) {
		t.Errorf("calls = %v", rec.calls)
	}
}

func TestLeftOperandFirst(t *testing.T) {
	rt := newTestRuntime()
	rec := &recorder{}
	left := mustCreate(t, rt, TypeSpec{Name: "L", Dict: map[string]Value{
		"__sub__": rec.method("L.sub", NotImplemented),
	}})
	right := mustCreate(t, rt, TypeSpec{Name: "R", Dict: map[string]Value{
		"__rsub__": rec.method("R.rsub", Str("right")),
	}})

	r, err := rt.BinaryOp(OpSub, mustCall(t, rt, left), mustCall(t, rt, right))
	if err != nil || r != Str("right") {
		t.Errorf("L() - R() = %v, %v", r, err)
	}
	if !slices.Equal(rec.calls, []string{"L.sub", "R.rsub"}) {
		t.Errorf("calls = %v", rec.calls)
	}
}

func TestSameTypeSkipsReflected(t *testing.T) {
	rt := newTestRuntime()
	rec := &recorder{}
	c := mustCreate(t, rt, TypeSpec{Name: "C", Dict: map[string]Value{
		"__add__":  rec.method("C.add", NotImplemented),
		"__radd__": rec.method("C.radd", Str("reflected")),
	}})

	_, err := rt.BinaryOp(OpAdd, mustCall(t, rt, c), mustCall(t, rt, c))
	wantErr(t, err, ErrUnsupportedOperand)
	if !slices.Equal(rec.calls, []string{"C.add"}) {
		t.Errorf("calls = %v, want only C.add", rec.calls)
	}
}

func TestIntSubclassArithmetic(t *testing.T) {
	rt := newTestRuntime()
	count := mustCreate(t, rt, TypeSpec{Name: "Count", Bases: []*Type{IntType}, Dict: map[string]Value{
		"__radd__": NewFunction("__radd__", 2, func(rt *Runtime, args []Value) (Value, error) {
			return Str("count wins"), nil
		}),
	}})
	five := mustCall(t, rt, count, Int(5))
	if !IsInstance(five, IntType) {
		t.Fatal("Count(5) is not an int")
	}

	if r, err := rt.BinaryOp(OpAdd, Int(1), five); err != nil || r != Str("count wins") {
		t.Errorf("1 + Count(5) = %v, %v", r, err)
	}
	if r, err := rt.BinaryOp(OpAdd, five, Int(1)); err != nil || r != Int(6) {
		t.Errorf("Count(5) + 1 = %v, %v; want 6", r, err)
	}
	if r, err := rt.BinaryOp(OpMul, five, five); err != nil || r != Int(25) {
		t.Errorf("Count(5) * Count(5) = %v, %v; want 25", r, err)
	}
}

func TestRichCompare(t *testing.T) {
	rt := newTestRuntime()
	c := mustCreate(t, rt, TypeSpec{Name: "C"})
	x, y := mustCall(t, rt, c), mustCall(t, rt, c)

	tests := []struct {
		name string
		op   Op
		a, b Value
		want bool
	}{
		{"1 < 2", OpLt, Int(1), Int(2), true},
		{"2 <= 1", OpLe, Int(2), Int(1), false},
		{"1 == 1.0", OpEq, Int(1), Float(1), true},
		{"1.5 > 1", OpGt, Float(1.5), Int(1), true},
		{"'a' < 'b'", OpLt, Str("a"), Str("b"), true},
		{"x == x", OpEq, x, x, true},
		{"x == y", OpEq, x, y, false},
		{"x != y", OpNe, x, y, true},
		{"1 == 'a'", OpEq, Int(1), Str("a"), false},
		{"None == None", OpEq, None, None, true},
	}
	for _, tt := range tests {
		got, err := rt.RichCompareBool(tt.op, tt.a, tt.b)
		if err != nil || got != tt.want {
			t.Errorf("%s = %v, %v; want %v", tt.name, got, err, tt.want)
		}
	}

	_, err := rt.RichCompare(OpLt, x, y)
	wantErr(t, err, ErrUnsupportedOperand)
	if got, want := err.Error(), "'<' not supported between instances of 'C' and 'C'"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
	_, err = rt.RichCompare(OpAdd, x, y)
	wantErr(t, err, ErrTypeError)
}

func TestBinaryOpComparesLikeRichCompare(t *testing.T) {
	rt := newTestRuntime()
	c := mustCreate(t, rt, TypeSpec{Name: "C"})
	x, y := mustCall(t, rt, c), mustCall(t, rt, c)

	for _, op := range []Op{OpEq, OpNe, OpLt, OpGe} {
		want, wantE := rt.RichCompare(op, x, y)
		got, err := rt.BinaryOp(op, x, y)
		if got != want || !sameErrorKind(err, wantE) {
			t.Errorf("x %s y: BinaryOp = %v, %v; RichCompare = %v, %v", op.Symbol(), got, err, want, wantE)
		}
	}
	if r, err := rt.BinaryOp(OpEq, x, y); err != nil || r != False {
		t.Errorf("x == y = %v, %v; want False", r, err)
	}
	_, err := rt.BinaryOp(OpLt, x, y)
	if err == nil || err.Error() != "'<' not supported between instances of 'C' and 'C'" {
		t.Errorf("x < y error = %v", err)
	}
}

func TestRichCompareReflects(t *testing.T) {
	rt := newTestRuntime()
	rec := &recorder{}
	c := mustCreate(t, rt, TypeSpec{Name: "C", Dict: map[string]Value{
		"__lt__": rec.method("C.lt", NotImplemented),
		"__gt__": rec.method("C.gt", True),
	}})

	got, err := rt.RichCompareBool(OpLt, mustCall(t, rt, c), mustCall(t, rt, c))
	if err != nil || !got {
		t.Errorf("C() < C() = %v, %v; want true from the reflected __gt__", got, err)
	}
	if !slices.Equal(rec.calls, []string{"C.lt", "C.gt"}) {
		t.Errorf("calls = %v", rec.calls)
	}
}

func TestInPlaceOp(t *testing.T) {
	rt := newTestRuntime()
	rec := &recorder{}
	acc := mustCreate(t, rt, TypeSpec{Name: "Acc", Dict: map[string]Value{
		"__iadd__": rec.method("Acc.iadd", Str("in place")),
		"__add__":  rec.method("Acc.add", Str("copy")),
		"__isub__": rec.method("Acc.isub", NotImplemented),
		"__sub__":  rec.method("Acc.sub", Str("difference")),
	}})
	a := mustCall(t, rt, acc)

	tests := []struct {
		op    Op
		v, w  Value
		want  Value
		calls []string
	}{
		{OpIAdd, a, Int(1), Str("in place"), []string{"Acc.iadd"}},
		{OpISub, a, Int(1), Str("difference"), []string{"Acc.isub", "Acc.sub"}},
		{OpIAdd, Int(1), Int(2), Int(3), nil},
		{OpIMul, Str("ab"), Int(2), Str("abab"), nil},
		{OpIFloorDiv, Int(7), Int(2), Int(3), nil},
		{OpIOr, Int(4), Int(1), Int(5), nil},
	}
	for _, tt := range tests {
		rec.calls = nil
		got, err := rt.BinaryOp(tt.op, tt.v, tt.w)
		if err != nil || got != tt.want {
			t.Errorf("%v %s %v = %v, %v; want %v", tt.v, tt.op.Symbol(), tt.w, got, err, tt.want)
		}
		if !slices.Equal(rec.calls, tt.calls) {
			t.Errorf("%s calls = %v, want %v", tt.op.Symbol(), rec.calls, tt.calls)
		}
	}

	_, err := rt.BinaryOp(OpIAdd, Int(1), Str("a"))
	wantErr(t, err, ErrUnsupportedOperand)
	if got, want := err.Error(), "unsupported operand type(s) for +=: 'int' and 'str'"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}

	site := rt.CallSites().Binary(1, OpIAdd)
	for i := 0; i < 2; i++ {
		if r, err := site.Call(a, Int(1)); err != nil || r != Str("in place") {
			t.Errorf("cached += = %v, %v", r, err)
		}
	}
	if site.Cache().Hits() != 1 {
		t.Errorf("Expected 1 hit, got %d", site.Cache().Hits())
	}
}

func TestDivmodAndMatMul(t *testing.T) {
	rt := newTestRuntime()
	tests := []struct {
		v, w Value
		want string
	}{
		{Int(7), Int(2), "(3, 1)"},
		{Int(7), Int(-2), "(-4, -1)"},
		{Int(-7), Int(2), "(-4, 1)"},
		{Float(7.5), Int(2), "(3.0, 1.5)"},
		{Int(7), Float(2), "(3.0, 1.0)"},
	}
	for _, tt := range tests {
		r, err := rt.BinaryOp(OpDivmod, tt.v, tt.w)
		if err != nil {
			t.Errorf("divmod(%v, %v): %v", tt.v, tt.w, err)
			continue
		}
		if s, _ := rt.Repr(r); string(s) != tt.want {
			t.Errorf("divmod(%v, %v) = %s, want %s", tt.v, tt.w, s, tt.want)
		}
	}

	_, err := rt.BinaryOp(OpDivmod, Int(1), Int(0))
	wantErr(t, err, ErrZeroDivision)
	_, err = rt.BinaryOp(OpDivmod, Int(math.MinInt64), Int(-1))
	wantErr(t, err, ErrOverflow)
	_, err = rt.BinaryOp(OpDivmod, Str("a"), Int(1))
	if err == nil || err.Error() != "unsupported operand type(s) for divmod(): 'str' and 'int'" {
		t.Errorf("divmod('a', 1) error = %v", err)
	}

	matrix := mustCreate(t, rt, TypeSpec{Name: "Matrix", Dict: map[string]Value{
		"__rmatmul__": constMethod("__rmatmul__", Str("product")),
	}})
	if r, err := rt.BinaryOp(OpMatMul, Int(1), mustCall(t, rt, matrix)); err != nil || r != Str("product") {
		t.Errorf("1 @ Matrix() = %v, %v", r, err)
	}
	_, err = rt.BinaryOp(OpMatMul, Int(1), Int(2))
	wantErr(t, err, ErrUnsupportedOperand)
}
