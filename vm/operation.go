package vm

// Op identifies one dispatchable operation.
//
// The set is closed: every type's SlotTable has exactly one entry per Op.
// Binary arithmetic operations come in pairs, the left form (__add__) and
// the reflected form (__radd__) tried on the right operand. The in-place
// forms (__iadd__) fall back to the plain binary operation.
type Op uint8

const (
	OpRepr Op = iota
	OpStr
	OpHash
	OpCall

	OpGetAttribute
	OpGetAttr
	OpSetAttr
	OpDelAttr

	OpLt
	OpLe
	OpEq
	OpNe
	OpGt
	OpGe

	OpGet
	OpSet
	OpDelete

	OpInit
	OpNew

	OpNeg
	OpPos
	OpAbs
	OpInvert
	OpBool
	OpInt
	OpFloat
	OpIndex

	OpLen
	OpContains
	OpGetItem
	OpSetItem
	OpDelItem
	OpIter
	OpNext

	OpAdd
	OpRAdd
	OpSub
	OpRSub
	OpMul
	OpRMul
	OpMatMul
	OpRMatMul
	OpTrueDiv
	OpRTrueDiv
	OpFloorDiv
	OpRFloorDiv
	OpMod
	OpRMod
	OpDivmod
	OpRDivmod
	OpPow
	OpRPow
	OpAnd
	OpRAnd
	OpOr
	OpROr
	OpXor
	OpRXor
	OpLShift
	OpRLShift
	OpRShift
	OpRRShift

	OpIAdd
	OpISub
	OpIMul
	OpIMatMul
	OpITrueDiv
	OpIFloorDiv
	OpIMod
	OpIAnd
	OpIOr
	OpIXor

	// NumOps is the size of every slot table.
	NumOps
)

// opInfo describes one Op.
type opInfo struct {
	dunder    string    // Special method name, e.g. "__add__"
	sig       Signature // Calling convention of the slot
	symbol    string    // Operator symbol used in error messages
	reflected Op        // Slot tried on the right operand
	hasRefl   bool
	base      Op // Binary operation an in-place form falls back to
	inPlace   bool
}

func binop(dunder, symbol string, refl Op) opInfo {
	return opInfo{dunder: dunder, sig: SigBinary, symbol: symbol, reflected: refl, hasRefl: true}
}

func inplace(dunder, symbol string, base Op) opInfo {
	return opInfo{dunder: dunder, sig: SigBinary, symbol: symbol, base: base, inPlace: true}
}

var opTable = [NumOps]opInfo{
	OpRepr: {dunder: "__repr__", sig: SigUnary},
	OpStr:  {dunder: "__str__", sig: SigUnary},
	OpHash: {dunder: "__hash__", sig: SigLen},
	OpCall: {dunder: "__call__", sig: SigCall},

	OpGetAttribute: {dunder: "__getattribute__", sig: SigGetAttr},
	OpGetAttr:      {dunder: "__getattr__", sig: SigGetAttr},
	OpSetAttr:      {dunder: "__setattr__", sig: SigSetAttr},
	OpDelAttr:      {dunder: "__delattr__", sig: SigDelAttr},

	OpLt: binop("__lt__", "<", OpGt),
	OpLe: binop("__le__", "<=", OpGe),
	OpEq: binop("__eq__", "==", OpEq),
	OpNe: binop("__ne__", "!=", OpNe),
	OpGt: binop("__gt__", ">", OpLt),
	OpGe: binop("__ge__", ">=", OpLe),

	OpGet:    {dunder: "__get__", sig: SigDescrGet},
	OpSet:    {dunder: "__set__", sig: SigDescrSet},
	OpDelete: {dunder: "__delete__", sig: SigDescrDelete},

	OpInit: {dunder: "__init__", sig: SigCall},
	OpNew:  {dunder: "__new__", sig: SigCall},

	OpNeg:    {dunder: "__neg__", sig: SigUnary, symbol: "unary -"},
	OpPos:    {dunder: "__pos__", sig: SigUnary, symbol: "unary +"},
	OpAbs:    {dunder: "__abs__", sig: SigUnary, symbol: "abs()"},
	OpInvert: {dunder: "__invert__", sig: SigUnary, symbol: "unary ~"},
	OpBool:   {dunder: "__bool__", sig: SigPredicate},
	OpInt:    {dunder: "__int__", sig: SigUnary, symbol: "int()"},
	OpFloat:  {dunder: "__float__", sig: SigUnary, symbol: "float()"},
	OpIndex:  {dunder: "__index__", sig: SigUnary},

	OpLen:      {dunder: "__len__", sig: SigLen},
	OpContains: {dunder: "__contains__", sig: SigBinary},
	OpGetItem:  {dunder: "__getitem__", sig: SigBinary},
	OpSetItem:  {dunder: "__setitem__", sig: SigDescrSet},
	OpDelItem:  {dunder: "__delitem__", sig: SigDescrDelete},
	OpIter:     {dunder: "__iter__", sig: SigUnary, symbol: "iter()"},
	OpNext:     {dunder: "__next__", sig: SigUnary, symbol: "next()"},

	OpAdd:       binop("__add__", "+", OpRAdd),
	OpRAdd:      binop("__radd__", "+", OpAdd),
	OpSub:       binop("__sub__", "-", OpRSub),
	OpRSub:      binop("__rsub__", "-", OpSub),
	OpMul:       binop("__mul__", "*", OpRMul),
	OpRMul:      binop("__rmul__", "*", OpMul),
	OpMatMul:    binop("__matmul__", "@", OpRMatMul),
	OpRMatMul:   binop("__rmatmul__", "@", OpMatMul),
	OpTrueDiv:   binop("__truediv__", "/", OpRTrueDiv),
	OpRTrueDiv:  binop("__rtruediv__", "/", OpTrueDiv),
	OpFloorDiv:  binop("__floordiv__", "//", OpRFloorDiv),
	OpRFloorDiv: binop("__rfloordiv__", "//", OpFloorDiv),
	OpMod:       binop("__mod__", "%", OpRMod),
	OpRMod:      binop("__rmod__", "%", OpMod),
	OpDivmod:    binop("__divmod__", "divmod()", OpRDivmod),
	OpRDivmod:   binop("__rdivmod__", "divmod()", OpDivmod),
	OpPow:       {dunder: "__pow__", sig: SigTernary, symbol: "** or pow()", reflected: OpRPow, hasRefl: true},
	OpRPow:      {dunder: "__rpow__", sig: SigTernary, symbol: "** or pow()", reflected: OpPow, hasRefl: true},
	OpAnd:       binop("__and__", "&", OpRAnd),
	OpRAnd:      binop("__rand__", "&", OpAnd),
	OpOr:        binop("__or__", "|", OpROr),
	OpROr:       binop("__ror__", "|", OpOr),
	OpXor:       binop("__xor__", "^", OpRXor),
	OpRXor:      binop("__rxor__", "^", OpXor),
	OpLShift:    binop("__lshift__", "<<", OpRLShift),
	OpRLShift:   binop("__rlshift__", "<<", OpLShift),
	OpRShift:    binop("__rshift__", ">>", OpRRShift),
	OpRRShift:   binop("__rrshift__", ">>", OpRShift),

	OpIAdd:      inplace("__iadd__", "+=", OpAdd),
	OpISub:      inplace("__isub__", "-=", OpSub),
	OpIMul:      inplace("__imul__", "*=", OpMul),
	OpIMatMul:   inplace("__imatmul__", "@=", OpMatMul),
	OpITrueDiv:  inplace("__itruediv__", "/=", OpTrueDiv),
	OpIFloorDiv: inplace("__ifloordiv__", "//=", OpFloorDiv),
	OpIMod:      inplace("__imod__", "%=", OpMod),
	OpIAnd:      inplace("__iand__", "&=", OpAnd),
	OpIOr:       inplace("__ior__", "|=", OpOr),
	OpIXor:      inplace("__ixor__", "^=", OpXor),
}

// opsByName maps special method names back to their Op.
var opsByName = func() map[string]Op {
	m := make(map[string]Op, NumOps)
	for op := Op(0); op < NumOps; op++ {
		m[opTable[op].dunder] = op
	}
	return m
}()

// LookupOp returns the Op whose slot is filled by the special method name.
func LookupOp(name string) (Op, bool) {
	op, ok := opsByName[name]
	return op, ok
}

// Name returns the special method name, e.g. "__add__".
func (op Op) Name() string { return opTable[op].dunder }

// Signature returns the calling convention of the slot.
func (op Op) Signature() Signature { return opTable[op].sig }

// Symbol returns the operator symbol ("+", "<", "unary -"), or "".
func (op Op) Symbol() string { return opTable[op].symbol }

// Reflected returns the Op tried on the right operand of a binary
// operation, e.g. OpRAdd for OpAdd and OpGt for OpLt.
func (op Op) Reflected() (Op, bool) {
	info := opTable[op]
	return info.reflected, info.hasRefl
}

// InPlaceBase returns the binary operation an in-place form such as
// OpIAdd falls back to.
func (op Op) InPlaceBase() (Op, bool) {
	info := opTable[op]
	return info.base, info.inPlace
}

// IsBinary reports whether op is dispatched by BinaryOp.
func (op Op) IsBinary() bool { return opTable[op].hasRefl || opTable[op].inPlace }

// IsComparison reports whether op is one of OpLt..OpGe.
func (op Op) IsComparison() bool { return op >= OpLt && op <= OpGe }

func (op Op) String() string {
	if op >= NumOps {
		return "Op(?)"
	}
	return opTable[op].dunder
}

// describe names the operation the way error messages refer to it.
func (op Op) describe() string {
	if s := opTable[op].symbol; s != "" {
		return s
	}
	return op.Name()
}

// isDunder reports whether name has the __special__ shape.
func isDunder(name string) bool {
	n := len(name)
	return n > 4 && name[0] == '_' && name[1] == '_' && name[n-2] == '_' && name[n-1] == '_'
}
