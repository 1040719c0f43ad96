package vm

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Error kinds
// ---------------------------------------------------------------------------

// Every error returned by the object model wraps exactly one of these, so
// callers test with errors.Is.
var (
	ErrAttributeNotFound   = errors.New("attribute not found")
	ErrReadOnlyAttribute   = errors.New("read-only attribute")
	ErrNoAttributeSupport  = errors.New("no attribute support")
	ErrCannotSetAttribute  = errors.New("cannot set attribute")
	ErrUnsupportedOperand  = errors.New("unsupported operand")
	ErrInconsistentMRO     = errors.New("inconsistent method resolution order")
	ErrLayoutConflict      = errors.New("layout conflict")
	ErrDescriptorInvariant = errors.New("descriptor invariant violation")
	ErrTypeError           = errors.New("type error")
	ErrIndex               = errors.New("index out of range")
	ErrKey                 = errors.New("key not found")
	ErrZeroDivision        = errors.New("division by zero")
	ErrOverflow            = errors.New("overflow")

	// ErrStopIteration is returned by __next__ when an iterator is
	// exhausted. Next turns it into ok == false.
	ErrStopIteration = errors.New("stop iteration")
)

// Error is a typed failure raised by the object model.
type Error struct {
	Kind error  // One of the Err* kinds above
	Msg  string // Python-style message
}

func (e *Error) Error() string { return e.Msg }

// Unwrap exposes the kind to errors.Is.
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsFatal reports whether err indicates a broken type rather than a
// condition user code can trigger and handle.
func IsFatal(err error) bool {
	return errors.Is(err, ErrDescriptorInvariant)
}

// ---------------------------------------------------------------------------
// Constructors used throughout the package
// ---------------------------------------------------------------------------

func noAttribute(obj Value, name string) error {
	if t, ok := obj.(*Type); ok {
		return newError(ErrAttributeNotFound, "type object '%s' has no attribute '%s'", t.name, name)
	}
	return newError(ErrAttributeNotFound, "'%s' object has no attribute '%s'", typeName(obj), name)
}

func noAttributeSupport(obj Value, name string) error {
	return newError(ErrNoAttributeSupport, "'%s' object has no attribute '%s'", typeName(obj), name)
}

func readonlyAttribute(obj Value, name string) error {
	if t, ok := obj.(*Type); ok {
		return newError(ErrReadOnlyAttribute, "attribute '%s' of type object '%s' is read-only", name, t.name)
	}
	return newError(ErrReadOnlyAttribute, "'%s' object attribute '%s' is read-only", typeName(obj), name)
}

func cantSetAttributes(t *Type) error {
	return newError(ErrCannotSetAttribute, "cannot set attributes of built-in/extension type '%s'", t.name)
}

func unaryOperandError(op Op, v Value) error {
	return newError(ErrUnsupportedOperand, "bad operand type for %s: '%s'", op.describe(), typeName(v))
}

func binaryOperandError(op Op, v, w Value) error {
	return newError(ErrUnsupportedOperand, "unsupported operand type(s) for %s: '%s' and '%s'",
		op.describe(), typeName(v), typeName(w))
}

func compareOperandError(op Op, v, w Value) error {
	return newError(ErrUnsupportedOperand, "'%s' not supported between instances of '%s' and '%s'",
		op.Symbol(), typeName(v), typeName(w))
}

func argCountError(name string, want, got int) error {
	return newError(ErrTypeError, "%s() takes %d argument(s) (%d given)", name, want, got)
}

func requiresError(name string, owner *Type, got Value) error {
	return newError(ErrTypeError, "descriptor '%s' requires a '%s' object but received a '%s'",
		name, owner.name, typeName(got))
}

func notCallable(v Value) error {
	return newError(ErrTypeError, "'%s' object is not callable", typeName(v))
}
