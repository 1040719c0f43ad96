package vm

import (
	"errors"
	"testing"
)

func newTestRuntime() *Runtime {
	return NewRuntime(DefaultOptions())
}

func mustCreate(t *testing.T, rt *Runtime, spec TypeSpec) *Type {
	t.Helper()
	typ, err := rt.CreateType(spec)
	if err != nil {
		t.Fatalf("CreateType(%s): %v", spec.Name, err)
	}
	return typ
}

func mustCall(t *testing.T, rt *Runtime, callable Value, args ...Value) Value {
	t.Helper()
	v, err := rt.Call(callable, args...)
	if err != nil {
		t.Fatalf("Call(%v): %v", callable, err)
	}
	return v
}

// constMethod returns a method-shaped function that ignores its arguments.
func constMethod(name string, result Value) *Function {
	return NewFunction(name, -1, func(rt *Runtime, args []Value) (Value, error) {
		return result, nil
	})
}

func wantErr(t *testing.T, err, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}
