package vm

import (
	"errors"
	"testing"
)

func collect(t *testing.T, rt *Runtime, v Value) []Value {
	t.Helper()
	var items []Value
	if err := rt.ForEach(v, func(item Value) error {
		items = append(items, item)
		return nil
	}); err != nil {
		t.Fatalf("iterating %v: %v", v, err)
	}
	return items
}

func equalValues(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuiltinIteration(t *testing.T) {
	rt := newTestRuntime()
	tests := []struct {
		name string
		v    Value
		want []Value
	}{
		{"tuple", NewTuple(Int(1), Str("a")), []Value{Int(1), Str("a")}},
		{"empty tuple", NewTuple(), nil},
		{"str", Str("hé"), []Value{Str("h"), Str("é")}},
		{"dict", NewDictFrom(map[string]Value{"b": Int(2), "a": Int(1)}), []Value{Str("a"), Str("b")}},
	}
	for _, tt := range tests {
		if got := collect(t, rt, tt.v); !equalValues(got, tt.want) {
			t.Errorf("%s: items = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNextAfterExhaustion(t *testing.T) {
	rt := newTestRuntime()
	it, err := rt.Iter(NewTuple(Int(1)))
	if err != nil {
		t.Fatal(err)
	}
	if it.Type() != IteratorType {
		t.Errorf("iter(tuple) is a %s", it.Type().Name())
	}
	if again, _ := rt.Iter(it); again != it {
		t.Error("iter(iterator) should return the iterator itself")
	}
	if v, ok, err := rt.Next(it); err != nil || !ok || v != Int(1) {
		t.Fatalf("first Next = %v, %v, %v", v, ok, err)
	}
	for i := 0; i < 2; i++ {
		if v, ok, err := rt.Next(it); err != nil || ok {
			t.Errorf("Next after the end = %v, %v, %v; want exhausted", v, ok, err)
		}
	}

	_, _, err = rt.Next(Int(1))
	wantErr(t, err, ErrTypeError)
	_, err = rt.Iter(Int(1))
	wantErr(t, err, ErrTypeError)
	if got, want := err.Error(), "'int' object is not iterable"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}

func TestSequenceIteration(t *testing.T) {
	rt := newTestRuntime()
	squares := mustCreate(t, rt, TypeSpec{Name: "Squares", Dict: map[string]Value{
		"__getitem__": NewFunction("__getitem__", 2, func(rt *Runtime, args []Value) (Value, error) {
			i := args[1].(Int)
			if i >= 3 {
				return nil, newError(ErrIndex, "index out of range")
			}
			return i * i, nil
		}),
	}})
	sq := mustCall(t, rt, squares)

	if got, want := collect(t, rt, sq), []Value{Int(0), Int(1), Int(4)}; !equalValues(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
	if ok, err := rt.Contains(sq, Int(4)); err != nil || !ok {
		t.Errorf("4 in Squares() = %v, %v", ok, err)
	}
	if ok, err := rt.Contains(sq, Int(2)); err != nil || ok {
		t.Errorf("2 in Squares() = %v, %v", ok, err)
	}
	_, err := rt.Contains(Int(1), Int(1))
	wantErr(t, err, ErrTypeError)
}

func TestUserIterator(t *testing.T) {
	rt := newTestRuntime()
	countdown := mustCreate(t, rt, TypeSpec{Name: "Countdown", Dict: map[string]Value{
		"__iter__": NewFunction("__iter__", 1, func(rt *Runtime, args []Value) (Value, error) {
			return args[0], nil
		}),
		"__next__": NewFunction("__next__", 1, func(rt *Runtime, args []Value) (Value, error) {
			n, err := rt.GetAttr(args[0], "n")
			if err != nil {
				return nil, err
			}
			if n == Int(0) {
				return nil, ErrStopIteration
			}
			return n, rt.SetAttr(args[0], "n", n.(Int)-1)
		}),
	}})
	c := mustCall(t, rt, countdown)
	if err := rt.SetAttr(c, "n", Int(3)); err != nil {
		t.Fatal(err)
	}
	if got, want := collect(t, rt, c), []Value{Int(3), Int(2), Int(1)}; !equalValues(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}

	// An error from the loop body stops iteration and is returned as is.
	if err := rt.SetAttr(c, "n", Int(3)); err != nil {
		t.Fatal(err)
	}
	stop := errors.New("stop")
	if err := rt.ForEach(c, func(Value) error { return stop }); err != stop {
		t.Errorf("ForEach error = %v, want the body's error", err)
	}

	broken := mustCreate(t, rt, TypeSpec{Name: "Broken", Dict: map[string]Value{
		"__iter__": constMethod("__iter__", Int(1)),
	}})
	_, err := rt.Iter(mustCall(t, rt, broken))
	wantErr(t, err, ErrTypeError)
	if got, want := err.Error(), "iter() returned non-iterator of type 'int'"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}
