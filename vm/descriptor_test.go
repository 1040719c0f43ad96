package vm

import "testing"

// descriptorType builds a descriptor class from the given special methods.
func descriptorType(t *testing.T, rt *Runtime, name string, methods map[string]Value) *Type {
	t.Helper()
	return mustCreate(t, rt, TypeSpec{Name: name, Dict: methods})
}

func TestClassify(t *testing.T) {
	rt := newTestRuntime()
	getter := descriptorType(t, rt, "Getter", map[string]Value{
		"__get__": constMethod("__get__", Int(1)),
	})
	setter := descriptorType(t, rt, "Setter", map[string]Value{
		"__set__": constMethod("__set__", None),
	})
	deleter := descriptorType(t, rt, "Deleter", map[string]Value{
		"__delete__": constMethod("__delete__", None),
	})

	tests := []struct {
		name string
		v    Value
		want DescriptorKind
	}{
		{"int", Int(1), PlainValue},
		{"str", Str("x"), PlainValue},
		{"function", constMethod("f", None), NonDataDescriptor},
		{"staticmethod", &StaticMethod{Func: Int(1)}, NonDataDescriptor},
		{"classmethod", &ClassMethod{Func: Int(1)}, NonDataDescriptor},
		{"property", &Property{}, DataDescriptor},
		{"get only", mustCall(t, rt, getter), NonDataDescriptor},
		{"set only", mustCall(t, rt, setter), DataDescriptor},
		{"delete only", mustCall(t, rt, deleter), DataDescriptor},
	}
	for _, tt := range tests {
		if got := Classify(tt.v); got != tt.want {
			t.Errorf("Classify(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDataDescriptorWithoutDelete(t *testing.T) {
	rt := newTestRuntime()
	var stored Value
	desc := descriptorType(t, rt, "Stored", map[string]Value{
		"__get__": NewFunction("__get__", 3, func(rt *Runtime, args []Value) (Value, error) {
			if stored == nil {
				return Int(0), nil
			}
			return stored, nil
		}),
		"__set__": NewFunction("__set__", 3, func(rt *Runtime, args []Value) (Value, error) {
			stored = args[2]
			return None, nil
		}),
	})
	owner := mustCreate(t, rt, TypeSpec{Name: "Owner", Dict: map[string]Value{"x": mustCall(t, rt, desc)}})
	obj := mustCall(t, rt, owner)

	if err := rt.SetAttr(obj, "x", Int(7)); err != nil {
		t.Fatalf("SetAttr: %v", err)
	}
	if v, err := rt.GetAttr(obj, "x"); err != nil || v != Int(7) {
		t.Errorf("obj.x = %v, %v; want 7", v, err)
	}
	if d := obj.(*Instance).InstanceDict(false); d != nil && d.Len() > 0 {
		t.Errorf("the descriptor's value leaked into the instance dict: %v", d.Keys())
	}

	err := rt.DelAttr(obj, "x")
	wantErr(t, err, ErrReadOnlyAttribute)
	if v, _ := rt.GetAttr(obj, "x"); v != Int(7) {
		t.Error("a failed delete changed the attribute")
	}
}

func TestDataDescriptorWithoutSet(t *testing.T) {
	rt := newTestRuntime()
	desc := descriptorType(t, rt, "Fixed", map[string]Value{
		"__get__":    constMethod("__get__", Str("fixed")),
		"__delete__": constMethod("__delete__", None),
	})
	owner := mustCreate(t, rt, TypeSpec{Name: "Owner", Dict: map[string]Value{
		"x": mustCall(t, rt, desc),
		"p": &Property{Getter: constMethod("p", Int(1)), Name: "p"},
	}})
	obj := mustCall(t, rt, owner)

	for _, name := range []string{"x", "p"} {
		err := rt.SetAttr(obj, name, Int(2))
		wantErr(t, err, ErrReadOnlyAttribute)
	}
	if d := obj.(*Instance).InstanceDict(false); d != nil && d.Len() > 0 {
		t.Errorf("a rejected set wrote the instance dict: %v", d.Keys())
	}
	if err := rt.DelAttr(obj, "x"); err != nil {
		t.Errorf("del obj.x: %v", err)
	}
}

func TestDataDescriptorWithoutGetIsFatal(t *testing.T) {
	rt := newTestRuntime()
	desc := descriptorType(t, rt, "WriteOnly", map[string]Value{
		"__set__": constMethod("__set__", None),
	})
	owner := mustCreate(t, rt, TypeSpec{Name: "Owner", Dict: map[string]Value{"y": mustCall(t, rt, desc)}})
	obj := mustCall(t, rt, owner)

	_, err := rt.GetAttr(obj, "y")
	wantErr(t, err, ErrDescriptorInvariant)
	if !IsFatal(err) {
		t.Error("IsFatal should report a descriptor invariant violation")
	}

	// The same holds on the type path.
	meta := mustCreate(t, rt, TypeSpec{Name: "Meta", Bases: []*Type{TypeType}, Dict: map[string]Value{
		"y": mustCall(t, rt, desc),
	}})
	cls := mustCreate(t, rt, TypeSpec{Name: "WithMeta", Metatype: meta})
	_, err = rt.GetAttr(cls, "y")
	wantErr(t, err, ErrDescriptorInvariant)
}

func TestPrecedence(t *testing.T) {
	rt := newTestRuntime()
	owner := mustCreate(t, rt, TypeSpec{Name: "Owner", Dict: map[string]Value{
		"method": constMethod("method", Str("from method")),
		"prop":   &Property{Getter: constMethod("prop", Str("from property")), Name: "prop"},
		"plain":  Str("class value"),
	}})
	obj := mustCall(t, rt, owner).(*Instance)
	d := obj.InstanceDict(true)
	for _, name := range []string{"method", "prop", "plain"} {
		if err := d.Put(name, Str("instance value")); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name string
		want Value
	}{
		{"method", Str("instance value")},
		{"prop", Str("from property")},
		{"plain", Str("instance value")},
	}
	for _, tt := range tests {
		if v, err := rt.GetAttr(obj, tt.name); err != nil || v != tt.want {
			t.Errorf("obj.%s = %v, %v; want %v", tt.name, v, err, tt.want)
		}
	}
}

func TestPropertyRoundTrip(t *testing.T) {
	rt := newTestRuntime()
	var value Value = Int(0)
	prop := mustCall(t, rt, PropertyType,
		NewFunction("get", 1, func(rt *Runtime, args []Value) (Value, error) { return value, nil }),
		NewFunction("set", 2, func(rt *Runtime, args []Value) (Value, error) { value = args[1]; return nil, nil }),
		NewFunction("del", 1, func(rt *Runtime, args []Value) (Value, error) { value = Int(-1); return nil, nil }),
	)
	owner := mustCreate(t, rt, TypeSpec{Name: "Owner", Dict: map[string]Value{"v": prop}})
	obj := mustCall(t, rt, owner)

	if err := rt.SetAttr(obj, "v", Int(5)); err != nil {
		t.Fatal(err)
	}
	if v, _ := rt.GetAttr(obj, "v"); v != Int(5) {
		t.Errorf("obj.v = %v, want 5", v)
	}
	if err := rt.DelAttr(obj, "v"); err != nil {
		t.Fatal(err)
	}
	if v, _ := rt.GetAttr(obj, "v"); v != Int(-1) {
		t.Errorf("obj.v after delete = %v, want -1", v)
	}
	if v, _ := rt.GetAttr(owner, "v"); v != prop {
		t.Error("reading a property through its class should return the property")
	}
}

func TestMethodBinding(t *testing.T) {
	rt := newTestRuntime()
	echo := NewFunction("echo", -1, func(rt *Runtime, args []Value) (Value, error) {
		return NewTuple(args...), nil
	})
	owner := mustCreate(t, rt, TypeSpec{Name: "Owner", Dict: map[string]Value{
		"plain":  echo,
		"static": &StaticMethod{Func: echo},
		"cls":    &ClassMethod{Func: echo},
	}})
	obj := mustCall(t, rt, owner)

	tests := []struct {
		via  Value
		name string
		want []Value
	}{
		{obj, "plain", []Value{obj, Int(1)}},
		{owner, "plain", []Value{Int(1)}},
		{obj, "static", []Value{Int(1)}},
		{owner, "static", []Value{Int(1)}},
		{obj, "cls", []Value{owner, Int(1)}},
		{owner, "cls", []Value{owner, Int(1)}},
	}
	for _, tt := range tests {
		r, err := rt.CallMethod(tt.via, tt.name, Int(1))
		if err != nil {
			t.Errorf("%v.%s(1): %v", tt.via, tt.name, err)
			continue
		}
		got := r.(*Tuple).Items()
		if len(got) != len(tt.want) {
			t.Errorf("%v.%s(1) got %d args, want %d", tt.via, tt.name, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%v.%s(1) arg %d = %v, want %v", tt.via, tt.name, i, got[i], tt.want[i])
			}
		}
	}
}

func TestMemberDescriptors(t *testing.T) {
	rt := newTestRuntime()
	point := mustCreate(t, rt, TypeSpec{Name: "Point", Dict: map[string]Value{
		"__slots__": NewTuple(Str("x"), Str("y")),
	}})
	p := mustCall(t, rt, point)

	_, err := rt.GetAttr(p, "x")
	wantErr(t, err, ErrAttributeNotFound)

	if err := rt.SetAttr(p, "x", Int(3)); err != nil {
		t.Fatal(err)
	}
	if v, _ := rt.GetAttr(p, "x"); v != Int(3) {
		t.Errorf("p.x = %v, want 3", v)
	}
	if err := rt.DelAttr(p, "x"); err != nil {
		t.Fatal(err)
	}
	err = rt.DelAttr(p, "x")
	wantErr(t, err, ErrAttributeNotFound)

	err = rt.SetAttr(p, "z", Int(1))
	wantErr(t, err, ErrNoAttributeSupport)

	// Reading a member through the class returns the descriptor.
	m, err := rt.GetAttr(point, "y")
	if err != nil {
		t.Fatal(err)
	}
	if r, _ := rt.Repr(m); r != "<member 'y' of 'Point' objects>" {
		t.Errorf("repr = %s", r)
	}
}
