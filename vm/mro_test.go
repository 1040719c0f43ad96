package vm

import (
	"strings"
	"testing"
)

func mroString(t *Type) string {
	return mroNames(t)
}

func TestDiamondMRO(t *testing.T) {
	rt := newTestRuntime()
	a := mustCreate(t, rt, TypeSpec{Name: "A"})
	b := mustCreate(t, rt, TypeSpec{Name: "B", Bases: []*Type{a}})
	c := mustCreate(t, rt, TypeSpec{Name: "C", Bases: []*Type{a}})
	d := mustCreate(t, rt, TypeSpec{Name: "D", Bases: []*Type{b, c}})

	if got, want := mroString(d), "D B C A object"; got != want {
		t.Errorf("mro(D) = %q, want %q", got, want)
	}
	if d.Base() != b {
		t.Errorf("D's best base = %s, want B", d.Base().Name())
	}
}

func TestC3Linearization(t *testing.T) {
	rt := newTestRuntime()
	mk := func(name string, bases ...*Type) *Type {
		return mustCreate(t, rt, TypeSpec{Name: name, Bases: bases})
	}
	a, b, c, d, e := mk("A"), mk("B"), mk("C"), mk("D"), mk("E")
	k1 := mk("K1", a, b, c)
	k2 := mk("K2", d, b, e)
	k3 := mk("K3", d, a)
	z := mk("Z", k1, k2, k3)

	if got, want := mroString(z), "Z K1 K2 K3 D A B C E object"; got != want {
		t.Errorf("mro(Z) = %q, want %q", got, want)
	}

	// Every base's MRO appears in order inside the MRO of each subtype.
	for _, typ := range []*Type{k1, k2, k3, z} {
		mro := typ.MRO()
		if mro[0] != typ || mro[len(mro)-1] != ObjectType {
			t.Errorf("mro(%s) must start with itself and end with object", typ.Name())
		}
		pos := make(map[*Type]int, len(mro))
		for i, x := range mro {
			pos[x] = i
		}
		for _, base := range typ.Bases() {
			prev := -1
			for _, x := range base.MRO() {
				p, ok := pos[x]
				if !ok || p <= prev {
					t.Errorf("mro(%s) does not preserve the order of mro(%s)", typ.Name(), base.Name())
					break
				}
				prev = p
			}
		}
		for i := 1; i < len(typ.Bases()); i++ {
			if pos[typ.Bases()[i-1]] > pos[typ.Bases()[i]] {
				t.Errorf("mro(%s) does not preserve the local order of bases", typ.Name())
			}
		}
	}
}

func TestCreateTypeFailures(t *testing.T) {
	rt := newTestRuntime()
	x := mustCreate(t, rt, TypeSpec{Name: "X"})
	y := mustCreate(t, rt, TypeSpec{Name: "Y"})
	a := mustCreate(t, rt, TypeSpec{Name: "A", Bases: []*Type{x, y}})
	b := mustCreate(t, rt, TypeSpec{Name: "B", Bases: []*Type{y, x}})
	p := mustCreate(t, rt, TypeSpec{Name: "P", Dict: map[string]Value{"__slots__": Str("p")}})
	q := mustCreate(t, rt, TypeSpec{Name: "Q", Dict: map[string]Value{"__slots__": Str("q")}})
	meta1 := mustCreate(t, rt, TypeSpec{Name: "Meta1", Bases: []*Type{TypeType}})
	meta2 := mustCreate(t, rt, TypeSpec{Name: "Meta2", Bases: []*Type{TypeType}})
	m1 := mustCreate(t, rt, TypeSpec{Name: "M1", Metatype: meta1})
	m2 := mustCreate(t, rt, TypeSpec{Name: "M2", Metatype: meta2})
	final := mustCreate(t, rt, TypeSpec{Name: "Final", Final: true})

	tests := []struct {
		name string
		spec TypeSpec
		want error
	}{
		{"inconsistent mro", TypeSpec{Name: "Bad1", Bases: []*Type{a, b}}, ErrInconsistentMRO},
		{"object before subclass", TypeSpec{Name: "Bad2", Bases: []*Type{ObjectType, x}}, ErrInconsistentMRO},
		{"int and str", TypeSpec{Name: "Bad3", Bases: []*Type{IntType, StrType}}, ErrLayoutConflict},
		{"two slotted bases", TypeSpec{Name: "Bad4", Bases: []*Type{p, q}}, ErrLayoutConflict},
		{"bool base", TypeSpec{Name: "Bad5", Bases: []*Type{BoolType}}, ErrTypeError},
		{"final base", TypeSpec{Name: "Bad6", Bases: []*Type{final}}, ErrTypeError},
		{"duplicate base", TypeSpec{Name: "Bad7", Bases: []*Type{x, x}}, ErrTypeError},
		{"metatype conflict", TypeSpec{Name: "Bad8", Bases: []*Type{m1, m2}}, ErrTypeError},
		{"empty name", TypeSpec{Name: ""}, ErrTypeError},
		{"slot clashes with class var", TypeSpec{Name: "Bad9", Dict: map[string]Value{
			"__slots__": Str("v"), "v": Int(1)}}, ErrTypeError},
		{"duplicate slot", TypeSpec{Name: "Bad10", Dict: map[string]Value{
			"__slots__": NewTuple(Str("v"), Str("v"))}}, ErrTypeError},
		{"layout not extending base", TypeSpec{Name: "Bad11", Bases: []*Type{IntType},
			Layout: NewLayout("Bad11", nil)}, ErrLayoutConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := rt.Types().Len()
			subs := len(x.Subclasses())
			_, err := rt.CreateType(tt.spec)
			wantErr(t, err, tt.want)
			if rt.Types().Len() != before {
				t.Errorf("registry grew from %d to %d after a failed creation", before, rt.Types().Len())
			}
			if tt.spec.Name != "" && rt.LookupType(tt.spec.Name) != nil {
				t.Errorf("%s is registered after a failed creation", tt.spec.Name)
			}
			if len(x.Subclasses()) != subs {
				t.Error("a base learned about a type that failed to be created")
			}
		})
	}
}

func TestInconsistentMROMessage(t *testing.T) {
	rt := newTestRuntime()
	x := mustCreate(t, rt, TypeSpec{Name: "X"})
	y := mustCreate(t, rt, TypeSpec{Name: "Y"})
	a := mustCreate(t, rt, TypeSpec{Name: "A", Bases: []*Type{x, y}})
	b := mustCreate(t, rt, TypeSpec{Name: "B", Bases: []*Type{y, x}})

	_, err := rt.CreateType(TypeSpec{Name: "C", Bases: []*Type{a, b}})
	wantErr(t, err, ErrInconsistentMRO)
	if !strings.Contains(err.Error(), "X, Y") {
		t.Errorf("error %q should name the conflicting heads", err)
	}
}

func TestBestBaseAndLayout(t *testing.T) {
	rt := newTestRuntime()
	plain := mustCreate(t, rt, TypeSpec{Name: "Plain"})
	slotted := mustCreate(t, rt, TypeSpec{Name: "Slotted", Dict: map[string]Value{
		"__slots__": NewTuple(Str("a"), Str("b")),
	}})
	mixed := mustCreate(t, rt, TypeSpec{Name: "Mixed", Bases: []*Type{plain, slotted}})

	if mixed.Base() != slotted {
		t.Errorf("best base = %s, want Slotted", mixed.Base().Name())
	}
	if mixed.Layout() != slotted.Layout() {
		t.Errorf("layout = %s, want Slotted's", mixed.Layout())
	}
	if !mixed.HasInstanceDict() {
		t.Error("Mixed inherits a dictionary from Plain")
	}
	if slotted.HasInstanceDict() {
		t.Error("Slotted declared __slots__ without __dict__")
	}

	child := mustCreate(t, rt, TypeSpec{Name: "Child", Bases: []*Type{slotted}, Dict: map[string]Value{
		"__slots__": Str("c"),
	}})
	if got := child.Layout().Fields(); strings.Join(got, ",") != "a,b,c" {
		t.Errorf("Child fields = %v, want [a b c]", got)
	}

	withDict := mustCreate(t, rt, TypeSpec{Name: "WithDict", Dict: map[string]Value{
		"__slots__": NewTuple(Str("x"), Str("__dict__")),
	}})
	if !withDict.HasInstanceDict() {
		t.Error("__dict__ in __slots__ should enable the instance dictionary")
	}
	if withDict.Layout().NumFields() != 1 {
		t.Errorf("WithDict fields = %v, want [x]", withDict.Layout().Fields())
	}
}

func TestMetatypeInheritance(t *testing.T) {
	rt := newTestRuntime()
	meta := mustCreate(t, rt, TypeSpec{Name: "Meta", Bases: []*Type{TypeType}})
	c := mustCreate(t, rt, TypeSpec{Name: "C", Metatype: meta})
	d := mustCreate(t, rt, TypeSpec{Name: "D", Bases: []*Type{c}})

	if c.Type() != meta || d.Type() != meta {
		t.Errorf("metatypes = %s, %s; want Meta for both", c.Type().Name(), d.Type().Name())
	}

	// Calling the metatype builds a class the same way.
	v := mustCall(t, rt, meta, Str("E"), NewTuple(d), NewDict())
	e, ok := v.(*Type)
	if !ok {
		t.Fatalf("Meta(...) returned %T", v)
	}
	if e.Type() != meta || e.Base() != d {
		t.Errorf("E: metatype %s base %s", e.Type().Name(), e.Base().Name())
	}
	if rt.LookupType("E") != e {
		t.Error("E is not registered")
	}
}

func TestSubclassesTracked(t *testing.T) {
	rt := newTestRuntime()
	a := mustCreate(t, rt, TypeSpec{Name: "A"})
	b := mustCreate(t, rt, TypeSpec{Name: "B", Bases: []*Type{a}})
	c := mustCreate(t, rt, TypeSpec{Name: "C", Bases: []*Type{a}})

	subs := a.Subclasses()
	if len(subs) != 2 || subs[0] != b || subs[1] != c {
		t.Errorf("Subclasses(A) = %v, want [B C]", subs)
	}
	if !c.IsSubtype(a) || !c.IsProperSubtype(a) || a.IsProperSubtype(a) || b.IsSubtype(c) {
		t.Error("subtype relation does not follow the MRO")
	}
}
