package vm

import (
	"slices"
	"strings"
)

// TypeSpec describes a type to create: the finished namespace of a class
// body plus its bases.
type TypeSpec struct {
	Name  string
	Bases []*Type          // Empty means object
	Dict  map[string]Value // Class namespace; __slots__ may be a Str or a *Tuple of Str

	// Layout requests a native layout, which must extend the layout of
	// the best base. Nil derives the layout from the bases and __slots__.
	Layout *Layout

	Metatype  *Type // Nil means the most derived metatype of the bases
	Immutable bool  // Reject later attribute changes on the type
	Final     bool  // Reject subclassing
}

// CreateType builds and registers a new type. On failure nothing is
// registered and no base learns about the new type.
func (rt *Runtime) CreateType(spec TypeSpec) (*Type, error) {
	if spec.Name == "" {
		return nil, newError(ErrTypeError, "type name must not be empty")
	}
	bases := spec.Bases
	if len(bases) == 0 {
		bases = []*Type{ObjectType}
	}
	if err := checkDuplicateBases(bases); err != nil {
		return nil, err
	}
	meta, err := calculateMetatype(spec.Metatype, bases)
	if err != nil {
		return nil, err
	}
	best, err := bestBase(bases)
	if err != nil {
		return nil, err
	}

	slotNames, hasSlots, err := parseSlots(spec.Dict)
	if err != nil {
		return nil, err
	}
	wantsDict := !hasSlots
	var fields []string
	for _, n := range slotNames {
		if n == "__dict__" {
			wantsDict = true
			continue
		}
		if _, clash := spec.Dict[n]; clash {
			return nil, newError(ErrTypeError, "'%s' in __slots__ conflicts with class variable", n)
		}
		fields = append(fields, n)
	}

	layout := best.layout
	switch {
	case spec.Layout != nil:
		if !spec.Layout.Extends(best.layout) {
			return nil, newError(ErrLayoutConflict,
				"layout '%s' does not extend the layout of base '%s'", spec.Layout.name, best.name)
		}
		layout = spec.Layout
	case len(fields) > 0:
		layout = NewLayout(spec.Name, best.layout, fields...)
	}

	inheritsDict := false
	for _, b := range bases {
		if b.HasInstanceDict() {
			inheritsDict = true
		}
	}

	t := &Type{
		name:     spec.Name,
		metatype: meta,
		layout:   layout,
		base:     best,
		bases:    append([]*Type(nil), bases...),
		id:       typeIDs.Add(1),
	}
	if !spec.Immutable {
		t.flags |= FlagMutable
	}
	if !spec.Final {
		t.flags |= FlagBaseType
	}
	if wantsDict || inheritsDict {
		t.flags |= FlagHasDict
	}

	if t.mro, err = linearize(t, bases); err != nil {
		return nil, err
	}

	t.dict = NewDictFrom(spec.Dict)
	if layout != best.layout && spec.Layout == nil {
		for _, f := range fields {
			t.dict.Put(f, &MemberDescriptor{name: f, owner: t, index: layout.FieldIndex(f)})
		}
	}
	if t.HasInstanceDict() && !inheritsDict && !definedInBases(bases, "__dict__") {
		t.dict.Put("__dict__", instanceDictDescriptor(t))
	}
	if fn, ok := t.dict.Get("__new__"); ok {
		if _, isFunc := fn.(*Function); isFunc {
			t.dict.Put("__new__", &StaticMethod{Func: fn})
		}
	}

	hierarchyMu.Lock()
	fillSlots(t)
	rt.types.Register(t)
	for _, b := range bases {
		b.addSubclass(t)
	}
	hierarchyMu.Unlock()

	rt.logs.types.Infof("created %s: mro=[%s] base=%s layout=%s dict=%t",
		t.name, mroNames(t), best.name, layout, t.HasInstanceDict())
	return t, nil
}

func definedInBases(bases []*Type, name string) bool {
	for _, b := range bases {
		if v, _ := b.Lookup(name); v != nil {
			return true
		}
	}
	return false
}

// parseSlots reads __slots__ from a class namespace.
func parseSlots(dict map[string]Value) ([]string, bool, error) {
	v, ok := dict["__slots__"]
	if !ok {
		return nil, false, nil
	}
	var items []Value
	switch s := v.(type) {
	case Str:
		items = []Value{s}
	case *Tuple:
		items = s.items
	default:
		return nil, false, newError(ErrTypeError, "__slots__ must be a str or a tuple of str, not '%s'", typeName(v))
	}
	names := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(Str)
		if !ok {
			return nil, false, newError(ErrTypeError, "__slots__ items must be strings, not '%s'", typeName(it))
		}
		if slices.Contains(names, string(s)) {
			return nil, false, newError(ErrTypeError, "duplicate slot name '%s'", s)
		}
		names = append(names, string(s))
	}
	return names, true, nil
}

// instanceDictDescriptor exposes an instance's dictionary as __dict__.
func instanceDictDescriptor(owner *Type) *GetSetDescriptor {
	return NewGetSetDescriptor(owner, "__dict__",
		func(rt *Runtime, obj Value) (Value, error) {
			h, ok := obj.(DictHolder)
			if !ok {
				return nil, noAttribute(obj, "__dict__")
			}
			d := h.InstanceDict(true)
			if d == nil {
				return nil, noAttribute(obj, "__dict__")
			}
			return d, nil
		},
		func(rt *Runtime, obj, v Value) error {
			inst, ok := obj.(*Instance)
			if !ok {
				return readonlyAttribute(obj, "__dict__")
			}
			if v == nil {
				return newError(ErrTypeError, "cannot delete __dict__")
			}
			d, ok := v.(*Dict)
			if !ok {
				return newError(ErrTypeError, "__dict__ must be set to a dictionary, not a '%s'", typeName(v))
			}
			inst.replaceDict(d)
			return nil
		})
}

func mroNames(t *Type) string {
	names := make([]string, len(t.mro))
	for i, c := range t.mro {
		names[i] = c.name
	}
	return strings.Join(names, " ")
}
