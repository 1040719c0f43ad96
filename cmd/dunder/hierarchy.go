package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chazu/dunder/vm"
)

// Hierarchy is a YAML description of classes plus operations to evaluate
// against them. Method bodies are trivial: they return a constant, self,
// or one of their arguments.
type Hierarchy struct {
	Classes []ClassDesc `yaml:"classes"`
	Eval    []EvalDesc  `yaml:"eval"`
}

// ClassDesc describes one class statement.
type ClassDesc struct {
	Name      string                `yaml:"name"`
	Bases     []string              `yaml:"bases"`
	Slots     *[]string             `yaml:"slots"` // nil: no __slots__; empty: slotless
	Attrs     map[string]any        `yaml:"attrs"`
	Methods   map[string]MethodDesc `yaml:"methods"`
	Metaclass string                `yaml:"metaclass"`
	Immutable bool                  `yaml:"immutable"`
	Final     bool                  `yaml:"final"`
}

// MethodDesc is the body of a method.
type MethodDesc struct {
	Returns any  `yaml:"returns"`
	Self    bool `yaml:"self"` // return self
	Arg     *int `yaml:"arg"`  // return argument n (0 is the first after self)
	None    bool `yaml:"none"` // bind the name to None instead of a function
}

// EvalDesc is one operation to run after the classes are built.
type EvalDesc struct {
	Op   string    `yaml:"op"`   // a special method name, or getattr/setattr/delattr
	Args []Operand `yaml:"args"` // operands
	Name string    `yaml:"name"` // attribute name for getattr/setattr/delattr
}

// Operand is a literal or a fresh instance of a named class.
type Operand struct {
	New   string   `yaml:"new"`
	Int   *int64   `yaml:"int"`
	Float *float64 `yaml:"float"`
	Str   *string  `yaml:"str"`
}

// LoadHierarchy reads a hierarchy file.
func LoadHierarchy(path string) (*Hierarchy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	h, err := ParseHierarchy(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// ParseHierarchy decodes a hierarchy document.
func ParseHierarchy(data []byte) (*Hierarchy, error) {
	var h Hierarchy
	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	for i, c := range h.Classes {
		if c.Name == "" {
			return nil, fmt.Errorf("class #%d has no name", i+1)
		}
	}
	return &h, nil
}

// Build creates the classes in order. It stops at the first failure;
// classes created before it stay registered.
func Build(rt *vm.Runtime, h *Hierarchy) ([]*vm.Type, error) {
	var out []*vm.Type
	for _, c := range h.Classes {
		t, err := buildClass(rt, c)
		if err != nil {
			return out, fmt.Errorf("class %s: %w", c.Name, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func lookupType(rt *vm.Runtime, name string) (*vm.Type, error) {
	t := rt.LookupType(name)
	if t == nil {
		return nil, fmt.Errorf("unknown class %q", name)
	}
	return t, nil
}

func buildClass(rt *vm.Runtime, c ClassDesc) (*vm.Type, error) {
	spec := vm.TypeSpec{
		Name:      c.Name,
		Dict:      make(map[string]vm.Value),
		Immutable: c.Immutable,
		Final:     c.Final,
	}
	for _, b := range c.Bases {
		t, err := lookupType(rt, b)
		if err != nil {
			return nil, err
		}
		spec.Bases = append(spec.Bases, t)
	}
	if c.Metaclass != "" {
		meta, err := lookupType(rt, c.Metaclass)
		if err != nil {
			return nil, err
		}
		spec.Metatype = meta
	}
	if c.Slots != nil {
		items := make([]vm.Value, len(*c.Slots))
		for i, s := range *c.Slots {
			items[i] = vm.Str(s)
		}
		spec.Dict["__slots__"] = vm.NewTuple(items...)
	}
	for k, v := range c.Attrs {
		val, err := toValue(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", k, err)
		}
		spec.Dict[k] = val
	}
	for name, m := range c.Methods {
		fn, err := methodValue(name, m)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", name, err)
		}
		spec.Dict[name] = fn
	}
	return rt.CreateType(spec)
}

func methodValue(name string, m MethodDesc) (vm.Value, error) {
	if m.None {
		return vm.None, nil
	}
	var result vm.Value = vm.None
	if m.Returns != nil {
		v, err := toValue(m.Returns)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return vm.NewFunction(name, -1, func(rt *vm.Runtime, args []vm.Value) (vm.Value, error) {
		switch {
		case m.Self:
			if len(args) == 0 {
				return nil, fmt.Errorf("%s: no self", name)
			}
			return args[0], nil
		case m.Arg != nil:
			i := *m.Arg + 1
			if i >= len(args) {
				return nil, fmt.Errorf("%s: no argument %d", name, *m.Arg)
			}
			return args[i], nil
		}
		return result, nil
	}), nil
}

// toValue converts a decoded YAML scalar or sequence.
func toValue(v any) (vm.Value, error) {
	switch x := v.(type) {
	case nil:
		return vm.None, nil
	case bool:
		return vm.Bool(x), nil
	case int:
		return vm.Int(x), nil
	case int64:
		return vm.Int(x), nil
	case uint64:
		return vm.Int(int64(x)), nil
	case float64:
		return vm.Float(x), nil
	case string:
		return vm.Str(x), nil
	case []any:
		items := make([]vm.Value, len(x))
		for i, it := range x {
			val, err := toValue(it)
			if err != nil {
				return nil, err
			}
			items[i] = val
		}
		return vm.NewTuple(items...), nil
	}
	return nil, fmt.Errorf("unsupported value %v (%T)", v, v)
}

func (o Operand) value(rt *vm.Runtime) (vm.Value, error) {
	switch {
	case o.New != "":
		t, err := lookupType(rt, o.New)
		if err != nil {
			return nil, err
		}
		return rt.Call(t)
	case o.Int != nil:
		return vm.Int(*o.Int), nil
	case o.Float != nil:
		return vm.Float(*o.Float), nil
	case o.Str != nil:
		return vm.Str(*o.Str), nil
	}
	return vm.None, nil
}

// Evaluate runs one operation and returns the repr of its result. Binary
// and unary operators go through call sites numbered by site.
func Evaluate(rt *vm.Runtime, site int, e EvalDesc) (string, error) {
	args := make([]vm.Value, len(e.Args))
	for i, o := range e.Args {
		v, err := o.value(rt)
		if err != nil {
			return "", err
		}
		args[i] = v
	}

	var result vm.Value
	var err error
	switch e.Op {
	case "getattr":
		if len(args) != 1 {
			return "", fmt.Errorf("getattr takes 1 operand")
		}
		result, err = rt.GetAttr(args[0], e.Name)
	case "setattr":
		if len(args) != 2 {
			return "", fmt.Errorf("setattr takes 2 operands")
		}
		err = rt.SetAttr(args[0], e.Name, args[1])
		result = vm.None
	case "delattr":
		if len(args) != 1 {
			return "", fmt.Errorf("delattr takes 1 operand")
		}
		err = rt.DelAttr(args[0], e.Name)
		result = vm.None
	default:
		op, ok := vm.LookupOp(e.Op)
		if !ok {
			return "", fmt.Errorf("unknown operation %q", e.Op)
		}
		switch {
		case op.IsBinary() && len(args) == 2:
			result, err = rt.CallSites().Binary(site, op).Call(args[0], args[1])
		case op.Signature().Arity() == 0 && len(args) == 1:
			result, err = rt.CallSites().Unary(site, op).Call(args[0])
		default:
			return "", fmt.Errorf("%s cannot be applied to %d operands", e.Op, len(args))
		}
	}
	if err != nil {
		return "", err
	}
	s, err := rt.Repr(result)
	return string(s), err
}

// Describe prints a type: MRO, best base, layout, flags and the origin of
// every non-empty slot.
func Describe(w io.Writer, t *vm.Type) {
	fmt.Fprintf(w, "class %s(%s)\n", t.Name(), joinNames(t.Bases()))
	fmt.Fprintf(w, "  metatype: %s\n", t.Type().Name())
	fmt.Fprintf(w, "  mro:      %s\n", joinNames(t.MRO()))
	if b := t.Base(); b != nil {
		fmt.Fprintf(w, "  base:     %s\n", b.Name())
	}
	fields := t.Layout().Fields()
	if len(fields) == 0 {
		fmt.Fprintf(w, "  layout:   %s\n", t.Layout().Name())
	} else {
		fmt.Fprintf(w, "  layout:   %s [%s]\n", t.Layout().Name(), strings.Join(fields, ", "))
	}
	fmt.Fprintf(w, "  flags:    %s\n", t.Flags())

	var own, inherited []string
	for _, op := range t.Slots().Defined() {
		owner, managed := t.SlotOrigin(op)
		entry := op.Name()
		if managed {
			entry += "*"
		}
		if owner == t {
			own = append(own, entry)
		} else if owner != nil {
			inherited = append(inherited, entry+"<-"+owner.Name())
		}
	}
	sort.Strings(own)
	sort.Strings(inherited)
	if len(own) > 0 {
		fmt.Fprintf(w, "  slots:    %s\n", strings.Join(own, " "))
	}
	if len(inherited) > 0 {
		fmt.Fprintf(w, "  inherits: %s\n", strings.Join(inherited, " "))
	}
}

func joinNames(types []*vm.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Name()
	}
	return strings.Join(names, " ")
}

// errorKind names the typed failure for diagnostics.
func errorKind(err error) string {
	for _, k := range []struct {
		kind error
		name string
	}{
		{vm.ErrInconsistentMRO, "InconsistentMRO"},
		{vm.ErrLayoutConflict, "LayoutConflict"},
		{vm.ErrAttributeNotFound, "AttributeNotFound"},
		{vm.ErrReadOnlyAttribute, "ReadOnlyAttribute"},
		{vm.ErrNoAttributeSupport, "NoAttributeSupport"},
		{vm.ErrCannotSetAttribute, "CannotSetAttribute"},
		{vm.ErrUnsupportedOperand, "UnsupportedOperand"},
		{vm.ErrDescriptorInvariant, "DescriptorInvariantViolation"},
		{vm.ErrTypeError, "TypeError"},
	} {
		if errors.Is(err, k.kind) {
			return k.name
		}
	}
	return "Error"
}
