// Package dist captures the type graph of a runtime as a portable
// snapshot. Snapshots are encoded as canonical CBOR, so two runtimes with
// identical hierarchies produce identical bytes and digests, or as YAML
// for reading.
package dist

import (
	"sort"

	"github.com/chazu/dunder/vm"
)

// FormatVersion is bumped when the snapshot layout changes.
const FormatVersion = 2

// Snapshot is the type graph of one runtime.
type Snapshot struct {
	Version   byte         `cbor:"1,keyasint" yaml:"version"`
	RuntimeID string       `cbor:"2,keyasint" yaml:"runtime_id"`
	Name      string       `cbor:"3,keyasint" yaml:"name"`
	Types     []TypeRecord `cbor:"4,keyasint" yaml:"types"`
}

// TypeRecord describes one type.
type TypeRecord struct {
	Name     string       `cbor:"1,keyasint" yaml:"name"`
	Metatype string       `cbor:"2,keyasint" yaml:"metatype"`
	Bases    []string     `cbor:"3,keyasint,omitempty" yaml:"bases,omitempty"`
	MRO      []string     `cbor:"4,keyasint" yaml:"mro"`
	Base     string       `cbor:"5,keyasint,omitempty" yaml:"base,omitempty"` // best base
	Layout   string       `cbor:"6,keyasint" yaml:"layout"`
	Fields   []string     `cbor:"7,keyasint,omitempty" yaml:"fields,omitempty"`
	Flags    string       `cbor:"8,keyasint" yaml:"flags"`
	Slots    []SlotRecord `cbor:"9,keyasint,omitempty" yaml:"slots,omitempty"`
}

// SlotRecord describes one non-empty slot.
type SlotRecord struct {
	Op      string `cbor:"1,keyasint" yaml:"op"`
	Owner   string `cbor:"2,keyasint" yaml:"owner"` // type whose dictionary defines it
	Managed bool   `cbor:"3,keyasint,omitempty" yaml:"managed,omitempty"`
}

// Options selects what Capture records.
type Options struct {
	IncludeBuiltins bool
}

// Capture records the registered types of rt, in registration order.
// Slot versions are deliberately left out: they count updates, not state.
func Capture(rt *vm.Runtime, opts Options) *Snapshot {
	s := &Snapshot{
		Version:   FormatVersion,
		RuntimeID: rt.ID().String(),
		Name:      rt.Name(),
	}
	for _, t := range rt.Types().All() {
		if t.IsBuiltin() && !opts.IncludeBuiltins {
			continue
		}
		s.Types = append(s.Types, Record(t))
	}
	return s
}

// Record describes a single type.
func Record(t *vm.Type) TypeRecord {
	r := TypeRecord{
		Name:     t.Name(),
		Metatype: t.Type().Name(),
		Bases:    names(t.Bases()),
		MRO:      names(t.MRO()),
		Layout:   t.Layout().Name(),
		Fields:   t.Layout().Fields(),
		Flags:    t.Flags().String(),
	}
	if b := t.Base(); b != nil {
		r.Base = b.Name()
	}
	for _, op := range t.Slots().Defined() {
		owner, managed := t.SlotOrigin(op)
		rec := SlotRecord{Op: op.Name(), Managed: managed}
		if owner != nil {
			rec.Owner = owner.Name()
		}
		r.Slots = append(r.Slots, rec)
	}
	return r
}

// Find returns the record for a type name, or nil.
func (s *Snapshot) Find(name string) *TypeRecord {
	for i := range s.Types {
		if s.Types[i].Name == name {
			return &s.Types[i]
		}
	}
	return nil
}

// TypeNames returns the recorded type names, sorted.
func (s *Snapshot) TypeNames() []string {
	out := make([]string, len(s.Types))
	for i, t := range s.Types {
		out[i] = t.Name
	}
	sort.Strings(out)
	return out
}

func names(types []*vm.Type) []string {
	if len(types) == 0 {
		return nil
	}
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.Name()
	}
	return out
}
