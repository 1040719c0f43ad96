package vm

import "strings"

// Tuple is an immutable sequence.
type Tuple struct {
	items []Value
}

// NewTuple creates a tuple holding items.
func NewTuple(items ...Value) *Tuple {
	return &Tuple{items: append([]Value(nil), items...)}
}

func (t *Tuple) Type() *Type { return TupleType }

// Len returns the number of items.
func (t *Tuple) Len() int { return len(t.items) }

// Items returns a copy of the items.
func (t *Tuple) Items() []Value { return append([]Value(nil), t.items...) }

// At returns item i.
func (t *Tuple) At(i int) Value { return t.items[i] }

func setupTupleType() {
	defUnary(TupleType, OpLen, func(rt *Runtime, self Value) (Value, error) {
		return Int(len(self.(*Tuple).items)), nil
	})
	defBinary(TupleType, OpGetItem, func(rt *Runtime, self, key Value) (Value, error) {
		t := self.(*Tuple)
		i, err := normalizeIndex(rt, key, len(t.items), "tuple")
		if err != nil {
			return nil, err
		}
		return t.items[i], nil
	})
	defUnary(TupleType, OpIter, func(rt *Runtime, self Value) (Value, error) {
		return newItemIterator(self.(*Tuple).items), nil
	})
	defBinary(TupleType, OpContains, func(rt *Runtime, self, item Value) (Value, error) {
		for _, v := range self.(*Tuple).items {
			eq, err := rt.RichCompareBool(OpEq, v, item)
			if err != nil {
				return nil, err
			}
			if eq {
				return True, nil
			}
		}
		return False, nil
	})
	defBinary(TupleType, OpAdd, func(rt *Runtime, self, other Value) (Value, error) {
		o, ok := other.(*Tuple)
		if !ok {
			return NotImplemented, nil
		}
		t := self.(*Tuple)
		items := make([]Value, 0, len(t.items)+len(o.items))
		return &Tuple{items: append(append(items, t.items...), o.items...)}, nil
	})
	defBinary(TupleType, OpEq, func(rt *Runtime, self, other Value) (Value, error) {
		o, ok := other.(*Tuple)
		if !ok {
			return NotImplemented, nil
		}
		t := self.(*Tuple)
		if len(t.items) != len(o.items) {
			return False, nil
		}
		for i := range t.items {
			eq, err := rt.RichCompareBool(OpEq, t.items[i], o.items[i])
			if err != nil || !eq {
				return False, err
			}
		}
		return True, nil
	})
	defUnary(TupleType, OpHash, func(rt *Runtime, self Value) (Value, error) {
		h := int64(0x345678)
		for _, v := range self.(*Tuple).items {
			x, err := rt.Hash(v)
			if err != nil {
				return nil, err
			}
			h = (h ^ x) * 1000003
		}
		return Int(h), nil
	})
	defUnary(TupleType, OpRepr, func(rt *Runtime, self Value) (Value, error) {
		s, err := tupleRepr(rt, self.(*Tuple), nil)
		if err != nil {
			return nil, err
		}
		return Str(s), nil
	})
	defVar(TupleType, OpNew, func(rt *Runtime, cls Value, args []Value) (Value, error) {
		return &Tuple{items: append([]Value(nil), args...)}, nil
	})
}

func tupleRepr(rt *Runtime, t *Tuple, seen map[*Dict]bool) (string, error) {
	parts := make([]string, len(t.items))
	for i, v := range t.items {
		s, err := reprElem(rt, v, seen)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)", nil
	}
	return "(" + strings.Join(parts, ", ") + ")", nil
}
