package vm

import "strings"

// ---------------------------------------------------------------------------
// Method resolution order
// ---------------------------------------------------------------------------

// linearize computes the C3 linearisation of a new type with the given
// bases: self followed by the merge of each base's MRO and the list of
// bases itself. The merge keeps every base MRO's order and the local order
// of the bases, or fails with ErrInconsistentMRO.
func linearize(self *Type, bases []*Type) ([]*Type, error) {
	switch len(bases) {
	case 0:
		return []*Type{self}, nil
	case 1:
		return append([]*Type{self}, bases[0].mro...), nil
	}

	seqs := make([][]*Type, 0, len(bases)+1)
	for _, b := range bases {
		seqs = append(seqs, b.mro)
	}
	seqs = append(seqs, bases)

	result := []*Type{self}
	for {
		done := true
		for _, s := range seqs {
			if len(s) > 0 {
				done = false
				break
			}
		}
		if done {
			return result, nil
		}

		next := mergeCandidate(seqs)
		if next == nil {
			return nil, inconsistentMRO(seqs)
		}
		result = append(result, next)
		for i, s := range seqs {
			if len(s) > 0 && s[0] == next {
				seqs[i] = s[1:]
			}
		}
	}
}

// mergeCandidate returns the first head that appears in no tail.
func mergeCandidate(seqs [][]*Type) *Type {
	for _, s := range seqs {
		if len(s) == 0 {
			continue
		}
		head := s[0]
		if !inAnyTail(head, seqs) {
			return head
		}
	}
	return nil
}

func inAnyTail(t *Type, seqs [][]*Type) bool {
	for _, s := range seqs {
		for _, c := range s[min(1, len(s)):] {
			if c == t {
				return true
			}
		}
	}
	return false
}

func inconsistentMRO(seqs [][]*Type) error {
	var heads []string
	seen := make(map[*Type]bool)
	for _, s := range seqs {
		if len(s) > 0 && !seen[s[0]] {
			seen[s[0]] = true
			heads = append(heads, s[0].name)
		}
	}
	return newError(ErrInconsistentMRO,
		"Cannot create a consistent method resolution order (MRO) for bases %s", strings.Join(heads, ", "))
}

// ---------------------------------------------------------------------------
// Best base and metatype
// ---------------------------------------------------------------------------

// bestBase picks the base whose layout the new type must extend. The
// layouts of all bases must form a chain; the most derived one wins.
// Bases sharing the layout of object never constrain the choice.
func bestBase(bases []*Type) (*Type, error) {
	var winner *Type
	for _, b := range bases {
		if !b.IsBaseType() {
			return nil, newError(ErrTypeError, "type '%s' is not an acceptable base type", b.name)
		}
		switch {
		case winner == nil:
			winner = b
		case winner.layout.Extends(b.layout):
			// winner already includes b's layout
		case b.layout.Extends(winner.layout):
			winner = b
		default:
			return nil, newError(ErrLayoutConflict, "multiple bases have instance lay-out conflict")
		}
	}
	return winner, nil
}

// calculateMetatype returns the most derived of the requested metatype and
// the metatypes of the bases.
func calculateMetatype(requested *Type, bases []*Type) (*Type, error) {
	winner := requested
	if winner == nil {
		winner = TypeType
	}
	for _, b := range bases {
		bm := b.metatype
		switch {
		case winner.IsSubtype(bm):
		case bm.IsSubtype(winner):
			winner = bm
		default:
			return nil, newError(ErrTypeError,
				"metaclass conflict: the metaclass of a derived class must be a (non-strict) subclass of the metaclasses of all its bases")
		}
	}
	return winner, nil
}

func checkDuplicateBases(bases []*Type) error {
	for i, b := range bases {
		for _, c := range bases[:i] {
			if b == c {
				return newError(ErrTypeError, "duplicate base class %s", b.name)
			}
		}
	}
	return nil
}
