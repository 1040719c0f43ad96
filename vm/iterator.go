package vm

import (
	"errors"
	"sync"
)

// Iterator is the built-in iterator. It walks either a fixed list of items
// or, for a type that only defines __getitem__, the indices 0, 1, 2 ...
// until the sequence raises ErrIndex.
type Iterator struct {
	mu    sync.Mutex
	items []Value
	seq   Value
	next  int
	done  bool
}

func newItemIterator(items []Value) *Iterator {
	return &Iterator{items: items}
}

func newSeqIterator(seq Value) *Iterator {
	return &Iterator{seq: seq}
}

func (it *Iterator) Type() *Type { return IteratorType }

func (it *Iterator) advance(rt *Runtime) (Value, error) {
	it.mu.Lock()
	if it.done {
		it.mu.Unlock()
		return nil, stopIteration()
	}
	i := it.next
	it.next++
	if it.seq == nil {
		if i >= len(it.items) {
			it.done = true
			it.mu.Unlock()
			return nil, stopIteration()
		}
		v := it.items[i]
		it.mu.Unlock()
		return v, nil
	}
	seq := it.seq
	it.mu.Unlock()

	v, err := rt.GetItem(seq, Int(i))
	if errors.Is(err, ErrIndex) || errors.Is(err, ErrStopIteration) {
		it.mu.Lock()
		it.done = true
		it.mu.Unlock()
		return nil, stopIteration()
	}
	return v, err
}

func stopIteration() error {
	return newError(ErrStopIteration, "StopIteration")
}

func setupIteratorType() {
	defUnary(IteratorType, OpIter, func(rt *Runtime, self Value) (Value, error) {
		return self, nil
	})
	defUnary(IteratorType, OpNext, func(rt *Runtime, self Value) (Value, error) {
		return self.(*Iterator).advance(rt)
	})
}

// ---------------------------------------------------------------------------
// Iteration protocol
// ---------------------------------------------------------------------------

// Iter returns an iterator over v: the result of __iter__, which must
// itself define __next__, or a sequence iterator when v only defines
// __getitem__.
func (rt *Runtime) Iter(v Value) (Value, error) {
	st := v.Type().Slots()
	if s, ok := st.Resolve(OpIter); ok {
		r, err := s.Invoke(rt, v, nil)
		if err != nil {
			return nil, err
		}
		if !r.Type().Slots().Has(OpNext) {
			return nil, newError(ErrTypeError, "iter() returned non-iterator of type '%s'", typeName(r))
		}
		return r, nil
	}
	if st.Has(OpGetItem) {
		return newSeqIterator(v), nil
	}
	return nil, newError(ErrTypeError, "'%s' object is not iterable", typeName(v))
}

// Next advances an iterator. ok is false once it is exhausted.
func (rt *Runtime) Next(it Value) (v Value, ok bool, err error) {
	s, defined := it.Type().Slots().Resolve(OpNext)
	if !defined {
		return nil, false, newError(ErrTypeError, "'%s' object is not an iterator", typeName(it))
	}
	r, err := s.Invoke(rt, it, nil)
	if errors.Is(err, ErrStopIteration) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

// ForEach calls fn with every item of v, stopping at the first error.
func (rt *Runtime) ForEach(v Value, fn func(item Value) error) error {
	it, err := rt.Iter(v)
	if err != nil {
		return err
	}
	for {
		item, ok, err := rt.Next(it)
		if err != nil || !ok {
			return err
		}
		if err := fn(item); err != nil {
			return err
		}
	}
}
