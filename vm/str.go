package vm

import (
	"hash/fnv"
	"strings"
	"unicode/utf8"
)

// maxStrLen bounds the length of a string built by repetition.
const maxStrLen = 1 << 30

// Str is a str value.
type Str string

func (Str) Type() *Type { return StrType }

func asStr(v Value) (string, bool) {
	switch x := v.(type) {
	case Str:
		return string(x), true
	case *Instance:
		if p, ok := x.Payload.(Str); ok && x.Type().IsSubtype(StrType) {
			return string(p), true
		}
	}
	return "", false
}

func hashString(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64() >> 1)
}

// quoteStr renders s the way repr does: single quotes unless s contains
// one and no double quote.
func quoteStr(s string) string {
	q := "'"
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		q = `"`
	}
	var b strings.Builder
	b.WriteString(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\r':
			b.WriteString(`\r`)
		case string(r) == q:
			b.WriteString(`\` + q)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString(q)
	return b.String()
}

// normalizeIndex maps a possibly negative index onto [0, n).
func normalizeIndex(rt *Runtime, key Value, n int, what string) (int, error) {
	i, ok := asInt(key)
	if !ok {
		return 0, newError(ErrTypeError, "%s indices must be integers, not '%s'", what, typeName(key))
	}
	if i < 0 {
		i += int64(n)
	}
	if i < 0 || i >= int64(n) {
		return 0, newError(ErrIndex, "%s index out of range", what)
	}
	return int(i), nil
}

func strCompare(cmp func(a, b string) bool) BinaryFunc {
	return func(rt *Runtime, self, other Value) (Value, error) {
		a, ok1 := asStr(self)
		b, ok2 := asStr(other)
		if !ok1 || !ok2 {
			return NotImplemented, nil
		}
		return Bool(cmp(a, b)), nil
	}
}

func setupStrType() {
	defBinary(StrType, OpAdd, func(rt *Runtime, self, other Value) (Value, error) {
		a, _ := asStr(self)
		b, ok := asStr(other)
		if !ok {
			return NotImplemented, nil
		}
		return Str(a + b), nil
	})
	repeat := func(rt *Runtime, self, other Value) (Value, error) {
		s, _ := asStr(self)
		n, ok := asInt(other)
		if !ok {
			return NotImplemented, nil
		}
		if n <= 0 || s == "" {
			return Str(""), nil
		}
		if n > maxStrLen/int64(len(s)) {
			return nil, newError(ErrOverflow, "repeated string is too long")
		}
		return Str(strings.Repeat(s, int(n))), nil
	}
	defBinary(StrType, OpMul, repeat)
	defBinary(StrType, OpRMul, repeat)

	defBinary(StrType, OpLt, strCompare(func(a, b string) bool { return a < b }))
	defBinary(StrType, OpLe, strCompare(func(a, b string) bool { return a <= b }))
	defBinary(StrType, OpEq, strCompare(func(a, b string) bool { return a == b }))
	defBinary(StrType, OpNe, strCompare(func(a, b string) bool { return a != b }))
	defBinary(StrType, OpGt, strCompare(func(a, b string) bool { return a > b }))
	defBinary(StrType, OpGe, strCompare(func(a, b string) bool { return a >= b }))

	defUnary(StrType, OpIter, func(rt *Runtime, self Value) (Value, error) {
		s, _ := asStr(self)
		items := make([]Value, 0, len(s))
		for _, r := range s {
			items = append(items, Str(string(r)))
		}
		return newItemIterator(items), nil
	})
	defUnary(StrType, OpLen, func(rt *Runtime, self Value) (Value, error) {
		s, _ := asStr(self)
		return Int(utf8.RuneCountInString(s)), nil
	})
	defBinary(StrType, OpContains, func(rt *Runtime, self, item Value) (Value, error) {
		s, _ := asStr(self)
		sub, ok := asStr(item)
		if !ok {
			return nil, newError(ErrTypeError, "'in <string>' requires string as left operand, not %s", typeName(item))
		}
		return Bool(strings.Contains(s, sub)), nil
	})
	defBinary(StrType, OpGetItem, func(rt *Runtime, self, key Value) (Value, error) {
		s, _ := asStr(self)
		runes := []rune(s)
		i, err := normalizeIndex(rt, key, len(runes), "string")
		if err != nil {
			return nil, err
		}
		return Str(string(runes[i])), nil
	})
	defUnary(StrType, OpHash, func(rt *Runtime, self Value) (Value, error) {
		s, _ := asStr(self)
		return Int(hashString(s)), nil
	})
	defUnary(StrType, OpRepr, func(rt *Runtime, self Value) (Value, error) {
		s, _ := asStr(self)
		return Str(quoteStr(s)), nil
	})
	defUnary(StrType, OpStr, func(rt *Runtime, self Value) (Value, error) {
		s, _ := asStr(self)
		return Str(s), nil
	})

	defVar(StrType, OpNew, func(rt *Runtime, cls Value, args []Value) (Value, error) {
		var s Str
		switch len(args) {
		case 0:
		case 1:
			var err error
			if s, err = rt.ToStr(args[0]); err != nil {
				return nil, err
			}
		default:
			return nil, newError(ErrTypeError, "str() takes at most 1 argument (%d given)", len(args))
		}
		if cls == StrType {
			return s, nil
		}
		inst := NewInstance(cls.(*Type))
		inst.Payload = s
		return inst, nil
	})

	defMethod(StrType, "upper", func(rt *Runtime, self Value, args []Value) (Value, error) {
		s, _ := asStr(self)
		return Str(strings.ToUpper(s)), nil
	})
	defMethod(StrType, "lower", func(rt *Runtime, self Value, args []Value) (Value, error) {
		s, _ := asStr(self)
		return Str(strings.ToLower(s)), nil
	})
}
