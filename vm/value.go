package vm

// Value is anything the object model can dispatch on. Every value knows
// its current type; all behaviour is reached through that type's slots.
type Value interface {
	Type() *Type
}

func typeName(v Value) string {
	if v == nil {
		return "NULL"
	}
	return v.Type().name
}

// IsInstance reports whether v's type is t or a subtype of t.
func IsInstance(v Value, t *Type) bool {
	return v.Type().IsSubtype(t)
}

// identical is the "is" comparison. All Value implementations are
// comparable (scalars or pointers).
func identical(v, w Value) bool {
	return v == w
}
