package vm

// Layout is the native memory shape instances of a type require.
//
// Layouts form a tree rooted at the layout of object. A type may extend
// at most one layout, so even under multiple inheritance there is a single
// chain of layouts from any type back to the root. Types that add no
// fields share the layout of their best base.
type Layout struct {
	name   string
	parent *Layout
	fields []string // Fields introduced by this layout (__slots__)
	offset int      // Number of fields inherited from parent layouts
}

// rootLayout is the layout of object: no fields, no dictionary.
var rootLayout = &Layout{name: "object"}

// NewLayout creates a layout extending parent with extra named fields.
// A nil parent means the root layout.
func NewLayout(name string, parent *Layout, fields ...string) *Layout {
	if parent == nil {
		parent = rootLayout
	}
	return &Layout{
		name:   name,
		parent: parent,
		fields: append([]string(nil), fields...),
		offset: parent.NumFields(),
	}
}

// Name returns the name of the type that introduced this layout.
func (l *Layout) Name() string { return l.name }

// Parent returns the layout this one extends, nil for the root.
func (l *Layout) Parent() *Layout { return l.parent }

// Extends reports whether l is other or a descendant of other.
func (l *Layout) Extends(other *Layout) bool {
	for cur := l; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}

// NumFields returns the total number of fields, inherited ones included.
func (l *Layout) NumFields() int {
	return l.offset + len(l.fields)
}

// FieldIndex returns the storage index of a field, or -1.
func (l *Layout) FieldIndex(name string) int {
	for cur := l; cur != nil; cur = cur.parent {
		for i, f := range cur.fields {
			if f == name {
				return cur.offset + i
			}
		}
	}
	return -1
}

// Fields returns all field names in storage order.
func (l *Layout) Fields() []string {
	if l.parent == nil {
		return append([]string(nil), l.fields...)
	}
	return append(l.parent.Fields(), l.fields...)
}

// Depth returns the distance from the root layout.
func (l *Layout) Depth() int {
	d := 0
	for cur := l.parent; cur != nil; cur = cur.parent {
		d++
	}
	return d
}

func (l *Layout) String() string { return l.name }
