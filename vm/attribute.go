package vm

import "errors"

// ---------------------------------------------------------------------------
// Entry points
// ---------------------------------------------------------------------------

// GetAttr reads obj.name through the type's __getattribute__ slot. If that
// fails with ErrAttributeNotFound and the type has a __getattr__ hook, the
// hook gets a chance; if it also reports not-found, the original error is
// returned. Other failures are returned unchanged.
func (rt *Runtime) GetAttr(obj Value, name string) (Value, error) {
	st := obj.Type().Slots()
	get, ok := st.Resolve(OpGetAttribute)
	if !ok {
		return nil, noAttributeSupport(obj, name)
	}
	v, err := get.Invoke(rt, obj, []Value{Str(name)})
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrAttributeNotFound) {
		return nil, err
	}
	hook, ok := st.Resolve(OpGetAttr)
	if !ok {
		return nil, err
	}
	hv, herr := hook.Invoke(rt, obj, []Value{Str(name)})
	switch {
	case herr != nil && errors.Is(herr, ErrAttributeNotFound):
		return nil, err
	case herr != nil:
		return nil, herr
	case hv == NotImplemented:
		return nil, err
	}
	return hv, nil
}

// SetAttr writes obj.name = v through the type's __setattr__ slot.
func (rt *Runtime) SetAttr(obj Value, name string, v Value) error {
	set, ok := obj.Type().Slots().Resolve(OpSetAttr)
	if !ok {
		return noAttributeSupport(obj, name)
	}
	_, err := set.Invoke(rt, obj, []Value{Str(name), v})
	return err
}

// DelAttr deletes obj.name through the type's __delattr__ slot.
func (rt *Runtime) DelAttr(obj Value, name string) error {
	del, ok := obj.Type().Slots().Resolve(OpDelAttr)
	if !ok {
		return noAttributeSupport(obj, name)
	}
	_, err := del.Invoke(rt, obj, []Value{Str(name)})
	return err
}

// HasAttr reports whether GetAttr succeeds. Errors other than
// ErrAttributeNotFound are returned.
func (rt *Runtime) HasAttr(obj Value, name string) (bool, error) {
	_, err := rt.GetAttr(obj, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrAttributeNotFound):
		return false, nil
	}
	return false, err
}

// ---------------------------------------------------------------------------
// Generic instance path (object.__getattribute__ and friends)
// ---------------------------------------------------------------------------

// GenericGetAttribute is the default attribute lookup for instances:
// a data descriptor on the type wins over the instance dictionary, which
// wins over a non-data descriptor or plain class attribute.
func (rt *Runtime) GenericGetAttribute(obj Value, name string) (Value, error) {
	t := obj.Type()
	attr, _ := t.Lookup(name)
	kind := PlainValue
	if attr != nil {
		kind = Classify(attr)
		if kind == DataDescriptor {
			return rt.dataDescrGet(attr, obj, t, name)
		}
	}
	if h, ok := obj.(DictHolder); ok {
		if d := h.InstanceDict(false); d != nil {
			if v, ok := d.Get(name); ok {
				return v, nil
			}
		}
	}
	switch {
	case attr == nil:
		return nil, noAttribute(obj, name)
	case kind == NonDataDescriptor:
		return rt.DescrGet(attr, obj, t)
	}
	return attr, nil
}

// GenericSetAttribute is the default attribute store for instances.
func (rt *Runtime) GenericSetAttribute(obj Value, name string, v Value) error {
	t := obj.Type()
	attr, _ := t.Lookup(name)
	if attr != nil && Classify(attr) == DataDescriptor {
		return rt.DescrSet(attr, obj, name, v)
	}
	var d Mapping
	if h, ok := obj.(DictHolder); ok {
		d = h.InstanceDict(true)
	}
	if d == nil {
		if attr != nil {
			return readonlyAttribute(obj, name)
		}
		return noAttributeSupport(obj, name)
	}
	return d.Put(name, v)
}

// GenericDelAttribute is the default attribute deletion for instances.
func (rt *Runtime) GenericDelAttribute(obj Value, name string) error {
	t := obj.Type()
	attr, _ := t.Lookup(name)
	if attr != nil && Classify(attr) == DataDescriptor {
		return rt.DescrDelete(attr, obj, name)
	}
	h, ok := obj.(DictHolder)
	if !ok || !t.HasInstanceDict() {
		if attr != nil {
			return readonlyAttribute(obj, name)
		}
		return noAttributeSupport(obj, name)
	}
	d := h.InstanceDict(false)
	if d == nil {
		return noAttribute(obj, name)
	}
	if err := d.Remove(name); err != nil {
		if errors.Is(err, ErrKey) {
			return noAttribute(obj, name)
		}
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Type-object path (type.__getattribute__ and friends)
// ---------------------------------------------------------------------------

// typeGetAttribute looks name up on a type. The metatype's data
// descriptors win; then the type's own MRO, bound with no instance; then
// the metatype's other attributes.
func (rt *Runtime) typeGetAttribute(t *Type, name string) (Value, error) {
	meta := t.Type()
	metaAttr, _ := meta.Lookup(name)
	metaKind := PlainValue
	if metaAttr != nil {
		metaKind = Classify(metaAttr)
		if metaKind == DataDescriptor {
			return rt.dataDescrGet(metaAttr, t, meta, name)
		}
	}
	if attr, _ := t.Lookup(name); attr != nil {
		return rt.DescrGet(attr, nil, t)
	}
	switch {
	case metaAttr == nil:
		return nil, noAttribute(t, name)
	case metaKind == NonDataDescriptor:
		return rt.DescrGet(metaAttr, t, meta)
	}
	return metaAttr, nil
}

// typeSetAttribute stores into a mutable type's dictionary and, for a
// special method name, republishes the slot on the type and the subtypes
// that inherit it. Nothing changes when the type is immutable.
func (rt *Runtime) typeSetAttribute(t *Type, name string, v Value) error {
	if !t.IsMutable() {
		return cantSetAttributes(t)
	}
	meta := t.Type()
	if metaAttr, _ := meta.Lookup(name); metaAttr != nil && Classify(metaAttr) == DataDescriptor {
		return rt.DescrSet(metaAttr, t, name, v)
	}

	hierarchyMu.Lock()
	defer hierarchyMu.Unlock()
	t.dict.Put(name, v)
	if op, ok := LookupOp(name); ok {
		rt.updateSlot(t, op)
	}
	return nil
}

// typeDelAttribute removes name from a mutable type's dictionary.
func (rt *Runtime) typeDelAttribute(t *Type, name string) error {
	if !t.IsMutable() {
		return cantSetAttributes(t)
	}
	meta := t.Type()
	if metaAttr, _ := meta.Lookup(name); metaAttr != nil && Classify(metaAttr) == DataDescriptor {
		return rt.DescrDelete(metaAttr, t, name)
	}

	hierarchyMu.Lock()
	defer hierarchyMu.Unlock()
	if err := t.dict.Remove(name); err != nil {
		return noAttribute(t, name)
	}
	if op, ok := LookupOp(name); ok {
		rt.updateSlot(t, op)
	}
	return nil
}

// attrName extracts the name argument of an attribute slot.
func attrName(v Value) (string, error) {
	s, ok := v.(Str)
	if !ok {
		return "", newError(ErrTypeError, "attribute name must be string, not '%s'", typeName(v))
	}
	return string(s), nil
}
