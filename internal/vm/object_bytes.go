package vm

// ByteContent resolves v to a read-only byte slice, recursing through the
// reserved-shape instances (byte-array slice, string slice, copy-on-write
// byte array) so callers never need to special-case them (spec §4.2,
// "byte-content extraction"). ok is false if v is not byte-content-bearing
// at all, including an externally-backed byte array tagged StructTag —
// those bytes are a foreign struct's raw memory, not wisp byte content.
func ByteContent(h *Heap, v Value) (data []byte, ok bool) {
	if !v.IsHeapObject() && !v.IsMarked() {
		return nil, false
	}
	o := h.Get(v)
	switch {
	case o.class == ClassByteArray:
		if o.baExternal != nil && o.baExternal.tag != RawByteTag {
			return nil, false
		}
		return o.ByteArrayBytes(), true
	case o.class == ClassString:
		return o.StringBytes(), true
	case o.IsByteArraySlice(), o.IsStringSlice():
		backing := o.instanceFields[0]
		from := mustSmiToIndex(o.instanceFields[1])
		to := mustSmiToIndex(o.instanceFields[2])
		base, ok := ByteContent(h, backing)
		if !ok || from < 0 || to > len(base) || from > to {
			return nil, false
		}
		return base[from:to], true
	case o.IsCowByteArray():
		backing := o.instanceFields[0]
		return ByteContent(h, backing)
	default:
		return nil, false
	}
}

// MutableByteContent is ByteContent's read-write counterpart. It refuses
// to hand out a mutable view of a slice's backing store beyond its own
// bounds. A copy-on-write byte array whose mutable flag is not yet set is
// materialized into a private copy, with its backing pointer and mutable
// flag rewritten, the first time a write is requested (spec §4.2's
// "copy-on-write byte array instance ... materializes a private copy on
// first mutation").
func MutableByteContent(h *Heap, v Value) (data []byte, ok bool) {
	if !v.IsHeapObject() {
		return nil, false
	}
	o := h.Get(v)
	switch {
	case o.class == ClassByteArray:
		if o.baExternal != nil && o.baExternal.tag != RawByteTag {
			return nil, false
		}
		return o.ByteArrayBytes(), true
	case o.IsByteArraySlice():
		backing := o.instanceFields[0]
		from := mustSmiToIndex(o.instanceFields[1])
		to := mustSmiToIndex(o.instanceFields[2])
		base, ok := MutableByteContent(h, backing)
		if !ok || from < 0 || to > len(base) || from > to {
			return nil, false
		}
		return base[from:to], true
	case o.IsCowByteArray():
		return materializeCow(h, v)
	default:
		return nil, false
	}
}

// materializeCow returns a mutable slice for a copy-on-write byte array,
// copying the backing content into a fresh internal byte array and
// rewriting the instance's backing/mutable slots the first time it is
// called, so subsequent calls are O(1).
func materializeCow(h *Heap, v Value) ([]byte, bool) {
	o := h.Get(v)
	mutable := o.instanceFields[1].SmiValue() != 0
	backing := o.instanceFields[0]
	if mutable {
		return MutableByteContent(h, backing)
	}
	src, ok := ByteContent(h, backing)
	if !ok {
		return nil, false
	}
	owned := make([]byte, len(src))
	copy(owned, src)
	newBacking := h.AllocByteArray(len(owned))
	copy(h.Get(newBacking).baInternal, owned)
	one, _ := FromInt(1)
	o.instanceFields[0] = newBacking
	o.instanceFields[1] = one
	return h.Get(newBacking).baInternal, true
}
