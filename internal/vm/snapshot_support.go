package vm

// This file is the narrow, exported two-phase allocation surface the
// internal/snapshot package needs and nothing else should use: a
// snapshot's object graph can be cyclic (an instance holding a task
// holding a stack holding values that reference the instance again), so
// the reader must reserve every object's header up front before any
// payload referencing another object can be filled in. Ordinary VM code
// never needs this — every other allocation path builds a complete
// object in one call (object.go).

// AllocPlaceholder reserves a heap slot with the given header installed
// but no payload, returning the Value future references can point at
// immediately.
func (h *Heap) AllocPlaceholder(tag ClassTag, classID uint32) Value {
	return h.alloc(newObjectHeader(tag, classID))
}

// SetArray installs elems as a, previously placeholder, ClassArray
// object's payload.
func (o *Object) SetArray(elems []Value) {
	o.requireClass(ClassArray)
	o.arrayElems = elems
}

// SetByteArrayContent installs internal byte content.
func (o *Object) SetByteArrayContent(data []byte) {
	o.requireClass(ClassByteArray)
	o.baInternal = data
	o.baExternal = nil
}

// SetStringContent installs internal string content and resets the
// cached hash so it is recomputed on next use.
func (o *Object) SetStringContent(data []byte) {
	o.requireClass(ClassString)
	o.strBytes = data
	o.strExternal = nil
	o.strHash = unhashedSentinel
}

func (o *Object) SetDoubleValue(v float64) {
	o.requireClass(ClassDouble)
	o.doubleVal = v
}

func (o *Object) SetLargeIntegerValue(v int64) {
	o.requireClass(ClassLargeInteger)
	o.largeVal = v
}

func (o *Object) SetOddballOrdinal(ordinal int) {
	o.requireClass(ClassOddball)
	o.oddballOrdinal = ordinal
}

func (o *Object) SetInstanceFields(fields []Value) {
	o.requireClass(ClassInstance)
	o.instanceFields = fields
}

func (o *Object) SetTaskFields(stack, id, result Value) {
	o.requireClass(ClassTask)
	o.taskStack = stack
	o.taskID = id
	o.taskResult = result
}

// SetStackContents installs a placeholder ClassStack object's slots,
// replacing the InitialStackLength default NewStack would have used.
func (o *Object) SetStackContents(slots []Value, top, tryTop int, inOverflow bool) {
	o.requireClass(ClassStack)
	o.stack = &stackData{slots: slots, top: top, tryTop: tryTop, inStackOverflow: inOverflow}
}

func (o *Object) requireClass(want ClassTag) {
	if o.class != want {
		panic("vm: snapshot setter called with wrong class tag: have " + o.class.String() + ", want " + want.String())
	}
}
