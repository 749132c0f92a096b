package vm

import "fmt"

// ClassTag is the small enumeration over heap object kinds stored in every
// object header (spec §3.2). The ordering matches the original VM's
// TypeTag enum exactly, for snapshot-format fidelity (see SPEC_FULL.md §4).
type ClassTag uint8

const (
	ClassArray ClassTag = iota
	ClassString
	ClassInstance
	ClassOddball
	ClassDouble
	ClassByteArray
	ClassLargeInteger
	ClassStack
	ClassTask
)

func (t ClassTag) String() string {
	switch t {
	case ClassArray:
		return "array"
	case ClassString:
		return "string"
	case ClassInstance:
		return "instance"
	case ClassOddball:
		return "oddball"
	case ClassDouble:
		return "double"
	case ClassByteArray:
		return "byte_array"
	case ClassLargeInteger:
		return "large_integer"
	case ClassStack:
		return "stack"
	case ClassTask:
		return "task"
	default:
		return fmt.Sprintf("ClassTag(%d)", t)
	}
}

// Header bit layout within the one-word object header, matching the
// original's CLASS_TAG_BIT_SIZE/CLASS_ID_BIT_SIZE split.
const (
	ClassTagBits   = 4
	ClassTagOffset = 0
	ClassTagMask   = (1 << ClassTagBits) - 1

	ClassIDBits   = 10
	ClassIDOffset = ClassTagOffset + ClassTagBits
	ClassIDMask   = (1 << ClassIDBits) - 1
)

// packHeader packs a ClassTag and a program-wide class id into one word.
func packHeader(tag ClassTag, classID uint32) uint64 {
	return uint64(tag)&ClassTagMask | (uint64(classID)&ClassIDMask)<<ClassIDOffset
}

func unpackHeaderTag(h uint64) ClassTag {
	return ClassTag((h >> ClassTagOffset) & ClassTagMask)
}

func unpackHeaderClassID(h uint64) uint32 {
	return uint32((h >> ClassIDOffset) & ClassIDMask)
}

// HeaderCell models the header word's two possible interpretations: a
// normal class header, or — only during a scavenge — a forwarding pointer
// left behind by the GC for an object that has already been relocated. The
// two cases are kept as an explicit Go sum type (design notes §9) rather
// than a raw word so that code outside the collector cannot accidentally
// treat a forwarding pointer as a class tag.
type HeaderCell struct {
	Forwarding bool
	Forward    Value // valid iff Forwarding
	Tag        ClassTag
	ClassID    uint32
}

// asWord encodes the non-forwarding case back into a header word; callers
// must not call this while Forwarding is set.
func (h HeaderCell) asWord() uint64 {
	if h.Forwarding {
		panic("vm: asWord called on a forwarding header cell")
	}
	return packHeader(h.Tag, h.ClassID)
}

// header returns the class header, asserting that no forwarding pointer is
// currently installed. This is the accessor ordinary (non-GC) code uses.
func (o *Object) header() HeaderCell {
	if o.fwd.Forwarding {
		panic("vm: header() called on an object with a forwarding pointer installed")
	}
	return HeaderCell{Tag: o.class, ClassID: o.classID}
}

// headerDuringGC returns the header cell whichever of the two variants is
// currently installed, for use only by the scavenger (spec §3.2: "callers
// that need the header during GC use a distinct accessor that does not
// assert smi-ness").
func (o *Object) headerDuringGC() HeaderCell {
	if o.fwd.Forwarding {
		return o.fwd
	}
	return HeaderCell{Tag: o.class, ClassID: o.classID}
}

// installForward replaces the object's header with a forwarding pointer;
// only the scavenger calls this.
func (o *Object) installForward(to Value) {
	o.fwd = HeaderCell{Forwarding: true, Forward: to}
}

// clearForward restores the ordinary class header, used once a scavenge
// cycle completes and forwarding pointers are no longer needed.
func (o *Object) clearForward() {
	o.fwd = HeaderCell{}
}
