package vm

// RootVisitor is how a caller of Scavenge exposes its external roots — a
// callback that itself calls visit once per Value slot the GC must be
// allowed to relocate. The interpreter's implementation walks its
// currently installed stack via Object.RootsDo plus any global slots;
// tests can pass a trivial closure over a handful of *Value pointers.
type RootVisitor func(visit func(*Value))

// Scavenger performs a full copying collection of a Heap: every object
// reachable from roots is copied into a fresh, compacted table; every
// pointer to a relocated object — in roots, and in every other surviving
// object — is rewritten to the object's new location. Objects not
// reachable from roots are dropped.
//
// This is a genuine two-space copy, not a simulation: the old table is
// discarded once relocation completes, exactly as spec §5 describes. The
// one adaptation forced by Go's lack of raw pointer arithmetic is that
// "moving" an object means giving it a new table index rather than a new
// memory address (see DESIGN.md); a forwarding pointer left on the old
// Object plays exactly the role tag.go's HeaderCell already models.
type Scavenger struct {
	program *Program
}

func NewScavenger(program *Program) *Scavenger {
	return &Scavenger{program: program}
}

// Collect runs one scavenge cycle over h, using roots to discover the
// initial live set. It returns the number of objects that survived.
func (s *Scavenger) Collect(h *Heap, roots RootVisitor) int {
	old := h.objects
	next := make([]Object, 1) // index 0 stays reserved
	var worklist []uint64     // indices into next awaiting PointersDo

	forward := func(v *Value) {
		if v == nil {
			return
		}
		switch {
		case v.IsHeapObject():
			*v = s.relocate(old, &next, &worklist, *v, false)
		case v.IsMarked():
			*v = s.relocate(old, &next, &worklist, *v, true)
		}
	}

	roots(forward)

	for len(worklist) > 0 {
		idx := worklist[0]
		worklist = worklist[1:]
		obj := &next[idx]
		switch obj.class {
		case ClassStack:
			obj.RootsDo(s.program, forward)
		default:
			visitObjectPointers(obj, forward)
		}
	}

	h.objects = next
	for i := range old {
		old[i].clearForward()
	}
	return len(next) - 1
}

// relocate copies the object v refers to into next (if not already
// copied), leaving a forwarding pointer behind on the old table, and
// returns the up-to-date Value — re-tagged Marked if the caller's
// reference was marked.
func (s *Scavenger) relocate(old []Object, next *[]Object, worklist *[]uint64, v Value, marked bool) Value {
	var idx uint64
	if marked {
		idx = Unmark(v).heapIndex()
	} else {
		idx = v.heapIndex()
	}
	src := &old[idx]
	if !src.fwd.Forwarding {
		copied := *src
		copied.fwd = HeaderCell{}
		newIdx := uint64(len(*next))
		*next = append(*next, copied)
		newVal := valueFromHeapIndex(newIdx)
		src.installForward(newVal)
		*worklist = append(*worklist, newIdx)
	}
	target := src.fwd.Forward
	if marked {
		return Mark(target)
	}
	return target
}

// visitObjectPointers is PointersDo's index-free twin, used while a
// collection is in flight and the object is not yet (or no longer)
// addressable through a stable Heap index.
func visitObjectPointers(o *Object, visit func(*Value)) {
	switch o.class {
	case ClassArray:
		for i := range o.arrayElems {
			visit(&o.arrayElems[i])
		}
	case ClassInstance:
		for i := range o.instanceFields {
			visit(&o.instanceFields[i])
		}
	case ClassTask:
		visit(&o.taskStack)
		visit(&o.taskID)
		visit(&o.taskResult)
	case ClassByteArray, ClassString, ClassDouble, ClassLargeInteger, ClassOddball:
	default:
	}
}
