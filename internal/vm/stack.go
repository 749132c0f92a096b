package vm

import "fmt"

// Stack-as-heap-object constants, carried over from original_source/ where
// spec.md leaves exact values unspecified (see SPEC_FULL.md §4).
const (
	// BlockSalt disambiguates a block reference (a base-relative smi
	// pointing into this same stack) from an ordinary integer the program
	// happens to be holding. A block reference is encoded as
	// ((slot-base)<<BlockSaltBits | BlockSalt), so only values produced by
	// encodeBlock ever decode back to a valid slot.
	BlockSalt     = 0x01020304
	BlockSaltBits = 32

	// FrameSize is the number of words every call frame's fixed header
	// occupies: the frame marker (spec §3.4) and the return address.
	FrameSize = 2

	// OverflowHeadroom is the number of extra words kept free above the
	// interpreter's limit register (Run checks for overflow as soon as
	// sp < limit+OverflowHeadroom) so a try-finally unwind always has room to run without
	// re-triggering a stack-overflow check mid-unwind.
	OverflowHeadroom = 64

	// InitialStackLength is the number of word slots a freshly allocated
	// Stack object starts with.
	InitialStackLength = 64

	// Link-frame slot offsets relative to a try-frame's base, used when
	// unwinding through a try/finally.
	LinkReasonSlot = 0
	LinkTargetSlot = 1
	LinkResultSlot = 2

	// UnwindReasonWhenThrowingException is the sentinel stored in the
	// reason slot of a link frame when unwinding is driven by an
	// exception rather than a normal return, break, or continue.
	UnwindReasonWhenThrowingException = -2
)

// stackData is the payload of a ClassStack object: a header plus a flat
// array of word slots, growable the way the original's Stack::resize
// works (a fresh, larger stackData, with the live region copied over).
type stackData struct {
	slots          []Value
	top            int // index of the most recently pushed slot, len(slots) if empty (grows downward); -1 while transferred to an interpreter
	tryTop         int // index of the innermost active try-frame, or len(slots) if none
	inStackOverflow bool
}

// NewStack allocates a Stack heap object with InitialStackLength slots,
// empty (top and tryTop both at the end, i.e. nothing pushed yet).
func NewStack() Object {
	o := newObjectHeader(ClassStack, 0)
	o.stack = newStackData(InitialStackLength)
	return o
}

func newStackData(length int) *stackData {
	zero, _ := FromInt(0)
	slots := make([]Value, length)
	for i := range slots {
		slots[i] = zero
	}
	return &stackData{slots: slots, top: length, tryTop: length}
}

func (s *stackData) byteSize() int {
	const wordSize = 8
	return 4*wordSize + len(s.slots)*wordSize
}

func (o *Object) checkStack() *stackData {
	if o.class != ClassStack {
		panic("vm: operation requires a Stack object")
	}
	return o.stack
}

// StackLength is the total number of word slots the stack currently has room
// for (not the number currently in use).
func (o *Object) StackLength() int { return len(o.checkStack().slots) }

// StackTop returns the index of the most recently pushed slot, len(slots)
// if the stack is empty, or -1 while the stack is transferred to an
// interpreter. The interpreter's sp register mirrors this between
// activations (spec §5, "store/reload the stack").
func (o *Object) StackTop() int { return o.checkStack().top }

func (o *Object) SetStackTop(top int) {
	s := o.checkStack()
	if top < 0 || top > len(s.slots) {
		panic(fmt.Sprintf("vm: stack top %d out of range [0,%d]", top, len(s.slots)))
	}
	s.top = top
}

func (o *Object) StackTryTop() int { return o.checkStack().tryTop }

func (o *Object) SetStackTryTop(tryTop int) { o.checkStack().tryTop = tryTop }

func (o *Object) StackInStackOverflow() bool { return o.checkStack().inStackOverflow }

func (o *Object) SetStackInStackOverflow(v bool) { o.checkStack().inStackOverflow = v }

// StackAt and StackAtPut index the stack's slots directly, in absolute slot
// coordinates (0 is the lowest slot, len(slots)-1 the highest).
func (o *Object) StackAt(i int) Value {
	s := o.checkStack()
	return s.slots[i]
}

func (o *Object) StackAtPut(i int, v Value) {
	s := o.checkStack()
	s.slots[i] = v
}

// Resize grows (the scavenger and the stack-overflow handler never
// shrink) the stack to newLength slots, preserving the live region
// [top, len(slots)) by sliding it to the top of the new, larger array —
// mirroring Stack::resize's "grow downward" layout.
func (o *Object) Resize(newLength int) {
	s := o.checkStack()
	if newLength < len(s.slots) {
		panic("vm: Resize cannot shrink a stack")
	}
	grown := newStackData(newLength)
	delta := newLength - len(s.slots)
	copy(grown.slots[s.top+delta:], s.slots[s.top:])
	grown.top = s.top + delta
	grown.tryTop = s.tryTop + delta
	grown.inStackOverflow = s.inStackOverflow
	*s = *grown
}

// encodeBlock and decodeBlock convert between an absolute slot index and
// the base-relative, salted smi a block literal's Value actually holds
// (spec §3.4's "block references ... base-relative smis").
func encodeBlock(base, slot int) Value {
	rel := int64(slot - base)
	packed := (rel << BlockSaltBits) | int64(BlockSalt)
	v, err := FromInt(packed)
	if err != nil {
		panic(err)
	}
	return v
}

// decodeBlock reports whether v is a block reference relative to base
// and, if so, the absolute slot it designates.
func decodeBlock(v Value, base int) (slot int, ok bool) {
	if !v.IsSmi() {
		return 0, false
	}
	n := v.SmiValue()
	if n&((1<<BlockSaltBits)-1) != BlockSalt {
		return 0, false
	}
	rel := n >> BlockSaltBits
	return base + int(rel), true
}

// FrameVisitor is called once per activation record frames_do walks over,
// innermost first. absoluteBCI is the return bci encoded in the frame;
// returning false stops the walk early, mirroring the original
// FrameCallback::do_frame early-stop contract (SPEC_FULL.md §4).
type FrameVisitor func(frameBase int, absoluteBCI int) bool

// FramesDo walks the call frames between top and tryTop (or the end of
// the stack, if there is no active try-frame), using program to decode
// each frame's stored return address back into a bci.
func (o *Object) FramesDo(program *Program, visit FrameVisitor) {
	s := o.checkStack()
	bound := s.tryTop
	if bound > len(s.slots) {
		bound = len(s.slots)
	}
	frameBase := s.top
	for frameBase+FrameSize <= bound {
		marker := s.slots[frameBase]
		if marker != program.FrameMarker() {
			break
		}
		ret := s.slots[frameBase+1]
		bci := program.BCIFromReturnAddress(ret)
		if !visit(frameBase, bci) {
			return
		}
		frameBase += FrameSize
	}
}

// RootsDo calls visit once for every live slot that is not a frame
// marker or return address (i.e. every slot a moving GC must be allowed
// to relocate). It does not special-case block references: a block
// reference's payload is a salted smi, which is never mistaken for a
// heap pointer by the scavenger in the first place.
func (o *Object) RootsDo(program *Program, visit func(*Value)) {
	s := o.checkStack()
	for i := s.top; i < len(s.slots); i++ {
		if program != nil && program.IsInBytecodeRegion(s.slots[i]) {
			continue
		}
		visit(&s.slots[i])
	}
}

// Push and Pop operate at the current top, growing the live region
// downward the way the interpreter's sp register does.
func (o *Object) Push(v Value) {
	s := o.checkStack()
	if s.top == 0 {
		panic("vm: stack overflow in Push (interpreter must check_stack_overflow first)")
	}
	s.top--
	s.slots[s.top] = v
}

func (o *Object) Pop() Value {
	s := o.checkStack()
	if s.top >= len(s.slots) {
		panic("vm: stack underflow in Pop")
	}
	v := s.slots[s.top]
	s.top++
	return v
}

// TransferToInterpreter and TransferFromInterpreter are the two halves of
// the store/reload cooperation contract an Interpreter uses when
// switching which task's stack its registers mirror (spec §5). The
// interpreter's sp/try_sp registers are simply slot indices into the
// Stack object currently installed, so "transfer" is bookkeeping, not a
// copy.
func (o *Object) TransferToInterpreter(it *Interpreter) {
	s := o.checkStack()
	it.sp = s.top
	it.trySP = s.tryTop
	it.limit = 0
	it.stack = o
	// The Stack object's own top is a stale sentinel until
	// TransferFromInterpreter syncs it back: while checked out, the
	// interpreter's sp/trySP are the only valid registers, and anything
	// that reads s.top directly (a root walk over a stack that was never
	// synced back before GC, say) should fail loudly rather than scan
	// from wherever top last pointed.
	s.top = -1
}

func (o *Object) TransferFromInterpreter(it *Interpreter) {
	s := o.checkStack()
	s.top = it.sp
	s.tryTop = it.trySP
}

// CopyTo duplicates the live region of o into a freshly allocated stack
// of at least minLength slots, leaving o itself unchanged.
func (o *Object) CopyTo(minLength int) Object {
	s := o.checkStack()
	length := minLength
	if length < len(s.slots) {
		length = len(s.slots)
	}
	dst := NewStack()
	if length != InitialStackLength {
		dst.Resize(length)
	}
	ds := dst.checkStack()
	live := len(s.slots) - s.top
	copy(ds.slots[len(ds.slots)-live:], s.slots[s.top:])
	ds.top = len(ds.slots) - live
	ds.tryTop = ds.top + (s.tryTop - s.top)
	ds.inStackOverflow = s.inStackOverflow
	return dst
}
