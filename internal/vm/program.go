package vm

// Program is the bytecode region and per-class layout table the
// interpreter executes against. The bytecode dispatch table and the
// compiler that produces Code are out of scope (spec §1); Program is the
// minimal black-box surface the runtime needs from them: a contiguous
// address range to recognize frame markers and return addresses, and a
// size table so Instance objects can compute their own size.
type Program struct {
	Code []byte

	// ClassSizes maps a class id to the byte size of an instance of that
	// class, as the (out-of-scope) compiler would have recorded it.
	ClassSizes map[uint32]int

	// base is the virtual address the bytecode region starts at. Any stack
	// slot whose smi value falls in [base, base+len(Code)] (inclusive:
	// return addresses start one past the frame marker) is a frame
	// marker or a return address, never a heap pointer or ordinary data
	// (spec §3.4, invariant 4).
	base int64
}

// defaultBytecodeBase is chosen far outside the range of smis a running
// program is likely to compute, so that a real bytecode address is never
// mistaken for ordinary integer data during a roots_do walk.
const defaultBytecodeBase = int64(1) << 40

// NewProgram wraps a bytecode blob for the interpreter to run against.
func NewProgram(code []byte, classSizes map[uint32]int) *Program {
	if classSizes == nil {
		classSizes = map[uint32]int{}
	}
	return &Program{Code: code, ClassSizes: classSizes, base: defaultBytecodeBase}
}

// BytecodeBegin and BytecodeEnd delimit the program's bytecode region as
// smi-encoded Values (never as heap pointers — frame markers and return
// addresses are program-relative, not heap-relative).
func (p *Program) BytecodeBegin() Value {
	v, _ := FromInt(p.base)
	return v
}

func (p *Program) BytecodeEnd() Value {
	v, _ := FromInt(p.base + int64(len(p.Code)))
	return v
}

// FrameMarker is the single, distinguished constant pushed as the first
// word of every call frame (spec §3.4, §6 FRAME_SIZE=2). It is simply the
// start of the bytecode region: never a valid return bci on its own, and
// always recognizable by frames_do.
func (p *Program) FrameMarker() Value {
	return p.BytecodeBegin()
}

// ReturnAddress encodes a return bytecode index (bci) as a Value pointing
// into the bytecode region.
func (p *Program) ReturnAddress(bci int) Value {
	v, _ := FromInt(p.base + 1 + int64(bci))
	return v
}

// BCIFromReturnAddress recovers the bci a ReturnAddress was built from.
func (p *Program) BCIFromReturnAddress(v Value) int {
	return int(v.SmiValue() - p.base - 1)
}

// IsInBytecodeRegion reports whether v's numeric value lies within
// [BytecodeBegin, BytecodeEnd], both ends included since ReturnAddress
// places bci len(Code)-1 at BytecodeEnd — i.e. whether it is a frame
// marker or a return address rather than heap data. Root walkers use this to skip
// program-relative words (spec §3.4, invariant 4).
func (p *Program) IsInBytecodeRegion(v Value) bool {
	if !v.IsSmi() {
		return false
	}
	n := v.SmiValue()
	return n >= p.base && n < p.base+int64(len(p.Code))+1
}

// ClassSize returns the instance size (in bytes, header included) the
// compiler recorded for classID, or 0 if unknown.
func (p *Program) ClassSize(classID uint32) int {
	if p == nil {
		return 0
	}
	return p.ClassSizes[classID]
}
