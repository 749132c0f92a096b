package vm

import "fmt"

// PanicCode identifies the type of VM panic.
type PanicCode int

// Stable panic codes - do not change values.
const (
	PanicOutOfBounds       PanicCode = 1001 // VM1001: array/byte-array/string index out of bounds
	PanicWrongObjectType   PanicCode = 1002 // VM1002: operation applied to the wrong heap kind
	PanicStackOverflow     PanicCode = 1003 // VM1003: stack overflow the handler could not resolve
	PanicOutOfMemory       PanicCode = 1004 // VM1004: heap/stack growth failed
	PanicIntegerOverflow   PanicCode = 1005 // VM1005: smi/large-integer arithmetic overflowed 64 bits
	PanicNeuteredByteArray PanicCode = 1006 // VM1006: access to a neutered external byte array
	PanicUnimplemented     PanicCode = 1999 // VM1999: unimplemented primitive or opcode
)

// String returns the code as "VM1001" format.
func (c PanicCode) String() string {
	return fmt.Sprintf("VM%d", c)
}

// BacktraceFrame is one call frame in a panic's backtrace, identified by
// its position on the task's stack rather than by source location: the
// bytecode-level frame base and the bci it was about to resume at (the
// compiler and its debug-line tables are out of scope).
type BacktraceFrame struct {
	FrameBase int
	BCI       int
}

// VMError represents a runtime panic raised while executing bytecode.
type VMError struct {
	Code      PanicCode
	Message   string
	Backtrace []BacktraceFrame // frames from top (innermost) to bottom
}

// Error implements the error interface.
func (p *VMError) Error() string {
	return fmt.Sprintf("panic %s: %s", p.Code, p.Message)
}

// Format renders the panic with its backtrace, one frame per line.
func (p *VMError) Format() string {
	s := fmt.Sprintf("panic %s: %s\n", p.Code, p.Message)
	for i, frame := range p.Backtrace {
		s += fmt.Sprintf("  %d: frame@%d bci=%d\n", i, frame.FrameBase, frame.BCI)
	}
	return s
}

// errorBuilder helps construct VMError values, capturing the current
// task's call stack as a backtrace at the moment the error is made.
type errorBuilder struct {
	it *Interpreter
}

func (eb *errorBuilder) makeError(code PanicCode, msg string) *VMError {
	e := &VMError{Code: code, Message: msg}
	if eb.it == nil || eb.it.stack == nil || eb.it.program == nil {
		return e
	}
	eb.it.stack.FramesDo(eb.it.program, func(frameBase, bci int) bool {
		e.Backtrace = append(e.Backtrace, BacktraceFrame{FrameBase: frameBase, BCI: bci})
		return true
	})
	return e
}

func (eb *errorBuilder) outOfBounds(index, length int) *VMError {
	return eb.makeError(PanicOutOfBounds, fmt.Sprintf("index %d out of bounds for length %d", index, length))
}

func (eb *errorBuilder) wrongObjectType(expected ClassTag, got ClassTag) *VMError {
	return eb.makeError(PanicWrongObjectType, fmt.Sprintf("expected %s, got %s", expected, got))
}

func (eb *errorBuilder) stackOverflow() *VMError {
	return eb.makeError(PanicStackOverflow, "stack overflow")
}

func (eb *errorBuilder) outOfMemory() *VMError {
	return eb.makeError(PanicOutOfMemory, "out of memory")
}

func (eb *errorBuilder) integerOverflow(op string) *VMError {
	return eb.makeError(PanicIntegerOverflow, fmt.Sprintf("integer overflow in %s", op))
}

func (eb *errorBuilder) neuteredByteArray() *VMError {
	return eb.makeError(PanicNeuteredByteArray, "access to a neutered external byte array")
}

func (eb *errorBuilder) unimplemented(what string) *VMError {
	return eb.makeError(PanicUnimplemented, fmt.Sprintf("unimplemented: %s", what))
}
