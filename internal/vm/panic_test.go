package vm

import "testing"

func TestVMErrorFormatWithBacktrace(t *testing.T) {
	err := &VMError{
		Code:    PanicOutOfBounds,
		Message: "index 5 out of bounds for length 3",
		Backtrace: []BacktraceFrame{
			{FrameBase: 10, BCI: 2},
			{FrameBase: 20, BCI: 7},
		},
	}
	formatted := err.Format()
	if formatted == "" {
		t.Fatalf("Format() returned an empty string")
	}
	if err.Error() != "panic VM1001: index 5 out of bounds for length 3" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestPanicCodeString(t *testing.T) {
	if got := PanicStackOverflow.String(); got != "VM1003" {
		t.Fatalf("PanicStackOverflow.String() = %q, want VM1003", got)
	}
}

func TestErrorBuilderCapturesBacktrace(t *testing.T) {
	program := NewProgram(make([]byte, 64), nil)
	heap := NewHeap(program)
	id, _ := FromInt(1)
	task := heap.AllocTask(id)
	stack := heap.AllocStack()
	heap.Get(task).SetTaskStack(stack)

	it := NewInterpreter(heap, program)
	it.Activate(heap.Get(task))

	// Push one synthetic call frame: marker then return address.
	ret := program.ReturnAddress(3)
	it.stack.Push(ret)
	it.stack.Push(program.FrameMarker())
	it.sp = it.stack.StackTop()

	err := it.eb.outOfBounds(9, 4)
	if err.Code != PanicOutOfBounds {
		t.Fatalf("outOfBounds code = %v, want PanicOutOfBounds", err.Code)
	}
	if len(err.Backtrace) != 1 || err.Backtrace[0].BCI != 3 {
		t.Fatalf("Backtrace = %+v, want one frame at bci 3", err.Backtrace)
	}
}

func TestErrorBuilderWithoutInterpreterStillBuilds(t *testing.T) {
	eb := &errorBuilder{}
	err := eb.unimplemented("opXYZ")
	if err.Code != PanicUnimplemented {
		t.Fatalf("unimplemented code = %v, want PanicUnimplemented", err.Code)
	}
	if len(err.Backtrace) != 0 {
		t.Fatalf("Backtrace = %+v, want empty when no interpreter is attached", err.Backtrace)
	}
}
