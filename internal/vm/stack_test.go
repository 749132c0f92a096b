package vm

import "testing"

func TestStackPushPop(t *testing.T) {
	o := NewStack()
	before := o.StackTop()
	v, _ := FromInt(42)
	o.Push(v)
	if o.StackTop() != before-1 {
		t.Fatalf("StackTop() after Push = %d, want %d", o.StackTop(), before-1)
	}
	if got := o.Pop(); got != v {
		t.Fatalf("Pop() = %v, want %v", got, v)
	}
	if o.StackTop() != before {
		t.Fatalf("StackTop() after Pop = %d, want %d", o.StackTop(), before)
	}
}

func TestStackPopUnderflowPanics(t *testing.T) {
	o := NewStack()
	defer func() {
		if recover() == nil {
			t.Fatalf("Pop on an empty stack: expected panic, got none")
		}
	}()
	o.Pop()
}

func TestStackAtPut(t *testing.T) {
	o := NewStack()
	v, _ := FromInt(7)
	o.StackAtPut(0, v)
	if got := o.StackAt(0); got != v {
		t.Fatalf("StackAt(0) = %v, want %v", got, v)
	}
}

func TestStackResizeGrowsDownwardPreservingLiveRegion(t *testing.T) {
	o := NewStack()
	one, _ := FromInt(1)
	two, _ := FromInt(2)
	o.Push(one)
	o.Push(two)

	o.Resize(InitialStackLength * 2)

	if o.StackLength() != InitialStackLength*2 {
		t.Fatalf("StackLength() after Resize = %d, want %d", o.StackLength(), InitialStackLength*2)
	}
	if got := o.Pop(); got != two {
		t.Fatalf("Pop() after Resize = %v, want %v", got, two)
	}
	if got := o.Pop(); got != one {
		t.Fatalf("Pop() after Resize = %v, want %v", got, one)
	}
}

func TestStackResizeShrinkPanics(t *testing.T) {
	o := NewStack()
	defer func() {
		if recover() == nil {
			t.Fatalf("Resize to a smaller length: expected panic, got none")
		}
	}()
	o.Resize(InitialStackLength / 2)
}

func TestEncodeDecodeBlock(t *testing.T) {
	base := 10
	slot := 13
	v := encodeBlock(base, slot)
	if !v.IsSmi() {
		t.Fatalf("encodeBlock result is not a smi")
	}
	got, ok := decodeBlock(v, base)
	if !ok {
		t.Fatalf("decodeBlock: ok = false")
	}
	if got != slot {
		t.Fatalf("decodeBlock = %d, want %d", got, slot)
	}
}

func TestDecodeBlockRejectsUnsaltedSmi(t *testing.T) {
	v, _ := FromInt(99)
	if _, ok := decodeBlock(v, 0); ok {
		t.Fatalf("decodeBlock on an ordinary smi: ok = true, want false")
	}
}

func TestFramesDoWalksPushedFrames(t *testing.T) {
	program := NewProgram(make([]byte, 100), nil)
	o := NewStack()

	ret := program.ReturnAddress(5)
	o.Push(ret)
	o.Push(program.FrameMarker())

	var frames []int
	o.FramesDo(program, func(frameBase, bci int) bool {
		frames = append(frames, bci)
		return true
	})
	if len(frames) != 1 || frames[0] != 5 {
		t.Fatalf("FramesDo visited %v, want [5]", frames)
	}
}

func TestFramesDoStopsAtNonFrame(t *testing.T) {
	program := NewProgram(make([]byte, 100), nil)
	o := NewStack()
	other, _ := FromInt(123)
	o.Push(other)

	called := false
	o.FramesDo(program, func(frameBase, bci int) bool {
		called = true
		return true
	})
	if called {
		t.Fatalf("FramesDo walked a slot that isn't a frame marker")
	}
}

func TestRootsDoSkipsBytecodeRegion(t *testing.T) {
	program := NewProgram(make([]byte, 100), nil)
	o := NewStack()
	ordinary, _ := FromInt(7)
	o.Push(ordinary)
	o.Push(program.FrameMarker())

	var seen []Value
	o.RootsDo(program, func(v *Value) { seen = append(seen, *v) })
	if len(seen) != 1 || seen[0] != ordinary {
		t.Fatalf("RootsDo visited %v, want [%v]", seen, ordinary)
	}
}

func TestStackCopyToPreservesLiveRegion(t *testing.T) {
	o := NewStack()
	v, _ := FromInt(55)
	o.Push(v)

	dst := o.CopyTo(InitialStackLength)
	if got := dst.Pop(); got != v {
		t.Fatalf("CopyTo result Pop() = %v, want %v", got, v)
	}
}

func TestTransferToFromInterpreter(t *testing.T) {
	o := NewStack()
	v, _ := FromInt(1)
	o.Push(v)
	wantTop := o.StackTop()

	it := &Interpreter{}
	o.TransferToInterpreter(it)
	if it.sp != wantTop {
		t.Fatalf("TransferToInterpreter: it.sp = %d, want %d", it.sp, wantTop)
	}
	if o.StackTop() != -1 {
		t.Fatalf("TransferToInterpreter: StackTop() = %d, want -1 sentinel", o.StackTop())
	}

	it.sp--
	o.TransferFromInterpreter(it)
	if o.StackTop() != it.sp {
		t.Fatalf("TransferFromInterpreter: StackTop() = %d, want %d", o.StackTop(), it.sp)
	}
}
