package snapshot

import (
	"testing"

	"github.com/vovakirdan/wisp/internal/vm"
)

func TestWriteReadRoundTripSmi(t *testing.T) {
	heap := vm.NewHeap(nil)
	root, _ := vm.FromInt(7)

	data, err := NewWriter(heap, nil).Write(root)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	decoded, err := NewReader(vm.NewHeap(nil)).Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !decoded.IsSmi() || decoded.SmiValue() != 7 {
		t.Fatalf("round-tripped root = %v, want smi 7", decoded)
	}
}

func TestWriteReadRoundTripString(t *testing.T) {
	heap := vm.NewHeap(nil)
	root := heap.AllocString("hello wisp")

	data, err := NewWriter(heap, nil).Write(root)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	outHeap := vm.NewHeap(nil)
	decoded, err := NewReader(outHeap).Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	got := string(outHeap.Get(decoded).StringBytes())
	if got != "hello wisp" {
		t.Fatalf("round-tripped string = %q, want %q", got, "hello wisp")
	}
}

func TestWriteReadRoundTripArrayOfValues(t *testing.T) {
	heap := vm.NewHeap(nil)
	a, _ := vm.FromInt(1)
	b, _ := vm.FromInt(2)
	arr := heap.AllocArray(2, vm.Value(0))
	heap.Get(arr).ArrayAtPut(0, a)
	heap.Get(arr).ArrayAtPut(1, b)

	data, err := NewWriter(heap, nil).Write(arr)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	outHeap := vm.NewHeap(nil)
	decoded, err := NewReader(outHeap).Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	obj := outHeap.Get(decoded)
	if obj.ArrayLength() != 2 {
		t.Fatalf("round-tripped array length = %d, want 2", obj.ArrayLength())
	}
	if obj.ArrayAt(0).SmiValue() != 1 || obj.ArrayAt(1).SmiValue() != 2 {
		t.Fatalf("round-tripped array contents = [%v %v]", obj.ArrayAt(0), obj.ArrayAt(1))
	}
}

func TestWriteReadPreservesSharedIdentity(t *testing.T) {
	heap := vm.NewHeap(nil)
	shared := heap.AllocOddball(3)
	arr := heap.AllocArray(2, vm.Value(0))
	heap.Get(arr).ArrayAtPut(0, shared)
	heap.Get(arr).ArrayAtPut(1, shared)

	data, err := NewWriter(heap, nil).Write(arr)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	outHeap := vm.NewHeap(nil)
	decoded, err := NewReader(outHeap).Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	obj := outHeap.Get(decoded)
	if obj.ArrayAt(0) != obj.ArrayAt(1) {
		t.Fatalf("decoded array lost shared object identity: %v != %v", obj.ArrayAt(0), obj.ArrayAt(1))
	}
}

func TestWriteReadRoundTripTaskWithCyclicStack(t *testing.T) {
	heap := vm.NewHeap(nil)
	id, _ := vm.FromInt(1)
	task := heap.AllocTask(id)
	stack := heap.AllocStack()
	heap.Get(task).SetTaskStack(stack)
	// Push a reference back to the task itself, onto its own stack.
	heap.Get(stack).Push(task)

	data, err := NewWriter(heap, nil).Write(task)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	outHeap := vm.NewHeap(nil)
	decoded, err := NewReader(outHeap).Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	decodedTask := outHeap.Get(decoded)
	decodedStack := outHeap.Get(decodedTask.TaskStack())
	back := decodedStack.Pop()
	if back != decoded {
		t.Fatalf("cyclic task<->stack reference did not round-trip: %v != %v", back, decoded)
	}
}

func TestWriteReadMarkedValue(t *testing.T) {
	heap := vm.NewHeap(nil)
	msg := heap.AllocString("transient failure")
	marked := vm.Mark(msg)

	data, err := NewWriter(heap, nil).Write(marked)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	outHeap := vm.NewHeap(nil)
	decoded, err := NewReader(outHeap).Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !decoded.IsMarked() {
		t.Fatalf("round-tripped value lost its marked tag")
	}
	if string(outHeap.Get(decoded).StringBytes()) != "transient failure" {
		t.Fatalf("round-tripped marked string content mismatch")
	}
}
