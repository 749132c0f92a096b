package vm

import "testing"

func TestFromIntRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 42, -42, MaxSmiValue, MinSmiValue} {
		v, err := FromInt(n)
		if err != nil {
			t.Fatalf("FromInt(%d): unexpected error: %v", n, err)
		}
		if !v.IsSmi() {
			t.Fatalf("FromInt(%d): result is not a smi", n)
		}
		if got := v.SmiValue(); got != n {
			t.Fatalf("FromInt(%d).SmiValue() = %d", n, got)
		}
	}
}

func TestFromIntOutOfRange(t *testing.T) {
	if _, err := FromInt(MaxSmiValue + 1); err == nil {
		t.Fatalf("FromInt(MaxSmiValue+1): expected error, got nil")
	}
	if _, err := FromInt(MinSmiValue - 1); err == nil {
		t.Fatalf("FromInt(MinSmiValue-1): expected error, got nil")
	}
}

func TestKindOf(t *testing.T) {
	smi, _ := FromInt(7)
	if KindOf(smi) != KindSmi {
		t.Fatalf("KindOf(smi) = %v, want KindSmi", KindOf(smi))
	}

	heap := valueFromHeapIndex(1)
	if !heap.IsHeapObject() {
		t.Fatalf("valueFromHeapIndex(1) is not a heap object")
	}
	if KindOf(heap) != KindHeapObject {
		t.Fatalf("KindOf(heap) = %v, want KindHeapObject", KindOf(heap))
	}

	marked := Mark(heap)
	if KindOf(marked) != KindMarked {
		t.Fatalf("KindOf(marked) = %v, want KindMarked", KindOf(marked))
	}
	if Unmark(marked) != heap {
		t.Fatalf("Unmark(Mark(heap)) != heap")
	}
}

func TestMarkPanicsOnSmi(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Mark on a smi: expected panic, got none")
		}
	}()
	smi, _ := FromInt(1)
	Mark(smi)
}

func TestUnmarkPanicsOnUnmarked(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Unmark on an unmarked heap pointer: expected panic, got none")
		}
	}()
	Unmark(valueFromHeapIndex(1))
}

func TestHeapIndexRoundTrip(t *testing.T) {
	for _, idx := range []uint64{1, 2, 1000} {
		v := valueFromHeapIndex(idx)
		if v.heapIndex() != idx {
			t.Fatalf("valueFromHeapIndex(%d).heapIndex() = %d", idx, v.heapIndex())
		}
	}
}
