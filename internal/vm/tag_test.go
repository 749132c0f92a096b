package vm

import "testing"

func TestPackUnpackHeader(t *testing.T) {
	word := packHeader(ClassInstance, 17)
	if got := unpackHeaderTag(word); got != ClassInstance {
		t.Fatalf("unpackHeaderTag = %v, want %v", got, ClassInstance)
	}
	if got := unpackHeaderClassID(word); got != 17 {
		t.Fatalf("unpackHeaderClassID = %d, want 17", got)
	}
}

func TestObjectHeader(t *testing.T) {
	o := NewInstance(FirstUserClassID, 0, Value(0))
	h := o.header()
	if h.Tag != ClassInstance || h.ClassID != FirstUserClassID {
		t.Fatalf("header() = %+v", h)
	}
}

func TestHeaderPanicsDuringForward(t *testing.T) {
	o := NewInstance(FirstUserClassID, 0, Value(0))
	o.installForward(valueFromHeapIndex(5))

	defer func() {
		if recover() == nil {
			t.Fatalf("header() on a forwarded object: expected panic, got none")
		}
	}()
	o.header()
}

func TestHeaderDuringGC(t *testing.T) {
	o := NewInstance(FirstUserClassID, 0, Value(0))
	target := valueFromHeapIndex(3)
	o.installForward(target)

	h := o.headerDuringGC()
	if !h.Forwarding || h.Forward != target {
		t.Fatalf("headerDuringGC() = %+v, want forwarding to %v", h, target)
	}

	o.clearForward()
	h = o.headerDuringGC()
	if h.Forwarding {
		t.Fatalf("headerDuringGC() after clearForward still forwarding: %+v", h)
	}
}

func TestAsWordPanicsWhileForwarding(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("asWord on a forwarding header: expected panic, got none")
		}
	}()
	h := HeaderCell{Forwarding: true, Forward: valueFromHeapIndex(1)}
	h.asWord()
}
