package vm

import "testing"

func TestByteContentPlainByteArray(t *testing.T) {
	h := NewHeap(nil)
	ba := h.AllocByteArray(4)
	copy(h.Get(ba).baInternal, []byte{1, 2, 3, 4})

	data, ok := ByteContent(h, ba)
	if !ok {
		t.Fatalf("ByteContent: ok = false")
	}
	if len(data) != 4 || data[2] != 3 {
		t.Fatalf("ByteContent = %v", data)
	}
}

func TestByteContentSlice(t *testing.T) {
	h := NewHeap(nil)
	ba := h.AllocByteArray(5)
	copy(h.Get(ba).baInternal, []byte{10, 20, 30, 40, 50})
	slice := h.AllocByteArraySlice(ba, 1, 4)

	data, ok := ByteContent(h, slice)
	if !ok {
		t.Fatalf("ByteContent(slice): ok = false")
	}
	if got := []byte{20, 30, 40}; !bytesEqual(data, got) {
		t.Fatalf("ByteContent(slice) = %v, want %v", data, got)
	}
}

func TestByteContentSliceOutOfBounds(t *testing.T) {
	h := NewHeap(nil)
	ba := h.AllocByteArray(2)
	slice := h.AllocByteArraySlice(ba, 0, 5)

	if _, ok := ByteContent(h, slice); ok {
		t.Fatalf("ByteContent(out-of-bounds slice): ok = true, want false")
	}
}

func TestMutableByteContentCowMaterializesOnce(t *testing.T) {
	h := NewHeap(nil)
	ba := h.AllocByteArray(3)
	copy(h.Get(ba).baInternal, []byte{7, 8, 9})
	cow := h.AllocCowByteArray(ba, false)

	data, ok := MutableByteContent(h, cow)
	if !ok {
		t.Fatalf("MutableByteContent(cow): ok = false")
	}
	data[0] = 99

	// The original backing byte array must be untouched: materialization
	// must have copied, not aliased.
	if h.Get(ba).baInternal[0] != 7 {
		t.Fatalf("materializeCow aliased the original backing array")
	}

	cowObj := h.Get(cow)
	if cowObj.instanceFields[1].SmiValue() != 1 {
		t.Fatalf("cow mutable flag not set after materialization")
	}

	// Second call should be a no-op materialization, returning the same
	// backing content rather than copying again.
	data2, ok := MutableByteContent(h, cow)
	if !ok || data2[0] != 99 {
		t.Fatalf("MutableByteContent(cow) second call = %v, ok=%v", data2, ok)
	}
}

func TestByteContentRejectsStructTaggedExternalByteArray(t *testing.T) {
	h := NewHeap(nil)
	raw := h.alloc(NewExternalByteArray([]byte{1, 2, 3}, RawByteTag))
	strct := h.alloc(NewExternalByteArray([]byte{1, 2, 3}, StructTag))

	if _, ok := ByteContent(h, raw); !ok {
		t.Fatalf("ByteContent(RawByteTag external): ok = false, want true")
	}
	if _, ok := ByteContent(h, strct); ok {
		t.Fatalf("ByteContent(StructTag external): ok = true, want false")
	}
	if _, ok := MutableByteContent(h, strct); ok {
		t.Fatalf("MutableByteContent(StructTag external): ok = true, want false")
	}
}

func TestByteContentRejectsNonByteBearing(t *testing.T) {
	h := NewHeap(nil)
	arr := h.AllocArray(1, Value(0))
	if _, ok := ByteContent(h, arr); ok {
		t.Fatalf("ByteContent(array): ok = true, want false")
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
