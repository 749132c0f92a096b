package vm

import "math"

// CompareResult is the bit-packed outcome of CompareNumbers: a compact
// signed three-way value in its low two bits, plus independent yes/no
// flags for the coarse outcome (`< | <= | == | >= | >`), all in one word
// (spec §6). Packing them together lets both `compare_to` and the
// relational operators (`<`, `<=`, `==`, `>=`, `>`) share one comparison
// routine and simply mask out the bit (or bits) they care about.
type CompareResult uint8

const (
	// ComparisonFailed is returned by CompareValues when either operand is
	// not numeric at all; CompareNumbers itself never produces it, since
	// by the time two float64s reach it they are already known numeric
	// (NaN is a valid float64, not a type failure).
	ComparisonFailed CompareResult = 0

	// The compact three-way result, read via r&CompareToMask, biased by
	// CompareToBias to get back the conventional signed {-1, 0, +1}.
	CompareToMinus1 CompareResult = 1
	CompareToZero   CompareResult = 2
	ComparePlus1    CompareResult = 3
	CompareToMask   CompareResult = 3

	// CompareToBias turns the unsigned compact value back into a signed
	// three-way result: Signed() == int8(r&CompareToMask) + CompareToBias.
	CompareToBias int8 = -2

	// CompareToLessForMin overrides the ordinary ordering flags below for
	// `min`'s benefit whenever a NaN operand is involved. Ordinary compare
	// treats NaN as sorting above every other number (so `max` needs no
	// special casing — StrictlyGreater already picks the NaN side), but
	// `min` must still propagate NaN, which means picking the NaN operand
	// even though it compared as the greater one.
	CompareToLessForMin CompareResult = 1 << 2

	StrictlyLess    CompareResult = 1 << 3
	LessEqual       CompareResult = 1 << 4
	Equal           CompareResult = 1 << 5
	GreaterEqual    CompareResult = 1 << 6
	StrictlyGreater CompareResult = 1 << 7
)

// Has reports whether flag is set in r.
func (r CompareResult) Has(flag CompareResult) bool { return r&flag != 0 }

// Signed extracts the compact three-way result as a conventional signed
// -1/0/+1, the way a fast-path compare_to bytecode consumes it.
func (r CompareResult) Signed() int8 {
	return int8(r&CompareToMask) + CompareToBias
}

// CompareNumbers orders two float64 operands (smis and large integers are
// converted to float64 by the caller before reaching here — see
// CompareValues) and packs every relevant fact about the ordering into one
// CompareResult. NaN sorts above every ordinary number in this total
// order — so `max` naturally propagates it via StrictlyGreater — but
// CompareToLessForMin is set whenever NaN is involved so `min` can still
// pick the NaN operand despite the ordering otherwise favoring it as the
// "greater" side.
func CompareNumbers(a, b float64) CompareResult {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return CompareToZero | CompareToLessForMin | Equal | LessEqual | GreaterEqual
	case aNaN:
		return ComparePlus1 | CompareToLessForMin | GreaterEqual | StrictlyGreater
	case bNaN:
		return CompareToMinus1 | CompareToLessForMin | StrictlyLess | LessEqual
	case a < b:
		return CompareToMinus1 | StrictlyLess | LessEqual
	case a > b:
		return ComparePlus1 | GreaterEqual | StrictlyGreater
	default:
		return CompareToZero | LessEqual | Equal | GreaterEqual
	}
}

// CompareValues extracts numeric operands from two Values (smi, large
// integer, or double) and compares them; ok is false if either operand is
// not numeric.
func CompareValues(h *Heap, a, b Value) (result CompareResult, ok bool) {
	af, ok1 := numericAsFloat(h, a)
	bf, ok2 := numericAsFloat(h, b)
	if !ok1 || !ok2 {
		return ComparisonFailed, false
	}
	return CompareNumbers(af, bf), true
}

func numericAsFloat(h *Heap, v Value) (float64, bool) {
	if v.IsSmi() {
		return float64(v.SmiValue()), true
	}
	if !v.IsHeapObject() {
		return 0, false
	}
	o := h.Get(v)
	switch o.class {
	case ClassLargeInteger:
		return float64(o.largeVal), true
	case ClassDouble:
		return o.doubleVal, true
	default:
		return 0, false
	}
}

// valueIsNaN reports whether v is a double object holding NaN; smis and
// large integers can never be NaN.
func valueIsNaN(h *Heap, v Value) bool {
	if v.IsSmi() || !v.IsHeapObject() {
		return false
	}
	o := h.Get(v)
	return o.class == ClassDouble && math.IsNaN(o.doubleVal)
}

// Min returns whichever of a, b compares as "less" for min purposes. When
// CompareToLessForMin is set (a NaN operand is involved), the NaN operand
// itself is picked regardless of which side the ordinary ordering flags
// favored; otherwise the ordinary StrictlyLess flag decides.
func Min(h *Heap, a, b Value) (Value, bool) {
	r, ok := CompareValues(h, a, b)
	if !ok {
		return Value(0), false
	}
	if r.Has(CompareToLessForMin) {
		if valueIsNaN(h, a) {
			return a, true
		}
		return b, true
	}
	if r.Has(StrictlyLess) {
		return a, true
	}
	return b, true
}

// Max returns whichever of a, b compares as strictly greater. NaN sorts
// above every ordinary number in CompareNumbers' total order, so this
// naturally propagates NaN without any special casing.
func Max(h *Heap, a, b Value) (Value, bool) {
	r, ok := CompareValues(h, a, b)
	if !ok {
		return Value(0), false
	}
	if r.Has(StrictlyGreater) {
		return a, true
	}
	return b, true
}
