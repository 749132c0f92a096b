package vm

import (
	"math"

	"github.com/vovakirdan/wisp/internal/bignum"
)

// AddInt64Checked returns (a+b, ok). ok is false on signed overflow.
func AddInt64Checked(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// SubInt64Checked returns (a-b, ok). ok is false on signed overflow.
func SubInt64Checked(a, b int64) (int64, bool) {
	if (b > 0 && a < math.MinInt64+b) || (b < 0 && a > math.MaxInt64+b) {
		return 0, false
	}
	return a - b, true
}

// MulInt64Checked returns (a*b, ok). ok is false on signed overflow.
func MulInt64Checked(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == math.MinInt64 && b == -1) || (b == math.MinInt64 && a == -1) {
		return 0, false
	}
	res := a * b
	if res/b != a {
		return 0, false
	}
	return res, true
}

// NegInt64Checked returns (-a, ok). ok is false only for math.MinInt64,
// whose negation does not fit in int64.
func NegInt64Checked(a int64) (int64, bool) {
	if a == math.MinInt64 {
		return 0, false
	}
	return -a, true
}

// AddSmi, SubSmi and MulSmi add/subtract/multiply two smi-range operands,
// promoting a result that outgrows a smi to a 64-bit large-integer heap
// object, never an arbitrary-precision bignum.BigInt value. When the
// int64 fast path itself overflows, the result is recomputed exactly with
// the bignum package and, since it does not fit a 64-bit large integer,
// the operation panics.
func (h *Heap) AddSmi(a, b Value) Value {
	return h.checkedSmiOp(a, b, AddInt64Checked, bignum.IntAdd)
}

func (h *Heap) SubSmi(a, b Value) Value {
	return h.checkedSmiOp(a, b, SubInt64Checked, bignum.IntSub)
}

func (h *Heap) MulSmi(a, b Value) Value {
	return h.checkedSmiOp(a, b, MulInt64Checked, bignum.IntMul)
}

func (h *Heap) checkedSmiOp(
	a, b Value,
	fast func(int64, int64) (int64, bool),
	slow func(bignum.BigInt, bignum.BigInt) (bignum.BigInt, error),
) Value {
	x, y := a.SmiValue(), b.SmiValue()
	if r, ok := fast(x, y); ok {
		if v, err := FromInt(r); err == nil {
			return v
		}
		return h.AllocLargeInteger(r)
	}
	big, err := slow(bignum.IntFromInt64(x), bignum.IntFromInt64(y))
	if err != nil {
		panic("vm: checkedSmiOp: " + err.Error())
	}
	n, exact := big.Int64()
	if !exact {
		// spec.md §3.3: the large-integer catalog slot is a 64-bit
		// payload, not an arbitrary-precision value; operations that
		// genuinely need more than 64 bits are out of scope.
		panic("vm: checkedSmiOp result does not fit in a 64-bit large integer")
	}
	return h.AllocLargeInteger(n)
}
