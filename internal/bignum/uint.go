package bignum

import "errors"

// MaxLimbs is the maximum number of limbs allowed.
const MaxLimbs = 1_000_000

var (
	// ErrMaxLimbs indicates the numeric size limit was exceeded.
	ErrMaxLimbs = errors.New("numeric size limit exceeded")
	// ErrUnderflow indicates an unsigned subtraction would go negative.
	ErrUnderflow = errors.New("unsigned underflow")
)

// BigUint represents a big unsigned integer, the magnitude that BigInt
// layers a sign onto.
type BigUint struct {
	// Limbs are base-2^32 little-endian (Limbs[0] is least significant).
	//
	// Canonical zero is represented as nil/empty slice.
	Limbs []uint32
}

// UintFromUint64 creates a BigUint from a uint64.
func UintFromUint64(v uint64) BigUint {
	if v == 0 {
		return BigUint{}
	}
	lo := uint32(v)       //nolint:gosec // G115: truncation is intentional (low limb).
	hi := uint32(v >> 32) //nolint:gosec // G115: truncation is intentional (high limb).
	if hi == 0 {
		return BigUint{Limbs: []uint32{lo}}
	}
	return BigUint{Limbs: []uint32{lo, hi}}
}

// IsZero reports whether the unsigned integer is zero.
func (u BigUint) IsZero() bool {
	return len(trimLimbs(u.Limbs)) == 0
}

// Cmp compares two BigUint values.
func (u BigUint) Cmp(v BigUint) int {
	return cmpLimbs(u.Limbs, v.Limbs)
}

// Uint64 converts BigUint to uint64 if possible. The promoted large
// integer that backs a smi overflow never needs more than two limbs to
// answer questions like Value.Int64() at the vm layer, so anything wider
// simply reports ok=false.
func (u BigUint) Uint64() (uint64, bool) {
	limbs := trimLimbs(u.Limbs)
	switch len(limbs) {
	case 0:
		return 0, true
	case 1:
		return uint64(limbs[0]), true
	case 2:
		return uint64(limbs[0]) | (uint64(limbs[1]) << 32), true
	default:
		return 0, false
	}
}

// UintAdd adds two BigUint values and returns the result.
func UintAdd(a, b BigUint) (BigUint, error) {
	al := trimLimbs(a.Limbs)
	bl := trimLimbs(b.Limbs)
	n := len(al)
	if len(bl) > n {
		n = len(bl)
	}
	if n == 0 {
		return BigUint{}, nil
	}

	out := make([]uint32, n+1)
	var carry uint64
	for i := range n {
		var av, bv uint64
		if i < len(al) {
			av = uint64(al[i])
		}
		if i < len(bl) {
			bv = uint64(bl[i])
		}
		sum := av + bv + carry
		out[i] = uint32(sum) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
		carry = sum >> 32
	}
	out[n] = uint32(carry) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
	out = trimLimbs(out)
	if len(out) > MaxLimbs {
		return BigUint{}, ErrMaxLimbs
	}
	return BigUint{Limbs: out}, nil
}

// UintSub subtracts two BigUint values.
func UintSub(a, b BigUint) (BigUint, error) {
	if cmpLimbs(a.Limbs, b.Limbs) < 0 {
		return BigUint{}, ErrUnderflow
	}
	al := trimLimbs(a.Limbs)
	bl := trimLimbs(b.Limbs)
	if len(bl) == 0 {
		return BigUint{Limbs: al}, nil
	}
	out := make([]uint32, len(al))
	copy(out, al)
	subInPlace(out, bl)
	out = trimLimbs(out)
	return BigUint{Limbs: out}, nil
}

// UintMul multiplies two BigUint values.
func UintMul(a, b BigUint) (BigUint, error) {
	al := trimLimbs(a.Limbs)
	bl := trimLimbs(b.Limbs)
	if len(al) == 0 || len(bl) == 0 {
		return BigUint{}, nil
	}
	if len(al)+len(bl) > MaxLimbs {
		return BigUint{}, ErrMaxLimbs
	}

	out := make([]uint32, len(al)+len(bl))
	for i := range al {
		ai := uint64(al[i])
		var carry uint64
		for j := range bl {
			k := i + j
			sum := uint64(out[k]) + ai*uint64(bl[j]) + carry
			out[k] = uint32(sum) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
			carry = sum >> 32
		}
		k := i + len(bl)
		for carry != 0 {
			sum := uint64(out[k]) + carry
			out[k] = uint32(sum) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
			carry = sum >> 32
			k++
			if k >= len(out) && carry != 0 {
				return BigUint{}, ErrMaxLimbs
			}
		}
	}
	out = trimLimbs(out)
	return BigUint{Limbs: out}, nil
}

func trimLimbs(limbs []uint32) []uint32 {
	for len(limbs) > 0 && limbs[len(limbs)-1] == 0 {
		limbs = limbs[:len(limbs)-1]
	}
	if len(limbs) == 0 {
		return nil
	}
	return limbs
}

func cmpLimbs(a, b []uint32) int {
	a = trimLimbs(a)
	b = trimLimbs(b)
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	for i := len(a) - 1; i >= 0; i-- {
		av := a[i]
		bv := b[i]
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		if i == 0 {
			break
		}
	}
	return 0
}

func subInPlace(dst, sub []uint32) {
	var borrow uint64
	for i := 0; i < len(dst); i++ {
		av := uint64(dst[i])
		bv := uint64(0)
		if i < len(sub) {
			bv = uint64(sub[i])
		}
		tmp := av - bv - borrow
		dst[i] = uint32(tmp) //nolint:gosec // G115: truncation is intentional (limb arithmetic).
		if av < bv+borrow {
			borrow = 1
		} else {
			borrow = 0
		}
	}
}
