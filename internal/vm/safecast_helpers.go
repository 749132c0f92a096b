package vm

import "fortio.org/safecast"

// smiToIndex narrows a smi's int64 payload to a platform int, the way
// every array/byte-array/string bound check ultimately must: a slice
// bound or length is a Go int, but the Value carrying it is always a
// 64-bit smi regardless of GOARCH. safecast.Convert catches the one
// platform this ever matters on — 32-bit builds indexing a smi near
// MaxSmi32Value's ceiling — instead of silently truncating.
func smiToIndex(v Value) (int, error) {
	return safecast.Convert[int](v.SmiValue())
}

// mustSmiToIndex is smiToIndex for call sites that already know the
// value fits (e.g. it was produced by len() moments earlier) and would
// rather panic loudly than thread an error through an unrelated
// signature.
func mustSmiToIndex(v Value) int {
	n, err := smiToIndex(v)
	if err != nil {
		panic("vm: " + err.Error())
	}
	return n
}
