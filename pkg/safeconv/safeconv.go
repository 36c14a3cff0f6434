// Package safeconv converts between integer types where the source range can
// exceed the target.
package safeconv

import "math"

// MaxInt is the maximum value for int type (platform-dependent).
const MaxInt = int(^uint(0) >> 1)

// MustUintToInt converts a tree-sitter offset or row to int. It panics on
// overflow, which a parsed in-memory file cannot produce.
func MustUintToInt(v uint) int {
	if v > uint(MaxInt) {
		panic("safeconv: uint to int overflow")
	}

	return int(v)
}

// Uint64ToInt64 reports whether v fits in an int64 and returns it converted.
func Uint64ToInt64(v uint64) (int64, bool) {
	if v > math.MaxInt64 {
		return 0, false
	}

	return int64(v), true
}

// ByteCount converts a byte counter to uint64 for formatting. Negative
// counts become 0.
func ByteCount(n int64) uint64 {
	if n < 0 {
		return 0
	}

	return uint64(n)
}
