// Package safeconv provides integer conversions that cannot silently wrap.
package safeconv

import "math"

// MustInt64ToUint64 converts a non-negative int64, such as a file size, to
// uint64. It panics on negative input.
func MustInt64ToUint64(v int64) uint64 {
	if v < 0 {
		panic("safeconv: negative int64 to uint64 conversion")
	}

	return uint64(v)
}

// ClampUint64ToInt64 converts v to int64, saturating at math.MaxInt64.
func ClampUint64ToInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(v)
}
