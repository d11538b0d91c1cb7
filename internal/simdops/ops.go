// Package simdops provides generic SIMD operations for float32 and float64 types.
// This lets the planar/interleaved helpers serve both precision levels without duplication.
package simdops

import (
	"math"

	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the type constraint for supported floating-point types.
type Float interface {
	float32 | float64
}

// Ops provides SIMD-accelerated operations for type F.
type Ops[F Float] struct {
	// Interleave2 interleaves two slices: dst[0]=a[0], dst[1]=b[0], dst[2]=a[1], ...
	Interleave2 func(dst, a, b []F)

	// DotProductUnsafe computes the dot product without bounds checking.
	// Use only when slices are guaranteed to have equal length.
	DotProductUnsafe func(a, b []F) F
}

// Pre-instantiated operations for each float type.
var (
	ops32 = Ops[float32]{
		Interleave2:      f32.Interleave2,
		DotProductUnsafe: f32.DotProductUnsafe,
	}
	ops64 = Ops[float64]{
		Interleave2:      f64.Interleave2,
		DotProductUnsafe: f64.DotProductUnsafe,
	}
)

// For returns the Ops instance for type F.
// The type switch happens at instantiation time, not in hot paths.
func For[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		ops, ok := any(&ops32).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float32")
		}
		return ops
	case float64:
		ops, ok := any(&ops64).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float64")
		}
		return ops
	default:
		panic("simdops: unsupported float type")
	}
}

// InterleaveStereo interleaves left and right up to the shorter length.
func InterleaveStereo[F Float](left, right []F) []F {
	n := min(len(left), len(right))
	dst := make([]F, 2*n)
	For[F]().Interleave2(dst, left[:n], right[:n])
	return dst
}

// DeinterleaveStereo splits interleaved stereo into two channels. A trailing
// odd sample is dropped.
func DeinterleaveStereo[F Float](interleaved []F) (left, right []F) {
	n := len(interleaved) / 2
	left = make([]F, n)
	right = make([]F, n)
	for i := range n {
		left[i] = interleaved[2*i]
		right[i] = interleaved[2*i+1]
	}
	return left, right
}

// RMS returns the root mean square of a.
func RMS[F Float](a []F) float64 {
	if len(a) == 0 {
		return 0
	}
	energy := float64(For[F]().DotProductUnsafe(a, a))
	return math.Sqrt(energy / float64(len(a)))
}
