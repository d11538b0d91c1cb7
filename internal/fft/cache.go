// Package fft holds the transform plans shared by filter design and the
// block convolution stages.
package fft

import (
	"sync"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Cache owns real-input FFT plans keyed by transform length. Plans are
// created on first use and kept until Clear.
//
// A gonum plan carries scratch state, so the lock is held for the whole
// grow-or-use sequence, transform included.
type Cache struct {
	mu     sync.Mutex
	plans  map[int]*fourier.FFT
	maxLen int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{plans: make(map[int]*fourier.FFT)}
}

// Default is used by callers that do not manage their own cache.
var Default = NewCache()

// plan returns the plan for n. Caller must hold mu.
func (c *Cache) plan(n int) *fourier.FFT {
	if c.plans == nil {
		c.plans = make(map[int]*fourier.FFT)
	}
	p, ok := c.plans[n]
	if !ok {
		p = fourier.NewFFT(n)
		c.plans[n] = p
		if n > c.maxLen {
			c.maxLen = n
		}
	}
	return p
}

// Forward transforms the real sequence seq and returns its len(seq)/2+1
// non-redundant coefficients, reusing dst when it is large enough.
func (c *Cache) Forward(dst []complex128, seq []float64) []complex128 {
	n := len(seq)
	bins := n/2 + 1
	if cap(dst) < bins {
		dst = make([]complex128, bins)
	}
	dst = dst[:bins]

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plan(n).Coefficients(dst, seq)
}

// Inverse transforms n/2+1 coefficients back to a real sequence of length n,
// scaled by 1/n so that Inverse(Forward(x)) == x.
func (c *Cache) Inverse(dst []float64, coeff []complex128, n int) []float64 {
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]

	c.mu.Lock()
	dst = c.plan(n).Sequence(dst, coeff)
	c.mu.Unlock()

	f64.Scale(dst, dst, 1/float64(n))
	return dst
}

// MaxLen reports the largest transform length planned so far.
func (c *Cache) MaxLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxLen
}

// Len reports how many plans are held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.plans)
}

// Clear drops every plan.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plans = make(map[int]*fourier.FFT)
	c.maxLen = 0
}

// NextPow2 returns the smallest power of two >= n (and >= 1).
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// IsPow2 reports whether n is a positive power of two.
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}
