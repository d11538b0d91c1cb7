// Package filter provides low-pass filter design for sample-rate conversion.
package filter

import (
	"math"

	"github.com/tphakala/go-audio-effects/internal/mathutil"
	"github.com/tphakala/simd/f64"
)

const (
	// Window normalization
	windowNormalizationFactor = 2.0

	// Kaiser windows below this β are close to rectangular; use Nuttall instead.
	kaiserMinBeta = 2.0
)

// Nuttall 4-term window coefficients.
const (
	nuttallA0 = 0.355768
	nuttallA1 = 0.487396
	nuttallA2 = 0.144232
	nuttallA3 = 0.012604
)

// KaiserWindow generates a Kaiser window of the specified length and β parameter.
//
// The Kaiser window provides control over the trade-off between main lobe
// width and sidelobe level in the frequency domain.
//
//	w[n] = I₀(β·√(1 - ((n - α)/α)²)) / I₀(β),  α = (length-1)/2
//
// The window is symmetric: w[i] = w[length-1-i], with w[center] = 1.
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}

	window := make([]float64, length)
	if length == 1 {
		window[0] = 1
		return window
	}

	alpha := float64(length-1) / windowNormalizationFactor
	i0Beta := mathutil.BesselI0(beta)

	for n := range length {
		x := (float64(n) - alpha) / alpha
		window[n] = mathutil.BesselI0(beta*math.Sqrt(max(0, 1.0-x*x))) / i0Beta
	}

	return window
}

// NuttallWindow generates a 4-term Nuttall window, the fallback when a Kaiser
// β would be too small to be useful.
func NuttallWindow(length int) []float64 {
	if length < 1 {
		return []float64{}
	}

	window := make([]float64, length)
	if length == 1 {
		window[0] = 1
		return window
	}

	m := float64(length - 1)
	for n := range length {
		x := 2 * math.Pi * float64(n) / m
		window[n] = nuttallA0 - nuttallA1*math.Cos(x) + nuttallA2*math.Cos(2*x) - nuttallA3*math.Cos(3*x)
	}

	return window
}

// MakeLPF builds a windowed-sinc low-pass filter of numTaps coefficients.
//
// cutoff is normalized to the Nyquist frequency of the filter's own rate (0..1).
// A Kaiser window with the given β is used when β > 2, a Nuttall window otherwise.
// The coefficients sum to scale when normalizeDC is set; otherwise the raw
// sinc gain (≈1) is multiplied by scale.
//
// The result is exactly symmetric.
func MakeLPF(numTaps int, cutoff, beta, scale float64, normalizeDC bool) []float64 {
	if numTaps < 1 {
		return nil
	}

	var window []float64
	if beta > kaiserMinBeta {
		window = KaiserWindow(numTaps, beta)
	} else {
		window = NuttallWindow(numTaps)
	}

	h := make([]float64, numTaps)
	m := numTaps - 1
	half := float64(m) / windowNormalizationFactor

	for i := 0; i <= m/2; i++ {
		x := math.Pi * (float64(i) - half)
		v := cutoff
		if x != 0 {
			v = math.Sin(cutoff*x) / x
		}
		v *= window[i]
		h[i] = v
		h[m-i] = v
	}

	mult := scale
	if normalizeDC {
		if sum := f64.Sum(h); sum != 0 {
			mult = scale / sum
		}
	}
	f64.Scale(h, h, mult)

	return h
}
