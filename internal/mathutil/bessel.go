// Package mathutil provides the special functions used by filter design.
package mathutil

import (
	"math"
)

// BesselI0 computes the modified Bessel function of the first kind, order zero: I₀(x).
// This function is used in Kaiser window calculation for filter design.
//
// The implementation uses polynomial approximations:
//   - For |x| < 3.75: direct polynomial series in (x/3.75)²
//   - For |x| ≥ 3.75: asymptotic expansion with exponential scaling
//
// Reference: Abramowitz & Stegun, "Handbook of Mathematical Functions" 9.8.1, 9.8.2.
func BesselI0(x float64) float64 {
	ax := math.Abs(x)

	if ax < besselSmallArgThreshold {
		t := x / besselSmallArgThreshold
		t *= t
		return 1.0 + t*(besselI0Coeff1+t*(besselI0Coeff2+t*(besselI0Coeff3+
			t*(besselI0Coeff4+t*(besselI0Coeff5+t*besselI0Coeff6)))))
	}

	t := besselSmallArgThreshold / ax
	result := besselI0AsympCoeff0 + t*(besselI0AsympCoeff1+t*(besselI0AsympCoeff2+
		t*(besselI0AsympCoeff3+t*(besselI0AsympCoeff4+t*(besselI0AsympCoeff5+
			t*(besselI0AsympCoeff6+t*(besselI0AsympCoeff7+t*besselI0AsympCoeff8)))))))

	return math.Exp(ax) * result / math.Sqrt(ax)
}

// KaiserBeta returns the Kaiser window shape parameter for a stopband
// attenuation in dB. Attenuations at or below ~21 dB need no window (β = 0).
func KaiserBeta(att float64) float64 {
	switch {
	case att > kaiserAttVeryHigh:
		return kaiserVeryHighSlope*att - kaiserVeryHighOffset
	case att > kaiserAttHigh:
		return kaiserHighSlope * (att - kaiserHighOffset)
	case att > kaiserAttLow:
		d := att - kaiserAttLow
		return kaiserLowCoeff*math.Pow(d, kaiserLowPower) + kaiserLowLinear*d
	default:
		return 0
	}
}

// EstimateHalfTaps returns n, half the tap count of a Kaiser low-pass reaching
// att dB over a transition of trBW (normalized to the design Nyquist).
// The caller turns it into 2n taps for a polyphase prototype or 2n+1 for a
// single-rate filter.
func EstimateHalfTaps(att, trBW float64) int {
	att = max(att, minEstimateAtt)
	n160 := (tapsAttSlope*att - tapsAttOffset) / trBW
	return int(n160*(tapsCorrNumer/(att-tapsCorrAttShift)+tapsCorrBase) + 0.5)
}
