package mathutil

// Bessel function approximation constants.
// Polynomial coefficients from Abramowitz & Stegun, "Handbook of Mathematical Functions".
const (
	besselSmallArgThreshold = 3.75 // |x| threshold for the I₀ series

	besselI0Coeff1 = 3.5156229
	besselI0Coeff2 = 3.0899424
	besselI0Coeff3 = 1.2067492
	besselI0Coeff4 = 0.2659732
	besselI0Coeff5 = 0.360768e-1
	besselI0Coeff6 = 0.45813e-2

	besselI0AsympCoeff0 = 0.39894228
	besselI0AsympCoeff1 = 0.1328592e-1
	besselI0AsympCoeff2 = 0.225319e-2
	besselI0AsympCoeff3 = -0.157565e-2
	besselI0AsympCoeff4 = 0.916281e-2
	besselI0AsympCoeff5 = -0.2057706e-1
	besselI0AsympCoeff6 = 0.2635537e-1
	besselI0AsympCoeff7 = -0.1647633e-1
	besselI0AsympCoeff8 = 0.392377e-2
)

// Kaiser β by stopband attenuation, three regimes.
const (
	kaiserAttVeryHigh = 100.0
	kaiserAttHigh     = 50.0
	kaiserAttLow      = 20.96

	kaiserVeryHighSlope  = 0.1117
	kaiserVeryHighOffset = 1.11
	kaiserHighSlope      = 0.1102
	kaiserHighOffset     = 8.7
	kaiserLowCoeff       = 0.58417
	kaiserLowPower       = 0.4
	kaiserLowLinear      = 0.07886
)

// Tap-count estimate for a Kaiser low-pass with a given attenuation and
// normalized transition width.
const (
	tapsAttSlope     = 0.0425
	tapsAttOffset    = 1.4
	tapsCorrNumer    = 16.556
	tapsCorrAttShift = 39.6
	tapsCorrBase     = 0.8625

	// Below this the empirical fit diverges.
	minEstimateAtt = 80.0
)
