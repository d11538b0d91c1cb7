package filter

import (
	"math"

	"github.com/tphakala/simd/f64"
)

const (
	defaultResponsePoints = 512

	minMagnitude = 1e-10 // floor for dB conversion, -200 dB
	dbMultiplier = 20.0
)

// FilterResponse holds the frequency response of a filter.
type FilterResponse struct {
	// Frequencies at which response was calculated (normalized, 0 to 0.5)
	Frequencies []float64

	// Magnitude response at each frequency (linear scale)
	Magnitude []float64

	// Phase response at each frequency (radians)
	Phase []float64
}

// ComputeFrequencyResponse evaluates the DTFT of a FIR filter at numPoints
// frequencies from DC up to (but excluding) Nyquist.
func ComputeFrequencyResponse(coeffs []float64, numPoints int) FilterResponse {
	if numPoints <= 0 {
		numPoints = defaultResponsePoints
	}

	response := FilterResponse{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
		Phase:       make([]float64, numPoints),
	}

	for k := range numPoints {
		freq := float64(k) / float64(windowNormalizationFactor*numPoints)
		response.Frequencies[k] = freq

		var re, im float64
		omega := 2 * math.Pi * freq
		for n, h := range coeffs {
			angle := omega * float64(n)
			re += h * math.Cos(angle)
			im -= h * math.Sin(angle)
		}

		response.Magnitude[k] = math.Hypot(re, im)
		response.Phase[k] = math.Atan2(im, re)
	}

	return response
}

// MagnitudeDB converts linear magnitude to decibels.
func MagnitudeDB(magnitude float64) float64 {
	return dbMultiplier * math.Log10(max(magnitude, minMagnitude))
}

// Analysis summarizes a low-pass response.
type Analysis struct {
	Taps             int
	DCGain           float64
	PassbandRippleDB float64 // peak-to-peak deviation below passEdge
	StopbandAttenDB  float64 // worst-case rejection above stopEdge, positive
}

// Analyze measures a low-pass filter against normalized band edges
// (cycles/sample, 0 to 0.5). gain is the nominal passband gain.
func Analyze(coeffs []float64, gain, passEdge, stopEdge float64, numPoints int) Analysis {
	resp := ComputeFrequencyResponse(coeffs, numPoints)

	a := Analysis{
		Taps:   len(coeffs),
		DCGain: f64.Sum(coeffs),
	}

	passMin, passMax := math.Inf(1), math.Inf(-1)
	stopMax := 0.0
	for i, f := range resp.Frequencies {
		m := resp.Magnitude[i] / gain
		switch {
		case f <= passEdge:
			passMin = min(passMin, m)
			passMax = max(passMax, m)
		case f >= stopEdge:
			stopMax = max(stopMax, m)
		}
	}

	if passMax >= passMin {
		a.PassbandRippleDB = MagnitudeDB(passMax) - MagnitudeDB(passMin)
	}
	a.StopbandAttenDB = -MagnitudeDB(stopMax)

	return a
}
