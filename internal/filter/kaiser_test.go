package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-audio-effects/internal/mathutil"
	"github.com/tphakala/go-audio-effects/internal/testutil"
)

const (
	// Test tolerances
	defaultTolerance   = 1e-10
	magnitudeTolerance = 1e-2
	windowTolerance    = 1e-10

	// Test window parameters
	testWindowLength11 = 11
	testWindowLength21 = 21
	testWindowLength51 = 51
	testBeta5          = 5.0
	testBeta8          = 8.653728
	testBeta10         = 10.0

	// Test filter parameters
	testAttenuation80  = 80.0
	testAttenuation100 = 100.0
	testAttenuation120 = 120.0
	testCutoff0_25     = 0.25
	testCutoff0_4      = 0.4
	testTransitionBW   = 0.05
	testGainUnity      = 1.0

	// Frequency response test parameters
	testNumPoints512  = 512
	testNumPoints1024 = 1024
	testPassbandFreq  = 0.2
	testStopbandFreq  = 0.3

	// dB thresholds
	passbandRippleDB = 0.1
	stopbandFloorDB  = -100.0
)

// TestKaiserWindow_Symmetry verifies that Kaiser window is symmetric.
func TestKaiserWindow_Symmetry(t *testing.T) {
	tests := []struct {
		name   string
		length int
		beta   float64
	}{
		{"length_11_beta_5", testWindowLength11, testBeta5},
		{"length_21_beta_8", testWindowLength21, testBeta8},
		{"length_51_beta_10", testWindowLength51, testBeta10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := KaiserWindow(tt.length, tt.beta)

			assert.Len(t, window, tt.length, "window length mismatch")
			testutil.AssertSymmetric(t, window, windowTolerance)
		})
	}
}

// TestKaiserWindow_CenterTap verifies that center tap is maximum.
func TestKaiserWindow_CenterTap(t *testing.T) {
	window := KaiserWindow(testWindowLength21, testBeta8)

	testutil.AssertCenterIsMax(t, window)

	// Center value should be close to 1.0 (I₀(β)/I₀(β) = 1)
	centerIdx := testWindowLength21 / 2
	assert.InDelta(t, 1.0, window[centerIdx], windowTolerance,
		"center value should be ~1.0")
}

// TestKaiserWindow_EdgeCases tests edge cases.
func TestKaiserWindow_EdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		length int
		beta   float64
		want   int
	}{
		{"zero_length", 0, testBeta5, 0},
		{"negative_length", -1, testBeta5, 0},
		{"length_one", 1, testBeta5, 1},
		{"length_two", 2, testBeta5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := KaiserWindow(tt.length, tt.beta)
			assert.Len(t, window, tt.want, "window length mismatch")

			if tt.length == 1 && len(window) == 1 {
				// Single tap should be 1.0
				assert.InDelta(t, 1.0, window[0], windowTolerance,
					"single tap value should be 1.0")
			}
		})
	}
}

// TestComputeFrequencyResponse tests frequency response calculation.
func TestComputeFrequencyResponse(t *testing.T) {
	// Simple 3-tap averaging filter: [0.25, 0.5, 0.25]
	const (
		tap0 = 0.25
		tap1 = 0.5
		tap2 = 0.25
	)
	coeffs := []float64{tap0, tap1, tap2}

	response := ComputeFrequencyResponse(coeffs, testNumPoints512)

	assert.Len(t, response.Frequencies, testNumPoints512, "frequencies length mismatch")
	assert.Len(t, response.Magnitude, testNumPoints512, "magnitude length mismatch")
	assert.Len(t, response.Phase, testNumPoints512, "phase length mismatch")

	// DC response (freq=0) should equal sum of coefficients
	expectedDC := tap0 + tap1 + tap2
	assert.InDelta(t, expectedDC, response.Magnitude[0], magnitudeTolerance,
		"DC magnitude mismatch")

	// Nyquist response (freq=0.5) for this filter should be zero
	// because [0.25, 0.5, 0.25] alternating signs = 0.25 - 0.5 + 0.25 = 0
	nyquistIdx := testNumPoints512 - 1
	nyquistMag := response.Magnitude[nyquistIdx]
	assert.LessOrEqual(t, nyquistMag, magnitudeTolerance,
		"Nyquist magnitude should be ~0")
}

// TestMagnitudeDB tests linear to dB conversion.
func TestMagnitudeDB(t *testing.T) {
	const (
		mag1    = 1.0
		mag0_5  = 0.5
		mag0_1  = 0.1
		mag0_01 = 0.01

		db1    = 0.0
		db0_5  = -6.0206
		db0_1  = -20.0
		db0_01 = -40.0

		dbTolerance = 0.01
	)

	tests := []struct {
		name string
		mag  float64
		want float64
	}{
		{"magnitude_1", mag1, db1},
		{"magnitude_0_5", mag0_5, db0_5},
		{"magnitude_0_1", mag0_1, db0_1},
		{"magnitude_0_01", mag0_01, db0_01},
		{"magnitude_zero", 0.0, -200.0}, // Should clip to minimum
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MagnitudeDB(tt.mag)
			assert.InDelta(t, tt.want, got, dbTolerance,
				"MagnitudeDB(%f) = %f dB, want %f dB", tt.mag, got, tt.want)
		})
	}
}

// TestNuttallWindow checks symmetry and the near-zero ends of the window.
func TestNuttallWindow(t *testing.T) {
	window := NuttallWindow(testWindowLength21)

	require.Len(t, window, testWindowLength21)
	testutil.AssertSymmetric(t, window, windowTolerance)
	testutil.AssertCenterIsMax(t, window)
	assert.InDelta(t, 0.0, window[0], 1e-6, "Nuttall window should start near zero")
	assert.InDelta(t, 1.0, window[testWindowLength21/2], windowTolerance,
		"Nuttall coefficients sum to one at the centre")

	assert.Empty(t, NuttallWindow(0))
	assert.Equal(t, []float64{1}, NuttallWindow(1))
}

// TestMakeLPF_Properties checks symmetry, length and DC normalization.
func TestMakeLPF_Properties(t *testing.T) {
	tests := []struct {
		name  string
		taps  int
		beta  float64
		scale float64
	}{
		{"kaiser_odd", testWindowLength51, testBeta8, testGainUnity},
		{"kaiser_even", 50, testBeta8, testGainUnity},
		{"nuttall", testWindowLength51, 1.0, testGainUnity},
		{"scaled_by_phases", 255, testBeta10, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := MakeLPF(tt.taps, testCutoff0_4, tt.beta, tt.scale, true)

			require.Len(t, h, tt.taps)
			testutil.AssertSymmetric(t, h, 0)
			testutil.AssertDCGain(t, h, tt.scale, 1e-12)
			testutil.AssertNoNaNOrInf(t, h)
		})
	}
}

// TestMakeLPF_Unnormalized checks that the raw windowed sinc already has a
// DC gain close to one.
func TestMakeLPF_Unnormalized(t *testing.T) {
	h := MakeLPF(testWindowLength51*4+1, testCutoff0_4, testBeta8, testGainUnity, false)
	testutil.AssertDCGain(t, h, testGainUnity, magnitudeTolerance)
}

// TestMakeLPF_FrequencyResponse checks passband flatness and stopband rejection
// of a half-band design (cutoff at half the Nyquist frequency).
func TestMakeLPF_FrequencyResponse(t *testing.T) {
	const (
		taps       = 101
		halfBand   = 0.5
		passFreq   = 0.15 // cycles/sample
		stopFreq   = 0.35
		minStopAtt = 80.0
	)

	h := MakeLPF(taps, halfBand, mathutil.KaiserBeta(testAttenuation100), testGainUnity, true)
	a := Analyze(h, testGainUnity, passFreq, stopFreq, testNumPoints1024)

	assert.Less(t, a.PassbandRippleDB, passbandRippleDB)
	assert.Greater(t, a.StopbandAttenDB, minStopAtt)
}

// TestMakeLPF_Degenerate checks the empty and single-tap cases.
func TestMakeLPF_Degenerate(t *testing.T) {
	assert.Nil(t, MakeLPF(0, testCutoff0_4, testBeta8, testGainUnity, true))

	h := MakeLPF(1, testCutoff0_4, testBeta8, testGainUnity, true)
	require.Len(t, h, 1)
	assert.InDelta(t, 1.0, h[0], defaultTolerance)
}

// BenchmarkKaiserWindow benchmarks window generation.
func BenchmarkKaiserWindow(b *testing.B) {
	benchmarks := []struct {
		name   string
		length int
		beta   float64
	}{
		{"length_51", testWindowLength51, testBeta8},
		{"length_101", 101, testBeta8},
		{"length_201", 201, testBeta10},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			for b.Loop() {
				_ = KaiserWindow(bm.length, bm.beta)
			}
		})
	}
}

// BenchmarkComputeFrequencyResponse benchmarks frequency response calculation.
func BenchmarkComputeFrequencyResponse(b *testing.B) {
	h := MakeLPF(201, testCutoff0_4, testBeta10, testGainUnity, true)

	b.ResetTimer()
	for b.Loop() {
		_ = ComputeFrequencyResponse(h, testNumPoints1024)
	}
}
