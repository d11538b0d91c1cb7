package filter

import (
	"math"
	"math/cmplx"

	"github.com/sirupsen/logrus"

	"github.com/tphakala/go-audio-effects/internal/fft"
	"github.com/tphakala/go-audio-effects/internal/log"
)

// Phase response settings, in percent.
const (
	PhaseMinimum      = 0.0
	PhaseIntermediate = 25.0
	PhaseLinear       = 50.0
	PhaseMaximum      = 100.0
)

const (
	// Cepstral work length is at least this many times the filter length.
	phaseWorkMinLen = 32

	// A jump larger than this fraction of the wrap period is taken as a wrap.
	unwrapThreshold = 0.7

	// Extent of an intermediate-phase response around its peak, as a
	// fraction of the original length.
	intermediateCentre = 0.997
	intermediateSpread = 0.22
)

// FirToPhase converts a linear-phase filter into one with the requested
// phase response (0 = minimum, 50 = linear, 100 = maximum) while keeping its
// magnitude response.
//
// The conversion works on the real cepstrum: the log-magnitude spectrum is
// folded onto the causal half and the resulting minimum-phase angle is blended
// with the unwrapped linear phase. Maximum phase is the time reverse of minimum
// phase. Intermediate settings may change the length of the filter.
//
// postPeak is the number of taps following the impulse peak; a stage uses it
// to compensate latency.
func FirToPhase(cache *fft.Cache, h []float64, phase float64) (out []float64, postPeak int) {
	n := len(h)
	if n == 0 {
		return nil, 0
	}
	if phase == PhaseLinear {
		return append([]float64(nil), h...), n / 2
	}
	if cache == nil {
		cache = fft.Default
	}

	phase1 := phase
	if phase > PhaseLinear {
		phase1 = PhaseMaximum - phase
	}
	phase1 /= PhaseLinear

	workLen := phaseWorkMinLen
	for i := n; i > 1; i >>= 1 {
		workLen <<= 1
	}
	half := workLen / 2

	work := make([]float64, workLen)
	copy(work, h)

	// Spectra below use the positive-exponent sign convention, which is the
	// conjugate of what the plan returns.
	spec := conjugate(cache.Forward(nil, work))
	piWraps := make([]float64, half+1)

	var prevAngle2, cum2Pi, prevAngle1, cum1Pi float64
	for k := 0; k <= half; k++ {
		angle := cmplx.Phase(spec[k])

		delta := angle - prevAngle2
		prevAngle2 = angle
		cum2Pi += wrapAdjust(delta, 2*math.Pi)
		angle += cum2Pi

		delta = angle - prevAngle1
		prevAngle1 = angle
		cum1Pi += math.Abs(wrapAdjust(delta, math.Pi))
		piWraps[k] = cum1Pi

		spec[k] = complex(math.Log(cmplx.Abs(spec[k])), 0)
	}

	// Real cepstrum, folded onto the causal half.
	cep := cache.Inverse(work, conjugate(spec), workLen)
	for i := 1; i < half; i++ {
		cep[i] *= 2
		cep[i+half] = 0
	}

	spec = conjugate(cache.Forward(spec, cep))
	spec[0] = complex(math.Exp(real(spec[0])), 0)
	spec[half] = complex(math.Exp(real(spec[half])), 0)
	for k := 1; k < half; k++ {
		im := phase1*float64(2*k)/float64(workLen)*piWraps[half] +
			(1-phase1)*(imag(spec[k])+piWraps[k]) - piWraps[k]
		spec[k] = cmplx.Rect(math.Exp(real(spec[k])), im)
	}

	work = cache.Inverse(cep, conjugate(spec), workLen)

	peak := findImpulsePeak(work, int(piWraps[half]/math.Pi+0.5))

	begin, outLen := 0, n
	switch phase1 {
	case 0:
	default:
		b := int((intermediateCentre-(2-phase1)*intermediateSpread)*float64(n) + 0.5)
		e := int((intermediateCentre-phase1*intermediateSpread)*float64(n) + 0.5)
		begin = peak - (b &^ 3)
		end := peak + 1 + ((e + 3) &^ 3)
		outLen = end - begin
	}

	out = make([]float64, outLen)
	for i := range out {
		j := i
		if phase > PhaseLinear {
			j = outLen - 1 - i
		}
		out[i] = work[((begin+j)%workLen+workLen)%workLen]
	}

	if phase > PhaseLinear {
		postPeak = peak - begin
	} else {
		postPeak = begin + outLen - (peak + 1)
	}

	log.Std().WithFields(logrus.Fields{
		"phase":     phase,
		"taps_in":   n,
		"taps_out":  outLen,
		"work_len":  workLen,
		"post_peak": postPeak,
	}).Debug("converted filter phase")

	return out, postPeak
}

// wrapAdjust returns the correction that undoes a jump of delta across a
// wrap of the given period, or 0.
func wrapAdjust(delta, period float64) float64 {
	switch {
	case delta < -period*unwrapThreshold:
		return period
	case delta > period*unwrapThreshold:
		return -period
	default:
		return 0
	}
}

// findImpulsePeak locates the main lobe of an impulse response as the point
// of largest running sum within the first limit+1 samples, then walks back
// over same-signed samples that are larger still.
func findImpulsePeak(work []float64, limit int) int {
	limit = min(limit, len(work)-1)

	var sum, peakSum float64
	peak := 0
	for i := 0; i <= limit; i++ {
		sum += work[i]
		if math.Abs(sum) > math.Abs(peakSum) {
			peakSum = sum
			peak = i
		}
	}
	for peak > 0 && math.Abs(work[peak-1]) > math.Abs(work[peak]) && work[peak-1]*work[peak] > 0 {
		peak--
	}
	return peak
}

func conjugate(c []complex128) []complex128 {
	for i, v := range c {
		c[i] = cmplx.Conj(v)
	}
	return c
}
