package filter

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tphakala/go-audio-effects/internal/log"
	"github.com/tphakala/go-audio-effects/internal/mathutil"
)

// ErrInvalidDesign is returned for filter parameters no design can satisfy.
var ErrInvalidDesign = errors.New("invalid filter design")

const (
	// Transition width of a Kaiser design, in units of (Fc - Fp).
	transitionFactor = 0.5869

	// Stop-edge adjustment for aliasing designs, where Fc is a -3 dB point.
	aliasWidenFactor = (2.0 / 3.0) * (0.5 - transitionFactor)

	// Minimum usable transition band, as a fraction of Fc, for degenerate edges.
	minTransitionFraction = 0.01
)

// DesignLPF designs a Kaiser-windowed low-pass filter.
//
// fp is the passband edge, fc the stopband edge and fn the Nyquist frequency
// of the rate the filter runs at, all in the same unit. att is the stopband
// attenuation in dB. When numTaps is 0 the length is estimated from att and
// the transition width.
//
// With phases == 0 the result is a single symmetric filter of odd length with
// unity DC gain; an even numTaps is rounded up to the next odd count. With phases = k > 0 the result is a prototype of n·k - 1 taps
// holding k interleaved sub-filters of n taps each, with DC gain k.
//
// The resolved tap count is len(h).
func DesignLPF(fp, fc, fn float64, allowAliasing bool, att float64, numTaps, phases int) ([]float64, error) {
	if fn <= 0 || fc <= 0 || fp < 0 || phases < 0 || numTaps < 0 {
		return nil, fmt.Errorf("%w: fp=%g fc=%g fn=%g taps=%d phases=%d",
			ErrInvalidDesign, fp, fc, fn, numTaps, phases)
	}
	if att <= 0 {
		return nil, fmt.Errorf("%w: attenuation %g dB must be positive", ErrInvalidDesign, att)
	}

	if fc <= fp {
		clamped := fc * (1 - minTransitionFraction)
		log.Std().WithFields(logrus.Fields{
			"fp": fp,
			"fc": fc,
		}).Debug("degenerate filter edges, clamping passband")
		fp = clamped
	}

	if allowAliasing {
		fc += (fc - fp) * aliasWidenFactor
	}

	fp /= fn
	fc /= fn
	trBW := transitionFactor * (fc - fp)

	k := max(phases, 1)
	if numTaps == 0 {
		n := mathutil.EstimateHalfTaps(att, trBW)
		if phases > 0 {
			numTaps = 2 * n
		} else {
			numTaps = 2*(n+(n&1)) + 1
		}
	}
	if phases > 0 {
		numTaps = numTaps*k - 1
	} else {
		numTaps |= 1
	}

	return MakeLPF(numTaps, (fc-trBW)/float64(k), mathutil.KaiserBeta(att), float64(k), true), nil
}
