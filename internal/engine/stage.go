// Package engine implements the sample-rate conversion stages: block DFT
// convolution for integer ratios, polyphase interpolation for arbitrary
// ratios, and a cubic spline for the lowest quality setting.
package engine

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is returned when a stage cannot be built from its parameters.
var ErrInvalidParams = errors.New("invalid stage parameters")

// Kind identifies the algorithm of a stage.
type Kind int

const (
	KindCubic Kind = iota
	KindPoly
	KindDFT
	KindHalfBand
)

func (k Kind) String() string {
	switch k {
	case KindCubic:
		return "cubic"
	case KindPoly:
		return "poly"
	case KindDFT:
		return "dft"
	case KindHalfBand:
		return "half-band"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Stage is one step of a conversion pipeline, processing a single channel.
//
// Process buffers whatever it cannot use yet and returns every output sample
// it can compute from the input seen so far. The returned slice is owned by
// the stage and valid until the next call. Output is latency compensated:
// output sample k corresponds to input time k/GetRatio().
type Stage interface {
	Process(input []float64) ([]float64, error)
	Reset()

	// GetRatio returns output rate / input rate.
	GetRatio() float64
	// GetLatency returns the filter delay in input samples that the stage
	// compensates internally.
	GetLatency() float64
	// GetMinInput returns the buffered input needed before output appears.
	GetMinInput() int
	GetMemoryUsage() int64
	GetFilterLength() int
	GetPhases() int
	Kind() Kind
}

// fracScale is 2^32, the fixed-point unit of Phase.Frac.
const fracScale = 1 << 32

// Phase is a 32.32 fixed-point position in input samples. Int may run up to
// the amount of buffered input; Rebase subtracts what has been consumed.
type Phase struct {
	Int  int64
	Frac uint32
}

// PhaseOf converts a non-negative position to fixed point, rounding to the
// nearest 2^-32.
func PhaseOf(v float64) Phase {
	scaled := math.Round(v * fracScale)
	whole := math.Floor(scaled / fracScale)
	return Phase{Int: int64(whole), Frac: uint32(scaled - whole*fracScale)}
}

// StepFor returns the per-output advance for a stage whose output rate is
// ratio times its input rate.
func StepFor(ratio float64) Phase {
	return PhaseOf(1 / ratio)
}

// Add advances p by step, carrying from the fraction.
func (p Phase) Add(step Phase) Phase {
	frac := uint64(p.Frac) + uint64(step.Frac)
	return Phase{
		Int:  p.Int + step.Int + int64(frac>>32),
		Frac: uint32(frac),
	}
}

// Rebase moves the origin forward by n consumed input samples.
func (p Phase) Rebase(n int64) Phase {
	p.Int -= n
	return p
}

// Float returns p as a floating-point sample position.
func (p Phase) Float() float64 {
	return float64(p.Int) + float64(p.Frac)/fracScale
}
