package engine

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"

	"github.com/tphakala/go-audio-effects/internal/fifo"
	"github.com/tphakala/go-audio-effects/internal/filter"
)

// PolyStage converts by an arbitrary ratio with a polyphase filter bank.
//
// The accumulator position selects, for every output, the history window
// (integer part), the phase (top bits of the fraction scaled by the phase
// count) and the sub-phase position x used to interpolate each coefficient
// towards the next phase. The history is prefilled so that the first output
// lines up with the first input sample.
type PolyStage struct {
	ratio float64
	bank  *filter.Bank
	step  Phase

	pre   int   // zeros ahead of the first input sample
	start Phase // accumulator after Reset

	at   Phase
	hist *fifo.FIFO[float64]
	out  []float64
}

// NewPolyStage creates a stage with output rate = ratio × input rate.
func NewPolyStage(ratio float64, bank *filter.Bank) (*PolyStage, error) {
	if ratio <= 0 || math.IsInf(ratio, 0) || math.IsNaN(ratio) {
		return nil, fmt.Errorf("%w: ratio %v", ErrInvalidParams, ratio)
	}
	if bank == nil {
		return nil, fmt.Errorf("%w: nil filter bank", ErrInvalidParams)
	}

	delay := bank.Delay()
	pre := max(int(math.Ceil(delay)), 0)

	s := &PolyStage{
		ratio: ratio,
		bank:  bank,
		step:  StepFor(ratio),
		pre:   pre,
		start: PhaseOf(float64(pre) - delay),
		hist:  fifo.New[float64](max(initialFIFOCapacity, 4*bank.TapsPerPhase)),
	}
	s.Reset()

	return s, nil
}

// Process implements Stage.
func (s *PolyStage) Process(input []float64) ([]float64, error) {
	s.hist.Write(input)
	s.out = s.out[:0]

	hist := s.hist.Items()
	taps := s.bank.TapsPerPhase
	phases := uint64(s.bank.NumPhases)
	interpolate := s.bank.Interp != filter.InterpNone

	at := s.at
	for int(at.Int)+taps <= len(hist) {
		pf := uint64(at.Frac) * phases
		phase := int(pf >> 32)
		x := float64(uint32(pf)) / fracScale

		window := hist[at.Int : int(at.Int)+taps]
		a, b, c, d := s.bank.Terms(phase)

		var sum float64
		if interpolate {
			sum = f64.CubicInterpDot(window, a, b, c, d, x)
		} else {
			sum = f64.DotProductUnsafe(window, a)
		}
		s.out = append(s.out, sum)
		at = at.Add(s.step)
	}

	consumed := min(at.Int, int64(len(hist)))
	s.hist.Read(int(consumed), nil)
	s.at = at.Rebase(consumed)

	return s.out, nil
}

// Reset implements Stage.
func (s *PolyStage) Reset() {
	s.hist.Clear()
	s.hist.WriteZeros(s.pre)
	s.at = s.start
	s.out = s.out[:0]
}

// GetRatio implements Stage.
func (s *PolyStage) GetRatio() float64 {
	return s.ratio
}

// GetLatency implements Stage.
func (s *PolyStage) GetLatency() float64 {
	return s.bank.Delay()
}

// GetMinInput implements Stage.
func (s *PolyStage) GetMinInput() int {
	return s.bank.TapsPerPhase
}

// GetMemoryUsage implements Stage.
func (s *PolyStage) GetMemoryUsage() int64 {
	return s.bank.MemoryBytes() + int64(s.hist.Capacity())*8
}

// GetFilterLength implements Stage.
func (s *PolyStage) GetFilterLength() int {
	return s.bank.TapsPerPhase
}

// GetPhases implements Stage.
func (s *PolyStage) GetPhases() int {
	return s.bank.NumPhases
}

// Kind implements Stage.
func (s *PolyStage) Kind() Kind {
	return KindPoly
}

// Interp returns the coefficient interpolation order.
func (s *PolyStage) Interp() filter.InterpOrder {
	return s.bank.Interp
}

var _ Stage = (*PolyStage)(nil)
