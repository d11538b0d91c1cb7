package filter

import (
	"fmt"
)

const (
	minNumPhases = 1
	maxNumPhases = 8192

	// Interpolation polynomial coefficients
	centreCoeff = 0.5
	cubicDCoeff = 1.0 / 6.0
	cubicCMult  = 4.0

	bytesPerCoeff = 8
)

// InterpOrder is the order of the polynomial used to interpolate a
// coefficient between adjacent phases.
type InterpOrder int

const (
	// InterpNone uses the nearest phase.
	InterpNone InterpOrder = 0
	// InterpLinear interpolates linearly towards the next phase.
	InterpLinear InterpOrder = 1
	// InterpQuadratic fits a parabola through the previous, current and next phase.
	InterpQuadratic InterpOrder = 2
	// InterpCubic fits a cubic through four neighbouring phases.
	InterpCubic InterpOrder = 3
)

func (o InterpOrder) String() string {
	switch o {
	case InterpNone:
		return "none"
	case InterpLinear:
		return "linear"
	case InterpQuadratic:
		return "quadratic"
	case InterpCubic:
		return "cubic"
	default:
		return fmt.Sprintf("InterpOrder(%d)", int(o))
	}
}

// Bank is a polyphase decomposition of a prototype low-pass filter.
//
// Phase p holds taps prototype[t*P+p] for t = 0..TapsPerPhase-1, stored in
// reverse tap order so that a dot product against input history in
// chronological order applies the filter. Each coefficient carries polynomial
// terms in the sub-phase position x ∈ [0, 1):
//
//	h(x) = A + x·(B + x·(C + x·D))
//
// Neighbouring phases are found through the flat prototype index, so the
// last phase of one tap interpolates into phase 0 of the next tap. Indices
// outside the prototype read as zero.
type Bank struct {
	NumPhases    int
	TapsPerPhase int
	PrototypeLen int
	Interp       InterpOrder

	a, b, c, d [][]float64
	zeros      []float64
}

// NewBank decomposes prototype into phases sub-filters.
func NewBank(prototype []float64, phases int, interp InterpOrder) (*Bank, error) {
	if phases < minNumPhases || phases > maxNumPhases {
		return nil, fmt.Errorf("%w: phases %d out of range [%d, %d]",
			ErrInvalidDesign, phases, minNumPhases, maxNumPhases)
	}
	if interp < InterpNone || interp > InterpCubic {
		return nil, fmt.Errorf("%w: unknown interpolation order %d", ErrInvalidDesign, interp)
	}
	if len(prototype) == 0 {
		return nil, fmt.Errorf("%w: empty prototype", ErrInvalidDesign)
	}

	taps := (len(prototype) + phases - 1) / phases
	bank := &Bank{
		NumPhases:    phases,
		TapsPerPhase: taps,
		PrototypeLen: len(prototype),
		Interp:       interp,
		a:            make([][]float64, phases),
		zeros:        make([]float64, taps),
	}
	if interp >= InterpLinear {
		bank.b = make([][]float64, phases)
	}
	if interp >= InterpQuadratic {
		bank.c = make([][]float64, phases)
	}
	if interp == InterpCubic {
		bank.d = make([][]float64, phases)
	}

	at := func(i int) float64 {
		if i < 0 || i >= len(prototype) {
			return 0
		}
		return prototype[i]
	}

	for p := range phases {
		bank.a[p] = make([]float64, taps)
		if bank.b != nil {
			bank.b[p] = make([]float64, taps)
		}
		if bank.c != nil {
			bank.c[p] = make([]float64, taps)
		}
		if bank.d != nil {
			bank.d[p] = make([]float64, taps)
		}

		for t := range taps {
			idx := t*phases + p
			j := taps - 1 - t

			fm1, f0, f1, f2 := at(idx-1), at(idx), at(idx+1), at(idx+2)
			bank.a[p][j] = f0

			switch interp {
			case InterpLinear:
				bank.b[p][j] = f1 - f0
			case InterpQuadratic:
				bank.b[p][j] = centreCoeff * (f1 - fm1)
				bank.c[p][j] = centreCoeff*(f1+fm1) - f0
			case InterpCubic:
				c := centreCoeff*(f1+fm1) - f0
				d := cubicDCoeff * (f2 - f1 + fm1 - f0 - cubicCMult*c)
				bank.b[p][j] = f1 - f0 - d - c
				bank.c[p][j] = c
				bank.d[p][j] = d
			}
		}
	}

	return bank, nil
}

// Terms returns the reversed polynomial terms of a phase. Terms above the
// bank's interpolation order are a shared zero slice.
func (b *Bank) Terms(phase int) (a, bt, c, d []float64) {
	a, bt, c, d = b.a[phase], b.zeros, b.zeros, b.zeros
	if b.b != nil {
		bt = b.b[phase]
	}
	if b.c != nil {
		c = b.c[phase]
	}
	if b.d != nil {
		d = b.d[phase]
	}
	return a, bt, c, d
}

// Coefficient evaluates tap (in prototype order) of phase at sub-phase position frac.
func (b *Bank) Coefficient(tap, phase int, frac float64) float64 {
	a, bt, c, d := b.Terms(phase)
	j := b.TapsPerPhase - 1 - tap
	return a[j] + frac*(bt[j]+frac*(c[j]+frac*d[j]))
}

// Delay returns the group delay, in input samples, of a dot product over
// TapsPerPhase samples of history: the distance from the oldest sample to
// the prototype centre when the phase position is zero.
func (b *Bank) Delay() float64 {
	return float64(b.TapsPerPhase-1) - float64(b.PrototypeLen-1)/2/float64(b.NumPhases)
}

// MemoryBytes reports the size of the coefficient tables.
func (b *Bank) MemoryBytes() int64 {
	tables := 1 + int64(b.Interp)
	return tables * int64(b.NumPhases) * int64(b.TapsPerPhase) * bytesPerCoeff
}
