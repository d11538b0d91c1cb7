// Package pipeline decomposes a conversion ratio into engine stages and runs
// them as one streaming converter that conserves sample counts.
package pipeline

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tphakala/go-audio-effects/internal/engine"
	"github.com/tphakala/go-audio-effects/internal/fft"
	"github.com/tphakala/go-audio-effects/internal/filter"
)

var (
	// ErrNoOp is returned when the input and output rates are equal.
	ErrNoOp = errors.New("no conversion needed")
	// ErrInvalidConfig is returned for invalid rates or options.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Quality selects the filter design and stage types.
type Quality int

const (
	QualityQuick Quality = iota
	QualityLow
	QualityMedium
	QualityHigh
	QualityVeryHigh
)

var qualityNames = [...]string{"quick", "low", "medium", "high", "very-high"}

func (q Quality) String() string {
	if q < QualityQuick || q > QualityVeryHigh {
		return fmt.Sprintf("Quality(%d)", int(q))
	}
	return qualityNames[q]
}

// ParseQuality accepts the names returned by String plus the single-letter
// forms q, l, m, h and v.
func ParseQuality(s string) (Quality, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range qualityNames {
		if s == name || s == name[:1] {
			return Quality(i), nil
		}
	}
	if s == "veryhigh" || s == "very" {
		return QualityVeryHigh, nil
	}
	return 0, fmt.Errorf("%w: unknown quality %q", ErrInvalidConfig, s)
}

// qualitySpec is one row of the quality table.
type qualitySpec struct {
	bits      int
	bandwidth float64 // percent of the lower Nyquist frequency
	phases    int
	interp    filter.InterpOrder
}

var qualityTable = [...]qualitySpec{
	QualityQuick:    {bits: 8, bandwidth: 80},
	QualityLow:      {bits: 16, bandwidth: 80, phases: 64, interp: filter.InterpLinear},
	QualityMedium:   {bits: 16, bandwidth: 95, phases: 128, interp: filter.InterpQuadratic},
	QualityHigh:     {bits: 20, bandwidth: 95, phases: 256, interp: filter.InterpCubic},
	QualityVeryHigh: {bits: 28, bandwidth: 95, phases: 512, interp: filter.InterpCubic},
}

// Attenuation returns the stopband attenuation in dB for q.
func (q Quality) Attenuation() float64 {
	return float64(qualityTable[q].bits+1) * dbPerBit
}

// Options controls stage design.
type Options struct {
	Quality Quality

	// Phase response in percent: 0 minimum, 50 linear, 100 maximum.
	Phase float64

	// Bandwidth is the passband edge as a percentage of the lower Nyquist
	// frequency. 0 selects the quality preset.
	Bandwidth float64

	// AllowAliasing trades rejection above the passband for shorter filters.
	AllowAliasing bool

	// Cache holds transform plans; nil uses fft.Default.
	Cache *fft.Cache
}

// DefaultOptions returns high quality, linear phase options.
func DefaultOptions() Options {
	return Options{Quality: QualityHigh, Phase: defaultPhase}
}

// Validate checks the options.
func (o *Options) Validate() error {
	if o.Quality < QualityQuick || o.Quality > QualityVeryHigh {
		return fmt.Errorf("%w: quality %d out of range", ErrInvalidConfig, o.Quality)
	}
	if o.Phase < minPhase || o.Phase > maxPhase || math.IsNaN(o.Phase) {
		return fmt.Errorf("%w: phase %v must be in [%v, %v]", ErrInvalidConfig, o.Phase, minPhase, maxPhase)
	}
	if o.Bandwidth != 0 && (o.Bandwidth < minBandwidth || o.Bandwidth > maxBandwidth) {
		return fmt.Errorf("%w: bandwidth %v must be in [%v, %v]", ErrInvalidConfig, o.Bandwidth, minBandwidth, maxBandwidth)
	}
	return nil
}

func (o *Options) bandwidth() float64 {
	if o.Bandwidth != 0 {
		return o.Bandwidth
	}
	return qualityTable[o.Quality].bandwidth
}

// StageSpec describes one planned stage.
type StageSpec struct {
	Kind            engine.Kind
	L, M            int // DFT stages
	InRate, OutRate float64

	// Filter edges in Hz, and the Nyquist frequency of the rate the filter runs at.
	Fp, Fc, Fn float64

	Phases int // poly stages
	Interp filter.InterpOrder
}

// Ratio returns the stage's output rate / input rate.
func (s StageSpec) Ratio() float64 {
	return s.OutRate / s.InRate
}

func (s StageSpec) String() string {
	switch s.Kind {
	case engine.KindDFT, engine.KindHalfBand:
		return fmt.Sprintf("%s %d/%d %.6g->%.6g Hz", s.Kind, s.L, s.M, s.InRate, s.OutRate)
	case engine.KindPoly:
		return fmt.Sprintf("%s %.6g->%.6g Hz (%d phases, %s)", s.Kind, s.InRate, s.OutRate, s.Phases, s.Interp)
	default:
		return fmt.Sprintf("%s %.6g->%.6g Hz", s.Kind, s.InRate, s.OutRate)
	}
}

// Plan is the stage decomposition for one rate pair.
type Plan struct {
	InRate, OutRate float64
	Options         Options
	Attenuation     float64
	Stages          []StageSpec

	// L/M is the exact ratio when one was found within the divisor limit.
	L, M  int
	Exact bool
}

// Factor returns input rate / output rate.
func (p *Plan) Factor() float64 {
	return p.InRate / p.OutRate
}

// Ratio returns output rate / input rate.
func (p *Plan) Ratio() float64 {
	return p.OutRate / p.InRate
}

// String lists the stages in processing order.
func (p *Plan) String() string {
	parts := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		parts[i] = s.String()
	}
	return strings.Join(parts, " -> ")
}

// NewPlan decomposes inRate → outRate into stages.
//
// Equal rates return ErrNoOp. Quick quality uses a single cubic stage.
// Otherwise an exact ratio with small L and M is one DFT stage; power-of-two
// factors become half-band stages, a small odd residual becomes a DFT stage
// and anything else goes to one polyphase stage. Stages that raise the rate
// run first so no intermediate rate drops below the lower of the two rates.
func NewPlan(inRate, outRate float64, opts Options) (*Plan, error) {
	if !(inRate > 0) || !(outRate > 0) || math.IsInf(inRate, 0) || math.IsInf(outRate, 0) {
		return nil, fmt.Errorf("%w: rates must be positive: input=%v, output=%v", ErrInvalidConfig, inRate, outRate)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	ratio := outRate / inRate
	if math.Abs(ratio-1) <= ratioTolerance {
		return nil, ErrNoOp
	}

	p := &Plan{
		InRate:      inRate,
		OutRate:     outRate,
		Options:     opts,
		Attenuation: opts.Quality.Attenuation(),
		Stages:      make([]StageSpec, 0, defaultStageCapacity),
	}
	p.L, p.M, p.Exact = rational(ratio, maxDivisor)

	if opts.Quality == QualityQuick {
		p.Stages = append(p.Stages, StageSpec{Kind: engine.KindCubic, InRate: inRate, OutRate: outRate})
		return p, nil
	}

	var moves []move
	switch {
	case p.Exact && p.L <= maxSingleDFTFactor && p.M <= maxSingleDFTFactor && !(fft.IsPow2(p.L) && fft.IsPow2(p.M)):
		moves = []move{{l: p.L, m: p.M}}
	case p.Exact:
		moves = p.exactMoves()
	default:
		moves = p.genericMoves(ratio)
	}
	if moves == nil {
		moves = p.genericMoves(ratio)
	}

	p.Stages = p.layout(moves)
	return p, nil
}

// move is one planned rate change before rates and filter edges are known.
type move struct {
	l, m  int
	ratio float64 // poly
	poly  bool
}

func (mv move) up() bool {
	if mv.poly {
		return mv.ratio > 1
	}
	return mv.l > mv.m
}

// exactMoves splits L/M into half-band stages and a small residual DFT
// stage. It returns nil when the residual is too large.
func (p *Plan) exactMoves() []move {
	ups, l := splitPow2(p.L)
	downs, m := splitPow2(p.M)
	if l > maxResidualDFTFactor || m > maxResidualDFTFactor {
		return nil
	}

	var moves []move
	for range ups {
		moves = append(moves, move{l: 2, m: 1})
	}
	for range downs {
		moves = append(moves, move{l: 1, m: 2})
	}
	if l != 1 || m != 1 {
		moves = append(moves, move{l: l, m: m})
	}
	return moves
}

// genericMoves brings the ratio into (0.5, 2) with half-band stages and
// leaves the rest to one polyphase stage.
func (p *Plan) genericMoves(ratio float64) []move {
	var moves []move
	res := ratio
	for res <= halfRatio {
		moves = append(moves, move{l: 1, m: 2})
		res *= doubleRatio
	}
	for res >= doubleRatio {
		moves = append(moves, move{l: 2, m: 1})
		res /= doubleRatio
	}
	if math.Abs(res-1) > ratioTolerance {
		moves = append(moves, move{poly: true, ratio: res})
	}
	return moves
}

// layout orders moves (rate-raising first: the residual, then doublings;
// then halvings, then a rate-lowering residual) and assigns rates and
// filter edges.
func (p *Plan) layout(moves []move) []StageSpec {
	var ordered []move
	isHalfBand := func(mv move) bool { return !mv.poly && mv.l*mv.m == 2 }

	for _, mv := range moves {
		if mv.up() && !isHalfBand(mv) {
			ordered = append(ordered, mv)
		}
	}
	for _, mv := range moves {
		if mv.up() && isHalfBand(mv) {
			ordered = append(ordered, mv)
		}
	}
	for _, mv := range moves {
		if !mv.up() && isHalfBand(mv) {
			ordered = append(ordered, mv)
		}
	}
	for _, mv := range moves {
		if !mv.up() && !isHalfBand(mv) {
			ordered = append(ordered, mv)
		}
	}

	low := math.Min(p.InRate, p.OutRate)
	fp := p.Options.bandwidth() / percent * low / 2
	qs := qualityTable[p.Options.Quality]

	stages := make([]StageSpec, 0, len(ordered))
	rate := p.InRate
	for i, mv := range ordered {
		spec := StageSpec{InRate: rate}
		switch {
		case mv.poly:
			spec.Kind = engine.KindPoly
			spec.OutRate = rate * mv.ratio
			spec.Phases = qs.phases
			spec.Interp = qs.interp
			spec.Fn = rate / 2
		default:
			spec.Kind = engine.KindDFT
			if isHalfBand(mv) {
				spec.Kind = engine.KindHalfBand
			}
			spec.L, spec.M = mv.l, mv.m
			spec.OutRate = rate * float64(mv.l) / float64(mv.m)
			spec.Fn = rate * float64(mv.l) / 2
		}
		if i == len(ordered)-1 {
			spec.OutRate = p.OutRate
		}

		stageLow := math.Min(spec.InRate, spec.OutRate)
		spec.Fp = math.Min(fp, stageLow/2)
		touchesLow := math.Abs(stageLow-low) <= ratioTolerance*low
		if touchesLow && !p.Options.AllowAliasing {
			spec.Fc = stageLow / 2
		} else {
			// Aliases of this band land above fp.
			spec.Fc = stageLow - spec.Fp
		}

		stages = append(stages, spec)
		rate = spec.OutRate
	}

	return stages
}

// splitPow2 returns k and odd r with n = 2^k · r.
func splitPow2(n int) (k, r int) {
	for n > 0 && n%2 == 0 {
		n /= 2
		k++
	}
	return k, n
}

// rational finds l/m ≈ x with m ≤ maxDen using continued fractions.
func rational(x float64, maxDen int) (l, m int, exact bool) {
	h0, h1 := 0, 1
	k0, k1 := 1, 0
	v := x
	for range 64 {
		a := math.Floor(v)
		ai := int(a)
		h2 := ai*h1 + h0
		k2 := ai*k1 + k0
		if k2 > maxDen || h2 > maxDen*maxDen {
			break
		}
		h0, h1 = h1, h2
		k0, k1 = k1, k2
		if math.Abs(float64(h1)/float64(k1)-x) <= ratioTolerance*x {
			return h1, k1, true
		}
		frac := v - a
		if frac < 1e-15 {
			break
		}
		v = 1 / frac
	}
	return 0, 0, false
}
