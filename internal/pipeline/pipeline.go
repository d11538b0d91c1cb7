package pipeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/tphakala/simd/f64"

	"github.com/tphakala/go-audio-effects/internal/engine"
	"github.com/tphakala/go-audio-effects/internal/filter"
	"github.com/tphakala/go-audio-effects/internal/log"
)

// ErrFlushStalled is returned when zero feeding stops producing output.
var ErrFlushStalled = errors.New("flush made no progress")

// Pipeline runs the stages of a plan for one channel.
//
// Output sample k corresponds to input time k·factor, and after Flush the
// total output is exactly round(totalIn / factor).
type Pipeline struct {
	plan   *Plan
	stages []engine.Stage

	totalIn  int64
	totalOut int64

	zeros []float64
	flush []float64
}

// Build designs the filters and instantiates the stages of the plan.
func (p *Plan) Build() (*Pipeline, error) {
	stages := make([]engine.Stage, 0, len(p.Stages))
	for i, spec := range p.Stages {
		s, err := p.buildStage(spec)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, spec, err)
		}
		log.Std().WithFields(logrus.Fields{
			"stage":  i,
			"kind":   spec.Kind,
			"in":     spec.InRate,
			"out":    spec.OutRate,
			"taps":   s.GetFilterLength(),
			"phases": s.GetPhases(),
		}).Debug("built conversion stage")
		stages = append(stages, s)
	}

	return &Pipeline{
		plan:   p,
		stages: stages,
		zeros:  make([]float64, flushChunk),
	}, nil
}

func (p *Plan) buildStage(spec StageSpec) (engine.Stage, error) {
	opts := p.Options

	switch spec.Kind {
	case engine.KindCubic:
		return engine.NewCubicStage(spec.Ratio())

	case engine.KindPoly:
		proto, err := filter.DesignLPF(spec.Fp, spec.Fc, spec.Fn, opts.AllowAliasing, p.Attenuation, 0, spec.Phases)
		if err != nil {
			return nil, err
		}
		bank, err := filter.NewBank(proto, spec.Phases, spec.Interp)
		if err != nil {
			return nil, err
		}
		return engine.NewPolyStage(spec.Ratio(), bank)

	case engine.KindDFT, engine.KindHalfBand:
		h, err := filter.DesignLPF(spec.Fp, spec.Fc, spec.Fn, opts.AllowAliasing, p.Attenuation, 0, 0)
		if err != nil {
			return nil, err
		}
		f64.Scale(h, h, float64(spec.L))

		postPeak := -1
		if opts.Phase != defaultPhase {
			h, postPeak = filter.FirToPhase(opts.Cache, h, opts.Phase)
		}

		return engine.NewDFTStage(engine.DFTConfig{
			L:        spec.L,
			M:        spec.M,
			Filter:   h,
			PostPeak: postPeak,
			HalfBand: spec.Kind == engine.KindHalfBand,
			Cache:    opts.Cache,
		})

	default:
		return nil, fmt.Errorf("%w: unknown stage kind %v", ErrInvalidConfig, spec.Kind)
	}
}

// Process converts a block of input. The returned slice belongs to the
// pipeline and is valid until the next call.
func (p *Pipeline) Process(input []float64) ([]float64, error) {
	p.totalIn += int64(len(input))
	out, err := p.run(input)
	if err != nil {
		return nil, err
	}
	p.totalOut += int64(len(out))
	return out, nil
}

func (p *Pipeline) run(data []float64) ([]float64, error) {
	var err error
	for i, s := range p.stages {
		if data, err = s.Process(data); err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
	}
	return data, nil
}

// Flush drains the stages by feeding silence and returns exactly the
// samples still owed: round(totalIn / factor) minus what was already
// emitted, never more. Reset before reusing the pipeline.
func (p *Pipeline) Flush() ([]float64, error) {
	owed := p.Expected() - p.totalOut
	if owed <= 0 {
		return nil, nil
	}

	p.flush = p.flush[:0]
	for range maxFlushIterations {
		if int64(len(p.flush)) >= owed {
			break
		}
		out, err := p.run(p.zeros)
		if err != nil {
			return nil, err
		}
		p.flush = append(p.flush, out...)
	}
	if int64(len(p.flush)) < owed {
		return nil, fmt.Errorf("%w: %d of %d samples", ErrFlushStalled, len(p.flush), owed)
	}

	out := p.flush[:owed]
	p.totalOut += owed
	return out, nil
}

// Expected returns round(totalIn / factor), the output length once flushed.
func (p *Pipeline) Expected() int64 {
	if p.plan.Exact {
		return (p.totalIn*int64(p.plan.L) + int64(p.plan.M)/2) / int64(p.plan.M)
	}
	return int64(math.Round(float64(p.totalIn) * p.plan.Ratio()))
}

// Reset returns every stage to its initial state.
func (p *Pipeline) Reset() {
	for _, s := range p.stages {
		s.Reset()
	}
	p.totalIn, p.totalOut = 0, 0
}

// Plan returns the plan the pipeline was built from.
func (p *Pipeline) Plan() *Plan {
	return p.plan
}

// Stages returns the running stages.
func (p *Pipeline) Stages() []engine.Stage {
	return p.stages
}

// Totals returns the samples consumed and produced so far.
func (p *Pipeline) Totals() (in, out int64) {
	return p.totalIn, p.totalOut
}

// Latency returns the compensated filter delay of all stages in input
// samples.
func (p *Pipeline) Latency() float64 {
	var total float64
	scale := 1.0
	for _, s := range p.stages {
		total += s.GetLatency() * scale
		scale /= s.GetRatio()
	}
	return total
}

// MemoryUsage sums the stages' buffers and tables.
func (p *Pipeline) MemoryUsage() int64 {
	var total int64
	for _, s := range p.stages {
		total += s.GetMemoryUsage()
	}
	return total
}
