package effects

import (
	"fmt"
	"io"
	"math"

	"github.com/tphakala/go-audio-effects/internal/fft"
	"github.com/tphakala/go-audio-effects/internal/fifo"
	"github.com/tphakala/go-audio-effects/internal/pipeline"
)

// RateOptions configures the rate effect.
type RateOptions struct {
	// TargetRate is the output rate in Hz. 0 takes the chain's output rate.
	TargetRate float64

	// Quality selects the filter design.
	Quality Quality

	// Phase response in percent: 25 intermediate, 50 linear, 100 maximum.
	// 0 selects linear phase, as in QualitySpec.
	Phase float64

	// MinimumPhase selects a minimum-phase filter and overrides Phase.
	MinimumPhase bool

	// Bandwidth is the passband edge as a percentage of the lower Nyquist
	// frequency, 74-99.7. 0 selects the quality preset.
	Bandwidth float64

	// AllowAliasing permits some aliasing above the passband in exchange
	// for shorter filters.
	AllowAliasing bool
}

// DefaultRateOptions returns high quality, linear phase options that take
// the target rate from the chain.
func DefaultRateOptions() RateOptions {
	return RateOptions{Quality: QualityHigh, Phase: linearPhaseResponse}
}

// Validate checks the options.
func (o *RateOptions) Validate() error {
	if o.TargetRate < 0 || math.IsNaN(o.TargetRate) || math.IsInf(o.TargetRate, 0) {
		return fmt.Errorf("%w: target rate must not be negative, got %v", ErrInvalidConfig, o.TargetRate)
	}
	popts := o.pipelineOptions(nil)
	return popts.Validate()
}

// phase resolves the phase response in percent.
func (o *RateOptions) phase() float64 {
	switch {
	case o.MinimumPhase:
		return minimumPhase
	case o.Phase == 0:
		return linearPhaseResponse
	default:
		return o.Phase
	}
}

func (o *RateOptions) pipelineOptions(cache *fft.Cache) pipeline.Options {
	return pipeline.Options{
		Quality:       o.Quality,
		Phase:         o.phase(),
		Bandwidth:     o.Bandwidth,
		AllowAliasing: o.AllowAliasing,
		Cache:         cache,
	}
}

// Rate converts the sample rate of one channel. The chain runs one clone per
// channel, all sharing a transform cache.
type Rate struct {
	opts  RateOptions
	cache *fft.Cache

	plan    *pipeline.Plan
	pipe    *pipeline.Pipeline
	fbuf    []float64
	pending *fifo.FIFO[float64]
	flushed bool
	clips   uint64
}

// NewRate validates opts and returns an unstarted rate effect.
func NewRate(opts RateOptions) (*Rate, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Rate{opts: opts, cache: fft.NewCache()}, nil
}

// Name implements Handler.
func (r *Rate) Name() string {
	return "rate"
}

// Flags implements Handler.
func (r *Rate) Flags() Flags {
	return FlagRate | FlagLength
}

// Start plans the conversion from in.Rate to the target rate. Equal rates
// return ErrNoOp.
func (r *Rate) Start(in, want Signal) (Signal, error) {
	target := r.opts.TargetRate
	if target == 0 {
		target = want.Rate
	}
	ratio := target / in.Rate
	if ratio < minRatioFactor || ratio > maxRatioFactor {
		return Signal{}, fmt.Errorf("%w: resampling ratio %v out of range (%v to %v)",
			ErrInvalidConfig, ratio, minRatioFactor, maxRatioFactor)
	}

	plan, err := pipeline.NewPlan(in.Rate, target, r.opts.pipelineOptions(r.cache))
	if err != nil {
		return Signal{}, err
	}
	r.pipe, err = plan.Build()
	if err != nil {
		return Signal{}, err
	}
	r.plan = plan
	r.pending = fifo.New[float64](defaultBufferSize)
	r.flushed = false

	out := want
	out.Rate = target
	if in.Length > 0 {
		frames := math.Round(float64(in.Frames()) * plan.Ratio())
		out.Length = uint64(frames) * uint64(in.Channels)
	}
	return out, nil
}

// Flow emits pending output first and accepts input only while output
// space remains.
func (r *Rate) Flow(in, out []Sample) (idone, odone int, err error) {
	odone = r.emit(out)
	if len(in) == 0 || odone == len(out) {
		return 0, odone, nil
	}

	if cap(r.fbuf) < len(in) {
		r.fbuf = make([]float64, len(in))
	}
	y, err := r.pipe.Process(SamplesToFloats(r.fbuf, in))
	if err != nil {
		return 0, odone, err
	}
	r.pending.Write(y)

	odone += r.emit(out[odone:])
	return len(in), odone, nil
}

// Drain flushes the filters once, then emits what is left.
func (r *Rate) Drain(out []Sample) (int, error) {
	if !r.flushed {
		tail, err := r.pipe.Flush()
		if err != nil {
			return 0, err
		}
		r.pending.Write(tail)
		r.flushed = true
	}
	n := r.emit(out)
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (r *Rate) emit(out []Sample) int {
	n := min(len(out), r.pending.Occupancy())
	if n == 0 {
		return 0
	}
	y, _ := r.pending.Peek(n)
	r.clips += FloatsToSamples(out[:n], y)
	r.pending.Read(n, nil)
	return n
}

// Stop releases the pipeline and returns the clip count.
func (r *Rate) Stop() uint64 {
	r.pipe = nil
	r.pending = nil
	return r.clips
}

// Clone implements Handler. Clones share the transform cache.
func (r *Rate) Clone() Handler {
	return &Rate{opts: r.opts, cache: r.cache}
}

// Latency returns the filter delay compensated inside the started pipeline,
// in input samples.
func (r *Rate) Latency() float64 {
	if r.pipe == nil {
		return 0
	}
	return r.pipe.Latency()
}

// Stages describes the planned stage chain, e.g. "dft(2:1) -> poly(160:147)".
// It is empty before Start.
func (r *Rate) Stages() string {
	if r.plan == nil {
		return ""
	}
	return r.plan.String()
}

// MinInput asks the chain to batch input up to one block of the first stage.
func (r *Rate) MinInput() int {
	if r.pipe == nil {
		return 1
	}
	return max(r.pipe.Stages()[0].GetMinInput(), 1)
}
