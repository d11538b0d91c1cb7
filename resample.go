package effects

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/simd/cpu"

	"github.com/tphakala/go-audio-effects/internal/fft"
	"github.com/tphakala/go-audio-effects/internal/pipeline"
)

// Quality selects the filter design and stage types of a conversion.
type Quality = pipeline.Quality

const (
	// QualityQuick uses cubic interpolation. Fastest but lowest quality.
	QualityQuick = pipeline.QualityQuick

	// QualityLow provides 16-bit precision over an 80% band.
	QualityLow = pipeline.QualityLow

	// QualityMedium provides 16-bit precision over a 95% band.
	QualityMedium = pipeline.QualityMedium

	// QualityHigh provides 20-bit precision over a 95% band.
	QualityHigh = pipeline.QualityHigh

	// QualityVeryHigh provides 28-bit precision for mastering and archival.
	QualityVeryHigh = pipeline.QualityVeryHigh
)

// ParseQuality parses a quality name such as "high" or "v".
func ParseQuality(s string) (Quality, error) {
	return pipeline.ParseQuality(s)
}

// Config holds resampling configuration.
type Config struct {
	// InputRate is the sample rate of input audio in Hz.
	InputRate float64

	// OutputRate is the desired output sample rate in Hz.
	OutputRate float64

	// Channels is the number of audio channels to process.
	Channels int

	// Quality determines the filter parameters.
	Quality QualitySpec

	// EnableParallel processes channels concurrently in ProcessMulti and
	// FlushMulti. Has no effect on mono audio.
	EnableParallel bool
}

// QualitySpec defines resampling quality parameters.
type QualitySpec struct {
	// Preset is the quality level.
	Preset Quality

	// PhaseResponse in percent overrides the phase flags when non-zero:
	// 50 is linear phase, 100 maximum phase.
	PhaseResponse float64

	// Bandwidth is the passband edge as a percentage of the lower Nyquist
	// frequency. 0 selects the preset's band.
	Bandwidth float64

	// Flags for additional options.
	Flags QualityFlags
}

// QualityFlags provides additional quality options.
type QualityFlags uint32

const (
	// FlagMinimumPhase selects a minimum-phase filter for lowest latency.
	FlagMinimumPhase QualityFlags = 1 << iota

	// FlagIntermediatePhase selects a filter halfway between minimum and
	// linear phase.
	FlagIntermediatePhase

	// FlagAllowAliasing permits some aliasing for better passband response.
	// Only use when input is known to be bandlimited.
	FlagAllowAliasing
)

// Phase resolves the phase response in percent.
func (q *QualitySpec) Phase() float64 {
	switch {
	case q.PhaseResponse != 0:
		return q.PhaseResponse
	case q.Flags&FlagMinimumPhase != 0:
		return minimumPhase
	case q.Flags&FlagIntermediatePhase != 0:
		return intermediatePhase
	default:
		return linearPhaseResponse
	}
}

func (q *QualitySpec) options(cache *fft.Cache) pipeline.Options {
	return pipeline.Options{
		Quality:       q.Preset,
		Phase:         q.Phase(),
		Bandwidth:     q.Bandwidth,
		AllowAliasing: q.Flags&FlagAllowAliasing != 0,
		Cache:         cache,
	}
}

// Validate checks if the quality specification is valid.
func (q *QualitySpec) Validate() error {
	opts := q.options(nil)
	return opts.Validate()
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.InputRate <= 0 || c.OutputRate <= 0 || math.IsNaN(c.InputRate) || math.IsNaN(c.OutputRate) {
		return fmt.Errorf("%w: sample rates must be positive", ErrInvalidConfig)
	}

	if c.Channels < 1 {
		return fmt.Errorf("%w: channels must be at least 1", ErrInvalidConfig)
	}

	if c.Channels > maxChannels {
		return fmt.Errorf("%w: too many channels (max %d)", ErrInvalidConfig, maxChannels)
	}

	ratio := c.OutputRate / c.InputRate
	if ratio < minRatioFactor || ratio > maxRatioFactor {
		return fmt.Errorf("%w: resampling ratio out of range (%v to %v)", ErrInvalidConfig, minRatioFactor, maxRatioFactor)
	}

	return c.Quality.Validate()
}

// Resampler converts planar float64 audio between two fixed rates.
//
// Each channel runs its own pipeline built from one shared plan. Equal
// rates pass samples through unchanged.
type Resampler struct {
	config   Config
	plan     *pipeline.Plan
	cache    *fft.Cache
	channels []*channelState
}

// New creates a new resampler with the specified configuration.
func New(config *Config) (*Resampler, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	r := &Resampler{
		config: *config,
		cache:  fft.NewCache(),
	}

	plan, err := pipeline.NewPlan(config.InputRate, config.OutputRate, config.Quality.options(r.cache))
	switch {
	case errors.Is(err, ErrNoOp):
		plan = nil
	case err != nil:
		return nil, err
	}
	r.plan = plan

	r.channels = make([]*channelState, config.Channels)
	for i := range r.channels {
		ch, err := newChannelState(plan)
		if err != nil {
			return nil, fmt.Errorf("failed to create channel %d: %w", i, err)
		}
		r.channels[i] = ch
	}

	return r, nil
}

// Process resamples the first channel. The returned slice is owned by the
// caller.
func (r *Resampler) Process(input []float64) ([]float64, error) {
	return r.channels[0].process(input)
}

// ProcessFloat32 is like Process but for float32 samples.
// Internally converts to float64 for processing, then converts back.
func (r *Resampler) ProcessFloat32(input []float32) ([]float32, error) {
	output, err := r.Process(toFloat64(input))
	if err != nil {
		return nil, err
	}
	return toFloat32(output), nil
}

// ProcessMulti processes one slice per channel.
// When EnableParallel is set, channels are processed concurrently.
func (r *Resampler) ProcessMulti(input [][]float64) ([][]float64, error) {
	if len(input) != r.config.Channels {
		return nil, fmt.Errorf("%w: expected %d channels, got %d", ErrInvalidConfig, r.config.Channels, len(input))
	}
	return r.eachChannel(func(ch int, st *channelState) ([]float64, error) {
		return st.process(input[ch])
	})
}

// Flush returns the remaining samples of the first channel. After Flush the
// total output is exactly round(totalIn × ratio).
func (r *Resampler) Flush() ([]float64, error) {
	return r.channels[0].flush()
}

// FlushMulti flushes every channel.
func (r *Resampler) FlushMulti() ([][]float64, error) {
	return r.eachChannel(func(_ int, st *channelState) ([]float64, error) {
		return st.flush()
	})
}

// GetLatency returns the filter delay, in input samples, that the pipeline
// removes from its output.
func (r *Resampler) GetLatency() int {
	return int(math.Round(r.channels[0].latency()))
}

// Reset clears all internal state and buffers.
func (r *Resampler) Reset() {
	for _, ch := range r.channels {
		ch.reset()
	}
}

// GetRatio returns the resampling ratio (output_rate / input_rate).
func (r *Resampler) GetRatio() float64 {
	return r.config.OutputRate / r.config.InputRate
}

// Info returns information about the resampler implementation.
type Info struct {
	// Algorithm describes the stage chain, e.g. "dft(2:1) -> poly(160:147)".
	Algorithm string

	// Stages is the number of conversion stages.
	Stages int

	// FilterLength is the longest filter of any stage.
	FilterLength int

	// Phases is the largest polyphase phase count of any stage.
	Phases int

	// Latency is the compensated delay in input samples.
	Latency int

	// MemoryUsage is the approximate memory usage in bytes.
	MemoryUsage int64

	// SIMDType describes the CPU features the kernels can use.
	SIMDType string
}

// GetInfo returns information about the resampler.
func (r *Resampler) GetInfo() Info {
	info := Info{
		Algorithm: "passthrough",
		Latency:   r.GetLatency(),
		SIMDType:  cpu.Info(),
	}
	if r.plan != nil {
		info.Algorithm = r.plan.String()
		info.Stages = len(r.plan.Stages)
	}

	for _, ch := range r.channels {
		info.MemoryUsage += ch.memoryUsage()
	}
	if p := r.channels[0].pipe; p != nil {
		for _, s := range p.Stages() {
			info.FilterLength = max(info.FilterLength, s.GetFilterLength())
			info.Phases = max(info.Phases, s.GetPhases())
		}
	}

	return info
}
