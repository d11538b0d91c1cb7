package effects

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tphakala/go-audio-effects/internal/pipeline"
)

// channelState holds the pipeline of one channel. A nil pipe passes samples
// through unchanged.
type channelState struct {
	pipe *pipeline.Pipeline
}

// newChannelState builds a pipeline for plan, or a passthrough for nil.
func newChannelState(plan *pipeline.Plan) (*channelState, error) {
	if plan == nil {
		return &channelState{}, nil
	}
	p, err := plan.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	return &channelState{pipe: p}, nil
}

func (c *channelState) process(input []float64) ([]float64, error) {
	if c.pipe == nil {
		return append([]float64(nil), input...), nil
	}
	out, err := c.pipe.Process(input)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), out...), nil
}

func (c *channelState) flush() ([]float64, error) {
	if c.pipe == nil {
		return []float64{}, nil
	}
	out, err := c.pipe.Flush()
	if err != nil {
		return nil, err
	}
	return append([]float64{}, out...), nil
}

func (c *channelState) reset() {
	if c.pipe != nil {
		c.pipe.Reset()
	}
}

func (c *channelState) latency() float64 {
	if c.pipe == nil {
		return 0
	}
	return c.pipe.Latency()
}

func (c *channelState) memoryUsage() int64 {
	if c.pipe == nil {
		return 0
	}
	return c.pipe.MemoryUsage()
}

// eachChannel runs fn for every channel, concurrently when parallel
// processing is enabled. The first error is returned once every channel
// has finished.
func (r *Resampler) eachChannel(fn func(ch int, st *channelState) ([]float64, error)) ([][]float64, error) {
	output := make([][]float64, len(r.channels))

	if !r.config.EnableParallel || len(r.channels) <= 1 {
		for ch, st := range r.channels {
			result, err := fn(ch, st)
			if err != nil {
				return nil, fmt.Errorf("channel %d: %w", ch, err)
			}
			output[ch] = result
		}
		return output, nil
	}

	var g errgroup.Group
	for ch, st := range r.channels {
		g.Go(func() error {
			result, err := fn(ch, st)
			if err != nil {
				return fmt.Errorf("channel %d: %w", ch, err)
			}
			output[ch] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return output, nil
}
