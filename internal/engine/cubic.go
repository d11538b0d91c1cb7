package engine

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-effects/internal/fifo"
)

// Cubic (Hermite) interpolation constants
const (
	// Cubic interpolation uses 4-point window
	cubicInterpolationPoints = 4

	// One sample of history ahead of the first input aligns output 0 with input 0.
	cubicPrefill = 1

	// Hermite interpolation coefficients for smooth C1 continuity
	// Formula: y = ((a*x + b)*x + c)*x + d
	hermiteCoeff0_5 = 0.5
	hermiteCoeff1_5 = 1.5
	hermiteCoeff2_5 = 2.5

	cubicFIFOCapacity = 1024
)

// CubicStage implements cubic (4-point, 3rd order) Hermite interpolation.
// This is the fastest but lowest quality conversion; it has no anti-alias
// filter.
type CubicStage struct {
	ratio float64
	step  Phase
	at    Phase
	hist  *fifo.FIFO[float64]
	out   []float64
}

// NewCubicStage creates a stage with output rate = ratio × input rate.
func NewCubicStage(ratio float64) (*CubicStage, error) {
	if ratio <= 0 || math.IsInf(ratio, 0) || math.IsNaN(ratio) {
		return nil, fmt.Errorf("%w: ratio %v", ErrInvalidParams, ratio)
	}
	c := &CubicStage{
		ratio: ratio,
		step:  StepFor(ratio),
		hist:  fifo.New[float64](cubicFIFOCapacity),
	}
	c.Reset()
	return c, nil
}

// Process resamples input using cubic interpolation.
func (c *CubicStage) Process(input []float64) ([]float64, error) {
	c.hist.Write(input)
	c.out = c.out[:0]

	hist := c.hist.Items()
	at := c.at
	for int(at.Int)+cubicInterpolationPoints <= len(hist) {
		i := at.Int
		x := float64(at.Frac) / fracScale
		c.out = append(c.out, interpolate(hist[i], hist[i+1], hist[i+2], hist[i+3], x))
		at = at.Add(c.step)
	}

	consumed := min(at.Int, int64(len(hist)))
	c.hist.Read(int(consumed), nil)
	c.at = at.Rebase(consumed)

	return c.out, nil
}

// interpolate performs cubic Hermite interpolation between y1 and y2.
// Uses the formula: y = ((a*x + b)*x + c)*x + d
// where x is the fractional position between samples.
func interpolate(y0, y1, y2, y3, x float64) float64 {
	coefA := -hermiteCoeff0_5*y0 + hermiteCoeff1_5*y1 - hermiteCoeff1_5*y2 + hermiteCoeff0_5*y3
	coefB := y0 - hermiteCoeff2_5*y1 + 2*y2 - hermiteCoeff0_5*y3
	coefC := -hermiteCoeff0_5*y0 + hermiteCoeff0_5*y2
	coefD := y1

	return ((coefA*x+coefB)*x+coefC)*x + coefD
}

// Reset clears internal state.
func (c *CubicStage) Reset() {
	c.hist.Clear()
	c.hist.WriteZeros(cubicPrefill)
	c.at = Phase{}
	c.out = c.out[:0]
}

// GetRatio returns the stage's resampling ratio.
func (c *CubicStage) GetRatio() float64 {
	return c.ratio
}

// GetLatency returns 0: the prefill already aligns the output.
func (c *CubicStage) GetLatency() float64 {
	return 0
}

// GetMinInput returns the minimum input size for processing.
func (c *CubicStage) GetMinInput() int {
	return cubicInterpolationPoints - cubicPrefill
}

// GetMemoryUsage returns approximate memory usage in bytes.
func (c *CubicStage) GetMemoryUsage() int64 {
	return int64(c.hist.Capacity()+cap(c.out)) * 8
}

// GetFilterLength returns the interpolation window.
func (c *CubicStage) GetFilterLength() int {
	return cubicInterpolationPoints
}

// GetPhases returns 0 as cubic doesn't use phases.
func (c *CubicStage) GetPhases() int {
	return 0
}

// Kind implements Stage.
func (c *CubicStage) Kind() Kind {
	return KindCubic
}

var _ Stage = (*CubicStage)(nil)
