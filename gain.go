package effects

import (
	"fmt"
	"io"
	"math"

	"github.com/tphakala/simd/f64"
)

// Gain scales every channel by a fixed amount in dB, saturating and counting
// clips.
type Gain struct {
	db     float64
	factor float64
	buf    []float64
	clips  uint64
}

// NewGain returns a gain effect of db decibels.
func NewGain(db float64) (*Gain, error) {
	if math.IsNaN(db) || math.Abs(db) > maxGainDB {
		return nil, fmt.Errorf("%w: gain must be within ±%v dB, got %v", ErrInvalidConfig, maxGainDB, db)
	}
	return &Gain{db: db, factor: math.Pow(10, db/dbPerDecade)}, nil
}

// Name implements Handler.
func (g *Gain) Name() string {
	return "gain"
}

// Flags implements Handler.
func (g *Gain) Flags() Flags {
	return FlagMultiChannel
}

// Start returns ErrNoOp for 0 dB.
func (g *Gain) Start(_, want Signal) (Signal, error) {
	if g.db == 0 {
		return Signal{}, ErrNoOp
	}
	return want, nil
}

// Flow implements Handler.
func (g *Gain) Flow(in, out []Sample) (idone, odone int, err error) {
	n := min(len(in), len(out))
	if cap(g.buf) < n {
		g.buf = make([]float64, n)
	}
	buf := SamplesToFloats(g.buf, in[:n])
	f64.Scale(buf, buf, g.factor)
	g.clips += FloatsToSamples(out, buf)
	return n, n, nil
}

// Drain implements Handler. Gain holds no samples.
func (g *Gain) Drain(_ []Sample) (int, error) {
	return 0, io.EOF
}

// Stop returns the clip count.
func (g *Gain) Stop() uint64 {
	return g.clips
}

// Clone implements Handler.
func (g *Gain) Clone() Handler {
	return &Gain{db: g.db, factor: g.factor}
}
