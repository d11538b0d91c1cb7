package effects

import (
	"fmt"
	"math"
)

// Sample is one PCM value in the chain's 32-bit fixed-point domain.
type Sample int32

// Sample range.
const (
	SampleMax Sample = math.MaxInt32
	SampleMin Sample = math.MinInt32
)

// sampleScale maps [-1, 1) onto the full Sample range.
const sampleScale = 1 << 31

// Signal describes a stream of interleaved samples.
type Signal struct {
	// Rate is the sample rate in Hz.
	Rate float64

	// Channels is the number of interleaved channels.
	Channels int

	// Precision is the number of significant bits per sample, 0 if unknown.
	Precision int

	// Length is the total number of samples across all channels, 0 if
	// unknown.
	Length uint64
}

// Validate checks that the signal is usable by a chain.
func (s Signal) Validate() error {
	if s.Rate <= 0 || math.IsNaN(s.Rate) || math.IsInf(s.Rate, 0) {
		return fmt.Errorf("%w: sample rate must be positive, got %v", ErrInvalidConfig, s.Rate)
	}
	if s.Channels < 1 || s.Channels > maxChannels {
		return fmt.Errorf("%w: channels must be 1-%d, got %d", ErrInvalidConfig, maxChannels, s.Channels)
	}
	if s.Precision < 0 || s.Precision > maxPrecision {
		return fmt.Errorf("%w: precision must be 0-%d bits, got %d", ErrInvalidConfig, maxPrecision, s.Precision)
	}
	return nil
}

// Frames returns the length in frames.
func (s Signal) Frames() uint64 {
	if s.Channels == 0 {
		return 0
	}
	return s.Length / uint64(s.Channels)
}

func (s Signal) String() string {
	return fmt.Sprintf("%gHz %dch %dbit", s.Rate, s.Channels, s.Precision)
}

// mono returns the signal seen by one per-channel instance.
func (s Signal) mono() Signal {
	s.Length = s.Frames()
	s.Channels = 1
	return s
}

// FloatToSample converts v in [-1, 1] to a Sample, rounding to nearest and
// saturating. Each saturation that loses more than rounding increments
// clips. Exactly 1.0 maps to SampleMax without counting a clip.
func FloatToSample(v float64, clips *uint64) Sample {
	x := v * sampleScale
	switch {
	case x >= float64(SampleMax)+0.5:
		if x > sampleScale {
			*clips++
		}
		return SampleMax
	case x <= float64(SampleMin)-0.5:
		*clips++
		return SampleMin
	case math.IsNaN(x):
		*clips++
		return 0
	}
	return Sample(math.Round(x))
}

// SampleToFloat converts s to a float in [-1, 1).
func SampleToFloat(s Sample) float64 {
	return float64(s) / sampleScale
}

// SamplesToFloats converts src into dst, which must be at least as long.
func SamplesToFloats(dst []float64, src []Sample) []float64 {
	dst = dst[:len(src)]
	for i, s := range src {
		dst[i] = SampleToFloat(s)
	}
	return dst
}

// FloatsToSamples converts src into dst, which must be at least as long,
// and returns the number of clipped samples.
func FloatsToSamples(dst []Sample, src []float64) uint64 {
	var clips uint64
	dst = dst[:len(src)]
	for i, v := range src {
		dst[i] = FloatToSample(v, &clips)
	}
	return clips
}
