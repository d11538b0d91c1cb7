package effects

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatToSample(t *testing.T) {
	tests := []struct {
		name      string
		in        float64
		want      Sample
		wantClips uint64
	}{
		{"zero", 0, 0, 0},
		{"half", 0.5, 1 << 30, 0},
		{"negative_half", -0.5, -(1 << 30), 0},
		{"rounds_up", 1.6 / sampleScale, 2, 0},
		{"rounds_away_from_zero", -2.5 / sampleScale, -3, 0},
		{"exactly_one", 1.0, SampleMax, 0},
		{"above_one", 1.001, SampleMax, 1},
		{"exactly_minus_one", -1.0, SampleMin, 0},
		{"below_minus_one", -1.5, SampleMin, 1},
		{"nan", math.NaN(), 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var clips uint64
			assert.Equal(t, tt.want, FloatToSample(tt.in, &clips))
			assert.Equal(t, tt.wantClips, clips)
		})
	}
}

func TestSampleRoundTrip(t *testing.T) {
	samples := []Sample{SampleMin, -12345, 0, 1, 99999, SampleMax}

	floats := SamplesToFloats(make([]float64, len(samples)), samples)
	back := make([]Sample, len(samples))
	clips := FloatsToSamples(back, floats)

	assert.Equal(t, samples, back)
	assert.Zero(t, clips)
}

func TestFloatsToSamples_CountsClips(t *testing.T) {
	out := make([]Sample, 4)
	clips := FloatsToSamples(out, []float64{2, -2, 0.25, 3})

	assert.Equal(t, uint64(3), clips)
	assert.Equal(t, []Sample{SampleMax, SampleMin, 1 << 29, SampleMax}, out)
}

func TestSignal_Validate(t *testing.T) {
	tests := []struct {
		name    string
		sig     Signal
		wantErr bool
	}{
		{"mono", Signal{Rate: 44100, Channels: 1}, false},
		{"surround", Signal{Rate: 48000, Channels: 8, Precision: 24}, false},
		{"zero_rate", Signal{Channels: 1}, true},
		{"infinite_rate", Signal{Rate: math.Inf(1), Channels: 1}, true},
		{"no_channels", Signal{Rate: 44100}, true},
		{"too_many_channels", Signal{Rate: 44100, Channels: maxChannels + 1}, true},
		{"precision", Signal{Rate: 44100, Channels: 1, Precision: 64}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sig.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSignal_Mono(t *testing.T) {
	s := Signal{Rate: 48000, Channels: 2, Precision: 16, Length: 2000}
	m := s.mono()

	assert.Equal(t, 1, m.Channels)
	assert.Equal(t, uint64(1000), m.Length)
	assert.Equal(t, uint64(1000), s.Frames())
	assert.InDelta(t, 48000.0, m.Rate, 0)
}

func TestFlags_String(t *testing.T) {
	assert.Equal(t, "none", Flags(0).String())
	assert.Equal(t, "rate|length", (FlagRate | FlagLength).String())
	assert.Equal(t, "multichannel|modify", (FlagMultiChannel | FlagModify).String())
}
