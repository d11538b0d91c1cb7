package engine

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-effects/internal/fft"
	"github.com/tphakala/go-audio-effects/internal/filter"
)

const (
	testAttenuation = 100.0
	testInputLen    = 3000
	testSineFreq    = 1000.0
	directTolerance = 1e-9
)

// designStageFilter returns a filter for an L/M stage running at L× the
// input rate, with DC gain L.
func designStageFilter(t testing.TB, l, m int) []float64 {
	t.Helper()
	edge := 1.0 / float64(max(l, m))
	h, err := filter.DesignLPF(0.8*edge, edge, 1, false, testAttenuation, 0, 0)
	require.NoError(t, err)
	for i := range h {
		h[i] *= float64(l)
	}
	return h
}

func randomSignal(n int) []float64 {
	r := rand.New(rand.NewPCG(1, 2))
	x := make([]float64, n)
	for i := range x {
		x[i] = r.Float64()*2 - 1
	}
	return x
}

func sine(n int, freq, rate float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * freq * float64(i) / rate)
	}
	return x
}

// directConvert is the reference: zero stuff by l, convolve with h, keep
// every m-th sample starting at the filter delay.
func directConvert(x, h []float64, l, m, delay int) []float64 {
	uLen := len(x) * l
	var out []float64
	for pos := delay; pos < uLen+delay; pos += m {
		var sum float64
		for k, c := range h {
			n := pos - k
			if n < 0 || n >= uLen || n%l != 0 {
				continue
			}
			sum += c * x[n/l]
		}
		out = append(out, sum)
	}
	return out
}

// feedChunks runs x through a stage in uneven chunks and collects the output.
func feedChunks(t testing.TB, s Stage, x []float64) []float64 {
	t.Helper()
	chunks := []int{1, 7, 100, 333, 1024}
	var out []float64
	for i, c := 0, 0; i < len(x); c++ {
		n := min(chunks[c%len(chunks)], len(x)-i)
		y, err := s.Process(x[i : i+n])
		require.NoError(t, err)
		out = append(out, y...)
		i += n
	}
	return out
}

// =============================================================================
// DFT stage: block convolution must equal direct convolution
// =============================================================================

// TestDFTStage_MatchesDirectConvolution compares every block assembly and
// decimation mode against the reference.
func TestDFTStage_MatchesDirectConvolution(t *testing.T) {
	tests := []struct {
		l, m int
	}{
		{1, 2}, {2, 1}, {1, 3}, {3, 1}, {2, 3}, {3, 2}, {4, 1}, {1, 4}, {3, 4}, {4, 3},
	}

	x := randomSignal(testInputLen)

	for _, tt := range tests {
		t.Run(fmt.Sprintf("L%d_M%d", tt.l, tt.m), func(t *testing.T) {
			h := designStageFilter(t, tt.l, tt.m)
			stage, err := NewDFTStage(DFTConfig{L: tt.l, M: tt.m, Filter: h, PostPeak: -1, Cache: fft.NewCache()})
			require.NoError(t, err)

			got := feedChunks(t, stage, x)
			want := directConvert(x, h, tt.l, tt.m, (len(h)-1)/2)

			require.NotEmpty(t, got)
			require.LessOrEqual(t, len(got), len(want))
			for i := range got {
				if !assert.InDelta(t, want[i], got[i], directTolerance, "output %d", i) {
					break
				}
			}
		})
	}
}

// TestDFTStage_MinimumPhase checks the peak-based delay of a non-linear
// phase filter.
func TestDFTStage_MinimumPhase(t *testing.T) {
	const l, m = 1, 2

	lin := designStageFilter(t, l, m)
	h, post := filter.FirToPhase(fft.NewCache(), lin, filter.PhaseMinimum)

	stage, err := NewDFTStage(DFTConfig{L: l, M: m, Filter: h, PostPeak: post})
	require.NoError(t, err)

	x := randomSignal(testInputLen)
	got := feedChunks(t, stage, x)
	want := directConvert(x, h, l, m, len(h)-1-post)

	require.NotEmpty(t, got)
	for i := range got {
		if !assert.InDelta(t, want[i], got[i], directTolerance, "output %d", i) {
			break
		}
	}
}

// TestDFTStage_AlignedSine checks that a 2× half-band stage reproduces a
// sine at the output rate with no time shift.
func TestDFTStage_AlignedSine(t *testing.T) {
	const (
		inRate  = 44100.0
		outRate = 88200.0
		skip    = 200
	)

	h := designStageFilter(t, 2, 1)
	stage, err := NewDFTStage(DFTConfig{L: 2, M: 1, Filter: h, PostPeak: -1, HalfBand: true})
	require.NoError(t, err)
	assert.Equal(t, KindHalfBand, stage.Kind())

	got := feedChunks(t, stage, sine(8192, testSineFreq, inRate))
	want := sine(len(got), testSineFreq, outRate)

	require.Greater(t, len(got), 2*skip)
	for i := skip; i < len(got); i++ {
		if !assert.InDelta(t, want[i], got[i], 1e-3, "output %d", i) {
			break
		}
	}
}

// TestDFTStage_Reset verifies Reset() properly clears DFTStage state.
func TestDFTStage_Reset(t *testing.T) {
	h := designStageFilter(t, 2, 3)
	stage, err := NewDFTStage(DFTConfig{L: 2, M: 3, Filter: h, PostPeak: -1})
	require.NoError(t, err)

	x := randomSignal(testInputLen)
	first := append([]float64(nil), feedChunks(t, stage, x)...)

	stage.Reset()
	second := feedChunks(t, stage, x)

	assert.Equal(t, first, second)
}

// TestDFTStage_Properties checks the reported geometry.
func TestDFTStage_Properties(t *testing.T) {
	h := designStageFilter(t, 1, 2)
	stage, err := NewDFTStage(DFTConfig{L: 1, M: 2, Filter: h, PostPeak: -1})
	require.NoError(t, err)

	l, m := stage.Factors()
	assert.Equal(t, 1, l)
	assert.Equal(t, 2, m)
	assert.InDelta(t, 0.5, stage.GetRatio(), 1e-15)
	assert.Equal(t, KindDFT, stage.Kind())
	assert.True(t, fft.IsPow2(stage.TransformLength()))
	assert.GreaterOrEqual(t, stage.GetFilterLength(), len(h))
	assert.Greater(t, stage.GetMinInput(), 0)
	assert.Greater(t, stage.GetMemoryUsage(), int64(0))
	assert.InDelta(t, float64(stage.GetFilterLength()-1)/2, stage.GetLatency(), 1)
}

// TestNewDFTStage_Invalid checks parameter validation.
func TestNewDFTStage_Invalid(t *testing.T) {
	h := []float64{0.25, 0.5, 0.25}

	tests := []struct {
		name string
		cfg  DFTConfig
	}{
		{"zero_L", DFTConfig{L: 0, M: 1, Filter: h}},
		{"zero_M", DFTConfig{L: 1, M: 0, Filter: h}},
		{"no_filter", DFTConfig{L: 1, M: 2}},
		{"post_peak_out_of_range", DFTConfig{L: 1, M: 2, Filter: h, PostPeak: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDFTStage(tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}

// BenchmarkDFTStage_Halve benchmarks a 2:1 decimation stage.
func BenchmarkDFTStage_Halve(b *testing.B) {
	h := designStageFilter(b, 1, 2)
	stage, err := NewDFTStage(DFTConfig{L: 1, M: 2, Filter: h, PostPeak: -1})
	require.NoError(b, err)
	x := randomSignal(8192)

	b.ResetTimer()
	for b.Loop() {
		_, _ = stage.Process(x)
	}
}
