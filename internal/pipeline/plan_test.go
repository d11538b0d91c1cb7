package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-effects/internal/engine"
)

const (
	rate8k    = 8000.0
	rate32k   = 32000.0
	rate44k   = 44100.0
	rate48k   = 48000.0
	rate96k   = 96000.0
	rate192k  = 192000.0
	rateSpeed = 44100.0 * 1.0123456789 // no exact ratio under the divisor limit
)

// TestNewPlan_Decomposition checks stage selection and ordering.
func TestNewPlan_Decomposition(t *testing.T) {
	tests := []struct {
		name    string
		in, out float64
		quality Quality
		kinds   []engine.Kind
		factors [][2]int // L, M of the non-poly stages, in order
	}{
		{"cd_to_dat", rate44k, rate48k, QualityHigh, []engine.Kind{engine.KindPoly}, nil},
		{"dat_to_cd", rate48k, rate44k, QualityHigh, []engine.Kind{engine.KindPoly}, nil},
		{"halve", rate96k, rate48k, QualityHigh, []engine.Kind{engine.KindHalfBand}, [][2]int{{1, 2}}},
		{"double", rate48k, rate96k, QualityHigh, []engine.Kind{engine.KindHalfBand}, [][2]int{{2, 1}}},
		{"quarter", rate192k, rate48k, QualityHigh,
			[]engine.Kind{engine.KindHalfBand, engine.KindHalfBand}, [][2]int{{1, 2}, {1, 2}}},
		{"two_thirds", rate48k, rate32k, QualityHigh, []engine.Kind{engine.KindDFT}, [][2]int{{2, 3}}},
		{"one_third", rate96k, rate32k, QualityMedium, []engine.Kind{engine.KindDFT}, [][2]int{{1, 3}}},
		{"96k_to_cd", rate96k, rate44k, QualityHigh,
			[]engine.Kind{engine.KindHalfBand, engine.KindPoly}, [][2]int{{1, 2}}},
		{"cd_to_96k", rate44k, rate96k, QualityHigh,
			[]engine.Kind{engine.KindPoly, engine.KindHalfBand}, [][2]int{{2, 1}}},
		{"times_six", rate8k, rate48k, QualityHigh,
			[]engine.Kind{engine.KindDFT, engine.KindHalfBand}, [][2]int{{3, 1}, {2, 1}}},
		{"irrational", rate44k, rateSpeed, QualityLow, []engine.Kind{engine.KindPoly}, nil},
		{"quick", rate44k, rate48k, QualityQuick, []engine.Kind{engine.KindCubic}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Quality = tt.quality

			plan, err := NewPlan(tt.in, tt.out, opts)
			require.NoError(t, err)

			var kinds []engine.Kind
			var factors [][2]int
			for _, s := range plan.Stages {
				kinds = append(kinds, s.Kind)
				if s.Kind == engine.KindDFT || s.Kind == engine.KindHalfBand {
					factors = append(factors, [2]int{s.L, s.M})
				}
			}
			assert.Equal(t, tt.kinds, kinds)
			assert.Equal(t, tt.factors, factors)

			// Rates chain from input to output.
			assert.InDelta(t, tt.in, plan.Stages[0].InRate, 1e-9)
			assert.InDelta(t, tt.out, plan.Stages[len(plan.Stages)-1].OutRate, 1e-9)
			for i := 1; i < len(plan.Stages); i++ {
				assert.InDelta(t, plan.Stages[i-1].OutRate, plan.Stages[i].InRate, 1e-9)
			}
		})
	}
}

// TestNewPlan_IntermediateRates checks that no stage runs below the lower of
// the two rates.
func TestNewPlan_IntermediateRates(t *testing.T) {
	pairs := [][2]float64{
		{rate44k, rate48k}, {rate48k, rate44k}, {rate96k, rate44k}, {rate44k, rate96k},
		{rate8k, rate48k}, {rate48k, rate8k}, {rate44k, rateSpeed}, {rate192k, rate44k},
		{40000, 25000}, // 5/8
	}

	for _, pr := range pairs {
		t.Run(fmt.Sprintf("%.0f_%.0f", pr[0], pr[1]), func(t *testing.T) {
			plan, err := NewPlan(pr[0], pr[1], DefaultOptions())
			require.NoError(t, err)

			low := min(pr[0], pr[1])
			for _, s := range plan.Stages {
				assert.GreaterOrEqual(t, s.OutRate, low*(1-1e-9), s.String())
				assert.Less(t, s.Fp, s.Fc, s.String())
				assert.LessOrEqual(t, s.Fc, s.Fn*(1+1e-9), s.String())
			}
		})
	}
}

// TestNewPlan_FilterEdges checks passband and stopband placement.
func TestNewPlan_FilterEdges(t *testing.T) {
	plan, err := NewPlan(rate48k, rate44k, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, plan.Stages, 1)

	s := plan.Stages[0]
	assert.InDelta(t, 0.95*rate44k/2, s.Fp, 1e-9)
	assert.InDelta(t, rate44k/2, s.Fc, 1e-9)
	assert.InDelta(t, rate48k/2, s.Fn, 1e-9)

	opts := DefaultOptions()
	opts.AllowAliasing = true
	opts.Bandwidth = 90
	plan, err = NewPlan(rate48k, rate44k, opts)
	require.NoError(t, err)

	s = plan.Stages[0]
	assert.InDelta(t, 0.90*rate44k/2, s.Fp, 1e-9)
	assert.InDelta(t, rate44k-s.Fp, s.Fc, 1e-9)
}

// TestNewPlan_NoOp checks that equal rates are elided.
func TestNewPlan_NoOp(t *testing.T) {
	_, err := NewPlan(rate48k, rate48k, DefaultOptions())
	assert.ErrorIs(t, err, ErrNoOp)
}

// TestNewPlan_Invalid checks rate and option validation.
func TestNewPlan_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		in, out float64
		mutate  func(*Options)
	}{
		{"zero_input", 0, rate48k, nil},
		{"negative_output", rate48k, -1, nil},
		{"quality", rate44k, rate48k, func(o *Options) { o.Quality = 9 }},
		{"phase_low", rate44k, rate48k, func(o *Options) { o.Phase = -1 }},
		{"phase_high", rate44k, rate48k, func(o *Options) { o.Phase = 101 }},
		{"bandwidth_low", rate44k, rate48k, func(o *Options) { o.Bandwidth = 50 }},
		{"bandwidth_high", rate44k, rate48k, func(o *Options) { o.Bandwidth = 99.9 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			if tt.mutate != nil {
				tt.mutate(&opts)
			}
			_, err := NewPlan(tt.in, tt.out, opts)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

// TestQuality_Attenuation checks the bits-to-dB rule.
func TestQuality_Attenuation(t *testing.T) {
	assert.InDelta(t, 17*dbPerBit, QualityLow.Attenuation(), 1e-9)
	assert.InDelta(t, 17*dbPerBit, QualityMedium.Attenuation(), 1e-9)
	assert.InDelta(t, 21*dbPerBit, QualityHigh.Attenuation(), 1e-9)
	assert.InDelta(t, 29*dbPerBit, QualityVeryHigh.Attenuation(), 1e-9)
}

// TestParseQuality checks names and abbreviations.
func TestParseQuality(t *testing.T) {
	tests := []struct {
		in   string
		want Quality
	}{
		{"quick", QualityQuick},
		{"q", QualityQuick},
		{"Low", QualityLow},
		{"m", QualityMedium},
		{" high ", QualityHigh},
		{"very-high", QualityVeryHigh},
		{"v", QualityVeryHigh},
		{"very", QualityVeryHigh},
	}

	for _, tt := range tests {
		got, err := ParseQuality(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.NotEmpty(t, got.String())
	}

	_, err := ParseQuality("ultra")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// TestRational checks exact ratio detection.
func TestRational(t *testing.T) {
	tests := []struct {
		x     float64
		l, m  int
		exact bool
	}{
		{rate48k / rate44k, 160, 147, true},
		{rate44k / rate48k, 147, 160, true},
		{2.0 / 3, 2, 3, true},
		{3, 3, 1, true},
		{rateSpeed / rate44k, 0, 0, false},
	}

	for _, tt := range tests {
		l, m, exact := rational(tt.x, maxDivisor)
		assert.Equal(t, tt.exact, exact, "x=%v", tt.x)
		if tt.exact {
			assert.Equal(t, tt.l, l, "x=%v", tt.x)
			assert.Equal(t, tt.m, m, "x=%v", tt.x)
		}
	}
}
