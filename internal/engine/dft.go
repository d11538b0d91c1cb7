package engine

import (
	"fmt"
	"math/cmplx"

	"github.com/tphakala/simd/c128"

	"github.com/tphakala/go-audio-effects/internal/fft"
	"github.com/tphakala/go-audio-effects/internal/fifo"
)

const (
	// Transform length is at least this many times the filter overlap.
	dftOverlapMultiple = 4
	minDFTLength       = 256

	initialFIFOCapacity = 4096
)

// DFTConfig describes an integer-ratio stage: upsample by L, filter, keep
// every M-th sample.
type DFTConfig struct {
	L, M int

	// Filter runs at L times the input rate and has DC gain L.
	Filter []float64

	// PostPeak is the number of taps after the impulse peak. A negative
	// value means linear phase, (len(Filter)-1)/2.
	PostPeak int

	// HalfBand marks a 2:1 or 1:2 stage for reporting.
	HalfBand bool

	// Cache holds the transform plans; nil uses fft.Default.
	Cache *fft.Cache
}

// DFTStage converts by L/M with overlap-save block convolution.
//
// Each block covers overlap+S positions of the upsampled stream, of which the
// last S are valid convolution output. Blocks are formed either by zero
// stuffing in the time domain or, when L is a power of two, by replicating
// the spectrum of the input block L times. Decimation by M either picks
// samples from the time-domain result, with remM carrying the position of the
// next kept sample across blocks, or, when M is a power of two, folds the
// spectrum down to N/M bins before the inverse transform.
type DFTStage struct {
	l, m     int
	taps     int
	halfBand bool
	delay    int // filter delay in upsampled samples, a multiple of M for fold mode

	n       int // transform length
	overlap int
	step    int // S, valid upsampled positions per block

	foldUp   bool
	foldDown bool

	kernel []complex128 // N/2+1 bins
	cache  *fft.Cache
	in     *fifo.FIFO[float64]

	remM int

	// Scratch
	block []float64
	spec  []complex128
	small []complex128
	fold  []complex128
	td    []float64
	out   []float64
}

// NewDFTStage plans block sizes and transforms the filter.
func NewDFTStage(cfg DFTConfig) (*DFTStage, error) {
	if cfg.L < 1 || cfg.M < 1 {
		return nil, fmt.Errorf("%w: L=%d M=%d", ErrInvalidParams, cfg.L, cfg.M)
	}
	if len(cfg.Filter) == 0 {
		return nil, fmt.Errorf("%w: empty filter", ErrInvalidParams)
	}
	if cfg.PostPeak >= len(cfg.Filter) {
		return nil, fmt.Errorf("%w: post-peak %d beyond %d taps", ErrInvalidParams, cfg.PostPeak, len(cfg.Filter))
	}

	postPeak := cfg.PostPeak
	if postPeak < 0 {
		postPeak = (len(cfg.Filter) - 1) / 2
	}

	cache := cfg.Cache
	if cache == nil {
		cache = fft.Default
	}

	s := &DFTStage{
		l:        cfg.L,
		m:        cfg.M,
		halfBand: cfg.HalfBand,
		cache:    cache,
		foldUp:   fft.IsPow2(cfg.L),
		foldDown: cfg.M > 1 && fft.IsPow2(cfg.M),
	}

	h := cfg.Filter
	s.delay = len(h) - 1 - postPeak
	granule := cfg.L
	if s.foldDown {
		granule = lcm(cfg.L, cfg.M)
		// Shift the response so the kept samples land on multiples of M.
		if pad := (cfg.M - s.delay%cfg.M) % cfg.M; pad > 0 {
			h = append(make([]float64, pad, pad+len(h)), h...)
			s.delay += pad
		}
	}
	s.taps = len(h)

	s.overlap = roundUp(s.taps-1, granule)
	s.n = fft.NextPow2(max(dftOverlapMultiple*s.overlap, minDFTLength))
	for s.n-s.overlap < granule || s.n/max(cfg.L, cfg.M) < 2 {
		s.n *= 2
	}
	s.step = (s.n - s.overlap) / granule * granule
	if s.foldUp && s.overlap+s.step != s.n {
		// Spectrum replication needs the block to fill the transform.
		s.foldUp = false
	}

	padded := make([]float64, s.n)
	copy(padded, h)
	s.kernel = cache.Forward(nil, padded)

	s.block = make([]float64, s.n)
	s.in = fifo.New[float64](max(initialFIFOCapacity, 2*s.blockInput()))
	s.Reset()

	return s, nil
}

// blockInput is the number of input samples one block reads.
func (s *DFTStage) blockInput() int {
	return (s.overlap + s.step) / s.l
}

// Process implements Stage.
func (s *DFTStage) Process(input []float64) ([]float64, error) {
	s.in.Write(input)
	s.out = s.out[:0]

	need := s.blockInput()
	advance := s.step / s.l
	for s.in.Occupancy() >= need {
		blk, _ := s.in.Peek(need)
		s.convolveBlock(blk)
		s.in.Read(advance, nil)
	}

	return s.out, nil
}

func (s *DFTStage) convolveBlock(blk []float64) {
	half := s.n / 2

	if s.foldUp {
		xn := len(blk)
		s.small = s.cache.Forward(s.small, blk)
		s.spec = growComplex(s.spec, half+1)
		for k := range s.spec {
			s.spec[k] = hermitian(s.small, k%xn, xn)
		}
	} else {
		clear(s.block)
		for i, v := range blk {
			s.block[i*s.l] = v
		}
		s.spec = s.cache.Forward(s.spec, s.block)
	}

	c128.Mul(s.spec, s.spec, s.kernel)

	v := s.remM
	if s.foldDown {
		nm := s.n / s.m
		s.fold = growComplex(s.fold, nm/2+1)
		for k := range s.fold {
			var sum complex128
			for j := range s.m {
				sum += hermitian(s.spec, k+j*nm, s.n)
			}
			s.fold[k] = sum
		}
		s.td = s.cache.Inverse(s.td, s.fold, nm)
		scale := 1 / float64(s.m)
		for ; v < s.step; v += s.m {
			s.out = append(s.out, s.td[(s.overlap+v)/s.m]*scale)
		}
	} else {
		s.td = s.cache.Inverse(s.td, s.spec, s.n)
		for ; v < s.step; v += s.m {
			s.out = append(s.out, s.td[s.overlap+v])
		}
	}
	s.remM = v - s.step
}

// Reset implements Stage.
func (s *DFTStage) Reset() {
	s.in.Clear()
	s.in.WriteZeros(s.overlap / s.l)
	s.remM = s.delay
	s.out = s.out[:0]
}

// GetRatio implements Stage.
func (s *DFTStage) GetRatio() float64 {
	return float64(s.l) / float64(s.m)
}

// GetLatency implements Stage.
func (s *DFTStage) GetLatency() float64 {
	return float64(s.delay) / float64(s.l)
}

// GetMinInput implements Stage.
func (s *DFTStage) GetMinInput() int {
	return s.blockInput()
}

// GetMemoryUsage implements Stage.
func (s *DFTStage) GetMemoryUsage() int64 {
	const complexBytes, floatBytes = 16, 8
	return int64(len(s.kernel))*complexBytes*2 + int64(s.n)*floatBytes*2 + int64(s.in.Capacity())*floatBytes
}

// GetFilterLength implements Stage.
func (s *DFTStage) GetFilterLength() int {
	return s.taps
}

// GetPhases implements Stage.
func (s *DFTStage) GetPhases() int {
	return s.l
}

// Kind implements Stage.
func (s *DFTStage) Kind() Kind {
	if s.halfBand {
		return KindHalfBand
	}
	return KindDFT
}

// Factors returns L and M.
func (s *DFTStage) Factors() (l, m int) {
	return s.l, s.m
}

// TransformLength returns the block transform size.
func (s *DFTStage) TransformLength() int {
	return s.n
}

// hermitian returns bin k of the full n-point spectrum of a real sequence
// given its n/2+1 non-redundant bins.
func hermitian(bins []complex128, k, n int) complex128 {
	if k <= n/2 {
		return bins[k]
	}
	return cmplx.Conj(bins[n-k])
}

func growComplex(s []complex128, n int) []complex128 {
	if cap(s) < n {
		return make([]complex128, n)
	}
	return s[:n]
}

func roundUp(v, g int) int {
	return (v + g - 1) / g * g
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	return a / gcd(a, b) * b
}

var _ Stage = (*DFTStage)(nil)
