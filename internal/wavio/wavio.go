// Package wavio connects WAV files to effect chains through go-audio/wav.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	effects "github.com/tphakala/go-audio-effects"
)

const (
	wavFormatPCM = 1

	bits16 = 16
	bits24 = 24
	bits32 = 32

	defaultBitDepth = bits16
	sampleBits      = 32
)

// ErrUnsupportedBitDepth is returned for WAV data that is not 16, 24 or 32
// bit integer PCM.
var ErrUnsupportedBitDepth = errors.New("only 16, 24 and 32 bit PCM is supported")

func checkBitDepth(bits int) error {
	switch bits {
	case bits16, bits24, bits32:
		return nil
	default:
		return fmt.Errorf("%w: got %d bits", ErrUnsupportedBitDepth, bits)
	}
}

// Source decodes a WAV stream. It is the first effect of a chain and is
// driven only through Drain.
type Source struct {
	dec   *wav.Decoder
	sig   effects.Signal
	shift uint
	buf   *audio.IntBuffer
}

// NewSource reads the WAV header from r.
func NewSource(r io.ReadSeeker) (*Source, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("wav is not valid")
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: audio format %d", ErrUnsupportedBitDepth, dec.WavAudioFormat)
	}
	bits := int(dec.BitDepth)
	if err := checkBitDepth(bits); err != nil {
		return nil, err
	}

	format := dec.Format()
	sig := effects.Signal{
		Rate:      float64(format.SampleRate),
		Channels:  format.NumChannels,
		Precision: bits,
	}
	if err := sig.Validate(); err != nil {
		return nil, err
	}

	// Length stays unknown when the duration cannot be read.
	if d, err := dec.Duration(); err == nil {
		frames := math.Round(d.Seconds() * sig.Rate)
		sig.Length = uint64(frames) * uint64(sig.Channels)
	}

	return &Source{
		dec:   dec,
		sig:   sig,
		shift: uint(sampleBits - bits),
		buf:   &audio.IntBuffer{Format: format, SourceBitDepth: bits},
	}, nil
}

// Signal returns the stream's signal.
func (s *Source) Signal() effects.Signal {
	return s.sig
}

// Name implements effects.Handler.
func (s *Source) Name() string {
	return "wav"
}

// Flags implements effects.Handler.
func (s *Source) Flags() effects.Flags {
	return effects.FlagChannels | effects.FlagRate | effects.FlagPrecision |
		effects.FlagLength | effects.FlagMultiChannel
}

// Start implements effects.Handler.
func (s *Source) Start(in, _ effects.Signal) (effects.Signal, error) {
	if in.Rate != s.sig.Rate || in.Channels != s.sig.Channels {
		return effects.Signal{}, fmt.Errorf("%w: chain is %v, file is %v",
			effects.ErrInvalidConfig, in, s.sig)
	}
	return s.sig, nil
}

// Flow implements effects.Handler. A source takes no input.
func (s *Source) Flow(_, _ []effects.Sample) (idone, odone int, err error) {
	return 0, 0, effects.ErrNotSupported
}

// Drain decodes the next whole frames into out.
func (s *Source) Drain(out []effects.Sample) (int, error) {
	want := len(out) - len(out)%s.sig.Channels
	if cap(s.buf.Data) < want {
		s.buf.Data = make([]int, want)
	}
	s.buf.Data = s.buf.Data[:want]

	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil {
		return 0, fmt.Errorf("decoding wav: %w", err)
	}
	n -= n % s.sig.Channels
	if n == 0 {
		return 0, io.EOF
	}
	for i, v := range s.buf.Data[:n] {
		out[i] = effects.Sample(v << s.shift)
	}
	return n, nil
}

// Stop implements effects.Handler.
func (s *Source) Stop() uint64 {
	return 0
}

// Clone returns a source on the same decoder. Sources are multi-channel, so
// a chain never clones them.
func (s *Source) Clone() effects.Handler {
	c := *s
	c.buf = &audio.IntBuffer{Format: s.buf.Format, SourceBitDepth: s.buf.SourceBitDepth}
	return &c
}

// Sink encodes the chain's output as integer PCM.
type Sink struct {
	w    io.WriteSeeker
	bits int

	enc    *wav.Encoder
	sig    effects.Signal
	buf    *audio.IntBuffer
	clips  uint64
	frames uint64
	err    error
}

// NewSink returns a sink writing to w. A bits of 0 keeps the precision of
// the incoming signal, or 16 when that is unknown.
func NewSink(w io.WriteSeeker, bits int) (*Sink, error) {
	if bits != 0 {
		if err := checkBitDepth(bits); err != nil {
			return nil, err
		}
	}
	return &Sink{w: w, bits: bits}, nil
}

// Name implements effects.Handler.
func (s *Sink) Name() string {
	return "wav"
}

// Flags implements effects.Handler.
func (s *Sink) Flags() effects.Flags {
	return effects.FlagMultiChannel | effects.FlagModify
}

// Start writes nothing yet; the header is completed when the sink stops.
func (s *Sink) Start(in, _ effects.Signal) (effects.Signal, error) {
	bits := s.bits
	if bits == 0 {
		bits = in.Precision
		if checkBitDepth(bits) != nil {
			bits = defaultBitDepth
		}
	}

	format := &audio.Format{NumChannels: in.Channels, SampleRate: int(math.Round(in.Rate))}
	s.enc = wav.NewEncoder(s.w, format.SampleRate, bits, in.Channels, wavFormatPCM)
	s.buf = &audio.IntBuffer{Format: format, SourceBitDepth: bits}
	s.sig = in
	s.sig.Precision = bits
	return s.sig, nil
}

// Flow encodes every input sample, rounding to the output precision.
func (s *Sink) Flow(in, _ []effects.Sample) (idone, odone int, err error) {
	if cap(s.buf.Data) < len(in) {
		s.buf.Data = make([]int, len(in))
	}
	s.buf.Data = s.buf.Data[:len(in)]

	shift := uint(sampleBits - s.buf.SourceBitDepth)
	for i, v := range in {
		s.buf.Data[i] = s.quantize(v, shift)
	}
	if err := s.enc.Write(s.buf); err != nil {
		return 0, 0, fmt.Errorf("encoding wav: %w", err)
	}
	s.frames += uint64(len(in) / s.sig.Channels)
	return len(in), 0, nil
}

// quantize drops shift low bits with rounding, saturating at the top.
func (s *Sink) quantize(v effects.Sample, shift uint) int {
	if shift == 0 {
		return int(v)
	}
	x := int64(v) + 1<<(shift-1)
	if x > math.MaxInt32 {
		s.clips++
		x = math.MaxInt32
	}
	return int(x >> shift)
}

// Drain implements effects.Handler.
func (s *Sink) Drain(_ []effects.Sample) (int, error) {
	return 0, io.EOF
}

// Stop finalizes the WAV header and returns the clip count. An error from
// the encoder is kept for Err.
func (s *Sink) Stop() uint64 {
	if s.enc != nil {
		s.err = s.enc.Close()
		s.enc = nil
	}
	return s.clips
}

// Err returns the error from finalizing the file, if any.
func (s *Sink) Err() error {
	return s.err
}

// Frames returns the number of frames written.
func (s *Sink) Frames() uint64 {
	return s.frames
}

// Signal returns the signal being written.
func (s *Sink) Signal() effects.Signal {
	return s.sig
}

// Clone returns an unstarted sink on the same writer. Sinks are
// multi-channel, so a chain never clones them.
func (s *Sink) Clone() effects.Handler {
	return &Sink{w: s.w, bits: s.bits}
}
