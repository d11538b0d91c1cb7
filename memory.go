package effects

import (
	"fmt"
	"io"
)

// SliceSource feeds interleaved samples held in memory into a chain. It must
// be the first effect.
type SliceSource struct {
	sig  Signal
	data []Sample
	pos  int
}

// NewSliceSource returns a source for data described by sig. sig.Length is
// set from len(data).
func NewSliceSource(sig Signal, data []Sample) (*SliceSource, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	if len(data)%sig.Channels != 0 {
		return nil, fmt.Errorf("%w: %d samples for %d channels", ErrPartialFrame, len(data), sig.Channels)
	}
	sig.Length = uint64(len(data))
	return &SliceSource{sig: sig, data: data}, nil
}

// Signal returns the signal the source produces.
func (s *SliceSource) Signal() Signal {
	return s.sig
}

// Name implements Handler.
func (s *SliceSource) Name() string {
	return "input"
}

// Flags implements Handler.
func (s *SliceSource) Flags() Flags {
	return FlagChannels | FlagRate | FlagPrecision | FlagLength | FlagMultiChannel
}

// Start checks that the chain was created for the source's signal.
func (s *SliceSource) Start(in, _ Signal) (Signal, error) {
	if in.Rate != s.sig.Rate || in.Channels != s.sig.Channels {
		return Signal{}, fmt.Errorf("%w: chain is %v, source is %v", ErrInvalidConfig, in, s.sig)
	}
	s.pos = 0
	return s.sig, nil
}

// Flow is not supported: a source takes no input.
func (s *SliceSource) Flow(_, _ []Sample) (idone, odone int, err error) {
	return 0, 0, fmt.Errorf("%w: source %s cannot take input", ErrNotSupported, s.Name())
}

// Drain copies the next samples out.
func (s *SliceSource) Drain(out []Sample) (int, error) {
	n := copy(out, s.data[s.pos:])
	n -= n % s.sig.Channels
	s.pos += n
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Stop implements Handler.
func (s *SliceSource) Stop() uint64 {
	return 0
}

// Clone implements Handler.
func (s *SliceSource) Clone() Handler {
	return &SliceSource{sig: s.sig, data: s.data}
}

// SliceSink collects the chain's output in memory.
type SliceSink struct {
	sig     Signal
	samples []Sample
}

// NewSliceSink returns an empty sink.
func NewSliceSink() *SliceSink {
	return &SliceSink{}
}

// Name implements Handler.
func (s *SliceSink) Name() string {
	return "output"
}

// Flags implements Handler.
func (s *SliceSink) Flags() Flags {
	return FlagMultiChannel | FlagModify
}

// Start implements Handler.
func (s *SliceSink) Start(in, _ Signal) (Signal, error) {
	s.sig = in
	s.samples = s.samples[:0]
	return in, nil
}

// Flow stores every input sample.
func (s *SliceSink) Flow(in, _ []Sample) (idone, odone int, err error) {
	s.samples = append(s.samples, in...)
	return len(in), 0, nil
}

// Drain implements Handler.
func (s *SliceSink) Drain(_ []Sample) (int, error) {
	return 0, io.EOF
}

// Stop implements Handler.
func (s *SliceSink) Stop() uint64 {
	return 0
}

// Clone implements Handler.
func (s *SliceSink) Clone() Handler {
	return NewSliceSink()
}

// Samples returns the collected interleaved samples.
func (s *SliceSink) Samples() []Sample {
	return s.samples
}

// Signal returns the signal the sink was started with.
func (s *SliceSink) Signal() Signal {
	return s.sig
}
