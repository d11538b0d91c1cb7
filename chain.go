package effects

import (
	"errors"
	"fmt"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/tphakala/go-audio-effects/internal/log"
)

// effect is one position in a chain: the handler instances plus the output
// window the next position reads from.
type effect struct {
	name  string
	flags Flags

	// flows holds one instance for multi-channel handlers and one per
	// channel otherwise.
	flows []Handler

	in, out Signal

	// imin is the upstream occupancy needed before Flow is worth calling.
	imin int

	// Valid output lives in obuf[obeg:oend].
	obuf       []Sample
	obeg, oend int

	clips uint64
}

func (e *effect) pending() int {
	return e.oend - e.obeg
}

// space returns the free room at the tail after compacting if the tail
// cannot hold another frame.
func (e *effect) space() int {
	if len(e.obuf)-e.oend < e.out.Channels {
		e.compact()
	}
	n := len(e.obuf) - e.oend
	return n - n%e.out.Channels
}

func (e *effect) full() bool {
	return len(e.obuf)-e.pending() < e.out.Channels
}

func (e *effect) compact() {
	if e.obeg == 0 {
		return
	}
	n := copy(e.obuf, e.obuf[e.obeg:e.oend])
	e.obeg, e.oend = 0, n
}

type chainState int

const (
	stateBuilding chainState = iota
	stateFlowing
	stateFlowed
	stateClosed
)

// Chain runs a line of effects from a source to a sink on the calling
// goroutine.
//
// Effects are started as they are added, so each one sees the output signal
// of the effect before it. The first effect is driven only through Drain and
// acts as the source. Output of the last effect is discarded, so it should
// be a sink.
type Chain struct {
	id      string
	in, out Signal
	cur     Signal

	effects []*effect
	bufSize int

	logger *logrus.Logger
	log    *logrus.Entry

	state  chainState
	report *Report

	// Per-channel relay buffers for effects without FlagMultiChannel.
	ibufc, obufc [][]Sample
}

// Option configures a chain.
type Option func(*Chain)

// WithLogger sets the logger used by the chain.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Chain) {
		c.logger = l
	}
}

// WithBufferSize sets the per-effect output buffer size in samples.
func WithBufferSize(n int) Option {
	return func(c *Chain) {
		c.bufSize = n
	}
}

// NewChain creates an empty chain for a stream described by in. Non-zero
// fields of out are the targets for effects that may change them.
func NewChain(in, out Signal, opts ...Option) (*Chain, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if out.Rate < 0 || out.Channels < 0 || out.Precision < 0 {
		return nil, fmt.Errorf("%w: output signal fields must not be negative", ErrInvalidConfig)
	}

	c := &Chain{
		id:      xid.New().String(),
		in:      in,
		out:     out,
		cur:     in,
		bufSize: defaultBufferSize,
		logger:  log.Std(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.bufSize < minBufferSize {
		return nil, fmt.Errorf("%w: buffer size must be at least %d samples", ErrInvalidConfig, minBufferSize)
	}
	if c.bufSize < in.Channels*minBufferFrames {
		return nil, fmt.Errorf("%w: buffer size %d too small for %d channels",
			ErrInvalidConfig, c.bufSize, in.Channels)
	}
	c.log = c.logger.WithFields(logrus.Fields{"chain": c.id})
	return c, nil
}

// want returns the output signal offered to an effect with flags.
func (c *Chain) want(flags Flags) Signal {
	want := c.cur
	if flags&FlagRate != 0 && c.out.Rate > 0 {
		want.Rate = c.out.Rate
	}
	if flags&FlagChannels != 0 && c.out.Channels > 0 {
		want.Channels = c.out.Channels
	}
	if flags&FlagPrecision != 0 && c.out.Precision > 0 {
		want.Precision = c.out.Precision
	}
	return want
}

// Add starts h against the current output signal of the chain and appends
// it. An effect that reports ErrNoOp is dropped and Add returns nil.
func (c *Chain) Add(h Handler) error {
	if c.state != stateBuilding {
		return fmt.Errorf("%w: cannot add effects after the flow started", ErrInvalidState)
	}

	name, flags := h.Name(), h.Flags()
	in, want := c.cur, c.want(flags)
	l := c.log.WithFields(logrus.Fields{"effect": name, "in": in})

	n := 1
	if flags&FlagMultiChannel == 0 {
		if flags&FlagChannels != 0 && in.Channels > 1 {
			return fmt.Errorf("%w: effect %s changes channels but is not multi-channel",
				ErrInvalidConfig, name)
		}
		n = in.Channels
	}

	handlers := make([]Handler, n)
	handlers[0] = h
	for i := 1; i < n; i++ {
		handlers[i] = h.Clone()
	}

	fin, fwant := in, want
	if n > 1 {
		fin, fwant = in.mono(), want.mono()
	}

	var out Signal
	for i, fh := range handlers {
		got, err := fh.Start(fin, fwant)
		if err != nil {
			for _, started := range handlers[:i] {
				started.Stop()
			}
			if i == 0 && errors.Is(err, ErrNoOp) {
				l.Info("effect has no work for this signal and was removed")
				return nil
			}
			return fmt.Errorf("starting effect %s: %w", name, err)
		}
		if i == 0 {
			out = got
		} else if got != out {
			for _, started := range handlers[:i+1] {
				started.Stop()
			}
			return fmt.Errorf("%w: instances of effect %s disagree on the output signal",
				ErrInvalidConfig, name)
		}
	}

	if n > 1 {
		out.Channels = in.Channels
		out.Length = out.Length * uint64(in.Channels)
	}
	out = restrict(in, out, flags)

	imin := in.Channels
	if m, ok := h.(MinInputer); ok {
		imin = max(imin, m.MinInput()*n)
	}
	imin = min(imin, c.bufSize/2)

	c.effects = append(c.effects, &effect{
		name:  name,
		flags: flags,
		flows: handlers,
		in:    in,
		out:   out,
		imin:  imin,
		obuf:  make([]Sample, c.bufSize),
	})
	c.cur = out

	l.WithFields(logrus.Fields{"out": out, "flows": n}).Debug("effect added")
	return nil
}

// restrict resets every out field the effect is not allowed to change.
func restrict(in, out Signal, flags Flags) Signal {
	if flags&FlagRate == 0 {
		out.Rate = in.Rate
	}
	if flags&FlagChannels == 0 {
		out.Channels = in.Channels
	}
	if flags&FlagPrecision == 0 {
		out.Precision = in.Precision
	}
	if flags&FlagLength == 0 {
		out.Length = in.Length
	}
	return out
}

// EffectReport is the outcome of one effect.
type EffectReport struct {
	Name  string
	Clips uint64
}

// Report summarizes a closed chain.
type Report struct {
	ID      string
	Effects []EffectReport
	Clips   uint64
}

// Close stops every effect instance once and returns the clip report.
// Later calls return the same report.
func (c *Chain) Close() Report {
	if c.report != nil {
		return *c.report
	}

	r := &Report{ID: c.id}
	for _, e := range c.effects {
		for _, h := range e.flows {
			e.clips += h.Stop()
		}
		if e.clips > 0 {
			c.log.WithFields(logrus.Fields{"effect": e.name, "clips": e.clips}).
				Warnf("%s clipped %d samples; decrease volume?", e.name, e.clips)
		}
		r.Effects = append(r.Effects, EffectReport{Name: e.name, Clips: e.clips})
		r.Clips += e.clips
	}

	c.report = r
	c.state = stateClosed
	return *r
}

// EffectInfo describes a started effect.
type EffectInfo struct {
	Name    string
	Flags   Flags
	In, Out Signal
	Flows   int
}

// Effects lists the effects that were started and kept.
func (c *Chain) Effects() []EffectInfo {
	infos := make([]EffectInfo, len(c.effects))
	for i, e := range c.effects {
		infos[i] = EffectInfo{Name: e.name, Flags: e.flags, In: e.in, Out: e.out, Flows: len(e.flows)}
	}
	return infos
}

// ID returns the chain's unique id.
func (c *Chain) ID() string {
	return c.id
}

// InSignal returns the signal the chain was created for.
func (c *Chain) InSignal() Signal {
	return c.in
}

// OutSignal returns the output signal of the last effect added.
func (c *Chain) OutSignal() Signal {
	return c.cur
}
