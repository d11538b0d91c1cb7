package effects

import "strings"

// Flags describe which parts of the output signal an effect may rewrite and
// how the chain should drive it.
type Flags uint32

const (
	// FlagChannels allows the effect to change the channel count.
	FlagChannels Flags = 1 << iota

	// FlagRate allows the effect to change the sample rate.
	FlagRate

	// FlagPrecision allows the effect to change the precision.
	FlagPrecision

	// FlagLength allows the effect to change the stream length.
	FlagLength

	// FlagMultiChannel means one instance processes all channels
	// interleaved. Without it the chain clones one instance per channel.
	FlagMultiChannel

	// FlagModify means the effect does not alter sample values. It may
	// only drop, repeat or insert samples.
	FlagModify
)

var flagNames = [...]string{"channels", "rate", "precision", "length", "multichannel", "modify"}

func (f Flags) String() string {
	var names []string
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Handler is one effect in a chain.
//
// The chain calls Start once per instance, then Flow while upstream output is
// available, then Drain once upstream is exhausted, and finally Stop exactly
// once. Returning io.EOF from Flow or Drain marks the end of the effect's
// output. Any other error aborts the chain.
type Handler interface {
	// Name identifies the effect in logs and reports.
	Name() string

	// Flags reports the effect's capabilities.
	Flags() Flags

	// Start prepares the effect for in. want holds the output signal the
	// chain is aiming for, with every field the effect may not change
	// already set to the input value. Start returns the effect's output
	// signal, or ErrNoOp to be dropped from the chain.
	Start(in, want Signal) (Signal, error)

	// Flow consumes up to len(in) samples and produces up to len(out)
	// samples. Both lengths are whole frames.
	Flow(in, out []Sample) (idone, odone int, err error)

	// Drain produces up to len(out) samples without new input. Returning
	// zero samples ends the effect's output.
	Drain(out []Sample) (odone int, err error)

	// Stop releases resources and returns the number of clipped samples.
	Stop() uint64

	// Clone returns an unstarted copy of the effect's configuration.
	Clone() Handler
}

// MinInputer is implemented by effects that are only worth calling with a
// minimum number of buffered input samples.
type MinInputer interface {
	MinInput() int
}
