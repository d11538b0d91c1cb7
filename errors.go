package effects

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-audio-effects/internal/pipeline"
)

// Common errors returned by effects and chains.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = pipeline.ErrInvalidConfig

	// ErrNoOp is returned by Start when an effect has nothing to do for the
	// given signal. The chain drops such effects.
	ErrNoOp = pipeline.ErrNoOp

	// ErrNotSupported indicates the requested operation is not supported.
	ErrNotSupported = errors.New("operation not supported")

	// ErrInvalidState is returned when a chain method is called at the wrong
	// point of its lifecycle.
	ErrInvalidState = errors.New("invalid chain state")

	// ErrPartialFrame is returned when an effect produces a number of samples
	// that is not a whole number of frames.
	ErrPartialFrame = errors.New("output is not a whole number of frames")
)

// FlowError is returned by Chain.Flow when an effect fails. It carries the
// clip count accumulated before the failure.
type FlowError struct {
	Effect string
	Index  int
	Clips  uint64
	Err    error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("effect %d (%s) failed: %v", e.Index, e.Effect, e.Err)
}

// Unwrap returns the effect's error.
func (e *FlowError) Unwrap() error {
	return e.Err
}

// Is checks if the wrapped error matches provided sentinel error.
func (e *FlowError) Is(err error) bool {
	return e.Err != nil && errors.Is(e.Err, err)
}

// AsymmetricFlowError is the panic value raised when the per-channel
// instances of an effect consume or produce different sample counts in the
// same call. It always indicates a bug in the effect.
type AsymmetricFlowError struct {
	Effect  string
	Channel int
	Drain   bool

	WantIn, GotIn   int
	WantOut, GotOut int
}

func (e *AsymmetricFlowError) Error() string {
	op := "flowed"
	if e.Drain {
		op = "drained"
	}
	return fmt.Sprintf("effect %s %s asymmetrically: channel %d did %d/%d, channel 0 did %d/%d",
		e.Effect, op, e.Channel, e.GotIn, e.GotOut, e.WantIn, e.WantOut)
}
