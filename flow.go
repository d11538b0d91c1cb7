package effects

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// ProgressFunc is called once per scheduling step. done is true once every
// effect has drained. A non-nil return stops the flow.
type ProgressFunc func(done bool) error

// Flow runs the chain until every effect has drained, the last effect
// reports end of stream, ctx is cancelled or progress returns an error.
//
// When an effect fails the chain is closed and a *FlowError is returned.
// After cancellation effects are left as they are; call Close to stop them.
func (c *Chain) Flow(ctx context.Context, progress ProgressFunc) error {
	if c.state != stateBuilding {
		return fmt.Errorf("%w: chain already flowed", ErrInvalidState)
	}
	if len(c.effects) < minChainEffects {
		return fmt.Errorf("%w: a chain needs a source and a sink, have %d effects",
			ErrInvalidConfig, len(c.effects))
	}
	c.state = stateFlowing
	c.allocRelay()

	n := len(c.effects)
	last := c.effects[n-1]
	e, sourceE := n-1, 0
	draining := true
	steps := 0

	for sourceE < n {
		cur := c.effects[e]
		osize := cur.pending()
		// Once everything upstream has ended, whatever is left is enough.
		haveImin := false
		if e > 0 {
			up := c.effects[e-1].pending()
			haveImin = up >= cur.imin || (e == sourceE && up > 0)
		}
		consumed := false

		switch {
		case e == sourceE && (draining || !haveImin):
			eof, err := c.drainEffect(e)
			if err != nil {
				return c.fail(e, err)
			}
			if eof {
				sourceE++
				draining = false
			}

		case haveImin:
			idone, eof, err := c.flowEffect(e)
			if err != nil {
				return c.fail(e, err)
			}
			consumed = idone > 0
			if eof {
				if e == n-1 {
					sourceE = n
					break
				}
				sourceE = e
				draining = true
			}
		}

		switch {
		case e < n-1 && (cur.pending() > osize || cur.full()):
			e++
		case e == sourceE:
			if !consumed {
				draining = true
			}
		case e < sourceE:
			e = sourceE
		default:
			e--
		}

		// Nothing reads the last effect's output.
		last.obeg, last.oend = 0, 0

		steps++
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("flow interrupted: %w", err)
		}
		if progress != nil {
			if err := progress(sourceE >= n); err != nil {
				return fmt.Errorf("flow interrupted: %w", err)
			}
		}
	}

	c.state = stateFlowed
	c.log.WithFields(logrus.Fields{"steps": steps}).Debug("flow complete")
	return nil
}

func (c *Chain) fail(i int, err error) error {
	report := c.Close()
	return &FlowError{
		Effect: c.effects[i].name,
		Index:  i,
		Clips:  report.Clips,
		Err:    err,
	}
}

// allocRelay sizes the per-channel relay buffers for the widest fan-out.
func (c *Chain) allocRelay() {
	flows := 1
	for _, e := range c.effects {
		flows = max(flows, len(e.flows))
	}
	if flows == 1 {
		return
	}
	per := c.bufSize / flows
	c.ibufc = make([][]Sample, flows)
	c.obufc = make([][]Sample, flows)
	for f := range flows {
		c.ibufc[f] = make([]Sample, c.bufSize)
		c.obufc[f] = make([]Sample, per)
	}
}

// flowEffect relays the output of effect n-1 through effect n.
func (c *Chain) flowEffect(n int) (idone int, eof bool, err error) {
	up, eff := c.effects[n-1], c.effects[n]

	avail := up.pending()
	avail -= avail % eff.in.Channels
	space := eff.space()
	ibuf := up.obuf[up.obeg : up.obeg+avail]
	obuf := eff.obuf[eff.oend : eff.oend+space]

	var odone int
	if len(eff.flows) == 1 {
		idone, odone, err = eff.flows[0].Flow(ibuf, obuf)
		if eof, err = endOfStream(err); err != nil {
			return 0, false, err
		}
		if err = checkCounts(idone, len(ibuf), odone, len(obuf)); err != nil {
			return 0, false, err
		}
		if odone%eff.out.Channels != 0 {
			return 0, false, fmt.Errorf("%w: %d samples for %d channels",
				ErrPartialFrame, odone, eff.out.Channels)
		}
	} else {
		flows := len(eff.flows)
		ilen := len(ibuf) / flows
		olen := min(len(obuf)/flows, len(c.obufc[0]))

		deinterleave(c.ibufc, ibuf, flows)

		var iwant, owant int
		for f, h := range eff.flows {
			i, o, ferr := h.Flow(c.ibufc[f][:ilen], c.obufc[f][:olen])
			end, ferr := endOfStream(ferr)
			if ferr != nil {
				return 0, false, ferr
			}
			if ferr = checkCounts(i, ilen, o, olen); ferr != nil {
				return 0, false, ferr
			}
			eof = eof || end
			if f == 0 {
				iwant, owant = i, o
			} else if i != iwant || o != owant {
				panic(&AsymmetricFlowError{
					Effect: eff.name, Channel: f,
					WantIn: iwant, GotIn: i, WantOut: owant, GotOut: o,
				})
			}
		}

		interleave(obuf, c.obufc, flows, owant)
		idone, odone = iwant*flows, owant*flows
	}

	up.obeg += idone
	if up.obeg == up.oend {
		up.obeg, up.oend = 0, 0
	} else if up.pending() < eff.imin {
		up.compact()
	}
	eff.oend += odone
	return idone, eof, nil
}

// drainEffect asks effect n for output without new input. Producing nothing
// ends the effect.
func (c *Chain) drainEffect(n int) (eof bool, err error) {
	eff := c.effects[n]

	space := eff.space()
	if space == 0 {
		return false, nil
	}
	obuf := eff.obuf[eff.oend : eff.oend+space]

	var odone int
	if len(eff.flows) == 1 {
		odone, err = eff.flows[0].Drain(obuf)
		if eof, err = endOfStream(err); err != nil {
			return false, err
		}
		if err = checkCounts(0, 0, odone, len(obuf)); err != nil {
			return false, err
		}
		if odone%eff.out.Channels != 0 {
			return false, fmt.Errorf("%w: %d samples for %d channels",
				ErrPartialFrame, odone, eff.out.Channels)
		}
	} else {
		flows := len(eff.flows)
		olen := min(len(obuf)/flows, len(c.obufc[0]))

		var owant int
		for f, h := range eff.flows {
			o, ferr := h.Drain(c.obufc[f][:olen])
			end, ferr := endOfStream(ferr)
			if ferr != nil {
				return false, ferr
			}
			if ferr = checkCounts(0, 0, o, olen); ferr != nil {
				return false, ferr
			}
			eof = eof || end
			if f == 0 {
				owant = o
			} else if o != owant {
				panic(&AsymmetricFlowError{
					Effect: eff.name, Channel: f, Drain: true,
					WantOut: owant, GotOut: o,
				})
			}
		}

		interleave(obuf, c.obufc, flows, owant)
		odone = owant * flows
	}

	eff.oend += odone
	return eof || odone == 0, nil
}

// endOfStream separates io.EOF from real failures.
func endOfStream(err error) (bool, error) {
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

func checkCounts(idone, imax, odone, omax int) error {
	if idone < 0 || idone > imax || odone < 0 || odone > omax {
		return fmt.Errorf("%w: reported %d/%d in, %d/%d out",
			ErrInvalidState, idone, imax, odone, omax)
	}
	return nil
}

func deinterleave(dst [][]Sample, src []Sample, channels int) {
	for i, s := range src {
		dst[i%channels][i/channels] = s
	}
}

func interleave(dst []Sample, src [][]Sample, channels, frames int) {
	for i := range frames {
		for ch := range channels {
			dst[i*channels+ch] = src[ch][i]
		}
	}
}
