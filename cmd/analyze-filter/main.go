// Command analyze-filter designs a low-pass filter the way the rate effect
// does and reports its measured response.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/tphakala/go-audio-effects/internal/cli"
	"github.com/tphakala/go-audio-effects/internal/fft"
	"github.com/tphakala/go-audio-effects/internal/filter"
)

const (
	// Band edges are given as fractions of Nyquist; Analyze wants
	// cycles/sample.
	nyquist = 0.5

	maxPhasesToShow = 8
)

// CLI defines the command-line interface.
type CLI struct {
	Pass        float64 `default:"0.913" help:"Passband edge as a fraction of Nyquist"`
	Stop        float64 `default:"1.0" help:"Stopband edge as a fraction of Nyquist"`
	Attenuation float64 `short:"a" default:"125" help:"Stopband attenuation in dB"`
	Taps        int     `help:"Taps per phase (0 estimates from attenuation)"`
	Phases      int     `short:"p" help:"Polyphase phase count (0 designs a single filter)"`
	Phase       float64 `default:"50" help:"Phase response: 0 minimum, 50 linear, 100 maximum"`
	Alias       bool    `help:"Allow aliasing designs"`
	Points      int     `default:"8192" help:"Frequency response points"`
}

func main() {
	args := &CLI{}
	kong.Parse(args,
		kong.Name("analyze-filter"),
		kong.Description("Design and measure a Kaiser low-pass filter"),
		kong.UsageOnError(),
	)

	fields, err := analyze(args)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
	cli.PrintReport(os.Stdout, "Filter", fields)
}

func analyze(args *CLI) ([]cli.Field, error) {
	h, err := filter.DesignLPF(args.Pass, args.Stop, 1, args.Alias, args.Attenuation, args.Taps, args.Phases)
	if err != nil {
		return nil, err
	}

	postPeak := len(h) / 2
	if args.Phase != filter.PhaseLinear {
		h, postPeak = filter.FirToPhase(fft.NewCache(), h, args.Phase)
	}

	k := float64(max(args.Phases, 1))
	a := filter.Analyze(h, k, args.Pass*nyquist/k, args.Stop*nyquist/k, args.Points)

	fields := []cli.Field{
		cli.F("Taps", "%d", a.Taps),
		cli.F("Post-peak taps", "%d", postPeak),
		cli.F("DC gain", "%.10f", a.DCGain),
		cli.F("Passband ripple", "%.6f dB", a.PassbandRippleDB),
		cli.F("Stopband attenuation", "%.2f dB", a.StopbandAttenDB),
	}
	if args.Phases == 0 {
		return fields, nil
	}

	bank, err := filter.NewBank(h, args.Phases, filter.InterpCubic)
	if err != nil {
		return nil, err
	}
	fields = append(fields,
		cli.F("Taps per phase", "%d", bank.TapsPerPhase),
		cli.F("Bank memory", "%d bytes", bank.MemoryBytes()),
	)
	for _, p := range phaseGains(bank, maxPhasesToShow) {
		fields = append(fields, cli.F(fmt.Sprintf("Phase %d DC", p.phase), "%.10f", p.gain))
	}
	return fields, nil
}

type phaseGain struct {
	phase int
	gain  float64
}

// phaseGains sums the coefficients of the first n phases of bank.
func phaseGains(bank *filter.Bank, n int) []phaseGain {
	n = min(n, bank.NumPhases)
	gains := make([]phaseGain, n)
	for p := range n {
		var dc float64
		for tap := range bank.TapsPerPhase {
			dc += bank.Coefficient(tap, p, 0)
		}
		gains[p] = phaseGain{phase: p, gain: dc}
	}
	return gains
}
