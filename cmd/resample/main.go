// Command resample prints the conversion plan for a pair of sample rates and
// runs a test tone through it.
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/alecthomas/kong"

	effects "github.com/tphakala/go-audio-effects"
	"github.com/tphakala/go-audio-effects/internal/cli"
	"github.com/tphakala/go-audio-effects/internal/simdops"
)

// CLI defines the command-line interface.
type CLI struct {
	InputRate  float64 `name:"input-rate" short:"i" default:"44100" help:"Input sample rate in Hz"`
	OutputRate float64 `name:"output-rate" short:"o" default:"48000" help:"Output sample rate in Hz"`
	Channels   int     `short:"c" default:"2" help:"Number of audio channels"`
	Quality    string  `short:"q" default:"high" help:"Quality preset: quick, low, medium, high, very-high"`
	Phase      float64 `help:"Phase response in percent (0 = flags default)"`
	MinPhase   bool    `name:"min-phase" help:"Use a minimum-phase filter"`
	Demo       bool    `help:"Compare presets across common conversions"`
}

func main() {
	args := &CLI{}
	kong.Parse(args,
		kong.Name("resample"),
		kong.Description("Show how a sample rate conversion is planned"),
		kong.UsageOnError(),
	)

	var err error
	if args.Demo {
		err = runDemo()
	} else {
		err = run(args)
	}
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

func run(args *CLI) error {
	quality, err := effects.ParseQuality(args.Quality)
	if err != nil {
		return err
	}

	spec := effects.QualitySpec{Preset: quality, PhaseResponse: args.Phase}
	if args.MinPhase {
		spec.Flags |= effects.FlagMinimumPhase
	}

	r, err := effects.New(&effects.Config{
		InputRate:      args.InputRate,
		OutputRate:     args.OutputRate,
		Channels:       args.Channels,
		Quality:        spec,
		EnableParallel: args.Channels > 1,
	})
	if err != nil {
		return fmt.Errorf("failed to create resampler: %w", err)
	}

	info := r.GetInfo()
	fields := []cli.Field{
		cli.F("Algorithm", "%s", info.Algorithm),
		cli.F("Ratio", "%.6f (%g Hz -> %g Hz)", r.GetRatio(), args.InputRate, args.OutputRate),
		cli.F("Filter length", "%d taps", info.FilterLength),
		cli.F("Phases", "%d", info.Phases),
		cli.F("Latency", "%d samples", info.Latency),
		cli.F("Memory usage", "%.2f KB", float64(info.MemoryUsage)/bytesPerKilobyte),
		cli.F("SIMD", "%s", info.SIMDType),
	}

	tone := generateTestSignal(testSignalSamples, args.InputRate)
	input := make([][]float64, args.Channels)
	for ch := range input {
		input[ch] = tone
	}
	out, err := r.ProcessMulti(input)
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}
	tail, err := r.FlushMulti()
	if err != nil {
		return fmt.Errorf("flush failed: %w", err)
	}

	result := append(out[0], tail[0]...)
	fields = append(fields,
		cli.F("Test input", "%d samples per channel, RMS %.4f", len(tone), simdops.RMS(tone)),
		cli.F("Test output", "%d samples per channel, RMS %.4f", len(result), simdops.RMS(result)),
		cli.F("Expected", "%d", int(math.Round(float64(len(tone))*r.GetRatio()))),
	)
	cli.PrintReport(os.Stdout, "Resampler", fields)
	return nil
}

func generateTestSignal(samples int, sampleRate float64) []float64 {
	signal := make([]float64, samples)
	omega := 2 * math.Pi * testSignalFrequency / sampleRate
	for i := range signal {
		signal[i] = testSignalAmplitude * math.Sin(omega*float64(i))
	}
	return signal
}

func runDemo() error {
	conversions := []struct {
		name     string
		from, to float64
	}{
		{"CD to DAT", effects.RateCD, effects.RateDAT},
		{"DAT to CD", effects.RateDAT, effects.RateCD},
		{"CD to 2x", effects.RateCD, effects.RateHiRes88},
		{"Hi-res to CD", effects.RateHiRes96, effects.RateCD},
		{"DAT to telephony", effects.RateDAT, effects.RateTelephony},
	}
	qualities := []effects.Quality{
		effects.QualityQuick,
		effects.QualityLow,
		effects.QualityMedium,
		effects.QualityHigh,
		effects.QualityVeryHigh,
	}

	for _, conv := range conversions {
		var fields []cli.Field
		for _, q := range qualities {
			r, err := effects.NewSimple(conv.from, conv.to, q)
			if err != nil {
				return err
			}
			info := r.GetInfo()
			fields = append(fields, cli.F(q.String(), "%s, %d taps, %d samples latency, %.1f KB",
				info.Algorithm, info.FilterLength, info.Latency, float64(info.MemoryUsage)/bytesPerKilobyte))
		}
		title := fmt.Sprintf("%s (%g Hz -> %g Hz)", conv.name, conv.from, conv.to)
		cli.PrintReport(os.Stdout, title, fields)
	}
	return nil
}
