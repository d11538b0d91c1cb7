package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	effects "github.com/tphakala/go-audio-effects"
	"github.com/tphakala/go-audio-effects/internal/cli"
	"github.com/tphakala/go-audio-effects/internal/wavio"
)

const (
	defaultRateKHz = 48.0
	kHzToHz        = 1000
	// Rates below this are taken as kHz.
	maxKHzRate = 1000

	progressInterval = 10 // log progress every N%
	percentScale     = 100
)

// ConvertCmd resamples one WAV file.
type ConvertCmd struct {
	Rate      float64 `short:"r" default:"48" help:"Target sample rate in kHz, or Hz for values of 1000 and up"`
	Quality   string  `short:"q" default:"high" help:"Quality preset: quick, low, medium, high, very-high"`
	Phase     float64 `default:"50" help:"Phase response: 25 intermediate, 50 linear, 100 maximum"`
	MinPhase  bool    `short:"M" help:"Use a minimum-phase filter (overrides --phase)"`
	Bandwidth float64 `help:"Passband edge in percent of Nyquist (74-99.7, 0 = preset)"`
	Alias     bool    `help:"Allow aliasing above the passband for a flatter response"`
	Gain      float64 `help:"Gain in dB applied after resampling"`
	Bits      int     `help:"Output bit depth: 16, 24 or 32 (0 keeps the input depth)"`
	Buffer    int     `default:"8192" help:"Chain buffer size in samples"`
	Verbose   bool    `short:"v" help:"Log progress"`

	Input  string `arg:"" type:"existingfile" help:"Input WAV file"`
	Output string `arg:"" type:"path" help:"Output WAV file"`
}

// Run converts Input to Output and prints a summary.
func (c *ConvertCmd) Run(g *Globals) error {
	start := time.Now()
	stats, err := c.convert(g)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fields := []cli.Field{
		cli.F("Input", "%s", filepath.Base(c.Input)),
		cli.F("Output", "%s", filepath.Base(c.Output)),
		cli.F("Rate", "%g Hz -> %g Hz", stats.in.Rate, stats.out.Rate),
		cli.F("Format", "%d channels, %d-bit -> %d-bit", stats.in.Channels, stats.in.Precision, stats.out.Precision),
		cli.F("Frames", "%d -> %d", stats.in.Frames(), stats.frames),
		cli.F("Stages", "%s", stats.stages),
		cli.F("Effects", "%s", strings.Join(stats.effects, " -> ")),
		cli.F("Clips", "%d", stats.report.Clips),
		cli.F("Speed", "%.2fs, %.1fx realtime", elapsed.Seconds(), realtime(stats.in, elapsed)),
	}
	cli.PrintReport(os.Stdout, "Resampled", fields)

	for _, e := range stats.report.Effects {
		if e.Clips > 0 {
			cli.PrintWarning("%s clipped %d samples; decrease volume?", e.Name, e.Clips)
		}
	}
	return nil
}

type convertStats struct {
	in, out effects.Signal
	frames  uint64
	stages  string
	effects []string
	report  effects.Report
}

func (c *ConvertCmd) convert(g *Globals) (stats *convertStats, err error) {
	quality, err := effects.ParseQuality(c.Quality)
	if err != nil {
		return nil, err
	}
	rate, err := effects.NewRate(effects.RateOptions{
		Quality:       quality,
		Phase:         c.Phase,
		MinimumPhase:  c.MinPhase,
		Bandwidth:     c.Bandwidth,
		AllowAliasing: c.Alias,
	})
	if err != nil {
		return nil, err
	}
	gain, err := effects.NewGain(c.Gain)
	if err != nil {
		return nil, err
	}

	in, err := os.Open(c.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer in.Close()

	src, err := wavio.NewSource(in)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.Input, err)
	}

	out, err := os.Create(c.Output)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	sink, err := wavio.NewSink(out, c.Bits)
	if err != nil {
		return nil, err
	}

	chain, err := effects.NewChain(src.Signal(),
		effects.Signal{Rate: targetRate(c.Rate)},
		effects.WithBufferSize(c.Buffer))
	if err != nil {
		return nil, err
	}
	for _, h := range []effects.Handler{src, rate, gain, sink} {
		if err := chain.Add(h); err != nil {
			chain.Close()
			return nil, err
		}
	}

	progress := newProgressTracker(chain.OutSignal().Frames(), sink.Frames, c.Verbose)
	if err := chain.Flow(g.Ctx, progress.update); err != nil {
		chain.Close()
		return nil, err
	}
	report := chain.Close()
	if err := sink.Err(); err != nil {
		return nil, fmt.Errorf("finishing %s: %w", c.Output, err)
	}

	stats = &convertStats{
		in:     src.Signal(),
		out:    sink.Signal(),
		frames: sink.Frames(),
		stages: rate.Stages(),
		report: report,
	}
	if stats.stages == "" {
		stats.stages = "passthrough"
	}
	for _, e := range chain.Effects() {
		stats.effects = append(stats.effects, e.Name)
	}
	return stats, nil
}

// targetRate accepts kHz for small values, as in "-r 44.1".
func targetRate(v float64) float64 {
	if v < maxKHzRate {
		return v * kHzToHz
	}
	return v
}

func realtime(sig effects.Signal, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(sig.Frames()) / sig.Rate / elapsed.Seconds()
}

// progressTracker logs progress when it crosses a threshold.
type progressTracker struct {
	total        uint64
	current      func() uint64
	lastProgress int
	verbose      bool
}

func newProgressTracker(total uint64, current func() uint64, verbose bool) *progressTracker {
	return &progressTracker{total: total, current: current, verbose: verbose}
}

// update is an effects.ProgressFunc.
func (p *progressTracker) update(done bool) error {
	if !p.verbose || p.total == 0 {
		return nil
	}

	progress := int(float64(p.current()) / float64(p.total) * percentScale)
	if done {
		progress = percentScale
	}
	if progress >= p.lastProgress+progressInterval {
		logger.WithField("progress", fmt.Sprintf("%d%%", progress)).Info("converting")
		p.lastProgress = progress
	}
	return nil
}
