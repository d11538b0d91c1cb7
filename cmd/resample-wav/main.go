// Command resample-wav converts the sample rate of WAV files.
//
// Usage:
//
//	resample-wav -r 48 input.wav output.wav
//	resample-wav -r 16000 -q medium --phase 0 speech.wav speech_16k.wav
//	resample-wav -r 44.1 --gain -3 --bits 24 master.wav cd.wav
//	resample-wav info
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/tphakala/go-audio-effects/internal/cli"
	"github.com/tphakala/go-audio-effects/internal/log"
)

var (
	version = "0.1.0"
	logger  = log.Std()
)

// CLI defines the command-line interface.
type CLI struct {
	Debug   bool             `help:"Enable debug logging"`
	Version kong.VersionFlag `short:"V" help:"Show version information"`

	Convert ConvertCmd `cmd:"" default:"withargs" help:"Resample a WAV file (default command)"`
	Info    InfoCmd    `cmd:"" help:"Show CPU and SIMD support"`
}

// Globals are bound into every command's Run method.
type Globals struct {
	Ctx   context.Context
	Debug bool
}

func main() {
	args := &CLI{}
	kctx := kong.Parse(args,
		kong.Name("resample-wav"),
		kong.Description("Sample rate conversion for WAV files"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if args.Debug {
		log.SetDebug(true)
	}

	if err := kctx.Run(&Globals{Ctx: ctx, Debug: args.Debug}); err != nil {
		cli.PrintError(err.Error())
		stop()
		os.Exit(1)
	}
}
