package main

import (
	"os"
	"runtime"
	"strings"

	"github.com/klauspost/cpuid"
	"github.com/tphakala/simd/cpu"

	"github.com/tphakala/go-audio-effects/internal/cli"
)

// InfoCmd prints the CPU features the DSP kernels can use.
type InfoCmd struct{}

// Run implements the info command.
func (InfoCmd) Run(*Globals) error {
	cli.PrintReport(os.Stdout, "resample-wav "+version, []cli.Field{
		cli.F("CPU", "%s", cpuid.CPU.BrandName),
		cli.F("Cores", "%d physical, %d logical", cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores),
		cli.F("Features", "%s", strings.Join(cpuid.CPU.Features.Strings(), " ")),
		cli.F("SIMD", "%s", cpu.Info()),
		cli.F("Go", "%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
	})
	return nil
}
