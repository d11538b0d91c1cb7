// Package effects is a streaming audio effects chain with a multi-stage
// sample-rate converter, in pure Go.
//
// The converter follows the design of the SoX rate effect: an exact or
// approximated L/M ratio is split into half-band, DFT and polyphase stages,
// filters are Kaiser-windowed sincs with optional minimum or intermediate
// phase, and every stage compensates its own delay so that N input samples
// always become round(N × ratio) output samples after a flush.
//
// # Chains
//
// A [Chain] drives a line of [Handler] values from a source to a sink on a
// single goroutine. Effects are started as they are added, so each sees the
// output signal of the one before it:
//
//	src, _ := effects.NewSliceSource(effects.Signal{Rate: 44100, Channels: 2}, samples)
//	sink := effects.NewSliceSink()
//	rate, _ := effects.NewRate(effects.DefaultRateOptions())
//
//	chain, _ := effects.NewChain(src.Signal(), effects.Signal{Rate: 48000})
//	_ = chain.Add(src)
//	_ = chain.Add(rate)
//	_ = chain.Add(sink)
//
//	err := chain.Flow(ctx, nil)
//	report := chain.Close()
//
// Effects without [FlagMultiChannel] are cloned once per channel. An effect
// whose Start returns [ErrNoOp] is left out of the chain. Saturation while
// converting to [Sample] is counted and reported by [Chain.Close].
//
// # Resampler
//
// For planar float64 audio without a chain, [Resampler] runs one pipeline
// per channel:
//
//	out, err := effects.ResampleMono(input, 44100, 48000, effects.QualityHigh)
//
// # Quality Presets
//
//   - [QualityQuick]: cubic interpolation, no anti-alias filter.
//   - [QualityLow]: 16-bit precision over an 80% band.
//   - [QualityMedium]: 16-bit precision over a 95% band.
//   - [QualityHigh]: 20-bit precision over a 95% band.
//   - [QualityVeryHigh]: 28-bit precision for mastering and archival.
//
// # Thread Safety
//
// A Chain, and each channel of a Resampler, must be used from one goroutine
// at a time. [Resampler.ProcessMulti] may run channels concurrently; the
// transform cache they share is locked internally.
package effects
