package effects

import (
	"github.com/tphakala/go-audio-effects/internal/simdops"
)

// Common sample rates for convenience functions.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes88 is the high-resolution 2x CD sample rate.
	RateHiRes88 = 88200

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000

	// RateHiRes176 is the very high resolution 4x CD sample rate.
	RateHiRes176 = 176400

	// RateHiRes192 is the very high resolution 4x DAT sample rate.
	RateHiRes192 = 192000

	// RateTelephony is the telephony (PSTN narrowband) sample rate.
	RateTelephony = 8000

	// RateVoIP is the VoIP wideband sample rate.
	RateVoIP = 16000

	// RateSpeech is the speech recognition common sample rate.
	RateSpeech = 22050
)

// NewCDtoDAT creates a resampler for CD (44.1kHz) to DAT (48kHz) conversion.
func NewCDtoDAT(quality Quality) (*Resampler, error) {
	return NewSimple(RateCD, RateDAT, quality)
}

// NewDATtoCD creates a resampler for DAT (48kHz) to CD (44.1kHz) conversion.
func NewDATtoCD(quality Quality) (*Resampler, error) {
	return NewSimple(RateDAT, RateCD, quality)
}

// NewSimple creates a mono resampler with linear phase at the given quality.
func NewSimple(inputRate, outputRate float64, quality Quality) (*Resampler, error) {
	return New(&Config{
		InputRate:  inputRate,
		OutputRate: outputRate,
		Channels:   1,
		Quality:    QualitySpec{Preset: quality},
	})
}

// NewStereo creates a stereo resampler that processes both channels in
// parallel.
func NewStereo(inputRate, outputRate float64, quality Quality) (*Resampler, error) {
	return New(&Config{
		InputRate:      inputRate,
		OutputRate:     outputRate,
		Channels:       stereoChannels,
		Quality:        QualitySpec{Preset: quality},
		EnableParallel: true,
	})
}

// ResampleMono is a convenience function for one-shot mono resampling.
// It creates a resampler, processes the input, flushes, and returns the result.
func ResampleMono(input []float64, inputRate, outputRate float64, quality Quality) ([]float64, error) {
	r, err := NewSimple(inputRate, outputRate, quality)
	if err != nil {
		return nil, err
	}

	output, err := r.Process(input)
	if err != nil {
		return nil, err
	}

	flushed, err := r.Flush()
	if err != nil {
		return nil, err
	}

	return append(output, flushed...), nil
}

// ResampleStereo is a convenience function for one-shot stereo resampling.
func ResampleStereo(left, right []float64, inputRate, outputRate float64, quality Quality) (leftOut, rightOut []float64, err error) {
	r, err := NewStereo(inputRate, outputRate, quality)
	if err != nil {
		return nil, nil, err
	}

	out, err := r.ProcessMulti([][]float64{left, right})
	if err != nil {
		return nil, nil, err
	}

	tail, err := r.FlushMulti()
	if err != nil {
		return nil, nil, err
	}

	return append(out[0], tail[0]...), append(out[1], tail[1]...), nil
}

// ResampleMonoFloat32 is the float32 equivalent of ResampleMono. Samples are
// filtered in float64.
func ResampleMonoFloat32(input []float32, inputRate, outputRate float64, quality Quality) ([]float32, error) {
	out, err := ResampleMono(toFloat64(input), inputRate, outputRate, quality)
	if err != nil {
		return nil, err
	}
	return toFloat32(out), nil
}

// InterleaveToStereo converts two mono channels to interleaved stereo.
// Output format: [L0, R0, L1, R1, L2, R2, ...]
func InterleaveToStereo(left, right []float64) []float64 {
	return simdops.InterleaveStereo(left, right)
}

// DeinterleaveFromStereo converts interleaved stereo to two mono channels.
// Input format: [L0, R0, L1, R1, L2, R2, ...]
func DeinterleaveFromStereo(interleaved []float64) (left, right []float64) {
	return simdops.DeinterleaveStereo(interleaved)
}

// InterleaveToStereoFloat32 is the float32 equivalent of InterleaveToStereo.
func InterleaveToStereoFloat32(left, right []float32) []float32 {
	return simdops.InterleaveStereo(left, right)
}

// DeinterleaveFromStereoFloat32 is the float32 equivalent of
// DeinterleaveFromStereo.
func DeinterleaveFromStereoFloat32(interleaved []float32) (left, right []float32) {
	return simdops.DeinterleaveStereo(interleaved)
}

func toFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
