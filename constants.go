package effects

// Channel constants
const (
	stereoChannels = 2   // Stereo channel count (used by interleave functions)
	maxChannels    = 256 // Maximum supported channel count
)

// Signal limits
const (
	maxPrecision = 32 // Sample is 32-bit fixed point
)

// Chain buffering
const (
	defaultBufferSize = 8192 // Default per-effect output buffer in samples
	minBufferSize     = 256  // Smallest accepted buffer size
	minBufferFrames   = 16   // Smallest buffer in frames for wide signals
	minChainEffects   = 2    // A source and a sink
)

// Resampling ratio limits
const (
	minRatioFactor = 1.0 / 256.0 // Minimum resampling ratio (1/256)
	maxRatioFactor = 256.0       // Maximum resampling ratio (256x)
)

// Quality option defaults
const (
	linearPhaseResponse = 50.0 // Linear phase (symmetric impulse response)
	minimumPhase        = 0.0
	intermediatePhase   = 25.0
)

// Gain
const (
	dbPerDecade = 20.0 // Amplitude dB per factor of ten
	maxGainDB   = 200.0
)
