package pipeline

// DSP algorithm constants
const (
	// dB per bit of precision (20 * log10(2))
	dbPerBit = 6.0206

	// Percent scale for bandwidth options
	percent = 100.0
)

// Ratio decomposition
const (
	// Largest denominator tried when looking for an exact L/M.
	maxDivisor = 2048

	// Relative tolerance for accepting a rational approximation or unity.
	ratioTolerance = 1e-12

	// L and M up to this go straight to one DFT stage.
	maxSingleDFTFactor = 4

	// Odd residual factors up to this become a DFT stage next to the
	// half-band stages; larger ones would need an oversized coefficient
	// table and go to the polyphase stage instead.
	maxResidualDFTFactor = 8

	halfRatio   = 0.5
	doubleRatio = 2.0

	defaultStageCapacity = 4
)

// Phase and bandwidth option ranges
const (
	minPhase     = 0.0
	maxPhase     = 100.0
	defaultPhase = 50.0

	minBandwidth = 74.0
	maxBandwidth = 99.7
)

// Flush
const (
	flushChunk         = 4096
	maxFlushIterations = 1 << 16
)
