package main

// Test signal parameters
const (
	testSignalFrequency = 1000.0 // 1 kHz test tone
	testSignalAmplitude = 0.5
	testSignalSamples   = 4096
)

// Memory conversion
const (
	bytesPerKilobyte = 1024
)
