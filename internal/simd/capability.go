package simd

import (
	"os"
	"strings"
)

// ISA represents the instruction set a width plan is tuned for.
type ISA uint8

const (
	// Generic represents the width-1 fallback.
	Generic ISA = iota
	// SSE represents x86 SSE (4 float lanes).
	SSE
	// SSE41 represents x86 SSE4.1 (8 uint16 lanes).
	SSE41
	// AVX represents x86 AVX (8 float lanes).
	AVX
	// AVX2 represents x86 AVX2 (16 uint16 lanes).
	AVX2
	// NEON represents ARM64 ASIMD.
	NEON
)

// String returns the string representation of an ISA.
func (i ISA) String() string {
	switch i {
	case Generic:
		return "generic"
	case SSE:
		return "sse"
	case SSE41:
		return "sse4.1"
	case AVX:
		return "avx"
	case AVX2:
		return "avx2"
	case NEON:
		return "neon"
	default:
		return "unknown"
	}
}

// ParseISA parses a string into an ISA value.
func ParseISA(s string) (ISA, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generic":
		return Generic, true
	case "sse":
		return SSE, true
	case "sse4.1", "sse41":
		return SSE41, true
	case "avx":
		return AVX, true
	case "avx2":
		return AVX2, true
	case "neon":
		return NEON, true
	default:
		return Generic, false
	}
}

// Set once by the platform init.
var (
	activeISA   ISA
	hasOverride bool

	hasSSE   bool
	hasSSE41 bool
	hasAVX   bool
	hasAVX2  bool
	hasASIMD bool
)

// initCapabilities is called from platform-specific init functions
// after CPU features are detected.
func initCapabilities() {
	if override := os.Getenv("SCANNGO_SIMD"); override != "" {
		if isa, ok := ParseISA(override); ok && isISAAvailable(isa) {
			hasOverride = true
			activeISA = isa
			return
		}
	}
	activeISA = selectBestISA()
}

func isISAAvailable(isa ISA) bool {
	switch isa {
	case Generic:
		return true
	case SSE:
		return hasSSE
	case SSE41:
		return hasSSE41
	case AVX:
		return hasAVX && hasSSE41
	case AVX2:
		return hasAVX2
	case NEON:
		return hasASIMD
	default:
		return false
	}
}

func selectBestISA() ISA {
	for _, isa := range []ISA{AVX2, AVX, SSE41, SSE, NEON} {
		if isISAAvailable(isa) {
			return isa
		}
	}
	return Generic
}

// ActiveISA returns the ISA the default plan is built for.
func ActiveISA() ISA {
	return activeISA
}

// IsOverridden returns true if SCANNGO_SIMD selected the active ISA.
func IsOverridden() bool {
	return hasOverride
}
