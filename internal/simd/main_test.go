package simd

import (
	"fmt"
	"os"
	"runtime"
	"testing"
)

// TestMain prints which width plan the tests run with by default.
func TestMain(m *testing.M) {
	fmt.Printf("=== SIMD ISA Diagnostics ===\n")
	fmt.Printf("GOOS=%s GOARCH=%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("SCANNGO_SIMD=%q\n", os.Getenv("SCANNGO_SIMD"))
	fmt.Printf("Active ISA: %s\n", ActiveISA())
	fmt.Printf("Override: %v\n", IsOverridden())
	fmt.Printf("Plan: %+v\n", DefaultPlan())
	fmt.Printf("============================\n\n")

	os.Exit(m.Run())
}
