//go:build amd64

package simd

import "golang.org/x/sys/cpu"

func init() {
	hasSSE = true // part of the amd64 baseline
	hasSSE41 = cpu.X86.HasSSE41
	hasAVX = cpu.X86.HasAVX
	hasAVX2 = cpu.X86.HasAVX2
	initCapabilities()
}
