package ring

import "unsafe"

// alignment is the required byte alignment for coefficient buffers
// (spec.md §4.C / §5): 64 bytes, one AVX-512 cache line.
const alignment = 64

// NewAlignedCoeffs allocates a []uint64 of length n whose backing array
// starts on a 64-byte boundary, the storage contract polynomial and matrix
// buffers must satisfy for the batched SIMD-style butterflies. Grounded on
// the teacher's use of unsafe.Pointer arithmetic for low-level buffer
// tricks in ring.AutomorphismNTTWithIndex.
func NewAlignedCoeffs(n int) []uint64 {
	const elemsPerLine = alignment / 8
	raw := make([]uint64, n+elemsPerLine)
	off := int((alignment - uintptr(unsafe.Pointer(&raw[0]))%alignment) / 8)
	if off == elemsPerLine {
		off = 0
	}
	return raw[off : off+n : off+n]
}
