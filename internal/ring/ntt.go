package ring

import (
	"fmt"
	"math/bits"

	"github.com/klauspost/cpuid/v2"
)

// twiddle pairs a root-of-unity power with its precomputed Shoup ratio32,
// the representation spec.md §4.C requires every table entry to carry.
type twiddle struct {
	V, R uint64
}

// SubRing holds every precomputed constant needed to run the forward and
// inverse negacyclic NTT over Z_q[X]/(X^D+1) for one prime q, grounded on
// the teacher's ring.SubRing (subring.go): the same split between "shape"
// (N, Modulus) and "precomputed NTT constants" (RootsForward/RootsBackward),
// here carrying Shoup ratio32 pairs instead of Montgomery constants per
// spec.md §4.A.
type SubRing struct {
	D       int
	LogD    int
	Q       uint64
	Barrett uint64
	Omega   uint64

	// W_POWERS_BIT_REVERSED / W_INV_POWERS_BIT_REVERSED (spec.md §4.C):
	// TwFwd[BitReverse(j)] = Omega^j, TwInv[BitReverse(j)] = Omega^-j.
	TwFwd []twiddle
	TwInv []twiddle

	InvD      uint64
	InvDRatio uint64

	simd bool // whether the batched 4-lane butterfly path is enabled
}

// NewSubRing builds the NTT tables for degree D (a power of two) and prime
// q with q == 1 (mod 2D), rejecting any q,D pair for which no valid
// negacyclic root exists (spec.md §7.1).
func NewSubRing(D int, q uint64) (*SubRing, error) {
	if D&(D-1) != 0 || D < 4 {
		return nil, fmt.Errorf("ring: D=%d must be a power of two >= 4", D)
	}
	if !IsPrime(q) {
		return nil, fmt.Errorf("ring: modulus %d is not prime", q)
	}
	if q >= 1<<30 {
		return nil, fmt.Errorf("ring: modulus %d must be < 2^30 for Shoup ratio32 reduction", q)
	}
	omega, err := FindSqrtPrimitiveRoot(D, q)
	if err != nil {
		return nil, err
	}
	s := &SubRing{
		D:       D,
		LogD:    bits.Len(uint(D)) - 1,
		Q:       q,
		Barrett: BarrettConstant(q),
		Omega:   omega,
		simd:    cpuid.CPU.Supports(cpuid.AVX2),
	}
	s.buildTables()
	return s, nil
}

func (s *SubRing) buildTables() {
	q, D, logD := s.Q, s.D, s.LogD
	s.TwFwd = make([]twiddle, D)
	s.TwInv = make([]twiddle, D)

	psi := s.Omega
	psiInv := ModExp(s.Omega, q-2, q)

	s.TwFwd[0] = twiddle{1, Ratio32(1, q)}
	s.TwInv[0] = twiddle{1, Ratio32(1, q)}
	for j := 1; j < D; j++ {
		prevIdx := ReverseBits(uint64(j-1), logD)
		nextIdx := ReverseBits(uint64(j), logD)
		vFwd := MulMod(s.TwFwd[prevIdx].V, psi, q, s.Barrett)
		vInv := MulMod(s.TwInv[prevIdx].V, psiInv, q, s.Barrett)
		s.TwFwd[nextIdx] = twiddle{vFwd, Ratio32(vFwd, q)}
		s.TwInv[nextIdx] = twiddle{vInv, Ratio32(vInv, q)}
	}
	s.InvD = ModInverse(uint64(D), q)
	s.InvDRatio = Ratio32(s.InvD, q)
}

// ForwardNTT computes the negacyclic forward transform of coeffsIn into
// coeffsOut (aliasing allowed), producing bit-reversed evaluations at the
// odd powers of omega, per spec.md §4.C. Mirrors the teacher's ring.NTT
// (ring/ntt.go): Cooley-Tukey decimation-in-time with sequentially
// accessed, bit-reversed twiddles, generalized from Montgomery reduction
// to Shoup ratio32 reduction.
func (s *SubRing) ForwardNTT(coeffsIn, coeffsOut []uint64) {
	q, D := s.Q, s.D
	if &coeffsIn[0] != &coeffsOut[0] {
		copy(coeffsOut, coeffsIn)
	}

	t := D >> 1
	w := s.TwFwd[1]
	for j := 0; j < t; j++ {
		shoupButterfly(&coeffsOut[j], &coeffsOut[j+t], w.V, w.R, q)
	}

	for m := 2; m < D; m <<= 1 {
		t >>= 1
		for i := 0; i < m; i++ {
			w := s.TwFwd[m+i]
			j1 := (i * t) << 1
			j2 := j1 + t
			if s.simd {
				shoupButterflyBlock(coeffsOut[j1:j2], coeffsOut[j2:j2+t], w.V, w.R, q)
			} else {
				for j := j1; j < j2; j++ {
					shoupButterfly(&coeffsOut[j], &coeffsOut[j+t], w.V, w.R, q)
				}
			}
		}
	}
	for i := range coeffsOut {
		coeffsOut[i] = CRed(ReduceHalf(coeffsOut[i], 2*q), q)
	}
}

// InverseNTT computes the negacyclic inverse transform, undoing
// ForwardNTT including the 1/D scale, per spec.md §4.C, mirroring the
// teacher's ring.InvNTT (Gentleman-Sande decimation-in-frequency).
func (s *SubRing) InverseNTT(coeffsIn, coeffsOut []uint64) {
	q, D := s.Q, s.D
	if &coeffsIn[0] != &coeffsOut[0] {
		copy(coeffsOut, coeffsIn)
	}

	t := 1
	h := D >> 1
	j1 := 0
	for i := 0; i < h; i++ {
		w := s.TwInv[h+i]
		shoupInvButterfly(&coeffsOut[j1], &coeffsOut[j1+t], w.V, w.R, q)
		j1 += t << 1
	}

	t <<= 1
	for m := D >> 1; m > 1; m >>= 1 {
		j1 = 0
		h = m >> 1
		for i := 0; i < h; i++ {
			w := s.TwInv[h+i]
			j2 := j1 + t
			for j := j1; j < j2; j++ {
				shoupInvButterfly(&coeffsOut[j], &coeffsOut[j+t], w.V, w.R, q)
			}
			j1 += t << 1
		}
		t <<= 1
	}
	for i := range coeffsOut {
		coeffsOut[i] = CRed(ShoupMulMod(coeffsOut[i], s.InvD, s.InvDRatio, q), q)
	}
}

// shoupButterfly implements the forward Harvey butterfly
// (x,y) -> (x + w*y, x - w*y) mod 2q with lazy reduction (spec.md §4.C).
func shoupButterfly(x, y *uint64, w, wRatio, q uint64) {
	u := *x
	if u >= 2*q {
		u -= 2 * q
	}
	v := ShoupMulMod(*y, w, wRatio, q)
	*x = u + v
	*y = u + 2*q - v
}

// shoupInvButterfly implements the inverse Gentleman-Sande butterfly
// (x,y) -> (x+y, (x-y)*w) mod 2q.
func shoupInvButterfly(x, y *uint64, w, wRatio, q uint64) {
	a, b := *x, *y
	sum := a + b
	if sum >= 2*q {
		sum -= 2 * q
	}
	diff := a + 2*q - b
	*x = sum
	*y = ShoupMulMod(diff, w, wRatio, q)
}

// shoupButterflyBlock applies shoupButterfly across a contiguous block,
// structured as four-lane batches per spec.md §4.C's SIMD requirement
// ("vectorize butterflies in batches of four 64-bit lanes"); Go has no
// portable intrinsic for this, so the loop is unrolled by four to keep the
// same data-independent structure a real vector implementation would use,
// falling back to the scalar butterfly for the remainder.
func shoupButterflyBlock(xs, ys []uint64, w, wRatio, q uint64) {
	n := len(xs)
	i := 0
	for ; i+4 <= n; i += 4 {
		shoupButterfly(&xs[i], &ys[i], w, wRatio, q)
		shoupButterfly(&xs[i+1], &ys[i+1], w, wRatio, q)
		shoupButterfly(&xs[i+2], &ys[i+2], w, wRatio, q)
		shoupButterfly(&xs[i+3], &ys[i+3], w, wRatio, q)
	}
	for ; i < n; i++ {
		shoupButterfly(&xs[i], &ys[i], w, wRatio, q)
	}
}
