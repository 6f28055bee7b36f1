package ring

import "fmt"

// AutomorphismNTTIndex computes the lookup table mapping evaluation-domain
// slot i of a polynomial to the slot its coefficient moves to under the
// substitution X -> X^tau, tau odd, gcd(tau, 2D) = 1 (spec.md §4.H
// auto_hom). Grounded directly on the teacher's
// ring.AutomorphismNTTIndex (ring/automorphism.go), specialized to a
// single SubRing.
func (s *SubRing) AutomorphismNTTIndex(tau uint64) ([]int, error) {
	D := s.D
	nthRoot := uint64(2 * D)
	if nthRoot&(nthRoot-1) != 0 {
		return nil, fmt.Errorf("ring: NthRoot must be a power of two")
	}
	if tau%2 == 0 {
		return nil, fmt.Errorf("ring: automorphism generator tau=%d must be odd", tau)
	}
	mask := nthRoot - 1
	index := make([]int, D)
	for i := 0; i < D; i++ {
		t1 := 2*ReverseBits(uint64(i), s.LogD) + 1
		t2 := ((tau*t1)&mask - 1) >> 1
		index[i] = int(ReverseBits(t2, s.LogD))
	}
	return index, nil
}

// ApplyAutomorphism substitutes X -> X^tau inside the evaluation-domain
// polynomial e, writing the permuted result into out (out must not alias
// e), using a precomputed index table from AutomorphismNTTIndex.
func ApplyAutomorphism(e PolyEval, index []int, out PolyEval) {
	for i, j := range index {
		out.Values[i] = e.Values[j]
	}
}
