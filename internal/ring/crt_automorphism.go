package ring

// AutomorphismNTTIndex is exposed at the CRTRing level because the
// permutation induced by X -> X^tau depends only on D, not on the
// modulus, so both CRT channels share one index table (spec.md §4.H
// auto_hom, generalized from SubRing.AutomorphismNTTIndex to the
// two-channel PolyCRTEval).
func (r *CRTRing) AutomorphismNTTIndex(tau uint64) ([]int, error) {
	return r.Q1.AutomorphismNTTIndex(tau)
}

// ApplyAutomorphismCRT substitutes X -> X^tau inside a CRT evaluation-domain
// element, applying the same index table to both channels.
func ApplyAutomorphismCRT(e PolyCRTEval, index []int, out PolyCRTEval) {
	ApplyAutomorphism(e.E1, index, out.E1)
	ApplyAutomorphism(e.E2, index, out.E2)
}
