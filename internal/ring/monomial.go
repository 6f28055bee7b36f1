package ring

// MulMonomial multiplies a CRT ring element by X^shift in
// Z_Q[X]/(X^D+1), a negacyclic rotation: coefficients wrap around index D
// with a sign flip, since X^D = -1. Used by RESPIRE's coefficient
// expansion to realign a ciphertext half after an automorphism split
// (spec.md §4.H query: "expanded server-side via coefficient expansion").
func (r *CRTRing) MulMonomial(in PolyCRTEval, shift int) PolyCRTEval {
	coeff := r.ToCoeff(in)
	D := r.D
	s := ((shift % (2 * D)) + 2*D) % (2 * D)
	out := r.NewPolyCRT()
	rotateNegacyclic(out.P1, coeff.P1, s)
	rotateNegacyclic(out.P2, coeff.P2, s)
	return r.ToEval(out)
}

func rotateNegacyclic(out, in Poly, s int) {
	D := len(in.Coeffs)
	q := in.Q
	for i := 0; i < D; i++ {
		j := i + s
		folds := j / D
		jm := j % D
		v := in.Coeffs[i]
		if folds%2 == 1 && v != 0 {
			v = q - v
		}
		out.Coeffs[jm] = v
	}
}
