package gsw

import (
	ringpkg "github.com/jkwoods/respire/internal/ring"
)

// AddHom computes the homomorphic sum c1+c2 (spec.md §4.G add_hom).
func AddHom(p *Params, c1, c2 *Ciphertext) *Ciphertext {
	out := newCiphertext(p)
	out.C.Add(c1.C, c2.C)
	return out
}

// MulHom computes the homomorphic product c1*G^-1(c2) (spec.md §4.G
// mul_hom). Since M = N*GLen by construction, G^-1(c2) has shape MxM and
// the product c1 (NxM) * G^-1(c2) (MxM) is again NxM.
func MulHom(p *Params, c1, c2 *Ciphertext) *Ciphertext {
	ginv := p.Gadget.Inverse(c2.C, p.N, p.M())
	out := newCiphertext(p)
	out.C.Mul(c1.C, ginv)
	return out
}

// AddScalar computes c + a*G for a plaintext ring element a (spec.md
// §4.G add_scalar).
func AddScalar(p *Params, c *Ciphertext, a ringpkg.PolyCRTEval) *Ciphertext {
	out := newCiphertext(p)
	out.C.Add(c.C, scaleGadgetByPlaintext(p, a))
	return out
}

// MulScalar computes c * G^-1(a*G) for a plaintext ring element a (spec.md
// §4.G mul_scalar, naive form — the alternative gadget-decomposed-a form
// noted in spec.md §9 as an unexercised optimization is not implemented
// here since no profiling has shown this path to be a bottleneck).
func MulScalar(p *Params, c *Ciphertext, a ringpkg.PolyCRTEval) *Ciphertext {
	aG := scaleGadgetByPlaintext(p, a)
	ginv := p.Gadget.Inverse(aG, p.N, p.M())
	out := newCiphertext(p)
	out.C.Mul(c.C, ginv)
	return out
}

// Decrypt recovers the D plaintext coefficients of mu in Z_p from a GSW
// ciphertext, per spec.md §4.G decrypt: compute s*C restricted to the
// gadget column whose G-row is exactly -1 (column (N-1)*GLen, where row
// N-1 of G carries z^0=1 and every other row is zero there, so
// s*G at that column equals s[N-1] = -1), negate to land on mu+noise, then
// round(p/Q * .) coefficient-wise.
func Decrypt(p *Params, sk *SecretKey, ct *Ciphertext, plaintextModulus uint64) []uint64 {
	col := (p.N - 1) * p.Gadget.GLen
	acc := p.Ring.NewPolyCRTEval()
	tmp := p.Ring.NewPolyCRTEval()
	for i := 0; i < p.N; i++ {
		tmp.Mul(sk.S.At(0, i), ct.C.At(i, col))
		acc.Add(acc, tmp)
	}
	neg := p.Ring.NewPolyCRTEval()
	neg.Neg(acc)
	coeff := p.Ring.ToCoeff(neg)
	composed := p.Ring.Compose(coeff)
	return p.Ring.RoundDiv(composed, plaintextModulus)
}

// DecryptRegev recovers the D plaintext coefficients of a Regev
// ciphertext (b,a) under secret s: round(p/Q * (b + a*s)).
func DecryptRegev(r *ringpkg.CRTRing, s ringpkg.PolyCRTEval, ct RegevCiphertext, plaintextModulus uint64) []uint64 {
	as := r.NewPolyCRTEval()
	as.Mul(ct.A, s)
	v := r.NewPolyCRTEval()
	v.Add(ct.B, as)
	coeff := r.ToCoeff(v)
	composed := r.Compose(coeff)
	return r.RoundDiv(composed, plaintextModulus)
}

// MulGSWRegev applies the GSW ciphertext ct (with N=2) to a Regev
// ciphertext r via C * G^-1(Regev), producing a new Regev ciphertext
// (spec.md §4.H answer step 2's "GSW_j * (halves[1]-halves[0])", and the
// general mixed Regev/GSW multiplicative homomorphism mentioned in the
// glossary). Requires p.N == 2.
func MulGSWRegev(p *Params, ct *Ciphertext, r RegevCiphertext) RegevCiphertext {
	if p.N != 2 {
		panic("gsw: MulGSWRegev requires a two-row GSW instance (N=2)")
	}
	regevMat := ringpkg.NewMat[ringpkg.PolyCRTEval](2, 1, p.Ring.NewPolyCRTEval)
	// S = [s, -1] applied to the column (a, -b) gives a*s + b, the phase
	// DecryptRegev reads, so the product is read back the same way.
	negB := p.Ring.NewPolyCRTEval()
	negB.Neg(r.B)
	regevMat.Set(0, 0, r.A)
	regevMat.Set(1, 0, negB)
	ginv := p.Gadget.Inverse(regevMat, 2, 1)
	out := ringpkg.NewMat[ringpkg.PolyCRTEval](2, 1, p.Ring.NewPolyCRTEval)
	out.Mul(ct.C, ginv)
	outB := p.Ring.NewPolyCRTEval()
	outB.Neg(out.At(1, 0))
	return RegevCiphertext{B: outB, A: out.At(0, 0)}
}

// AddRegev computes the additive homomorphism of two Regev ciphertexts.
func AddRegev(r *ringpkg.CRTRing, a, b RegevCiphertext) RegevCiphertext {
	bOut := r.NewPolyCRTEval()
	aOut := r.NewPolyCRTEval()
	bOut.Add(a.B, b.B)
	aOut.Add(a.A, b.A)
	return RegevCiphertext{B: bOut, A: aOut}
}

// SubRegev computes the subtractive homomorphism of two Regev ciphertexts.
func SubRegev(r *ringpkg.CRTRing, a, b RegevCiphertext) RegevCiphertext {
	bOut := r.NewPolyCRTEval()
	aOut := r.NewPolyCRTEval()
	bOut.Sub(a.B, b.B)
	aOut.Sub(a.A, b.A)
	return RegevCiphertext{B: bOut, A: aOut}
}
