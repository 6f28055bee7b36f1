package gsw

import (
	ringpkg "github.com/jkwoods/respire/internal/ring"
)

// binaryCRTEval draws a ring element with uniform {0,1} coefficients,
// embedding the same bit into both CRT channels (0 and 1 are valid
// representatives under any modulus).
func binaryCRTEval(r *ringpkg.CRTRing, prng *ringpkg.PRNG) ringpkg.PolyCRTEval {
	bits := make([]uint64, r.D)
	prng.UniformBinaryMatrix(bits)
	c := r.NewPolyCRT()
	copy(c.P1.Coeffs, bits)
	copy(c.P2.Coeffs, bits)
	return r.ToEval(c)
}

// scaleGadgetByPlaintext computes mu*G entrywise: G (NxM) scaled on the
// left by the plaintext ring element mu (spec.md §4.G: "mu*G" appears in
// both the ciphertext invariant and encrypt_pk/encrypt_sk).
func scaleGadgetByPlaintext(p *Params, mu ringpkg.PolyCRTEval) *ringpkg.Mat[ringpkg.PolyCRTEval] {
	G := p.Gadget.Build(p.N)
	out := ringpkg.NewMat[ringpkg.PolyCRTEval](p.N, p.M(), p.Ring.NewPolyCRTEval)
	for i := 0; i < p.N; i++ {
		for j := 0; j < p.M(); j++ {
			cell := p.Ring.NewPolyCRTEval()
			cell.Mul(mu, G.At(i, j))
			out.Set(i, j, cell)
		}
	}
	return out
}

// EncryptPK encrypts plaintext mu under public key pk, per spec.md §4.G
// encrypt_pk: draw R in {0,1}^(MxM) uniform binary, return A*R + mu*G.
func EncryptPK(p *Params, pk *PublicKey, mu ringpkg.PolyCRTEval, prng *ringpkg.PRNG) *Ciphertext {
	M := p.M()
	R := ringpkg.NewMat[ringpkg.PolyCRTEval](M, M, p.Ring.NewPolyCRTEval)
	for i := 0; i < M; i++ {
		for j := 0; j < M; j++ {
			R.Set(i, j, binaryCRTEval(p.Ring, prng))
		}
	}
	ct := newCiphertext(p)
	ct.C.Mul(pk.A, R)
	ct.C.Add(ct.C, scaleGadgetByPlaintext(p, mu))
	return ct
}

// EncryptSK encrypts plaintext mu under secret key sk, per spec.md §4.G
// encrypt_sk: draw uniform rows and construct A' analogous to keygen
// (s*A' = e), then add mu*G.
func EncryptSK(p *Params, sk *SecretKey, mu ringpkg.PolyCRTEval, prng *ringpkg.PRNG) *Ciphertext {
	N, M := p.N, p.M()
	sampler := ringpkg.NewGaussianSampler(p.Sigma)

	A := ringpkg.NewMat[ringpkg.PolyCRTEval](N, M, p.Ring.NewPolyCRTEval)
	for i := 0; i < N-1; i++ {
		for j := 0; j < M; j++ {
			A.Set(i, j, uniformCRTEval(p.Ring, prng))
		}
	}
	tmp := p.Ring.NewPolyCRTEval()
	for j := 0; j < M; j++ {
		acc := p.Ring.NewPolyCRTEval()
		for i := 0; i < N-1; i++ {
			tmp.Mul(sk.S.At(0, i), A.At(i, j))
			acc.Add(acc, tmp)
		}
		e := gaussianCRTEval(p.Ring, sampler)
		acc.Sub(acc, e)
		A.Set(N-1, j, acc)
	}

	ct := newCiphertext(p)
	ct.C.Add(A, scaleGadgetByPlaintext(p, mu))
	return ct
}

// EncryptRegevSK encrypts a plaintext ring element under a two-row
// Regev/RLWE secret s (a single PolyCRTEval, not the N-row GSW secret):
// draw uniform a, gaussian e, set b = -a*s + e + mu (spec.md §3 Regev
// ciphertext). mu is added as given: no floor(Q/p) scaling is applied
// here, so a caller encrypting a Z_p plaintext passes it already scaled.
func EncryptRegevSK(r *ringpkg.CRTRing, s ringpkg.PolyCRTEval, mu ringpkg.PolyCRTEval, sigma float64, prng *ringpkg.PRNG) RegevCiphertext {
	sampler := ringpkg.NewGaussianSampler(sigma)
	a := uniformCRTEval(r, prng)
	e := gaussianCRTEval(r, sampler)
	as := r.NewPolyCRTEval()
	as.Mul(a, s)
	b := r.NewPolyCRTEval()
	b.Neg(as)
	b.Add(b, e)
	b.Add(b, mu)
	return RegevCiphertext{B: b, A: a}
}
