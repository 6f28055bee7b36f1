// Package gsw implements Ring-GSW: key generation, public- and
// secret-key encryption, homomorphic addition/multiplication/scalar
// multiplication, and decryption with rounding (spec.md §4.G), built on
// internal/ring (CRT polynomial arithmetic) and internal/gadget (the
// gadget matrix and its right-inverse). Grounded on the teacher's
// core/rgsw package split between Encryptor (the zero-ciphertext skeleton
// plus gadget-scaled plaintext) and Evaluator (homomorphic ops).
package gsw

import (
	"github.com/jkwoods/respire/internal/gadget"
	ringpkg "github.com/jkwoods/respire/internal/ring"
)

// SecretKey is s in R^(1xN) with s[N-1] = -1 and the remaining entries
// Gaussian, per spec.md §3.
type SecretKey struct {
	S *ringpkg.Mat[ringpkg.PolyCRTEval]
	N int
}

// PublicKey is A in R^(NxM) with rows 0..N-2 uniform and row N-1 chosen so
// that s*A = e for small Gaussian noise e, per spec.md §3.
type PublicKey struct {
	A    *ringpkg.Mat[ringpkg.PolyCRTEval]
	N, M int
}

// Params bundles the ring, gadget, and noise width needed to run Ring-GSW.
type Params struct {
	Ring   *ringpkg.CRTRing
	Gadget *gadget.Gadget
	N      int // LWE-style dimension, matrix row count
	Sigma  float64
}

func (p *Params) M() int { return p.N * p.Gadget.GLen }

// gaussianCRTEval draws a Gaussian PolyCRTEval sample (signed Gaussian
// coefficients reduced independently into each CRT channel), used for both
// the secret key and the noise vector, mirroring the teacher's
// ring.GaussiamSampler.SampleGaussian fold-sign-into-canonical-form idiom.
func gaussianCRTEval(r *ringpkg.CRTRing, sampler *ringpkg.GaussianSampler) ringpkg.PolyCRTEval {
	c := r.NewPolyCRT()
	for i := 0; i < r.D; i++ {
		m, neg := sampler.SampleSigned()
		c.P1.Coeffs[i] = foldSign(m, neg, r.Q1.Q)
		c.P2.Coeffs[i] = foldSign(m, neg, r.Q2.Q)
	}
	return r.ToEval(c)
}

func foldSign(m uint64, neg bool, q uint64) uint64 {
	if neg && m != 0 {
		return q - (m % q)
	}
	return m % q
}

// negOneCRTEval returns the constant polynomial -1 in evaluation form.
func negOneCRTEval(r *ringpkg.CRTRing) ringpkg.PolyCRTEval {
	c := r.NewPolyCRT()
	c.P1.Coeffs[0] = r.Q1.Q - 1
	c.P2.Coeffs[0] = r.Q2.Q - 1
	return r.ToEval(c)
}

// uniformCRTEval draws a uniform ring element in evaluation form.
func uniformCRTEval(r *ringpkg.CRTRing, prng *ringpkg.PRNG) ringpkg.PolyCRTEval {
	c := r.NewPolyCRT()
	prng.UniformPoly(c.P1.Coeffs, r.Q1.Q)
	prng.UniformPoly(c.P2.Coeffs, r.Q2.Q)
	return r.ToEval(c)
}

// KeyGen draws a fresh secret/public key pair per spec.md §4.G keygen:
// s_bar in R^((N-1)x1) Gaussian, s = [s_bar | -1]; A_bar in R^((N-1)xM)
// uniform, e in R^(1xM) Gaussian, last row of A set so that s*A = e.
func KeyGen(p *Params, prng *ringpkg.PRNG) (*SecretKey, *PublicKey) {
	N, M := p.N, p.M()
	sampler := ringpkg.NewGaussianSampler(p.Sigma)

	s := ringpkg.NewMat[ringpkg.PolyCRTEval](1, N, p.Ring.NewPolyCRTEval)
	for i := 0; i < N-1; i++ {
		s.Set(0, i, gaussianCRTEval(p.Ring, sampler))
	}
	s.Set(0, N-1, negOneCRTEval(p.Ring))

	A := ringpkg.NewMat[ringpkg.PolyCRTEval](N, M, p.Ring.NewPolyCRTEval)
	for i := 0; i < N-1; i++ {
		for j := 0; j < M; j++ {
			A.Set(i, j, uniformCRTEval(p.Ring, prng))
		}
	}

	// Row N-1: A[N-1][j] = sum_{i<N-1} s[i]*A[i][j] - e[j], so that
	// s*A = sum_{i<N-1} s[i]*A[i] + (-1)*A[N-1] = e.
	tmp := p.Ring.NewPolyCRTEval()
	for j := 0; j < M; j++ {
		acc := p.Ring.NewPolyCRTEval()
		for i := 0; i < N-1; i++ {
			tmp.Mul(s.At(0, i), A.At(i, j))
			acc.Add(acc, tmp)
		}
		e := gaussianCRTEval(p.Ring, sampler)
		acc.Sub(acc, e)
		A.Set(N-1, j, acc)
	}

	return &SecretKey{S: s, N: N}, &PublicKey{A: A, N: N, M: M}
}
