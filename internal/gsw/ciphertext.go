package gsw

import ringpkg "github.com/jkwoods/respire/internal/ring"

// Ciphertext is a GSW encryption of a plaintext mu in R: a matrix
// C in R^(NxM) such that s*C = mu*s*G + noise (spec.md §3, §4.G).
type Ciphertext struct {
	C *ringpkg.Mat[ringpkg.PolyCRTEval]
}

// RegevCiphertext is the cheaper two-row Regev/RLWE encryption used for the
// RESPIRE query's dimension-1 selector and for database rows before the
// GSW fold (spec.md §3 Query, §4.H): a pair (b, a) in R^2 with
// b + a*s ~= mu (scaled).
type RegevCiphertext struct {
	B, A ringpkg.PolyCRTEval
}

func newCiphertext(p *Params) *Ciphertext {
	return &Ciphertext{C: ringpkg.NewMat[ringpkg.PolyCRTEval](p.N, p.M(), p.Ring.NewPolyCRTEval)}
}
