// Package gadget implements the gadget matrix G and its right-inverse
// G^-1 (base-z signed-digit decomposition), the mechanism Ring-GSW uses to
// control noise growth under homomorphic multiplication (spec.md §4.F).
package gadget

import (
	"math/big"

	ringpkg "github.com/jkwoods/respire/internal/ring"
)

// Gadget fixes a base z and the derived decomposition length
// g_len = ceil(log_z Q) for a given CRT ring.
type Gadget struct {
	Ring *ringpkg.CRTRing
	Z    uint64
	GLen int
}

// New builds a Gadget for base z over ring r, deriving g_len from Q and z.
func New(r *ringpkg.CRTRing, z uint64) *Gadget {
	return &Gadget{Ring: r, Z: z, GLen: ringpkg.CeilLog(z, r.Q)}
}

// NewFromLen builds a Gadget for a fixed decomposition length gLen,
// deriving the base z = base_from_len(gLen, Q) (spec.md §6
// base_from_len), the direction RESPIRE's parameter set uses: the
// gadget lengths T_GSW/T_CONV/T_COEFF_REGEV/T_COEFF_GSW are inputs and
// each implies its own base.
func NewFromLen(r *ringpkg.CRTRing, gLen int) *Gadget {
	return &Gadget{Ring: r, Z: ringpkg.BaseFromLen(gLen, r.Q), GLen: gLen}
}

// Build returns the N x (N*GLen) gadget matrix in evaluation form: row i
// carries [z^0, z^1, ..., z^(GLen-1)] in columns [i*GLen, (i+1)*GLen) and
// zero elsewhere, each power lifted into the ring as a constant
// polynomial (spec.md §3).
func (g *Gadget) Build(N int) *ringpkg.Mat[ringpkg.PolyCRTEval] {
	M := N * g.GLen
	mat := ringpkg.NewMat[ringpkg.PolyCRTEval](N, M, g.Ring.NewPolyCRTEval)

	q1 := new(big.Int).SetUint64(g.Ring.Q1.Q)
	q2 := new(big.Int).SetUint64(g.Ring.Q2.Q)
	zBig := new(big.Int).SetUint64(g.Z)

	for i := 0; i < N; i++ {
		zk := big.NewInt(1)
		for k := 0; k < g.GLen; k++ {
			c := g.Ring.NewPolyCRT()
			c.P1.Coeffs[0] = new(big.Int).Mod(zk, q1).Uint64()
			c.P2.Coeffs[0] = new(big.Int).Mod(zk, q2).Uint64()
			mat.Set(i, i*g.GLen+k, g.Ring.ToEval(c))
			zk = new(big.Int).Mul(zk, zBig)
		}
	}
	return mat
}

// Inverse computes G^-1(in) for an N x K matrix `in`, returning the
// (N*GLen) x K matrix whose stacked rows are `in`'s balanced base-z digit
// decomposition (spec.md §4.F): G * G^-1(in) == in, and every digit
// polynomial has infinity-norm at most z/2.
func (g *Gadget) Inverse(in *ringpkg.Mat[ringpkg.PolyCRTEval], N, K int) *ringpkg.Mat[ringpkg.PolyCRTEval] {
	out := ringpkg.NewMat[ringpkg.PolyCRTEval](N*g.GLen, K, g.Ring.NewPolyCRTEval)
	D := g.Ring.D
	q1 := new(big.Int).SetUint64(g.Ring.Q1.Q)
	q2 := new(big.Int).SetUint64(g.Ring.Q2.Q)

	for i := 0; i < N; i++ {
		for j := 0; j < K; j++ {
			coeff := g.Ring.ToCoeff(in.At(i, j))
			composed := g.Ring.Compose(coeff) // D big.Int values mod Q

			digitPolys := make([]ringpkg.PolyCRT, g.GLen)
			for k := range digitPolys {
				digitPolys[k] = g.Ring.NewPolyCRT()
			}

			for c := 0; c < D; c++ {
				digits := g.decompose(composed[c])
				for k := 0; k < g.GLen; k++ {
					digitPolys[k].P1.Coeffs[c] = new(big.Int).Mod(digits[k], q1).Uint64()
					digitPolys[k].P2.Coeffs[c] = new(big.Int).Mod(digits[k], q2).Uint64()
				}
			}

			for k := 0; k < g.GLen; k++ {
				out.Set(i*g.GLen+k, j, g.Ring.ToEval(digitPolys[k]))
			}
		}
	}
	return out
}

// decompose writes v (taken as whichever representative of its class mod
// Q, v or v-Q, the digits can express) as GLen balanced base-z digits in
// [-z/2, z/2).
func (g *Gadget) decompose(v *big.Int) []*big.Int {
	Q := g.Ring.Q
	zBig := new(big.Int).SetUint64(g.Z)
	zHalf := new(big.Int).SetUint64((g.Z + 1) / 2)

	// the largest value GLen digits in [-z/2, z/2) can express is
	// (ceil(z/2)-1) * (z^GLen-1)/(z-1); classes above it use v-Q instead.
	maxPos := new(big.Int).Exp(zBig, big.NewInt(int64(g.GLen)), nil)
	maxPos.Sub(maxPos, big.NewInt(1))
	maxPos.Div(maxPos, new(big.Int).SetUint64(g.Z-1))
	maxPos.Mul(maxPos, new(big.Int).Sub(zHalf, big.NewInt(1)))

	r := new(big.Int).Set(v)
	if r.Cmp(maxPos) > 0 {
		r.Sub(r, Q)
	}

	digits := make([]*big.Int, g.GLen)
	for k := 0; k < g.GLen; k++ {
		d := new(big.Int).Mod(r, zBig) // Euclidean, in [0, z)
		if d.Cmp(zHalf) >= 0 {
			d.Sub(d, zBig)
		}
		digits[k] = d
		r.Sub(r, d)
		r.Div(r, zBig)
	}
	return digits
}
