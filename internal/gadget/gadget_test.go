package gadget

import (
	"testing"

	"github.com/stretchr/testify/require"

	ringpkg "github.com/jkwoods/respire/internal/ring"
)

func testRing(t *testing.T) *ringpkg.CRTRing {
	t.Helper()
	r, err := ringpkg.NewCRTRing(4, 268369921, 249561089)
	require.NoError(t, err)
	return r
}

func constPoly(r *ringpkg.CRTRing, v uint64) ringpkg.PolyCRTEval {
	c := r.NewPolyCRT()
	c.P1.Coeffs[0] = v % r.Q1.Q
	c.P2.Coeffs[0] = v % r.Q2.Q
	return r.ToEval(c)
}

// TestGadgetIdentity checks G * G^-1(M) == M for a single-cell 1x1 matrix M
// (spec.md §8 "Gadget identity").
func TestGadgetIdentity(t *testing.T) {
	r := testRing(t)
	g := New(r, 7)

	in := ringpkg.NewMat[ringpkg.PolyCRTEval](1, 1, r.NewPolyCRTEval)
	in.Set(0, 0, constPoly(r, 123456))

	decomposed := g.Inverse(in, 1, 1)
	gMat := g.Build(1)

	out := ringpkg.NewMat[ringpkg.PolyCRTEval](1, 1, r.NewPolyCRTEval)
	out.Mul(gMat, decomposed)

	gotCoeff := r.ToCoeff(out.At(0, 0))
	wantCoeff := r.ToCoeff(in.At(0, 0))
	require.Equal(t, wantCoeff.P1.Coeffs, gotCoeff.P1.Coeffs)
	require.Equal(t, wantCoeff.P2.Coeffs, gotCoeff.P2.Coeffs)
}

// TestGadgetInverseNormBound checks every decomposed digit has infinity
// norm at most z (spec.md §8 "||G^-1(M)||inf <= z").
func TestGadgetInverseNormBound(t *testing.T) {
	r := testRing(t)
	g := New(r, 7)

	in := ringpkg.NewMat[ringpkg.PolyCRTEval](1, 1, r.NewPolyCRTEval)
	in.Set(0, 0, constPoly(r, 987654321))

	decomposed := g.Inverse(in, 1, 1)
	for i := 0; i < decomposed.N; i++ {
		coeff := r.ToCoeff(decomposed.At(i, 0))
		for _, v := range coeff.P1.Coeffs {
			norm := v
			if v > r.Q1.Q/2 {
				norm = r.Q1.Q - v
			}
			require.LessOrEqual(t, norm, g.Z)
		}
	}
}

func TestNewFromLenDerivesConsistentBase(t *testing.T) {
	r := testRing(t)
	g := NewFromLen(r, 28)
	require.Equal(t, 28, g.GLen)
	require.Greater(t, g.Z, uint64(1))
}
