package ring

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// the parameter set from spec.md §8 example 1/2: small enough to sweep
// exhaustively.
const (
	testD = 4
	testQ = 268369921
)

func TestNTTRoundTrip(t *testing.T) {
	s, err := NewSubRing(testD, testQ)
	require.NoError(t, err)

	in := []uint64{1, 2, 3, 4}
	fwd := make([]uint64, testD)
	s.ForwardNTT(in, fwd)

	back := make([]uint64, testD)
	s.InverseNTT(fwd, back)

	require.Equal(t, in, back)
}

func TestNTTMultiplicativity(t *testing.T) {
	s, err := NewSubRing(testD, testQ)
	require.NoError(t, err)

	a := []uint64{1, 2, 3, 4}
	b := []uint64{5, 6, 7, 8}
	want := negacyclicMul(a, b, testQ)

	aFwd, bFwd := make([]uint64, testD), make([]uint64, testD)
	s.ForwardNTT(a, aFwd)
	s.ForwardNTT(b, bFwd)

	prod := make([]uint64, testD)
	for i := range prod {
		prod[i] = MulMod(aFwd[i], bFwd[i], testQ, s.Barrett)
	}

	got := make([]uint64, testD)
	s.InverseNTT(prod, got)

	require.Equal(t, want, got)
}

// negacyclicMul computes a*b in Z_q[X]/(X^D+1) by schoolbook convolution,
// used only as an independent reference to check the NTT path against.
func negacyclicMul(a, b []uint64, q uint64) []uint64 {
	D := len(a)
	out := make([]uint64, D)
	for i := 0; i < D; i++ {
		for j := 0; j < D; j++ {
			prod := MulMod(a[i], b[j], q, BarrettConstant(q))
			k := i + j
			if k < D {
				out[k] = (out[k] + prod) % q
			} else {
				out[k-D] = (out[k-D] + q - prod%q) % q
			}
		}
	}
	return out
}

func TestCRTRoundTrip(t *testing.T) {
	r, err := NewCRTRing(testD, 268369921, 249561089)
	require.NoError(t, err)

	c := r.NewPolyCRT()
	coeffs := []uint64{12345, 67890, 1, 0}
	r.FromUint64(c, coeffs)

	composed := r.Compose(c)
	for i, v := range coeffs {
		require.Equal(t, big.NewInt(int64(v)), composed[i])
	}
}

func TestCRTEvalRoundTrip(t *testing.T) {
	r, err := NewCRTRing(testD, 268369921, 249561089)
	require.NoError(t, err)

	c := r.NewPolyCRT()
	r.FromUint64(c, []uint64{1, 2, 3, 4})

	e := r.ToEval(c)
	back := r.ToCoeff(e)

	if diff := cmp.Diff(c, back); diff != "" {
		t.Errorf("ToCoeff(ToEval(c)) != c (-want +got):\n%s", diff)
	}
}

func TestReverseBitsAndCeilLog(t *testing.T) {
	require.Equal(t, uint64(0b001), ReverseBits(0b100, 3))
	require.Equal(t, 5, CeilLog(2, big.NewInt(31)))
	require.Equal(t, 0, CeilLog(2, big.NewInt(1)))
}

func TestFindSqrtPrimitiveRootMatchesSpecExample(t *testing.T) {
	omega, err := FindSqrtPrimitiveRoot(4, 268369921)
	require.NoError(t, err)
	// omega must be a primitive 2D=8th root of unity: omega^8 = 1, omega^4 = -1 mod q.
	require.Equal(t, uint64(1), ModExp(omega, 8, 268369921))
	require.Equal(t, uint64(268369921-1), ModExp(omega, 4, 268369921))
}
