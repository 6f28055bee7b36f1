package gsw

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkwoods/respire/internal/gadget"
	ringpkg "github.com/jkwoods/respire/internal/ring"
)

// the parameter set from spec.md §8 example 3: N=2, M=112, p=31,
// Q=268369921*249561089, D=4.
const (
	testN     = 2
	testP     = 31
	testD     = 4
	testQ1    = 268369921
	testQ2    = 249561089
	testSigma = 3.2
)

func testParams(t *testing.T) *Params {
	t.Helper()
	r, err := ringpkg.NewCRTRing(testD, testQ1, testQ2)
	require.NoError(t, err)
	g := gadget.New(r, 2)
	require.Equal(t, 112, testN*g.GLen)
	return &Params{Ring: r, Gadget: g, N: testN, Sigma: testSigma}
}

// constPoly encodes mu*floor(Q/p) as a constant polynomial, the scaling
// Decrypt and DecryptRegev undo by rounding p/Q over the composed value.
func constPoly(r *ringpkg.CRTRing, mu uint64) ringpkg.PolyCRTEval {
	v := new(big.Int).Div(r.Q, big.NewInt(testP))
	v.Mul(v, new(big.Int).SetUint64(mu))
	c := r.NewPolyCRT()
	c.P1.Coeffs[0] = new(big.Int).Mod(v, big.NewInt(testQ1)).Uint64()
	c.P2.Coeffs[0] = new(big.Int).Mod(v, big.NewInt(testQ2)).Uint64()
	return r.ToEval(c)
}

func TestEncryptDecryptPK(t *testing.T) {
	p := testParams(t)
	prng := ringpkg.NewRandomPRNG()
	sk, pk := KeyGen(p, prng)

	for mu := uint64(0); mu < 10; mu++ {
		ct := EncryptPK(p, pk, constPoly(p.Ring, mu), prng)
		got := Decrypt(p, sk, ct, testP)
		require.Equal(t, mu, got[0], "mu=%d", mu)
		for i := 1; i < len(got); i++ {
			require.Equal(t, uint64(0), got[i])
		}
	}
}

func TestEncryptDecryptSK(t *testing.T) {
	p := testParams(t)
	prng := ringpkg.NewRandomPRNG()
	sk, _ := KeyGen(p, prng)

	for mu := uint64(0); mu < 10; mu++ {
		ct := EncryptSK(p, sk, constPoly(p.Ring, mu), prng)
		got := Decrypt(p, sk, ct, testP)
		require.Equal(t, mu, got[0], "mu=%d", mu)
	}
}

func TestAddHom(t *testing.T) {
	p := testParams(t)
	prng := ringpkg.NewRandomPRNG()
	sk, _ := KeyGen(p, prng)

	for mu1 := uint64(0); mu1 < 10; mu1++ {
		for mu2 := uint64(0); mu2 < 10; mu2++ {
			c1 := EncryptSK(p, sk, constPoly(p.Ring, mu1), prng)
			c2 := EncryptSK(p, sk, constPoly(p.Ring, mu2), prng)
			sum := AddHom(p, c1, c2)
			got := Decrypt(p, sk, sum, testP)
			require.Equal(t, (mu1+mu2)%testP, got[0], "mu1=%d mu2=%d", mu1, mu2)
		}
	}
}

func TestMulHom(t *testing.T) {
	p := testParams(t)
	prng := ringpkg.NewRandomPRNG()
	sk, _ := KeyGen(p, prng)

	for mu1 := uint64(0); mu1 < 10; mu1++ {
		for mu2 := uint64(0); mu2 < 10; mu2++ {
			c1 := EncryptSK(p, sk, constPoly(p.Ring, mu1), prng)
			c2 := EncryptSK(p, sk, constPoly(p.Ring, mu2), prng)
			prod := MulHom(p, c1, c2)
			got := Decrypt(p, sk, prod, testP)
			require.Equal(t, (mu1*mu2)%testP, got[0], "mu1=%d mu2=%d", mu1, mu2)
		}
	}
}

func TestRegevEncryptDecrypt(t *testing.T) {
	p := testParams(t)
	prng := ringpkg.NewRandomPRNG()
	sampler := ringpkg.NewGaussianSampler(testSigma)
	s := gaussianCRTEval(p.Ring, sampler)

	for mu := uint64(0); mu < 10; mu++ {
		ct := EncryptRegevSK(p.Ring, s, constPoly(p.Ring, mu), testSigma, prng)
		got := DecryptRegev(p.Ring, s, ct, testP)
		require.Equal(t, mu, got[0], "mu=%d", mu)
	}
}

func TestMulGSWRegev(t *testing.T) {
	p := testParams(t)
	prng := ringpkg.NewRandomPRNG()
	sampler := ringpkg.NewGaussianSampler(testSigma)
	s := gaussianCRTEval(p.Ring, sampler)

	// build an N=2 GSW secret matching s so MulGSWRegev's decryption lines
	// up: S = [s, -1].
	sk := &SecretKey{N: 2, S: ringpkg.NewMat[ringpkg.PolyCRTEval](1, 2, p.Ring.NewPolyCRTEval)}
	sk.S.Set(0, 0, s)
	sk.S.Set(0, 1, negOneCRTEval(p.Ring))

	for mu1 := uint64(0); mu1 < 5; mu1++ {
		for mu2 := uint64(0); mu2 < 5; mu2++ {
			// the GSW factor carries mu1 unscaled, as BuildQuery's fold
			// digits do; only the Regev operand carries floor(Q/p).
			raw := p.Ring.NewPolyCRT()
			raw.P1.Coeffs[0], raw.P2.Coeffs[0] = mu1, mu1
			gswCt := EncryptSK(p, sk, p.Ring.ToEval(raw), prng)
			regevCt := EncryptRegevSK(p.Ring, s, constPoly(p.Ring, mu2), testSigma, prng)
			prod := MulGSWRegev(p, gswCt, regevCt)
			got := DecryptRegev(p.Ring, s, prod, testP)
			require.Equal(t, (mu1*mu2)%testP, got[0], "mu1=%d mu2=%d", mu1, mu2)
		}
	}
}

func TestAddSubRegev(t *testing.T) {
	p := testParams(t)
	prng := ringpkg.NewRandomPRNG()
	sampler := ringpkg.NewGaussianSampler(testSigma)
	s := gaussianCRTEval(p.Ring, sampler)

	a := EncryptRegevSK(p.Ring, s, constPoly(p.Ring, 7), testSigma, prng)
	b := EncryptRegevSK(p.Ring, s, constPoly(p.Ring, 3), testSigma, prng)

	sum := AddRegev(p.Ring, a, b)
	gotSum := DecryptRegev(p.Ring, s, sum, testP)
	require.Equal(t, uint64(10), gotSum[0])

	diff := SubRegev(p.Ring, a, b)
	gotDiff := DecryptRegev(p.Ring, s, diff, testP)
	require.Equal(t, uint64(4), gotDiff[0])
}
