package respire

import (
	"math/big"

	"github.com/jkwoods/respire/internal/gadget"
	"github.com/jkwoods/respire/internal/gsw"
	ringpkg "github.com/jkwoods/respire/internal/ring"
)

// QueryKey is the client-held secret material: the Regev secret s_regev
// and the Ring-GSW secret s_gsw derived from it by reuse of the same ring
// element as the GSW instance's first secret component, s_gsw = [s_regev,
// -1] (spec.md §4.H setup: "Generate Regev secret s_regev and derived
// Ring-GSW secret s_gsw"). Sharing the value lets a single automorphism
// key switch serve both ciphertext kinds.
type QueryKey struct {
	SRegev  ringpkg.PolyCRTEval
	SGSW    *gsw.SecretKey
	SSwitch ringpkg.PolyCRTEval // secret the final response is key-switched to for compression
}

// Destroy overwrites the secret-key coefficient buffers in place before
// the garbage collector reclaims them, carried over from the reference
// source's Zeroize/Drop helpers on its secret-key structs (not a protocol
// requirement, an ambient hygiene practice of the original).
func (qk *QueryKey) Destroy() {
	zeroPolyCRTEval(qk.SRegev)
	zeroPolyCRTEval(qk.SSwitch)
	for i := 0; i < qk.SGSW.S.N; i++ {
		for j := 0; j < qk.SGSW.S.M; j++ {
			zeroPolyCRTEval(qk.SGSW.S.At(i, j))
		}
	}
}

func zeroPolyCRTEval(e ringpkg.PolyCRTEval) {
	for i := range e.E1.Values {
		e.E1.Values[i] = 0
	}
	for i := range e.E2.Values {
		e.E2.Values[i] = 0
	}
}

// KeySwitchKey re-encrypts an old secret's gadget powers under a new
// secret: Ksk[i] is a Regev encryption of z^i * sOld under sNew (spec.md
// §4.H "auto_hom ... key-switching through auto_key[tau]" generalized to
// any secret-to-secret switch, including the final modulus-switching
// key). Grounded on the same structural idea as the teacher's RGSW
// evaluation keys: a gadget-indexed vector of ciphertexts of the old
// secret's scaled copies under the new secret.
type KeySwitchKey struct {
	Ksk []gsw.RegevCiphertext
}

// GenKeySwitchKey builds Ksk for gadget g over ring r.
func GenKeySwitchKey(r *ringpkg.CRTRing, g *gadget.Gadget, sOld, sNew ringpkg.PolyCRTEval, sigma float64, prng *ringpkg.PRNG) *KeySwitchKey {
	ksk := make([]gsw.RegevCiphertext, g.GLen)
	zPow := big.NewInt(1)
	zBig := new(big.Int).SetUint64(g.Z)
	for i := 0; i < g.GLen; i++ {
		scaled := scaleByBigConst(r, sOld, zPow)
		ksk[i] = gsw.EncryptRegevSK(r, sNew, scaled, sigma, prng)
		zPow = new(big.Int).Mul(zPow, zBig)
	}
	return &KeySwitchKey{Ksk: ksk}
}

// KeySwitch rewrites a Regev ciphertext encrypted under the secret
// implicit in ksk's construction (sOld) into one encrypted under sNew,
// via gadget decomposition of the 'a' component against ksk: decompose
// ct.A into its GLen base-z digits, then form
// (ct.B, 0) + sum_i digit_i * ksk[i], which decrypts under sNew to
// ct.B + ct.A*sOld, the same value ct decrypted to under sOld.
func KeySwitch(r *ringpkg.CRTRing, g *gadget.Gadget, ksk *KeySwitchKey, ct gsw.RegevCiphertext) gsw.RegevCiphertext {
	mat := ringpkg.NewMat[ringpkg.PolyCRTEval](1, 1, r.NewPolyCRTEval)
	mat.Set(0, 0, ct.A)
	digits := g.Inverse(mat, 1, 1)

	accB := r.NewPolyCRTEval()
	accA := r.NewPolyCRTEval()
	tmp := r.NewPolyCRTEval()
	for i := 0; i < g.GLen; i++ {
		d := digits.At(i, 0)
		tmp.Mul(d, ksk.Ksk[i].B)
		accB.Add(accB, tmp)
		tmp.Mul(d, ksk.Ksk[i].A)
		accA.Add(accA, tmp)
	}
	outB := r.NewPolyCRTEval()
	outB.Add(ct.B, accB)
	return gsw.RegevCiphertext{B: outB, A: accA}
}

func scaleByBigConst(r *ringpkg.CRTRing, a ringpkg.PolyCRTEval, c *big.Int) ringpkg.PolyCRTEval {
	q1 := new(big.Int).SetUint64(r.Q1.Q)
	q2 := new(big.Int).SetUint64(r.Q2.Q)
	c1 := new(big.Int).Mod(c, q1).Uint64()
	c2 := new(big.Int).Mod(c, q2).Uint64()
	out := r.NewPolyCRTEval()
	out.E1.MulScalar(a.E1, c1)
	out.E2.MulScalar(a.E2, c2)
	return out
}

// PublicParams bundles every piece of public key material the server
// needs to expand a query and fold an answer (spec.md §4.H setup):
// automorphism keys for the substitutions coefficient expansion uses, and
// a final modulus-switching key.
type PublicParams struct {
	AutoKeys     map[uint64]*KeySwitchKey
	AutoIndex    map[uint64][]int
	ModSwitchKey *KeySwitchKey // switches a final answer ciphertext from s_regev to qk.SSwitch
}

// Setup generates a fresh QueryKey and the PublicParams derived from it,
// per spec.md §4.H "Setup". Automorphism keys are built for every odd
// tau = D/2^k + 1, k=0..Nu1-1, the substitutions coefficient expansion
// applies round by round.
func Setup(e *Expanded, prng *ringpkg.PRNG) (*QueryKey, *PublicParams, error) {
	sampler := ringpkg.NewGaussianSampler(e.Params.Sigma)
	sRegev := gaussianSample(e.Ring, sampler)

	sGSW := &gsw.SecretKey{N: 2, S: ringpkg.NewMat[ringpkg.PolyCRTEval](1, 2, e.Ring.NewPolyCRTEval)}
	sGSW.S.Set(0, 0, sRegev)
	negOne := e.Ring.NewPolyCRTEval()
	negOneConst(e.Ring, negOne)
	sGSW.S.Set(0, 1, negOne)

	sSwitch := gaussianSample(e.Ring, sampler)
	qk := &QueryKey{SRegev: sRegev, SGSW: sGSW, SSwitch: sSwitch}

	pp := &PublicParams{
		AutoKeys:  make(map[uint64]*KeySwitchKey),
		AutoIndex: make(map[uint64][]int),
	}
	for k := 0; k < e.Params.Nu1; k++ {
		tau := uint64(e.Params.D)/(uint64(1)<<uint(k)) + 1
		index, err := e.Ring.Q1.AutomorphismNTTIndex(tau)
		if err != nil {
			return nil, nil, err
		}
		permuted := e.Ring.NewPolyCRTEval()
		ringpkg.ApplyAutomorphismCRT(sRegev, index, permuted)
		pp.AutoKeys[tau] = GenKeySwitchKey(e.Ring, e.GadgetCoeffRegev, permuted, sRegev, e.Params.Sigma, prng)
		pp.AutoIndex[tau] = index
	}

	pp.ModSwitchKey = GenKeySwitchKey(e.Ring, e.GadgetCoeffGSW, sRegev, sSwitch, e.Params.Sigma, prng)

	return qk, pp, nil
}

func gaussianSample(r *ringpkg.CRTRing, sampler *ringpkg.GaussianSampler) ringpkg.PolyCRTEval {
	c := r.NewPolyCRT()
	for i := 0; i < r.D; i++ {
		m, neg := sampler.SampleSigned()
		if neg && m != 0 {
			c.P1.Coeffs[i] = r.Q1.Q - (m % r.Q1.Q)
			c.P2.Coeffs[i] = r.Q2.Q - (m % r.Q2.Q)
		} else {
			c.P1.Coeffs[i] = m % r.Q1.Q
			c.P2.Coeffs[i] = m % r.Q2.Q
		}
	}
	return r.ToEval(c)
}

func negOneConst(r *ringpkg.CRTRing, out ringpkg.PolyCRTEval) {
	c := r.NewPolyCRT()
	c.P1.Coeffs[0] = r.Q1.Q - 1
	c.P2.Coeffs[0] = r.Q2.Q - 1
	e := r.ToEval(c)
	copy(out.E1.Values, e.E1.Values)
	copy(out.E2.Values, e.E2.Values)
}
