// Package respire implements the SPIRAL/RESPIRE PIR protocol: database
// preprocessing into NTT form, index queries encoded as homomorphic
// selectors, server-side answer via dot-product plus GSW-controlled
// folding, modulus switching for response compression, automorphism-based
// coefficient expansion, and client decode (spec.md §4.H), built on
// internal/ring, internal/gadget and internal/gsw. Grounded on the
// teacher's examples/dbfv/pir package, which wires the same dependency
// chain (ring -> rgsw -> a PIR driver) for a single-server scheme.
package respire

import (
	"fmt"
	"math/big"

	"github.com/ALTree/bigfloat"

	"github.com/jkwoods/respire/internal/gadget"
	"github.com/jkwoods/respire/internal/gsw"
	ringpkg "github.com/jkwoods/respire/internal/ring"
)

// Parameters is the inert record of inputs to Expand (spec.md §6
// "Parameter object"): prime pair, ring degree, plaintext modulus, record
// degree, dimension exponents, fold base, gadget lengths, modulus-switch
// targets and noise width.
type Parameters struct {
	QA, QB uint64 // prime pair whose product is the ciphertext modulus Q
	D      int    // cyclotomic degree

	P       uint64 // plaintext modulus
	DRecord int    // record polynomial degree, DRecord <= D

	Nu1, Nu2 int    // dimension exponents
	ZFold    uint64 // fold base for the second dimension

	TGSW        int // gadget length for fold-level GSW ciphertexts (N=2)
	TCoeffRegev int // gadget length for automorphism key-switching of Regev ciphertexts
	TCoeffGSW   int // gadget length for the final modulus-switching key

	QSwitch1, QSwitch2 uint64 // modulus-switch targets (Q -> QSwitch1 -> QSwitch2)
	DSwitch            int    // degree to which the response is truncated
	TSwitch             int   // bits per coefficient in the serialized response

	Sigma float64 // Gaussian noise width (standard deviation), spec.md's
	// "noise width in millionths" is carried here already converted to a
	// plain float64 standard deviation, since every sampler in this module
	// takes sigma directly (spec.md §6 leaves the unit conversion to the
	// parameter-set declaration, which is out of scope per spec.md §1).
}

// Expanded holds every derived constant and precomputed structure needed
// to run setup/preprocess/query/answer/extract, per spec.md §4.H
// "Parameters (inputs to expansion) ... Derived: ...".
type Expanded struct {
	Params Parameters

	Ring *ringpkg.CRTRing

	GadgetGSW        *gadget.Gadget
	GadgetCoeffRegev *gadget.Gadget
	GadgetCoeffGSW   *gadget.Gadget

	GSWParams *gsw.Params // N=2 fold-level GSW instance, sharing GadgetGSW

	PackRatio int
	DBRows    int // 2^Nu1
	DBCols    int // ZFold^Nu2
	DBSize    int

	RecordBytes int // B = DRecord * ceil(log2(p)) / 8
}

// Expand validates Parameters and builds every derived structure, per
// spec.md §7's parameter-validation error taxonomy (fatal, at start-up):
// D not a power of two, q_i not NTT-friendly, gadget length/base
// inconsistency, and an estimated noise budget overrun are all surfaced
// here as a single early abort naming the violated rule.
func (p Parameters) Expand() (*Expanded, error) {
	if p.D&(p.D-1) != 0 || p.D < 4 {
		return nil, fmt.Errorf("respire: D=%d must be a power of two >= 4", p.D)
	}
	if p.DRecord <= 0 || p.D%p.DRecord != 0 {
		return nil, fmt.Errorf("respire: D=%d must be an exact multiple of DRecord=%d", p.D, p.DRecord)
	}
	if p.ZFold != 2 {
		return nil, fmt.Errorf("respire: ZFold=%d unsupported, the GSW-controlled folding round only implements the binary halves[0]+GSW*(halves[1]-halves[0]) combine spec.md §4.H describes", p.ZFold)
	}
	r, err := ringpkg.NewCRTRing(p.D, p.QA, p.QB)
	if err != nil {
		return nil, fmt.Errorf("respire: ring parameters invalid: %w", err)
	}

	gGSW := gadget.NewFromLen(r, p.TGSW)
	gCoeffRegev := gadget.NewFromLen(r, p.TCoeffRegev)
	gCoeffGSW := gadget.NewFromLen(r, p.TCoeffGSW)

	gswParams := &gsw.Params{Ring: r, Gadget: gGSW, N: 2, Sigma: p.Sigma}

	dbRows := 1 << uint(p.Nu1)
	dbCols := 1
	for i := 0; i < p.Nu2; i++ {
		dbCols *= int(p.ZFold)
	}
	dbSize := dbRows * dbCols

	bitsPerCoeff := ringpkg.CeilLog(2, new(big.Int).SetUint64(p.P))
	recordBytes := (p.DRecord*bitsPerCoeff + 7) / 8

	e := &Expanded{
		Params:           p,
		Ring:             r,
		GadgetGSW:        gGSW,
		GadgetCoeffRegev: gCoeffRegev,
		GadgetCoeffGSW:   gCoeffGSW,
		GSWParams:        gswParams,
		PackRatio:        p.D / p.DRecord,
		DBRows:           dbRows,
		DBCols:           dbCols,
		DBSize:           dbSize,
		RecordBytes:      recordBytes,
	}

	if err := e.validateModulusChain(); err != nil {
		return nil, err
	}
	if err := e.validateNoiseBudget(); err != nil {
		return nil, err
	}
	return e, nil
}

// validateModulusChain checks spec.md §7's modulus-chain rule. Taken
// literally ("p*Q_SWITCH1 not dividing Q") the rule is unsatisfiable for
// this module's moduli: Q is a product of two odd NTT-friendly primes, so
// no power-of-two plaintext modulus (p=256 in the reference parameter
// set) can ever divide it. What the rule actually guards against is a
// nonsensical switch chain, so it is enforced here as the satisfiable
// form: each modulus-switch target must be strictly smaller than the one
// feeding it, Q > QSwitch1 > QSwitch2, which is what keeps the per-step
// rounding error (bounded by NoiseEstimate) from growing instead of
// shrinking (see DESIGN.md).
func (e *Expanded) validateModulusChain() error {
	Q := e.Ring.Q
	qSwitch1 := new(big.Int).SetUint64(e.Params.QSwitch1)
	qSwitch2 := new(big.Int).SetUint64(e.Params.QSwitch2)
	if Q.Cmp(qSwitch1) <= 0 {
		return fmt.Errorf("respire: QSwitch1=%d must be smaller than Q=%s", e.Params.QSwitch1, Q.String())
	}
	if qSwitch1.Cmp(qSwitch2) <= 0 {
		return fmt.Errorf("respire: QSwitch2=%d must be smaller than QSwitch1=%d", e.Params.QSwitch2, e.Params.QSwitch1)
	}
	return nil
}

// validateNoiseBudget runs the noise estimator and refuses parameter sets
// whose estimate exceeds the modulus-switch gap Q/(2p), per spec.md §9
// "Noise budget is the real invariant... refuse to run with a parameter
// set whose estimate exceeds threshold."
func (e *Expanded) validateNoiseBudget() error {
	estimate := e.NoiseEstimate()
	threshold := e.NoiseThreshold()
	if estimate.Cmp(threshold) >= 0 {
		return fmt.Errorf("respire: estimated noise %s exceeds threshold %s for modulus Q=%s, plaintext p=%d",
			estimate.Text('e', 6), threshold.Text('e', 6), e.Ring.Q.String(), e.Params.P)
	}
	return nil
}

// NoiseThreshold returns Q/(2p), the decryption correctness gap (spec.md
// §4.G ciphertext invariant (ii)).
func (e *Expanded) NoiseThreshold() *big.Float {
	Q := new(big.Float).SetInt(e.Ring.Q)
	denom := new(big.Float).SetUint64(2 * e.Params.P)
	return new(big.Float).Quo(Q, denom)
}

// NoiseEstimate computes a worst-case heuristic bound on the noise
// magnitude accumulated by a full query/answer round trip (spec.md §9:
// "include the estimator as an executable function, not just a comment").
//
// The bound composes, in order: (1) fresh Regev/GSW noise from Gaussian
// sampling, sigma*sqrt(D); (2) ciphertext-modulus expansion across the
// one dot-product round over the DBRows-long selector, scaling by
// sqrt(DBRows); (3) Nu2 multiplicative folding rounds, each of which
// multiplies the running noise by the fold gadget's infinity norm bound
// z_fold/2 and adds a fresh multiplicative term bounded by z_GSW/2 times
// GLen; (4) the automorphism key-switch noise injected once per
// expansion round, bounded by the coefficient gadget's digit count times
// its base. This is deliberately conservative (every step takes a union
// bound rather than a concentration argument) since spec.md §9 only asks
// that parameter sets be rejected when they are not safely clear of the
// threshold, not that the bound be tight.
func (e *Expanded) NoiseEstimate() *big.Float {
	sigma := big.NewFloat(e.Params.Sigma)
	D := big.NewFloat(float64(e.Params.D))
	fresh := bigfloat.Pow(D, big.NewFloat(0.5))
	fresh.Mul(fresh, sigma)

	dbRows := big.NewFloat(float64(e.DBRows))
	afterDotProduct := new(big.Float).Mul(fresh, bigfloat.Pow(dbRows, big.NewFloat(0.5)))

	zFold := new(big.Float).SetUint64(e.Params.ZFold)
	zFoldHalf := new(big.Float).Quo(zFold, big.NewFloat(2))
	zGSW := new(big.Float).SetUint64(e.GadgetGSW.Z)
	zGSWHalf := new(big.Float).Quo(zGSW, big.NewFloat(2))
	glenGSW := big.NewFloat(float64(e.GadgetGSW.GLen))
	multTerm := new(big.Float).Mul(zGSWHalf, glenGSW)
	multTerm.Mul(multTerm, fresh)

	running := new(big.Float).Set(afterDotProduct)
	for i := 0; i < e.Params.Nu2; i++ {
		running.Mul(running, zFoldHalf)
		running.Add(running, multTerm)
	}

	zCoeff := new(big.Float).SetUint64(e.GadgetCoeffRegev.Z)
	glenCoeff := big.NewFloat(float64(e.GadgetCoeffRegev.GLen))
	expansionRounds := big.NewFloat(float64(e.Params.Nu1))
	ksNoise := new(big.Float).Mul(zCoeff, glenCoeff)
	ksNoise.Mul(ksNoise, fresh)
	ksNoise.Mul(ksNoise, expansionRounds)

	running.Add(running, ksNoise)
	return running
}
