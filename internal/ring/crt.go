package ring

import "math/big"

// CRTRing bundles the two prime SubRings of a composite modulus
// Q = q1*q2 together with the CRT recomposition constants, per spec.md §3
// PolyCRT<D,q1,q2>: "key reuse across CRT channels" (spec.md §9) means
// every operation below runs once per channel but the two channels live
// in the same struct so callers never traverse one channel at a time.
type CRTRing struct {
	D       int
	Q1, Q2  *SubRing
	Q       *big.Int
	q1InvQ2 uint64 // q1^-1 mod q2
	q2InvQ1 uint64 // q2^-1 mod q1
}

// NewCRTRing builds the two-channel CRT ring for degree D and primes q1,q2.
func NewCRTRing(D int, q1, q2 uint64) (*CRTRing, error) {
	r1, err := NewSubRing(D, q1)
	if err != nil {
		return nil, err
	}
	r2, err := NewSubRing(D, q2)
	if err != nil {
		return nil, err
	}
	return &CRTRing{
		D:       D,
		Q1:      r1,
		Q2:      r2,
		Q:       new(big.Int).Mul(new(big.Int).SetUint64(q1), new(big.Int).SetUint64(q2)),
		q1InvQ2: ModInverse(q1%q2, q2),
		q2InvQ1: ModInverse(q2%q1, q1),
	}, nil
}

// PolyCRT is a pair of independent residues representing an element of
// Z_Q[X]/(X^D+1), Q = q1*q2 (spec.md §3).
type PolyCRT struct {
	P1, P2 Poly
}

// NewPolyCRT allocates a zero CRT polynomial.
func (r *CRTRing) NewPolyCRT() PolyCRT {
	return PolyCRT{P1: NewPoly(r.D, r.Q1.Q), P2: NewPoly(r.D, r.Q2.Q)}
}

// FromUint64 reduces each int64-range value independently into both
// channels, the construction used to lift a small plaintext/gadget scalar
// into the composite ring.
func (r *CRTRing) FromUint64(c PolyCRT, coeffs []uint64) {
	for i, v := range coeffs {
		c.P1.Coeffs[i] = v % r.Q1.Q
		c.P2.Coeffs[i] = v % r.Q2.Q
	}
}

// Compose recombines a two-channel residue back into a single big.Int
// coefficient vector in Z_Q, using the standard CRT formula (spec.md §4.D):
// a1*q2*(q2^-1 mod q1) + a2*q1*(q1^-1 mod q2) mod Q.
func (r *CRTRing) Compose(c PolyCRT) []*big.Int {
	out := make([]*big.Int, r.D)
	q1 := new(big.Int).SetUint64(r.Q1.Q)
	q2 := new(big.Int).SetUint64(r.Q2.Q)
	q2InvQ1 := new(big.Int).SetUint64(r.q2InvQ1)
	q1InvQ2 := new(big.Int).SetUint64(r.q1InvQ2)
	for i := 0; i < r.D; i++ {
		a1 := new(big.Int).SetUint64(c.P1.Coeffs[i])
		a2 := new(big.Int).SetUint64(c.P2.Coeffs[i])
		t1 := new(big.Int).Mul(a1, q2)
		t1.Mul(t1, q2InvQ1)
		t2 := new(big.Int).Mul(a2, q1)
		t2.Mul(t2, q1InvQ2)
		v := new(big.Int).Add(t1, t2)
		v.Mod(v, r.Q)
		out[i] = v
	}
	return out
}

// RoundDiv rounds each coefficient of v (interpreted as signed mod Q) when
// divided by the power-of-two divisor div, i.e. the rounding-division used
// during PIR decode (spec.md §4.D). Returns the rounded representative in
// [0, div).
func (r *CRTRing) RoundDiv(v []*big.Int, div uint64) []uint64 {
	out := make([]uint64, len(v))
	Q := r.Q
	half := new(big.Int).Rsh(Q, 1)
	divBig := new(big.Int).SetUint64(div)
	twoQ := new(big.Int).Lsh(Q, 1)
	for i, x := range v {
		signed := new(big.Int).Set(x)
		if signed.Cmp(half) > 0 {
			signed.Sub(signed, Q)
		}
		// round(signed*div/Q) via floor((2*signed*div + Q) / 2Q), using
		// Euclidean division so the quotient is well-defined for
		// negative numerators, then reduced into the canonical [0,div).
		num := new(big.Int).Mul(signed, divBig)
		num.Mul(num, big.NewInt(2))
		num.Add(num, Q)
		quot, _ := new(big.Int).DivMod(num, twoQ, new(big.Int))
		quot.Mod(quot, divBig)
		out[i] = quot.Uint64()
	}
	return out
}

// PolyCRTEval is the NTT-domain representation of PolyCRT: a pair of
// PolyEval, one per prime channel. All arithmetic is pointwise across the
// two-prime, D-lane four-tuple (spec.md §3, §4.D).
type PolyCRTEval struct {
	E1, E2 PolyEval
}

// NewPolyCRTEval allocates a zero evaluation-domain CRT element.
func (r *CRTRing) NewPolyCRTEval() PolyCRTEval {
	return PolyCRTEval{E1: NewPolyEval(r.D, r.Q1.Q), E2: NewPolyEval(r.D, r.Q2.Q)}
}

// ToEval lifts a coefficient-domain CRT element into evaluation form.
func (r *CRTRing) ToEval(c PolyCRT) PolyCRTEval {
	return PolyCRTEval{E1: r.Q1.ToEval(c.P1), E2: r.Q2.ToEval(c.P2)}
}

// ToCoeff brings an evaluation-domain CRT element back to coefficient form.
func (r *CRTRing) ToCoeff(e PolyCRTEval) PolyCRT {
	return PolyCRT{P1: r.Q1.ToCoeff(e.E1), P2: r.Q2.ToCoeff(e.E2)}
}

// Add computes a+b pointwise across both channels into the receiver.
func (e PolyCRTEval) Add(a, b PolyCRTEval) {
	e.E1.Add(a.E1, b.E1)
	e.E2.Add(a.E2, b.E2)
}

// Sub computes a-b pointwise across both channels into the receiver.
func (e PolyCRTEval) Sub(a, b PolyCRTEval) {
	e.E1.Sub(a.E1, b.E1)
	e.E2.Sub(a.E2, b.E2)
}

// Neg computes -a pointwise across both channels into the receiver.
func (e PolyCRTEval) Neg(a PolyCRTEval) {
	e.E1.Neg(a.E1)
	e.E2.Neg(a.E2)
}

// Mul computes the pointwise product a*b across both channels into the
// receiver.
func (e PolyCRTEval) Mul(a, b PolyCRTEval) {
	e.E1.Mul(a.E1, b.E1)
	e.E2.Mul(a.E2, b.E2)
}

// MulScalar multiplies a by integer constant c across both channels.
func (e PolyCRTEval) MulScalar(a PolyCRTEval, c uint64) {
	e.E1.MulScalar(a.E1, c)
	e.E2.MulScalar(a.E2, c)
}

// CopyNew returns an independent copy.
func (e PolyCRTEval) CopyNew() PolyCRTEval {
	return PolyCRTEval{E1: e.E1.CopyNew(), E2: e.E2.CopyNew()}
}
