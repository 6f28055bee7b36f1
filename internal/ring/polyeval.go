package ring

// PolyEval is a polynomial stored in the NTT (evaluation) domain: D
// evaluations of the ring element at the D odd powers of omega, in
// bit-reversed order (spec.md §3 PolyEval<D,q,omega>). Addition,
// subtraction, negation and multiplication are all pointwise, and are the
// cheap operations; converting to/from Poly is the only expensive step.
type PolyEval struct {
	Values []uint64
	Q      uint64
}

// NewPolyEval allocates a zero evaluation-domain element.
func NewPolyEval(D int, q uint64) PolyEval {
	return PolyEval{Values: NewAlignedCoeffs(D), Q: q}
}

// ToEval runs the forward NTT, converting a coefficient-domain polynomial
// into its evaluation-domain representation.
func (s *SubRing) ToEval(p Poly) PolyEval {
	e := NewPolyEval(s.D, s.Q)
	s.ForwardNTT(p.Coeffs, e.Values)
	return e
}

// ToCoeff runs the inverse NTT, converting e back to coefficient form.
func (s *SubRing) ToCoeff(e PolyEval) Poly {
	p := NewPoly(s.D, s.Q)
	s.InverseNTT(e.Values, p.Coeffs)
	return p
}

// Add computes a+b pointwise into the receiver.
func (e PolyEval) Add(a, b PolyEval) {
	q := e.Q
	for i := range e.Values {
		s := a.Values[i] + b.Values[i]
		if s >= q {
			s -= q
		}
		e.Values[i] = s
	}
}

// Sub computes a-b pointwise into the receiver.
func (e PolyEval) Sub(a, b PolyEval) {
	q := e.Q
	for i := range e.Values {
		e.Values[i] = (a.Values[i] + q - b.Values[i]) % q
	}
}

// Neg computes -a pointwise into the receiver.
func (e PolyEval) Neg(a PolyEval) {
	q := e.Q
	for i := range e.Values {
		if a.Values[i] == 0 {
			e.Values[i] = 0
		} else {
			e.Values[i] = q - a.Values[i]
		}
	}
}

// Mul computes the pointwise product a*b, i.e. polynomial multiplication
// in Z_q[X]/(X^D+1) once both operands are in evaluation form.
func (e PolyEval) Mul(a, b PolyEval) {
	q := e.Q
	barrett := BarrettConstant(q)
	for i := range e.Values {
		e.Values[i] = MulMod(a.Values[i], b.Values[i], q, barrett)
	}
}

// MulScalar multiplies a by the integer constant c pointwise.
func (e PolyEval) MulScalar(a PolyEval, c uint64) {
	q := e.Q
	barrett := BarrettConstant(q)
	cMod := c % q
	for i := range e.Values {
		e.Values[i] = MulMod(a.Values[i], cMod, q, barrett)
	}
}

// CopyNew returns an independent copy.
func (e PolyEval) CopyNew() PolyEval {
	n := NewPolyEval(len(e.Values), e.Q)
	copy(n.Values, e.Values)
	return n
}
