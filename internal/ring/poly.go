package ring

// Poly is an element of Z_q[X]/(X^D+1) in coefficient form: D coefficients,
// each canonical in [0,q), backed by a 64-byte aligned buffer (spec.md §3
// Poly<D,q>).
type Poly struct {
	Coeffs []uint64
	Q      uint64
}

// NewPoly allocates a zero polynomial of degree D modulo q.
func NewPoly(D int, q uint64) Poly {
	return Poly{Coeffs: NewAlignedCoeffs(D), Q: q}
}

// CopyNew returns an independent copy of p.
func (p Poly) CopyNew() Poly {
	q := NewPoly(len(p.Coeffs), p.Q)
	copy(q.Coeffs, p.Coeffs)
	return q
}

// Add computes a+b into out (all same degree/modulus, aliasing allowed).
func (p Poly) Add(a, b Poly) {
	q := p.Q
	for i := range p.Coeffs {
		s := a.Coeffs[i] + b.Coeffs[i]
		if s >= q {
			s -= q
		}
		p.Coeffs[i] = s
	}
}

// Sub computes a-b into out.
func (p Poly) Sub(a, b Poly) {
	q := p.Q
	for i := range p.Coeffs {
		p.Coeffs[i] = (a.Coeffs[i] + q - b.Coeffs[i]) % q
	}
}

// Neg computes -a into out.
func (p Poly) Neg(a Poly) {
	q := p.Q
	for i := range p.Coeffs {
		if a.Coeffs[i] == 0 {
			p.Coeffs[i] = 0
		} else {
			p.Coeffs[i] = q - a.Coeffs[i]
		}
	}
}

// MulScalar multiplies a by the integer constant c (reduced mod q) into out.
func (p Poly) MulScalar(a Poly, c uint64) {
	q := p.Q
	barrett := BarrettConstant(q)
	cMod := c % q
	for i := range p.Coeffs {
		p.Coeffs[i] = MulMod(a.Coeffs[i], cMod, q, barrett)
	}
}

// Equal reports whether p and o hold identical coefficients and modulus.
func (p Poly) Equal(o Poly) bool {
	if p.Q != o.Q || len(p.Coeffs) != len(o.Coeffs) {
		return false
	}
	for i := range p.Coeffs {
		if p.Coeffs[i] != o.Coeffs[i] {
			return false
		}
	}
	return true
}

// Zero clears all coefficients.
func (p Poly) Zero() {
	for i := range p.Coeffs {
		p.Coeffs[i] = 0
	}
}
