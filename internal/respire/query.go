package respire

import (
	"fmt"

	"github.com/jkwoods/respire/internal/gsw"
	ringpkg "github.com/jkwoods/respire/internal/ring"
)

// Query is one client request: a packed Regev ciphertext carrying the
// dimension-1 one-hot selector (to be expanded server-side into 2^nu1
// individual selectors), plus nu2 GSW ciphertexts, the j-th encrypting the
// z_fold-ary digit of the dimension-2 coordinate (spec.md §4.H "Query").
type Query struct {
	RowSelector gsw.RegevCiphertext // plaintext coefficients: 1 at Row, 0 elsewhere
	ColDigits   []*gsw.Ciphertext   // length Nu2
}

// State is the client-held context a single query/answer round trip needs
// at extraction time: which of the PackRatio records sharing a database
// bundle this query targeted.
type State struct {
	Slot int
}

// BuildQuery encodes record index idx as a Query, per spec.md §4.H
// "Query": the Regev ciphertext packs a one-hot vector of length 2^nu1
// over the coefficients of Poly<D,Q> (row selector), and nu2 GSW
// ciphertexts encode the base-z_fold digits of the column coordinate.
func BuildQuery(e *Expanded, qk *QueryKey, hint *DatabaseHint, idx int) (*Query, *State, error) {
	if idx < 0 || idx >= hint.Rows*hint.Cols*hint.PackRatio {
		return nil, nil, fmt.Errorf("respire: index %d out of range [0,%d)", idx, hint.Rows*hint.Cols*hint.PackRatio)
	}
	row, col, slot := hint.Coordinates(idx)

	oneHot := ringpkg.NewPoly(e.Params.D, e.Params.P)
	oneHot.Coeffs[row] = 1
	oneHotCRT := e.Ring.NewPolyCRT()
	e.Ring.FromUint64(oneHotCRT, oneHot.Coeffs)
	mu := e.Ring.ToEval(oneHotCRT)

	prng := ringpkg.NewRandomPRNG()
	rowCt := gsw.EncryptRegevSK(e.Ring, qk.SRegev, mu, e.Params.Sigma, prng)

	digits := digitsOf(col, e.Params.ZFold, e.Params.Nu2)
	colDigits := make([]*gsw.Ciphertext, e.Params.Nu2)
	for j := 0; j < e.Params.Nu2; j++ {
		muDigit := constCRTEval(e.Ring, digits[j])
		colDigits[j] = gsw.EncryptSK(e.GSWParams, qk.SGSW, muDigit, prng)
	}

	return &Query{RowSelector: rowCt, ColDigits: colDigits}, &State{Slot: slot}, nil
}

// digitsOf returns the n base-z digits of v (least-significant first).
func digitsOf(v int, z uint64, n int) []uint64 {
	digits := make([]uint64, n)
	for i := 0; i < n; i++ {
		digits[i] = uint64(v) % z
		v /= int(z)
	}
	return digits
}

func constCRTEval(r *ringpkg.CRTRing, v uint64) ringpkg.PolyCRTEval {
	c := r.NewPolyCRT()
	c.P1.Coeffs[0] = v % r.Q1.Q
	c.P2.Coeffs[0] = v % r.Q2.Q
	return r.ToEval(c)
}
