package respire

import (
	"math/big"

	"github.com/jkwoods/respire/internal/gsw"
	ringpkg "github.com/jkwoods/respire/internal/ring"
)

// Response is the modulus-switched, rounded answer the client decrypts
// coefficient-wise (spec.md §3 "Response"). B and A hold the ciphertext's
// two components as raw integers in [0, QSwitch2), already key-switched
// to qk.SSwitch. The D_SWITCH degree-truncation of spec.md §4.H answer
// step 3 (discarding all but the first D_SWITCH coefficients before
// transport) is not implemented here: the full D-coefficient response is
// carried, trading the protocol's wire-size optimization for a simpler,
// directly-decodable representation (see DESIGN.md).
type Response struct {
	B, A     []uint64
	QSwitch2 uint64
}

// mulRegevPlain scales a Regev ciphertext by a public plaintext ring
// element: (b,a) -> (b*m, a*m), which decrypts to mu*m since decryption
// is linear in the plaintext (spec.md §4.H answer step 1's "dot product
// of the expanded Regev selector vector with ... the database").
func mulRegevPlain(r *ringpkg.CRTRing, ct gsw.RegevCiphertext, m ringpkg.PolyCRTEval) gsw.RegevCiphertext {
	outB := r.NewPolyCRTEval()
	outA := r.NewPolyCRTEval()
	outB.Mul(ct.B, m)
	outA.Mul(ct.A, m)
	return gsw.RegevCiphertext{B: outB, A: outA}
}

// Answer computes the server's response to q against db, per spec.md
// §4.H "Answer":
//  1. expand the packed row selector into DBRows individual Regev
//     ciphertexts and dot-product them against each database column,
//     yielding DBCols Regev ciphertexts of candidate records;
//  2. fold the DBCols candidates down to one over Nu2 rounds, each round
//     combining halves[0] + GSW_j*(halves[1]-halves[0]);
//  3. key-switch the surviving ciphertext to qk.SSwitch and modulus-switch
//     from Q to QSwitch2, compressing the response for transport.
func Answer(e *Expanded, pp *PublicParams, db *Database, q *Query) (*Response, error) {
	expanded := ExpandCoefficients(e, pp, q.RowSelector)
	if len(expanded) < e.DBRows {
		expanded = expanded[:e.DBRows]
	}

	candidates := make([]gsw.RegevCiphertext, e.DBCols)
	for col := 0; col < e.DBCols; col++ {
		acc := gsw.RegevCiphertext{B: e.Ring.NewPolyCRTEval(), A: e.Ring.NewPolyCRTEval()}
		for row := 0; row < e.DBRows; row++ {
			term := mulRegevPlain(e.Ring, expanded[row], db.At(row, col))
			acc = gsw.AddRegev(e.Ring, acc, term)
		}
		candidates[col] = acc
	}

	for j := 0; j < e.Params.Nu2; j++ {
		half := len(candidates) / 2
		next := make([]gsw.RegevCiphertext, half)
		for i := 0; i < half; i++ {
			diff := gsw.SubRegev(e.Ring, candidates[i+half], candidates[i])
			term := gsw.MulGSWRegev(e.GSWParams, q.ColDigits[e.Params.Nu2-1-j], diff)
			next[i] = gsw.AddRegev(e.Ring, candidates[i], term)
		}
		candidates = next
	}

	final := candidates[0]
	switched := KeySwitch(e.Ring, e.GadgetCoeffGSW, pp.ModSwitchKey, final)

	bCoeff := e.Ring.Compose(e.Ring.ToCoeff(switched.B))
	aCoeff := e.Ring.Compose(e.Ring.ToCoeff(switched.A))
	qSwitch2 := new(big.Int).SetUint64(e.Params.QSwitch2)

	resp := &Response{
		B:        e.Ring.Rescale(bCoeff, qSwitch2),
		A:        e.Ring.Rescale(aCoeff, qSwitch2),
		QSwitch2: e.Params.QSwitch2,
	}
	return resp, nil
}
