package respire

import (
	"github.com/jkwoods/respire/internal/gsw"
	ringpkg "github.com/jkwoods/respire/internal/ring"
)

// AutoHom substitutes X -> X^tau inside the plaintext packed in ct,
// producing a new Regev ciphertext under the original key by key-switching
// through autoKey (spec.md §4.H "Automorphism auto_hom(C, tau)").
func AutoHom(e *Expanded, autoKey *KeySwitchKey, index []int, ct gsw.RegevCiphertext) gsw.RegevCiphertext {
	bPerm := e.Ring.NewPolyCRTEval()
	aPerm := e.Ring.NewPolyCRTEval()
	ringpkg.ApplyAutomorphismCRT(ct.B, index, bPerm)
	ringpkg.ApplyAutomorphismCRT(ct.A, index, aPerm)
	permuted := gsw.RegevCiphertext{B: bPerm, A: aPerm}
	return KeySwitch(e.Ring, e.GadgetCoeffRegev, autoKey, permuted)
}

// ExpandCoefficients expands one packed Regev ciphertext encoding a
// one-hot selector vector into 2^Nu1 individual Regev ciphertexts, each
// carrying one coordinate as its constant term, by repeated automorphism
// substitution with tau_k = D/2^k + 1 (spec.md §4.H query: "repeated
// application of automorphism X -> X^(D/2^k+1) with auto_hom doubles
// selector count per round"). After round k, ciphertext i of 2^(k+1) holds
// coordinate i scaled by 2^(k+1) (the standard "powers of two" blow-up of
// this technique); the final vector is rescaled by the caller via the
// ciphertexts' own decode-time division.
func ExpandCoefficients(e *Expanded, pp *PublicParams, ct gsw.RegevCiphertext) []gsw.RegevCiphertext {
	cts := []gsw.RegevCiphertext{ct}
	for k := 0; k < e.Params.Nu1; k++ {
		tau := uint64(e.Params.D)/(uint64(1)<<uint(k)) + 1
		autoKey := pp.AutoKeys[tau]
		index := pp.AutoIndex[tau]
		next := make([]gsw.RegevCiphertext, 0, 2*len(cts))
		shift := -(1 << uint(k))
		for _, c := range cts {
			autoC := AutoHom(e, autoKey, index, c)
			c0 := gsw.AddRegev(e.Ring, c, autoC)
			diff := gsw.SubRegev(e.Ring, c, autoC)
			c1 := gsw.RegevCiphertext{
				B: e.Ring.MulMonomial(diff.B, shift),
				A: e.Ring.MulMonomial(diff.A, shift),
			}
			next = append(next, c0, c1)
		}
		cts = next
	}
	return cts
}
