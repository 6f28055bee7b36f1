package ring

import "math/big"

// Rescale converts coefficients from Z_Q to Z_newQ by rounding: for each
// coefficient v (interpreted as signed mod Q), computes
// round(v * newQ / Q) mod newQ, the modulus-switch operation spec.md
// §4.H answer step 3 applies to compress the response ("modulus-switch
// from Q to Q_SWITCH2 ... with rounding").
func (r *CRTRing) Rescale(v []*big.Int, newQ *big.Int) []uint64 {
	out := make([]uint64, len(v))
	Q := r.Q
	half := new(big.Int).Rsh(Q, 1)
	twoQ := new(big.Int).Lsh(Q, 1)
	for i, x := range v {
		signed := new(big.Int).Set(x)
		if signed.Cmp(half) > 0 {
			signed.Sub(signed, Q)
		}
		num := new(big.Int).Mul(signed, newQ)
		num.Mul(num, big.NewInt(2))
		num.Add(num, Q)
		quot, _ := new(big.Int).DivMod(num, twoQ, new(big.Int))
		quot.Mod(quot, newQ)
		out[i] = quot.Uint64()
	}
	return out
}
