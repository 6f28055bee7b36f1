package respire

import (
	"math/big"
)

// Extract decrypts a Response under qk.SSwitch, reverses the record
// packing (undoing the bit-reverse permutation and PackRatio stride), and
// rounds each coefficient from Z_QSwitch2 to Z_p to recover the B-byte
// record (spec.md §4.H "Extraction").
func (e *Expanded) Extract(qk *QueryKey, resp *Response, st *State) ([]byte, error) {
	sSwitch := e.Ring.Compose(e.Ring.ToCoeff(qk.SSwitch))
	sMod := make([]uint64, e.Params.D)
	qSwitch2 := resp.QSwitch2
	for i, v := range sSwitch {
		sMod[i] = new(big.Int).Mod(v, new(big.Int).SetUint64(qSwitch2)).Uint64()
	}

	as := negacyclicConvolve(resp.A, sMod, qSwitch2)
	plain := make([]uint64, e.Params.D)
	for i := range plain {
		plain[i] = (resp.B[i] + as[i]) % qSwitch2
	}

	rounded := roundCoeffs(plain, qSwitch2, e.Params.P)
	recordCoeffs := e.UnpackRecord(rounded, st.Slot)
	return e.DecodeRecord(recordCoeffs), nil
}

// negacyclicConvolve computes a*b in Z_q[X]/(X^D+1) via schoolbook
// multiplication. The response ring's degree is small enough after
// modulus switching that the O(D^2) cost is immaterial next to the
// lattice operations already paid for during Answer.
func negacyclicConvolve(a, b []uint64, q uint64) []uint64 {
	D := len(a)
	out := make([]uint64, D)
	for i := 0; i < D; i++ {
		if a[i] == 0 {
			continue
		}
		for j := 0; j < D; j++ {
			k := i + j
			prod := mulModSmall(a[i], b[j], q)
			if k < D {
				out[k] = (out[k] + prod) % q
			} else {
				out[k-D] = (out[k-D] + q - prod%q) % q
			}
		}
	}
	return out
}

func mulModSmall(a, b, q uint64) uint64 {
	prod := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	prod.Mod(prod, new(big.Int).SetUint64(q))
	return prod.Uint64()
}

// roundCoeffs rounds each coefficient from Z_q to Z_p: round(v*p/q) mod p,
// using ringpkg.CRTRing-independent big.Int arithmetic since the response
// ring's modulus is no longer the CRT composite (spec.md §4.D "rounding
// division by a power of two, used during PIR decode").
func roundCoeffs(v []uint64, q, p uint64) []uint64 {
	out := make([]uint64, len(v))
	qBig := new(big.Int).SetUint64(q)
	pBig := new(big.Int).SetUint64(p)
	half := new(big.Int).Rsh(qBig, 1)
	twoQ := new(big.Int).Lsh(qBig, 1)
	for i, x := range v {
		signed := new(big.Int).SetUint64(x)
		if signed.Cmp(half) > 0 {
			signed.Sub(signed, qBig)
		}
		num := new(big.Int).Mul(signed, pBig)
		num.Mul(num, big.NewInt(2))
		num.Add(num, qBig)
		quot, _ := new(big.Int).DivMod(num, twoQ, new(big.Int))
		quot.Mod(quot, pBig)
		out[i] = quot.Uint64()
	}
	return out
}
