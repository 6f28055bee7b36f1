// Package ring implements the CRT polynomial arithmetic engine: modular
// reduction, the negacyclic NTT, coefficient- and evaluation-domain
// polynomials, and their two-prime CRT composite.
package ring

import (
	"math/big"
	"math/bits"
)

// BarrettConstant precomputes floor(2^64/q), the Barrett reduction
// constant for modulus q. Grounded on the teacher's ring.BRedParams, which
// computes the analogous 128-bit constant with math/big once per modulus;
// here q < 2^30 so a single 64-bit constant suffices.
func BarrettConstant(q uint64) uint64 {
	num := new(big.Int).Lsh(big.NewInt(1), 64)
	return new(big.Int).Quo(num, new(big.Int).SetUint64(q)).Uint64()
}

// BarrettReduce folds x < q^2 (at most ~60 bits for our q < 2^30) into
// [0, q), mirroring the teacher's ring.BRed.
func BarrettReduce(x, q, barrett uint64) uint64 {
	quot, _ := bits.Mul64(x, barrett)
	r := x - quot*q
	for r >= q {
		r -= q
	}
	return r
}

// MulMod computes x*y mod q for q < 2^30 via Barrett reduction. This is the
// generic modular multiply used outside the NTT butterflies, where the
// multiplier changes on every call and precomputing a Shoup ratio would
// not pay for itself.
func MulMod(x, y, q, barrett uint64) uint64 {
	// x, y < q < 2^30, so x*y < 2^60 and fits entirely in the low word.
	_, lo := bits.Mul64(x, y)
	return BarrettReduce(lo, q, barrett)
}

// Ratio32 precomputes Shoup's fast-multiplication constant for a fixed
// multiplier b modulo q: floor(b * 2^32 / q). Requires q < 2^30, so b*2^32
// never exceeds 2^62 and the computation is exact in native uint64
// arithmetic (no need for the teacher's 128-bit BRedParams machinery).
func Ratio32(b, q uint64) uint64 {
	return (b << 32) / q
}

// ShoupMulMod computes (a*b) mod q in [0, 2q) using Shoup's precomputed
// ratio32 for the fixed multiplier b, per spec: a*b - q*floor(a*r/2^32),
// valid for q < 2^30 and a < 4q. This is the sole modmul used inside the
// NTT butterflies.
func ShoupMulMod(a, b, bRatio32, q uint64) uint64 {
	hi, lo := bits.Mul64(a, bRatio32)
	quot := (hi << 32) | (lo >> 32)
	return a*b - quot*q
}

// ReduceHalf folds v in [0, 2q) down to [0, q).
func ReduceHalf(v, q uint64) uint64 {
	if v >= q {
		return v - q
	}
	return v
}

// CRed reduces a in [0, 2q) to [0, q); kept distinct from ReduceHalf to
// mirror the teacher's naming (ring.CRed), used after NTT butterflies
// specifically.
func CRed(a, q uint64) uint64 {
	if a >= q {
		return a - q
	}
	return a
}
