package ring

import (
	"fmt"
	"math/big"
	"math/bits"
)

// ModExp computes x^e mod q, grounded on the teacher's ring.ModExp.
func ModExp(x, e, q uint64) uint64 {
	return new(big.Int).Exp(new(big.Int).SetUint64(x), new(big.Int).SetUint64(e), new(big.Int).SetUint64(q)).Uint64()
}

// ModInverse computes x^-1 mod q for q prime, via Fermat's little theorem,
// the way the teacher computes N^-1 mod Qi in SubRing.generateNTTConstants.
func ModInverse(x, q uint64) uint64 {
	return ModExp(x, q-2, q)
}

// IsPrime reports whether q is prime, using math/big's probabilistic test
// (the teacher's ring.IsPrime wraps the same primitive).
func IsPrime(q uint64) bool {
	if q < 2 {
		return false
	}
	return new(big.Int).SetUint64(q).ProbablyPrime(32)
}

// factorize returns the distinct prime factors of n via trial division,
// sufficient for the q-1 factorizations this package needs (q is at most
// 2^30, so q-1 has no prime factor larger than q-1 itself and trial
// division to n's square root terminates quickly in practice). Grounded
// on the teacher's utils.GetFactors, used the same way by
// ring.PrimitiveRoot to avoid a full factorization every call.
func factorize(n uint64) []uint64 {
	var factors []uint64
	m := n
	for p := uint64(2); p*p <= m; p++ {
		if m%p == 0 {
			factors = append(factors, p)
			for m%p == 0 {
				m /= p
			}
		}
	}
	if m > 1 {
		factors = append(factors, m)
	}
	return factors
}

// PrimitiveRoot finds the smallest primitive root of prime q, grounded on
// the teacher's ring.PrimitiveRoot (subring.go): factor q-1, then test
// candidate generators against each factor.
func PrimitiveRoot(q uint64) (uint64, error) {
	if !IsPrime(q) {
		return 0, fmt.Errorf("ring: %d is not prime", q)
	}
	factors := factorize(q - 1)
	for g := uint64(2); g < q; g++ {
		isGenerator := true
		for _, f := range factors {
			if ModExp(g, (q-1)/f, q) == 1 {
				isGenerator = false
				break
			}
		}
		if isGenerator {
			return g, nil
		}
	}
	return 0, fmt.Errorf("ring: no primitive root found for %d", q)
}

// FindSqrtPrimitiveRoot returns a primitive 2D-th root of unity modulo q,
// i.e. omega with omega^D == -1 (mod q) and omega^2 a primitive D-th root
// of unity, as required by the negacyclic NTT (spec.md §4.C). Requires
// q == 1 (mod 2D). An implementation must reject q,D pairs for which no
// such root exists, and must reject the degenerate omega = 1 (spec.md §9
// open question: tests once passed with omega = 1, which this routine
// refuses to return since 1 is never primitive of order > 1).
func FindSqrtPrimitiveRoot(D int, q uint64) (uint64, error) {
	nthRoot := uint64(2 * D)
	if (q-1)%nthRoot != 0 {
		return 0, fmt.Errorf("ring: q=%d is not 1 mod 2*D=%d, no NTT-friendly root exists", q, nthRoot)
	}
	g, err := PrimitiveRoot(q)
	if err != nil {
		return 0, err
	}
	omega := ModExp(g, (q-1)/nthRoot, q)
	if omega == 1 {
		return 0, fmt.Errorf("ring: degenerate root omega=1 for q=%d, D=%d", q, D)
	}
	// Sanity: omega must have exact order 2D (omega^D == q-1, i.e. -1 mod q).
	if ModExp(omega, uint64(D), q) != q-1 {
		return 0, fmt.Errorf("ring: candidate root does not satisfy omega^D = -1 mod q")
	}
	return omega, nil
}

// ReverseBits reverses the low logN bits of x.
func ReverseBits(x uint64, logN int) uint64 {
	return bits.Reverse64(x) >> (64 - logN)
}

// CeilLog returns ceil(log_base(x)) for x >= 1, base >= 2.
func CeilLog(base uint64, x *big.Int) int {
	if x.Sign() <= 0 {
		return 0
	}
	count := 0
	remaining := new(big.Int).Set(x)
	b := new(big.Int).SetUint64(base)
	one := big.NewInt(1)
	for remaining.Cmp(one) > 0 {
		remaining.Div(remaining, b)
		count++
	}
	// correct for non-exact division: if base^count < x, bump by one.
	check := new(big.Int).Exp(b, big.NewInt(int64(count)), nil)
	if check.Cmp(x) < 0 {
		count++
	}
	return count
}

// BaseFromLen returns the smallest base z such that ceil(log_z Q) <= gLen,
// i.e. the inverse of CeilLog used when the gadget length is fixed and the
// base must be derived (spec.md §6 base_from_len).
func BaseFromLen(gLen int, Q *big.Int) uint64 {
	if gLen <= 0 {
		panic("ring: gadget length must be positive")
	}
	// z = ceil(Q^(1/gLen)): binary search for the smallest z with z^gLen >= Q.
	lo, hi := uint64(2), uint64(2)
	for {
		v := new(big.Int).Exp(new(big.Int).SetUint64(hi), big.NewInt(int64(gLen)), nil)
		if v.Cmp(Q) >= 0 {
			break
		}
		hi *= 2
	}
	for lo < hi {
		mid := lo + (hi-lo)/2
		v := new(big.Int).Exp(new(big.Int).SetUint64(mid), big.NewInt(int64(gLen)), nil)
		if v.Cmp(Q) >= 0 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}
