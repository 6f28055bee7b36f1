package ring

import (
	"crypto/rand"
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// PRNG is a clocked, seedable deterministic byte stream built on BLAKE2b,
// grounded on the teacher's dbfv.PRNG (collective_CRS.go): each Clock call
// emits 32 bytes of output and folds the other half of the digest back in
// as the next state, so the stream can be re-derived from a label the way
// the teacher re-derives a common reference string across parties. Used
// here to seed uniform ring-element sampling (public keys, automorphism
// key randomness) from a short label instead of consuming crypto/rand
// directly for every coefficient.
type PRNG struct {
	state [64]byte
	buf   []byte
}

// NewPRNG seeds a PRNG from an arbitrary label via BLAKE2b-512.
func NewPRNG(label []byte) *PRNG {
	p := &PRNG{}
	p.state = blake2b.Sum512(label)
	return p
}

// NewRandomPRNG seeds a PRNG from crypto/rand, for contexts with no fixed
// label (e.g. per-session key material).
func NewRandomPRNG() *PRNG {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		panic("ring: crypto/rand failure: " + err.Error())
	}
	return NewPRNG(seed[:])
}

func (p *PRNG) clock() []byte {
	next := blake2b.Sum512(p.state[:])
	p.state = next
	out := make([]byte, 32)
	copy(out, next[32:])
	return out
}

// Uint64 returns the next pseudo-random 64-bit word.
func (p *PRNG) Uint64() uint64 {
	if len(p.buf) < 8 {
		p.buf = append(p.buf, p.clock()...)
	}
	v := binary.LittleEndian.Uint64(p.buf[:8])
	p.buf = p.buf[8:]
	return v
}

// UniformMod returns a uniform value in [0, q) via rejection sampling.
func (p *PRNG) UniformMod(q uint64) uint64 {
	mask := uint64(1)<<bitsLen(q) - 1
	for {
		v := p.Uint64() & mask
		if v < q {
			return v
		}
	}
}

func bitsLen(q uint64) uint {
	n := uint(0)
	for (uint64(1) << n) < q {
		n++
	}
	return n
}

// UniformPoly fills p with D independent uniform coefficients mod q.
func (p *PRNG) UniformPoly(poly []uint64, q uint64) {
	for i := range poly {
		poly[i] = p.UniformMod(q)
	}
}

// UniformBinaryMatrix fills m (rows*cols entries, row-major) with
// independent uniform bits, used by Ring-GSW public-key encryption's
// binary randomizer R (spec.md §4.G encrypt_pk).
func (p *PRNG) UniformBinaryMatrix(m []uint64) {
	for i := range m {
		m[i] = p.Uint64() & 1
	}
}
