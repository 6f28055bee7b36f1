// Package cuckoo implements the 3-way cuckoo hashing batch layer that
// bundles multiple single-record PIR queries into one round: hash-to-bucket
// placement, per-bucket invocation (left to the caller, which wires a
// concrete PIR backend), and reassembly of the batch's answers (spec.md
// §4.I). Grounded on the pack's blake3 dependency for a fast,
// non-cryptographically-bound (the adversary here is an honest-but-curious
// server, not a hash-flooding attacker) keyed hash of record indices.
package cuckoo

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// Hasher derives the three candidate bucket indices for a record index,
// per spec.md §4.I: "every record index i maps to three bucket
// candidates (h1(i), h2(i), h3(i)) obtained by splitting a uniform 64-bit
// hash of i modulo K."
type Hasher struct {
	Seed    []byte
	Buckets int
}

// NewHasher derives a Hasher from a fresh random seed.
func NewHasher(numBuckets int) (*Hasher, error) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	return &Hasher{Seed: seed, Buckets: numBuckets}, nil
}

// Candidates returns the three (possibly repeated) bucket indices for
// record index i.
func (h *Hasher) Candidates(i uint64) [3]int {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], i)
	data := make([]byte, 0, len(h.Seed)+8)
	data = append(data, h.Seed...)
	data = append(data, buf[:]...)
	sum := blake3.Sum256(data)

	var out [3]int
	for k := 0; k < 3; k++ {
		v := binary.LittleEndian.Uint64(sum[k*8 : k*8+8])
		out[k] = int(v % uint64(h.Buckets))
	}
	return out
}
