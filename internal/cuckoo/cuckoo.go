package cuckoo

import (
	"fmt"
	"math/rand"

	"golang.org/x/exp/slices"
)

// Empty marks a bucket slot with no assigned record index.
const Empty = ^uint64(0)

// MaxEvictionDepth bounds the number of displacements attempted while
// inserting a single record before insertion is declared failed (spec.md
// §4.I "bounded eviction depth, max_depth = 2^16"). At this depth the
// probability of a genuine cycle for a well-behaved load factor is
// negligible, so hitting it signals a bad hash draw rather than protocol
// misuse.
const MaxEvictionDepth = 1 << 16

// Table is a 3-way cuckoo hash table over record indices, used at the
// database owner to decide, for every bucket, which small set of records a
// client might ever be pointing at.
type Table struct {
	Hasher  *Hasher
	Buckets []uint64 // Buckets[b] holds a record index or Empty
}

// NewTable allocates an empty table of numBuckets slots.
func NewTable(hasher *Hasher, numBuckets int) *Table {
	b := make([]uint64, numBuckets)
	for i := range b {
		b[i] = Empty
	}
	return &Table{Hasher: hasher, Buckets: b}
}

// Insert places record index i into one of its three candidate buckets,
// evicting and recursively reinserting the incumbent when all three are
// occupied (standard cuckoo displacement). It fails once MaxEvictionDepth
// displacements have been attempted, per spec.md §4.I.
func (t *Table) Insert(i uint64, rng *rand.Rand) error {
	cur := i
	for depth := 0; depth < MaxEvictionDepth; depth++ {
		cands := t.Hasher.Candidates(cur)
		for _, b := range cands {
			if t.Buckets[b] == Empty {
				t.Buckets[b] = cur
				return nil
			}
		}
		victim := cands[rng.Intn(len(cands))]
		t.Buckets[victim], cur = cur, t.Buckets[victim]
	}
	return fmt.Errorf("cuckoo: failed to place record %d after %d evictions", i, MaxEvictionDepth)
}

// BuildTable inserts every record index in [0, numRecords) into a table of
// numBuckets slots (numBuckets should carry the standard cuckoo
// over-provisioning factor relative to numRecords, e.g. 1.3x, chosen by the
// caller). seed fixes the eviction-order randomness so a build is
// reproducible given the same hasher and insertion order.
func BuildTable(hasher *Hasher, numRecords uint64, numBuckets int, seed int64) (*Table, error) {
	t := NewTable(hasher, numBuckets)
	rng := rand.New(rand.NewSource(seed))
	for i := uint64(0); i < numRecords; i++ {
		if err := t.Insert(i, rng); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// CandidateLists inverts the table into, for each bucket, the list of
// record indices that could ever land there (i.e. the bucket appears among
// that record's three candidates) — the set the server must run PIR over
// for that bucket so that a client request naming any of them is
// indistinguishable from naming any other (spec.md §4.I "per-bucket
// candidate universe"). Every list is padded with Empty up to dbSize; an
// error is returned if any bucket's candidate count exceeds dbSize, since
// that bucket could not be served by a dbSize-capacity PIR instance.
func (t *Table) CandidateLists(numRecords uint64, dbSize int) ([][]uint64, error) {
	lists := make([][]uint64, len(t.Buckets))
	for b := range lists {
		lists[b] = make([]uint64, 0, dbSize)
	}
	for i := uint64(0); i < numRecords; i++ {
		for _, b := range t.Hasher.Candidates(i) {
			lists[b] = append(lists[b], i)
		}
	}
	for b, l := range lists {
		if len(l) > dbSize {
			return nil, fmt.Errorf("cuckoo: bucket %d holds %d candidates, exceeds dbSize %d", b, len(l), dbSize)
		}
		for len(lists[b]) < dbSize {
			lists[b] = append(lists[b], Empty)
		}
	}
	return lists, nil
}

// Assignment records which bucket actually holds a requested record, and
// at what offset within that bucket's candidate list, so a query can be
// built against the right sub-index and a response can be routed back to
// the right batch slot.
type Assignment struct {
	Bucket int
	Offset int
}

// Locate finds, for each requested record index, the bucket the table
// actually placed it in and that record's offset within the bucket's
// candidate list (spec.md §4.I "query" step). DummyOffset is used whenever
// a caller needs to query a bucket without revealing whether it holds a
// real target (not needed here since every batch entry corresponds to a
// genuine placed record, but exposed for callers building decoy queries
// against the remaining buckets).
func Locate(t *Table, lists [][]uint64, indices []uint64) ([]Assignment, error) {
	out := make([]Assignment, len(indices))
	for n, idx := range indices {
		cands := t.Hasher.Candidates(idx)
		bucketPos := slices.IndexFunc(cands[:], func(b int) bool { return t.Buckets[b] == idx })
		if bucketPos < 0 {
			return nil, fmt.Errorf("cuckoo: record %d not present in table", idx)
		}
		bucket := cands[bucketPos]

		offset := slices.Index(lists[bucket], idx)
		if offset < 0 {
			return nil, fmt.Errorf("cuckoo: record %d missing from bucket %d candidate list", idx, bucket)
		}
		out[n] = Assignment{Bucket: bucket, Offset: offset}
	}
	return out, nil
}

// DummyOffset returns a fixed, content-independent offset to query when a
// bucket is touched only to hide which buckets are genuinely targeted.
func DummyOffset() int { return 0 }

// Reassemble reorders per-bucket decoded records back into batch order
// using the Assignments produced for that batch by Locate (spec.md §4.I
// "reassembly": "the client routes each decrypted chunk back to its
// original batch slot using its own recorded bucket/offset assignment").
func Reassemble(assignments []Assignment, perBucket map[int][]byte) ([][]byte, error) {
	out := make([][]byte, len(assignments))
	for i, a := range assignments {
		rec, ok := perBucket[a.Bucket]
		if !ok {
			return nil, fmt.Errorf("cuckoo: no decoded record for bucket %d (batch slot %d)", a.Bucket, i)
		}
		out[i] = rec
	}
	return out, nil
}

// Chunk splits a byte slice into chunks of at most size bytes, used to cap
// each bucket's response at RESPONSE_CHUNK_SIZE before transport (spec.md
// §4.I "response-chunk compression").
func Chunk(data []byte, size int) [][]byte {
	if size <= 0 {
		return [][]byte{data}
	}
	var chunks [][]byte
	for len(data) > 0 {
		n := size
		if n > len(data) {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	return chunks
}
