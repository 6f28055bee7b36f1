package cuckoo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCandidatesDeterministic(t *testing.T) {
	h, err := NewHasher(16)
	require.NoError(t, err)

	a := h.Candidates(42)
	b := h.Candidates(42)
	require.Equal(t, a, b)
}

func TestCandidatesVaryWithSeed(t *testing.T) {
	h1, err := NewHasher(1 << 20)
	require.NoError(t, err)
	h2, err := NewHasher(1 << 20)
	require.NoError(t, err)

	require.NotEqual(t, h1.Seed, h2.Seed)
}

// TestBuildTablePlacesEveryRecordAtACandidate checks the cuckoo invariant:
// every inserted record ends up in exactly one of its three candidate
// buckets (spec.md §4.I).
func TestBuildTablePlacesEveryRecordAtACandidate(t *testing.T) {
	hasher, err := NewHasher(64)
	require.NoError(t, err)
	table, err := BuildTable(hasher, 40, 64, 1)
	require.NoError(t, err)

	for i := uint64(0); i < 40; i++ {
		cands := hasher.Candidates(i)
		found := false
		for _, b := range cands {
			if table.Buckets[b] == i {
				found = true
			}
		}
		require.True(t, found, "record %d not placed at any of its candidates", i)
	}
}

func TestBuildTableFailsWhenOverloaded(t *testing.T) {
	hasher, err := NewHasher(4)
	require.NoError(t, err)
	_, err = BuildTable(hasher, 1000, 4, 1)
	require.Error(t, err)
}

func TestCandidateListsContainsEveryPlacedRecord(t *testing.T) {
	hasher, err := NewHasher(16)
	require.NoError(t, err)
	table, err := BuildTable(hasher, 10, 16, 1)
	require.NoError(t, err)

	lists, err := table.CandidateLists(10, 8)
	require.NoError(t, err)
	require.Len(t, lists, 16)

	for b, occupant := range table.Buckets {
		if occupant == Empty {
			continue
		}
		require.Contains(t, lists[b], occupant)
	}
}

func TestCandidateListsRejectsOverflow(t *testing.T) {
	hasher, err := NewHasher(2)
	require.NoError(t, err)
	table := NewTable(hasher, 2)
	_, err = table.CandidateLists(100, 1)
	require.Error(t, err)
}

func TestLocateMatchesBuildTablePlacement(t *testing.T) {
	hasher, err := NewHasher(16)
	require.NoError(t, err)
	table, err := BuildTable(hasher, 10, 16, 1)
	require.NoError(t, err)
	lists, err := table.CandidateLists(10, 8)
	require.NoError(t, err)

	indices := []uint64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	assignments, err := Locate(table, lists, indices)
	require.NoError(t, err)

	for n, idx := range indices {
		a := assignments[n]
		require.Equal(t, idx, table.Buckets[a.Bucket])
		require.Equal(t, idx, lists[a.Bucket][a.Offset])
	}
}

func TestLocateRejectsUnplacedRecord(t *testing.T) {
	hasher, err := NewHasher(16)
	require.NoError(t, err)
	table, err := BuildTable(hasher, 10, 16, 1)
	require.NoError(t, err)
	lists, err := table.CandidateLists(10, 8)
	require.NoError(t, err)

	_, err = Locate(table, lists, []uint64{999})
	require.Error(t, err)
}

func TestReassembleRoutesByAssignment(t *testing.T) {
	assignments := []Assignment{{Bucket: 2, Offset: 0}, {Bucket: 5, Offset: 3}}
	perBucket := map[int][]byte{2: []byte("bucket-two"), 5: []byte("bucket-five")}

	out, err := Reassemble(assignments, perBucket)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("bucket-two"), []byte("bucket-five")}, out)
}

func TestReassembleRejectsMissingBucket(t *testing.T) {
	assignments := []Assignment{{Bucket: 9, Offset: 0}}
	_, err := Reassemble(assignments, map[int][]byte{})
	require.Error(t, err)
}

func TestChunkSplitsAndRejoins(t *testing.T) {
	data := make([]byte, 10)
	for i := range data {
		data[i] = byte(i)
	}
	chunks := Chunk(data, 4)
	require.Len(t, chunks, 3)
	require.Len(t, chunks[0], 4)
	require.Len(t, chunks[1], 4)
	require.Len(t, chunks[2], 2)

	var rejoined []byte
	for _, c := range chunks {
		rejoined = append(rejoined, c...)
	}
	require.Equal(t, data, rejoined)
}
