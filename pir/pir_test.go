package pir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkwoods/respire/internal/respire"
	ringpkg "github.com/jkwoods/respire/internal/ring"
	"github.com/jkwoods/respire/params"
)

// testBatchParams widens params.GSWTestParams' dimension-1 exponent from 1
// to 3 (DBSize*PackRatio capacity 2 -> 8) so each cuckoo bucket's
// candidate list has enough headroom to hold every record that could ever
// hash to it, even with unlucky hash collisions, while keeping the batch
// small enough to exercise quickly.
func testRespireParams() respire.Parameters {
	p := params.GSWTestParams
	p.Nu1 = 3
	return p
}

func testBatchParams() params.BatchParams {
	return params.BatchParams{
		Respire:           testRespireParams(),
		Batch:             1,
		Buckets:           4,
		NumRecords:        2,
		ResponseChunkSize: 4096,
	}
}

func TestBatchRoundTrip(t *testing.T) {
	bp := testBatchParams()
	p, err := New(bp)
	require.NoError(t, err)

	records := [][]byte{
		{0x01, 0x02, 0x03},
		{0x10, 0x20, 0x03},
	}
	db, hint, err := p.Preprocess(func(i int) ([]byte, error) {
		return records[i], nil
	})
	require.NoError(t, err)
	require.Len(t, db.Buckets, bp.Buckets)

	prng := ringpkg.NewRandomPRNG()
	qk, pp, err := p.Setup(prng)
	require.NoError(t, err)

	for target, want := range records {
		q, st, err := p.Query(qk, hint, []int{target})
		require.NoError(t, err)
		require.Len(t, q.PerBucket, bp.Buckets)

		resp, err := p.Answer(pp, db, q)
		require.NoError(t, err)

		got, err := p.Extract(qk, resp, st)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, want, got[0], "record %d", target)
	}
}

func TestCompressResponseChunks(t *testing.T) {
	bp := testBatchParams()
	p, err := New(bp)
	require.NoError(t, err)

	records := [][]byte{{0x01, 0x02, 0x03}, {0x10, 0x20, 0x03}}
	db, hint, err := p.Preprocess(func(i int) ([]byte, error) { return records[i], nil })
	require.NoError(t, err)

	prng := ringpkg.NewRandomPRNG()
	qk, pp, err := p.Setup(prng)
	require.NoError(t, err)

	q, _, err := p.Query(qk, hint, []int{0})
	require.NoError(t, err)
	resp, err := p.Answer(pp, db, q)
	require.NoError(t, err)

	chunks, err := CompressResponse(resp, 16)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		require.LessOrEqual(t, len(c), 16)
	}
}

func TestNewRejectsInvalidBatchParams(t *testing.T) {
	bp := testBatchParams()
	bp.Buckets = 0
	_, err := New(bp)
	require.Error(t, err)
}
