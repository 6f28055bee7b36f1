package respire

import (
	"testing"

	"github.com/stretchr/testify/require"

	ringpkg "github.com/jkwoods/respire/internal/ring"
)

// testParameters is a small, fast parameter set shaped like spec.md §8
// example 3 (N=2 fold GSW, the same prime pair) but with Nu1=1, Nu2=0 so a
// round trip exercises one automorphism expansion and no folding, keeping
// the test's record space to DBRows*PackRatio=2 addressable records.
func testParameters() Parameters {
	return Parameters{
		QA: 268369921, QB: 249561089, D: 4,
		P: 31, DRecord: 4,
		Nu1: 1, Nu2: 0, ZFold: 2,
		TGSW: 28, TCoeffRegev: 28, TCoeffGSW: 28,
		QSwitch1: 1 << 16, QSwitch2: 1 << 8, DSwitch: 4, TSwitch: 8,
		Sigma: 3.2,
	}
}

// testFoldParameters widens testParameters to Nu2=1 so a round trip folds
// DBCols=2 candidates down to one via the GSW-controlled combine step in
// Answer, exercising the path testParameters (Nu2=0) never runs.
func testFoldParameters() Parameters {
	p := testParameters()
	p.Nu2 = 1
	return p
}

func TestExpandValidParameters(t *testing.T) {
	e, err := testParameters().Expand()
	require.NoError(t, err)
	require.Equal(t, 2, e.DBRows)
	require.Equal(t, 1, e.DBCols)
	require.Equal(t, 1, e.PackRatio)
	require.Equal(t, 2, e.DBSize)
}

func TestExpandRejectsNonPowerOfTwoD(t *testing.T) {
	p := testParameters()
	p.D = 6
	_, err := p.Expand()
	require.Error(t, err)
}

func TestExpandRejectsUnsupportedZFold(t *testing.T) {
	p := testParameters()
	p.ZFold = 3
	_, err := p.Expand()
	require.Error(t, err)
}

func TestExpandRejectsBadModulusChain(t *testing.T) {
	p := testParameters()
	p.QSwitch2 = p.QSwitch1 // violates QSwitch1 > QSwitch2
	_, err := p.Expand()
	require.Error(t, err)
}

// TestQueryAnswerExtractRoundTrip checks the full protocol round trip for
// every addressable record: extract(qk, answer(pp, db, query(qk, i))) must
// recover record i (spec.md §8's PIR correctness property).
func TestQueryAnswerExtractRoundTrip(t *testing.T) {
	e, err := testParameters().Expand()
	require.NoError(t, err)

	// both values stay under p^DRecord=31^4=923521, the largest value
	// EncodeRecord/DecodeRecord can round-trip exactly for this modulus.
	records := [][]byte{
		{0x01, 0x02, 0x03},
		{0x10, 0x20, 0x03},
	}
	require.Equal(t, e.RecordBytes, len(records[0]))

	db, hint, err := e.Preprocess(func(i int) ([]byte, error) {
		return records[i], nil
	})
	require.NoError(t, err)

	prng := ringpkg.NewRandomPRNG()
	qk, pp, err := Setup(e, prng)
	require.NoError(t, err)

	for i, want := range records {
		q, st, err := BuildQuery(e, qk, hint, i)
		require.NoError(t, err)

		resp, err := Answer(e, pp, db, q)
		require.NoError(t, err)

		got, err := e.Extract(qk, resp, st)
		require.NoError(t, err)
		require.Equal(t, want, got, "record %d", i)
	}
}

// TestQueryAnswerExtractRoundTripWithFold is TestQueryAnswerExtractRoundTrip
// but with Nu2=1, ZFold=2 so DBCols=2 and Answer's fold loop runs once,
// combining candidates[0] with a GSW-scaled candidates[1]-candidates[0]
// (spec.md §4.H answer step 2). This is the path review comment 1's
// missing-argument bug lived in: a Nu2=0 round trip can never reach it.
func TestQueryAnswerExtractRoundTripWithFold(t *testing.T) {
	e, err := testFoldParameters().Expand()
	require.NoError(t, err)
	require.Equal(t, 2, e.DBRows)
	require.Equal(t, 2, e.DBCols)

	// all four values stay under p^DRecord=31^4=923521, see the round-trip
	// test above.
	records := [][]byte{
		{0x01, 0x02, 0x03},
		{0x10, 0x20, 0x03},
		{0x07, 0x08, 0x01},
		{0x02, 0x03, 0x02},
	}
	require.Equal(t, e.DBSize*e.PackRatio, len(records))

	db, hint, err := e.Preprocess(func(i int) ([]byte, error) {
		return records[i], nil
	})
	require.NoError(t, err)

	prng := ringpkg.NewRandomPRNG()
	qk, pp, err := Setup(e, prng)
	require.NoError(t, err)

	for i, want := range records {
		q, st, err := BuildQuery(e, qk, hint, i)
		require.NoError(t, err)
		require.Len(t, q.ColDigits, 1)

		resp, err := Answer(e, pp, db, q)
		require.NoError(t, err)

		got, err := e.Extract(qk, resp, st)
		require.NoError(t, err)
		require.Equal(t, want, got, "record %d", i)
	}
}

func TestBuildQueryRejectsOutOfRangeIndex(t *testing.T) {
	e, err := testParameters().Expand()
	require.NoError(t, err)

	_, hint, err := e.Preprocess(func(i int) ([]byte, error) {
		return make([]byte, e.RecordBytes), nil
	})
	require.NoError(t, err)

	prng := ringpkg.NewRandomPRNG()
	qk, _, err := Setup(e, prng)
	require.NoError(t, err)

	_, _, err = BuildQuery(e, qk, hint, e.DBSize*e.PackRatio)
	require.Error(t, err)
}

func TestPackUnpackRecordRoundTrip(t *testing.T) {
	e, err := testParameters().Expand()
	require.NoError(t, err)

	rec0 := ringpkg.NewPoly(e.Params.DRecord, e.Params.P)
	copy(rec0.Coeffs, []uint64{1, 2, 3, 4})

	packed := e.PackRecords([]ringpkg.Poly{rec0})
	got := e.UnpackRecord(packed.Coeffs, 0)
	require.Equal(t, rec0.Coeffs, got)
}

func TestEncodeDecodeRecordRoundTrip(t *testing.T) {
	e, err := testParameters().Expand()
	require.NoError(t, err)

	// stays under p^DRecord=31^4=923521, see the round-trip test above.
	rec := []byte{0x05, 0x06, 0x01}
	poly, err := e.EncodeRecord(rec)
	require.NoError(t, err)
	back := e.DecodeRecord(poly.Coeffs)
	require.Equal(t, rec, back)
}
