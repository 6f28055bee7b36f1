package params

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGSWTestParamsExpand(t *testing.T) {
	e, err := GSWTestParams.Expand()
	require.NoError(t, err)
	require.Equal(t, 2, e.DBRows)
	require.Equal(t, 1, e.DBCols)
}

func TestProductionParamsExpand(t *testing.T) {
	e, err := ProductionParams.Expand()
	require.NoError(t, err)
	require.Equal(t, 512, e.DBRows)
	require.Equal(t, 64, e.DBCols)
	require.Equal(t, 32768, e.DBSize)
	require.Equal(t, 8, e.PackRatio)
}

func TestProductionBatchValidate(t *testing.T) {
	e, err := ProductionBatch.Validate()
	require.NoError(t, err)
	require.Equal(t, 262144, e.DBSize*e.PackRatio)
}

func TestValidateRejectsZeroBatch(t *testing.T) {
	bp := ProductionBatch
	bp.Batch = 0
	_, err := bp.Validate()
	require.Error(t, err)
}

func TestValidateRejectsTooFewBuckets(t *testing.T) {
	bp := ProductionBatch
	bp.Buckets = bp.Batch - 1
	_, err := bp.Validate()
	require.Error(t, err)
}

func TestValidateRejectsOversizedNumRecords(t *testing.T) {
	bp := ProductionBatch
	bp.NumRecords = 1 << 30
	_, err := bp.Validate()
	require.Error(t, err)
}
