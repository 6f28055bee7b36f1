// Package params declares concrete parameter sets for the RESPIRE PIR
// core and the cuckoo batch layer (spec.md §6 "Parameter object"),
// matching the reference binaries under the original implementation's
// src/bin tree: a fixed record size and database shape compiled into a
// single PIR type rather than chosen at runtime.
package params

import (
	"fmt"

	"github.com/jkwoods/respire/internal/respire"
)

// BatchParams wraps a respire.Parameters with the batch-layer constants
// the cuckoo package needs: batch size B and bucket count K.
type BatchParams struct {
	Respire respire.Parameters
	Batch   int
	Buckets int

	NumRecords       uint64
	ResponseChunkSize int
}

// GSWTestParams is spec.md §8 example 3's correctness-test parameter set:
// a tiny two-row GSW instance over a 4-coefficient ring, sized to make
// exhaustive mu*mu' sweeps (mu, mu' in [0,10)) cheap.
var GSWTestParams = respire.Parameters{
	QA: 268369921,
	QB: 249561089,
	D:  4,

	P:       31,
	DRecord: 4,

	Nu1:   1,
	Nu2:   0,
	ZFold: 2,

	TGSW:        28,
	TCoeffRegev: 28,
	TCoeffGSW:   28,

	QSwitch1: 1 << 16,
	QSwitch2: 1 << 8,
	DSwitch:  4,
	TSwitch:  8,

	Sigma: 3.2,
}

// ProductionParams is spec.md §8 example 5's PIR-round-trip parameter
// set: D=2048, nu1=9, nu2=6, p=256, D_record=256, giving
// DB_SIZE = 2^9 * 2^6 = 32768 bundles, each packing D/D_record = 8
// records of 256 bytes.
var ProductionParams = respire.Parameters{
	// 268460033 and 268496897 are both prime and congruent to 1 mod
	// 4096 = 2*D, so both admit a primitive 2D-th root of unity and are
	// individually NTT-friendly for D=2048 (spec.md §4.C).
	QA: 268460033,
	QB: 268496897,
	D:  2048,

	P:       256,
	DRecord: 256,

	Nu1:   9,
	Nu2:   6,
	ZFold: 2,

	TGSW:        8,
	TCoeffRegev: 8,
	TCoeffGSW:   8,

	QSwitch1: 1 << 24,
	QSwitch2: 1 << 16,
	DSwitch:  2048,
	TSwitch:  16,

	Sigma: 6.4,
}

// ProductionBatch wraps ProductionParams with a batch/bucket layout
// following the original implementation's K ~= 1.5*B recommendation
// (spec.md §4.I) for a modest batch of 7 simultaneous queries against a
// 131072-record database.
var ProductionBatch = BatchParams{
	Respire: ProductionParams,
	Batch:   7,
	Buckets: 11, // ceil(1.5 * 7)
	// ProductionParams' DB_SIZE*PackRatio = 32768*8 = 262144 addressable
	// records; this stays comfortably under that so every cuckoo bucket's
	// candidate list fits.
	NumRecords:        1 << 17,
	ResponseChunkSize: 4096,
}

// Validate expands the wrapped respire.Parameters and checks the batch
// layer's own preconditions: non-positive batch/bucket counts, and a
// bucket count too small relative to the batch (spec.md §4.I
// recommends K ~= 1.5*B; this only rejects configurations that cannot
// possibly place B items in K buckets).
func (bp BatchParams) Validate() (*respire.Expanded, error) {
	if bp.Batch <= 0 {
		return nil, fmt.Errorf("params: batch size %d must be positive", bp.Batch)
	}
	if bp.Buckets < bp.Batch {
		return nil, fmt.Errorf("params: bucket count %d must be at least batch size %d", bp.Buckets, bp.Batch)
	}
	e, err := bp.Respire.Expand()
	if err != nil {
		return nil, err
	}
	capacity := e.DBSize * e.PackRatio
	if uint64(capacity) < bp.NumRecords {
		return nil, fmt.Errorf("params: respire capacity DB_SIZE*PackRatio=%d smaller than NumRecords=%d", capacity, bp.NumRecords)
	}
	return e, nil
}
