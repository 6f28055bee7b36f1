package respire

import (
	"runtime"
	"sync"

	ringpkg "github.com/jkwoods/respire/internal/ring"
)

// Database is the server-held preprocessed record set: a DBRows x DBCols
// grid of PolyCRTEval bundles, each packing PackRatio records (spec.md §3
// "Database: ... a preprocessed PolyCRTEval bundle laid out to enable a
// two-stage fold: nu1 dimensions selected by Regev ciphertexts, nu2
// dimensions selected by GSW ciphertexts").
type Database struct {
	Rows, Cols int
	Bundles    []ringpkg.PolyCRTEval // row-major, length Rows*Cols
}

func (db *Database) At(row, col int) ringpkg.PolyCRTEval { return db.Bundles[row*db.Cols+col] }

// DatabaseHint carries whatever a caller needs to map an arbitrary record
// index into (row, col, slot) coordinates; for the single-server core this
// is just the dimension shape, since the mapping is a fixed radix
// decomposition of the index (spec.md §6 preprocess returns (Database,
// DatabaseHint)).
type DatabaseHint struct {
	Rows, Cols, PackRatio int
}

// Coordinates decomposes a flat record index into (row, col, slot) per
// the DB_SIZE = 2^nu1 * z_fold^nu2 layout, slot selecting which of the
// PackRatio records packed at (row,col) the index refers to.
func (h DatabaseHint) Coordinates(idx int) (row, col, slot int) {
	group := idx / h.PackRatio
	slot = idx % h.PackRatio
	row = group / h.Cols
	col = group % h.Cols
	return
}

// Preprocess encodes and packs every record, laying them out into the
// Rows x Cols grid and lifting each bundle into PolyCRTEval form, per
// spec.md §4.H "Preprocess". recordAt(i) must return a RecordBytes-long
// byte slice for i in [0, DBSize*PackRatio).
//
// Per-group packing is embarrassingly parallel (spec.md §5): worked
// across a fixed-size pool sized to runtime.GOMAXPROCS(0), mirroring the
// teacher's sizing convention for parallel RNS-level loops (spec.md §11
// supplement from the reference source).
func (e *Expanded) Preprocess(recordAt func(i int) ([]byte, error)) (*Database, *DatabaseHint, error) {
	numGroups := e.DBRows * e.DBCols
	db := &Database{Rows: e.DBRows, Cols: e.DBCols, Bundles: make([]ringpkg.PolyCRTEval, numGroups)}

	workers := runtime.GOMAXPROCS(0)
	if workers > numGroups {
		workers = numGroups
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	groupsPerWorker := (numGroups + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * groupsPerWorker
		end := start + groupsPerWorker
		if end > numGroups {
			end = numGroups
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			for g := start; g < end; g++ {
				records := make([]ringpkg.Poly, e.PackRatio)
				for s := 0; s < e.PackRatio; s++ {
					idx := g*e.PackRatio + s
					bytesRec, err := recordAt(idx)
					if err != nil {
						errs[w] = err
						return
					}
					poly, err := e.EncodeRecord(bytesRec)
					if err != nil {
						errs[w] = err
						return
					}
					records[s] = poly
				}
				packed := e.PackRecords(records)
				lifted := e.liftToQ(packed)
				db.Bundles[g] = e.Ring.ToEval(lifted)
			}
		}(w, start, end)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}

	hint := &DatabaseHint{Rows: e.DBRows, Cols: e.DBCols, PackRatio: e.PackRatio}
	return db, hint, nil
}

// liftToQ embeds a Poly<D,p> into Z_Q[X]/(X^D+1) by taking each
// coefficient's canonical representative as an integer and reducing it
// independently into both CRT channels (spec.md §4.D "lifted to
// Z_Q[X]/(X^D+1)").
func (e *Expanded) liftToQ(p ringpkg.Poly) ringpkg.PolyCRT {
	c := e.Ring.NewPolyCRT()
	e.Ring.FromUint64(c, p.Coeffs)
	return c
}
