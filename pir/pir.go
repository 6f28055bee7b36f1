// Package pir exposes the batch-facing core API of spec.md §6 --
// setup/preprocess/query/answer/extract over a fixed-size batch of
// indices -- by composing the single-index RESPIRE core
// (internal/respire) with the cuckoo hashing batch layer
// (internal/cuckoo): every batch query becomes one cuckoo placement plus
// one independent base-PIR round per bucket, run in parallel and
// reassembled on extraction.
package pir

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/jkwoods/respire/internal/cuckoo"
	"github.com/jkwoods/respire/internal/respire"
	ringpkg "github.com/jkwoods/respire/internal/ring"
	"github.com/jkwoods/respire/params"
)

// PIR binds an expanded respire parameter set to a fixed batch/bucket
// layout; every other call in this package takes one as its first
// argument.
type PIR struct {
	Batch params.BatchParams
	E     *respire.Expanded
}

// New validates bp and returns a PIR ready for Setup/Preprocess.
func New(bp params.BatchParams) (*PIR, error) {
	e, err := bp.Validate()
	if err != nil {
		return nil, err
	}
	return &PIR{Batch: bp, E: e}, nil
}

// Setup generates the client's secret query key and the matching public
// parameters (spec.md §6 "setup() -> (QueryKey, PublicParams)").
func (p *PIR) Setup(prng *ringpkg.PRNG) (*respire.QueryKey, *respire.PublicParams, error) {
	return respire.Setup(p.E, prng)
}

// Database holds one respire.Database per cuckoo bucket, all sharing the
// same shape (e.DBRows x e.DBCols).
type Database struct {
	Buckets []*respire.Database
}

// DatabaseHint carries everything Query needs to place a batch of record
// indices: the cuckoo table the database owner built, the per-bucket
// candidate lists that table implies, and the respire-level hint shared
// by every bucket.
type DatabaseHint struct {
	Hasher *cuckoo.Hasher
	Table  *cuckoo.Table
	Lists  [][]uint64
	Hint   *respire.DatabaseHint
}

// Preprocess builds the cuckoo placement for NumRecords indices, then
// preprocesses one respire.Database per bucket from that bucket's
// candidate list, padding unused slots with the all-zero record (spec.md
// §4.I "Database encoding" composed with §4.H "Preprocess"). recordAt
// fetches record i's raw bytes; it is called once per real candidate
// slot across all buckets, from a worker per bucket.
func (p *PIR) Preprocess(recordAt func(i int) ([]byte, error)) (*Database, *DatabaseHint, error) {
	hasher, err := cuckoo.NewHasher(p.Batch.Buckets)
	if err != nil {
		return nil, nil, err
	}
	table, err := cuckoo.BuildTable(hasher, p.Batch.NumRecords, p.Batch.Buckets, 1)
	if err != nil {
		return nil, nil, err
	}
	lists, err := table.CandidateLists(p.Batch.NumRecords, p.E.DBSize*p.E.PackRatio)
	if err != nil {
		return nil, nil, err
	}

	buckets := make([]*respire.Database, p.Batch.Buckets)
	var hint *respire.DatabaseHint
	var mu sync.Mutex
	var wg sync.WaitGroup
	errs := make([]error, p.Batch.Buckets)

	for b := 0; b < p.Batch.Buckets; b++ {
		b := b
		wg.Add(1)
		go func() {
			defer wg.Done()
			list := lists[b]
			db, h, err := p.E.Preprocess(func(i int) ([]byte, error) {
				idx := list[i]
				if idx == cuckoo.Empty {
					return make([]byte, p.E.RecordBytes), nil
				}
				return recordAt(int(idx))
			})
			if err != nil {
				errs[b] = err
				return
			}
			buckets[b] = db
			mu.Lock()
			if hint == nil {
				hint = h
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}

	return &Database{Buckets: buckets}, &DatabaseHint{Hasher: hasher, Table: table, Lists: lists, Hint: hint}, nil
}

// Query places a batch of requested record indices via cuckoo insertion
// and builds one respire.Query per bucket: a real query against the
// offset the requested record landed at for buckets the batch touches,
// and a fixed dummy-offset query against every other bucket, so the
// server cannot distinguish touched from untouched buckets (spec.md
// §4.I "Issue K independent base-PIR queries in parallel").
func (p *PIR) Query(qk *respire.QueryKey, hint *DatabaseHint, indices []int) (*Query, *State, error) {
	idx64 := make([]uint64, len(indices))
	for i, v := range indices {
		idx64[i] = uint64(v)
	}
	assignments, err := cuckoo.Locate(hint.Table, hint.Lists, idx64)
	if err != nil {
		return nil, nil, err
	}

	touched := make(map[int]int, len(assignments))
	for _, a := range assignments {
		touched[a.Bucket] = a.Offset
	}

	perBucket := make(map[int]*respire.Query, p.Batch.Buckets)
	perBucketState := make(map[int]*respire.State, p.Batch.Buckets)
	for b := 0; b < p.Batch.Buckets; b++ {
		offset := cuckoo.DummyOffset()
		if o, ok := touched[b]; ok {
			offset = o
		}
		q, st, err := respire.BuildQuery(p.E, qk, hint.Hint, offset)
		if err != nil {
			return nil, nil, fmt.Errorf("pir: building query for bucket %d: %w", b, err)
		}
		perBucket[b] = q
		perBucketState[b] = st
	}

	return &Query{PerBucket: perBucket}, &State{Assignments: assignments, PerBucket: perBucketState}, nil
}

// Query is the batch-level query artifact: one respire.Query per bucket.
type Query struct {
	PerBucket map[int]*respire.Query
}

// State is what the client retains between Query and Extract: which
// bucket and offset each batch slot actually resolved to, plus the
// respire-level State (packing slot) for each bucket's own query.
type State struct {
	Assignments []cuckoo.Assignment
	PerBucket   map[int]*respire.State
}

// Response is the batch-level answer: one respire.Response per bucket.
type Response struct {
	PerBucket map[int]*respire.Response
}

// Answer computes one respire.Answer per bucket in parallel (spec.md §5
// "per-bucket PIR answers within a batch ... embarrassingly parallel").
func (p *PIR) Answer(pp *respire.PublicParams, db *Database, q *Query) (*Response, error) {
	out := make(map[int]*respire.Response, p.Batch.Buckets)
	var mu sync.Mutex
	var wg sync.WaitGroup
	errs := make([]error, p.Batch.Buckets)

	for b := 0; b < p.Batch.Buckets; b++ {
		b := b
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := respire.Answer(p.E, pp, db.Buckets[b], q.PerBucket[b])
			if err != nil {
				errs[b] = err
				return
			}
			mu.Lock()
			out[b] = resp
			mu.Unlock()
		}()
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return &Response{PerBucket: out}, nil
}

// Extract decrypts every bucket's response and reassembles the batch
// into request order via the cuckoo assignments recorded in st (spec.md
// §4.I "Extraction: decrypt each chunk ... reorder per the cuckoo
// mapping").
func (p *PIR) Extract(qk *respire.QueryKey, resp *Response, st *State) ([][]byte, error) {
	perBucket := make(map[int][]byte, len(resp.PerBucket))
	for b, r := range resp.PerBucket {
		bucketState, ok := st.PerBucket[b]
		if !ok {
			return nil, fmt.Errorf("pir: no recorded query state for bucket %d", b)
		}
		rec, err := p.E.Extract(qk, r, bucketState)
		if err != nil {
			return nil, fmt.Errorf("pir: extracting bucket %d: %w", b, err)
		}
		perBucket[b] = rec
	}
	return cuckoo.Reassemble(st.Assignments, perBucket)
}

// CompressResponse serializes a batch Response's per-bucket coefficient
// arrays and splits the result into RESPONSE_CHUNK_SIZE-byte pieces for
// transport (spec.md §4.I "Compress the K answers into chunks of
// RESPONSE_CHUNK_SIZE").
func CompressResponse(resp *Response, chunkSize int) ([][]byte, error) {
	buckets := maps.Keys(resp.PerBucket)
	slices.Sort(buckets)

	var buf bytes.Buffer
	for _, b := range buckets {
		r := resp.PerBucket[b]
		if err := binary.Write(&buf, binary.LittleEndian, uint32(len(r.B))); err != nil {
			return nil, err
		}
		for _, v := range r.B {
			if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
				return nil, err
			}
		}
		for _, v := range r.A {
			if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
				return nil, err
			}
		}
	}
	return cuckoo.Chunk(buf.Bytes(), chunkSize), nil
}
