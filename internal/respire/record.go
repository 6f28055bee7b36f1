package respire

import (
	"fmt"
	"math/big"

	ringpkg "github.com/jkwoods/respire/internal/ring"
)

// EncodeRecord converts a B-byte record into a Poly<DRecord,p>, per
// spec.md §6's record wire format: the byte string is treated as
// little-endian base-256 and re-expressed in base p. For the reference
// parameter set p=256 this degenerates to the identity byte-to-coefficient
// mapping spec.md calls out as the preferred case; the general base
// conversion below handles any p so the encoder is not hard-coded to 256.
func (e *Expanded) EncodeRecord(record []byte) (ringpkg.Poly, error) {
	if len(record) != e.RecordBytes {
		return ringpkg.Poly{}, fmt.Errorf("respire: record has %d bytes, want %d", len(record), e.RecordBytes)
	}
	p := e.Params.P
	out := ringpkg.NewPoly(e.Params.DRecord, p)
	if p == 256 {
		for i := 0; i < e.Params.DRecord && i < len(record); i++ {
			out.Coeffs[i] = uint64(record[i])
		}
		return out, nil
	}

	v := new(big.Int)
	for i := len(record) - 1; i >= 0; i-- {
		v.Lsh(v, 8)
		v.Or(v, big.NewInt(int64(record[i])))
	}
	pBig := new(big.Int).SetUint64(p)
	digit := new(big.Int)
	for i := 0; i < e.Params.DRecord; i++ {
		v.DivMod(v, pBig, digit)
		out.Coeffs[i] = digit.Uint64()
	}
	return out, nil
}

// DecodeRecord inverts EncodeRecord: re-expresses the base-p coefficient
// vector as base-256 bytes.
func (e *Expanded) DecodeRecord(coeffs []uint64) []byte {
	p := e.Params.P
	if p == 256 {
		out := make([]byte, e.RecordBytes)
		for i := 0; i < len(out) && i < len(coeffs); i++ {
			out[i] = byte(coeffs[i])
		}
		return out
	}

	v := new(big.Int)
	pBig := new(big.Int).SetUint64(p)
	for i := len(coeffs) - 1; i >= 0; i-- {
		v.Mul(v, pBig)
		v.Add(v, new(big.Int).SetUint64(coeffs[i]))
	}
	out := make([]byte, e.RecordBytes)
	mask := big.NewInt(0xff)
	tmp := new(big.Int)
	for i := 0; i < e.RecordBytes; i++ {
		tmp.And(v, mask)
		out[i] = byte(tmp.Uint64())
		v.Rsh(v, 8)
	}
	return out
}

// PackRecords interleaves PackRatio consecutive Poly<DRecord,p> records
// into a single Poly<D,p>, per spec.md §4.H preprocess: "record k's
// coefficient j is placed at output coefficient
// j*PACK_RATIO + bit_reverse_{PACK_RATIO}(k)". records must have length
// exactly PackRatio; a short group should be padded with empty records
// by the caller.
func (e *Expanded) PackRecords(records []ringpkg.Poly) ringpkg.Poly {
	out := ringpkg.NewPoly(e.Params.D, e.Params.P)
	logRatio := ringpkg.CeilLog(2, big.NewInt(int64(e.PackRatio)))
	for k, rec := range records {
		rk := int(ringpkg.ReverseBits(uint64(k), logRatio))
		for j := 0; j < e.Params.DRecord; j++ {
			out.Coeffs[j*e.PackRatio+rk] = rec.Coeffs[j]
		}
	}
	return out
}

// UnpackRecord extracts the slotIndex-th (0..PackRatio-1) record's
// DRecord coefficients back out of a packed Poly<D,p>, undoing the
// bit_reverse permutation and PackRatio stride (spec.md §4.H extraction).
func (e *Expanded) UnpackRecord(packed []uint64, slotIndex int) []uint64 {
	logRatio := ringpkg.CeilLog(2, big.NewInt(int64(e.PackRatio)))
	rk := int(ringpkg.ReverseBits(uint64(slotIndex), logRatio))
	out := make([]uint64, e.Params.DRecord)
	for j := 0; j < e.Params.DRecord; j++ {
		out[j] = packed[j*e.PackRatio+rk]
	}
	return out
}
