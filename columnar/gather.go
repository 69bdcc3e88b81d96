/*
 * multikv
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package columnar

import (
	"context"
	"encoding/binary"
	"math"
	"strconv"

	"github.com/krotik/multikv/doccodec"
	"github.com/krotik/multikv/doctree"
	"github.com/krotik/multikv/substrate"
)

/*
Gather implements docs_gather (spec §4.8): loads each document in keys
once, then produces one Column per Request, aligned by document index.
*/
func Gather(ctx context.Context, h substrate.Handle, tx substrate.Txn, keys []int64, reqs []Request) ([]Column, error) {
	docs := make([]doctree.Node, len(keys))
	present := make([]bool, len(keys))
	for i, k := range keys {
		raw, ok, err := h.Get(ctx, tx, substrate.EncodeKey(k))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		doc, err := doccodec.DecodeBinaryA(raw)
		if err != nil {
			return nil, err
		}
		docs[i] = doc
		present[i] = true
	}

	cols := make([]Column, len(reqs))
	for c, req := range reqs {
		col, err := gatherColumn(docs, present, req)
		if err != nil {
			return nil, err
		}
		cols[c] = col
	}
	return cols, nil
}

func gatherColumn(docs []doctree.Node, present []bool, req Request) (Column, error) {
	n := len(docs)
	validity := newRowBitmap()
	converted := newRowBitmap()
	collision := newRowBitmap()

	var scalar []byte
	if req.Type.isScalar() {
		scalar = make([]byte, n*scalarWidth(req.Type))
	}
	offsets := make([]uint32, n)
	lengths := make([]uint32, n)
	var blob []byte

	p, err := doctree.ParsePath(req.Field)
	if err != nil {
		return Column{}, err
	}

	for i := range docs {
		if !present[i] {
			continue
		}
		leaf, ok := doctree.Lookup(docs[i], p)
		if !ok || leaf.Kind == doctree.KindNull {
			continue
		}

		v, conv, coll := coerce(leaf, req.Type)
		if coll {
			collision.set(i)
			continue
		}
		if v == nil {
			continue
		}
		validity.set(i)
		if conv {
			converted.set(i)
		}

		if req.Type.isScalar() {
			copy(scalar[i*scalarWidth(req.Type):], v)
		} else {
			offsets[i] = uint32(len(blob))
			lengths[i] = uint32(len(v))
			blob = append(blob, v...)
		}
	}

	return Column{
		Validity:  validity.flush(n),
		Converted: converted.flush(n),
		Collision: collision.flush(n),
		Data:      scalar,
		Offsets:   offsets,
		Lengths:   lengths,
		Bytes:     blob,
	}, nil
}

func scalarWidth(t Type) int {
	switch t {
	case TypeI32, TypeU32, TypeF32, TypeBool:
		return 4
	case TypeI64, TypeU64, TypeF64:
		return 8
	}
	return 0
}

/*
coerce applies the stored-to-requested coercion table of spec §4.8. It
returns the encoded bytes for the requested type (nil if the field is
absent/null, already handled by the caller), whether a conversion
happened, and whether the field collided (present but inexpressible).
*/
func coerce(leaf doctree.Node, want Type) (value []byte, converted bool, collision bool) {
	if leaf.Kind == doctree.KindArray || leaf.Kind == doctree.KindObject {
		return nil, false, true
	}

	if want == TypeString || want == TypeBinary {
		return coerceToText(leaf, want)
	}
	return coerceToScalar(leaf, want)
}

func coerceToScalar(leaf doctree.Node, want Type) ([]byte, bool, bool) {
	switch leaf.Kind {
	case doctree.KindBool:
		if want == TypeBool {
			return encodeScalar(want, boolToFloat(leaf.Bool)), false, false
		}
		return encodeScalar(want, boolToFloat(leaf.Bool)), true, false

	case doctree.KindInt:
		if want == TypeI64 {
			return encodeScalar(want, float64(leaf.Int)), false, false
		}
		if !fitsNumeric(want, float64(leaf.Int)) {
			return nil, false, true
		}
		return encodeScalar(want, float64(leaf.Int)), true, false

	case doctree.KindUint:
		if want == TypeU64 {
			return encodeScalar(want, float64(leaf.Uint)), false, false
		}
		if !fitsNumeric(want, float64(leaf.Uint)) {
			return nil, false, true
		}
		return encodeScalar(want, float64(leaf.Uint)), true, false

	case doctree.KindFloat:
		if want == TypeF64 {
			return encodeScalar(want, leaf.Float), false, false
		}
		if isIntegerType(want) && leaf.Float != math.Trunc(leaf.Float) {
			return nil, false, true
		}
		if !fitsNumeric(want, leaf.Float) {
			return nil, false, true
		}
		return encodeScalar(want, leaf.Float), true, false

	case doctree.KindString:
		if want == TypeBool {
			switch leaf.Str {
			case "true":
				return encodeScalar(want, 1), true, false
			case "false":
				return encodeScalar(want, 0), true, false
			default:
				return nil, false, true
			}
		}
		f, err := strconv.ParseFloat(leaf.Str, 64)
		if err != nil {
			return nil, false, true
		}
		if isIntegerType(want) && f != math.Trunc(f) {
			return nil, false, true
		}
		if !fitsNumeric(want, f) {
			return nil, false, true
		}
		return encodeScalar(want, f), true, false

	case doctree.KindBinary:
		width := scalarWidth(want)
		if len(leaf.Binary) != width {
			return nil, false, true
		}
		out := make([]byte, width)
		copy(out, leaf.Binary)
		return out, false, false
	}
	return nil, false, true
}

func coerceToText(leaf doctree.Node, want Type) ([]byte, bool, bool) {
	switch leaf.Kind {
	case doctree.KindString:
		return []byte(leaf.Str), false, false
	case doctree.KindBinary:
		return leaf.Binary, false, false
	case doctree.KindBool:
		if leaf.Bool {
			return []byte("true"), true, false
		}
		return []byte("false"), true, false
	case doctree.KindInt:
		return []byte(strconv.FormatInt(leaf.Int, 10)), true, false
	case doctree.KindUint:
		return []byte(strconv.FormatUint(leaf.Uint, 10)), true, false
	case doctree.KindFloat:
		return []byte(strconv.FormatFloat(leaf.Float, 'f', -1, 64)), true, false
	}
	return nil, false, true
}

func isIntegerType(t Type) bool {
	switch t {
	case TypeI32, TypeU32, TypeI64, TypeU64:
		return true
	}
	return false
}

func fitsNumeric(t Type, v float64) bool {
	switch t {
	case TypeI32:
		return v >= math.MinInt32 && v <= math.MaxInt32
	case TypeU32:
		return v >= 0 && v <= math.MaxUint32
	case TypeI64:
		return v >= math.MinInt64 && v < math.MaxInt64
	case TypeU64:
		return v >= 0 && v < math.MaxUint64
	default:
		return true
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func encodeScalar(t Type, v float64) []byte {
	switch t {
	case TypeI32:
		return le32(uint32(int32(v)))
	case TypeU32, TypeBool:
		return le32(uint32(v))
	case TypeF32:
		return le32(math.Float32bits(float32(v)))
	case TypeI64:
		return le64(uint64(int64(v)))
	case TypeU64:
		return le64(uint64(v))
	case TypeF64:
		return le64(math.Float64bits(v))
	}
	return nil
}

func le32(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func le64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}
