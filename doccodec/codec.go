/*
 * multikv
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package doccodec

import (
	"bytes"
	"encoding/json"

	"github.com/krotik/multikv/doctree"
	"github.com/krotik/multikv/kverr"
)

/*
Encode renders n in the requested format. The patch dialects have no
standalone encoding of a tree - they describe an edit, not a tree - so
Encode rejects them; the document engine calls DecodePatchOps /
DecodeMergePatch instead for those formats.
*/
func Encode(n doctree.Node, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		var buf bytes.Buffer
		if err := EncodeJSON(&buf, n); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatBinaryA:
		return EncodeBinaryA(n)
	case FormatBinaryB:
		return EncodeBinaryB(n)
	case FormatBinaryC:
		return EncodeBinaryC(n)
	case FormatBinaryD:
		return EncodeBinaryD(n)
	case FormatRaw:
		return EncodeRaw(n)
	default:
		return nil, kverr.New(kverr.BadArgument, "format %v has no standalone tree encoding", f)
	}
}

/*
Decode parses data as the given format into a doctree.Node. As with
Encode, the patch dialects are rejected here - see DecodePatchOps and
DecodeMergePatch.
*/
func Decode(data []byte, f Format) (doctree.Node, error) {
	switch f {
	case FormatJSON:
		return DecodeJSON(data)
	case FormatBinaryA:
		return DecodeBinaryA(data)
	case FormatBinaryB:
		return DecodeBinaryB(data)
	case FormatBinaryC:
		return DecodeBinaryC(data)
	case FormatBinaryD:
		return DecodeBinaryD(data)
	case FormatRaw:
		return DecodeRaw(data)
	default:
		return doctree.Node{}, kverr.New(kverr.BadArgument, "format %v has no standalone tree decoding", f)
	}
}

/*
jsonPatchOp mirrors the wire shape of one RFC 6902 operation, decoded
with UseNumber through the same order-preserving path as DecodeJSON so
patch values round-trip through the same numeric classification rules as
a plain document.
*/
type jsonPatchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

/*
DecodePatchOps parses a FormatJSONPatch payload - a JSON array of
{op, path, value} operations - into doctree.PatchOp values ready for
doctree.ApplyPatch.
*/
func DecodePatchOps(data []byte) ([]doctree.PatchOp, error) {
	var raw []jsonPatchOp
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, kverr.New(kverr.ParseFailure, "failed to parse JSON patch array: %v", err)
	}

	ops := make([]doctree.PatchOp, len(raw))
	for i, r := range raw {
		op := doctree.PatchOp{Op: r.Op, Path: r.Path}
		if len(r.Value) > 0 {
			v, err := DecodeJSON(r.Value)
			if err != nil {
				return nil, err
			}
			op.Value = v
		} else {
			op.Value = doctree.Null()
		}
		ops[i] = op
	}
	return ops, nil
}

/*
DecodeMergePatch parses a FormatJSONMergePatch payload as a plain
document tree, ready for doctree.MergePatch.
*/
func DecodeMergePatch(data []byte) (doctree.Node, error) {
	return DecodeJSON(data)
}
