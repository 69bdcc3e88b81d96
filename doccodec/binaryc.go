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
	"encoding/base64"
	"sort"
	"strconv"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/krotik/multikv/doctree"
	"github.com/krotik/multikv/kverr"
)

/*
FormatBinaryC is a wire-compatible encoding for consumers that already
speak protobuf's google.protobuf.Struct/Value, grounded on the real
protobuf dependency the teacher's closest example repo pulls in for its
own wire types (see DESIGN.md). structpb.Value has no int64/uint64/binary
kind of its own, so int, uint and binary leaves are tagged and carried
through as strings (decimal digits, or base64 for binary) inside a
one-field wrapper object; every other kind maps onto its natural
structpb counterpart.
*/

const (
	tagInt    = "$i"
	tagUint   = "$u"
	tagBinary = "$b"
)

func EncodeBinaryC(n doctree.Node) ([]byte, error) {
	v, err := nodeToStructValue(n)
	if err != nil {
		return nil, kverr.New(kverr.SerializeFailure, "failed to build protobuf struct value: %v", err)
	}
	out, err := proto.Marshal(v)
	if err != nil {
		return nil, kverr.New(kverr.SerializeFailure, "failed to marshal protobuf struct value: %v", err)
	}
	return out, nil
}

func DecodeBinaryC(data []byte) (doctree.Node, error) {
	var v structpb.Value
	if err := proto.Unmarshal(data, &v); err != nil {
		return doctree.Node{}, kverr.New(kverr.ParseFailure, "failed to unmarshal protobuf struct value: %v", err)
	}
	return structValueToNode(&v), nil
}

func nodeToStructValue(n doctree.Node) (*structpb.Value, error) {
	switch n.Kind {
	case doctree.KindNull:
		return structpb.NewNullValue(), nil
	case doctree.KindBool:
		return structpb.NewBoolValue(n.Bool), nil
	case doctree.KindFloat:
		return structpb.NewNumberValue(n.Float), nil
	case doctree.KindString:
		return structpb.NewStringValue(n.Str), nil
	case doctree.KindInt:
		return wrapTagged(tagInt, structpb.NewStringValue(strconv.FormatInt(n.Int, 10)))
	case doctree.KindUint:
		return wrapTagged(tagUint, structpb.NewStringValue(strconv.FormatUint(n.Uint, 10)))
	case doctree.KindBinary:
		return wrapTagged(tagBinary, structpb.NewStringValue(base64.StdEncoding.EncodeToString(n.Binary)))
	case doctree.KindArray:
		vals := make([]*structpb.Value, len(n.Array))
		for i, c := range n.Array {
			v, err := nodeToStructValue(c)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return structpb.NewListValue(&structpb.ListValue{Values: vals}), nil
	case doctree.KindObject:
		fields := make(map[string]*structpb.Value)
		if n.Object != nil {
			for _, k := range n.Object.Keys() {
				fv, _ := n.Object.Get(k)
				v, err := nodeToStructValue(fv)
				if err != nil {
					return nil, err
				}
				fields[k] = v
			}
		}
		return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil
	}
	return nil, kverr.New(kverr.SerializeFailure, "unsupported node kind %v", n.Kind)
}

func wrapTagged(tag string, v *structpb.Value) (*structpb.Value, error) {
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{tag: v}}), nil
}

func structValueToNode(v *structpb.Value) doctree.Node {
	switch v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return doctree.Null()
	case *structpb.Value_BoolValue:
		return doctree.Bool(v.GetBoolValue())
	case *structpb.Value_NumberValue:
		return doctree.Float(v.GetNumberValue())
	case *structpb.Value_StringValue:
		return doctree.String(v.GetStringValue())
	case *structpb.Value_ListValue:
		lv := v.GetListValue().GetValues()
		arr := make([]doctree.Node, len(lv))
		for i, c := range lv {
			arr[i] = structValueToNode(c)
		}
		return doctree.NewArray(arr)
	case *structpb.Value_StructValue:
		fields := v.GetStructValue().GetFields()
		if tagged, ok := fields[tagInt]; ok && len(fields) == 1 {
			v, _ := strconv.ParseInt(tagged.GetStringValue(), 10, 64)
			return doctree.Int(v)
		}
		if tagged, ok := fields[tagUint]; ok && len(fields) == 1 {
			v, _ := strconv.ParseUint(tagged.GetStringValue(), 10, 64)
			return doctree.Uint(v)
		}
		if tagged, ok := fields[tagBinary]; ok && len(fields) == 1 {
			raw, _ := base64.StdEncoding.DecodeString(tagged.GetStringValue())
			return doctree.Bytes(raw)
		}
		// structpb.Struct is backed by a map - field order isn't carried
		// over the wire, so a deterministic key order is the best we can
		// reconstruct for this format.
		obj := doctree.NewEmptyObject()
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			obj.Set(k, structValueToNode(fields[k]))
		}
		return doctree.NewObject(obj)
	}
	return doctree.Null()
}
