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
	"encoding/gob"

	"github.com/krotik/multikv/doctree"
	"github.com/krotik/multikv/kverr"
)

/*
gobNode is the gob-friendly mirror of doctree.Node: gob cannot encode the
unexported Object.keys/values pair directly, so FormatBinaryB flattens an
object into parallel Keys/Values slices before handing it to
encoding/gob, the way the teacher registers its own concrete types with
gob for its transaction log (see DESIGN.md).
*/
type gobNode struct {
	Kind   doctree.Kind
	Bool   bool
	Int    int64
	Uint   uint64
	Float  float64
	Str    string
	Binary []byte
	Array  []gobNode
	Keys   []string
	Values []gobNode
}

func init() {
	gob.Register(gobNode{})
}

func toGobNode(n doctree.Node) gobNode {
	g := gobNode{
		Kind:   n.Kind,
		Bool:   n.Bool,
		Int:    n.Int,
		Uint:   n.Uint,
		Float:  n.Float,
		Str:    n.Str,
		Binary: n.Binary,
	}
	if n.Kind == doctree.KindArray {
		g.Array = make([]gobNode, len(n.Array))
		for i, c := range n.Array {
			g.Array[i] = toGobNode(c)
		}
	}
	if n.Kind == doctree.KindObject && n.Object != nil {
		for _, k := range n.Object.Keys() {
			v, _ := n.Object.Get(k)
			g.Keys = append(g.Keys, k)
			g.Values = append(g.Values, toGobNode(v))
		}
	}
	return g
}

func fromGobNode(g gobNode) doctree.Node {
	switch g.Kind {
	case doctree.KindNull:
		return doctree.Null()
	case doctree.KindBool:
		return doctree.Bool(g.Bool)
	case doctree.KindInt:
		return doctree.Int(g.Int)
	case doctree.KindUint:
		return doctree.Uint(g.Uint)
	case doctree.KindFloat:
		return doctree.Float(g.Float)
	case doctree.KindString:
		return doctree.String(g.Str)
	case doctree.KindBinary:
		return doctree.Bytes(g.Binary)
	case doctree.KindArray:
		arr := make([]doctree.Node, len(g.Array))
		for i, c := range g.Array {
			arr[i] = fromGobNode(c)
		}
		return doctree.NewArray(arr)
	case doctree.KindObject:
		obj := doctree.NewEmptyObject()
		for i, k := range g.Keys {
			obj.Set(k, fromGobNode(g.Values[i]))
		}
		return doctree.NewObject(obj)
	}
	return doctree.Null()
}

/*
EncodeBinaryB renders a document using encoding/gob, the interchange
format the teacher already pulls in for its own persisted structures.
*/
func EncodeBinaryB(n doctree.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(toGobNode(n)); err != nil {
		return nil, kverr.New(kverr.SerializeFailure, "failed to gob-encode document: %v", err)
	}
	return buf.Bytes(), nil
}

func DecodeBinaryB(data []byte) (doctree.Node, error) {
	var g gobNode
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&g); err != nil {
		return doctree.Node{}, kverr.New(kverr.ParseFailure, "failed to gob-decode document: %v", err)
	}
	return fromGobNode(g), nil
}
