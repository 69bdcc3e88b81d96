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
	"encoding/binary"
	"math"

	"github.com/krotik/multikv/doctree"
	"github.com/krotik/multikv/kverr"
)

/*
FormatBinaryA is the project-owned canonical binary tree: a tag byte per
node followed by a kind-specific payload, varint-length-prefixed for
variable-sized kinds. Encoding is deterministic: the same tree, with
object fields in the same insertion order, always produces the same
bytes. Unlike the JSON encoding or gob, nothing
in the retrieved pack hands us a byte-stable tree codec off the shelf, so
this one is hand-rolled - the same way the teacher owns its page format
instead of reaching for a library (see DESIGN.md).
*/

func EncodeBinaryA(n doctree.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeNodeA(&buf, n); err != nil {
		return nil, kverr.New(kverr.SerializeFailure, "failed to serialize canonical binary document: %v", err)
	}
	return buf.Bytes(), nil
}

func DecodeBinaryA(data []byte) (doctree.Node, error) {
	r := bytes.NewReader(data)
	n, err := readNodeA(r)
	if err != nil {
		return doctree.Node{}, kverr.New(kverr.ParseFailure, "failed to parse canonical binary document: %v", err)
	}
	if r.Len() != 0 {
		return doctree.Node{}, kverr.New(kverr.ParseFailure, "trailing bytes after canonical binary document")
	}
	return n, nil
}

func writeVarint(w *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.Write(tmp[:n])
}

func readVarint(r *bytes.Reader) (uint64, error) {
	return binary.ReadUvarint(r)
}

func writeNodeA(w *bytes.Buffer, n doctree.Node) error {
	w.WriteByte(byte(n.Kind))
	switch n.Kind {
	case doctree.KindNull:
		return nil
	case doctree.KindBool:
		if n.Bool {
			w.WriteByte(1)
		} else {
			w.WriteByte(0)
		}
		return nil
	case doctree.KindInt:
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], uint64(n.Int))
		w.Write(tmp[:])
		return nil
	case doctree.KindUint:
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], n.Uint)
		w.Write(tmp[:])
		return nil
	case doctree.KindFloat:
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], math.Float64bits(n.Float))
		w.Write(tmp[:])
		return nil
	case doctree.KindString:
		writeVarint(w, uint64(len(n.Str)))
		w.WriteString(n.Str)
		return nil
	case doctree.KindBinary:
		writeVarint(w, uint64(len(n.Binary)))
		w.Write(n.Binary)
		return nil
	case doctree.KindArray:
		writeVarint(w, uint64(len(n.Array)))
		for _, c := range n.Array {
			if err := writeNodeA(w, c); err != nil {
				return err
			}
		}
		return nil
	case doctree.KindObject:
		keys := n.Object.Keys()
		writeVarint(w, uint64(len(keys)))
		for _, k := range keys {
			writeVarint(w, uint64(len(k)))
			w.WriteString(k)
			v, _ := n.Object.Get(k)
			if err := writeNodeA(w, v); err != nil {
				return err
			}
		}
		return nil
	}
	return kverr.New(kverr.SerializeFailure, "unsupported node kind %v", n.Kind)
}

func readNodeA(r *bytes.Reader) (doctree.Node, error) {
	kindByte, err := r.ReadByte()
	if err != nil {
		return doctree.Node{}, err
	}
	kind := doctree.Kind(kindByte)

	switch kind {
	case doctree.KindNull:
		return doctree.Null(), nil
	case doctree.KindBool:
		b, err := r.ReadByte()
		if err != nil {
			return doctree.Node{}, err
		}
		return doctree.Bool(b != 0), nil
	case doctree.KindInt:
		var tmp [8]byte
		if _, err := r.Read(tmp[:]); err != nil {
			return doctree.Node{}, err
		}
		return doctree.Int(int64(binary.BigEndian.Uint64(tmp[:]))), nil
	case doctree.KindUint:
		var tmp [8]byte
		if _, err := r.Read(tmp[:]); err != nil {
			return doctree.Node{}, err
		}
		return doctree.Uint(binary.BigEndian.Uint64(tmp[:])), nil
	case doctree.KindFloat:
		var tmp [8]byte
		if _, err := r.Read(tmp[:]); err != nil {
			return doctree.Node{}, err
		}
		return doctree.Float(math.Float64frombits(binary.BigEndian.Uint64(tmp[:]))), nil
	case doctree.KindString:
		l, err := readVarint(r)
		if err != nil {
			return doctree.Node{}, err
		}
		buf := make([]byte, l)
		if _, err := r.Read(buf); err != nil {
			return doctree.Node{}, err
		}
		return doctree.String(string(buf)), nil
	case doctree.KindBinary:
		l, err := readVarint(r)
		if err != nil {
			return doctree.Node{}, err
		}
		buf := make([]byte, l)
		if _, err := r.Read(buf); err != nil {
			return doctree.Node{}, err
		}
		return doctree.Bytes(buf), nil
	case doctree.KindArray:
		l, err := readVarint(r)
		if err != nil {
			return doctree.Node{}, err
		}
		arr := make([]doctree.Node, l)
		for i := range arr {
			v, err := readNodeA(r)
			if err != nil {
				return doctree.Node{}, err
			}
			arr[i] = v
		}
		return doctree.NewArray(arr), nil
	case doctree.KindObject:
		l, err := readVarint(r)
		if err != nil {
			return doctree.Node{}, err
		}
		obj := doctree.NewEmptyObject()
		for i := uint64(0); i < l; i++ {
			kl, err := readVarint(r)
			if err != nil {
				return doctree.Node{}, err
			}
			kb := make([]byte, kl)
			if _, err := r.Read(kb); err != nil {
				return doctree.Node{}, err
			}
			v, err := readNodeA(r)
			if err != nil {
				return doctree.Node{}, err
			}
			obj.Set(string(kb), v)
		}
		return doctree.NewObject(obj), nil
	}
	return doctree.Node{}, kverr.New(kverr.ParseFailure, "unknown node kind tag %d", kindByte)
}
