/*
 * multikv
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package doccodec implements import/export between doctree.Node and the
external encodings enumerated in spec §4.3: a textual tree (JSON), four
binary tree encodings (A, the canonical one, plus B, C and D), a patch dialect, a merge-patch dialect, and a raw
binary passthrough.

No library in the retrieved example pack provides a JSON decoder that
preserves object key order while also unmarshaling into a fully dynamic,
schema-free tree (see DESIGN.md); decoding walks encoding/json's token
stream by hand to keep that order, which is the one property a
map[string]interface{}-based json.Unmarshal call would throw away.
*/
package doccodec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/krotik/multikv/doctree"
	"github.com/krotik/multikv/kverr"
)

/*
Format identifies one of the external encodings an entry point can be
asked to import from or export to.
*/
type Format int

/*
The encodings of spec §4.3, plus the two patch dialects kept as distinct
formats since they drive a different write path (read-modify-write
instead of replace) in the document engine.
*/
const (
	FormatJSON Format = iota
	FormatBinaryA
	FormatBinaryB
	FormatBinaryC
	FormatBinaryD
	FormatJSONPatch
	FormatJSONMergePatch
	FormatRaw
)

/*
IsPatchDialect reports whether this format addresses a subtree via a
patch/merge-patch operation rather than a plain replace.
*/
func (f Format) IsPatchDialect() bool {
	return f == FormatJSONPatch || f == FormatJSONMergePatch
}

/*
IsNullTerminated reports whether output in this format is NUL-terminated:
true for the textual tree and the patch dialects, false for the binary
encodings. Encode itself never appends the NUL; docs.Read does, for the
formats this reports true for.
*/
func (f Format) IsNullTerminated() bool {
	return f == FormatJSON || f == FormatJSONPatch || f == FormatJSONMergePatch
}

/*
DecodeJSON parses a JSON document into a doctree.Node, preserving object
key order by walking the token stream directly instead of going through
json.Unmarshal into a map.
*/
func DecodeJSON(data []byte) (doctree.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	node, err := decodeValue(dec)
	if err != nil {
		return doctree.Node{}, kverr.New(kverr.ParseFailure, "failed to parse JSON document: %v", err)
	}

	// Reject trailing garbage - a partial parse is a parse failure, not a
	// best-effort prefix result.
	if dec.More() {
		return doctree.Node{}, kverr.New(kverr.ParseFailure, "trailing data after JSON document")
	}

	return node, nil
}

func decodeValue(dec *json.Decoder) (doctree.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return doctree.Node{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (doctree.Node, error) {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return doctree.Node{}, fmt.Errorf("unexpected delimiter %q", v)
		}
	case nil:
		return doctree.Null(), nil
	case bool:
		return doctree.Bool(v), nil
	case string:
		return doctree.String(v), nil
	case json.Number:
		return decodeNumber(v)
	default:
		return doctree.Node{}, fmt.Errorf("unexpected JSON token %T", tok)
	}
}

func decodeNumber(n json.Number) (doctree.Node, error) {
	if i, err := n.Int64(); err == nil {
		return doctree.Int(i), nil
	}
	if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
		return doctree.Uint(u), nil
	}
	f, err := n.Float64()
	if err != nil {
		return doctree.Node{}, err
	}
	return doctree.Float(f), nil
}

func decodeObject(dec *json.Decoder) (doctree.Node, error) {
	obj := doctree.NewEmptyObject()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return doctree.Node{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return doctree.Node{}, fmt.Errorf("expected object key, got %T", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return doctree.Node{}, err
		}
		obj.Set(key, val)
	}
	// Consume the closing '}'.
	if _, err := dec.Token(); err != nil {
		return doctree.Node{}, err
	}
	return doctree.NewObject(obj), nil
}

func decodeArray(dec *json.Decoder) (doctree.Node, error) {
	var arr []doctree.Node
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return doctree.Node{}, err
		}
		arr = append(arr, val)
	}
	if _, err := dec.Token(); err != nil {
		return doctree.Node{}, err
	}
	return doctree.NewArray(arr), nil
}

/*
EncodeJSON renders a doctree.Node as JSON text, preserving object field
order. Strings go through encoding/json.Marshal for correct escaping;
integers and floats are formatted with strconv (floats in 'f' notation).
A binary leaf is written as a base64 string, which DecodeJSON reads back
as a string, not as binary.
*/
func EncodeJSON(w io.Writer, n doctree.Node) error {
	buf := bufEncoder{w: w}
	if err := buf.encode(n); err != nil {
		return kverr.New(kverr.SerializeFailure, "failed to serialize document as JSON: %v", err)
	}
	return nil
}

type bufEncoder struct {
	w io.Writer
}

func (b *bufEncoder) write(s string) error {
	_, err := io.WriteString(b.w, s)
	return err
}

func (b *bufEncoder) encode(n doctree.Node) error {
	switch n.Kind {
	case doctree.KindNull:
		return b.write("null")
	case doctree.KindBool:
		if n.Bool {
			return b.write("true")
		}
		return b.write("false")
	case doctree.KindInt:
		return b.write(strconv.FormatInt(n.Int, 10))
	case doctree.KindUint:
		return b.write(strconv.FormatUint(n.Uint, 10))
	case doctree.KindFloat:
		return b.write(strconv.FormatFloat(n.Float, 'f', -1, 64))
	case doctree.KindString:
		raw, err := json.Marshal(n.Str)
		if err != nil {
			return err
		}
		return b.write(string(raw))
	case doctree.KindBinary:
		raw, err := json.Marshal(n.Binary)
		if err != nil {
			return err
		}
		return b.write(string(raw))
	case doctree.KindArray:
		if err := b.write("["); err != nil {
			return err
		}
		for i, c := range n.Array {
			if i > 0 {
				if err := b.write(","); err != nil {
					return err
				}
			}
			if err := b.encode(c); err != nil {
				return err
			}
		}
		return b.write("]")
	case doctree.KindObject:
		if err := b.write("{"); err != nil {
			return err
		}
		for i, k := range n.Object.Keys() {
			if i > 0 {
				if err := b.write(","); err != nil {
					return err
				}
			}
			key, err := json.Marshal(k)
			if err != nil {
				return err
			}
			if err := b.write(string(key) + ":"); err != nil {
				return err
			}
			v, _ := n.Object.Get(k)
			if err := b.encode(v); err != nil {
				return err
			}
		}
		return b.write("}")
	}
	return fmt.Errorf("unsupported node kind %v", n.Kind)
}
