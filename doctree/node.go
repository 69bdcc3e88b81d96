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
Package doctree implements the schema-free document tree that every
document stored through the document layer is canonicalized to: a tagged
union over null, bool, signed integer, unsigned integer, float, string,
binary, ordered sequence, and ordered mapping from string to node.

Documents are trees, not graphs - there is no cyclic reference machinery
here on purpose, unlike a node/edge structure in the graph layer.
*/
package doctree

/*
Kind tags which of the seven primitive kinds, or object/array, a Node
holds.
*/
type Kind uint8

/*
The nine node kinds of the document model.
*/
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindBinary
	KindArray
	KindObject
)

/*
String gives a short lower-case name for a Kind, used in collision and
parse-failure messages.
*/
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "unknown"
}

/*
Node is one node of a document tree. Only the fields relevant to Kind are
meaningful; the zero Node is KindNull.
*/
type Node struct {
	Kind Kind

	Bool   bool
	Int    int64
	Uint   uint64
	Float  float64
	Str    string
	Binary []byte
	Array  []Node
	Object *Object
}

/*
Null returns the null node.
*/
func Null() Node { return Node{Kind: KindNull} }

/*
Bool wraps a bool value.
*/
func Bool(v bool) Node { return Node{Kind: KindBool, Bool: v} }

/*
Int wraps a signed integer value.
*/
func Int(v int64) Node { return Node{Kind: KindInt, Int: v} }

/*
Uint wraps an unsigned integer value.
*/
func Uint(v uint64) Node { return Node{Kind: KindUint, Uint: v} }

/*
Float wraps a float value.
*/
func Float(v float64) Node { return Node{Kind: KindFloat, Float: v} }

/*
String wraps a string value.
*/
func String(v string) Node { return Node{Kind: KindString, Str: v} }

/*
Bytes wraps a binary payload.
*/
func Bytes(v []byte) Node { return Node{Kind: KindBinary, Binary: v} }

/*
NewArray wraps an ordered sequence of nodes.
*/
func NewArray(v []Node) Node { return Node{Kind: KindArray, Array: v} }

/*
NewObject wraps an ordered mapping of nodes.
*/
func NewObject(o *Object) Node { return Node{Kind: KindObject, Object: o} }

/*
IsNull reports whether this node is the null node (the default value for
a node that was never populated).
*/
func (n Node) IsNull() bool { return n.Kind == KindNull }

/*
Object is an ordered string-keyed mapping from field name to Node. Field
order is the order fields were first set, matching how a parsed JSON
object preserves source order.
*/
type Object struct {
	keys   []string
	values map[string]Node
}

/*
NewEmptyObject creates an Object with no fields.
*/
func NewEmptyObject() *Object {
	return &Object{values: make(map[string]Node)}
}

/*
Get returns the node stored at key and whether it was present.
*/
func (o *Object) Get(key string) (Node, bool) {
	if o == nil {
		return Node{}, false
	}
	v, ok := o.values[key]
	return v, ok
}

/*
Set stores a node at key, preserving insertion order for new keys and
leaving existing order untouched for updates.
*/
func (o *Object) Set(key string, value Node) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

/*
Delete removes a key, if present.
*/
func (o *Object) Delete(key string) {
	if _, exists := o.values[key]; !exists {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

/*
Keys returns the fields in insertion order.
*/
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return o.keys
}

/*
Len reports the number of fields.
*/
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

/*
Clone produces a deep copy of the node tree, used before a read-modify-
write mutation so the caller's cached copy (if any) is never aliased by
an in-place edit.
*/
func (n Node) Clone() Node {
	switch n.Kind {
	case KindBinary:
		cp := make([]byte, len(n.Binary))
		copy(cp, n.Binary)
		n.Binary = cp
	case KindArray:
		cp := make([]Node, len(n.Array))
		for i, c := range n.Array {
			cp[i] = c.Clone()
		}
		n.Array = cp
	case KindObject:
		if n.Object != nil {
			o := NewEmptyObject()
			for _, k := range n.Object.Keys() {
				v, _ := n.Object.Get(k)
				o.Set(k, v.Clone())
			}
			n.Object = o
		}
	}
	return n
}
