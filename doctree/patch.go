/*
 * multikv
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package doctree

import "github.com/krotik/multikv/kverr"

/*
PatchOp is one operation of the patch dialect (spec §4.3): a JSON-Patch-
style array-of-operations applied to the addressed subtree. Only the
operations meaningful without an external document-diff tool are
implemented: add, remove, replace, test.
*/
type PatchOp struct {
	Op    string
	Path  string
	Value Node
}

/*
ApplyPatch applies a sequence of patch operations to root, returning the
resulting tree. Parsing failures (an unknown op, or a "test" mismatch)
return a kverr.ParseFailure and leave root untouched - the caller's copy
was never mutated in place, so no partial application is visible.
*/
func ApplyPatch(root Node, ops []PatchOp) (Node, error) {
	result := root.Clone()

	for _, op := range ops {
		p, err := ParsePath(op.Path)
		if err != nil {
			return root, err
		}

		switch op.Op {
		case "add", "replace":
			result = Place(result, p, op.Value)
		case "remove":
			result = Delete(result, p)
		case "test":
			current, ok := Lookup(result, p)
			if !ok || !Equal(current, op.Value) {
				return root, kverr.New(kverr.ParseFailure, "patch test failed at %q", op.Path)
			}
		default:
			return root, kverr.New(kverr.ParseFailure, "unsupported patch op %q", op.Op)
		}
	}

	return result, nil
}

/*
MergePatch applies the merge-patch dialect (RFC 7396 semantics, spec
§4.3): a null leaf in patch removes the matching target field; a non-
object patch replaces target wholesale; an object patch recurses field by
field, adding or overwriting as it goes.
*/
func MergePatch(target, patch Node) Node {
	if patch.Kind != KindObject {
		return patch
	}
	if target.Kind != KindObject || target.Object == nil {
		target = NewObject(NewEmptyObject())
	} else {
		target = target.Clone()
	}

	for _, key := range patch.Object.Keys() {
		pv, _ := patch.Object.Get(key)
		if pv.Kind == KindNull {
			target.Object.Delete(key)
			continue
		}
		tv, _ := target.Object.Get(key)
		target.Object.Set(key, MergePatch(tv, pv))
	}

	return target
}

/*
Equal reports deep structural equality between two nodes, used by the
patch dialect's "test" operation.
*/
func Equal(a, b Node) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindInt:
		return a.Int == b.Int
	case KindUint:
		return a.Uint == b.Uint
	case KindFloat:
		return a.Float == b.Float
	case KindString:
		return a.Str == b.Str
	case KindBinary:
		if len(a.Binary) != len(b.Binary) {
			return false
		}
		for i := range a.Binary {
			if a.Binary[i] != b.Binary[i] {
				return false
			}
		}
		return true
	case KindArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !Equal(a.Array[i], b.Array[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if a.Object.Len() != b.Object.Len() {
			return false
		}
		for _, k := range a.Object.Keys() {
			av, _ := a.Object.Get(k)
			bv, ok := b.Object.Get(k)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}
