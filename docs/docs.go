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
Package docs is the document engine: path-addressed read/modify/write
over documents stored canonically under substrate.Handle, field
enumeration (Gist), and presence checks (Exists). Typed columnar
extraction lives in columnar.Gather. Every entry point is batched over a
slice of keys - the single-key convenience callers reach for at the
kv.DB layer is a degenerate N=1 call through the same path, never a
separate implementation.
*/
package docs

import (
	"context"
	"sort"

	"github.com/krotik/multikv/doccodec"
	"github.com/krotik/multikv/doctree"
	"github.com/krotik/multikv/substrate"
)

/*
keyDoc pairs a key with its decoded document, used internally by the
read-modify-write batch optimization.
*/
type keyDoc struct {
	key int64
	doc doctree.Node
	ok  bool
}

/*
readDocs loads the canonical document for every distinct key in keys and
returns them sorted by key. If keys arrives strictly ascending and
duplicate-free it is used as is; otherwise the keys are sorted and
deduplicated first, so each distinct key is read once, in ascending key
order, however often the batch repeats it - the read-modify-write
optimization of spec §4.4, built the way the original source's
read_docs/read_unique_docs split the same work (see DESIGN.md). Each
distinct key is still one separate substrate Get; the Handle interface
has no multi-key read, so the batch is not fetched by a single substrate
call.
*/
func readDocs(ctx context.Context, h substrate.Handle, tx substrate.Txn, keys []int64) ([]keyDoc, error) {
	unique := keys
	if !isAscendingUnique(keys) {
		unique = sortedUnique(keys)
	}

	out := make([]keyDoc, len(unique))
	for i, k := range unique {
		raw, ok, err := h.Get(ctx, tx, substrate.EncodeKey(k))
		if err != nil {
			return nil, err
		}
		out[i] = keyDoc{key: k}
		if !ok {
			continue
		}
		doc, err := doccodec.DecodeBinaryA(raw)
		if err != nil {
			return nil, err
		}
		out[i].doc = doc
		out[i].ok = true
	}
	return out, nil
}

func isAscendingUnique(keys []int64) bool {
	for i := 1; i < len(keys); i++ {
		if keys[i] <= keys[i-1] {
			return false
		}
	}
	return true
}

func sortedUnique(keys []int64) []int64 {
	cp := append([]int64(nil), keys...)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })

	out := cp[:0]
	for i, k := range cp {
		if i == 0 || k != out[len(out)-1] {
			out = append(out, k)
		}
	}
	return out
}

/*
lookupDoc finds key's entry in a sorted-unique keyDoc slice via binary
search, scattering the batched read back into caller order.
*/
func lookupDoc(sortedDocs []keyDoc, key int64) (doctree.Node, bool) {
	i := sort.Search(len(sortedDocs), func(i int) bool { return sortedDocs[i].key >= key })
	if i < len(sortedDocs) && sortedDocs[i].key == key {
		return sortedDocs[i].doc, sortedDocs[i].ok
	}
	return doctree.Node{}, false
}

/*
Exists reports, per key, whether a document is stored under it. This is
a presence check, not a read - it goes through Get directly rather than
readDocs, so an existing document is never decoded just to learn that it
is there.
*/
func Exists(ctx context.Context, h substrate.Handle, tx substrate.Txn, keys []int64) ([]bool, error) {
	out := make([]bool, len(keys))
	for i, k := range keys {
		_, ok, err := h.Get(ctx, tx, substrate.EncodeKey(k))
		if err != nil {
			return nil, err
		}
		out[i] = ok
	}
	return out, nil
}
