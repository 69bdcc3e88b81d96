/*
 * multikv
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package docs

import (
	"context"

	"github.com/krotik/multikv/arena"
	"github.com/krotik/multikv/doccodec"
	"github.com/krotik/multikv/doctree"
	"github.com/krotik/multikv/substrate"
)

/*
Read implements docs_read (spec §4.4): for each (key, field) pair, fetch
the stored canonical tree, descend to field (an empty field selects the
whole document), and re-serialize in format. A missing key or missing
field both push a nil entry onto tape - not-found is never an error.
Textual-tree output is null-terminated; the binary formats are not. The
patch dialects have no tree encoding, so reading in one of them fails
with the bad-argument error from doccodec.Encode.
*/
func Read(ctx context.Context, h substrate.Handle, tx substrate.Txn, keys []int64, fields []string, format doccodec.Format, tape *arena.Tape) error {
	sortedDocs, err := readDocs(ctx, h, tx, keys)
	if err != nil {
		return err
	}

	for i, key := range keys {
		doc, ok := lookupDoc(sortedDocs, key)
		if !ok {
			tape.Push(nil)
			continue
		}

		node := doc
		if fields[i] != "" {
			p, err := doctree.ParsePath(fields[i])
			if err != nil {
				return err
			}
			node, ok = doctree.Lookup(doc, p)
			if !ok {
				tape.Push(nil)
				continue
			}
		}

		encoded, err := doccodec.Encode(node, format)
		if err != nil {
			return err
		}
		if format.IsNullTerminated() {
			encoded = append(encoded, 0)
		}
		tape.Push(encoded)
	}
	return nil
}

/*
Gist implements docs_gist (spec §4.4): the union of every field path
occurring in any document of the batch, order unspecified, pushed onto
tape as null-terminated strings. Objects and leaves sharing the same
path are not distinguished - the original source's flatten pass treats
them as one path string (an explicit spec open question, resolved by
following the source; see DESIGN.md).
*/
func Gist(ctx context.Context, h substrate.Handle, tx substrate.Txn, keys []int64, tape *arena.Tape) error {
	sortedDocs, err := readDocs(ctx, h, tx, keys)
	if err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, kd := range sortedDocs {
		if !kd.ok {
			continue
		}
		for path := range doctree.Flatten(kd.doc) {
			seen[path] = true
		}
	}

	for path := range seen {
		tape.Push(append([]byte(path), 0))
	}
	return nil
}
