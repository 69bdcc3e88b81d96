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

	"github.com/krotik/multikv/doccodec"
	"github.com/krotik/multikv/doctree"
	"github.com/krotik/multikv/substrate"
)

/*
WriteRequest is one entry of a docs_write batch: the target key, an
optional field path (empty selects the whole document), the encoding
contents is supplied in, and the raw bytes themselves. A nil Content
with the non-patch formats deletes whatever the field/document
addresses.
*/
type WriteRequest struct {
	Key     int64
	Field   string
	Format  doccodec.Format
	Content []byte
}

/*
Write implements docs_write (spec §4.4), dispatching each request to one
of its four modes:

 1. no field, canonical format -> pass the bytes straight to the
    substrate write.
 2. no field, other format -> parse Content in Format, re-encode
    canonically, write.
 3. field present, plain format -> read-modify-write: load the stored
    document, place the parsed value at the field path (creating
    intermediate objects as needed), re-encode, write.
 4. format is the patch or merge-patch dialect -> load the stored
    document, apply the dialect at the addressed subtree, re-encode,
    write.

Every request in the batch is validated and resolved before any write
reaches the substrate, so a request that fails to parse or resolve
leaves no earlier request's write applied either. A substrate error in
the final write loop returns at once; the writes issued before it are
not undone here.
*/
func Write(ctx context.Context, h substrate.Handle, tx substrate.Txn, reqs []WriteRequest) error {
	keys := make([]int64, len(reqs))
	for i, r := range reqs {
		keys[i] = r.Key
	}

	needsExisting := make([]int64, 0, len(reqs))
	for i, r := range reqs {
		if r.Field != "" || r.Format.IsPatchDialect() {
			needsExisting = append(needsExisting, keys[i])
		}
	}

	var existing []keyDoc
	if len(needsExisting) > 0 {
		var err error
		existing, err = readDocs(ctx, h, tx, needsExisting)
		if err != nil {
			return err
		}
	}

	resolved := make([]resolvedWrite, len(reqs))
	for i, r := range reqs {
		rw, err := resolveWrite(r, existing)
		if err != nil {
			return err
		}
		resolved[i] = rw
	}

	for _, rw := range resolved {
		if rw.delete {
			if err := h.Delete(ctx, tx, substrate.EncodeKey(rw.key)); err != nil {
				return err
			}
			continue
		}
		if err := h.Set(ctx, tx, substrate.EncodeKey(rw.key), rw.encoded); err != nil {
			return err
		}
	}
	return nil
}

type resolvedWrite struct {
	key     int64
	encoded []byte
	delete  bool
}

func resolveWrite(r WriteRequest, existing []keyDoc) (resolvedWrite, error) {
	switch {
	case r.Field == "" && r.Format == doccodec.FormatBinaryA:
		// Mode 1: pass-through. A nil content deletes the key outright.
		if r.Content == nil {
			return resolvedWrite{key: r.Key, delete: true}, nil
		}
		return resolvedWrite{key: r.Key, encoded: r.Content}, nil

	case r.Field == "" && !r.Format.IsPatchDialect():
		// Mode 2: parse in Format, re-encode canonically.
		if r.Content == nil {
			return resolvedWrite{key: r.Key, delete: true}, nil
		}
		doc, err := doccodec.Decode(r.Content, r.Format)
		if err != nil {
			return resolvedWrite{}, err
		}
		encoded, err := doccodec.EncodeBinaryA(doc)
		if err != nil {
			return resolvedWrite{}, err
		}
		return resolvedWrite{key: r.Key, encoded: encoded}, nil

	case r.Format.IsPatchDialect():
		// Mode 4: apply the patch/merge-patch dialect at the addressed
		// subtree of the stored document (an absent document starts from
		// an empty object).
		doc, _ := lookupDoc(existing, r.Key)
		if r.Field != "" {
			p, err := doctree.ParsePath(r.Field)
			if err != nil {
				return resolvedWrite{}, err
			}
			sub, ok := doctree.Lookup(doc, p)
			if !ok {
				sub = doctree.Null()
			}
			patched, err := applyDialect(sub, r.Format, r.Content)
			if err != nil {
				return resolvedWrite{}, err
			}
			doc = doctree.Place(doc, p, patched)
		} else {
			patched, err := applyDialect(doc, r.Format, r.Content)
			if err != nil {
				return resolvedWrite{}, err
			}
			doc = patched
		}
		encoded, err := doccodec.EncodeBinaryA(doc)
		if err != nil {
			return resolvedWrite{}, err
		}
		return resolvedWrite{key: r.Key, encoded: encoded}, nil

	default:
		// Mode 3: read-modify-write at a field path.
		doc, _ := lookupDoc(existing, r.Key)

		p, err := doctree.ParsePath(r.Field)
		if err != nil {
			return resolvedWrite{}, err
		}

		if r.Content == nil {
			doc = doctree.Delete(doc, p)
			encoded, err := doccodec.EncodeBinaryA(doc)
			if err != nil {
				return resolvedWrite{}, err
			}
			return resolvedWrite{key: r.Key, encoded: encoded}, nil
		}

		value, err := doccodec.Decode(r.Content, r.Format)
		if err != nil {
			return resolvedWrite{}, err
		}
		doc = doctree.Place(doc, p, value)
		encoded, err := doccodec.EncodeBinaryA(doc)
		if err != nil {
			return resolvedWrite{}, err
		}
		return resolvedWrite{key: r.Key, encoded: encoded}, nil
	}
}

func applyDialect(target doctree.Node, format doccodec.Format, content []byte) (doctree.Node, error) {
	if format == doccodec.FormatJSONMergePatch {
		patch, err := doccodec.DecodeMergePatch(content)
		if err != nil {
			return doctree.Node{}, err
		}
		return doctree.MergePatch(target, patch), nil
	}

	ops, err := doccodec.DecodePatchOps(content)
	if err != nil {
		return doctree.Node{}, err
	}
	return doctree.ApplyPatch(target, ops)
}
