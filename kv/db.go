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
Package kv assembles the substrate, document, graph and columnar
engines behind the public batched entry points of spec.md §6.2: one
method on DB per entry point, every strided input validated against its
declared count before any substrate call is made.

Every single-key/single-edge convenience method is a thin N=1 wrapper
over its batched form - there is never a second code path.
*/
package kv

import (
	"context"
	"encoding/binary"

	"github.com/krotik/common/logutil"

	"github.com/krotik/multikv/arena"
	"github.com/krotik/multikv/columnar"
	"github.com/krotik/multikv/docs"
	"github.com/krotik/multikv/doccodec"
	"github.com/krotik/multikv/graph"
	"github.com/krotik/multikv/strided"
	"github.com/krotik/multikv/substrate"
)

/*
Options is the shared option bitmask of spec §6.2, recognized by every
entry point below.
*/
type Options uint8

const (
	OptDefault     Options = 0
	OptTrackReads  Options = 1 << 0
	OptFlushWrites Options = 1 << 1
	OptOnlyLengths Options = 1 << 2
)

var log = logutil.GetLogger("multikv.kv")

/*
DB is the top-level handle onto one substrate.Bridge. It carries no
state of its own beyond the Bridge - every operation is scoped to a
substrate.Handle the caller obtained via CollectionOpen.
*/
type DB struct {
	bridge substrate.Bridge
}

/*
Open wraps an already-constructed substrate.Bridge (memkv.New() or
pebblekv.Open(path)) as a DB.
*/
func Open(bridge substrate.Bridge) *DB {
	return &DB{bridge: bridge}
}

/*
Close releases the underlying substrate.
*/
func (db *DB) Close() error {
	return db.bridge.Close()
}

/*
CollectionOpen implements collection_open (spec §6.2).
*/
func (db *DB) CollectionOpen(ctx context.Context, name string) (substrate.Handle, error) {
	return db.bridge.CollectionOpen(ctx, name)
}

/*
CollectionDrop implements collection_drop (spec §6.2/§6.1).
*/
func (db *DB) CollectionDrop(ctx context.Context, name string, mode substrate.DropMode) error {
	return db.bridge.CollectionDrop(ctx, name, mode)
}

/*
TxnBegin implements txn_begin (spec §6.2).
*/
func (db *DB) TxnBegin(ctx context.Context) (substrate.Txn, error) {
	return db.bridge.TxnBegin(ctx)
}

/*
TxnCommit implements txn_commit (spec §6.2). A nil txn (substrate has no
native transaction support) is a no-op.
*/
func (db *DB) TxnCommit(tx substrate.Txn) error {
	if tx == nil {
		return nil
	}
	return tx.Commit()
}

/*
TxnRollback discards a transaction's buffered writes. Not itself a
spec.md §6.2 entry point, but the only way a caller can recover from a
failed batch mid-transaction.
*/
func (db *DB) TxnRollback(tx substrate.Txn) error {
	if tx == nil {
		return nil
	}
	return tx.Rollback()
}

func encodeLength(n int) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	return buf[:]
}

/*
Read implements read (spec §6.2): fetches the raw stored bytes for each
key verbatim, with no document or graph structure assumed. With
OptOnlyLengths, the tape carries each value's length (8 bytes,
little-endian) instead of the value itself - the substrate has no
length-only fetch, so the value is still read off disk, but only its
length crosses back to the caller.
*/
func (db *DB) Read(ctx context.Context, h substrate.Handle, tx substrate.Txn, count int, keys strided.View[int64], opts Options, tape *arena.Tape) error {
	ks, err := strided.Materialize(keys, count)
	if err != nil {
		return err
	}
	for _, k := range ks {
		raw, ok, err := h.Get(ctx, tx, substrate.EncodeKey(k))
		if err != nil {
			return err
		}
		if !ok {
			tape.Push(nil)
			continue
		}
		if opts&OptOnlyLengths != 0 {
			tape.Push(encodeLength(len(raw)))
			continue
		}
		tape.Push(raw)
	}
	return nil
}

/*
Write implements write (spec §6.2): stores each key's raw byte value
verbatim, or deletes the key if its value is nil. Neither memkv nor
pebblekv need an explicit flush call on OptFlushWrites - pebblekv already
fsyncs every non-transactional write (pebble.Sync) and memkv has no
on-disk state to flush - so the option bit is accepted but has no further
effect here.
*/
func (db *DB) Write(ctx context.Context, h substrate.Handle, tx substrate.Txn, count int, keys strided.View[int64], values strided.View[[]byte], opts Options) error {
	ks, err := strided.Materialize(keys, count)
	if err != nil {
		return err
	}
	vs, err := strided.Materialize(values, count)
	if err != nil {
		return err
	}
	for i, k := range ks {
		if vs[i] == nil {
			if err := h.Delete(ctx, tx, substrate.EncodeKey(k)); err != nil {
				return err
			}
			continue
		}
		if err := h.Set(ctx, tx, substrate.EncodeKey(k), vs[i]); err != nil {
			return err
		}
	}
	return nil
}

/*
Scan implements scan (spec §6.2): visits every key in [start, end) in
ascending order. start or end equal to substrate.UnknownKey leaves that
bound open. Keys pushed onto keysOut are substrate.EncodeKey's sign-flipped
big-endian form - pass them through substrate.DecodeKey to recover the
int64 key.
*/
func (db *DB) Scan(ctx context.Context, h substrate.Handle, tx substrate.Txn, start, end int64, opts Options, keysOut, valuesOut *arena.Tape) error {
	var lower, upper []byte
	if start != substrate.UnknownKey {
		lower = substrate.EncodeKey(start)
	}
	if end != substrate.UnknownKey {
		upper = substrate.EncodeKey(end)
	}

	return h.Scan(ctx, tx, lower, upper, func(key, value []byte) bool {
		keysOut.Push(key)
		if opts&OptOnlyLengths != 0 {
			valuesOut.Push(encodeLength(len(value)))
		} else {
			valuesOut.Push(value)
		}
		return true
	})
}

/*
DocsRead implements docs_read (spec §4.4/§6.2).
*/
func (db *DB) DocsRead(ctx context.Context, h substrate.Handle, tx substrate.Txn, count int, keys strided.View[int64], fields strided.View[string], format doccodec.Format, opts Options, tape *arena.Tape) error {
	ks, err := strided.Materialize(keys, count)
	if err != nil {
		return err
	}
	fs, err := strided.Materialize(fields, count)
	if err != nil {
		return err
	}
	return docs.Read(ctx, h, tx, ks, fs, format, tape)
}

/*
DocsReadOne is the N=1 convenience form of DocsRead.
*/
func (db *DB) DocsReadOne(ctx context.Context, h substrate.Handle, tx substrate.Txn, key int64, field string, format doccodec.Format, tape *arena.Tape) error {
	return db.DocsRead(ctx, h, tx, 1, strided.Broadcast(key), strided.Broadcast(field), format, OptDefault, tape)
}

/*
DocsWrite implements docs_write (spec §4.4/§6.2). Unlike Read/Write,
each request already bundles its own key/field/format, so the batch is a
plain slice rather than parallel strided columns.
*/
func (db *DB) DocsWrite(ctx context.Context, h substrate.Handle, tx substrate.Txn, reqs []docs.WriteRequest, opts Options) error {
	if err := docs.Write(ctx, h, tx, reqs); err != nil {
		log.Error("docs_write failed: ", err)
		return err
	}
	return nil
}

/*
DocsWriteOne is the N=1 convenience form of DocsWrite.
*/
func (db *DB) DocsWriteOne(ctx context.Context, h substrate.Handle, tx substrate.Txn, req docs.WriteRequest) error {
	return db.DocsWrite(ctx, h, tx, []docs.WriteRequest{req}, OptDefault)
}

/*
DocsGist implements docs_gist (spec §4.4/§6.2).
*/
func (db *DB) DocsGist(ctx context.Context, h substrate.Handle, tx substrate.Txn, keys []int64, tape *arena.Tape) error {
	return docs.Gist(ctx, h, tx, keys, tape)
}

/*
DocsGather implements docs_gather (spec §4.8/§6.2).
*/
func (db *DB) DocsGather(ctx context.Context, h substrate.Handle, tx substrate.Txn, keys []int64, reqs []columnar.Request) ([]columnar.Column, error) {
	return columnar.Gather(ctx, h, tx, keys, reqs)
}

/*
DocsExists is a batched existence check, routed through docs.Exists
(spec §9's present()-style supplement).
*/
func (db *DB) DocsExists(ctx context.Context, h substrate.Handle, tx substrate.Txn, keys []int64) ([]bool, error) {
	return docs.Exists(ctx, h, tx, keys)
}

/*
GraphUpsertEdges implements graph_upsert_edges (spec §4.5/§6.2).
*/
func (db *DB) GraphUpsertEdges(ctx context.Context, h substrate.Handle, tx substrate.Txn, edges []graph.Edge) error {
	return graph.UpsertEdges(ctx, h, tx, edges)
}

/*
GraphUpsertEdge is the N=1 convenience form of GraphUpsertEdges.
*/
func (db *DB) GraphUpsertEdge(ctx context.Context, h substrate.Handle, tx substrate.Txn, e graph.Edge) error {
	return graph.UpsertEdge(ctx, h, tx, e)
}

/*
GraphRemoveEdges implements graph_remove_edges (spec §4.5/§6.2).
*/
func (db *DB) GraphRemoveEdges(ctx context.Context, h substrate.Handle, tx substrate.Txn, edges []graph.Edge) error {
	return graph.RemoveEdges(ctx, h, tx, edges)
}

/*
GraphRemoveVertices implements graph_remove_vertices (spec §4.5/§6.2).
*/
func (db *DB) GraphRemoveVertices(ctx context.Context, h substrate.Handle, tx substrate.Txn, vertices []int64, roles graph.RoleFilter) error {
	return graph.RemoveVertices(ctx, h, tx, vertices, roles)
}

/*
GraphFindEdges implements graph_find_edges (spec §4.5/§6.2).
*/
func (db *DB) GraphFindEdges(ctx context.Context, h substrate.Handle, tx substrate.Txn, vertices []int64, roles graph.RoleFilter, onlyLengths bool, degrees, neighbors *arena.Tape) error {
	return graph.FindEdges(ctx, h, tx, vertices, roles, onlyLengths, degrees, neighbors)
}

/*
GraphContains is a batched existence check over vertices (spec §9's
present()-style supplement).
*/
func (db *DB) GraphContains(ctx context.Context, h substrate.Handle, tx substrate.Txn, vertices []int64) ([]bool, error) {
	return graph.Contains(ctx, h, tx, vertices)
}
