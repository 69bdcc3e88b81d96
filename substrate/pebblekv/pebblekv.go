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
Package pebblekv is the production substrate.Bridge, backed by
cockroachdb/pebble (see DESIGN.md for why this is the one substrate
dependency carried over from the rest of the retrieved pack rather than
the teacher's own hand-rolled page store). Pebble keeps one flat ordered
keyspace, so collections are namespaced with a length-prefixed prefix
byte string that sorts collection-contiguously and cannot collide with a
prefix of another collection's name.
*/
package pebblekv

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/krotik/multikv/kverr"
	"github.com/krotik/multikv/substrate"
)

/*
reader is satisfied by both *pebble.DB and *pebble.Batch (pebble.Reader),
letting Get and Scan run against either the live database or an
uncommitted transaction's buffered writes.
*/
type reader = pebble.Reader

/*
Bridge is a pebble-backed substrate.Bridge.
*/
type Bridge struct {
	db     *pebble.DB
	mu     sync.RWMutex
	closed bool
}

/*
Open opens (creating if absent) a pebble store at path, sized the way
the closest example in the retrieved pack sizes its own pebble store.
*/
func Open(path string) (*Bridge, error) {
	opts := &pebble.Options{
		Cache:        pebble.NewCache(64 * 1024 * 1024),
		MemTableSize: 32 * 1024 * 1024,
	}

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, kverr.New(kverr.SubstrateFailure, "failed to open pebble store at %q: %v", path, err)
	}
	return &Bridge{db: db}, nil
}

func collectionPrefix(name string) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], uint16(len(name)))
	prefix := make([]byte, 0, 2+len(name))
	prefix = append(prefix, tmp[:]...)
	prefix = append(prefix, name...)
	return prefix
}

func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil // prefix is all 0xff: unbounded upper end
}

func (b *Bridge) CollectionOpen(ctx context.Context, name string) (substrate.Handle, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, kverr.New(kverr.ClosedHandle, "substrate is closed")
	}
	return &handle{name: name, prefix: collectionPrefix(name), bridge: b}, nil
}

func (b *Bridge) CollectionDrop(ctx context.Context, name string, mode substrate.DropMode) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return kverr.New(kverr.ClosedHandle, "substrate is closed")
	}

	prefix := collectionPrefix(name)
	end := prefixEnd(prefix)
	if err := b.db.DeleteRange(prefix, end, pebble.Sync); err != nil {
		return kverr.New(kverr.SubstrateFailure, "failed to drop collection %q: %v", name, err)
	}
	return nil
}

func (b *Bridge) TxnBegin(ctx context.Context) (substrate.Txn, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, kverr.New(kverr.ClosedHandle, "substrate is closed")
	}
	return &txn{batch: b.db.NewIndexedBatch()}, nil
}

func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if err := b.db.Close(); err != nil {
		return kverr.New(kverr.SubstrateFailure, "failed to close pebble store: %v", err)
	}
	return nil
}

type txn struct {
	batch *pebble.Batch
}

func (t *txn) Commit() error {
	if err := t.batch.Commit(pebble.Sync); err != nil {
		return kverr.New(kverr.SubstrateFailure, "failed to commit transaction: %v", err)
	}
	return nil
}

func (t *txn) Rollback() error {
	return t.batch.Close()
}

type handle struct {
	name   string
	prefix []byte
	bridge *Bridge
}

func (h *handle) Name() string { return h.name }

func (h *handle) fullKey(key []byte) []byte {
	out := make([]byte, 0, len(h.prefix)+len(key))
	out = append(out, h.prefix...)
	out = append(out, key...)
	return out
}

func (h *handle) Get(ctx context.Context, tx substrate.Txn, key []byte) ([]byte, bool, error) {
	reader := h.reader(tx)
	value, closer, err := reader.Get(h.fullKey(key))
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, kverr.New(kverr.SubstrateFailure, "failed to read key: %v", err)
	}
	defer closer.Close()

	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (h *handle) Set(ctx context.Context, tx substrate.Txn, key, value []byte) error {
	if t, ok := tx.(*txn); ok {
		if err := t.batch.Set(h.fullKey(key), value, nil); err != nil {
			return kverr.New(kverr.SubstrateFailure, "failed to buffer write: %v", err)
		}
		return nil
	}
	if err := h.bridge.db.Set(h.fullKey(key), value, pebble.Sync); err != nil {
		return kverr.New(kverr.SubstrateFailure, "failed to write key: %v", err)
	}
	return nil
}

func (h *handle) Delete(ctx context.Context, tx substrate.Txn, key []byte) error {
	if t, ok := tx.(*txn); ok {
		if err := t.batch.Delete(h.fullKey(key), nil); err != nil {
			return kverr.New(kverr.SubstrateFailure, "failed to buffer delete: %v", err)
		}
		return nil
	}
	if err := h.bridge.db.Delete(h.fullKey(key), pebble.Sync); err != nil {
		return kverr.New(kverr.SubstrateFailure, "failed to delete key: %v", err)
	}
	return nil
}

func (h *handle) Scan(ctx context.Context, tx substrate.Txn, start, end []byte, fn func(key, value []byte) bool) error {
	lower := h.fullKey(start)
	var upper []byte
	if len(end) == 0 {
		upper = prefixEnd(h.prefix)
	} else {
		upper = h.fullKey(end)
	}

	iter, err := h.reader(tx).NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return kverr.New(kverr.SubstrateFailure, "failed to create scan iterator: %v", err)
	}
	defer iter.Close()

	for valid := iter.First(); valid; valid = iter.Next() {
		k := iter.Key()
		relKey := make([]byte, len(k)-len(h.prefix))
		copy(relKey, k[len(h.prefix):])

		v, err := iter.ValueAndErr()
		if err != nil {
			return kverr.New(kverr.SubstrateFailure, "failed to read scanned value: %v", err)
		}
		value := make([]byte, len(v))
		copy(value, v)

		if !fn(relKey, value) {
			break
		}
	}
	return nil
}

func (h *handle) reader(tx substrate.Txn) reader {
	if t, ok := tx.(*txn); ok {
		return t.batch
	}
	return h.bridge.db
}
