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
Package memkv is an in-memory substrate.Bridge with the same error
injection facility the teacher's own in-memory storage manager uses for
testing failure paths (see DESIGN.md): a caller can mark a specific key
to fail its next Get, Set or Delete, without needing a real faulty disk
to exercise the substrate-failure error path above it.
*/
package memkv

import (
	"context"
	"sort"
	"sync"

	"github.com/krotik/multikv/kverr"
	"github.com/krotik/multikv/substrate"
)

// AccessFailGet, AccessFailSet and AccessFailDel mark which operation
// should fail the next time it touches an injected key.
const (
	AccessFailGet = 1
	AccessFailSet = 2
	AccessFailDel = 3
)

/*
Bridge is an in-memory substrate.Bridge, safe for concurrent use.
*/
type Bridge struct {
	mu          sync.Mutex
	collections map[string]*collection
}

type collection struct {
	mu     sync.Mutex
	data   map[string][]byte
	access map[string]int
}

/*
New creates an empty in-memory bridge.
*/
func New() *Bridge {
	return &Bridge{collections: make(map[string]*collection)}
}

func (b *Bridge) CollectionOpen(ctx context.Context, name string) (substrate.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.collections[name]
	if !ok {
		c = &collection{data: make(map[string][]byte), access: make(map[string]int)}
		b.collections[name] = c
	}
	return &handle{name: name, col: c}, nil
}

func (b *Bridge) CollectionDrop(ctx context.Context, name string, mode substrate.DropMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.collections[name]
	if !ok {
		return kverr.New(kverr.BadArgument, "collection %q is not open", name)
	}

	if mode == substrate.DropCollection {
		delete(b.collections, name)
		return nil
	}

	c.mu.Lock()
	c.data = make(map[string][]byte)
	c.mu.Unlock()
	return nil
}

func (b *Bridge) TxnBegin(ctx context.Context) (substrate.Txn, error) {
	// The in-memory bridge has no WAL or snapshot isolation to speak of;
	// every Set/Delete is already atomic against the collection mutex, so
	// a transaction here is a no-op grouping.
	return noopTxn{}, nil
}

func (b *Bridge) Close() error {
	return nil
}

/*
InjectFailure marks key in the named, already-open collection to fail its
next get/set/delete with a substrate-failure error.
*/
func (b *Bridge) InjectFailure(name, key string, mode int) {
	b.mu.Lock()
	c, ok := b.collections[name]
	b.mu.Unlock()
	if !ok {
		return
	}
	c.mu.Lock()
	c.access[key] = mode
	c.mu.Unlock()
}

type noopTxn struct{}

func (noopTxn) Commit() error   { return nil }
func (noopTxn) Rollback() error { return nil }

type handle struct {
	name string
	col  *collection
}

func (h *handle) Name() string { return h.name }

func (h *handle) Get(ctx context.Context, txn substrate.Txn, key []byte) ([]byte, bool, error) {
	h.col.mu.Lock()
	defer h.col.mu.Unlock()

	k := string(key)
	if h.col.access[k] == AccessFailGet {
		delete(h.col.access, k)
		return nil, false, kverr.New(kverr.SubstrateFailure, "injected get failure for key %q", k)
	}
	v, ok := h.col.data[k]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (h *handle) Set(ctx context.Context, txn substrate.Txn, key, value []byte) error {
	h.col.mu.Lock()
	defer h.col.mu.Unlock()

	k := string(key)
	if h.col.access[k] == AccessFailSet {
		delete(h.col.access, k)
		return kverr.New(kverr.SubstrateFailure, "injected set failure for key %q", k)
	}
	v := make([]byte, len(value))
	copy(v, value)
	h.col.data[k] = v
	return nil
}

func (h *handle) Delete(ctx context.Context, txn substrate.Txn, key []byte) error {
	h.col.mu.Lock()
	defer h.col.mu.Unlock()

	k := string(key)
	if h.col.access[k] == AccessFailDel {
		delete(h.col.access, k)
		return kverr.New(kverr.SubstrateFailure, "injected delete failure for key %q", k)
	}
	delete(h.col.data, k)
	return nil
}

func (h *handle) Scan(ctx context.Context, txn substrate.Txn, start, end []byte, fn func(key, value []byte) bool) error {
	h.col.mu.Lock()
	keys := make([]string, 0, len(h.col.data))
	for k := range h.col.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	type kv struct {
		k string
		v []byte
	}
	var snapshot []kv
	for _, k := range keys {
		if string(start) != "" && k < string(start) {
			continue
		}
		if len(end) != 0 && k >= string(end) {
			continue
		}
		snapshot = append(snapshot, kv{k, h.col.data[k]})
	}
	h.col.mu.Unlock()

	for _, e := range snapshot {
		if !fn([]byte(e.k), e.v) {
			break
		}
	}
	return nil
}
