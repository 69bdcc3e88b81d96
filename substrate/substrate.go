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
Package substrate is the ordered binary key-value collaborator every
other module in the engine is built on top of - raw bytes in, raw bytes
out, nothing above the byte-string level. It is deliberately the
narrowest interface in the repo: a Bridge only has to support get, set,
delete, range scan and transactions over []byte keys and values, exactly
the contract the document and graph engines compose into their own
richer operations.
*/
package substrate

import "context"

/*
DropMode selects what CollectionDrop clears.
*/
type DropMode int

const (
	// DropClearValues removes every key-value pair but keeps the
	// collection itself open for further writes.
	DropClearValues DropMode = iota
	// DropClearKeys is an alias kept distinct from DropClearValues at the
	// call site for readability - both clear the same underlying range.
	DropClearKeys
	// DropCollection removes the collection's keyspace entirely. memkv
	// also forgets the collection, so a later CollectionDrop of the same
	// name fails with a bad-argument error until it is opened again;
	// pebblekv keeps no per-collection state and clears the same range as
	// the other two modes.
	DropCollection
)

/*
Bridge is the storage contract the document and graph engines are built
on. A Bridge implementation owns durability and ordering; everything
above it only ever deals in collection-scoped byte keys and byte values.
*/
type Bridge interface {
	/*
		CollectionOpen creates the named collection if it does not already
		exist and returns a Handle for it. Idempotent.
	*/
	CollectionOpen(ctx context.Context, name string) (Handle, error)

	/*
		CollectionDrop removes a collection's contents per mode, or the whole
		collection with DropCollection.
	*/
	CollectionDrop(ctx context.Context, name string, mode DropMode) error

	/*
		TxnBegin starts a new transaction. A nil Txn means the substrate has
		no native transaction support and every call below runs as its own
		atomic unit - callers above this interface must tolerate that.
	*/
	TxnBegin(ctx context.Context) (Txn, error)

	/*
		Close releases any resources the Bridge holds open.
	*/
	Close() error
}

/*
Txn groups a sequence of writes for atomic commit or rollback. A Txn is
single-owner: it must not be used by two goroutines at once.
*/
type Txn interface {
	Commit() error
	Rollback() error
}

/*
Handle is a collection-scoped view into a Bridge: every key passed to its
methods is implicitly namespaced to this collection.
*/
type Handle interface {
	/*
		Get returns the stored value for key, or nil with ok=false if the
		key is absent. Absence is never an error (spec's flat error
		taxonomy has no not-found kind).
	*/
	Get(ctx context.Context, txn Txn, key []byte) (value []byte, ok bool, err error)

	/*
		Set writes key to value, creating or overwriting it.
	*/
	Set(ctx context.Context, txn Txn, key, value []byte) error

	/*
		Delete removes key. A missing key is a no-op, not an error.
	*/
	Delete(ctx context.Context, txn Txn, key []byte) error

	/*
		Scan visits every key in [start, end) in ascending byte order,
		calling fn for each. Scan stops early if fn returns false. A nil end
		scans to the end of the collection's keyspace.
	*/
	Scan(ctx context.Context, txn Txn, start, end []byte, fn func(key, value []byte) bool) error

	/*
		Name returns the collection name this handle was opened against.
	*/
	Name() string
}
