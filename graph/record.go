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
Package graph is the graph engine: adjacency inversion keyed by vertex,
upsert/remove of edges, vertex removal with cascading reverse-entry
cleanup, and the find/successors/predecessors/neighbors family (spec
§4.5). Every vertex's adjacency record is a sorted, duplicate-free list
of (neighbor, edge id, role) entries persisted as one fixed-width binary
blob under the vertex's key in a substrate.Handle.
*/
package graph

import (
	"encoding/binary"

	"github.com/krotik/multikv/kverr"
)

/*
Role declares which side of an edge a vertex played.
*/
type Role uint8

const (
	RoleSourceOf Role = iota
	RoleTargetOf
)

/*
RoleFilter selects which adjacency entries an operation considers.
*/
type RoleFilter int

const (
	RoleAny RoleFilter = iota
	RoleSource
	RoleTarget
)

func (f RoleFilter) matches(r Role) bool {
	switch f {
	case RoleSource:
		return r == RoleSourceOf
	case RoleTarget:
		return r == RoleTargetOf
	default:
		return true
	}
}

/*
Entry is one adjacency record entry: v is connected to Neighbor via
EdgeID, with Role declaring whether v was the edge's source or target.
*/
type Entry struct {
	Neighbor int64
	EdgeID   int64
	Role     Role
}

// recordEntrySize is sizeof(neighbor_key:i64, edge_id:i64, role:u8) plus
// 7 bytes of padding to an 8-byte-aligned 24-byte record, matching the
// persisted layout of spec §6.3.
const recordEntrySize = 24

func less(a, b Entry) bool {
	if a.Neighbor != b.Neighbor {
		return a.Neighbor < b.Neighbor
	}
	if a.EdgeID != b.EdgeID {
		return a.EdgeID < b.EdgeID
	}
	return a.Role < b.Role
}

// equalKey's identity includes Role: a self-loop (u, u, e) carries both a
// RoleSourceOf and a RoleTargetOf entry for the same (Neighbor, EdgeID) in
// u's own record, and the two must be able to coexist.
func equalKey(a, b Entry) bool {
	return a.Neighbor == b.Neighbor && a.EdgeID == b.EdgeID && a.Role == b.Role
}

/*
OppositeRole returns the role the reverse endpoint of an entry was
recorded with.
*/
func OppositeRole(r Role) Role {
	if r == RoleSourceOf {
		return RoleTargetOf
	}
	return RoleSourceOf
}

/*
DecodeRecord parses a persisted adjacency record into its ordered
entries. An empty/nil blob decodes to no entries (an adjacency record is
allowed to be empty - the vertex is still present).
*/
func DecodeRecord(blob []byte) ([]Entry, error) {
	if len(blob)%recordEntrySize != 0 {
		return nil, kverr.New(kverr.ParseFailure, "adjacency record length %d is not a multiple of %d", len(blob), recordEntrySize)
	}
	n := len(blob) / recordEntrySize
	entries := make([]Entry, n)
	for i := 0; i < n; i++ {
		off := i * recordEntrySize
		entries[i] = Entry{
			Neighbor: int64(binary.LittleEndian.Uint64(blob[off : off+8])),
			EdgeID:   int64(binary.LittleEndian.Uint64(blob[off+8 : off+16])),
			Role:     Role(blob[off+16]),
		}
	}
	return entries, nil
}

/*
EncodeRecord renders entries (assumed already sorted and deduplicated by
(Neighbor, EdgeID, Role)) as the persisted fixed-width blob.
*/
func EncodeRecord(entries []Entry) []byte {
	out := make([]byte, len(entries)*recordEntrySize)
	for i, e := range entries {
		off := i * recordEntrySize
		binary.LittleEndian.PutUint64(out[off:off+8], uint64(e.Neighbor))
		binary.LittleEndian.PutUint64(out[off+8:off+16], uint64(e.EdgeID))
		out[off+16] = byte(e.Role)
	}
	return out
}

/*
insertSorted inserts e into entries at its sorted position, returning the
result unchanged if an entry with the same (Neighbor, EdgeID, Role)
already exists - upsert_edges on a duplicate edge is a no-op (spec §4.5).
*/
func insertSorted(entries []Entry, e Entry) []Entry {
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if less(entries[mid], e) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(entries) && equalKey(entries[lo], e) {
		return entries
	}
	out := make([]Entry, len(entries)+1)
	copy(out, entries[:lo])
	out[lo] = e
	copy(out[lo+1:], entries[lo:])
	return out
}

/*
removeSorted removes the entry matching (neighbor, edgeID, role) if
present, returning entries unchanged otherwise - remove_edges on a
missing edge is a no-op (spec §4.5).
*/
func removeSorted(entries []Entry, neighbor, edgeID int64, role Role) []Entry {
	target := Entry{Neighbor: neighbor, EdgeID: edgeID, Role: role}
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if less(entries[mid], target) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= len(entries) || !equalKey(entries[lo], target) {
		return entries
	}
	out := make([]Entry, len(entries)-1)
	copy(out, entries[:lo])
	copy(out[lo:], entries[lo+1:])
	return out
}
