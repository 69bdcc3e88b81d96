/*
 * multikv
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package graph

import (
	"context"

	"github.com/krotik/common/errorutil"
	"github.com/krotik/common/sortutil"

	"github.com/krotik/multikv/arena"
	"github.com/krotik/multikv/substrate"
)

/*
Edge is the triple (Source, Target, ID) submitted to upsert_edges and
remove_edges. ID may be substrate.UnknownKey to mean "unspecified",
though distinct ids are what let two vertices carry a multigraph of
edges between them.
*/
type Edge struct {
	Source int64
	Target int64
	ID     int64
}

func loadRecord(ctx context.Context, h substrate.Handle, tx substrate.Txn, vertex int64) ([]Entry, bool, error) {
	raw, ok, err := h.Get(ctx, tx, substrate.EncodeKey(vertex))
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	entries, err := DecodeRecord(raw)
	if err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

func storeRecord(ctx context.Context, h substrate.Handle, tx substrate.Txn, vertex int64, entries []Entry) error {
	return h.Set(ctx, tx, substrate.EncodeKey(vertex), EncodeRecord(entries))
}

/*
UpsertEdges implements graph_upsert_edges (spec §4.5): for each edge
(u, v, e), insert a source-of entry into u's record and a target-of entry
into v's record, both in sorted position. A (neighbor, edge id, role)
triple already present in a record is left untouched - duplicate upserts
are a no-op. Both halves of an edge are always written in the same call;
failing to persist one side after the other succeeded would violate the
dual-write invariant and is treated as an unrecoverable bug, not a
reportable error - see errorutil.AssertOk below.

A self-loop (u, u, e) has both halves landing in u's own record. Loading
u twice into srcEntries/tgtEntries and storing them back one after the
other would make the second store clobber the first, so self-loops load
and store u's record once, with both entries inserted into the same
slice.
*/
func UpsertEdges(ctx context.Context, h substrate.Handle, tx substrate.Txn, edges []Edge) error {
	for _, e := range edges {
		if e.Source == e.Target {
			entries, _, err := loadRecord(ctx, h, tx, e.Source)
			if err != nil {
				return err
			}
			entries = insertSorted(entries, Entry{Neighbor: e.Target, EdgeID: e.ID, Role: RoleSourceOf})
			entries = insertSorted(entries, Entry{Neighbor: e.Source, EdgeID: e.ID, Role: RoleTargetOf})
			errorutil.AssertOk(storeRecord(ctx, h, tx, e.Source, entries))
			continue
		}

		srcEntries, _, err := loadRecord(ctx, h, tx, e.Source)
		if err != nil {
			return err
		}
		tgtEntries, _, err := loadRecord(ctx, h, tx, e.Target)
		if err != nil {
			return err
		}

		srcEntries = insertSorted(srcEntries, Entry{Neighbor: e.Target, EdgeID: e.ID, Role: RoleSourceOf})
		tgtEntries = insertSorted(tgtEntries, Entry{Neighbor: e.Source, EdgeID: e.ID, Role: RoleTargetOf})

		errorutil.AssertOk(storeRecord(ctx, h, tx, e.Source, srcEntries))
		errorutil.AssertOk(storeRecord(ctx, h, tx, e.Target, tgtEntries))
	}
	return nil
}

/*
RemoveEdges implements graph_remove_edges (spec §4.5), the mirror of
UpsertEdges: removing an edge that is not present in a record is a
no-op. Self-loops get the same single-record treatment as UpsertEdges.
*/
func RemoveEdges(ctx context.Context, h substrate.Handle, tx substrate.Txn, edges []Edge) error {
	for _, e := range edges {
		if e.Source == e.Target {
			entries, _, err := loadRecord(ctx, h, tx, e.Source)
			if err != nil {
				return err
			}
			entries = removeSorted(entries, e.Target, e.ID, RoleSourceOf)
			entries = removeSorted(entries, e.Source, e.ID, RoleTargetOf)
			errorutil.AssertOk(storeRecord(ctx, h, tx, e.Source, entries))
			continue
		}

		srcEntries, _, err := loadRecord(ctx, h, tx, e.Source)
		if err != nil {
			return err
		}
		tgtEntries, _, err := loadRecord(ctx, h, tx, e.Target)
		if err != nil {
			return err
		}

		srcEntries = removeSorted(srcEntries, e.Target, e.ID, RoleSourceOf)
		tgtEntries = removeSorted(tgtEntries, e.Source, e.ID, RoleTargetOf)

		errorutil.AssertOk(storeRecord(ctx, h, tx, e.Source, srcEntries))
		errorutil.AssertOk(storeRecord(ctx, h, tx, e.Target, tgtEntries))
	}
	return nil
}

/*
RemoveVertices implements graph_remove_vertices (spec §4.5): for each
vertex v, fetch its adjacency; for every neighbor entry matching roles,
remove the reverse entry from that neighbor's own record; then delete v
entirely. roles defaults to RoleAny.
*/
func RemoveVertices(ctx context.Context, h substrate.Handle, tx substrate.Txn, vertices []int64, roles RoleFilter) error {
	for _, v := range vertices {
		entries, ok, err := loadRecord(ctx, h, tx, v)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		for _, entry := range entries {
			if !roles.matches(entry.Role) {
				continue
			}
			neighborEntries, ok, err := loadRecord(ctx, h, tx, entry.Neighbor)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			neighborEntries = removeSorted(neighborEntries, v, entry.EdgeID, OppositeRole(entry.Role))
			errorutil.AssertOk(storeRecord(ctx, h, tx, entry.Neighbor, neighborEntries))
		}

		if err := h.Delete(ctx, tx, substrate.EncodeKey(v)); err != nil {
			return err
		}
	}
	return nil
}

/*
FindEdges implements graph_find_edges (spec §4.5): fetch each vertex's
adjacency record (one substrate Get per input vertex, in input order; a
vertex listed twice is read twice), and push its degree onto degrees and
its matching neighbor entries onto neighbors, in input order. A missing
vertex pushes nil onto both tapes. With onlyLengths,
neighbors is left untouched and only degrees is populated.
*/
func FindEdges(ctx context.Context, h substrate.Handle, tx substrate.Txn, vertices []int64, roles RoleFilter, onlyLengths bool, degrees *arena.Tape, neighbors *arena.Tape) error {
	for _, v := range vertices {
		entries, ok, err := loadRecord(ctx, h, tx, v)
		if err != nil {
			return err
		}
		if !ok {
			degrees.Push(nil)
			if !onlyLengths {
				neighbors.Push(nil)
			}
			continue
		}

		matched := make([]Entry, 0, len(entries))
		for _, e := range entries {
			if roles.matches(e.Role) {
				matched = append(matched, e)
			}
		}

		degrees.Push(encodeDegree(len(matched)))
		if !onlyLengths {
			neighbors.Push(EncodeRecord(matched))
		}
	}
	return nil
}

func encodeDegree(n int) []byte {
	return []byte{byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)}
}

/*
Contains implements graph_contains (spec §4.5): a vertex is present iff
its adjacency record exists, regardless of content.
*/
func Contains(ctx context.Context, h substrate.Handle, tx substrate.Txn, vertices []int64) ([]bool, error) {
	out := make([]bool, len(vertices))
	for i, v := range vertices {
		_, ok, err := h.Get(ctx, tx, substrate.EncodeKey(v))
		if err != nil {
			return nil, err
		}
		out[i] = ok
	}
	return out, nil
}

/*
Successors returns v's out-neighbors: find_edges({v}, source-of),
projected onto target ids, in (neighbor, edge id) order.
*/
func Successors(ctx context.Context, h substrate.Handle, tx substrate.Txn, v int64) ([]int64, error) {
	return projectNeighbors(ctx, h, tx, v, RoleSource)
}

/*
Predecessors returns v's in-neighbors: find_edges({v}, target-of),
projected onto source ids.
*/
func Predecessors(ctx context.Context, h substrate.Handle, tx substrate.Txn, v int64) ([]int64, error) {
	return projectNeighbors(ctx, h, tx, v, RoleTarget)
}

func projectNeighbors(ctx context.Context, h substrate.Handle, tx substrate.Txn, v int64, role RoleFilter) ([]int64, error) {
	entries, ok, err := loadRecord(ctx, h, tx, v)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	out := make([]int64, 0, len(entries))
	for _, e := range entries {
		if role.matches(e.Role) {
			out = append(out, e.Neighbor)
		}
	}
	return out, nil
}

/*
Neighbors implements find_edges({v}, any) normalized so v is always on
the "from" side: entries recorded as target-of are treated the same as
source-of for projection purposes, since v's adjacency record already
carries the other endpoint regardless of which side v played. The result
is sorted by neighbor id, matching the adjacency record's own order.
*/
func Neighbors(ctx context.Context, h substrate.Handle, tx substrate.Txn, v int64) ([]int64, error) {
	entries, ok, err := loadRecord(ctx, h, tx, v)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.Neighbor
	}
	sortutil.Int64s(out)
	return out, nil
}
