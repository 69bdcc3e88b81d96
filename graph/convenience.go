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

	"github.com/krotik/multikv/substrate"
)

/*
UpsertEdge is the N=1 convenience form of UpsertEdges, grounded on
graph_ref.hpp's upsert(edge_t const&) overload - no separate logic, a
one-element batch through the same path.
*/
func UpsertEdge(ctx context.Context, h substrate.Handle, tx substrate.Txn, e Edge) error {
	return UpsertEdges(ctx, h, tx, []Edge{e})
}

/*
RemoveEdge is the N=1 convenience form of RemoveEdges.
*/
func RemoveEdge(ctx context.Context, h substrate.Handle, tx substrate.Txn, e Edge) error {
	return RemoveEdges(ctx, h, tx, []Edge{e})
}

/*
RemoveVertex is the N=1 convenience form of RemoveVertices, grounded on
graph_ref.hpp's remove(ukv_key_t vertex, ...) overload.
*/
func RemoveVertex(ctx context.Context, h substrate.Handle, tx substrate.Txn, vertex int64, roles RoleFilter) error {
	return RemoveVertices(ctx, h, tx, []int64{vertex}, roles)
}

/*
ContainsOne is the N=1 convenience form of Contains.
*/
func ContainsOne(ctx context.Context, h substrate.Handle, tx substrate.Txn, vertex int64) (bool, error) {
	out, err := Contains(ctx, h, tx, []int64{vertex})
	if err != nil {
		return false, err
	}
	return out[0], nil
}
