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
	"io"
	"strconv"
	"strings"

	"github.com/krotik/multikv/kverr"
	"github.com/krotik/multikv/substrate"
)

/*
ExportAdjacencyList writes every edge in the collection as one text line
"source<sep>target<sep>edge id<delim>" (spec §6.3). Only RoleSourceOf
entries are walked - every edge is recorded on both its endpoints, so
walking a single role emits each edge exactly once.
*/
func ExportAdjacencyList(ctx context.Context, h substrate.Handle, tx substrate.Txn, w io.Writer, columnSeparator, lineDelimiter string) error {
	var writeErr error

	err := h.Scan(ctx, tx, nil, nil, func(key, value []byte) bool {
		vertex := substrate.DecodeKey(key)
		entries, err := DecodeRecord(value)
		if err != nil {
			writeErr = err
			return false
		}
		for _, e := range entries {
			if e.Role != RoleSourceOf {
				continue
			}
			line := strconv.FormatInt(vertex, 10) + columnSeparator +
				strconv.FormatInt(e.Neighbor, 10) + columnSeparator +
				strconv.FormatInt(e.EdgeID, 10) + lineDelimiter
			if _, err := w.Write([]byte(line)); err != nil {
				writeErr = err
				return false
			}
		}
		return true
	})
	if err != nil {
		return err
	}
	return writeErr
}

/*
ImportAdjacencyList is the inverse of ExportAdjacencyList: it parses the
same line format and upserts every edge it finds, so a reloaded file
reconstructs the original adjacency (spec §6.3).
*/
func ImportAdjacencyList(ctx context.Context, h substrate.Handle, tx substrate.Txn, r io.Reader, columnSeparator, lineDelimiter string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return kverr.New(kverr.SubstrateFailure, "failed to read adjacency list: %v", err)
	}

	var edges []Edge
	for _, line := range strings.Split(string(data), lineDelimiter) {
		if line == "" {
			continue
		}
		cols := strings.Split(line, columnSeparator)
		if len(cols) != 3 {
			return kverr.New(kverr.ParseFailure, "malformed adjacency list line %q", line)
		}

		src, err1 := strconv.ParseInt(cols[0], 10, 64)
		tgt, err2 := strconv.ParseInt(cols[1], 10, 64)
		id, err3 := strconv.ParseInt(cols[2], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return kverr.New(kverr.ParseFailure, "malformed adjacency list line %q", line)
		}
		edges = append(edges, Edge{Source: src, Target: tgt, ID: id})
	}

	return UpsertEdges(ctx, h, tx, edges)
}
