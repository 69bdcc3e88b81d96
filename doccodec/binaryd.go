/*
 * multikv
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package doccodec

import (
	"github.com/klauspost/compress/zstd"

	"github.com/krotik/multikv/doctree"
	"github.com/krotik/multikv/kverr"
)

/*
FormatBinaryD is FormatBinaryA's canonical bytes run through zstd, for
documents where a client cares more about storage footprint than about
encode/decode latency. klauspost/compress is a real dependency of the
example that owns a write-ahead log, pulled in here for the same reason:
a production-quality pure-Go codec instead of a hand-rolled one (see
DESIGN.md).
*/

var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

func EncodeBinaryD(n doctree.Node) ([]byte, error) {
	raw, err := EncodeBinaryA(n)
	if err != nil {
		return nil, err
	}
	return zstdEncoder.EncodeAll(raw, nil), nil
}

func DecodeBinaryD(data []byte) (doctree.Node, error) {
	raw, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return doctree.Node{}, kverr.New(kverr.ParseFailure, "failed to decompress zstd document: %v", err)
	}
	return DecodeBinaryA(raw)
}
