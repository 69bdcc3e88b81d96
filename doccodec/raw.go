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
	"github.com/krotik/multikv/doctree"
	"github.com/krotik/multikv/kverr"
)

/*
EncodeRaw exports a scalar or binary leaf as its opaque bytes, with no
tagging of its kind. Only used for documents that are themselves a single
binary leaf at the root - attempting it on an array or object is a
serialize failure, since there is no encoding left to recover the
structure from.
*/
func EncodeRaw(n doctree.Node) ([]byte, error) {
	switch n.Kind {
	case doctree.KindBinary:
		return n.Binary, nil
	case doctree.KindString:
		return []byte(n.Str), nil
	case doctree.KindNull:
		return nil, nil
	default:
		return nil, kverr.New(kverr.SerializeFailure, "raw format only supports binary or string leaves, got %v", n.Kind)
	}
}

/*
DecodeRaw imports an opaque byte slice as a binary leaf, making no
attempt to interpret its contents.
*/
func DecodeRaw(data []byte) (doctree.Node, error) {
	return doctree.Bytes(data), nil
}
