/*
 * multikv
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package columnar

import "github.com/RoaringBitmap/roaring/v2"

/*
rowBitmap accumulates the set of row indices for one of validity,
converted or collision during a gather pass, then flushes to the
fixed LSB-first packed byte layout spec §4.8 pins down.
*/
type rowBitmap struct {
	rb *roaring.Bitmap
}

func newRowBitmap() *rowBitmap {
	return &rowBitmap{rb: roaring.New()}
}

func (b *rowBitmap) set(row int) {
	b.rb.Add(uint32(row))
}

/*
flush renders the bitmap as ceil(n/8) bytes, bit i of row i living in
byte i/8 at mask 1<<(i%8).
*/
func (b *rowBitmap) flush(n int) []byte {
	out := make([]byte, (n+7)/8)
	it := b.rb.Iterator()
	for it.HasNext() {
		row := it.Next()
		out[row/8] |= 1 << (row % 8)
	}
	return out
}
