/*
 * multikv
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package substrate

import "encoding/binary"

/*
UnknownKey is the reserved sentinel meaning "unspecified key" (spec §3).
*/
const UnknownKey int64 = -1

/*
EncodeKey renders a signed 64-bit key as an 8-byte big-endian string that
sorts in the same order as the signed integers themselves: the sign bit
is flipped so two's-complement ordering becomes unsigned lexicographic
ordering, which is what every Bridge implementation's byte-ordered
keyspace needs for Scan to walk keys ascending.
*/
func EncodeKey(key int64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(key)^0x8000000000000000)
	return buf[:]
}

/*
DecodeKey is the inverse of EncodeKey.
*/
func DecodeKey(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b) ^ 0x8000000000000000)
}
