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
Package arena implements the scratch-arena memory discipline every
batched entry point relies on: a per-call growable byte region, owned by
the caller, that every buffer returned from an entry point is a view
into. Buffers are valid until the next call against the same Arena.

An Arena is single-owner. It is not safe for one Arena to be used by two
goroutines concurrently, nor for two goroutines to each hold a call in
flight against the same Arena - callers on different threads must use
different Arenas, even against the same logical collection.
*/
package arena

/*
Arena is a reusable scratch buffer. Engines append to it during a call
and hand back slices that alias its backing array; Reset logically frees
all of those slices at once, ready for the next call.
*/
type Arena struct {
	buf []byte
}

/*
New creates an empty Arena. Capacity grows lazily on first use.
*/
func New() *Arena {
	return &Arena{}
}

/*
Reset clears the arena for reuse without releasing its backing capacity.
This is the Go equivalent of the core's arena_free entry point: callers
invoke it between logically unrelated calls, not between every call,
since buffers from the previous call are about to be invalidated anyway.
*/
func (a *Arena) Reset() {
	a.buf = a.buf[:0]
}

/*
Alloc appends n zeroed bytes to the arena and returns a slice viewing
them. The returned slice stays valid across later Alloc calls and is
invalidated by the next Reset of this Arena, after which new allocations
reuse the same backing memory.
*/
func (a *Arena) Alloc(n int) []byte {
	start := len(a.buf)
	a.buf = append(a.buf, make([]byte, n)...)
	return a.buf[start : start+n : start+n]
}

/*
Put copies src into freshly allocated arena space and returns the view,
mirroring the pattern of dumping a parsed document onto the serializing
tape in the original UKV document logic.
*/
func (a *Arena) Put(src []byte) []byte {
	dst := a.Alloc(len(src))
	copy(dst, src)
	return dst
}

/*
Len reports how many bytes are currently held live in the arena.
*/
func (a *Arena) Len() int {
	return len(a.buf)
}

/*
Tape is a growing, ordered sequence of arena-backed byte blobs, one per
batch position - the Go analogue of the original's growing_tape used to
assemble docs_read/docs_gather results in caller order.
*/
type Tape struct {
	arena  *Arena
	values [][]byte
}

/*
NewTape starts a fresh tape backed by the given Arena. Tapes do not
survive a call to Arena.Reset - build and drain one within a single entry
point invocation.
*/
func NewTape(a *Arena) *Tape {
	return &Tape{arena: a}
}

/*
Push appends one value to the tape, copying it into the arena. A nil
value (as opposed to an empty, non-nil one) represents a missing result
and is preserved as nil in Values().
*/
func (t *Tape) Push(value []byte) {
	if value == nil {
		t.values = append(t.values, nil)
		return
	}
	t.values = append(t.values, t.arena.Put(value))
}

/*
Values returns the tape contents in push order. Result index i
corresponds to the i-th Push call, preserving batch order end to end.
*/
func (t *Tape) Values() [][]byte {
	return t.values
}

/*
Len reports how many values have been pushed onto the tape.
*/
func (t *Tape) Len() int {
	return len(t.values)
}
