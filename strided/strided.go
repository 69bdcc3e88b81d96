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
Package strided implements the zero-copy strided view calling convention
that every batched entry point in multikv accepts its inputs through: a
column of values that may be a parallel array, or a single broadcast
scalar repeated across the whole batch.

A C-style strided view is (pointer, byte stride, count). Go already gives
every value a type, so a byte stride buys nothing here; View[T] keeps the
one property from the original convention that actually matters to
callers - broadcast - by letting a single-element slice stand in for an
N-element column.
*/
package strided

import (
	"fmt"

	"github.com/krotik/multikv/kverr"
)

/*
View is a strided view of element type T. A View with Stride == 0 is a
broadcast: every logical position in [0, Count) reads Values[0]. A View
with Stride == 1 is a plain parallel array and must carry exactly Count
elements.
*/
type View[T any] struct {
	Values []T
	Stride int
}

/*
Broadcast returns a View that presents v at every one of count logical
positions without allocating count copies.
*/
func Broadcast[T any](v T) View[T] {
	return View[T]{Values: []T{v}, Stride: 0}
}

/*
Of wraps a plain parallel array as a strided View.
*/
func Of[T any](values []T) View[T] {
	return View[T]{Values: values, Stride: 1}
}

/*
At returns the logical element at position i, honoring broadcast.
*/
func (v View[T]) At(i int) T {
	if v.Stride == 0 {
		return v.Values[0]
	}
	return v.Values[i]
}

/*
Validate checks that the view actually has count logical positions,
returning a kverr.BadArgument error on mismatch. Count mismatches across
parallel views are always a bad-argument error, never a panic.
*/
func (v View[T]) Validate(count int) error {
	if v.Stride == 0 {
		if len(v.Values) < 1 {
			return kverr.New(kverr.BadArgument, "broadcast view has no value")
		}
		return nil
	}
	if len(v.Values) != count {
		return kverr.New(kverr.BadArgument, "strided view count mismatch: got %d, want %d", len(v.Values), count)
	}
	return nil
}

/*
Materialize expands the view into a plain slice of length count. Used at
the few points where downstream code (e.g. a third-party codec) needs a
real slice rather than broadcast-aware indexing.
*/
func Materialize[T any](v View[T], count int) ([]T, error) {
	if err := v.Validate(count); err != nil {
		return nil, err
	}
	if v.Stride != 0 {
		return v.Values, nil
	}
	out := make([]T, count)
	for i := range out {
		out[i] = v.Values[0]
	}
	return out, nil
}

/*
String renders a short diagnostic description, useful in error messages
when a batch of views disagree on count.
*/
func (v View[T]) String() string {
	if v.Stride == 0 {
		return fmt.Sprintf("broadcast(%v)", v.Values[0])
	}
	return fmt.Sprintf("array[%d]", len(v.Values))
}
