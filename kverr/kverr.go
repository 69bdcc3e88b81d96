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
Package kverr contains the flat error taxonomy shared by every batched
entry point of the engine. Every entry point funnels failures through a
single *Error value so callers never have to distinguish "empty result"
from "failed call": a missing key or field is never an error, it is a
nil/missing entry in the batch result.
*/
package kverr

import "fmt"

/*
Kind identifies one of the flat error categories an entry point can
return. Kind values are comparable and intended for equality checks with
errors.Is, mirroring GraphError.Type in the eliasdb graph package.
*/
type Kind string

/*
Flat error kinds. Exactly the taxonomy of spec §7; "not-found" is
deliberately absent, since it is reported as a missing result, never an
error.
*/
const (
	BadArgument      Kind = "bad-argument"
	OutOfMemory      Kind = "out-of-memory"
	ParseFailure     Kind = "parse-failure"
	SerializeFailure Kind = "serialize-failure"
	SubstrateFailure Kind = "substrate-failure"
	ClosedHandle     Kind = "closed-handle"
)

/*
Error is the single error type every core entry point returns. It never
unwinds a stack across the core boundary: Message is a short
human-readable string, nothing more.
*/
type Error struct {
	Kind    Kind
	Message string
}

/*
Error returns a human-readable string representation of this error.
*/
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

/*
Is allows errors.Is(err, kverr.BadArgument) style checks by comparing
kinds, so callers do not have to reach for *Error and compare Kind by
hand.
*/
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind && other.Message == ""
}

/*
New builds an *Error of the given kind with a formatted message.
*/
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

/*
Sentinel returns a bare *Error for a kind, suitable for errors.Is
comparisons against returned errors, e.g. kverr.Sentinel(kverr.ClosedHandle).
*/
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind}
}
