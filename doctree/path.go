/*
 * multikv
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package doctree

import (
	"strconv"
	"strings"

	"github.com/krotik/multikv/kverr"
)

/*
Path is a parsed field path: either a single member name (IsSimple), or a
slash-delimited sequence of unescaped segments addressing a subtree.
*/
type Path struct {
	simple   string
	segments []string
	isSimple bool
}

/*
ParsePath parses a field path per the escape rules of spec §3: a path
whose first byte is '/' is slash-delimited with "~1" standing for '/' and
"~0" standing for '~' within a segment; anything else is a single simple
member name. The empty string denotes "the whole document".
*/
func ParsePath(field string) (Path, error) {
	if field == "" {
		return Path{isSimple: true, simple: ""}, nil
	}
	if field[0] != '/' {
		return Path{isSimple: true, simple: field}, nil
	}

	raw := strings.Split(field[1:], "/")
	segments := make([]string, len(raw))
	for i, s := range raw {
		unescaped, err := unescapeSegment(s)
		if err != nil {
			return Path{}, err
		}
		segments[i] = unescaped
	}
	return Path{segments: segments}, nil
}

func unescapeSegment(s string) (string, error) {
	if !strings.Contains(s, "~") {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '~' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 >= len(s) {
			return "", kverr.New(kverr.BadArgument, "malformed field path escape at %q", s)
		}
		switch s[i+1] {
		case '0':
			b.WriteByte('~')
		case '1':
			b.WriteByte('/')
		default:
			return "", kverr.New(kverr.BadArgument, "malformed field path escape at %q", s)
		}
		i++
	}
	return b.String(), nil
}

func escapeSegment(s string) string {
	if !strings.ContainsAny(s, "~/") {
		return s
	}
	s = strings.ReplaceAll(s, "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	return s
}

/*
IsEmpty reports whether this path selects the whole document.
*/
func (p Path) IsEmpty() bool {
	return p.isSimple && p.simple == ""
}

/*
Dotted renders the path as a single dotted flat key, the same form
Flatten uses for its keys.
*/
func (p Path) Dotted() string {
	if p.isSimple {
		return p.simple
	}
	return strings.Join(p.segments, ".")
}

/*
Lookup descends root along the path, returning the found node and true,
or the zero Node and false if any segment is missing or passes through a
node that is neither an object nor an array. Array elements are
addressed by a decimal index segment; a simple (non-slash) path only
selects a member of an object root.
*/
func Lookup(root Node, p Path) (Node, bool) {
	if p.IsEmpty() {
		return root, true
	}
	if p.isSimple {
		if root.Kind != KindObject {
			return Node{}, false
		}
		return root.Object.Get(p.simple)
	}

	cur := root
	for _, seg := range p.segments {
		if cur.Kind == KindObject {
			v, ok := cur.Object.Get(seg)
			if !ok {
				return Node{}, false
			}
			cur = v
			continue
		}
		if cur.Kind == KindArray {
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(cur.Array) {
				return Node{}, false
			}
			cur = cur.Array[idx]
			continue
		}
		return Node{}, false
	}
	return cur, true
}

/*
Place writes value at path inside root, creating intermediate objects as
needed ("mkdir -p" for fields), and returns the (possibly new) root.
Assigning to a field on a non-object root replaces the root with an
object wrapping that field - this is intentional (spec §4.4).
*/
func Place(root Node, p Path, value Node) Node {
	if p.IsEmpty() {
		return value
	}

	segs := p.segments
	if p.isSimple {
		segs = []string{p.simple}
	}

	if root.Kind != KindObject {
		root = NewObject(NewEmptyObject())
	}

	return placeSegments(root, segs, value)
}

func placeSegments(node Node, segs []string, value Node) Node {
	if node.Kind != KindObject {
		node = NewObject(NewEmptyObject())
	}
	if len(segs) == 1 {
		node.Object.Set(segs[0], value)
		return node
	}

	child, ok := node.Object.Get(segs[0])
	if !ok || child.Kind != KindObject {
		child = NewObject(NewEmptyObject())
	}
	node.Object.Set(segs[0], placeSegments(child, segs[1:], value))
	return node
}

/*
Delete removes the value at path inside root, expressed (per spec §4.4)
the same way a write with length=0, content=nil removes a field. A
missing path is a no-op.
*/
func Delete(root Node, p Path) Node {
	if p.IsEmpty() {
		return Null()
	}

	segs := p.segments
	if p.isSimple {
		segs = []string{p.simple}
	}
	deleteSegments(root, segs)
	return root
}

func deleteSegments(node Node, segs []string) {
	if node.Kind != KindObject || node.Object == nil {
		return
	}
	if len(segs) == 1 {
		node.Object.Delete(segs[0])
		return
	}
	child, ok := node.Object.Get(segs[0])
	if !ok {
		return
	}
	deleteSegments(child, segs[1:])
}

/*
Flatten walks the tree, producing one (dotted-path, leaf-value) pair per
leaf (scalar, binary, empty array/object) reachable from root. Used by
Gist to compute the union of field paths across a batch.
*/
func Flatten(root Node) map[string]Node {
	out := make(map[string]Node)
	flattenInto(root, "", out)
	return out
}

func flattenInto(n Node, prefix string, out map[string]Node) {
	switch n.Kind {
	case KindObject:
		if n.Object == nil || n.Object.Len() == 0 {
			out[prefix] = n
			return
		}
		for _, k := range n.Object.Keys() {
			v, _ := n.Object.Get(k)
			next := escapeSegment(k)
			if prefix != "" {
				next = prefix + "." + next
			}
			flattenInto(v, next, out)
		}
	case KindArray:
		if len(n.Array) == 0 {
			out[prefix] = n
			return
		}
		for i, v := range n.Array {
			next := strconv.Itoa(i)
			if prefix != "" {
				next = prefix + "." + next
			}
			flattenInto(v, next, out)
		}
	default:
		out[prefix] = n
	}
}
