// Package docpath builds positional identifiers for nodes in a parsed
// document tree.
//
// A path encodes where a node sits relative to the document root, for
// example root[0].div[1].p[0]: the root's child 0 is a <div>, its child 1
// is a <p>, and the node itself is the <p>'s child 0. Each segment names
// the containing element's tag and the node's index among its siblings.
// Paths are used as record identifiers and for merge-adjacency tests; they
// carry no ownership semantics.
package docpath

import (
	"strconv"
	"strings"
)

// RootTag is the sentinel segment name for top-level nodes.
const RootTag = "root"

// Segment is one step of a path: the containing element's tag and the
// node's zero-based position among its siblings.
type Segment struct {
	Tag   string
	Index int
}

// Path identifies a node's position in a document tree. The zero value is
// an empty path. Paths are immutable; Child and Parent return copies.
type Path struct {
	// Base is an optional prefix identifying the originating source,
	// typically a file name. It participates in display and comparison.
	Base     string
	segments []Segment
}

// Root returns the path of the i-th top-level node, with an optional base
// prefix for the originating source.
func Root(base string, i int) Path {
	return Path{Base: base, segments: []Segment{{Tag: RootTag, Index: i}}}
}

// Child returns the path of this node's i-th child. containerTag is this
// node's tag name, which names the child's segment.
func (p Path) Child(containerTag string, i int) Path {
	segs := make([]Segment, len(p.segments)+1)
	copy(segs, p.segments)
	segs[len(p.segments)] = Segment{Tag: containerTag, Index: i}
	return Path{Base: p.Base, segments: segs}
}

// Parent returns the path with the final segment removed: the path of the
// node's containing element. Parent of a root-level path is the empty path.
func (p Path) Parent() Path {
	if len(p.segments) == 0 {
		return Path{Base: p.Base}
	}
	segs := make([]Segment, len(p.segments)-1)
	copy(segs, p.segments[:len(p.segments)-1])
	return Path{Base: p.Base, segments: segs}
}

// Depth returns the number of segments in the path.
func (p Path) Depth() int {
	return len(p.segments)
}

// LastTag returns the tag of the final segment, or "" for an empty path.
func (p Path) LastTag() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1].Tag
}

// SameContainer reports whether two paths are positionally identical when
// the final segment's index is ignored. Two sibling nodes of the same tag
// in the same container satisfy this even though each carries a distinct
// index. Empty paths are same-container only with other empty paths.
func (p Path) SameContainer(other Path) bool {
	if p.Base != other.Base || len(p.segments) != len(other.segments) {
		return false
	}
	n := len(p.segments)
	if n == 0 {
		return true
	}
	for i := 0; i < n-1; i++ {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}
	return p.segments[n-1].Tag == other.segments[n-1].Tag
}

// String renders the path in its display form, e.g.
// "guide.html.root[0].div[1].p[0]". The base, when set, is joined with a dot.
func (p Path) String() string {
	var b strings.Builder
	if p.Base != "" {
		b.WriteString(p.Base)
	}
	for i, seg := range p.segments {
		if i > 0 || p.Base != "" {
			b.WriteByte('.')
		}
		b.WriteString(seg.Tag)
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(seg.Index))
		b.WriteByte(']')
	}
	return b.String()
}
