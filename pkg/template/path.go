package template

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one element of a Path. It is either an object key or an array
// index token. Index tokens are rendered as "[k]" in their string form, so
// Path.String renders key "items" then index 0 as `items.[0]`.
type Segment struct {
	Key     string
	IsIndex bool
	Index   int
}

// KeySeg builds an object-key segment.
func KeySeg(key string) Segment { return Segment{Key: key} }

// IndexSeg builds an array-index segment.
func IndexSeg(i int) Segment { return Segment{IsIndex: true, Index: i} }

func (s Segment) String() string {
	if s.IsIndex {
		return fmt.Sprintf("[%d]", s.Index)
	}
	return s.Key
}

// Path is an ordered sequence of path segments rooted at a template tree. An
// empty Path denotes the template root.
type Path []Segment

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

// Equal compares paths segment-wise.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Last returns the final segment and true, or the zero Segment and false for
// an empty path.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// Parent returns all but the last segment.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// ParseIndexToken parses a decimal array-index token of the form "[k]".
func ParseIndexToken(tok string) (int, bool) {
	if len(tok) < 3 || tok[0] != '[' || tok[len(tok)-1] != ']' {
		return 0, false
	}
	n, err := strconv.Atoi(tok[1 : len(tok)-1])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Walk resolves path against root, returning the node it addresses. Unlike
// the apply engine's walk (which needs to mutate along the way), Walk is
// read-only and used by the resolver and tests.
func Walk(root *Node, path Path) (*Node, bool) {
	cur := root
	for _, seg := range path {
		if cur == nil {
			return nil, false
		}
		if seg.IsIndex {
			if cur.Kind != KindArray || seg.Index < 0 || seg.Index >= len(cur.Array) {
				return nil, false
			}
			cur = cur.Array[seg.Index]
		} else {
			if cur.Kind != KindObject {
				return nil, false
			}
			next := cur.Get(seg.Key)
			if next == nil {
				return nil, false
			}
			cur = next
		}
	}
	return cur, true
}
