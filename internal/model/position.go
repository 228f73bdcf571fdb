package model

import (
	"fmt"
	"strings"
)

// Position is a location between nodes (or between characters of a text
// node) expressed as a root plus a path of offsets. The last path entry is
// the offset in the parent.
type Position struct {
	root *Element
	path []int
}

// NewPosition creates a position from a root and a path.
func NewPosition(root *Element, path []int) Position {
	p := make([]int, len(path))
	copy(p, path)
	return Position{root: root, path: p}
}

// PositionAt returns the position at offset inside parent.
func PositionAt(parent *Element, offset int) Position {
	return NewPosition(parent.Root(), append(parent.Path(), offset))
}

// PositionAtEnd returns the position after the last child of parent.
func PositionAtEnd(parent *Element) Position {
	return PositionAt(parent, parent.MaxOffset())
}

// PositionBefore returns the position right before item.
func PositionBefore(item Item) Position {
	return PositionAt(item.Parent(), item.StartOffset())
}

// PositionAfter returns the position right after item.
func PositionAfter(item Item) Position {
	return PositionAt(item.Parent(), item.StartOffset()+item.OffsetSize())
}

// IsZero reports whether the position is unset.
func (p Position) IsZero() bool { return p.root == nil }

// Root returns the root element of the position.
func (p Position) Root() *Element { return p.root }

// Path returns a copy of the offset path.
func (p Position) Path() []int {
	out := make([]int, len(p.path))
	copy(out, p.path)
	return out
}

// Depth returns the length of the path.
func (p Position) Depth() int { return len(p.path) }

// Offset returns the offset in the parent.
func (p Position) Offset() int {
	if len(p.path) == 0 {
		return 0
	}
	return p.path[len(p.path)-1]
}

// ParentPath returns the path without the last offset.
func (p Position) ParentPath() []int {
	if len(p.path) == 0 {
		return nil
	}
	return p.Path()[:len(p.path)-1]
}

// Parent resolves the parent element. It returns nil when the path does not
// point inside the tree.
func (p Position) Parent() *Element {
	if p.root == nil || len(p.path) == 0 {
		return nil
	}
	cur := p.root
	for _, off := range p.path[:len(p.path)-1] {
		next, ok := cur.ChildAtOffset(off).(*Element)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// WithOffset returns a copy with the last offset replaced.
func (p Position) WithOffset(offset int) Position {
	out := NewPosition(p.root, p.path)
	if len(out.path) > 0 {
		out.path[len(out.path)-1] = offset
	}
	return out
}

// ShiftedBy returns a copy moved by n offsets within the same parent.
func (p Position) ShiftedBy(n int) Position {
	off := p.Offset() + n
	if off < 0 {
		off = 0
	}
	return p.WithOffset(off)
}

// TextNode returns the text node the position is strictly inside, or nil.
func (p Position) TextNode() *Text {
	parent := p.Parent()
	if parent == nil {
		return nil
	}
	t, ok := parent.ChildAtOffset(p.Offset()).(*Text)
	if !ok {
		return nil
	}
	if t.StartOffset() == p.Offset() {
		return nil
	}
	return t
}

// NodeAfter returns the node right after the position, or nil when the
// position is inside a text node or at the end of its parent.
func (p Position) NodeAfter() Node {
	parent := p.Parent()
	if parent == nil || p.TextNode() != nil {
		return nil
	}
	return parent.ChildAtOffset(p.Offset())
}

// NodeBefore returns the node right before the position, or nil.
func (p Position) NodeBefore() Node {
	parent := p.Parent()
	if parent == nil || p.TextNode() != nil || p.Offset() == 0 {
		return nil
	}
	return parent.ChildAtOffset(p.Offset() - 1)
}

// IsAtStart reports whether the offset is 0.
func (p Position) IsAtStart() bool { return p.Offset() == 0 }

// IsAtEnd reports whether the position is after the last child of its parent.
func (p Position) IsAtEnd() bool {
	parent := p.Parent()
	return parent != nil && p.Offset() == parent.MaxOffset()
}

// Compare orders two positions in the same root by document order.
// It returns -1, 0 or 1.
func (p Position) Compare(q Position) int {
	n := len(p.path)
	if len(q.path) < n {
		n = len(q.path)
	}
	for i := 0; i < n; i++ {
		switch {
		case p.path[i] < q.path[i]:
			return -1
		case p.path[i] > q.path[i]:
			return 1
		}
	}
	switch {
	case len(p.path) < len(q.path):
		return -1
	case len(p.path) > len(q.path):
		return 1
	}
	return 0
}

// IsEqual reports whether both positions share the root and path.
func (p Position) IsEqual(q Position) bool {
	return p.root == q.root && p.Compare(q) == 0
}

// IsBefore reports whether p precedes q in document order.
func (p Position) IsBefore(q Position) bool { return p.Compare(q) < 0 }

// IsAfter reports whether p follows q in document order.
func (p Position) IsAfter(q Position) bool { return p.Compare(q) > 0 }

// HasSameParentAs reports whether both positions share a parent path.
func (p Position) HasSameParentAs(q Position) bool {
	if p.root != q.root || len(p.path) != len(q.path) {
		return false
	}
	for i := 0; i < len(p.path)-1; i++ {
		if p.path[i] != q.path[i] {
			return false
		}
	}
	return true
}

// CommonPathLength returns the length of the shared path prefix.
func (p Position) CommonPathLength(q Position) int {
	i := 0
	for i < len(p.path) && i < len(q.path) && p.path[i] == q.path[i] {
		i++
	}
	return i
}

func (p Position) String() string {
	parts := make([]string, len(p.path))
	for i, o := range p.path {
		parts[i] = fmt.Sprint(o)
	}
	name := "?"
	if p.root != nil {
		name = p.root.rootName
		if name == "" {
			name = p.root.name
		}
	}
	return name + ":[" + strings.Join(parts, ",") + "]"
}
