package view

import (
	"fmt"
	"strings"
)

// Position is a place in the view tree. Parent is an *Element (Offset counts
// children) or a *Text (Offset counts characters).
type Position struct {
	Parent Node
	Offset int
}

// PositionAt returns the position at offset inside parent.
func PositionAt(parent Node, offset int) Position {
	return Position{Parent: parent, Offset: offset}
}

// PositionAtEnd returns the position after the last child or character.
func PositionAtEnd(parent Node) Position {
	return Position{Parent: parent, Offset: maxOffset(parent)}
}

// PositionBefore returns the position before an item.
func PositionBefore(item Item) Position {
	if p, ok := item.(*TextProxy); ok {
		return Position{Parent: p.text, Offset: p.offset}
	}
	n := item.(Node)
	return Position{Parent: n.Parent(), Offset: n.Index()}
}

// PositionAfter returns the position after an item.
func PositionAfter(item Item) Position {
	if p, ok := item.(*TextProxy); ok {
		return Position{Parent: p.text, Offset: p.offset + p.length}
	}
	n := item.(Node)
	return Position{Parent: n.Parent(), Offset: n.Index() + 1}
}

func maxOffset(n Node) int {
	switch v := n.(type) {
	case *Element:
		return v.ChildCount()
	case *Text:
		return v.Len()
	}
	return 0
}

// IsZero reports whether the position is unset.
func (p Position) IsZero() bool { return p.Parent == nil }

// ParentElement returns the parent when it is an element.
func (p Position) ParentElement() (*Element, bool) {
	e, ok := p.Parent.(*Element)
	return e, ok && e != nil
}

// TextNode returns the parent when it is a text node.
func (p Position) TextNode() (*Text, bool) {
	t, ok := p.Parent.(*Text)
	return t, ok && t != nil
}

// NodeAfter returns the child after the position. It is nil inside text.
func (p Position) NodeAfter() Node {
	if e, ok := p.ParentElement(); ok {
		return e.Child(p.Offset)
	}
	return nil
}

// NodeBefore returns the child before the position. It is nil inside text.
func (p Position) NodeBefore() Node {
	if e, ok := p.ParentElement(); ok {
		return e.Child(p.Offset - 1)
	}
	return nil
}

// IsAtStart reports whether the offset is 0.
func (p Position) IsAtStart() bool { return p.Offset == 0 }

// IsAtEnd reports whether the position is after the last child or character.
func (p Position) IsAtEnd() bool { return p.Offset == maxOffset(p.Parent) }

// ShiftedBy returns a copy moved by n within the same parent.
func (p Position) ShiftedBy(n int) Position {
	off := p.Offset + n
	if off < 0 {
		off = 0
	}
	return Position{Parent: p.Parent, Offset: off}
}

// Root returns the root of the parent.
func (p Position) Root() Node { return Root(p.Parent) }

// IsEqual reports whether both positions share the parent and offset.
func (p Position) IsEqual(q Position) bool {
	return p.Parent == q.Parent && p.Offset == q.Offset
}

// Path returns the child indices from the root to n.
func Path(n Node) []int {
	var path []int
	for cur := n; cur.Parent() != nil; cur = cur.Parent() {
		path = append([]int{cur.Index()}, path...)
	}
	return path
}

// Compare orders positions in document order and returns -1, 0 or 1.
// Positions in different roots compare as 0 only when equal; callers should
// check roots first.
func (p Position) Compare(q Position) int {
	if p.IsEqual(q) {
		return 0
	}
	a := append(Path(p.Parent), p.Offset)
	b := append(Path(q.Parent), q.Offset)
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// IsBefore reports whether p precedes q.
func (p Position) IsBefore(q Position) bool { return p.Compare(q) < 0 }

// IsAfter reports whether p follows q.
func (p Position) IsAfter(q Position) bool { return p.Compare(q) > 0 }

// LastMatchingPosition walks from p while skip returns true and returns the
// position reached before the first rejected step.
func (p Position) LastMatchingPosition(skip func(WalkerValue) bool, opts ...WalkerOption) Position {
	w := NewTreeWalker(append(opts, WithStartPosition(p))...)
	w.Skip(skip)
	return w.Position()
}

func (p Position) String() string {
	var b strings.Builder
	switch v := p.Parent.(type) {
	case *Element:
		b.WriteString("<" + v.name + ">")
	case *Text:
		b.WriteString(fmt.Sprintf("%q", v.data))
	default:
		b.WriteString("?")
	}
	fmt.Fprintf(&b, ":%d", p.Offset)
	return b.String()
}
