package view

import "sync/atomic"

// NodeID is a stable handle for a view node, used as the key of binding
// tables so nodes can be detached and re-attached during wrapping without
// invalidating them.
type NodeID uint64

var lastNodeID atomic.Uint64

func newNodeID() NodeID {
	return NodeID(lastNodeID.Add(1))
}

// Node is an *Element or a *Text.
type Node interface {
	ID() NodeID

	// Parent returns the parent element or nil.
	Parent() *Element

	// Index returns the position among siblings, or -1 when detached.
	Index() int

	setParent(parent *Element)
}

// Item is anything a tree walker can yield: a Node or a *TextProxy.
type Item interface {
	Parent() *Element
}

// Root returns the top-most ancestor of n, or n itself.
func Root(n Node) Node {
	var cur Node = n
	for cur.Parent() != nil {
		cur = cur.Parent()
	}
	return cur
}

// Ancestors returns the ancestors of n, closest first.
func Ancestors(n Node) []*Element {
	var out []*Element
	for p := n.Parent(); p != nil; p = p.Parent() {
		out = append(out, p)
	}
	return out
}

// IsAttached reports whether n belongs to a view document root.
func IsAttached(n Node) bool {
	r, ok := Root(n).(*Element)
	return ok && r.kind == KindRoot && r.doc != nil
}

func indexOf(parent *Element, n Node) int {
	if parent == nil {
		return -1
	}
	for i, c := range parent.children {
		if c == n {
			return i
		}
	}
	return -1
}
