package model

import (
	"reflect"
	"sort"
	"sync/atomic"
)

// NodeID is a stable handle for a node. It never changes while the node is
// detached and re-attached, so binding tables can be keyed by it.
type NodeID uint64

var lastNodeID atomic.Uint64

func newNodeID() NodeID {
	return NodeID(lastNodeID.Add(1))
}

// TextName is the name reported by text nodes and text proxies.
const TextName = "$text"

// Item is anything a tree walker can yield: an Element or a *TextProxy.
type Item interface {
	// Name returns the element name, or TextName for text.
	Name() string

	// Parent returns the containing element, or nil for detached nodes and roots.
	Parent() *Element

	// OffsetSize returns how many offsets the item occupies in its parent.
	OffsetSize() int

	// StartOffset returns the offset of the item in its parent, or -1.
	StartOffset() int

	Attribute(key string) (any, bool)
	HasAttribute(key string) bool
	AttributeKeys() []string
}

// Node is an Element or a *Text.
type Node interface {
	Item

	// ID returns the stable node handle.
	ID() NodeID

	setParent(parent *Element)
}

type attributes map[string]any

func newAttributes(src map[string]any) attributes {
	a := make(attributes, len(src))
	for k, v := range src {
		a[k] = v
	}
	return a
}

func (a attributes) get(key string) (any, bool) {
	v, ok := a[key]
	return v, ok
}

func (a attributes) keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (a attributes) clone() map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func (a attributes) equal(b attributes) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || !ValuesEqual(v, w) {
			return false
		}
	}
	return true
}

// ValuesEqual compares two attribute values. A nil value means "not set".
func ValuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// IsRemoved reports whether the node has been moved to the graveyard or is
// otherwise not attached to a document root.
func IsRemoved(n Node) bool {
	var root *Element
	switch v := n.(type) {
	case *Element:
		root = v.Root()
	case *Text:
		if v.parent == nil {
			return true
		}
		root = v.parent.Root()
	}
	return root == nil || root.doc == nil || root.rootName == GraveyardName
}
