package model

// Element is a named model node with attributes and children.
type Element struct {
	id       NodeID
	name     string
	attrs    attributes
	parent   *Element
	children []Node

	doc      *Document
	rootName string
}

// NewElement creates a detached element. Adjacent text children with equal
// attributes are merged.
func NewElement(name string, attrs map[string]any, children ...Node) *Element {
	e := &Element{
		id:    newNodeID(),
		name:  name,
		attrs: newAttributes(attrs),
	}
	e.insertChildren(0, children...)
	e.normalize(0, len(e.children))
	return e
}

// FragmentName is the element name used for detached document fragments.
const FragmentName = "$documentFragment"

// NewFragment creates a detached container for model nodes that do not belong
// to a document, such as the result of upcasting.
func NewFragment(children ...Node) *Element {
	return NewElement(FragmentName, nil, children...)
}

// ID returns the stable node handle.
func (e *Element) ID() NodeID { return e.id }

// Name returns the element name.
func (e *Element) Name() string { return e.name }

// Parent returns the parent element.
func (e *Element) Parent() *Element { return e.parent }

func (e *Element) setParent(p *Element) { e.parent = p }

// OffsetSize is always 1 for elements.
func (e *Element) OffsetSize() int { return 1 }

// Attribute returns the attribute value.
func (e *Element) Attribute(key string) (any, bool) { return e.attrs.get(key) }

// HasAttribute reports whether the attribute is set.
func (e *Element) HasAttribute(key string) bool {
	_, ok := e.attrs[key]
	return ok
}

// AttributeKeys returns the attribute keys in sorted order.
func (e *Element) AttributeKeys() []string { return e.attrs.keys() }

// Attributes returns a copy of the attribute map.
func (e *Element) Attributes() map[string]any { return e.attrs.clone() }

// IsRoot reports whether the element has no parent.
func (e *Element) IsRoot() bool { return e.parent == nil }

// RootName returns the name under which a root is registered in its document.
func (e *Element) RootName() string { return e.rootName }

// Document returns the owning document of a root element.
func (e *Element) Document() *Document {
	if r := e.Root(); r != nil {
		return r.doc
	}
	return nil
}

// Root returns the top-most ancestor, or the element itself.
func (e *Element) Root() *Element {
	cur := e
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// ChildCount returns the number of child nodes.
func (e *Element) ChildCount() int { return len(e.children) }

// Child returns the child at index, or nil.
func (e *Element) Child(i int) Node {
	if i < 0 || i >= len(e.children) {
		return nil
	}
	return e.children[i]
}

// Children returns a copy of the child list.
func (e *Element) Children() []Node {
	out := make([]Node, len(e.children))
	copy(out, e.children)
	return out
}

// IsEmpty reports whether the element has no children.
func (e *Element) IsEmpty() bool { return len(e.children) == 0 }

// MaxOffset returns the sum of the offset sizes of all children.
func (e *Element) MaxOffset() int {
	n := 0
	for _, c := range e.children {
		n += c.OffsetSize()
	}
	return n
}

// Index returns the position of the element among its siblings, or -1.
func (e *Element) Index() int {
	if e.parent == nil {
		return -1
	}
	return e.parent.indexOf(e)
}

// StartOffset returns the offset of the element in its parent, or -1.
func (e *Element) StartOffset() int {
	if e.parent == nil {
		return -1
	}
	return e.parent.offsetOfIndex(e.Index())
}

// Path returns the offsets from the root to this element.
func (e *Element) Path() []int {
	var path []int
	for cur := e; cur.parent != nil; cur = cur.parent {
		path = append([]int{cur.StartOffset()}, path...)
	}
	return path
}

// OffsetToIndex converts an offset to the index of the child that contains
// or starts at it. Offsets at or past MaxOffset map to ChildCount.
func (e *Element) OffsetToIndex(offset int) int {
	total := 0
	for i, c := range e.children {
		size := c.OffsetSize()
		if offset < total+size {
			return i
		}
		total += size
	}
	return len(e.children)
}

// ChildAtOffset returns the child that contains or starts at offset.
func (e *Element) ChildAtOffset(offset int) Node {
	return e.Child(e.OffsetToIndex(offset))
}

// IsAncestorOf reports whether e contains n at any depth.
func (e *Element) IsAncestorOf(n Item) bool {
	for p := n.Parent(); p != nil; p = p.parent {
		if p == e {
			return true
		}
	}
	return false
}

func (e *Element) indexOf(n Node) int {
	for i, c := range e.children {
		if c == n {
			return i
		}
	}
	return -1
}

func (e *Element) offsetOfIndex(index int) int {
	total := 0
	for i := 0; i < index && i < len(e.children); i++ {
		total += e.children[i].OffsetSize()
	}
	return total
}

func (e *Element) insertChildren(index int, nodes ...Node) {
	if len(nodes) == 0 {
		return
	}
	for _, n := range nodes {
		n.setParent(e)
	}
	tail := append([]Node{}, e.children[index:]...)
	e.children = append(append(e.children[:index], nodes...), tail...)
}

func (e *Element) removeChildren(index, count int) []Node {
	removed := make([]Node, count)
	copy(removed, e.children[index:index+count])
	e.children = append(e.children[:index], e.children[index+count:]...)
	for _, n := range removed {
		n.setParent(nil)
	}
	return removed
}

// splitAt makes sure no text node straddles offset and returns the child
// index that starts at offset.
func (e *Element) splitAt(offset int) int {
	index := e.OffsetToIndex(offset)
	child := e.Child(index)
	t, ok := child.(*Text)
	if !ok {
		return index
	}
	start := e.offsetOfIndex(index)
	if start == offset {
		return index
	}
	runes := []rune(t.data)
	cut := offset - start
	tail := &Text{id: newNodeID(), data: string(runes[cut:]), attrs: newAttributes(t.attrs)}
	t.data = string(runes[:cut])
	e.insertChildren(index+1, tail)
	return index + 1
}

// normalize merges adjacent text nodes with equal attributes among children
// in [from-1, to+1].
func (e *Element) normalize(from, to int) {
	if from < 1 {
		from = 1
	}
	if to > len(e.children)-1 {
		to = len(e.children) - 1
	}
	for i := to; i >= from; i-- {
		prev, ok1 := e.children[i-1].(*Text)
		cur, ok2 := e.children[i].(*Text)
		if ok1 && ok2 && prev.attrs.equal(cur.attrs) {
			prev.data += cur.data
			e.removeChildren(i, 1)
		}
	}
}
