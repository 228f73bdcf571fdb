package view

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the closed set of view element variants.
type Kind int

const (
	// KindContainer is a structural block element.
	KindContainer Kind = iota
	// KindAttribute is an inline wrapper that may merge with similar
	// neighbours.
	KindAttribute
	// KindEmpty is a leaf element that never has children.
	KindEmpty
	// KindUI is a presentational leaf element with no model counterpart.
	KindUI
	// KindRoot is a container registered as a document root.
	KindRoot
	// KindFragment is a detached container for view nodes.
	KindFragment
)

var kindNames = [...]string{"container", "attribute", "empty", "ui", "root", "fragment"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// DefaultPriority is the priority of attribute elements created without one.
const DefaultPriority = 10

// Element is a view element of any Kind. Kind-specific data (priority and id
// for attribute elements) is ignored for other kinds.
type Element struct {
	id       NodeID
	kind     Kind
	name     string
	attrs    map[string]string
	classes  *TokenList
	styles   *StylesMap
	custom   map[any]any
	children []Node
	parent   *Element

	priority     int
	elementID    string
	neverSimilar bool

	doc      *Document
	rootName string
}

// Option customizes an element at construction time.
type Option func(*Element)

// WithPriority sets the priority of an attribute element. Higher priorities
// nest further out.
func WithPriority(p int) Option { return func(e *Element) { e.priority = p } }

// WithElementID sets the id of an attribute element. Elements with an id
// only merge with elements carrying the same id.
func WithElementID(id string) Option { return func(e *Element) { e.elementID = id } }

// WithChildren appends children. It is ignored for empty and UI elements.
func WithChildren(children ...Node) Option {
	return func(e *Element) {
		if e.kind == KindEmpty || e.kind == KindUI {
			return
		}
		e.insertChildren(len(e.children), children...)
	}
}

// WithCustomProperty stores a custom property.
func WithCustomProperty(key, value any) Option {
	return func(e *Element) { e.custom[key] = value }
}

// NewElement creates a detached element. The "class" and "style" entries
// of attrs are parsed into a token list and a styles map.
func NewElement(kind Kind, name string, attrs map[string]string, opts ...Option) *Element {
	e := &Element{
		id:       newNodeID(),
		kind:     kind,
		name:     name,
		attrs:    make(map[string]string),
		classes:  &TokenList{},
		styles:   NewStylesMap(""),
		custom:   make(map[any]any),
		priority: DefaultPriority,
	}
	for k, v := range attrs {
		e.setAttribute(k, v)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewContainerElement creates a container element with children.
func NewContainerElement(name string, attrs map[string]string, children ...Node) *Element {
	return NewElement(KindContainer, name, attrs, WithChildren(children...))
}

// NewAttributeElement creates an attribute element.
func NewAttributeElement(name string, attrs map[string]string, opts ...Option) *Element {
	return NewElement(KindAttribute, name, attrs, opts...)
}

// NewEmptyElement creates an empty element.
func NewEmptyElement(name string, attrs map[string]string) *Element {
	return NewElement(KindEmpty, name, attrs)
}

// NewUIElement creates a UI element.
func NewUIElement(name string, attrs map[string]string) *Element {
	return NewElement(KindUI, name, attrs)
}

// NewFragment creates a detached fragment holding children.
func NewFragment(children ...Node) *Element {
	return NewElement(KindFragment, "", nil, WithChildren(children...))
}

// ID returns the stable node handle.
func (e *Element) ID() NodeID { return e.id }

// Kind returns the element variant.
func (e *Element) Kind() Kind { return e.kind }

// Is reports whether the element is of kind k.
func (e *Element) Is(k Kind) bool { return e.kind == k }

// Name returns the element name.
func (e *Element) Name() string { return e.name }

// Priority returns the wrapping priority of an attribute element.
func (e *Element) Priority() int { return e.priority }

// ElementID returns the merge id of an attribute element.
func (e *Element) ElementID() string { return e.elementID }

// Parent returns the parent element.
func (e *Element) Parent() *Element { return e.parent }

func (e *Element) setParent(p *Element) { e.parent = p }

// Index returns the position among siblings.
func (e *Element) Index() int { return indexOf(e.parent, e) }

// RootName returns the name a root element is registered under.
func (e *Element) RootName() string { return e.rootName }

// Document returns the document owning the root of e.
func (e *Element) Document() *Document {
	if r, ok := Root(e).(*Element); ok {
		return r.doc
	}
	return nil
}

// IsContainerLike reports whether breaking attributes stops at e.
func (e *Element) IsContainerLike() bool {
	return e.kind == KindContainer || e.kind == KindRoot || e.kind == KindFragment
}

// ChildCount returns the number of children.
func (e *Element) ChildCount() int { return len(e.children) }

// Child returns the child at i or nil.
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

// IsEmpty reports whether e has no children.
func (e *Element) IsEmpty() bool { return len(e.children) == 0 }

// Attribute returns an attribute value. "class" and "style" are serialized
// from the token list and styles map.
func (e *Element) Attribute(key string) (string, bool) {
	switch key {
	case "class":
		if e.classes.IsEmpty() {
			return "", false
		}
		return e.classes.String(), true
	case "style":
		if e.styles.IsEmpty() {
			return "", false
		}
		return e.styles.String(), true
	}
	v, ok := e.attrs[key]
	return v, ok
}

// HasAttribute reports whether the attribute is set.
func (e *Element) HasAttribute(key string) bool {
	_, ok := e.Attribute(key)
	return ok
}

// AttributeKeys returns all attribute keys, including class and style when
// set, in sorted order.
func (e *Element) AttributeKeys() []string {
	keys := e.plainKeys()
	if !e.classes.IsEmpty() {
		keys = append(keys, "class")
	}
	if !e.styles.IsEmpty() {
		keys = append(keys, "style")
	}
	sort.Strings(keys)
	return keys
}

func (e *Element) plainKeys() []string {
	keys := make([]string, 0, len(e.attrs))
	for k := range e.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Classes returns the class names in insertion order.
func (e *Element) Classes() []string { return e.classes.Tokens() }

// HasClass reports whether all given classes are set.
func (e *Element) HasClass(names ...string) bool { return e.classes.Has(names...) }

// Style returns a style property.
func (e *Element) Style(name string) (string, bool) { return e.styles.Get(name) }

// HasStyle reports whether the style property is set.
func (e *Element) HasStyle(name string) bool { return e.styles.Has(name) }

// StyleNames returns the style property names in sorted order.
func (e *Element) StyleNames() []string { return e.styles.Names() }

// CustomProperty returns a custom property.
func (e *Element) CustomProperty(key any) (any, bool) {
	v, ok := e.custom[key]
	return v, ok
}

// IsSimilar reports whether o could be merged with e: same kind and name,
// equal plain attributes, and the same class set and styles regardless of
// order. Attribute elements must also share priority and id.
func (e *Element) IsSimilar(o *Element) bool {
	if o == nil {
		return false
	}
	if e == o {
		return true
	}
	if e.neverSimilar || o.neverSimilar {
		return false
	}
	if e.kind != o.kind || e.name != o.name {
		return false
	}
	if e.kind == KindAttribute {
		if e.priority != o.priority {
			return false
		}
		if e.elementID != "" || o.elementID != "" {
			return e.elementID == o.elementID
		}
	}
	if len(e.attrs) != len(o.attrs) {
		return false
	}
	for k, v := range e.attrs {
		if w, ok := o.attrs[k]; !ok || w != v {
			return false
		}
	}
	return e.classes.Equal(o.classes) && e.styles.Equal(o.styles)
}

// Identity returns a canonical string describing the element: name, sorted
// classes, sorted styles, sorted other attributes and, for attribute
// elements, priority and id. Similar elements of the same kind share an
// identity, so it can key a map of elements. Merging always goes through
// IsSimilar, which also checks kind and non-mergeable elements.
func (e *Element) Identity() string {
	var b strings.Builder
	b.WriteString(e.name)
	if !e.classes.IsEmpty() {
		b.WriteString(" class=\"" + strings.Join(e.classes.Sorted(), ",") + "\"")
	}
	if !e.styles.IsEmpty() {
		b.WriteString(" style=\"" + e.styles.String() + "\"")
	}
	for _, k := range e.plainKeys() {
		fmt.Fprintf(&b, " %s=%q", k, e.attrs[k])
	}
	if e.kind == KindAttribute {
		fmt.Fprintf(&b, " #%d", e.priority)
		if e.elementID != "" {
			b.WriteString(" @" + e.elementID)
		}
	}
	return b.String()
}

func (e *Element) setAttribute(key, value string) {
	switch key {
	case "class":
		e.classes = NewTokenList(value)
	case "style":
		e.styles = NewStylesMap(value)
	default:
		e.attrs[key] = value
	}
}

func (e *Element) removeAttribute(key string) {
	switch key {
	case "class":
		e.classes.Clear()
	case "style":
		e.styles.Clear()
	default:
		delete(e.attrs, key)
	}
}

// insertChildren detaches nodes from their current parents and inserts them
// at index.
func (e *Element) insertChildren(index int, nodes ...Node) int {
	for _, n := range nodes {
		if p := n.Parent(); p != nil {
			p.removeChildren(n.Index(), 1)
		}
		n.setParent(e)
	}
	tail := append([]Node{}, e.children[index:]...)
	e.children = append(append(e.children[:index], nodes...), tail...)
	return len(nodes)
}

func (e *Element) appendChildren(nodes ...Node) {
	e.insertChildren(len(e.children), nodes...)
}

func (e *Element) removeChildren(index, count int) []Node {
	if index < 0 || count <= 0 || index >= len(e.children) {
		return nil
	}
	if index+count > len(e.children) {
		count = len(e.children) - index
	}
	removed := make([]Node, count)
	copy(removed, e.children[index:index+count])
	e.children = append(e.children[:index], e.children[index+count:]...)
	for _, n := range removed {
		n.setParent(nil)
	}
	return removed
}

func detach(n Node) {
	if p := n.Parent(); p != nil {
		p.removeChildren(n.Index(), 1)
	}
}

// clone copies name, kind, attributes, classes, styles, custom properties,
// priority and id. Children are copied only when deep is set.
func (e *Element) clone(deep bool) *Element {
	c := &Element{
		id:           newNodeID(),
		kind:         e.kind,
		name:         e.name,
		attrs:        make(map[string]string, len(e.attrs)),
		classes:      e.classes.Clone(),
		styles:       e.styles.Clone(),
		custom:       make(map[any]any, len(e.custom)),
		priority:     e.priority,
		elementID:    e.elementID,
		neverSimilar: e.neverSimilar,
	}
	for k, v := range e.attrs {
		c.attrs[k] = v
	}
	for k, v := range e.custom {
		c.custom[k] = v
	}
	if deep {
		for _, child := range e.children {
			switch n := child.(type) {
			case *Element:
				c.appendChildren(n.clone(true))
			case *Text:
				c.appendChildren(NewText(n.data))
			}
		}
	}
	return c
}

// Clone returns a detached copy of e. Deep also copies the subtree.
func (e *Element) Clone(deep bool) *Element { return e.clone(deep) }
