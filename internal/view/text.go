package view

import "unicode/utf8"

// Text is a view text node.
type Text struct {
	id     NodeID
	data   string
	parent *Element
}

// NewText creates a detached text node.
func NewText(data string) *Text {
	return &Text{id: newNodeID(), data: data}
}

// ID returns the stable node handle.
func (t *Text) ID() NodeID { return t.id }

// Data returns the characters.
func (t *Text) Data() string { return t.data }

// Len returns the number of characters.
func (t *Text) Len() int { return utf8.RuneCountInString(t.data) }

// Parent returns the parent element.
func (t *Text) Parent() *Element { return t.parent }

func (t *Text) setParent(p *Element) { t.parent = p }

// Index returns the position among siblings.
func (t *Text) Index() int { return indexOf(t.parent, t) }

// IsSimilar reports whether both nodes carry the same characters.
func (t *Text) IsSimilar(o *Text) bool { return o != nil && t.data == o.data }

func (t *Text) slice(from, to int) string {
	runes := []rune(t.data)
	return string(runes[from:to])
}

// TextProxy is a view onto part of a text node.
type TextProxy struct {
	text   *Text
	offset int
	length int
}

// TextNode returns the proxied text node.
func (p *TextProxy) TextNode() *Text { return p.text }

// OffsetInText returns where the proxy starts inside its text node.
func (p *TextProxy) OffsetInText() int { return p.offset }

// Len returns the number of proxied characters.
func (p *TextProxy) Len() int { return p.length }

// Data returns the proxied characters.
func (p *TextProxy) Data() string { return p.text.slice(p.offset, p.offset+p.length) }

// Parent returns the parent of the text node.
func (p *TextProxy) Parent() *Element { return p.text.parent }

// IsPartial reports whether the proxy covers only part of its text node.
func (p *TextProxy) IsPartial() bool { return p.offset != 0 || p.length != p.text.Len() }
