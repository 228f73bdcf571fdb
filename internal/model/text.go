package model

import "unicode/utf8"

// Text is a run of characters sharing one attribute set.
type Text struct {
	id     NodeID
	data   string
	attrs  attributes
	parent *Element
}

// NewText creates a detached text node.
func NewText(data string, attrs map[string]any) *Text {
	return &Text{id: newNodeID(), data: data, attrs: newAttributes(attrs)}
}

// ID returns the stable node handle.
func (t *Text) ID() NodeID { return t.id }

// Name returns TextName.
func (t *Text) Name() string { return TextName }

// Data returns the characters.
func (t *Text) Data() string { return t.data }

// Parent returns the containing element.
func (t *Text) Parent() *Element { return t.parent }

func (t *Text) setParent(p *Element) { t.parent = p }

// OffsetSize returns the number of characters.
func (t *Text) OffsetSize() int { return utf8.RuneCountInString(t.data) }

// StartOffset returns the offset of the node in its parent, or -1.
func (t *Text) StartOffset() int {
	if t.parent == nil {
		return -1
	}
	return t.parent.offsetOfIndex(t.parent.indexOf(t))
}

// EndOffset returns StartOffset + OffsetSize, or -1.
func (t *Text) EndOffset() int {
	if t.parent == nil {
		return -1
	}
	return t.StartOffset() + t.OffsetSize()
}

// Attribute returns the attribute value.
func (t *Text) Attribute(key string) (any, bool) { return t.attrs.get(key) }

// HasAttribute reports whether the attribute is set.
func (t *Text) HasAttribute(key string) bool {
	_, ok := t.attrs[key]
	return ok
}

// AttributeKeys returns the attribute keys in sorted order.
func (t *Text) AttributeKeys() []string { return t.attrs.keys() }

// Attributes returns a copy of the attribute map.
func (t *Text) Attributes() map[string]any { return t.attrs.clone() }

// TextProxy is a view onto part (or all) of a text node. Walkers yield
// proxies so a range boundary inside a text node does not split it.
type TextProxy struct {
	text   *Text
	offset int
	length int
}

// NewTextProxy creates a proxy over length characters starting at offset.
func NewTextProxy(t *Text, offset, length int) *TextProxy {
	return &TextProxy{text: t, offset: offset, length: length}
}

// TextNode returns the proxied text node.
func (p *TextProxy) TextNode() *Text { return p.text }

// OffsetInText returns where the proxy starts inside its text node.
func (p *TextProxy) OffsetInText() int { return p.offset }

// Data returns the proxied characters.
func (p *TextProxy) Data() string {
	runes := []rune(p.text.data)
	return string(runes[p.offset : p.offset+p.length])
}

// Name returns TextName.
func (p *TextProxy) Name() string { return TextName }

// Parent returns the parent of the text node.
func (p *TextProxy) Parent() *Element { return p.text.parent }

// OffsetSize returns the proxied length.
func (p *TextProxy) OffsetSize() int { return p.length }

// StartOffset returns the offset of the first proxied character in the parent.
func (p *TextProxy) StartOffset() int {
	if p.text.parent == nil {
		return -1
	}
	return p.text.StartOffset() + p.offset
}

// IsPartial reports whether the proxy does not cover the whole text node.
func (p *TextProxy) IsPartial() bool {
	return p.offset != 0 || p.length != p.text.OffsetSize()
}

// Attribute returns the attribute value of the text node.
func (p *TextProxy) Attribute(key string) (any, bool) { return p.text.Attribute(key) }

// HasAttribute reports whether the text node has the attribute.
func (p *TextProxy) HasAttribute(key string) bool { return p.text.HasAttribute(key) }

// AttributeKeys returns the text node attribute keys.
func (p *TextProxy) AttributeKeys() []string { return p.text.AttributeKeys() }
