package view

import "math"

// placeholderPriority keeps the temporary caret marker innermost.
const placeholderPriority = math.MinInt

// Wrap wraps the content of r with copies of the attribute element attr.
// Existing attribute elements with a higher priority stay outside attr, ones
// with a lower priority end up inside it. On equal priority the element that
// was there first stays outside. Adjacent similar elements are merged.
//
// A collapsed range wraps the position itself: the returned position lies
// inside the new (or merged) attribute element.
func (w *Writer) Wrap(r Range, attr *Element) (Range, error) {
	if attr.kind != KindAttribute {
		return Range{}, ErrNotAttributeElement
	}
	if err := validateRangeContainer(r); err != nil {
		return Range{}, err
	}
	if !r.IsCollapsed() {
		return w.wrapRange(r, attr)
	}

	pos := r.Start
	if e, ok := pos.ParentElement(); ok && !hasNonUIChildren(e) {
		pos = pos.LastMatchingPosition(func(v WalkerValue) bool {
			el, ok := v.Item.(*Element)
			return ok && el.kind == KindUI
		})
	}
	pos, err := w.wrapPosition(pos, attr)
	if err != nil {
		return Range{}, err
	}
	if w.doc != nil {
		sel := w.doc.selection
		if first, ok := sel.FirstPosition(); ok && sel.IsCollapsed() && first.IsEqual(r.Start) {
			w.SetSelectionAt(pos)
		}
	}
	return CollapsedRange(pos), nil
}

// Unwrap removes attr from the content of r. Elements similar to attr are
// replaced by their children; elements that merely contain all of attr's
// attributes lose those attributes.
func (w *Writer) Unwrap(r Range, attr *Element) (Range, error) {
	if attr.kind != KindAttribute {
		return Range{}, ErrNotAttributeElement
	}
	if err := validateRangeContainer(r); err != nil {
		return Range{}, err
	}
	if r.IsCollapsed() {
		return r, nil
	}
	start, end, err := w.breakAttributesRange(r, true)
	if err != nil {
		return Range{}, err
	}
	parent := start.Parent.(*Element)
	nr := w.unwrapChildren(parent, start.Offset, end.Offset, attr)
	s := w.mergeAttributes(nr.Start)
	if !s.IsEqual(nr.Start) {
		nr.End.Offset--
	}
	e := w.mergeAttributes(nr.End)
	return Range{Start: s, End: e}, nil
}

func (w *Writer) wrapRange(r Range, attr *Element) (Range, error) {
	start, end, err := w.breakAttributesRange(r, true)
	if err != nil {
		return Range{}, err
	}
	parent := start.Parent.(*Element)
	nr := w.wrapChildren(parent, start.Offset, end.Offset, attr)
	s := w.mergeAttributes(nr.Start)
	if !s.IsEqual(nr.Start) {
		nr.End.Offset--
	}
	e := w.mergeAttributes(nr.End)
	return Range{Start: s, End: e}, nil
}

func (w *Writer) wrapPosition(p Position, attr *Element) (Position, error) {
	if pe, ok := p.ParentElement(); ok && attr.IsSimilar(pe) {
		return movePositionToTextNode(p), nil
	}
	if _, ok := p.TextNode(); ok {
		p = breakTextNode(p)
	}
	parent, ok := p.ParentElement()
	if !ok {
		return p, ErrInvalidPosition
	}

	placeholder := NewAttributeElement("", nil, WithPriority(placeholderPriority))
	placeholder.neverSimilar = true
	parent.insertChildren(p.Offset, placeholder)

	if _, err := w.wrapRange(Range{Start: p, End: p.ShiftedBy(1)}, attr); err != nil {
		detach(placeholder)
		return p, err
	}
	np := Position{Parent: placeholder.parent, Offset: placeholder.Index()}
	detach(placeholder)

	before, after := np.NodeBefore(), np.NodeAfter()
	if t1, ok := before.(*Text); ok {
		if t2, ok := after.(*Text); ok {
			return mergeTextNodes(t1, t2), nil
		}
	}
	return movePositionToTextNode(np), nil
}

// shouldBeOutside reports whether wrapper a goes outside the existing
// attribute element b.
func shouldBeOutside(a, b *Element) bool {
	return a.priority > b.priority
}

func canBeJoined(a, b *Element) bool {
	return a.elementID == "" && b.elementID == "" && !a.neverSimilar && !b.neverSimilar
}

func (w *Writer) wrapChildren(parent *Element, startOffset, endOffset int, wrapper *Element) Range {
	var wrapPositions []int
	for i := startOffset; i < endOffset; i++ {
		child := parent.children[i]
		el, isElement := child.(*Element)
		_, isText := child.(*Text)
		isAttr := isElement && el.kind == KindAttribute
		leaf := isText || isElement && (el.kind == KindEmpty || el.kind == KindUI)

		switch {
		case isAttr && w.wrapAttributeElement(wrapper, el):
			wrapPositions = append(wrapPositions, i)
		case leaf || isAttr && shouldBeOutside(wrapper, el):
			nw := wrapper.clone(false)
			parent.removeChildren(i, 1)
			nw.appendChildren(child)
			parent.insertChildren(i, nw)
			wrapPositions = append(wrapPositions, i)
		case isAttr:
			w.wrapChildren(el, 0, el.ChildCount(), wrapper)
		}
	}

	offsetChange := 0
	for _, off := range wrapPositions {
		off -= offsetChange
		if off == startOffset {
			continue
		}
		p := Position{Parent: parent, Offset: off}
		if np := w.mergeAttributes(p); !np.IsEqual(p) {
			offsetChange++
			endOffset--
		}
	}
	return Range{Start: Position{Parent: parent, Offset: startOffset}, End: Position{Parent: parent, Offset: endOffset}}
}

func (w *Writer) unwrapChildren(parent *Element, startOffset, endOffset int, unwrapper *Element) Range {
	var unwrapPositions []int
	for i := startOffset; i < endOffset; {
		el, ok := parent.children[i].(*Element)
		if !ok || el.kind != KindAttribute {
			i++
			continue
		}
		if el.IsSimilar(unwrapper) {
			children := el.Children()
			count := len(children)
			parent.removeChildren(i, 1)
			parent.insertChildren(i, children...)
			unwrapPositions = append(unwrapPositions, i, i+count)
			i += count
			endOffset += count - 1
			continue
		}
		if w.unwrapAttributeElement(unwrapper, el) {
			unwrapPositions = append(unwrapPositions, i, i+1)
			i++
			continue
		}
		w.unwrapChildren(el, 0, el.ChildCount(), unwrapper)
		i++
	}

	offsetChange := 0
	for _, off := range unwrapPositions {
		off -= offsetChange
		if off == startOffset || off == endOffset {
			continue
		}
		p := Position{Parent: parent, Offset: off}
		if np := w.mergeAttributes(p); !np.IsEqual(p) {
			offsetChange++
			endOffset--
		}
	}
	return Range{Start: Position{Parent: parent, Offset: startOffset}, End: Position{Parent: parent, Offset: endOffset}}
}

// wrapAttributeElement merges wrapper into toWrap when they share name and
// priority and have no conflicting attribute or style values.
func (w *Writer) wrapAttributeElement(wrapper, toWrap *Element) bool {
	if !canBeJoined(wrapper, toWrap) {
		return false
	}
	if wrapper.name != toWrap.name || wrapper.priority != toWrap.priority {
		return false
	}
	for k, v := range wrapper.attrs {
		if cur, ok := toWrap.attrs[k]; ok && cur != v {
			return false
		}
	}
	for _, name := range wrapper.styles.Names() {
		v, _ := wrapper.styles.Get(name)
		if cur, ok := toWrap.styles.Get(name); ok && cur != v {
			return false
		}
	}
	for k, v := range wrapper.attrs {
		if _, ok := toWrap.attrs[k]; !ok {
			toWrap.attrs[k] = v
		}
	}
	for _, name := range wrapper.styles.Names() {
		if !toWrap.styles.Has(name) {
			v, _ := wrapper.styles.Get(name)
			toWrap.styles.Set(name, v)
		}
	}
	toWrap.classes.Add(wrapper.classes.Tokens()...)
	return true
}

// unwrapAttributeElement strips wrapper's attributes, classes and styles from
// toUnwrap when toUnwrap carries all of them.
func (w *Writer) unwrapAttributeElement(wrapper, toUnwrap *Element) bool {
	if !canBeJoined(wrapper, toUnwrap) {
		return false
	}
	if wrapper.name != toUnwrap.name || wrapper.priority != toUnwrap.priority {
		return false
	}
	for k, v := range wrapper.attrs {
		if cur, ok := toUnwrap.attrs[k]; !ok || cur != v {
			return false
		}
	}
	if !toUnwrap.classes.Has(wrapper.classes.Tokens()...) {
		return false
	}
	for _, name := range wrapper.styles.Names() {
		v, _ := wrapper.styles.Get(name)
		if cur, ok := toUnwrap.styles.Get(name); !ok || cur != v {
			return false
		}
	}
	for k := range wrapper.attrs {
		delete(toUnwrap.attrs, k)
	}
	toUnwrap.classes.Remove(wrapper.classes.Tokens()...)
	toUnwrap.styles.Remove(wrapper.styles.Names()...)
	return true
}

func (w *Writer) mergeAttributes(p Position) Position {
	parent, ok := p.ParentElement()
	if !ok {
		return p
	}
	if parent.kind == KindAttribute && parent.ChildCount() == 0 && parent.parent != nil {
		grand := parent.parent
		offset := parent.Index()
		detach(parent)
		return w.mergeAttributes(Position{Parent: grand, Offset: offset})
	}
	before := parent.Child(p.Offset - 1)
	after := parent.Child(p.Offset)
	if before == nil || after == nil {
		return p
	}
	if t1, ok := before.(*Text); ok {
		if t2, ok := after.(*Text); ok {
			return mergeTextNodes(t1, t2)
		}
		return p
	}
	e1, ok1 := before.(*Element)
	e2, ok2 := after.(*Element)
	if ok1 && ok2 && e1.kind == KindAttribute && e2.kind == KindAttribute && e1.IsSimilar(e2) {
		count := e1.ChildCount()
		e1.appendChildren(e2.Children()...)
		detach(e2)
		return w.mergeAttributes(Position{Parent: e1, Offset: count})
	}
	return p
}

func (w *Writer) breakAttributesRange(r Range, forceSplitText bool) (Position, Position, error) {
	if err := validateRangeContainer(r); err != nil {
		return Position{}, Position{}, err
	}
	if r.IsCollapsed() {
		p, err := w.breakAttributes(r.Start, forceSplitText)
		return p, p, err
	}
	end, err := w.breakAttributes(r.End, forceSplitText)
	if err != nil {
		return Position{}, Position{}, err
	}
	endParent := end.Parent.(*Element)
	count := endParent.ChildCount()
	start, err := w.breakAttributes(r.Start, forceSplitText)
	if err != nil {
		return Position{}, Position{}, err
	}
	end.Offset += endParent.ChildCount() - count
	return start, end, nil
}

func (w *Writer) breakAttributes(p Position, forceSplitText bool) (Position, error) {
	switch parent := p.Parent.(type) {
	case *Text:
		if parent.parent == nil {
			return p, ErrDetached
		}
		if !forceSplitText && parent.parent.IsContainerLike() {
			return p, nil
		}
		return w.breakAttributes(breakTextNode(p), forceSplitText)
	case *Element:
		switch parent.kind {
		case KindEmpty:
			return p, ErrCannotBreakEmpty
		case KindUI:
			return p, ErrCannotBreakUI
		}
		if parent.IsContainerLike() {
			return p, nil
		}
		grand := parent.parent
		if grand == nil {
			return p, ErrDetached
		}
		switch length := parent.ChildCount(); p.Offset {
		case length:
			return w.breakAttributes(Position{Parent: grand, Offset: parent.Index() + 1}, forceSplitText)
		case 0:
			return w.breakAttributes(Position{Parent: grand, Offset: parent.Index()}, forceSplitText)
		default:
			offsetAfter := parent.Index() + 1
			clone := parent.clone(false)
			grand.insertChildren(offsetAfter, clone)
			clone.appendChildren(parent.removeChildren(p.Offset, length-p.Offset)...)
			return w.breakAttributes(Position{Parent: grand, Offset: offsetAfter}, forceSplitText)
		}
	}
	return p, ErrInvalidPosition
}

func hasNonUIChildren(e *Element) bool {
	for _, c := range e.children {
		if el, ok := c.(*Element); !ok || el.kind != KindUI {
			return true
		}
	}
	return false
}

// breakTextNode splits the text node at p and returns the position between
// the halves in the text's parent.
func breakTextNode(p Position) Position {
	t := p.Parent.(*Text)
	parent := t.parent
	switch p.Offset {
	case t.Len():
		return Position{Parent: parent, Offset: t.Index() + 1}
	case 0:
		return Position{Parent: parent, Offset: t.Index()}
	}
	tail := NewText(t.slice(p.Offset, t.Len()))
	t.data = t.slice(0, p.Offset)
	parent.insertChildren(t.Index()+1, tail)
	return Position{Parent: parent, Offset: t.Index() + 1}
}

func mergeTextNodes(t1, t2 *Text) Position {
	n := t1.Len()
	t1.data += t2.data
	detach(t2)
	return Position{Parent: t1, Offset: n}
}

func movePositionToTextNode(p Position) Position {
	if t, ok := p.NodeBefore().(*Text); ok {
		return Position{Parent: t, Offset: t.Len()}
	}
	if t, ok := p.NodeAfter().(*Text); ok {
		return Position{Parent: t, Offset: 0}
	}
	return p
}
