package view

// Writer is the only supported way to mutate the view. Nodes built with the
// New* constructors may be assembled freely while detached; once inserted,
// changes go through a Writer so attribute elements stay merged.
type Writer struct {
	doc *Document
}

// NewWriter returns a writer for doc. A nil doc is allowed for writers that
// only touch detached fragments.
func NewWriter(doc *Document) *Writer {
	return &Writer{doc: doc}
}

// Document returns the document the writer updates.
func (w *Writer) Document() *Document { return w.doc }

// CreateText creates a text node.
func (w *Writer) CreateText(data string) *Text { return NewText(data) }

// CreateContainerElement creates a container element.
func (w *Writer) CreateContainerElement(name string, attrs map[string]string, children ...Node) *Element {
	return NewContainerElement(name, attrs, children...)
}

// CreateAttributeElement creates an attribute element.
func (w *Writer) CreateAttributeElement(name string, attrs map[string]string, opts ...Option) *Element {
	return NewAttributeElement(name, attrs, opts...)
}

// CreateEmptyElement creates an empty element.
func (w *Writer) CreateEmptyElement(name string, attrs map[string]string) *Element {
	return NewEmptyElement(name, attrs)
}

// CreateUIElement creates a UI element.
func (w *Writer) CreateUIElement(name string, attrs map[string]string) *Element {
	return NewUIElement(name, attrs)
}

// SetAttribute sets an attribute. "class" and "style" replace the whole
// token list or styles map.
func (w *Writer) SetAttribute(key, value string, e *Element) { e.setAttribute(key, value) }

// RemoveAttribute removes an attribute.
func (w *Writer) RemoveAttribute(key string, e *Element) { e.removeAttribute(key) }

// AddClass adds class names.
func (w *Writer) AddClass(e *Element, names ...string) { e.classes.Add(names...) }

// RemoveClass removes class names.
func (w *Writer) RemoveClass(e *Element, names ...string) { e.classes.Remove(names...) }

// SetStyle sets one style property.
func (w *Writer) SetStyle(name, value string, e *Element) { e.styles.Set(name, value) }

// RemoveStyle removes style properties.
func (w *Writer) RemoveStyle(e *Element, names ...string) { e.styles.Remove(names...) }

// SetCustomProperty stores a value on the element that is not rendered.
func (w *Writer) SetCustomProperty(key, value any, e *Element) { e.custom[key] = value }

// RemoveCustomProperty deletes a custom property and reports whether it
// existed.
func (w *Writer) RemoveCustomProperty(key any, e *Element) bool {
	_, ok := e.custom[key]
	delete(e.custom, key)
	return ok
}

// SetSelection replaces the document selection.
func (w *Writer) SetSelection(ranges []Range, opts SelectionOptions) {
	if w.doc == nil {
		return
	}
	w.doc.selection.set(ranges, opts)
}

// SetSelectionAt collapses the selection at p, keeping the fake state.
func (w *Writer) SetSelectionAt(p Position) {
	if w.doc == nil {
		return
	}
	sel := w.doc.selection
	w.SetSelection([]Range{CollapsedRange(p)}, SelectionOptions{Fake: sel.fake, Label: sel.fakeLabel})
}

// Insert inserts nodes at pos, breaking attribute elements up to the
// container and merging at both ends. It returns the range of the inserted
// content after merging.
func (w *Writer) Insert(pos Position, nodes ...Node) (Range, error) {
	for _, n := range nodes {
		if e, ok := n.(*Element); ok && (e.kind == KindRoot || e.kind == KindFragment) {
			return Range{}, ErrInvalidNode
		}
	}
	if e, ok := pos.ParentElement(); ok && (e.kind == KindEmpty || e.kind == KindUI) {
		return Range{}, ErrInvalidNode
	}
	if parentContainer(pos) == nil {
		return Range{}, ErrInvalidPosition
	}
	at, err := w.breakAttributes(pos, true)
	if err != nil {
		return Range{}, err
	}
	parent := at.Parent.(*Element)
	length := parent.insertChildren(at.Offset, nodes...)
	end := at.ShiftedBy(length)
	start := w.mergeAttributes(at)
	if length == 0 {
		return CollapsedRange(start), nil
	}
	if !start.IsEqual(at) {
		end.Offset--
	}
	end = w.mergeAttributes(end)
	return Range{Start: start, End: end}, nil
}

// Remove deletes the content of r and returns it as a fragment.
func (w *Writer) Remove(r Range) (*Element, error) {
	if err := validateRangeContainer(r); err != nil {
		return nil, err
	}
	if r.IsCollapsed() {
		return NewFragment(), nil
	}
	start, end, err := w.breakAttributesRange(r, true)
	if err != nil {
		return nil, err
	}
	parent := start.Parent.(*Element)
	removed := parent.removeChildren(start.Offset, end.Offset-start.Offset)
	w.mergeAttributes(start)
	return NewFragment(removed...), nil
}

// RemoveNode deletes a single node.
func (w *Writer) RemoveNode(n Node) (*Element, error) {
	if n.Parent() == nil {
		return nil, ErrDetached
	}
	return w.Remove(RangeOn(n))
}

// Clear removes every element similar to e inside r. When r starts inside
// such an element only the part covered by r is removed.
func (w *Writer) Clear(r Range, e *Element) error {
	if err := validateRangeContainer(r); err != nil {
		return err
	}
	var targets []Range
	walker := r.Walker(Backward(), IgnoreElementEnd())
	for v, ok := walker.Next(); ok; v, ok = walker.Next() {
		var target Range
		found := false
		switch item := v.Item.(type) {
		case *Element:
			if e.IsSimilar(item) {
				target, found = RangeOn(item), true
			}
		case *TextProxy:
			if v.NextPosition.IsAfter(r.Start) {
				continue
			}
			for _, anc := range Ancestors(item.text) {
				if e.IsSimilar(anc) {
					target, found = RangeIn(anc), true
					break
				}
			}
		}
		if !found {
			continue
		}
		if target.End.IsAfter(r.End) {
			target.End = r.End
		}
		if target.Start.IsBefore(r.Start) {
			target.Start = r.Start
		}
		targets = append(targets, target)
	}
	for _, t := range targets {
		if _, err := w.Remove(t); err != nil {
			return err
		}
	}
	return nil
}

// Move moves the content of source to target and returns the range of the
// moved content at its new place.
func (w *Writer) Move(source Range, target Position) (Range, error) {
	var frag *Element
	if target.IsAfter(source.End) {
		t, err := w.breakAttributes(target, true)
		if err != nil {
			return Range{}, err
		}
		parent := t.Parent.(*Element)
		before := parent.ChildCount()
		start, end, err := w.breakAttributesRange(source, true)
		if err != nil {
			return Range{}, err
		}
		if frag, err = w.Remove(Range{Start: start, End: end}); err != nil {
			return Range{}, err
		}
		t.Offset += parent.ChildCount() - before
		target = t
	} else {
		var err error
		if frag, err = w.Remove(source); err != nil {
			return Range{}, err
		}
	}
	return w.Insert(target, frag.Children()...)
}

// BreakAttributes splits attribute elements at p up to the container and
// returns the position between the halves. Text nodes are not split when
// their parent is already the container.
func (w *Writer) BreakAttributes(p Position) (Position, error) {
	return w.breakAttributes(p, false)
}

// BreakAttributesRange breaks attribute elements at both ends of r.
func (w *Writer) BreakAttributesRange(r Range) (Range, error) {
	start, end, err := w.breakAttributesRange(r, false)
	return Range{Start: start, End: end}, err
}

// MergeAttributes merges the nodes on both sides of p when they are text
// nodes or similar attribute elements, removing empty attribute elements on
// the way. It returns the position between the merged content.
func (w *Writer) MergeAttributes(p Position) Position { return w.mergeAttributes(p) }

func parentContainer(p Position) *Element {
	cur := p.Parent
	for cur != nil {
		if e, ok := cur.(*Element); ok && e.IsContainerLike() {
			return e
		}
		parent := cur.Parent()
		if parent == nil {
			return nil
		}
		cur = parent
	}
	return nil
}

func validateRangeContainer(r Range) error {
	start := parentContainer(r.Start)
	end := parentContainer(r.End)
	if start == nil || end == nil || start != end {
		return ErrInvalidRangeContainer
	}
	return nil
}
