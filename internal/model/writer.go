package model

import "errors"

// Writer applies operations to a document. It is only valid inside the
// Document.Change block that created it.
type Writer struct {
	doc    *Document
	closed bool
}

// Document returns the document the writer mutates.
func (w *Writer) Document() *Document { return w.doc }

func (w *Writer) check() error {
	if w.closed {
		return ErrNotInChange
	}
	return nil
}

func validPosition(p Position) (*Element, error) {
	parent := p.Parent()
	if parent == nil || p.Offset() < 0 || p.Offset() > parent.MaxOffset() {
		return nil, ErrInvalidPosition
	}
	return parent, nil
}

func (w *Writer) tracked(root *Element) bool {
	return root != nil && root.doc == w.doc
}

// apply transforms markers and the selection, then notifies listeners.
func (w *Writer) apply(c Change, transform func(Range) Range) error {
	if transform != nil {
		w.doc.markers.transform(transform)
		w.doc.selection.transform(transform)
	}
	w.doc.version++
	return w.doc.notify(c)
}

// CreateElement creates a detached element.
func (w *Writer) CreateElement(name string, attrs map[string]any, children ...Node) *Element {
	return NewElement(name, attrs, children...)
}

// CreateText creates a detached text node.
func (w *Writer) CreateText(data string, attrs map[string]any) *Text {
	return NewText(data, attrs)
}

// InsertText inserts characters with attributes at pos.
func (w *Writer) InsertText(data string, attrs map[string]any, pos Position) error {
	if data == "" {
		return nil
	}
	return w.Insert(pos, NewText(data, attrs))
}

// InsertElement creates an element and inserts it at pos.
func (w *Writer) InsertElement(name string, attrs map[string]any, pos Position) (*Element, error) {
	e := NewElement(name, attrs)
	if err := w.Insert(pos, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Insert inserts detached nodes at pos.
func (w *Writer) Insert(pos Position, nodes ...Node) error {
	if err := w.check(); err != nil {
		return err
	}
	parent, err := validPosition(pos)
	if err != nil {
		return err
	}
	size := 0
	for _, n := range nodes {
		if n.Parent() != nil {
			return ErrAttachedNode
		}
		size += n.OffsetSize()
	}
	if size == 0 {
		return nil
	}
	index := parent.splitAt(pos.Offset())
	parent.insertChildren(index, nodes...)
	parent.normalize(index, index+len(nodes))

	if !w.tracked(parent.Root()) {
		return nil
	}
	c := Change{Type: ChangeInsert, Range: Range{Start: pos, End: pos.ShiftedBy(size)}}
	return w.apply(c, func(r Range) Range { return r.TransformedByInsertion(pos, size) })
}

// Append inserts nodes at the end of parent.
func (w *Writer) Append(parent *Element, nodes ...Node) error {
	return w.Insert(PositionAtEnd(parent), nodes...)
}

// Remove moves the content of r to the graveyard.
func (w *Writer) Remove(r Range) error {
	if err := w.check(); err != nil {
		return err
	}
	if r.Start.Root() != r.End.Root() || r.Start.Parent() == nil || r.End.Parent() == nil {
		return ErrInvalidRange
	}
	flat := r.MinimalFlatRanges()
	var errs []error
	for i := len(flat) - 1; i >= 0; i-- {
		errs = append(errs, w.removeFlat(flat[i]))
	}
	return errors.Join(errs...)
}

// RemoveItem moves a single item to the graveyard.
func (w *Writer) RemoveItem(item Item) error {
	if item.Parent() == nil {
		return ErrInvalidPosition
	}
	return w.Remove(RangeOn(item))
}

func (w *Writer) removeFlat(r Range) error {
	parent := r.Start.Parent()
	from, to := r.Start.Offset(), r.End.Offset()
	howMany := to - from
	nodes := parent.detach(from, to)

	if !w.tracked(parent.Root()) {
		return nil
	}
	gy := w.doc.graveyard
	gStart := gy.MaxOffset()
	gy.insertChildren(len(gy.children), nodes...)

	c := Change{
		Type:           ChangeRemove,
		SourcePosition: PositionAt(parent, from),
		Range:          Range{Start: PositionAt(gy, gStart), End: PositionAt(gy, gStart+howMany)},
	}
	at := r.Start
	return w.apply(c, func(rng Range) Range { return rng.TransformedByDeletion(at, howMany) })
}

func (e *Element) detach(from, to int) []Node {
	start := e.splitAt(from)
	end := e.splitAt(to)
	nodes := e.removeChildren(start, end-start)
	e.normalize(start, start)
	return nodes
}

// Move moves the content of a flat range to target. The target is expressed
// in the tree as it is before the move.
func (w *Writer) Move(r Range, target Position) error {
	if err := w.check(); err != nil {
		return err
	}
	if !r.IsFlat() || r.Start.Parent() == nil {
		return ErrInvalidRange
	}
	targetParent, err := validPosition(target)
	if err != nil {
		return err
	}
	if r.ContainsPosition(target) {
		return ErrInvalidRange
	}
	if r.IsCollapsed() {
		return nil
	}

	source := NewPosition(r.Start.root, r.Start.path)
	sourceParent := r.Start.Parent()
	from := r.Start.Offset()
	howMany := r.End.Offset() - from
	targetOffset := target.Offset()

	nodes := sourceParent.detach(from, from+howMany)
	if targetParent == sourceParent && targetOffset > from {
		targetOffset -= howMany
	}
	index := targetParent.splitAt(targetOffset)
	targetParent.insertChildren(index, nodes...)
	targetParent.normalize(index, index+len(nodes))

	if !w.tracked(targetParent.Root()) && !w.tracked(sourceParent.Root()) {
		return nil
	}
	postTarget := PositionAt(targetParent, targetOffset)
	c := Change{
		Type:           ChangeMove,
		SourcePosition: PositionAt(sourceParent, from),
		Range:          Range{Start: postTarget, End: postTarget.ShiftedBy(howMany)},
	}
	return w.apply(c, func(rng Range) Range { return rng.TransformedByMove(source, target, howMany) })
}

// Rename changes the name of an element.
func (w *Writer) Rename(e *Element, name string) error {
	if err := w.check(); err != nil {
		return err
	}
	if e.parent == nil {
		return ErrInvalidPosition
	}
	if e.name == name {
		return nil
	}
	old := e.name
	e.name = name
	if !w.tracked(e.Root()) {
		return nil
	}
	return w.apply(Change{Type: ChangeRename, Element: e, OldName: old, Range: RangeOn(e)}, nil)
}

// SetAttribute sets key to value on every shallow item of r.
func (w *Writer) SetAttribute(key string, value any, r Range) error {
	if value == nil {
		return w.RemoveAttribute(key, r)
	}
	return w.setAttribute(key, value, r)
}

// SetItemAttribute sets key to value on a single item.
func (w *Writer) SetItemAttribute(key string, value any, item Item) error {
	if item.Parent() == nil {
		return ErrInvalidPosition
	}
	return w.SetAttribute(key, value, RangeOn(item))
}

// RemoveAttribute removes key from every shallow item of r.
func (w *Writer) RemoveAttribute(key string, r Range) error {
	return w.setAttribute(key, nil, r)
}

// RemoveItemAttribute removes key from a single item.
func (w *Writer) RemoveItemAttribute(key string, item Item) error {
	if item.Parent() == nil {
		return ErrInvalidPosition
	}
	return w.RemoveAttribute(key, RangeOn(item))
}

func (w *Writer) setAttribute(key string, value any, r Range) error {
	if err := w.check(); err != nil {
		return err
	}
	if r.Start.Parent() == nil || r.End.Parent() == nil {
		return ErrInvalidRange
	}
	var errs []error
	for _, flat := range r.MinimalFlatRanges() {
		errs = append(errs, w.setAttributeFlat(key, value, flat))
	}
	return errors.Join(errs...)
}

func (w *Writer) setAttributeFlat(key string, value any, r Range) error {
	parent := r.Start.Parent()
	startIndex := parent.splitAt(r.Start.Offset())
	endIndex := parent.splitAt(r.End.Offset())
	tracked := w.tracked(parent.Root())

	var errs []error
	offset := r.Start.Offset()
	for i := startIndex; i < endIndex; {
		old, has := parent.children[i].Attribute(key)
		groupEnd := offset
		j := i
		for ; j < endIndex; j++ {
			o, h := parent.children[j].Attribute(key)
			if h != has || !ValuesEqual(o, old) {
				break
			}
			groupEnd += parent.children[j].OffsetSize()
		}

		var typ ChangeType
		changed := true
		switch {
		case value == nil && !has:
			changed = false
		case value == nil:
			typ = ChangeRemoveAttribute
		case !has:
			typ = ChangeAddAttribute
		case ValuesEqual(old, value):
			changed = false
		default:
			typ = ChangeChangeAttribute
		}

		if changed {
			for _, n := range parent.children[i:j] {
				setNodeAttribute(n, key, value)
			}
			if tracked {
				c := Change{
					Type:     typ,
					Key:      key,
					NewValue: value,
					Range:    Range{Start: PositionAt(parent, offset), End: PositionAt(parent, groupEnd)},
				}
				if has {
					c.OldValue = old
				}
				errs = append(errs, w.apply(c, nil))
			}
		}
		offset = groupEnd
		i = j
	}
	parent.normalize(startIndex, endIndex)
	return errors.Join(errs...)
}

func setNodeAttribute(n Node, key string, value any) {
	var attrs attributes
	switch v := n.(type) {
	case *Element:
		attrs = v.attrs
	case *Text:
		attrs = v.attrs
	}
	if value == nil {
		delete(attrs, key)
	} else {
		attrs[key] = value
	}
}

// AddMarker creates a marker over r.
func (w *Writer) AddMarker(name string, r Range) (*Marker, error) {
	if err := w.check(); err != nil {
		return nil, err
	}
	if w.doc.markers.Has(name) {
		return nil, ErrMarkerExists
	}
	m := w.doc.markers.set(name, r)
	return m, w.apply(Change{Type: ChangeAddMarker, MarkerName: name, MarkerRange: r}, nil)
}

// UpdateMarker moves an existing marker to r. It is reported as a removal
// from the old range followed by an addition on the new one.
func (w *Writer) UpdateMarker(name string, r Range) error {
	if err := w.check(); err != nil {
		return err
	}
	m, ok := w.doc.markers.Get(name)
	if !ok {
		return ErrUnknownMarker
	}
	old := m.rng
	err := w.apply(Change{Type: ChangeRemoveMarker, MarkerName: name, MarkerRange: old}, nil)
	m.rng = r
	return errors.Join(err, w.apply(Change{Type: ChangeAddMarker, MarkerName: name, MarkerRange: r}, nil))
}

// RemoveMarker deletes a marker.
func (w *Writer) RemoveMarker(name string) error {
	if err := w.check(); err != nil {
		return err
	}
	m, ok := w.doc.markers.Get(name)
	if !ok {
		return ErrUnknownMarker
	}
	w.doc.markers.remove(name)
	return w.apply(Change{Type: ChangeRemoveMarker, MarkerName: name, MarkerRange: m.rng}, nil)
}

// SetSelection replaces the selection ranges.
func (w *Writer) SetSelection(ranges []Range, backward bool) error {
	if err := w.check(); err != nil {
		return err
	}
	for _, r := range ranges {
		if r.Start.Parent() == nil || r.End.Parent() == nil {
			return ErrInvalidRange
		}
	}
	w.doc.selection.set(ranges, backward)
	return nil
}

// SetSelectionAt collapses the selection at p.
func (w *Writer) SetSelectionAt(p Position) error {
	return w.SetSelection([]Range{CollapsedRange(p)}, false)
}

// SetSelectionAttribute sets an attribute for text typed at the selection.
func (w *Writer) SetSelectionAttribute(key string, value any) error {
	if err := w.check(); err != nil {
		return err
	}
	w.doc.selection.setAttribute(key, value)
	return nil
}

// RemoveSelectionAttribute removes a selection attribute.
func (w *Writer) RemoveSelectionAttribute(key string) error {
	return w.SetSelectionAttribute(key, nil)
}
