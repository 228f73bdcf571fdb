package model

// Range is a span between two positions of the same root.
type Range struct {
	Start Position
	End   Position
}

// NewRange creates a range, swapping the ends when given in reverse order.
func NewRange(start, end Position) Range {
	if end.IsBefore(start) {
		start, end = end, start
	}
	return Range{Start: start, End: end}
}

// CollapsedRange returns an empty range at p.
func CollapsedRange(p Position) Range { return Range{Start: p, End: p} }

// RangeOn returns the range that covers exactly item.
func RangeOn(item Item) Range {
	return Range{Start: PositionBefore(item), End: PositionAfter(item)}
}

// RangeIn returns the range over all children of e.
func RangeIn(e *Element) Range {
	return Range{Start: PositionAt(e, 0), End: PositionAtEnd(e)}
}

// Root returns the root shared by both ends.
func (r Range) Root() *Element { return r.Start.root }

// IsCollapsed reports whether the range is empty.
func (r Range) IsCollapsed() bool { return r.Start.IsEqual(r.End) }

// IsFlat reports whether both ends share a parent.
func (r Range) IsFlat() bool { return r.Start.HasSameParentAs(r.End) }

// IsEqual reports whether both ends are equal.
func (r Range) IsEqual(o Range) bool {
	return r.Start.IsEqual(o.Start) && r.End.IsEqual(o.End)
}

// ContainsPosition reports whether p lies strictly between the ends.
func (r Range) ContainsPosition(p Position) bool {
	return p.root == r.Start.root && p.IsAfter(r.Start) && p.IsBefore(r.End)
}

// ContainsRange reports whether o lies inside r. When loose is true the
// ends may touch.
func (r Range) ContainsRange(o Range, loose bool) bool {
	if o.IsCollapsed() {
		loose = false
	}
	startIn := r.ContainsPosition(o.Start) || (loose && r.Start.IsEqual(o.Start))
	endIn := r.ContainsPosition(o.End) || (loose && r.End.IsEqual(o.End))
	return startIn && endIn
}

// Touches reports whether p is inside r or equal to one of its ends.
func (r Range) Touches(p Position) bool {
	return r.ContainsPosition(p) || r.Start.IsEqual(p) || r.End.IsEqual(p)
}

// Walker returns a tree walker over the range.
func (r Range) Walker(opts ...WalkerOption) *TreeWalker {
	return NewTreeWalker(r, opts...)
}

// Items returns the items inside the range. Shallow skips element contents.
func (r Range) Items(shallow bool) []Item {
	opts := []WalkerOption{IgnoreElementEnd()}
	if shallow {
		opts = append(opts, Shallow())
	}
	var items []Item
	w := r.Walker(opts...)
	for v, ok := w.Next(); ok; v, ok = w.Next() {
		items = append(items, v.Item)
	}
	return items
}

// MinimalFlatRanges splits the range into the smallest set of flat ranges
// that together cover the same content.
func (r Range) MinimalFlatRanges() []Range {
	var ranges []Range
	diffAt := r.Start.CommonPathLength(r.End)
	pos := NewPosition(r.Start.root, r.Start.path)
	parent := pos.Parent()

	for len(pos.path) > diffAt+1 {
		howMany := parent.MaxOffset() - pos.Offset()
		if howMany != 0 {
			ranges = append(ranges, Range{Start: pos, End: pos.ShiftedBy(howMany)})
		}
		pos = NewPosition(pos.root, pos.path[:len(pos.path)-1])
		pos = pos.ShiftedBy(1)
		parent = parent.parent
	}

	for len(pos.path) <= len(r.End.path) {
		offset := r.End.path[len(pos.path)-1]
		howMany := offset - pos.Offset()
		if howMany != 0 {
			ranges = append(ranges, Range{Start: pos, End: pos.ShiftedBy(howMany)})
		}
		pos = pos.WithOffset(offset)
		pos = NewPosition(pos.root, append(pos.Path(), 0))
	}
	return ranges
}

func (r Range) String() string {
	return "[" + r.Start.String() + " - " + r.End.String() + "]"
}
