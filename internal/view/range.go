package view

// Range is a span between two view positions.
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

// RangeOn returns the range covering exactly item.
func RangeOn(item Item) Range {
	return Range{Start: PositionBefore(item), End: PositionAfter(item)}
}

// RangeIn returns the range over the whole content of n.
func RangeIn(n Node) Range {
	return Range{Start: PositionAt(n, 0), End: PositionAtEnd(n)}
}

// IsCollapsed reports whether the range is empty.
func (r Range) IsCollapsed() bool { return r.Start.IsEqual(r.End) }

// IsFlat reports whether both ends share a parent.
func (r Range) IsFlat() bool { return r.Start.Parent == r.End.Parent }

// Root returns the root of the start position.
func (r Range) Root() Node { return r.Start.Root() }

// IsEqual reports whether both ends are equal.
func (r Range) IsEqual(o Range) bool { return r.Start.IsEqual(o.Start) && r.End.IsEqual(o.End) }

// ContainsPosition reports whether p lies strictly inside the range.
func (r Range) ContainsPosition(p Position) bool {
	return p.IsAfter(r.Start) && p.IsBefore(r.End)
}

// ContainsRange reports whether o lies inside r. Loose allows touching ends.
func (r Range) ContainsRange(o Range, loose bool) bool {
	if o.IsCollapsed() {
		loose = false
	}
	startIn := r.ContainsPosition(o.Start) || (loose && r.Start.IsEqual(o.Start))
	endIn := r.ContainsPosition(o.End) || (loose && r.End.IsEqual(o.End))
	return startIn && endIn
}

// Walker returns a walker bounded by the range.
func (r Range) Walker(opts ...WalkerOption) *TreeWalker {
	return NewTreeWalker(append(opts, WithBoundaries(r))...)
}

// Items returns the items inside the range without element ends.
func (r Range) Items(opts ...WalkerOption) []Item {
	var items []Item
	w := r.Walker(append(opts, IgnoreElementEnd())...)
	for v, ok := w.Next(); ok; v, ok = w.Next() {
		items = append(items, v.Item)
	}
	return items
}

func isTrimmable(v WalkerValue) bool {
	e, ok := v.Item.(*Element)
	return ok && (e.kind == KindAttribute || e.kind == KindUI)
}

// Trimmed shrinks the range so it does not start or end with attribute or
// UI element boundaries. Ends next to text move inside the text node.
func (r Range) Trimmed() Range {
	start := r.Start.LastMatchingPosition(isTrimmable)
	if !start.IsBefore(r.End) {
		return CollapsedRange(start)
	}
	end := r.End.LastMatchingPosition(isTrimmable, Backward())
	if t, ok := start.NodeAfter().(*Text); ok {
		start = Position{Parent: t, Offset: 0}
	}
	if t, ok := end.NodeBefore().(*Text); ok {
		end = Position{Parent: t, Offset: t.Len()}
	}
	return Range{Start: start, End: end}
}

// Enlarged grows the range over surrounding attribute and UI element
// boundaries. Ends at text node edges move outside the text node.
func (r Range) Enlarged() Range {
	start := r.Start.LastMatchingPosition(isTrimmable, Backward())
	end := r.End.LastMatchingPosition(isTrimmable)
	if t, ok := start.TextNode(); ok && start.IsAtStart() {
		start = PositionBefore(t)
	}
	if t, ok := end.TextNode(); ok && end.IsAtEnd() {
		end = PositionAfter(t)
	}
	return Range{Start: start, End: end}
}

func (r Range) String() string {
	return "[" + r.Start.String() + " - " + r.End.String() + "]"
}
