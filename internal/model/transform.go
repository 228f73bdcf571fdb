package model

// Stickiness decides where a position goes when content is inserted exactly
// at it.
type Stickiness int

const (
	// StickToNext keeps the position before the node that follows it, so an
	// insertion at the position pushes it forward.
	StickToNext Stickiness = iota
	// StickToPrevious keeps the position after the node that precedes it.
	StickToPrevious
)

func isStrictPrefix(prefix, path []int) bool {
	if len(prefix) >= len(path) {
		return false
	}
	for i := range prefix {
		if prefix[i] != path[i] {
			return false
		}
	}
	return true
}

func samePath(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TransformedByInsertion returns p adjusted for howMany offsets inserted at
// at.
func (p Position) TransformedByInsertion(at Position, howMany int, stick Stickiness) Position {
	out := NewPosition(p.root, p.path)
	if p.root != at.root || len(p.path) == 0 {
		return out
	}
	atParent := at.path[:len(at.path)-1]
	pParent := p.path[:len(p.path)-1]
	switch {
	case samePath(atParent, pParent):
		if at.Offset() < p.Offset() || (at.Offset() == p.Offset() && stick == StickToNext) {
			out.path[len(out.path)-1] += howMany
		}
	case isStrictPrefix(atParent, pParent):
		i := len(at.path) - 1
		if at.Offset() <= p.path[i] {
			out.path[i] += howMany
		}
	}
	return out
}

// TransformedByDeletion returns p adjusted for howMany offsets removed at
// at. The second result is false when p was inside the removed content.
func (p Position) TransformedByDeletion(at Position, howMany int) (Position, bool) {
	out := NewPosition(p.root, p.path)
	if p.root != at.root || len(p.path) == 0 {
		return out, true
	}
	atParent := at.path[:len(at.path)-1]
	pParent := p.path[:len(p.path)-1]
	switch {
	case samePath(atParent, pParent):
		if at.Offset() < p.Offset() {
			if at.Offset()+howMany > p.Offset() {
				return Position{}, false
			}
			out.path[len(out.path)-1] -= howMany
		}
	case isStrictPrefix(atParent, pParent):
		i := len(at.path) - 1
		if at.Offset() <= p.path[i] {
			if at.Offset()+howMany > p.path[i] {
				return Position{}, false
			}
			out.path[i] -= howMany
		}
	}
	return out, true
}

// TransformedByMove returns p adjusted for howMany offsets moved from source
// to target. The target is given in coordinates from before the move.
func (p Position) TransformedByMove(source, target Position, howMany int, stick Stickiness) Position {
	if t, ok := target.TransformedByDeletion(source, howMany); ok {
		target = t
	} else {
		target = source
	}
	if source.IsEqual(target) {
		return NewPosition(p.root, p.path)
	}
	moved, ok := p.TransformedByDeletion(source, howMany)
	if !ok {
		return p.combined(source, target)
	}
	return moved.TransformedByInsertion(target, howMany, stick)
}

func (p Position) combined(source, target Position) Position {
	i := len(source.path) - 1
	out := NewPosition(target.root, target.path)
	out.path[len(out.path)-1] += p.path[i] - source.Offset()
	out.path = append(out.path, p.path[i+1:]...)
	return out
}

// TransformedByInsertion returns the range adjusted for an insertion. The
// start sticks to the next node and the end to the previous one, so content
// inserted at a boundary stays outside. Collapsed ranges move with the
// insertion.
func (r Range) TransformedByInsertion(at Position, howMany int) Range {
	endStick := StickToPrevious
	if r.IsCollapsed() {
		endStick = StickToNext
	}
	return Range{
		Start: r.Start.TransformedByInsertion(at, howMany, StickToNext),
		End:   r.End.TransformedByInsertion(at, howMany, endStick),
	}
}

// TransformedByDeletion returns the range adjusted for a deletion. Ends that
// fell inside the deleted content collapse onto the deletion position.
func (r Range) TransformedByDeletion(at Position, howMany int) Range {
	start, ok := r.Start.TransformedByDeletion(at, howMany)
	if !ok {
		start = NewPosition(at.root, at.path)
	}
	end, ok := r.End.TransformedByDeletion(at, howMany)
	if !ok {
		end = NewPosition(at.root, at.path)
	}
	return Range{Start: start, End: end}
}

// TransformedByMove returns the range adjusted for a move. When the ends
// end up in different roots or out of order the range collapses on its
// start.
func (r Range) TransformedByMove(source, target Position, howMany int) Range {
	endStick := StickToPrevious
	if r.IsCollapsed() {
		endStick = StickToNext
	}
	start := r.Start.TransformedByMove(source, target, howMany, StickToNext)
	end := r.End.TransformedByMove(source, target, howMany, endStick)
	if start.root != end.root || end.IsBefore(start) {
		return CollapsedRange(start)
	}
	return Range{Start: start, End: end}
}
