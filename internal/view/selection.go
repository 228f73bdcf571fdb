package view

// Selection is the view selection. A fake selection is rendered by the
// editor itself (for example around an object) and carries a label for
// assistive technology.
type Selection struct {
	ranges    []Range
	backward  bool
	fake      bool
	fakeLabel string
}

// SelectionOptions tune SetSelection.
type SelectionOptions struct {
	Backward bool
	Fake     bool
	Label    string
}

// Ranges returns a copy of the ranges.
func (s *Selection) Ranges() []Range {
	out := make([]Range, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// RangeCount returns the number of ranges.
func (s *Selection) RangeCount() int { return len(s.ranges) }

// FirstRange returns the earliest range.
func (s *Selection) FirstRange() (Range, bool) {
	if len(s.ranges) == 0 {
		return Range{}, false
	}
	first := s.ranges[0]
	for _, r := range s.ranges[1:] {
		if r.Start.IsBefore(first.Start) {
			first = r
		}
	}
	return first, true
}

// FirstPosition returns the start of the first range.
func (s *Selection) FirstPosition() (Position, bool) {
	r, ok := s.FirstRange()
	return r.Start, ok
}

// IsCollapsed reports whether the selection is a single empty range.
func (s *Selection) IsCollapsed() bool {
	return len(s.ranges) == 1 && s.ranges[0].IsCollapsed()
}

// IsBackward reports the selection direction.
func (s *Selection) IsBackward() bool { return s.backward }

// IsFake reports whether the selection is fake.
func (s *Selection) IsFake() bool { return s.fake }

// FakeLabel returns the label of a fake selection.
func (s *Selection) FakeLabel() string { return s.fakeLabel }

// IsEqual compares ranges, direction and fake state.
func (s *Selection) IsEqual(o *Selection) bool {
	if s.fake != o.fake || s.fakeLabel != o.fakeLabel || s.backward != o.backward {
		return false
	}
	if len(s.ranges) != len(o.ranges) {
		return false
	}
	for i := range s.ranges {
		if !s.ranges[i].IsEqual(o.ranges[i]) {
			return false
		}
	}
	return true
}

func (s *Selection) set(ranges []Range, opts SelectionOptions) {
	s.ranges = append([]Range(nil), ranges...)
	s.backward = opts.Backward && len(ranges) > 0
	s.fake = opts.Fake
	s.fakeLabel = opts.Label
}
