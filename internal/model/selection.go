package model

// Selection is the document selection: a set of ranges, a direction and the
// attributes that newly typed text would receive.
type Selection struct {
	ranges   []Range
	backward bool

	attrs    attributes
	explicit bool
}

// Ranges returns a copy of the selection ranges.
func (s *Selection) Ranges() []Range {
	out := make([]Range, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// RangeCount returns the number of ranges.
func (s *Selection) RangeCount() int { return len(s.ranges) }

// FirstRange returns the first range in document order.
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

// Anchor returns the position the selection started from.
func (s *Selection) Anchor() (Position, bool) {
	if len(s.ranges) == 0 {
		return Position{}, false
	}
	last := s.ranges[len(s.ranges)-1]
	if s.backward {
		return last.End, true
	}
	return last.Start, true
}

// Focus returns the position the selection ends at.
func (s *Selection) Focus() (Position, bool) {
	if len(s.ranges) == 0 {
		return Position{}, false
	}
	last := s.ranges[len(s.ranges)-1]
	if s.backward {
		return last.Start, true
	}
	return last.End, true
}

// IsCollapsed reports whether the selection is a single empty range.
func (s *Selection) IsCollapsed() bool {
	return len(s.ranges) == 1 && s.ranges[0].IsCollapsed()
}

// IsBackward reports whether the focus precedes the anchor.
func (s *Selection) IsBackward() bool { return s.backward }

// Attribute returns a selection attribute.
func (s *Selection) Attribute(key string) (any, bool) {
	return s.attributeSet().get(key)
}

// HasAttribute reports whether the selection has the attribute.
func (s *Selection) HasAttribute(key string) bool {
	_, ok := s.attributeSet()[key]
	return ok
}

// AttributeKeys returns the selection attribute keys in sorted order.
func (s *Selection) AttributeKeys() []string { return s.attributeSet().keys() }

// Attributes returns the explicitly set attributes, or the attributes
// inherited from the surrounding text when none were set.
func (s *Selection) Attributes() map[string]any { return s.attributeSet().clone() }

func (s *Selection) attributeSet() attributes {
	if s.explicit {
		return s.attrs
	}
	return s.surroundingAttributes()
}

func (s *Selection) surroundingAttributes() attributes {
	r, ok := s.FirstRange()
	if !ok || r.Start.Parent() == nil {
		return nil
	}
	if !r.IsCollapsed() {
		for _, item := range r.Items(true) {
			if p, ok := item.(*TextProxy); ok {
				return p.text.attrs
			}
		}
	}
	pos := r.Start
	if t := pos.TextNode(); t != nil {
		return t.attrs
	}
	if t, ok := pos.NodeBefore().(*Text); ok {
		return t.attrs
	}
	if t, ok := pos.NodeAfter().(*Text); ok {
		return t.attrs
	}
	return nil
}

func (s *Selection) set(ranges []Range, backward bool) {
	s.ranges = append([]Range(nil), ranges...)
	s.backward = backward && len(ranges) > 0
	s.explicit = false
	s.attrs = nil
}

func (s *Selection) setAttribute(key string, value any) {
	attrs := newAttributes(s.attributeSet())
	if value == nil {
		delete(attrs, key)
	} else {
		attrs[key] = value
	}
	s.attrs = attrs
	s.explicit = true
}

func (s *Selection) transform(fn func(Range) Range) {
	for i, r := range s.ranges {
		s.ranges[i] = fn(r)
	}
}
