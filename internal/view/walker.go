package view

// WalkerValueType identifies what a walker step produced.
type WalkerValueType int

const (
	ElementStart WalkerValueType = iota
	ElementEnd
	TextValue
)

func (t WalkerValueType) String() string {
	switch t {
	case ElementStart:
		return "elementStart"
	case ElementEnd:
		return "elementEnd"
	}
	return "text"
}

// WalkerValue is a single walker step.
type WalkerValue struct {
	Type             WalkerValueType
	Item             Item
	PreviousPosition Position
	NextPosition     Position
	Length           int
}

type walkerOptions struct {
	boundaries       *Range
	start            *Position
	backward         bool
	shallow          bool
	ignoreElementEnd bool
	singleCharacters bool
}

// WalkerOption configures a TreeWalker.
type WalkerOption func(*walkerOptions)

// WithBoundaries limits the walk to r.
func WithBoundaries(r Range) WalkerOption {
	return func(o *walkerOptions) { o.boundaries = &r }
}

// WithStartPosition starts the walk at p instead of a boundary.
func WithStartPosition(p Position) WalkerOption {
	return func(o *walkerOptions) { o.start = &p }
}

// Backward walks towards the start of the document.
func Backward() WalkerOption { return func(o *walkerOptions) { o.backward = true } }

// Shallow steps over elements instead of entering them.
func Shallow() WalkerOption { return func(o *walkerOptions) { o.shallow = true } }

// IgnoreElementEnd suppresses ElementEnd steps.
func IgnoreElementEnd() WalkerOption { return func(o *walkerOptions) { o.ignoreElementEnd = true } }

// SingleCharacters makes every text step cover one character.
func SingleCharacters() WalkerOption { return func(o *walkerOptions) { o.singleCharacters = true } }

// TreeWalker iterates over the view tree from a start position, optionally
// bounded by a range.
type TreeWalker struct {
	opts          walkerOptions
	position      Position
	boundaryStart Node
	boundaryEnd   Node
}

// NewTreeWalker creates a walker. Either WithBoundaries or WithStartPosition
// must be given.
func NewTreeWalker(opts ...WalkerOption) *TreeWalker {
	w := &TreeWalker{}
	for _, opt := range opts {
		opt(&w.opts)
	}
	switch {
	case w.opts.start != nil:
		w.position = *w.opts.start
	case w.opts.boundaries != nil && w.opts.backward:
		w.position = w.opts.boundaries.End
	case w.opts.boundaries != nil:
		w.position = w.opts.boundaries.Start
	}
	if b := w.opts.boundaries; b != nil {
		w.boundaryStart = b.Start.Parent
		w.boundaryEnd = b.End.Parent
	}
	return w
}

// Position returns the current walker position.
func (w *TreeWalker) Position() Position { return w.position }

// Next performs one step. The second result is false when the walk is over.
func (w *TreeWalker) Next() (WalkerValue, bool) {
	if w.position.Parent == nil {
		return WalkerValue{}, false
	}
	if w.opts.backward {
		return w.previous()
	}
	return w.next()
}

// Skip advances while skip accepts the steps, leaving the walker before the
// first rejected step.
func (w *TreeWalker) Skip(skip func(WalkerValue) bool) {
	for {
		prev := w.position
		v, ok := w.Next()
		if !ok {
			return
		}
		if !skip(v) {
			w.position = prev
			return
		}
	}
}

func (w *TreeWalker) next() (WalkerValue, bool) {
	for {
		pos := w.position
		prev := pos
		parent := pos.Parent

		if parent.Parent() == nil && pos.Offset == maxOffset(parent) {
			return WalkerValue{}, false
		}
		if b := w.opts.boundaries; b != nil && parent == w.boundaryEnd && pos.Offset == b.End.Offset {
			return WalkerValue{}, false
		}

		if t, ok := parent.(*Text); ok {
			if pos.IsAtEnd() {
				w.position = PositionAfter(t)
				continue
			}
			length := 1
			if !w.opts.singleCharacters {
				end := t.Len()
				if b := w.opts.boundaries; b != nil && parent == w.boundaryEnd {
					end = b.End.Offset
				}
				length = end - pos.Offset
			}
			proxy := &TextProxy{text: t, offset: pos.Offset, length: length}
			w.position = Position{Parent: t, Offset: pos.Offset + length}
			return w.format(TextValue, proxy, prev, w.position, length), true
		}

		e := parent.(*Element)
		switch node := e.Child(pos.Offset).(type) {
		case *Element:
			if w.opts.shallow {
				w.position = Position{Parent: e, Offset: pos.Offset + 1}
			} else {
				w.position = Position{Parent: node, Offset: 0}
			}
			return w.format(ElementStart, node, prev, w.position, 1), true
		case *Text:
			if w.opts.singleCharacters {
				w.position = Position{Parent: node, Offset: 0}
				continue
			}
			length := node.Len()
			var proxy *TextProxy
			if b := w.opts.boundaries; b != nil && Node(node) == w.boundaryEnd {
				length = b.End.Offset
				proxy = &TextProxy{text: node, offset: 0, length: length}
				w.position = PositionAfter(proxy)
			} else {
				proxy = &TextProxy{text: node, offset: 0, length: length}
				w.position = Position{Parent: e, Offset: pos.Offset + 1}
			}
			return w.format(TextValue, proxy, prev, w.position, length), true
		}

		w.position = PositionAfter(e)
		if w.opts.ignoreElementEnd {
			continue
		}
		return w.format(ElementEnd, e, prev, w.position, 0), true
	}
}

func (w *TreeWalker) previous() (WalkerValue, bool) {
	for {
		pos := w.position
		prev := pos
		parent := pos.Parent

		if parent.Parent() == nil && pos.Offset == 0 {
			return WalkerValue{}, false
		}
		if b := w.opts.boundaries; b != nil && parent == w.boundaryStart && pos.Offset == b.Start.Offset {
			return WalkerValue{}, false
		}

		if t, ok := parent.(*Text); ok {
			if pos.IsAtStart() {
				w.position = PositionBefore(t)
				continue
			}
			length := 1
			if !w.opts.singleCharacters {
				start := 0
				if b := w.opts.boundaries; b != nil && parent == w.boundaryStart {
					start = b.Start.Offset
				}
				length = pos.Offset - start
			}
			w.position = Position{Parent: t, Offset: pos.Offset - length}
			proxy := &TextProxy{text: t, offset: pos.Offset - length, length: length}
			return w.format(TextValue, proxy, prev, w.position, length), true
		}

		e := parent.(*Element)
		switch node := e.Child(pos.Offset - 1).(type) {
		case *Element:
			if w.opts.shallow {
				w.position = Position{Parent: e, Offset: pos.Offset - 1}
				return w.format(ElementStart, node, prev, w.position, 1), true
			}
			w.position = Position{Parent: node, Offset: node.ChildCount()}
			if w.opts.ignoreElementEnd {
				continue
			}
			return w.format(ElementEnd, node, prev, w.position, 0), true
		case *Text:
			if w.opts.singleCharacters {
				w.position = Position{Parent: node, Offset: node.Len()}
				continue
			}
			var proxy *TextProxy
			if b := w.opts.boundaries; b != nil && Node(node) == w.boundaryStart {
				off := b.Start.Offset
				proxy = &TextProxy{text: node, offset: off, length: node.Len() - off}
				w.position = PositionBefore(proxy)
			} else {
				proxy = &TextProxy{text: node, offset: 0, length: node.Len()}
				w.position = Position{Parent: e, Offset: pos.Offset - 1}
			}
			return w.format(TextValue, proxy, prev, w.position, proxy.length), true
		}

		w.position = PositionBefore(e)
		return w.format(ElementStart, e, prev, w.position, 1), true
	}
}

// format moves positions that touch a text node edge to just outside the
// text node, unless the walk stops exactly there.
func (w *TreeWalker) format(typ WalkerValueType, item Item, prev, next Position, length int) WalkerValue {
	proxy, ok := item.(*TextProxy)
	if !ok {
		return WalkerValue{Type: typ, Item: item, PreviousPosition: prev, NextPosition: next, Length: length}
	}
	b := w.opts.boundaries
	if proxy.offset+proxy.length == proxy.text.Len() {
		if !w.opts.backward {
			if b == nil || !b.End.IsEqual(w.position) {
				next = PositionAfter(proxy.text)
				w.position = next
			}
		} else {
			prev = PositionAfter(proxy.text)
		}
	}
	if proxy.offset == 0 {
		if w.opts.backward {
			if b == nil || !b.Start.IsEqual(w.position) {
				next = PositionBefore(proxy.text)
				w.position = next
			}
		} else {
			prev = PositionBefore(proxy.text)
		}
	}
	return WalkerValue{Type: typ, Item: item, PreviousPosition: prev, NextPosition: next, Length: length}
}
