package model

// WalkerValueType identifies what a walker step produced.
type WalkerValueType int

const (
	// ElementStart is produced when entering (or, shallow, passing) an element.
	ElementStart WalkerValueType = iota
	// ElementEnd is produced when leaving an element.
	ElementEnd
	// TextValue is produced for a run of characters.
	TextValue
)

func (t WalkerValueType) String() string {
	switch t {
	case ElementStart:
		return "elementStart"
	case ElementEnd:
		return "elementEnd"
	case TextValue:
		return "text"
	}
	return "unknown"
}

// WalkerValue is one step of a TreeWalker.
type WalkerValue struct {
	Type             WalkerValueType
	Item             Item
	PreviousPosition Position
	NextPosition     Position
	Length           int
}

type walkerOptions struct {
	shallow          bool
	ignoreElementEnd bool
	singleCharacters bool
}

// WalkerOption configures a TreeWalker.
type WalkerOption func(*walkerOptions)

// Shallow makes the walker step over elements instead of entering them.
func Shallow() WalkerOption { return func(o *walkerOptions) { o.shallow = true } }

// IgnoreElementEnd suppresses ElementEnd values.
func IgnoreElementEnd() WalkerOption { return func(o *walkerOptions) { o.ignoreElementEnd = true } }

// SingleCharacters makes every text step cover one character.
func SingleCharacters() WalkerOption { return func(o *walkerOptions) { o.singleCharacters = true } }

// TreeWalker iterates forward over a model range in document order.
type TreeWalker struct {
	opts      walkerOptions
	end       Position
	endParent *Element

	parent *Element
	offset int
	done   bool
}

// NewTreeWalker creates a walker over r.
func NewTreeWalker(r Range, opts ...WalkerOption) *TreeWalker {
	w := &TreeWalker{end: r.End}
	for _, opt := range opts {
		opt(&w.opts)
	}
	w.endParent = r.End.Parent()
	w.parent = r.Start.Parent()
	w.offset = r.Start.Offset()
	if w.parent == nil {
		w.done = true
	}
	return w
}

// Position returns the current walker position.
func (w *TreeWalker) Position() Position { return PositionAt(w.parent, w.offset) }

// Next advances the walker. The second result is false once the range is
// exhausted.
func (w *TreeWalker) Next() (WalkerValue, bool) {
	for !w.done {
		v, ok, skip := w.step()
		if !ok {
			w.done = true
			break
		}
		if skip {
			continue
		}
		return v, true
	}
	return WalkerValue{}, false
}

func (w *TreeWalker) step() (WalkerValue, bool, bool) {
	parent := w.parent
	if parent.parent == nil && w.offset == parent.MaxOffset() {
		return WalkerValue{}, false, false
	}
	if parent == w.endParent && w.offset == w.end.Offset() {
		return WalkerValue{}, false, false
	}
	prev := PositionAt(parent, w.offset)

	node := parent.ChildAtOffset(w.offset)
	switch n := node.(type) {
	case *Element:
		if w.opts.shallow {
			w.offset++
		} else {
			w.parent = n
			w.offset = 0
		}
		return WalkerValue{Type: ElementStart, Item: n, PreviousPosition: prev, NextPosition: w.Position(), Length: 1}, true, false
	case *Text:
		count := 1
		if !w.opts.singleCharacters {
			limit := n.EndOffset()
			if parent == w.endParent && w.end.Offset() < limit {
				limit = w.end.Offset()
			}
			count = limit - w.offset
		}
		proxy := NewTextProxy(n, w.offset-n.StartOffset(), count)
		w.offset += count
		return WalkerValue{Type: TextValue, Item: proxy, PreviousPosition: prev, NextPosition: w.Position(), Length: count}, true, false
	}

	// End of the current parent.
	w.parent = parent.parent
	w.offset = parent.StartOffset() + 1
	v := WalkerValue{Type: ElementEnd, Item: parent, PreviousPosition: prev, NextPosition: w.Position()}
	return v, true, w.opts.ignoreElementEnd
}
