package markup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/twintree/internal/view"
	"golang.org/x/net/html"
)

// Options control Stringify output.
type Options struct {
	// ShowType prefixes element names with their kind.
	ShowType bool
	// ShowPriority adds view-priority to attribute elements.
	ShowPriority bool
	// ShowElementID adds view-id to attribute elements that have one.
	ShowElementID bool
	// Ranges are rendered as selection brackets.
	Ranges []view.Range
}

type marker struct {
	char      string
	collapsed bool
	end       bool
}

type stringifier struct {
	opts    Options
	b       strings.Builder
	markers map[view.Node]map[int][]marker
}

// String renders n with default options.
func String(n view.Node) string { return Stringify(n, Options{}) }

// Stringify renders n. Roots and fragments render their children only.
func Stringify(n view.Node, opts Options) string {
	s := &stringifier{opts: opts, markers: make(map[view.Node]map[int][]marker)}
	for _, r := range opts.Ranges {
		s.addMarker(r.Start, false, r.IsCollapsed())
		if !r.IsCollapsed() {
			s.addMarker(r.End, true, false)
		}
	}
	switch v := n.(type) {
	case *view.Element:
		if v.Is(view.KindRoot) || v.Is(view.KindFragment) {
			s.writeChildren(v)
		} else {
			s.writeElement(v)
		}
	case *view.Text:
		s.writeText(v)
	}
	return s.b.String()
}

// StringifySelection renders the content of a root together with the ranges
// of sel.
func StringifySelection(root view.Node, sel *view.Selection, opts Options) string {
	opts.Ranges = append(opts.Ranges, sel.Ranges()...)
	return Stringify(root, opts)
}

func (s *stringifier) addMarker(p view.Position, end, collapsed bool) {
	open, closeChar := "[", "]"
	if _, ok := p.TextNode(); ok {
		open, closeChar = "{", "}"
	}
	m := marker{char: open, collapsed: collapsed, end: end}
	if end {
		m.char = closeChar
	}
	byOffset, ok := s.markers[p.Parent]
	if !ok {
		byOffset = make(map[int][]marker)
		s.markers[p.Parent] = byOffset
	}
	byOffset[p.Offset] = append(byOffset[p.Offset], m)
	if collapsed {
		byOffset[p.Offset] = append(byOffset[p.Offset], marker{char: closeChar, end: true, collapsed: true})
	}
}

// writeMarkers writes range ends first, then starts. A collapsed range keeps
// its closing bracket right after the opening one.
func (s *stringifier) writeMarkers(n view.Node, offset int) {
	ms := s.markers[n][offset]
	for _, m := range ms {
		if m.end && !m.collapsed {
			s.b.WriteString(m.char)
		}
	}
	for _, m := range ms {
		if !m.end || m.collapsed {
			s.b.WriteString(m.char)
		}
	}
}

func (s *stringifier) writeChildren(e *view.Element) {
	for i, c := range e.Children() {
		s.writeMarkers(e, i)
		switch v := c.(type) {
		case *view.Element:
			s.writeElement(v)
		case *view.Text:
			s.writeText(v)
		}
	}
	s.writeMarkers(e, e.ChildCount())
}

func (s *stringifier) writeText(t *view.Text) {
	runes := []rune(t.Data())
	for i, r := range runes {
		s.writeMarkers(t, i)
		s.b.WriteString(html.EscapeString(string(r)))
	}
	s.writeMarkers(t, len(runes))
}

func (s *stringifier) writeElement(e *view.Element) {
	name := e.Name()
	if s.opts.ShowType {
		name = e.Kind().String() + ":" + name
	}
	s.b.WriteString("<" + name)
	for _, k := range e.AttributeKeys() {
		v, _ := e.Attribute(k)
		if k == "class" {
			v = strings.Join(sortedClasses(e), " ")
		}
		fmt.Fprintf(&s.b, " %s=\"%s\"", k, html.EscapeString(v))
	}
	if e.Is(view.KindAttribute) {
		if s.opts.ShowPriority {
			fmt.Fprintf(&s.b, " view-priority=\"%d\"", e.Priority())
		}
		if s.opts.ShowElementID && e.ElementID() != "" {
			fmt.Fprintf(&s.b, " view-id=\"%s\"", html.EscapeString(e.ElementID()))
		}
	}
	s.b.WriteString(">")
	s.writeChildren(e)
	s.b.WriteString("</" + name + ">")
}

func sortedClasses(e *view.Element) []string {
	cls := e.Classes()
	sort.Strings(cls)
	return cls
}
