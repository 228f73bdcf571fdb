package conversion

import (
	"sort"

	"github.com/dshills/twintree/internal/view"
)

// Match selects parts of a view element: its name and any of its
// attributes, classes and styles.
type Match struct {
	Name       bool
	Attributes []string
	Classes    []string
	Styles     []string
}

type viewEntries struct {
	name       *bool
	attributes map[string]bool
	classes    map[string]bool
	styles     map[string]bool
}

// ViewConsumable tracks which parts of view nodes are still waiting for an
// upcast converter. A single Consume call can take an element name together
// with several attributes, classes and styles; it succeeds only when all of
// them are available.
type ViewConsumable struct {
	nodes map[view.Node]*viewEntries
}

// NewViewConsumable returns an empty set.
func NewViewConsumable() *ViewConsumable {
	return &ViewConsumable{nodes: make(map[view.Node]*viewEntries)}
}

// CreateViewConsumable adds every node under root (root included) with its
// name and all of its attributes, classes and styles.
func CreateViewConsumable(root view.Node) *ViewConsumable {
	c := NewViewConsumable()
	c.addTree(root)
	return c
}

func (c *ViewConsumable) addTree(n view.Node) {
	c.Add(n, MatchAll(n))
	if e, ok := n.(*view.Element); ok {
		for _, child := range e.Children() {
			c.addTree(child)
		}
	}
}

// MatchAll returns a Match covering everything on n.
func MatchAll(n view.Node) Match {
	m := Match{Name: true}
	e, ok := n.(*view.Element)
	if !ok {
		return m
	}
	for _, k := range e.AttributeKeys() {
		if k != "class" && k != "style" {
			m.Attributes = append(m.Attributes, k)
		}
	}
	m.Classes = e.Classes()
	m.Styles = e.StyleNames()
	return m
}

func (c *ViewConsumable) entries(n view.Node, create bool) *viewEntries {
	e, ok := c.nodes[n]
	if !ok && create {
		e = &viewEntries{
			attributes: make(map[string]bool),
			classes:    make(map[string]bool),
			styles:     make(map[string]bool),
		}
		c.nodes[n] = e
	}
	return e
}

// Add registers the matched parts of n as available.
func (c *ViewConsumable) Add(n view.Node, m Match) {
	e := c.entries(n, true)
	if m.Name {
		t := true
		e.name = &t
	}
	for _, k := range m.Attributes {
		e.attributes[k] = true
	}
	for _, k := range m.Classes {
		e.classes[k] = true
	}
	for _, k := range m.Styles {
		e.styles[k] = true
	}
}

// Test reports Available when every matched part is available, Consumed
// when one of them was consumed and Absent when one was never added.
func (c *ViewConsumable) Test(n view.Node, m Match) State {
	e := c.entries(n, false)
	if e == nil {
		return Absent
	}
	state := Available
	check := func(available, ok bool) {
		switch {
		case !ok:
			state = Absent
		case !available && state != Absent:
			state = Consumed
		}
	}
	if m.Name {
		if e.name == nil {
			check(false, false)
		} else {
			check(*e.name, true)
		}
	}
	for _, k := range m.Attributes {
		v, ok := e.attributes[k]
		check(v, ok)
	}
	for _, k := range m.Classes {
		v, ok := e.classes[k]
		check(v, ok)
	}
	for _, k := range m.Styles {
		v, ok := e.styles[k]
		check(v, ok)
	}
	return state
}

// Consume takes all matched parts at once and reports whether it did.
func (c *ViewConsumable) Consume(n view.Node, m Match) bool {
	if c.Test(n, m) != Available {
		return false
	}
	c.set(n, m, false)
	return true
}

// Revert makes consumed parts available again. Parts that were never added
// stay absent.
func (c *ViewConsumable) Revert(n view.Node, m Match) {
	if c.entries(n, false) == nil {
		return
	}
	c.set(n, m, true)
}

func (c *ViewConsumable) set(n view.Node, m Match, available bool) {
	e := c.entries(n, false)
	if m.Name && e.name != nil {
		*e.name = available
	}
	for _, k := range m.Attributes {
		if _, ok := e.attributes[k]; ok {
			e.attributes[k] = available
		}
	}
	for _, k := range m.Classes {
		if _, ok := e.classes[k]; ok {
			e.classes[k] = available
		}
	}
	for _, k := range m.Styles {
		if _, ok := e.styles[k]; ok {
			e.styles[k] = available
		}
	}
}

// Pending returns what is still available on n.
func (c *ViewConsumable) Pending(n view.Node) Match {
	var m Match
	e := c.entries(n, false)
	if e == nil {
		return m
	}
	m.Name = e.name != nil && *e.name
	m.Attributes = availableKeys(e.attributes)
	m.Classes = availableKeys(e.classes)
	m.Styles = availableKeys(e.styles)
	return m
}

func availableKeys(set map[string]bool) []string {
	var out []string
	for k, v := range set {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
