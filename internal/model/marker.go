package model

import "github.com/dshills/twintree/internal/event/topic"

// Marker is a named range annotation that is not stored in node attributes.
type Marker struct {
	name string
	rng  Range
}

// Name returns the marker name.
func (m *Marker) Name() string { return m.name }

// Range returns the current marker range.
func (m *Marker) Range() Range { return m.rng }

// MarkerCollection holds the markers of a document in insertion order.
type MarkerCollection struct {
	byName map[string]*Marker
	order  []string
}

func newMarkerCollection() *MarkerCollection {
	return &MarkerCollection{byName: make(map[string]*Marker)}
}

// Get returns the marker with the given name.
func (c *MarkerCollection) Get(name string) (*Marker, bool) {
	m, ok := c.byName[name]
	return m, ok
}

// Has reports whether a marker with the name exists.
func (c *MarkerCollection) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Len returns the number of markers.
func (c *MarkerCollection) Len() int { return len(c.order) }

// All returns the markers in insertion order.
func (c *MarkerCollection) All() []*Marker {
	out := make([]*Marker, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.byName[name])
	}
	return out
}

// AtPosition returns the markers whose range contains or touches p.
func (c *MarkerCollection) AtPosition(p Position) []*Marker {
	var out []*Marker
	for _, m := range c.All() {
		if m.rng.Root() == p.Root() && m.rng.Touches(p) {
			out = append(out, m)
		}
	}
	return out
}

// Group returns markers named prefix or prefix:<anything>. An empty prefix
// matches every marker.
func (c *MarkerCollection) Group(prefix string) []*Marker {
	var out []*Marker
	for _, m := range c.All() {
		if topic.Topic(m.name).HasPrefix(topic.Topic(prefix)) {
			out = append(out, m)
		}
	}
	return out
}

func (c *MarkerCollection) set(name string, r Range) *Marker {
	if m, ok := c.byName[name]; ok {
		m.rng = r
		return m
	}
	m := &Marker{name: name, rng: r}
	c.byName[name] = m
	c.order = append(c.order, name)
	return m
}

func (c *MarkerCollection) remove(name string) {
	if _, ok := c.byName[name]; !ok {
		return
	}
	delete(c.byName, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *MarkerCollection) transform(fn func(Range) Range) {
	for _, m := range c.byName {
		m.rng = fn(m.rng)
	}
}
