package view

import "sort"

// Document holds the view roots and the view selection.
type Document struct {
	roots     map[string]*Element
	selection *Selection
}

// NewDocument creates an empty view document.
func NewDocument() *Document {
	return &Document{roots: make(map[string]*Element), selection: &Selection{}}
}

// CreateRoot creates (or returns) the root registered under name.
func (d *Document) CreateRoot(name, elementName string) *Element {
	if r, ok := d.roots[name]; ok {
		return r
	}
	r := NewElement(KindRoot, elementName, nil)
	r.doc = d
	r.rootName = name
	d.roots[name] = r
	return r
}

// Root returns the root registered under name.
func (d *Document) Root(name string) (*Element, bool) {
	r, ok := d.roots[name]
	return r, ok
}

// RootNames returns root names in sorted order.
func (d *Document) RootNames() []string {
	names := make([]string, 0, len(d.roots))
	for n := range d.roots {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Selection returns the view selection.
func (d *Document) Selection() *Selection { return d.selection }
