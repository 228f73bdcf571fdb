package model

import (
	"errors"
	"sort"
)

// GraveyardName is the root that holds removed content.
const GraveyardName = "$graveyard"

// ChangeListener is notified synchronously after every applied operation.
type ChangeListener func(c Change) error

// DoneListener is notified when the outermost change block finishes.
type DoneListener func() error

// Document owns the model roots, the markers and the selection. All
// mutations go through Change.
type Document struct {
	roots     map[string]*Element
	graveyard *Element
	markers   *MarkerCollection
	selection *Selection

	listeners     []ChangeListener
	doneListeners []DoneListener

	writer  *Writer
	version int
}

// NewDocument creates a document containing only the graveyard root.
func NewDocument() *Document {
	d := &Document{
		roots:     make(map[string]*Element),
		markers:   newMarkerCollection(),
		selection: &Selection{},
	}
	d.graveyard = d.CreateRoot(GraveyardName, GraveyardName)
	return d
}

// CreateRoot creates (or returns the existing) root registered under name.
func (d *Document) CreateRoot(name, elementName string) *Element {
	if r, ok := d.roots[name]; ok {
		return r
	}
	r := NewElement(elementName, nil)
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

// RootNames returns the names of all roots except the graveyard, sorted.
func (d *Document) RootNames() []string {
	names := make([]string, 0, len(d.roots))
	for name := range d.roots {
		if name != GraveyardName {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Graveyard returns the root holding removed content.
func (d *Document) Graveyard() *Element { return d.graveyard }

// Markers returns the marker collection.
func (d *Document) Markers() *MarkerCollection { return d.markers }

// Selection returns the document selection.
func (d *Document) Selection() *Selection { return d.selection }

// Version returns the number of operations applied so far.
func (d *Document) Version() int { return d.version }

// OnChange registers a listener called after every operation.
func (d *Document) OnChange(fn ChangeListener) {
	d.listeners = append(d.listeners, fn)
}

// OnChangesDone registers a listener called after each outermost change
// block.
func (d *Document) OnChangesDone(fn DoneListener) {
	d.doneListeners = append(d.doneListeners, fn)
}

// Change runs fn with a writer. Nested calls reuse the outer writer and the
// done listeners fire once, when the outermost block returns. Listener errors
// are joined with the error returned by fn.
func (d *Document) Change(fn func(w *Writer) error) error {
	if d.writer != nil {
		return fn(d.writer)
	}
	w := &Writer{doc: d}
	d.writer = w
	err := fn(w)
	w.closed = true
	d.writer = nil

	errs := []error{err}
	for _, l := range d.doneListeners {
		errs = append(errs, l())
	}
	return errors.Join(errs...)
}

func (d *Document) notify(c Change) error {
	var errs []error
	for _, l := range d.listeners {
		errs = append(errs, l(c))
	}
	return errors.Join(errs...)
}
