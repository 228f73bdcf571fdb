package editing

import (
	"fmt"

	"github.com/dshills/twintree/internal/conversion"
	"github.com/dshills/twintree/internal/logging"
	"github.com/dshills/twintree/internal/model"
	"github.com/dshills/twintree/internal/view"
)

// Controller keeps a view document in sync with a model document. Every
// model change is downcast as it happens; the selection is downcast once
// per change block, after all operations have been converted.
type Controller struct {
	model    *model.Document
	view     *view.Document
	mapper   *conversion.Mapper
	downcast *conversion.DowncastDispatcher
	log      *logging.Logger
}

// NewController creates a controller for doc with the default converters
// registered. Roots must be attached with AttachRoot before they are
// edited.
func NewController(doc *model.Document, opts conversion.Options) (*Controller, error) {
	vdoc := view.NewDocument()
	mapper := conversion.NewMapper()
	c := &Controller{
		model:    doc,
		view:     vdoc,
		mapper:   mapper,
		downcast: conversion.NewDowncastDispatcher(mapper, view.NewWriter(vdoc), opts),
		log:      componentLogger(opts, "editing"),
	}
	if err := conversion.RegisterDefaultDowncast(c.downcast); err != nil {
		return nil, err
	}
	doc.OnChange(c.downcast.ConvertChange)
	doc.OnChangesDone(c.convertSelection)
	return c, nil
}

func componentLogger(opts conversion.Options, name string) *logging.Logger {
	if opts.Logger == nil {
		return logging.NullLogger()
	}
	return opts.Logger.WithComponent(name)
}

// Model returns the model document.
func (c *Controller) Model() *model.Document { return c.model }

// View returns the view document.
func (c *Controller) View() *view.Document { return c.view }

// Mapper returns the mapper shared by all roots.
func (c *Controller) Mapper() *conversion.Mapper { return c.mapper }

// Downcast returns the editing dispatcher, for registering converters.
func (c *Controller) Downcast() *conversion.DowncastDispatcher { return c.downcast }

// AttachRoot creates a view root named like the model root, renders it as a
// viewElement element and binds the two. Content already present in the
// model root is converted immediately.
func (c *Controller) AttachRoot(name, viewElement string) (*view.Element, error) {
	mroot, ok := c.model.Root(name)
	if !ok {
		return nil, fmt.Errorf("editing: unknown model root %q", name)
	}
	if _, exists := c.view.Root(name); exists {
		return nil, fmt.Errorf("editing: view root %q already attached", name)
	}
	vroot := c.view.CreateRoot(name, viewElement)
	c.mapper.BindElements(mroot, vroot)
	c.log.WithField("root", name).Debug("attached root as <%s>", viewElement)

	if mroot.ChildCount() == 0 {
		return vroot, nil
	}
	if err := c.downcast.ConvertInsert(model.RangeIn(mroot)); err != nil {
		return vroot, err
	}
	return vroot, convertMarkers(c.downcast, mroot, c.model.Markers())
}

// convertMarkers downcasts the markers of root. Markers spanning all of a
// tracked root were already converted together with its content.
func convertMarkers(d *conversion.DowncastDispatcher, root *model.Element, markers *model.MarkerCollection) error {
	all := model.RangeIn(root)
	tracked := root.Document() != nil && root.Document().Markers() == markers
	for _, m := range markers.All() {
		r := m.Range()
		if r.Root() != root {
			continue
		}
		if tracked && !r.IsCollapsed() && r.ContainsRange(all, true) {
			continue
		}
		if err := d.ConvertMarkerAdd(m.Name(), r); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) convertSelection() error {
	return c.downcast.ConvertSelection(c.model.Selection(), c.model.Markers())
}

// ConvertViewSelection maps a view selection back to the model and applies
// it. Positions falling inside a grapheme cluster snap to its start.
func (c *Controller) ConvertViewSelection(sel *view.Selection) error {
	ranges := make([]model.Range, 0, sel.RangeCount())
	for _, vr := range sel.Ranges() {
		start, err := c.mapper.ToModelPosition(vr.Start)
		if err != nil {
			return fmt.Errorf("editing: selection start: %w", err)
		}
		end, err := c.mapper.ToModelPosition(vr.End)
		if err != nil {
			return fmt.Errorf("editing: selection end: %w", err)
		}
		ranges = append(ranges, model.NewRange(model.SnapToGrapheme(start), model.SnapToGrapheme(end)))
	}
	return c.model.Change(func(w *model.Writer) error {
		return w.SetSelection(ranges, sel.IsBackward())
	})
}
