package conversion_test

import (
	"testing"

	"github.com/dshills/twintree/internal/conversion"
	"github.com/dshills/twintree/internal/markup"
	"github.com/dshills/twintree/internal/model"
	"github.com/dshills/twintree/internal/view"
	"github.com/stretchr/testify/require"
)

// editor wires a model document to a view document the way the editing
// controller does.
type editor struct {
	doc    *model.Document
	root   *model.Element
	vdoc   *view.Document
	vroot  *view.Element
	mapper *conversion.Mapper
	down   *conversion.DowncastDispatcher
	errs   []error
}

func newEditor(t *testing.T, opts conversion.Options) *editor {
	t.Helper()
	e := &editor{
		doc:    model.NewDocument(),
		vdoc:   view.NewDocument(),
		mapper: conversion.NewMapper(),
	}
	e.root = e.doc.CreateRoot("main", "$root")
	e.vroot = e.vdoc.CreateRoot("main", "div")
	e.mapper.BindElements(e.root, e.vroot)
	e.down = conversion.NewDowncastDispatcher(e.mapper, view.NewWriter(e.vdoc), opts)
	require.NoError(t, conversion.RegisterDefaultDowncast(e.down))
	require.NoError(t, conversion.Downcast(e.down).ElementToElement(conversion.ElementToElementConfig{
		Model: "paragraph",
		View:  conversion.ElementSpec{Name: "p"},
	}))
	e.doc.OnChange(func(c model.Change) error { return e.down.ConvertChange(c) })
	e.doc.OnChangesDone(func() error {
		return e.down.ConvertSelection(e.doc.Selection(), e.doc.Markers())
	})
	return e
}

func (e *editor) change(t *testing.T, fn func(w *model.Writer) error) {
	t.Helper()
	require.NoError(t, e.doc.Change(fn))
}

// paragraph inserts a paragraph with text at the end of the root.
func (e *editor) paragraph(t *testing.T, text string, attrs map[string]any) *model.Element {
	t.Helper()
	var p *model.Element
	e.change(t, func(w *model.Writer) error {
		var err error
		if p, err = w.InsertElement("paragraph", nil, model.PositionAtEnd(e.root)); err != nil {
			return err
		}
		return w.InsertText(text, attrs, model.PositionAt(p, 0))
	})
	return p
}

func (e *editor) view() string {
	return markup.String(e.vroot)
}

func (e *editor) viewWithSelection() string {
	return markup.StringifySelection(e.vroot, e.vdoc.Selection(), markup.Options{})
}
