package editing_test

import (
	"testing"

	"github.com/dshills/twintree/internal/conversion"
	"github.com/dshills/twintree/internal/editing"
	"github.com/dshills/twintree/internal/markup"
	"github.com/dshills/twintree/internal/model"
	"github.com/dshills/twintree/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerBasics(t *testing.T, down []*conversion.DowncastDispatcher, up []*conversion.UpcastDispatcher) {
	t.Helper()
	dh := conversion.Downcast(down...)
	require.NoError(t, dh.ElementToElement(conversion.ElementToElementConfig{
		Model: "paragraph",
		View:  conversion.ElementSpec{Name: "p"},
	}))
	require.NoError(t, dh.AttributeToElement(conversion.AttributeToElementConfig{
		Key:   "bold",
		Model: model.TextName,
		View:  conversion.ElementSpec{Name: "strong"},
	}))
	if len(up) == 0 {
		return
	}
	uh := conversion.Upcast(up...)
	require.NoError(t, uh.ElementToElement(conversion.UpcastElementToElementConfig{
		View:  conversion.ViewPattern{Name: "p"},
		Model: "paragraph",
	}))
	require.NoError(t, uh.ElementToAttribute(conversion.UpcastElementToAttributeConfig{
		View:  conversion.ViewPattern{Name: "strong"},
		Key:   "bold",
		Value: true,
	}))
}

func newController(t *testing.T, doc *model.Document) *editing.Controller {
	t.Helper()
	c, err := editing.NewController(doc, conversion.Options{Strict: true})
	require.NoError(t, err)
	registerBasics(t, []*conversion.DowncastDispatcher{c.Downcast()}, nil)
	return c
}

func TestControllerConvertsChanges(t *testing.T) {
	doc := model.NewDocument()
	root := doc.CreateRoot("main", "$root")
	c := newController(t, doc)
	vroot, err := c.AttachRoot("main", "div")
	require.NoError(t, err)

	var p *model.Element
	require.NoError(t, doc.Change(func(w *model.Writer) error {
		if p, err = w.InsertElement("paragraph", nil, model.PositionAt(root, 0)); err != nil {
			return err
		}
		if err := w.InsertText("foobar", nil, model.PositionAt(p, 0)); err != nil {
			return err
		}
		return w.SetSelectionAt(model.PositionAt(p, 3))
	}))
	assert.Equal(t, "<p>foo{}bar</p>", markup.StringifySelection(vroot, c.View().Selection(), markup.Options{}))

	require.NoError(t, doc.Change(func(w *model.Writer) error {
		if err := w.SetAttribute("bold", true, model.NewRange(model.PositionAt(p, 0), model.PositionAt(p, 3))); err != nil {
			return err
		}
		return w.SetSelectionAt(model.PositionAt(p, 5))
	}))
	assert.Equal(t, "<p><strong>foo</strong>ba{}r</p>", markup.StringifySelection(vroot, c.View().Selection(), markup.Options{}))
}

func TestControllerAttachRootConvertsExistingContent(t *testing.T) {
	doc := model.NewDocument()
	root := doc.CreateRoot("main", "$root")
	require.NoError(t, doc.Change(func(w *model.Writer) error {
		p, err := w.InsertElement("paragraph", nil, model.PositionAt(root, 0))
		if err != nil {
			return err
		}
		return w.InsertText("foo", map[string]any{"bold": true}, model.PositionAt(p, 0))
	}))

	c := newController(t, doc)
	vroot, err := c.AttachRoot("main", "div")
	require.NoError(t, err)
	assert.Equal(t, "<p><strong>foo</strong></p>", markup.String(vroot))

	_, err = c.AttachRoot("main", "div")
	assert.Error(t, err, "root attached twice")
	_, err = c.AttachRoot("missing", "div")
	assert.Error(t, err)
}

func TestControllerConvertViewSelection(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		offset     int
		wantOffset int
	}{
		{"plain", "foobar", 3, 3},
		{"inside combining sequence", "cafe\u0301s", 4, 3},
		{"after combining sequence", "cafe\u0301s", 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := model.NewDocument()
			root := doc.CreateRoot("main", "$root")
			c := newController(t, doc)
			vroot, err := c.AttachRoot("main", "div")
			require.NoError(t, err)
			require.NoError(t, doc.Change(func(w *model.Writer) error {
				p, err := w.InsertElement("paragraph", nil, model.PositionAt(root, 0))
				if err != nil {
					return err
				}
				return w.InsertText(tt.text, nil, model.PositionAt(p, 0))
			}))

			vp := vroot.Child(0).(*view.Element)
			vtext := vp.Child(0).(*view.Text)
			view.NewWriter(c.View()).SetSelection(
				[]view.Range{view.CollapsedRange(view.PositionAt(vtext, tt.offset))},
				view.SelectionOptions{},
			)
			require.NoError(t, c.ConvertViewSelection(c.View().Selection()))

			anchor, ok := doc.Selection().Anchor()
			require.True(t, ok)
			assert.Equal(t, tt.wantOffset, anchor.Offset())
			assert.True(t, doc.Selection().IsCollapsed())
		})
	}
}

func TestDataPipelineRoundTrip(t *testing.T) {
	doc := model.NewDocument()
	root := doc.CreateRoot("main", "$root")
	require.NoError(t, doc.Change(func(w *model.Writer) error {
		p, err := w.InsertElement("paragraph", nil, model.PositionAt(root, 0))
		if err != nil {
			return err
		}
		if err := w.InsertText("foo", nil, model.PositionAt(p, 0)); err != nil {
			return err
		}
		return w.InsertText("bar", map[string]any{"bold": true}, model.PositionAt(p, 3))
	}))

	pipe, err := editing.NewDataPipeline(conversion.Options{Strict: true})
	require.NoError(t, err)
	registerBasics(t,
		[]*conversion.DowncastDispatcher{pipe.Downcast()},
		[]*conversion.UpcastDispatcher{pipe.Upcast()},
	)

	out, err := pipe.Stringify(root, doc.Markers())
	require.NoError(t, err)
	assert.Equal(t, "<p>foo<strong>bar</strong></p>", out)

	// Repeated calls start from fresh bindings.
	again, err := pipe.Stringify(root, doc.Markers())
	require.NoError(t, err)
	assert.Equal(t, out, again)

	frag, err := pipe.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, model.StringifyChildren(root), model.StringifyChildren(frag))
}

func TestDataPipelineNormalizesText(t *testing.T) {
	tests := []struct {
		name      string
		normalize bool
		want      string
	}{
		{"normalized", true, "<paragraph>caf\u00e9</paragraph>"},
		{"verbatim", false, "<paragraph>cafe\u0301</paragraph>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipe, err := editing.NewDataPipeline(conversion.Options{Strict: true, NormalizeText: tt.normalize})
			require.NoError(t, err)
			registerBasics(t,
				[]*conversion.DowncastDispatcher{pipe.Downcast()},
				[]*conversion.UpcastDispatcher{pipe.Upcast()},
			)
			frag, err := pipe.Parse("<p>cafe\u0301</p>")
			require.NoError(t, err)
			assert.Equal(t, tt.want, model.StringifyChildren(frag))
		})
	}
}

func TestDataPipelineMarkers(t *testing.T) {
	doc := model.NewDocument()
	root := doc.CreateRoot("main", "$root")
	require.NoError(t, doc.Change(func(w *model.Writer) error {
		p, err := w.InsertElement("paragraph", nil, model.PositionAt(root, 0))
		if err != nil {
			return err
		}
		if err := w.InsertText("foobar", nil, model.PositionAt(p, 0)); err != nil {
			return err
		}
		_, err = w.AddMarker("search:1", model.NewRange(model.PositionAt(p, 1), model.PositionAt(p, 3)))
		return err
	}))

	pipe, err := editing.NewDataPipeline(conversion.Options{Strict: true})
	require.NoError(t, err)
	registerBasics(t, []*conversion.DowncastDispatcher{pipe.Downcast()}, nil)
	require.NoError(t, conversion.Downcast(pipe.Downcast()).MarkerToHighlight(conversion.MarkerToHighlightConfig{
		Marker: "search",
		View:   conversion.HighlightDescriptor{Classes: []string{"hit"}},
	}))

	out, err := pipe.Stringify(root, doc.Markers())
	require.NoError(t, err)
	assert.Equal(t, `<p>f<span class="hit">oo</span>bar</p>`, out)

	plain, err := pipe.Stringify(root, nil)
	require.NoError(t, err)
	assert.Equal(t, "<p>foobar</p>", plain)
}
