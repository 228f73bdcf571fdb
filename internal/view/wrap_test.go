package view_test

import (
	"testing"

	"github.com/dshills/twintree/internal/markup"
	"github.com/dshills/twintree/internal/view"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wrapper string
		want    string
	}{
		{
			name:    "whole text",
			input:   "<p>[foobar]</p>",
			wrapper: "<b></b>",
			want:    "<p>[<b>foobar</b>]</p>",
		},
		{
			name:    "part of text",
			input:   "<p>f{oob}ar</p>",
			wrapper: "<b></b>",
			want:    "<p>f[<b>oob</b>]ar</p>",
		},
		{
			name:    "merges with similar neighbour",
			input:   "<p><b>foo</b>[bar]</p>",
			wrapper: "<b></b>",
			want:    "<p><b>foo{bar</b>]</p>",
		},
		{
			name:    "higher priority goes outside",
			input:   `<p>[<b view-priority="5">foo</b>]</p>`,
			wrapper: `<i view-priority="9"></i>`,
			want:    "<p>[<i><b>foo</b></i>]</p>",
		},
		{
			name:    "lower priority goes inside",
			input:   `<p>[<i view-priority="9">foo</i>]</p>`,
			wrapper: `<b view-priority="5"></b>`,
			want:    "<p>[<i><b>foo</b></i>]</p>",
		},
		{
			name:    "equal priority keeps existing outside",
			input:   "<p>[<b>foo</b>]</p>",
			wrapper: "<i></i>",
			want:    "<p>[<b><i>foo</i></b>]</p>",
		},
		{
			name:    "range ending inside attribute",
			input:   "<p>{foo<b>bar}baz</b></p>",
			wrapper: "<i></i>",
			want:    "<p>[<i>foo</i><b><i>bar</i>]baz</b></p>",
		},
		{
			name:    "same element twice",
			input:   "<p>[<b>foo</b>]</p>",
			wrapper: "<b></b>",
			want:    "<p>[<b>foo</b>]</p>",
		},
		{
			name:    "joins classes",
			input:   `<p>[<b class="x">foo</b>]</p>`,
			wrapper: `<b class="y"></b>`,
			want:    `<p>[<b class="x y">foo</b>]</p>`,
		},
		{
			name:    "conflicting styles nest",
			input:   `<p>[<span style="color:red">foo</span>]</p>`,
			wrapper: `<span style="color:blue"></span>`,
			want:    `<p>[<span style="color:red;"><span style="color:blue;">foo</span></span>]</p>`,
		},
		{
			name:    "elements with id never join",
			input:   `<p>[<span view-id="a">foo</span>]</p>`,
			wrapper: `<span view-id="b"></span>`,
			want:    `<p>[<span><span>foo</span></span>]</p>`,
		},
		{
			name:    "collapsed inside text",
			input:   "<p>foo{}bar</p>",
			wrapper: "<b></b>",
			want:    "<p>foo<b>[]</b>bar</p>",
		},
		{
			name:    "collapsed next to similar element",
			input:   "<p><b>foo</b>[]bar</p>",
			wrapper: "<b></b>",
			want:    "<p><b>foo{}</b>bar</p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag, ranges := parse(t, tt.input)
			r, err := view.NewWriter(nil).Wrap(ranges[0], element(t, tt.wrapper))
			if err != nil {
				t.Fatalf("Wrap: %v", err)
			}
			if got := render(frag, r); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestWrapOrderIndependent(t *testing.T) {
	bold := `<strong view-priority="5"></strong>`
	link := `<a href="x" view-priority="9"></a>`
	wrapBoth := func(first, second string) string {
		frag, ranges := parse(t, "<p>[foo]</p>")
		w := view.NewWriter(nil)
		r, err := w.Wrap(ranges[0], element(t, first))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Wrap(r, element(t, second)); err != nil {
			t.Fatal(err)
		}
		return render(frag)
	}
	a := wrapBoth(bold, link)
	b := wrapBoth(link, bold)
	if a != b {
		t.Errorf("wrap order changed the tree: %q vs %q", a, b)
	}
	if want := `<p><a href="x"><strong>foo</strong></a></p>`; a != want {
		t.Errorf("got %q, want %q", a, want)
	}
}

func TestWrapRejectsNonAttribute(t *testing.T) {
	_, ranges := parse(t, "<p>[foo]</p>")
	if _, err := view.NewWriter(nil).Wrap(ranges[0], view.NewContainerElement("div", nil)); err != view.ErrNotAttributeElement {
		t.Errorf("err = %v", err)
	}
}

func TestWrapCollapsedMovesSelection(t *testing.T) {
	doc := view.NewDocument()
	root := doc.CreateRoot("main", "div")
	w := view.NewWriter(doc)
	p := w.CreateContainerElement("p", nil, w.CreateText("foobar"))
	if _, err := w.Insert(view.PositionAt(root, 0), p); err != nil {
		t.Fatal(err)
	}
	at := view.PositionAt(p.Child(0), 3)
	w.SetSelectionAt(at)
	if _, err := w.Wrap(view.CollapsedRange(at), w.CreateAttributeElement("b", nil)); err != nil {
		t.Fatal(err)
	}
	got := markup.StringifySelection(root, doc.Selection(), markup.Options{})
	if want := "<p>foo<b>[]</b>bar</p>"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestUnwrap(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wrapper string
		want    string
	}{
		{
			name:    "whole element",
			input:   "<p>[<b>foo</b>]</p>",
			wrapper: "<b></b>",
			want:    "<p>[foo]</p>",
		},
		{
			name:    "part of element",
			input:   "<p><b>f{oo}bar</b></p>",
			wrapper: "<b></b>",
			want:    "<p><b>f</b>[oo]<b>bar</b></p>",
		},
		{
			name:    "nested element",
			input:   "<p>[<i><b>foo</b></i>]</p>",
			wrapper: "<b></b>",
			want:    "<p>[<i>foo</i>]</p>",
		},
		{
			name:    "strips matching class",
			input:   `<p>[<b class="x y">foo</b>]</p>`,
			wrapper: `<b class="x"></b>`,
			want:    `<p>[<b class="y">foo</b>]</p>`,
		},
		{
			name:    "different priority untouched",
			input:   `<p>[<b view-priority="3">foo</b>]</p>`,
			wrapper: "<b></b>",
			want:    "<p>[<b>foo</b>]</p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag, ranges := parse(t, tt.input)
			r, err := view.NewWriter(nil).Unwrap(ranges[0], element(t, tt.wrapper))
			if err != nil {
				t.Fatalf("Unwrap: %v", err)
			}
			if got := render(frag, r); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestWrapThenUnwrapRestoresTree(t *testing.T) {
	frag, ranges := parse(t, "<p>foo<i>b{ar</i>ba}z</p>")
	w := view.NewWriter(nil)
	attr := element(t, "<b></b>")
	r, err := w.Wrap(ranges[0], attr)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Unwrap(r, attr); err != nil {
		t.Fatal(err)
	}
	if got, want := render(frag), "<p>foo<i>bar</i>baz</p>"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
