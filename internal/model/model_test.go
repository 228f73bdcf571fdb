package model

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestDoc(t *testing.T) (*Document, *Element) {
	t.Helper()
	doc := NewDocument()
	return doc, doc.CreateRoot("main", "$root")
}

func recordChanges(doc *Document) *[]Change {
	var changes []Change
	doc.OnChange(func(c Change) error {
		changes = append(changes, c)
		return nil
	})
	return &changes
}

func changeTypes(changes []Change) []string {
	out := make([]string, len(changes))
	for i, c := range changes {
		out[i] = c.Type.String()
	}
	return out
}

func TestWriterInsertMergesText(t *testing.T) {
	doc, root := newTestDoc(t)
	changes := recordChanges(doc)

	err := doc.Change(func(w *Writer) error {
		p, err := w.InsertElement("paragraph", nil, PositionAt(root, 0))
		if err != nil {
			return err
		}
		if err := w.InsertText("foo", nil, PositionAt(p, 0)); err != nil {
			return err
		}
		return w.InsertText("bar", nil, PositionAt(p, 3))
	})
	if err != nil {
		t.Fatalf("Change: %v", err)
	}

	if got, want := Stringify(root), "<$root><paragraph>foobar</paragraph></$root>"; got != want {
		t.Errorf("Stringify = %q, want %q", got, want)
	}
	p := root.Child(0).(*Element)
	if p.ChildCount() != 1 {
		t.Errorf("ChildCount = %d, want 1", p.ChildCount())
	}
	if diff := cmp.Diff([]string{"insert", "insert", "insert"}, changeTypes(*changes)); diff != "" {
		t.Errorf("change types (-want +got):\n%s", diff)
	}
	if got, want := (*changes)[2].Range.String(), "[main:[0,3] - main:[0,6]]"; got != want {
		t.Errorf("last insert range = %q, want %q", got, want)
	}
}

func TestWriterRemoveMovesToGraveyard(t *testing.T) {
	doc, root := newTestDoc(t)
	p := NewElement("paragraph", nil, NewText("foobar", nil))
	if err := doc.Change(func(w *Writer) error { return w.Append(root, p) }); err != nil {
		t.Fatal(err)
	}
	changes := recordChanges(doc)

	err := doc.Change(func(w *Writer) error {
		return w.Remove(NewRange(PositionAt(p, 1), PositionAt(p, 4)))
	})
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if got, want := StringifyChildren(p), "far"; got != want {
		t.Errorf("paragraph = %q, want %q", got, want)
	}
	if got, want := StringifyChildren(doc.Graveyard()), "oob"; got != want {
		t.Errorf("graveyard = %q, want %q", got, want)
	}
	if len(*changes) != 1 {
		t.Fatalf("got %d changes, want 1", len(*changes))
	}
	c := (*changes)[0]
	if c.Type != ChangeRemove {
		t.Errorf("type = %v, want remove", c.Type)
	}
	if got, want := c.SourcePosition.String(), "main:[0,1]"; got != want {
		t.Errorf("source = %q, want %q", got, want)
	}
	if got, want := c.Range.String(), "[$graveyard:[0] - $graveyard:[3]]"; got != want {
		t.Errorf("range = %q, want %q", got, want)
	}
	if !IsRemoved(doc.Graveyard().Child(0)) {
		t.Error("graveyard node should report removed")
	}
}

func TestWriterSetAttributeGroupsByOldValue(t *testing.T) {
	doc, root := newTestDoc(t)
	p := NewElement("paragraph", nil,
		NewText("foo", map[string]any{"italic": "a"}),
		NewText("bar", map[string]any{"italic": "b"}),
		NewText("baz", map[string]any{"bold": true}),
	)
	if err := doc.Change(func(w *Writer) error { return w.Append(root, p) }); err != nil {
		t.Fatal(err)
	}
	changes := recordChanges(doc)

	err := doc.Change(func(w *Writer) error {
		if err := w.SetAttribute("italic", "c", RangeIn(p)); err != nil {
			return err
		}
		return w.SetAttribute("bold", true, RangeIn(p))
	})
	if err != nil {
		t.Fatal(err)
	}

	got := changeTypes(*changes)
	want := []string{"changeAttribute", "changeAttribute", "addAttribute", "addAttribute"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("change types (-want +got):\n%s", diff)
	}
	if (*changes)[0].OldValue != "a" || (*changes)[1].OldValue != "b" {
		t.Errorf("old values = %v, %v", (*changes)[0].OldValue, (*changes)[1].OldValue)
	}
	if (*changes)[2].Key != "italic" {
		t.Errorf("third change key = %q, want italic", (*changes)[2].Key)
	}
	if got, want := (*changes)[3].Range.String(), "[main:[0,0] - main:[0,6]]"; got != want {
		t.Errorf("bold range = %q, want %q", got, want)
	}
	wantModel := `<paragraph><$text bold="true" italic="c">foobarbaz</$text></paragraph>`
	if got := Stringify(p); got != wantModel {
		t.Errorf("Stringify = %q, want %q", got, wantModel)
	}
}

func TestWriterSetAttributeOnPartialText(t *testing.T) {
	doc, root := newTestDoc(t)
	p := NewElement("paragraph", nil, NewText("foobar", nil))
	_ = doc.Change(func(w *Writer) error { return w.Append(root, p) })

	err := doc.Change(func(w *Writer) error {
		return w.SetAttribute("bold", true, NewRange(PositionAt(p, 2), PositionAt(p, 4)))
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := StringifyChildren(p), `fo<$text bold="true">ob</$text>ar`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	_ = doc.Change(func(w *Writer) error {
		return w.RemoveAttribute("bold", RangeIn(p))
	})
	if got, want := StringifyChildren(p), "foobar"; got != want {
		t.Errorf("after remove got %q, want %q", got, want)
	}
}

func TestWriterMove(t *testing.T) {
	doc, root := newTestDoc(t)
	first := NewElement("paragraph", nil, NewText("ab", nil))
	second := NewElement("heading", nil, NewText("cd", nil))
	_ = doc.Change(func(w *Writer) error { return w.Append(root, first, second) })
	changes := recordChanges(doc)

	err := doc.Change(func(w *Writer) error {
		return w.Move(RangeOn(first), PositionAt(root, 2))
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := StringifyChildren(root), "<heading>cd</heading><paragraph>ab</paragraph>"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	c := (*changes)[0]
	if c.Type != ChangeMove {
		t.Fatalf("type = %v", c.Type)
	}
	if got, want := c.SourcePosition.String(), "main:[0]"; got != want {
		t.Errorf("source = %q, want %q", got, want)
	}
	if got, want := c.Range.String(), "[main:[1] - main:[2]]"; got != want {
		t.Errorf("range = %q, want %q", got, want)
	}
}

func TestWriterMoveIntoItself(t *testing.T) {
	doc, root := newTestDoc(t)
	p := NewElement("paragraph", nil, NewText("ab", nil))
	_ = doc.Change(func(w *Writer) error { return w.Append(root, p) })

	err := doc.Change(func(w *Writer) error {
		return w.Move(RangeOn(p), PositionAt(p, 1))
	})
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("err = %v, want ErrInvalidRange", err)
	}
}

func TestWriterRename(t *testing.T) {
	doc, root := newTestDoc(t)
	p := NewElement("paragraph", nil, NewText("ab", nil))
	_ = doc.Change(func(w *Writer) error { return w.Append(root, p) })
	changes := recordChanges(doc)

	_ = doc.Change(func(w *Writer) error { return w.Rename(p, "heading") })
	if len(*changes) != 1 || (*changes)[0].OldName != "paragraph" || (*changes)[0].Element != p {
		t.Fatalf("unexpected changes %v", *changes)
	}
	if p.Name() != "heading" {
		t.Errorf("name = %q", p.Name())
	}
}

func TestWriterOutsideChange(t *testing.T) {
	doc, root := newTestDoc(t)
	var stale *Writer
	_ = doc.Change(func(w *Writer) error {
		stale = w
		return nil
	})
	if err := stale.InsertText("x", nil, PositionAt(root, 0)); !errors.Is(err, ErrNotInChange) {
		t.Errorf("err = %v, want ErrNotInChange", err)
	}
}

func TestNestedChangeFiresDoneOnce(t *testing.T) {
	doc, root := newTestDoc(t)
	done := 0
	doc.OnChangesDone(func() error {
		done++
		return nil
	})
	_ = doc.Change(func(w *Writer) error {
		return doc.Change(func(inner *Writer) error {
			if inner != w {
				t.Error("nested change should reuse the writer")
			}
			_, err := inner.InsertElement("paragraph", nil, PositionAt(root, 0))
			return err
		})
	})
	if done != 1 {
		t.Errorf("done = %d, want 1", done)
	}
}

func TestListenerErrorsAreReturned(t *testing.T) {
	doc, root := newTestDoc(t)
	boom := errors.New("boom")
	doc.OnChange(func(Change) error { return boom })
	err := doc.Change(func(w *Writer) error {
		_, err := w.InsertElement("paragraph", nil, PositionAt(root, 0))
		return err
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestMarkersFollowOperations(t *testing.T) {
	doc, root := newTestDoc(t)
	p := NewElement("paragraph", nil, NewText("foobar", nil))
	_ = doc.Change(func(w *Writer) error { return w.Append(root, p) })

	_ = doc.Change(func(w *Writer) error {
		if _, err := w.AddMarker("comment:1", NewRange(PositionAt(p, 1), PositionAt(p, 4))); err != nil {
			return err
		}
		_, err := w.AddMarker("search", CollapsedRange(PositionAt(p, 3)))
		return err
	})

	steps := []struct {
		name    string
		op      func(w *Writer) error
		comment string
		search  string
	}{
		{
			name:    "insert before",
			op:      func(w *Writer) error { return w.InsertText("X", nil, PositionAt(p, 0)) },
			comment: "[main:[0,2] - main:[0,5]]",
			search:  "[main:[0,4] - main:[0,4]]",
		},
		{
			name:    "insert at start stays outside",
			op:      func(w *Writer) error { return w.InsertText("Y", nil, PositionAt(p, 2)) },
			comment: "[main:[0,3] - main:[0,6]]",
			search:  "[main:[0,5] - main:[0,5]]",
		},
		{
			name:    "insert at end stays outside",
			op:      func(w *Writer) error { return w.InsertText("Z", nil, PositionAt(p, 6)) },
			comment: "[main:[0,3] - main:[0,6]]",
			search:  "[main:[0,5] - main:[0,5]]",
		},
		{
			name:    "remove over start collapses onto removal",
			op:      func(w *Writer) error { return w.Remove(NewRange(PositionAt(p, 0), PositionAt(p, 4))) },
			comment: "[main:[0,0] - main:[0,2]]",
			search:  "[main:[0,1] - main:[0,1]]",
		},
	}
	for _, step := range steps {
		if err := doc.Change(step.op); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		comment, _ := doc.Markers().Get("comment:1")
		search, _ := doc.Markers().Get("search")
		if got := comment.Range().String(); got != step.comment {
			t.Errorf("%s: comment = %s, want %s", step.name, got, step.comment)
		}
		if got := search.Range().String(); got != step.search {
			t.Errorf("%s: search = %s, want %s", step.name, got, step.search)
		}
	}

	if got := len(doc.Markers().Group("comment")); got != 1 {
		t.Errorf("Group(comment) = %d markers, want 1", got)
	}
	if got := len(doc.Markers().AtPosition(PositionAt(p, 1))); got != 2 {
		t.Errorf("AtPosition = %d markers, want 2", got)
	}
}

func TestMarkerErrors(t *testing.T) {
	doc, root := newTestDoc(t)
	err := doc.Change(func(w *Writer) error {
		if _, err := w.AddMarker("m", CollapsedRange(PositionAt(root, 0))); err != nil {
			return err
		}
		_, err := w.AddMarker("m", CollapsedRange(PositionAt(root, 0)))
		return err
	})
	if !errors.Is(err, ErrMarkerExists) {
		t.Errorf("err = %v, want ErrMarkerExists", err)
	}
	err = doc.Change(func(w *Writer) error { return w.RemoveMarker("missing") })
	if !errors.Is(err, ErrUnknownMarker) {
		t.Errorf("err = %v, want ErrUnknownMarker", err)
	}
}

func TestSelectionAttributes(t *testing.T) {
	doc, root := newTestDoc(t)
	p := NewElement("paragraph", nil, NewText("foo", map[string]any{"bold": true}), NewText("bar", nil))
	_ = doc.Change(func(w *Writer) error { return w.Append(root, p) })

	_ = doc.Change(func(w *Writer) error { return w.SetSelectionAt(PositionAt(p, 3)) })
	sel := doc.Selection()
	if !sel.IsCollapsed() {
		t.Fatal("selection should be collapsed")
	}
	if v, ok := sel.Attribute("bold"); !ok || v != true {
		t.Errorf("inherited bold = %v, %v", v, ok)
	}

	_ = doc.Change(func(w *Writer) error { return w.SetSelectionAttribute("italic", true) })
	if diff := cmp.Diff([]string{"bold", "italic"}, sel.AttributeKeys()); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}

	_ = doc.Change(func(w *Writer) error { return w.SetSelectionAt(PositionAt(p, 5)) })
	if diff := cmp.Diff([]string{}, sel.AttributeKeys()); diff != "" {
		t.Errorf("keys after move (-want +got):\n%s", diff)
	}
}

func TestSelectionFollowsInsertion(t *testing.T) {
	doc, root := newTestDoc(t)
	p := NewElement("paragraph", nil, NewText("foo", nil))
	_ = doc.Change(func(w *Writer) error { return w.Append(root, p) })
	_ = doc.Change(func(w *Writer) error { return w.SetSelectionAt(PositionAt(p, 3)) })
	_ = doc.Change(func(w *Writer) error { return w.InsertText("bar", nil, PositionAt(p, 3)) })

	r, _ := doc.Selection().FirstRange()
	if got, want := r.Start.String(), "main:[0,6]"; got != want {
		t.Errorf("selection = %s, want %s", got, want)
	}
}

func TestMarkerGroup(t *testing.T) {
	doc, root := newTestDoc(t)
	names := []string{"comment", "comment:1", "comment:1:reply", "commentary", "search"}
	err := doc.Change(func(w *Writer) error {
		if err := w.InsertText("foo", nil, PositionAt(root, 0)); err != nil {
			return err
		}
		for _, name := range names {
			if _, err := w.AddMarker(name, CollapsedRange(PositionAt(root, 1))); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		prefix string
		want   []string
	}{
		{"comment", []string{"comment", "comment:1", "comment:1:reply"}},
		{"comment:1", []string{"comment:1", "comment:1:reply"}},
		{"comm", nil},
		{"", names},
	}
	for _, tt := range tests {
		var got []string
		for _, m := range doc.Markers().Group(tt.prefix) {
			got = append(got, m.Name())
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Group(%q) mismatch (-want +got):\n%s", tt.prefix, diff)
		}
	}
}
