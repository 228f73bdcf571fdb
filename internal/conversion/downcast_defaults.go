package conversion

import (
	"errors"

	"github.com/dshills/twintree/internal/event"
	"github.com/dshills/twintree/internal/model"
	"github.com/dshills/twintree/internal/view"
)

// RegisterDefaultDowncast installs the converters every editing pipeline
// needs: text insertion, removal, moves and selection handling. Feature
// converters registered at normal priority run before them.
func RegisterDefaultDowncast(d *DowncastDispatcher) error {
	regs := []struct {
		name string
		fn   DowncastConverter
		prio event.Priority
	}{
		{"insert:" + model.TextName, InsertText(), event.PriorityLowest},
		{"remove", Remove(), event.PriorityLowest},
		{"move", Move(), event.PriorityLowest},
		{"selection", ClearAttributes(), event.PriorityHigh},
		{"selection:range", ConvertRangeSelection(), event.PriorityNormal},
		{"selection:collapsed", ConvertCollapsedSelection(), event.PriorityNormal},
		{"clearFakeSelection", ClearFakeSelection(), event.PriorityLow},
	}
	for _, r := range regs {
		if _, err := d.On(r.name, r.fn, event.WithPriority(r.prio)); err != nil {
			return err
		}
	}
	return nil
}

// ignoreUnmapped turns mapping failures into silent skips.
func ignoreUnmapped(err error) error {
	if errors.Is(err, ErrNotMapped) {
		return nil
	}
	return err
}

// InsertText inserts a view text node for inserted model text.
func InsertText() DowncastConverter {
	return func(evt *event.Info, data *DowncastData, api *DowncastAPI) error {
		proxy, ok := data.Item.(*model.TextProxy)
		if !ok || !api.Consumable.Consume(proxy, evt.Name) {
			return nil
		}
		pos, err := api.Mapper.ToViewPosition(data.Range.Start, false)
		if err != nil {
			return ignoreUnmapped(err)
		}
		_, err = api.Writer.Insert(pos, api.Writer.CreateText(proxy.Data()))
		return err
	}
}

// Remove deletes the view counterpart of removed model content and unbinds
// every view element it contained.
func Remove() DowncastConverter {
	return func(evt *event.Info, data *DowncastData, api *DowncastAPI) error {
		if !api.Consumable.Consume(data.Item, evt.Name) {
			return nil
		}
		r, err := viewRangeAt(api.Mapper, data.SourcePosition, data.Length)
		if err != nil {
			return ignoreUnmapped(err)
		}
		removed, err := api.Writer.Remove(r.Trimmed())
		if err != nil {
			return err
		}
		for _, n := range removed.Children() {
			api.Mapper.UnbindViewTree(n)
		}
		return nil
	}
}

// Move moves the view counterpart of moved model content.
func Move() DowncastConverter {
	return func(evt *event.Info, data *DowncastData, api *DowncastAPI) error {
		if !api.Consumable.Consume(data.Item, evt.Name) {
			return nil
		}
		source, err := viewRangeAt(api.Mapper, data.SourcePosition, data.Length)
		if err != nil {
			return ignoreUnmapped(err)
		}
		target, err := api.Mapper.ToViewPosition(data.Target, true)
		if err != nil {
			return ignoreUnmapped(err)
		}
		_, err = api.Writer.Move(source.Trimmed(), target)
		return err
	}
}

// viewRangeAt maps length model offsets starting at p. Both ends are
// mapped as phantom positions since the model no longer matches the view.
func viewRangeAt(m *Mapper, p model.Position, length int) (view.Range, error) {
	start, err := m.ToViewPosition(p, true)
	if err != nil {
		return view.Range{}, err
	}
	end, err := m.ToViewPosition(p.ShiftedBy(length), true)
	if err != nil {
		return view.Range{}, err
	}
	return view.NewRange(start, end), nil
}

// ClearAttributes merges attribute elements around the previous collapsed
// view selection, which drops attribute elements that only held the caret,
// and clears the view selection.
func ClearAttributes() DowncastConverter {
	return func(evt *event.Info, data *DowncastData, api *DowncastAPI) error {
		doc := api.Writer.Document()
		if doc == nil {
			return nil
		}
		for _, r := range doc.Selection().Ranges() {
			if r.IsCollapsed() && view.IsAttached(r.End.Parent) {
				api.Writer.MergeAttributes(r.Start)
			}
		}
		api.Writer.SetSelection(nil, fakeOptions(api.Writer, false))
		return nil
	}
}

// ConvertRangeSelection maps every model selection range to the view.
func ConvertRangeSelection() DowncastConverter {
	return func(evt *event.Info, data *DowncastData, api *DowncastAPI) error {
		sel := data.Selection
		if sel == nil || sel.IsCollapsed() || !api.Consumable.Consume(sel, evt.Name) {
			return nil
		}
		var ranges []view.Range
		for _, r := range sel.Ranges() {
			vr, err := api.Mapper.ToViewRange(r)
			if err != nil {
				if err = ignoreUnmapped(err); err != nil {
					return err
				}
				continue
			}
			ranges = append(ranges, vr)
		}
		api.Writer.SetSelection(ranges, fakeOptions(api.Writer, sel.IsBackward()))
		return nil
	}
}

// ConvertCollapsedSelection maps the caret, breaking attribute elements so
// that the view caret sits between them.
func ConvertCollapsedSelection() DowncastConverter {
	return func(evt *event.Info, data *DowncastData, api *DowncastAPI) error {
		sel := data.Selection
		if sel == nil || !sel.IsCollapsed() || !api.Consumable.Consume(sel, evt.Name) {
			return nil
		}
		anchor, _ := sel.Anchor()
		pos, err := api.Mapper.ToViewPosition(anchor, false)
		if err != nil {
			return ignoreUnmapped(err)
		}
		broken, err := api.Writer.BreakAttributes(pos)
		if err != nil {
			return err
		}
		api.Writer.SetSelection([]view.Range{view.CollapsedRange(broken)}, fakeOptions(api.Writer, false))
		return nil
	}
}

// fakeOptions keeps the fake state of the view selection. It is cleared
// separately by ClearFakeSelection.
func fakeOptions(w *view.Writer, backward bool) view.SelectionOptions {
	opts := view.SelectionOptions{Backward: backward}
	if doc := w.Document(); doc != nil {
		opts.Fake = doc.Selection().IsFake()
		opts.Label = doc.Selection().FakeLabel()
	}
	return opts
}

// ClearFakeSelection resets the fake flag when no converter claimed the
// selection as fake.
func ClearFakeSelection() DowncastConverter {
	return func(evt *event.Info, data *DowncastData, api *DowncastAPI) error {
		doc := api.Writer.Document()
		if doc == nil || !doc.Selection().IsFake() {
			return nil
		}
		sel := doc.Selection()
		api.Writer.SetSelection(sel.Ranges(), view.SelectionOptions{Backward: sel.IsBackward()})
		return nil
	}
}
