package conversion

import (
	"fmt"
	"strings"

	"github.com/dshills/twintree/internal/event"
	"github.com/dshills/twintree/internal/model"
	"github.com/dshills/twintree/internal/view"
)

// Custom property keys a container element can set to take over marker
// highlighting of itself.
const (
	AddHighlightProperty    = "addHighlight"
	RemoveHighlightProperty = "removeHighlight"
)

// HighlightDescriptor describes how a marker highlights content.
type HighlightDescriptor struct {
	Name       string
	Classes    []string
	Attributes map[string]string
	Priority   int
	// ID defaults to the marker name so pieces of one marker merge while
	// overlapping markers stay separate.
	ID string
}

// AddHighlightFunc highlights a container element. It is stored as the
// AddHighlightProperty custom property.
type AddHighlightFunc func(e *view.Element, d HighlightDescriptor, w *view.Writer)

// RemoveHighlightFunc removes the highlight with the given id. It is stored
// as the RemoveHighlightProperty custom property.
type RemoveHighlightFunc func(e *view.Element, id string, w *view.Writer)

func (d HighlightDescriptor) element() *view.Element {
	name := d.Name
	if name == "" {
		name = "span"
	}
	spec := ElementSpec{Name: name, Attributes: d.Attributes, Classes: d.Classes, Priority: d.Priority, ID: d.ID}
	return spec.Build(view.KindAttribute)
}

// DowncastHelpers registers declarative converters on one or more
// downcast dispatchers at once.
type DowncastHelpers struct {
	dispatchers []*DowncastDispatcher
}

// Downcast returns helpers that register on every given dispatcher.
func Downcast(dispatchers ...*DowncastDispatcher) *DowncastHelpers {
	return &DowncastHelpers{dispatchers: dispatchers}
}

// Add registers fn on every dispatcher.
func (h *DowncastHelpers) Add(name string, fn DowncastConverter, prio event.Priority) error {
	for _, d := range h.dispatchers {
		if _, err := d.On(name, fn, event.WithPriority(prio)); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
	}
	return nil
}

func priorityOr(p event.Priority) event.Priority {
	if p == 0 {
		return event.PriorityNormal
	}
	return p
}

// ElementCreator builds the view element for a model element.
type ElementCreator func(item *model.Element, api *DowncastAPI) *view.Element

// ElementToElementConfig maps a model element to a view container.
type ElementToElementConfig struct {
	Model string
	View  ElementSpec
	// Create overrides View.
	Create ElementCreator
	// Priority is the converter priority; zero means normal.
	Priority event.Priority
}

// ElementToElement converts inserted model elements named cfg.Model into
// view elements and binds the two.
func (h *DowncastHelpers) ElementToElement(cfg ElementToElementConfig) error {
	create := cfg.Create
	if create == nil {
		spec := cfg.View
		create = func(*model.Element, *DowncastAPI) *view.Element {
			return spec.Build(view.KindContainer)
		}
	}
	return h.Add("insert:"+cfg.Model, insertElement(create), priorityOr(cfg.Priority))
}

func insertElement(create ElementCreator) DowncastConverter {
	return func(evt *event.Info, data *DowncastData, api *DowncastAPI) error {
		me, ok := data.Item.(*model.Element)
		if !ok || api.Consumable.Test(me, evt.Name) != Available {
			return nil
		}
		ve := create(me, api)
		if ve == nil {
			return ErrNoViewElement
		}
		pos, err := api.Mapper.ToViewPosition(data.Range.Start, false)
		if err != nil {
			return ignoreUnmapped(err)
		}
		api.Consumable.Consume(me, evt.Name)
		api.Mapper.BindElements(me, ve)
		_, err = api.Writer.Insert(pos, ve)
		return err
	}
}

// ValueCreator builds an attribute element for an attribute value. A nil
// result means the value has no view representation.
type ValueCreator func(value any, api *DowncastAPI) *view.Element

// AttributeToElementConfig maps a model attribute to a wrapping attribute
// element.
type AttributeToElementConfig struct {
	Key string
	// Model restricts the converter to items with that name, for example
	// "$text". Empty matches everything.
	Model string
	View  ElementSpec
	// Values picks a spec per attribute value, keyed by fmt.Sprint(value).
	Values map[string]ElementSpec
	// Create overrides View and Values.
	Create   ValueCreator
	Priority event.Priority
}

// AttributeToElement wraps items carrying the attribute. Changing the value
// unwraps the old element before wrapping with the new one. On a collapsed
// selection the caret itself is wrapped.
func (h *DowncastHelpers) AttributeToElement(cfg AttributeToElementConfig) error {
	create := cfg.Create
	if create == nil {
		create = func(value any, _ *DowncastAPI) *view.Element {
			if value == nil {
				return nil
			}
			spec := cfg.View
			if s, ok := cfg.Values[fmt.Sprint(value)]; ok {
				spec = s
			}
			if spec.IsZero() {
				return nil
			}
			return spec.Build(view.KindAttribute)
		}
	}
	fn := wrapConverter(cfg.Model, create)
	prio := priorityOr(cfg.Priority)
	for _, kind := range []string{"addAttribute", "removeAttribute", "changeAttribute"} {
		if err := h.Add(kind+":"+cfg.Key, fn, prio); err != nil {
			return err
		}
	}
	return nil
}

func wrapConverter(modelName string, create ValueCreator) DowncastConverter {
	return func(evt *event.Info, data *DowncastData, api *DowncastAPI) error {
		if sel, ok := data.Item.(*model.Selection); ok {
			return wrapSelection(evt, sel, create(data.NewValue, api), api)
		}
		item, ok := data.Item.(model.Item)
		if !ok || (modelName != "" && item.Name() != modelName) {
			return nil
		}
		oldEl := create(data.OldValue, api)
		newEl := create(data.NewValue, api)
		if oldEl == nil && newEl == nil {
			return nil
		}
		if !api.Consumable.Consume(item, evt.Name) {
			return nil
		}
		r, err := api.Mapper.ToViewRange(data.Range)
		if err != nil {
			return ignoreUnmapped(err)
		}
		if oldEl != nil {
			if r, err = api.Writer.Unwrap(r, oldEl); err != nil {
				return err
			}
		}
		if newEl != nil {
			_, err = api.Writer.Wrap(r, newEl)
		}
		return err
	}
}

// wrapSelection wraps the collapsed view caret so typing continues inside
// the attribute element.
func wrapSelection(evt *event.Info, sel *model.Selection, el *view.Element, api *DowncastAPI) error {
	doc := api.Writer.Document()
	if el == nil || doc == nil || !api.Consumable.Consume(sel, evt.Name) {
		return nil
	}
	r, ok := doc.Selection().FirstRange()
	if !ok || !r.IsCollapsed() {
		return nil
	}
	_, err := api.Writer.Wrap(r, el)
	return err
}

// AttributeToAttributeConfig maps a model element attribute to a view
// attribute, class or style of the bound view element.
type AttributeToAttributeConfig struct {
	// Model restricts the converter to elements with that name.
	Model string
	Key   string

	// ViewKey is the view attribute. "class" adds the value as classes,
	// "style" sets the Style property.
	ViewKey string
	Style   string

	// Values translates model values, keyed by fmt.Sprint(value). Values
	// missing from the map are used as they are.
	Values   map[string]string
	Priority event.Priority
}

// AttributeToAttribute keeps a view attribute in sync with a model element
// attribute.
func (h *DowncastHelpers) AttributeToAttribute(cfg AttributeToAttributeConfig) error {
	viewKey := cfg.ViewKey
	if viewKey == "" {
		viewKey = cfg.Key
	}
	toView := func(v any) string {
		if v == nil {
			return ""
		}
		s := fmt.Sprint(v)
		if mapped, ok := cfg.Values[s]; ok {
			return mapped
		}
		return s
	}
	fn := func(evt *event.Info, data *DowncastData, api *DowncastAPI) error {
		me, ok := data.Item.(*model.Element)
		if !ok || (cfg.Model != "" && me.Name() != cfg.Model) {
			return nil
		}
		ve, ok := api.Mapper.ToViewElement(me)
		if !ok || !api.Consumable.Consume(me, evt.Name) {
			return nil
		}
		oldValue, newValue := toView(data.OldValue), toView(data.NewValue)
		w := api.Writer
		switch viewKey {
		case "class":
			if oldValue != "" {
				w.RemoveClass(ve, strings.Fields(oldValue)...)
			}
			if newValue != "" {
				w.AddClass(ve, strings.Fields(newValue)...)
			}
		case "style":
			if newValue == "" {
				w.RemoveStyle(ve, cfg.Style)
			} else {
				w.SetStyle(cfg.Style, newValue, ve)
			}
		default:
			if newValue == "" {
				w.RemoveAttribute(viewKey, ve)
			} else {
				w.SetAttribute(viewKey, newValue, ve)
			}
		}
		return nil
	}
	prio := priorityOr(cfg.Priority)
	for _, kind := range []string{"addAttribute", "removeAttribute", "changeAttribute"} {
		if err := h.Add(kind+":"+cfg.Key, fn, prio); err != nil {
			return err
		}
	}
	return nil
}

// MarkerElementCreator builds a UI element for a marker boundary.
type MarkerElementCreator func(data *DowncastData, isStart bool) *view.Element

// MarkerToElementConfig maps a marker (or marker group) to UI elements at
// its boundaries.
type MarkerToElementConfig struct {
	Marker   string
	View     ElementSpec
	Create   MarkerElementCreator
	Priority event.Priority
}

// MarkerToElement inserts UI elements at the marker boundaries: one element
// for a collapsed marker, a start and an end element otherwise.
func (h *DowncastHelpers) MarkerToElement(cfg MarkerToElementConfig) error {
	create := cfg.Create
	if create == nil {
		spec := cfg.View
		create = func(*DowncastData, bool) *view.Element { return spec.Build(view.KindUI) }
	}
	prio := priorityOr(cfg.Priority)
	add := func(evt *event.Info, data *DowncastData, api *DowncastAPI) error {
		whole, ok := data.Item.(MarkerItem)
		if !ok || !api.Consumable.Consume(whole, evt.Name) {
			return nil
		}
		mr := data.MarkerRange
		start := create(data, true)
		if start == nil {
			return ErrNoViewElement
		}
		if !mr.IsCollapsed() {
			end := create(data, false)
			if end == nil {
				return ErrNoViewElement
			}
			if err := insertMarkerElement(api, data.MarkerName, mr.End, end); err != nil {
				return err
			}
		}
		return insertMarkerElement(api, data.MarkerName, mr.Start, start)
	}
	remove := func(evt *event.Info, data *DowncastData, api *DowncastAPI) error {
		for _, ve := range api.Mapper.MarkerElements(data.MarkerName) {
			api.Mapper.UnbindElementFromMarker(ve, data.MarkerName)
			if ve.Parent() == nil {
				continue
			}
			if _, err := api.Writer.RemoveNode(ve); err != nil {
				return err
			}
		}
		return nil
	}
	if err := h.Add("addMarker:"+cfg.Marker, add, prio); err != nil {
		return err
	}
	return h.Add("removeMarker:"+cfg.Marker, remove, prio)
}

func insertMarkerElement(api *DowncastAPI, name string, p model.Position, ve *view.Element) error {
	pos, err := api.Mapper.ToViewPosition(p, false)
	if err != nil {
		return ignoreUnmapped(err)
	}
	if _, err := api.Writer.Insert(pos, ve); err != nil {
		return err
	}
	api.Mapper.BindElementToMarker(ve, name)
	return nil
}

// DescriptorCreator builds the highlight for a marker. Returning nil skips
// the marker.
type DescriptorCreator func(data *DowncastData) *HighlightDescriptor

// MarkerToHighlightConfig maps a marker (or marker group) to a highlight.
type MarkerToHighlightConfig struct {
	Marker   string
	View     HighlightDescriptor
	Create   DescriptorCreator
	Priority event.Priority
}

// MarkerToHighlight wraps the text inside the marker with a highlight
// attribute element. Containers that set AddHighlightProperty highlight
// themselves and their content is left alone. Collapsed markers have no
// highlight.
func (h *DowncastHelpers) MarkerToHighlight(cfg MarkerToHighlightConfig) error {
	describe := func(data *DowncastData) *HighlightDescriptor {
		var d *HighlightDescriptor
		if cfg.Create != nil {
			d = cfg.Create(data)
		} else {
			v := cfg.View
			d = &v
		}
		if d != nil && d.ID == "" {
			d.ID = data.MarkerName
		}
		return d
	}
	prio := priorityOr(cfg.Priority)
	if err := h.Add("addMarker:"+cfg.Marker, highlightAdd(describe), prio); err != nil {
		return err
	}
	return h.Add("removeMarker:"+cfg.Marker, highlightRemove(describe), prio)
}

func highlightAdd(describe DescriptorCreator) DowncastConverter {
	return func(evt *event.Info, data *DowncastData, api *DowncastAPI) error {
		if data.MarkerRange.IsCollapsed() {
			return nil
		}
		d := describe(data)
		if d == nil {
			return nil
		}
		switch item := data.Item.(type) {
		case *model.Selection:
			return wrapSelection(evt, item, d.element(), api)
		case *model.TextProxy:
			if !api.Consumable.Consume(item, evt.Name) {
				return nil
			}
			r, err := api.Mapper.ToViewRange(data.Range)
			if err != nil {
				return ignoreUnmapped(err)
			}
			_, err = api.Writer.Wrap(r, d.element())
			return err
		case *model.Element:
			ve, ok := api.Mapper.ToViewElement(item)
			if !ok {
				return nil
			}
			prop, _ := ve.CustomProperty(AddHighlightProperty)
			fn, ok := prop.(AddHighlightFunc)
			if !ok || !api.Consumable.Consume(item, evt.Name) {
				return nil
			}
			for _, inner := range model.RangeIn(item).Items(false) {
				api.Consumable.Consume(inner, evt.Name)
			}
			fn(ve, *d, api.Writer)
		}
		return nil
	}
}

func highlightRemove(describe DescriptorCreator) DowncastConverter {
	return func(evt *event.Info, data *DowncastData, api *DowncastAPI) error {
		mr := data.MarkerRange
		if mr.IsCollapsed() {
			return nil
		}
		d := describe(data)
		if d == nil {
			return nil
		}
		for _, item := range mr.Items(false) {
			switch item := item.(type) {
			case *model.TextProxy:
				r, err := api.Mapper.ToViewRange(model.RangeOn(item))
				if err != nil {
					if err = ignoreUnmapped(err); err != nil {
						return err
					}
					continue
				}
				if _, err := api.Writer.Unwrap(r, d.element()); err != nil {
					return err
				}
			case *model.Element:
				ve, ok := api.Mapper.ToViewElement(item)
				if !ok {
					continue
				}
				prop, _ := ve.CustomProperty(RemoveHighlightProperty)
				if fn, ok := prop.(RemoveHighlightFunc); ok {
					fn(ve, d.ID, api.Writer)
				}
			}
		}
		return nil
	}
}
