package conversion

import (
	"fmt"

	"github.com/dshills/twintree/internal/event"
	"github.com/dshills/twintree/internal/model"
	"github.com/dshills/twintree/internal/view"
)

// ViewPattern matches view elements. Attribute values that are empty only
// require the attribute to be present.
type ViewPattern struct {
	Name       string
	Attributes map[string]string
	Classes    []string
	Styles     map[string]string
}

// MatchElement reports whether e fits the pattern and returns the parts of e
// the pattern covers.
func (p ViewPattern) MatchElement(e *view.Element) (Match, bool) {
	if p.Name != "" && e.Name() != p.Name {
		return Match{}, false
	}
	m := Match{Name: true}
	for k, want := range p.Attributes {
		got, ok := e.Attribute(k)
		if !ok || (want != "" && got != want) {
			return Match{}, false
		}
		m.Attributes = append(m.Attributes, k)
	}
	if !e.HasClass(p.Classes...) {
		return Match{}, false
	}
	m.Classes = p.Classes
	for k, want := range p.Styles {
		got, ok := e.Style(k)
		if !ok || (want != "" && got != want) {
			return Match{}, false
		}
		m.Styles = append(m.Styles, k)
	}
	return m, true
}

func (p ViewPattern) eventName() string {
	if p.Name == "" {
		return "element"
	}
	return "element:" + p.Name
}

// UpcastHelpers registers declarative converters on one or more upcast
// dispatchers at once.
type UpcastHelpers struct {
	dispatchers []*UpcastDispatcher
}

// Upcast returns helpers that register on every given dispatcher.
func Upcast(dispatchers ...*UpcastDispatcher) *UpcastHelpers {
	return &UpcastHelpers{dispatchers: dispatchers}
}

// Add registers fn on every dispatcher.
func (h *UpcastHelpers) Add(name string, fn UpcastConverter, prio event.Priority) error {
	for _, d := range h.dispatchers {
		if _, err := d.On(name, fn, event.WithPriority(prio)); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
	}
	return nil
}

// UpcastElementToElementConfig maps view elements to model elements.
type UpcastElementToElementConfig struct {
	View  ViewPattern
	Model string
	// Create overrides Model.
	Create   func(e *view.Element, api *UpcastAPI) *model.Element
	Priority event.Priority
}

// ElementToElement converts matching view elements into model elements
// and converts their children inside.
func (h *UpcastHelpers) ElementToElement(cfg UpcastElementToElementConfig) error {
	fn := func(evt *event.Info, data *UpcastData, api *UpcastAPI) error {
		ve, ok := data.ViewItem.(*view.Element)
		if !ok {
			return nil
		}
		match, ok := cfg.View.MatchElement(ve)
		if !ok || api.Consumable.Test(ve, match) != Available {
			return nil
		}
		var me *model.Element
		if cfg.Create != nil {
			me = cfg.Create(ve, api)
		} else {
			me = api.Writer.CreateElement(cfg.Model, nil)
		}
		if me == nil {
			return nil
		}
		if err := api.Writer.Insert(data.ModelCursor, me); err != nil {
			return err
		}
		api.Consumable.Consume(ve, match)
		api.ConvertChildren(ve, model.PositionAt(me, 0))
		data.ModelRange = model.RangeOn(me)
		return nil
	}
	return h.Add(cfg.View.eventName(), fn, priorityOr(cfg.Priority))
}

// UpcastElementToAttributeConfig maps view elements to a model attribute
// on the content they wrap.
type UpcastElementToAttributeConfig struct {
	View ViewPattern
	Key  string
	// Value is the attribute value. ValueFrom, when set, overrides it.
	Value     any
	ValueFrom func(e *view.Element) any
	Priority  event.Priority
}

// ElementToAttribute converts the children of matching view elements and
// sets the attribute on what they produced. Items that already carry the
// attribute from a nested element keep their value.
func (h *UpcastHelpers) ElementToAttribute(cfg UpcastElementToAttributeConfig) error {
	fn := func(evt *event.Info, data *UpcastData, api *UpcastAPI) error {
		ve, ok := data.ViewItem.(*view.Element)
		if !ok {
			return nil
		}
		match, ok := cfg.View.MatchElement(ve)
		if !ok || !api.Consumable.Consume(ve, match) {
			return nil
		}
		value := cfg.Value
		if cfg.ValueFrom != nil {
			value = cfg.ValueFrom(ve)
		}
		if !data.Converted() {
			data.ModelRange = api.ConvertChildren(ve, data.ModelCursor)
		}
		return setAttributeOn(api.Writer, data.ModelRange, cfg.Key, value)
	}
	return h.Add(cfg.View.eventName(), fn, priorityOr(cfg.Priority))
}

// setAttributeOn sets key on the shallow items of r that do not have it.
// Ranges are collected first because setting attributes splits text nodes.
func setAttributeOn(w *model.Writer, r model.Range, key string, value any) error {
	if value == nil {
		return nil
	}
	var targets []model.Range
	for _, item := range r.Items(true) {
		if !item.HasAttribute(key) {
			targets = append(targets, model.RangeOn(item))
		}
	}
	for _, t := range targets {
		if err := w.SetAttribute(key, value, t); err != nil {
			return err
		}
	}
	return nil
}

// UpcastAttributeToAttributeConfig maps a view attribute, class or style to
// a model attribute on the element converted from the same view element.
type UpcastAttributeToAttributeConfig struct {
	// View selects the element and the consumed part, for example
	// ViewPattern{Name: "p", Styles: map[string]string{"text-align": ""}}.
	View ViewPattern
	Key  string
	// Value computes the model value from the view element. When nil the
	// first matched attribute or style value is used.
	Value    func(e *view.Element) any
	Priority event.Priority
}

// AttributeToAttribute runs after element converters (low priority by
// default) and sets the model attribute on the produced element.
func (h *UpcastHelpers) AttributeToAttribute(cfg UpcastAttributeToAttributeConfig) error {
	fn := func(evt *event.Info, data *UpcastData, api *UpcastAPI) error {
		ve, ok := data.ViewItem.(*view.Element)
		if !ok {
			return nil
		}
		match, ok := cfg.View.MatchElement(ve)
		if !ok {
			return nil
		}
		match.Name = false
		if api.Consumable.Test(ve, match) != Available {
			return nil
		}
		if !data.Converted() {
			data.ModelRange = api.ConvertChildren(ve, data.ModelCursor)
		}
		value := cfg.Value
		if value == nil {
			value = func(e *view.Element) any { return firstMatchedValue(e, match) }
		}
		if err := setAttributeOn(api.Writer, data.ModelRange, cfg.Key, value(ve)); err != nil {
			return err
		}
		api.Consumable.Consume(ve, match)
		return nil
	}
	prio := cfg.Priority
	if prio == 0 {
		prio = event.PriorityLow
	}
	return h.Add(cfg.View.eventName(), fn, prio)
}

func firstMatchedValue(e *view.Element, m Match) any {
	for _, k := range m.Attributes {
		if v, ok := e.Attribute(k); ok {
			return v
		}
	}
	for _, k := range m.Styles {
		if v, ok := e.Style(k); ok {
			return v
		}
	}
	if len(m.Classes) > 0 {
		return m.Classes[0]
	}
	return nil
}
