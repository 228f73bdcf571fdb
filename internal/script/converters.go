package script

import (
	"github.com/dshills/twintree/internal/conversion"
	"github.com/dshills/twintree/internal/event"
	"github.com/dshills/twintree/internal/model"
	"github.com/dshills/twintree/internal/view"
	lua "github.com/yuin/gopher-lua"
)

// ModuleName is the name scripts require to register converters.
const ModuleName = "converters"

func (r *Runtime) loadModule(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"element_to_element":          r.elementToElement,
		"attribute_to_element":        r.attributeToElement,
		"attribute_to_attribute":      r.attributeToAttribute,
		"marker_to_highlight":         r.markerToHighlight,
		"marker_to_element":           r.markerToElement,
		"upcast_element_to_element":   r.upcastElementToElement,
		"upcast_element_to_attribute": r.upcastElementToAttribute,
	})
	L.Push(mod)
	return 1
}

// priorityField reads the optional "priority" tier label.
func priorityField(t *lua.LTable) event.Priority {
	label := stringField(t, "priority")
	if label == "" {
		return 0
	}
	return event.ParsePriority(label)
}

func requireField(L *lua.LState, t *lua.LTable, key string) string {
	s := stringField(t, key)
	if s == "" {
		L.ArgError(1, key+" is required")
	}
	return s
}

// check raises err as a Lua error.
func check(L *lua.LState, err error) {
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
}

// build calls fn and turns its result into a view element of kind. Callback
// failures are logged and produce no element.
func (r *Runtime) build(fn *lua.LFunction, kind view.Kind, args func(L *lua.LState) []lua.LValue) *view.Element {
	ret, err := r.call(fn, args)
	if err != nil {
		r.log.Error("view callback failed: %v", err)
		return nil
	}
	spec, err := specFromLua(ret)
	if err != nil {
		r.log.Error("view callback: %v", err)
		return nil
	}
	if spec.IsZero() {
		return nil
	}
	return spec.Build(kind)
}

// converters.element_to_element{model = "paragraph", view = "p" | {...} | function(item)}
func (r *Runtime) elementToElement(L *lua.LState) int {
	cfg := L.CheckTable(1)
	c := conversion.ElementToElementConfig{
		Model:    requireField(L, cfg, "model"),
		Priority: priorityField(cfg),
	}
	switch v := cfg.RawGetString("view").(type) {
	case *lua.LFunction:
		c.Create = func(item *model.Element, _ *conversion.DowncastAPI) *view.Element {
			return r.build(v, view.KindContainer, func(L *lua.LState) []lua.LValue {
				return []lua.LValue{itemTable(L, item)}
			})
		}
	default:
		spec, err := specFromLua(v)
		check(L, err)
		if spec.IsZero() {
			L.ArgError(1, "view is required")
		}
		c.View = spec
	}
	check(L, r.down.ElementToElement(c))
	return 0
}

// converters.attribute_to_element{key = "bold", model = "$text", view = ..., values = {...}}
func (r *Runtime) attributeToElement(L *lua.LState) int {
	cfg := L.CheckTable(1)
	c := conversion.AttributeToElementConfig{
		Key:      requireField(L, cfg, "key"),
		Model:    stringField(cfg, "model"),
		Priority: priorityField(cfg),
	}
	if c.Model == "" {
		c.Model = model.TextName
	}
	switch v := cfg.RawGetString("view").(type) {
	case *lua.LFunction:
		c.Create = func(value any, _ *conversion.DowncastAPI) *view.Element {
			if value == nil {
				return nil
			}
			return r.build(v, view.KindAttribute, func(L *lua.LState) []lua.LValue {
				return []lua.LValue{toLua(L, value)}
			})
		}
	case *lua.LNilType:
	default:
		spec, err := specFromLua(v)
		check(L, err)
		c.View = spec
	}
	if values, ok := cfg.RawGetString("values").(*lua.LTable); ok {
		c.Values = make(map[string]conversion.ElementSpec)
		var err error
		values.ForEach(func(k, v lua.LValue) {
			spec, serr := specFromLua(v)
			if serr != nil && err == nil {
				err = serr
			}
			c.Values[k.String()] = spec
		})
		check(L, err)
	}
	check(L, r.down.AttributeToElement(c))
	return 0
}

// converters.attribute_to_attribute{model = "image", key = "source", view_key = "src", style = ""}
func (r *Runtime) attributeToAttribute(L *lua.LState) int {
	cfg := L.CheckTable(1)
	c := conversion.AttributeToAttributeConfig{
		Model:    stringField(cfg, "model"),
		Key:      requireField(L, cfg, "key"),
		ViewKey:  requireField(L, cfg, "view_key"),
		Style:    stringField(cfg, "style"),
		Values:   stringMap(cfg.RawGetString("values")),
		Priority: priorityField(cfg),
	}
	check(L, r.down.AttributeToAttribute(c))
	return 0
}

// descriptorFromLua reads a highlight description table.
func descriptorFromLua(lv lua.LValue) (*conversion.HighlightDescriptor, bool) {
	t, ok := lv.(*lua.LTable)
	if !ok {
		return nil, false
	}
	d := &conversion.HighlightDescriptor{
		Name:       stringField(t, "name"),
		Classes:    stringList(t.RawGetString("classes")),
		Attributes: stringMap(t.RawGetString("attributes")),
		ID:         stringField(t, "id"),
	}
	if n, ok := t.RawGetString("priority").(lua.LNumber); ok {
		d.Priority = int(n)
	}
	return d, true
}

// converters.marker_to_highlight{marker = "comment", view = {...} | function(name)}
func (r *Runtime) markerToHighlight(L *lua.LState) int {
	cfg := L.CheckTable(1)
	c := conversion.MarkerToHighlightConfig{
		Marker:   requireField(L, cfg, "marker"),
		Priority: priorityField(cfg),
	}
	switch v := cfg.RawGetString("view").(type) {
	case *lua.LFunction:
		c.Create = func(data *conversion.DowncastData) *conversion.HighlightDescriptor {
			ret, err := r.call(v, func(L *lua.LState) []lua.LValue {
				return []lua.LValue{lua.LString(data.MarkerName)}
			})
			if err != nil {
				r.log.Error("highlight callback failed: %v", err)
				return nil
			}
			d, _ := descriptorFromLua(ret)
			return d
		}
	default:
		d, ok := descriptorFromLua(v)
		if !ok {
			L.ArgError(1, "view must be a table or a function")
		}
		c.View = *d
	}
	check(L, r.down.MarkerToHighlight(c))
	return 0
}

// converters.marker_to_element{marker = "bookmark", view = "span" | {...} | function(name, is_start)}
func (r *Runtime) markerToElement(L *lua.LState) int {
	cfg := L.CheckTable(1)
	c := conversion.MarkerToElementConfig{
		Marker:   requireField(L, cfg, "marker"),
		Priority: priorityField(cfg),
	}
	switch v := cfg.RawGetString("view").(type) {
	case *lua.LFunction:
		c.Create = func(data *conversion.DowncastData, isStart bool) *view.Element {
			return r.build(v, view.KindUI, func(L *lua.LState) []lua.LValue {
				return []lua.LValue{lua.LString(data.MarkerName), lua.LBool(isStart)}
			})
		}
	default:
		spec, err := specFromLua(v)
		check(L, err)
		if spec.IsZero() {
			L.ArgError(1, "view is required")
		}
		c.View = spec
	}
	check(L, r.down.MarkerToElement(c))
	return 0
}

// converters.upcast_element_to_element{view = "h1" | {...}, model = "heading" | function(el)}
func (r *Runtime) upcastElementToElement(L *lua.LState) int {
	if r.up == nil {
		check(L, ErrNoHelpers)
	}
	cfg := L.CheckTable(1)
	pattern, err := patternFromLua(cfg.RawGetString("view"))
	check(L, err)
	c := conversion.UpcastElementToElementConfig{View: pattern, Priority: priorityField(cfg)}
	switch v := cfg.RawGetString("model").(type) {
	case lua.LString:
		c.Model = string(v)
	case *lua.LFunction:
		c.Create = func(e *view.Element, api *conversion.UpcastAPI) *model.Element {
			ret, err := r.call(v, func(L *lua.LState) []lua.LValue {
				return []lua.LValue{elementTable(L, e)}
			})
			if err != nil {
				r.log.Error("model callback failed: %v", err)
				return nil
			}
			switch m := ret.(type) {
			case lua.LString:
				return api.Writer.CreateElement(string(m), nil)
			case *lua.LTable:
				attrs, _ := toGo(m.RawGetString("attributes")).(map[string]any)
				if name := stringField(m, "name"); name != "" {
					return api.Writer.CreateElement(name, attrs)
				}
			}
			return nil
		}
	default:
		L.ArgError(1, "model must be a string or a function")
	}
	check(L, r.up.ElementToElement(c))
	return 0
}

// converters.upcast_element_to_attribute{view = {...}, key = "color", value = any | function(el)}
func (r *Runtime) upcastElementToAttribute(L *lua.LState) int {
	if r.up == nil {
		check(L, ErrNoHelpers)
	}
	cfg := L.CheckTable(1)
	pattern, err := patternFromLua(cfg.RawGetString("view"))
	check(L, err)
	c := conversion.UpcastElementToAttributeConfig{
		View:     pattern,
		Key:      requireField(L, cfg, "key"),
		Priority: priorityField(cfg),
	}
	switch v := cfg.RawGetString("value").(type) {
	case *lua.LFunction:
		c.ValueFrom = func(e *view.Element) any {
			ret, err := r.call(v, func(L *lua.LState) []lua.LValue {
				return []lua.LValue{elementTable(L, e)}
			})
			if err != nil {
				r.log.Error("value callback failed: %v", err)
				return nil
			}
			return toGo(ret)
		}
	case *lua.LNilType:
		c.Value = true
	default:
		c.Value = toGo(v)
	}
	check(L, r.up.ElementToAttribute(c))
	return 0
}
