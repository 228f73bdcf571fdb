package script

import (
	"fmt"

	"github.com/dshills/twintree/internal/conversion"
	"github.com/dshills/twintree/internal/model"
	"github.com/dshills/twintree/internal/view"
	lua "github.com/yuin/gopher-lua"
)

// toLua converts a model attribute value to a Lua value.
func toLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []string:
		t := L.NewTable()
		for _, s := range val {
			t.Append(lua.LString(s))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, e := range val {
			t.RawSetString(k, toLua(L, e))
		}
		return t
	case map[string]string:
		t := L.NewTable()
		for k, e := range val {
			t.RawSetString(k, lua.LString(e))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(v))
	}
}

// toGo converts a Lua value to a model attribute value. Integral numbers
// become int; tables become maps keyed by their string keys.
func toGo(lv lua.LValue) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		m := make(map[string]any)
		v.ForEach(func(k, e lua.LValue) {
			m[k.String()] = toGo(e)
		})
		return m
	default:
		return nil
	}
}

// itemTable describes a model item to a Lua callback.
func itemTable(L *lua.LState, item model.Item) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("name", lua.LString(item.Name()))
	attrs := L.NewTable()
	for _, k := range item.AttributeKeys() {
		v, _ := item.Attribute(k)
		attrs.RawSetString(k, toLua(L, v))
	}
	t.RawSetString("attributes", attrs)
	return t
}

// elementTable describes a view element to a Lua callback.
func elementTable(L *lua.LState, e *view.Element) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("name", lua.LString(e.Name()))
	attrs := L.NewTable()
	for _, k := range e.AttributeKeys() {
		if k == "class" || k == "style" {
			continue
		}
		v, _ := e.Attribute(k)
		attrs.RawSetString(k, lua.LString(v))
	}
	t.RawSetString("attributes", attrs)
	t.RawSetString("classes", toLua(L, e.Classes()))
	styles := L.NewTable()
	for _, name := range e.StyleNames() {
		v, _ := e.Style(name)
		styles.RawSetString(name, lua.LString(v))
	}
	t.RawSetString("styles", styles)
	return t
}

// specFromLua reads an element description: either a bare element name or
// a table with name, classes, attributes, styles, priority and id. nil and
// false mean "no element".
func specFromLua(lv lua.LValue) (conversion.ElementSpec, error) {
	switch v := lv.(type) {
	case *lua.LNilType, lua.LBool:
		return conversion.ElementSpec{}, nil
	case lua.LString:
		return conversion.ElementSpec{Name: string(v)}, nil
	case *lua.LTable:
		spec := conversion.ElementSpec{
			Name:       stringField(v, "name"),
			ID:         stringField(v, "id"),
			Attributes: stringMap(v.RawGetString("attributes")),
			Styles:     stringMap(v.RawGetString("styles")),
			Classes:    stringList(v.RawGetString("classes")),
		}
		if n, ok := v.RawGetString("priority").(lua.LNumber); ok {
			spec.Priority = int(n)
		}
		if spec.Name == "" {
			return spec, fmt.Errorf("element description without name")
		}
		return spec, nil
	}
	return conversion.ElementSpec{}, fmt.Errorf("cannot use %s as element description", lv.Type())
}

// patternFromLua reads a view pattern: a bare element name or a table with
// name, classes, attributes and styles.
func patternFromLua(lv lua.LValue) (conversion.ViewPattern, error) {
	switch v := lv.(type) {
	case lua.LString:
		return conversion.ViewPattern{Name: string(v)}, nil
	case *lua.LTable:
		return conversion.ViewPattern{
			Name:       stringField(v, "name"),
			Attributes: stringMap(v.RawGetString("attributes")),
			Styles:     stringMap(v.RawGetString("styles")),
			Classes:    stringList(v.RawGetString("classes")),
		}, nil
	}
	return conversion.ViewPattern{}, fmt.Errorf("cannot use %s as view pattern", lv.Type())
}

func stringField(t *lua.LTable, key string) string {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

func stringMap(lv lua.LValue) map[string]string {
	t, ok := lv.(*lua.LTable)
	if !ok {
		return nil
	}
	m := make(map[string]string)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = v.String()
	})
	return m
}

// stringList accepts an array table or a single string.
func stringList(lv lua.LValue) []string {
	switch v := lv.(type) {
	case lua.LString:
		return []string{string(v)}
	case *lua.LTable:
		out := make([]string, 0, v.Len())
		for i := 1; i <= v.Len(); i++ {
			out = append(out, v.RawGetInt(i).String())
		}
		return out
	}
	return nil
}
