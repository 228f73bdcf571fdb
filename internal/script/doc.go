// Package script runs Lua files that define converters.
//
// Scripts run in a sandboxed gopher-lua state: only the base, string, table
// and math libraries are available, code loading is disabled and require
// only resolves the converters module:
//
//	local converters = require("converters")
//
//	converters.attribute_to_element{
//	    key = "fontColor",
//	    view = function(value)
//	        return {name = "span", styles = {color = value}}
//	    end,
//	}
//
//	converters.upcast_element_to_attribute{
//	    view = {name = "span", styles = {color = ""}},
//	    key = "fontColor",
//	    value = function(el) return el.styles.color end,
//	}
//
// View factories run during conversion, under the same time limit as the
// scripts themselves.
package script
