// Package markup converts view trees to and from a compact HTML-like text
// form used by tests, configuration examples and the command line tool.
//
// Elements may carry their kind as a tag prefix ("attribute:b",
// "container:p", "empty:img", "ui:span"); without a prefix a fixed set of
// inline names parse as attribute elements and everything else as
// containers. The pseudo attributes view-priority and view-id set the
// priority and merge id of attribute elements.
//
// Selection ranges are written with brackets: "[" and "]" between nodes,
// "{" and "}" inside text.
package markup
