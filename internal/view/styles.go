package view

import (
	"sort"
	"strings"
)

// boxShorthands are expanded into their four sides on write and collapsed
// back when all four sides are known.
var boxShorthands = []string{"margin", "padding"}

var boxSides = []string{"top", "right", "bottom", "left"}

// StylesMap holds inline style declarations keyed by normalized property
// name.
type StylesMap struct {
	props map[string]string
}

// NewStylesMap parses an inline style string such as "color:red; margin:0".
func NewStylesMap(css string) *StylesMap {
	s := &StylesMap{props: make(map[string]string)}
	s.parse(css)
	return s
}

func (s *StylesMap) parse(css string) {
	for _, part := range strings.Split(css, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.Index(part, ":")
		if idx == -1 {
			continue
		}
		s.Set(part[:idx], part[idx+1:])
	}
}

// Set stores a property. Box shorthands are expanded. An empty value removes
// the property.
func (s *StylesMap) Set(name, value string) {
	name = normalizeStyleName(name)
	value = normalizeStyleValue(value)
	if name == "" {
		return
	}
	if value == "" {
		s.Remove(name)
		return
	}
	if isBoxShorthand(name) {
		if sides, ok := expandBox(value); ok {
			for i, side := range boxSides {
				s.props[name+"-"+side] = sides[i]
			}
			return
		}
	}
	s.props[name] = value
}

// SetMany stores several properties.
func (s *StylesMap) SetMany(props map[string]string) {
	for k, v := range props {
		s.Set(k, v)
	}
}

// Remove deletes properties. Removing a shorthand removes all its sides.
func (s *StylesMap) Remove(names ...string) {
	for _, name := range names {
		name = normalizeStyleName(name)
		if isBoxShorthand(name) {
			for _, side := range boxSides {
				delete(s.props, name+"-"+side)
			}
		}
		delete(s.props, name)
	}
}

// Get returns the value of a property. Shorthands are reconstructed from
// their sides when all four are set.
func (s *StylesMap) Get(name string) (string, bool) {
	name = normalizeStyleName(name)
	if v, ok := s.props[name]; ok {
		return v, true
	}
	if isBoxShorthand(name) {
		return s.collapseBox(name)
	}
	return "", false
}

// Has reports whether Get would find the property.
func (s *StylesMap) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Names returns the property names in sorted order, using shorthands where
// all sides are set.
func (s *StylesMap) Names() []string {
	collapsed := make(map[string]bool)
	var names []string
	for _, sh := range boxShorthands {
		if _, ok := s.collapseBox(sh); ok {
			collapsed[sh] = true
			names = append(names, sh)
		}
	}
	for k := range s.props {
		if base, ok := boxBase(k); ok && collapsed[base] {
			continue
		}
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored (expanded) properties.
func (s *StylesMap) Len() int { return len(s.props) }

// IsEmpty reports whether no property is set.
func (s *StylesMap) IsEmpty() bool { return len(s.props) == 0 }

// Equal reports whether both maps hold the same declarations.
func (s *StylesMap) Equal(o *StylesMap) bool {
	if len(s.props) != len(o.props) {
		return false
	}
	for k, v := range s.props {
		if o.props[k] != v {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (s *StylesMap) Clone() *StylesMap {
	c := &StylesMap{props: make(map[string]string, len(s.props))}
	for k, v := range s.props {
		c.props[k] = v
	}
	return c
}

// Clear removes every declaration.
func (s *StylesMap) Clear() { s.props = make(map[string]string) }

// String serializes the map as "name:value;" pairs in name order.
func (s *StylesMap) String() string {
	var b strings.Builder
	for _, name := range s.Names() {
		v, _ := s.Get(name)
		b.WriteString(name + ":" + v + ";")
	}
	return b.String()
}

func (s *StylesMap) collapseBox(name string) (string, bool) {
	var v [4]string
	for i, side := range boxSides {
		val, ok := s.props[name+"-"+side]
		if !ok {
			return "", false
		}
		v[i] = val
	}
	top, right, bottom, left := v[0], v[1], v[2], v[3]
	switch {
	case top == right && right == bottom && bottom == left:
		return top, true
	case top == bottom && right == left:
		return top + " " + right, true
	case right == left:
		return top + " " + right + " " + bottom, true
	}
	return strings.Join(v[:], " "), true
}

func expandBox(value string) ([4]string, bool) {
	parts := strings.Fields(value)
	switch len(parts) {
	case 1:
		return [4]string{parts[0], parts[0], parts[0], parts[0]}, true
	case 2:
		return [4]string{parts[0], parts[1], parts[0], parts[1]}, true
	case 3:
		return [4]string{parts[0], parts[1], parts[2], parts[1]}, true
	case 4:
		return [4]string{parts[0], parts[1], parts[2], parts[3]}, true
	}
	return [4]string{}, false
}

func isBoxShorthand(name string) bool {
	for _, sh := range boxShorthands {
		if sh == name {
			return true
		}
	}
	return false
}

func boxBase(name string) (string, bool) {
	for _, sh := range boxShorthands {
		if strings.HasPrefix(name, sh+"-") {
			return sh, true
		}
	}
	return "", false
}

// normalizeStyleName lowercases and converts camelCase to kebab-case:
// "backgroundColor" -> "background-color".
func normalizeStyleName(name string) string {
	name = strings.TrimSpace(name)
	if strings.Contains(name, "-") {
		return strings.ToLower(name)
	}
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func normalizeStyleValue(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
