package conversion

import (
	"sort"
	"strings"

	"github.com/dshills/twintree/internal/view"
)

// ElementSpec describes a view element for the declarative helpers.
type ElementSpec struct {
	Name       string
	Attributes map[string]string
	Classes    []string
	Styles     map[string]string

	// Priority applies to attribute elements. Zero means
	// view.DefaultPriority.
	Priority int

	// ID makes attribute elements with the same id merge and never merge
	// with anything else.
	ID string
}

// IsZero reports whether the spec names no element.
func (s ElementSpec) IsZero() bool { return s.Name == "" }

// Build creates a detached view element of the given kind.
func (s ElementSpec) Build(kind view.Kind) *view.Element {
	attrs := make(map[string]string, len(s.Attributes)+2)
	for k, v := range s.Attributes {
		attrs[k] = v
	}
	if len(s.Classes) > 0 {
		classes := strings.Join(s.Classes, " ")
		if existing := attrs["class"]; existing != "" {
			classes = existing + " " + classes
		}
		attrs["class"] = classes
	}
	if len(s.Styles) > 0 {
		names := make([]string, 0, len(s.Styles))
		for name := range s.Styles {
			names = append(names, name)
		}
		sort.Strings(names)
		var b strings.Builder
		b.WriteString(attrs["style"])
		for _, name := range names {
			b.WriteString(name + ":" + s.Styles[name] + ";")
		}
		attrs["style"] = b.String()
	}
	var opts []view.Option
	if kind == view.KindAttribute {
		if s.Priority != 0 {
			opts = append(opts, view.WithPriority(s.Priority))
		}
		if s.ID != "" {
			opts = append(opts, view.WithElementID(s.ID))
		}
	}
	return view.NewElement(kind, s.Name, attrs, opts...)
}
