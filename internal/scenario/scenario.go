package scenario

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dshills/twintree/internal/model"
	"github.com/tidwall/gjson"
)

var (
	// ErrInvalidScenario is returned for documents that are not a JSON
	// object with a steps array.
	ErrInvalidScenario = errors.New("invalid scenario")

	// ErrUnknownOp is returned for steps whose op is not supported.
	ErrUnknownOp = errors.New("unknown op")
)

// Defaults for the optional top-level fields.
const (
	DefaultRoot    = "main"
	DefaultElement = "div"
)

// Scenario is a sequence of model edits replayed against a fresh document.
type Scenario struct {
	// Root names the model root the steps edit.
	Root string
	// Element is the view element the root is rendered as.
	Element string
	// Content is initial content in view markup, upcast before the first
	// step runs.
	Content string
	Steps   []Step
}

// Step is one change block. Its fields are read lazily by the op.
type Step struct {
	Op  string
	raw gjson.Result
}

// Parse reads a scenario document.
func Parse(data []byte) (*Scenario, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidScenario)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: top level must be an object", ErrInvalidScenario)
	}
	steps := doc.Get("steps")
	if !steps.IsArray() {
		return nil, fmt.Errorf("%w: steps must be an array", ErrInvalidScenario)
	}

	sc := &Scenario{
		Root:    stringOr(doc.Get("root"), DefaultRoot),
		Element: stringOr(doc.Get("element"), DefaultElement),
		Content: doc.Get("content").String(),
	}
	var err error
	steps.ForEach(func(_, v gjson.Result) bool {
		st := Step{Op: v.Get("op").String(), raw: v}
		if _, ok := ops[st.Op]; !ok {
			err = fmt.Errorf("step %d: %w %q", len(sc.Steps)+1, ErrUnknownOp, st.Op)
			return false
		}
		sc.Steps = append(sc.Steps, st)
		return true
	})
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// Ops lists the supported step ops.
func Ops() []string {
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func stringOr(r gjson.Result, def string) string {
	if r.Exists() && r.String() != "" {
		return r.String()
	}
	return def
}

// Apply runs the step inside a change block of root's document.
func (s Step) Apply(w *model.Writer, root *model.Element) error {
	return ops[s.Op](w, root, s.raw)
}

type opFunc func(w *model.Writer, root *model.Element, s gjson.Result) error

var ops = map[string]opFunc{
	"insertText": func(w *model.Writer, root *model.Element, s gjson.Result) error {
		at, err := position(root, s, "at")
		if err != nil {
			return err
		}
		return w.InsertText(s.Get("text").String(), attributes(s.Get("attributes")), at)
	},
	"insertElement": func(w *model.Writer, root *model.Element, s gjson.Result) error {
		at, err := position(root, s, "at")
		if err != nil {
			return err
		}
		name := s.Get("name").String()
		if name == "" {
			return errors.New("insertElement: name is required")
		}
		_, err = w.InsertElement(name, attributes(s.Get("attributes")), at)
		return err
	},
	"remove": func(w *model.Writer, root *model.Element, s gjson.Result) error {
		r, err := rangeOf(root, s)
		if err != nil {
			return err
		}
		return w.Remove(r)
	},
	"move": func(w *model.Writer, root *model.Element, s gjson.Result) error {
		r, err := rangeOf(root, s)
		if err != nil {
			return err
		}
		target, err := position(root, s, "target")
		if err != nil {
			return err
		}
		return w.Move(r, target)
	},
	"rename": func(w *model.Writer, root *model.Element, s gjson.Result) error {
		at, err := position(root, s, "at")
		if err != nil {
			return err
		}
		el, ok := at.NodeAfter().(*model.Element)
		if !ok {
			return fmt.Errorf("rename: no element at %s", at)
		}
		return w.Rename(el, s.Get("name").String())
	},
	"setAttribute": func(w *model.Writer, root *model.Element, s gjson.Result) error {
		r, err := rangeOf(root, s)
		if err != nil {
			return err
		}
		return w.SetAttribute(s.Get("key").String(), value(s.Get("value")), r)
	},
	"removeAttribute": func(w *model.Writer, root *model.Element, s gjson.Result) error {
		r, err := rangeOf(root, s)
		if err != nil {
			return err
		}
		return w.RemoveAttribute(s.Get("key").String(), r)
	},
	"addMarker": func(w *model.Writer, root *model.Element, s gjson.Result) error {
		r, err := rangeOf(root, s)
		if err != nil {
			return err
		}
		_, err = w.AddMarker(s.Get("name").String(), r)
		return err
	},
	"updateMarker": func(w *model.Writer, root *model.Element, s gjson.Result) error {
		r, err := rangeOf(root, s)
		if err != nil {
			return err
		}
		return w.UpdateMarker(s.Get("name").String(), r)
	},
	"removeMarker": func(w *model.Writer, _ *model.Element, s gjson.Result) error {
		return w.RemoveMarker(s.Get("name").String())
	},
	"select": func(w *model.Writer, root *model.Element, s gjson.Result) error {
		r, err := rangeOf(root, s)
		if err != nil {
			return err
		}
		return w.SetSelection([]model.Range{r}, s.Get("backward").Bool())
	},
	"setSelectionAttribute": func(w *model.Writer, _ *model.Element, s gjson.Result) error {
		return w.SetSelectionAttribute(s.Get("key").String(), value(s.Get("value")))
	},
}

// position reads a path such as [0, 3] from field key.
func position(root *model.Element, s gjson.Result, key string) (model.Position, error) {
	r := s.Get(key)
	if !r.IsArray() || len(r.Array()) == 0 {
		return model.Position{}, fmt.Errorf("%s must be a non-empty path", key)
	}
	var path []int
	for _, v := range r.Array() {
		if v.Type != gjson.Number || v.Int() < 0 {
			return model.Position{}, fmt.Errorf("%s: invalid path element %s", key, v.Raw)
		}
		path = append(path, int(v.Int()))
	}
	return model.NewPosition(root, path), nil
}

// rangeOf reads from/to paths. A missing to collapses the range at from.
func rangeOf(root *model.Element, s gjson.Result) (model.Range, error) {
	start, err := position(root, s, "from")
	if err != nil {
		return model.Range{}, err
	}
	if !s.Get("to").Exists() {
		return model.CollapsedRange(start), nil
	}
	end, err := position(root, s, "to")
	if err != nil {
		return model.Range{}, err
	}
	if end.IsBefore(start) {
		return model.Range{}, fmt.Errorf("range end %s is before start %s", end, start)
	}
	return model.NewRange(start, end), nil
}

func attributes(r gjson.Result) map[string]any {
	if !r.IsObject() {
		return nil
	}
	attrs := make(map[string]any)
	r.ForEach(func(k, v gjson.Result) bool {
		attrs[k.String()] = value(v)
		return true
	})
	return attrs
}

// value converts a JSON value to a model attribute value. Integral numbers
// become int.
func value(r gjson.Result) any {
	switch r.Type {
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.String:
		return r.Str
	case gjson.Number:
		if f := r.Float(); f == float64(int(f)) {
			return int(f)
		}
		return r.Float()
	case gjson.Null:
		return nil
	}
	return r.Value()
}
