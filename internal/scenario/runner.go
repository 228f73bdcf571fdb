package scenario

import (
	"fmt"

	"github.com/dshills/twintree/internal/conversion"
	"github.com/dshills/twintree/internal/editing"
	"github.com/dshills/twintree/internal/logging"
	"github.com/dshills/twintree/internal/markup"
	"github.com/dshills/twintree/internal/model"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Env configures a run.
type Env struct {
	Options conversion.Options

	// Setup registers converters. down reaches both the editing and the
	// data dispatchers; up is the data upcast dispatcher.
	Setup func(down *conversion.DowncastHelpers, up *conversion.UpcastHelpers) error
}

// StepResult records the state after one step.
type StepResult struct {
	Index int
	Op    string
	// View is the editing view of the root with the selection marked.
	View string
	// Model is the model content of the root.
	Model string
}

// Report is the outcome of a run.
type Report struct {
	Initial string
	Steps   []StepResult
	// Data is the final content as produced by the data pipeline,
	// markers included.
	Data string
}

// Run replays sc on a fresh document. On failure the report holds the
// steps that succeeded.
func Run(sc *Scenario, env Env) (*Report, error) {
	log := logging.NullLogger()
	if env.Options.Logger != nil {
		log = env.Options.Logger.WithComponent("scenario")
	}

	doc := model.NewDocument()
	root := doc.CreateRoot(sc.Root, "$root")
	ctrl, err := editing.NewController(doc, env.Options)
	if err != nil {
		return nil, err
	}
	pipe, err := editing.NewDataPipeline(env.Options)
	if err != nil {
		return nil, err
	}
	if env.Setup != nil {
		down := conversion.Downcast(ctrl.Downcast(), pipe.Downcast())
		if err := env.Setup(down, conversion.Upcast(pipe.Upcast())); err != nil {
			return nil, fmt.Errorf("setup: %w", err)
		}
	}
	vroot, err := ctrl.AttachRoot(sc.Root, sc.Element)
	if err != nil {
		return nil, err
	}

	rep := &Report{}
	render := func() string {
		return markup.StringifySelection(vroot, ctrl.View().Selection(), markup.Options{})
	}

	if sc.Content != "" {
		frag, err := pipe.Parse(sc.Content)
		if err != nil {
			return rep, fmt.Errorf("content: %w", err)
		}
		nodes := copyNodes(frag.Children())
		if err := doc.Change(func(w *model.Writer) error {
			return w.Insert(model.PositionAt(root, 0), nodes...)
		}); err != nil {
			return rep, fmt.Errorf("content: %w", err)
		}
	}
	rep.Initial = render()

	for i, st := range sc.Steps {
		slog := log.WithFields(map[string]any{"step": i + 1, "op": st.Op})
		if err := doc.Change(func(w *model.Writer) error { return st.Apply(w, root) }); err != nil {
			slog.Error("step failed: %v", err)
			return rep, fmt.Errorf("step %d (%s): %w", i+1, st.Op, err)
		}
		res := StepResult{Index: i + 1, Op: st.Op, View: render(), Model: model.StringifyChildren(root)}
		slog.Debug("view %s", res.View)
		rep.Steps = append(rep.Steps, res)
	}

	if rep.Data, err = pipe.Stringify(root, doc.Markers()); err != nil {
		return rep, fmt.Errorf("data: %w", err)
	}
	return rep, nil
}

// copyNodes returns detached copies of nodes.
func copyNodes(nodes []model.Node) []model.Node {
	out := make([]model.Node, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case *model.Text:
			out = append(out, model.NewText(v.Data(), v.Attributes()))
		case *model.Element:
			out = append(out, model.NewElement(v.Name(), v.Attributes(), copyNodes(v.Children())...))
		}
	}
	return out
}

// Changed reports whether step i altered the view compared to the state
// before it.
func (r *Report) Changed(i int) bool {
	prev := r.Initial
	if i > 0 {
		prev = r.Steps[i-1].View
	}
	return r.Steps[i].View != prev
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	out := []byte(`{}`)
	var err error
	set := func(path string, v any) {
		if err == nil {
			out, err = sjson.SetBytes(out, path, v)
		}
	}
	set("initial", r.Initial)
	set("steps", []any{})
	for i, st := range r.Steps {
		prefix := fmt.Sprintf("steps.%d.", i)
		set(prefix+"index", st.Index)
		set(prefix+"op", st.Op)
		set(prefix+"view", st.View)
		set(prefix+"model", st.Model)
		set(prefix+"changed", r.Changed(i))
	}
	set("data", r.Data)
	if err != nil {
		return nil, err
	}
	return pretty.Pretty(out), nil
}
