package conversion

import (
	"errors"
	"unicode/utf8"

	"github.com/dshills/twintree/internal/event"
	"github.com/dshills/twintree/internal/event/topic"
	"github.com/dshills/twintree/internal/logging"
	"github.com/dshills/twintree/internal/model"
	"github.com/dshills/twintree/internal/view"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// UpcastData describes the view node being converted. A converter that
// produces model content sets ModelRange to the range it created, which is
// where conversion of the next sibling continues.
type UpcastData struct {
	ViewItem    view.Node
	ModelCursor model.Position
	ModelRange  model.Range
}

// Converted reports whether a converter already produced model content.
func (d *UpcastData) Converted() bool { return !d.ModelRange.Start.IsZero() }

// UpcastAPI is the per-pass context handed to upcast converters.
type UpcastAPI struct {
	Dispatcher *UpcastDispatcher
	Consumable *ViewConsumable
	Writer     *model.Writer
	PassID     string
	Logger     *logging.Logger

	pass *upcastPass
}

// ConvertItem converts n with the cursor at the given position and returns
// the model range it produced, collapsed at cursor when nothing was made.
func (api *UpcastAPI) ConvertItem(n view.Node, cursor model.Position) model.Range {
	data := &UpcastData{ViewItem: n, ModelCursor: cursor}
	api.pass.fire(upcastEventName(n), data)
	if !data.Converted() {
		return model.CollapsedRange(cursor)
	}
	return data.ModelRange
}

// ConvertChildren converts the children of e one after the other starting
// at cursor and returns the range covering everything they produced.
func (api *UpcastAPI) ConvertChildren(e *view.Element, cursor model.Position) model.Range {
	start := cursor
	for _, child := range e.Children() {
		r := api.ConvertItem(child, cursor)
		cursor = r.End
	}
	return model.NewRange(start, cursor)
}

// UpcastConverter handles one upcast event.
type UpcastConverter func(evt *event.Info, data *UpcastData, api *UpcastAPI) error

// UpcastDispatcher converts view trees into detached model fragments.
//
// Event names:
//
//	element:<view name>   per view element
//	text                  per view text node
//	documentFragment      for the converted fragment or root
type UpcastDispatcher struct {
	registry *event.Registry[UpcastConverter]
	opts     Options
	log      *logging.Logger
	running  bool
}

// NewUpcastDispatcher returns a dispatcher without converters.
func NewUpcastDispatcher(opts Options) *UpcastDispatcher {
	return &UpcastDispatcher{
		registry: event.NewRegistry[UpcastConverter](),
		opts:     opts,
		log:      opts.logger("upcast"),
	}
}

// On registers a converter for an event name or prefix.
func (d *UpcastDispatcher) On(name string, fn UpcastConverter, opts ...event.ListenerOption) (*event.Listener[UpcastConverter], error) {
	return d.registry.On(topic.Topic(name), fn, opts...)
}

// Off removes a converter.
func (d *UpcastDispatcher) Off(l *event.Listener[UpcastConverter]) error {
	return d.registry.Off(l)
}

type upcastPass struct {
	d    *UpcastDispatcher
	api  *UpcastAPI
	errs []error
}

func upcastEventName(n view.Node) string {
	e, ok := n.(*view.Element)
	if !ok {
		return "text"
	}
	if e.Is(view.KindFragment) || e.Is(view.KindRoot) {
		return "documentFragment"
	}
	return "element:" + e.Name()
}

// Convert converts n and everything below it into a new model fragment.
func (d *UpcastDispatcher) Convert(n view.Node) (*model.Element, error) {
	if d.running {
		return nil, ErrReentrantConversion
	}
	d.running = true
	defer func() { d.running = false }()

	id := uuid.NewString()
	log := d.log.WithField("pass", id)
	log.Debug("upcasting %s", upcastEventName(n))

	fragment := model.NewFragment()
	p := &upcastPass{d: d}
	err := model.NewDocument().Change(func(w *model.Writer) error {
		p.api = &UpcastAPI{
			Dispatcher: d,
			Consumable: CreateViewConsumable(n),
			Writer:     w,
			PassID:     id,
			Logger:     log,
			pass:       p,
		}
		p.api.ConvertItem(n, model.PositionAt(fragment, 0))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if d.opts.Strict && len(p.errs) > 0 {
		return fragment, errors.Join(p.errs...)
	}
	return fragment, nil
}

func (p *upcastPass) fire(name string, data *UpcastData) {
	info := &event.Info{Name: name}
	for _, l := range p.d.registry.Match(topic.Topic(name)) {
		info.Source = l.Topic().String()
		if err := l.Handler()(info, data, p.api); err != nil {
			cerr := &ConverterError{Event: name, Err: err}
			p.api.Logger.Error("%v", cerr)
			p.errs = append(p.errs, cerr)
			return
		}
		if info.Stopped() {
			return
		}
	}
}

// RegisterDefaultUpcast installs the lowest-priority converters: fragments
// and unknown elements convert their children in place and text becomes
// model text.
func RegisterDefaultUpcast(d *UpcastDispatcher) error {
	regs := []struct {
		name string
		fn   UpcastConverter
	}{
		{"documentFragment", convertChildrenInPlace},
		{"element", convertChildrenInPlace},
		{"text", convertText(d.opts.NormalizeText)},
	}
	for _, r := range regs {
		if _, err := d.On(r.name, r.fn, event.WithPriority(event.PriorityLowest)); err != nil {
			return err
		}
	}
	return nil
}

func convertChildrenInPlace(evt *event.Info, data *UpcastData, api *UpcastAPI) error {
	e, ok := data.ViewItem.(*view.Element)
	if !ok || !api.Consumable.Consume(e, Match{Name: true}) {
		return nil
	}
	data.ModelRange = api.ConvertChildren(e, data.ModelCursor)
	return nil
}

func convertText(normalize bool) UpcastConverter {
	return func(evt *event.Info, data *UpcastData, api *UpcastAPI) error {
		t, ok := data.ViewItem.(*view.Text)
		if !ok || !api.Consumable.Consume(t, Match{Name: true}) {
			return nil
		}
		text := t.Data()
		if normalize {
			text = norm.NFC.String(text)
		}
		if text == "" {
			return nil
		}
		if err := api.Writer.InsertText(text, nil, data.ModelCursor); err != nil {
			return err
		}
		data.ModelRange = model.NewRange(data.ModelCursor, data.ModelCursor.ShiftedBy(utf8.RuneCountInString(text)))
		return nil
	}
}
