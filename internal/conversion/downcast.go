package conversion

import (
	"errors"
	"fmt"

	"github.com/dshills/twintree/internal/event"
	"github.com/dshills/twintree/internal/event/topic"
	"github.com/dshills/twintree/internal/logging"
	"github.com/dshills/twintree/internal/model"
	"github.com/dshills/twintree/internal/view"
	"github.com/google/uuid"
)

// DowncastData describes what one model-to-view event is about. Which
// fields are set depends on the event category.
type DowncastData struct {
	// Item is the converted model item: a model.Item, the *model.Selection
	// for selection events or a MarkerItem for whole-marker events.
	Item any

	// Range is the model range of Item.
	Range model.Range

	// SourcePosition is where removed or moved content is in the view, in
	// model coordinates. Length is how many offsets it spans.
	SourcePosition model.Position
	Length         int

	// Target is the move destination, in the same coordinates as
	// SourcePosition.
	Target model.Position

	// Key, OldValue and NewValue describe attribute events. A nil value
	// means "not set".
	Key      string
	OldValue any
	NewValue any

	MarkerName  string
	MarkerRange model.Range

	// Selection is set for selection events.
	Selection *model.Selection
}

// DowncastAPI is the per-pass context handed to converters.
type DowncastAPI struct {
	Dispatcher *DowncastDispatcher
	Mapper     *Mapper
	Writer     *view.Writer
	Consumable *Consumable
	PassID     string
	Logger     *logging.Logger
}

// DowncastConverter handles one downcast event. Returning an error aborts
// the conversion of the current item only.
type DowncastConverter func(evt *event.Info, data *DowncastData, api *DowncastAPI) error

// DowncastDispatcher converts model changes into view mutations by firing
// events that converters subscribe to.
//
// Event names:
//
//	insert:<name>                       per inserted item ($text for text)
//	remove:<name>                       per removed item
//	move:<name>                         per moved item
//	addAttribute:<key>:<name>           also removeAttribute and changeAttribute
//	addMarker:<marker name>             once for the marker, then per item
//	removeMarker:<marker name>
//	selection:range, selection:collapsed
//	clearFakeSelection
//
// A converter registered on a prefix receives every event below it.
type DowncastDispatcher struct {
	registry *event.Registry[DowncastConverter]
	mapper   *Mapper
	writer   *view.Writer
	opts     Options
	log      *logging.Logger
	running  bool
}

// NewDowncastDispatcher creates a dispatcher writing through w and mapping
// positions with m.
func NewDowncastDispatcher(m *Mapper, w *view.Writer, opts Options) *DowncastDispatcher {
	return &DowncastDispatcher{
		registry: event.NewRegistry[DowncastConverter](),
		mapper:   m,
		writer:   w,
		opts:     opts,
		log:      opts.logger("downcast"),
	}
}

// On registers a converter for an event name or prefix.
func (d *DowncastDispatcher) On(name string, fn DowncastConverter, opts ...event.ListenerOption) (*event.Listener[DowncastConverter], error) {
	return d.registry.On(topic.Topic(name), fn, opts...)
}

// Off removes a converter.
func (d *DowncastDispatcher) Off(l *event.Listener[DowncastConverter]) error {
	return d.registry.Off(l)
}

// Has reports whether any converter would run for the event name.
func (d *DowncastDispatcher) Has(name string) bool {
	return d.registry.Has(topic.Topic(name))
}

// Mapper returns the dispatcher's mapper.
func (d *DowncastDispatcher) Mapper() *Mapper { return d.mapper }

// Writer returns the view writer used by converters.
func (d *DowncastDispatcher) Writer() *view.Writer { return d.writer }

type downcastPass struct {
	d    *DowncastDispatcher
	api  *DowncastAPI
	errs []error
}

func (d *DowncastDispatcher) begin(what string) (*downcastPass, error) {
	if d.running {
		return nil, ErrReentrantConversion
	}
	d.running = true
	id := uuid.NewString()
	log := d.log.WithField("pass", id)
	log.Debug("converting %s", what)
	return &downcastPass{
		d: d,
		api: &DowncastAPI{
			Dispatcher: d,
			Mapper:     d.mapper,
			Writer:     d.writer,
			Consumable: NewConsumable(),
			PassID:     id,
			Logger:     log,
		},
	}, nil
}

func (p *downcastPass) end() error {
	p.d.running = false
	if !p.d.opts.Strict {
		return nil
	}
	return errors.Join(p.errs...)
}

func (p *downcastPass) contract(name string, item any, reason string) {
	err := &ContractError{Event: name, Item: describeItem(item), Reason: reason}
	if p.d.opts.Strict {
		p.api.Logger.Error("%v", err)
	} else {
		p.api.Logger.Warn("%v", err)
	}
	p.errs = append(p.errs, err)
}

// fire runs the converters for name. When item is set its consumable entry
// must exist; consumed entries are skipped.
func (p *downcastPass) fire(name string, data *DowncastData, item any) {
	if item != nil {
		switch p.api.Consumable.Test(item, name) {
		case Absent:
			p.contract(name, item, "no consumable entry")
			return
		case Consumed:
			return
		}
	}
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
			break
		}
	}
	if item != nil && p.api.Consumable.Test(item, name) == Available && p.api.Logger.IsDebug() {
		p.api.Logger.Debug("%s not converted for %s", name, describeItem(item))
	}
}

// ConvertChange converts one model change.
func (d *DowncastDispatcher) ConvertChange(c model.Change) error {
	p, err := d.begin(c.Type.String())
	if err != nil {
		return err
	}
	if d.mapper.BindingCount() == 0 {
		p.contract(c.Type.String(), nil, "mapper has no bindings")
		return p.end()
	}
	switch c.Type {
	case model.ChangeInsert:
		if !inGraveyard(c.Range.Start) {
			p.insert(c.Range)
		}
	case model.ChangeRemove:
		if !inGraveyard(c.SourcePosition) {
			p.remove(c.SourcePosition, c.Range)
		}
	case model.ChangeMove:
		p.move(c)
	case model.ChangeRename:
		if !model.IsRemoved(c.Element) {
			p.rename(c.Element, c.OldName)
		}
	case model.ChangeAddAttribute, model.ChangeRemoveAttribute, model.ChangeChangeAttribute:
		if !inGraveyard(c.Range.Start) {
			p.attribute(c)
		}
	case model.ChangeAddMarker:
		if !inGraveyard(c.MarkerRange.Start) {
			p.markerAdd(c.MarkerName, c.MarkerRange, c.MarkerRange)
		}
	case model.ChangeRemoveMarker:
		if !inGraveyard(c.MarkerRange.Start) {
			p.markerRemove(c.MarkerName, c.MarkerRange)
		}
	}
	return p.end()
}

// ConvertInsert converts the content of r as freshly inserted. It is used
// for full conversions where the view starts out empty.
func (d *DowncastDispatcher) ConvertInsert(r model.Range) error {
	p, err := d.begin("insert")
	if err != nil {
		return err
	}
	p.insert(r)
	return p.end()
}

// ConvertMarkerAdd converts a marker over r.
func (d *DowncastDispatcher) ConvertMarkerAdd(name string, r model.Range) error {
	p, err := d.begin("addMarker")
	if err != nil {
		return err
	}
	p.markerAdd(name, r, r)
	return p.end()
}

// ConvertMarkerRemove removes the view representation of a marker over r.
func (d *DowncastDispatcher) ConvertMarkerRemove(name string, r model.Range) error {
	p, err := d.begin("removeMarker")
	if err != nil {
		return err
	}
	p.markerRemove(name, r)
	return p.end()
}

func inGraveyard(p model.Position) bool {
	root := p.Root()
	return root != nil && root.RootName() == model.GraveyardName
}

func (p *downcastPass) insert(r model.Range) {
	var items []model.Item
	walker := r.Walker(model.IgnoreElementEnd())
	for v, ok := walker.Next(); ok; v, ok = walker.Next() {
		items = append(items, v.Item)
	}

	c := p.api.Consumable
	for _, item := range items {
		c.Add(item, "insert")
		for _, key := range item.AttributeKeys() {
			c.Add(item, "addAttribute:"+key)
		}
	}

	for _, item := range items {
		rng := model.RangeOn(item)
		p.fire("insert:"+item.Name(), &DowncastData{Item: item, Range: rng}, item)
		for _, key := range item.AttributeKeys() {
			value, _ := item.Attribute(key)
			p.fire("addAttribute:"+key+":"+item.Name(), &DowncastData{
				Item:     item,
				Range:    rng,
				Key:      key,
				NewValue: value,
			}, item)
		}
	}
	p.insertIntoMarkers(r)
}

// insertIntoMarkers converts the markers that grew over inserted content.
func (p *downcastPass) insertIntoMarkers(r model.Range) {
	root := r.Root()
	if root == nil || root.Document() == nil {
		return
	}
	for _, m := range root.Document().Markers().All() {
		mr := m.Range()
		if mr.IsCollapsed() || mr.Root() != root || !mr.ContainsRange(r, true) {
			continue
		}
		p.markerAdd(m.Name(), mr, r)
	}
}

func (p *downcastPass) remove(source model.Position, graveyardRange model.Range) {
	for _, item := range graveyardRange.Items(true) {
		p.api.Consumable.Add(item, "remove")
		p.fire("remove:"+item.Name(), &DowncastData{
			Item:           item,
			SourcePosition: source,
			Length:         item.OffsetSize(),
		}, item)
	}
}

// move converts a move item by item. The view still shows the content at
// its source, so positions are computed as the view sees them after each
// earlier item was moved.
func (p *downcastPass) move(c model.Change) {
	fromGraveyard := inGraveyard(c.SourcePosition)
	toGraveyard := inGraveyard(c.Range.Start)
	switch {
	case fromGraveyard && toGraveyard:
		return
	case fromGraveyard:
		p.insert(c.Range)
		return
	case toGraveyard:
		p.remove(c.SourcePosition, c.Range)
		return
	}

	sourceParent := c.SourcePosition.Parent()
	targetParent := c.Range.Start.Parent()
	from := c.SourcePosition.Offset()
	post := c.Range.Start.Offset()
	howMany := c.Range.End.Offset() - post
	sameParent := sourceParent == targetParent
	after := sameParent && post >= from
	target := post
	if after {
		target = post + howMany
	}

	done := 0
	for _, item := range c.Range.Items(true) {
		data := &DowncastData{Item: item, Range: model.RangeOn(item), Length: item.OffsetSize()}
		switch {
		case after:
			data.SourcePosition = model.PositionAt(sourceParent, from)
			data.Target = model.PositionAt(targetParent, target)
		case sameParent:
			data.SourcePosition = model.PositionAt(sourceParent, from+done)
			data.Target = model.PositionAt(targetParent, target+done)
		default:
			data.SourcePosition = model.PositionAt(sourceParent, from)
			data.Target = model.PositionAt(targetParent, target+done)
		}
		p.api.Consumable.Add(item, "move")
		p.fire("move:"+item.Name(), data, item)
		done += item.OffsetSize()
	}
}

// rename converts as a removal of the element under its old name followed
// by an insertion of the renamed element.
func (p *downcastPass) rename(e *model.Element, oldName string) {
	p.api.Consumable.Add(e, "remove")
	p.fire("remove:"+oldName, &DowncastData{
		Item:           e,
		SourcePosition: model.PositionBefore(e),
		Length:         1,
	}, e)
	p.insert(model.RangeOn(e))
}

func (p *downcastPass) attribute(c model.Change) {
	kind := c.Type.String() + ":" + c.Key
	items := c.Range.Items(true)
	for _, item := range items {
		p.api.Consumable.Add(item, kind)
	}
	for _, item := range items {
		p.fire(kind+":"+item.Name(), &DowncastData{
			Item:     item,
			Range:    model.RangeOn(item),
			Key:      c.Key,
			OldValue: c.OldValue,
			NewValue: c.NewValue,
		}, item)
	}
}

// markerAdd fires addMarker once for the whole marker (when r is the marker
// range itself) and then once per item of r.
func (p *downcastPass) markerAdd(name string, markerRange, r model.Range) {
	kind := "addMarker:" + name
	c := p.api.Consumable
	whole := MarkerItem(name)

	if markerRange.IsCollapsed() {
		c.Add(whole, kind)
		p.fire(kind, &DowncastData{Item: whole, MarkerName: name, MarkerRange: markerRange}, whole)
		return
	}
	if r.IsEqual(markerRange) {
		c.Add(whole, kind)
		p.fire(kind, &DowncastData{Item: whole, MarkerName: name, MarkerRange: markerRange}, whole)
	}

	var items []model.Item
	walker := r.Walker(model.IgnoreElementEnd())
	for v, ok := walker.Next(); ok; v, ok = walker.Next() {
		items = append(items, v.Item)
	}
	for _, item := range items {
		c.Add(item, kind)
	}
	for _, item := range items {
		p.fire(kind, &DowncastData{
			Item:        item,
			Range:       model.RangeOn(item),
			MarkerName:  name,
			MarkerRange: markerRange,
		}, item)
	}
}

func (p *downcastPass) markerRemove(name string, markerRange model.Range) {
	p.fire("removeMarker:"+name, &DowncastData{MarkerName: name, MarkerRange: markerRange}, nil)
}

// ConvertSelection converts the model selection. Markers containing a
// collapsed selection and the selection attributes are converted at the
// caret. The fake selection flag is cleared unless a converter consumed the
// "fakeSelection" entry.
func (d *DowncastDispatcher) ConvertSelection(sel *model.Selection, markers *model.MarkerCollection) error {
	p, err := d.begin("selection")
	if err != nil {
		return err
	}
	c := p.api.Consumable
	c.Add(sel, "selection")
	c.Add(sel, "fakeSelection")

	collapsed := sel.RangeCount() > 0 && sel.IsCollapsed()
	var caretMarkers []*model.Marker
	if collapsed {
		pos, _ := sel.Anchor()
		if markers != nil {
			for _, m := range markers.AtPosition(pos) {
				if m.Range().ContainsPosition(pos) {
					caretMarkers = append(caretMarkers, m)
					c.Add(sel, "addMarker:"+m.Name())
				}
			}
		}
		for _, key := range sel.AttributeKeys() {
			c.Add(sel, "addAttribute:"+key)
		}
	}

	name := "selection:range"
	if collapsed {
		name = "selection:collapsed"
	}
	p.fire(name, &DowncastData{Item: sel, Selection: sel}, sel)

	if collapsed {
		for _, m := range caretMarkers {
			p.fire("addMarker:"+m.Name(), &DowncastData{
				Item:        sel,
				Selection:   sel,
				MarkerName:  m.Name(),
				MarkerRange: m.Range(),
			}, sel)
		}
		for _, key := range sel.AttributeKeys() {
			value, _ := sel.Attribute(key)
			p.fire("addAttribute:"+key+":"+model.TextName, &DowncastData{
				Item:      sel,
				Selection: sel,
				Key:       key,
				NewValue:  value,
			}, sel)
		}
	}

	if c.Test(sel, "fakeSelection") == Available {
		p.fire("clearFakeSelection", &DowncastData{Item: sel, Selection: sel}, nil)
	}
	return p.end()
}

func describeItem(item any) string {
	switch v := item.(type) {
	case nil:
		return "<none>"
	case *model.TextProxy:
		return fmt.Sprintf("%q", v.Data())
	case *model.Element:
		return "<" + v.Name() + ">"
	case *model.Selection:
		return "selection"
	case MarkerItem:
		return "marker " + string(v)
	}
	return fmt.Sprintf("%T", item)
}
