package conversion

import (
	"github.com/dshills/twintree/internal/model"
	"github.com/dshills/twintree/internal/view"
)

// ViewToModelLength reports how many model offsets a view element stands
// for.
type ViewToModelLength func(e *view.Element) int

// Mapper binds model elements to view elements and converts positions
// between the two trees.
//
// Bindings are stored by stable node id in both directions, with the nodes
// themselves kept in id-keyed arenas, so detaching or re-attaching a node
// during wrapping never leaves a binding pointing at a stale handle.
type Mapper struct {
	modelNodes map[model.NodeID]*model.Element
	viewNodes  map[view.NodeID]*view.Element

	modelToView map[model.NodeID]view.NodeID
	viewToModel map[view.NodeID]model.NodeID

	lengths map[string]ViewToModelLength

	markerElements map[string][]*view.Element
}

// NewMapper returns a mapper without bindings.
func NewMapper() *Mapper {
	m := &Mapper{lengths: make(map[string]ViewToModelLength)}
	m.ClearBindings()
	return m
}

// BindElements binds a model element to a view element, replacing any
// earlier binding of either side.
func (m *Mapper) BindElements(me *model.Element, ve *view.Element) {
	if old, ok := m.modelToView[me.ID()]; ok {
		delete(m.viewToModel, old)
	}
	if old, ok := m.viewToModel[ve.ID()]; ok {
		delete(m.modelToView, old)
	}
	m.modelNodes[me.ID()] = me
	m.viewNodes[ve.ID()] = ve
	m.modelToView[me.ID()] = ve.ID()
	m.viewToModel[ve.ID()] = me.ID()
}

// UnbindViewElement removes the binding of ve. The model side loses its
// binding only when it still points at ve.
func (m *Mapper) UnbindViewElement(ve *view.Element) {
	mid, ok := m.viewToModel[ve.ID()]
	if !ok {
		return
	}
	delete(m.viewToModel, ve.ID())
	delete(m.viewNodes, ve.ID())
	if m.modelToView[mid] == ve.ID() {
		delete(m.modelToView, mid)
		delete(m.modelNodes, mid)
	}
}

// UnbindModelElement removes the binding of me.
func (m *Mapper) UnbindModelElement(me *model.Element) {
	vid, ok := m.modelToView[me.ID()]
	if !ok {
		return
	}
	delete(m.modelToView, me.ID())
	delete(m.modelNodes, me.ID())
	if m.viewToModel[vid] == me.ID() {
		delete(m.viewToModel, vid)
		delete(m.viewNodes, vid)
	}
}

// UnbindViewTree unbinds n and every element below it.
func (m *Mapper) UnbindViewTree(n view.Node) {
	e, ok := n.(*view.Element)
	if !ok {
		return
	}
	m.UnbindViewElement(e)
	for _, c := range e.Children() {
		m.UnbindViewTree(c)
	}
}

// ClearBindings drops every binding. Registered lengths are kept.
func (m *Mapper) ClearBindings() {
	m.modelNodes = make(map[model.NodeID]*model.Element)
	m.viewNodes = make(map[view.NodeID]*view.Element)
	m.modelToView = make(map[model.NodeID]view.NodeID)
	m.viewToModel = make(map[view.NodeID]model.NodeID)
	m.markerElements = make(map[string][]*view.Element)
}

// BindElementToMarker records that ve represents the marker name.
func (m *Mapper) BindElementToMarker(ve *view.Element, name string) {
	for _, e := range m.markerElements[name] {
		if e == ve {
			return
		}
	}
	m.markerElements[name] = append(m.markerElements[name], ve)
}

// UnbindElementFromMarker forgets that ve represents the marker name.
func (m *Mapper) UnbindElementFromMarker(ve *view.Element, name string) {
	list := m.markerElements[name]
	for i, e := range list {
		if e == ve {
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(m.markerElements, name)
		return
	}
	m.markerElements[name] = list
}

// MarkerElements returns the view elements bound to the marker name.
func (m *Mapper) MarkerElements(name string) []*view.Element {
	return append([]*view.Element(nil), m.markerElements[name]...)
}

// BindingCount returns the number of bound pairs.
func (m *Mapper) BindingCount() int { return len(m.modelToView) }

// ToViewElement returns the view element bound to me.
func (m *Mapper) ToViewElement(me *model.Element) (*view.Element, bool) {
	if me == nil {
		return nil, false
	}
	vid, ok := m.modelToView[me.ID()]
	if !ok {
		return nil, false
	}
	return m.viewNodes[vid], true
}

// ToModelElement returns the model element bound to ve.
func (m *Mapper) ToModelElement(ve *view.Element) (*model.Element, bool) {
	if ve == nil {
		return nil, false
	}
	mid, ok := m.viewToModel[ve.ID()]
	if !ok {
		return nil, false
	}
	return m.modelNodes[mid], true
}

// RegisterViewToModelLength makes view elements named name count as
// fn(element) model offsets.
func (m *Mapper) RegisterViewToModelLength(name string, fn ViewToModelLength) {
	m.lengths[name] = fn
}

// ModelLength returns how many model offsets n stands for: registered
// lengths first, then 1 for bound elements, the character count for text,
// 0 for UI elements and the sum of the children otherwise.
func (m *Mapper) ModelLength(n view.Node) int {
	switch v := n.(type) {
	case *view.Text:
		return v.Len()
	case *view.Element:
		if fn, ok := m.lengths[v.Name()]; ok {
			return fn(v)
		}
		if _, ok := m.viewToModel[v.ID()]; ok {
			return 1
		}
		if v.Is(view.KindUI) {
			return 0
		}
		n := 0
		for _, c := range v.Children() {
			n += m.ModelLength(c)
		}
		return n
	}
	return 0
}

// ToViewPosition maps a model position to the view. The model parent must
// be bound. The offset is resolved by walking the view children, so the
// view may lag behind the model (for example while a removal is being
// converted). A phantom position may point past the end of the model
// parent's current content.
func (m *Mapper) ToViewPosition(p model.Position, isPhantom bool) (view.Position, error) {
	parent := p.Parent()
	if parent == nil {
		return view.Position{}, model.ErrInvalidPosition
	}
	if !isPhantom && p.Offset() > parent.MaxOffset() {
		return view.Position{}, model.ErrInvalidPosition
	}
	ve, ok := m.ToViewElement(parent)
	if !ok {
		return view.Position{}, ErrNotMapped
	}
	return m.findPositionIn(ve, p.Offset()), nil
}

func (m *Mapper) findPositionIn(parent view.Node, expected int) view.Position {
	e, ok := parent.(*view.Element)
	if !ok {
		return view.PositionAt(parent, expected)
	}
	var node view.Node
	modelOffset, viewOffset, lastLength := 0, 0, 0
	for modelOffset < expected {
		node = e.Child(viewOffset)
		if node == nil {
			return view.PositionAtEnd(e)
		}
		lastLength = m.ModelLength(node)
		modelOffset += lastLength
		viewOffset++
	}
	if modelOffset == expected {
		return moveToTextNode(view.PositionAt(e, viewOffset))
	}
	return m.findPositionIn(node, expected-(modelOffset-lastLength))
}

// moveToTextNode moves an element position next to a text node into it.
func moveToTextNode(p view.Position) view.Position {
	if t, ok := p.NodeBefore().(*view.Text); ok {
		return view.PositionAt(t, t.Len())
	}
	if t, ok := p.NodeAfter().(*view.Text); ok {
		return view.PositionAt(t, 0)
	}
	return p
}

// ToModelPosition maps a view position to the model through the closest
// bound ancestor.
func (m *Mapper) ToModelPosition(p view.Position) (model.Position, error) {
	block, me := m.findMappedAncestor(p.Parent)
	if me == nil {
		return model.Position{}, ErrNotMapped
	}
	return model.PositionAt(me, m.toModelOffset(p.Parent, p.Offset, block)), nil
}

func (m *Mapper) findMappedAncestor(n view.Node) (*view.Element, *model.Element) {
	for cur := n; cur != nil; {
		if e, ok := cur.(*view.Element); ok {
			if me, ok := m.ToModelElement(e); ok {
				return e, me
			}
		}
		parent := cur.Parent()
		if parent == nil {
			return nil, nil
		}
		cur = parent
	}
	return nil, nil
}

func (m *Mapper) toModelOffset(parent view.Node, offset int, block *view.Element) int {
	n := m.offsetIn(parent, offset)
	if e, ok := parent.(*view.Element); ok && e == block {
		return n
	}
	grand := parent.Parent()
	if grand == nil {
		return n
	}
	return n + m.toModelOffset(grand, parent.Index(), block)
}

// offsetIn sums the model length of the children before offset. Inside
// text the offset is already a model offset.
func (m *Mapper) offsetIn(parent view.Node, offset int) int {
	e, ok := parent.(*view.Element)
	if !ok {
		return offset
	}
	n := 0
	for i := 0; i < offset; i++ {
		n += m.ModelLength(e.Child(i))
	}
	return n
}

// ToViewRange maps both ends of a model range.
func (m *Mapper) ToViewRange(r model.Range) (view.Range, error) {
	start, err := m.ToViewPosition(r.Start, false)
	if err != nil {
		return view.Range{}, err
	}
	end, err := m.ToViewPosition(r.End, false)
	if err != nil {
		return view.Range{}, err
	}
	return view.NewRange(start, end), nil
}

// ToModelRange maps both ends of a view range.
func (m *Mapper) ToModelRange(r view.Range) (model.Range, error) {
	start, err := m.ToModelPosition(r.Start)
	if err != nil {
		return model.Range{}, err
	}
	end, err := m.ToModelPosition(r.End)
	if err != nil {
		return model.Range{}, err
	}
	return model.NewRange(start, end), nil
}
