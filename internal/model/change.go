package model

import "fmt"

// ChangeType identifies a model operation.
type ChangeType int

const (
	ChangeInsert ChangeType = iota
	ChangeMove
	ChangeRemove
	ChangeRename
	ChangeAddAttribute
	ChangeRemoveAttribute
	ChangeChangeAttribute
	ChangeAddMarker
	ChangeRemoveMarker
)

var changeTypeNames = map[ChangeType]string{
	ChangeInsert:          "insert",
	ChangeMove:            "move",
	ChangeRemove:          "remove",
	ChangeRename:          "rename",
	ChangeAddAttribute:    "addAttribute",
	ChangeRemoveAttribute: "removeAttribute",
	ChangeChangeAttribute: "changeAttribute",
	ChangeAddMarker:       "addMarker",
	ChangeRemoveMarker:    "removeMarker",
}

func (t ChangeType) String() string {
	if s, ok := changeTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("ChangeType(%d)", int(t))
}

// Change describes one applied model operation. Positions are expressed in
// the tree as it is after the operation.
//
//   - insert: Range covers the inserted content.
//   - move: SourcePosition is where the content was, Range where it is now.
//   - remove: SourcePosition is where the content was, Range covers it in
//     the graveyard.
//   - rename: Element was renamed from OldName, Range is on the element.
//   - attribute changes: Range is flat, all items in it had OldValue for Key.
//   - markers: MarkerName and MarkerRange.
type Change struct {
	Type           ChangeType
	Range          Range
	SourcePosition Position

	Element *Element
	OldName string

	Key      string
	OldValue any
	NewValue any

	MarkerName  string
	MarkerRange Range
}

func (c Change) String() string {
	switch c.Type {
	case ChangeMove, ChangeRemove:
		return fmt.Sprintf("%s %s -> %s", c.Type, c.SourcePosition, c.Range)
	case ChangeRename:
		return fmt.Sprintf("%s %s -> %s", c.Type, c.OldName, c.Element.Name())
	case ChangeAddAttribute, ChangeRemoveAttribute, ChangeChangeAttribute:
		return fmt.Sprintf("%s %s %v -> %v on %s", c.Type, c.Key, c.OldValue, c.NewValue, c.Range)
	case ChangeAddMarker, ChangeRemoveMarker:
		return fmt.Sprintf("%s %s %s", c.Type, c.MarkerName, c.MarkerRange)
	}
	return fmt.Sprintf("%s %s", c.Type, c.Range)
}
