package view

import "errors"

var (
	// ErrInvalidRangeContainer is returned when a range does not start and
	// end in the same container.
	ErrInvalidRangeContainer = errors.New("range must start and end in the same container")

	// ErrCannotBreakEmpty is returned when breaking inside an empty element.
	ErrCannotBreakEmpty = errors.New("cannot break inside an empty element")

	// ErrCannotBreakUI is returned when breaking inside a UI element.
	ErrCannotBreakUI = errors.New("cannot break inside a UI element")

	// ErrInvalidNode is returned when a node of the wrong kind is inserted.
	ErrInvalidNode = errors.New("node cannot be inserted here")

	// ErrNotAttributeElement is returned when wrapping with a non-attribute
	// element.
	ErrNotAttributeElement = errors.New("wrapper must be an attribute element")

	// ErrDetached is returned when an operation needs an attached node.
	ErrDetached = errors.New("node is not attached")
)

// ErrInvalidPosition is returned when a position has no container ancestor.
var ErrInvalidPosition = errors.New("position is not inside a container")
