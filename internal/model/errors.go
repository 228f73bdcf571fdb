package model

import "errors"

var (
	// ErrInvalidPosition is returned when a position does not resolve to a
	// valid place in the tree.
	ErrInvalidPosition = errors.New("invalid model position")

	// ErrInvalidRange is returned for ranges an operation cannot accept.
	ErrInvalidRange = errors.New("invalid model range")

	// ErrUnknownMarker is returned when updating or removing a marker that
	// does not exist.
	ErrUnknownMarker = errors.New("unknown marker")

	// ErrMarkerExists is returned when adding a marker under a taken name.
	ErrMarkerExists = errors.New("marker already exists")

	// ErrNotInChange is returned when a writer is used after its change block
	// has finished.
	ErrNotInChange = errors.New("writer used outside of a change block")

	// ErrAttachedNode is returned when inserting a node that already has a
	// parent.
	ErrAttachedNode = errors.New("node is already attached")
)
