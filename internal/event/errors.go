package event

import "errors"

// Sentinel errors for the handler registry.
var (
	// ErrInvalidTopic is returned when a topic is empty or malformed.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrListenerNotFound is returned when removing a listener that is not registered.
	ErrListenerNotFound = errors.New("listener not found")
)
