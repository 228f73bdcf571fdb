package event

import "strings"

// Priority determines handler execution order.
// Lower values execute first.
type Priority int

const (
	// PriorityHighest is for converters that must override everything else.
	PriorityHighest Priority = 0

	// PriorityHigh is for feature converters that replace the defaults.
	PriorityHigh Priority = 100

	// PriorityNormal is the default priority for converters.
	PriorityNormal Priority = 200

	// PriorityLow is for built-in fallbacks.
	PriorityLow Priority = 300

	// PriorityLowest is for catch-all converters that run last.
	PriorityLowest Priority = 400
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch {
	case p <= PriorityHighest:
		return "highest"
	case p <= PriorityHigh:
		return "high"
	case p <= PriorityNormal:
		return "normal"
	case p <= PriorityLow:
		return "low"
	default:
		return "lowest"
	}
}

// ParsePriority parses a tier label into a Priority.
// Unknown labels map to PriorityNormal.
func ParsePriority(s string) Priority {
	switch strings.ToLower(s) {
	case "highest":
		return PriorityHighest
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	case "lowest":
		return PriorityLowest
	default:
		return PriorityNormal
	}
}

// Info is passed to every handler invoked for one fired event.
// A handler calls Stop to keep lower-priority handlers from running.
type Info struct {
	// Name is the full event name that was fired.
	Name string

	// Source is the registered topic of the handler currently running.
	Source string

	stopped bool
}

// Stop prevents the remaining handlers for this event from running.
// It does not undo anything done so far.
func (i *Info) Stop() {
	i.stopped = true
}

// Stopped reports whether Stop was called.
func (i *Info) Stopped() bool {
	return i.stopped
}
