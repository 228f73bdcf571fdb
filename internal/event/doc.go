// Package event provides the ordered handler registry used by the
// conversion dispatchers.
//
// Handlers are registered on hierarchical topics (see package topic) with a
// priority tier. When an event is fired the registry resolves every handler
// registered on the event name or one of its ancestors and orders them:
//
//  1. priority, lower values first (PriorityHighest ... PriorityLowest)
//  2. specificity, longer topics first
//  3. registration order
//
// A handler receives an *Info and may call Stop on it to keep the remaining
// handlers from running. Stopping never rolls back what earlier handlers did.
//
// The registry is generic over the handler type so the model-to-view and
// view-to-model dispatchers can share it with their own callback signatures.
package event
