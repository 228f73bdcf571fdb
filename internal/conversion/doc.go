// Package conversion keeps a view tree in sync with the model.
//
// Downcasting turns model changes into view mutations: the
// DowncastDispatcher fires one event per changed item and converters,
// usually registered through DowncastHelpers, build the view with a
// view.Writer. Upcasting goes the other way for loaded data, producing a
// detached model fragment from a view tree.
//
// Converters coordinate through consumables: every item of a change is
// registered for the events it will receive, and the first converter that
// consumes an entry owns it for the rest of the pass. The Mapper binds
// model elements to view elements and translates positions between the
// two trees.
package conversion
