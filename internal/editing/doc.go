// Package editing ties the model, the view and the conversion dispatchers
// together.
//
// A Controller owns the editing view: it listens to model changes, converts
// them as they happen and converts the selection once per change block.
// View selections travel the other way through ConvertViewSelection.
//
// A DataPipeline converts whole roots to detached view fragments and back,
// with its own mapper so that loading or saving data never disturbs the
// editing view.
package editing
