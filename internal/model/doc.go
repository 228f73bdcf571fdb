// Package model implements the document model consumed by the conversion
// layer: a tree of elements and text nodes with attributes, positions
// addressed by offset paths, markers and a selection.
//
// The model is mutated only inside Document.Change. Every operation applied
// through the Writer is reported to change listeners as a Change descriptor
// with positions valid for the tree after the operation. Removed content is
// moved to the "$graveyard" root rather than discarded, so removal can still
// be described by a range.
package model
