// Package view is the presentation tree of the editing engine.
//
// A view tree is built from container, attribute, empty, UI and root
// elements plus text nodes. Attribute elements are inline wrappers with a
// priority: when several wrap the same content, the higher priority one
// nests further out, and on a tie the element that was there first stays
// outside. Similar adjacent attribute elements are always merged, so the
// tree stays canonical no matter in which order formatting was applied.
//
// All structural changes go through a Writer.
package view
