// Package topic provides hierarchical event names for the conversion
// dispatchers.
//
// # Topic Format
//
// Topics use colon notation. The first segment is the category and the
// remaining segments discriminate the item being converted:
//
//	insert:$text
//	insert:paragraph
//	addAttribute:bold:$text
//	addMarker:comment:42
//
// # Matching
//
// A handler registered on a topic receives every event whose name has that
// topic as a segment prefix. A handler on "addMarker:comment" therefore sees
// "addMarker:comment:42", and a handler on "insert" sees "insert:$text".
// Ancestors returns the chain used for that lookup, most specific first.
package topic
