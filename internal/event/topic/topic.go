package topic

import "strings"

// Topic represents a hierarchical event name using colon notation.
// The first segment is the category, the rest are discriminators.
// Examples: "insert:$text", "addAttribute:bold:$text", "addMarker:comment:42"
type Topic string

// Separator is the character used to separate topic segments.
const Separator = ":"

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Segments returns the topic split by the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// SegmentCount returns the number of segments in the topic.
func (t Topic) SegmentCount() int {
	if t == "" {
		return 0
	}
	return strings.Count(string(t), Separator) + 1
}

// Category returns the first segment of the topic.
//
// Example: "addAttribute:bold:$text" -> "addAttribute"
func (t Topic) Category() string {
	s := string(t)
	idx := strings.Index(s, Separator)
	if idx < 0 {
		return s
	}
	return s[:idx]
}

// Parent returns the parent topic by removing the last segment.
// Returns an empty topic if there is no parent.
//
// Example: "addMarker:comment:42" -> "addMarker:comment"
func (t Topic) Parent() Topic {
	s := string(t)
	idx := strings.LastIndex(s, Separator)
	if idx < 0 {
		return ""
	}
	return Topic(s[:idx])
}

// Ancestors returns the topic followed by each of its parents, most specific
// first.
//
// Example: "insert:$text" -> ["insert:$text", "insert"]
func (t Topic) Ancestors() []Topic {
	if t == "" {
		return nil
	}
	out := make([]Topic, 0, t.SegmentCount())
	for cur := t; cur != ""; cur = cur.Parent() {
		out = append(out, cur)
	}
	return out
}

// HasPrefix returns true if the topic starts with the given prefix on a
// segment boundary.
func (t Topic) HasPrefix(prefix Topic) bool {
	if prefix == "" {
		return true
	}
	s := string(t)
	p := string(prefix)
	if !strings.HasPrefix(s, p) {
		return false
	}
	if len(s) == len(p) {
		return true
	}
	return s[len(p):len(p)+1] == Separator
}

// IsValid returns true if the topic is valid.
// A valid topic:
//   - Is not empty
//   - Does not start or end with a separator
//   - Does not contain empty segments
func (t Topic) IsValid() bool {
	s := string(t)
	if s == "" {
		return false
	}
	for _, seg := range t.Segments() {
		if seg == "" {
			return false
		}
	}
	return true
}
