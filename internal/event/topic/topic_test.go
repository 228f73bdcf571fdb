package topic

import (
	"testing"
)

func TestTopic_Segments(t *testing.T) {
	tests := []struct {
		topic    Topic
		expected []string
	}{
		{Topic("addAttribute:bold:$text"), []string{"addAttribute", "bold", "$text"}},
		{Topic("insert:paragraph"), []string{"insert", "paragraph"}},
		{Topic("selection"), []string{"selection"}},
		{Topic(""), nil},
	}

	for _, tt := range tests {
		t.Run(tt.topic.String(), func(t *testing.T) {
			got := tt.topic.Segments()
			if len(got) != len(tt.expected) {
				t.Fatalf("Topic.Segments() = %v, want %v", got, tt.expected)
			}
			for i, seg := range got {
				if seg != tt.expected[i] {
					t.Errorf("Topic.Segments()[%d] = %v, want %v", i, seg, tt.expected[i])
				}
			}
			if n := tt.topic.SegmentCount(); n != len(tt.expected) {
				t.Errorf("Topic.SegmentCount() = %d, want %d", n, len(tt.expected))
			}
		})
	}
}

func TestTopic_Category(t *testing.T) {
	tests := []struct {
		topic Topic
		cat   string
	}{
		{"addAttribute:bold:$text", "addAttribute"},
		{"insert:$text", "insert"},
		{"selection", "selection"},
	}

	for _, tt := range tests {
		if got := tt.topic.Category(); got != tt.cat {
			t.Errorf("%q.Category() = %q, want %q", tt.topic, got, tt.cat)
		}
	}
}

func TestTopic_Parent(t *testing.T) {
	tests := []struct {
		topic    Topic
		expected Topic
	}{
		{"addMarker:comment:42", "addMarker:comment"},
		{"addMarker:comment", "addMarker"},
		{"addMarker", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := tt.topic.Parent(); got != tt.expected {
			t.Errorf("%q.Parent() = %q, want %q", tt.topic, got, tt.expected)
		}
	}
}

func TestTopic_Ancestors(t *testing.T) {
	got := Topic("addAttribute:bold:$text").Ancestors()
	want := []Topic{"addAttribute:bold:$text", "addAttribute:bold", "addAttribute"}
	if len(got) != len(want) {
		t.Fatalf("Ancestors() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Ancestors()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if Topic("").Ancestors() != nil {
		t.Error("empty topic should have no ancestors")
	}
}

func TestTopic_HasPrefix(t *testing.T) {
	tests := []struct {
		topic    Topic
		prefix   Topic
		expected bool
	}{
		{"addMarker:comment:1", "addMarker:comment", true},
		{"addMarker:comment", "addMarker:comment", true},
		{"addMarker:commentary", "addMarker:comment", false},
		{"insert:$text", "", true},
		{"insert", "insert:$text", false},
	}

	for _, tt := range tests {
		if got := tt.topic.HasPrefix(tt.prefix); got != tt.expected {
			t.Errorf("%q.HasPrefix(%q) = %v, want %v", tt.topic, tt.prefix, got, tt.expected)
		}
	}
}

func TestTopic_IsValid(t *testing.T) {
	tests := []struct {
		topic    Topic
		expected bool
	}{
		{"insert:$text", true},
		{"selection", true},
		{"", false},
		{":insert", false},
		{"insert:", false},
		{"insert::text", false},
	}

	for _, tt := range tests {
		if got := tt.topic.IsValid(); got != tt.expected {
			t.Errorf("%q.IsValid() = %v, want %v", tt.topic, got, tt.expected)
		}
	}
}
