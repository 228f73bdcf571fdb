package event

import (
	"errors"
	"testing"

	"github.com/dshills/twintree/internal/event/topic"
)

type testHandler func(*Info)

func names(ls []*Listener[testHandler]) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, string(l.Topic())+"@"+l.Priority().String())
	}
	return out
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry[testHandler]()

	if r == nil {
		t.Fatal("expected non-nil registry")
	}
	if r.Count() != 0 {
		t.Errorf("expected count 0, got %d", r.Count())
	}
}

func TestRegistry_On_Invalid(t *testing.T) {
	r := NewRegistry[testHandler]()

	if _, err := r.On("", func(*Info) {}); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("On(\"\") error = %v, want ErrInvalidTopic", err)
	}
	if _, err := r.On("insert", nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("On(nil) error = %v, want ErrNilHandler", err)
	}
}

func TestRegistry_Match_PriorityOrder(t *testing.T) {
	r := NewRegistry[testHandler]()

	var order []string
	add := func(tp topic.Topic, name string, p Priority) {
		if _, err := r.On(tp, func(*Info) { order = append(order, name) }, WithPriority(p)); err != nil {
			t.Fatalf("On() error = %v", err)
		}
	}

	add("insert:$text", "low", PriorityLow)
	add("insert:$text", "high", PriorityHigh)
	add("insert:$text", "normal", PriorityNormal)
	add("insert:$text", "highest", PriorityHighest)

	for _, l := range r.Match("insert:$text") {
		l.Handler()(&Info{})
	}

	want := []string{"highest", "high", "normal", "low"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestRegistry_Match_Hierarchy(t *testing.T) {
	r := NewRegistry[testHandler]()
	noop := func(*Info) {}

	r.On("addMarker", noop)
	r.On("addMarker:comment", noop)
	r.On("addMarker:comment:1", noop)
	r.On("addMarker:search", noop)

	got := names(r.Match("addMarker:comment:1"))
	want := []string{"addMarker:comment:1@normal", "addMarker:comment@normal", "addMarker@normal"}
	if len(got) != len(want) {
		t.Fatalf("Match() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Match()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if n := len(r.Match("addMarker:other")); n != 1 {
		t.Errorf("Match(addMarker:other) returned %d listeners, want 1", n)
	}
	if r.Has("removeMarker:comment") {
		t.Error("Has(removeMarker:comment) = true, want false")
	}
}

func TestRegistry_Match_PriorityBeatsSpecificity(t *testing.T) {
	r := NewRegistry[testHandler]()
	noop := func(*Info) {}

	r.On("insert:$text", noop, WithPriority(PriorityLow))
	r.On("insert", noop, WithPriority(PriorityHigh))

	got := names(r.Match("insert:$text"))
	if got[0] != "insert@high" {
		t.Errorf("first listener = %q, want insert@high", got[0])
	}
}

func TestRegistry_Match_RegistrationOrderTieBreak(t *testing.T) {
	r := NewRegistry[testHandler]()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		r.On("remove", func(*Info) { order = append(order, i) })
	}
	for _, l := range r.Match("remove:paragraph") {
		l.Handler()(&Info{})
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want registration order", order)
		}
	}
}

func TestRegistry_Off(t *testing.T) {
	r := NewRegistry[testHandler]()
	noop := func(*Info) {}

	l, _ := r.On("insert", noop)
	r.On("insert", noop)

	if len(r.Match("insert:x")) != 2 {
		t.Fatal("expected 2 listeners before Off")
	}
	if err := r.Off(l); err != nil {
		t.Fatalf("Off() error = %v", err)
	}
	if len(r.Match("insert:x")) != 1 {
		t.Error("cache was not invalidated by Off")
	}
	if err := r.Off(l); !errors.Is(err, ErrListenerNotFound) {
		t.Errorf("second Off() error = %v, want ErrListenerNotFound", err)
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry[testHandler]()
	r.On("insert", func(*Info) {})
	r.On("remove", func(*Info) {})

	if got := r.Topics(); len(got) != 2 || got[0] != "insert" {
		t.Errorf("Topics() = %v", got)
	}

	r.Clear()
	if r.Count() != 0 || r.Has("insert") {
		t.Error("Clear() left listeners behind")
	}
}

func TestInfo_Stop(t *testing.T) {
	info := &Info{Name: "insert:$text"}
	if info.Stopped() {
		t.Fatal("new Info should not be stopped")
	}
	info.Stop()
	if !info.Stopped() {
		t.Error("Stop() did not mark the info stopped")
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in   string
		want Priority
	}{
		{"highest", PriorityHighest},
		{"HIGH", PriorityHigh},
		{"normal", PriorityNormal},
		{"low", PriorityLow},
		{"lowest", PriorityLowest},
		{"bogus", PriorityNormal},
	}
	for _, tt := range tests {
		if got := ParsePriority(tt.in); got != tt.want {
			t.Errorf("ParsePriority(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if (PriorityNormal - 1).String() != "normal" {
		t.Error("custom priorities between tiers should report the enclosing tier")
	}
}
