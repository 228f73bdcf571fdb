package conversion

import (
	"sort"
	"strings"

	"github.com/dshills/twintree/internal/event/topic"
	"github.com/dshills/twintree/internal/model"
)

// State is the result of a consumable test.
type State int

const (
	// Absent means the entry was never added.
	Absent State = iota
	// Available means the entry can still be consumed.
	Available
	// Consumed means the entry has been consumed in this pass.
	Consumed
)

func (s State) String() string {
	switch s {
	case Available:
		return "available"
	case Consumed:
		return "consumed"
	}
	return "absent"
}

// MarkerItem is the consumable item standing for a whole marker range.
type MarkerItem string

// consumableKey identifies an item. Text proxies produced by different
// walks over the same characters share a key. Other items must be
// comparable.
type consumableKey struct {
	item   any
	offset int
	length int
}

func keyOf(item any) consumableKey {
	if p, ok := item.(*model.TextProxy); ok {
		return consumableKey{item: p.TextNode(), offset: p.OffsetInText(), length: p.OffsetSize()}
	}
	return consumableKey{item: item}
}

// normalizeKind maps event names to consumable kinds. Attribute events drop
// the element name ("addAttribute:bold:$text" -> "addAttribute:bold"),
// insert, remove, move and selection events keep only the category.
func normalizeKind(kind string) string {
	t := topic.Topic(kind)
	switch t.Category() {
	case "insert", "remove", "move", "selection":
		return t.Category()
	case "addAttribute", "removeAttribute", "changeAttribute":
		segs := t.Segments()
		if len(segs) > 2 {
			return strings.Join(segs[:2], topic.Separator)
		}
	}
	return kind
}

// Consumable tracks which parts of a model change are still waiting for a
// converter during one conversion pass. Consuming an absent or consumed
// entry fails without side effects, which is what lets converters form
// first-match-wins chains.
type Consumable struct {
	entries map[consumableKey]map[string]bool
}

// NewConsumable returns an empty set.
func NewConsumable() *Consumable {
	return &Consumable{entries: make(map[consumableKey]map[string]bool)}
}

// Add registers kind as available for item. Adding an entry that was
// already consumed makes it available again.
func (c *Consumable) Add(item any, kind string) {
	k := keyOf(item)
	kinds, ok := c.entries[k]
	if !ok {
		kinds = make(map[string]bool)
		c.entries[k] = kinds
	}
	kinds[normalizeKind(kind)] = true
}

// Test reports the state of an entry.
func (c *Consumable) Test(item any, kind string) State {
	kinds, ok := c.entries[keyOf(item)]
	if !ok {
		return Absent
	}
	available, ok := kinds[normalizeKind(kind)]
	switch {
	case !ok:
		return Absent
	case available:
		return Available
	}
	return Consumed
}

// Consume marks an available entry as consumed and reports whether it did.
func (c *Consumable) Consume(item any, kind string) bool {
	if c.Test(item, kind) != Available {
		return false
	}
	c.entries[keyOf(item)][normalizeKind(kind)] = false
	return true
}

// Revert makes a consumed entry available again.
func (c *Consumable) Revert(item any, kind string) bool {
	if c.Test(item, kind) != Consumed {
		return false
	}
	c.entries[keyOf(item)][normalizeKind(kind)] = true
	return true
}

// Pending returns the kinds still available for item, sorted.
func (c *Consumable) Pending(item any) []string {
	var out []string
	for kind, available := range c.entries[keyOf(item)] {
		if available {
			out = append(out, kind)
		}
	}
	sort.Strings(out)
	return out
}
