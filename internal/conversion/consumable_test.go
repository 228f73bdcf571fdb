package conversion

import (
	"testing"

	"github.com/dshills/twintree/internal/model"
	"github.com/dshills/twintree/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKind(t *testing.T) {
	tests := map[string]string{
		"insert:$text":               "insert",
		"insert:paragraph":           "insert",
		"remove:image":               "remove",
		"addAttribute:bold:$text":    "addAttribute:bold",
		"changeAttribute:href:$text": "changeAttribute:href",
		"addAttribute:bold":          "addAttribute:bold",
		"addMarker:comment:1":        "addMarker:comment:1",
		"selection:collapsed":        "selection",
		"fakeSelection":              "fakeSelection",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeKind(in), in)
	}
}

func TestConsumableStates(t *testing.T) {
	c := NewConsumable()
	p := model.NewElement("paragraph", nil)

	assert.Equal(t, Absent, c.Test(p, "insert"))
	assert.False(t, c.Consume(p, "insert"), "absent entries cannot be consumed")

	c.Add(p, "insert")
	assert.Equal(t, Available, c.Test(p, "insert:paragraph"))
	require.True(t, c.Consume(p, "insert:paragraph"))
	assert.Equal(t, Consumed, c.Test(p, "insert"))
	assert.False(t, c.Consume(p, "insert"), "second consume fails")

	assert.True(t, c.Revert(p, "insert"))
	assert.Equal(t, Available, c.Test(p, "insert"))
	assert.False(t, c.Revert(p, "insert"), "revert needs a consumed entry")
}

func TestConsumableTextProxyIdentity(t *testing.T) {
	text := model.NewText("foobar", nil)
	model.NewElement("paragraph", nil, text)

	c := NewConsumable()
	c.Add(model.NewTextProxy(text, 0, 3), "insert")

	assert.Equal(t, Available, c.Test(model.NewTextProxy(text, 0, 3), "insert"))
	assert.Equal(t, Absent, c.Test(model.NewTextProxy(text, 3, 3), "insert"))
	assert.Equal(t, Absent, c.Test(model.NewTextProxy(text, 0, 2), "insert"))
}

func TestConsumablePending(t *testing.T) {
	c := NewConsumable()
	item := MarkerItem("search")
	c.Add(item, "addMarker:search")
	c.Add(item, "addAttribute:bold")
	c.Consume(item, "addMarker:search")
	assert.Equal(t, []string{"addAttribute:bold"}, c.Pending(item))
}

func TestViewConsumable(t *testing.T) {
	e := view.NewAttributeElement("span", map[string]string{
		"class": "a b",
		"style": "color:red;",
		"title": "t",
	})
	e2 := view.NewContainerElement("p", nil, e)
	c := CreateViewConsumable(e2)

	all := Match{Name: true, Attributes: []string{"title"}, Classes: []string{"a", "b"}, Styles: []string{"color"}}
	assert.Equal(t, Available, c.Test(e, all))
	assert.Equal(t, Absent, c.Test(e, Match{Classes: []string{"c"}}))

	require.True(t, c.Consume(e, Match{Name: true, Classes: []string{"a"}}))
	assert.Equal(t, Consumed, c.Test(e, all))
	assert.False(t, c.Consume(e, Match{Classes: []string{"a", "b"}}), "consume is all or nothing")
	assert.Equal(t, Available, c.Test(e, Match{Classes: []string{"b"}}), "failed consume changes nothing")

	assert.Equal(t, Absent, c.Test(e, Match{Name: true, Classes: []string{"zzz"}}), "absent wins over consumed")

	c.Revert(e, Match{Name: true})
	assert.Equal(t, Available, c.Test(e, Match{Name: true}))

	pending := c.Pending(e)
	assert.True(t, pending.Name)
	assert.ElementsMatch(t, []string{"b"}, pending.Classes)
	assert.ElementsMatch(t, []string{"title"}, pending.Attributes)

	assert.Equal(t, Available, c.Test(e2, Match{Name: true}))
}
