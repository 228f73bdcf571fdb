package scenario

import (
	"testing"

	"github.com/dshills/twintree/internal/conversion"
	"github.com/dshills/twintree/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const sample = `{
	"content": "<p>foo</p>",
	"steps": [
		{"op": "insertText", "at": [0, 3], "text": "bar", "attributes": {"bold": true}},
		{"op": "select", "from": [0, 1], "to": [0, 2]},
		{"op": "removeAttribute", "from": [0, 3], "to": [0, 6], "key": "bold"},
		{"op": "setSelectionAttribute", "key": "bold", "value": true}
	]
}`

func basics(down *conversion.DowncastHelpers, up *conversion.UpcastHelpers) error {
	if err := down.ElementToElement(conversion.ElementToElementConfig{
		Model: "paragraph",
		View:  conversion.ElementSpec{Name: "p"},
	}); err != nil {
		return err
	}
	if err := down.AttributeToElement(conversion.AttributeToElementConfig{
		Key:   "bold",
		Model: model.TextName,
		View:  conversion.ElementSpec{Name: "strong"},
	}); err != nil {
		return err
	}
	if err := up.ElementToElement(conversion.UpcastElementToElementConfig{
		View:  conversion.ViewPattern{Name: "p"},
		Model: "paragraph",
	}); err != nil {
		return err
	}
	return up.ElementToAttribute(conversion.UpcastElementToAttributeConfig{
		View:  conversion.ViewPattern{Name: "strong"},
		Key:   "bold",
		Value: true,
	})
}

func TestParse(t *testing.T) {
	sc, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, DefaultRoot, sc.Root)
	assert.Equal(t, DefaultElement, sc.Element)
	assert.Equal(t, "<p>foo</p>", sc.Content)
	require.Len(t, sc.Steps, 4)
	assert.Equal(t, "select", sc.Steps[1].Op)

	tests := []struct {
		name string
		data string
		want error
	}{
		{"malformed", `{"steps": [`, ErrInvalidScenario},
		{"not an object", `[1, 2]`, ErrInvalidScenario},
		{"no steps", `{"root": "main"}`, ErrInvalidScenario},
		{"unknown op", `{"steps": [{"op": "explode"}]}`, ErrUnknownOp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRun(t *testing.T) {
	sc, err := Parse([]byte(sample))
	require.NoError(t, err)
	rep, err := Run(sc, Env{Setup: basics})
	require.NoError(t, err)

	assert.Equal(t, "<p>foo</p>", rep.Initial)
	require.Len(t, rep.Steps, 4)
	assert.Equal(t, "<p>foo<strong>bar</strong></p>", rep.Steps[0].View)
	assert.Equal(t, `<paragraph>foo<$text bold="true">bar</$text></paragraph>`, rep.Steps[0].Model)
	assert.Equal(t, "<p>f{o}o<strong>bar</strong></p>", rep.Steps[1].View)
	assert.Equal(t, "<p>f{o}obar</p>", rep.Steps[2].View)
	assert.Equal(t, "<paragraph>foobar</paragraph>", rep.Steps[2].Model)
	assert.Equal(t, "<p>foobar</p>", rep.Data)

	assert.True(t, rep.Changed(0))
	assert.True(t, rep.Changed(1))
	assert.False(t, rep.Changed(3), "selection attributes do not touch a non-collapsed selection")
}

func TestRunStopsAtFailingStep(t *testing.T) {
	sc, err := Parse([]byte(`{"steps": [
		{"op": "insertElement", "at": [0], "name": "paragraph"},
		{"op": "remove", "from": [5, 0], "to": [5, 1]},
		{"op": "insertText", "at": [0, 0], "text": "never"}
	]}`))
	require.NoError(t, err)
	rep, err := Run(sc, Env{Setup: basics})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 2 (remove)")
	require.Len(t, rep.Steps, 1)
	assert.Equal(t, "<p></p>", rep.Steps[0].View)
}

func TestStepArguments(t *testing.T) {
	tests := []struct {
		name string
		step string
	}{
		{"missing path", `{"op": "insertText", "text": "x"}`},
		{"negative offset", `{"op": "insertText", "at": [-1], "text": "x"}`},
		{"missing name", `{"op": "insertElement", "at": [0]}`},
		{"backward range", `{"op": "remove", "from": [0, 2], "to": [0, 1]}`},
		{"rename text", `{"op": "rename", "at": [0, 0], "name": "x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := Parse([]byte(`{"content": "<p>foo</p>", "steps": [` + tt.step + `]}`))
			require.NoError(t, err)
			_, err = Run(sc, Env{Setup: basics})
			assert.Error(t, err)
		})
	}
}

func TestReportJSON(t *testing.T) {
	sc, err := Parse([]byte(sample))
	require.NoError(t, err)
	rep, err := Run(sc, Env{Setup: basics})
	require.NoError(t, err)

	out, err := rep.JSON()
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(out))
	assert.Equal(t, int64(4), gjson.GetBytes(out, "steps.#").Int())
	assert.Equal(t, "select", gjson.GetBytes(out, "steps.1.op").String())
	assert.True(t, gjson.GetBytes(out, "steps.1.changed").Bool())
	assert.Equal(t, "<p>foobar</p>", gjson.GetBytes(out, "data").String())
}

func TestOps(t *testing.T) {
	names := Ops()
	assert.Contains(t, names, "insertText")
	assert.IsIncreasing(t, names)
}
