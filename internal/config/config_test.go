package config

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/dshills/twintree/internal/conversion"
	"github.com/dshills/twintree/internal/logging"
	"github.com/dshills/twintree/internal/markup"
	"github.com/dshills/twintree/internal/model"
	"github.com/dshills/twintree/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
scripts = ["lua/converters.lua"]

[log]
level = "debug"
format = "json"

[conversion]
strict = true
normalize_text = true
default_priority = "high"

[[elements]]
model = "paragraph"
view = "p"

[[attributes]]
key = "bold"
view = "strong"

[[attributes]]
key = "highlight"
value = "yellow"
view = "mark"
classes = ["yellow"]
priority = "low"

[[element_attributes]]
model = "paragraph"
key = "alignment"
view_key = "style"
style = "text-align"
view = "p"

[[markers]]
name = "comment"
mode = "highlight"
classes = ["comment"]

[[markers]]
name = "bookmark"
mode = "element"
view = "a"
`

const sampleYAML = `
log:
  level: warn
conversion:
  strict: true
elements:
  - model: heading
    view: h2
attributes:
  - key: italic
    view: em
`

func noEnv(string) (string, bool) { return "", false }

func newTestLoader(files fstest.MapFS, env map[string]string) *Loader {
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	return NewLoaderWithFS(files, NewEnvLoaderWithLookup(EnvPrefix, lookup))
}

func TestLoadTOML(t *testing.T) {
	l := newTestLoader(fstest.MapFS{"conf/twintree.toml": {Data: []byte(sampleTOML)}}, nil)
	cfg, err := l.Load("conf/twintree.toml")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Conversion.Strict)
	assert.True(t, cfg.Conversion.NormalizeText)
	require.Len(t, cfg.Attributes, 2)
	assert.Equal(t, "yellow", cfg.Attributes[1].Value)
	assert.Equal(t, []string{"yellow"}, cfg.Attributes[1].Classes)
	require.Len(t, cfg.Markers, 2)
	assert.Equal(t, MarkerModeElement, cfg.Markers[1].Mode)
	assert.Equal(t, []string{"conf/lua/converters.lua"}, cfg.Scripts)
}

func TestLoadYAML(t *testing.T) {
	l := newTestLoader(fstest.MapFS{"twintree.yml": {Data: []byte(sampleYAML)}}, nil)
	cfg, err := l.Load("twintree.yml")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "defaults survive")
	require.Len(t, cfg.Elements, 1)
	assert.Equal(t, ElementRule{Model: "heading", View: "h2"}, cfg.Elements[0])
}

func TestLoadErrors(t *testing.T) {
	files := fstest.MapFS{
		"bad.toml":      {Data: []byte("[log\nlevel = 1")},
		"unknown.toml":  {Data: []byte("[log]\ncolour = true")},
		"settings.json": {Data: []byte("{}")},
		"invalid.toml":  {Data: []byte("[[markers]]\nname = \"x\"\nmode = \"blink\"")},
	}
	l := newTestLoader(files, nil)

	_, err := l.Load("missing.toml")
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = l.Load("bad.toml")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "bad.toml", perr.Path)
	assert.Positive(t, perr.Line)

	_, err = l.Load("unknown.toml")
	assert.ErrorAs(t, err, &perr)

	_, err = l.Load("settings.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	cfg, err := l.Load("invalid.toml")
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.NotNil(t, cfg, "invalid config is still returned for reporting")
}

func TestEnvOverrides(t *testing.T) {
	l := newTestLoader(fstest.MapFS{"twintree.toml": {Data: []byte(sampleTOML)}}, map[string]string{
		"TWINTREE_LOG_LEVEL":      "error",
		"TWINTREE_STRICT":         "false",
		"TWINTREE_NORMALIZE_TEXT": "0",
	})
	cfg, err := l.Load("twintree.toml")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Conversion.Strict)
	assert.False(t, cfg.Conversion.NormalizeText)

	bad := newTestLoader(nil, map[string]string{"TWINTREE_STRICT": "sometimes"})
	_, err = bad.Load("")
	assert.ErrorContains(t, err, "TWINTREE_STRICT")
}

func TestEnvLoaderNames(t *testing.T) {
	names := NewEnvLoaderWithLookup(EnvPrefix, noEnv).Names()
	assert.ElementsMatch(t, []string{
		"TWINTREE_LOG_LEVEL", "TWINTREE_LOG_FORMAT", "TWINTREE_STRICT", "TWINTREE_NORMALIZE_TEXT",
	}, names)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Log.Format = "xml"
	cfg.Elements = []ElementRule{{Model: "paragraph", View: "p"}, {Model: "paragraph", View: "div"}}
	cfg.Attributes = []AttributeRule{{View: "strong", Priority: "urgent"}}
	cfg.ElementAttributes = []ElementAttributeRule{{Key: "alignment", ViewKey: "style"}}
	cfg.Markers = []MarkerRule{{Name: "pin", Mode: MarkerModeElement}}

	err := cfg.Validate()
	require.Error(t, err)

	var codes []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var verr *ValidationError
		require.True(t, errors.As(e, &verr))
		codes = append(codes, verr.Path+"="+verr.Code.String())
	}
	assert.Equal(t, []string{
		"log.format=invalid_enum",
		"elements[1].model=duplicate",
		"attributes[0].key=required_missing",
		"attributes[0].priority=invalid_enum",
		"element_attributes[0].style=required_missing",
		"markers[0].view=required_missing",
	}, codes)
}

func TestParseAndOptions(t *testing.T) {
	cfg, err := Parse([]byte(sampleTOML), FormatTOML)
	require.NoError(t, err)

	opts := cfg.Options(logging.NullLogger())
	assert.True(t, opts.Strict)
	assert.True(t, opts.NormalizeText)
	assert.NotNil(t, opts.Logger)

	_, err = Parse([]byte("log: ["), FormatYAML)
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

// registered builds a model root, a bound view root and a dispatcher with
// the rules of cfg.
func registered(t *testing.T, cfg *Config) (*model.Document, *model.Element, *view.Element) {
	t.Helper()
	doc := model.NewDocument()
	root := doc.CreateRoot("main", "$root")
	vdoc := view.NewDocument()
	vroot := vdoc.CreateRoot("main", "div")
	mapper := conversion.NewMapper()
	mapper.BindElements(root, vroot)
	down := conversion.NewDowncastDispatcher(mapper, view.NewWriter(vdoc), cfg.Options(nil))
	require.NoError(t, conversion.RegisterDefaultDowncast(down))
	require.NoError(t, cfg.Register(conversion.Downcast(down), nil))
	doc.OnChange(down.ConvertChange)
	return doc, root, vroot
}

func TestRegisterDowncastRules(t *testing.T) {
	cfg, err := Parse([]byte(sampleTOML), FormatTOML)
	require.NoError(t, err)
	doc, root, vroot := registered(t, cfg)

	require.NoError(t, doc.Change(func(w *model.Writer) error {
		p, err := w.InsertElement("paragraph", map[string]any{"alignment": "right"}, model.PositionAt(root, 0))
		if err != nil {
			return err
		}
		if err := w.InsertText("foo", map[string]any{"bold": true}, model.PositionAt(p, 0)); err != nil {
			return err
		}
		if err := w.InsertText("bar", map[string]any{"highlight": "yellow"}, model.PositionAt(p, 3)); err != nil {
			return err
		}
		return w.InsertText("baz", map[string]any{"highlight": "green"}, model.PositionAt(p, 6))
	}))
	assert.Equal(t,
		`<p style="text-align:right;"><strong>foo</strong><mark class="yellow">bar</mark>baz</p>`,
		markup.String(vroot))
}

func TestRegisterMarkerRules(t *testing.T) {
	cfg, err := Parse([]byte(sampleTOML), FormatTOML)
	require.NoError(t, err)
	doc, root, vroot := registered(t, cfg)

	var p *model.Element
	require.NoError(t, doc.Change(func(w *model.Writer) error {
		if p, err = w.InsertElement("paragraph", nil, model.PositionAt(root, 0)); err != nil {
			return err
		}
		return w.InsertText("foobar", nil, model.PositionAt(p, 0))
	}))
	require.NoError(t, doc.Change(func(w *model.Writer) error {
		if _, err := w.AddMarker("comment:1", model.NewRange(model.PositionAt(p, 0), model.PositionAt(p, 3))); err != nil {
			return err
		}
		_, err := w.AddMarker("bookmark:top", model.CollapsedRange(model.PositionAt(p, 6)))
		return err
	}))
	assert.Equal(t,
		`<p><span class="comment">foo</span>bar<a data-marker="bookmark:top"></a></p>`,
		markup.String(vroot))
}

func TestRegisterUpcastRules(t *testing.T) {
	cfg, err := Parse([]byte(sampleTOML), FormatTOML)
	require.NoError(t, err)
	up := conversion.NewUpcastDispatcher(cfg.Options(nil))
	require.NoError(t, conversion.RegisterDefaultUpcast(up))
	mapper := conversion.NewMapper()
	down := conversion.NewDowncastDispatcher(mapper, view.NewWriter(nil), cfg.Options(nil))
	require.NoError(t, cfg.Register(conversion.Downcast(down), conversion.Upcast(up)))

	res := markup.MustParse(`<p style="text-align:center"><strong>foo</strong><mark class="yellow">bar</mark></p>`)
	frag, err := up.Convert(res.Fragment)
	require.NoError(t, err)
	assert.Equal(t,
		`<paragraph alignment="center"><$text bold="true">foo</$text><$text highlight="yellow">bar</$text></paragraph>`,
		model.StringifyChildren(frag))
}
