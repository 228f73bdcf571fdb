package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/twintree/internal/config"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const testConfig = `
scripts = ["italic.lua"]

[log]
level = "error"

[[elements]]
model = "paragraph"
view = "p"

[[markers]]
name = "comment"
mode = "highlight"
classes = ["comment"]
`

const testScript = `
local converters = require("converters")
converters.attribute_to_element{key = "italic", view = "em"}
converters.upcast_element_to_attribute{view = "em", key = "italic"}
`

const testScenario = `{
	"content": "<p>foo</p>",
	"steps": [
		{"op": "insertText", "at": [0, 3], "text": "bar", "attributes": {"italic": true}},
		{"op": "addMarker", "name": "comment:1", "from": [0, 0], "to": [0, 3]},
		{"op": "select", "from": [0, 6]},
		{"op": "select", "from": [0, 6]}
	]
}`

func writeFixtures(t *testing.T) (configPath, scenarioPath string) {
	t.Helper()
	dir := t.TempDir()
	configPath = filepath.Join(dir, "twintree.toml")
	scenarioPath = filepath.Join(dir, "scenario.json")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfig), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "italic.lua"), []byte(testScript), 0o644))
	require.NoError(t, os.WriteFile(scenarioPath, []byte(testScenario), 0o644))
	return configPath, scenarioPath
}

func TestRunJSON(t *testing.T) {
	cfg, sc := writeFixtures(t)
	var out, errb bytes.Buffer
	code := run([]string{"run", "-config", cfg, "-json", sc}, &out, &errb)
	require.Equal(t, 0, code, errb.String())

	js := out.Bytes()
	require.True(t, gjson.ValidBytes(js))
	assert.Equal(t, "<p>foo</p>", gjson.GetBytes(js, "initial").String())
	assert.Equal(t, "<p>foo<em>bar</em></p>", gjson.GetBytes(js, "steps.0.view").String())
	assert.Equal(t, `<p><span class="comment">foo</span><em>bar</em></p>`, gjson.GetBytes(js, "steps.1.view").String())
	assert.Equal(t, `<p><span class="comment">foo</span><em>bar</em></p>`, gjson.GetBytes(js, "data").String())
}

func TestRunText(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	cfg, sc := writeFixtures(t)
	var out, errb bytes.Buffer
	code := run([]string{"run", "-c", cfg, sc}, &out, &errb)
	require.Equal(t, 0, code, errb.String())

	text := out.String()
	assert.Contains(t, text, "#1 insertText\n- <p>foo</p>\n+ <p>foo<em>bar</em></p>\n")
	assert.Contains(t, text, "#4 select\n= ")
	assert.Contains(t, text, "data\n")
}

func TestRunUsage(t *testing.T) {
	cfg, sc := writeFixtures(t)
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"serve"}, 2},
		{"missing scenario", []string{"run"}, 2},
		{"unknown flag", []string{"run", "-nope", sc}, 2},
		{"scenario not found", []string{"run", "-config", cfg, filepath.Join(t.TempDir(), "none.json")}, 1},
		{"config not found", []string{"run", "-config", "missing.toml", sc}, 1},
		{"version", []string{"version"}, 0},
		{"ops", []string{"ops"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errb bytes.Buffer
			assert.Equal(t, tt.code, run(tt.args, &out, &errb))
		})
	}
}

// lockedBuffer is written by the watch loop while the test reads it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchFiles(t *testing.T) {
	opts := options{ScenarioPath: "s.json"}
	cfg := &config.Config{Scripts: []string{"a.lua", "b.lua"}}
	assert.Equal(t, []string{"s.json", "a.lua", "b.lua"}, watchFiles(opts, cfg))

	opts.ConfigPath = "twintree.toml"
	cfg.Scripts = nil
	assert.Equal(t, []string{"s.json", "twintree.toml"}, watchFiles(opts, cfg))
}

func TestWatchFollowsConfigReload(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "twintree.toml")
	scriptPath := filepath.Join(dir, "italic.lua")
	scenarioPath := filepath.Join(dir, "scenario.json")
	quiet := "[log]\nlevel = \"error\"\n\n[[elements]]\nmodel = \"paragraph\"\nview = \"p\"\n"
	require.NoError(t, os.WriteFile(configPath, []byte(quiet), 0o644))
	require.NoError(t, os.WriteFile(scriptPath, []byte(testScript), 0o644))
	require.NoError(t, os.WriteFile(scenarioPath, []byte(`{"content": "<p>foo</p>", "steps": [{"op": "select", "from": [0, 1]}]}`), 0o644))

	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	require.Empty(t, cfg.Scripts)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	var out, errb lockedBuffer
	opts := options{ConfigPath: configPath, ScenarioPath: scenarioPath, JSON: true}
	done := make(chan error, 1)
	go func() { done <- watch(ctx, opts, cfg, &errb, &out) }()

	runs := func() int { return strings.Count(out.String(), `"initial"`) }
	require.Eventually(t, func() bool { return runs() == 1 }, 5*time.Second, 20*time.Millisecond)
	// Let the watcher settle before writing.
	time.Sleep(100 * time.Millisecond)

	loud := strings.Replace(quiet, `"error"`, `"info"`, 1)
	require.NoError(t, os.WriteFile(configPath, []byte("scripts = [\"italic.lua\"]\n"+loud), 0o644))
	require.Eventually(t, func() bool {
		return runs() >= 2 && strings.Contains(errb.String(), "config reloaded")
	}, 5*time.Second, 20*time.Millisecond, "reload should run again with the rebuilt logger")

	// The script only became an input with the reload.
	before := runs()
	require.Eventually(t, func() bool {
		_ = os.WriteFile(scriptPath, []byte(testScript+"\n"), 0o644)
		return runs() > before
	}, 5*time.Second, 250*time.Millisecond, "script change should trigger a run")
	assert.Contains(t, errb.String(), "italic.lua")

	cancel()
	assert.NoError(t, <-done)
}
