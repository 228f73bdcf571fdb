package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.expected)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LogLevelDebug},
		{"INFO", LogLevelInfo},
		{"warning", LogLevelWarn},
		{"Error", LogLevelError},
		{"", LogLevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LoggerConfig{Level: LogLevelWarn, Output: &buf})

	l.Debug("hidden debug")
	l.Info("hidden info")
	l.Warn("visible %s", "warning")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("output contains filtered lines: %q", out)
	}
	if !strings.Contains(out, "visible warning") {
		t.Errorf("output missing warning: %q", out)
	}
}

func TestLogger_FieldsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LoggerConfig{Level: LogLevelDebug, Output: &buf, Format: FormatJSON, Prefix: "test"})

	l.WithComponent("downcast").WithFields(map[string]any{"pass": "p1"}).Debug("converted")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if line["component"] != "downcast" || line["pass"] != "p1" || line["app"] != "test" {
		t.Errorf("missing fields in %v", line)
	}
	if line["msg"] != "converted" {
		t.Errorf("msg = %v, want converted", line["msg"])
	}
}

func TestLogger_DisableSharedWithChildren(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LoggerConfig{Level: LogLevelDebug, Output: &buf})
	child := l.WithField("k", "v")

	l.Disable()
	child.Error("dropped")
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}
	if child.IsDebug() {
		t.Error("IsDebug() should be false while disabled")
	}

	l.Enable()
	child.Error("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("enabled logger did not write: %q", buf.String())
	}
}

func TestNullLogger(t *testing.T) {
	l := NullLogger()
	l.Error("nothing")
	if l.IsDebug() {
		t.Error("NullLogger should not report debug enabled")
	}
}
