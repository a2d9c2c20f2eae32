package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		hasError bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"bogus", LevelInfo, true},
		{"", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestNewJSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&Config{Level: LevelDebug, Format: FormatJSON, Writer: &buf, Component: "osk"})
	require.NoError(t, err)

	l.WithComponent("keyboard").WithField("key", "LFSH").Info("latched")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "latched", entry["msg"])
	assert.Equal(t, "LFSH", entry["key"])
	assert.Equal(t, "keyboard", entry["component"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&Config{Level: LevelWarn, Writer: &buf})
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "osk.log")
	l, err := New(&Config{Level: LevelInfo, Output: "file", FilePath: path})
	require.NoError(t, err)

	l.WithFields(map[string]any{"layer": 1}).Info("layer switched")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "layer switched"))
}

func TestOrDefault(t *testing.T) {
	assert.Same(t, Default(), OrDefault(nil))
	d := Discard()
	assert.Same(t, d, OrDefault(d))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat(""))
}
