package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestTOMLLoadMissingFile(t *testing.T) {
	l := NewTOMLLoader(filepath.Join(t.TempDir(), "none.toml"))
	data, err := l.Load()
	if err != nil || data != nil {
		t.Errorf("Load() = %v, %v; want nil, nil", data, err)
	}
}

func TestTOMLSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osk", "settings.toml")
	l := NewTOMLLoader(path)

	in := map[string]any{
		"keyboard": map[string]any{"long_press_delay": 0.8, "drag_protection": false},
	}
	if err := l.Save(in); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	out, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	kb, ok := out["keyboard"].(map[string]any)
	if !ok {
		t.Fatalf("keyboard section = %#v", out["keyboard"])
	}
	if kb["long_press_delay"] != 0.8 || kb["drag_protection"] != false {
		t.Errorf("keyboard = %v", kb)
	}
}

func TestTOMLParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[keyboard\nx = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewTOMLLoader(path).Load()
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Load() error = %v, want *ParseError", err)
	}
	if pe.Path != path || pe.Line == 0 {
		t.Errorf("ParseError = %+v", pe)
	}
}

func TestEnvLoader(t *testing.T) {
	l := NewEnvLoader(EnvPrefix)
	l.environ = func() []string {
		return []string{
			"OSK_KEYBOARD_LONG_PRESS_DELAY=0.8",
			"OSK_LOCKDOWN_DISABLE_QUIT=yes",
			"OSK_KEYBOARD_DRAG_THRESHOLD=12",
			"OSK_LOGGING_LEVEL=debug",
			"OSK_BROKEN=1",
			"HOME=/root",
		}
	}

	data, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		section, key string
		want         any
	}{
		{"keyboard", "long_press_delay", 0.8},
		{"keyboard", "drag_threshold", int64(12)},
		{"lockdown", "disable_quit", true},
		{"logging", "level", "debug"},
	}
	for _, tt := range tests {
		sec, _ := data[tt.section].(map[string]any)
		if got := sec[tt.key]; got != tt.want {
			t.Errorf("%s.%s = %#v, want %#v", tt.section, tt.key, got, tt.want)
		}
	}
	if _, ok := data["broken"]; ok {
		t.Error("variable without a setting part was loaded")
	}
	if _, ok := data["home"]; ok {
		t.Error("unprefixed variable was loaded")
	}
}
