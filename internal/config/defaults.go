package config

import (
	"os"
	"path/filepath"
)

// SettingsFile is the name of the user settings file.
const SettingsFile = "settings.toml"

// DefaultConfigDir returns $XDG_CONFIG_HOME/osk.
func DefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", ".osk")
	}
	return filepath.Join(dir, "osk")
}

// DefaultDataDir returns $XDG_DATA_HOME/osk.
func DefaultDataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "osk")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".osk")
	}
	return filepath.Join(home, ".local", "share", "osk")
}

// defaultConfig returns the built-in defaults layer. Durations are in
// seconds.
func defaultConfig(configDir, dataDir string) map[string]any {
	return map[string]any{
		"keyboard": map[string]any{
			"long_press_delay":         0.5,
			"sticky_key_release_delay": 0.0,
			"drag_threshold":           8.0,
			"drag_protection":          true,
			"double_click_time":        0.4,
			"show_click_buttons":       false,
			"touch_handles_timeout":    5.0,
		},
		"dwell": map[string]any{
			"delay":         4.0,
			"poll_interval": 0.05,
		},
		"window": map[string]any{
			"active_opacity":               1.0,
			"inactive_opacity":             0.5,
			"enable_inactive_transparency": false,
			"inactive_transparency_delay":  1.0,
			"decorated":                    false,
			"docking":                      false,
			"composited":                   true,
		},
		"lockdown": map[string]any{
			"disable_locked_state":     false,
			"disable_dwell_activation": false,
			"disable_click_buttons":    false,
			"disable_hover_click":      false,
			"disable_preferences":      false,
			"disable_quit":             false,
			"disable_touch_handles":    false,
		},
		"prediction": map[string]any{
			"enabled":          false,
			"auto_learn":       true,
			"auto_punctuation": false,
			"stealth_mode":     false,
			"max_choices":      int64(8),
			"database":         filepath.Join(dataDir, "words.db"),
		},
		"access": map[string]any{
			"hover_click_enabled": false,
			"use_mousetweaks":     true,
		},
		"logging": map[string]any{
			"level":  "info",
			"format": "text",
			"output": "file",
			"file":   "",
		},
		"paths": map[string]any{
			"layout":   "",
			"snippets": filepath.Join(configDir, "snippets.json"),
			"scripts":  filepath.Join(configDir, "scripts"),
		},
	}
}
