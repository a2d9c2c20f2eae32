package loader

import (
	"os"
	"strconv"
	"strings"
)

// EnvPrefix is the prefix of osk environment variables.
const EnvPrefix = "OSK_"

// EnvLoader loads configuration from environment variables. The first
// segment after the prefix names the section and the rest the setting, so
// OSK_KEYBOARD_LONG_PRESS_DELAY becomes keyboard.long_press_delay.
type EnvLoader struct {
	prefix  string
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{prefix: prefix, environ: os.Environ}
}

// Load reads prefixed environment variables into a configuration map.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for _, env := range l.environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path := envToPath(strings.TrimPrefix(name, l.prefix))
		if path == "" {
			continue
		}
		setByPath(config, path, parseValue(value))
	}
	return config, nil
}

func envToPath(name string) string {
	section, setting, ok := strings.Cut(strings.ToLower(name), "_")
	if !ok || section == "" || setting == "" {
		return ""
	}
	return section + "." + setting
}

// parseValue attempts to parse the string value into an appropriate type.
// Durations stay strings; the settings decoder parses them.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
