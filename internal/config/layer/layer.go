// Package layer merges configuration layers by priority. Higher priority
// layers override values from lower priority layers.
package layer

import "time"

// Layer represents a single configuration layer.
type Layer struct {
	// Name identifies the layer (e.g., "user", "session", "default").
	Name string

	// Priority determines merge order (higher overrides lower).
	Priority int

	Source Source

	// Path is the file path (if loaded from file).
	Path string

	// Data holds the configuration values as a nested map.
	Data map[string]any

	ModTime time.Time

	// ReadOnly prevents modifications to this layer.
	ReadOnly bool
}

// NewLayer creates an empty layer with the default priority of source.
func NewLayer(name string, source Source) *Layer {
	return NewLayerWithData(name, source, make(map[string]any))
}

// NewLayerWithData creates a layer with initial data.
func NewLayerWithData(name string, source Source, data map[string]any) *Layer {
	if data == nil {
		data = make(map[string]any)
	}
	return &Layer{
		Name:     name,
		Source:   source,
		Priority: DefaultPriority(source),
		Data:     data,
		ModTime:  time.Now(),
	}
}

// Source indicates where a configuration layer came from.
type Source uint8

const (
	// SourceBuiltin represents built-in default configuration.
	SourceBuiltin Source = iota
	// SourceUser represents $XDG_CONFIG_HOME/osk/settings.toml.
	SourceUser
	// SourceEnv represents OSK_ environment variables.
	SourceEnv
	// SourceSession represents in-memory runtime toggles.
	SourceSession
)

// Standard priority levels.
const (
	PriorityBuiltin = 0
	PriorityUser    = 100
	PriorityEnv     = 500
	PrioritySession = 1000
)

// DefaultPriority returns the default priority for a given source.
func DefaultPriority(source Source) int {
	switch source {
	case SourceUser:
		return PriorityUser
	case SourceEnv:
		return PriorityEnv
	case SourceSession:
		return PrioritySession
	default:
		return PriorityBuiltin
	}
}

// String returns a human-readable name for the source.
func (s Source) String() string {
	switch s {
	case SourceBuiltin:
		return "builtin"
	case SourceUser:
		return "user"
	case SourceEnv:
		return "environment"
	case SourceSession:
		return "session"
	default:
		return "unknown"
	}
}
