package layer

import (
	"fmt"
	"sort"
	"sync"
)

// Manager manages configuration layers and provides merged access.
type Manager struct {
	mu     sync.RWMutex
	layers []*Layer // sorted by priority, ascending
	merged map[string]any
	dirty  bool
}

// NewManager creates a new layer manager.
func NewManager() *Manager {
	return &Manager{dirty: true}
}

// AddLayer adds or replaces the layer with the same name.
func (m *Manager) AddLayer(l *Layer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.layers {
		if existing.Name == l.Name {
			m.layers[i] = l
			m.dirty = true
			return
		}
	}
	m.layers = append(m.layers, l)
	sort.SliceStable(m.layers, func(i, j int) bool {
		return m.layers[i].Priority < m.layers[j].Priority
	})
	m.dirty = true
}

// Layer returns a layer by name.
func (m *Manager) Layer(name string) *Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.find(name)
}

// Layers returns the layers sorted by priority.
func (m *Manager) Layers() []*Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Layer, len(m.layers))
	copy(out, m.layers)
	return out
}

// Merge combines all layers into a single configuration map. The result is
// a copy the caller may keep.
func (m *Manager) Merge() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Clone(m.mergedData())
}

func (m *Manager) mergedData() map[string]any {
	if m.dirty || m.merged == nil {
		result := make(map[string]any)
		for _, l := range m.layers {
			result = DeepMerge(result, l.Data)
		}
		m.merged = result
		m.dirty = false
	}
	return m.merged
}

// Get returns the effective value for a setting path and the layer it came
// from.
func (m *Manager) Get(path string) (any, *Layer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.layers) - 1; i >= 0; i-- {
		if val, ok := GetByPath(m.layers[i].Data, path); ok {
			return val, m.layers[i], true
		}
	}
	return nil, nil, false
}

// Set sets a value in the named layer.
func (m *Manager) Set(name, path string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := m.find(name)
	if l == nil {
		return fmt.Errorf("layer not found: %s", name)
	}
	if l.ReadOnly {
		return fmt.Errorf("layer is read-only: %s", name)
	}
	SetByPath(l.Data, path, value)
	m.dirty = true
	return nil
}

// Delete removes a value from the named layer.
func (m *Manager) Delete(name, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := m.find(name)
	if l == nil {
		return fmt.Errorf("layer not found: %s", name)
	}
	if DeleteByPath(l.Data, path) {
		m.dirty = true
	}
	return nil
}

// UpdateLayer replaces a layer's data.
func (m *Manager) UpdateLayer(name string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := m.find(name)
	if l == nil {
		return fmt.Errorf("layer not found: %s", name)
	}
	if data == nil {
		data = make(map[string]any)
	}
	l.Data = Clone(data)
	m.dirty = true
	return nil
}

func (m *Manager) find(name string) *Layer {
	for _, l := range m.layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}
