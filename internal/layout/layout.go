// Package layout loads keyboard layouts from YAML files.
//
// A layout declares its layers and a flat list of keys. Each key names its
// layer (empty for keys shown on every layer), its canvas rectangle or
// polygon outline, and what it does when pressed:
//
//	name: compact
//	layers: [base, symbols]
//	keys:
//	  - {id: a, layer: base, char: a, labels: [a, A], rect: [0, 0, 10, 10]}
//	  - {id: LFSH, modifier: shift, rect: [0, 10, 20, 10]}
//	  - {id: layer1, label: "?123", rect: [20, 10, 10, 10]}
//
// Problems with a single key are collected as warnings and leave that key
// inert; only a malformed document fails the load.
package layout

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/osk/internal/geom"
	"github.com/dshills/osk/internal/input/key"
	"github.com/dshills/osk/internal/input/pointer"
	"github.com/dshills/osk/internal/keyboard"
	"github.com/dshills/osk/internal/logging"
)

//go:embed default.yaml
var defaultLayout []byte

// File is the document structure of a layout file.
type File struct {
	Name   string   `yaml:"name"`
	Layers []string `yaml:"layers"`
	Keys   []KeyDef `yaml:"keys"`
}

// KeyDef is one key entry of a layout file.
type KeyDef struct {
	ID           string       `yaml:"id"`
	Layer        string       `yaml:"layer"`
	Group        string       `yaml:"group"`
	Action       string       `yaml:"action"`
	Char         string       `yaml:"char"`
	Keysym       string       `yaml:"keysym"`
	Keycode      int          `yaml:"keycode"`
	Modifier     string       `yaml:"modifier"`
	Snippet      *int         `yaml:"snippet"`
	Script       string       `yaml:"script"`
	Word         *int         `yaml:"word"`
	Label        string       `yaml:"label"`
	Labels       []string     `yaml:"labels"`
	Tooltip      string       `yaml:"tooltip"`
	Alternatives []string     `yaml:"alternatives"`
	Rect         []float64    `yaml:"rect"`
	Shape        [][2]float64 `yaml:"shape"`
	Sticky       *bool        `yaml:"sticky"`
	Visible      *bool        `yaml:"visible"`
}

// Layout is a loaded layout. It implements keyboard.Layout.
type Layout struct {
	Name string
	Path string

	keys     []*keyboard.Key
	layers   []string
	warnings []error
}

// Load reads and parses the layout file at path.
func Load(path string, log *logging.Logger) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	l, err := Parse(data, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.Path = path
	return l, nil
}

// Default returns the built-in layout.
func Default(log *logging.Logger) *Layout {
	l, err := Parse(defaultLayout, log)
	if err != nil {
		panic(fmt.Sprintf("built-in layout: %v", err))
	}
	return l
}

// Parse builds a layout from YAML. Key problems are logged and kept in
// Warnings.
func Parse(data []byte, log *logging.Logger) (*Layout, error) {
	log = logging.OrDefault(log).WithComponent("layout")

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	if len(f.Keys) == 0 {
		return nil, ErrNoKeys
	}

	l := &Layout{Name: f.Name, layers: f.Layers}
	declared := make(map[string]bool, len(f.Layers))
	for _, name := range f.Layers {
		declared[name] = true
	}
	seen := make(map[string]bool)

	for i, def := range f.Keys {
		k, err := buildKey(def)
		if err == nil && def.Layer != "" && !declared[def.Layer] {
			err = fmt.Errorf("%w: %q", ErrUnknownLayer, def.Layer)
		}
		if err == nil && def.ID != "" {
			id := def.Layer + "/" + def.ID
			if seen[id] {
				err = fmt.Errorf("%w: %q", ErrDuplicateID, def.ID)
			}
			seen[id] = true
		}
		if err != nil {
			kerr := &KeyError{Index: i, ID: def.ID, Err: err}
			log.Warn("inert key", "error", kerr)
			l.warnings = append(l.warnings, kerr)
			k.Action = keyboard.ActionNone
		}
		k.Ref = pointer.KeyRef(i)
		l.keys = append(l.keys, k)
	}
	l.checkLayerButtons(log)
	return l, nil
}

// checkLayerButtons warns about layer buttons pointing past the last layer.
func (l *Layout) checkLayerButtons(log *logging.Logger) {
	for _, k := range l.keys {
		n, ok := k.LayerIndex()
		if !ok || n < len(l.layers) || (n == 0 && len(l.layers) == 0) {
			continue
		}
		kerr := &KeyError{Index: int(k.Ref), ID: k.ID, Err: fmt.Errorf("%w: layer %d", ErrUnknownLayer, n)}
		log.Warn("inert key", "error", kerr)
		l.warnings = append(l.warnings, kerr)
		k.Action = keyboard.ActionNone
		k.Sensitive = false
	}
}

func buildKey(def KeyDef) (*keyboard.Key, error) {
	k := keyboard.NewKey(def.ID)
	k.Layer = def.Layer
	k.Group = def.Group
	k.Tooltip = def.Tooltip
	k.Alternatives = def.Alternatives
	if def.Visible != nil {
		k.Visible = *def.Visible
	}

	if err := setGeometry(k, def); err != nil {
		return k, err
	}
	setLabels(k, def)

	action, err := actionOf(def)
	if err != nil {
		return k, err
	}
	k.Action = action

	switch action {
	case keyboard.ActionChar:
		if def.Char == "" {
			return k, fmt.Errorf("%w: char", ErrMissingField)
		}
		k.Char = def.Char
	case keyboard.ActionKeysym, keyboard.ActionKeypressName:
		if def.Keysym == "" {
			return k, fmt.Errorf("%w: keysym", ErrMissingField)
		}
		ks, err := key.KeysymFromName(def.Keysym)
		if err != nil {
			return k, err
		}
		k.Keysym = ks
	case keyboard.ActionKeycode:
		if def.Keycode <= 0 {
			return k, fmt.Errorf("%w: keycode", ErrMissingField)
		}
		k.Keycode = def.Keycode
	case keyboard.ActionModifier:
		if def.Modifier == "" {
			return k, fmt.Errorf("%w: modifier", ErrMissingField)
		}
		m, err := key.ParseModifier(def.Modifier)
		if err != nil {
			return k, err
		}
		k.Modifier = m
		k.Sticky = true
	case keyboard.ActionMacro:
		if def.Snippet == nil {
			return k, fmt.Errorf("%w: snippet", ErrMissingField)
		}
		k.Snippet = *def.Snippet
	case keyboard.ActionScript:
		if def.Script == "" {
			return k, fmt.Errorf("%w: script", ErrMissingField)
		}
		k.Script = def.Script
	case keyboard.ActionWord:
		k.Word = wordIndex(def)
	}
	if def.Sticky != nil {
		k.Sticky = *def.Sticky
	}
	return k, nil
}

// actionOf returns the declared action type, or infers it from the fields
// that are set.
func actionOf(def KeyDef) (keyboard.ActionType, error) {
	if def.Action != "" {
		return keyboard.ParseActionType(def.Action)
	}
	probe := keyboard.NewKey(def.ID)
	switch {
	case probe.IsLayerButton():
		return keyboard.ActionButton, nil
	case def.Word != nil || isWordID(def.ID):
		return keyboard.ActionWord, nil
	case def.Char != "":
		return keyboard.ActionChar, nil
	case def.Modifier != "":
		return keyboard.ActionModifier, nil
	case def.Keysym != "":
		return keyboard.ActionKeysym, nil
	case def.Keycode > 0:
		return keyboard.ActionKeycode, nil
	case def.Snippet != nil:
		return keyboard.ActionMacro, nil
	case def.Script != "":
		return keyboard.ActionScript, nil
	case buttonIDs[def.ID]:
		return keyboard.ActionButton, nil
	}
	return keyboard.ActionNone, nil
}

var buttonIDs = map[string]bool{
	"singleclick":    true,
	"middleclick":    true,
	"secondaryclick": true,
	"doubleclick":    true,
	"dragclick":      true,
	"hoverclick":     true,
	"hide":           true,
	"showclick":      true,
	"move":           true,
	"settings":       true,
	"quit":           true,
	"learnmode":      true,
	"punctuation":    true,
	"stealthmode":    true,
	"inputline":      true,
}

func isWordID(id string) bool {
	rest, ok := strings.CutPrefix(id, "word")
	if !ok || rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func wordIndex(def KeyDef) int {
	if def.Word != nil {
		return *def.Word
	}
	n := 0
	for _, r := range strings.TrimPrefix(def.ID, "word") {
		n = n*10 + int(r-'0')
	}
	return n
}

func setGeometry(k *keyboard.Key, def KeyDef) error {
	if len(def.Shape) > 0 {
		if len(def.Shape) < 3 {
			return fmt.Errorf("shape needs at least 3 points, got %d", len(def.Shape))
		}
		pg := make(geom.Polygon, len(def.Shape))
		for i, p := range def.Shape {
			pg[i] = geom.Pt(p[0], p[1])
		}
		k.Shape = pg
		k.Rect = pg.Bounds()
		return nil
	}
	if len(def.Rect) != 4 || def.Rect[2] <= 0 || def.Rect[3] <= 0 {
		return ErrBadRect
	}
	k.Rect = geom.R(def.Rect[0], def.Rect[1], def.Rect[2], def.Rect[3])
	return nil
}

func setLabels(k *keyboard.Key, def KeyDef) {
	labels := def.Labels
	if len(labels) == 0 {
		switch {
		case def.Label != "":
			labels = []string{def.Label}
		case def.Char != "":
			labels = []string{def.Char, strings.ToUpper(def.Char)}
		default:
			labels = []string{def.ID}
		}
	}
	for i := 0; i < len(labels) && i < len(k.Labels); i++ {
		k.Labels[i] = labels[i]
	}
}

// Keys returns every key; a key's Ref is its index.
func (l *Layout) Keys() []*keyboard.Key {
	return l.keys
}

// Layers returns the layer names, base layer first.
func (l *Layout) Layers() []string {
	return l.layers
}

// LayerKeys returns the keys of a layer in file order.
func (l *Layout) LayerKeys(layer string) []*keyboard.Key {
	var out []*keyboard.Key
	for _, k := range l.keys {
		if k.Layer == layer {
			out = append(out, k)
		}
	}
	return out
}

// FindIDs returns the keys whose id is one of ids.
func (l *Layout) FindIDs(ids ...string) []*keyboard.Key {
	var out []*keyboard.Key
	for _, k := range l.keys {
		for _, id := range ids {
			if k.ID == id {
				out = append(out, k)
				break
			}
		}
	}
	return out
}

// Warnings returns the problems found while loading.
func (l *Layout) Warnings() []error {
	return l.warnings
}

// Bounds returns the union of all key rectangles.
func (l *Layout) Bounds() geom.Rect {
	var r geom.Rect
	for i, k := range l.keys {
		if i == 0 {
			r = k.Bounds()
			continue
		}
		r = r.Union(k.Bounds())
	}
	return r
}

var _ keyboard.Layout = (*Layout)(nil)
