package keyboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/osk/internal/geom"
	"github.com/dshills/osk/internal/input/key"
	"github.com/dshills/osk/internal/input/pointer"
)

// ActionType selects what a key does when pressed.
type ActionType uint8

const (
	// ActionNone marks an inert key.
	ActionNone ActionType = iota
	ActionChar
	ActionKeysym
	ActionKeycode
	ActionModifier
	ActionMacro
	ActionScript
	ActionKeypressName
	ActionButton
	ActionWord
)

var actionNames = map[ActionType]string{
	ActionNone:         "none",
	ActionChar:         "char",
	ActionKeysym:       "keysym",
	ActionKeycode:      "keycode",
	ActionModifier:     "modifier",
	ActionMacro:        "macro",
	ActionScript:       "script",
	ActionKeypressName: "keypress_name",
	ActionButton:       "button",
	ActionWord:         "word",
}

// String returns the layout name of the action type.
func (a ActionType) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return fmt.Sprintf("ActionType(%d)", a)
}

// ParseActionType resolves a layout action type name.
func ParseActionType(s string) (ActionType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for a, name := range actionNames {
		if name == s {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// injects reports whether the action type produces OS-level key events.
func (a ActionType) injects() bool {
	switch a {
	case ActionChar, ActionKeysym, ActionKeypressName, ActionKeycode:
		return true
	}
	return false
}

// Label indexes.
const (
	LabelBase = iota
	LabelShift
	LabelCaps
	LabelAltGr
	LabelAltGrShift
	numLabels
)

// Key is one key of the layout. Keys are created by the layout loader and
// mutated only on the event loop.
type Key struct {
	// Ref is the key's index in the layout's key table.
	Ref pointer.KeyRef
	ID  string
	// Layer is the layer the key belongs to, empty for keys shown on
	// every layer.
	Layer string
	Group string

	Action   ActionType
	Char     string
	Keysym   key.Keysym
	Keycode  int
	Modifier key.Modifier
	Snippet  int
	Script   string
	Word     int

	Labels     [numLabels]string
	LabelIndex int
	Tooltip    string

	// Alternatives are offered in a popup on long press.
	Alternatives []string

	Rect  geom.Rect
	Shape geom.Polygon

	Pressed   bool
	Sensitive bool
	Visible   bool
	Sticky    bool
	Latched   bool
	Locked    bool
	Scanned   bool
	// Activated is set once the key's press action has been sent.
	Activated bool

	dwellStart time.Time
	dwellDelay time.Duration
}

// NewKey returns a visible, sensitive, inert key.
func NewKey(id string) *Key {
	return &Key{
		Ref:       pointer.NoKey,
		ID:        id,
		Visible:   true,
		Sensitive: true,
	}
}

func (k *Key) String() string {
	return k.ID
}

// Label returns the label currently displayed.
func (k *Key) Label() string {
	return k.Labels[k.LabelIndex]
}

// ConfigureLabel picks the label variant for the given modifier counts.
func (k *Key) ConfigureLabel(mods Modifiers) {
	switch {
	case mods.Active(key.ModShift):
		switch {
		case mods.Active(key.ModAltGr) && k.Labels[LabelAltGrShift] != "":
			k.LabelIndex = LabelAltGrShift
		case k.Labels[LabelCaps] != "":
			k.LabelIndex = LabelCaps
		case k.Labels[LabelShift] != "":
			k.LabelIndex = LabelShift
		default:
			k.LabelIndex = LabelBase
		}
	case mods.Active(key.ModAltGr) && k.Labels[LabelAltGr] != "":
		k.LabelIndex = LabelAltGr
	case mods.Active(key.ModCaps) && k.Labels[LabelShift] != "":
		k.LabelIndex = LabelShift
	default:
		k.LabelIndex = LabelBase
	}
}

// IsLayerButton reports whether the key switches layers.
func (k *Key) IsLayerButton() bool {
	_, ok := k.LayerIndex()
	return ok
}

// LayerIndex returns the layer a layer button switches to.
func (k *Key) LayerIndex() (int, bool) {
	rest, ok := strings.CutPrefix(k.ID, "layer")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Bounds returns the key's canvas rectangle.
func (k *Key) Bounds() geom.Rect {
	if len(k.Shape) > 0 {
		return k.Shape.Bounds()
	}
	return k.Rect
}

// Contains hit-tests p against the key's outline. A degenerate shape
// returns geom.ErrDegenerateShape and is outside.
func (k *Key) Contains(p geom.Point) (bool, error) {
	if len(k.Shape) > 0 {
		return k.Shape.Contains(p)
	}
	return k.Rect.Contains(p), nil
}

// StartDwelling begins the dwell countdown.
func (k *Key) StartDwelling(now time.Time, delay time.Duration) {
	k.dwellStart = now
	k.dwellDelay = delay
}

// StopDwelling clears the dwell countdown.
func (k *Key) StopDwelling() {
	k.dwellStart = time.Time{}
}

// IsDwelling reports whether a dwell countdown runs.
func (k *Key) IsDwelling() bool {
	return !k.dwellStart.IsZero()
}

// DwellProgress returns the countdown progress in [0,1].
func (k *Key) DwellProgress(now time.Time) float64 {
	if !k.IsDwelling() {
		return 0
	}
	if k.dwellDelay <= 0 {
		return 1
	}
	p := float64(now.Sub(k.dwellStart)) / float64(k.dwellDelay)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// DwellDone reports whether the countdown has run out.
func (k *Key) DwellDone(now time.Time) bool {
	return k.IsDwelling() && !now.Before(k.dwellStart.Add(k.dwellDelay))
}
