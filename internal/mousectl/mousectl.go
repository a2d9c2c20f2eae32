// Package mousectl maps the next primary click onto another button or click
// type, either in-process (ClickMapper) or through the Mousetweaks daemon.
package mousectl

import "github.com/dshills/osk/internal/geom"

// Button is a pointer button number.
type Button int

// Pointer buttons.
const (
	Primary   Button = 1
	Middle    Button = 2
	Secondary Button = 3
)

// ClickType selects what a mapped click does.
type ClickType int

// Click types.
const (
	Drag   ClickType = 1
	Double ClickType = 2
	Single ClickType = 3
)

// Controller is the click-mapping interface the keyboard's click buttons
// talk to.
type Controller interface {
	SupportsClickParams(b Button, t ClickType) bool
	// MapPrimaryClick arranges for the next primary click to become a click
	// of button b and type t. Primary+Single cancels any pending mapping.
	MapPrimaryClick(b Button, t ClickType)
	ClickButton() Button
	ClickType() ClickType
	// StateNotifyAdd registers fn to run whenever the mapping state changes
	// outside of a MapPrimaryClick call.
	StateNotifyAdd(fn func())
}

// ClickMapper is the built-in Controller. The host reports primary clicks
// through PrimaryClick; the first one outside the exclusion rectangles is
// rewritten to the selected button and type, after which the mapper resets.
type ClickMapper struct {
	button    Button
	clickType ClickType
	exclude   []geom.Rect
	notify    []func()
}

// NewClickMapper returns a mapper in the primary+single state.
func NewClickMapper() *ClickMapper {
	return &ClickMapper{button: Primary, clickType: Single}
}

// SupportsClickParams accepts every combination.
func (m *ClickMapper) SupportsClickParams(Button, ClickType) bool {
	return true
}

func (m *ClickMapper) MapPrimaryClick(b Button, t ClickType) {
	if b != Primary || t != Single {
		m.button = b
		m.clickType = t
		return
	}
	m.EndMapping()
}

// EndMapping returns to primary+single.
func (m *ClickMapper) EndMapping() {
	m.button = Primary
	m.clickType = Single
}

// Mapping reports whether a click mapping is pending.
func (m *ClickMapper) Mapping() bool {
	return m.button != Primary || m.clickType != Single
}

func (m *ClickMapper) ClickButton() Button {
	return m.button
}

func (m *ClickMapper) ClickType() ClickType {
	return m.clickType
}

func (m *ClickMapper) StateNotifyAdd(fn func()) {
	m.notify = append(m.notify, fn)
}

// SetExclusionRects sets the areas whose clicks are never mapped, usually
// the click-type buttons themselves so a pending mapping can be canceled.
func (m *ClickMapper) SetExclusionRects(rects []geom.Rect) {
	m.exclude = append(m.exclude[:0], rects...)
}

// PrimaryClick translates a primary click at p. It returns the button and
// click type to deliver instead and ends the mapping if one applied.
func (m *ClickMapper) PrimaryClick(p geom.Point) (Button, ClickType) {
	if !m.Mapping() {
		return Primary, Single
	}
	for _, r := range m.exclude {
		if r.Contains(p) {
			return Primary, Single
		}
	}
	b, t := m.button, m.clickType
	m.clickDone()
	return b, t
}

func (m *ClickMapper) clickDone() {
	m.EndMapping()
	for _, fn := range m.notify {
		fn()
	}
}

var _ Controller = (*ClickMapper)(nil)
