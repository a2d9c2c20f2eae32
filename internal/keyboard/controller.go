package keyboard

import (
	"github.com/dshills/osk/internal/event"
	"github.com/dshills/osk/internal/input/pointer"
	"github.com/dshills/osk/internal/mousectl"
)

// Controller drives a button key: it reacts to presses and releases and
// resyncs the key's visible, sensitive, latched and locked flags from the
// state it represents.
type Controller interface {
	Press(button pointer.Button)
	Release(button pointer.Button)
	// Update resyncs the key. It runs on every UpdateUI.
	Update()
	// CanDwell reports whether hovering may activate the key.
	CanDwell() bool
	// LongPress reports whether the controller consumed a long press.
	LongPress(button pointer.Button) bool

	clickButton() bool
}

// newController returns the controller for a button or layer key, or nil.
func newController(kb *Keyboard, k *Key) Controller {
	b := baseController{kb: kb, key: k}
	if n, ok := k.LayerIndex(); ok {
		return &layerController{baseController: b, layer: n}
	}
	if k.Action != ActionButton {
		return nil
	}

	switch k.ID {
	case "singleclick":
		return &clickController{baseController: b, button: mousectl.Primary, clickType: mousectl.Single}
	case "middleclick":
		return &clickController{baseController: b, button: mousectl.Middle, clickType: mousectl.Single}
	case "secondaryclick":
		return &clickController{baseController: b, button: mousectl.Secondary, clickType: mousectl.Single}
	case "doubleclick":
		return &clickController{baseController: b, button: mousectl.Primary, clickType: mousectl.Double}
	case "dragclick":
		return &clickController{baseController: b, button: mousectl.Primary, clickType: mousectl.Drag}
	case "hoverclick":
		return &hoverClickController{b}
	case "hide":
		return &hideController{b}
	case "showclick":
		return &showClickController{b}
	case "move":
		return &moveController{b}
	case "settings":
		return &preferencesController{b}
	case "quit":
		return &quitController{b}
	case "learnmode":
		return &autoLearnController{b}
	case "punctuation":
		return &autoPunctuationController{b}
	case "stealthmode":
		return &stealthModeController{b}
	case "inputline":
		return &inputLineController{b}
	}
	kb.log.Debug("button without controller", "key", k.ID)
	return nil
}

type baseController struct {
	kb  *Keyboard
	key *Key
}

func (c *baseController) Press(pointer.Button)          {}
func (c *baseController) Release(pointer.Button)        {}
func (c *baseController) Update()                       {}
func (c *baseController) CanDwell() bool                { return false }
func (c *baseController) LongPress(pointer.Button) bool { return false }
func (c *baseController) clickButton() bool             { return false }

func (c *baseController) setVisible(v bool) {
	if c.key.Visible != v {
		c.key.Visible = v
		c.kb.redraw(c.key)
	}
}

func (c *baseController) setSensitive(v bool) {
	if c.key.Sensitive != v {
		c.key.Sensitive = v
		c.kb.redraw(c.key)
	}
}

func (c *baseController) setLatched(v bool) {
	if c.key.Latched != v {
		c.key.Latched = v
		c.kb.redraw(c.key)
	}
}

func (c *baseController) setLocked(v bool) {
	if c.key.Locked != v {
		c.key.Locked = v
		c.kb.redraw(c.key)
	}
}

// toggle flips a boolean setting and returns the new value.
func (c *baseController) toggle(path string, cur bool) bool {
	if err := c.kb.settings.Set(path, !cur); err != nil {
		c.kb.log.Warn("toggle setting", "path", path, "error", err)
		return cur
	}
	return !cur
}

// clickController selects the button and click type of the next primary
// click.
type clickController struct {
	baseController
	button    mousectl.Button
	clickType mousectl.ClickType
}

func (c *clickController) clickButton() bool { return true }

func (c *clickController) selected(mc mousectl.Controller) bool {
	return mc.ClickButton() == c.button && mc.ClickType() == c.clickType
}

func (c *clickController) Release(pointer.Button) {
	mc := c.kb.MouseController()
	if c.selected(mc) {
		mc.MapPrimaryClick(mousectl.Primary, mousectl.Single)
		return
	}
	// Clicks on the click buttons themselves stay unmapped so that a
	// pending mapping can always be canceled.
	c.kb.clickMapper.SetExclusionRects(c.kb.ClickTypeButtonRects())
	mc.MapPrimaryClick(c.button, c.clickType)
}

func (c *clickController) Update() {
	mc := c.kb.MouseController()
	c.setLatched(c.selected(mc))
	c.setSensitive(mc.SupportsClickParams(c.button, c.clickType))
}

type hoverClickController struct{ baseController }

func (c *hoverClickController) active() bool {
	return c.kb.mousetweaks != nil && c.kb.mousetweaks.IsActive()
}

func (c *hoverClickController) Release(pointer.Button) {
	if c.kb.mousetweaks == nil {
		return
	}
	active := c.toggle("access.hover_click_enabled", c.active())
	c.kb.mousetweaks.SetActive(active)
}

func (c *hoverClickController) Update() {
	available := c.kb.mousetweaks != nil
	c.setSensitive(available && !c.kb.current().Lockdown.DisableHoverClick)
	// Locked rather than latched for better visibility.
	c.setLocked(c.active())
}

func (c *hoverClickController) CanDwell() bool { return !c.active() }

type hideController struct{ baseController }

func (c *hideController) Release(pointer.Button) {
	c.kb.view.ToggleVisible()
}

type showClickController struct{ baseController }

func (c *showClickController) Release(pointer.Button) {
	c.toggle("keyboard.show_click_buttons", c.kb.current().Keyboard.ShowClickButtons)
}

func (c *showClickController) Update() {
	s := c.kb.current()
	allowed := !s.Lockdown.DisableClickButtons
	c.setVisible(allowed)

	show := s.Keyboard.ShowClickButtons && allowed
	changed := false
	for _, k := range c.kb.layout.Keys() {
		visible := k.Visible
		switch k.Group {
		case "click":
			visible = show
		case "noclick":
			visible = !show
		}
		if visible != k.Visible {
			k.Visible = visible
			changed = true
		}
	}
	if changed {
		c.kb.redraw()
	}
}

func (c *showClickController) CanDwell() bool {
	return c.kb.mousetweaks == nil || !c.kb.mousetweaks.IsActive()
}

type moveController struct{ baseController }

func (c *moveController) Press(pointer.Button) {
	c.kb.view.StartMoveWindow()
}

func (c *moveController) Release(pointer.Button) {
	c.kb.view.StopMoveWindow()
}

func (c *moveController) LongPress(pointer.Button) bool {
	if c.kb.current().Lockdown.DisableTouchHandles {
		return false
	}
	c.kb.view.ShowTouchHandles(true)
	return true
}

func (c *moveController) Update() {
	c.setVisible(!c.kb.current().Window.Decorated)
}

// layerController switches to its layer on release. Releasing the button
// of the active layer locks it, releasing it again returns to the base
// layer.
type layerController struct {
	baseController
	layer int
}

func (c *layerController) Release(pointer.Button) {
	kb := c.kb
	switch {
	case kb.activeLayer != c.layer:
		kb.SetActiveLayer(c.layer)
		kb.layerLocked = false
		kb.redraw()
	case c.layer != 0:
		if !kb.layerLocked && !kb.current().Lockdown.DisableLockedState {
			kb.layerLocked = true
		} else {
			kb.activeLayer = 0
			kb.layerLocked = false
			kb.redraw()
		}
	}
}

func (c *layerController) Update() {
	// Layer 0 never shows latched, it would be lit all the time.
	latched := c.layer != 0 && c.layer == c.kb.activeLayer
	c.setLatched(latched)
	c.setLocked(latched && c.kb.layerLocked)
}

type preferencesController struct{ baseController }

func (c *preferencesController) Release(pointer.Button) {
	c.kb.emit(event.TopicPreferences, nil)
}

func (c *preferencesController) Update() {
	c.setSensitive(!c.kb.current().Lockdown.DisablePreferences)
}

type quitController struct{ baseController }

func (c *quitController) Release(pointer.Button) {
	c.kb.emit(event.TopicQuit, nil)
}

func (c *quitController) Update() {
	c.setSensitive(!c.kb.current().Lockdown.DisableQuit)
}

type autoLearnController struct{ baseController }

func (c *autoLearnController) Release(pointer.Button) {
	p := c.kb.current().Prediction
	on := c.toggle("prediction.auto_learn", p.AutoLearn)
	if !on {
		// Nothing typed so far gets learned.
		c.kb.line.Reset()
	}
	if on && p.StealthMode {
		c.toggle("prediction.stealth_mode", true)
	}
}

func (c *autoLearnController) Update() {
	c.setLatched(c.kb.current().Prediction.AutoLearn)
}

type autoPunctuationController struct{ baseController }

func (c *autoPunctuationController) Release(pointer.Button) {
	c.toggle("prediction.auto_punctuation", c.kb.current().Prediction.AutoPunctuation)
	c.kb.punctuator.Reset()
}

func (c *autoPunctuationController) Update() {
	c.setLatched(c.kb.current().Prediction.AutoPunctuation)
}

type stealthModeController struct{ baseController }

func (c *stealthModeController) Release(pointer.Button) {
	if c.toggle("prediction.stealth_mode", c.kb.current().Prediction.StealthMode) {
		c.kb.line.Reset()
	}
}

func (c *stealthModeController) Update() {
	c.setLatched(c.kb.current().Prediction.StealthMode)
}

type inputLineController struct{ baseController }

func (c *inputLineController) Release(pointer.Button) {
	c.kb.CommitInputLine()
}
