package keyboard

import (
	"errors"

	"github.com/google/uuid"

	"github.com/dshills/osk/internal/config"
	"github.com/dshills/osk/internal/event"
	"github.com/dshills/osk/internal/geom"
	"github.com/dshills/osk/internal/inject"
	"github.com/dshills/osk/internal/input/pointer"
	"github.com/dshills/osk/internal/logging"
	"github.com/dshills/osk/internal/loop"
	"github.com/dshills/osk/internal/mousectl"
	"github.com/dshills/osk/internal/predict"
	"github.com/dshills/osk/internal/punctuate"
	"github.com/dshills/osk/internal/snippet"
	"github.com/dshills/osk/internal/textline"
)

// Layout provides the keys of the loaded layout.
type Layout interface {
	// Keys returns every key; a key's Ref is its index.
	Keys() []*Key
	// Layers returns the layer names, base layer first.
	Layers() []string
	// LayerKeys returns the keys of a layer in drawing order. The empty
	// layer name selects the keys that belong to no layer.
	LayerKeys(layer string) []*Key
	// FindIDs returns the keys whose id is one of ids.
	FindIDs(ids ...string) []*Key
}

// View is the widget side of the keyboard.
type View interface {
	// Redraw invalidates keys. No keys means everything.
	Redraw(keys ...*Key)
	ToggleVisible()
	StartMoveWindow()
	StopMoveWindow()
	ShowTouchHandles(show bool)
	ShowAlternatives(k *Key, alternatives []string)
}

// Settings is the configuration the keyboard reads and the toggle buttons
// write.
type Settings interface {
	Current() *config.Settings
	Set(path string, value any) error
}

// Predictor suggests words. It is optional.
type Predictor interface {
	Predict(context string) []string
	WordInfos(line string) []predict.WordInfo
	LearnText(text string, allowNew bool) error
}

// Mousetweaks is the hover-click daemon client.
type Mousetweaks interface {
	mousectl.Controller
	IsActive() bool
	SetActive(active bool)
}

// Snippets looks up macro texts.
type Snippets interface {
	Get(id int) (snippet.Snippet, bool)
}

// ScriptRunner runs external scripts.
type ScriptRunner interface {
	Run(name string) (uuid.UUID, error)
}

// Keyboard holds the modifier and sticky key state of a layout and sends
// the resulting input. All methods must be called on the event loop.
type Keyboard struct {
	log      *logging.Logger
	sched    loop.Scheduler
	settings Settings
	layout   Layout
	view     View
	vk       *inject.Locking
	bus      *event.Bus

	clickMapper *mousectl.ClickMapper
	mousetweaks Mousetweaks
	predictor   Predictor
	predicting  bool
	snippets    Snippets
	scripts     ScriptRunner

	mods        Modifiers
	latched     []*Key
	locked      []*Key
	controllers map[*Key]Controller

	activeLayer    int
	layerLocked    bool
	altLocked      bool
	editingSnippet bool
	capsKeys       []*Key
	capsShift      bool

	line        *textline.Line
	punctuator  *punctuate.Punctuator
	wordChoices []string
	wordInfos   []predict.WordInfo

	autoRelease loop.Timer
}

// Option configures a Keyboard.
type Option func(*Keyboard)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(k *Keyboard) {
		k.log = logging.OrDefault(l).WithComponent("keyboard")
	}
}

// WithView sets the widget.
func WithView(v View) Option {
	return func(k *Keyboard) {
		k.view = v
	}
}

// WithBus sets the bus for quit, preferences and snippet edit requests.
func WithBus(b *event.Bus) Option {
	return func(k *Keyboard) {
		k.bus = b
	}
}

// WithClickMapper replaces the built-in click mapper.
func WithClickMapper(m *mousectl.ClickMapper) Option {
	return func(k *Keyboard) {
		k.clickMapper = m
	}
}

// WithMousetweaks enables hover click through the daemon.
func WithMousetweaks(mt Mousetweaks) Option {
	return func(k *Keyboard) {
		k.mousetweaks = mt
	}
}

// WithPredictor enables word prediction.
func WithPredictor(p Predictor) Option {
	return func(k *Keyboard) {
		k.predictor = p
	}
}

// WithSnippets sets the snippet store.
func WithSnippets(s Snippets) Option {
	return func(k *Keyboard) {
		k.snippets = s
	}
}

// WithScripts sets the script runner.
func WithScripts(r ScriptRunner) Option {
	return func(k *Keyboard) {
		k.scripts = r
	}
}

// New creates a keyboard for layout that injects into sink.
func New(layout Layout, sink inject.Sink, sched loop.Scheduler, settings Settings, opts ...Option) *Keyboard {
	k := &Keyboard{
		log:         logging.Default().WithComponent("keyboard"),
		sched:       sched,
		settings:    settings,
		vk:          inject.NewLocking(sink),
		clickMapper: mousectl.NewClickMapper(),
		controllers: make(map[*Key]Controller),
		line:        textline.New(),
		punctuator:  punctuate.New(),
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.view == nil {
		k.view = nopView{}
	}
	k.clickMapper.StateNotifyAdd(k.UpdateUI)
	if k.mousetweaks != nil {
		k.mousetweaks.StateNotifyAdd(k.UpdateUI)
	}
	k.SetLayout(layout)
	return k
}

// SetView replaces the widget.
func (k *Keyboard) SetView(v View) {
	if v == nil {
		v = nopView{}
	}
	k.view = v
}

// SetLayout switches to a new layout. Stuck keys of the old layout are
// released first.
func (k *Keyboard) SetLayout(layout Layout) {
	if k.layout != nil {
		k.Cleanup()
	}
	k.layout = layout
	k.controllers = make(map[*Key]Controller)
	k.latched = nil
	k.locked = nil
	k.mods = Modifiers{}
	if layout == nil {
		return
	}

	for _, key := range layout.Keys() {
		if c := newController(k, key); c != nil {
			k.controllers[key] = c
		}
		key.ConfigureLabel(k.mods)
	}
	k.EnableWordPrediction(k.settings.Current().Prediction.Enabled)
	k.assureValidActiveLayer()
	k.UpdateUI()
}

// Layout returns the current layout.
func (k *Keyboard) Layout() Layout {
	return k.layout
}

func (k *Keyboard) current() *config.Settings {
	return k.settings.Current()
}

// Key resolves a key reference. Stale references resolve to nil.
func (k *Keyboard) Key(ref pointer.KeyRef) *Key {
	if k.layout == nil || !ref.Valid() {
		return nil
	}
	keys := k.layout.Keys()
	if int(ref) >= len(keys) {
		return nil
	}
	return keys[ref]
}

// Controller returns the button controller of a key, if it has one.
func (k *Keyboard) Controller(key *Key) Controller {
	return k.controllers[key]
}

// Mods returns the modifier counts.
func (k *Keyboard) Mods() Modifiers {
	return k.mods
}

// LatchedKeys returns the keys latched but not locked.
func (k *Keyboard) LatchedKeys() []*Key {
	return append([]*Key(nil), k.latched...)
}

// LockedKeys returns the locked keys.
func (k *Keyboard) LockedKeys() []*Key {
	return append([]*Key(nil), k.locked...)
}

// HasStuckKeys reports whether any sticky key is latched or locked.
func (k *Keyboard) HasStuckKeys() bool {
	return len(k.latched) > 0 || len(k.locked) > 0
}

// InputLine returns the tracked input line.
func (k *Keyboard) InputLine() *textline.Line {
	return k.line
}

// WordChoices returns the current word predictions.
func (k *Keyboard) WordChoices() []string {
	return k.wordChoices
}

// EditingSnippet reports whether a snippet edit is pending.
func (k *Keyboard) EditingSnippet() bool {
	return k.editingSnippet
}

// FinishSnippetEdit ends a pending snippet edit.
func (k *Keyboard) FinishSnippetEdit() {
	k.editingSnippet = false
}

// Layers returns the layer names.
func (k *Keyboard) Layers() []string {
	if k.layout == nil {
		return nil
	}
	return k.layout.Layers()
}

// ActiveLayerIndex returns the index of the active layer.
func (k *Keyboard) ActiveLayerIndex() int {
	return k.activeLayer
}

// ActiveLayer returns the name of the active layer.
func (k *Keyboard) ActiveLayer() string {
	layers := k.Layers()
	if len(layers) == 0 {
		return ""
	}
	i := k.activeLayer
	if i < 0 || i >= len(layers) {
		i = 0
	}
	return layers[i]
}

// SetActiveLayer switches layers. Out of range indexes select the base
// layer.
func (k *Keyboard) SetActiveLayer(i int) {
	k.activeLayer = i
	k.assureValidActiveLayer()
}

// LayerLocked reports whether the active layer stays after key presses.
func (k *Keyboard) LayerLocked() bool {
	return k.layerLocked
}

func (k *Keyboard) assureValidActiveLayer() {
	if k.activeLayer < 0 || k.activeLayer >= len(k.Layers()) {
		k.activeLayer = 0
	}
}

// KeyAt returns the topmost visible key at p. Keys of the active layer win
// over keys outside all layers.
func (k *Keyboard) KeyAt(p geom.Point) *Key {
	if k.layout == nil {
		return nil
	}
	layers := []string{""}
	if active := k.ActiveLayer(); active != "" {
		layers = []string{active, ""}
	}
	for _, layer := range layers {
		keys := k.layout.LayerKeys(layer)
		for i := len(keys) - 1; i >= 0; i-- {
			key := keys[i]
			if !key.Visible {
				continue
			}
			in, err := key.Contains(p)
			if err != nil {
				k.log.Debug("hit test", "key", key.ID, "error", err)
				continue
			}
			if in {
				return key
			}
		}
	}
	return nil
}

// VisibleKeys returns the keys to draw: the active layer and the keys
// outside all layers.
func (k *Keyboard) VisibleKeys() []*Key {
	if k.layout == nil {
		return nil
	}
	var out []*Key
	add := func(keys []*Key) {
		for _, key := range keys {
			if key.Visible {
				out = append(out, key)
			}
		}
	}
	if layer := k.ActiveLayer(); layer != "" {
		add(k.layout.LayerKeys(layer))
	}
	add(k.layout.LayerKeys(""))
	return out
}

// FindKeys returns the keys with the given ids.
func (k *Keyboard) FindKeys(ids ...string) []*Key {
	if k.layout == nil {
		return nil
	}
	return k.layout.FindIDs(ids...)
}

// MouseController returns Mousetweaks while it is active, else the
// built-in click mapper.
func (k *Keyboard) MouseController() mousectl.Controller {
	if k.mousetweaks != nil && k.mousetweaks.IsActive() {
		return k.mousetweaks
	}
	return k.clickMapper
}

// ClickMapper returns the built-in click mapper.
func (k *Keyboard) ClickMapper() *mousectl.ClickMapper {
	return k.clickMapper
}

// ClickTypeButtonRects returns the rectangles of the click type buttons.
func (k *Keyboard) ClickTypeButtonRects() []geom.Rect {
	var rects []geom.Rect
	for key, c := range k.controllers {
		if c.clickButton() {
			rects = append(rects, key.Bounds())
		}
	}
	return rects
}

func (k *Keyboard) redraw(keys ...*Key) {
	k.view.Redraw(keys...)
}

func (k *Keyboard) onModsChanged() {
	if k.layout != nil {
		for _, key := range k.layout.Keys() {
			key.ConfigureLabel(k.mods)
		}
	}
	k.redraw()
}

// UpdateUI resyncs button controllers, the input line and the word keys.
func (k *Keyboard) UpdateUI() {
	if k.layout == nil {
		return
	}
	for _, key := range k.layout.Keys() {
		if c := k.controllers[key]; c != nil {
			c.Update()
		}
	}
	k.updateInputLine()
	k.updateWordKeys()
}

// OnOutsideClick handles a click outside the keyboard window.
func (k *Keyboard) OnOutsideClick() {
	// Keep modifiers for a pending mapped click.
	if k.MouseController().ClickButton() == mousectl.Primary {
		k.ReleaseLatchedStickyKeys()
		k.releaseCapsShift()
	}
	k.CommitInputLine()
	k.UpdateUI()
}

// OnCancelOutsideClick runs when outside-click polling gave up.
func (k *Keyboard) OnCancelOutsideClick() {
	k.log.Debug("outside click polling timed out")
}

// StartAutoRelease (re)starts the timer that releases stuck keys after the
// configured delay. A zero delay disables it.
func (k *Keyboard) StartAutoRelease() {
	k.StopAutoRelease()
	delay := k.current().Keyboard.StickyKeyReleaseDelay
	if delay <= 0 {
		return
	}
	k.autoRelease = k.sched.After(delay, k.onAutoRelease)
}

// StopAutoRelease cancels the auto-release timer.
func (k *Keyboard) StopAutoRelease() {
	if k.autoRelease != nil {
		k.autoRelease.Stop()
		k.autoRelease = nil
	}
}

func (k *Keyboard) onAutoRelease() {
	k.autoRelease = nil
	k.log.Debug("auto-releasing sticky keys")
	k.ReleaseLatchedStickyKeys()
	k.ReleaseLockedStickyKeys()
	k.releaseCapsShift()
	k.activeLayer = 0
	k.layerLocked = false
	k.UpdateUI()
	k.redraw()
}

// Cleanup releases everything the keyboard may still hold in the input
// system: latched and locked sticky keys, pressed keys that inject OS
// input, and modifier locks.
func (k *Keyboard) Cleanup() {
	k.StopAutoRelease()
	k.ReleaseLatchedStickyKeys()
	k.ReleaseLockedStickyKeys()
	k.releaseCapsShift()

	if k.layout != nil {
		for _, key := range k.layout.Keys() {
			if key.Pressed && key.Action.injects() {
				k.log.Debug("releasing still pressed key", "key", key.ID)
				k.sendRelease(key, pointer.ButtonPrimary)
				key.Pressed = false
			}
		}
	}
	if err := k.vk.ReleaseAll(); err != nil {
		k.log.Warn("releasing modifier locks", "error", err)
	}
	k.altLocked = false
}

// warn logs injection errors. Injection failures never stop the keyboard.
func (k *Keyboard) warn(what string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, inject.ErrUnmappable) {
		k.log.Debug(what, "error", err)
		return
	}
	k.log.Warn(what, "error", err)
}

func (k *Keyboard) emit(t event.Topic, payload any) {
	if k.bus == nil {
		k.log.Debug("no bus for event", "topic", t)
		return
	}
	k.bus.Emit(t, payload, "keyboard")
}

type nopView struct{}

func (nopView) Redraw(...*Key)                  {}
func (nopView) ToggleVisible()                  {}
func (nopView) StartMoveWindow()                {}
func (nopView) StopMoveWindow()                 {}
func (nopView) ShowTouchHandles(bool)           {}
func (nopView) ShowAlternatives(*Key, []string) {}
