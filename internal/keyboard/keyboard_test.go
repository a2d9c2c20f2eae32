package keyboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/osk/internal/config"
	"github.com/dshills/osk/internal/geom"
	"github.com/dshills/osk/internal/inject"
	"github.com/dshills/osk/internal/input/key"
	"github.com/dshills/osk/internal/input/pointer"
	"github.com/dshills/osk/internal/logging"
	"github.com/dshills/osk/internal/loop"
	"github.com/dshills/osk/internal/mousectl"
	"github.com/dshills/osk/internal/predict"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeLayout struct {
	keys   []*Key
	layers []string
}

func newLayout(layers []string, keys ...*Key) *fakeLayout {
	for i, k := range keys {
		k.Ref = pointer.KeyRef(i)
	}
	return &fakeLayout{keys: keys, layers: layers}
}

func (l *fakeLayout) Keys() []*Key     { return l.keys }
func (l *fakeLayout) Layers() []string { return l.layers }
func (l *fakeLayout) LayerKeys(layer string) []*Key {
	var out []*Key
	for _, k := range l.keys {
		if k.Layer == layer {
			out = append(out, k)
		}
	}
	return out
}

func (l *fakeLayout) FindIDs(ids ...string) []*Key {
	var out []*Key
	for _, k := range l.keys {
		for _, id := range ids {
			if k.ID == id {
				out = append(out, k)
			}
		}
	}
	return out
}

type fakeView struct {
	redraws      int
	full         int
	toggles      int
	moving       bool
	handles      bool
	alternatives []string
}

func (v *fakeView) Redraw(keys ...*Key) {
	v.redraws++
	if len(keys) == 0 {
		v.full++
	}
}
func (v *fakeView) ToggleVisible()          { v.toggles++ }
func (v *fakeView) StartMoveWindow()        { v.moving = true }
func (v *fakeView) StopMoveWindow()         { v.moving = false }
func (v *fakeView) ShowTouchHandles(s bool) { v.handles = s }
func (v *fakeView) ShowAlternatives(_ *Key, alts []string) {
	v.alternatives = alts
}

type fakePredictor struct {
	words   []string
	learned []string
}

func (p *fakePredictor) Predict(context string) []string {
	prefix := predict.LastContextToken(context)
	if prefix == "" {
		return nil
	}
	var out []string
	for _, w := range p.words {
		if len(w) > len(prefix) && w[:len(prefix)] == prefix {
			out = append(out, w)
		}
	}
	return out
}

func (p *fakePredictor) WordInfos(string) []predict.WordInfo { return nil }

func (p *fakePredictor) LearnText(text string, _ bool) error {
	p.learned = append(p.learned, text)
	return nil
}

type fixture struct {
	kb     *Keyboard
	rec    *inject.Recorder
	sched  *loop.Manual
	cfg    *config.Config
	view   *fakeView
	layout *fakeLayout
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.New(
		config.WithConfigDir(dir),
		config.WithDataDir(dir),
		config.WithWatcher(false),
		config.WithEnv(false),
		config.WithLogger(logging.Discard()),
	)
}

// newFixture builds a keyboard over layout. Settings are applied before
// the keyboard is created.
func newFixture(t *testing.T, layout *fakeLayout, settings map[string]any, opts ...Option) *fixture {
	t.Helper()
	cfg := newTestConfig(t)
	for path, v := range settings {
		require.NoError(t, cfg.Set(path, v), path)
	}
	f := &fixture{
		rec:    &inject.Recorder{},
		sched:  loop.NewManual(epoch),
		cfg:    cfg,
		view:   &fakeView{},
		layout: layout,
	}
	opts = append([]Option{WithLogger(logging.Discard()), WithView(f.view)}, opts...)
	f.kb = New(layout, f.rec, f.sched, cfg, opts...)
	return f
}

// tap runs a full press and release of k with the primary button.
func (f *fixture) tap(k *Key) {
	f.kb.PressKey(k, pointer.ButtonPrimary)
	f.kb.ReleaseKey(k, pointer.ButtonPrimary)
	f.sched.Flush()
}

func at(k *Key, x, y float64) *Key {
	k.Rect = geom.R(x, y, 10, 10)
	return k
}

func charKey(id, char string) *Key {
	k := NewKey(id)
	k.Action = ActionChar
	k.Char = char
	k.Labels[LabelBase] = char
	return k
}

func keycodeKey(id string, code int, label, shifted string) *Key {
	k := NewKey(id)
	k.Action = ActionKeycode
	k.Keycode = code
	k.Labels[LabelBase] = label
	k.Labels[LabelShift] = shifted
	return k
}

func keysymKey(id string, ks key.Keysym) *Key {
	k := NewKey(id)
	k.Action = ActionKeysym
	k.Keysym = ks
	return k
}

func modKey(id string, m key.Modifier) *Key {
	k := NewKey(id)
	k.Action = ActionModifier
	k.Modifier = m
	k.Sticky = true
	return k
}

func buttonKey(id string) *Key {
	k := NewKey(id)
	k.Action = ActionButton
	return k
}

func TestKeyAtHonorsLayersAndOrder(t *testing.T) {
	base := at(charKey("a", "a"), 0, 0)
	base.Layer = "base"
	num := at(charKey("1", "1"), 0, 0)
	num.Layer = "num"
	global := at(buttonKey("hide"), 20, 0)
	over := at(charKey("b", "b"), 20, 0)
	over.Layer = "base"

	f := newFixture(t, newLayout([]string{"base", "num"}, base, num, global, over), nil)
	kb := f.kb

	assert.Equal(t, base, kb.KeyAt(geom.Pt(5, 5)))
	// Layer keys win over keys outside all layers.
	assert.Equal(t, over, kb.KeyAt(geom.Pt(25, 5)))
	assert.Nil(t, kb.KeyAt(geom.Pt(50, 50)))

	kb.SetActiveLayer(1)
	assert.Equal(t, num, kb.KeyAt(geom.Pt(5, 5)))
	assert.Equal(t, global, kb.KeyAt(geom.Pt(25, 5)))

	kb.SetActiveLayer(7)
	assert.Equal(t, 0, kb.ActiveLayerIndex())
	assert.Equal(t, "base", kb.ActiveLayer())
}

func TestKeyAtSkipsHiddenAndDegenerateKeys(t *testing.T) {
	hidden := at(charKey("a", "a"), 0, 0)
	hidden.Visible = false
	flat := charKey("b", "b")
	flat.Shape = geom.Polygon{geom.Pt(20, 5), geom.Pt(30, 5), geom.Pt(40, 5)}
	enter := charKey("c", "c")
	enter.Shape = geom.Polygon{
		geom.Pt(40, 0), geom.Pt(60, 0), geom.Pt(60, 20), geom.Pt(50, 20), geom.Pt(50, 10), geom.Pt(40, 10),
	}

	f := newFixture(t, newLayout(nil, hidden, flat, enter), nil)
	assert.Nil(t, f.kb.KeyAt(geom.Pt(5, 5)))
	assert.Nil(t, f.kb.KeyAt(geom.Pt(25, 5)))
	assert.Equal(t, enter, f.kb.KeyAt(geom.Pt(55, 15)))
	assert.Nil(t, f.kb.KeyAt(geom.Pt(45, 15)))
}

func TestKeyResolvesRefs(t *testing.T) {
	a := charKey("a", "a")
	f := newFixture(t, newLayout(nil, a), nil)
	assert.Equal(t, a, f.kb.Key(a.Ref))
	assert.Nil(t, f.kb.Key(pointer.NoKey))
	assert.Nil(t, f.kb.Key(5))
}

func TestAutoReleaseReleasesStuckKeys(t *testing.T) {
	shift := modKey("LFSH", key.ModShift)
	caps := modKey("CAPS", key.ModCaps)
	f := newFixture(t, newLayout(nil, shift, caps), map[string]any{
		"keyboard.sticky_key_release_delay": 2.0,
	})

	f.kb.KeyDown(shift, nil, true)
	f.kb.KeyUp(shift, nil, true)
	f.kb.KeyDown(caps, nil, true)
	f.kb.KeyUp(caps, nil, true)
	require.True(t, f.kb.HasStuckKeys())

	f.sched.Advance(time.Second)
	assert.True(t, f.kb.HasStuckKeys())

	f.sched.Advance(1500 * time.Millisecond)
	assert.False(t, f.kb.HasStuckKeys())
	assert.False(t, shift.Latched)
	assert.False(t, caps.Locked)
	assert.Equal(t, f.rec.Count(inject.LockMod), f.rec.Count(inject.UnlockMod))
	assert.Zero(t, f.kb.Mods().Mask())
}

func TestAutoReleaseDisabledByDefault(t *testing.T) {
	shift := modKey("LFSH", key.ModShift)
	f := newFixture(t, newLayout(nil, shift), nil)
	f.kb.KeyDown(shift, nil, true)
	f.kb.KeyUp(shift, nil, true)
	f.sched.Advance(time.Hour)
	assert.True(t, shift.Latched)
}

func TestCleanupReleasesEverything(t *testing.T) {
	shift := modKey("LFSH", key.ModShift)
	caps := modKey("CAPS", key.ModCaps)
	enter := keysymKey("RTRN", key.KeysymReturn)
	f := newFixture(t, newLayout(nil, shift, caps, enter), nil)

	f.tap(shift)
	f.tap(caps)
	f.kb.KeyDown(enter, nil, true)
	require.True(t, enter.Pressed)

	f.kb.Cleanup()
	assert.False(t, f.kb.HasStuckKeys())
	assert.False(t, enter.Pressed)
	assert.Equal(t, 1, f.rec.Count(inject.ReleaseKeysym))
	assert.Equal(t, f.rec.Count(inject.LockMod), f.rec.Count(inject.UnlockMod))
	assert.Zero(t, f.kb.Mods().Mask())
}

func TestOutsideClickReleasesLatchedKeys(t *testing.T) {
	shift := modKey("LFSH", key.ModShift)
	f := newFixture(t, newLayout(nil, shift), nil)
	f.tap(shift)

	f.kb.ClickMapper().MapPrimaryClick(mousectl.Secondary, mousectl.Single)
	f.kb.OnOutsideClick()
	assert.True(t, shift.Latched, "pending click mapping keeps modifiers")

	f.kb.ClickMapper().EndMapping()
	f.kb.OnOutsideClick()
	assert.False(t, shift.Latched)
}

func TestSetLayoutCleansUpOldLayout(t *testing.T) {
	shift := modKey("LFSH", key.ModShift)
	f := newFixture(t, newLayout(nil, shift), nil)
	f.tap(shift)

	f.kb.SetLayout(newLayout(nil, charKey("a", "a")))
	assert.False(t, shift.Latched)
	assert.Equal(t, 1, f.rec.Count(inject.UnlockMod))
	assert.Empty(t, f.kb.LatchedKeys())
}
