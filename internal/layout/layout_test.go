package layout

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/osk/internal/event"
	"github.com/dshills/osk/internal/geom"
	"github.com/dshills/osk/internal/input/key"
	"github.com/dshills/osk/internal/input/pointer"
	"github.com/dshills/osk/internal/keyboard"
	"github.com/dshills/osk/internal/logging"
)

const small = `
name: small
layers: [base, symbols]
keys:
  - {id: a, layer: base, char: a, rect: [0, 0, 10, 10], alternatives: [à, á]}
  - {id: one, layer: symbols, char: "1", labels: ["1"], rect: [0, 0, 10, 10]}
  - {id: LFSH, modifier: shift, label: shift, rect: [0, 10, 20, 10]}
  - {id: RTRN, keysym: Return, rect: [20, 10, 10, 10]}
  - {id: layer1, layer: base, label: "?123", rect: [30, 10, 10, 10]}
  - {id: layer0, layer: symbols, label: abc, rect: [30, 10, 10, 10]}
  - {id: tri, char: t, shape: [[40, 0], [50, 0], [45, 10]]}
  - {id: word0, rect: [10, 0, 10, 10]}
  - {id: move, rect: [20, 0, 10, 10]}
  - {id: snip, snippet: 2, rect: [50, 0, 10, 10]}
  - {id: kc, keycode: 38, rect: [50, 10, 10, 10], sticky: true}
`

func parse(t *testing.T, doc string) *Layout {
	t.Helper()
	l, err := Parse([]byte(doc), logging.Discard())
	require.NoError(t, err)
	return l
}

func TestParse(t *testing.T) {
	l := parse(t, small)

	assert.Equal(t, "small", l.Name)
	assert.Equal(t, []string{"base", "symbols"}, l.Layers())
	assert.Empty(t, l.Warnings())
	require.Len(t, l.Keys(), 11)
	for i, k := range l.Keys() {
		assert.Equal(t, pointer.KeyRef(i), k.Ref)
	}

	a := l.FindIDs("a")[0]
	assert.Equal(t, keyboard.ActionChar, a.Action)
	assert.Equal(t, "a", a.Char)
	assert.Equal(t, "a", a.Labels[keyboard.LabelBase])
	assert.Equal(t, "A", a.Labels[keyboard.LabelShift])
	assert.Equal(t, []string{"à", "á"}, a.Alternatives)
	assert.Equal(t, geom.R(0, 0, 10, 10), a.Rect)

	shift := l.FindIDs("LFSH")[0]
	assert.Equal(t, keyboard.ActionModifier, shift.Action)
	assert.Equal(t, key.ModShift, shift.Modifier)
	assert.True(t, shift.Sticky)
	assert.Equal(t, "shift", shift.Label())

	rtrn := l.FindIDs("RTRN")[0]
	assert.Equal(t, keyboard.ActionKeysym, rtrn.Action)
	assert.Equal(t, key.KeysymReturn, rtrn.Keysym)

	word := l.FindIDs("word0")[0]
	assert.Equal(t, keyboard.ActionWord, word.Action)
	assert.Equal(t, 0, word.Word)

	assert.Equal(t, keyboard.ActionButton, l.FindIDs("move")[0].Action)
	assert.Equal(t, keyboard.ActionMacro, l.FindIDs("snip")[0].Action)
	assert.Equal(t, 2, l.FindIDs("snip")[0].Snippet)

	kc := l.FindIDs("kc")[0]
	assert.Equal(t, keyboard.ActionKeycode, kc.Action)
	assert.True(t, kc.Sticky)
}

func TestLayerButtonsAreButtons(t *testing.T) {
	l := parse(t, small)
	for _, k := range l.FindIDs("layer0", "layer1") {
		assert.Equal(t, keyboard.ActionButton, k.Action, k.ID)
		assert.True(t, k.IsLayerButton())
	}
}

func TestLayerKeys(t *testing.T) {
	l := parse(t, small)

	ids := func(keys []*keyboard.Key) []string {
		var out []string
		for _, k := range keys {
			out = append(out, k.ID)
		}
		return out
	}
	assert.Equal(t, []string{"a", "layer1"}, ids(l.LayerKeys("base")))
	assert.Equal(t, []string{"one", "layer0"}, ids(l.LayerKeys("symbols")))
	assert.Contains(t, ids(l.LayerKeys("")), "LFSH")
}

func TestPolygonShape(t *testing.T) {
	l := parse(t, small)
	tri := l.FindIDs("tri")[0]

	require.Len(t, tri.Shape, 3)
	assert.Equal(t, geom.R(40, 0, 10, 10), tri.Rect)
	in, err := tri.Contains(geom.Pt(45, 5))
	require.NoError(t, err)
	assert.True(t, in)
	in, _ = tri.Contains(geom.Pt(41, 9))
	assert.False(t, in)
}

func TestBadKeysAreInert(t *testing.T) {
	tests := []struct {
		name string
		def  string
		want error
	}{
		{"unknown modifier", `{id: X, modifier: hyper, rect: [0, 0, 1, 1]}`, key.ErrUnknownModifier},
		{"unknown keysym", `{id: X, keysym: nosuchkey, rect: [0, 0, 1, 1]}`, key.ErrUnknownKeysym},
		{"unknown action", `{id: X, action: teleport, rect: [0, 0, 1, 1]}`, keyboard.ErrUnknownAction},
		{"missing char", `{id: X, action: char, rect: [0, 0, 1, 1]}`, ErrMissingField},
		{"bad rect", `{id: X, char: x, rect: [0, 0, 0, 1]}`, ErrBadRect},
		{"unknown layer", `{id: X, layer: nope, char: x, rect: [0, 0, 1, 1]}`, ErrUnknownLayer},
		{"layer out of range", `{id: layer5, rect: [0, 0, 1, 1]}`, ErrUnknownLayer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := "layers: [base]\nkeys:\n  - {id: ok, char: o, rect: [0, 0, 1, 1]}\n  - " + tt.def + "\n"
			l := parse(t, doc)

			require.Len(t, l.Keys(), 2)
			assert.Equal(t, keyboard.ActionChar, l.Keys()[0].Action)
			assert.Equal(t, keyboard.ActionNone, l.Keys()[1].Action)

			require.Len(t, l.Warnings(), 1)
			var kerr *KeyError
			require.ErrorAs(t, l.Warnings()[0], &kerr)
			assert.Equal(t, 1, kerr.Index)
			assert.ErrorIs(t, kerr, tt.want)
		})
	}
}

func TestDuplicateIDs(t *testing.T) {
	l := parse(t, `
layers: [base, symbols]
keys:
  - {id: a, layer: base, char: a, rect: [0, 0, 1, 1]}
  - {id: a, layer: symbols, char: a, rect: [0, 0, 1, 1]}
  - {id: a, layer: base, char: b, rect: [1, 0, 1, 1]}
`)
	require.Len(t, l.Warnings(), 1)
	assert.ErrorIs(t, l.Warnings()[0], ErrDuplicateID)
	assert.Equal(t, keyboard.ActionNone, l.Keys()[2].Action)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("keys: [\n"), logging.Discard())
	assert.Error(t, err)

	_, err = Parse([]byte("name: empty\n"), logging.Discard())
	assert.ErrorIs(t, err, ErrNoKeys)
}

func TestDefaultLayout(t *testing.T) {
	l := Default(logging.Discard())

	assert.Empty(t, l.Warnings())
	assert.Equal(t, []string{"base", "symbols"}, l.Layers())
	for _, id := range []string{"LFSH", "BKSP", "RTRN", "SPCE", "move", "hide", "showclick", "layer0", "layer1", "word0"} {
		assert.Len(t, l.FindIDs(id), 1, id)
	}
	b := l.Bounds()
	assert.Equal(t, 0.0, b.X)
	assert.Equal(t, 0.0, b.Y)
	assert.Greater(t, b.W, 0.0)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(small), 0o644))

	l, err := Load(path, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, path, l.Path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), logging.Discard())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(small), 0o644))

	bus := event.NewBus(logging.Discard())
	reloaded := make(chan event.Reloaded, 4)
	_, err := bus.Subscribe(event.TopicLayoutReloaded, func(ev event.Event) {
		reloaded <- ev.Payload.(event.Reloaded)
	})
	require.NoError(t, err)

	loaded := make(chan *Layout, 4)
	post := func(fn func()) { fn() }
	r, err := Watch(path, bus, post, func(l *Layout) { loaded <- l }, logging.Discard())
	require.NoError(t, err)
	defer r.Close()

	doc := "name: changed\nkeys:\n  - {id: z, char: z, rect: [0, 0, 1, 1]}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	select {
	case l := <-loaded:
		assert.Equal(t, "changed", l.Name)
	case <-time.After(5 * time.Second):
		t.Fatal("layout not reloaded")
	}
	ev := <-reloaded
	assert.Equal(t, path, ev.Path)
	assert.NoError(t, ev.Err)

	require.NoError(t, os.WriteFile(path, []byte("keys: [\n"), 0o644))
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-reloaded:
			if ev.Err != nil {
				return
			}
		case <-deadline:
			t.Fatal("no reload event for broken file")
		}
	}
}
