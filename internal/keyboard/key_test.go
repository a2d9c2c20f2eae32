package keyboard

import (
	"errors"
	"testing"
	"time"

	"github.com/dshills/osk/internal/input/key"
)

func TestConfigureLabel(t *testing.T) {
	full := NewKey("AC01")
	full.Labels = [numLabels]string{"a", "A", "Ⓐ", "æ", "Æ"}
	plain := NewKey("AE01")
	plain.Labels = [numLabels]string{"1", "!", "", "", ""}

	var shift, caps, altgr, shiftAltgr Modifiers
	shift.inc(key.ModShift)
	caps.inc(key.ModCaps)
	altgr.inc(key.ModAltGr)
	shiftAltgr.inc(key.ModShift | key.ModAltGr)

	tests := []struct {
		name  string
		k     *Key
		mods  Modifiers
		label string
	}{
		{"base", full, Modifiers{}, "a"},
		{"shift prefers caps label", full, shift, "Ⓐ"},
		{"shift", plain, shift, "!"},
		{"caps lock", full, caps, "A"},
		{"altgr", full, altgr, "æ"},
		{"altgr without label", plain, altgr, "1"},
		{"shift altgr", full, shiftAltgr, "Æ"},
		{"shift altgr without label", plain, shiftAltgr, "!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.k.ConfigureLabel(tt.mods)
			if got := tt.k.Label(); got != tt.label {
				t.Errorf("Label() = %q, want %q", got, tt.label)
			}
		})
	}
}

func TestLayerIndex(t *testing.T) {
	tests := []struct {
		id    string
		index int
		ok    bool
	}{
		{"layer0", 0, true},
		{"layer12", 12, true},
		{"layer", 0, false},
		{"layerx", 0, false},
		{"LFSH", 0, false},
	}
	for _, tt := range tests {
		n, ok := NewKey(tt.id).LayerIndex()
		if n != tt.index || ok != tt.ok {
			t.Errorf("LayerIndex(%q) = %d, %v; want %d, %v", tt.id, n, ok, tt.index, tt.ok)
		}
	}
}

func TestParseActionType(t *testing.T) {
	a, err := ParseActionType(" Keypress_Name ")
	if err != nil || a != ActionKeypressName {
		t.Errorf("ParseActionType() = %v, %v", a, err)
	}
	if _, err := ParseActionType("teleport"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("ParseActionType(teleport) error = %v, want ErrUnknownAction", err)
	}
	if s := ActionWord.String(); s != "word" {
		t.Errorf("String() = %q", s)
	}
}

func TestDwellProgress(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	k := NewKey("a")
	if k.IsDwelling() || k.DwellProgress(start) != 0 {
		t.Fatal("new key is dwelling")
	}

	k.StartDwelling(start, time.Second)
	prev := -1.0
	for ms := 0; ms <= 1000; ms += 50 {
		p := k.DwellProgress(start.Add(time.Duration(ms) * time.Millisecond))
		if p <= prev {
			t.Fatalf("progress not increasing at %dms: %v <= %v", ms, p, prev)
		}
		prev = p
	}
	if !k.DwellDone(start.Add(time.Second)) || k.DwellDone(start.Add(999*time.Millisecond)) {
		t.Error("DwellDone boundary wrong")
	}
	if got := k.DwellProgress(start.Add(time.Hour)); got != 1 {
		t.Errorf("progress clamps to 1, got %v", got)
	}

	k.StopDwelling()
	if k.IsDwelling() || k.DwellDone(start.Add(time.Hour)) {
		t.Error("stopped key still dwelling")
	}
}

func TestModifierCounts(t *testing.T) {
	var m Modifiers
	m.inc(key.ModShift | key.ModCtrl)
	m.inc(key.ModShift)
	if m.Count(key.ModShift) != 2 || m.Count(key.ModCtrl) != 1 {
		t.Fatalf("counts = %v", m)
	}
	if m.Mask() != key.ModShift|key.ModCtrl {
		t.Errorf("Mask() = %v", m.Mask())
	}
	m.dec(key.ModCtrl)
	m.dec(key.ModCtrl)
	if m.Count(key.ModCtrl) != 0 || m.Active(key.ModCtrl) {
		t.Errorf("ctrl count = %d", m.Count(key.ModCtrl))
	}
	if !m.Active(key.ModCtrl | key.ModShift) {
		t.Error("Active() misses shift")
	}
}
