package key

import (
	"errors"
	"testing"
)

func TestModifierBits(t *testing.T) {
	tests := []struct {
		mod  Modifier
		want uint8
	}{
		{ModShift, 1},
		{ModCaps, 2},
		{ModCtrl, 4},
		{ModAlt, 8},
		{ModNumLock, 16},
		{ModMod3, 32},
		{ModSuper, 64},
		{ModAltGr, 128},
	}
	for _, tt := range tests {
		if uint8(tt.mod) != tt.want {
			t.Errorf("%s = %d, want %d", tt.mod, tt.mod, tt.want)
		}
		if !tt.mod.Single() {
			t.Errorf("%s.Single() = false, want true", tt.mod)
		}
	}
}

func TestModifierWithWithout(t *testing.T) {
	mod := ModNone.With(ModCtrl).With(ModAlt)
	if !mod.Has(ModCtrl) || !mod.Has(ModAlt) {
		t.Errorf("With() = %v, want Ctrl+Alt", mod)
	}
	if mod.Single() {
		t.Error("Ctrl+Alt.Single() = true, want false")
	}
	mod = mod.Without(ModAlt)
	if mod != ModCtrl {
		t.Errorf("Without(ModAlt) = %v, want Ctrl", mod)
	}
}

func TestModifierString(t *testing.T) {
	tests := []struct {
		mod  Modifier
		want string
	}{
		{ModNone, ""},
		{ModCtrl, "Ctrl"},
		{ModShift | ModCtrl, "Shift+Ctrl"},
		{ModAltGr | ModShift, "Shift+AltGr"},
	}
	for _, tt := range tests {
		if got := tt.mod.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseModifier(t *testing.T) {
	tests := []struct {
		name    string
		want    Modifier
		wantErr bool
	}{
		{"shift", ModShift, false},
		{"LFSH", ModShift, false},
		{"CAPS", ModCaps, false},
		{"control", ModCtrl, false},
		{"mod1", ModAlt, false},
		{" RALT ", ModAltGr, false},
		{"mod4", ModSuper, false},
		{"hyper", ModNone, true},
		{"", ModNone, true},
	}
	for _, tt := range tests {
		got, err := ParseModifier(tt.name)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownModifier) {
				t.Errorf("ParseModifier(%q) error = %v, want ErrUnknownModifier", tt.name, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseModifier(%q) = %v, %v; want %v", tt.name, got, err, tt.want)
		}
	}
}

func TestParseModifiers(t *testing.T) {
	got, err := ParseModifiers("ctrl+alt")
	if err != nil || got != ModCtrl|ModAlt {
		t.Errorf("ParseModifiers() = %v, %v", got, err)
	}
	if _, err := ParseModifiers("ctrl+bogus"); err == nil {
		t.Error("ParseModifiers() with unknown part should fail")
	}
}
