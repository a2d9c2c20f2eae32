package inject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/osk/internal/input/key"
)

func TestLockingNestsLocks(t *testing.T) {
	rec := &Recorder{}
	l := NewLocking(rec)

	require.NoError(t, l.LockMod(key.ModShift))
	require.NoError(t, l.LockMod(key.ModShift))
	assert.Equal(t, 1, rec.Count(LockMod))
	assert.Equal(t, key.ModShift, l.Locked())

	require.NoError(t, l.UnlockMod(key.ModShift))
	assert.Equal(t, 0, rec.Count(UnlockMod))

	require.NoError(t, l.UnlockMod(key.ModShift))
	assert.Equal(t, 1, rec.Count(UnlockMod))
	assert.True(t, l.Locked().IsEmpty())
}

func TestLockingRedundantUnlockIsNoop(t *testing.T) {
	rec := &Recorder{}
	l := NewLocking(rec)

	assert.NoError(t, l.UnlockMod(key.ModCtrl))
	assert.Empty(t, rec.Events)
}

func TestLockingSplitsBits(t *testing.T) {
	rec := &Recorder{}
	l := NewLocking(rec)

	require.NoError(t, l.LockMod(key.ModShift|key.ModCtrl))
	assert.Equal(t, []string{"lock_mod(Shift)", "lock_mod(Ctrl)"}, rec.Strings())

	require.NoError(t, l.ReleaseAll())
	assert.Equal(t, 2, rec.Count(UnlockMod))
	assert.True(t, l.Locked().IsEmpty())
}

func TestLockingPassesThroughKeys(t *testing.T) {
	rec := &Recorder{}
	l := NewLocking(rec)
	require.NoError(t, l.PressUnicode('h'))
	require.NoError(t, l.ReleaseUnicode('h'))
	require.NoError(t, l.PressUnicode('i'))
	assert.Equal(t, "hi", rec.Typed())
}

func TestStrokeForRune(t *testing.T) {
	tests := []struct {
		r    rune
		want stroke
		ok   bool
	}{
		{'a', stroke{30, false}, true},
		{'A', stroke{30, true}, true},
		{'0', stroke{11, false}, true},
		{'?', stroke{53, true}, true},
		{' ', stroke{keySpace, false}, true},
		{'é', stroke{}, false},
	}
	for _, tt := range tests {
		got, ok := strokeForRune(tt.r)
		assert.Equal(t, tt.ok, ok, "%q", tt.r)
		assert.Equal(t, tt.want, got, "%q", tt.r)
	}
}

func TestStrokeForKeysym(t *testing.T) {
	tests := []struct {
		ks   key.Keysym
		code uint16
		ok   bool
	}{
		{key.KeysymBackSpace, keyBackspace, true},
		{key.KeysymReturn, keyEnter, true},
		{key.KeysymF1, keyF1, true},
		{key.KeysymF1 + 11, keyF12, true},
		{key.Keysym('q'), 16, true},
		{key.KeysymFromRune('z'), 44, true},
		{key.Keysym(0xfe03), 0, false},
	}
	for _, tt := range tests {
		got, ok := strokeForKeysym(tt.ks)
		assert.Equal(t, tt.ok, ok, "%s", tt.ks.Name())
		assert.Equal(t, tt.code, got.code, "%s", tt.ks.Name())
	}
}
