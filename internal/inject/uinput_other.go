//go:build !linux

package inject

import (
	"github.com/dshills/osk/internal/input/key"
	"github.com/dshills/osk/internal/logging"
)

// DefaultUInputPath is empty where uinput does not exist.
const DefaultUInputPath = ""

// UInput is unavailable on this platform.
type UInput struct{}

// OpenUInput always fails with ErrUnsupported.
func OpenUInput(string, *logging.Logger) (*UInput, error) {
	return nil, ErrUnsupported
}

func (*UInput) Close() error                   { return nil }
func (*UInput) PressUnicode(rune) error        { return ErrUnsupported }
func (*UInput) ReleaseUnicode(rune) error      { return ErrUnsupported }
func (*UInput) PressKeysym(key.Keysym) error   { return ErrUnsupported }
func (*UInput) ReleaseKeysym(key.Keysym) error { return ErrUnsupported }
func (*UInput) PressKeycode(int) error         { return ErrUnsupported }
func (*UInput) ReleaseKeycode(int) error       { return ErrUnsupported }
func (*UInput) LockMod(key.Modifier) error     { return ErrUnsupported }
func (*UInput) UnlockMod(key.Modifier) error   { return ErrUnsupported }

var _ Sink = (*UInput)(nil)
